// Package warehouse queries the remote attendance warehouse for per-day punch rows.
package warehouse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/attendance"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 60 * time.Second
	// maxCardsPerQuery keeps the query string well under common URL limits.
	maxCardsPerQuery = 200
)

type Config struct {
	Enabled bool
	BaseURL string
	Token   string
	Timeout time.Duration
}

// New returns the HTTP client when enabled, otherwise a source that is never available.
func New(cfg Config) attendance.RemoteSource {
	if !cfg.Enabled || cfg.BaseURL == "" {
		return Disabled{}
	}
	return NewClient(cfg)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(2), 2),
	}
}

func (c *Client) Available() bool {
	return true
}

type rowsEnvelope struct {
	Rows []wireRow `json:"rows"`
}

type wireRow struct {
	CardNo     json.RawMessage `json:"card_no"`
	TIn        string          `json:"t_in"`
	TOut       string          `json:"t_out"`
	ResultTIn  string          `json:"result_t_in"`
	ResultTOut string          `json:"result_t_out"`
	Status     string          `json:"status"`
	Present    json.RawMessage `json:"present"`
}

// RowsForDate returns rows for the calendar day of date, optionally limited to cardNumbers.
// Large card filters are sent as several requests.
func (c *Client) RowsForDate(ctx context.Context, date time.Time, cardNumbers []string) ([]attendance.RemoteRow, error) {
	if len(cardNumbers) <= maxCardsPerQuery {
		return c.query(ctx, date, cardNumbers)
	}

	var rows []attendance.RemoteRow
	for start := 0; start < len(cardNumbers); start += maxCardsPerQuery {
		end := min(start+maxCardsPerQuery, len(cardNumbers))
		chunk, err := c.query(ctx, date, cardNumbers[start:end])
		if err != nil {
			return nil, err
		}
		rows = append(rows, chunk...)
	}
	return rows, nil
}

func (c *Client) query(ctx context.Context, date time.Time, cardNumbers []string) ([]attendance.RemoteRow, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("date", date.Format("2006-01-02"))
	if len(cardNumbers) > 0 {
		q.Set("cards", strings.Join(cardNumbers, ","))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/attendance?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("warehouse request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("warehouse responded with HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var env rowsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode warehouse response: %w", err)
	}

	rows := make([]attendance.RemoteRow, 0, len(env.Rows))
	for _, w := range env.Rows {
		rows = append(rows, attendance.RemoteRow{
			CardNumber: rawString(w.CardNo),
			TIn:        strings.TrimSpace(w.TIn),
			TOut:       strings.TrimSpace(w.TOut),
			ResultTIn:  strings.TrimSpace(w.ResultTIn),
			ResultTOut: strings.TrimSpace(w.ResultTOut),
			Status:     strings.TrimSpace(w.Status),
			Present:    rawBool(w.Present),
		})
	}
	return rows, nil
}

// rawString accepts a JSON string or number.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// rawBool accepts true/false, 1/0 and "Y"/"1"/"true" style flags.
func rawBool(raw json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n != 0
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "Y" || s == "YES" {
			return true
		}
		v, err := strconv.ParseBool(s)
		return err == nil && v
	}
	return false
}

// Disabled is the remote source used when no warehouse is configured.
type Disabled struct{}

func (Disabled) Available() bool {
	return false
}

func (Disabled) RowsForDate(ctx context.Context, date time.Time, cardNumbers []string) ([]attendance.RemoteRow, error) {
	return nil, attendance.ErrRemoteUnavailable
}
