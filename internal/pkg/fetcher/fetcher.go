package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/storage"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout = 180 * time.Second
	// MaxPayloadBytes bounds how much of a response or file is read into memory.
	MaxPayloadBytes = 64 << 20
	maxErrorBody    = 512
)

// Descriptor is the transport half of a source: where and how to read its payload.
type Descriptor struct {
	URL      string
	FilePath string
	Method   string
	Headers  map[string]string
	OAuth    *OAuth
}

// OAuth configures a client-credentials token exchange before the request.
type OAuth struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// Payload is the raw body of a fetch.
type Payload struct {
	Body        []byte
	ContentType string
	Origin      string
}

type Config struct {
	Timeout time.Duration
	// RPS caps outbound requests across all sources; zero or negative disables the cap.
	RPS float64
}

type Fetcher struct {
	client  *http.Client
	files   storage.FileStorage
	limiter *rate.Limiter
	timeout time.Duration
}

func New(cfg Config, files storage.FileStorage) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	return &Fetcher{
		client:  &http.Client{},
		files:   files,
		limiter: rate.NewLimiter(limit, 1),
		timeout: timeout,
	}
}

// Fetch reads the payload from file storage when FilePath is set, otherwise over HTTP.
func (f *Fetcher) Fetch(ctx context.Context, d Descriptor) (Payload, error) {
	switch {
	case d.FilePath != "":
		return f.fetchFile(ctx, d.FilePath)
	case d.URL != "":
		return f.fetchURL(ctx, d)
	default:
		return Payload{}, ErrNoTransport
	}
}

func (f *Fetcher) fetchFile(ctx context.Context, key string) (Payload, error) {
	if f.files == nil {
		return Payload{}, fmt.Errorf("%w: no file storage configured", ErrNotFound)
	}
	rc, err := f.files.Download(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) || errors.Is(err, storage.ErrInvalidPath) {
			return Payload{}, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return Payload{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer rc.Close()

	body, err := readLimited(rc)
	if err != nil {
		return Payload{}, err
	}
	return Payload{Body: body, Origin: key}, nil
}

func (f *Fetcher) fetchURL(ctx context.Context, d Descriptor) (Payload, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if err := f.limiter.Wait(ctx); err != nil {
		return Payload{}, classify(ctx, err)
	}

	method := strings.ToUpper(d.Method)
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, d.URL, nil)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	for k, v := range d.Headers {
		req.Header.Set(k, v)
	}

	resp, err := f.httpClient(ctx, d.OAuth).Do(req)
	if err != nil {
		return Payload{}, classify(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Payload{}, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	body, err := readLimited(resp.Body)
	if err != nil {
		if errors.Is(err, ErrTooLarge) {
			return Payload{}, err
		}
		return Payload{}, classify(ctx, err)
	}

	return Payload{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		Origin:      d.URL,
	}, nil
}

func (f *Fetcher) httpClient(ctx context.Context, o *OAuth) *http.Client {
	if o == nil || o.TokenURL == "" {
		return f.client
	}
	cc := clientcredentials.Config{
		ClientID:     o.ClientID,
		ClientSecret: o.ClientSecret,
		TokenURL:     o.TokenURL,
		Scopes:       o.Scopes,
	}
	return cc.Client(context.WithValue(ctx, oauth2.HTTPClient, f.client))
}

func readLimited(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, MaxPayloadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxPayloadBytes {
		return nil, ErrTooLarge
	}
	return body, nil
}

// classify maps request failures onto ErrTimeout or ErrTransport.
func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrTransport, err)
}
