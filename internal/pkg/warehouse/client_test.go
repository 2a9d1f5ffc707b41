package warehouse

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestClient_RowsForDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/attendance", r.URL.Path)
		assert.Equal(t, "2025-12-05", r.URL.Query().Get("date"))
		assert.Equal(t, "42,7", r.URL.Query().Get("cards"))
		assert.Equal(t, "Bearer wh-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"rows":[
			{"card_no":"0042","t_in":"09:05:00","t_out":"","result_t_in":"05:30:00","status":"PRESENT","present":1},
			{"card_no":7,"status":"A","present":"N"}
		]}`)
	}))
	defer srv.Close()

	src := New(Config{Enabled: true, BaseURL: srv.URL + "/", Token: "wh-token", Timeout: time.Second})
	require.True(t, src.Available())

	rows, err := src.RowsForDate(context.Background(), time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC), []string{"42", "7"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, attendance.RemoteRow{
		CardNumber: "0042",
		TIn:        "09:05:00",
		ResultTIn:  "05:30:00",
		Status:     "PRESENT",
		Present:    true,
	}, rows[0])
	assert.Equal(t, "7", rows[1].CardNumber)
	assert.False(t, rows[1].Present)
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).RowsForDate(context.Background(), time.Now(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestNew_Disabled(t *testing.T) {
	src := New(Config{Enabled: false, BaseURL: "http://example.invalid"})
	assert.False(t, src.Available())

	_, err := src.RowsForDate(context.Background(), time.Now(), nil)
	assert.ErrorIs(t, err, attendance.ErrRemoteUnavailable)
}

func TestClient_RowsForDateChunksLargeCardFilters(t *testing.T) {
	var (
		mu     sync.Mutex
		counts []int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cards := strings.Split(r.URL.Query().Get("cards"), ",")
		mu.Lock()
		counts = append(counts, len(cards))
		mu.Unlock()
		fmt.Fprintf(w, `{"rows":[{"card_no":%q,"status":"P"}]}`, cards[0])
	}))
	defer srv.Close()

	cards := make([]string, 450)
	for i := range cards {
		cards[i] = strconv.Itoa(i + 1)
	}

	c := NewClient(Config{BaseURL: srv.URL})
	c.limiter.SetLimit(rate.Inf)
	rows, err := c.RowsForDate(context.Background(), time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC), cards)
	require.NoError(t, err)

	assert.Equal(t, []int{200, 200, 50}, counts)
	require.Len(t, rows, 3)
	assert.Equal(t, "1", rows[0].CardNumber)
	assert.Equal(t, "201", rows[1].CardNumber)
	assert.Equal(t, "401", rows[2].CardNumber)
}
