package datasync

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/source"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/fetcher"
	"github.com/cmlabs-hris/workforce-sync-go/internal/repository/memory"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	mu       sync.Mutex
	payloads map[string]string
	errs     map[string]error
	calls    int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{payloads: map[string]string{}, errs: map[string]error{}}
}

func (f *stubFetcher) set(url, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads[url] = body
}

func (f *stubFetcher) Fetch(ctx context.Context, d fetcher.Descriptor) (fetcher.Payload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	key := d.URL
	if d.FilePath != "" {
		key = d.FilePath
	}
	if err, ok := f.errs[key]; ok {
		return fetcher.Payload{}, err
	}
	body, ok := f.payloads[key]
	if !ok {
		return fetcher.Payload{}, fetcher.ErrNotFound
	}
	return fetcher.Payload{Body: []byte(body), Origin: key}, nil
}

type harness struct {
	sources    *memory.SourceRepository
	logs       *memory.ImportLogRepository
	employees  *memory.EmployeeRepository
	attendance *memory.AttendanceRepository
	lookups    *memory.LookupRepository
	fetcher    *stubFetcher
	runner     *Runner
}

var testRetry = database.RetryPolicy{Attempts: 2, Backoff: time.Millisecond}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		sources:    memory.NewSourceRepository(),
		logs:       memory.NewImportLogRepository(),
		employees:  memory.NewEmployeeRepository(),
		attendance: memory.NewAttendanceRepository(),
		lookups:    memory.NewLookupRepository(),
		fetcher:    newStubFetcher(),
	}
	h.runner = NewRunner(RunnerDeps{
		Sources:    h.sources,
		Logs:       h.logs,
		Employees:  h.employees,
		Attendance: h.attendance,
		Lookups:    h.lookups,
		Fetcher:    h.fetcher,
		Retry:      testRetry,
		Location:   time.UTC,
	})
	return h
}

func (h *harness) addSource(t *testing.T, src source.Source) source.Source {
	t.Helper()
	if src.Kind == "" {
		src.Kind = source.KindCSV
	}
	if src.Status == "" {
		src.Status = source.StatusActive
	}
	created, err := h.sources.Create(context.Background(), src)
	require.NoError(t, err)
	return created
}
