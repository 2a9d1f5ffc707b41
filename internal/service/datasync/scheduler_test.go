package datasync

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/source"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/cron"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingExecutor holds every run until release is closed.
type blockingExecutor struct {
	mu      sync.Mutex
	started chan string
	release chan struct{}
	runs    int
}

func newBlockingExecutor() *blockingExecutor {
	return &blockingExecutor{started: make(chan string, 8), release: make(chan struct{})}
}

func (b *blockingExecutor) Execute(ctx context.Context, src source.Source) (source.ImportLog, error) {
	b.mu.Lock()
	b.runs++
	b.mu.Unlock()
	b.started <- src.ID
	<-b.release
	return source.ImportLog{SourceID: src.ID, Status: source.LogStatusCompleted}, nil
}

func (b *blockingExecutor) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.runs
}

func newTestScheduler(h *harness, exec Executor) *Scheduler {
	return NewScheduler(cron.NewScheduler(), h.sources, h.logs, exec, testRetry)
}

func jobIntervals(c *cron.Scheduler) map[string]time.Duration {
	out := map[string]time.Duration{}
	for _, j := range c.Jobs() {
		out[j.Name] = j.Interval
	}
	return out
}

func TestRefreshSchedules_Diff(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	c := cron.NewScheduler()
	s := NewScheduler(c, h.sources, h.logs, h.runner, testRetry)

	a := h.addSource(t, source.Source{Name: "a", URL: "https://a", SyncEnabled: true, IntervalMinutes: 10})
	b := h.addSource(t, source.Source{Name: "b", URL: "https://b", SyncEnabled: true, IntervalHours: 1})
	h.addSource(t, source.Source{Name: "draft", URL: "https://d", SyncEnabled: true, Status: source.StatusDraft})
	h.addSource(t, source.Source{Name: "off", URL: "https://o", SyncEnabled: false})

	require.NoError(t, s.RefreshSchedules(ctx))
	assert.Equal(t, map[string]time.Duration{"sync:a": 10 * time.Minute, "sync:b": time.Hour}, jobIntervals(c))

	// Interval change restarts the timer, disabling stops it.
	a.IntervalMinutes = 0
	require.NoError(t, h.sources.Update(ctx, a))
	b.SyncEnabled = false
	require.NoError(t, h.sources.Update(ctx, b))

	require.NoError(t, s.RefreshSchedules(ctx))
	assert.Equal(t, map[string]time.Duration{"sync:a": source.MinSyncInterval}, jobIntervals(c))
	assert.True(t, s.Scheduled(a.ID))
	assert.False(t, s.Scheduled(b.ID))

	// Refreshing with no change keeps the same entry.
	before := c.Jobs()
	require.NoError(t, s.RefreshSchedules(ctx))
	assert.Equal(t, before[0].ID, c.Jobs()[0].ID)
}

func TestTick_StopsTimerForInactiveSource(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	c := cron.NewScheduler()
	s := NewScheduler(c, h.sources, h.logs, h.runner, testRetry)

	src := h.addSource(t, source.Source{Name: "a", URL: "https://a", SyncEnabled: true, IntervalMinutes: 5})
	require.NoError(t, s.RefreshSchedules(ctx))
	require.True(t, s.Scheduled(src.ID))

	src.SyncEnabled = false
	require.NoError(t, h.sources.Update(ctx, src))

	require.NoError(t, s.tick(ctx, src.ID))
	assert.False(t, s.Scheduled(src.ID))
	assert.Empty(t, c.Jobs())
	assert.Zero(t, h.fetcher.calls)
}

func TestTick_StopsTimerForDeletedSource(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	s := newTestScheduler(h, h.runner)

	src := h.addSource(t, source.Source{Name: "a", URL: "https://a", SyncEnabled: true, IntervalMinutes: 5})
	require.NoError(t, s.RefreshSchedules(ctx))
	require.NoError(t, h.sources.Delete(ctx, src.ID))

	require.NoError(t, s.tick(ctx, src.ID))
	assert.False(t, s.Scheduled(src.ID))
}

func TestTick_RunsActiveSource(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	s := newTestScheduler(h, h.runner)

	src := h.addSource(t, source.Source{Name: "hr", URL: "https://hr.example/e.csv", SyncEnabled: true, IntervalMinutes: 10})
	h.fetcher.set(src.URL, employeeCSV)

	require.NoError(t, s.tick(ctx, src.ID))

	logs, err := h.logs.List(ctx, 5)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, source.LogStatusPartial, logs[0].Status)
}

func TestTriggerManualSync_InFlightGuard(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	exec := newBlockingExecutor()
	s := newTestScheduler(h, exec)

	src := h.addSource(t, source.Source{Name: "a", URL: "https://a", SyncEnabled: true, IntervalMinutes: 10})

	require.NoError(t, s.TriggerManualSync(ctx, src.ID))
	select {
	case id := <-exec.started:
		assert.Equal(t, src.ID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("manual sync did not start")
	}
	assert.True(t, s.Running(src.ID))

	// A second trigger and a timer tick both back off while the run is in flight.
	assert.ErrorIs(t, s.TriggerManualSync(ctx, src.ID), source.ErrSyncInProgress)
	require.NoError(t, s.tick(ctx, src.ID))
	assert.Equal(t, 1, exec.count())

	close(exec.release)
	s.Wait()
	assert.False(t, s.Running(src.ID))

	_, err := s.RunNow(ctx, src.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, exec.count())
}

func TestTriggerManualSync_UnknownSource(t *testing.T) {
	h := newHarness(t)
	s := newTestScheduler(h, h.runner)

	err := s.TriggerManualSync(context.Background(), "missing")
	assert.ErrorIs(t, err, source.ErrSourceNotFound)
}

func TestPruneLogs(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	s := newTestScheduler(h, h.runner)
	now := time.Date(2025, 12, 31, 12, 0, 0, 0, time.UTC)

	for _, l := range []source.ImportLog{
		{SourceName: "old", Status: source.LogStatusCompleted, StartedAt: now.AddDate(0, 0, -40)},
		{SourceName: "stuck", Status: source.LogStatusInProgress, StartedAt: now.AddDate(0, 0, -40)},
		{SourceName: "recent", Status: source.LogStatusFailed, StartedAt: now.AddDate(0, 0, -2)},
	} {
		_, err := h.logs.Create(ctx, l)
		require.NoError(t, err)
	}

	deleted, err := s.PruneLogs(ctx, 30, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	logs, err := h.logs.List(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestEnableLogRetention(t *testing.T) {
	h := newHarness(t)
	c := cron.NewScheduler()
	s := NewScheduler(c, h.sources, h.logs, h.runner, testRetry)

	require.NoError(t, s.EnableLogRetention(0))
	assert.Empty(t, c.Jobs())

	require.NoError(t, s.EnableLogRetention(30))
	require.Len(t, c.Jobs(), 1)
	assert.Equal(t, "import-log-retention", c.Jobs()[0].Name)
}

// stallingSourceRepository hands out the schedulable set of its first call
// only after release is closed.
type stallingSourceRepository struct {
	source.SourceRepository
	mu      sync.Mutex
	calls   int
	entered chan struct{}
	release chan struct{}
}

func (r *stallingSourceRepository) ListSchedulable(ctx context.Context) ([]source.Source, error) {
	r.mu.Lock()
	r.calls++
	first := r.calls == 1
	r.mu.Unlock()

	list, err := r.SourceRepository.ListSchedulable(ctx)
	if first {
		close(r.entered)
		<-r.release
	}
	return list, err
}

func TestRefreshSchedules_ConcurrentRefreshKeepsLatestState(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	src := h.addSource(t, source.Source{Name: "a", URL: "https://a", SyncEnabled: true, IntervalMinutes: 10})

	repo := &stallingSourceRepository{SourceRepository: h.sources, entered: make(chan struct{}), release: make(chan struct{})}
	s := NewScheduler(cron.NewScheduler(), repo, h.logs, h.runner, testRetry)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.RefreshSchedules(ctx))
	}()
	<-repo.entered

	src.SyncEnabled = false
	require.NoError(t, h.sources.Update(ctx, src))

	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, s.RefreshSchedules(ctx))
	}()

	time.Sleep(20 * time.Millisecond)
	close(repo.release)
	wg.Wait()

	assert.False(t, s.Scheduled(src.ID))
	assert.Equal(t, 2, repo.calls)
}
