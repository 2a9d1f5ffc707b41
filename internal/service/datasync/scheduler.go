package datasync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/source"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/cron"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/database"
)

// DefaultRunTimeout bounds a background run, fetch included.
const DefaultRunTimeout = 30 * time.Minute

// Executor performs one sync run.
type Executor interface {
	Execute(ctx context.Context, src source.Source) (source.ImportLog, error)
}

type scheduledEntry struct {
	jobID    cron.JobID
	interval time.Duration
}

// Scheduler keeps one cron entry per schedulable source and guards each source
// against overlapping runs.
type Scheduler struct {
	cron       *cron.Scheduler
	sources    source.SourceRepository
	logs       source.ImportLogRepository
	executor   Executor
	retry      database.RetryPolicy
	runTimeout time.Duration

	// refreshMu orders refreshes so a stale snapshot is never applied after a newer one.
	refreshMu sync.Mutex

	mu      sync.Mutex
	entries map[string]scheduledEntry
	running map[string]struct{}
	wg      sync.WaitGroup
}

func NewScheduler(c *cron.Scheduler, sources source.SourceRepository, logs source.ImportLogRepository, executor Executor, retry database.RetryPolicy) *Scheduler {
	return &Scheduler{
		cron:       c,
		sources:    sources,
		logs:       logs,
		executor:   executor,
		retry:      retry,
		runTimeout: DefaultRunTimeout,
		entries:    make(map[string]scheduledEntry),
		running:    make(map[string]struct{}),
	}
}

// RefreshSchedules diffs the registered timers against the active, sync-enabled
// sources: stale timers stop, changed intervals restart, new sources get a timer.
func (s *Scheduler) RefreshSchedules(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	var desired []source.Source
	err := database.Retry(ctx, s.retry, func(ctx context.Context) error {
		var err error
		desired, err = s.sources.ListSchedulable(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to load schedulable sources: %w", err)
	}

	want := make(map[string]source.Source, len(desired))
	for _, src := range desired {
		if src.Schedulable() {
			want[src.ID] = src
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var stopped, started int
	for id, entry := range s.entries {
		src, ok := want[id]
		if ok && src.Interval() == entry.interval {
			continue
		}
		s.cron.RemoveJob(entry.jobID)
		delete(s.entries, id)
		stopped++
	}

	for id, src := range want {
		if _, ok := s.entries[id]; ok {
			continue
		}
		sourceID := id
		jobID, err := s.cron.AddJob("sync:"+src.Name, src.Interval(), func(ctx context.Context) error {
			return s.tick(ctx, sourceID)
		})
		if err != nil {
			return err
		}
		s.entries[id] = scheduledEntry{jobID: jobID, interval: src.Interval()}
		started++
	}

	slog.Info("Sync schedules refreshed", "active", len(s.entries), "started", started, "stopped", stopped)
	return nil
}

// Unschedule stops the timer for a source, if any.
func (s *Scheduler) Unschedule(sourceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unscheduleLocked(sourceID)
}

func (s *Scheduler) unscheduleLocked(sourceID string) {
	entry, ok := s.entries[sourceID]
	if !ok {
		return
	}
	s.cron.RemoveJob(entry.jobID)
	delete(s.entries, sourceID)
}

// Scheduled reports whether a timer exists for the source.
func (s *Scheduler) Scheduled(sourceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[sourceID]
	return ok
}

// tick is the timer callback. A source that is gone or no longer schedulable
// loses its timer; a source with a run in flight is skipped.
func (s *Scheduler) tick(ctx context.Context, sourceID string) error {
	src, err := s.sources.GetByID(ctx, sourceID)
	if errors.Is(err, source.ErrSourceNotFound) {
		slog.Info("Scheduled source no longer exists, stopping timer", "source_id", sourceID)
		s.Unschedule(sourceID)
		return nil
	}
	if err != nil {
		return err
	}
	if !src.Schedulable() {
		slog.Info("Scheduled source inactive or sync disabled, stopping timer", "source_id", sourceID)
		s.Unschedule(sourceID)
		return nil
	}

	if !s.acquire(sourceID) {
		slog.Warn("Skipping scheduled sync, previous run still in progress", "source_id", sourceID)
		return nil
	}
	defer s.release(sourceID)

	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()
	_, err = s.executor.Execute(runCtx, src)
	return err
}

// TriggerManualSync starts a run in the background, independent of any timer.
// It fails with source.ErrSyncInProgress while another run for the source is in flight.
func (s *Scheduler) TriggerManualSync(ctx context.Context, sourceID string) error {
	src, err := s.sources.GetByID(ctx, sourceID)
	if err != nil {
		return err
	}

	if !s.acquire(sourceID) {
		return source.ErrSyncInProgress
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.release(sourceID)
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Manual sync panicked", "source_id", sourceID, "panic", r)
			}
		}()

		// The request context ends with the HTTP response; the run must outlive it.
		runCtx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
		defer cancel()

		if _, err := s.executor.Execute(runCtx, src); err != nil {
			slog.Error("Manual sync failed", "source_id", sourceID, "error", err)
		}
	}()

	slog.Info("Manual sync triggered", "source_id", sourceID)
	return nil
}

// RunNow executes a run synchronously under the same in-flight guard.
func (s *Scheduler) RunNow(ctx context.Context, sourceID string) (source.ImportLog, error) {
	src, err := s.sources.GetByID(ctx, sourceID)
	if err != nil {
		return source.ImportLog{}, err
	}
	if !s.acquire(sourceID) {
		return source.ImportLog{}, source.ErrSyncInProgress
	}
	defer s.release(sourceID)

	return s.executor.Execute(ctx, src)
}

// Running reports whether a run for the source is in flight.
func (s *Scheduler) Running(sourceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.running[sourceID]
	return ok
}

func (s *Scheduler) acquire(sourceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.running[sourceID]; busy {
		return false
	}
	s.running[sourceID] = struct{}{}
	return true
}

func (s *Scheduler) release(sourceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, sourceID)
}

// EnableLogRetention registers a daily job pruning import logs older than days.
// Zero or negative days leaves logs untouched.
func (s *Scheduler) EnableLogRetention(days int) error {
	if days <= 0 {
		slog.Info("Import log retention disabled")
		return nil
	}
	_, err := s.cron.AddDailyJob("import-log-retention", "15 3 * * *", func(ctx context.Context) error {
		_, err := s.PruneLogs(ctx, days, time.Now())
		return err
	})
	return err
}

// PruneLogs deletes finished import logs started before now minus days.
func (s *Scheduler) PruneLogs(ctx context.Context, days int, now time.Time) (int64, error) {
	cutoff := now.AddDate(0, 0, -days)
	deleted, err := s.logs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	slog.Info("Import logs pruned", "deleted", deleted, "cutoff", cutoff)
	return deleted, nil
}

// Wait blocks until background manual runs have returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
