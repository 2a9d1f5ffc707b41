package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	robfig "github.com/robfig/cron/v3"
)

// JobID identifies a registered job so it can be removed later.
type JobID = robfig.EntryID

// Job represents a scheduled job
type Job struct {
	ID       JobID
	Name     string
	Interval time.Duration
	Fn       func(ctx context.Context) error
}

// Scheduler runs every job on one shared cron loop.
type Scheduler struct {
	cron   *robfig.Cron
	jobs   map[JobID]Job
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewScheduler creates a new cron scheduler
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	logger := slogLogger{}
	return &Scheduler{
		cron: robfig.New(
			robfig.WithLogger(logger),
			robfig.WithChain(robfig.Recover(logger)),
		),
		jobs:   make(map[JobID]Job),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers fn to run every interval, starting one interval from now.
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) (JobID, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("cron job %s: interval must be positive", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	job := Job{Name: name, Interval: interval, Fn: fn}
	id := s.cron.Schedule(robfig.Every(interval), robfig.FuncJob(func() {
		s.executeJob(job)
	}))
	job.ID = id
	s.jobs[id] = job

	slog.Info("Cron job registered", "name", name, "interval", interval)
	return id, nil
}

// AddDailyJob registers fn with a standard cron spec such as "0 3 * * *".
func (s *Scheduler) AddDailyJob(name string, spec string, fn func(ctx context.Context) error) (JobID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := Job{Name: name, Fn: fn}
	id, err := s.cron.AddFunc(spec, func() {
		s.executeJob(job)
	})
	if err != nil {
		return 0, fmt.Errorf("adding cron job %s: %w", name, err)
	}
	job.ID = id
	s.jobs[id] = job

	slog.Info("Cron job registered", "name", name, "spec", spec)
	return id, nil
}

// RemoveJob unregisters a job. Runs already in flight finish normally.
func (s *Scheduler) RemoveJob(id JobID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return
	}
	s.cron.Remove(id)
	delete(s.jobs, id)
	slog.Info("Cron job removed", "name", job.Name)
}

// Jobs returns a snapshot of the registered jobs.
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start() {
	s.cron.Start()
	slog.Info("Cron scheduler started", "job_count", len(s.Jobs()))
}

// Stop gracefully stops all scheduled jobs
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	<-s.cron.Stop().Done()
	slog.Info("Cron scheduler stopped")
}

// executeJob executes a job and logs results
func (s *Scheduler) executeJob(job Job) {
	start := time.Now()
	slog.Debug("Cron job starting", "name", job.Name)

	if err := job.Fn(s.ctx); err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
	} else {
		slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
	}
}

// slogLogger adapts slog to the cron.Logger interface.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...interface{}) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	slog.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
