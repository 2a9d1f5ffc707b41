package datasync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/master"
	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/source"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/fetcher"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/parser"
	"github.com/google/uuid"
)

// Fetcher reads a source payload.
type Fetcher interface {
	Fetch(ctx context.Context, d fetcher.Descriptor) (fetcher.Payload, error)
}

// TxFunc runs fn inside one transaction carried by its context.
type TxFunc func(ctx context.Context, fn func(ctx context.Context) error) error

// NoTx runs fn directly.
func NoTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

const finishTimeout = 30 * time.Second

type recordPipeline interface {
	Upsert(ctx context.Context, rec parser.Record) (Result, error)
}

// Runner executes sync runs: fetch, parse, classify, upsert, and the import log around them.
type Runner struct {
	sources    source.SourceRepository
	logs       source.ImportLogRepository
	employees  employee.EmployeeRepository
	attendance attendance.AttendanceRepository
	lookups    master.LookupRepository
	fetcher    Fetcher
	tx         TxFunc
	retry      database.RetryPolicy
	loc        *time.Location
	now        func() time.Time
}

type RunnerDeps struct {
	Sources    source.SourceRepository
	Logs       source.ImportLogRepository
	Employees  employee.EmployeeRepository
	Attendance attendance.AttendanceRepository
	Lookups    master.LookupRepository
	Fetcher    Fetcher
	Tx         TxFunc
	Retry      database.RetryPolicy
	Location   *time.Location
}

func NewRunner(deps RunnerDeps) *Runner {
	tx := deps.Tx
	if tx == nil {
		tx = NoTx
	}
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Runner{
		sources:    deps.Sources,
		logs:       deps.Logs,
		employees:  deps.Employees,
		attendance: deps.Attendance,
		lookups:    deps.Lookups,
		fetcher:    deps.Fetcher,
		tx:         tx,
		retry:      deps.Retry,
		loc:        loc,
		now:        time.Now,
	}
}

// Descriptor maps a source onto the fetcher's transport description.
func Descriptor(src source.Source) fetcher.Descriptor {
	d := fetcher.Descriptor{
		URL:     src.URL,
		Method:  src.Method,
		Headers: src.Headers,
	}
	if src.IsLocal() {
		d.FilePath = *src.FilePath
	}
	if src.OAuth != nil {
		d.OAuth = &fetcher.OAuth{
			TokenURL:     src.OAuth.TokenURL,
			ClientID:     src.OAuth.ClientID,
			ClientSecret: src.OAuth.ClientSecret,
			Scopes:       src.OAuth.Scopes,
		}
	}
	return d
}

func origin(src source.Source) string {
	if src.IsLocal() {
		return "file://" + *src.FilePath
	}
	return src.URL
}

// Probe is the outcome of a dry fetch and parse.
type Probe struct {
	DataType    DataType
	RecordCount int
}

// Probe fetches and parses src without writing anything.
func (r *Runner) Probe(ctx context.Context, src source.Source) (Probe, error) {
	records, err := r.load(ctx, src)
	if err != nil {
		return Probe{}, err
	}
	return Probe{DataType: ClassifyBatch(records), RecordCount: len(records)}, nil
}

func (r *Runner) load(ctx context.Context, src source.Source) ([]parser.Record, error) {
	payload, err := r.fetcher.Fetch(ctx, Descriptor(src))
	if err != nil {
		return nil, err
	}
	return parser.Parse(payload.Body)
}

// Execute performs one sync run for src. Fetch and parse failures end up in the
// returned log with status failed; the error is set only when the log itself
// could not be written.
func (r *Runner) Execute(ctx context.Context, src source.Source) (source.ImportLog, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return source.ImportLog{}, err
	}

	log := source.ImportLog{
		ID:         id.String(),
		SourceID:   src.ID,
		SourceName: src.Name,
		SourceURL:  origin(src),
		Status:     source.LogStatusInProgress,
		StartedAt:  r.now(),
		Metadata:   map[string]interface{}{},
	}

	err = database.Retry(ctx, r.retry, func(ctx context.Context) error {
		var err error
		log, err = r.logs.Create(ctx, log)
		return err
	})
	if err != nil {
		return source.ImportLog{}, fmt.Errorf("failed to open import log for source %s: %w", src.ID, err)
	}

	slog.Info("Sync run started", "source_id", src.ID, "source", src.Name, "log_id", log.ID)

	records, err := r.load(ctx, src)
	if err != nil {
		slog.Error("Sync run fetch failed", "source_id", src.ID, "error", err)
		return r.finish(ctx, src, log, err)
	}

	// Once the payload is parsed the run processes every record and closes its log.
	ctx = context.WithoutCancel(ctx)

	dataType := ClassifyBatch(records)
	log.TotalCount = len(records)
	log.Metadata["data_type"] = string(dataType)

	var pipeline recordPipeline
	switch dataType {
	case DataTypeAttendance:
		pipeline = NewAttendancePipeline(r.employees, r.attendance, r.retry, r.loc)
	case DataTypeEmployee:
		pipeline = NewEmployeePipeline(r.employees, NewNormalizer(r.lookups, r.retry), r.retry, r.loc)
	}

	var created, skippedCount int
	var runErr error
	for i, rec := range records {
		res, err := pipeline.Upsert(ctx, rec)
		if err != nil {
			runErr = fmt.Errorf("store unavailable at record %d: %w", i+1, err)
			break
		}
		switch res.Outcome {
		case Imported:
			log.ImportedCount++
			if res.Created {
				created++
			}
		case Skipped:
			skippedCount++
			// An employee row without a card is a defect in the source, an unknown card on an attendance row is not.
			if dataType == DataTypeEmployee {
				log.FailedCount++
			}
			slog.Debug("Sync record skipped", "source_id", src.ID, "row", i+1, "reason", res.Reason)
		case Failed:
			log.FailedCount++
			slog.Warn("Sync record failed", "source_id", src.ID, "row", i+1,
				"card", recordCard(rec), "reason", res.Reason)
		}
	}

	log.Metadata["skipped"] = skippedCount
	log.Metadata["created"] = created
	log.Metadata["updated"] = log.ImportedCount - created

	return r.finish(ctx, src, log, runErr)
}

// finish closes the log and stamps the source's last-sync fields in one transaction.
// It runs detached from ctx so a cancelled fetch still leaves a closed log.
func (r *Runner) finish(ctx context.Context, src source.Source, log source.ImportLog, runErr error) (source.ImportLog, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()

	completedAt := r.now()
	log.CompletedAt = &completedAt

	var message string
	switch {
	case runErr != nil:
		log.Status = source.LogStatusFailed
		message = runErr.Error()
		log.ErrorMessage = &message
	case log.FailedCount == 0:
		log.Status = source.LogStatusCompleted
		message = fmt.Sprintf("imported %d of %d records", log.ImportedCount, log.TotalCount)
	default:
		log.Status = source.LogStatusPartial
		message = fmt.Sprintf("imported %d of %d records, %d failed", log.ImportedCount, log.TotalCount, log.FailedCount)
	}

	err := database.Retry(ctx, r.retry, func(ctx context.Context) error {
		return r.tx(ctx, func(ctx context.Context) error {
			if err := r.logs.Complete(ctx, log); err != nil {
				return err
			}
			return r.sources.RecordSync(ctx, src.ID, completedAt, string(log.Status), message)
		})
	})
	if err != nil {
		return log, fmt.Errorf("failed to close import log %s: %w", log.ID, err)
	}

	slog.Info("Sync run finished",
		"source_id", src.ID,
		"status", log.Status,
		"total", log.TotalCount,
		"imported", log.ImportedCount,
		"failed", log.FailedCount,
		"duration", completedAt.Sub(log.StartedAt),
	)
	return log, nil
}

func recordCard(rec parser.Record) string {
	if c := rec[FieldCardNo]; c != "" {
		return c
	}
	return rec[FieldAttendanceCard]
}
