package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/source"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/storage"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/validator"
	"github.com/cmlabs-hris/workforce-sync-go/internal/service/datasync"
	"github.com/google/uuid"
)

// Syncer is the scheduler surface the registry drives.
type Syncer interface {
	RefreshSchedules(ctx context.Context) error
	Unschedule(sourceID string)
	TriggerManualSync(ctx context.Context, sourceID string) error
}

// Prober performs a dry fetch and parse.
type Prober interface {
	Probe(ctx context.Context, src source.Source) (datasync.Probe, error)
}

type SourceServiceImpl struct {
	sourceRepo source.SourceRepository
	logRepo    source.ImportLogRepository
	files      storage.FileStorage
	syncer     Syncer
	prober     Prober
	now        func() time.Time
}

func NewSourceService(
	sourceRepo source.SourceRepository,
	logRepo source.ImportLogRepository,
	files storage.FileStorage,
	syncer Syncer,
	prober Prober,
) source.SourceService {
	return &SourceServiceImpl{
		sourceRepo: sourceRepo,
		logRepo:    logRepo,
		files:      files,
		syncer:     syncer,
		prober:     prober,
		now:        time.Now,
	}
}

// Create implements source.SourceService.
func (s *SourceServiceImpl) Create(ctx context.Context, req source.CreateSourceRequest) (source.SourceResponse, error) {
	if err := req.Validate(); err != nil {
		return source.SourceResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return source.SourceResponse{}, fmt.Errorf("failed to generate source id: %w", err)
	}

	created, err := s.sourceRepo.Create(ctx, source.Source{
		ID:              id.String(),
		Name:            strings.TrimSpace(req.Name),
		Kind:            req.Kind,
		URL:             strings.TrimSpace(req.URL),
		Method:          normalizeMethod(req.Method),
		Headers:         req.Headers,
		OAuth:           req.OAuth,
		SyncEnabled:     req.SyncEnabled,
		IntervalHours:   req.IntervalHours,
		IntervalMinutes: req.IntervalMinutes,
		Status:          source.StatusDraft,
	})
	if err != nil {
		return source.SourceResponse{}, err
	}

	slog.Info("Source created", "source_id", created.ID, "name", created.Name, "kind", created.Kind)
	s.refresh(ctx)
	return source.NewSourceResponse(created), nil
}

// Get implements source.SourceService.
func (s *SourceServiceImpl) Get(ctx context.Context, id string) (source.SourceResponse, error) {
	src, err := s.sourceRepo.GetByID(ctx, id)
	if err != nil {
		return source.SourceResponse{}, err
	}
	return source.NewSourceResponse(src), nil
}

// List implements source.SourceService.
func (s *SourceServiceImpl) List(ctx context.Context) ([]source.SourceResponse, error) {
	sources, err := s.sourceRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]source.SourceResponse, 0, len(sources))
	for _, src := range sources {
		responses = append(responses, source.NewSourceResponse(src))
	}
	return responses, nil
}

// Update implements source.SourceService.
func (s *SourceServiceImpl) Update(ctx context.Context, req source.UpdateSourceRequest) (source.SourceResponse, error) {
	if err := req.Validate(); err != nil {
		return source.SourceResponse{}, err
	}

	src, err := s.sourceRepo.GetByID(ctx, req.ID)
	if err != nil {
		return source.SourceResponse{}, err
	}

	if req.Name != nil {
		src.Name = strings.TrimSpace(*req.Name)
	}
	if req.URL != nil {
		src.URL = strings.TrimSpace(*req.URL)
	}
	if req.Method != nil {
		src.Method = normalizeMethod(*req.Method)
	}
	if req.Headers != nil {
		src.Headers = *req.Headers
	}
	if req.OAuth != nil {
		src.OAuth = req.OAuth
	}
	if req.SyncEnabled != nil {
		src.SyncEnabled = *req.SyncEnabled
	}
	if req.IntervalHours != nil {
		src.IntervalHours = *req.IntervalHours
	}
	if req.IntervalMinutes != nil {
		src.IntervalMinutes = *req.IntervalMinutes
	}
	if req.Status != nil {
		src.Status = *req.Status
	}

	if src.Kind == source.KindAPI && src.URL == "" {
		return source.SourceResponse{}, validator.ValidationErrors{{Field: "url", Message: "url is required for api sources"}}
	}

	if err := s.sourceRepo.Update(ctx, src); err != nil {
		return source.SourceResponse{}, err
	}

	updated, err := s.sourceRepo.GetByID(ctx, src.ID)
	if err != nil {
		return source.SourceResponse{}, err
	}

	slog.Info("Source updated", "source_id", updated.ID, "status", updated.Status, "sync_enabled", updated.SyncEnabled)
	s.refresh(ctx)
	return source.NewSourceResponse(updated), nil
}

// Delete implements source.SourceService.
func (s *SourceServiceImpl) Delete(ctx context.Context, id string) error {
	src, err := s.sourceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.sourceRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.syncer.Unschedule(id)
	if src.IsLocal() && s.files != nil {
		if err := s.files.Delete(ctx, *src.FilePath); err != nil {
			slog.Warn("Failed to delete uploaded source file", "source_id", id, "path", *src.FilePath, "error", err)
		}
	}

	slog.Info("Source deleted", "source_id", id)
	s.refresh(ctx)
	return nil
}

// Test implements source.SourceService.
func (s *SourceServiceImpl) Test(ctx context.Context, id string) (source.TestResult, error) {
	src, err := s.sourceRepo.GetByID(ctx, id)
	if err != nil {
		return source.TestResult{}, err
	}

	result := source.TestResult{SourceID: src.ID, Status: src.Status}
	testedAt := s.now()

	var probe datasync.Probe
	if !src.IsLocal() && src.URL == "" {
		err = source.ErrNoTransport
	} else {
		probe, err = s.prober.Probe(ctx, src)
	}

	if err != nil {
		result.Message = err.Error()
		if recErr := s.sourceRepo.RecordTest(ctx, src.ID, testedAt, "failed", result.Message, nil); recErr != nil {
			return source.TestResult{}, recErr
		}
		slog.Warn("Source test failed", "source_id", src.ID, "error", err)
		return result, nil
	}

	result.Success = true
	result.DataType = string(probe.DataType)
	result.RecordCount = probe.RecordCount
	result.Message = fmt.Sprintf("fetched %d %s records", probe.RecordCount, probe.DataType)

	var newStatus *source.Status
	if src.Status == source.StatusDraft {
		tested := source.StatusTested
		newStatus = &tested
		result.Status = tested
	}
	if err := s.sourceRepo.RecordTest(ctx, src.ID, testedAt, "success", result.Message, newStatus); err != nil {
		return source.TestResult{}, err
	}

	slog.Info("Source test succeeded", "source_id", src.ID, "data_type", probe.DataType, "records", probe.RecordCount)
	return result, nil
}

// TriggerSync implements source.SourceService.
func (s *SourceServiceImpl) TriggerSync(ctx context.Context, id string) error {
	src, err := s.sourceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !src.IsLocal() && src.URL == "" {
		return source.ErrNoTransport
	}
	return s.syncer.TriggerManualSync(ctx, id)
}

// AttachFile implements source.SourceService.
func (s *SourceServiceImpl) AttachFile(ctx context.Context, id string, filename string, file io.Reader) (source.SourceResponse, error) {
	if !storage.HasAllowedExt(filename, storage.AllowedSourceExts) {
		return source.SourceResponse{}, validator.ValidationErrors{{
			Field:   "file",
			Message: "file must be one of " + strings.Join(storage.AllowedSourceExts, ", "),
		}}
	}

	src, err := s.sourceRepo.GetByID(ctx, id)
	if err != nil {
		return source.SourceResponse{}, err
	}

	key, err := s.files.Upload(ctx, file, storage.SourceFileKey(src.ID, filename))
	if err != nil {
		return source.SourceResponse{}, fmt.Errorf("failed to store source file: %w", err)
	}

	previous := src.FilePath
	src.FilePath = &key
	if err := s.sourceRepo.Update(ctx, src); err != nil {
		return source.SourceResponse{}, err
	}
	if previous != nil && *previous != key {
		if err := s.files.Delete(ctx, *previous); err != nil {
			slog.Warn("Failed to delete replaced source file", "source_id", id, "path", *previous, "error", err)
		}
	}

	updated, err := s.sourceRepo.GetByID(ctx, id)
	if err != nil {
		return source.SourceResponse{}, err
	}

	slog.Info("Source file attached", "source_id", id, "path", key)
	s.refresh(ctx)
	return source.NewSourceResponse(updated), nil
}

// ListImportLogs implements source.SourceService.
func (s *SourceServiceImpl) ListImportLogs(ctx context.Context, limit int) ([]source.ImportLogResponse, error) {
	logs, err := s.logRepo.List(ctx, source.ClampLogLimit(limit))
	if err != nil {
		return nil, err
	}
	responses := make([]source.ImportLogResponse, 0, len(logs))
	for _, l := range logs {
		responses = append(responses, source.NewImportLogResponse(l))
	}
	return responses, nil
}

// ClearImportLogs implements source.SourceService.
func (s *SourceServiceImpl) ClearImportLogs(ctx context.Context) (int64, error) {
	deleted, err := s.logRepo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	slog.Info("Import logs cleared", "deleted", deleted)
	return deleted, nil
}

// refresh reconciles timers after a mutation. Failures are logged; the next
// refresh or timer tick corrects the schedule.
func (s *SourceServiceImpl) refresh(ctx context.Context) {
	if err := s.syncer.RefreshSchedules(ctx); err != nil {
		slog.Error("Failed to refresh sync schedules", "error", err)
	}
}

func normalizeMethod(method string) string {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return "GET"
	}
	return method
}
