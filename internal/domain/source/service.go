package source

import (
	"context"
	"io"
)

// SourceService is the registry API consumed by the HTTP layer and the CLI.
// Every mutation reschedules the affected timers.
type SourceService interface {
	Create(ctx context.Context, req CreateSourceRequest) (SourceResponse, error)
	Get(ctx context.Context, id string) (SourceResponse, error)
	List(ctx context.Context) ([]SourceResponse, error)
	Update(ctx context.Context, req UpdateSourceRequest) (SourceResponse, error)
	Delete(ctx context.Context, id string) error

	// Test fetches and parses the source without writing any records.
	Test(ctx context.Context, id string) (TestResult, error)

	// TriggerSync starts a sync run in the background and returns immediately.
	TriggerSync(ctx context.Context, id string) error

	// AttachFile stores an uploaded payload and points the source at it.
	AttachFile(ctx context.Context, id string, filename string, file io.Reader) (SourceResponse, error)

	ListImportLogs(ctx context.Context, limit int) ([]ImportLogResponse, error)
	ClearImportLogs(ctx context.Context) (int64, error)
}
