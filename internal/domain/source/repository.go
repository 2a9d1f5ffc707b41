package source

import (
	"context"
	"time"
)

type SourceRepository interface {
	Create(ctx context.Context, src Source) (Source, error)
	GetByID(ctx context.Context, id string) (Source, error)
	List(ctx context.Context) ([]Source, error)
	ListSchedulable(ctx context.Context) ([]Source, error)
	Update(ctx context.Context, src Source) error
	Delete(ctx context.Context, id string) error
	RecordTest(ctx context.Context, id string, at time.Time, status string, message string, newStatus *Status) error
	RecordSync(ctx context.Context, id string, at time.Time, status string, message string) error
}

type ImportLogRepository interface {
	Create(ctx context.Context, log ImportLog) (ImportLog, error)
	Complete(ctx context.Context, log ImportLog) error
	List(ctx context.Context, limit int) ([]ImportLog, error)
	DeleteAll(ctx context.Context) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
