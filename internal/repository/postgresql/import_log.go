package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/source"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/database"
)

type importLogRepositoryImpl struct {
	db *database.DB
}

func NewImportLogRepository(db *database.DB) source.ImportLogRepository {
	return &importLogRepositoryImpl{db: db}
}

// Create implements source.ImportLogRepository.
func (r *importLogRepositoryImpl) Create(ctx context.Context, log source.ImportLog) (source.ImportLog, error) {
	q := GetQuerier(ctx, r.db)

	metadata := log.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	query := `
		INSERT INTO import_logs (
			id, source_id, source_name, source_url, status, total_count, imported_count,
			failed_count, started_at, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := q.Exec(ctx, query,
		log.ID, log.SourceID, log.SourceName, log.SourceURL, log.Status, log.TotalCount, log.ImportedCount,
		log.FailedCount, log.StartedAt, metadata,
	)
	if err != nil {
		return source.ImportLog{}, fmt.Errorf("failed to create import log: %w", err)
	}
	log.Metadata = metadata
	return log, nil
}

// Complete implements source.ImportLogRepository.
func (r *importLogRepositoryImpl) Complete(ctx context.Context, log source.ImportLog) error {
	q := GetQuerier(ctx, r.db)

	metadata := log.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	query := `
		UPDATE import_logs
		SET status = $1, total_count = $2, imported_count = $3, failed_count = $4,
			completed_at = $5, error_message = $6, metadata = $7
		WHERE id = $8 AND status = $9
	`

	tag, err := q.Exec(ctx, query,
		log.Status, log.TotalCount, log.ImportedCount, log.FailedCount,
		log.CompletedAt, log.ErrorMessage, metadata,
		log.ID, source.LogStatusInProgress,
	)
	if err != nil {
		return fmt.Errorf("failed to complete import log %s: %w", log.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return source.ErrImportLogNotFound
	}
	return nil
}

// List implements source.ImportLogRepository.
func (r *importLogRepositoryImpl) List(ctx context.Context, limit int) ([]source.ImportLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, COALESCE(source_id::text, ''), source_name, source_url, status, total_count,
			imported_count, failed_count, started_at, completed_at, error_message, metadata
		FROM import_logs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list import logs: %w", err)
	}
	defer rows.Close()

	logs := []source.ImportLog{}
	for rows.Next() {
		var l source.ImportLog
		if err := rows.Scan(
			&l.ID, &l.SourceID, &l.SourceName, &l.SourceURL, &l.Status, &l.TotalCount,
			&l.ImportedCount, &l.FailedCount, &l.StartedAt, &l.CompletedAt, &l.ErrorMessage, &l.Metadata,
		); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

// DeleteAll implements source.ImportLogRepository.
func (r *importLogRepositoryImpl) DeleteAll(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM import_logs`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear import logs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteOlderThan implements source.ImportLogRepository.
func (r *importLogRepositoryImpl) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM import_logs WHERE started_at < $1 AND status <> $2`

	tag, err := q.Exec(ctx, query, cutoff, source.LogStatusInProgress)
	if err != nil {
		return 0, fmt.Errorf("failed to prune import logs: %w", err)
	}
	return tag.RowsAffected(), nil
}
