package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/source"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/crypto"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type sourceRepositoryImpl struct {
	db     *database.DB
	sealer *crypto.Sealer
}

func NewSourceRepository(db *database.DB, sealer *crypto.Sealer) source.SourceRepository {
	return &sourceRepositoryImpl{db: db, sealer: sealer}
}

const sourceColumns = `
	id, name, kind, url, file_path, method, headers_sealed, oauth_sealed, sync_enabled,
	interval_hours, interval_minutes, status, last_tested_at, last_test_status, last_test_message,
	last_sync_at, last_sync_status, last_sync_message, created_at, updated_at`

// Create implements source.SourceRepository.
func (r *sourceRepositoryImpl) Create(ctx context.Context, src source.Source) (source.Source, error) {
	q := GetQuerier(ctx, r.db)

	headers, oauth, err := r.seal(src)
	if err != nil {
		return source.Source{}, err
	}

	query := `
		INSERT INTO sync_sources (
			id, name, kind, url, file_path, method, headers_sealed, oauth_sealed,
			sync_enabled, interval_hours, interval_minutes, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + sourceColumns

	created, err := r.scan(q.QueryRow(ctx, query,
		src.ID, src.Name, src.Kind, src.URL, src.FilePath, src.Method, headers, oauth,
		src.SyncEnabled, src.IntervalHours, src.IntervalMinutes, src.Status,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return source.Source{}, source.ErrSourceNameExists
		}
		return source.Source{}, fmt.Errorf("failed to create source: %w", err)
	}
	return created, nil
}

// GetByID implements source.SourceRepository.
func (r *sourceRepositoryImpl) GetByID(ctx context.Context, id string) (source.Source, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + sourceColumns + ` FROM sync_sources WHERE id = $1`

	src, err := r.scan(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return source.Source{}, source.ErrSourceNotFound
		}
		return source.Source{}, fmt.Errorf("failed to get source with id %s: %w", id, err)
	}
	return src, nil
}

// List implements source.SourceRepository.
func (r *sourceRepositoryImpl) List(ctx context.Context) ([]source.Source, error) {
	return r.list(ctx, `SELECT `+sourceColumns+` FROM sync_sources ORDER BY created_at`)
}

// ListSchedulable implements source.SourceRepository.
func (r *sourceRepositoryImpl) ListSchedulable(ctx context.Context) ([]source.Source, error) {
	return r.list(ctx, `SELECT `+sourceColumns+` FROM sync_sources WHERE sync_enabled = TRUE AND status = $1 ORDER BY created_at`, source.StatusActive)
}

func (r *sourceRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]source.Source, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	sources := []source.Source{}
	for rows.Next() {
		src, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sources, nil
}

// Update implements source.SourceRepository.
func (r *sourceRepositoryImpl) Update(ctx context.Context, src source.Source) error {
	q := GetQuerier(ctx, r.db)

	headers, oauth, err := r.seal(src)
	if err != nil {
		return err
	}

	query := `
		UPDATE sync_sources
		SET name = $1, kind = $2, url = $3, file_path = $4, method = $5, headers_sealed = $6,
			oauth_sealed = $7, sync_enabled = $8, interval_hours = $9, interval_minutes = $10,
			status = $11, updated_at = NOW()
		WHERE id = $12
	`

	tag, err := q.Exec(ctx, query,
		src.Name, src.Kind, src.URL, src.FilePath, src.Method, headers,
		oauth, src.SyncEnabled, src.IntervalHours, src.IntervalMinutes,
		src.Status, src.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return source.ErrSourceNameExists
		}
		return fmt.Errorf("failed to update source with id %s: %w", src.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return source.ErrSourceNotFound
	}
	return nil
}

// Delete implements source.SourceRepository.
func (r *sourceRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM sync_sources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete source with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return source.ErrSourceNotFound
	}
	return nil
}

// RecordTest implements source.SourceRepository.
func (r *sourceRepositoryImpl) RecordTest(ctx context.Context, id string, at time.Time, status string, message string, newStatus *source.Status) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE sync_sources
		SET last_tested_at = $1, last_test_status = $2, last_test_message = $3,
			status = COALESCE($4, status), updated_at = NOW()
		WHERE id = $5
	`

	tag, err := q.Exec(ctx, query, at, status, message, newStatus, id)
	if err != nil {
		return fmt.Errorf("failed to record test for source %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return source.ErrSourceNotFound
	}
	return nil
}

// RecordSync implements source.SourceRepository.
func (r *sourceRepositoryImpl) RecordSync(ctx context.Context, id string, at time.Time, status string, message string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE sync_sources
		SET last_sync_at = $1, last_sync_status = $2, last_sync_message = $3
		WHERE id = $4
	`

	if _, err := q.Exec(ctx, query, at, status, message, id); err != nil {
		return fmt.Errorf("failed to record sync for source %s: %w", id, err)
	}
	// A source deleted mid-run leaves nothing to update.
	return nil
}

func (r *sourceRepositoryImpl) seal(src source.Source) (headers []byte, oauth []byte, err error) {
	if len(src.Headers) > 0 {
		raw, err := json.Marshal(src.Headers)
		if err != nil {
			return nil, nil, err
		}
		if headers, err = r.sealer.Seal(raw); err != nil {
			return nil, nil, fmt.Errorf("failed to seal source headers: %w", err)
		}
	}
	if src.OAuth != nil {
		raw, err := json.Marshal(src.OAuth)
		if err != nil {
			return nil, nil, err
		}
		if oauth, err = r.sealer.Seal(raw); err != nil {
			return nil, nil, fmt.Errorf("failed to seal source oauth config: %w", err)
		}
	}
	return headers, oauth, nil
}

func (r *sourceRepositoryImpl) scan(row pgx.Row) (source.Source, error) {
	var (
		src     source.Source
		headers []byte
		oauth   []byte
	)
	err := row.Scan(
		&src.ID, &src.Name, &src.Kind, &src.URL, &src.FilePath, &src.Method, &headers, &oauth,
		&src.SyncEnabled, &src.IntervalHours, &src.IntervalMinutes, &src.Status,
		&src.LastTestedAt, &src.LastTestStatus, &src.LastTestMessage,
		&src.LastSyncAt, &src.LastSyncStatus, &src.LastSyncMessage,
		&src.CreatedAt, &src.UpdatedAt,
	)
	if err != nil {
		return source.Source{}, err
	}

	if len(headers) > 0 {
		raw, err := r.sealer.Open(headers)
		if err != nil {
			return source.Source{}, fmt.Errorf("failed to open headers of source %s: %w", src.ID, err)
		}
		if err := json.Unmarshal(raw, &src.Headers); err != nil {
			return source.Source{}, err
		}
	}
	if len(oauth) > 0 {
		raw, err := r.sealer.Open(oauth)
		if err != nil {
			return source.Source{}, fmt.Errorf("failed to open oauth config of source %s: %w", src.ID, err)
		}
		src.OAuth = &source.OAuthConfig{}
		if err := json.Unmarshal(raw, src.OAuth); err != nil {
			return source.Source{}, err
		}
	}
	return src, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
