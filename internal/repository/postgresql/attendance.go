package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

const attendanceColumns = `
	id, employee_id, date, check_in, check_out, status, device_id, metadata, created_at, updated_at`

// Upsert implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Upsert(ctx context.Context, record attendance.Record) (attendance.Record, bool, error) {
	q := GetQuerier(ctx, r.db)

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Record{}, false, err
	}
	metadata := record.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}

	query := `
		INSERT INTO attendances (id, employee_id, date, check_in, check_out, status, device_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			check_in = EXCLUDED.check_in,
			check_out = EXCLUDED.check_out,
			status = EXCLUDED.status,
			device_id = EXCLUDED.device_id,
			metadata = EXCLUDED.metadata,
			updated_at = NOW()
		RETURNING ` + attendanceColumns + `, (xmax = 0) AS inserted
	`

	var (
		saved    attendance.Record
		inserted bool
	)
	err = q.QueryRow(ctx, query,
		id.String(), record.EmployeeID, dateOnly(record.Date), record.CheckIn, record.CheckOut,
		record.Status, record.DeviceID, metadata,
	).Scan(append(attendanceDest(&saved), &inserted)...)
	if err != nil {
		return attendance.Record{}, false, fmt.Errorf("failed to upsert attendance for employee %s: %w", record.EmployeeID, err)
	}
	return saved, inserted, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE employee_id = $1 AND date = $2`

	var rec attendance.Record
	if err := q.QueryRow(ctx, query, employeeID, dateOnly(date)).Scan(attendanceDest(&rec)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance for employee %s: %w", employeeID, err)
	}
	return &rec, nil
}

// ListByDate implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListByDate(ctx context.Context, date time.Time, employeeIDs []string) ([]attendance.Record, error) {
	records := []attendance.Record{}
	if len(employeeIDs) == 0 {
		return records, nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE date = $1 AND employee_id = ANY($2::uuid[])
	`

	rows, err := q.Query(ctx, query, dateOnly(date), employeeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance for %s: %w", date.Format("2006-01-02"), err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec attendance.Record
		if err := rows.Scan(attendanceDest(&rec)...); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Count implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Count(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var count int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM attendances`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count attendance records: %w", err)
	}
	return count, nil
}

func attendanceDest(rec *attendance.Record) []interface{} {
	return []interface{}{
		&rec.ID, &rec.EmployeeID, &rec.Date, &rec.CheckIn, &rec.CheckOut,
		&rec.Status, &rec.DeviceID, &rec.Metadata, &rec.CreatedAt, &rec.UpdatedAt,
	}
}

// dateOnly drops the clock and zone so the DATE column stores the calendar day the caller meant.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
