package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for local attendance records.
type AttendanceRepository interface {
	// Upsert creates or updates the (employee, day) row and reports whether it was created.
	Upsert(ctx context.Context, record Record) (Record, bool, error)

	// GetByEmployeeAndDate returns nil when the employee has no row for the day.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Record, error)

	// ListByDate returns the rows for the given employees on one day.
	ListByDate(ctx context.Context, date time.Time, employeeIDs []string) ([]Record, error)

	Count(ctx context.Context) (int64, error)
}

// RemoteSource is the warehouse query: rows for a date, optionally filtered by card numbers.
type RemoteSource interface {
	Available() bool
	RowsForDate(ctx context.Context, date time.Time, cardNumbers []string) ([]RemoteRow, error)
}
