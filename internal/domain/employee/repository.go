package employee

import "context"

type EmployeeRepository interface {
	// Upsert creates or updates by card number in one statement and reports whether a row was created.
	Upsert(ctx context.Context, e Employee) (Employee, bool, error)
	GetByID(ctx context.Context, id string) (Employee, error)
	// GetByNormalizedCard returns nil when no employee carries the card.
	GetByNormalizedCard(ctx context.Context, normalizedCard string) (*Employee, error)
	ListActive(ctx context.Context) ([]Employee, error)
	Count(ctx context.Context) (int64, error)
}

type AssignmentRepository interface {
	ListByManager(ctx context.Context, managerID string) ([]ManagerAssignment, error)
}
