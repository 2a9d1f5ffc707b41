package attendance

import (
	"context"
	"time"
)

// ReconciliationService merges local and remote attendance into one decision per employee per day.
type ReconciliationService interface {
	// Reconcile decides presence for a single employee on the calendar date of day.
	Reconcile(ctx context.Context, employeeID string, day time.Time) (DecisionResponse, error)

	// TodaySnapshot covers every active employee for the current day.
	TodaySnapshot(ctx context.Context) (DashboardResponse, error)

	// ManagerDashboard covers the manager's scoped employees for the selected day.
	ManagerDashboard(ctx context.Context, managerID string, selector DaySelector) (DashboardResponse, error)
}
