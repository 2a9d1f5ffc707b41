package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/employee"
	"golang.org/x/sync/errgroup"
)

type AttendanceServiceImpl struct {
	employees   employee.EmployeeRepository
	assignments employee.AssignmentRepository
	attendance  attendance.AttendanceRepository
	remote      attendance.RemoteSource
	loc         *time.Location
	now         func() time.Time
}

func NewReconciliationService(
	employees employee.EmployeeRepository,
	assignments employee.AssignmentRepository,
	attendanceRepo attendance.AttendanceRepository,
	remote attendance.RemoteSource,
	loc *time.Location,
) attendance.ReconciliationService {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceServiceImpl{
		employees:   employees,
		assignments: assignments,
		attendance:  attendanceRepo,
		remote:      remote,
		loc:         loc,
		now:         time.Now,
	}
}

// Reconcile implements attendance.ReconciliationService. The calendar date of
// day is taken as-is; a zero day means today.
func (s *AttendanceServiceImpl) Reconcile(ctx context.Context, employeeID string, day time.Time) (attendance.DecisionResponse, error) {
	e, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return attendance.DecisionResponse{}, err
	}

	if day.IsZero() {
		day = attendance.SelectorToday.Day(s.now(), s.loc)
	} else {
		day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.loc)
	}
	decisions, _, err := s.decide(ctx, day, []employee.Employee{e}, true)
	if err != nil {
		return attendance.DecisionResponse{}, err
	}
	return attendance.NewDecisionResponse(decisions[0]), nil
}

// TodaySnapshot implements attendance.ReconciliationService.
func (s *AttendanceServiceImpl) TodaySnapshot(ctx context.Context) (attendance.DashboardResponse, error) {
	employees, err := s.employees.ListActive(ctx)
	if err != nil {
		return attendance.DashboardResponse{}, fmt.Errorf("failed to list active employees: %w", err)
	}

	day := attendance.SelectorToday.Day(s.now(), s.loc)
	decisions, remoteAvailable, err := s.decide(ctx, day, employees, false)
	if err != nil {
		return attendance.DashboardResponse{}, err
	}
	return attendance.NewDashboardResponse(day, remoteAvailable, decisions), nil
}

// ManagerDashboard implements attendance.ReconciliationService.
func (s *AttendanceServiceImpl) ManagerDashboard(ctx context.Context, managerID string, selector attendance.DaySelector) (attendance.DashboardResponse, error) {
	assignments, err := s.assignments.ListByManager(ctx, managerID)
	if err != nil {
		return attendance.DashboardResponse{}, fmt.Errorf("failed to list manager assignments: %w", err)
	}
	if len(assignments) == 0 {
		return attendance.DashboardResponse{}, employee.ErrNotAManager
	}

	active, err := s.employees.ListActive(ctx)
	if err != nil {
		return attendance.DashboardResponse{}, fmt.Errorf("failed to list active employees: %w", err)
	}

	scoped := make([]employee.Employee, 0, len(active))
	for _, e := range active {
		if employee.InManagerScope(managerID, assignments, e) {
			scoped = append(scoped, e)
		}
	}

	day := selector.Day(s.now(), s.loc)
	decisions, remoteAvailable, err := s.decide(ctx, day, scoped, true)
	if err != nil {
		return attendance.DashboardResponse{}, err
	}

	slog.Debug("Manager dashboard built", "manager_id", managerID, "day", day.Format("2006-01-02"), "employees", len(scoped))
	return attendance.NewDashboardResponse(day, remoteAvailable, decisions), nil
}

// decide loads local records and warehouse rows for day concurrently, then
// merges them per employee. A warehouse failure degrades to local-only. Without
// filterCards the warehouse returns the whole day, which suits the all-employee snapshot.
func (s *AttendanceServiceImpl) decide(ctx context.Context, day time.Time, employees []employee.Employee, filterCards bool) ([]attendance.Decision, bool, error) {
	if len(employees) == 0 {
		return []attendance.Decision{}, s.remote.Available(), nil
	}

	ids := make([]string, 0, len(employees))
	var cards []string
	for _, e := range employees {
		ids = append(ids, e.ID)
		if card := employee.NormalizeCardNumber(e.CardNumber); filterCards && card != "" {
			cards = append(cards, card)
		}
	}

	var (
		local           = map[string]attendance.Record{}
		remote          = map[string]attendance.RemoteRow{}
		remoteAvailable = s.remote.Available()
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		records, err := s.attendance.ListByDate(gctx, day, ids)
		if err != nil {
			return fmt.Errorf("failed to list attendance for %s: %w", day.Format("2006-01-02"), err)
		}
		for _, r := range records {
			local[r.EmployeeID] = r
		}
		return nil
	})

	if remoteAvailable {
		g.Go(func() error {
			rows, err := s.remote.RowsForDate(gctx, day, cards)
			if err != nil {
				slog.Warn("Warehouse query failed, using local attendance only", "day", day.Format("2006-01-02"), "error", err)
				remoteAvailable = false
				return nil
			}
			for _, row := range rows {
				card := employee.NormalizeCardNumber(row.CardNumber)
				if _, seen := remote[card]; card != "" && !seen {
					remote[card] = row
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	decisions := make([]attendance.Decision, 0, len(employees))
	for _, e := range employees {
		var (
			l *attendance.Record
			r *attendance.RemoteRow
		)
		if rec, ok := local[e.ID]; ok {
			l = &rec
		}
		if row, ok := remote[employee.NormalizeCardNumber(e.CardNumber)]; ok {
			r = &row
		}
		decisions = append(decisions, Decide(e, l, r, day))
	}
	return decisions, remoteAvailable, nil
}
