package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-sync-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	available bool
	rows      map[string][]attendance.RemoteRow
	err       error
	queried   []time.Time
	cards     [][]string
}

func (f *fakeRemote) Available() bool { return f.available }

func (f *fakeRemote) RowsForDate(ctx context.Context, date time.Time, cards []string) ([]attendance.RemoteRow, error) {
	f.queried = append(f.queried, date)
	f.cards = append(f.cards, cards)
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[date.Format("2006-01-02")], nil
}

type fixture struct {
	employees   *memory.EmployeeRepository
	assignments *memory.AssignmentRepository
	attendance  *memory.AttendanceRepository
	remote      *fakeRemote
	svc         *AttendanceServiceImpl
	now         time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		employees:   memory.NewEmployeeRepository(),
		assignments: &memory.AssignmentRepository{},
		attendance:  memory.NewAttendanceRepository(),
		remote:      &fakeRemote{available: true, rows: map[string][]attendance.RemoteRow{}},
		now:         time.Date(2025, 12, 5, 14, 0, 0, 0, time.UTC),
	}
	f.svc = NewReconciliationService(f.employees, f.assignments, f.attendance, f.remote, time.UTC).(*AttendanceServiceImpl)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) addEmployee(t *testing.T, card, name string, dept, desg, unit *string) employee.Employee {
	t.Helper()
	first, last := employee.SplitName(name)
	e, _, err := f.employees.Upsert(context.Background(), employee.Employee{
		CardNumber:    card,
		FirstName:     first,
		LastName:      last,
		DepartmentID:  dept,
		DesignationID: desg,
		OrgUnitID:     unit,
	})
	require.NoError(t, err)
	return e
}

func ptr(s string) *string { return &s }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDecide_LocalWinsVerbatim(t *testing.T) {
	e := employee.Employee{ID: "e1", CardNumber: "42", FirstName: "Asha"}
	local := &attendance.Record{EmployeeID: "e1", Status: attendance.StatusAbsent}
	remote := &attendance.RemoteRow{CardNumber: "0042", Present: true, TIn: "09:00"}

	d := Decide(e, local, remote, day(2025, 12, 5))

	assert.Equal(t, attendance.Absent, d.Status)
	assert.Equal(t, attendance.OriginLocal, d.Source)
	assert.Nil(t, d.CheckIn)
	assert.Nil(t, d.CheckOut)
}

func TestDecide_LocalCheckInMeansPresent(t *testing.T) {
	in := time.Date(2025, 12, 5, 9, 5, 0, 0, time.UTC)
	local := &attendance.Record{Status: attendance.StatusLate, CheckIn: &in}

	d := Decide(employee.Employee{ID: "e1"}, local, nil, day(2025, 12, 5))

	assert.Equal(t, attendance.Present, d.Status)
	assert.Equal(t, &in, d.CheckIn)
}

func TestDecide_RemoteFallback(t *testing.T) {
	target := day(2025, 12, 4)

	tests := []struct {
		name       string
		row        attendance.RemoteRow
		wantStatus attendance.Presence
		wantIn     *time.Time
		wantOut    *time.Time
	}{
		{
			name:       "presence flag",
			row:        attendance.RemoteRow{Present: true},
			wantStatus: attendance.Present,
		},
		{
			name:       "status contains present",
			row:        attendance.RemoteRow{Status: "Half Day Present"},
			wantStatus: attendance.Present,
		},
		{
			name:       "status P",
			row:        attendance.RemoteRow{Status: " p "},
			wantStatus: attendance.Present,
		},
		{
			name:       "actual punch anchored to target day",
			row:        attendance.RemoteRow{TIn: "08:45", TOut: "17:30:10", ResultTIn: "09:00:00"},
			wantStatus: attendance.Present,
			wantIn:     timePtr(time.Date(2025, 12, 4, 8, 45, 0, 0, time.UTC)),
			wantOut:    timePtr(time.Date(2025, 12, 4, 17, 30, 10, 0, time.UTC)),
		},
		{
			name:       "default shift start suppressed",
			row:        attendance.RemoteRow{ResultTIn: "05:30:00", Status: "A"},
			wantStatus: attendance.Absent,
		},
		{
			name:       "shift default used when not placeholder",
			row:        attendance.RemoteRow{ResultTIn: "09:00:00", ResultTOut: "18:00:00", Status: "Absent"},
			wantStatus: attendance.Absent,
			wantIn:     timePtr(time.Date(2025, 12, 4, 9, 0, 0, 0, time.UTC)),
			wantOut:    timePtr(time.Date(2025, 12, 4, 18, 0, 0, 0, time.UTC)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := tt.row
			d := Decide(employee.Employee{ID: "e1"}, nil, &row, target)

			assert.Equal(t, attendance.OriginRemote, d.Source)
			assert.Equal(t, tt.wantStatus, d.Status)
			assert.Equal(t, tt.wantIn, d.CheckIn)
			assert.Equal(t, tt.wantOut, d.CheckOut)
		})
	}
}

func TestDecide_NoData(t *testing.T) {
	d := Decide(employee.Employee{ID: "e1"}, nil, nil, day(2025, 12, 5))
	assert.Equal(t, attendance.Absent, d.Status)
	assert.Equal(t, attendance.OriginNone, d.Source)
}

func timePtr(t time.Time) *time.Time { return &t }

func TestTodaySnapshot_JoinsOnNormalizedCard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	withLocal := f.addEmployee(t, "7", "Ravi Kumar", nil, nil, nil)
	f.addEmployee(t, "42", "Asha Rao", nil, nil, nil)
	f.addEmployee(t, "99", "Nobody Here", nil, nil, nil)

	in := time.Date(2025, 12, 5, 9, 0, 0, 0, time.UTC)
	_, _, err := f.attendance.Upsert(ctx, attendance.Record{
		EmployeeID: withLocal.ID, Date: day(2025, 12, 5), CheckIn: &in, Status: attendance.StatusPresent,
	})
	require.NoError(t, err)

	f.remote.rows["2025-12-05"] = []attendance.RemoteRow{
		{CardNumber: "0042", TIn: "10:15"},
		{CardNumber: "007", Status: "ABSENT"},
	}

	resp, err := f.svc.TodaySnapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, "2025-12-05", resp.Date)
	assert.True(t, resp.RemoteAvailable)
	assert.Equal(t, attendance.Summary{Total: 3, Present: 2, Absent: 1, FromLocal: 1, FromRemote: 1}, resp.Summary)

	byCard := map[string]attendance.DecisionResponse{}
	for _, d := range resp.Employees {
		byCard[d.CardNumber] = d
	}
	assert.Equal(t, attendance.OriginLocal, byCard["7"].Source)
	assert.Equal(t, attendance.OriginRemote, byCard["42"].Source)
	require.NotNil(t, byCard["42"].CheckIn)
	assert.Equal(t, "2025-12-05 10:15:00", *byCard["42"].CheckIn)
	assert.Equal(t, attendance.OriginNone, byCard["99"].Source)
}

func TestTodaySnapshot_WarehouseDownFallsBackToLocal(t *testing.T) {
	f := newFixture(t)
	f.addEmployee(t, "42", "Asha Rao", nil, nil, nil)
	f.remote.err = errors.New("connection refused")

	resp, err := f.svc.TodaySnapshot(context.Background())
	require.NoError(t, err)

	assert.False(t, resp.RemoteAvailable)
	assert.Equal(t, 1, resp.Summary.Absent)
	assert.Equal(t, attendance.OriginNone, resp.Employees[0].Source)
}

func TestTodaySnapshot_ExitedEmployeesExcluded(t *testing.T) {
	f := newFixture(t)
	exit := day(2025, 1, 1)
	f.addEmployee(t, "1", "Active One", nil, nil, nil)
	_, _, err := f.employees.Upsert(context.Background(), employee.Employee{CardNumber: "2", FirstName: "Gone", ExitDate: &exit})
	require.NoError(t, err)

	resp, err := f.svc.TodaySnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Summary.Total)
}

func TestManagerDashboard_ScopeSemantics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	manager := f.addEmployee(t, "1", "Manager Self", ptr("ops"), nil, ptr("north"))
	andBlocked := f.addEmployee(t, "2", "Only Dept", ptr("hr"), nil, ptr("south"))
	orAllowed := f.addEmployee(t, "3", "Finance Person", ptr("fin"), nil, nil)
	f.addEmployee(t, "4", "Out Of Scope", ptr("it"), nil, nil)

	f.assignments.Rows = []employee.ManagerAssignment{
		{ManagerID: manager.ID, DepartmentID: ptr("hr"), OrgUnitID: ptr("west")},
		{ManagerID: manager.ID, DepartmentID: ptr("fin")},
		{ManagerID: manager.ID},
	}

	resp, err := f.svc.ManagerDashboard(ctx, manager.ID, attendance.SelectorToday)
	require.NoError(t, err)

	ids := []string{}
	for _, d := range resp.Employees {
		ids = append(ids, d.EmployeeID)
	}
	assert.ElementsMatch(t, []string{manager.ID, orAllowed.ID}, ids)
	assert.NotContains(t, ids, andBlocked.ID)
}

func TestManagerDashboard_LastDayAnchorsTimes(t *testing.T) {
	f := newFixture(t)
	manager := f.addEmployee(t, "1", "Manager Self", ptr("ops"), nil, nil)
	f.assignments.Rows = []employee.ManagerAssignment{{ManagerID: manager.ID, DepartmentID: ptr("ops")}}
	f.remote.rows["2025-12-04"] = []attendance.RemoteRow{{CardNumber: "01", TIn: "07:55", TOut: "16:10"}}

	resp, err := f.svc.ManagerDashboard(context.Background(), manager.ID, attendance.SelectorLastDay)
	require.NoError(t, err)

	assert.Equal(t, "2025-12-04", resp.Date)
	require.Len(t, resp.Employees, 1)
	require.NotNil(t, resp.Employees[0].CheckIn)
	assert.Equal(t, "2025-12-04 07:55:00", *resp.Employees[0].CheckIn)
	assert.Equal(t, "2025-12-04 16:10:00", *resp.Employees[0].CheckOut)
	require.Len(t, f.remote.queried, 1)
	assert.Equal(t, day(2025, 12, 4), f.remote.queried[0])
}

func TestManagerDashboard_NoAssignments(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ManagerDashboard(context.Background(), "someone", attendance.SelectorToday)
	assert.ErrorIs(t, err, employee.ErrNotAManager)
}

func TestReconcile_SingleEmployee(t *testing.T) {
	f := newFixture(t)
	f.remote.available = false
	e := f.addEmployee(t, "42", "Asha Rao", nil, nil, nil)

	_, _, err := f.attendance.Upsert(context.Background(), attendance.Record{
		EmployeeID: e.ID, Date: day(2025, 12, 1), Status: attendance.StatusPresent,
	})
	require.NoError(t, err)

	resp, err := f.svc.Reconcile(context.Background(), e.ID, time.Date(2025, 12, 1, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, attendance.Present, resp.Status)
	assert.Equal(t, attendance.OriginLocal, resp.Source)
	assert.Equal(t, "2025-12-01", resp.Date)
	assert.Empty(t, f.remote.queried)

	today, err := f.svc.Reconcile(context.Background(), e.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "2025-12-05", today.Date)
	assert.Equal(t, attendance.Absent, today.Status)

	_, err = f.svc.Reconcile(context.Background(), "missing", time.Now())
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestWarehouseCardFilter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mgr := f.addEmployee(t, "900", "Mia Manager", nil, nil, nil)
	f.addEmployee(t, "007", "Ana Lima", nil, nil, nil)
	f.assignments.Rows = append(f.assignments.Rows, employee.ManagerAssignment{ManagerID: mgr.ID})

	_, err := f.svc.TodaySnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, f.remote.cards, 1)
	assert.Nil(t, f.remote.cards[0])

	_, err = f.svc.ManagerDashboard(ctx, mgr.ID, attendance.SelectorToday)
	require.NoError(t, err)
	require.Len(t, f.remote.cards, 2)
	assert.Equal(t, []string{"900"}, f.remote.cards[1])
}
