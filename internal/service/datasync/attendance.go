package datasync

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/attendance"
	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/parser"
)

var (
	errUnparsableDay  = errors.New("unparsable attendance date")
	errNoMatchingCard = errors.New("no matching employee")
)

// AttendancePipeline upserts one attendance row per employee per day.
type AttendancePipeline struct {
	employees  employee.EmployeeRepository
	attendance attendance.AttendanceRepository
	retry      database.RetryPolicy
	loc        *time.Location
	// cardCache maps normalized card to employee id ("" for a known miss) within one run.
	cardCache map[string]string
}

func NewAttendancePipeline(employees employee.EmployeeRepository, records attendance.AttendanceRepository, retry database.RetryPolicy, loc *time.Location) *AttendancePipeline {
	return &AttendancePipeline{
		employees:  employees,
		attendance: records,
		retry:      retry,
		loc:        loc,
		cardCache:  make(map[string]string),
	}
}

// Upsert writes the record for its (employee, day). Unknown employees are skipped, not failed.
func (p *AttendancePipeline) Upsert(ctx context.Context, rec parser.Record) (Result, error) {
	card := employee.NormalizeCardNumber(rec[FieldAttendanceCard])
	if card == "" {
		return failed(employee.ErrMissingCardNumber.Error()), nil
	}

	day, ok := attendance.ParseDay(rec[FieldAttendanceDate], p.loc)
	if !ok {
		return failed(errUnparsableDay.Error()), nil
	}

	employeeID, err := p.resolveEmployee(ctx, card)
	if err != nil {
		if database.IsTransient(err) {
			return Result{}, err
		}
		return failed(err.Error()), nil
	}
	if employeeID == "" {
		return skipped(errNoMatchingCard.Error()), nil
	}

	checkIn := attendance.ParsePunch(rec[FieldAttendanceIn], day)
	record := attendance.Record{
		EmployeeID: employeeID,
		Date:       day,
		CheckIn:    checkIn,
		CheckOut:   attendance.ParsePunch(rec[FieldAttendanceOut], day),
		Status:     recordStatus(rec[FieldAttendanceStatus], checkIn),
		DeviceID:   optional(rec[FieldAttendanceDevice]),
		Metadata:   copyRecord(rec),
	}

	var created bool
	err = database.Retry(ctx, p.retry, func(ctx context.Context) error {
		var err error
		_, created, err = p.attendance.Upsert(ctx, record)
		return err
	})
	if err != nil {
		if database.IsTransient(err) {
			return Result{}, err
		}
		return failed(err.Error()), nil
	}
	return imported(created), nil
}

func (p *AttendancePipeline) resolveEmployee(ctx context.Context, card string) (string, error) {
	if id, ok := p.cardCache[card]; ok {
		return id, nil
	}

	var found *employee.Employee
	err := database.Retry(ctx, p.retry, func(ctx context.Context) error {
		var err error
		found, err = p.employees.GetByNormalizedCard(ctx, card)
		return err
	})
	if err != nil {
		return "", err
	}

	id := ""
	if found != nil {
		id = found.ID
	}
	p.cardCache[card] = id
	return id, nil
}

// recordStatus keeps an explicit source status, otherwise derives it from the check-in.
func recordStatus(explicit string, checkIn *time.Time) string {
	if s := strings.ToLower(strings.TrimSpace(explicit)); s != "" {
		return s
	}
	if checkIn != nil {
		return attendance.StatusPresent
	}
	return attendance.StatusAbsent
}
