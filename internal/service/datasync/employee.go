package datasync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/master"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/parser"
)

var employeeDateLayouts = []string{
	"02-Jan-2006",
	"2-Jan-2006",
	"02-Jan-06",
	"2-Jan-06",
	"2006-01-02",
}

// EmployeePipeline upserts employee records keyed by card number.
type EmployeePipeline struct {
	employees  employee.EmployeeRepository
	normalizer *Normalizer
	retry      database.RetryPolicy
	loc        *time.Location
}

func NewEmployeePipeline(employees employee.EmployeeRepository, normalizer *Normalizer, retry database.RetryPolicy, loc *time.Location) *EmployeePipeline {
	return &EmployeePipeline{employees: employees, normalizer: normalizer, retry: retry, loc: loc}
}

// Upsert maps rec onto an Employee and writes it. The returned error is set only
// when the store stayed unreachable through every retry.
func (p *EmployeePipeline) Upsert(ctx context.Context, rec parser.Record) (Result, error) {
	card := strings.TrimSpace(rec[FieldCardNo])
	if card == "" {
		return skipped(employee.ErrMissingCardNumber.Error()), nil
	}

	emp, err := p.mapRecord(ctx, card, rec)
	if err != nil {
		if database.IsTransient(err) {
			return Result{}, err
		}
		return failed(err.Error()), nil
	}

	var created bool
	err = database.Retry(ctx, p.retry, func(ctx context.Context) error {
		var err error
		_, created, err = p.employees.Upsert(ctx, emp)
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

func (p *EmployeePipeline) mapRecord(ctx context.Context, card string, rec parser.Record) (employee.Employee, error) {
	first, last := employee.SplitName(rec[FieldName])

	emp := employee.Employee{
		CardNumber:        card,
		FirstName:         first,
		LastName:          last,
		Phone:             optional(rec[FieldPhone]),
		AltPhone:          optional(rec[FieldPhone2]),
		Email:             optional(rec[FieldEmail]),
		PersonalEmail:     optional(rec[FieldPersonalEmail]),
		Gender:            employee.ParseGender(rec[FieldGender]),
		IdentityNumber:    optional(rec[FieldIDNo]),
		ProfileImage:      optional(rec[FieldPhoto]),
		OperationalStatus: optional(rec[FieldStatus]),
		WeeklyOff:         optional(rec[FieldWeeklyOff]),
		ShiftStart:        optional(rec[FieldShiftStart]),
		ShiftEnd:          optional(rec[FieldShiftEnd]),
		InterviewDate:     parseEmployeeDate(rec[FieldInterviewDate], p.loc),
		ExitDate:          parseEmployeeDate(rec[FieldExitDate], p.loc),
		Metadata:          copyRecord(rec),
	}

	refs := []struct {
		kind  master.Kind
		field string
		dest  **string
	}{
		{master.KindDepartment, FieldDeptCode, &emp.DepartmentID},
		{master.KindDesignation, FieldDesgCode, &emp.DesignationID},
		{master.KindOrgUnit, FieldUnitCode, &emp.OrgUnitID},
		{master.KindTimePolicy, FieldPolicyCode, &emp.TimePolicyID},
	}
	for _, ref := range refs {
		id, err := p.normalizer.Resolve(ctx, ref.kind, rec[ref.field])
		if err != nil {
			return employee.Employee{}, fmt.Errorf("resolve %s %q: %w", ref.kind, rec[ref.field], err)
		}
		*ref.dest = id
	}

	return emp, nil
}

// parseEmployeeDate treats anything unparsable as absent.
func parseEmployeeDate(value string, loc *time.Location) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range employeeDateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return &t
		}
	}
	return nil
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func copyRecord(rec parser.Record) map[string]string {
	out := make(map[string]string, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
