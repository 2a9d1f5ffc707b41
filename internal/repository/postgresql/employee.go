package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	id, card_number, first_name, last_name, phone, alt_phone, email, personal_email, gender,
	identity_number, profile_image, operational_status, weekly_off, shift_start, shift_end,
	interview_date, exit_date, department_id, designation_id, org_unit_id, time_policy_id,
	metadata, created_at, updated_at`

// Upsert implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Upsert(ctx context.Context, emp employee.Employee) (employee.Employee, bool, error) {
	q := GetQuerier(ctx, e.db)

	id, err := uuid.NewV7()
	if err != nil {
		return employee.Employee{}, false, err
	}
	metadata := emp.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}

	query := `
		INSERT INTO employees (
			id, card_number, card_number_normalized, first_name, last_name, phone, alt_phone, email,
			personal_email, gender, identity_number, profile_image, operational_status, weekly_off,
			shift_start, shift_end, interview_date, exit_date, department_id, designation_id,
			org_unit_id, time_policy_id, metadata
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20,
			$21, $22, $23
		)
		ON CONFLICT (card_number) DO UPDATE SET
			card_number_normalized = EXCLUDED.card_number_normalized,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			phone = EXCLUDED.phone,
			alt_phone = EXCLUDED.alt_phone,
			email = EXCLUDED.email,
			personal_email = EXCLUDED.personal_email,
			gender = EXCLUDED.gender,
			identity_number = EXCLUDED.identity_number,
			profile_image = EXCLUDED.profile_image,
			operational_status = EXCLUDED.operational_status,
			weekly_off = EXCLUDED.weekly_off,
			shift_start = EXCLUDED.shift_start,
			shift_end = EXCLUDED.shift_end,
			interview_date = EXCLUDED.interview_date,
			exit_date = EXCLUDED.exit_date,
			department_id = EXCLUDED.department_id,
			designation_id = EXCLUDED.designation_id,
			org_unit_id = EXCLUDED.org_unit_id,
			time_policy_id = EXCLUDED.time_policy_id,
			metadata = EXCLUDED.metadata,
			updated_at = NOW()
		RETURNING ` + employeeColumns + `, (xmax = 0) AS inserted
	`

	var (
		saved    employee.Employee
		inserted bool
	)
	err = q.QueryRow(ctx, query,
		id.String(), emp.CardNumber, employee.NormalizeCardNumber(emp.CardNumber), emp.FirstName, emp.LastName,
		emp.Phone, emp.AltPhone, emp.Email,
		emp.PersonalEmail, emp.Gender, emp.IdentityNumber, emp.ProfileImage, emp.OperationalStatus, emp.WeeklyOff,
		emp.ShiftStart, emp.ShiftEnd, emp.InterviewDate, emp.ExitDate, emp.DepartmentID, emp.DesignationID,
		emp.OrgUnitID, emp.TimePolicyID, metadata,
	).Scan(append(employeeDest(&saved), &inserted)...)
	if err != nil {
		return employee.Employee{}, false, fmt.Errorf("failed to upsert employee with card %s: %w", emp.CardNumber, err)
	}
	return saved, inserted, nil
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	var emp employee.Employee
	if err := q.QueryRow(ctx, query, id).Scan(employeeDest(&emp)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %s: %w", id, err)
	}
	return emp, nil
}

// GetByNormalizedCard implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByNormalizedCard(ctx context.Context, normalizedCard string) (*employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE card_number_normalized = $1
		ORDER BY created_at
		LIMIT 1
	`

	var emp employee.Employee
	if err := q.QueryRow(ctx, query, normalizedCard).Scan(employeeDest(&emp)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get employee by card %s: %w", normalizedCard, err)
	}
	return &emp, nil
}

// ListActive implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE exit_date IS NULL
		ORDER BY first_name, last_name
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	employees := []employee.Employee{}
	for rows.Next() {
		var emp employee.Employee
		if err := rows.Scan(employeeDest(&emp)...); err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return employees, nil
}

// Count implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Count(ctx context.Context) (int64, error) {
	q := GetQuerier(ctx, e.db)

	var count int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM employees`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return count, nil
}

func employeeDest(emp *employee.Employee) []interface{} {
	return []interface{}{
		&emp.ID, &emp.CardNumber, &emp.FirstName, &emp.LastName, &emp.Phone, &emp.AltPhone, &emp.Email,
		&emp.PersonalEmail, &emp.Gender, &emp.IdentityNumber, &emp.ProfileImage, &emp.OperationalStatus,
		&emp.WeeklyOff, &emp.ShiftStart, &emp.ShiftEnd, &emp.InterviewDate, &emp.ExitDate,
		&emp.DepartmentID, &emp.DesignationID, &emp.OrgUnitID, &emp.TimePolicyID,
		&emp.Metadata, &emp.CreatedAt, &emp.UpdatedAt,
	}
}
