package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/workforce-sync-go/internal/domain/employee"
	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/database"
)

type managerAssignmentRepositoryImpl struct {
	db *database.DB
}

func NewManagerAssignmentRepository(db *database.DB) employee.AssignmentRepository {
	return &managerAssignmentRepositoryImpl{db: db}
}

// ListByManager implements employee.AssignmentRepository.
func (r *managerAssignmentRepositoryImpl) ListByManager(ctx context.Context, managerID string) ([]employee.ManagerAssignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, manager_id, department_id, designation_id, org_unit_id
		FROM manager_assignments
		WHERE manager_id = $1
	`

	rows, err := q.Query(ctx, query, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments for manager %s: %w", managerID, err)
	}
	defer rows.Close()

	assignments := []employee.ManagerAssignment{}
	for rows.Next() {
		var a employee.ManagerAssignment
		if err := rows.Scan(&a.ID, &a.ManagerID, &a.DepartmentID, &a.DesignationID, &a.OrgUnitID); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}
