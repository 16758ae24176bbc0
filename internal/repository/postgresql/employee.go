package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) attendance.EmployeeDirectory {
	return &employeeRepositoryImpl{db: db}
}

// ResolveEmployee implements attendance.EmployeeDirectory.
func (e *employeeRepositoryImpl) ResolveEmployee(ctx context.Context, id string, organizationID string) (*attendance.EmployeeRef, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, first_name, last_name, employee_code
		FROM employees
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
	`

	var emp attendance.EmployeeRef
	err := q.QueryRow(ctx, query, id, organizationID).Scan(&emp.ID, &emp.FirstName, &emp.LastName, &emp.EmployeeCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve employee %s: %w", id, err)
	}

	return &emp, nil
}

// GetByIDs implements attendance.EmployeeDirectory.
func (e *employeeRepositoryImpl) GetByIDs(ctx context.Context, organizationID string, ids []string) (map[string]attendance.EmployeeRef, error) {
	result := make(map[string]attendance.EmployeeRef, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	q := GetQuerier(ctx, e.db)

	query := `
		SELECT id, first_name, last_name, employee_code
		FROM employees
		WHERE organization_id = $1 AND id = ANY($2::uuid[]) AND deleted_at IS NULL
	`

	rows, err := q.Query(ctx, query, organizationID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var emp attendance.EmployeeRef
		if err := rows.Scan(&emp.ID, &emp.FirstName, &emp.LastName, &emp.EmployeeCode); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		result[emp.ID] = emp
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return result, nil
}
