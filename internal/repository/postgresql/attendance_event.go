package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceEventRepository struct {
	db *database.DB
}

const eventSelect = `
	SELECT
		ev.id, ev.organization_id, ev.branch_id, ev.employee_id, ev.device_id,
		ev.event_type, ev.timestamp, ev.metadata, ev.created_at,
		e.id, e.first_name, e.last_name, e.employee_code,
		d.id, d.name
	FROM attendance_events ev
	LEFT JOIN employees e ON e.id = ev.employee_id
	LEFT JOIN devices d ON d.id = ev.device_id
`

// buildEventWhere translates an EventQuery into a WHERE clause and its arguments.
func buildEventWhere(query attendance.EventQuery) (string, []interface{}) {
	conditions := []string{"ev.organization_id = $1"}
	args := []interface{}{query.OrganizationID}
	argIdx := 2

	if query.BranchID != nil && *query.BranchID != "" {
		conditions = append(conditions, fmt.Sprintf("ev.branch_id = $%d", argIdx))
		args = append(args, *query.BranchID)
		argIdx++
	}
	if len(query.BranchIDs) > 0 {
		conditions = append(conditions, fmt.Sprintf("ev.branch_id = ANY($%d::uuid[])", argIdx))
		args = append(args, query.BranchIDs)
		argIdx++
	}
	if query.EmployeeID != nil && *query.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("ev.employee_id = $%d", argIdx))
		args = append(args, *query.EmployeeID)
		argIdx++
	}
	if query.EventType != nil {
		conditions = append(conditions, fmt.Sprintf("ev.event_type = $%d", argIdx))
		args = append(args, string(*query.EventType))
		argIdx++
	}
	if query.Start != nil {
		conditions = append(conditions, fmt.Sprintf("ev.timestamp >= $%d", argIdx))
		args = append(args, *query.Start)
		argIdx++
	}
	if query.End != nil {
		conditions = append(conditions, fmt.Sprintf("ev.timestamp < $%d", argIdx))
		args = append(args, *query.End)
	}

	return strings.Join(conditions, " AND "), args
}

func scanEvent(row pgx.Row) (attendance.Event, error) {
	var (
		ev                                attendance.Event
		eventType                         string
		empID, empFirst, empLast, empCode *string
		devID, devName                    *string
	)
	err := row.Scan(
		&ev.ID, &ev.OrganizationID, &ev.BranchID, &ev.EmployeeID, &ev.DeviceID,
		&eventType, &ev.Timestamp, &ev.Metadata, &ev.CreatedAt,
		&empID, &empFirst, &empLast, &empCode,
		&devID, &devName,
	)
	if err != nil {
		return attendance.Event{}, err
	}
	ev.EventType = attendance.EventType(eventType)

	if empID != nil {
		ev.Employee = &attendance.EmployeeRef{
			ID:           *empID,
			FirstName:    stringValue(empFirst),
			LastName:     stringValue(empLast),
			EmployeeCode: stringValue(empCode),
		}
	}
	if devID != nil {
		ev.Device = &attendance.DeviceRef{ID: *devID, Name: stringValue(devName)}
	}
	return ev, nil
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// List implements attendance.EventRepository.
func (r *attendanceEventRepository) List(ctx context.Context, query attendance.EventQuery) ([]attendance.Event, error) {
	q := GetQuerier(ctx, r.db)

	where, args := buildEventWhere(query)
	order := "ASC"
	if query.NewestFirst {
		order = "DESC"
	}
	sql := fmt.Sprintf("%s WHERE %s ORDER BY ev.timestamp %s, ev.id %s", eventSelect, where, order, order)

	if query.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, query.Limit, query.Offset)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance events: %w", err)
	}
	defer rows.Close()

	events := []attendance.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance events: %w", err)
	}

	return events, nil
}

// Count implements attendance.EventRepository.
func (r *attendanceEventRepository) Count(ctx context.Context, query attendance.EventQuery) (int64, error) {
	q := GetQuerier(ctx, r.db)

	where, args := buildEventWhere(query)
	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM attendance_events ev WHERE "+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count attendance events: %w", err)
	}
	return total, nil
}

// GetByID implements attendance.EventRepository.
func (r *attendanceEventRepository) GetByID(ctx context.Context, id string, organizationID string) (attendance.Event, error) {
	q := GetQuerier(ctx, r.db)

	ev, err := scanEvent(q.QueryRow(ctx, eventSelect+" WHERE ev.id = $1 AND ev.organization_id = $2", id, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Event{}, attendance.ErrEventNotFound
		}
		return attendance.Event{}, fmt.Errorf("failed to get attendance event by ID: %w", err)
	}
	return ev, nil
}

// Delete implements attendance.EventRepository.
func (r *attendanceEventRepository) Delete(ctx context.Context, id string, organizationID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, "DELETE FROM attendance_events WHERE id = $1 AND organization_id = $2", id, organizationID)
	if err != nil {
		return fmt.Errorf("failed to delete attendance event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrEventNotFound
	}
	return nil
}

func NewAttendanceEventRepository(db *database.DB) attendance.EventRepository {
	return &attendanceEventRepository{db: db}
}
