package attendance

import "context"

// EventRepository is the query surface over stored attendance events.
// Every query is already scoped to one organization; callers pass the caller's branch scope in EventQuery.
type EventRepository interface {
	// List returns events matching the query, ordered by timestamp
	List(ctx context.Context, query EventQuery) ([]Event, error)

	// Count returns the number of events matching the query, ignoring Limit and Offset
	Count(ctx context.Context, query EventQuery) (int64, error)

	// GetByID retrieves a single event with organization isolation
	GetByID(ctx context.Context, id string, organizationID string) (Event, error)

	// Delete removes an event; administrative use only
	Delete(ctx context.Context, id string, organizationID string) error
}

// EmployeeDirectory resolves employee identity for display.
type EmployeeDirectory interface {
	// ResolveEmployee returns nil without error when the employee does not exist
	ResolveEmployee(ctx context.Context, id string, organizationID string) (*EmployeeRef, error)

	// GetByIDs resolves many employees at once; unknown ids are absent from the map
	GetByIDs(ctx context.Context, organizationID string, ids []string) (map[string]EmployeeRef, error)
}
