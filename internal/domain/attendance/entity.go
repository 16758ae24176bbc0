package attendance

import (
	"strings"
	"time"
)

type EventType string

const (
	EventTypeCheckIn  EventType = "CHECK_IN"
	EventTypeCheckOut EventType = "CHECK_OUT"
)

func (t EventType) IsValid() bool {
	return t == EventTypeCheckIn || t == EventTypeCheckOut
}

type Status string

const (
	StatusPresent Status = "present"
	StatusPartial Status = "partial"
	StatusAbsent  Status = "absent"
)

const (
	GuestName           = "Guest"
	UnknownEmployeeName = "Unknown Employee"
)

// Event is a single CHECK_IN or CHECK_OUT recorded by a device.
// Employee and Device hold the joined rows and are nil when the join found nothing.
type Event struct {
	ID             string
	OrganizationID string
	BranchID       string
	EmployeeID     *string
	DeviceID       *string
	EventType      EventType
	Timestamp      time.Time
	Metadata       map[string]any
	CreatedAt      time.Time

	// Joins
	Employee *EmployeeRef
	Device   *DeviceRef
}

// IsGuest reports whether the event has no associated employee.
func (e Event) IsGuest() bool {
	return e.EmployeeID == nil || *e.EmployeeID == ""
}

type EmployeeRef struct {
	ID           string
	FirstName    string
	LastName     string
	EmployeeCode string
}

// FullName joins first and last name, skipping empty parts.
func (e EmployeeRef) FullName() string {
	return strings.TrimSpace(strings.Join([]string{e.FirstName, e.LastName}, " "))
}

type DeviceRef struct {
	ID   string
	Name string
}
