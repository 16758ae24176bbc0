package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
)

var testDay = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return testDay.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func strPtr(s string) *string { return &s }

var eventSeq int

func newEvent(employeeID string, eventType attendance.EventType, ts time.Time) attendance.Event {
	eventSeq++
	ev := attendance.Event{
		ID:             fmt.Sprintf("ev-%04d", eventSeq),
		OrganizationID: "org-1",
		BranchID:       "branch-a",
		EventType:      eventType,
		Timestamp:      ts,
		CreatedAt:      ts,
	}
	if employeeID != "" {
		ev.EmployeeID = strPtr(employeeID)
	}
	return ev
}

func checkIn(employeeID string, ts time.Time) attendance.Event {
	return newEvent(employeeID, attendance.EventTypeCheckIn, ts)
}

func checkOut(employeeID string, ts time.Time) attendance.Event {
	return newEvent(employeeID, attendance.EventTypeCheckOut, ts)
}

// withEmployee attaches a joined employee record as the event store would.
func withEmployee(ev attendance.Event, first, last, code string) attendance.Event {
	ev.Employee = &attendance.EmployeeRef{
		ID:           *ev.EmployeeID,
		FirstName:    first,
		LastName:     last,
		EmployeeCode: code,
	}
	return ev
}
