package attendance

import (
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
)

const DefaultRecentLimit = 20

type presence struct {
	lastCheckIn  *time.Time
	lastCheckOut *time.Time
	employee     *attendance.EmployeeRef
}

// TrackLive derives who is on site at now and the newest recentLimit events.
// Only the latest check-in and latest check-out per employee are compared;
// guest events appear in the feed but never in the present list.
func TrackLive(events []attendance.Event, now time.Time, recentLimit int) attendance.LiveAttendance {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}

	byEmployee := make(map[string]*presence)
	for _, e := range events {
		if e.IsGuest() {
			continue
		}
		p, ok := byEmployee[*e.EmployeeID]
		if !ok {
			p = &presence{}
			byEmployee[*e.EmployeeID] = p
		}
		if p.employee == nil && e.Employee != nil {
			p.employee = e.Employee
		}

		ts := e.Timestamp
		switch e.EventType {
		case attendance.EventTypeCheckIn:
			if p.lastCheckIn == nil || ts.After(*p.lastCheckIn) {
				p.lastCheckIn = &ts
			}
		case attendance.EventTypeCheckOut:
			if p.lastCheckOut == nil || ts.After(*p.lastCheckOut) {
				p.lastCheckOut = &ts
			}
		}
	}

	present := make([]attendance.PresentEmployee, 0, len(byEmployee))
	for id, p := range byEmployee {
		if !p.isPresent() {
			continue
		}
		pe := attendance.PresentEmployee{
			EmployeeID:   id,
			EmployeeName: attendance.UnknownEmployeeName,
			CheckInTime:  *p.lastCheckIn,
			Duration:     FormatDuration(now.Sub(*p.lastCheckIn)),
		}
		if p.employee != nil {
			pe.EmployeeName = p.employee.FullName()
			pe.EmployeeCode = p.employee.EmployeeCode
		}
		present = append(present, pe)
	}
	sort.Slice(present, func(i, j int) bool {
		if !present[i].CheckInTime.Equal(present[j].CheckInTime) {
			return present[i].CheckInTime.Before(present[j].CheckInTime)
		}
		return present[i].EmployeeID < present[j].EmployeeID
	})

	return attendance.LiveAttendance{
		CurrentlyPresent: present,
		RecentActivity:   recentActivity(events, recentLimit),
	}
}

func (p *presence) isPresent() bool {
	if p.lastCheckIn == nil {
		return false
	}
	return p.lastCheckOut == nil || p.lastCheckIn.After(*p.lastCheckOut)
}

func recentActivity(events []attendance.Event, limit int) []attendance.EventResponse {
	sorted := make([]attendance.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	feed := make([]attendance.EventResponse, 0, len(sorted))
	for _, e := range sorted {
		feed = append(feed, mapEventToResponse(e))
	}
	return feed
}

// FormatDuration renders elapsed time as "2h 30m", or "45m" under an hour.
// Minutes are truncated; negative durations render as "0m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalMinutes := int(d / time.Minute)
	hours := totalMinutes / 60
	minutes := totalMinutes % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func mapEventToResponse(e attendance.Event) attendance.EventResponse {
	resp := attendance.EventResponse{
		ID:             e.ID,
		OrganizationID: e.OrganizationID,
		BranchID:       e.BranchID,
		EmployeeID:     e.EmployeeID,
		DeviceID:       e.DeviceID,
		EventType:      e.EventType,
		Timestamp:      e.Timestamp,
		Metadata:       e.Metadata,
		CreatedAt:      e.CreatedAt,
	}
	if e.Employee != nil {
		resp.Employee = &attendance.EmployeeResponse{
			ID:           e.Employee.ID,
			FirstName:    e.Employee.FirstName,
			LastName:     e.Employee.LastName,
			EmployeeCode: e.Employee.EmployeeCode,
		}
	}
	if e.Device != nil {
		resp.Device = &attendance.DeviceResponse{
			ID:   e.Device.ID,
			Name: e.Device.Name,
		}
	}
	return resp
}
