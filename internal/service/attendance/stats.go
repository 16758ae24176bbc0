package attendance

import (
	"sort"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
)

const topEmployeesLimit = 10

// employeeIDs lists distinct non-guest employee ids in first-seen order.
func employeeIDs(events []attendance.Event) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, e := range events {
		if e.IsGuest() {
			continue
		}
		if _, ok := seen[*e.EmployeeID]; ok {
			continue
		}
		seen[*e.EmployeeID] = struct{}{}
		ids = append(ids, *e.EmployeeID)
	}
	return ids
}

// BuildStats counts events by type and by employee.
// directory resolves display names; ids missing from it are shown as unknown.
func BuildStats(events []attendance.Event, directory map[string]attendance.EmployeeRef) attendance.AttendanceStats {
	byType := make(map[attendance.EventType]int)
	byEmployee := make(map[string]int)
	guests := 0

	for _, e := range events {
		byType[e.EventType]++
		if e.IsGuest() {
			guests++
			continue
		}
		byEmployee[*e.EmployeeID]++
	}

	stats := attendance.AttendanceStats{
		TotalRecords:      len(events),
		EventsByType:      make([]attendance.EventTypeCount, 0, len(byType)),
		RecordsByEmployee: make([]attendance.EmployeeRecordCount, 0, len(byEmployee)+1),
	}

	for t, n := range byType {
		stats.EventsByType = append(stats.EventsByType, attendance.EventTypeCount{EventType: t, Count: n})
	}
	sort.Slice(stats.EventsByType, func(i, j int) bool {
		a, b := stats.EventsByType[i], stats.EventsByType[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.EventType < b.EventType
	})

	for id, n := range byEmployee {
		row := attendance.EmployeeRecordCount{
			EmployeeID:   &id,
			EmployeeName: attendance.UnknownEmployeeName,
			Count:        n,
		}
		if emp, ok := directory[id]; ok {
			row.EmployeeName = emp.FullName()
		}
		stats.RecordsByEmployee = append(stats.RecordsByEmployee, row)
	}
	if guests > 0 {
		stats.RecordsByEmployee = append(stats.RecordsByEmployee, attendance.EmployeeRecordCount{
			EmployeeName: attendance.GuestName,
			Count:        guests,
		})
	}
	sort.Slice(stats.RecordsByEmployee, func(i, j int) bool {
		a, b := stats.RecordsByEmployee[i], stats.RecordsByEmployee[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.EmployeeID == nil || b.EmployeeID == nil {
			return b.EmployeeID == nil && a.EmployeeID != nil
		}
		return *a.EmployeeID < *b.EmployeeID
	})
	if len(stats.RecordsByEmployee) > topEmployeesLimit {
		stats.RecordsByEmployee = stats.RecordsByEmployee[:topEmployeesLimit]
	}

	return stats
}
