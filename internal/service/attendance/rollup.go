package attendance

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"golang.org/x/sync/errgroup"
)

const daysPerWeek = 7

// employeeEvents is one employee's slice of a fetched window plus the first successful join.
type employeeEvents struct {
	id       string
	employee *attendance.EmployeeRef
	events   []attendance.Event
}

func (g *employeeEvents) name() string {
	if g.employee == nil {
		return attendance.UnknownEmployeeName
	}
	return g.employee.FullName()
}

func (g *employeeEvents) code() string {
	if g.employee == nil {
		return ""
	}
	return g.employee.EmployeeCode
}

// groupByEmployee drops guest events and keeps employees in first-seen order.
func groupByEmployee(events []attendance.Event) []*employeeEvents {
	index := make(map[string]*employeeEvents)
	var groups []*employeeEvents
	for _, e := range events {
		if e.IsGuest() {
			continue
		}
		g, ok := index[*e.EmployeeID]
		if !ok {
			g = &employeeEvents{id: *e.EmployeeID}
			index[g.id] = g
			groups = append(groups, g)
		}
		if g.employee == nil && e.Employee != nil {
			g.employee = e.Employee
		}
		g.events = append(g.events, e)
	}
	return groups
}

// groupByDate buckets events by their local calendar date in loc.
func groupByDate(events []attendance.Event, loc *time.Location) map[string][]attendance.Event {
	byDate := make(map[string][]attendance.Event)
	for _, e := range events {
		key := dateKey(e.Timestamp, loc)
		byDate[key] = append(byDate[key], e)
	}
	return byDate
}

// BuildDailyReport reconciles each employee seen in events for one day.
// Employees are discovered from the events themselves, so nobody without a check-in is listed.
func BuildDailyReport(date string, branchID *string, events []attendance.Event) attendance.DailyAttendanceReport {
	report := attendance.DailyAttendanceReport{
		Date:            date,
		BranchID:        branchID,
		EmployeeDetails: []attendance.EmployeeDayRecord{},
	}

	var hours []float64
	for _, g := range groupByEmployee(events) {
		day := Reconcile(date, g.events)
		if day.CheckIn == nil {
			continue
		}

		report.EmployeeDetails = append(report.EmployeeDetails, attendance.EmployeeDayRecord{
			EmployeeID:   g.id,
			EmployeeCode: g.code(),
			EmployeeName: g.name(),
			CheckIn:      day.CheckIn,
			CheckOut:     day.CheckOut,
			TotalHours:   day.TotalHours,
			Status:       day.Status,
		})
		hours = append(hours, day.TotalHours)

		switch day.Status {
		case attendance.StatusPresent:
			report.PresentEmployees++
		case attendance.StatusPartial:
			report.PartialEmployees++
		default:
			report.AbsentEmployees++
		}
	}

	sort.Slice(report.EmployeeDetails, func(i, j int) bool {
		a, b := report.EmployeeDetails[i], report.EmployeeDetails[j]
		if a.EmployeeCode != b.EmployeeCode {
			return a.EmployeeCode < b.EmployeeCode
		}
		return a.EmployeeID < b.EmployeeID
	})

	report.TotalEmployees = len(report.EmployeeDetails)
	report.TotalHours = sumHours(hours...)
	report.AverageHours = divHours(report.TotalHours, report.TotalEmployees)
	return report
}

// BuildWeeklyReport splits a seven day window into daily reports built concurrently.
// totalEmployees is the busiest single day, not the distinct headcount of the week.
func BuildWeeklyReport(ctx context.Context, start time.Time, branchID *string, events []attendance.Event, loc *time.Location) (attendance.WeeklyAttendanceReport, error) {
	first, _ := dayBounds(start, loc)
	byDate := groupByDate(events, loc)

	daily := make([]attendance.DailyAttendanceReport, daysPerWeek)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < daysPerWeek; i++ {
		date := first.AddDate(0, 0, i).Format(validator.DateLayout)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			daily[i] = BuildDailyReport(date, branchID, byDate[date])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return attendance.WeeklyAttendanceReport{}, err
	}

	report := attendance.WeeklyAttendanceReport{
		StartDate:    daily[0].Date,
		EndDate:      daily[daysPerWeek-1].Date,
		BranchID:     branchID,
		DailyReports: daily,
	}
	hours := make([]float64, 0, daysPerWeek)
	for _, d := range daily {
		hours = append(hours, d.TotalHours)
		if d.TotalEmployees > report.TotalEmployees {
			report.TotalEmployees = d.TotalEmployees
		}
	}
	report.TotalHours = sumHours(hours...)
	report.AverageDailyHours = divHours(report.TotalHours, daysPerWeek)
	return report, nil
}

// BuildMonthlyReport reconciles every employee-date in the month.
// daysWorked counts dates with any event; presentDays and partialDays follow the daily status.
func BuildMonthlyReport(year, month int, branchID *string, events []attendance.Event, loc *time.Location) attendance.MonthlyAttendanceReport {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)

	report := attendance.MonthlyAttendanceReport{
		Year:            year,
		Month:           month,
		BranchID:        branchID,
		StartDate:       first.Format(validator.DateLayout),
		EndDate:         last.Format(validator.DateLayout),
		EmployeeReports: []attendance.MonthlyEmployeeReport{},
	}

	var totals []float64
	for _, g := range groupByEmployee(events) {
		byDate := groupByDate(g.events, loc)
		dates := make([]string, 0, len(byDate))
		for date := range byDate {
			dates = append(dates, date)
		}
		sort.Strings(dates)

		emp := attendance.MonthlyEmployeeReport{
			EmployeeID:   g.id,
			EmployeeCode: g.code(),
			EmployeeName: g.name(),
			DaysWorked:   len(dates),
			DailySummary: make([]attendance.DaySummary, 0, len(dates)),
		}
		var hours []float64
		for _, date := range dates {
			day := Reconcile(date, byDate[date])
			switch day.Status {
			case attendance.StatusPresent:
				emp.PresentDays++
			case attendance.StatusPartial:
				emp.PartialDays++
			}
			hours = append(hours, day.TotalHours)
			emp.DailySummary = append(emp.DailySummary, day)
		}
		emp.TotalHours = sumHours(hours...)
		emp.AverageHoursPerDay = divHours(emp.TotalHours, emp.DaysWorked)

		report.EmployeeReports = append(report.EmployeeReports, emp)
		totals = append(totals, emp.TotalHours)
	}

	sort.Slice(report.EmployeeReports, func(i, j int) bool {
		a, b := report.EmployeeReports[i], report.EmployeeReports[j]
		if a.EmployeeCode != b.EmployeeCode {
			return a.EmployeeCode < b.EmployeeCode
		}
		return a.EmployeeID < b.EmployeeID
	})

	report.TotalEmployees = len(report.EmployeeReports)
	report.TotalHours = sumHours(totals...)
	report.AverageHoursPerEmployee = divHours(report.TotalHours, report.TotalEmployees)
	return report
}

// BuildSummary reconciles one employee for every date from start to end inclusive.
// Dates without events are reported as absent.
func BuildSummary(employeeID string, start, end time.Time, events []attendance.Event, loc *time.Location) attendance.AttendanceSummary {
	first, _ := dayBounds(start, loc)
	final, _ := dayBounds(end, loc)
	byDate := groupByDate(events, loc)

	summary := attendance.AttendanceSummary{
		EmployeeID:   employeeID,
		StartDate:    first.Format(validator.DateLayout),
		EndDate:      final.Format(validator.DateLayout),
		DailySummary: []attendance.DaySummary{},
	}

	var hours []float64
	for day := first; !day.After(final); day = day.AddDate(0, 0, 1) {
		date := day.Format(validator.DateLayout)
		ds := Reconcile(date, byDate[date])
		switch ds.Status {
		case attendance.StatusPresent:
			summary.PresentDays++
		case attendance.StatusPartial:
			summary.PartialDays++
		default:
			summary.AbsentDays++
		}
		hours = append(hours, ds.TotalHours)
		summary.DailySummary = append(summary.DailySummary, ds)
	}
	summary.TotalHours = sumHours(hours...)
	return summary
}
