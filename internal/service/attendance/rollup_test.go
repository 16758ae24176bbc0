package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailyReport(t *testing.T) {
	events := []attendance.Event{
		withEmployee(checkIn("e2", at(9, 0)), "Bob", "Brown", "0002"),
		withEmployee(checkOut("e2", at(17, 0)), "Bob", "Brown", "0002"),
		withEmployee(checkIn("e1", at(8, 0)), "Alice", "Anderson", "0001"),
		checkIn("e3", at(10, 0)),
		checkOut("e3", at(12, 30)),
		checkIn("e3", at(13, 0)),
		checkOut("e4", at(18, 0)),
		checkIn("", at(11, 0)),
	}

	report := BuildDailyReport("2024-03-04", strPtr("branch-a"), events)

	assert.Equal(t, "2024-03-04", report.Date)
	require.NotNil(t, report.BranchID)
	assert.Equal(t, "branch-a", *report.BranchID)

	assert.Equal(t, 3, report.TotalEmployees, "checkout-only and guest are excluded")
	assert.Equal(t, 1, report.PresentEmployees)
	assert.Equal(t, 2, report.PartialEmployees)
	assert.Equal(t, 0, report.AbsentEmployees)
	assert.Equal(t, report.TotalEmployees, report.PresentEmployees+report.PartialEmployees+report.AbsentEmployees)

	assert.InDelta(t, 10.5, report.TotalHours, 0.0001)
	assert.InDelta(t, 3.5, report.AverageHours, 0.0001)

	require.Len(t, report.EmployeeDetails, 3)
	assert.Equal(t, "e3", report.EmployeeDetails[0].EmployeeID, "missing code sorts first")
	assert.Equal(t, attendance.UnknownEmployeeName, report.EmployeeDetails[0].EmployeeName)
	assert.Equal(t, "0001", report.EmployeeDetails[1].EmployeeCode)
	assert.Equal(t, attendance.StatusPartial, report.EmployeeDetails[1].Status)
	assert.Equal(t, "Bob Brown", report.EmployeeDetails[2].EmployeeName)
	assert.Equal(t, attendance.StatusPresent, report.EmployeeDetails[2].Status)
	assert.InDelta(t, 8.0, report.EmployeeDetails[2].TotalHours, 0.0001)
}

func TestBuildDailyReport_Empty(t *testing.T) {
	report := BuildDailyReport("2024-03-04", nil, nil)

	assert.Equal(t, 0, report.TotalEmployees)
	assert.Equal(t, 0.0, report.TotalHours)
	assert.Equal(t, 0.0, report.AverageHours)
	assert.NotNil(t, report.EmployeeDetails)
	assert.Empty(t, report.EmployeeDetails)
	assert.Nil(t, report.BranchID)
}

func TestBuildDailyReport_CountsAlwaysBalance(t *testing.T) {
	var events []attendance.Event
	ids := []string{"a", "b", "c", "d", "e", "f"}
	for i, id := range ids {
		for j := 0; j <= i%3; j++ {
			events = append(events, checkIn(id, at(8+j, i)))
		}
		for j := 0; j < i%2; j++ {
			events = append(events, checkOut(id, at(16+j, i)))
		}
	}

	report := BuildDailyReport("2024-03-04", nil, events)
	assert.Equal(t, report.TotalEmployees, report.PresentEmployees+report.PartialEmployees+report.AbsentEmployees)
	assert.Equal(t, len(ids), report.TotalEmployees)
}

func TestBuildWeeklyReport(t *testing.T) {
	var events []attendance.Event
	for day := 0; day < 5; day++ {
		base := testDay.AddDate(0, 0, day)
		events = append(events,
			checkIn("e1", base.Add(9*time.Hour)),
			checkOut("e1", base.Add(17*time.Hour)),
		)
	}

	report, err := BuildWeeklyReport(context.Background(), testDay, nil, events, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-04", report.StartDate)
	assert.Equal(t, "2024-03-10", report.EndDate)
	require.Len(t, report.DailyReports, 7)

	daily := make([]float64, 0, 7)
	for i, d := range report.DailyReports {
		assert.Equal(t, testDay.AddDate(0, 0, i).Format("2006-01-02"), d.Date)
		daily = append(daily, d.TotalHours)
	}
	assert.Equal(t, []float64{8, 8, 8, 8, 8, 0, 0}, daily)

	assert.Equal(t, 40.0, report.TotalHours)
	assert.Equal(t, 5.71, report.AverageDailyHours)
	assert.Equal(t, 1, report.TotalEmployees)
}

func TestBuildWeeklyReport_TotalEmployeesIsBusiestDay(t *testing.T) {
	events := []attendance.Event{
		checkIn("e1", testDay.Add(9*time.Hour)),
		checkIn("e2", testDay.Add(9*time.Hour)),
		checkIn("e3", testDay.AddDate(0, 0, 1).Add(9*time.Hour)),
		checkIn("e4", testDay.AddDate(0, 0, 2).Add(9*time.Hour)),
	}

	report, err := BuildWeeklyReport(context.Background(), testDay, nil, events, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalEmployees)
}

func TestBuildWeeklyReport_UsesLocalCalendarDays(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	// 18:00 UTC on Sunday is 01:00 Monday in Jakarta.
	events := []attendance.Event{
		checkIn("e1", time.Date(2024, 3, 3, 18, 0, 0, 0, time.UTC)),
		checkOut("e1", time.Date(2024, 3, 4, 2, 0, 0, 0, time.UTC)),
	}

	report, err := BuildWeeklyReport(context.Background(), testDay, nil, events, jakarta)
	require.NoError(t, err)
	assert.Equal(t, 8.0, report.DailyReports[0].TotalHours)
	assert.Equal(t, 1, report.DailyReports[0].TotalEmployees)
}

func TestBuildWeeklyReport_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildWeeklyReport(ctx, testDay, nil, nil, time.UTC)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildMonthlyReport(t *testing.T) {
	events := []attendance.Event{
		withEmployee(checkIn("e1", time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)), "Alice", "Anderson", "0001"),
		checkOut("e1", time.Date(2024, 2, 1, 17, 0, 0, 0, time.UTC)),
		checkIn("e1", time.Date(2024, 2, 2, 9, 0, 0, 0, time.UTC)),
		checkOut("e1", time.Date(2024, 2, 29, 17, 0, 0, 0, time.UTC)),
		withEmployee(checkIn("e2", time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC)), "Bob", "Brown", "0002"),
		checkOut("e2", time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)),
		checkIn("", time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC)),
	}

	report := BuildMonthlyReport(2024, 2, strPtr("branch-a"), events, time.UTC)

	assert.Equal(t, "2024-02-01", report.StartDate)
	assert.Equal(t, "2024-02-29", report.EndDate)
	assert.Equal(t, 2, report.TotalEmployees)
	assert.Equal(t, 12.0, report.TotalHours)
	assert.Equal(t, 6.0, report.AverageHoursPerEmployee)

	require.Len(t, report.EmployeeReports, 2)
	alice := report.EmployeeReports[0]
	assert.Equal(t, "Alice Anderson", alice.EmployeeName)
	assert.Equal(t, 3, alice.DaysWorked)
	assert.Equal(t, 1, alice.PresentDays)
	assert.Equal(t, 1, alice.PartialDays)
	assert.Equal(t, 8.0, alice.TotalHours)
	assert.Equal(t, 2.67, alice.AverageHoursPerDay)
	require.Len(t, alice.DailySummary, 3)
	assert.Equal(t, "2024-02-01", alice.DailySummary[0].Date)
	assert.Equal(t, "2024-02-29", alice.DailySummary[2].Date)
	assert.Equal(t, attendance.StatusAbsent, alice.DailySummary[2].Status, "checkout-only day still counts as worked")

	bob := report.EmployeeReports[1]
	assert.Equal(t, 1, bob.DaysWorked)
	assert.Equal(t, 4.0, bob.TotalHours)
}

func TestBuildMonthlyReport_Empty(t *testing.T) {
	report := BuildMonthlyReport(2023, 12, nil, nil, time.UTC)
	assert.Equal(t, "2023-12-01", report.StartDate)
	assert.Equal(t, "2023-12-31", report.EndDate)
	assert.Equal(t, 0, report.TotalEmployees)
	assert.Equal(t, 0.0, report.AverageHoursPerEmployee)
	assert.NotNil(t, report.EmployeeReports)
}

func TestBuildSummary(t *testing.T) {
	events := []attendance.Event{
		checkIn("e1", at(9, 0)),
		checkOut("e1", at(17, 30)),
		checkIn("e1", testDay.AddDate(0, 0, 1).Add(9*time.Hour)),
	}

	summary := BuildSummary("e1", testDay, testDay.AddDate(0, 0, 3), events, time.UTC)

	assert.Equal(t, "e1", summary.EmployeeID)
	assert.Equal(t, "2024-03-04", summary.StartDate)
	assert.Equal(t, "2024-03-07", summary.EndDate)
	require.Len(t, summary.DailySummary, 4)
	assert.Equal(t, 1, summary.PresentDays)
	assert.Equal(t, 1, summary.PartialDays)
	assert.Equal(t, 2, summary.AbsentDays)
	assert.Equal(t, 8.5, summary.TotalHours)
	assert.Equal(t, "2024-03-06", summary.DailySummary[2].Date)
	assert.Equal(t, attendance.StatusAbsent, summary.DailySummary[2].Status)
}

func TestBuildSummary_AcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	start := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)

	summary := BuildSummary("e1", start, end, nil, ny)
	require.Len(t, summary.DailySummary, 3)
	assert.Equal(t, "2024-03-10", summary.DailySummary[1].Date)
	assert.Equal(t, "2024-03-11", summary.DailySummary[2].Date)
}
