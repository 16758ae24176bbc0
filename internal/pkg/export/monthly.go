package export

import (
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet = "Summary"
	DailySheet   = "Daily"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	summaryHeaders = []string{"Employee Code", "Employee Name", "Days Worked", "Present Days", "Partial Days", "Total Hours", "Average Hours/Day"}
	dailyHeaders   = []string{"Employee Code", "Employee Name", "Date", "Check In", "Check Out", "Total Hours", "Status"}
)

// MonthlyFileName is the attachment name used for a monthly report download.
func MonthlyFileName(year, month int) string {
	return fmt.Sprintf("attendance-%04d-%02d.xlsx", year, month)
}

// WriteMonthlyReport renders report as an xlsx workbook with a per-employee
// summary sheet and a per-day detail sheet. Times are written in loc.
func WriteMonthlyReport(w io.Writer, report attendance.MonthlyAttendanceReport, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(DailySheet); err != nil {
		return fmt.Errorf("create daily sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeHeader(f, SummarySheet, summaryHeaders, headerStyle); err != nil {
		return err
	}
	if err := writeHeader(f, DailySheet, dailyHeaders, headerStyle); err != nil {
		return err
	}

	summaryRow, dailyRow := 2, 2
	for _, emp := range report.EmployeeReports {
		if err := setRow(f, SummarySheet, summaryRow, []interface{}{
			emp.EmployeeCode,
			emp.EmployeeName,
			emp.DaysWorked,
			emp.PresentDays,
			emp.PartialDays,
			emp.TotalHours,
			emp.AverageHoursPerDay,
		}); err != nil {
			return err
		}
		summaryRow++

		for _, day := range emp.DailySummary {
			if err := setRow(f, DailySheet, dailyRow, []interface{}{
				emp.EmployeeCode,
				emp.EmployeeName,
				day.Date,
				clock(day.CheckIn, loc),
				clock(day.CheckOut, loc),
				day.TotalHours,
				string(day.Status),
			}); err != nil {
				return err
			}
			dailyRow++
		}
	}

	if err := setRow(f, SummarySheet, summaryRow+1, []interface{}{
		"Total",
		fmt.Sprintf("%d employees", report.TotalEmployees),
		nil, nil, nil,
		report.TotalHours,
		report.AverageHoursPerEmployee,
	}); err != nil {
		return err
	}

	if err := f.SetColWidth(SummarySheet, "A", "B", 24); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(DailySheet, "A", "B", 24); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	values := make([]interface{}, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	if err := setRow(f, sheet, 1, values); err != nil {
		return err
	}

	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return fmt.Errorf("header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func clock(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return t.In(loc).Format("15:04")
}
