package attendance

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// MaxSummaryDays bounds the per-day expansion of a summary range.
const MaxSummaryDays = 366

// invalidRange tags validation failures on date parameters so callers can match ErrInvalidRange.
func invalidRange(errs validator.ValidationErrors) error {
	return fmt.Errorf("%w: %w", ErrInvalidRange, errs)
}

// validateRange checks an optional or required start/end pair and appends problems to errs.
// maxDays of zero leaves the range length unbounded.
func validateRange(errs validator.ValidationErrors, start, end *string, required bool, maxDays int) validator.ValidationErrors {
	var startDate, endDate time.Time
	var startOK, endOK bool

	if start == nil || validator.IsEmpty(*start) {
		if required {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date is required",
			})
		}
	} else if startDate, startOK = validator.IsValidDate(*start); !startOK {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	if end == nil || validator.IsEmpty(*end) {
		if required {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date is required",
			})
		}
	} else if endDate, endOK = validator.IsValidDate(*end); !endOK {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be in YYYY-MM-DD format",
		})
	}

	if startOK && endOK {
		if endDate.Before(startDate) {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must not be before start_date",
			})
		} else if maxDays > 0 && validator.DaysBetween(startDate, endDate)+1 > maxDays {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: fmt.Sprintf("date range must not exceed %d days", maxDays),
			})
		}
	}

	return errs
}

// ========================================
// EVENT DTOs
// ========================================

// EventQuery is the pre-scoped filter handed to the event store.
// Start is inclusive and End is exclusive.
type EventQuery struct {
	OrganizationID string
	BranchID       *string
	BranchIDs      []string
	EmployeeID     *string
	EventType      *EventType
	Start          *time.Time
	End            *time.Time

	NewestFirst bool
	Limit       int
	Offset      int
}

type ListEventsRequest struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	BranchID   *string `json:"branch_id,omitempty"`
	EventType  *string `json:"event_type,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (r *ListEventsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if r.Page == 0 {
		r.Page = 1
	}

	if r.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if r.Limit == 0 {
		r.Limit = 20
	}
	if r.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if r.EventType != nil && !EventType(*r.EventType).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "event_type",
			Message: "event_type must be one of: CHECK_IN, CHECK_OUT",
		})
	}

	errs = validateRange(errs, r.StartDate, r.EndDate, false, 0)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeResponse struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	EmployeeCode string `json:"employeeCode"`
}

type DeviceResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type EventResponse struct {
	ID             string            `json:"id"`
	OrganizationID string            `json:"organizationId"`
	BranchID       string            `json:"branchId"`
	EmployeeID     *string           `json:"employeeId,omitempty"`
	DeviceID       *string           `json:"deviceId,omitempty"`
	EventType      EventType         `json:"eventType"`
	Timestamp      time.Time         `json:"timestamp"`
	Metadata       map[string]any    `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	Employee       *EmployeeResponse `json:"employee,omitempty"`
	Device         *DeviceResponse   `json:"device,omitempty"`
}

type ListEventsResponse struct {
	TotalCount int64           `json:"totalCount"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"totalPages"`
	Showing    string          `json:"showing"`
	Events     []EventResponse `json:"events"`
}

// ========================================
// SUMMARY DTOs
// ========================================

type DaySummary struct {
	Date       string     `json:"date"` // YYYY-MM-DD
	CheckIn    *time.Time `json:"checkIn,omitempty"`
	CheckOut   *time.Time `json:"checkOut,omitempty"`
	TotalHours float64    `json:"totalHours"`
	Status     Status     `json:"status"`
}

type SummaryRequest struct {
	EmployeeID string `json:"employee_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

func (r *SummaryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	errs = validateRange(errs, &r.StartDate, &r.EndDate, true, MaxSummaryDays)

	if len(errs) > 0 {
		return invalidRange(errs)
	}
	return nil
}

type AttendanceSummary struct {
	EmployeeID   string       `json:"employeeId"`
	StartDate    string       `json:"startDate"`
	EndDate      string       `json:"endDate"`
	TotalHours   float64      `json:"totalHours"`
	PresentDays  int          `json:"presentDays"`
	PartialDays  int          `json:"partialDays"`
	AbsentDays   int          `json:"absentDays"`
	DailySummary []DaySummary `json:"dailySummary"`
}

// ========================================
// REPORT DTOs
// ========================================

type DailyReportRequest struct {
	Date     string  `json:"date"`
	BranchID *string `json:"branch_id,omitempty"`
}

func (r *DailyReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return invalidRange(errs)
	}
	return nil
}

type WeeklyReportRequest struct {
	StartDate string  `json:"start_date"`
	BranchID  *string `json:"branch_id,omitempty"`
}

func (r *WeeklyReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StartDate) {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date is required",
		})
	} else if _, valid := validator.IsValidDate(r.StartDate); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return invalidRange(errs)
	}
	return nil
}

type MonthlyReportRequest struct {
	Year     int     `json:"year"`
	Month    int     `json:"month"`
	BranchID *string `json:"branch_id,omitempty"`
}

func (r *MonthlyReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	currentYear := time.Now().Year()
	if r.Year < 2000 || r.Year > currentYear+1 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: fmt.Sprintf("year must be between 2000 and %d", currentYear+1),
		})
	}

	if len(errs) > 0 {
		return invalidRange(errs)
	}
	return nil
}

type EmployeeDayRecord struct {
	EmployeeID   string     `json:"employeeId"`
	EmployeeCode string     `json:"employeeCode"`
	EmployeeName string     `json:"employeeName"`
	CheckIn      *time.Time `json:"checkIn,omitempty"`
	CheckOut     *time.Time `json:"checkOut,omitempty"`
	TotalHours   float64    `json:"totalHours"`
	Status       Status     `json:"status"`
}

type DailyAttendanceReport struct {
	Date             string              `json:"date"`
	BranchID         *string             `json:"branchId,omitempty"`
	TotalEmployees   int                 `json:"totalEmployees"`
	PresentEmployees int                 `json:"presentEmployees"`
	PartialEmployees int                 `json:"partialEmployees"`
	AbsentEmployees  int                 `json:"absentEmployees"`
	TotalHours       float64             `json:"totalHours"`
	AverageHours     float64             `json:"averageHours"`
	EmployeeDetails  []EmployeeDayRecord `json:"employeeDetails"`
}

type WeeklyAttendanceReport struct {
	StartDate         string                  `json:"startDate"`
	EndDate           string                  `json:"endDate"`
	BranchID          *string                 `json:"branchId,omitempty"`
	TotalHours        float64                 `json:"totalHours"`
	AverageDailyHours float64                 `json:"averageDailyHours"`
	TotalEmployees    int                     `json:"totalEmployees"`
	DailyReports      []DailyAttendanceReport `json:"dailyReports"`
}

type MonthlyEmployeeReport struct {
	EmployeeID         string       `json:"employeeId"`
	EmployeeCode       string       `json:"employeeCode"`
	EmployeeName       string       `json:"employeeName"`
	DaysWorked         int          `json:"daysWorked"`
	PresentDays        int          `json:"presentDays"`
	PartialDays        int          `json:"partialDays"`
	TotalHours         float64      `json:"totalHours"`
	AverageHoursPerDay float64      `json:"averageHoursPerDay"`
	DailySummary       []DaySummary `json:"dailySummary"`
}

type MonthlyAttendanceReport struct {
	Year                    int                     `json:"year"`
	Month                   int                     `json:"month"`
	BranchID                *string                 `json:"branchId,omitempty"`
	StartDate               string                  `json:"startDate"`
	EndDate                 string                  `json:"endDate"`
	TotalEmployees          int                     `json:"totalEmployees"`
	TotalHours              float64                 `json:"totalHours"`
	AverageHoursPerEmployee float64                 `json:"averageHoursPerEmployee"`
	EmployeeReports         []MonthlyEmployeeReport `json:"employeeReports"`
}

// ========================================
// LIVE DTOs
// ========================================

type LiveRequest struct {
	BranchID *string `json:"branch_id,omitempty"`
	Limit    int     `json:"limit"`
}

func (r *LiveRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Limit < 0 || r.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be between 1 and 100",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PresentEmployee struct {
	EmployeeID   string    `json:"employeeId"`
	EmployeeName string    `json:"employeeName"`
	EmployeeCode string    `json:"employeeCode"`
	CheckInTime  time.Time `json:"checkInTime"`
	Duration     string    `json:"duration"`
}

type LiveAttendance struct {
	CurrentlyPresent []PresentEmployee `json:"currentlyPresent"`
	RecentActivity   []EventResponse   `json:"recentActivity"`
}

type LiveTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

// ========================================
// STATS DTOs
// ========================================

type StatsRequest struct {
	BranchID  *string `json:"branch_id,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
}

func (r *StatsRequest) Validate() error {
	errs := validateRange(nil, r.StartDate, r.EndDate, false, 0)

	if len(errs) > 0 {
		return invalidRange(errs)
	}
	return nil
}

type EventTypeCount struct {
	EventType EventType `json:"eventType"`
	Count     int       `json:"count"`
}

type EmployeeRecordCount struct {
	EmployeeID   *string `json:"employeeId,omitempty"`
	EmployeeName string  `json:"employeeName"`
	Count        int     `json:"count"`
}

type AttendanceStats struct {
	TotalRecords      int                   `json:"totalRecords"`
	EventsByType      []EventTypeCount      `json:"eventsByType"`
	RecordsByEmployee []EmployeeRecordCount `json:"recordsByEmployee"`
}
