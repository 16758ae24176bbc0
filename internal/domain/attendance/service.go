package attendance

import (
	"context"
	"io"
)

// AttendanceService exposes the reconciliation and reporting engine to transport layers.
// Caller scope (organization and branches) is read from the JWT claims in ctx.
type AttendanceService interface {
	// ListEvents retrieves raw events with filters and pagination
	ListEvents(ctx context.Context, req ListEventsRequest) (ListEventsResponse, error)

	// GetEvent retrieves a single event by ID
	GetEvent(ctx context.Context, id string) (EventResponse, error)

	// DeleteEvent removes an event (administrative)
	DeleteEvent(ctx context.Context, id string) error

	// GetSummary reconciles one employee's events day by day over a date range
	GetSummary(ctx context.Context, req SummaryRequest) (AttendanceSummary, error)

	// GetDailyReport builds the per-employee report for one calendar day
	GetDailyReport(ctx context.Context, req DailyReportRequest) (DailyAttendanceReport, error)

	// GetWeeklyReport rolls up seven consecutive daily reports
	GetWeeklyReport(ctx context.Context, req WeeklyReportRequest) (WeeklyAttendanceReport, error)

	// GetMonthlyReport rolls up one calendar month per employee
	GetMonthlyReport(ctx context.Context, req MonthlyReportRequest) (MonthlyAttendanceReport, error)

	// ExportMonthlyReport writes the monthly report as an xlsx workbook
	ExportMonthlyReport(ctx context.Context, req MonthlyReportRequest, w io.Writer) error

	// GetLive returns who is currently on site and the latest activity
	GetLive(ctx context.Context, req LiveRequest) (LiveAttendance, error)

	// GetStats computes count-based statistics
	GetStats(ctx context.Context, req StatsRequest) (AttendanceStats, error)

	// GetLiveToken issues a short-lived token for the live stream, scoped to the requested branch
	GetLiveToken(ctx context.Context, req LiveRequest) (LiveTokenResponse, error)

	// SubscribeLive validates a live token and opens a subscription on its topic
	SubscribeLive(ctx context.Context, token string) (LiveSubscription, error)

	// PublishLive pushes a fresh snapshot to every topic with subscribers
	PublishLive(ctx context.Context) error
}
