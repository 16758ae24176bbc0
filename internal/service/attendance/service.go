package attendance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/export"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	"github.com/go-chi/jwtauth/v5"
	"golang.org/x/sync/errgroup"
)

// Options carries the organization-wide settings of the engine.
type Options struct {
	// Location defines calendar days; defaults to UTC
	Location *time.Location
	// RecentLimit is the default size of the live activity feed
	RecentLimit int
}

type AttendanceServiceImpl struct {
	db *database.DB
	attendance.EventRepository
	attendance.EmployeeDirectory
	jwtService jwt.Service
	hub        *sse.Hub
	metrics    *metrics.Metrics

	location    *time.Location
	recentLimit int
	now         func() time.Time
	withTx      func(ctx context.Context, fn func(txCtx context.Context) error) error
}

func NewAttendanceService(
	db *database.DB,
	eventRepo attendance.EventRepository,
	employeeDirectory attendance.EmployeeDirectory,
	jwtService jwt.Service,
	hub *sse.Hub,
	m *metrics.Metrics,
	opts Options,
) attendance.AttendanceService {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	recentLimit := opts.RecentLimit
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}

	return &AttendanceServiceImpl{
		db:                db,
		EventRepository:   eventRepo,
		EmployeeDirectory: employeeDirectory,
		jwtService:        jwtService,
		hub:               hub,
		metrics:           m,
		location:          loc,
		recentLimit:       recentLimit,
		now:               time.Now,
		withTx: func(ctx context.Context, fn func(txCtx context.Context) error) error {
			return postgresql.WithTransaction(ctx, db, fn)
		},
	}
}

// scope extracts the caller's organization and branch scope from JWT claims
func (s *AttendanceServiceImpl) scope(ctx context.Context) (jwt.Scope, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return jwt.Scope{}, fmt.Errorf("%w: %v", attendance.ErrOrganizationRequired, err)
	}

	scope, err := jwt.ScopeFromClaims(claims)
	if err != nil {
		return jwt.Scope{}, fmt.Errorf("%w: %v", attendance.ErrOrganizationRequired, err)
	}
	return scope, nil
}

// branchFilter narrows a query to the requested branch, or to every branch of the scope.
func branchFilter(scope jwt.Scope, requested *string) (*string, []string, error) {
	if requested != nil && *requested != "" {
		if !scope.CanSeeBranch(*requested) {
			return nil, nil, attendance.ErrUnscoped
		}
		return requested, nil, nil
	}
	return nil, scope.BranchIDs, nil
}

// effectiveBranches flattens branchFilter into one list; empty means all branches.
func effectiveBranches(branchID *string, branchIDs []string) []string {
	if branchID != nil {
		return []string{*branchID}
	}
	return branchIDs
}

// dateRange turns optional YYYY-MM-DD bounds into an inclusive-exclusive instant window.
func (s *AttendanceServiceImpl) dateRange(startDate, endDate *string) (*time.Time, *time.Time) {
	var start, end *time.Time
	if startDate != nil {
		if d, ok := validator.IsValidDate(*startDate); ok {
			from, _ := dayBounds(d, s.location)
			start = &from
		}
	}
	if endDate != nil {
		if d, ok := validator.IsValidDate(*endDate); ok {
			_, until := dayBounds(d, s.location)
			end = &until
		}
	}
	return start, end
}

func (s *AttendanceServiceImpl) listEvents(ctx context.Context, query attendance.EventQuery) ([]attendance.Event, error) {
	events, err := s.EventRepository.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance events: %w", err)
	}
	return events, nil
}

// ListEvents implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListEvents(ctx context.Context, req attendance.ListEventsRequest) (attendance.ListEventsResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ListEventsResponse{}, err
	}

	scope, err := s.scope(ctx)
	if err != nil {
		return attendance.ListEventsResponse{}, err
	}
	branchID, branchIDs, err := branchFilter(scope, req.BranchID)
	if err != nil {
		return attendance.ListEventsResponse{}, err
	}

	query := attendance.EventQuery{
		OrganizationID: scope.OrganizationID,
		BranchID:       branchID,
		BranchIDs:      branchIDs,
		EmployeeID:     req.EmployeeID,
		NewestFirst:    true,
		Limit:          req.Limit,
		Offset:         (req.Page - 1) * req.Limit,
	}
	if req.EventType != nil {
		eventType := attendance.EventType(*req.EventType)
		query.EventType = &eventType
	}
	query.Start, query.End = s.dateRange(req.StartDate, req.EndDate)

	var (
		events []attendance.Event
		total  int64
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = s.listEvents(gCtx, query)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.EventRepository.Count(gCtx, query)
		if err != nil {
			return fmt.Errorf("failed to count attendance events: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return attendance.ListEventsResponse{}, err
	}

	responses := make([]attendance.EventResponse, 0, len(events))
	for _, ev := range events {
		responses = append(responses, mapEventToResponse(ev))
	}

	totalPages := int(math.Ceil(float64(total) / float64(req.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (req.Page-1)*req.Limit+1, min(req.Page*req.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListEventsResponse{
		TotalCount: total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Events:     responses,
	}, nil
}

func validateEventID(id string) error {
	if !validator.IsValidUUID(id) {
		return validator.ValidationErrors{{Field: "id", Message: "id must be a valid UUID"}}
	}
	return nil
}

// getScopedEvent loads an event and hides it when it lies outside the caller's branches.
func (s *AttendanceServiceImpl) getScopedEvent(ctx context.Context, scope jwt.Scope, id string) (attendance.Event, error) {
	ev, err := s.EventRepository.GetByID(ctx, id, scope.OrganizationID)
	if err != nil {
		if errors.Is(err, attendance.ErrEventNotFound) {
			return attendance.Event{}, attendance.ErrEventNotFound
		}
		return attendance.Event{}, fmt.Errorf("failed to get attendance event: %w", err)
	}
	if !scope.CanSeeBranch(ev.BranchID) {
		return attendance.Event{}, attendance.ErrEventNotFound
	}
	return ev, nil
}

// GetEvent implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetEvent(ctx context.Context, id string) (attendance.EventResponse, error) {
	if err := validateEventID(id); err != nil {
		return attendance.EventResponse{}, err
	}

	scope, err := s.scope(ctx)
	if err != nil {
		return attendance.EventResponse{}, err
	}

	ev, err := s.getScopedEvent(ctx, scope, id)
	if err != nil {
		return attendance.EventResponse{}, err
	}
	return mapEventToResponse(ev), nil
}

// DeleteEvent implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DeleteEvent(ctx context.Context, id string) error {
	if err := validateEventID(id); err != nil {
		return err
	}

	scope, err := s.scope(ctx)
	if err != nil {
		return err
	}

	err = s.withTx(ctx, func(txCtx context.Context) error {
		if _, err := s.getScopedEvent(txCtx, scope, id); err != nil {
			return err
		}
		if err := s.EventRepository.Delete(txCtx, id, scope.OrganizationID); err != nil {
			if errors.Is(err, attendance.ErrEventNotFound) {
				return attendance.ErrEventNotFound
			}
			return fmt.Errorf("failed to delete attendance event: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("Attendance event deleted",
		"event_id", id,
		"organization_id", scope.OrganizationID,
		"user_id", scope.UserID,
	)
	return nil
}

// GetSummary implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetSummary(ctx context.Context, req attendance.SummaryRequest) (summary attendance.AttendanceSummary, err error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceSummary{}, err
	}

	scope, err := s.scope(ctx)
	if err != nil {
		return attendance.AttendanceSummary{}, err
	}
	if !user.HasPermission(scope.Role, user.PermissionAttendanceViewAll) {
		if scope.EmployeeID == nil || *scope.EmployeeID != req.EmployeeID {
			return attendance.AttendanceSummary{}, attendance.ErrUnscoped
		}
	}

	startDate, _ := validator.IsValidDate(req.StartDate)
	endDate, _ := validator.IsValidDate(req.EndDate)
	start, _ := dayBounds(startDate, s.location)
	_, end := dayBounds(endDate, s.location)

	var events []attendance.Event
	defer func(began time.Time) {
		s.metrics.ObserveCompute("summary", began, len(events), err)
	}(time.Now())

	events, err = s.listEvents(ctx, attendance.EventQuery{
		OrganizationID: scope.OrganizationID,
		BranchIDs:      scope.BranchIDs,
		EmployeeID:     &req.EmployeeID,
		Start:          &start,
		End:            &end,
	})
	if err != nil {
		return attendance.AttendanceSummary{}, err
	}

	return BuildSummary(req.EmployeeID, startDate, endDate, events, s.location), nil
}

// GetDailyReport implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetDailyReport(ctx context.Context, req attendance.DailyReportRequest) (report attendance.DailyAttendanceReport, err error) {
	if err := req.Validate(); err != nil {
		return attendance.DailyAttendanceReport{}, err
	}

	scope, err := s.scope(ctx)
	if err != nil {
		return attendance.DailyAttendanceReport{}, err
	}
	branchID, branchIDs, err := branchFilter(scope, req.BranchID)
	if err != nil {
		return attendance.DailyAttendanceReport{}, err
	}

	date, _ := validator.IsValidDate(req.Date)
	start, end := dayBounds(date, s.location)

	var events []attendance.Event
	defer func(began time.Time) {
		s.metrics.ObserveCompute("daily_report", began, len(events), err)
	}(time.Now())

	events, err = s.listEvents(ctx, attendance.EventQuery{
		OrganizationID: scope.OrganizationID,
		BranchID:       branchID,
		BranchIDs:      branchIDs,
		Start:          &start,
		End:            &end,
	})
	if err != nil {
		return attendance.DailyAttendanceReport{}, err
	}

	return BuildDailyReport(req.Date, branchID, events), nil
}

// GetWeeklyReport implements attendance.AttendanceService.
// The whole week is fetched in one query and split per day in memory.
func (s *AttendanceServiceImpl) GetWeeklyReport(ctx context.Context, req attendance.WeeklyReportRequest) (report attendance.WeeklyAttendanceReport, err error) {
	if err := req.Validate(); err != nil {
		return attendance.WeeklyAttendanceReport{}, err
	}

	scope, err := s.scope(ctx)
	if err != nil {
		return attendance.WeeklyAttendanceReport{}, err
	}
	branchID, branchIDs, err := branchFilter(scope, req.BranchID)
	if err != nil {
		return attendance.WeeklyAttendanceReport{}, err
	}

	startDate, _ := validator.IsValidDate(req.StartDate)
	start, _ := dayBounds(startDate, s.location)
	end := start.AddDate(0, 0, daysPerWeek)

	var events []attendance.Event
	defer func(began time.Time) {
		s.metrics.ObserveCompute("weekly_report", began, len(events), err)
	}(time.Now())

	events, err = s.listEvents(ctx, attendance.EventQuery{
		OrganizationID: scope.OrganizationID,
		BranchID:       branchID,
		BranchIDs:      branchIDs,
		Start:          &start,
		End:            &end,
	})
	if err != nil {
		return attendance.WeeklyAttendanceReport{}, err
	}

	return BuildWeeklyReport(ctx, startDate, branchID, events, s.location)
}

// GetMonthlyReport implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMonthlyReport(ctx context.Context, req attendance.MonthlyReportRequest) (report attendance.MonthlyAttendanceReport, err error) {
	if err := req.Validate(); err != nil {
		return attendance.MonthlyAttendanceReport{}, err
	}

	scope, err := s.scope(ctx)
	if err != nil {
		return attendance.MonthlyAttendanceReport{}, err
	}
	branchID, branchIDs, err := branchFilter(scope, req.BranchID)
	if err != nil {
		return attendance.MonthlyAttendanceReport{}, err
	}

	start := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, s.location)
	end := start.AddDate(0, 1, 0)

	var events []attendance.Event
	defer func(began time.Time) {
		s.metrics.ObserveCompute("monthly_report", began, len(events), err)
	}(time.Now())

	events, err = s.listEvents(ctx, attendance.EventQuery{
		OrganizationID: scope.OrganizationID,
		BranchID:       branchID,
		BranchIDs:      branchIDs,
		Start:          &start,
		End:            &end,
	})
	if err != nil {
		return attendance.MonthlyAttendanceReport{}, err
	}

	return BuildMonthlyReport(req.Year, req.Month, branchID, events, s.location), nil
}

// ExportMonthlyReport implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ExportMonthlyReport(ctx context.Context, req attendance.MonthlyReportRequest, w io.Writer) error {
	report, err := s.GetMonthlyReport(ctx, req)
	if err != nil {
		return err
	}

	if err := export.WriteMonthlyReport(w, report, s.location); err != nil {
		return fmt.Errorf("failed to export monthly report: %w", err)
	}
	return nil
}

// GetLive implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetLive(ctx context.Context, req attendance.LiveRequest) (attendance.LiveAttendance, error) {
	if err := req.Validate(); err != nil {
		return attendance.LiveAttendance{}, err
	}

	scope, err := s.scope(ctx)
	if err != nil {
		return attendance.LiveAttendance{}, err
	}
	branchID, branchIDs, err := branchFilter(scope, req.BranchID)
	if err != nil {
		return attendance.LiveAttendance{}, err
	}

	limit := req.Limit
	if limit == 0 {
		limit = s.recentLimit
	}
	return s.liveSnapshot(ctx, scope.OrganizationID, effectiveBranches(branchID, branchIDs), limit)
}

// liveSnapshot reads today's events up to now and derives presence from them.
func (s *AttendanceServiceImpl) liveSnapshot(ctx context.Context, organizationID string, branchIDs []string, limit int) (live attendance.LiveAttendance, err error) {
	now := s.now()
	start := dayStart(now, s.location)

	var events []attendance.Event
	defer func(began time.Time) {
		s.metrics.ObserveCompute("live", began, len(events), err)
	}(time.Now())

	events, err = s.listEvents(ctx, attendance.EventQuery{
		OrganizationID: organizationID,
		BranchIDs:      branchIDs,
		Start:          &start,
		End:            &now,
	})
	if err != nil {
		return attendance.LiveAttendance{}, err
	}

	return TrackLive(events, now, limit), nil
}

// GetStats implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetStats(ctx context.Context, req attendance.StatsRequest) (stats attendance.AttendanceStats, err error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceStats{}, err
	}

	scope, err := s.scope(ctx)
	if err != nil {
		return attendance.AttendanceStats{}, err
	}
	branchID, branchIDs, err := branchFilter(scope, req.BranchID)
	if err != nil {
		return attendance.AttendanceStats{}, err
	}

	query := attendance.EventQuery{
		OrganizationID: scope.OrganizationID,
		BranchID:       branchID,
		BranchIDs:      branchIDs,
	}
	query.Start, query.End = s.dateRange(req.StartDate, req.EndDate)

	var events []attendance.Event
	defer func(began time.Time) {
		s.metrics.ObserveCompute("stats", began, len(events), err)
	}(time.Now())

	events, err = s.listEvents(ctx, query)
	if err != nil {
		return attendance.AttendanceStats{}, err
	}

	directory, err := s.EmployeeDirectory.GetByIDs(ctx, scope.OrganizationID, employeeIDs(events))
	if err != nil {
		return attendance.AttendanceStats{}, fmt.Errorf("failed to resolve employees: %w", err)
	}

	return BuildStats(events, directory), nil
}

// GetLiveToken implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetLiveToken(ctx context.Context, req attendance.LiveRequest) (attendance.LiveTokenResponse, error) {
	scope, err := s.scope(ctx)
	if err != nil {
		return attendance.LiveTokenResponse{}, err
	}
	branchID, branchIDs, err := branchFilter(scope, req.BranchID)
	if err != nil {
		return attendance.LiveTokenResponse{}, err
	}

	scope.BranchIDs = effectiveBranches(branchID, branchIDs)
	token, expiresIn, err := s.jwtService.GenerateSSEToken(scope)
	if err != nil {
		return attendance.LiveTokenResponse{}, fmt.Errorf("failed to generate live token: %w", err)
	}

	return attendance.LiveTokenResponse{Token: token, ExpiresIn: expiresIn}, nil
}

// SubscribeLive implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) SubscribeLive(ctx context.Context, token string) (attendance.LiveSubscription, error) {
	scope, err := s.jwtService.ValidateSSEToken(token)
	if err != nil {
		return attendance.LiveSubscription{}, fmt.Errorf("%w: %v", user.ErrInvalidToken, err)
	}

	initial, err := s.liveSnapshot(ctx, scope.OrganizationID, scope.BranchIDs, s.recentLimit)
	if err != nil {
		return attendance.LiveSubscription{}, err
	}

	topic := attendance.LiveTopic(scope.OrganizationID, scope.BranchIDs)
	events, cleanup := s.hub.Subscribe(topic)
	s.metrics.SetLiveSubscribers(s.hub.TotalSubscribers())

	slog.Debug("Live attendance subscriber connected", "topic", topic, "user_id", scope.UserID)

	return attendance.LiveSubscription{
		Topic:   topic,
		Initial: initial,
		Events:  events,
		Close: func() {
			cleanup()
			s.metrics.SetLiveSubscribers(s.hub.TotalSubscribers())
		},
	}, nil
}

// PublishLive implements attendance.AttendanceService.
// A failing topic is logged and skipped so the remaining subscribers still get their push.
func (s *AttendanceServiceImpl) PublishLive(ctx context.Context) error {
	var errs []error
	for _, topic := range s.hub.Topics() {
		organizationID, branchIDs, err := attendance.ParseLiveTopic(topic)
		if err != nil {
			errs = append(errs, fmt.Errorf("topic %q: %w", topic, err))
			continue
		}

		snapshot, err := s.liveSnapshot(ctx, organizationID, branchIDs, s.recentLimit)
		if err != nil {
			slog.Error("Failed to build live attendance snapshot", "topic", topic, "error", err)
			errs = append(errs, fmt.Errorf("topic %q: %w", topic, err))
			continue
		}

		s.hub.Publish(topic, sse.Event{Event: attendance.LiveEventName, Data: snapshot})
		s.metrics.IncLivePublished()
	}
	return errors.Join(errs...)
}
