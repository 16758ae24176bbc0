package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/export"
	"github.com/go-chi/chi/v5"
)

const streamKeepalive = 30 * time.Second

type AttendanceHandler interface {
	// Events
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)

	// Reports
	Summary(w http.ResponseWriter, r *http.Request)
	DailyReport(w http.ResponseWriter, r *http.Request)
	WeeklyReport(w http.ResponseWriter, r *http.Request)
	MonthlyReport(w http.ResponseWriter, r *http.Request)
	ExportMonthlyReport(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)

	// Live
	Live(w http.ResponseWriter, r *http.Request)
	LiveToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// optionalQuery returns nil for an absent or empty query parameter.
func optionalQuery(r *http.Request, key string) *string {
	if v := r.URL.Query().Get(key); v != "" {
		return &v
	}
	return nil
}

// getIntQueryParam gets an int query parameter with a default value
func getIntQueryParam(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}
	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return intVal
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	req := attendance.ListEventsRequest{
		EmployeeID: optionalQuery(r, "employee_id"),
		BranchID:   optionalQuery(r, "branch_id"),
		EventType:  optionalQuery(r, "event_type"),
		StartDate:  optionalQuery(r, "start_date"),
		EndDate:    optionalQuery(r, "end_date"),
		Page:       getIntQueryParam(r, "page", 1),
		Limit:      getIntQueryParam(r, "limit", 20),
	}

	result, err := h.attendanceService.ListEvents(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalCount,
		TotalPages: result.TotalPages,
	})
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Delete implements AttendanceHandler.
func (h *attendanceHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.attendanceService.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance event deleted successfully", nil)
}

// Summary implements AttendanceHandler.
func (h *attendanceHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := attendance.SummaryRequest{
		EmployeeID: q.Get("employee_id"),
		StartDate:  q.Get("start_date"),
		EndDate:    q.Get("end_date"),
	}

	result, err := h.attendanceService.GetSummary(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// DailyReport implements AttendanceHandler.
func (h *attendanceHandlerImpl) DailyReport(w http.ResponseWriter, r *http.Request) {
	req := attendance.DailyReportRequest{
		Date:     r.URL.Query().Get("date"),
		BranchID: optionalQuery(r, "branch_id"),
	}

	result, err := h.attendanceService.GetDailyReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// WeeklyReport implements AttendanceHandler.
func (h *attendanceHandlerImpl) WeeklyReport(w http.ResponseWriter, r *http.Request) {
	req := attendance.WeeklyReportRequest{
		StartDate: r.URL.Query().Get("start_date"),
		BranchID:  optionalQuery(r, "branch_id"),
	}

	result, err := h.attendanceService.GetWeeklyReport(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// monthlyRequest reads year and month; unparsable values become zero and fail validation.
func monthlyRequest(r *http.Request) attendance.MonthlyReportRequest {
	return attendance.MonthlyReportRequest{
		Year:     getIntQueryParam(r, "year", 0),
		Month:    getIntQueryParam(r, "month", 0),
		BranchID: optionalQuery(r, "branch_id"),
	}
}

// MonthlyReport implements AttendanceHandler.
func (h *attendanceHandlerImpl) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetMonthlyReport(r.Context(), monthlyRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportMonthlyReport implements AttendanceHandler.
// The workbook is buffered so a failure can still be reported as JSON.
func (h *attendanceHandlerImpl) ExportMonthlyReport(w http.ResponseWriter, r *http.Request) {
	req := monthlyRequest(r)

	var buf bytes.Buffer
	if err := h.attendanceService.ExportMonthlyReport(r.Context(), req, &buf); err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.MonthlyFileName(req.Year, req.Month)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write monthly export", "error", err)
	}
}

// Stats implements AttendanceHandler.
func (h *attendanceHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	req := attendance.StatsRequest{
		BranchID:  optionalQuery(r, "branch_id"),
		StartDate: optionalQuery(r, "start_date"),
		EndDate:   optionalQuery(r, "end_date"),
	}

	result, err := h.attendanceService.GetStats(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func liveRequest(r *http.Request) attendance.LiveRequest {
	return attendance.LiveRequest{
		BranchID: optionalQuery(r, "branch_id"),
		Limit:    getIntQueryParam(r, "limit", 0),
	}
}

// Live implements AttendanceHandler.
func (h *attendanceHandlerImpl) Live(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetLive(r.Context(), liveRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// LiveToken implements AttendanceHandler.
func (h *attendanceHandlerImpl) LiveToken(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetLiveToken(r.Context(), liveRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// writeEvent writes one SSE frame and flushes it.
func writeEvent(w http.ResponseWriter, flusher http.Flusher, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

// Stream implements AttendanceHandler.
// EventSource cannot send headers, so the short-lived token arrives as a query parameter.
func (h *attendanceHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	sub, err := h.attendanceService.SubscribeLive(r.Context(), tokenStr)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, flusher, attendance.LiveEventName, sub.Initial); err != nil {
		slog.Debug("Live stream closed before initial snapshot", "topic", sub.Topic, "error", err)
		return
	}

	keepalive := time.NewTicker(streamKeepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-sub.Events:
			if !ok {
				return
			}
			if err := writeEvent(w, flusher, event.Event, event.Data); err != nil {
				slog.Debug("Live stream write failed", "topic", sub.Topic, "error", err)
				return
			}

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
