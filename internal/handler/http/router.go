package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions holds the process-level settings the router needs.
type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	Version        string
	LogLevel       slog.Level
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, attendanceHandler AttendanceHandler, m *metrics.Metrics) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-cmlabs"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Handle("/metrics", m.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// The stream authenticates with its own short-lived token
		r.Get("/attendance/live/stream", attendanceHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/attendance", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionAttendanceViewOwn)).
					Get("/summary", attendanceHandler.Summary)

				r.Route("/events", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).Get("/", attendanceHandler.List)
					r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).Get("/{id}", attendanceHandler.Get)
					r.With(middleware.RequirePermission(user.PermissionAttendanceManage)).Delete("/{id}", attendanceHandler.Delete)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionReportsView))
					r.Get("/reports/daily", attendanceHandler.DailyReport)
					r.Get("/reports/weekly", attendanceHandler.WeeklyReport)
					r.Get("/reports/monthly", attendanceHandler.MonthlyReport)
					r.Get("/reports/monthly/export", attendanceHandler.ExportMonthlyReport)
					r.Get("/stats", attendanceHandler.Stats)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceViewAll))
					r.Get("/live", attendanceHandler.Live)
					r.Get("/live/token", attendanceHandler.LiveToken)
				})
			})
		})
	})
	return r
}
