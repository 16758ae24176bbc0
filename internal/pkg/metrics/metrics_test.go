package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/metrics"
)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	return rec.Body.String()
}

func TestMetrics_ObserveCompute(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.ObserveCompute("daily_report", time.Now().Add(-time.Second), 12, nil)
	m.ObserveCompute("daily_report", time.Now(), 3, errors.New("boom"))

	body := scrape(t, m)
	assert.Contains(t, body, `attendance_events_processed_total{operation="daily_report"} 15`)
	assert.Contains(t, body, `attendance_compute_failures_total{operation="daily_report"} 1`)
	assert.Contains(t, body, `attendance_compute_duration_seconds_count{operation="daily_report"} 2`)
}

func TestMetrics_Live(t *testing.T) {
	t.Parallel()

	m := metrics.New()
	m.SetLiveSubscribers(4)
	m.IncLivePublished()
	m.IncLivePublished()

	body := scrape(t, m)
	assert.Contains(t, body, "attendance_live_subscribers 4")
	assert.Contains(t, body, "attendance_live_snapshots_published_total 2")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.ObserveCompute("stats", time.Now(), 1, nil)
		m.SetLiveSubscribers(1)
		m.IncLivePublished()
	})
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	t.Parallel()

	a := metrics.New()
	b := metrics.New()
	a.IncLivePublished()

	assert.Contains(t, scrape(t, a), "attendance_live_snapshots_published_total 1")
	assert.Contains(t, scrape(t, b), "attendance_live_snapshots_published_total 0")
}
