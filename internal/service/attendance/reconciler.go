package attendance

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

var hourUnit = decimal.NewFromInt(int64(time.Hour))

// Reconcile derives one employee's DaySummary from the events recorded on date.
// Check-ins and check-outs are paired by position after sorting each side by timestamp;
// a pair whose check-out does not follow its check-in adds nothing.
// The input slice is never modified.
func Reconcile(date string, events []attendance.Event) attendance.DaySummary {
	var checkIns, checkOuts []time.Time
	for _, e := range events {
		switch e.EventType {
		case attendance.EventTypeCheckIn:
			checkIns = append(checkIns, e.Timestamp)
		case attendance.EventTypeCheckOut:
			checkOuts = append(checkOuts, e.Timestamp)
		}
	}
	sortTimes(checkIns)
	sortTimes(checkOuts)

	var worked time.Duration
	validPairs := 0
	for i := 0; i < len(checkIns) && i < len(checkOuts); i++ {
		if checkOuts[i].After(checkIns[i]) {
			worked += checkOuts[i].Sub(checkIns[i])
			validPairs++
		}
	}

	summary := attendance.DaySummary{
		Date:       date,
		TotalHours: durationHours(worked),
		Status:     dayStatus(len(checkIns), len(checkOuts), validPairs),
	}
	if len(checkIns) > 0 {
		first := checkIns[0]
		summary.CheckIn = &first
	}
	if len(checkOuts) > 0 {
		last := checkOuts[len(checkOuts)-1]
		summary.CheckOut = &last
	}
	return summary
}

func dayStatus(checkIns, checkOuts, validPairs int) attendance.Status {
	switch {
	case checkIns == 0:
		return attendance.StatusAbsent
	case checkIns == checkOuts && validPairs > 0:
		return attendance.StatusPresent
	default:
		return attendance.StatusPartial
	}
}

func sortTimes(ts []time.Time) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
}

// durationHours converts d to hours rounded half away from zero at 2 decimals.
func durationHours(d time.Duration) float64 {
	return decimal.NewFromInt(int64(d)).Div(hourUnit).Round(2).InexactFloat64()
}

// sumHours adds already rounded hour values without accumulating float drift.
func sumHours(hours ...float64) float64 {
	total := decimal.Zero
	for _, h := range hours {
		total = total.Add(decimal.NewFromFloat(h))
	}
	return total.Round(2).InexactFloat64()
}

// divHours divides and rounds, returning 0 for an empty divisor.
func divHours(total float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return decimal.NewFromFloat(total).Div(decimal.NewFromInt(int64(n))).Round(2).InexactFloat64()
}

// dayStart returns local midnight of the calendar date t falls on in loc.
func dayStart(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// dayBounds returns the half-open interval [start, end) covering date in loc.
func dayBounds(date time.Time, loc *time.Location) (time.Time, time.Time) {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// dateKey formats the local calendar date of t.
func dateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(validator.DateLayout)
}
