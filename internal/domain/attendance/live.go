package attendance

import (
	"errors"
	"sort"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
)

const (
	LiveEventName = "live_attendance"

	allBranches = "*"
)

var ErrInvalidLiveTopic = errors.New("invalid live topic")

// LiveSubscription is an open live feed: the snapshot at subscribe time and later pushes.
type LiveSubscription struct {
	Topic   string
	Initial LiveAttendance
	Events  <-chan sse.Event
	Close   func()
}

// LiveTopic names the feed for an organization restricted to branchIDs.
// An empty branch list means every branch; order of ids does not matter.
func LiveTopic(organizationID string, branchIDs []string) string {
	if len(branchIDs) == 0 {
		return organizationID + ":" + allBranches
	}
	ids := append([]string(nil), branchIDs...)
	sort.Strings(ids)
	return organizationID + ":" + strings.Join(ids, ",")
}

// ParseLiveTopic reverses LiveTopic.
func ParseLiveTopic(topic string) (organizationID string, branchIDs []string, err error) {
	org, branches, ok := strings.Cut(topic, ":")
	if !ok || org == "" || branches == "" {
		return "", nil, ErrInvalidLiveTopic
	}
	if branches == allBranches {
		return org, nil, nil
	}
	return org, strings.Split(branches, ","), nil
}
