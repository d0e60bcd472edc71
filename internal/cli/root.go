package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/smorton/sitegate/internal/lock"
	"github.com/smorton/sitegate/internal/pause"
	"github.com/smorton/sitegate/internal/session"
	"github.com/smorton/sitegate/internal/settings"
	"github.com/smorton/sitegate/internal/storage"
)

// ErrBlocked is returned by the check command when the URL is blocked, so
// main can translate a block verdict into a distinct exit code for
// scripting.
var ErrBlocked = errors.New("blocked")

type Context struct {
	Backends *storage.Dual
	Settings *settings.Store
	Lock     *lock.Manager
	Pause    *pause.Manager
	Session  *session.Manager
}

// ParseWeekdays parses a comma-separated list of weekdays into day numbers
// (0=Sunday, 6=Saturday). Names, three-letter abbreviations, and bare
// numbers are all accepted.
func ParseWeekdays(s string) ([]int, error) {
	dayMap := map[string]int{
		"sun": 0, "sunday": 0,
		"mon": 1, "monday": 1,
		"tue": 2, "tuesday": 2,
		"wed": 3, "wednesday": 3,
		"thu": 4, "thursday": 4,
		"fri": 5, "friday": 5,
		"sat": 6, "saturday": 6,
	}

	var days []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if d, ok := dayMap[part]; ok {
			days = append(days, d)
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 || num > 6 {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
		days = append(days, num)
	}
	return days, nil
}

// FormatWeekdays renders a day-number list as three-letter names.
func FormatWeekdays(days []int) string {
	names := make([]string, 0, len(days))
	for _, d := range days {
		if d < 0 || d > 6 {
			continue
		}
		names = append(names, time.Weekday(d).String()[:3])
	}
	return strings.Join(names, ",")
}

// SplitList parses a comma-separated flag value into trimmed, non-empty
// items.
func SplitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// FormatRemaining renders a duration until a deadline in whole minutes,
// rounded up so "1 minute left" never reads as zero.
func FormatRemaining(until time.Time, now time.Time) string {
	remaining := until.Sub(now)
	if remaining <= 0 {
		return "0 minutes"
	}
	minutes := int((remaining + time.Minute - 1) / time.Minute)
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
