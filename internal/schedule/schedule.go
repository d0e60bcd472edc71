// Package schedule decides whether a blocking schedule is currently in
// window. Matching is tolerant of corrupt stored data: unparseable time
// strings make a period non-matching instead of raising an error. Strict
// validation only happens at authoring time.
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/smorton/sitegate/internal/matcher"
	"github.com/smorton/sitegate/internal/models"
)

const minutesPerDay = 24 * 60

var timeRe = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// ValidTimeString reports whether s is a strict HH:MM time-of-day string.
// Used when schedules are authored, not when they are matched.
func ValidTimeString(s string) bool {
	return timeRe.MatchString(s)
}

// parseMinutes converts an HH:MM string to minutes since midnight. Corrupt
// values report ok=false rather than an error so matching can skip them.
func parseMinutes(s string) (int, bool) {
	h, m, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, false
	}
	hours, err := strconv.Atoi(h)
	if err != nil {
		return 0, false
	}
	mins, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	if hours < 0 || hours > 23 || mins < 0 || mins > 59 {
		return 0, false
	}
	return hours*60 + mins, true
}

// IsTimeInPeriod reports whether now's time-of-day falls inside the period.
// A period whose end is before its start wraps past midnight: it matches
// when the current minute is at or after the start OR before the end.
// Otherwise the period is the half-open interval [start, end).
func IsTimeInPeriod(p models.TimePeriod, now time.Time) bool {
	start, ok := parseMinutes(p.StartTime)
	if !ok {
		return false
	}
	end, ok := parseMinutes(p.EndTime)
	if !ok {
		return false
	}
	cur := now.Hour()*60 + now.Minute()

	if end < start {
		return cur >= start || cur < end
	}
	return cur >= start && cur < end
}

// IsActive reports whether the schedule is currently in window: it must be
// enabled, now's weekday must be listed, and at least one time period must
// contain now.
func IsActive(s models.Schedule, now time.Time) bool {
	if !s.Enabled {
		return false
	}
	weekday := int(now.Weekday())
	onDay := false
	for _, d := range s.Days {
		if d == weekday {
			onDay = true
			break
		}
	}
	if !onDay {
		return false
	}
	for _, p := range s.TimePeriods {
		if IsTimeInPeriod(p, now) {
			return true
		}
	}
	return false
}

// Active filters schedules to those currently in window, preserving storage
// order. The set is recomputed on every call so edits take effect on the
// very next check.
func Active(schedules []models.Schedule, now time.Time) []models.Schedule {
	var active []models.Schedule
	for _, s := range schedules {
		if IsActive(s, now) {
			active = append(active, s)
		}
	}
	return active
}

// segments splits a period into non-wrapping [start, end) minute intervals.
func segments(p models.TimePeriod) [][2]int {
	start, ok := parseMinutes(p.StartTime)
	if !ok {
		return nil
	}
	end, ok := parseMinutes(p.EndTime)
	if !ok {
		return nil
	}
	if end < start {
		return [][2]int{{start, minutesPerDay}, {0, end}}
	}
	return [][2]int{{start, end}}
}

// PeriodsOverlap reports whether two periods' minute intervals intersect,
// with the same midnight-wrap handling as matching.
func PeriodsOverlap(a, b models.TimePeriod) bool {
	for _, sa := range segments(a) {
		for _, sb := range segments(b) {
			if sa[0] < sb[1] && sb[0] < sa[1] {
				return true
			}
		}
	}
	return false
}

// Validate checks a schedule at authoring time. Stored schedules that would
// fail these checks are still matched leniently; this only gates saves.
func Validate(s models.Schedule) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("schedule name is required")
	}
	if len(s.Days) == 0 {
		return fmt.Errorf("schedule %q must apply to at least one weekday", s.Name)
	}
	for _, d := range s.Days {
		if d < 0 || d > 6 {
			return fmt.Errorf("schedule %q has invalid weekday %d (must be 0-6)", s.Name, d)
		}
	}
	if len(s.TimePeriods) == 0 {
		return fmt.Errorf("schedule %q must have at least one time period", s.Name)
	}
	for _, p := range s.TimePeriods {
		if !ValidTimeString(p.StartTime) {
			return fmt.Errorf("schedule %q has invalid start time %q (expected HH:MM)", s.Name, p.StartTime)
		}
		if !ValidTimeString(p.EndTime) {
			return fmt.Errorf("schedule %q has invalid end time %q (expected HH:MM)", s.Name, p.EndTime)
		}
	}
	for i := 0; i < len(s.TimePeriods); i++ {
		for j := i + 1; j < len(s.TimePeriods); j++ {
			if PeriodsOverlap(s.TimePeriods[i], s.TimePeriods[j]) {
				return fmt.Errorf("schedule %q has overlapping time periods %s-%s and %s-%s",
					s.Name,
					s.TimePeriods[i].StartTime, s.TimePeriods[i].EndTime,
					s.TimePeriods[j].StartTime, s.TimePeriods[j].EndTime)
			}
		}
	}
	if !s.HasRules() {
		return fmt.Errorf("schedule %q must have at least one blocked domain or keyword", s.Name)
	}
	for _, d := range s.BlockedDomains {
		if !matcher.ValidDomainPattern(d) {
			return fmt.Errorf("schedule %q has invalid domain pattern %q", s.Name, d)
		}
	}
	return nil
}

// FormatWindow renders a schedule's days and periods for display on the
// block page and in listings, e.g. "Mon,Tue 09:00-17:00".
func FormatWindow(s models.Schedule) string {
	var days []string
	for _, d := range s.Days {
		if d >= 0 && d <= 6 {
			days = append(days, time.Weekday(d).String()[:3])
		}
	}
	var periods []string
	for _, p := range s.TimePeriods {
		periods = append(periods, fmt.Sprintf("%s-%s", p.StartTime, p.EndTime))
	}
	return strings.Join(days, ",") + " " + strings.Join(periods, ", ")
}
