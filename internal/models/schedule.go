package models

// TimePeriod is a daily activation window in HH:MM bounds. A period whose
// end is earlier than its start wraps past midnight.
type TimePeriod struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Schedule is a named, user-authored time-boxed rule set. A schedule with no
// time periods or no blocking rules is never actionable; it degrades to
// "never matches" rather than erroring.
type Schedule struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Icon    string `json:"icon,omitempty"`
	Enabled bool   `json:"enabled"`
	// Days holds weekday integers 0 (Sunday) through 6 (Saturday).
	Days        []int        `json:"days"`
	TimePeriods []TimePeriod `json:"time_periods"`

	BlockedDomains  []string `json:"blocked_domains"`
	URLKeywords     []string `json:"url_keywords"`
	ContentKeywords []string `json:"content_keywords"`

	CreatedAt string `json:"created_at,omitempty"` // RFC3339 timestamp
	UpdatedAt string `json:"updated_at,omitempty"` // RFC3339 timestamp
}

// HasRules reports whether the schedule carries at least one blocking rule.
func (s Schedule) HasRules() bool {
	return len(s.BlockedDomains) > 0 || len(s.URLKeywords) > 0 || len(s.ContentKeywords) > 0
}
