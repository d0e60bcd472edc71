package models

// MatchLayer identifies which blocking layer produced a match. Quick-block
// sessions always take precedence over time-based schedules.
type MatchLayer string

const (
	LayerQuickBlock MatchLayer = "quick"
	LayerSchedule   MatchLayer = "schedule"
)

// MatchType identifies which rule kind matched within a layer.
type MatchType string

const (
	MatchDomain         MatchType = "domain"
	MatchURLKeyword     MatchType = "url_keyword"
	MatchContentKeyword MatchType = "content_keyword"
)

// Match is the result of a blocking check. At most one match is ever
// returned per check; a nil *Match means "not blocked".
type Match struct {
	Layer MatchLayer `json:"layer"`
	Type  MatchType  `json:"type"`
	// Value is the literal stored pattern or keyword that matched.
	Value string `json:"value"`
	// Schedule references the originating schedule for schedule-layer
	// matches, for display on the block page. Nil for quick-block matches.
	Schedule *Schedule `json:"schedule,omitempty"`
}

// Navigational reports whether the match justifies a full-page redirect.
// Content-keyword matches only ever justify element-level obscuring; a
// caller must never navigate away because of one.
func (m *Match) Navigational() bool {
	return m.Type != MatchContentKeyword
}
