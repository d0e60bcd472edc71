package models

// Settings is the root syncable configuration aggregate. Every read through
// the settings store returns a structurally complete document: stored
// partial or legacy documents are deep-merged against canonical defaults.
type Settings struct {
	Version  string           `json:"version"`
	Theme    string           `json:"theme"`
	Cosmetic CosmeticSettings `json:"cosmetic"`
	Blocking BlockingSettings `json:"blocking"`
}

// CosmeticSettings configures the cosmetic-filtering module: page-element
// toggles plus the blocked-channel list.
type CosmeticSettings struct {
	HideFeed        bool     `json:"hide_feed"`
	HideComments    bool     `json:"hide_comments"`
	HideSidebar     bool     `json:"hide_sidebar"`
	HideShorts      bool     `json:"hide_shorts"`
	BlockedChannels []string `json:"blocked_channels"`
}

// BlockingSettings holds the schedule list and the portable quick-block
// seed rules.
type BlockingSettings struct {
	Schedules  []Schedule      `json:"schedules"`
	QuickBlock QuickBlockRules `json:"quick_block"`
}

// QuickBlockRules is the rule-item shape shared by schedules and quick-block
// sessions, without any timing state.
type QuickBlockRules struct {
	BlockedDomains  []string `json:"blocked_domains"`
	URLKeywords     []string `json:"url_keywords"`
	ContentKeywords []string `json:"content_keywords"`
}

// Empty reports whether no rule items are configured.
func (r QuickBlockRules) Empty() bool {
	return len(r.BlockedDomains) == 0 && len(r.URLKeywords) == 0 && len(r.ContentKeywords) == 0
}
