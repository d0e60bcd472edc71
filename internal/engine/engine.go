// Package engine composes the matcher primitives, schedule activation, and
// quick-block session state into a single prioritized blocking decision.
package engine

import (
	"time"

	"github.com/smorton/sitegate/internal/matcher"
	"github.com/smorton/sitegate/internal/models"
	"github.com/smorton/sitegate/internal/schedule"
)

// matchRules runs the fixed sub-order for a rule set: domains, then URL
// keywords, then content keywords. Content keywords are only consulted when
// a document's text was supplied. Each sub-check short-circuits.
func matchRules(rawURL, pageText string, domains, urlKeywords, contentKeywords []string) (models.MatchType, string, bool) {
	if v, ok := matcher.MatchDomains(rawURL, domains); ok {
		return models.MatchDomain, v, true
	}
	if v, ok := matcher.MatchURLKeyword(rawURL, urlKeywords); ok {
		return models.MatchURLKeyword, v, true
	}
	if pageText != "" {
		if v, ok := matcher.MatchContentKeyword(pageText, contentKeywords); ok {
			return models.MatchContentKeyword, v, true
		}
	}
	return "", "", false
}

// Evaluate returns at most one block reason for a navigation event, in
// strict priority order: an active quick-block session wins over every
// schedule, and within schedules the first one in storage order to produce
// any match wins. A nil result means the page is not blocked.
//
// Callers must respect the match-type tag: content-keyword matches never
// justify navigation-level blocking, only element-level obscuring.
func Evaluate(rawURL, pageText string, session *models.QuickBlockSession, schedules []models.Schedule, now time.Time) *models.Match {
	if session != nil && session.IsActive && !session.Expired(now) {
		if mt, v, ok := matchRules(rawURL, pageText, session.BlockedDomains, session.URLKeywords, session.ContentKeywords); ok {
			return &models.Match{Layer: models.LayerQuickBlock, Type: mt, Value: v}
		}
	}

	for _, s := range schedule.Active(schedules, now) {
		if mt, v, ok := matchRules(rawURL, pageText, s.BlockedDomains, s.URLKeywords, s.ContentKeywords); ok {
			matched := s
			return &models.Match{Layer: models.LayerSchedule, Type: mt, Value: v, Schedule: &matched}
		}
	}

	return nil
}

// ShouldBlockPage evaluates a URL against schedules only, with no document
// and no session. Convenience for callers that redirect whole pages.
func ShouldBlockPage(rawURL string, schedules []models.Schedule, now time.Time) *models.Match {
	return Evaluate(rawURL, "", nil, schedules, now)
}
