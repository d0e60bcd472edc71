package models

import "time"

// LockState is the device-local commitment lock. It is stored independently
// from syncable settings and is never exported or synced. Once active it can
// only be extended, never shortened or cancelled before natural expiry.
type LockState struct {
	IsLocked      bool       `json:"is_locked"`
	LockStartedAt *time.Time `json:"lock_started_at,omitempty"`
	LockEndTime   *time.Time `json:"lock_end_time,omitempty"`
	// OriginalDuration is the duration the lock was first activated with,
	// before any extensions.
	OriginalDuration time.Duration `json:"original_duration,omitempty"`
}

// Expired reports whether the lock's end time has passed.
func (l LockState) Expired(now time.Time) bool {
	return l.LockEndTime != nil && now.After(*l.LockEndTime)
}

// PauseState is the device-local suspend switch for the cosmetic-filtering
// module. It is independent of the commitment lock but subordinate to it.
type PauseState struct {
	IsPaused       bool       `json:"is_paused"`
	PauseStartedAt *time.Time `json:"pause_started_at,omitempty"`
	// PauseEndTime of nil means the pause is indefinite.
	PauseEndTime *time.Time `json:"pause_end_time,omitempty"`
}

// Indefinite reports whether the pause has no scheduled end.
func (p PauseState) Indefinite() bool {
	return p.IsPaused && p.PauseEndTime == nil
}

// Expired reports whether a timed pause has run out.
func (p PauseState) Expired(now time.Time) bool {
	return p.PauseEndTime != nil && now.After(*p.PauseEndTime)
}

// QuickBlockSession is the ephemeral, device-local focus session. Ending a
// session clears the active/timing fields but keeps the rule lists so they
// seed the next session.
type QuickBlockSession struct {
	IsActive  bool       `json:"is_active"`
	StartTime *time.Time `json:"start_time,omitempty"`
	// EndTime of nil while active means the session is indefinite.
	EndTime *time.Time `json:"end_time,omitempty"`

	BlockedDomains  []string `json:"blocked_domains"`
	URLKeywords     []string `json:"url_keywords"`
	ContentKeywords []string `json:"content_keywords"`
}

// Expired reports whether a timed session has run past its end time.
func (s QuickBlockSession) Expired(now time.Time) bool {
	return s.EndTime != nil && now.After(*s.EndTime)
}
