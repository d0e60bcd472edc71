// Package session manages quick-block sessions, the on-demand blocking
// layer that takes precedence over schedules. A session carries its own
// rule lists, seeded from the persisted settings when none are given, and
// runs either until a deadline or until ended by hand.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/smorton/sitegate/internal/constants"
	"github.com/smorton/sitegate/internal/logger"
	"github.com/smorton/sitegate/internal/models"
	"github.com/smorton/sitegate/internal/storage"
)

var (
	ErrAlreadyActive   = errors.New("a quick-block session is already active")
	ErrNotActive       = errors.New("no quick-block session is active")
	ErrInvalidDuration = errors.New("session duration must be greater than zero")
	ErrNoRules         = errors.New("the session has no rules to enforce")
)

// SeedSource supplies default rule lists for sessions started without
// explicit overrides. The settings store implements it.
type SeedSource interface {
	QuickBlockSeed() (models.QuickBlockRules, error)
}

type Manager struct {
	store storage.Backend
	seeds SeedSource
	now   func() time.Time
}

func NewManager(store storage.Backend, seeds SeedSource) *Manager {
	return &Manager{store: store, seeds: seeds, now: time.Now}
}

// NewManagerAt builds a manager with a fixed clock, for tests.
func NewManagerAt(store storage.Backend, seeds SeedSource, now func() time.Time) *Manager {
	return &Manager{store: store, seeds: seeds, now: now}
}

func (m *Manager) load() (models.QuickBlockSession, error) {
	data, ok, err := m.store.Get(constants.KeyQuickBlock)
	if err != nil {
		return models.QuickBlockSession{}, fmt.Errorf("failed to read session state: %w", err)
	}
	if !ok {
		return models.QuickBlockSession{}, nil
	}

	var session models.QuickBlockSession
	if err := json.Unmarshal(data, &session); err != nil {
		logger.Warn("Corrupt session document, treating as inactive", "error", err)
		return models.QuickBlockSession{}, nil
	}
	return session, nil
}

func (m *Manager) persist(session models.QuickBlockSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to serialize session state: %w", err)
	}
	if err := m.store.Set(constants.KeyQuickBlock, data); err != nil {
		return fmt.Errorf("failed to write session state: %w", err)
	}
	return nil
}

// end clears the timing fields but keeps the rule lists, so the next Start
// without overrides reuses them.
func end(session models.QuickBlockSession) models.QuickBlockSession {
	session.IsActive = false
	session.StartTime = nil
	session.EndTime = nil
	return session
}

// Status returns the session after lazy expiry handling.
func (m *Manager) Status() (models.QuickBlockSession, error) {
	session, err := m.load()
	if err != nil {
		return models.QuickBlockSession{}, err
	}
	if session.IsActive && session.Expired(m.now()) {
		cleared := end(session)
		if err := m.persist(cleared); err != nil {
			return models.QuickBlockSession{}, err
		}
		logger.Info("Quick-block session expired")
		return cleared, nil
	}
	return session, nil
}

// Active returns the current session when one is running, or nil. The
// engine consumes this directly.
func (m *Manager) Active() (*models.QuickBlockSession, error) {
	session, err := m.Status()
	if err != nil {
		return nil, err
	}
	if !session.IsActive {
		return nil, nil
	}
	return &session, nil
}

// ExpiryTime reports when the running session ends, or nil for an untimed
// session or no session. Callers schedule their wake-ups from it.
func (m *Manager) ExpiryTime() (*time.Time, error) {
	session, err := m.Status()
	if err != nil {
		return nil, err
	}
	if !session.IsActive {
		return nil, nil
	}
	return session.EndTime, nil
}

// Start begins a session. A nil duration means the session runs until
// ended by hand. Non-empty override lists replace the corresponding seeded
// lists; empty ones fall through to the rules left by the previous
// session, then to the configured defaults.
func (m *Manager) Start(duration *time.Duration, overrides models.QuickBlockRules) error {
	if duration != nil && *duration <= 0 {
		return ErrInvalidDuration
	}

	session, err := m.Status()
	if err != nil {
		return err
	}
	if session.IsActive {
		return ErrAlreadyActive
	}

	rules := models.QuickBlockRules{
		BlockedDomains:  session.BlockedDomains,
		URLKeywords:     session.URLKeywords,
		ContentKeywords: session.ContentKeywords,
	}
	if rules.Empty() && m.seeds != nil {
		seed, err := m.seeds.QuickBlockSeed()
		if err != nil {
			return fmt.Errorf("failed to load default session rules: %w", err)
		}
		rules = seed
	}
	if len(overrides.BlockedDomains) > 0 {
		rules.BlockedDomains = overrides.BlockedDomains
	}
	if len(overrides.URLKeywords) > 0 {
		rules.URLKeywords = overrides.URLKeywords
	}
	if len(overrides.ContentKeywords) > 0 {
		rules.ContentKeywords = overrides.ContentKeywords
	}
	if rules.Empty() {
		return ErrNoRules
	}

	start := m.now()
	next := models.QuickBlockSession{
		IsActive:        true,
		StartTime:       &start,
		BlockedDomains:  rules.BlockedDomains,
		URLKeywords:     rules.URLKeywords,
		ContentKeywords: rules.ContentKeywords,
	}
	if duration != nil {
		endAt := start.Add(*duration)
		next.EndTime = &endAt
	}
	if err := m.persist(next); err != nil {
		return err
	}
	logger.Info("Quick-block session started",
		"domains", len(rules.BlockedDomains),
		"urlKeywords", len(rules.URLKeywords),
		"contentKeywords", len(rules.ContentKeywords),
		"untimed", duration == nil)
	return nil
}

// Extend pushes the running session's deadline out by additional. An
// untimed session gains a deadline measured from now.
func (m *Manager) Extend(additional time.Duration) error {
	if additional <= 0 {
		return ErrInvalidDuration
	}

	session, err := m.Status()
	if err != nil {
		return err
	}
	if !session.IsActive {
		return ErrNotActive
	}

	base := m.now()
	if session.EndTime != nil {
		base = *session.EndTime
	}
	endAt := base.Add(additional)
	session.EndTime = &endAt
	if err := m.persist(session); err != nil {
		return err
	}
	logger.Info("Quick-block session extended", "end", endAt.Format(time.RFC3339))
	return nil
}

// End stops the running session.
func (m *Manager) End() error {
	session, err := m.Status()
	if err != nil {
		return err
	}
	if !session.IsActive {
		return ErrNotActive
	}
	if err := m.persist(end(session)); err != nil {
		return err
	}
	logger.Info("Quick-block session ended")
	return nil
}

// AddRule appends a value to one of the running session's rule lists.
func (m *Manager) AddRule(kind models.MatchType, value string) error {
	if value == "" {
		return fmt.Errorf("rule value must not be empty")
	}

	session, err := m.Status()
	if err != nil {
		return err
	}
	if !session.IsActive {
		return ErrNotActive
	}

	switch kind {
	case models.MatchDomain:
		session.BlockedDomains = appendUnique(session.BlockedDomains, value)
	case models.MatchURLKeyword:
		session.URLKeywords = appendUnique(session.URLKeywords, value)
	case models.MatchContentKeyword:
		session.ContentKeywords = appendUnique(session.ContentKeywords, value)
	default:
		return fmt.Errorf("unknown rule type %q", kind)
	}
	return m.persist(session)
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
