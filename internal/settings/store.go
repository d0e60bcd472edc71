// Package settings persists the syncable configuration document: versioned
// reads with migration, debounced writes, and typed mutators for schedules
// and blocked channels. Mutations that loosen enforcement are gated behind
// the commitment lock; purely additive ones are not.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smorton/sitegate/internal/constants"
	"github.com/smorton/sitegate/internal/logger"
	"github.com/smorton/sitegate/internal/migration"
	"github.com/smorton/sitegate/internal/models"
	"github.com/smorton/sitegate/internal/schedule"
	"github.com/smorton/sitegate/internal/storage"
)

var (
	ErrScheduleExists   = errors.New("a schedule with this ID already exists")
	ErrScheduleNotFound = errors.New("no schedule with this ID exists")
	ErrChannelNotFound  = errors.New("this channel is not blocked")
)

// LockGuard gates mutations while a commitment lock is active. The lock
// manager implements it.
type LockGuard interface {
	Require() error
}

type Store struct {
	backends *storage.Dual
	guard    LockGuard
	now      func() time.Time

	mu       sync.Mutex
	pending  map[string]any
	timer    *time.Timer
	debounce time.Duration
}

func NewStore(backends *storage.Dual, guard LockGuard) *Store {
	return &Store{
		backends: backends,
		guard:    guard,
		now:      time.Now,
		debounce: constants.SettingsDebounce,
	}
}

// NewStoreAt builds a store with a fixed clock and no debounce window, for
// tests.
func NewStoreAt(backends *storage.Dual, guard LockGuard, now func() time.Time) *Store {
	return &Store{backends: backends, guard: guard, now: now}
}

// Get loads the settings document, migrating it to the current schema
// version when needed and merging it over the canonical defaults. A
// missing, corrupt, or unmigratable document yields the defaults rather
// than an error; only a storage-level dual failure surfaces.
func (s *Store) Get() (models.Settings, error) {
	data, ok, err := s.backends.Get(constants.KeySettings)
	if err != nil {
		return models.Settings{}, err
	}
	if !ok {
		return Defaults(), nil
	}

	doc := make(map[string]any)
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warn("Corrupt settings document, using defaults", "error", err)
		return Defaults(), nil
	}

	from, _ := doc["version"].(string)
	if from == "" {
		// Documents that predate versioning get the full migration chain.
		from = "1.0.0"
	}
	if migration.Compare(from, constants.SettingsVersion) != 0 {
		if err := migration.Run(doc, from, constants.SettingsVersion); err != nil {
			logger.Error("Settings migration failed, using defaults", "from", from, "error", err)
			return Defaults(), nil
		}
		if err := s.saveDoc(doc); err != nil {
			logger.Warn("Failed to persist migrated settings", "error", err)
		}
	}

	merged := deepMerge(defaultsDoc(), doc)
	result, err := decode(merged)
	if err != nil {
		logger.Warn("Malformed settings document, using defaults", "error", err)
		return Defaults(), nil
	}
	if result.Theme != constants.ThemeLight && result.Theme != constants.ThemeDark {
		result.Theme = constants.DefaultTheme
	}
	return result, nil
}

func decode(doc map[string]any) (models.Settings, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return models.Settings{}, err
	}
	var result models.Settings
	if err := json.Unmarshal(data, &result); err != nil {
		return models.Settings{}, err
	}
	return result, nil
}

func (s *Store) saveDoc(doc map[string]any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}
	return s.backends.Set(constants.KeySettings, data)
}

func (s *Store) save(settings models.Settings) error {
	settings.Version = constants.SettingsVersion
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}
	return s.backends.Set(constants.KeySettings, data)
}

// Update stages a partial document for writing. Rapid successive updates
// within the debounce window coalesce into a single write carrying only the
// most recent call's payload; earlier staged partials are discarded. The
// surviving partial is merged over a fresh read at flush time, so concurrent
// typed mutations are not clobbered. Call Flush to force the write and
// observe its error.
func (s *Store) Update(partial map[string]any) error {
	if err := s.guard.Require(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = partial
	if s.debounce <= 0 {
		return s.flushLocked()
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.flushLocked(); err != nil {
			logger.Error("Failed to write settings", "error", err)
		}
	})
	return nil
}

// Flush writes any staged partial immediately.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.pending == nil {
		return nil
	}
	pending := s.pending
	s.pending = nil

	current, err := s.Get()
	if err != nil {
		s.pending = pending
		return err
	}
	data, err := json.Marshal(current)
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}
	doc := make(map[string]any)
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to stage settings: %w", err)
	}
	return s.saveDoc(deepMerge(doc, pending))
}

// Reset clears the stored document and rewrites the canonical defaults to
// both backends, so any other reader of either namespace sees an explicit
// document instead of an absent key.
func (s *Store) Reset() error {
	if err := s.guard.Require(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = nil
	s.mu.Unlock()

	if err := s.backends.Delete(constants.KeySettings); err != nil {
		return err
	}
	data, err := json.Marshal(Defaults())
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}
	return s.backends.SetBoth(constants.KeySettings, data)
}

// Watch invokes fn with the freshly loaded settings whenever the settings
// document changes. Changes to other documents are ignored. The returned
// function unsubscribes.
func (s *Store) Watch(fn func(models.Settings)) func() {
	return s.backends.Watch(func(key string) {
		if key != constants.KeySettings {
			return
		}
		current, err := s.Get()
		if err != nil {
			logger.Warn("Failed to reload settings after change", "error", err)
			return
		}
		fn(current)
	})
}

// QuickBlockSeed returns the configured default rules for quick-block
// sessions started without overrides.
func (s *Store) QuickBlockSeed() (models.QuickBlockRules, error) {
	current, err := s.Get()
	if err != nil {
		return models.QuickBlockRules{}, err
	}
	return current.Blocking.QuickBlock, nil
}

// AddSchedule validates and appends a schedule. An empty ID gets a
// generated one. Adding restrictions is allowed even while locked.
func (s *Store) AddSchedule(sched models.Schedule) (models.Schedule, error) {
	if err := s.Flush(); err != nil {
		return models.Schedule{}, err
	}
	if sched.ID == "" {
		sched.ID = uuid.NewString()
	}
	if err := schedule.Validate(sched); err != nil {
		return models.Schedule{}, err
	}

	current, err := s.Get()
	if err != nil {
		return models.Schedule{}, err
	}
	for _, existing := range current.Blocking.Schedules {
		if existing.ID == sched.ID {
			return models.Schedule{}, ErrScheduleExists
		}
	}

	stamp := s.now().Format(time.RFC3339)
	sched.CreatedAt = stamp
	sched.UpdatedAt = stamp
	current.Blocking.Schedules = append(current.Blocking.Schedules, sched)
	if err := s.save(current); err != nil {
		return models.Schedule{}, err
	}
	return sched, nil
}

// UpdateSchedule replaces the schedule with the same ID. Editing can relax
// a restriction, so it is gated behind the lock.
func (s *Store) UpdateSchedule(sched models.Schedule) error {
	if err := s.guard.Require(); err != nil {
		return err
	}
	if err := s.Flush(); err != nil {
		return err
	}
	if err := schedule.Validate(sched); err != nil {
		return err
	}

	current, err := s.Get()
	if err != nil {
		return err
	}
	for i, existing := range current.Blocking.Schedules {
		if existing.ID != sched.ID {
			continue
		}
		sched.CreatedAt = existing.CreatedAt
		sched.UpdatedAt = s.now().Format(time.RFC3339)
		current.Blocking.Schedules[i] = sched
		return s.save(current)
	}
	return ErrScheduleNotFound
}

// DeleteSchedule removes the schedule with the given ID.
func (s *Store) DeleteSchedule(id string) error {
	if err := s.guard.Require(); err != nil {
		return err
	}
	if err := s.Flush(); err != nil {
		return err
	}

	current, err := s.Get()
	if err != nil {
		return err
	}
	for i, existing := range current.Blocking.Schedules {
		if existing.ID != id {
			continue
		}
		current.Blocking.Schedules = append(current.Blocking.Schedules[:i], current.Blocking.Schedules[i+1:]...)
		return s.save(current)
	}
	return ErrScheduleNotFound
}

// BlockChannel adds a channel to the cosmetic block list. Additive, so not
// lock-gated. Blocking an already blocked channel is a no-op.
func (s *Store) BlockChannel(name string) error {
	if name == "" {
		return fmt.Errorf("channel name must not be empty")
	}
	if err := s.Flush(); err != nil {
		return err
	}

	current, err := s.Get()
	if err != nil {
		return err
	}
	for _, existing := range current.Cosmetic.BlockedChannels {
		if existing == name {
			return nil
		}
	}
	current.Cosmetic.BlockedChannels = append(current.Cosmetic.BlockedChannels, name)
	return s.save(current)
}

// UnblockChannel removes a channel from the cosmetic block list.
func (s *Store) UnblockChannel(name string) error {
	if err := s.guard.Require(); err != nil {
		return err
	}
	if err := s.Flush(); err != nil {
		return err
	}

	current, err := s.Get()
	if err != nil {
		return err
	}
	for i, existing := range current.Cosmetic.BlockedChannels {
		if existing != name {
			continue
		}
		current.Cosmetic.BlockedChannels = append(current.Cosmetic.BlockedChannels[:i], current.Cosmetic.BlockedChannels[i+1:]...)
		return s.save(current)
	}
	return ErrChannelNotFound
}
