// Package lock implements the device-local commitment lock. While the lock
// is active no destructive settings mutation is allowed anywhere in the
// system; additive changes (new block rules) stay permitted. The lock can
// only be extended, never shortened or cancelled before natural expiry.
package lock

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zalando/go-keyring"

	"github.com/smorton/sitegate/internal/constants"
	"github.com/smorton/sitegate/internal/logger"
	"github.com/smorton/sitegate/internal/models"
	"github.com/smorton/sitegate/internal/storage"
)

var (
	ErrAlreadyLocked   = errors.New("lock mode is already active; it can only be extended")
	ErrNotLocked       = errors.New("lock mode is not active")
	ErrInvalidDuration = errors.New("lock duration must be greater than zero")
)

// LockedError is returned to any caller attempting a guarded mutation
// while the lock is active. The message is user-facing and must be shown,
// not swallowed.
type LockedError struct {
	Remaining time.Duration
}

func (e *LockedError) Error() string {
	minutes := int(e.Remaining.Minutes())
	if e.Remaining > 0 && minutes == 0 {
		minutes = 1
	}
	return fmt.Sprintf("settings are locked for %d more minute(s)", minutes)
}

// Manager owns the lock state document in local storage. All reads perform
// lazy expiry: an end time in the past clears the persisted state before
// the result is returned.
type Manager struct {
	store storage.Backend
	now   func() time.Time
	// mirror controls the best-effort keyring copy of the lock end time.
	// The mirror makes deleting the local state file insufficient to break
	// a commitment early.
	mirror bool
}

func NewManager(store storage.Backend) *Manager {
	return &Manager{store: store, now: time.Now, mirror: true}
}

// NewManagerAt builds a manager with a fixed clock and no keyring mirror,
// for tests.
func NewManagerAt(store storage.Backend, now func() time.Time) *Manager {
	return &Manager{store: store, now: now}
}

func (m *Manager) load() (models.LockState, error) {
	data, ok, err := m.store.Get(constants.KeyLockState)
	if err != nil {
		return models.LockState{}, fmt.Errorf("failed to read lock state: %w", err)
	}
	if !ok {
		return models.LockState{}, nil
	}

	var state models.LockState
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Warn("Corrupt lock state document, treating as unlocked", "error", err)
		return models.LockState{}, nil
	}
	return state, nil
}

func (m *Manager) persist(state models.LockState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to serialize lock state: %w", err)
	}
	if err := m.store.Set(constants.KeyLockState, data); err != nil {
		return fmt.Errorf("failed to write lock state: %w", err)
	}
	return nil
}

// Status returns the current lock state after lazy expiry handling. An
// expired lock is cleared and persisted as unlocked before returning.
func (m *Manager) Status() (models.LockState, error) {
	state, err := m.load()
	if err != nil {
		return models.LockState{}, err
	}

	if !state.IsLocked {
		// The keyring mirror outlives a deleted state file. Restore from
		// it when it still points at a future end time.
		if restored, ok := m.restoreFromMirror(); ok {
			state = restored
			if err := m.persist(state); err != nil {
				return models.LockState{}, err
			}
		} else {
			return state, nil
		}
	}

	if state.Expired(m.now()) {
		cleared := models.LockState{}
		if err := m.persist(cleared); err != nil {
			return models.LockState{}, err
		}
		m.clearMirror()
		logger.Info("Lock mode expired")
		return cleared, nil
	}
	return state, nil
}

// IsActive reports whether the lock is currently active, with lazy expiry.
func (m *Manager) IsActive() (bool, error) {
	state, err := m.Status()
	if err != nil {
		return false, err
	}
	return state.IsLocked, nil
}

// Remaining returns the time left on the lock, zero when unlocked.
func (m *Manager) Remaining() (time.Duration, error) {
	state, err := m.Status()
	if err != nil {
		return 0, err
	}
	if !state.IsLocked || state.LockEndTime == nil {
		return 0, nil
	}
	return state.LockEndTime.Sub(m.now()), nil
}

// Require rejects with a user-facing LockedError when the lock is active.
// Every destructive mutation in the system calls this first.
func (m *Manager) Require() error {
	state, err := m.Status()
	if err != nil {
		return err
	}
	if state.IsLocked && state.LockEndTime != nil {
		return &LockedError{Remaining: state.LockEndTime.Sub(m.now())}
	}
	return nil
}

// Activate starts the lock for the given duration. Rejected when a lock is
// already active or the duration is not positive.
func (m *Manager) Activate(duration time.Duration) error {
	if duration <= 0 {
		return ErrInvalidDuration
	}
	state, err := m.Status()
	if err != nil {
		return err
	}
	if state.IsLocked {
		return ErrAlreadyLocked
	}

	start := m.now()
	end := start.Add(duration)
	next := models.LockState{
		IsLocked:         true,
		LockStartedAt:    &start,
		LockEndTime:      &end,
		OriginalDuration: duration,
	}
	if err := m.persist(next); err != nil {
		return err
	}
	m.setMirror(end)
	logger.Info("Lock mode activated", "until", end.Format(time.RFC3339))
	return nil
}

// Extend pushes the lock end time further into the future. Rejected when
// not locked, when the extension is not positive, or when the resulting
// end time would not be strictly in the future.
func (m *Manager) Extend(additional time.Duration) error {
	if additional <= 0 {
		return ErrInvalidDuration
	}
	state, err := m.Status()
	if err != nil {
		return err
	}
	if !state.IsLocked || state.LockEndTime == nil {
		return ErrNotLocked
	}

	end := state.LockEndTime.Add(additional)
	if !end.After(m.now()) {
		return ErrInvalidDuration
	}
	state.LockEndTime = &end
	if err := m.persist(state); err != nil {
		return err
	}
	m.setMirror(end)
	logger.Info("Lock mode extended", "until", end.Format(time.RFC3339))
	return nil
}

func (m *Manager) setMirror(end time.Time) {
	if !m.mirror {
		return
	}
	if err := keyring.Set(constants.AppName, constants.KeyringLockEntry, end.UTC().Format(time.RFC3339)); err != nil {
		logger.Warn("Failed to mirror lock end time to keyring", "error", err)
	}
}

func (m *Manager) clearMirror() {
	if !m.mirror {
		return
	}
	if err := keyring.Delete(constants.AppName, constants.KeyringLockEntry); err != nil && err != keyring.ErrNotFound {
		logger.Warn("Failed to clear lock mirror from keyring", "error", err)
	}
}

func (m *Manager) restoreFromMirror() (models.LockState, bool) {
	if !m.mirror {
		return models.LockState{}, false
	}
	raw, err := keyring.Get(constants.AppName, constants.KeyringLockEntry)
	if err != nil {
		return models.LockState{}, false
	}
	end, err := time.Parse(time.RFC3339, raw)
	if err != nil || !end.After(m.now()) {
		return models.LockState{}, false
	}

	logger.Warn("Lock state file missing but keyring mirror is active; restoring lock")
	start := m.now()
	return models.LockState{
		IsLocked:      true,
		LockStartedAt: &start,
		LockEndTime:   &end,
	}, true
}
