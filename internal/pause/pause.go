// Package pause implements the suspend switch for the cosmetic-filtering
// module. It mirrors the lock-mode shape (timed or indefinite, lazy expiry
// on read) but is subordinate to it: pausing is a way around enforcement,
// so an active commitment lock forbids it.
package pause

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
	ErrNotPaused       = errors.New("the cosmetic module is not paused")
	ErrAlreadyPaused   = errors.New("the cosmetic module is already paused")
	ErrInvalidDuration = errors.New("pause duration must be greater than zero")
)

// LockGuard is the slice of the lock manager the pause machine needs.
type LockGuard interface {
	Require() error
}

type Manager struct {
	store storage.Backend
	guard LockGuard
	now   func() time.Time
}

func NewManager(store storage.Backend, guard LockGuard) *Manager {
	return &Manager{store: store, guard: guard, now: time.Now}
}

// NewManagerAt builds a manager with a fixed clock, for tests.
func NewManagerAt(store storage.Backend, guard LockGuard, now func() time.Time) *Manager {
	return &Manager{store: store, guard: guard, now: now}
}

func (m *Manager) load() (models.PauseState, error) {
	data, ok, err := m.store.Get(constants.KeyPauseState)
	if err != nil {
		return models.PauseState{}, fmt.Errorf("failed to read pause state: %w", err)
	}
	if !ok {
		return models.PauseState{}, nil
	}

	var state models.PauseState
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Warn("Corrupt pause state document, treating as not paused", "error", err)
		return models.PauseState{}, nil
	}
	return state, nil
}

func (m *Manager) persist(state models.PauseState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to serialize pause state: %w", err)
	}
	if err := m.store.Set(constants.KeyPauseState, data); err != nil {
		return fmt.Errorf("failed to write pause state: %w", err)
	}
	return nil
}

// Status returns the pause state after lazy expiry handling. Auto-expiry of
// a timed pause is not a manual resume, so it needs no lock check.
func (m *Manager) Status() (models.PauseState, error) {
	state, err := m.load()
	if err != nil {
		return models.PauseState{}, err
	}
	if state.IsPaused && state.Expired(m.now()) {
		cleared := models.PauseState{}
		if err := m.persist(cleared); err != nil {
			return models.PauseState{}, err
		}
		logger.Info("Cosmetic module pause expired")
		return cleared, nil
	}
	return state, nil
}

// IsPaused reports whether the module is currently paused.
func (m *Manager) IsPaused() (bool, error) {
	state, err := m.Status()
	if err != nil {
		return false, err
	}
	return state.IsPaused, nil
}

// Pause suspends the cosmetic module for the given duration, or
// indefinitely when duration is nil. Rejected while the commitment lock is
// active.
func (m *Manager) Pause(duration *time.Duration) error {
	if err := m.guard.Require(); err != nil {
		return err
	}
	if duration != nil && *duration <= 0 {
		return ErrInvalidDuration
	}

	state, err := m.Status()
	if err != nil {
		return err
	}
	if state.IsPaused {
		return ErrAlreadyPaused
	}

	start := m.now()
	next := models.PauseState{IsPaused: true, PauseStartedAt: &start}
	if duration != nil {
		end := start.Add(*duration)
		next.PauseEndTime = &end
	}
	if err := m.persist(next); err != nil {
		return err
	}
	logger.Info("Cosmetic module paused", "indefinite", duration == nil)
	return nil
}

// Resume manually ends a pause. Resuming an indefinite pause while the
// commitment lock is active is rejected; a timed pause would end on its own
// anyway, so it may be resumed regardless.
func (m *Manager) Resume() error {
	state, err := m.Status()
	if err != nil {
		return err
	}
	if !state.IsPaused {
		return ErrNotPaused
	}
	if state.Indefinite() {
		if err := m.guard.Require(); err != nil {
			return err
		}
	}
	if err := m.persist(models.PauseState{}); err != nil {
		return err
	}
	logger.Info("Cosmetic module resumed")
	return nil
}
