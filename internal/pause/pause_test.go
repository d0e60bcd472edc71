package pause

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/smorton/sitegate/internal/storage"
)

type stubGuard struct {
	err error
}

func (g *stubGuard) Require() error { return g.err }

type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time          { return c.t }
func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestManager(t *testing.T, guard *stubGuard) (*Manager, *testClock) {
	t.Helper()
	store := storage.NewJSONBackend(filepath.Join(t.TempDir(), "local.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	if err := store.Load(); err != nil {
		t.Fatalf("failed to load store: %v", err)
	}
	clock := &testClock{t: time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)}
	return NewManagerAt(store, guard, clock.now), clock
}

func TestPauseTimed(t *testing.T) {
	m, clock := newTestManager(t, &stubGuard{})

	d := 30 * time.Minute
	if err := m.Pause(&d); err != nil {
		t.Fatalf("failed to pause: %v", err)
	}

	state, err := m.Status()
	if err != nil {
		t.Fatalf("failed to read status: %v", err)
	}
	if !state.IsPaused {
		t.Error("expected paused state")
	}
	if state.Indefinite() {
		t.Error("timed pause should not be indefinite")
	}
	if got := state.PauseEndTime.Sub(clock.t); got != d {
		t.Errorf("expected end 30m out, got %v", got)
	}
}

func TestPauseIndefinite(t *testing.T) {
	m, clock := newTestManager(t, &stubGuard{})

	if err := m.Pause(nil); err != nil {
		t.Fatalf("failed to pause: %v", err)
	}

	clock.advance(100 * time.Hour)
	state, err := m.Status()
	if err != nil {
		t.Fatalf("failed to read status: %v", err)
	}
	if !state.IsPaused || !state.Indefinite() {
		t.Error("indefinite pause should persist until resumed")
	}
}

func TestPauseRejectsInvalidDuration(t *testing.T) {
	m, _ := newTestManager(t, &stubGuard{})

	zero := time.Duration(0)
	if err := m.Pause(&zero); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestPauseRejectsWhileLocked(t *testing.T) {
	locked := errors.New("settings are locked for 30 more minute(s)")
	m, _ := newTestManager(t, &stubGuard{err: locked})

	if err := m.Pause(nil); !errors.Is(err, locked) {
		t.Errorf("expected lock error, got %v", err)
	}
}

func TestDoublePauseRejected(t *testing.T) {
	m, _ := newTestManager(t, &stubGuard{})

	if err := m.Pause(nil); err != nil {
		t.Fatalf("failed to pause: %v", err)
	}
	if err := m.Pause(nil); !errors.Is(err, ErrAlreadyPaused) {
		t.Errorf("expected ErrAlreadyPaused, got %v", err)
	}
}

func TestTimedPauseExpiresLazily(t *testing.T) {
	m, clock := newTestManager(t, &stubGuard{})

	d := 10 * time.Minute
	if err := m.Pause(&d); err != nil {
		t.Fatalf("failed to pause: %v", err)
	}

	clock.advance(11 * time.Minute)
	paused, err := m.IsPaused()
	if err != nil {
		t.Fatalf("failed to read status: %v", err)
	}
	if paused {
		t.Error("expected pause to expire")
	}

	// Expiry should have been persisted, not just reported.
	state, err := m.Status()
	if err != nil {
		t.Fatalf("failed to re-read status: %v", err)
	}
	if state.PauseStartedAt != nil || state.PauseEndTime != nil {
		t.Error("expected cleared state to be persisted")
	}
}

func TestResume(t *testing.T) {
	m, _ := newTestManager(t, &stubGuard{})

	d := time.Hour
	if err := m.Pause(&d); err != nil {
		t.Fatalf("failed to pause: %v", err)
	}
	if err := m.Resume(); err != nil {
		t.Fatalf("failed to resume: %v", err)
	}
	if err := m.Resume(); !errors.Is(err, ErrNotPaused) {
		t.Errorf("expected ErrNotPaused, got %v", err)
	}
}

func TestResumeWhileLocked(t *testing.T) {
	guard := &stubGuard{}
	m, _ := newTestManager(t, guard)
	locked := errors.New("settings are locked for 5 more minute(s)")

	// A timed pause may be resumed even under lock.
	d := time.Hour
	if err := m.Pause(&d); err != nil {
		t.Fatalf("failed to pause: %v", err)
	}
	guard.err = locked
	if err := m.Resume(); err != nil {
		t.Fatalf("timed pause should resume under lock: %v", err)
	}

	// An indefinite pause may not.
	guard.err = nil
	if err := m.Pause(nil); err != nil {
		t.Fatalf("failed to pause: %v", err)
	}
	guard.err = locked
	if err := m.Resume(); !errors.Is(err, locked) {
		t.Errorf("expected lock error, got %v", err)
	}
}
