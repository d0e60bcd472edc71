package settings

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smorton/sitegate/internal/constants"
	"github.com/smorton/sitegate/internal/models"
	"github.com/smorton/sitegate/internal/storage"
)

type stubGuard struct {
	err error
}

func (g *stubGuard) Require() error { return g.err }

func newTestStore(t *testing.T, guard *stubGuard) (*Store, *storage.Dual) {
	t.Helper()
	dir := t.TempDir()
	backends := storage.NewDual(
		storage.NewJSONBackend(filepath.Join(dir, "primary.json")),
		storage.NewJSONBackend(filepath.Join(dir, "local.json")),
	)
	if err := backends.Init(); err != nil {
		t.Fatalf("failed to init storage: %v", err)
	}
	if err := backends.Load(); err != nil {
		t.Fatalf("failed to load storage: %v", err)
	}
	now := func() time.Time { return time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC) }
	return NewStoreAt(backends, guard, now), backends
}

func validSchedule(id string) models.Schedule {
	return models.Schedule{
		ID:      id,
		Name:    "Work hours",
		Enabled: true,
		Days:    []int{1, 2, 3, 4, 5},
		TimePeriods: []models.TimePeriod{
			{StartTime: "09:00", EndTime: "17:00"},
		},
		BlockedDomains: []string{"example.com"},
	}
}

func TestGetReturnsDefaultsWhenEmpty(t *testing.T) {
	store, _ := newTestStore(t, &stubGuard{})

	got, err := store.Get()
	if err != nil {
		t.Fatalf("failed to read settings: %v", err)
	}
	if got.Version != constants.SettingsVersion {
		t.Errorf("expected version %s, got %s", constants.SettingsVersion, got.Version)
	}
	if got.Theme != constants.DefaultTheme {
		t.Errorf("expected default theme, got %s", got.Theme)
	}
	if !got.Cosmetic.HideShorts {
		t.Error("expected shorts hidden by default")
	}
}

func TestGetReturnsDefaultsForCorruptDocument(t *testing.T) {
	store, backends := newTestStore(t, &stubGuard{})

	if err := backends.Set(constants.KeySettings, []byte("{not json")); err != nil {
		t.Fatalf("failed to seed document: %v", err)
	}
	got, err := store.Get()
	if err != nil {
		t.Fatalf("failed to read settings: %v", err)
	}
	if got.Theme != constants.DefaultTheme {
		t.Errorf("expected defaults, got %+v", got)
	}
}

func TestUpdateMergesOverStored(t *testing.T) {
	store, _ := newTestStore(t, &stubGuard{})

	err := store.Update(map[string]any{"cosmetic": map[string]any{"hide_feed": true}})
	if err != nil {
		t.Fatalf("failed to update: %v", err)
	}
	err = store.Update(map[string]any{"theme": "light"})
	if err != nil {
		t.Fatalf("failed to update: %v", err)
	}

	got, err := store.Get()
	if err != nil {
		t.Fatalf("failed to read settings: %v", err)
	}
	if !got.Cosmetic.HideFeed {
		t.Error("first update lost")
	}
	if got.Theme != "light" {
		t.Errorf("expected light theme, got %s", got.Theme)
	}
	// Untouched fields keep their defaults.
	if !got.Cosmetic.HideSidebar {
		t.Error("expected sidebar default to survive partial update")
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t, &stubGuard{})

	partial := map[string]any{"cosmetic": map[string]any{"hide_comments": true}}
	for i := 0; i < 3; i++ {
		if err := store.Update(partial); err != nil {
			t.Fatalf("failed to update: %v", err)
		}
	}
	got, err := store.Get()
	if err != nil {
		t.Fatalf("failed to read settings: %v", err)
	}
	if !got.Cosmetic.HideComments {
		t.Error("expected hide_comments set")
	}
}

func TestUpdateRejectedWhileLocked(t *testing.T) {
	locked := errors.New("settings are locked for 10 more minute(s)")
	store, _ := newTestStore(t, &stubGuard{err: locked})

	if err := store.Update(map[string]any{"theme": "light"}); !errors.Is(err, locked) {
		t.Errorf("expected lock error, got %v", err)
	}
}

func TestDebounceCoalescesWrites(t *testing.T) {
	store, backends := newTestStore(t, &stubGuard{})
	store.debounce = time.Second

	writes := 0
	unsub := backends.Watch(func(key string) {
		if key == constants.KeySettings {
			writes++
		}
	})
	defer unsub()

	for i := 0; i < 5; i++ {
		if err := store.Update(map[string]any{"theme": "light"}); err != nil {
			t.Fatalf("failed to update: %v", err)
		}
	}
	if err := store.Flush(); err != nil {
		t.Fatalf("failed to flush: %v", err)
	}
	if writes != 1 {
		t.Errorf("expected 1 coalesced write, got %d", writes)
	}
}

func TestDebounceKeepsOnlyLatestPartial(t *testing.T) {
	store, _ := newTestStore(t, &stubGuard{})
	store.debounce = time.Second

	if err := store.Update(map[string]any{"theme": "light"}); err != nil {
		t.Fatalf("failed to update: %v", err)
	}
	if err := store.Update(map[string]any{"cosmetic": map[string]any{"hide_feed": true}}); err != nil {
		t.Fatalf("failed to update: %v", err)
	}
	if err := store.Flush(); err != nil {
		t.Fatalf("failed to flush: %v", err)
	}

	got, err := store.Get()
	if err != nil {
		t.Fatalf("failed to read settings: %v", err)
	}
	if !got.Cosmetic.HideFeed {
		t.Error("expected the last staged partial to be written")
	}
	if got.Theme != constants.DefaultTheme {
		t.Errorf("expected the earlier staged partial to be discarded, got theme %s", got.Theme)
	}
}

func TestGetMigratesLegacyDocument(t *testing.T) {
	store, backends := newTestStore(t, &stubGuard{})

	legacy := map[string]any{
		"version":   "1.0.0",
		"schedules": []any{map[string]any{"id": "s1", "name": "Old"}},
		"cosmetic":  map[string]any{"channels": []any{"SomeChannel"}},
	}
	data, _ := json.Marshal(legacy)
	if err := backends.Set(constants.KeySettings, data); err != nil {
		t.Fatalf("failed to seed document: %v", err)
	}

	got, err := store.Get()
	if err != nil {
		t.Fatalf("failed to read settings: %v", err)
	}
	if got.Version != constants.SettingsVersion {
		t.Errorf("expected migrated version, got %s", got.Version)
	}
	if len(got.Blocking.Schedules) != 1 || got.Blocking.Schedules[0].ID != "s1" {
		t.Errorf("expected nested schedules, got %+v", got.Blocking.Schedules)
	}
	if len(got.Cosmetic.BlockedChannels) != 1 || got.Cosmetic.BlockedChannels[0] != "SomeChannel" {
		t.Errorf("expected renamed channel list, got %v", got.Cosmetic.BlockedChannels)
	}

	// The migrated document is written back, so the next read skips the run.
	raw, ok, err := backends.Get(constants.KeySettings)
	if err != nil || !ok {
		t.Fatalf("failed to re-read document: ok=%v err=%v", ok, err)
	}
	if !strings.Contains(string(raw), constants.SettingsVersion) {
		t.Error("expected persisted document to carry the current version")
	}
}

func TestAddSchedule(t *testing.T) {
	locked := errors.New("settings are locked for 10 more minute(s)")
	store, _ := newTestStore(t, &stubGuard{err: locked})

	// Adding a restriction is allowed even while locked.
	added, err := store.AddSchedule(validSchedule(""))
	if err != nil {
		t.Fatalf("failed to add schedule: %v", err)
	}
	if added.ID == "" {
		t.Error("expected a generated ID")
	}
	if added.CreatedAt == "" || added.UpdatedAt == "" {
		t.Error("expected timestamps to be stamped")
	}

	if _, err := store.AddSchedule(validSchedule(added.ID)); !errors.Is(err, ErrScheduleExists) {
		t.Errorf("expected ErrScheduleExists, got %v", err)
	}
}

func TestAddScheduleValidates(t *testing.T) {
	store, _ := newTestStore(t, &stubGuard{})

	bad := validSchedule("")
	bad.TimePeriods = []models.TimePeriod{{StartTime: "9:00", EndTime: "17:00"}}
	if _, err := store.AddSchedule(bad); err == nil {
		t.Error("expected validation error for non-canonical time")
	}
}

func TestUpdateAndDeleteSchedule(t *testing.T) {
	guard := &stubGuard{}
	store, _ := newTestStore(t, guard)

	added, err := store.AddSchedule(validSchedule(""))
	if err != nil {
		t.Fatalf("failed to add schedule: %v", err)
	}

	edited := added
	edited.Name = "Evenings"
	if err := store.UpdateSchedule(edited); err != nil {
		t.Fatalf("failed to update schedule: %v", err)
	}

	got, err := store.Get()
	if err != nil {
		t.Fatalf("failed to read settings: %v", err)
	}
	if got.Blocking.Schedules[0].Name != "Evenings" {
		t.Errorf("expected edited name, got %s", got.Blocking.Schedules[0].Name)
	}
	if got.Blocking.Schedules[0].CreatedAt != added.CreatedAt {
		t.Error("expected creation stamp to survive edits")
	}

	missing := validSchedule("nope")
	if err := store.UpdateSchedule(missing); !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("expected ErrScheduleNotFound, got %v", err)
	}

	// Edits and deletions are lock-gated.
	locked := errors.New("settings are locked for 10 more minute(s)")
	guard.err = locked
	if err := store.UpdateSchedule(edited); !errors.Is(err, locked) {
		t.Errorf("expected lock error, got %v", err)
	}
	if err := store.DeleteSchedule(added.ID); !errors.Is(err, locked) {
		t.Errorf("expected lock error, got %v", err)
	}

	guard.err = nil
	if err := store.DeleteSchedule(added.ID); err != nil {
		t.Fatalf("failed to delete schedule: %v", err)
	}
	if err := store.DeleteSchedule(added.ID); !errors.Is(err, ErrScheduleNotFound) {
		t.Errorf("expected ErrScheduleNotFound, got %v", err)
	}
}

func TestBlockAndUnblockChannel(t *testing.T) {
	guard := &stubGuard{}
	store, _ := newTestStore(t, guard)

	if err := store.BlockChannel("SomeChannel"); err != nil {
		t.Fatalf("failed to block channel: %v", err)
	}
	// Re-blocking is a no-op, not an error.
	if err := store.BlockChannel("SomeChannel"); err != nil {
		t.Fatalf("failed to re-block channel: %v", err)
	}

	got, err := store.Get()
	if err != nil {
		t.Fatalf("failed to read settings: %v", err)
	}
	if len(got.Cosmetic.BlockedChannels) != 1 {
		t.Errorf("expected one blocked channel, got %v", got.Cosmetic.BlockedChannels)
	}

	guard.err = errors.New("settings are locked for 10 more minute(s)")
	if err := store.UnblockChannel("SomeChannel"); err == nil {
		t.Error("expected lock error")
	}

	guard.err = nil
	if err := store.UnblockChannel("SomeChannel"); err != nil {
		t.Fatalf("failed to unblock channel: %v", err)
	}
	if err := store.UnblockChannel("SomeChannel"); !errors.Is(err, ErrChannelNotFound) {
		t.Errorf("expected ErrChannelNotFound, got %v", err)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	store, _ := newTestStore(t, &stubGuard{})

	if err := store.Update(map[string]any{"theme": "light"}); err != nil {
		t.Fatalf("failed to update: %v", err)
	}
	if err := store.Reset(); err != nil {
		t.Fatalf("failed to reset: %v", err)
	}

	got, err := store.Get()
	if err != nil {
		t.Fatalf("failed to read settings: %v", err)
	}
	if got.Theme != constants.DefaultTheme {
		t.Errorf("expected default theme after reset, got %s", got.Theme)
	}
}

func TestResetWritesDefaultsToBothBackends(t *testing.T) {
	store, backends := newTestStore(t, &stubGuard{})

	if err := store.Update(map[string]any{"theme": "light"}); err != nil {
		t.Fatalf("failed to update: %v", err)
	}
	if err := store.Reset(); err != nil {
		t.Fatalf("failed to reset: %v", err)
	}

	for _, backend := range []storage.Backend{backends.Primary(), backends.Local()} {
		data, ok, err := backend.Get(constants.KeySettings)
		if err != nil {
			t.Fatalf("failed to read %s backend: %v", backend.Name(), err)
		}
		if !ok {
			t.Fatalf("expected %s backend to hold an explicit defaults document", backend.Name())
		}
		var doc models.Settings
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatalf("failed to decode %s document: %v", backend.Name(), err)
		}
		if doc.Theme != constants.DefaultTheme || doc.Version != constants.SettingsVersion {
			t.Errorf("expected canonical defaults in %s backend, got theme=%s version=%s", backend.Name(), doc.Theme, doc.Version)
		}
	}
}

func TestWatchFiltersKeys(t *testing.T) {
	store, backends := newTestStore(t, &stubGuard{})

	var seen []string
	unsub := store.Watch(func(s models.Settings) {
		seen = append(seen, s.Theme)
	})
	defer unsub()

	if err := backends.Local().Set(constants.KeyLockState, []byte(`{}`)); err != nil {
		t.Fatalf("failed to write lock state: %v", err)
	}
	if err := store.Update(map[string]any{"theme": "light"}); err != nil {
		t.Fatalf("failed to update: %v", err)
	}

	if len(seen) != 1 || seen[0] != "light" {
		t.Errorf("expected one settings notification, got %v", seen)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	store, _ := newTestStore(t, &stubGuard{})

	if _, err := store.AddSchedule(validSchedule("")); err != nil {
		t.Fatalf("failed to add schedule: %v", err)
	}
	if err := store.Update(map[string]any{"theme": "light"}); err != nil {
		t.Fatalf("failed to update: %v", err)
	}

	backup, err := store.Export()
	if err != nil {
		t.Fatalf("failed to export: %v", err)
	}

	if err := store.Reset(); err != nil {
		t.Fatalf("failed to reset: %v", err)
	}
	if err := store.Import(backup); err != nil {
		t.Fatalf("failed to import: %v", err)
	}

	got, err := store.Get()
	if err != nil {
		t.Fatalf("failed to read settings: %v", err)
	}
	if got.Theme != "light" {
		t.Errorf("expected imported theme, got %s", got.Theme)
	}
	if len(got.Blocking.Schedules) != 1 {
		t.Errorf("expected imported schedule, got %d", len(got.Blocking.Schedules))
	}
}

func TestExportOmitsDeviceLocalState(t *testing.T) {
	store, backends := newTestStore(t, &stubGuard{})

	if err := backends.Local().Set(constants.KeyLockState, []byte(`{"is_locked":true}`)); err != nil {
		t.Fatalf("failed to write lock state: %v", err)
	}
	backup, err := store.Export()
	if err != nil {
		t.Fatalf("failed to export: %v", err)
	}
	if strings.Contains(string(backup), "is_locked") {
		t.Error("backup must not contain lock state")
	}
}

func TestImportMissingVersionHasNoSideEffect(t *testing.T) {
	store, _ := newTestStore(t, &stubGuard{})

	if err := store.Update(map[string]any{"theme": "light"}); err != nil {
		t.Fatalf("failed to update: %v", err)
	}
	err := store.Import([]byte(`{"settings": {"theme": "dark"}}`))
	if err == nil {
		t.Fatal("expected an error for a versionless backup")
	}

	got, err := store.Get()
	if err != nil {
		t.Fatalf("failed to read settings: %v", err)
	}
	if got.Theme != "light" {
		t.Errorf("failed import must not modify settings, got theme %s", got.Theme)
	}
}

func TestImportRejectsUnknownTheme(t *testing.T) {
	store, _ := newTestStore(t, &stubGuard{})

	err := store.Import([]byte(`{"version": "1.2.0", "theme": "neon", "settings": {}}`))
	if err == nil || !strings.Contains(err.Error(), "theme") {
		t.Errorf("expected theme error, got %v", err)
	}
}

func TestImportRejectedWhileLocked(t *testing.T) {
	locked := errors.New("settings are locked for 10 more minute(s)")
	store, _ := newTestStore(t, &stubGuard{err: locked})

	err := store.Import([]byte(`{"version": "1.2.0", "settings": {}}`))
	if !errors.Is(err, locked) {
		t.Errorf("expected lock error, got %v", err)
	}
}
