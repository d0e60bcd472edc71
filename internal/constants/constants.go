package constants

import "time"

const (
	AppName           = "sitegate"
	DefaultConfigPath = "~/.config/sitegate/sitegate.db"
	Version           = "v0.3.1"

	// SettingsVersion is the current settings document schema version.
	SettingsVersion = "1.2.0"

	// TimeFormat is the standard time-of-day format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// SettingsDebounce is the coalescing window for rapid settings updates.
	SettingsDebounce = 300 * time.Millisecond

	// KeyringLockEntry is the keyring account under which the lock end time
	// is mirrored so a commitment lock survives local file deletion.
	KeyringLockEntry = "lock-end-time"
)

// Storage document keys. The settings document lives in the primary (syncable)
// backend; the three device-local state documents only ever live in the local
// fallback store.
const (
	KeySettings   = "sitegate_settings"
	KeyLockState  = "lock_mode_state"
	KeyPauseState = "cosmetic_pause_state"
	KeyQuickBlock = "quick_block_session"
)

// Theme literals accepted by settings import.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Default settings values
const (
	DefaultTheme        = ThemeDark
	DefaultHideFeed     = false
	DefaultHideComments = false
	DefaultHideSidebar  = true
	DefaultHideShorts   = true
)
