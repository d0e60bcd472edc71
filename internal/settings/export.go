package settings

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/smorton/sitegate/internal/constants"
	"github.com/smorton/sitegate/internal/migration"
	"github.com/smorton/sitegate/internal/models"
)

// ExportDoc is the portable backup format. Device-local state (lock,
// pause, quick-block session) is deliberately absent: a backup must never
// carry a way out of a commitment lock.
type ExportDoc struct {
	Version    string          `json:"version"`
	ExportedAt string          `json:"exported_at"`
	Theme      string          `json:"theme"`
	Settings   models.Settings `json:"settings"`
}

// Export serializes the current settings for backup.
func (s *Store) Export() ([]byte, error) {
	if err := s.Flush(); err != nil {
		return nil, err
	}
	current, err := s.Get()
	if err != nil {
		return nil, err
	}

	doc := ExportDoc{
		Version:    constants.SettingsVersion,
		ExportedAt: s.now().UTC().Format(time.RFC3339),
		Theme:      current.Theme,
		Settings:   current,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// Import replaces the stored settings with the contents of a backup. The
// backup is validated in full before anything is written: a malformed
// document must not leave the store half-updated.
func (s *Store) Import(data []byte) error {
	if err := s.guard.Require(); err != nil {
		return err
	}

	raw := make(map[string]any)
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse backup: %w", err)
	}
	version, ok := raw["version"].(string)
	if !ok || version == "" {
		return fmt.Errorf("backup is missing a version field")
	}

	settingsDoc, ok := raw["settings"].(map[string]any)
	if !ok {
		return fmt.Errorf("backup is missing a settings document")
	}
	if _, hasVersion := settingsDoc["version"]; !hasVersion {
		settingsDoc["version"] = version
	}
	if migration.Compare(version, constants.SettingsVersion) != 0 {
		if err := migration.Run(settingsDoc, version, constants.SettingsVersion); err != nil {
			return fmt.Errorf("failed to migrate backup: %w", err)
		}
	}

	imported, err := decode(deepMerge(defaultsDoc(), settingsDoc))
	if err != nil {
		return fmt.Errorf("backup settings are malformed: %w", err)
	}
	if theme, ok := raw["theme"].(string); ok && theme != "" {
		imported.Theme = theme
	}
	if imported.Theme != constants.ThemeLight && imported.Theme != constants.ThemeDark {
		return fmt.Errorf("backup has unknown theme %q", imported.Theme)
	}

	if err := s.Flush(); err != nil {
		return err
	}
	return s.save(imported)
}
