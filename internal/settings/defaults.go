package settings

import (
	"encoding/json"

	"github.com/smorton/sitegate/internal/constants"
	"github.com/smorton/sitegate/internal/models"
)

// Defaults returns the canonical settings document. Every read path merges
// stored data over this, so a missing or partial document still yields a
// structurally complete result.
func Defaults() models.Settings {
	return models.Settings{
		Version: constants.SettingsVersion,
		Theme:   constants.DefaultTheme,
		Cosmetic: models.CosmeticSettings{
			HideFeed:        constants.DefaultHideFeed,
			HideComments:    constants.DefaultHideComments,
			HideSidebar:     constants.DefaultHideSidebar,
			HideShorts:      constants.DefaultHideShorts,
			BlockedChannels: []string{},
		},
		Blocking: models.BlockingSettings{
			Schedules: []models.Schedule{},
			QuickBlock: models.QuickBlockRules{
				BlockedDomains:  []string{},
				URLKeywords:     []string{},
				ContentKeywords: []string{},
			},
		},
	}
}

// defaultsDoc returns the defaults decoded into the generic document shape
// used for merging and migration.
func defaultsDoc() map[string]any {
	data, _ := json.Marshal(Defaults())
	doc := make(map[string]any)
	_ = json.Unmarshal(data, &doc)
	return doc
}

// deepMerge overlays src onto dst, descending into nested objects. Arrays
// and scalars from src replace the dst value wholesale.
func deepMerge(dst, src map[string]any) map[string]any {
	out := make(map[string]any, len(dst))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		sub, ok := v.(map[string]any)
		if !ok {
			out[k] = v
			continue
		}
		base, ok := out[k].(map[string]any)
		if !ok {
			out[k] = sub
			continue
		}
		out[k] = deepMerge(base, sub)
	}
	return out
}
