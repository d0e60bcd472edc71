// Package migration upgrades stored settings documents between schema
// versions. Migrations are pure transforms over the decoded JSON document,
// applied in ascending version order. A failing step aborts the run; the
// settings store recovers by substituting defaults, so nothing on disk is
// overwritten by a half-applied run.
package migration

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/smorton/sitegate/internal/logger"
)

// Migration carries a target version and the transform that brings a
// document of any older shape up to it.
type Migration struct {
	// Version is the schema version the document has after Apply.
	Version string
	Name    string
	Apply   func(doc map[string]any) error
}

// registry lists all known migrations in ascending version order.
var registry = []Migration{
	{
		Version: "1.1.0",
		Name:    "nest top-level schedules under blocking",
		Apply:   nestSchedules,
	},
	{
		Version: "1.2.0",
		Name:    "rename channels to blocked_channels",
		Apply:   renameChannels,
	},
}

// Registered returns the migration list, for diagnostics.
func Registered() []Migration {
	out := make([]Migration, len(registry))
	copy(out, registry)
	return out
}

// Compare orders two dot-separated versions numerically per segment.
// Returns -1, 0, or 1. Non-numeric segments compare as 0.
func Compare(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		var av, bv int
		if i < len(as) {
			av, _ = strconv.Atoi(as[i])
		}
		if i < len(bs) {
			bv, _ = strconv.Atoi(bs[i])
		}
		if av < bv {
			return -1
		}
		if av > bv {
			return 1
		}
	}
	return 0
}

// Run applies every registered migration whose target version lies in
// (from, to], in ascending order, stamping the document's version after
// each step. Equal versions are a no-op; a downgrade is a warned no-op
// because downgrades never mutate stored data.
func Run(doc map[string]any, from, to string) error {
	if Compare(from, to) == 0 {
		return nil
	}
	if Compare(from, to) > 0 {
		logger.Warn("Stored settings are newer than this build; leaving them untouched", "stored", from, "current", to)
		return nil
	}

	for _, m := range registry {
		if Compare(m.Version, from) <= 0 || Compare(m.Version, to) > 0 {
			continue
		}
		if err := m.Apply(doc); err != nil {
			return fmt.Errorf("migration to %s (%s) failed: %w", m.Version, m.Name, err)
		}
		doc["version"] = m.Version
		logger.Debug("Applied settings migration", "version", m.Version, "name", m.Name)
	}

	// The final stamp covers versions with no registered migration step.
	doc["version"] = to
	return nil
}

// nestSchedules moves a legacy top-level "schedules" array into
// blocking.schedules.
func nestSchedules(doc map[string]any) error {
	raw, ok := doc["schedules"]
	if !ok {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return fmt.Errorf("legacy schedules field is not a list")
	}

	blocking, ok := doc["blocking"].(map[string]any)
	if !ok {
		blocking = make(map[string]any)
		doc["blocking"] = blocking
	}
	if _, exists := blocking["schedules"]; !exists {
		blocking["schedules"] = list
	}
	delete(doc, "schedules")
	return nil
}

// renameChannels renames the legacy cosmetic "channels" list to
// "blocked_channels".
func renameChannels(doc map[string]any) error {
	cosmetic, ok := doc["cosmetic"].(map[string]any)
	if !ok {
		return nil
	}
	raw, ok := cosmetic["channels"]
	if !ok {
		return nil
	}
	if _, exists := cosmetic["blocked_channels"]; !exists {
		cosmetic["blocked_channels"] = raw
	}
	delete(cosmetic, "channels")
	return nil
}
