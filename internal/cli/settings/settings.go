package settings

import (
	"fmt"
	"strings"

	"github.com/smorton/sitegate/internal/cli"
	"github.com/smorton/sitegate/internal/constants"
)

type SettingsCmd struct {
	List  bool `help:"List current settings."`
	Reset bool `help:"Reset all settings to defaults."`

	Theme        *string `help:"UI theme (light|dark)."`
	HideFeed     *bool   `help:"Hide the home feed."`
	HideComments *bool   `help:"Hide comment sections."`
	HideSidebar  *bool   `help:"Hide the related-videos sidebar."`
	HideShorts   *bool   `help:"Hide shorts."`

	QuickDomains         *string `help:"Comma-separated default domains for quick-block sessions."`
	QuickURLKeywords     *string `help:"Comma-separated default URL keywords for quick-block sessions."`
	QuickContentKeywords *string `help:"Comma-separated default content keywords for quick-block sessions."`
}

func (c *SettingsCmd) Validate() error {
	if c.Theme != nil && *c.Theme != constants.ThemeLight && *c.Theme != constants.ThemeDark {
		return fmt.Errorf("theme must be %q or %q", constants.ThemeLight, constants.ThemeDark)
	}
	return nil
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	if c.Reset {
		if err := ctx.Settings.Reset(); err != nil {
			return err
		}
		fmt.Println("Settings reset to defaults.")
		return nil
	}

	if c.List {
		settings, err := ctx.Settings.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		fmt.Println("Current Settings:")
		fmt.Printf("  Schema Version:  %s\n", settings.Version)
		fmt.Printf("  Theme:           %s\n", settings.Theme)
		fmt.Println("\nCosmetic Filters:")
		fmt.Printf("  Hide Feed:       %v\n", settings.Cosmetic.HideFeed)
		fmt.Printf("  Hide Comments:   %v\n", settings.Cosmetic.HideComments)
		fmt.Printf("  Hide Sidebar:    %v\n", settings.Cosmetic.HideSidebar)
		fmt.Printf("  Hide Shorts:     %v\n", settings.Cosmetic.HideShorts)
		fmt.Printf("  Blocked Channels: %d\n", len(settings.Cosmetic.BlockedChannels))
		fmt.Println("\nQuick-Block Defaults:")
		fmt.Printf("  Domains:          %s\n", strings.Join(settings.Blocking.QuickBlock.BlockedDomains, ", "))
		fmt.Printf("  URL Keywords:     %s\n", strings.Join(settings.Blocking.QuickBlock.URLKeywords, ", "))
		fmt.Printf("  Content Keywords: %s\n", strings.Join(settings.Blocking.QuickBlock.ContentKeywords, ", "))
		return nil
	}

	cosmetic := make(map[string]any)
	if c.HideFeed != nil {
		cosmetic["hide_feed"] = *c.HideFeed
	}
	if c.HideComments != nil {
		cosmetic["hide_comments"] = *c.HideComments
	}
	if c.HideSidebar != nil {
		cosmetic["hide_sidebar"] = *c.HideSidebar
	}
	if c.HideShorts != nil {
		cosmetic["hide_shorts"] = *c.HideShorts
	}

	quick := make(map[string]any)
	if c.QuickDomains != nil {
		quick["blocked_domains"] = cli.SplitList(*c.QuickDomains)
	}
	if c.QuickURLKeywords != nil {
		quick["url_keywords"] = cli.SplitList(*c.QuickURLKeywords)
	}
	if c.QuickContentKeywords != nil {
		quick["content_keywords"] = cli.SplitList(*c.QuickContentKeywords)
	}

	partial := make(map[string]any)
	if c.Theme != nil {
		partial["theme"] = *c.Theme
	}
	if len(cosmetic) > 0 {
		partial["cosmetic"] = cosmetic
	}
	if len(quick) > 0 {
		partial["blocking"] = map[string]any{"quick_block": quick}
	}
	if len(partial) == 0 {
		fmt.Println("No settings specified. Use --list to see current settings.")
		return nil
	}

	if err := ctx.Settings.Update(partial); err != nil {
		return err
	}
	if err := ctx.Settings.Flush(); err != nil {
		return err
	}
	fmt.Println("Settings updated.")
	return nil
}
