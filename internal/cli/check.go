package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/smorton/sitegate/internal/engine"
	"github.com/smorton/sitegate/internal/models"
	"github.com/smorton/sitegate/internal/schedule"
)

type CheckCmd struct {
	URL         string `arg:"" help:"URL to check against the active blocking rules."`
	ContentFile string `short:"c" help:"File containing page text for content-keyword matching."`
	Quiet       bool   `short:"q" help:"Suppress output; the exit code carries the verdict."`
}

func (c *CheckCmd) Run(ctx *Context) error {
	current, err := ctx.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	active, err := ctx.Session.Active()
	if err != nil {
		return fmt.Errorf("failed to load session state: %w", err)
	}

	var pageText string
	if c.ContentFile != "" {
		data, err := os.ReadFile(c.ContentFile)
		if err != nil {
			return fmt.Errorf("failed to read content file: %w", err)
		}
		pageText = string(data)
	}

	match := engine.Evaluate(c.URL, pageText, active, current.Blocking.Schedules, time.Now())
	if match == nil {
		if !c.Quiet {
			fmt.Println("Allowed")
		}
		return nil
	}

	if !c.Quiet {
		printMatch(match)
	}
	return fmt.Errorf("%s: %w", c.URL, ErrBlocked)
}

func printMatch(match *models.Match) {
	action := "redirect"
	if !match.Navigational() {
		action = "obscure"
	}
	fmt.Printf("Blocked (%s)\n", action)
	fmt.Printf("  Layer: %s\n", match.Layer)
	fmt.Printf("  Rule:  %s %q\n", match.Type, match.Value)
	if match.Schedule != nil {
		fmt.Printf("  Schedule: %s (%s)\n", match.Schedule.Name, schedule.FormatWindow(*match.Schedule))
	}
}
