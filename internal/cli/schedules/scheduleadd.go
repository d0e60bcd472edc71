package schedules

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/smorton/sitegate/internal/cli"
	"github.com/smorton/sitegate/internal/matcher"
	"github.com/smorton/sitegate/internal/models"
	"github.com/smorton/sitegate/internal/schedule"
)

type ScheduleAddCmd struct {
	Name            string `arg:"" optional:"" help:"Schedule name."`
	Start           string `short:"s" help:"Start time (HH:MM)."`
	End             string `short:"e" help:"End time (HH:MM). May be earlier than start for overnight windows."`
	Days            string `short:"d" help:"Comma-separated active days (names or 0-6, 0=Sunday)." default:"0,1,2,3,4,5,6"`
	Domains         string `help:"Comma-separated blocked domains (supports * wildcards)."`
	URLKeywords     string `help:"Comma-separated URL keywords."`
	ContentKeywords string `help:"Comma-separated page-content keywords."`
	Icon            string `help:"Display icon."`
	Disabled        bool   `help:"Create the schedule in a disabled state."`
	Interactive     bool   `short:"i" help:"Build the schedule through an interactive form."`
}

func (c *ScheduleAddCmd) Run(ctx *cli.Context) error {
	if c.Interactive {
		if err := c.prompt(); err != nil {
			return err
		}
	}
	if c.Name == "" {
		return fmt.Errorf("a schedule name is required")
	}
	if c.Start == "" || c.End == "" {
		return fmt.Errorf("start and end times are required")
	}

	days, err := cli.ParseWeekdays(c.Days)
	if err != nil {
		return err
	}

	sched := models.Schedule{
		Name:            c.Name,
		Icon:            c.Icon,
		Enabled:         !c.Disabled,
		Days:            days,
		TimePeriods:     []models.TimePeriod{{StartTime: c.Start, EndTime: c.End}},
		BlockedDomains:  cli.SplitList(c.Domains),
		URLKeywords:     cli.SplitList(c.URLKeywords),
		ContentKeywords: cli.SplitList(c.ContentKeywords),
	}

	added, err := ctx.Settings.AddSchedule(sched)
	if err != nil {
		return err
	}
	fmt.Printf("Added schedule %q (%s)\n", added.Name, added.ID)
	fmt.Printf("  %s\n", schedule.FormatWindow(added))
	return nil
}

func (c *ScheduleAddCmd) prompt() error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&c.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name must not be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Start time (HH:MM)").
				Value(&c.Start).
				Validate(validateTime),
			huh.NewInput().
				Title("End time (HH:MM)").
				Description("An end before the start wraps past midnight.").
				Value(&c.End).
				Validate(validateTime),
			huh.NewInput().
				Title("Days").
				Description("Comma-separated names or numbers, 0=Sunday.").
				Value(&c.Days),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Blocked domains").
				Description("Comma-separated, * wildcards allowed.").
				Value(&c.Domains).
				Validate(validateDomains),
			huh.NewInput().
				Title("URL keywords").
				Value(&c.URLKeywords),
			huh.NewInput().
				Title("Content keywords").
				Value(&c.ContentKeywords),
		),
	)
	return form.Run()
}

func validateTime(s string) error {
	if !schedule.ValidTimeString(s) {
		return fmt.Errorf("expected HH:MM")
	}
	return nil
}

func validateDomains(s string) error {
	for _, pattern := range cli.SplitList(s) {
		if !matcher.ValidDomainPattern(pattern) {
			return fmt.Errorf("invalid domain pattern: %s", pattern)
		}
	}
	return nil
}
