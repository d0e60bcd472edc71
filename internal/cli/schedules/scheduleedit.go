package schedules

import (
	"fmt"

	"github.com/smorton/sitegate/internal/cli"
	"github.com/smorton/sitegate/internal/models"
	"github.com/smorton/sitegate/internal/settings"
)

type ScheduleEditCmd struct {
	ID              string  `arg:"" help:"ID of the schedule to edit."`
	Name            *string `help:"New name."`
	Start           *string `short:"s" help:"New start time (HH:MM)."`
	End             *string `short:"e" help:"New end time (HH:MM)."`
	Days            *string `short:"d" help:"New comma-separated active days."`
	Domains         *string `help:"Replacement blocked-domain list (comma-separated)."`
	URLKeywords     *string `help:"Replacement URL-keyword list (comma-separated)."`
	ContentKeywords *string `help:"Replacement content-keyword list (comma-separated)."`
	Enable          bool    `help:"Enable the schedule." xor:"state"`
	Disable         bool    `help:"Disable the schedule." xor:"state"`
}

func (c *ScheduleEditCmd) Run(ctx *cli.Context) error {
	current, err := ctx.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	var sched *models.Schedule
	for i := range current.Blocking.Schedules {
		if current.Blocking.Schedules[i].ID == c.ID {
			sched = &current.Blocking.Schedules[i]
			break
		}
	}
	if sched == nil {
		return settings.ErrScheduleNotFound
	}

	if c.Name != nil {
		sched.Name = *c.Name
	}
	if c.Start != nil || c.End != nil {
		if len(sched.TimePeriods) == 0 {
			sched.TimePeriods = []models.TimePeriod{{}}
		}
		if c.Start != nil {
			sched.TimePeriods[0].StartTime = *c.Start
		}
		if c.End != nil {
			sched.TimePeriods[0].EndTime = *c.End
		}
	}
	if c.Days != nil {
		days, err := cli.ParseWeekdays(*c.Days)
		if err != nil {
			return err
		}
		sched.Days = days
	}
	if c.Domains != nil {
		sched.BlockedDomains = cli.SplitList(*c.Domains)
	}
	if c.URLKeywords != nil {
		sched.URLKeywords = cli.SplitList(*c.URLKeywords)
	}
	if c.ContentKeywords != nil {
		sched.ContentKeywords = cli.SplitList(*c.ContentKeywords)
	}
	if c.Enable {
		sched.Enabled = true
	}
	if c.Disable {
		sched.Enabled = false
	}

	if err := ctx.Settings.UpdateSchedule(*sched); err != nil {
		return err
	}
	fmt.Printf("Updated schedule %q\n", sched.Name)
	return nil
}
