package schedules

import (
	"fmt"
	"strings"
	"time"

	"github.com/smorton/sitegate/internal/cli"
	"github.com/smorton/sitegate/internal/schedule"
)

type ScheduleListCmd struct{}

func (c *ScheduleListCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if len(settings.Blocking.Schedules) == 0 {
		fmt.Println("No schedules configured. Add one with 'sitegate schedule add'.")
		return nil
	}

	now := time.Now()
	for _, s := range settings.Blocking.Schedules {
		marker := " "
		if schedule.IsActive(s, now) {
			marker = "●"
		}
		state := ""
		if !s.Enabled {
			state = " (disabled)"
		}
		fmt.Printf("%s %s%s\n", marker, s.Name, state)
		fmt.Printf("    ID:    %s\n", s.ID)
		fmt.Printf("    When:  %s on %s\n", schedule.FormatWindow(s), cli.FormatWeekdays(s.Days))
		if len(s.BlockedDomains) > 0 {
			fmt.Printf("    Domains:  %s\n", strings.Join(s.BlockedDomains, ", "))
		}
		if len(s.URLKeywords) > 0 {
			fmt.Printf("    URL keywords:  %s\n", strings.Join(s.URLKeywords, ", "))
		}
		if len(s.ContentKeywords) > 0 {
			fmt.Printf("    Content keywords:  %s\n", strings.Join(s.ContentKeywords, ", "))
		}
	}
	return nil
}
