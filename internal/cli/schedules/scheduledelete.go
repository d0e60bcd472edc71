package schedules

import (
	"fmt"

	"github.com/smorton/sitegate/internal/cli"
)

type ScheduleDeleteCmd struct {
	ID string `arg:"" help:"ID of the schedule to delete."`
}

func (c *ScheduleDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Settings.DeleteSchedule(c.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted schedule %s\n", c.ID)
	return nil
}
