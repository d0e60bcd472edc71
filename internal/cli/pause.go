package cli

import (
	"fmt"
	"time"
)

type PauseCmd struct {
	For time.Duration `short:"f" help:"Pause duration (e.g. 30m, 2h). Omit to pause until resumed."`
}

func (c *PauseCmd) Run(ctx *Context) error {
	var duration *time.Duration
	if c.For != 0 {
		duration = &c.For
	}
	if err := ctx.Pause.Pause(duration); err != nil {
		return err
	}
	if duration == nil {
		fmt.Println("Cosmetic filters paused until resumed.")
	} else {
		fmt.Printf("Cosmetic filters paused for %s.\n", c.For)
	}
	return nil
}

type ResumeCmd struct{}

func (c *ResumeCmd) Run(ctx *Context) error {
	if err := ctx.Pause.Resume(); err != nil {
		return err
	}
	fmt.Println("Cosmetic filters resumed.")
	return nil
}
