package locks

import (
	"fmt"
	"time"

	"github.com/smorton/sitegate/internal/cli"
	"github.com/smorton/sitegate/internal/constants"
)

type LockStatusCmd struct{}

func (c *LockStatusCmd) Run(ctx *cli.Context) error {
	state, err := ctx.Lock.Status()
	if err != nil {
		return err
	}
	if !state.IsLocked {
		fmt.Println("Lock mode is off.")
		return nil
	}
	fmt.Printf("Lock mode is on: %s left (ends %s)\n",
		cli.FormatRemaining(*state.LockEndTime, time.Now()),
		state.LockEndTime.Local().Format("Mon "+constants.TimeFormat))
	return nil
}

type LockActivateCmd struct {
	For time.Duration `arg:"" help:"Lock duration (e.g. 45m, 8h)."`
}

func (c *LockActivateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Lock.Activate(c.For); err != nil {
		return err
	}
	fmt.Printf("Settings locked for %s. Restrictive changes are still allowed.\n", c.For)
	return nil
}

type LockExtendCmd struct {
	By time.Duration `arg:"" help:"Additional lock time (e.g. 30m)."`
}

func (c *LockExtendCmd) Run(ctx *cli.Context) error {
	if err := ctx.Lock.Extend(c.By); err != nil {
		return err
	}
	state, err := ctx.Lock.Status()
	if err != nil {
		return err
	}
	fmt.Printf("Lock extended: %s left.\n", cli.FormatRemaining(*state.LockEndTime, time.Now()))
	return nil
}
