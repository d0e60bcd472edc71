package cli

import (
	"fmt"
	"time"

	"github.com/smorton/sitegate/internal/schedule"
)

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *Context) error {
	now := time.Now()

	current, err := ctx.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	active := schedule.Active(current.Blocking.Schedules, now)
	fmt.Printf("Schedules: %d configured, %d active now\n", len(current.Blocking.Schedules), len(active))
	for _, s := range active {
		fmt.Printf("  ● %s (%s)\n", s.Name, schedule.FormatWindow(s))
	}

	sess, err := ctx.Session.Active()
	if err != nil {
		return fmt.Errorf("failed to load session state: %w", err)
	}
	if sess == nil {
		fmt.Println("Quick block: inactive")
	} else if sess.EndTime == nil {
		fmt.Println("Quick block: active until ended")
	} else {
		fmt.Printf("Quick block: active, %s left\n", FormatRemaining(*sess.EndTime, now))
	}

	lockState, err := ctx.Lock.Status()
	if err != nil {
		return fmt.Errorf("failed to load lock state: %w", err)
	}
	if !lockState.IsLocked {
		fmt.Println("Lock mode: off")
	} else {
		fmt.Printf("Lock mode: on, %s left\n", FormatRemaining(*lockState.LockEndTime, now))
	}

	pauseState, err := ctx.Pause.Status()
	if err != nil {
		return fmt.Errorf("failed to load pause state: %w", err)
	}
	switch {
	case !pauseState.IsPaused:
		fmt.Println("Cosmetic filters: on")
	case pauseState.Indefinite():
		fmt.Println("Cosmetic filters: paused until resumed")
	default:
		fmt.Printf("Cosmetic filters: paused, %s left\n", FormatRemaining(*pauseState.PauseEndTime, now))
	}
	return nil
}
