package channels

import (
	"fmt"

	"github.com/smorton/sitegate/internal/cli"
)

type ChannelBlockCmd struct {
	Name string `arg:"" help:"Channel name or handle to block."`
}

func (c *ChannelBlockCmd) Run(ctx *cli.Context) error {
	if err := ctx.Settings.BlockChannel(c.Name); err != nil {
		return err
	}
	fmt.Printf("Blocked channel %q\n", c.Name)
	return nil
}

type ChannelUnblockCmd struct {
	Name string `arg:"" help:"Channel name or handle to unblock."`
}

func (c *ChannelUnblockCmd) Run(ctx *cli.Context) error {
	if err := ctx.Settings.UnblockChannel(c.Name); err != nil {
		return err
	}
	fmt.Printf("Unblocked channel %q\n", c.Name)
	return nil
}

type ChannelListCmd struct{}

func (c *ChannelListCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if len(settings.Cosmetic.BlockedChannels) == 0 {
		fmt.Println("No channels blocked.")
		return nil
	}
	for _, name := range settings.Cosmetic.BlockedChannels {
		fmt.Println(name)
	}
	return nil
}
