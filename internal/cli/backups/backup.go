package backups

import (
	"fmt"
	"os"

	"github.com/smorton/sitegate/internal/cli"
)

type ExportCmd struct {
	Output string `short:"o" help:"File to write the backup to. Defaults to stdout."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	data, err := ctx.Settings.Export()
	if err != nil {
		return fmt.Errorf("failed to export settings: %w", err)
	}
	if c.Output == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(c.Output, data, 0600); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	fmt.Printf("Settings exported to %s\n", c.Output)
	return nil
}

type ImportCmd struct {
	File string `arg:"" help:"Backup file to import."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}
	if err := ctx.Settings.Import(data); err != nil {
		return err
	}
	fmt.Println("Settings imported.")
	return nil
}
