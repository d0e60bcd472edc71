package system

import (
	"fmt"
	"os"

	"github.com/smorton/sitegate/internal/cli"
	"github.com/smorton/sitegate/internal/storage"
)

type InitCmd struct {
	Force bool `help:"Force reset by deleting the existing database before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if s, ok := ctx.Backends.Primary().(*storage.SQLiteBackend); ok {
			dbPath := s.GetPath()
			if _, err := os.Stat(dbPath); err == nil {
				if err := ctx.Backends.Close(); err != nil {
					return fmt.Errorf("failed to close existing database: %w", err)
				}
				if err := os.Remove(dbPath); err != nil {
					return fmt.Errorf("failed to delete existing database: %w", err)
				}
				fmt.Printf("Deleted existing database at: %s\n", dbPath)
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("failed to access existing database: %w", err)
			}
		}
	}

	if err := ctx.Backends.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized sitegate storage (%s primary)\n", ctx.Backends.Primary().Name())
	return nil
}
