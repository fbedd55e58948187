package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/fastwell/internal/cli"
	"github.com/julianstephens/fastwell/internal/storage"
)

type InitCmd struct {
	Force bool `help:"Back up and delete the existing SQLite database before initializing."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	store, err := ctx.NewStore()
	if err != nil {
		return err
	}

	if c.Force && store.Dialect() == storage.DialectSQLite {
		dbPath := store.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			ctx.PerformAutomaticBackup()
			if err := store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized fastwell storage at: %s\n", store.GetConfigPath())
	return nil
}
