package system

import (
	"fmt"

	"github.com/julianstephens/fastwell/internal/cli"
	"github.com/julianstephens/fastwell/internal/config"
	"github.com/julianstephens/fastwell/internal/keyring"
	"github.com/julianstephens/fastwell/internal/storage"
)

type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(ctx *cli.Context) error {
	ctx.Println("Current Configuration:")
	for _, key := range config.Keys {
		v, err := ctx.Config.Get(key)
		if err != nil {
			return err
		}
		if v == "" {
			v = "(not set)"
		}
		ctx.Printf("  %-26s %s\n", key, v)
	}
	return nil
}

type ConfigSetCmd struct {
	Key   string `arg:"" help:"Setting to change."`
	Value string `arg:"" help:"New value."`
}

func (c *ConfigSetCmd) Run(ctx *cli.Context) error {
	if c.Key == "database" && storage.IsPostgresConnString(c.Value) {
		if _, err := storage.ValidateConnString(c.Value); err != nil {
			return fmt.Errorf("%w; store it with 'fastwell config connection' and set database to %q", err, cli.KeyringDatabase)
		}
	}
	if err := ctx.Config.Set(c.Key, c.Value); err != nil {
		return err
	}
	if err := ctx.Config.Save(ctx.ConfigPath); err != nil {
		return err
	}
	ctx.Printf("✓ %s updated.\n", c.Key)
	return nil
}

type ConfigPathCmd struct{}

func (c *ConfigPathCmd) Run(ctx *cli.Context) error {
	ctx.Println(config.ExpandHome(ctx.ConfigPath))
	return nil
}

type ConfigConnectionCmd struct {
	ConnString string `arg:"" optional:"" help:"PostgreSQL connection string, credentials included."`
	Clear      bool   `help:"Remove the stored connection string."`
}

func (c *ConfigConnectionCmd) Run(ctx *cli.Context) error {
	if c.Clear {
		if err := keyring.DeleteConnectionString(); err != nil {
			return err
		}
		ctx.Println("✓ Connection string removed from keyring.")
		return nil
	}
	if !storage.IsPostgresConnString(c.ConnString) {
		return fmt.Errorf("not a PostgreSQL connection string")
	}
	if err := keyring.SetConnectionString(c.ConnString); err != nil {
		return err
	}
	if err := ctx.Config.Set("database", cli.KeyringDatabase); err != nil {
		return err
	}
	if err := ctx.Config.Save(ctx.ConfigPath); err != nil {
		return err
	}
	ctx.Println("✓ Connection string stored in keyring; database set to keyring.")
	return nil
}
