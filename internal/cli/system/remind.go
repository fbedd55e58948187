package system

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/fastwell/internal/cli"
	"github.com/julianstephens/fastwell/internal/models"
	"github.com/julianstephens/fastwell/internal/notifier"
	"github.com/julianstephens/fastwell/internal/reminder"
)

type RemindCmd struct {
	Interval time.Duration `help:"How often to resync with the active fast. Defaults to reminders.resync_minutes."`
}

func (c *RemindCmd) Run(ctx *cli.Context) error {
	if !ctx.Config.Reminders.Enabled {
		return fmt.Errorf("reminders are disabled, run 'fastwell config set reminders.enabled true'")
	}
	svc, err := ctx.Service()
	if err != nil {
		return err
	}

	interval := c.Interval
	if interval <= 0 {
		interval = time.Duration(ctx.Config.Reminders.ResyncMinutes) * time.Minute
	}

	source := func(rctx context.Context) (*models.Fast, error) {
		d, err := svc.Route(rctx)
		if err != nil {
			return nil, err
		}
		return d.Active, nil
	}
	sender := notifier.Fallback{
		Primary:   notifier.NewTray(),
		Secondary: notifier.Log{Out: ctx.Out},
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx.Printf("Reminder daemon running, resyncing every %s. Press Ctrl+C to stop.\n", interval)
	return reminder.New(sender, reminder.WithClock(ctx.Now)).Run(runCtx, source, interval)
}
