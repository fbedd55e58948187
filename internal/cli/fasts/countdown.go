package fasts

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/julianstephens/fastwell/internal/cli"
	"github.com/julianstephens/fastwell/internal/constants"
	"github.com/julianstephens/fastwell/internal/countdown"
	"github.com/julianstephens/fastwell/internal/logger"
	"github.com/julianstephens/fastwell/internal/models"
	"github.com/julianstephens/fastwell/internal/progress"
	"github.com/julianstephens/fastwell/internal/tui"
)

type FastProgressCmd struct {
	ID   string `arg:"" optional:"" help:"Fast id. Defaults to the active fast."`
	JSON bool   `help:"Print the progress as JSON."`
}

func (c *FastProgressCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	bg := context.Background()
	id, err := cli.FastID(bg, svc, c.ID)
	if err != nil {
		return err
	}
	f, err := svc.Get(bg, id)
	if err != nil {
		return err
	}
	p, err := progress.Compute(f, ctx.Now())
	if err != nil {
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	ctx.Printf("Progress:   %s\n", cli.ProgressLine(p))
	loc := ctx.Location()
	ctx.Printf("Window:     %s → %s\n", p.WindowStart.In(loc).Format(time.DateTime), p.WindowEnd.In(loc).Format(time.DateTime))
	if p.DailyHours > 0 {
		ctx.Printf("Daily:      %.1f hours\n", p.DailyHours)
	} else {
		ctx.Printf("Total:      %.1f hours\n", p.TotalHours)
	}
	ctx.Printf("Days:       %s\n", p.TotalDays)
	return nil
}

type FastCountdownCmd struct {
	ID    string `arg:"" optional:"" help:"Fast id. Defaults to the active fast."`
	Plain bool   `help:"Print a progress line every second instead of the full-screen view."`
}

func (c *FastCountdownCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	id, err := cli.FastID(runCtx, svc, c.ID)
	if err != nil {
		return err
	}
	f, err := svc.Get(runCtx, id)
	if err != nil {
		return err
	}
	fetch := func(fctx context.Context) (models.Fast, error) {
		return svc.Get(fctx, id)
	}

	if !c.Plain {
		return tui.Run(runCtx, f, fetch, tui.WithClock(ctx.Now))
	}
	return plainCountdown(runCtx, ctx, f, fetch)
}

// plainCountdown prints one line per second until the window completes or
// ctx is done. The fast is re-fetched in the background; late responses are
// dropped.
func plainCountdown(ctx context.Context, app *cli.Context, f models.Fast, fetch tui.Fetcher) error {
	latest := &countdown.Latest[models.Fast]{}
	latest.Set(latest.Begin(), f)
	defer latest.Invalidate()

	var wg sync.WaitGroup
	defer wg.Wait()

	done := make(chan struct{})
	var once sync.Once
	finish := func() { once.Do(func() { close(done) }) }

	lastFetch := app.Now()
	ticker := countdown.NewTicker(constants.CountdownInterval, func(time.Time) {
		select {
		case <-done:
			return
		default:
		}
		now := app.Now()
		if now.Sub(lastFetch) >= constants.RefreshInterval {
			lastFetch = now
			gen := latest.Begin()
			wg.Add(1)
			go func() {
				defer wg.Done()
				fresh, err := fetch(ctx)
				if err != nil {
					logger.Warn("Failed to refresh fast", "error", err)
					return
				}
				latest.Set(gen, fresh)
			}()
		}

		current, _ := latest.Get()
		if current.Status.IsTerminal() {
			app.Printf("Fast is %s.\n", current.Status)
			finish()
			return
		}
		p, err := progress.Compute(current, now)
		if err != nil {
			app.Printf("Error: %v\n", err)
			finish()
			return
		}
		app.Printf("\r%s", cli.ProgressLine(p))
		if p.IsComplete {
			app.Println()
			finish()
		}
	})

	ticker.Start(ctx)
	select {
	case <-done:
	case <-ctx.Done():
		app.Println()
	}
	ticker.Stop()
	return nil
}
