package fasts

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/fastwell/internal/cli"
	"github.com/julianstephens/fastwell/internal/constants"
	"github.com/julianstephens/fastwell/internal/fasting"
	"github.com/julianstephens/fastwell/internal/models"
	"github.com/julianstephens/fastwell/internal/schedule"
)

type FastNewCmd struct {
	Type      string   `help:"Fast type: daily, nightly, weekly, custom or breakthrough." default:"custom"`
	Start     string   `help:"Start (YYYY-MM-DD HH:MM, YYYY-MM-DD, HH:MM, 6 PM or RFC 3339). Defaults to now."`
	End       string   `help:"End, in the same formats as --start."`
	Duration  string   `help:"Preset length for one-time fasts: 12h, 24h, 3d or 7d."`
	Recurring bool     `help:"Repeat a custom fast."`
	Frequency string   `help:"Frequency of a recurring custom fast: daily or weekly."`
	Days      []string `help:"Days for weekly fasts, e.g. mon,thu." sep:","`
	Timezone  string   `help:"IANA timezone for the schedule. Defaults to the configured timezone."`
	Goal      string   `help:"What you are fasting for."`
	SmartGoal string   `help:"A specific, measurable goal."`
	Verse     string   `help:"Scripture to meditate on."`
	Focus     string   `help:"Prayer focus."`
	Prayer    []string `help:"Prayer time within the window; repeat or comma-separate." sep:","`
	Remind    bool     `help:"Send reminders at prayer times and when the window ends."`
	Partners  bool     `help:"Let accountability partners follow this fast."`
}

func (c *FastNewCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}

	tz := c.Timezone
	if tz == "" {
		tz = ctx.Timezone()
	}
	sel, err := c.selection(ctx, tz)
	if err != nil {
		return err
	}

	f, advisories, err := svc.CreateFromSelection(context.Background(), fasting.Draft{
		Selection:                 sel,
		Goal:                      c.Goal,
		SmartGoal:                 c.SmartGoal,
		PrayerTimes:               c.Prayer,
		Verse:                     c.Verse,
		PrayerFocus:               c.Focus,
		ReminderEnabled:           c.Remind,
		AddAccountabilityPartners: c.Partners,
	})
	if err != nil {
		return err
	}
	ctx.PrintAdvisories(advisories)
	ctx.Printf("✓ Fast created: %s\n\n", f.ID)
	ctx.PrintFast(f, ctx.Now())
	return nil
}

func (c *FastNewCmd) selection(ctx *cli.Context, tz string) (schedule.Selection, error) {
	sel := schedule.Selection{
		Type:      constants.FastType(strings.ToLower(c.Type)),
		Duration:  constants.FixedDuration(c.Duration),
		Recurring: c.Recurring,
		Frequency: constants.Frequency(strings.ToLower(c.Frequency)),
		Days:      c.Days,
		Timezone:  tz,
	}

	now := ctx.Now()
	loc := ctx.Location()
	if c.Timezone != "" {
		l, err := models.Schedule{Timezone: c.Timezone}.Location()
		if err != nil {
			return sel, fmt.Errorf("invalid timezone %q", c.Timezone)
		}
		loc = l
	}

	sel.StartAt = now.In(loc)
	if c.Start != "" {
		start, err := cli.ParseWhen(c.Start, now, loc)
		if err != nil {
			return sel, fmt.Errorf("--start: %w", err)
		}
		sel.StartAt = start
	}
	if c.End != "" {
		end, err := cli.ParseWhen(c.End, sel.StartAt, loc)
		if err != nil {
			return sel, fmt.Errorf("--end: %w", err)
		}
		sel.EndAt = end
	}
	return sel, nil
}

type FastListCmd struct {
	Status string `help:"Only fasts with this status: upcoming, active, completed or failed."`
	Type   string `help:"Only fasts of this type."`
	From   string `help:"Only fasts starting on or after this date."`
	To     string `help:"Only fasts starting on or before this date."`
	Page   int    `help:"Page number." default:"1"`
	Limit  int    `help:"Page size. Defaults to page_limit."`
}

func (c *FastListCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}

	filter := models.ListFilter{
		Page:   c.Page,
		Limit:  c.Limit,
		Status: constants.FastStatus(c.Status),
		Type:   constants.FastType(c.Type),
	}
	if c.From != "" {
		t, err := cli.ParseWhen(c.From, ctx.Now(), ctx.Location())
		if err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		filter.StartDate = &t
	}
	if c.To != "" {
		t, err := cli.ParseUntil(c.To, ctx.Now(), ctx.Location())
		if err != nil {
			return fmt.Errorf("--to: %w", err)
		}
		filter.EndDate = &t
	}

	page, err := svc.List(context.Background(), filter)
	if err != nil {
		return err
	}
	if page.Total == 0 {
		ctx.Println("No fasts found. Start one with 'fastwell fast new'.")
		return nil
	}
	for _, f := range page.Items {
		ctx.Println(cli.FastLine(f))
	}
	pages := (page.Total + page.Limit - 1) / page.Limit
	ctx.Printf("\nPage %d of %d (%d fasts)\n", page.Page, pages, page.Total)
	return nil
}

type FastShowCmd struct {
	ID string `arg:"" optional:"" help:"Fast id. Defaults to the active fast."`
}

func (c *FastShowCmd) Run(ctx *cli.Context) error {
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
	ctx.PrintFast(f, ctx.Now())
	return nil
}

type FastUpdateCmd struct {
	ID          string   `arg:"" help:"Fast id."`
	Goal        *string  `help:"New goal."`
	Prayer      []string `help:"Replace the prayer times; repeat or comma-separate." sep:","`
	ClearPrayer bool     `help:"Remove all prayer times."`
}

func (c *FastUpdateCmd) Run(ctx *cli.Context) error {
	if c.Goal == nil && c.Prayer == nil && !c.ClearPrayer {
		return fmt.Errorf("nothing to update, pass --goal, --prayer or --clear-prayer")
	}
	if c.ClearPrayer && c.Prayer != nil {
		return fmt.Errorf("--prayer and --clear-prayer cannot be combined")
	}
	var prayers *[]string
	switch {
	case c.ClearPrayer:
		prayers = &[]string{}
	case c.Prayer != nil:
		prayers = &c.Prayer
	}
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	f, err := svc.Update(context.Background(), c.ID, models.UpdateFastPayload{
		Goal:        c.Goal,
		PrayerTimes: prayers,
	})
	if err != nil {
		return err
	}
	ctx.Println("✓ Fast updated.")
	ctx.PrintFast(f, ctx.Now())
	return nil
}

type FastCompleteCmd struct {
	ID string `arg:"" optional:"" help:"Fast id. Defaults to the active fast."`
}

func (c *FastCompleteCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	bg := context.Background()
	id, err := cli.FastID(bg, svc, c.ID)
	if err != nil {
		return err
	}
	f, err := svc.Complete(bg, id)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Fast %s completed. Well done.\n", f.ID)
	return nil
}

type FastBreakCmd struct {
	ID  string `arg:"" optional:"" help:"Fast id. Defaults to the active fast."`
	Yes bool   `short:"y" help:"End the fast without asking for confirmation."`
}

func (c *FastBreakCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	bg := context.Background()
	id, err := cli.FastID(bg, svc, c.ID)
	if err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title("End this fast early?").
			Description("This cannot be undone. The fast will be marked as failed.").
			Affirmative("End fast").
			Negative("Keep fasting").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			ctx.Println("Keep going. The fast is still running.")
			return nil
		}
	}

	f, err := svc.EndEarly(bg, id)
	if err != nil {
		return err
	}
	ctx.Printf("Fast %s ended early.\n", f.ID)
	return nil
}

type FastRouteCmd struct{}

func (c *FastRouteCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	d, err := svc.Route(context.Background())
	if err != nil {
		return err
	}
	switch d.Destination {
	case fasting.ActivelyFasting:
		ctx.Printf("%s: %s\n", d.Destination, d.Active.ID)
	case fasting.PastFasts:
		ctx.Printf("%s: no active fast; see 'fastwell fast list'\n", d.Destination)
	default:
		ctx.Printf("%s: no fasts yet; start one with 'fastwell fast new'\n", d.Destination)
	}
	return nil
}
