package activity

import (
	"context"
	"fmt"

	"github.com/julianstephens/fastwell/internal/cli"
	"github.com/julianstephens/fastwell/internal/models"
)

type PrayerLogCmd struct {
	Time string `arg:"" optional:"" help:"Time of the prayer (HH:MM, 6 PM). Defaults to now."`
	Note string `help:"What you prayed about."`
	Fast string `help:"Fast id. Defaults to the active fast."`
}

func (c *PrayerLogCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	bg := context.Background()
	id, err := cli.FastID(bg, svc, c.Fast)
	if err != nil {
		return err
	}
	l, err := svc.LogPrayer(bg, id, models.PrayerLogPayload{Time: c.Time, Note: c.Note})
	if err != nil {
		return err
	}
	ctx.Printf("✓ Prayer logged at %s.\n", l.Time)
	return nil
}

type PrayerListCmd struct {
	Fast string `arg:"" optional:"" help:"Fast id. Defaults to the active fast."`
}

func (c *PrayerListCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	bg := context.Background()
	id, err := cli.FastID(bg, svc, c.Fast)
	if err != nil {
		return err
	}
	logs, err := svc.ListPrayers(bg, id)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		ctx.Println("No prayers logged yet.")
		return nil
	}
	loc := ctx.Location()
	for _, l := range logs {
		line := fmt.Sprintf("  %s  %s", l.PrayedAt.In(loc).Format("2006-01-02"), l.Time)
		if l.Note != "" {
			line += "  " + l.Note
		}
		ctx.Println(line)
	}
	return nil
}

type CheckinCmd struct {
	Hunger       int    `help:"Hunger level, 1-10." required:""`
	Clarity      int    `help:"Spiritual clarity, 1-10." required:""`
	Temptation   int    `help:"Temptation strength, 1-10." required:""`
	Breakthrough bool   `help:"Mark a breakthrough moment."`
	Note         string `help:"Anything else worth remembering."`
	Fast         string `help:"Fast id. Defaults to the active fast."`
}

func (c *CheckinCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	bg := context.Background()
	id, err := cli.FastID(bg, svc, c.Fast)
	if err != nil {
		return err
	}
	e, err := svc.RecordProgress(bg, id, models.ProgressEntryPayload{
		HungerLevel:        c.Hunger,
		SpiritualClarity:   c.Clarity,
		TemptationStrength: c.Temptation,
		Breakthrough:       c.Breakthrough,
		Note:               c.Note,
	})
	if err != nil {
		return err
	}
	ctx.Printf("✓ Check-in recorded at %s.\n", e.RecordedAt.In(ctx.Location()).Format("15:04"))
	return nil
}
