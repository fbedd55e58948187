package activity

import (
	"context"

	"github.com/julianstephens/fastwell/internal/cli"
	"github.com/julianstephens/fastwell/internal/progress"
)

type PartnerActiveCmd struct {
	Page  int `help:"Page number." default:"1"`
	Limit int `help:"Page size. Defaults to page_limit."`
}

func (c *PartnerActiveCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	page, err := svc.ActiveFasters(context.Background(), c.Page, c.Limit)
	if err != nil {
		return err
	}
	if page.Total == 0 {
		ctx.Println("None of your partners are fasting right now.")
		return nil
	}
	now := ctx.Now()
	for _, af := range page.Items {
		line := af.UserID + "  " + string(af.Type) + "  " + cli.DescribeSchedule(af.Schedule)
		if af.StartTime != nil {
			line += "  " + progress.FormatDuration(now.Sub(*af.StartTime)) + " in"
		}
		if af.Goal != "" {
			line += "  " + af.Goal
		}
		ctx.Println(line)
	}
	ctx.Printf("\n%d active (page %d)\n", page.Total, page.Page)
	return nil
}

type PartnerAddCmd struct {
	User string `arg:"" help:"User id to grant partner access to your fasts."`
}

func (c *PartnerAddCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	if err := svc.AddPartner(context.Background(), c.User); err != nil {
		return err
	}
	ctx.Printf("✓ %s can now follow fasts you share with partners.\n", c.User)
	return nil
}
