package activity

import (
	"context"
	"strings"

	"github.com/julianstephens/fastwell/internal/cli"
	"github.com/julianstephens/fastwell/internal/constants"
	"github.com/julianstephens/fastwell/internal/models"
)

const journalTime = "2006-01-02 15:04"

type JournalListCmd struct {
	Fast string `arg:"" optional:"" help:"Fast id. Defaults to the active fast."`
}

func (c *JournalListCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	bg := context.Background()
	id, err := cli.FastID(bg, svc, c.Fast)
	if err != nil {
		return err
	}
	js, err := svc.ListJournals(bg, id)
	if err != nil {
		return err
	}
	if len(js) == 0 {
		ctx.Println("No journal entries yet.")
		return nil
	}
	for _, j := range js {
		title := j.Title
		if title == "" {
			title = firstLine(j.Body)
		}
		ctx.Printf("  %s  %s  [%s]  %s\n", j.ID, j.CreatedAt.In(ctx.Location()).Format(journalTime), j.Visibility, title)
	}
	return nil
}

type JournalAddCmd struct {
	Body    string `arg:"" help:"Journal entry text."`
	Title   string `help:"Entry title."`
	Partner bool   `help:"Share the entry with accountability partners."`
	Fast    string `help:"Fast id. Defaults to the active fast."`
}

func (c *JournalAddCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	bg := context.Background()
	id, err := cli.FastID(bg, svc, c.Fast)
	if err != nil {
		return err
	}
	visibility := constants.VisibilityPrivate
	if c.Partner {
		visibility = constants.VisibilityPartner
	}
	j, err := svc.CreateJournal(bg, id, models.CreateJournalPayload{
		Title:      c.Title,
		Body:       c.Body,
		Visibility: visibility,
	})
	if err != nil {
		return err
	}
	ctx.Printf("✓ Journal entry saved: %s\n", j.ID)
	return nil
}

type JournalShowCmd struct {
	Fast    string `arg:"" help:"Fast id."`
	Journal string `arg:"" help:"Journal entry id."`
}

func (c *JournalShowCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	bg := context.Background()
	j, err := svc.GetJournal(bg, c.Fast, c.Journal)
	if err != nil {
		return err
	}
	if j.Title != "" {
		ctx.Println(j.Title)
		ctx.Println(strings.Repeat("=", len(j.Title)))
	}
	ctx.Printf("%s  [%s]\n\n%s\n", j.CreatedAt.In(ctx.Location()).Format(journalTime), j.Visibility, j.Body)

	comments, err := svc.ListComments(bg, c.Fast, c.Journal)
	if err != nil {
		return err
	}
	if len(comments) > 0 {
		ctx.Println()
		printComments(ctx, comments)
	}
	return nil
}

type JournalCommentCmd struct {
	Fast    string `arg:"" help:"Fast id."`
	Journal string `arg:"" help:"Journal entry id."`
	Body    string `arg:"" help:"Comment text."`
}

func (c *JournalCommentCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	cm, err := svc.AddComment(context.Background(), c.Fast, c.Journal, models.CreateCommentPayload{Body: c.Body})
	if err != nil {
		return err
	}
	ctx.Printf("✓ Comment added: %s\n", cm.ID)
	return nil
}

type JournalCommentsCmd struct {
	Fast    string `arg:"" help:"Fast id."`
	Journal string `arg:"" help:"Journal entry id."`
}

func (c *JournalCommentsCmd) Run(ctx *cli.Context) error {
	svc, err := ctx.Service()
	if err != nil {
		return err
	}
	comments, err := svc.ListComments(context.Background(), c.Fast, c.Journal)
	if err != nil {
		return err
	}
	if len(comments) == 0 {
		ctx.Println("No comments yet.")
		return nil
	}
	printComments(ctx, comments)
	return nil
}

func printComments(ctx *cli.Context, comments []models.JournalComment) {
	for _, cm := range comments {
		ctx.Printf("  %s  %s: %s\n", cm.CreatedAt.In(ctx.Location()).Format(journalTime), cm.AuthorID, cm.Body)
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	if len(line) > 60 {
		return line[:57] + "..."
	}
	return line
}
