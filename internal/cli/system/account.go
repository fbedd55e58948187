package system

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/fastwell/internal/auth"
	"github.com/julianstephens/fastwell/internal/cli"
	"github.com/julianstephens/fastwell/internal/keyring"
)

type LoginCmd struct {
	Token string `arg:"" help:"Bearer token issued by the fast service."`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	token := strings.TrimSpace(c.Token)
	if _, _, err := auth.ExpiresAt(token); err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}
	if auth.Expired(token, ctx.Now()) {
		return fmt.Errorf("token has already expired")
	}
	if err := keyring.SetToken(token); err != nil {
		return err
	}

	if exp, ok, _ := auth.ExpiresAt(token); ok {
		ctx.Printf("✓ Logged in. Session expires %s.\n", exp.In(ctx.Location()).Format("2006-01-02 15:04"))
	} else {
		ctx.Println("✓ Logged in.")
	}
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	err := keyring.DeleteToken()
	if errors.Is(err, keyring.ErrNotFound) {
		ctx.Println("Not logged in.")
		return nil
	}
	if err != nil {
		return err
	}
	ctx.Println("✓ Logged out.")
	return nil
}

type TokenCmd struct {
	User      string        `help:"User id to put in the token subject." required:""`
	JWTSecret string        `help:"HS256 secret shared with 'fastwell serve'." env:"FASTWELL_JWT_SECRET" required:""`
	TTL       time.Duration `help:"How long the token is valid." default:"720h"`
}

func (c *TokenCmd) Run(ctx *cli.Context) error {
	signer, err := auth.NewSigner(c.JWTSecret)
	if err != nil {
		return err
	}
	token, err := signer.Issue(c.User, c.TTL)
	if err != nil {
		return err
	}
	ctx.Println(token)
	return nil
}
