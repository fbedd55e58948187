package system

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/fastwell/internal/auth"
	"github.com/julianstephens/fastwell/internal/cli"
	"github.com/julianstephens/fastwell/internal/fasting"
	"github.com/julianstephens/fastwell/internal/logger"
	"github.com/julianstephens/fastwell/internal/server"
)

type ServeCmd struct {
	Addr      string `help:"Address to listen on." default:"127.0.0.1:8080"`
	JWTSecret string `help:"HS256 secret for bearer tokens. Without one every request is the local user." env:"FASTWELL_JWT_SECRET"`
	NoBackup  bool   `help:"Skip the automatic backup on start."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Store()
	if err != nil {
		return err
	}
	if !c.NoBackup {
		ctx.PerformAutomaticBackup()
	}

	var signer *auth.Signer
	if c.JWTSecret != "" {
		if signer, err = auth.NewSigner(c.JWTSecret); err != nil {
			return err
		}
	}

	svc := fasting.NewService(store, fasting.Config{
		Strict:    ctx.Config.StrictValidation,
		PageLimit: ctx.Config.PageLimit,
	})
	srv := &http.Server{
		Addr:              c.Addr,
		Handler:           server.New(svc, server.Config{Signer: signer}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	ctx.Printf("Serving fasts on http://%s (auth: %v)\n", c.Addr, signer != nil)
	logger.Info("Server started", "addr", c.Addr, "auth", signer != nil)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-runCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
