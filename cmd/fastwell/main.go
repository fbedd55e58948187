package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/fastwell/internal/cli"
	"github.com/julianstephens/fastwell/internal/cli/activity"
	"github.com/julianstephens/fastwell/internal/cli/backups"
	"github.com/julianstephens/fastwell/internal/cli/fasts"
	"github.com/julianstephens/fastwell/internal/cli/system"
	"github.com/julianstephens/fastwell/internal/config"
	"github.com/julianstephens/fastwell/internal/constants"
	apperrors "github.com/julianstephens/fastwell/internal/errors"
	"github.com/julianstephens/fastwell/internal/logger"
)

var CLI struct {
	Version    kong.VersionFlag
	ConfigFile string `help:"Config file path." type:"path" default:"~/.config/fastwell/config.yaml"`
	APIURL     string `name:"api-url" help:"Use a remote fast service instead of the local database." env:"FASTWELL_API_URL"`
	Debug      bool   `help:"Log debug output to stderr."`

	Init   system.InitCmd   `cmd:"" help:"Initialize fastwell storage."`
	Serve  system.ServeCmd  `cmd:"" help:"Serve the fast API over HTTP."`
	Remind system.RemindCmd `cmd:"" help:"Send reminders for the active fast until interrupted."`
	Login  system.LoginCmd  `cmd:"" help:"Store an API token in the OS keyring."`
	Logout system.LogoutCmd `cmd:"" help:"Remove the stored API token."`
	Token  system.TokenCmd  `cmd:"" hidden:"" help:"Issue an API token for a user."`
	Config struct {
		Show       system.ConfigShowCmd       `cmd:"" help:"Show the current configuration." default:"1"`
		Set        system.ConfigSetCmd        `cmd:"" help:"Set a configuration value."`
		Path       system.ConfigPathCmd       `cmd:"" help:"Print the config file path."`
		Connection system.ConfigConnectionCmd `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
	} `cmd:"" help:"Manage configuration."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Fast struct {
		New       fasts.FastNewCmd       `cmd:"" help:"Start or schedule a fast."`
		List      fasts.FastListCmd      `cmd:"" help:"List fasts."`
		Show      fasts.FastShowCmd      `cmd:"" help:"Show a fast. Defaults to the active fast."`
		Update    fasts.FastUpdateCmd    `cmd:"" help:"Update the goal or prayer times of an active fast."`
		Complete  fasts.FastCompleteCmd  `cmd:"" help:"Mark a fast completed."`
		Break     fasts.FastBreakCmd     `cmd:"" help:"End a fast early."`
		Progress  fasts.FastProgressCmd  `cmd:"" help:"Show progress through the current window."`
		Route     fasts.FastRouteCmd     `cmd:"" help:"Print where the app would open."`
		Countdown fasts.FastCountdownCmd `cmd:"" help:"Live countdown for a fast."`
	} `cmd:"" help:"Manage fasts."`
	Prayer struct {
		Log  activity.PrayerLogCmd  `cmd:"" help:"Log a prayer." default:"withargs"`
		List activity.PrayerListCmd `cmd:"" help:"List logged prayers."`
	} `cmd:"" help:"Log prayers during a fast."`
	Checkin activity.CheckinCmd `cmd:"" help:"Record how the fast is going."`
	Journal struct {
		List     activity.JournalListCmd     `cmd:"" help:"List journal entries."`
		Add      activity.JournalAddCmd      `cmd:"" help:"Write a journal entry."`
		Show     activity.JournalShowCmd     `cmd:"" help:"Show a journal entry and its comments."`
		Comment  activity.JournalCommentCmd  `cmd:"" help:"Comment on a journal entry."`
		Comments activity.JournalCommentsCmd `cmd:"" help:"List comments on a journal entry."`
	} `cmd:"" help:"Keep a journal for a fast."`
	Partner struct {
		Active activity.PartnerActiveCmd `cmd:"" help:"List partners who are fasting now."`
		Add    activity.PartnerAddCmd    `cmd:"" help:"Add an accountability partner."`
	} `cmd:"" help:"Manage accountability partners."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Fasting schedules, countdowns and prayer journal"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	command := ctx.Command()
	daemon := command == "serve" || strings.HasPrefix(command, "remind")
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		Console:   daemon,
		ConfigDir: config.Dir(CLI.ConfigFile),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	cfg, err := config.Load(CLI.ConfigFile)
	apperrors.Fatal(err)
	if CLI.APIURL != "" {
		cfg.APIURL = CLI.APIURL
	}

	appCtx := cli.NewContext(cfg, CLI.ConfigFile)
	err = ctx.Run(appCtx)
	if cerr := appCtx.Close(); cerr != nil {
		logger.Warn("Failed to close storage", "error", cerr)
	}
	apperrors.Fatal(err)
}
