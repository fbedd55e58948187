package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/fastwell/internal/api"
	"github.com/julianstephens/fastwell/internal/backup"
	"github.com/julianstephens/fastwell/internal/config"
	"github.com/julianstephens/fastwell/internal/constants"
	"github.com/julianstephens/fastwell/internal/fasting"
	"github.com/julianstephens/fastwell/internal/keyring"
	"github.com/julianstephens/fastwell/internal/logger"
	"github.com/julianstephens/fastwell/internal/storage"
	"github.com/julianstephens/fastwell/internal/utils"
)

// KeyringDatabase as the database setting reads the connection string from
// the OS keyring
const KeyringDatabase = "keyring"

// Context is shared by every command. The backend is opened lazily so that
// commands like config and login work without a database.
type Context struct {
	Config     *config.Config
	ConfigPath string
	Out        io.Writer
	Now        func() time.Time

	store   *storage.Store
	service *fasting.Service
}

func NewContext(cfg *config.Config, configPath string) *Context {
	return &Context{
		Config:     cfg,
		ConfigPath: configPath,
		Out:        os.Stdout,
		Now:        time.Now,
	}
}

// IsRemote reports whether fasts live on the remote service
func (c *Context) IsRemote() bool {
	return c.Config.APIURL != ""
}

// NewStore builds the local store from the database setting without opening it
func (c *Context) NewStore() (*storage.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	database := c.Config.DatabasePath()
	if database == KeyringDatabase {
		connStr, err := keyring.GetConnectionString()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return nil, fmt.Errorf("no connection string in keyring, run '%s config connection <conn-string>'", constants.AppName)
			}
			return nil, err
		}
		c.store = storage.NewPostgresStore(connStr)
	} else {
		store, err := storage.New(database)
		if err != nil {
			return nil, err
		}
		c.store = store
	}
	c.store.SetClock(c.Now)
	return c.store, nil
}

// Store returns the local store, loading an existing database
func (c *Context) Store() (*storage.Store, error) {
	store, err := c.NewStore()
	if err != nil {
		return nil, err
	}
	if err := store.Load(); err != nil {
		return nil, err
	}
	return store, nil
}

// Backend returns the remote client when an api_url is set, else the local store
func (c *Context) Backend() (fasting.Backend, error) {
	if c.IsRemote() {
		return api.NewClient(c.Config.APIURL,
			api.WithTokenSource(api.KeyringTokens),
			api.WithClock(c.Now),
		)
	}
	return c.Store()
}

// Service returns the fast service over the configured backend
func (c *Context) Service() (*fasting.Service, error) {
	if c.service != nil {
		return c.service, nil
	}
	backend, err := c.Backend()
	if err != nil {
		return nil, err
	}
	c.service = fasting.NewService(backend, fasting.Config{
		Strict:    c.Config.StrictValidation,
		PageLimit: c.Config.PageLimit,
		Now:       c.Now,
	})
	return c.service, nil
}

// Close releases the local store if one was opened
func (c *Context) Close() error {
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	c.service = nil
	return err
}

// Timezone returns the configured IANA zone name.
func (c *Context) Timezone() string {
	if c.Config.Timezone == "" {
		return "Local"
	}
	return c.Config.Timezone
}

// Location loads the configured timezone, falling back to the local zone
func (c *Context) Location() *time.Location {
	loc, err := utils.LoadLocation(c.Config.Timezone)
	if err != nil {
		logger.Warn("Invalid timezone, using local time", "timezone", c.Config.Timezone, "error", err)
		return time.Local
	}
	return loc
}

// BackupManager returns the backup manager for a local SQLite database
func (c *Context) BackupManager() (*backup.Manager, error) {
	store, err := c.NewStore()
	if err != nil {
		return nil, err
	}
	if store.Dialect() != storage.DialectSQLite {
		return nil, backup.ErrNotSQLite
	}
	return backup.NewManager(store.GetConfigPath(), backup.WithClock(c.Now)), nil
}

// PerformAutomaticBackup creates a backup and only logs failures
func (c *Context) PerformAutomaticBackup() {
	if c.IsRemote() {
		return
	}
	mgr, err := c.BackupManager()
	if err != nil {
		logger.Debug("Skipping automatic backup", "error", err)
		return
	}
	if _, err := mgr.Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Printf writes to the command output
func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

// Println writes a line to the command output
func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// ParseWhen reads an instant from the command line. It accepts RFC 3339,
// "YYYY-MM-DD HH:MM", a bare date (midnight), or a time of day such as
// "6 PM" or "18:00", which is taken on now's date.
func ParseWhen(s string, now time.Time, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("time cannot be empty")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if date, clock, ok := strings.Cut(s, " "); ok {
		if _, err := time.Parse(constants.DateFormat, date); err == nil {
			hhmm, ok := utils.ParseTimeTo24h(clock)
			if !ok {
				return time.Time{}, fmt.Errorf("invalid time of day %q", clock)
			}
			return utils.CombineDateAndTime(date, hhmm, loc)
		}
	}
	if t, err := utils.ParseDateInLocation(s, loc); err == nil {
		return t, nil
	}
	if hhmm, ok := utils.ParseTimeTo24h(s); ok {
		return utils.AtTimeOfDay(now.In(loc), hhmm)
	}
	return time.Time{}, fmt.Errorf("invalid time %q (use YYYY-MM-DD HH:MM, YYYY-MM-DD, HH:MM or RFC 3339)", s)
}

// ParseUntil reads an inclusive upper bound. A bare date covers the whole
// day, ending at its last second.
func ParseUntil(s string, now time.Time, loc *time.Location) (time.Time, error) {
	t, err := ParseWhen(s, now, loc)
	if err != nil {
		return time.Time{}, err
	}
	if _, err := utils.ParseDateInLocation(strings.TrimSpace(s), loc); err == nil {
		return t.AddDate(0, 0, 1).Add(-time.Second), nil
	}
	return t, nil
}
