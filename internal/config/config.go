package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/fastwell/internal/constants"
	"github.com/julianstephens/fastwell/internal/utils"
)

// Config is the on-disk client configuration
type Config struct {
	// APIURL selects the remote fast service; empty uses the local store
	APIURL string `yaml:"api_url"`
	// Database is a SQLite path or a PostgreSQL connection string
	Database         string          `yaml:"database"`
	Timezone         string          `yaml:"timezone"`
	StrictValidation bool            `yaml:"strict_validation"`
	PageLimit        int             `yaml:"page_limit"`
	Reminders        RemindersConfig `yaml:"reminders"`
}

// RemindersConfig controls the reminder daemon
type RemindersConfig struct {
	Enabled       bool `yaml:"enabled"`
	ResyncMinutes int  `yaml:"resync_minutes"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		Database:  constants.DefaultDBPath,
		Timezone:  "Local",
		PageLimit: constants.DefaultPageLimit,
		Reminders: RemindersConfig{
			Enabled:       true,
			ResyncMinutes: constants.DefaultResyncMinutes,
		},
	}
}

// Load reads the YAML file at path over the defaults. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ExpandHome(path))
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory if needed
func (c *Config) Save(path string) error {
	path = ExpandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if url := os.Getenv("FASTWELL_API_URL"); url != "" {
		c.APIURL = url
	}
	if db := os.Getenv("FASTWELL_DB_CONNECTION"); db != "" {
		c.Database = db
	}
	if tz := os.Getenv("FASTWELL_TIMEZONE"); tz != "" {
		c.Timezone = tz
	}
}

// Validate checks values that cannot be corrected silently
func (c *Config) Validate() error {
	if !utils.ValidateTimezone(c.Timezone) {
		return fmt.Errorf("invalid timezone in config: %q", c.Timezone)
	}
	if c.PageLimit < 1 || c.PageLimit > constants.MaxPageLimit {
		return fmt.Errorf("page_limit must be between 1 and %d, got %d", constants.MaxPageLimit, c.PageLimit)
	}
	if c.Reminders.ResyncMinutes < 1 {
		return fmt.Errorf("reminders.resync_minutes must be at least 1, got %d", c.Reminders.ResyncMinutes)
	}
	return nil
}

// Keys lists the settable keys in display order
var Keys = []string{
	"api_url",
	"database",
	"timezone",
	"strict_validation",
	"page_limit",
	"reminders.enabled",
	"reminders.resync_minutes",
}

// Get returns the string form of a single key
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "api_url":
		return c.APIURL, nil
	case "database":
		return c.Database, nil
	case "timezone":
		return c.Timezone, nil
	case "strict_validation":
		return strconv.FormatBool(c.StrictValidation), nil
	case "page_limit":
		return strconv.Itoa(c.PageLimit), nil
	case "reminders.enabled":
		return strconv.FormatBool(c.Reminders.Enabled), nil
	case "reminders.resync_minutes":
		return strconv.Itoa(c.Reminders.ResyncMinutes), nil
	}
	return "", fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys, ", "))
}

// Set parses value for key and validates the result. On error the config is
// left unchanged.
func (c *Config) Set(key, value string) error {
	next := *c
	switch key {
	case "api_url":
		next.APIURL = strings.TrimSpace(value)
	case "database":
		next.Database = strings.TrimSpace(value)
	case "timezone":
		next.Timezone = strings.TrimSpace(value)
	case "strict_validation":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q", key, value)
		}
		next.StrictValidation = b
	case "page_limit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", key, value)
		}
		next.PageLimit = n
	case "reminders.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q", key, value)
		}
		next.Reminders.Enabled = b
	case "reminders.resync_minutes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", key, value)
		}
		next.Reminders.ResyncMinutes = n
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys, ", "))
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// DatabasePath returns Database with a leading ~ expanded. Connection strings
// are returned as is.
func (c *Config) DatabasePath() string {
	return ExpandHome(c.Database)
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Dir returns the directory holding the config file
func Dir(path string) string {
	return filepath.Dir(ExpandHome(path))
}
