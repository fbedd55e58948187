package constants

import "time"

// FastType tags a fast and selects its default window and validation rules
type FastType string

// FastStatus is the lifecycle state of a fast
type FastStatus string

// ScheduleKind discriminates the Schedule union
type ScheduleKind string

// Frequency is how often a recurring fast repeats
type Frequency string

// FixedDuration is a preset length for one-time fasts
type FixedDuration string

// Visibility controls who can read a journal entry
type Visibility string

const (
	AppName            = "fastwell"
	DefaultKeyringUser = "api-token"
	KeyringConnUser    = "connection-string"
	DefaultConfigDir   = "~/.config/fastwell"
	DefaultConfigFile  = "~/.config/fastwell/config.yaml"
	DefaultDBPath      = "~/.config/fastwell/fastwell.db"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// InstantFormat is how instants are stored and compared as text
	InstantFormat = "2006-01-02T15:04:05Z"

	// LocalUserID owns every record when the server runs without auth
	LocalUserID = "local"

	// Fast types
	FastTypeDaily        FastType = "daily"
	FastTypeNightly      FastType = "nightly"
	FastTypeWeekly       FastType = "weekly"
	FastTypeCustom       FastType = "custom"
	FastTypeBreakthrough FastType = "breakthrough"

	// Fast statuses
	FastStatusUpcoming  FastStatus = "upcoming"
	FastStatusActive    FastStatus = "active"
	FastStatusCompleted FastStatus = "completed"
	FastStatusFailed    FastStatus = "failed"

	// Schedule kinds
	ScheduleFixed     ScheduleKind = "fixed"
	ScheduleRecurring ScheduleKind = "recurring"

	// Frequencies
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"

	// Fixed durations
	Duration12Hours FixedDuration = "12h"
	Duration24Hours FixedDuration = "24h"
	Duration3Days   FixedDuration = "3d"
	Duration7Days   FixedDuration = "7d"

	// Journal visibility
	VisibilityPrivate Visibility = "private"
	VisibilityPartner Visibility = "partner"

	// Nightly window bounds (HH:MM)
	NightlyEarliestStart = "18:00"
	NightlyLatestStart   = "23:59"
	NightlyEarliestEnd   = "00:00"
	NightlyLatestEnd     = "06:00"

	// BreakthroughDuration is forced for breakthrough fasts
	BreakthroughDuration = 24 * time.Hour

	// SelfHealEndOffset is added to the start when an end is not after it
	SelfHealEndOffset = time.Hour

	// Check-in scale
	MinCheckInLevel = 1
	MaxCheckInLevel = 10

	// Pagination
	DefaultPageLimit = 10
	MaxPageLimit     = 100

	// Countdown
	CountdownInterval = time.Second
	RefreshInterval   = 30 * time.Second

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "fastwell-"
	BackupFileSuffix = ".db"

	// Notify constants
	NotifierLockfileName   = "fastwell-notifier.lock"
	NotificationDurationMs = 5000
	TrayAppIdentifier      = "com.julianstephens.fastwell"
	TrayExecutablePrefix   = "fastwell-tray"

	// Reminders
	DefaultResyncMinutes = 5
)

// FastTypes lists every valid fast type
var FastTypes = []FastType{
	FastTypeDaily,
	FastTypeNightly,
	FastTypeWeekly,
	FastTypeCustom,
	FastTypeBreakthrough,
}

// IsTerminal reports whether no further transition is allowed from the status
func (s FastStatus) IsTerminal() bool {
	return s == FastStatusCompleted || s == FastStatusFailed
}

// Valid reports whether the status is one of the known statuses
func (s FastStatus) Valid() bool {
	switch s {
	case FastStatusUpcoming, FastStatusActive, FastStatusCompleted, FastStatusFailed:
		return true
	}
	return false
}

// Valid reports whether the type is one of the known fast types
func (t FastType) Valid() bool {
	for _, ft := range FastTypes {
		if ft == t {
			return true
		}
	}
	return false
}
