package models

import (
	"time"

	"github.com/julianstephens/fastwell/internal/constants"
)

type Fast struct {
	ID                        string               `json:"id"`
	UserID                    string               `json:"userId,omitempty"`
	Type                      constants.FastType   `json:"type"`
	Schedule                  Schedule             `json:"schedule"`
	Status                    constants.FastStatus `json:"status"`
	Goal                      string               `json:"goal,omitempty"`
	SmartGoal                 string               `json:"smartGoal,omitempty"`
	PrayerTimes               []string             `json:"prayerTimes,omitempty"` // HH:MM format
	Verse                     string               `json:"verse,omitempty"`
	PrayerFocus               string               `json:"prayerFocus,omitempty"`
	ReminderEnabled           bool                 `json:"reminderEnabled"`
	AddAccountabilityPartners bool                 `json:"addAccountabilityPartners"`
	StartTime                 *time.Time           `json:"startTime,omitempty"` // start of the most recent occurrence
	CreatedAt                 time.Time            `json:"createdAt"`
	UpdatedAt                 time.Time            `json:"updatedAt"`
	CompletedAt               *time.Time           `json:"completedAt,omitempty"`
	BrokenAt                  *time.Time           `json:"brokenAt,omitempty"`
}

// CreateFastPayload is the body of POST /fasts
type CreateFastPayload struct {
	Type                      constants.FastType `json:"type"`
	Schedule                  Schedule           `json:"schedule"`
	Goal                      string             `json:"goal,omitempty"`
	SmartGoal                 string             `json:"smartGoal,omitempty"`
	PrayerTimes               []string           `json:"prayerTimes,omitempty"`
	Verse                     string             `json:"verse,omitempty"`
	PrayerFocus               string             `json:"prayerFocus,omitempty"`
	ReminderEnabled           bool               `json:"reminderEnabled,omitempty"`
	AddAccountabilityPartners bool               `json:"addAccountabilityPartners,omitempty"`
}

// UpdateFastPayload is the body of PUT /fasts/:id. Nil fields are left
// unchanged; a non-nil empty PrayerTimes clears them.
type UpdateFastPayload struct {
	Goal        *string   `json:"goal,omitempty"`
	PrayerTimes *[]string `json:"prayerTimes,omitempty"`
}

// ListFilter selects a page of fasts
type ListFilter struct {
	Page      int
	Limit     int
	Status    constants.FastStatus
	Type      constants.FastType
	StartDate *time.Time
	EndDate   *time.Time
}

// Page is one page of a paginated listing
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// InitialStatus derives the status a new fast takes when created at now
func InitialStatus(s Schedule, now time.Time) constants.FastStatus {
	if s.IsFixed() && s.StartAt != nil && s.StartAt.After(now) {
		return constants.FastStatusUpcoming
	}
	return constants.FastStatusActive
}

// EffectiveStatus returns the status implied by the fixed window at now.
// Terminal statuses and recurring fasts are returned unchanged.
func (f Fast) EffectiveStatus(now time.Time) constants.FastStatus {
	if f.Status.IsTerminal() || !f.Schedule.IsFixed() || f.Schedule.StartAt == nil || f.Schedule.EndAt == nil {
		return f.Status
	}
	switch {
	case !now.Before(*f.Schedule.EndAt):
		return constants.FastStatusCompleted
	case !now.Before(*f.Schedule.StartAt):
		return constants.FastStatusActive
	default:
		return constants.FastStatusUpcoming
	}
}
