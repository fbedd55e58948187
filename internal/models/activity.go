package models

import (
	"time"

	"github.com/julianstephens/fastwell/internal/constants"
)

// PrayerLog records a prayer said during a fast
type PrayerLog struct {
	ID       string    `json:"id"`
	FastID   string    `json:"fastId"`
	Time     string    `json:"time"` // HH:MM format
	Note     string    `json:"note,omitempty"`
	PrayedAt time.Time `json:"prayedAt"`
}

type PrayerLogPayload struct {
	Time     string     `json:"time"`
	Note     string     `json:"note,omitempty"`
	PrayedAt *time.Time `json:"prayedAt,omitempty"`
}

// ProgressEntry is a manual check-in. Levels use a 1-10 scale.
type ProgressEntry struct {
	ID                 string    `json:"id"`
	FastID             string    `json:"fastId"`
	HungerLevel        int       `json:"hungerLevel"`
	SpiritualClarity   int       `json:"spiritualClarity"`
	TemptationStrength int       `json:"temptationStrength"`
	Breakthrough       bool      `json:"breakthrough"`
	Note               string    `json:"note,omitempty"`
	RecordedAt         time.Time `json:"recordedAt"`
}

type ProgressEntryPayload struct {
	HungerLevel        int    `json:"hungerLevel"`
	SpiritualClarity   int    `json:"spiritualClarity"`
	TemptationStrength int    `json:"temptationStrength"`
	Breakthrough       bool   `json:"breakthrough"`
	Note               string `json:"note,omitempty"`
}

// ActiveFaster is another user's in-progress fast as seen by a partner
type ActiveFaster struct {
	UserID    string               `json:"userId"`
	FastID    string               `json:"fastId"`
	Type      constants.FastType   `json:"type"`
	Goal      string               `json:"goal,omitempty"`
	Schedule  Schedule             `json:"schedule"`
	Status    constants.FastStatus `json:"status"`
	StartTime *time.Time           `json:"startTime,omitempty"`
}

type AddPartnerPayload struct {
	PartnerID string `json:"partnerId"`
}
