package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/fastwell/internal/constants"
	apperrors "github.com/julianstephens/fastwell/internal/errors"
	"github.com/julianstephens/fastwell/internal/utils"
)

// TimeWindow is a time-of-day window. End may be before Start, in which case
// the window wraps past midnight.
type TimeWindow struct {
	Start string `json:"start"` // HH:MM format
	End   string `json:"end"`   // HH:MM format
}

// Duration returns the wrap-aware length of the window
func (w TimeWindow) Duration() (time.Duration, error) {
	return utils.WindowDuration(w.Start, w.End)
}

// Contains reports whether the HH:MM time of day falls inside the window
func (w TimeWindow) Contains(hhmm string) bool {
	return utils.IsTimeOfDayWithinWindow(hhmm, w.Start, w.End)
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("%s-%s", w.Start, w.End)
}

// Schedule is a discriminated union on Kind. Fixed schedules use StartAt and
// EndAt; recurring schedules use Frequency, DaysOfWeek and Window.
type Schedule struct {
	Kind       constants.ScheduleKind `json:"kind"`
	StartAt    *time.Time             `json:"startAt,omitempty"`
	EndAt      *time.Time             `json:"endAt,omitempty"`
	Frequency  constants.Frequency    `json:"frequency,omitempty"`
	DaysOfWeek []time.Weekday         `json:"daysOfWeek,omitempty"`
	Window     *TimeWindow            `json:"window,omitempty"`
	Timezone   string                 `json:"timezone"`
}

// NewFixedSchedule builds a one-time schedule
func NewFixedSchedule(start, end time.Time, timezone string) Schedule {
	return Schedule{
		Kind:     constants.ScheduleFixed,
		StartAt:  &start,
		EndAt:    &end,
		Timezone: timezone,
	}
}

// NewRecurringSchedule builds a repeating schedule. Days are only kept for
// weekly frequency.
func NewRecurringSchedule(freq constants.Frequency, days []time.Weekday, window TimeWindow, timezone string) Schedule {
	s := Schedule{
		Kind:      constants.ScheduleRecurring,
		Frequency: freq,
		Window:    &window,
		Timezone:  timezone,
	}
	if freq == constants.FrequencyWeekly {
		s.DaysOfWeek = days
	}
	return s
}

// IsFixed reports whether this is a one-time schedule
func (s Schedule) IsFixed() bool {
	return s.Kind == constants.ScheduleFixed
}

// IsRecurring reports whether this is a repeating schedule
func (s Schedule) IsRecurring() bool {
	return s.Kind == constants.ScheduleRecurring
}

// Location loads the schedule's timezone
func (s Schedule) Location() (*time.Location, error) {
	return utils.LoadLocation(s.Timezone)
}

// RunsOn reports whether a recurring schedule has an occurrence starting on
// the given weekday. Fixed schedules always return false.
func (s Schedule) RunsOn(wd time.Weekday) bool {
	if !s.IsRecurring() {
		return false
	}
	if s.Frequency != constants.FrequencyWeekly {
		return true
	}
	for _, d := range s.DaysOfWeek {
		if d == wd {
			return true
		}
	}
	return false
}

// Validate checks the union's invariants
func (s Schedule) Validate() error {
	if !utils.ValidateTimezone(s.Timezone) {
		return apperrors.NewValidation("invalid schedule timezone",
			apperrors.Issue{Field: "timezone", Value: s.Timezone, Reason: apperrors.ReasonInvalid})
	}

	switch s.Kind {
	case constants.ScheduleFixed:
		if s.StartAt == nil || s.EndAt == nil {
			return apperrors.NewValidation("fixed schedule requires startAt and endAt")
		}
		if !s.EndAt.After(*s.StartAt) {
			return apperrors.NewValidation("schedule end must be after start",
				apperrors.Issue{Field: "endAt", Value: s.EndAt.Format(time.RFC3339), Reason: apperrors.ReasonInvalid})
		}
		if s.Window != nil || len(s.DaysOfWeek) > 0 {
			return apperrors.NewValidation("fixed schedule must not carry a recurring window")
		}
	case constants.ScheduleRecurring:
		if s.Frequency != constants.FrequencyDaily && s.Frequency != constants.FrequencyWeekly {
			return apperrors.NewValidation("invalid recurrence frequency",
				apperrors.Issue{Field: "frequency", Value: string(s.Frequency), Reason: apperrors.ReasonInvalid})
		}
		if s.Window == nil {
			return apperrors.NewValidation("recurring schedule requires a window")
		}
		if !utils.ValidateTimeFormat(s.Window.Start) {
			return apperrors.NewValidation("invalid window start",
				apperrors.Issue{Field: "window.start", Value: s.Window.Start, Reason: apperrors.ReasonInvalid})
		}
		if !utils.ValidateTimeFormat(s.Window.End) {
			return apperrors.NewValidation("invalid window end",
				apperrors.Issue{Field: "window.end", Value: s.Window.End, Reason: apperrors.ReasonInvalid})
		}
		if s.Frequency == constants.FrequencyWeekly && len(s.DaysOfWeek) == 0 {
			return apperrors.NewValidation("weekly schedule requires at least one day",
				apperrors.Issue{Field: "daysOfWeek", Reason: apperrors.ReasonRequired})
		}
		if s.Frequency == constants.FrequencyDaily && len(s.DaysOfWeek) > 0 {
			return apperrors.NewValidation("daysOfWeek is only allowed for weekly schedules")
		}
		for _, d := range s.DaysOfWeek {
			if d < time.Sunday || d > time.Saturday {
				return apperrors.NewValidation("invalid day of week",
					apperrors.Issue{Field: "daysOfWeek", Value: fmt.Sprint(int(d)), Reason: apperrors.ReasonRange})
			}
		}
		if s.StartAt != nil || s.EndAt != nil {
			return apperrors.NewValidation("recurring schedule must not carry startAt/endAt")
		}
	default:
		return apperrors.NewValidation("invalid schedule kind",
			apperrors.Issue{Field: "kind", Value: string(s.Kind), Reason: apperrors.ReasonInvalid})
	}
	return nil
}
