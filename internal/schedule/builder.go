// Package schedule turns a user's fast selections into a validated Schedule.
package schedule

import (
	"fmt"
	"time"

	"github.com/julianstephens/fastwell/internal/constants"
	apperrors "github.com/julianstephens/fastwell/internal/errors"
	"github.com/julianstephens/fastwell/internal/models"
	"github.com/julianstephens/fastwell/internal/utils"
)

// Selection is what the user picked when configuring a fast
type Selection struct {
	Type      constants.FastType
	StartAt   time.Time
	EndAt     time.Time
	Duration  constants.FixedDuration // optional, fixed schedules only
	Recurring bool                    // custom fasts only
	Frequency constants.Frequency     // custom recurring fasts only
	Days      []string                // day labels for weekly fasts
	Timezone  string
}

// Options control how input problems are handled
type Options struct {
	// Strict rejects out-of-range input instead of correcting it
	Strict bool
}

// Result is a built schedule and any corrections made along the way
type Result struct {
	Schedule   models.Schedule
	Advisories []utils.Advisory
}

func (r *Result) advise(a *utils.Advisory) {
	if a != nil {
		r.Advisories = append(r.Advisories, *a)
	}
}

// Build produces a Schedule from a selection
func Build(sel Selection, opts Options) (Result, error) {
	if !sel.Type.Valid() {
		return Result{}, apperrors.NewValidation("unknown fast type",
			apperrors.Issue{Field: "type", Value: string(sel.Type), Reason: apperrors.ReasonInvalid})
	}
	if sel.StartAt.IsZero() {
		return Result{}, apperrors.NewValidation("a start time is required",
			apperrors.Issue{Field: "startAt", Reason: apperrors.ReasonRequired})
	}

	loc, err := utils.LoadLocation(sel.Timezone)
	if err != nil {
		return Result{}, apperrors.NewValidation("invalid timezone",
			apperrors.Issue{Field: "timezone", Value: sel.Timezone, Reason: apperrors.ReasonInvalid})
	}
	tz := loc.String()
	start := sel.StartAt.In(loc)
	end := sel.EndAt
	if !end.IsZero() {
		end = end.In(loc)
	}

	switch sel.Type {
	case constants.FastTypeBreakthrough:
		return buildBreakthrough(start, end, tz), nil
	case constants.FastTypeNightly:
		return buildNightly(start, end, tz, opts)
	case constants.FastTypeDaily:
		return buildRecurring(constants.FrequencyDaily, nil, start, end, tz, opts)
	case constants.FastTypeWeekly:
		return buildRecurring(constants.FrequencyWeekly, sel.Days, start, end, tz, opts)
	default:
		if !sel.Recurring {
			return buildFixed(start, end, sel.Duration, tz, opts)
		}
		freq := sel.Frequency
		if freq == "" {
			freq = constants.FrequencyDaily
			if len(sel.Days) > 0 {
				freq = constants.FrequencyWeekly
			}
		}
		return buildRecurring(freq, sel.Days, start, end, tz, opts)
	}
}

func buildBreakthrough(start, end time.Time, tz string) Result {
	forced := start.Add(constants.BreakthroughDuration)
	res := Result{Schedule: models.NewFixedSchedule(start, forced, tz)}
	if !end.IsZero() && !end.Equal(forced) {
		res.advise(&utils.Advisory{
			Field:   "endAt",
			Message: fmt.Sprintf("Breakthrough fasts last exactly 24 hours. End time set to %s.", forced.Format("Jan 2 15:04")),
		})
	}
	return res
}

func buildFixed(start, end time.Time, duration constants.FixedDuration, tz string, opts Options) (Result, error) {
	if duration != "" {
		computed, err := utils.ComputeFixedEnd(start, duration)
		if err != nil {
			return Result{}, apperrors.NewValidation("invalid fast duration",
				apperrors.Issue{Field: "duration", Value: string(duration), Reason: apperrors.ReasonInvalid})
		}
		end = computed
	}
	if end.IsZero() {
		return Result{}, apperrors.NewValidation("an end time or duration is required",
			apperrors.Issue{Field: "endAt", Reason: apperrors.ReasonRequired})
	}

	var res Result
	healed, adv, err := healEnd(start, end, opts)
	if err != nil {
		return Result{}, err
	}
	res.advise(adv)
	res.Schedule = models.NewFixedSchedule(start, healed, tz)
	return res, nil
}

func buildNightly(start, end time.Time, tz string, opts Options) (Result, error) {
	clampedStart, startAdv := utils.ClampNightlyStart(start)
	if end.IsZero() {
		def, err := utils.AtTimeOfDay(clampedStart.AddDate(0, 0, 1), constants.NightlyLatestEnd)
		if err != nil {
			return Result{}, err
		}
		end = def
	}
	clampedEnd, endAdv := utils.ClampNightlyEnd(clampedStart, end)

	if opts.Strict && (startAdv != nil || endAdv != nil) {
		var issues []apperrors.Issue
		if startAdv != nil {
			issues = append(issues, apperrors.Issue{Field: "startAt", Value: utils.TimeOfDay(start), Reason: apperrors.ReasonRange})
		}
		if endAdv != nil {
			issues = append(issues, apperrors.Issue{Field: "endAt", Value: utils.TimeOfDay(end), Reason: apperrors.ReasonRange})
		}
		return Result{}, apperrors.NewValidation(
			fmt.Sprintf("nightly fasts run from %s-%s to %s-%s the next morning",
				constants.NightlyEarliestStart, constants.NightlyLatestStart,
				constants.NightlyEarliestEnd, constants.NightlyLatestEnd),
			issues...)
	}

	var res Result
	res.advise(startAdv)
	res.advise(endAdv)
	window := models.TimeWindow{Start: utils.TimeOfDay(clampedStart), End: utils.TimeOfDay(clampedEnd)}
	res.Schedule = models.NewRecurringSchedule(constants.FrequencyDaily, nil, window, tz)
	return res, nil
}

func buildRecurring(freq constants.Frequency, labels []string, start, end time.Time, tz string, opts Options) (Result, error) {
	if freq != constants.FrequencyDaily && freq != constants.FrequencyWeekly {
		return Result{}, apperrors.NewValidation("invalid recurrence frequency",
			apperrors.Issue{Field: "frequency", Value: string(freq), Reason: apperrors.ReasonInvalid})
	}
	if end.IsZero() {
		return Result{}, apperrors.NewValidation("an end time is required",
			apperrors.Issue{Field: "endAt", Reason: apperrors.ReasonRequired})
	}

	var days []time.Weekday
	if freq == constants.FrequencyWeekly {
		parsed, err := utils.ParseDayLabels(labels)
		if err != nil {
			return Result{}, apperrors.NewValidation("invalid day selection",
				apperrors.Issue{Field: "daysOfWeek", Value: err.Error(), Reason: apperrors.ReasonInvalid})
		}
		if len(parsed) == 0 {
			return Result{}, apperrors.NewValidation("select at least one day for a weekly fast",
				apperrors.Issue{Field: "daysOfWeek", Reason: apperrors.ReasonRequired})
		}
		days = parsed
	}

	var res Result
	// An end earlier in the day than the start is an overnight window. Only an
	// identical time of day is treated as a missing end.
	if utils.TimeOfDay(start) == utils.TimeOfDay(end) {
		healed, adv, err := healEnd(start, start, opts)
		if err != nil {
			return Result{}, err
		}
		res.advise(adv)
		end = healed
	}

	window := models.TimeWindow{Start: utils.TimeOfDay(start), End: utils.TimeOfDay(end)}
	res.Schedule = models.NewRecurringSchedule(freq, days, window, tz)
	return res, nil
}

// healEnd advances an end that is not after start by one hour, or rejects it
// in strict mode.
func healEnd(start, end time.Time, opts Options) (time.Time, *utils.Advisory, error) {
	if end.After(start) {
		return end, nil, nil
	}
	if opts.Strict {
		return time.Time{}, nil, apperrors.NewValidation("end time must be after start time",
			apperrors.Issue{Field: "endAt", Value: end.Format(time.RFC3339), Reason: apperrors.ReasonInvalid})
	}
	healed := start.Add(constants.SelfHealEndOffset)
	return healed, &utils.Advisory{
		Field:   "endAt",
		Message: fmt.Sprintf("End time must be after start time. End time moved to %s.", healed.Format("Jan 2 15:04")),
	}, nil
}
