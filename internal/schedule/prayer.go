package schedule

import (
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/julianstephens/fastwell/internal/errors"
	"github.com/julianstephens/fastwell/internal/models"
	"github.com/julianstephens/fastwell/internal/utils"
)

// ValidatePrayerTimes normalizes prayer times and checks each one against the
// schedule's window. It returns the accepted times ordered from the start of
// the window, and one issue per rejected entry (invalid, outside, duplicate).
func ValidatePrayerTimes(times []string, s models.Schedule) ([]string, []apperrors.Issue) {
	var accepted []string
	var issues []apperrors.Issue
	seen := make(map[string]bool)

	for _, raw := range times {
		normalized, ok := utils.ParseTimeTo24h(raw)
		if !ok {
			issues = append(issues, apperrors.Issue{Field: "prayerTimes", Value: raw, Reason: apperrors.ReasonInvalid})
			continue
		}
		if seen[normalized] {
			issues = append(issues, apperrors.Issue{Field: "prayerTimes", Value: raw, Reason: apperrors.ReasonDuplicate})
			continue
		}
		seen[normalized] = true
		if !withinSchedule(normalized, s) {
			issues = append(issues, apperrors.Issue{Field: "prayerTimes", Value: raw, Reason: apperrors.ReasonOutside})
			continue
		}
		accepted = append(accepted, normalized)
	}

	start := windowStart(s)
	sort.SliceStable(accepted, func(i, j int) bool {
		oi, _ := utils.OffsetFromWindowStart(accepted[i], start)
		oj, _ := utils.OffsetFromWindowStart(accepted[j], start)
		return oi < oj
	})
	return accepted, issues
}

// CheckPrayerTimes is ValidatePrayerTimes for the final submission step: any
// issue rejects the whole list.
func CheckPrayerTimes(times []string, s models.Schedule) ([]string, error) {
	accepted, issues := ValidatePrayerTimes(times, s)
	if len(issues) > 0 {
		return nil, apperrors.NewValidation("some prayer times are not valid for this fast", issues...)
	}
	return accepted, nil
}

func withinSchedule(hhmm string, s models.Schedule) bool {
	switch {
	case s.IsFixed() && s.StartAt != nil && s.EndAt != nil:
		hh, mm, ok := splitClock(hhmm)
		if !ok {
			return false
		}
		loc, err := s.Location()
		if err != nil {
			return false
		}
		return utils.IsTimeWithinWindow(hh, mm, s.StartAt.In(loc), s.EndAt.In(loc))
	case s.IsRecurring() && s.Window != nil:
		return s.Window.Contains(hhmm)
	}
	return false
}

func windowStart(s models.Schedule) string {
	if s.IsRecurring() && s.Window != nil {
		return s.Window.Start
	}
	if s.StartAt != nil {
		if loc, err := s.Location(); err == nil {
			return utils.TimeOfDay(s.StartAt.In(loc))
		}
	}
	return "00:00"
}

func splitClock(hhmm string) (int, int, bool) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return hh, mm, true
}
