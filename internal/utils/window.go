package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/fastwell/internal/constants"
)

const minutesPerDay = 24 * 60

var clockPattern = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*([aApP][mM])?$`)

// ParseTimeTo24h normalizes user-entered clock times such as "6", "6:30",
// "6 AM", "6:30pm" or "18:00" to HH:MM. It returns false for malformed input.
func ParseTimeTo24h(input string) (string, bool) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return "", false
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return "", false
	}
	minute := 0
	if m[2] != "" {
		minute, err = strconv.Atoi(m[2])
		if err != nil || minute > 59 {
			return "", false
		}
	}

	switch strings.ToLower(m[3]) {
	case "am":
		if hour < 1 || hour > 12 {
			return "", false
		}
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 1 || hour > 12 {
			return "", false
		}
		if hour != 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return "", false
		}
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// IsTimeWithinWindow reports whether hh:mm falls inside [start, end].
// The time of day is placed on start's date, or the following day when that
// would be before start. An end before start wraps past midnight.
func IsTimeWithinWindow(hh, mm int, start, end time.Time) bool {
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return false
	}
	end = end.In(start.Location())
	if end.Before(start) {
		end = end.AddDate(0, 0, 1)
		if end.Before(start) {
			return false
		}
	}
	if end.Sub(start) >= 24*time.Hour {
		return true
	}

	candidate := time.Date(start.Year(), start.Month(), start.Day(), hh, mm, 0, 0, start.Location())
	if candidate.Before(start) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return !candidate.After(end)
}

// IsTimeOfDayWithinWindow reports whether the HH:MM time falls inside the
// window start-end, inclusive. An end before start wraps past midnight and an
// end equal to start covers the whole day.
func IsTimeOfDayWithinWindow(hhmm, start, end string) bool {
	t, err := ParseTimeToMinutes(hhmm)
	if err != nil {
		return false
	}
	s, err := ParseTimeToMinutes(start)
	if err != nil {
		return false
	}
	e, err := ParseTimeToMinutes(end)
	if err != nil {
		return false
	}

	switch {
	case s == e:
		return true
	case s < e:
		return t >= s && t <= e
	default:
		return t >= s || t <= e
	}
}

// WindowDuration returns the length of the HH:MM window start-end, treating an
// end at or before start as the following day.
func WindowDuration(start, end string) (time.Duration, error) {
	s, err := ParseTimeToMinutes(start)
	if err != nil {
		return 0, fmt.Errorf("invalid window start %q: %w", start, err)
	}
	e, err := ParseTimeToMinutes(end)
	if err != nil {
		return 0, fmt.Errorf("invalid window end %q: %w", end, err)
	}
	d := e - s
	if d <= 0 {
		d += minutesPerDay
	}
	return time.Duration(d) * time.Minute, nil
}

// OffsetFromWindowStart returns how many minutes after the window start the
// HH:MM time falls, wrapping past midnight.
func OffsetFromWindowStart(hhmm, start string) (int, error) {
	t, err := ParseTimeToMinutes(hhmm)
	if err != nil {
		return 0, err
	}
	s, err := ParseTimeToMinutes(start)
	if err != nil {
		return 0, err
	}
	return ((t-s)%minutesPerDay + minutesPerDay) % minutesPerDay, nil
}

// ComputeFixedEnd adds a preset duration to start. Day presets use calendar
// days in start's location, so a 3d fast ends at the same wall-clock time.
func ComputeFixedEnd(start time.Time, d constants.FixedDuration) (time.Time, error) {
	switch d {
	case constants.Duration12Hours:
		return start.Add(12 * time.Hour), nil
	case constants.Duration24Hours:
		return start.Add(24 * time.Hour), nil
	case constants.Duration3Days:
		return start.AddDate(0, 0, 3), nil
	case constants.Duration7Days:
		return start.AddDate(0, 0, 7), nil
	default:
		return time.Time{}, fmt.Errorf("unknown fast duration %q (expected 12h, 24h, 3d or 7d)", d)
	}
}
