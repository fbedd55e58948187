package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/fastwell/internal/constants"
)

// Advisory is an informational, non-blocking message shown when an input was
// corrected instead of rejected.
type Advisory struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (a Advisory) String() string {
	return a.Message
}

func mustMinutes(hhmm string) int {
	m, err := ParseTimeToMinutes(hhmm)
	if err != nil {
		panic(fmt.Sprintf("invalid constant time %q", hhmm))
	}
	return m
}

// ClampNightlyStart forces a nightly start into [18:00, 23:59] on its own date.
func ClampNightlyStart(start time.Time) (time.Time, *Advisory) {
	earliest := mustMinutes(constants.NightlyEarliestStart)
	latest := mustMinutes(constants.NightlyLatestStart)

	minutes := start.Hour()*60 + start.Minute()
	target := minutes
	if minutes < earliest {
		target = earliest
	} else if minutes > latest {
		target = latest
	}
	if target == minutes {
		return start, nil
	}

	clamped := time.Date(start.Year(), start.Month(), start.Day(), target/60, target%60, 0, 0, start.Location())
	return clamped, &Advisory{
		Field: "startAt",
		Message: fmt.Sprintf("Nightly fasts start between %s and %s. Start time adjusted to %s.",
			constants.NightlyEarliestStart, constants.NightlyLatestStart, MinutesToTime(target)),
	}
}

// ClampNightlyEnd forces a nightly end onto the day after start, within
// [00:00, 06:00].
func ClampNightlyEnd(start, end time.Time) (time.Time, *Advisory) {
	earliest := mustMinutes(constants.NightlyEarliestEnd)
	latest := mustMinutes(constants.NightlyLatestEnd)

	end = end.In(start.Location())
	minutes := end.Hour()*60 + end.Minute()
	target := minutes
	if minutes < earliest {
		target = earliest
	} else if minutes > latest {
		target = latest
	}

	next := start.AddDate(0, 0, 1)
	clamped := time.Date(next.Year(), next.Month(), next.Day(), target/60, target%60, 0, 0, start.Location())
	if target == minutes && clamped.Equal(time.Date(end.Year(), end.Month(), end.Day(), end.Hour(), end.Minute(), 0, 0, end.Location())) {
		return end, nil
	}

	return clamped, &Advisory{
		Field: "endAt",
		Message: fmt.Sprintf("Nightly fasts end between %s and %s the next morning. End time adjusted to %s on %s.",
			constants.NightlyEarliestEnd, constants.NightlyLatestEnd, MinutesToTime(target), clamped.Format(constants.DateFormat)),
	}
}
