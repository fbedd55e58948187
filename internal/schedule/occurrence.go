package schedule

import (
	"time"

	"github.com/julianstephens/fastwell/internal/models"
	"github.com/julianstephens/fastwell/internal/utils"
)

// LatestOccurrence returns the start of the most recent occurrence at or
// before now. For fixed schedules that is StartAt once it has passed.
func LatestOccurrence(s models.Schedule, now time.Time) (time.Time, bool) {
	if s.IsFixed() {
		if s.StartAt != nil && !s.StartAt.After(now) {
			return *s.StartAt, true
		}
		return time.Time{}, false
	}
	if s.Window == nil {
		return time.Time{}, false
	}
	loc, err := s.Location()
	if err != nil {
		return time.Time{}, false
	}

	local := now.In(loc)
	// A week back always reaches a selected weekday
	for i := 0; i <= 7; i++ {
		day := local.AddDate(0, 0, -i)
		if !s.RunsOn(day.Weekday()) {
			continue
		}
		start, err := utils.AtTimeOfDay(day, s.Window.Start)
		if err != nil {
			return time.Time{}, false
		}
		if !start.After(local) {
			return start, true
		}
	}
	return time.Time{}, false
}

// NextOccurrence returns the start of the first occurrence strictly after now
func NextOccurrence(s models.Schedule, now time.Time) (time.Time, bool) {
	if s.IsFixed() {
		if s.StartAt != nil && s.StartAt.After(now) {
			return *s.StartAt, true
		}
		return time.Time{}, false
	}
	if s.Window == nil {
		return time.Time{}, false
	}
	loc, err := s.Location()
	if err != nil {
		return time.Time{}, false
	}

	local := now.In(loc)
	for i := 0; i <= 7; i++ {
		day := local.AddDate(0, 0, i)
		if !s.RunsOn(day.Weekday()) {
			continue
		}
		start, err := utils.AtTimeOfDay(day, s.Window.Start)
		if err != nil {
			return time.Time{}, false
		}
		if start.After(local) {
			return start, true
		}
	}
	return time.Time{}, false
}
