// Package progress derives live completion metrics for a fast.
package progress

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/julianstephens/fastwell/internal/models"
	"github.com/julianstephens/fastwell/internal/schedule"
)

const infiniteDays = "infinite"

// TotalDays is a day count, or infinite for recurring fasts with no end
type TotalDays struct {
	Days     int
	Infinite bool
}

func (d TotalDays) String() string {
	if d.Infinite {
		return infiniteDays
	}
	return fmt.Sprintf("%d", d.Days)
}

func (d TotalDays) MarshalJSON() ([]byte, error) {
	if d.Infinite {
		return json.Marshal(infiniteDays)
	}
	return json.Marshal(d.Days)
}

func (d *TotalDays) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s != infiniteDays {
			return fmt.Errorf("invalid totalDays %q", s)
		}
		*d = TotalDays{Infinite: true}
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid totalDays: %w", err)
	}
	*d = TotalDays{Days: n}
	return nil
}

// Progress is derived from a fast and an instant; it is never persisted.
// Fixed fasts fill TotalHours, recurring fasts fill DailyHours.
type Progress struct {
	Percentage     float64       `json:"percentage"`
	HoursCompleted float64       `json:"hoursCompleted"`
	TotalHours     float64       `json:"totalHours,omitempty"`
	DailyHours     float64       `json:"dailyHours,omitempty"`
	TotalDays      TotalDays     `json:"totalDays"`
	Elapsed        time.Duration `json:"elapsed"`
	Remaining      time.Duration `json:"remaining"`
	IsComplete     bool          `json:"isComplete"`
	WindowStart    time.Time     `json:"windowStart"`
	WindowEnd      time.Time     `json:"windowEnd"`
}

// Compute returns the progress of f at now. It has no side effects.
func Compute(f models.Fast, now time.Time) (Progress, error) {
	s := f.Schedule
	switch {
	case s.IsFixed():
		if s.StartAt == nil || s.EndAt == nil {
			return Progress{}, fmt.Errorf("fast %s: fixed schedule is missing its window", f.ID)
		}
		p := within(*s.StartAt, *s.EndAt, now)
		p.TotalHours = s.EndAt.Sub(*s.StartAt).Hours()
		p.TotalDays = TotalDays{Days: dayCount(p.TotalHours)}
		return p, nil

	case s.IsRecurring():
		if s.Window == nil {
			return Progress{}, fmt.Errorf("fast %s: recurring schedule is missing its window", f.ID)
		}
		length, err := s.Window.Duration()
		if err != nil {
			return Progress{}, fmt.Errorf("fast %s: %w", f.ID, err)
		}
		anchor, err := recurringAnchor(f, now)
		if err != nil {
			return Progress{}, err
		}
		p := within(anchor, anchor.Add(length), now)
		p.DailyHours = length.Hours()
		p.TotalDays = TotalDays{Infinite: true}
		return p, nil
	}
	return Progress{}, fmt.Errorf("fast %s: unknown schedule kind %q", f.ID, s.Kind)
}

func recurringAnchor(f models.Fast, now time.Time) (time.Time, error) {
	if f.StartTime != nil {
		return *f.StartTime, nil
	}
	if latest, ok := schedule.LatestOccurrence(f.Schedule, now); ok {
		return latest, nil
	}
	if next, ok := schedule.NextOccurrence(f.Schedule, now); ok {
		return next, nil
	}
	return time.Time{}, fmt.Errorf("fast %s: schedule has no occurrence", f.ID)
}

func within(start, end, now time.Time) Progress {
	total := end.Sub(start)
	elapsed := now.Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > total {
		elapsed = total
	}

	p := Progress{
		HoursCompleted: elapsed.Hours(),
		Elapsed:        elapsed,
		Remaining:      total - elapsed,
		IsComplete:     !now.Before(end),
		WindowStart:    start,
		WindowEnd:      end,
	}
	if total > 0 {
		p.Percentage = 100 * float64(elapsed) / float64(total)
	}
	return p
}

func dayCount(hours float64) int {
	days := int(math.Ceil(hours / 24))
	if days < 1 {
		return 1
	}
	return days
}

// FormatDuration renders d as HH:MM:SS, or "Nd HH:MM:SS" past a day
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Second)
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	sec := int(d % time.Minute / time.Second)
	if days > 0 {
		return fmt.Sprintf("%dd %02d:%02d:%02d", days, h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}
