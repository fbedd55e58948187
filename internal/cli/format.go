package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/fastwell/internal/constants"
	apperrors "github.com/julianstephens/fastwell/internal/errors"
	"github.com/julianstephens/fastwell/internal/fasting"
	"github.com/julianstephens/fastwell/internal/models"
	"github.com/julianstephens/fastwell/internal/progress"
	"github.com/julianstephens/fastwell/internal/utils"
)

const displayFormat = "Mon Jan 2 2006 15:04"

// FastID returns id, or the active fast's id when id is empty
func FastID(ctx context.Context, svc *fasting.Service, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	d, err := svc.Route(ctx)
	if err != nil {
		return "", err
	}
	if d.Active == nil {
		return "", fmt.Errorf("%w: no active fast, pass a fast id", apperrors.ErrNotFound)
	}
	return d.Active.ID, nil
}

// DescribeSchedule renders a schedule on one line in its own timezone
func DescribeSchedule(s models.Schedule) string {
	loc, err := s.Location()
	if err != nil {
		loc = time.UTC
	}
	tz := s.Timezone
	if tz == "" {
		tz = "Local"
	}
	switch {
	case s.IsFixed() && s.StartAt != nil && s.EndAt != nil:
		return fmt.Sprintf("%s → %s (%s)", s.StartAt.In(loc).Format(displayFormat), s.EndAt.In(loc).Format(displayFormat), tz)
	case s.IsRecurring() && s.Window != nil:
		days := "every day"
		if s.Frequency == constants.FrequencyWeekly {
			days = "every " + utils.FormatWeekdays(s.DaysOfWeek)
		}
		return fmt.Sprintf("%s %s (%s)", days, s.Window, tz)
	}
	return string(s.Kind)
}

// FastLine is the one-line summary used in listings
func FastLine(f models.Fast) string {
	goal := f.Goal
	if goal == "" {
		goal = "-"
	}
	return fmt.Sprintf("%s  %-12s %-9s %s  %s", f.ID, f.Type, f.Status, DescribeSchedule(f.Schedule), goal)
}

// PrintFast writes the details of a fast and its progress at now
func (c *Context) PrintFast(f models.Fast, now time.Time) {
	c.Printf("ID:           %s\n", f.ID)
	c.Printf("Type:         %s\n", f.Type)
	c.Printf("Status:       %s\n", f.Status)
	c.Printf("Schedule:     %s\n", DescribeSchedule(f.Schedule))
	if f.Goal != "" {
		c.Printf("Goal:         %s\n", f.Goal)
	}
	if f.SmartGoal != "" {
		c.Printf("SMART goal:   %s\n", f.SmartGoal)
	}
	if f.Verse != "" {
		c.Printf("Verse:        %s\n", f.Verse)
	}
	if f.PrayerFocus != "" {
		c.Printf("Prayer focus: %s\n", f.PrayerFocus)
	}
	if len(f.PrayerTimes) > 0 {
		c.Printf("Prayer times: %s\n", strings.Join(f.PrayerTimes, ", "))
	}
	c.Printf("Reminders:    %v\n", f.ReminderEnabled)
	c.Printf("Partners:     %v\n", f.AddAccountabilityPartners)
	if f.BrokenAt != nil {
		c.Printf("Ended early:  %s\n", f.BrokenAt.In(c.Location()).Format(displayFormat))
	}
	if f.CompletedAt != nil {
		c.Printf("Completed:    %s\n", f.CompletedAt.In(c.Location()).Format(displayFormat))
	}
	if f.Status.IsTerminal() {
		return
	}
	if p, err := progress.Compute(f, now); err == nil {
		c.Printf("Progress:     %s\n", ProgressLine(p))
	}
}

// ProgressLine renders progress on one line
func ProgressLine(p progress.Progress) string {
	line := fmt.Sprintf("%5.1f%%  elapsed %s  remaining %s",
		p.Percentage, progress.FormatDuration(p.Elapsed), progress.FormatDuration(p.Remaining))
	if p.IsComplete {
		line += "  (window complete)"
	}
	return line
}

// PrintAdvisories writes corrections made while building a schedule
func (c *Context) PrintAdvisories(advisories []utils.Advisory) {
	for _, a := range advisories {
		c.Printf("Note: %s\n", a.Message)
	}
}
