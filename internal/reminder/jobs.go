package reminder

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/fastwell/internal/models"
	"github.com/julianstephens/fastwell/internal/utils"
)

// JobKind tells prayer reminders from end-of-window notices
type JobKind string

const (
	KindPrayer JobKind = "prayer"
	KindEnd    JobKind = "end"
)

// Job is one cron entry derived from a fast. Fixed fasts bound their jobs
// with NotBefore/NotAfter since cron specs cannot express a date range.
type Job struct {
	Kind      JobKind
	Spec      string
	Text      string
	NotBefore *time.Time
	NotAfter  *time.Time
}

// Due reports whether the job should notify when fired at t
func (j Job) Due(t time.Time) bool {
	if j.NotBefore != nil && t.Before(*j.NotBefore) {
		return false
	}
	if j.NotAfter != nil && !t.Before(*j.NotAfter) {
		return false
	}
	return true
}

// Jobs derives the reminder jobs for a fast: one per prayer time plus one at
// the end of the window. Fasts with reminders off or in a terminal status get
// none.
func Jobs(f models.Fast) ([]Job, error) {
	if !f.ReminderEnabled || f.Status.IsTerminal() {
		return nil, nil
	}
	switch {
	case f.Schedule.IsRecurring():
		return recurringJobs(f)
	case f.Schedule.IsFixed():
		return fixedJobs(f)
	}
	return nil, fmt.Errorf("fast %s has unknown schedule kind %q", f.ID, f.Schedule.Kind)
}

func recurringJobs(f models.Fast) ([]Job, error) {
	w := f.Schedule.Window
	if w == nil {
		return nil, fmt.Errorf("recurring fast %s has no window", f.ID)
	}
	startMin, err := utils.ParseTimeToMinutes(w.Start)
	if err != nil {
		return nil, err
	}
	endMin, err := utils.ParseTimeToMinutes(w.End)
	if err != nil {
		return nil, err
	}

	var jobs []Job
	for _, pt := range f.PrayerTimes {
		m, err := utils.ParseTimeToMinutes(pt)
		if err != nil {
			return nil, fmt.Errorf("invalid prayer time %q: %w", pt, err)
		}
		// Times before the start belong to the part of the window after midnight
		dow := dayField(f.Schedule, m < startMin)
		jobs = append(jobs, Job{
			Kind: KindPrayer,
			Spec: spec(f.Schedule.Timezone, m, "*", "*", dow),
			Text: prayerText(f, pt),
		})
	}
	jobs = append(jobs, Job{
		Kind: KindEnd,
		Spec: spec(f.Schedule.Timezone, endMin, "*", "*", dayField(f.Schedule, endMin <= startMin)),
		Text: endText(f),
	})
	return jobs, nil
}

func fixedJobs(f models.Fast) ([]Job, error) {
	start, end := f.Schedule.StartAt, f.Schedule.EndAt
	if start == nil || end == nil {
		return nil, fmt.Errorf("fixed fast %s has no start or end", f.ID)
	}
	loc, err := f.Schedule.Location()
	if err != nil {
		return nil, err
	}

	var jobs []Job
	for _, pt := range f.PrayerTimes {
		m, err := utils.ParseTimeToMinutes(pt)
		if err != nil {
			return nil, fmt.Errorf("invalid prayer time %q: %w", pt, err)
		}
		jobs = append(jobs, Job{
			Kind:      KindPrayer,
			Spec:      spec(f.Schedule.Timezone, m, "*", "*", "*"),
			Text:      prayerText(f, pt),
			NotBefore: start,
			NotAfter:  end,
		})
	}

	localEnd := end.In(loc).Truncate(time.Minute)
	endMinute := localEnd.Hour()*60 + localEnd.Minute()
	notAfter := localEnd.Add(time.Minute)
	jobs = append(jobs, Job{
		Kind: KindEnd,
		Spec: spec(f.Schedule.Timezone, endMinute,
			strconv.Itoa(localEnd.Day()), strconv.Itoa(int(localEnd.Month())), "*"),
		Text:      endText(f),
		NotBefore: &localEnd,
		NotAfter:  &notAfter,
	})
	return jobs, nil
}

// spec renders a five-field cron spec with an optional CRON_TZ prefix
func spec(tz string, minuteOfDay int, dom, month, dow string) string {
	fields := fmt.Sprintf("%d %d %s %s %s", minuteOfDay%60, (minuteOfDay/60)%24, dom, month, dow)
	if tz == "" || tz == "Local" {
		return fields
	}
	return "CRON_TZ=" + tz + " " + fields
}

// dayField renders the day-of-week field, shifted a day forward for times
// after midnight in a wrapping window
func dayField(s models.Schedule, nextDay bool) string {
	if len(s.DaysOfWeek) == 0 {
		return "*"
	}
	days := make([]int, 0, len(s.DaysOfWeek))
	for _, d := range s.DaysOfWeek {
		n := int(d)
		if nextDay {
			n = (n + 1) % 7
		}
		days = append(days, n)
	}
	slices.Sort(days)
	days = slices.Compact(days)
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

func prayerText(f models.Fast, hhmm string) string {
	focus := f.PrayerFocus
	if focus == "" {
		focus = f.Goal
	}
	if focus == "" {
		return fmt.Sprintf("Time to pray (%s)", hhmm)
	}
	return fmt.Sprintf("Time to pray (%s): %s", hhmm, focus)
}

func endText(f models.Fast) string {
	return fmt.Sprintf("Your %s fast window is ending. Well done.", f.Type)
}
