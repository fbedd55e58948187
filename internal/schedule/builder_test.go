package schedule

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/fastwell/internal/constants"
	apperrors "github.com/julianstephens/fastwell/internal/errors"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 6, day, hour, minute, 0, 0, time.UTC)
}

func TestBuildBreakthroughForces24Hours(t *testing.T) {
	ends := []time.Time{
		{},
		at(1, 12, 0),
		at(3, 9, 0),
		at(1, 10, 0).Add(24 * time.Hour),
	}
	for _, end := range ends {
		res, err := Build(Selection{
			Type:     constants.FastTypeBreakthrough,
			StartAt:  at(1, 10, 0),
			EndAt:    end,
			Timezone: "UTC",
		}, Options{})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		s := res.Schedule
		if !s.IsFixed() {
			t.Fatalf("breakthrough schedule kind = %s, want fixed", s.Kind)
		}
		if got := s.EndAt.Sub(*s.StartAt); got != 24*time.Hour {
			t.Errorf("breakthrough duration = %v with end %v, want 24h", got, end)
		}
		wantAdvisory := !end.IsZero() && !end.Equal(at(2, 10, 0))
		if (len(res.Advisories) > 0) != wantAdvisory {
			t.Errorf("advisories = %v, want advisory %v", res.Advisories, wantAdvisory)
		}
	}
}

func TestBuildFixed(t *testing.T) {
	t.Run("explicit end", func(t *testing.T) {
		res, err := Build(Selection{
			Type:     constants.FastTypeCustom,
			StartAt:  at(1, 8, 0),
			EndAt:    at(1, 20, 0),
			Timezone: "UTC",
		}, Options{})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if !res.Schedule.EndAt.Equal(at(1, 20, 0)) || len(res.Advisories) != 0 {
			t.Errorf("Build() = %+v, advisories %v", res.Schedule, res.Advisories)
		}
		if res.Schedule.Window != nil || res.Schedule.Frequency != "" {
			t.Error("fixed schedule should not carry recurring fields")
		}
	})

	t.Run("duration preset", func(t *testing.T) {
		res, err := Build(Selection{
			Type:     constants.FastTypeCustom,
			StartAt:  at(1, 8, 0),
			Duration: constants.Duration3Days,
			Timezone: "UTC",
		}, Options{})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if !res.Schedule.EndAt.Equal(at(4, 8, 0)) {
			t.Errorf("EndAt = %v, want %v", res.Schedule.EndAt, at(4, 8, 0))
		}
	})

	t.Run("end before start self-heals", func(t *testing.T) {
		res, err := Build(Selection{
			Type:     constants.FastTypeCustom,
			StartAt:  at(1, 8, 0),
			EndAt:    at(1, 7, 0),
			Timezone: "UTC",
		}, Options{})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if !res.Schedule.EndAt.Equal(at(1, 9, 0)) {
			t.Errorf("EndAt = %v, want start + 1h", res.Schedule.EndAt)
		}
		if len(res.Advisories) != 1 || res.Advisories[0].Field != "endAt" {
			t.Errorf("advisories = %v, want one endAt advisory", res.Advisories)
		}
	})

	t.Run("end before start rejected in strict mode", func(t *testing.T) {
		_, err := Build(Selection{
			Type:     constants.FastTypeCustom,
			StartAt:  at(1, 8, 0),
			EndAt:    at(1, 8, 0),
			Timezone: "UTC",
		}, Options{Strict: true})
		if !apperrors.IsValidation(err) {
			t.Errorf("Build() error = %v, want ValidationError", err)
		}
	})

	t.Run("missing end", func(t *testing.T) {
		_, err := Build(Selection{Type: constants.FastTypeCustom, StartAt: at(1, 8, 0), Timezone: "UTC"}, Options{})
		if !apperrors.IsValidation(err) {
			t.Errorf("Build() error = %v, want ValidationError", err)
		}
	})
}

func TestBuildNightly(t *testing.T) {
	t.Run("in range", func(t *testing.T) {
		res, err := Build(Selection{
			Type:     constants.FastTypeNightly,
			StartAt:  at(1, 19, 0),
			EndAt:    at(2, 5, 30),
			Timezone: "UTC",
		}, Options{})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if res.Schedule.Window.Start != "19:00" || res.Schedule.Window.End != "05:30" {
			t.Errorf("window = %v, want 19:00-05:30", res.Schedule.Window)
		}
		if res.Schedule.Frequency != constants.FrequencyDaily || len(res.Advisories) != 0 {
			t.Errorf("frequency = %s, advisories = %v", res.Schedule.Frequency, res.Advisories)
		}
	})

	t.Run("out of range is clamped with advisories", func(t *testing.T) {
		res, err := Build(Selection{
			Type:     constants.FastTypeNightly,
			StartAt:  at(1, 14, 0),
			EndAt:    at(2, 9, 0),
			Timezone: "UTC",
		}, Options{})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if res.Schedule.Window.Start != "18:00" || res.Schedule.Window.End != "06:00" {
			t.Errorf("window = %v, want 18:00-06:00", res.Schedule.Window)
		}
		if len(res.Advisories) != 2 {
			t.Errorf("advisories = %v, want 2", res.Advisories)
		}
	})

	t.Run("default end is the latest allowed", func(t *testing.T) {
		res, err := Build(Selection{Type: constants.FastTypeNightly, StartAt: at(1, 21, 0), Timezone: "UTC"}, Options{})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if res.Schedule.Window.End != constants.NightlyLatestEnd || len(res.Advisories) != 0 {
			t.Errorf("window = %v, advisories = %v", res.Schedule.Window, res.Advisories)
		}
	})

	t.Run("strict mode rejects", func(t *testing.T) {
		_, err := Build(Selection{
			Type:     constants.FastTypeNightly,
			StartAt:  at(1, 14, 0),
			EndAt:    at(2, 5, 0),
			Timezone: "UTC",
		}, Options{Strict: true})
		if !apperrors.IsValidation(err) {
			t.Errorf("Build() error = %v, want ValidationError", err)
		}
	})
}

func TestBuildRecurring(t *testing.T) {
	t.Run("daily overnight window", func(t *testing.T) {
		res, err := Build(Selection{
			Type:     constants.FastTypeDaily,
			StartAt:  at(1, 18, 0),
			EndAt:    at(1, 6, 0),
			Timezone: "UTC",
		}, Options{Strict: true})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if res.Schedule.Window.Start != "18:00" || res.Schedule.Window.End != "06:00" {
			t.Errorf("window = %v, want 18:00-06:00", res.Schedule.Window)
		}
		if res.Schedule.DaysOfWeek != nil {
			t.Errorf("daily schedule carries days %v", res.Schedule.DaysOfWeek)
		}
	})

	t.Run("weekly days from labels", func(t *testing.T) {
		res, err := Build(Selection{
			Type:     constants.FastTypeWeekly,
			StartAt:  at(1, 6, 0),
			EndAt:    at(1, 18, 0),
			Days:     []string{"Wed", "Mon", "monday"},
			Timezone: "UTC",
		}, Options{})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		want := []time.Weekday{time.Monday, time.Wednesday}
		if diff := cmp.Diff(want, res.Schedule.DaysOfWeek); diff != "" {
			t.Errorf("DaysOfWeek mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("weekly without days", func(t *testing.T) {
		_, err := Build(Selection{
			Type:     constants.FastTypeWeekly,
			StartAt:  at(1, 6, 0),
			EndAt:    at(1, 18, 0),
			Timezone: "UTC",
		}, Options{})
		if !apperrors.IsValidation(err) {
			t.Errorf("Build() error = %v, want ValidationError", err)
		}
	})

	t.Run("custom recurring infers weekly from days", func(t *testing.T) {
		res, err := Build(Selection{
			Type:      constants.FastTypeCustom,
			Recurring: true,
			StartAt:   at(1, 6, 0),
			EndAt:     at(1, 12, 0),
			Days:      []string{"fri"},
			Timezone:  "UTC",
		}, Options{})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if res.Schedule.Frequency != constants.FrequencyWeekly {
			t.Errorf("frequency = %s, want weekly", res.Schedule.Frequency)
		}
	})

	t.Run("identical start and end self-heals", func(t *testing.T) {
		res, err := Build(Selection{
			Type:     constants.FastTypeDaily,
			StartAt:  at(1, 6, 0),
			EndAt:    at(1, 6, 0),
			Timezone: "UTC",
		}, Options{})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if res.Schedule.Window.End != "07:00" || len(res.Advisories) != 1 {
			t.Errorf("window = %v, advisories = %v", res.Schedule.Window, res.Advisories)
		}
	})

	t.Run("schedule passes its own validation", func(t *testing.T) {
		res, err := Build(Selection{
			Type:     constants.FastTypeWeekly,
			StartAt:  at(1, 6, 0),
			EndAt:    at(1, 18, 0),
			Days:     []string{"sun"},
			Timezone: "UTC",
		}, Options{})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if err := res.Schedule.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})
}

func TestBuildRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		sel  Selection
	}{
		{"unknown type", Selection{Type: "monthly", StartAt: at(1, 6, 0), Timezone: "UTC"}},
		{"missing start", Selection{Type: constants.FastTypeDaily, Timezone: "UTC"}},
		{"bad timezone", Selection{Type: constants.FastTypeDaily, StartAt: at(1, 6, 0), EndAt: at(1, 8, 0), Timezone: "Nowhere/Special"}},
		{"bad duration", Selection{Type: constants.FastTypeCustom, StartAt: at(1, 6, 0), Duration: "5d", Timezone: "UTC"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(tt.sel, Options{}); !apperrors.IsValidation(err) {
				t.Errorf("Build() error = %v, want ValidationError", err)
			}
		})
	}
}
