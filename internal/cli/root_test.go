package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/fastwell/internal/config"
	"github.com/julianstephens/fastwell/internal/constants"
	apperrors "github.com/julianstephens/fastwell/internal/errors"
	"github.com/julianstephens/fastwell/internal/models"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// newTestContext returns a context over an initialized SQLite database in a
// temp dir, writing output to the returned buffer
func newTestContext(t *testing.T) (*Context, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Database = filepath.Join(dir, "fastwell.db")
	cfg.Timezone = "UTC"

	ctx := NewContext(cfg, filepath.Join(dir, "config.yaml"))
	var out bytes.Buffer
	ctx.Out = &out
	ctx.Now = func() time.Time { return testNow }

	store, err := ctx.NewStore()
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { ctx.Close() })
	return ctx, &out
}

func TestParseWhen(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	now := time.Date(2024, 6, 1, 15, 30, 0, 0, ny)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"rfc3339", "2024-06-02T06:00:00Z", time.Date(2024, 6, 2, 6, 0, 0, 0, time.UTC), false},
		{"date and clock", "2024-06-02 18:00", time.Date(2024, 6, 2, 18, 0, 0, 0, ny), false},
		{"date and 12h clock", "2024-06-02 6 PM", time.Date(2024, 6, 2, 18, 0, 0, 0, ny), false},
		{"bare date", "2024-06-03", time.Date(2024, 6, 3, 0, 0, 0, 0, ny), false},
		{"clock only", "6:30pm", time.Date(2024, 6, 1, 18, 30, 0, 0, ny), false},
		{"padded", "  07:15 ", time.Date(2024, 6, 1, 7, 15, 0, 0, ny), false},
		{"empty", "", time.Time{}, true},
		{"bad clock after date", "2024-06-02 25:00", time.Time{}, true},
		{"garbage", "next tuesday", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWhen(tt.input, now, ny)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWhen(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseWhen(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDescribeSchedule(t *testing.T) {
	start := time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		schedule models.Schedule
		want     string
	}{
		{
			"fixed",
			models.NewFixedSchedule(start, start.Add(24*time.Hour), "UTC"),
			"Sat Jun 1 2024 06:00 → Sun Jun 2 2024 06:00 (UTC)",
		},
		{
			"daily",
			models.NewRecurringSchedule(constants.FrequencyDaily, nil, models.TimeWindow{Start: "06:00", End: "18:00"}, "UTC"),
			"every day 06:00-18:00 (UTC)",
		},
		{
			"weekly local",
			models.NewRecurringSchedule(constants.FrequencyWeekly, []time.Weekday{time.Monday, time.Thursday},
				models.TimeWindow{Start: "18:00", End: "06:00"}, ""),
			"every Mon,Thu 18:00-06:00 (Local)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DescribeSchedule(tt.schedule); got != tt.want {
				t.Errorf("DescribeSchedule() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFastIDUsesActiveFast(t *testing.T) {
	ctx, _ := newTestContext(t)
	svc, err := ctx.Service()
	if err != nil {
		t.Fatal(err)
	}
	bg := context.Background()

	if _, err := FastID(bg, svc, ""); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("FastID() with no fasts error = %v, want ErrNotFound", err)
	}

	f, err := svc.Create(bg, models.CreateFastPayload{
		Type:     constants.FastTypeCustom,
		Schedule: models.NewFixedSchedule(testNow.Add(-time.Hour), testNow.Add(11*time.Hour), "UTC"),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	got, err := FastID(bg, svc, "")
	if err != nil || got != f.ID {
		t.Errorf("FastID() = %q, %v, want %q", got, err, f.ID)
	}
	if got, _ := FastID(bg, svc, "explicit"); got != "explicit" {
		t.Errorf("FastID(explicit) = %q", got)
	}
}

func TestPrintFast(t *testing.T) {
	ctx, out := newTestContext(t)
	f := models.Fast{
		ID:       "f1",
		Type:     constants.FastTypeBreakthrough,
		Goal:     "clarity for the move",
		Status:   constants.FastStatusActive,
		Schedule: models.NewFixedSchedule(testNow.Add(-6*time.Hour), testNow.Add(18*time.Hour), "UTC"),
	}
	ctx.PrintFast(f, testNow)
	for _, want := range []string{"f1", "clarity for the move", "25.0%"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("PrintFast() output missing %q:\n%s", want, out.String())
		}
	}
}

func TestParseUntil(t *testing.T) {
	now := testNow
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"bare date covers the day", "2024-06-01", time.Date(2024, 6, 1, 23, 59, 59, 0, time.UTC)},
		{"date and clock is exact", "2024-06-01 18:00", time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)},
		{"rfc3339 is exact", "2024-06-01T06:00:00Z", time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUntil(tt.input, now, time.UTC)
			if err != nil {
				t.Fatalf("ParseUntil(%q) error = %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseUntil(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
	if _, err := ParseUntil("soon", now, time.UTC); err == nil {
		t.Error("ParseUntil(soon) succeeded")
	}
}

func TestListUntilIncludesWholeDay(t *testing.T) {
	ctx, _ := newTestContext(t)
	svc, err := ctx.Service()
	if err != nil {
		t.Fatal(err)
	}
	bg := context.Background()
	if _, err := svc.Create(bg, models.CreateFastPayload{
		Type:     constants.FastTypeCustom,
		Schedule: models.NewFixedSchedule(testNow, testNow.Add(6*time.Hour), "UTC"),
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	for _, tt := range []struct {
		to   string
		want int
	}{
		{"2024-06-01", 1},
		{"2024-05-31", 0},
		{"2024-06-01 11:00", 0},
	} {
		until, err := ParseUntil(tt.to, testNow, time.UTC)
		if err != nil {
			t.Fatal(err)
		}
		page, err := svc.List(bg, models.ListFilter{EndDate: &until})
		if err != nil {
			t.Fatalf("List(to %s) error = %v", tt.to, err)
		}
		if page.Total != tt.want {
			t.Errorf("List(to %s) total = %d, want %d", tt.to, page.Total, tt.want)
		}
	}
}
