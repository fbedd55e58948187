package schedule

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/fastwell/internal/constants"
	apperrors "github.com/julianstephens/fastwell/internal/errors"
	"github.com/julianstephens/fastwell/internal/models"
)

func TestValidatePrayerTimesOutsideFixedWindow(t *testing.T) {
	s := models.NewFixedSchedule(at(1, 9, 0), at(1, 15, 0), "UTC")

	accepted, issues := ValidatePrayerTimes([]string{"03:00", "12 PM"}, s)
	want := []apperrors.Issue{{Field: "prayerTimes", Value: "03:00", Reason: apperrors.ReasonOutside}}
	if diff := cmp.Diff(want, issues); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"12:00"}, accepted); diff != "" {
		t.Errorf("accepted mismatch (-want +got):\n%s", diff)
	}
}

func TestValidatePrayerTimesReasons(t *testing.T) {
	window := models.TimeWindow{Start: "18:00", End: "06:00"}
	s := models.NewRecurringSchedule(constants.FrequencyDaily, nil, window, "UTC")

	accepted, issues := ValidatePrayerTimes([]string{"3 AM", "9pm", "25:00", "21:00", "noon", "12:00", "12:00"}, s)

	wantAccepted := []string{"21:00", "03:00"}
	if diff := cmp.Diff(wantAccepted, accepted); diff != "" {
		t.Errorf("accepted mismatch (-want +got):\n%s", diff)
	}
	wantIssues := []apperrors.Issue{
		{Field: "prayerTimes", Value: "25:00", Reason: apperrors.ReasonInvalid},
		{Field: "prayerTimes", Value: "21:00", Reason: apperrors.ReasonDuplicate},
		{Field: "prayerTimes", Value: "noon", Reason: apperrors.ReasonInvalid},
		{Field: "prayerTimes", Value: "12:00", Reason: apperrors.ReasonOutside},
		{Field: "prayerTimes", Value: "12:00", Reason: apperrors.ReasonDuplicate},
	}
	if diff := cmp.Diff(wantIssues, issues); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestCheckPrayerTimes(t *testing.T) {
	s := models.NewFixedSchedule(at(1, 9, 0), at(1, 15, 0), "UTC")

	if _, err := CheckPrayerTimes([]string{"10:00", "03:00"}, s); !apperrors.IsValidation(err) {
		t.Errorf("CheckPrayerTimes() error = %v, want ValidationError", err)
	}

	got, err := CheckPrayerTimes([]string{"2pm", "10:00"}, s)
	if err != nil {
		t.Fatalf("CheckPrayerTimes() error = %v", err)
	}
	if diff := cmp.Diff([]string{"10:00", "14:00"}, got); diff != "" {
		t.Errorf("CheckPrayerTimes() mismatch (-want +got):\n%s", diff)
	}
}

func TestValidatePrayerTimesUsesScheduleTimezone(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	// 09:00-15:00 in New York, stored as UTC instants
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, ny).UTC()
	end := time.Date(2024, 6, 1, 15, 0, 0, 0, ny).UTC()
	s := models.NewFixedSchedule(start, end, "America/New_York")

	accepted, issues := ValidatePrayerTimes([]string{"10:00", "18:00"}, s)
	if diff := cmp.Diff([]string{"10:00"}, accepted); diff != "" {
		t.Errorf("accepted mismatch (-want +got):\n%s", diff)
	}
	if len(issues) != 1 || issues[0].Reason != apperrors.ReasonOutside {
		t.Errorf("issues = %v, want one outside", issues)
	}
}
