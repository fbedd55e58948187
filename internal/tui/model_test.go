package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/fastwell/internal/constants"
	"github.com/julianstephens/fastwell/internal/models"
)

var testStart = time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)

func testFast(goal string) models.Fast {
	return models.Fast{
		ID:       "f1",
		Type:     constants.FastTypeBreakthrough,
		Schedule: models.NewFixedSchedule(testStart, testStart.Add(24*time.Hour), "UTC"),
		Status:   constants.FastStatusActive,
		Goal:     goal,
	}
}

func newTestModel(now *time.Time, fetch Fetcher) Model {
	return New(testFast("clarity"), fetch, WithClock(func() time.Time { return *now }))
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T", next)
	}
	return nm, cmd
}

func TestViewShowsProgress(t *testing.T) {
	now := testStart.Add(12 * time.Hour)
	m := newTestModel(&now, nil)

	view := m.View()
	for _, want := range []string{"Breakthrough fast", "clarity", "50.0%", "12:00:00"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestTickAdvancesClock(t *testing.T) {
	now := testStart.Add(time.Hour)
	m := newTestModel(&now, nil)

	now = testStart.Add(24 * time.Hour)
	m, cmd := update(t, m, tickMsg(now))
	if cmd == nil {
		t.Error("tick did not schedule the next tick")
	}
	if !strings.Contains(m.View(), "Window complete") {
		t.Errorf("View() after end:\n%s", m.View())
	}
}

func TestStaleFetchIsDropped(t *testing.T) {
	now := testStart.Add(time.Hour)
	m := newTestModel(&now, func(context.Context) (models.Fast, error) {
		return testFast("fetched"), nil
	})

	older := m.latest.Begin()
	newer := m.latest.Begin()

	m, _ = update(t, m, fetchedMsg{gen: newer, fast: testFast("newer")})
	m, _ = update(t, m, fetchedMsg{gen: older, fast: testFast("older")})
	if m.fast.Goal != "newer" {
		t.Errorf("goal = %q, want newer", m.fast.Goal)
	}
}

func TestStaleFetchErrorIsDropped(t *testing.T) {
	now := testStart.Add(time.Hour)
	m := newTestModel(&now, nil)

	older := m.latest.Begin()
	newer := m.latest.Begin()

	m, _ = update(t, m, fetchedMsg{gen: newer, fast: testFast("newer")})
	m, _ = update(t, m, fetchedMsg{gen: older, err: errors.New("timeout")})
	if m.err != nil {
		t.Errorf("err = %v, want nil after a newer successful refresh", m.err)
	}
	if strings.Contains(m.View(), "Refresh failed") {
		t.Errorf("View() shows a superseded error:\n%s", m.View())
	}
	if m.fast.Goal != "newer" {
		t.Errorf("goal = %q, want newer", m.fast.Goal)
	}
}

func TestFetchErrorKeepsLastFast(t *testing.T) {
	now := testStart.Add(time.Hour)
	m := newTestModel(&now, nil)

	gen := m.latest.Begin()
	m, _ = update(t, m, fetchedMsg{gen: gen, err: errors.New("boom")})
	if m.fast.Goal != "clarity" {
		t.Errorf("goal = %q, want the original", m.fast.Goal)
	}
	if !strings.Contains(m.View(), "Refresh failed: boom") {
		t.Errorf("View() does not show the error:\n%s", m.View())
	}
}

func TestRefreshFetches(t *testing.T) {
	now := testStart.Add(time.Hour)
	m := newTestModel(&now, func(context.Context) (models.Fast, error) {
		f := testFast("fetched")
		f.Status = constants.FastStatusFailed
		return f, nil
	})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	if cmd == nil {
		t.Fatal("refresh key returned no command")
	}
	m, _ = update(t, m, cmd())
	if m.fast.Goal != "fetched" {
		t.Errorf("goal = %q, want fetched", m.fast.Goal)
	}
	if !strings.Contains(m.View(), "ended early") {
		t.Errorf("View() for a broken fast:\n%s", m.View())
	}
}

func TestQuitInvalidatesInFlightFetch(t *testing.T) {
	now := testStart.Add(time.Hour)
	m := newTestModel(&now, nil)

	gen := m.latest.Begin()
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command did not quit")
	}
	if m.latest.Set(gen, testFast("late")) {
		t.Error("fetch issued before quit was applied")
	}
	if m.View() != "" {
		t.Error("View() after quit is not empty")
	}
}
