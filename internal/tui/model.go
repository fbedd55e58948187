package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/fastwell/internal/constants"
	"github.com/julianstephens/fastwell/internal/countdown"
	"github.com/julianstephens/fastwell/internal/models"
)

// Fetcher reloads the fast shown by the countdown
type Fetcher func(ctx context.Context) (models.Fast, error)

// Model is the countdown screen for a single fast. The fast is re-fetched
// periodically; responses overtaken by a newer request are dropped.
type Model struct {
	fetch   Fetcher
	latest  *countdown.Latest[models.Fast]
	fast    models.Fast
	now     time.Time
	clock   func() time.Time
	refresh time.Duration

	bar  progress.Model
	help help.Model
	keys KeyMap

	err      error
	width    int
	height   int
	quitting bool
}

// Option configures a Model
type Option func(*Model)

// WithClock overrides the clock used for progress
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.clock = now }
}

// WithRefreshInterval sets how often the fast is re-fetched
func WithRefreshInterval(d time.Duration) Option {
	return func(m *Model) { m.refresh = d }
}

func New(initial models.Fast, fetch Fetcher, opts ...Option) Model {
	m := Model{
		fetch:   fetch,
		latest:  &countdown.Latest[models.Fast]{},
		fast:    initial,
		clock:   time.Now,
		refresh: constants.RefreshInterval,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:    help.New(),
		keys:    DefaultKeyMap(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.now = m.clock()
	return m
}

// Run shows the countdown until the user quits or ctx is done
func Run(ctx context.Context, initial models.Fast, fetch Fetcher, opts ...Option) error {
	m := New(initial, fetch, opts...)
	_, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	m.latest.Invalidate()
	return err
}

type tickMsg time.Time

type refreshMsg struct{}

type fetchedMsg struct {
	gen  uint64
	fast models.Fast
	err  error
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(constants.CountdownInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) scheduleRefresh() tea.Cmd {
	return tea.Tick(m.refresh, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

// fetchCmd starts a new generation and loads the fast in the background
func (m Model) fetchCmd() tea.Cmd {
	if m.fetch == nil {
		return nil
	}
	gen := m.latest.Begin()
	fetch := m.fetch
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		f, err := fetch(ctx)
		return fetchedMsg{gen: gen, fast: f, err: err}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.scheduleRefresh())
}
