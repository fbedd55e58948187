package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(msg.Width-8, 60)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.latest.Invalidate()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			return m, m.fetchCmd()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

	case tickMsg:
		m.now = m.clock()
		return m, m.tick()

	case refreshMsg:
		return m, tea.Batch(m.fetchCmd(), m.scheduleRefresh())

	case fetchedMsg:
		if !m.latest.Current(msg.gen) {
			return m, nil
		}
		if msg.err != nil {
			// Keep counting down on the last good copy
			m.err = msg.err
			return m, nil
		}
		if m.latest.Set(msg.gen, msg.fast) {
			m.fast = msg.fast
			m.err = nil
		}
		return m, nil
	}
	return m, nil
}
