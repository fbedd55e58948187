package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/fastwell/internal/constants"
	apperrors "github.com/julianstephens/fastwell/internal/errors"
	"github.com/julianstephens/fastwell/internal/progress"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	p, err := progress.Compute(m.fast, m.now)
	if err != nil {
		return docStyle.Render(warningStyle.Render(err.Error()))
	}

	lines := []string{titleStyle.Render(title(string(m.fast.Type)))}
	if m.fast.Goal != "" {
		lines = append(lines, goalStyle.Render(m.fast.Goal))
	}

	lines = append(lines,
		m.bar.ViewAs(p.Percentage/100),
		timeStyle.Render(fmt.Sprintf("%.1f%%  elapsed %s  remaining %s",
			p.Percentage, progress.FormatDuration(p.Elapsed), progress.FormatDuration(p.Remaining))),
		timeStyle.Render(fmt.Sprintf("%s → %s",
			p.WindowStart.In(m.now.Location()).Format("Mon Jan 2 15:04"),
			p.WindowEnd.In(m.now.Location()).Format("Mon Jan 2 15:04"))),
	)

	switch {
	case m.fast.Status == constants.FastStatusFailed:
		lines = append(lines, warningStyle.Render("This fast was ended early."))
	case p.IsComplete || m.fast.Status == constants.FastStatusCompleted:
		lines = append(lines, completeStyle.Render("Window complete. Well done."))
	}
	if m.err != nil {
		lines = append(lines, warningStyle.Render("Refresh failed: "+apperrors.UserMessage(m.err)))
	}
	lines = append(lines, m.help.View(m.keys))

	content := lipgloss.JoinVertical(lipgloss.Center, lines...)
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	return docStyle.Render(content)
}

func title(fastType string) string {
	if fastType == "" {
		return "Fast"
	}
	return strings.ToUpper(fastType[:1]) + fastType[1:] + " fast"
}
