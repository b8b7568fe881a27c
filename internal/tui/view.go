package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/pillbox/internal/constants"
	apperrors "github.com/julianstephens/pillbox/internal/errors"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateToday:
		content = docStyle.Render(m.doseList.View())
	case constants.StateMedications:
		content = docStyle.Render(m.medList.View())
	case constants.StateAddMedication, constants.StateRefill:
		content = docStyle.Render(m.form.View())
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		m.viewBanner(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	active := m.state
	if active >= tabCount {
		active = constants.StateMedications
	}
	var tabs []string
	for i, title := range []string{"Today " + m.today, "Medications"} {
		if active == constants.SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewBanner() string {
	if m.banner == "" {
		return ""
	}
	return warningStyle.Render("⚠ Refill soon: " + m.banner)
}

func (m Model) viewStatus() string {
	if m.err != nil {
		return dangerStyle.Render(apperrors.Format(m.err))
	}
	return statusStyle.Render(m.status)
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Delete "+m.selected.Name+"?"),
			"Its reminders and remaining doses go with it.",
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
