package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/pillbox/internal/constants"
	"github.com/julianstephens/pillbox/internal/logger"
	"github.com/julianstephens/pillbox/internal/models"
	"github.com/julianstephens/pillbox/internal/tracker"
	"github.com/julianstephens/pillbox/internal/tui/components/doses"
	"github.com/julianstephens/pillbox/internal/tui/components/meds"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case changedMsg:
		logger.Debug("Store changed externally", "key", msg.key)
		m.refresh()
		return m, waitForChange(m.changes)

	case tickMsg:
		if m.tracker.Today() != m.today {
			m.refresh()
		}
		return m, tick()

	case doses.ActMsg:
		m.act(msg.ID, msg.Decision)
		return m, nil

	case meds.AddMsg:
		m.medForm = newMedicationFormModel()
		m.form = NewMedicationForm(m.medForm)
		m.state = constants.StateAddMedication
		return m, m.form.Init()

	case meds.ToggleMsg:
		med, err := m.tracker.ToggleActive(m.ctx, msg.ID)
		if err != nil {
			m.fail(err)
			return m, nil
		}
		if med.Active {
			m.setStatus("%s resumed", med.Name)
		} else {
			m.setStatus("%s paused", med.Name)
		}
		m.refresh()
		return m, nil

	case meds.DeleteMsg:
		m.selected = msg.Medication
		m.state = constants.StateConfirmDelete
		return m, nil

	case meds.RefillMsg:
		m.selected = msg.Medication
		m.refillForm = &RefillFormModel{}
		m.form = NewRefillForm(m.refillForm, msg.Medication.Name)
		m.state = constants.StateRefill
		return m, m.form.Init()
	}

	switch m.state {
	case constants.StateAddMedication:
		return m, m.updateMedicationForm(msg)
	case constants.StateRefill:
		return m, m.updateRefillForm(msg)
	case constants.StateConfirmDelete:
		return m, m.updateConfirmDelete(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			m.status = ""
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			m.status = ""
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case constants.StateToday:
		m.doseList, cmd = m.doseList.Update(msg)
	case constants.StateMedications:
		m.medList, cmd = m.medList.Update(msg)
	}
	return m, cmd
}

func (m *Model) setStatus(format string, args ...interface{}) {
	m.err = nil
	m.status = fmt.Sprintf(format, args...)
}

func (m *Model) fail(err error) {
	logger.Error("Action failed", "error", err)
	m.status = ""
	m.err = err
}

// act records a take or skip on today's dose and reloads.
func (m *Model) act(eventID string, decision models.DoseStatus) {
	next, err := m.tracker.Act(m.ctx, m.snapshot, eventID, decision)
	if err != nil {
		m.fail(err)
		return
	}

	for _, d := range tracker.TodaysDoses(next, m.today) {
		if d.Event.ID != eventID {
			continue
		}
		if decision == models.StatusTaken {
			m.setStatus("%s taken, %s pills left", d.Medication.Name, tracker.FormatPills(d.Medication.PillsRemaining))
		} else {
			m.setStatus("%s skipped", d.Medication.Name)
		}
	}
	m.refresh()
}

func (m *Model) updateForm(msg tea.Msg) tea.Cmd {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	return cmd
}

func (m *Model) updateMedicationForm(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = constants.StateMedications
		return nil
	}

	cmd := m.updateForm(msg)
	switch m.form.State {
	case huh.StateCompleted:
		if err := m.submitMedication(); err != nil {
			// Stay in the form so the entry can be corrected
			m.fail(err)
			m.form.State = huh.StateNormal
			return cmd
		}
		m.state = constants.StateMedications
	case huh.StateAborted:
		m.state = constants.StateMedications
	}
	return cmd
}

func (m *Model) submitMedication() error {
	in, err := m.medForm.Input()
	if err != nil {
		return err
	}
	med, err := m.tracker.AddMedication(m.ctx, in)
	if err != nil {
		return err
	}
	m.setStatus("Added %s", med.Name)
	m.refresh()
	m.medList.Select(0)
	return nil
}

func (m *Model) updateRefillForm(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = constants.StateMedications
		return nil
	}

	cmd := m.updateForm(msg)
	switch m.form.State {
	case huh.StateCompleted:
		if err := m.submitRefill(); err != nil {
			m.fail(err)
			m.form.State = huh.StateNormal
			return cmd
		}
		m.state = constants.StateMedications
	case huh.StateAborted:
		m.state = constants.StateMedications
	}
	return cmd
}

func (m *Model) submitRefill() error {
	pills, err := tracker.ParseAmount("refill amount", m.refillForm.Pills)
	if err != nil {
		return err
	}
	med, err := m.tracker.Refill(m.ctx, m.selected.ID, pills)
	if err != nil {
		return err
	}
	m.setStatus("%s refilled, %s pills left", med.Name, tracker.FormatPills(med.PillsRemaining))
	m.refresh()
	return nil
}

func (m *Model) updateConfirmDelete(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		if err := m.tracker.DeleteMedication(m.ctx, m.selected.ID); err != nil {
			m.fail(err)
		} else {
			m.setStatus("Deleted %s", m.selected.Name)
			m.refresh()
		}
		m.state = constants.StateMedications
	case key.Matches(keyMsg, m.keys.Cancel):
		m.state = constants.StateMedications
	}
	return nil
}
