package meds

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/pillbox/internal/models"
	"github.com/julianstephens/pillbox/internal/tracker"
	"github.com/julianstephens/pillbox/internal/utils"
)

type AddMsg struct{}

type ToggleMsg struct {
	ID string
}

type DeleteMsg struct {
	Medication models.Medication
}

type RefillMsg struct {
	Medication models.Medication
}

type Item struct {
	Medication models.Medication
}

func (i Item) Title() string {
	title := i.Medication.Name
	if !i.Medication.Active {
		title += " (paused)"
	}
	if i.Medication.Active && i.Medication.IsLowStock() {
		title = "⚠ " + title
	}
	return title
}

func (i Item) Description() string {
	times := make([]string, len(i.Medication.Times))
	for n, t := range i.Medication.Times {
		times[n] = utils.FormatDisplayTime(t)
	}
	return fmt.Sprintf("%s | %s | %s pills left, %s per dose",
		i.Medication.DosageText,
		strings.Join(times, ", "),
		tracker.FormatPills(i.Medication.PillsRemaining),
		tracker.FormatPills(i.Medication.PillsPerDose),
	)
}

func (i Item) FilterValue() string { return i.Medication.Name }

type KeyMap struct {
	Add    key.Binding
	Toggle key.Binding
	Delete key.Binding
	Refill key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("e", " "),
			key.WithHelp("e/space", "pause/resume"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Refill: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refill"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(meds []models.Medication, width, height int) Model {
	l := list.New(toItems(meds), list.NewDefaultDelegate(), width, height)
	l.Title = "Medications"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Toggle, keys.Delete, keys.Refill}
	}
	return Model{list: l, keys: keys}
}

func toItems(meds []models.Medication) []list.Item {
	items := make([]list.Item, len(meds))
	for i, m := range meds {
		items[i] = Item{Medication: m}
	}
	return items
}

func (m *Model) SetMedications(meds []models.Medication) {
	idx := m.list.Index()
	m.list.SetItems(toItems(meds))
	if idx >= len(meds) {
		idx = len(meds) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
}

func (m Model) Selected() (models.Medication, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Medication, ok
}

func (m *Model) Select(index int) {
	m.list.Select(index)
}

func (m Model) Keys() KeyMap {
	return m.keys
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddMsg{} }
		case key.Matches(msg, m.keys.Toggle):
			if med, ok := m.Selected(); ok {
				return m, func() tea.Msg { return ToggleMsg{ID: med.ID} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if med, ok := m.Selected(); ok {
				return m, func() tea.Msg { return DeleteMsg{Medication: med} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Refill):
			if med, ok := m.Selected(); ok {
				return m, func() tea.Msg { return RefillMsg{Medication: med} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  No medications yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
