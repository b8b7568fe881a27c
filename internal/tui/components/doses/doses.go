package doses

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/pillbox/internal/models"
	"github.com/julianstephens/pillbox/internal/tracker"
	"github.com/julianstephens/pillbox/internal/utils"
)

// ActMsg asks the parent model to record Decision on the dose event ID.
type ActMsg struct {
	ID       string
	Decision models.DoseStatus
}

var icons = map[models.DoseStatus]string{
	models.StatusPending: "○",
	models.StatusTaken:   "✓",
	models.StatusSkipped: "✗",
}

type Item struct {
	Dose tracker.Dose
}

func (i Item) Title() string {
	return fmt.Sprintf("%s %s  %s", icons[i.Dose.Event.Status], utils.FormatDisplayTime(i.Dose.Event.LocalTime), i.Dose.Medication.Name)
}

func (i Item) Description() string {
	desc := i.Dose.Medication.DosageText
	if i.Dose.Medication.Instructions != "" {
		desc += " | " + i.Dose.Medication.Instructions
	}
	switch {
	case i.Dose.Event.Status == models.StatusPending:
		desc += " | due"
	case i.Dose.Event.IsActed():
		desc += fmt.Sprintf(" | %s at %s", i.Dose.Event.Status, i.Dose.Event.ActedAt.Local().Format("3:04 PM"))
	default:
		desc += " | " + string(i.Dose.Event.Status)
	}
	return desc
}

func (i Item) FilterValue() string { return i.Dose.Medication.Name }

type KeyMap struct {
	Take key.Binding
	Skip key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Take: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "take"),
		),
		Skip: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "skip"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(doses []tracker.Dose, width, height int) Model {
	l := list.New(toItems(doses), list.NewDefaultDelegate(), width, height)
	l.Title = "Today"
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Take, keys.Skip}
	}
	return Model{list: l, keys: keys}
}

func toItems(doses []tracker.Dose) []list.Item {
	items := make([]list.Item, len(doses))
	for i, d := range doses {
		items[i] = Item{Dose: d}
	}
	return items
}

// SetDoses replaces the list contents, keeping the cursor where it was.
func (m *Model) SetDoses(doses []tracker.Dose) {
	idx := m.list.Index()
	m.list.SetItems(toItems(doses))
	if idx >= len(doses) {
		idx = len(doses) - 1
	}
	if idx >= 0 {
		m.list.Select(idx)
	}
}

// Selected returns the dose under the cursor.
func (m Model) Selected() (tracker.Dose, bool) {
	i, ok := m.list.SelectedItem().(Item)
	return i.Dose, ok
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
		var decision models.DoseStatus
		switch {
		case key.Matches(msg, m.keys.Take):
			decision = models.StatusTaken
		case key.Matches(msg, m.keys.Skip):
			decision = models.StatusSkipped
		}
		if decision != "" {
			if d, ok := m.Selected(); ok && d.Event.Status == models.StatusPending {
				id := d.Event.ID
				return m, func() tea.Msg { return ActMsg{ID: id, Decision: decision} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return "\n  No doses scheduled today.\n  Add a medication on the Medications tab."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
