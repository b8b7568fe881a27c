package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/pillbox/internal/constants"
	"github.com/julianstephens/pillbox/internal/logger"
	"github.com/julianstephens/pillbox/internal/models"
	"github.com/julianstephens/pillbox/internal/reconcile"
	"github.com/julianstephens/pillbox/internal/storage"
	"github.com/julianstephens/pillbox/internal/tracker"
	"github.com/julianstephens/pillbox/internal/tui/components/doses"
	"github.com/julianstephens/pillbox/internal/tui/components/meds"
)

// tabCount is the number of tabbed states at the start of SessionState.
const tabCount = 2

// changedMsg reports a write to the store made outside this model.
type changedMsg struct {
	key string
}

// tickMsg drives the check for the local date rolling over.
type tickMsg time.Time

type Model struct {
	ctx        context.Context
	store      storage.Provider
	engine     *reconcile.Engine
	tracker    *tracker.Service
	changes    <-chan storage.Change
	state      constants.SessionState
	keys       KeyMap
	help       help.Model
	doseList   doses.Model
	medList    meds.Model
	form       *huh.Form
	medForm    *MedicationFormModel
	refillForm *RefillFormModel
	snapshot   reconcile.State
	today      string
	banner     string
	status     string
	err        error
	selected   models.Medication // target of a pending delete or refill
	quitting   bool
	width      int
	height     int
}

// NewModel reconciles today's data and, when the store can report external
// writes, subscribes to them until ctx is cancelled.
func NewModel(ctx context.Context, store storage.Provider, engine *reconcile.Engine, svc *tracker.Service) Model {
	m := Model{
		ctx:      ctx,
		store:    store,
		engine:   engine,
		tracker:  svc,
		state:    constants.StateToday,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		doseList: doses.New(nil, 0, 0),
		medList:  meds.New(nil, 0, 0),
		width:    80,
		height:   24,
	}
	m.resize()

	if w, ok := store.(storage.Watcher); ok {
		changes, err := w.Watch(ctx)
		if err != nil {
			logger.Warn("Store changes will not refresh the view", "error", err)
		} else {
			m.changes = changes
		}
	}

	m.refresh()
	return m
}

// refresh runs a reconciliation pass and reloads both lists from its result.
// On failure the previous snapshot stays on screen.
func (m *Model) refresh() {
	m.today = m.tracker.Today()
	st, err := m.engine.Run(m.ctx, m.today)
	if err != nil {
		logger.Error("Reconciliation failed", "error", err)
		m.err = err
		return
	}
	m.err = nil
	m.snapshot = st
	m.doseList.SetDoses(tracker.TodaysDoses(st, m.today))
	m.medList.SetMedications(st.Medications)

	limit := constants.DefaultRefillBannerLimit
	if settings, err := m.store.GetSettings(m.ctx); err == nil {
		limit = settings.RefillBannerLimit
	}
	m.banner = tracker.RefillBanner(st.Medications, limit)
}

func (m *Model) resize() {
	w, h := docStyle.GetFrameSize()
	// tabs, banner, status and help lines
	height := m.height - h - 4
	if height < 1 {
		height = 1
	}
	m.doseList.SetSize(m.width-w, height)
	m.medList.SetSize(m.width-w, height)
}

func waitForChange(changes <-chan storage.Change) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		c, ok := <-changes
		if !ok {
			return nil
		}
		return changedMsg{key: c.Key}
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) ShortHelp() []key.Binding {
	switch m.state {
	case constants.StateToday:
		dk := m.doseList.Keys()
		return []key.Binding{m.keys.Tab, dk.Take, dk.Skip, m.keys.Help, m.keys.Quit}
	case constants.StateMedications:
		mk := m.medList.Keys()
		return []key.Binding{m.keys.Tab, mk.Add, mk.Toggle, mk.Refill, mk.Delete, m.keys.Help, m.keys.Quit}
	case constants.StateConfirmDelete:
		return []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return nil
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	switch m.state {
	case constants.StateToday:
		dk := m.doseList.Keys()
		actions = []key.Binding{dk.Take, dk.Skip}
	case constants.StateMedications:
		mk := m.medList.Keys()
		actions = []key.Binding{mk.Add, mk.Toggle, mk.Refill, mk.Delete}
	case constants.StateConfirmDelete:
		return [][]key.Binding{{m.keys.Confirm, m.keys.Cancel}}
	}

	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForChange(m.changes), tick())
}
