package tracker

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/julianstephens/pillbox/internal/logger"
	"github.com/julianstephens/pillbox/internal/models"
	"github.com/julianstephens/pillbox/internal/reconcile"
)

// Dose pairs a dose event with its medication for display.
type Dose struct {
	Event      models.DoseEvent
	Medication models.Medication
}

// TodaysDoses lists the events dated today in local time order. Events whose
// medication is missing are skipped.
func TodaysDoses(state reconcile.State, today string) []Dose {
	byID := models.IndexMedications(state.Medications)
	var doses []Dose
	for _, ev := range state.Events {
		if ev.LocalDate != today {
			continue
		}
		med, ok := byID[ev.MedicationID]
		if !ok {
			continue
		}
		doses = append(doses, Dose{Event: ev, Medication: med})
	}
	sort.SliceStable(doses, func(i, j int) bool {
		return doses[i].Event.LocalTime < doses[j].Event.LocalTime
	})
	return doses
}

// ResolveDose finds a dose by event id or by its 1-based position in doses.
func ResolveDose(doses []Dose, ref string) (Dose, error) {
	ref = strings.TrimSpace(ref)
	for _, d := range doses {
		if d.Event.ID == ref {
			return d, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(doses) {
			return Dose{}, fmt.Errorf("%w: dose #%d (today has %d)", ErrNotFound, n, len(doses))
		}
		return doses[n-1], nil
	}
	return Dose{}, fmt.Errorf("%w: dose event %s", ErrNotFound, ref)
}

// Act records decision on the event with eventID and persists the events and,
// for a taken dose, the decremented inventory. Acting on an event that is no
// longer pending leaves state untouched. On any save failure the input state
// is returned and the event write is rolled back.
func (s *Service) Act(ctx context.Context, state reconcile.State, eventID string, decision models.DoseStatus) (reconcile.State, error) {
	if !decision.IsTerminal() {
		return state, invalid("decision must be %s or %s", models.StatusTaken, models.StatusSkipped)
	}

	idx := -1
	for i, ev := range state.Events {
		if ev.ID == eventID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return state, fmt.Errorf("%w: dose event %s", ErrNotFound, eventID)
	}

	current := state.Events[idx]
	if current.Status != models.StatusPending {
		logger.Debug("Ignoring action on settled dose", "id", eventID, "status", current.Status)
		return state, nil
	}

	var pillsPerDose float64
	medIdx := -1
	for i, m := range state.Medications {
		if m.ID == current.MedicationID {
			medIdx = i
			pillsPerDose = m.PillsPerDose
			break
		}
	}

	now := s.now()
	updated, delta := current.Act(decision, pillsPerDose, now)

	events := make([]models.DoseEvent, len(state.Events))
	copy(events, state.Events)
	events[idx] = updated
	if err := s.store.SaveEvents(ctx, events); err != nil {
		return state, err
	}

	meds := state.Medications
	if delta > 0 && medIdx >= 0 {
		meds = make([]models.Medication, len(state.Medications))
		copy(meds, state.Medications)
		meds[medIdx] = meds[medIdx].Consume(delta, now)
		if err := s.store.SaveMedications(ctx, meds); err != nil {
			// Put the events back so a taken dose never lands without its decrement.
			if rerr := s.store.SaveEvents(ctx, state.Events); rerr != nil {
				logger.Error("Failed to roll back dose event", "id", eventID, "error", rerr)
			}
			return state, err
		}
	}

	logger.Info("Recorded dose", "id", eventID, "status", decision)
	return reconcile.State{Medications: meds, Events: events}, nil
}

// LowStock returns active medications at or below their refill threshold,
// fewest pills first.
func LowStock(meds []models.Medication) []models.Medication {
	var low []models.Medication
	for _, m := range meds {
		if m.Active && finite(m.PillsRemaining) && finite(m.RefillThreshold) && m.IsLowStock() {
			low = append(low, m)
		}
	}
	sort.SliceStable(low, func(i, j int) bool {
		return low[i].PillsRemaining < low[j].PillsRemaining
	})
	return low
}

// FormatPills renders an inventory amount without trailing zeros.
func FormatPills(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RefillBanner summarizes low-stock medications, naming at most limit of them.
// It returns "" when nothing is low.
func RefillBanner(meds []models.Medication, limit int) string {
	low := LowStock(meds)
	if len(low) == 0 {
		return ""
	}
	if limit < 1 {
		limit = 1
	}

	shown := low
	if len(shown) > limit {
		shown = shown[:limit]
	}
	parts := make([]string, 0, len(shown)+1)
	for _, m := range shown {
		parts = append(parts, fmt.Sprintf("%s: %s pills left", m.Name, FormatPills(m.PillsRemaining)))
	}
	if extra := len(low) - len(shown); extra > 0 {
		parts = append(parts, fmt.Sprintf("+%d more", extra))
	}
	return strings.Join(parts, " • ")
}
