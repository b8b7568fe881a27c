package reconcile

import (
	"fmt"
	"time"

	"github.com/julianstephens/pillbox/internal/constants"
	"github.com/julianstephens/pillbox/internal/logger"
	"github.com/julianstephens/pillbox/internal/models"
	"github.com/julianstephens/pillbox/internal/utils"
)

// UpgradeLegacy converts persisted records into events. It reports whether
// any record was in the legacy shape, in which case the caller must write the
// upgraded set back. Legacy records whose instant cannot be parsed are dropped.
func UpgradeLegacy(records []models.EventRecord, loc *time.Location) ([]models.DoseEvent, bool) {
	events := make([]models.DoseEvent, 0, len(records))
	upgraded := false
	for _, r := range records {
		if r.Shape() == models.ShapeLegacy {
			upgraded = true
		}
		ev, err := r.Upgrade(loc)
		if err != nil {
			logger.Warn("Dropping unreadable dose event", "id", r.ID, "error", err)
			continue
		}
		events = append(events, ev)
	}
	return events, upgraded
}

// RemoveOrphans drops events whose medication no longer exists.
func RemoveOrphans(events []models.DoseEvent, meds []models.Medication) []models.DoseEvent {
	known := make(map[string]bool, len(meds))
	for _, m := range meds {
		known[m.ID] = true
	}
	kept := make([]models.DoseEvent, 0, len(events))
	for _, ev := range events {
		if known[ev.MedicationID] {
			kept = append(kept, ev)
		}
	}
	return kept
}

// Dedupe keeps exactly one event per identity key. Survivors appear in the
// order their key was first seen.
func Dedupe(events []models.DoseEvent) []models.DoseEvent {
	index := make(map[models.DoseKey]int, len(events))
	kept := make([]models.DoseEvent, 0, len(events))
	for _, ev := range events {
		i, seen := index[ev.Key()]
		if !seen {
			index[ev.Key()] = len(kept)
			kept = append(kept, ev)
			continue
		}
		if supersedes(ev, kept[i]) {
			kept[i] = ev
		}
	}
	return kept
}

// supersedes reports whether candidate replaces current for the same key.
// Acted beats pending; between two acted events the later actedAt wins; any
// remaining tie goes to the later-encountered candidate.
func supersedes(candidate, current models.DoseEvent) bool {
	switch {
	case candidate.IsActed() && !current.IsActed():
		return true
	case !candidate.IsActed() && current.IsActed():
		return false
	case candidate.IsActed() && current.IsActed():
		return !candidate.ActedAt.Before(*current.ActedAt)
	default:
		return true
	}
}

// Prune keeps only events dated today or yesterday.
func Prune(events []models.DoseEvent, today string) ([]models.DoseEvent, error) {
	window := make(map[string]bool, constants.RetentionDays)
	for i := 0; i < constants.RetentionDays; i++ {
		day, err := utils.AddDays(today, -i)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", today, err)
		}
		window[day] = true
	}

	kept := make([]models.DoseEvent, 0, len(events))
	for _, ev := range events {
		if window[ev.LocalDate] {
			kept = append(kept, ev)
		}
	}
	return kept, nil
}
