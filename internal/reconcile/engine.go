// Package reconcile turns the persisted medication and dose event collections
// into today's consistent state.
package reconcile

import (
	"context"
	"fmt"

	apperrors "github.com/julianstephens/pillbox/internal/errors"
	"github.com/julianstephens/pillbox/internal/logger"
	"github.com/julianstephens/pillbox/internal/models"
	"github.com/julianstephens/pillbox/internal/scheduler"
	"github.com/julianstephens/pillbox/internal/storage"
	"github.com/julianstephens/pillbox/internal/utils"
)

// ErrLoadFailed is returned, wrapping the cause, when any gateway call fails.
var ErrLoadFailed = apperrors.ErrLoadFailed

// State is the reconciled view handed to the shell. The shell owns it; the
// engine keeps no copy between passes.
type State struct {
	Medications []models.Medication
	Events      []models.DoseEvent
}

// Engine runs the load-time reconciliation pass.
type Engine struct {
	store     storage.Gateway
	scheduler *scheduler.Scheduler
}

func New(store storage.Gateway, sched *scheduler.Scheduler) *Engine {
	if sched == nil {
		sched = scheduler.New()
	}
	return &Engine{store: store, scheduler: sched}
}

func loadFailed(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrLoadFailed, op, err)
}

// Run loads both collections, upgrades legacy records, drops orphans and
// duplicates, prunes to the retention window and fills today's gaps. Each
// stage persists only when it changed something, so a second Run on the same
// day writes nothing. A gateway failure aborts the pass; no later write is
// attempted.
func (e *Engine) Run(ctx context.Context, today string) (State, error) {
	if !utils.ValidateDateFormat(today) {
		return State{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", today)
	}

	meds, err := e.store.LoadMedications(ctx)
	if err != nil {
		return State{}, loadFailed("load medications", err)
	}
	records, err := e.store.LoadEvents(ctx)
	if err != nil {
		return State{}, loadFailed("load events", err)
	}

	upgraded, migrated := UpgradeLegacy(records, e.scheduler.Location())
	if migrated {
		logger.Debug("Writing back upgraded dose events", "count", len(upgraded))
		if err := e.store.SaveEvents(ctx, upgraded); err != nil {
			return State{}, loadFailed("save upgraded events", err)
		}
	}

	events := RemoveOrphans(upgraded, meds)
	events = Dedupe(events)
	events, err = Prune(events, today)
	if err != nil {
		return State{}, err
	}

	if len(events) != len(upgraded) {
		logger.Debug("Writing pruned dose events", "before", len(upgraded), "after", len(events))
		if err := e.store.SaveEvents(ctx, events); err != nil {
			return State{}, loadFailed("save pruned events", err)
		}
	}

	created := e.scheduler.Generate(today, meds, events)
	if len(created) > 0 {
		events = append(events, created...)
		logger.Debug("Writing generated dose events", "created", len(created), "total", len(events))
		if err := e.store.SaveEvents(ctx, events); err != nil {
			return State{}, loadFailed("save generated events", err)
		}
	}

	return State{Medications: meds, Events: events}, nil
}
