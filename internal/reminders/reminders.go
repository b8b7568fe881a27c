// Package reminders keeps the set of daily dose reminders in step with the
// medication list and decides which of them are due.
package reminders

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/pillbox/internal/logger"
	"github.com/julianstephens/pillbox/internal/models"
	"github.com/julianstephens/pillbox/internal/utils"
)

// Store is the reminder persistence the scheduler needs.
type Store interface {
	LoadReminders(ctx context.Context) ([]models.Reminder, error)
	SaveReminders(ctx context.Context, reminders []models.Reminder) error
}

type Scheduler struct {
	store Store
}

func New(store Store) *Scheduler {
	return &Scheduler{store: store}
}

type reminderKey struct {
	medicationID string
	time         string
}

// Reschedule cancels every registered reminder and registers one per active
// medication and valid time. Malformed times are skipped. A reminder that
// survives a reschedule keeps its last-sent date so it does not fire twice.
func (s *Scheduler) Reschedule(ctx context.Context, meds []models.Medication) ([]models.Reminder, error) {
	previous, err := s.store.LoadReminders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reminders: %w", err)
	}
	sent := make(map[reminderKey]string, len(previous))
	for _, r := range previous {
		sent[reminderKey{r.MedicationID, r.Time}] = r.LastSentDate
	}

	reminders := []models.Reminder{}
	for _, med := range meds {
		if !med.Active {
			continue
		}
		for _, t := range utils.NormalizeTimes(med.Times) {
			if !utils.ValidateTimeFormat(t) {
				logger.Warn("Skipping reminder with malformed time", "medication", med.ID, "time", t)
				continue
			}
			reminders = append(reminders, models.Reminder{
				MedicationID: med.ID,
				Name:         med.Name,
				DosageText:   med.DosageText,
				Time:         t,
				LastSentDate: sent[reminderKey{med.ID, t}],
			})
		}
	}

	if err := s.store.SaveReminders(ctx, reminders); err != nil {
		return nil, fmt.Errorf("failed to save reminders: %w", err)
	}
	logger.Debug("Rescheduled reminders", "count", len(reminders))
	return reminders, nil
}

// Due returns the reminders whose time has arrived within the last grace
// minutes of now and that have not been sent today.
func (s *Scheduler) Due(ctx context.Context, now time.Time, graceMin int) ([]models.Reminder, error) {
	reminders, err := s.store.LoadReminders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reminders: %w", err)
	}
	if graceMin < 1 {
		graceMin = 1
	}

	today := utils.ToISODate(now)
	current := now.Hour()*60 + now.Minute()

	var due []models.Reminder
	for _, r := range reminders {
		if r.LastSentDate == today {
			continue
		}
		at, err := utils.ParseTimeToMinutes(r.Time)
		if err != nil {
			continue
		}
		if late := current - at; late >= 0 && late < graceMin {
			due = append(due, r)
		}
	}
	return due, nil
}

// MarkSent records that the given reminders fired on date.
func (s *Scheduler) MarkSent(ctx context.Context, sent []models.Reminder, date string) error {
	if len(sent) == 0 {
		return nil
	}
	marked := make(map[reminderKey]bool, len(sent))
	for _, r := range sent {
		marked[reminderKey{r.MedicationID, r.Time}] = true
	}

	reminders, err := s.store.LoadReminders(ctx)
	if err != nil {
		return fmt.Errorf("failed to load reminders: %w", err)
	}
	for i, r := range reminders {
		if marked[reminderKey{r.MedicationID, r.Time}] {
			reminders[i].LastSentDate = date
		}
	}
	if err := s.store.SaveReminders(ctx, reminders); err != nil {
		return fmt.Errorf("failed to save reminders: %w", err)
	}
	return nil
}

// Dispatch sends every due reminder through send and marks the delivered
// ones. A failed delivery is logged and retried on the next call while
// still inside the grace window.
func (s *Scheduler) Dispatch(ctx context.Context, now time.Time, graceMin int, send func(context.Context, models.Reminder) error) (int, error) {
	due, err := s.Due(ctx, now, graceMin)
	if err != nil {
		return 0, err
	}

	var delivered []models.Reminder
	for _, r := range due {
		if err := send(ctx, r); err != nil {
			logger.Warn("Failed to send reminder", "medication", r.MedicationID, "time", r.Time, "error", err)
			continue
		}
		delivered = append(delivered, r)
	}

	if err := s.MarkSent(ctx, delivered, utils.ToISODate(now)); err != nil {
		return len(delivered), err
	}
	return len(delivered), nil
}
