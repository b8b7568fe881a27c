package scheduler

import (
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/pillbox/internal/logger"
	"github.com/julianstephens/pillbox/internal/models"
	"github.com/julianstephens/pillbox/internal/utils"
)

// Scheduler produces the dose events needed to cover a day.
type Scheduler struct {
	loc   *time.Location
	newID func() string
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLocation sets the location used to turn local date/time pairs into instants.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithIDFunc overrides event id generation.
func WithIDFunc(fn func() string) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		loc:   time.Local,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the location the scheduler generates instants in.
func (s *Scheduler) Location() *time.Location {
	return s.loc
}

// Generate returns the PENDING events missing from existing for today.
// It only reads its arguments; today is always supplied by the caller so that
// repeated calls on the same day produce the same keys.
func (s *Scheduler) Generate(today string, meds []models.Medication, existing []models.DoseEvent) []models.DoseEvent {
	have := make(map[models.DoseKey]bool, len(existing))
	for _, e := range existing {
		have[e.Key()] = true
	}

	var created []models.DoseEvent
	for _, med := range meds {
		if !med.Active || med.StartDate > today {
			continue
		}

		for _, t := range utils.NormalizeTimes(med.Times) {
			key := models.DoseKey{MedicationID: med.ID, LocalDate: today, LocalTime: t}
			if have[key] {
				continue
			}

			at, err := utils.CombineDateAndTime(today, t, s.loc)
			if err != nil {
				logger.Warn("Skipping malformed dose time", "medication", med.ID, "time", t, "error", err)
				continue
			}

			created = append(created, models.DoseEvent{
				ID:           s.newID(),
				MedicationID: med.ID,
				ScheduledAt:  at.UTC(),
				LocalDate:    today,
				LocalTime:    t,
				Status:       models.StatusPending,
			})
			have[key] = true
		}
	}

	return created
}
