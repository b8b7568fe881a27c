// Package tracker implements the user actions on medications and dose events.
package tracker

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/pillbox/internal/errors"
	"github.com/julianstephens/pillbox/internal/logger"
	"github.com/julianstephens/pillbox/internal/models"
	"github.com/julianstephens/pillbox/internal/reminders"
	"github.com/julianstephens/pillbox/internal/storage"
	"github.com/julianstephens/pillbox/internal/utils"
)

var (
	ErrInvalidInput = apperrors.ErrInvalidInput
	ErrNotFound     = apperrors.ErrNotFound
)

// Store is the persistence the tracker writes through.
type Store interface {
	storage.Gateway
	reminders.Store
}

type Service struct {
	store     Store
	reminders *reminders.Scheduler
	loc       *time.Location
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func WithIDFunc(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		reminders: reminders.New(store),
		loc:       time.Local,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current local date.
func (s *Service) Today() string {
	return utils.ToISODate(s.now().In(s.loc))
}

// MedicationInput is the user-entered form of a new medication.
type MedicationInput struct {
	Name            string
	DosageText      string
	Instructions    string
	Times           []string
	PillsRemaining  float64
	PillsPerDose    float64
	RefillThreshold float64
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Validate rejects input that must never reach a Medication.
func (in MedicationInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("enter a medication name")
	}
	if strings.TrimSpace(in.DosageText) == "" {
		return invalid("enter a dosage (e.g., 50 mg)")
	}
	if len(in.Times) == 0 {
		return invalid("add at least one time")
	}
	for _, t := range in.Times {
		if !utils.ValidateTimeFormat(t) {
			return invalid("time %q must be HH:MM", t)
		}
	}
	if !finite(in.PillsRemaining) || in.PillsRemaining < 0 {
		return invalid("pills remaining must be a non-negative number")
	}
	if !finite(in.PillsPerDose) || in.PillsPerDose <= 0 {
		return invalid("pills per dose must be a positive number")
	}
	if !finite(in.RefillThreshold) || in.RefillThreshold < 0 {
		return invalid("refill threshold must be a non-negative number")
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ParseAmount parses a user-entered inventory number.
func ParseAmount(field, s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !finite(f) {
		return 0, invalid("%s must be a number, got %q", field, s)
	}
	return f, nil
}

// ParseTimes splits a comma or space separated list of HH:MM times.
func ParseTimes(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	times := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			times = append(times, f)
		}
	}
	return times
}

// Medications returns the stored medication list.
func (s *Service) Medications(ctx context.Context) ([]models.Medication, error) {
	return s.store.LoadMedications(ctx)
}

// AddMedication validates in, prepends the new medication to the list and
// reschedules reminders. The medication starts today and is active.
func (s *Service) AddMedication(ctx context.Context, in MedicationInput) (models.Medication, error) {
	if err := in.Validate(); err != nil {
		return models.Medication{}, err
	}

	meds, err := s.store.LoadMedications(ctx)
	if err != nil {
		return models.Medication{}, err
	}

	now := s.now()
	med := models.Medication{
		ID:              s.newID(),
		Name:            strings.TrimSpace(in.Name),
		DosageText:      strings.TrimSpace(in.DosageText),
		Instructions:    strings.TrimSpace(in.Instructions),
		Times:           utils.NormalizeTimes(in.Times),
		StartDate:       utils.ToISODate(now.In(s.loc)),
		Active:          true,
		PillsRemaining:  in.PillsRemaining,
		PillsPerDose:    in.PillsPerDose,
		RefillThreshold: in.RefillThreshold,
		UpdatedAt:       now.UnixMilli(),
	}

	next := append([]models.Medication{med}, meds...)
	if err := s.saveMedications(ctx, next); err != nil {
		return models.Medication{}, err
	}
	logger.Info("Added medication", "id", med.ID, "name", med.Name)
	return med, nil
}

// update applies fn to the medication with id and saves the list.
func (s *Service) update(ctx context.Context, id string, fn func(*models.Medication) error) (models.Medication, error) {
	meds, err := s.store.LoadMedications(ctx)
	if err != nil {
		return models.Medication{}, err
	}
	for i := range meds {
		if meds[i].ID != id {
			continue
		}
		if err := fn(&meds[i]); err != nil {
			return models.Medication{}, err
		}
		if err := s.saveMedications(ctx, meds); err != nil {
			return models.Medication{}, err
		}
		return meds[i], nil
	}
	return models.Medication{}, fmt.Errorf("%w: medication %s", ErrNotFound, id)
}

// ToggleActive flips whether the medication generates doses and reminders.
func (s *Service) ToggleActive(ctx context.Context, id string) (models.Medication, error) {
	return s.update(ctx, id, func(m *models.Medication) error {
		m.Active = !m.Active
		m.Touch(s.now())
		return nil
	})
}

// SetActive enables or disables a medication.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (models.Medication, error) {
	return s.update(ctx, id, func(m *models.Medication) error {
		if m.Active != active {
			m.Active = active
			m.Touch(s.now())
		}
		return nil
	})
}

// Refill adds pills to a medication's inventory.
func (s *Service) Refill(ctx context.Context, id string, pills float64) (models.Medication, error) {
	if !finite(pills) || pills <= 0 {
		return models.Medication{}, invalid("refill amount must be a positive number")
	}
	return s.update(ctx, id, func(m *models.Medication) error {
		*m = m.Restock(pills, s.now())
		return nil
	})
}

// DeleteMedication removes the medication. Its dose events are left for the
// next reconciliation pass to drop as orphans.
func (s *Service) DeleteMedication(ctx context.Context, id string) error {
	meds, err := s.store.LoadMedications(ctx)
	if err != nil {
		return err
	}
	kept := make([]models.Medication, 0, len(meds))
	for _, m := range meds {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(meds) {
		return fmt.Errorf("%w: medication %s", ErrNotFound, id)
	}
	if err := s.saveMedications(ctx, kept); err != nil {
		return err
	}
	logger.Info("Deleted medication", "id", id)
	return nil
}

func (s *Service) saveMedications(ctx context.Context, meds []models.Medication) error {
	if err := s.store.SaveMedications(ctx, meds); err != nil {
		return err
	}
	if _, err := s.reminders.Reschedule(ctx, meds); err != nil {
		// Reminders are best effort; the medication change already persisted.
		logger.Warn("Failed to reschedule reminders", "error", err)
	}
	return nil
}

// ResolveMedication finds a medication by exact id, or by a case-insensitive
// name that matches exactly one medication.
func ResolveMedication(meds []models.Medication, ref string) (models.Medication, error) {
	ref = strings.TrimSpace(ref)
	for _, m := range meds {
		if m.ID == ref {
			return m, nil
		}
	}
	var matches []models.Medication
	for _, m := range meds {
		if strings.EqualFold(m.Name, ref) {
			matches = append(matches, m)
		}
	}
	switch len(matches) {
	case 0:
		return models.Medication{}, fmt.Errorf("%w: medication %q", ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return models.Medication{}, invalid("%d medications are named %q, use the id", len(matches), ref)
	}
}
