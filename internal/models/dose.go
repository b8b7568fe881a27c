package models

import (
	"time"
)

// DoseStatus is the lifecycle state of a dose event.
type DoseStatus string

const (
	StatusPending DoseStatus = "PENDING"
	StatusTaken   DoseStatus = "TAKEN"
	StatusSkipped DoseStatus = "SKIPPED"
)

// IsTerminal reports whether s is TAKEN or SKIPPED.
func (s DoseStatus) IsTerminal() bool {
	return s == StatusTaken || s == StatusSkipped
}

// DoseKey is the identity of a dose event: one medication at one local time on one local date.
type DoseKey struct {
	MedicationID string
	LocalDate    string
	LocalTime    string
}

// DoseEvent is one scheduled occurrence of one medication.
type DoseEvent struct {
	ID           string
	MedicationID string
	ScheduledAt  time.Time
	LocalDate    string // YYYY-MM-DD
	LocalTime    string // HH:MM
	Status       DoseStatus
	ActedAt      *time.Time
}

// Key returns the identity key of the event.
func (e DoseEvent) Key() DoseKey {
	return DoseKey{MedicationID: e.MedicationID, LocalDate: e.LocalDate, LocalTime: e.LocalTime}
}

// IsActed reports whether the event carries an acted timestamp.
func (e DoseEvent) IsActed() bool {
	return e.ActedAt != nil && !e.ActedAt.IsZero()
}

// Act moves a PENDING event to the terminal decision and returns the number of
// pills the owning medication must give up. Acting on a non-pending event, or
// with a non-terminal decision, returns the event unchanged and zero.
func (e DoseEvent) Act(decision DoseStatus, pillsPerDose float64, now time.Time) (DoseEvent, float64) {
	if e.Status != StatusPending || !decision.IsTerminal() {
		return e, 0
	}
	acted := now
	e.Status = decision
	e.ActedAt = &acted
	if decision == StatusTaken && pillsPerDose > 0 {
		return e, pillsPerDose
	}
	return e, 0
}
