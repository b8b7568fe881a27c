package models

import (
	"math"
	"time"
)

// Medication is a recurring prescription with daily dosing times and a pill inventory.
type Medication struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	DosageText      string   `json:"dosageText"`
	Instructions    string   `json:"instructions,omitempty"`
	Times           []string `json:"times"`     // HH:MM, deduplicated and sorted
	StartDate       string   `json:"startDate"` // YYYY-MM-DD, no doses before this date
	Active          bool     `json:"active"`
	PillsRemaining  float64  `json:"pillsRemaining"`
	PillsPerDose    float64  `json:"pillsPerDose"`
	RefillThreshold float64  `json:"refillThreshold"`
	UpdatedAt       int64    `json:"updatedAt"` // unix milliseconds
}

// IsLowStock reports whether the remaining pills are at or below the refill threshold.
func (m Medication) IsLowStock() bool {
	return m.PillsRemaining <= m.RefillThreshold
}

// Consume subtracts pills from the inventory, flooring at zero, and stamps UpdatedAt.
// Running out is recorded as zero rather than rejected.
func (m Medication) Consume(pills float64, now time.Time) Medication {
	if pills <= 0 {
		return m
	}
	m.PillsRemaining = math.Max(0, m.PillsRemaining-pills)
	m.UpdatedAt = now.UnixMilli()
	return m
}

// Restock adds pills to the inventory and stamps UpdatedAt.
func (m Medication) Restock(pills float64, now time.Time) Medication {
	m.PillsRemaining += pills
	m.UpdatedAt = now.UnixMilli()
	return m
}

// Touch stamps UpdatedAt with now.
func (m *Medication) Touch(now time.Time) {
	m.UpdatedAt = now.UnixMilli()
}

// IndexMedications builds an id lookup for a medication list.
func IndexMedications(meds []Medication) map[string]Medication {
	byID := make(map[string]Medication, len(meds))
	for _, m := range meds {
		byID[m.ID] = m
	}
	return byID
}
