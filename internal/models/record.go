package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/pillbox/internal/utils"
)

// RecordShape discriminates the persisted dose event layouts.
type RecordShape int

const (
	// ShapeLegacy records only carry the absolute scheduledAt instant.
	ShapeLegacy RecordShape = iota
	// ShapeLocal records carry explicit localDate and localTime fields.
	ShapeLocal
)

// EventRecord is the persisted form of a DoseEvent. Older records lack
// localDate/localTime and must be upgraded before use. ActedAt stays a plain
// string so one blank or malformed value cannot fail the whole document.
type EventRecord struct {
	ID           string     `json:"id"`
	MedicationID string     `json:"medicationId"`
	ScheduledAt  string     `json:"scheduledAt"` // RFC3339 instant
	LocalDate    string     `json:"localDate,omitempty"`
	LocalTime    string     `json:"localTime,omitempty"`
	Status       DoseStatus `json:"status"`
	ActedAt      string     `json:"actedAt,omitempty"` // RFC3339 instant
}

// parseActedAt reads an actedAt value. Empty or unparseable values are
// treated as absent.
func parseActedAt(s string) *time.Time {
	if s == "" {
		return nil
	}
	at, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &at
}

// Shape reports which layout the record was written with.
func (r EventRecord) Shape() RecordShape {
	if r.LocalDate != "" && r.LocalTime != "" {
		return ShapeLocal
	}
	return ShapeLegacy
}

// Upgrade converts the record into a DoseEvent. Legacy records derive their
// local date and time from scheduledAt in loc. Records already in the local
// shape keep their fields unchanged.
func (r EventRecord) Upgrade(loc *time.Location) (DoseEvent, error) {
	ev := DoseEvent{
		ID:           r.ID,
		MedicationID: r.MedicationID,
		LocalDate:    r.LocalDate,
		LocalTime:    r.LocalTime,
		Status:       r.Status,
		ActedAt:      parseActedAt(r.ActedAt),
	}
	if ev.Status == "" {
		ev.Status = StatusPending
	}

	at, err := time.Parse(time.RFC3339Nano, r.ScheduledAt)
	if err != nil {
		if r.Shape() == ShapeLegacy {
			return DoseEvent{}, fmt.Errorf("dose event %s: invalid scheduledAt %q: %w", r.ID, r.ScheduledAt, err)
		}
		// The local fields are authoritative; rebuild the instant from them.
		date, derr := utils.CombineDateAndTime(r.LocalDate, r.LocalTime, loc)
		if derr != nil {
			return DoseEvent{}, fmt.Errorf("dose event %s: invalid local date/time: %w", r.ID, derr)
		}
		at = date
	}
	ev.ScheduledAt = at.UTC()

	if r.Shape() == ShapeLegacy {
		local := at.In(loc)
		ev.LocalDate = utils.ToISODate(local)
		ev.LocalTime = utils.ToHHMM(local)
	}
	return ev, nil
}

// ToRecord converts a DoseEvent into its persisted form.
func (e DoseEvent) ToRecord() EventRecord {
	r := EventRecord{
		ID:           e.ID,
		MedicationID: e.MedicationID,
		ScheduledAt:  e.ScheduledAt.UTC().Format(time.RFC3339Nano),
		LocalDate:    e.LocalDate,
		LocalTime:    e.LocalTime,
		Status:       e.Status,
	}
	if e.IsActed() {
		r.ActedAt = e.ActedAt.Format(time.RFC3339Nano)
	}
	return r
}

// ToRecords converts a slice of events into persisted records.
func ToRecords(events []DoseEvent) []EventRecord {
	records := make([]EventRecord, len(events))
	for i, e := range events {
		records[i] = e.ToRecord()
	}
	return records
}
