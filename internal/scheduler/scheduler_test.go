package scheduler

import (
	"fmt"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/julianstephens/pillbox/internal/models"
	"github.com/julianstephens/pillbox/internal/utils"
)

const today = "2024-01-01"

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("ev-%d", n)
	}
}

func newTestScheduler() *Scheduler {
	return New(WithLocation(time.UTC), WithIDFunc(sequentialIDs()))
}

func keysOf(events []models.DoseEvent) []models.DoseKey {
	keys := make([]models.DoseKey, len(events))
	for i, e := range events {
		keys[i] = e.Key()
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].MedicationID != keys[j].MedicationID {
			return keys[i].MedicationID < keys[j].MedicationID
		}
		return keys[i].LocalTime < keys[j].LocalTime
	})
	return keys
}

func TestGenerateDuplicateTimesNormalized(t *testing.T) {
	med := models.Medication{
		ID:        "med1",
		Times:     utils.NormalizeTimes([]string{"08:00", "08:00", "20:00"}),
		StartDate: today,
		Active:    true,
	}
	if !reflect.DeepEqual(med.Times, []string{"08:00", "20:00"}) {
		t.Fatalf("expected normalized times [08:00 20:00], got %v", med.Times)
	}

	events := newTestScheduler().Generate(today, []models.Medication{med}, nil)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}

	// Un-normalized input still yields one event per distinct time
	med.Times = []string{"08:00", "08:00", "20:00"}
	events = newTestScheduler().Generate(today, []models.Medication{med}, nil)
	if len(events) != 2 {
		t.Fatalf("expected 2 events for duplicate times, got %d", len(events))
	}
}

func TestGenerateEventFields(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	s := New(WithLocation(loc), WithIDFunc(sequentialIDs()))
	med := models.Medication{ID: "med1", Times: []string{"08:00"}, StartDate: today, Active: true}

	events := s.Generate(today, []models.Medication{med}, nil)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.ID != "ev-1" || ev.MedicationID != "med1" || ev.LocalDate != today || ev.LocalTime != "08:00" {
		t.Errorf("unexpected event %+v", ev)
	}
	if ev.Status != models.StatusPending || ev.ActedAt != nil {
		t.Errorf("expected a fresh PENDING event, got %+v", ev)
	}
	want := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	if !ev.ScheduledAt.Equal(want) {
		t.Errorf("expected scheduledAt %v, got %v", want, ev.ScheduledAt)
	}
}

func TestGenerateSkipsInactiveAndFutureStart(t *testing.T) {
	meds := []models.Medication{
		{ID: "inactive", Times: []string{"08:00"}, StartDate: today, Active: false},
		{ID: "future", Times: []string{"08:00"}, StartDate: "2099-01-01", Active: true},
		{ID: "started", Times: []string{"09:00"}, StartDate: "2023-12-31", Active: true},
	}

	events := newTestScheduler().Generate(today, meds, nil)
	if len(events) != 1 || events[0].MedicationID != "started" {
		t.Fatalf("expected only the started medication, got %+v", events)
	}
}

func TestGenerateFutureStartForAnyEarlierDay(t *testing.T) {
	med := models.Medication{ID: "future", Times: []string{"08:00", "20:00"}, StartDate: "2099-01-01", Active: true}
	for _, day := range []string{"2024-01-01", "2098-12-31", "2000-02-29"} {
		if got := newTestScheduler().Generate(day, []models.Medication{med}, nil); len(got) != 0 {
			t.Errorf("expected no events on %s, got %d", day, len(got))
		}
	}
}

func TestGenerateSkipsExistingKeys(t *testing.T) {
	med := models.Medication{ID: "med1", Times: []string{"08:00", "20:00"}, StartDate: today, Active: true}
	existing := []models.DoseEvent{
		{ID: "old", MedicationID: "med1", LocalDate: today, LocalTime: "08:00", Status: models.StatusTaken},
		// Same time yesterday does not count for today
		{ID: "yesterday", MedicationID: "med1", LocalDate: "2023-12-31", LocalTime: "20:00", Status: models.StatusPending},
	}
	snapshot := append([]models.DoseEvent(nil), existing...)

	events := newTestScheduler().Generate(today, []models.Medication{med}, existing)
	if len(events) != 1 || events[0].LocalTime != "20:00" || events[0].LocalDate != today {
		t.Fatalf("expected only the 20:00 event for today, got %+v", events)
	}
	if !reflect.DeepEqual(existing, snapshot) {
		t.Error("Generate mutated existing events")
	}
}

func TestGenerateSkipsMalformedTimes(t *testing.T) {
	med := models.Medication{ID: "med1", Times: []string{"8am", "25:00", "09:15"}, StartDate: today, Active: true}
	events := newTestScheduler().Generate(today, []models.Medication{med}, nil)
	if len(events) != 1 || events[0].LocalTime != "09:15" {
		t.Fatalf("expected only 09:15, got %+v", events)
	}
}

func TestGenerateDeterministicKeys(t *testing.T) {
	meds := []models.Medication{
		{ID: "a", Times: []string{"07:00", "19:00"}, StartDate: today, Active: true},
		{ID: "b", Times: []string{"12:00"}, StartDate: today, Active: true},
	}
	first := New(WithLocation(time.UTC)).Generate(today, meds, nil)
	second := New(WithLocation(time.UTC)).Generate(today, meds, nil)

	if !reflect.DeepEqual(keysOf(first), keysOf(second)) {
		t.Errorf("keys differ between runs: %v vs %v", keysOf(first), keysOf(second))
	}
	if first[0].ID == second[0].ID {
		t.Error("expected fresh ids on each run")
	}
}

func TestGenerateIsIdempotentWhenFedItsOutput(t *testing.T) {
	meds := []models.Medication{{ID: "a", Times: []string{"07:00", "19:00"}, StartDate: today, Active: true}}
	s := newTestScheduler()
	first := s.Generate(today, meds, nil)
	if again := s.Generate(today, meds, first); len(again) != 0 {
		t.Errorf("expected no new events, got %d", len(again))
	}
}
