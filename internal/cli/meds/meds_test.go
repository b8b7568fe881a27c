package meds

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/pillbox/internal/cli"
	"github.com/julianstephens/pillbox/internal/storage/memory"
	"github.com/julianstephens/pillbox/internal/tracker"
)

func setupTestContext(t *testing.T) (*cli.Context, *memory.Store) {
	t.Helper()
	store := memory.New()
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	ctx := cli.NewContext(store)
	ctx.Tracker = tracker.NewService(store, tracker.WithClock(func() time.Time {
		return time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	}))
	return ctx, store
}

func addAspirin(t *testing.T, ctx *cli.Context) {
	t.Helper()
	cmd := &MedAddCmd{Name: "Aspirin", Dosage: "81 mg", Times: "20:00, 08:00", Pills: "3", PerDose: "1", Threshold: "5"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("med add failed: %v", err)
	}
}

func TestMedAddCmd(t *testing.T) {
	ctx, store := setupTestContext(t)
	addAspirin(t, ctx)

	meds, err := store.LoadMedications(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(meds) != 1 {
		t.Fatalf("medications = %+v", meds)
	}
	m := meds[0]
	if m.Name != "Aspirin" || !m.Active || m.StartDate != "2026-03-01" {
		t.Errorf("medication = %+v", m)
	}
	if strings.Join(m.Times, ",") != "08:00,20:00" {
		t.Errorf("times = %v", m.Times)
	}

	reminders, err := store.LoadReminders(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(reminders) != 2 {
		t.Errorf("reminders = %+v", reminders)
	}
}

func TestMedAddCmd_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		cmd  MedAddCmd
	}{
		{"bad pills", MedAddCmd{Name: "A", Dosage: "1", Times: "08:00", Pills: "lots", PerDose: "1", Threshold: "0"}},
		{"bad time", MedAddCmd{Name: "A", Dosage: "1", Times: "8am", Pills: "1", PerDose: "1", Threshold: "0"}},
		{"zero per dose", MedAddCmd{Name: "A", Dosage: "1", Times: "08:00", Pills: "1", PerDose: "0", Threshold: "0"}},
		{"no times", MedAddCmd{Name: "A", Dosage: "1", Times: " , ", Pills: "1", PerDose: "1", Threshold: "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, store := setupTestContext(t)
			if err := tt.cmd.Run(ctx); !errors.Is(err, tracker.ErrInvalidInput) {
				t.Fatalf("error = %v, want ErrInvalidInput", err)
			}
			if n := store.Writes("medications"); n != 0 {
				t.Errorf("invalid input caused %d writes", n)
			}
		})
	}
}

func TestMedEnableDisable(t *testing.T) {
	ctx, store := setupTestContext(t)
	addAspirin(t, ctx)
	bg := context.Background()

	if err := (&MedDisableCmd{Medication: "aspirin"}).Run(ctx); err != nil {
		t.Fatalf("disable failed: %v", err)
	}
	meds, _ := store.LoadMedications(bg)
	if meds[0].Active {
		t.Error("medication still active")
	}
	reminders, _ := store.LoadReminders(bg)
	if len(reminders) != 0 {
		t.Errorf("paused medication kept reminders: %+v", reminders)
	}

	if err := (&MedEnableCmd{Medication: meds[0].ID}).Run(ctx); err != nil {
		t.Fatalf("enable failed: %v", err)
	}
	meds, _ = store.LoadMedications(bg)
	if !meds[0].Active {
		t.Error("medication not re-enabled")
	}
}

func TestMedDeleteCmd(t *testing.T) {
	ctx, store := setupTestContext(t)
	addAspirin(t, ctx)

	old := stdin
	t.Cleanup(func() { stdin = old })

	stdin = strings.NewReader("n\n")
	if err := (&MedDeleteCmd{Medication: "Aspirin"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	meds, _ := store.LoadMedications(context.Background())
	if len(meds) != 1 {
		t.Fatal("declined delete removed the medication")
	}

	stdin = strings.NewReader("yes\n")
	if err := (&MedDeleteCmd{Medication: "Aspirin"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	meds, _ = store.LoadMedications(context.Background())
	if len(meds) != 0 {
		t.Errorf("medications after delete = %+v", meds)
	}

	if err := (&MedDeleteCmd{Medication: "Aspirin", Yes: true}).Run(ctx); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("deleting a missing medication = %v, want ErrNotFound", err)
	}
}

func TestMedRefillCmd(t *testing.T) {
	ctx, store := setupTestContext(t)
	addAspirin(t, ctx)

	if err := (&MedRefillCmd{Medication: "Aspirin", Pills: "30"}).Run(ctx); err != nil {
		t.Fatalf("refill failed: %v", err)
	}
	meds, _ := store.LoadMedications(context.Background())
	if meds[0].PillsRemaining != 33 {
		t.Errorf("pills = %v, want 33", meds[0].PillsRemaining)
	}

	if err := (&MedRefillCmd{Medication: "Aspirin", Pills: "-2"}).Run(ctx); !errors.Is(err, tracker.ErrInvalidInput) {
		t.Errorf("negative refill = %v, want ErrInvalidInput", err)
	}
}

func TestMedListAndRefillReport(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := (&MedListCmd{}).Run(ctx); err != nil {
		t.Errorf("list on empty store failed: %v", err)
	}
	addAspirin(t, ctx)
	if err := (&MedListCmd{Active: true}).Run(ctx); err != nil {
		t.Errorf("list failed: %v", err)
	}
	if err := (&RefillCmd{}).Run(ctx); err != nil {
		t.Errorf("refill report failed: %v", err)
	}
}

func TestFormatMedication(t *testing.T) {
	ctx, store := setupTestContext(t)
	addAspirin(t, ctx)
	meds, _ := store.LoadMedications(context.Background())

	out := formatMedication(meds[0])
	for _, want := range []string{"Aspirin (81 mg) [active]", "8:00 AM, 8:00 PM", "3 pills left, 1 per dose, refill at 5", "⚠ low"} {
		if !strings.Contains(out, want) {
			t.Errorf("formatMedication() missing %q:\n%s", want, out)
		}
	}
}
