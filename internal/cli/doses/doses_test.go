package doses

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/pillbox/internal/cli"
	"github.com/julianstephens/pillbox/internal/models"
	"github.com/julianstephens/pillbox/internal/reconcile"
	"github.com/julianstephens/pillbox/internal/storage/memory"
	"github.com/julianstephens/pillbox/internal/tracker"
)

func setupTestContext(t *testing.T) (*cli.Context, *memory.Store) {
	t.Helper()
	store := memory.New()
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	ctx := cli.NewContext(store)
	ctx.Now = func() time.Time { return now }
	ctx.Tracker = tracker.NewService(store, tracker.WithClock(ctx.Now))

	_, err := ctx.Tracker.AddMedication(context.Background(), tracker.MedicationInput{
		Name:            "Aspirin",
		DosageText:      "81 mg",
		Times:           []string{"20:00", "08:00"},
		PillsRemaining:  10,
		PillsPerDose:    1,
		RefillThreshold: 9,
	})
	if err != nil {
		t.Fatalf("failed to add medication: %v", err)
	}
	return ctx, store
}

func eventStatuses(t *testing.T, store *memory.Store) map[string]models.DoseStatus {
	t.Helper()
	records, err := store.LoadEvents(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	out := make(map[string]models.DoseStatus, len(records))
	for _, r := range records {
		out[r.LocalTime] = r.Status
	}
	return out
}

func TestTodayCmd_GeneratesEvents(t *testing.T) {
	ctx, store := setupTestContext(t)

	if err := (&TodayCmd{}).Run(ctx); err != nil {
		t.Fatalf("today failed: %v", err)
	}
	got := eventStatuses(t, store)
	if len(got) != 2 || got["08:00"] != models.StatusPending || got["20:00"] != models.StatusPending {
		t.Errorf("events = %v", got)
	}
}

func TestTakeCmd(t *testing.T) {
	ctx, store := setupTestContext(t)
	bg := context.Background()

	if err := (&TakeCmd{Dose: "1"}).Run(ctx); err != nil {
		t.Fatalf("take failed: %v", err)
	}
	if got := eventStatuses(t, store); got["08:00"] != models.StatusTaken || got["20:00"] != models.StatusPending {
		t.Errorf("events after take = %v", got)
	}
	meds, err := store.LoadMedications(bg)
	if err != nil {
		t.Fatal(err)
	}
	if meds[0].PillsRemaining != 9 {
		t.Errorf("pills remaining = %v, want 9", meds[0].PillsRemaining)
	}

	// Taking the same dose again changes nothing.
	if err := (&TakeCmd{Dose: "1"}).Run(ctx); err != nil {
		t.Fatalf("second take failed: %v", err)
	}
	meds, _ = store.LoadMedications(bg)
	if meds[0].PillsRemaining != 9 {
		t.Errorf("pills remaining after repeat = %v, want 9", meds[0].PillsRemaining)
	}
}

func TestSkipCmd(t *testing.T) {
	ctx, store := setupTestContext(t)

	if err := (&SkipCmd{Dose: "2"}).Run(ctx); err != nil {
		t.Fatalf("skip failed: %v", err)
	}
	if got := eventStatuses(t, store); got["20:00"] != models.StatusSkipped {
		t.Errorf("events after skip = %v", got)
	}
	meds, _ := store.LoadMedications(context.Background())
	if meds[0].PillsRemaining != 10 {
		t.Errorf("skip changed inventory to %v", meds[0].PillsRemaining)
	}
}

func TestTakeCmd_UnknownDose(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := (&TakeCmd{Dose: "7"}).Run(ctx); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("take error = %v, want ErrNotFound", err)
	}
}

func TestTodayCmd_LoadFailure(t *testing.T) {
	ctx, store := setupTestContext(t)
	store.FailGet["events"] = errors.New("disk on fire")
	if err := (&TodayCmd{}).Run(ctx); !errors.Is(err, reconcile.ErrLoadFailed) {
		t.Errorf("today error = %v, want ErrLoadFailed", err)
	}
}
