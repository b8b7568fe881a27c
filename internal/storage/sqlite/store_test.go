package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/pillbox/internal/models"
	"github.com/julianstephens/pillbox/internal/storage"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "pillbox.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoadNotInitialized(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); !errors.Is(err, storage.ErrNotInitialized) {
		t.Errorf("Load() error = %v, want ErrNotInitialized", err)
	}
}

func TestGetBeforeLoad(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "pillbox.db"))
	if _, err := store.Get(context.Background(), "medications"); !errors.Is(err, storage.ErrNotLoaded) {
		t.Errorf("Get() error = %v, want ErrNotLoaded", err)
	}
}

func TestInitWritesDefaultSettings(t *testing.T) {
	store := setupTestStore(t)

	settings, err := store.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings != models.DefaultSettings() {
		t.Errorf("settings = %+v, want defaults", settings)
	}
}

func TestInitIsRepeatable(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	custom := models.DefaultSettings()
	custom.RefillBannerLimit = 5
	if err := store.SaveSettings(ctx, custom); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	if err := store.Init(); err != nil {
		t.Fatalf("second Init failed: %v", err)
	}

	settings, err := store.GetSettings(ctx)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings.RefillBannerLimit != 5 {
		t.Errorf("Init overwrote settings: %+v", settings)
	}
}

func TestKVMissingKey(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.Get(context.Background(), "nothing"); !errors.Is(err, storage.ErrKeyNotFound) {
		t.Errorf("Get() error = %v, want ErrKeyNotFound", err)
	}
}

func TestCollectionsPersistAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pillbox.db")
	ctx := context.Background()

	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	meds := []models.Medication{{
		ID:              "m1",
		Name:            "Lisinopril",
		DosageText:      "10 mg",
		Times:           []string{"08:00"},
		StartDate:       "2024-03-10",
		Active:          true,
		PillsRemaining:  30,
		PillsPerDose:    1,
		RefillThreshold: 5,
		UpdatedAt:       1710057600000,
	}}
	at := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	events := []models.DoseEvent{{
		ID:           "e1",
		MedicationID: "m1",
		ScheduledAt:  at,
		LocalDate:    "2024-03-10",
		LocalTime:    "08:00",
		Status:       models.StatusPending,
	}}

	if err := store.SaveMedications(ctx, meds); err != nil {
		t.Fatalf("SaveMedications failed: %v", err)
	}
	if err := store.SaveEvents(ctx, events); err != nil {
		t.Fatalf("SaveEvents failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer reopened.Close()

	gotMeds, err := reopened.LoadMedications(ctx)
	if err != nil {
		t.Fatalf("LoadMedications failed: %v", err)
	}
	if len(gotMeds) != 1 || gotMeds[0].Name != "Lisinopril" || gotMeds[0].PillsRemaining != 30 {
		t.Errorf("medications = %+v", gotMeds)
	}

	records, err := reopened.LoadEvents(ctx)
	if err != nil {
		t.Fatalf("LoadEvents failed: %v", err)
	}
	if len(records) != 1 || records[0].Shape() != models.ShapeLocal || records[0].LocalTime != "08:00" {
		t.Errorf("events = %+v", records)
	}
}

func TestSaveReplacesCollection(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.SaveReminders(ctx, []models.Reminder{{MedicationID: "a", Time: "08:00"}, {MedicationID: "b", Time: "09:00"}}); err != nil {
		t.Fatalf("SaveReminders failed: %v", err)
	}
	if err := store.SaveReminders(ctx, []models.Reminder{{MedicationID: "c", Time: "10:00"}}); err != nil {
		t.Fatalf("SaveReminders failed: %v", err)
	}

	reminders, err := store.LoadReminders(ctx)
	if err != nil {
		t.Fatalf("LoadReminders failed: %v", err)
	}
	if len(reminders) != 1 || reminders[0].MedicationID != "c" {
		t.Errorf("reminders = %+v, want only c", reminders)
	}
}

func TestRunMigrationsUpToDate(t *testing.T) {
	store := setupTestStore(t)
	count, err := store.RunMigrations(nil)
	if err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no pending migrations after Init, got %d", count)
	}
}

func TestSchemaVersion(t *testing.T) {
	store := setupTestStore(t)
	current, latest, err := store.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if current != latest || latest < 1 {
		t.Errorf("SchemaVersion() = %d, %d; want equal and at least 1", current, latest)
	}

	var _ storage.Migrator = store
}
