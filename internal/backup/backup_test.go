package backup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/pillbox/internal/constants"
	"github.com/julianstephens/pillbox/internal/models"
	"github.com/julianstephens/pillbox/internal/storage/sqlite"
)

func setupTestDB(t *testing.T, names ...string) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "pillbox.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	defer store.Close()

	var meds []models.Medication
	for _, name := range names {
		meds = append(meds, models.Medication{ID: name, Name: name, Active: true})
	}
	if err := store.SaveMedications(context.Background(), meds); err != nil {
		t.Fatalf("SaveMedications() failed: %v", err)
	}
	return dbPath
}

func medicationNames(t *testing.T, dbPath string) []string {
	t.Helper()
	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	defer store.Close()
	meds, err := store.LoadMedications(context.Background())
	if err != nil {
		t.Fatalf("LoadMedications() failed: %v", err)
	}
	names := make([]string, len(meds))
	for i, m := range meds {
		names[i] = m.Name
	}
	return names
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t, "Aspirin")
	mgr := NewManager(dbPath)
	mgr.now = fixedClock(time.Date(2026, 3, 14, 9, 26, 53, 0, time.Local))

	path, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if want := filepath.Join(mgr.Dir(), "pillbox-20260314-092653.db"); path != want {
		t.Errorf("Create() path = %q, want %q", path, want)
	}
	if got := medicationNames(t, path); len(got) != 1 || got[0] != "Aspirin" {
		t.Errorf("backup contents = %v, want [Aspirin]", got)
	}
}

func TestCreateSameSecondAddsCounter(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = fixedClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local))

	first, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatalf("expected distinct names, both were %q", first)
	}
	if filepath.Base(second) != "pillbox-20260314-090000-1.db" {
		t.Errorf("second backup = %q", filepath.Base(second))
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 2 {
		t.Fatalf("List() returned %d backups, want 2", len(backups))
	}
	if backups[0].Path != second {
		t.Errorf("newest backup = %q, want the counter-suffixed copy", backups[0].Path)
	}
}

func TestCreateMissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(context.Background()); !errors.Is(err, ErrNoDatabase) {
		t.Errorf("Create() error = %v, want ErrNoDatabase", err)
	}
}

func TestListOrdersSameSecondByCounter(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	if err := os.MkdirAll(mgr.Dir(), 0o700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{
		"pillbox-20260314-090000.db",
		"pillbox-20260314-090000-2.db",
		"pillbox-20260314-090000-10.db",
		"pillbox-20260313-235959-3.db",
	} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"pillbox-20260314-090000-10.db",
		"pillbox-20260314-090000-2.db",
		"pillbox-20260314-090000.db",
		"pillbox-20260313-235959-3.db",
	}
	if len(backups) != len(want) {
		t.Fatalf("List() returned %d backups, want %d", len(backups), len(want))
	}
	for i, name := range want {
		if got := filepath.Base(backups[i].Path); got != name {
			t.Errorf("backups[%d] = %q, want %q", i, got, name)
		}
	}
	if backups[0].Counter != 10 || backups[2].Counter != 0 {
		t.Errorf("unexpected counters %d, %d", backups[0].Counter, backups[2].Counter)
	}
}

func TestRotateKeepsNewestSameSecondCopies(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.keep = 2
	mgr.now = fixedClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local))

	var paths []string
	for i := 0; i < 3; i++ {
		path, err := mgr.Create(context.Background())
		if err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
		paths = append(paths, path)
	}

	if _, err := os.Stat(paths[0]); !os.IsNotExist(err) {
		t.Errorf("expected oldest same-second copy %q rotated out", filepath.Base(paths[0]))
	}
	for _, p := range paths[1:] {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %q kept: %v", filepath.Base(p), err)
		}
	}

	// The rotated-out base name is not reused for a later copy
	path, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if filepath.Base(path) != "pillbox-20260314-090000-3.db" {
		t.Errorf("fourth backup = %q", filepath.Base(path))
	}
	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 2 || backups[0].Path != path {
		t.Errorf("expected newest copy listed first, got %+v", backups)
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	if err := os.MkdirAll(mgr.Dir(), 0o700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "pillbox-garbage.db", "other-20260101-000000.db"} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 0 {
		t.Errorf("List() = %v, want none", backups)
	}
}

func TestListWithoutDirectory(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "pillbox.db"))
	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if backups == nil || len(backups) != 0 {
		t.Errorf("List() = %#v, want empty slice", backups)
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	start := time.Date(2026, 1, 1, 8, 0, 0, 0, time.Local)

	for i := 0; i < constants.MaxBackups+3; i++ {
		mgr.now = fixedClock(start.AddDate(0, 0, i))
		if _, err := mgr.Create(context.Background()); err != nil {
			t.Fatalf("Create() #%d failed: %v", i, err)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != constants.MaxBackups {
		t.Fatalf("kept %d backups, want %d", len(backups), constants.MaxBackups)
	}
	oldest := backups[len(backups)-1].Timestamp
	if want := start.AddDate(0, 0, 3); !oldest.Equal(want) {
		t.Errorf("oldest kept backup = %v, want %v", oldest, want)
	}
}

func TestEnsureDaily(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	ctx := context.Background()

	mgr.now = fixedClock(time.Date(2026, 5, 1, 7, 0, 0, 0, time.Local))
	created, err := mgr.EnsureDaily(ctx)
	if err != nil || !created {
		t.Fatalf("first EnsureDaily() = %v, %v; want true, nil", created, err)
	}

	mgr.now = fixedClock(time.Date(2026, 5, 1, 22, 0, 0, 0, time.Local))
	created, err = mgr.EnsureDaily(ctx)
	if err != nil || created {
		t.Fatalf("same-day EnsureDaily() = %v, %v; want false, nil", created, err)
	}

	mgr.now = fixedClock(time.Date(2026, 5, 2, 0, 5, 0, 0, time.Local))
	created, err = mgr.EnsureDaily(ctx)
	if err != nil || !created {
		t.Fatalf("next-day EnsureDaily() = %v, %v; want true, nil", created, err)
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupTestDB(t, "Aspirin")
	mgr := NewManager(dbPath)
	ctx := context.Background()

	mgr.now = fixedClock(time.Date(2026, 2, 1, 8, 0, 0, 0, time.Local))
	snapshot, err := mgr.Create(ctx)
	if err != nil {
		t.Fatal(err)
	}

	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveMedications(ctx, []models.Medication{{ID: "m2", Name: "Metformin"}}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	mgr.now = fixedClock(time.Date(2026, 2, 1, 9, 0, 0, 0, time.Local))
	safety, err := mgr.Restore(ctx, snapshot)
	if err != nil {
		t.Fatalf("Restore() failed: %v", err)
	}
	if safety == "" {
		t.Fatal("Restore() did not report a safety backup")
	}

	if got := medicationNames(t, dbPath); len(got) != 1 || got[0] != "Aspirin" {
		t.Errorf("restored contents = %v, want [Aspirin]", got)
	}
	if got := medicationNames(t, safety); len(got) != 1 || got[0] != "Metformin" {
		t.Errorf("safety backup contents = %v, want [Metformin]", got)
	}
	if _, err := os.Stat(dbPath + ".restore.tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Error("temporary restore file was left behind")
	}
}

func TestRestoreRejectsInvalidBackup(t *testing.T) {
	dbPath := setupTestDB(t, "Aspirin")
	mgr := NewManager(dbPath)

	bogus := filepath.Join(t.TempDir(), "pillbox-20260101-000000.db")
	if err := os.WriteFile(bogus, []byte("not a database"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Restore(context.Background(), bogus); err == nil {
		t.Fatal("Restore() accepted a corrupt file")
	}
	if _, err := mgr.Restore(context.Background(), filepath.Join(t.TempDir(), "nope.db")); err == nil {
		t.Fatal("Restore() accepted a missing file")
	}
	if got := medicationNames(t, dbPath); len(got) != 1 || got[0] != "Aspirin" {
		t.Errorf("database changed after failed restore: %v", got)
	}
}

func TestResolve(t *testing.T) {
	mgr := NewManager("/data/pillbox.db")
	if got, want := mgr.Resolve("pillbox-20260101-000000.db"), filepath.Join("/data", "backups", "pillbox-20260101-000000.db"); got != want {
		t.Errorf("Resolve(name) = %q, want %q", got, want)
	}
	abs := filepath.Join("/tmp", "x.db")
	if got := mgr.Resolve(abs); got != abs {
		t.Errorf("Resolve(path) = %q, want unchanged", got)
	}
}
