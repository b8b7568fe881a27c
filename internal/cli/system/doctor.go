package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/julianstephens/pillbox/internal/cli"
	"github.com/julianstephens/pillbox/internal/models"
	"github.com/julianstephens/pillbox/internal/notifier"
	"github.com/julianstephens/pillbox/internal/storage"
	"github.com/julianstephens/pillbox/internal/utils"
)

// errSkipped marks a check that does not apply to the configured backend.
var errSkipped = errors.New("not applicable")

type check struct {
	name      string
	needsData bool
	warnOnly  bool
	run       func(context.Context, *cli.Context) error
}

var checks = []check{
	{name: "Schema version", needsData: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsData: true, run: checkMigrationsComplete},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Medication data", needsData: true, run: checkMedications},
	{name: "Dose events", needsData: true, warnOnly: true, run: checkEvents},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "Tray notifier", warnOnly: true, run: checkTray},
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	bg := context.Background()
	hasError := false

	reachable := true
	if err := checkStorageReachable(bg, ctx); err != nil {
		fmt.Printf("❌ Storage reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
		reachable = false
	} else {
		fmt.Printf("✓ Storage reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsData && !reachable {
			fmt.Printf("⊘ %s: SKIPPED (storage not reachable)\n", c.name)
			continue
		}
		err := c.run(bg, ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case errors.Is(err, errSkipped):
			fmt.Printf("⊘ %s: SKIPPED (%v)\n", c.name, err)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkStorageReachable(ctx context.Context, appCtx *cli.Context) error {
	if err := appCtx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	if _, err := appCtx.Store.GetSettings(ctx); err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	return nil
}

func schemaVersion(appCtx *cli.Context) (int, int, error) {
	migrator, ok := appCtx.Store.(storage.Migrator)
	if !ok {
		return 0, 0, fmt.Errorf("%w: storage has no schema", errSkipped)
	}
	return migrator.SchemaVersion()
}

func checkSchemaVersion(_ context.Context, appCtx *cli.Context) error {
	current, latest, err := schemaVersion(appCtx)
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(_ context.Context, appCtx *cli.Context) error {
	current, latest, err := schemaVersion(appCtx)
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'pillbox migrate')", current, latest)
	}
	return nil
}

func checkBackupsPresent(_ context.Context, appCtx *cli.Context) error {
	mgr, err := appCtx.BackupManager()
	if err != nil {
		return fmt.Errorf("%w: %v", errSkipped, err)
	}
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'pillbox backup create'")
	}
	return nil
}

func checkMedications(ctx context.Context, appCtx *cli.Context) error {
	meds, err := appCtx.Store.LoadMedications(ctx)
	if err != nil {
		return fmt.Errorf("failed to load medications: %w", err)
	}
	seen := make(map[string]bool, len(meds))
	for _, m := range meds {
		if seen[m.ID] {
			return fmt.Errorf("duplicate medication ID found: %s", m.ID)
		}
		seen[m.ID] = true
		if !utils.ValidateDateFormat(m.StartDate) {
			return fmt.Errorf("medication %q has invalid start date %q", m.Name, m.StartDate)
		}
		if m.PillsPerDose <= 0 {
			return fmt.Errorf("medication %q has non-positive pills per dose", m.Name)
		}
	}
	return nil
}

// checkEvents reports problems the next reconciliation pass will repair.
func checkEvents(ctx context.Context, appCtx *cli.Context) error {
	meds, err := appCtx.Store.LoadMedications(ctx)
	if err != nil {
		return fmt.Errorf("failed to load medications: %w", err)
	}
	records, err := appCtx.Store.LoadEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to load dose events: %w", err)
	}

	byID := models.IndexMedications(meds)
	keys := make(map[models.DoseKey]bool, len(records))
	var legacy, orphans, duplicates int
	for _, r := range records {
		if r.Shape() == models.ShapeLegacy {
			legacy++
		}
		ev, err := r.Upgrade(appCtx.Scheduler.Location())
		if err != nil {
			continue
		}
		if _, ok := byID[ev.MedicationID]; !ok {
			orphans++
		}
		if keys[ev.Key()] {
			duplicates++
		}
		keys[ev.Key()] = true
	}
	if legacy+orphans+duplicates > 0 {
		return fmt.Errorf("%d legacy, %d orphaned, %d duplicate event(s); run 'pillbox today' to repair", legacy, orphans, duplicates)
	}
	return nil
}

func checkClockTimezone(context.Context, *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if tz := os.Getenv("TZ"); tz != "" {
		if _, err := utils.LoadLocation(tz); err != nil {
			return fmt.Errorf("TZ=%q is not a known time zone: %w", tz, err)
		}
	}
	return nil
}

func checkTray(context.Context, *cli.Context) error {
	if err := notifier.Available(); err != nil {
		return fmt.Errorf("reminders cannot be delivered: %w", err)
	}
	return nil
}
