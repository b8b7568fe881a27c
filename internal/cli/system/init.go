package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/julianstephens/pillbox/internal/cli"
	"github.com/julianstephens/pillbox/internal/reconcile"
	"github.com/julianstephens/pillbox/internal/storage"
	"github.com/julianstephens/pillbox/internal/storage/diskv"
	"github.com/julianstephens/pillbox/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing local storage before initialization."`
	Source string `help:"Source database path, dir:// directory or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized pillbox storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyFrom(context.Background(), ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migration completed successfully!")
	}
	return nil
}

// reset deletes the local database file or data directory.
func (c *InitCmd) reset(ctx *cli.Context) error {
	var target string
	switch ctx.Store.(type) {
	case *sqlite.Store:
		target = ctx.Store.GetConfigPath()
	case *diskv.Store:
		target, _ = diskv.ConfigPath(ctx.Store.GetConfigPath())
	default:
		return errors.New("--force is only supported for SQLite and dir:// storage")
	}

	if c.Source != "" {
		absTarget, err := filepath.Abs(target)
		if err == nil {
			target = absTarget
		}
		src := c.Source
		if dir, ok := diskv.ConfigPath(src); ok {
			src = dir
		}
		if absSource, err := filepath.Abs(src); err == nil && absSource == target {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", target)
		}
	}

	if _, err := os.Stat(target); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to access existing storage: %w", err)
	}
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing storage: %w", err)
	}
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("failed to delete existing storage: %w", err)
	}
	fmt.Printf("Deleted existing storage at: %s\n", target)
	return nil
}

func (c *InitCmd) copyFrom(ctx context.Context, appCtx *cli.Context) error {
	source, err := cli.OpenStore(c.Source)
	if err != nil {
		return err
	}
	if err := source.Load(); err != nil {
		return fmt.Errorf("failed to load source storage: %w", err)
	}
	defer source.Close()
	return CopyData(ctx, source, appCtx.Store, appCtx.Scheduler.Location())
}

// CopyData replaces every collection in dst with the contents of src.
// Legacy event records are upgraded on the way.
func CopyData(ctx context.Context, src, dst storage.Provider, loc *time.Location) error {
	fmt.Println("  Copying settings...")
	settings, err := src.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := dst.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	fmt.Println("  Copying medications...")
	meds, err := src.LoadMedications(ctx)
	if err != nil {
		return fmt.Errorf("failed to get medications from source: %w", err)
	}
	if err := dst.SaveMedications(ctx, meds); err != nil {
		return fmt.Errorf("failed to save medications: %w", err)
	}
	fmt.Printf("    Copied %d medications\n", len(meds))

	fmt.Println("  Copying dose events...")
	records, err := src.LoadEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to get dose events from source: %w", err)
	}
	events, _ := reconcile.UpgradeLegacy(records, loc)
	if err := dst.SaveEvents(ctx, events); err != nil {
		return fmt.Errorf("failed to save dose events: %w", err)
	}
	fmt.Printf("    Copied %d dose events\n", len(events))

	fmt.Println("  Copying reminders...")
	reminders, err := src.LoadReminders(ctx)
	if err != nil {
		return fmt.Errorf("failed to get reminders from source: %w", err)
	}
	if err := dst.SaveReminders(ctx, reminders); err != nil {
		return fmt.Errorf("failed to save reminders: %w", err)
	}
	fmt.Printf("    Copied %d reminders\n", len(reminders))
	return nil
}
