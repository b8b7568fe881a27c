package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/pillbox/internal/cli"
	"github.com/julianstephens/pillbox/internal/cli/backups"
	"github.com/julianstephens/pillbox/internal/cli/doses"
	"github.com/julianstephens/pillbox/internal/cli/meds"
	"github.com/julianstephens/pillbox/internal/cli/settings"
	"github.com/julianstephens/pillbox/internal/cli/system"
	"github.com/julianstephens/pillbox/internal/constants"
	apperrors "github.com/julianstephens/pillbox/internal/errors"
	"github.com/julianstephens/pillbox/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"SQLite file path, dir://<directory>, PostgreSQL connection string, or 'keyring'. PostgreSQL passwords must NOT be embedded; use .pgpass or PGPASSWORD." default:"~/.config/pillbox/pillbox.db" env:"PILLBOX_CONFIG"`
	Debug   bool   `help:"Log debug output to stderr." env:"PILLBOX_DEBUG"`

	Init     system.InitCmd     `cmd:"" help:"Initialize pillbox storage."`
	Migrate  system.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Tui      system.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Today    doses.TodayCmd     `cmd:"" help:"Show today's doses."`
	Take     doses.TakeCmd      `cmd:"" help:"Mark a dose as taken."`
	Skip     doses.SkipCmd      `cmd:"" help:"Mark a dose as skipped."`
	Refill   meds.RefillCmd     `cmd:"" help:"List medications that need a refill."`
	Med      struct {
		Add     meds.MedAddCmd     `cmd:"" help:"Add a medication."`
		List    meds.MedListCmd    `cmd:"" help:"List medications." default:"1"`
		Enable  meds.MedEnableCmd  `cmd:"" help:"Resume a paused medication."`
		Disable meds.MedDisableCmd `cmd:"" help:"Pause a medication."`
		Delete  meds.MedDeleteCmd  `cmd:"" help:"Delete a medication."`
		Refill  meds.MedRefillCmd  `cmd:"" help:"Add pills to a medication's inventory."`
	} `cmd:"" help:"Manage medications."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string (password masked)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check OS keyring availability."`
	} `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Notify   system.NotifyCmd     `cmd:"" help:"Send due dose reminders (run every minute from cron or launchd)."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Medication reminders and daily dose tracking"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	logDir, err := cli.LogDir(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}
	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: logDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	// Keyring commands manage the connection string and must work without one.
	var appCtx *cli.Context
	if strings.HasPrefix(ctx.Command(), "keyring") {
		appCtx = &cli.Context{}
	} else {
		store, err := cli.OpenStore(CLI.Config)
		if err != nil {
			apperrors.Fatal(err)
		}
		defer store.Close()
		appCtx = cli.NewContext(store)
	}

	logger.Debug("Running command", "command", ctx.Command(), "config", appCtx.ConfigPath())
	if err := ctx.Run(appCtx); err != nil {
		apperrors.Fatal(err)
	}
}
