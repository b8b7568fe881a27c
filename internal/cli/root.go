package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/julianstephens/pillbox/internal/backup"
	"github.com/julianstephens/pillbox/internal/constants"
	"github.com/julianstephens/pillbox/internal/keyring"
	"github.com/julianstephens/pillbox/internal/logger"
	"github.com/julianstephens/pillbox/internal/reconcile"
	"github.com/julianstephens/pillbox/internal/scheduler"
	"github.com/julianstephens/pillbox/internal/storage"
	"github.com/julianstephens/pillbox/internal/storage/diskv"
	"github.com/julianstephens/pillbox/internal/storage/postgres"
	"github.com/julianstephens/pillbox/internal/storage/sqlite"
	"github.com/julianstephens/pillbox/internal/tracker"
)

// ErrBackupUnsupported is returned by backup commands on non-SQLite backends.
var ErrBackupUnsupported = errors.New("backups are only supported for the SQLite backend")

type Context struct {
	Store     storage.Provider
	Scheduler *scheduler.Scheduler
	Engine    *reconcile.Engine
	Tracker   *tracker.Service
	Now       func() time.Time
}

// NewContext wires the engine and tracker to store using the local time zone.
func NewContext(store storage.Provider) *Context {
	sched := scheduler.New()
	return &Context{
		Store:     store,
		Scheduler: sched,
		Engine:    reconcile.New(store, sched),
		Tracker:   tracker.NewService(store),
		Now:       time.Now,
	}
}

// ConfigPath describes the configured store, or is empty when none is open.
func (c *Context) ConfigPath() string {
	if c.Store == nil {
		return ""
	}
	return c.Store.GetConfigPath()
}

// Reconcile runs the load-time pass for the current local day.
func (c *Context) Reconcile(ctx context.Context) (reconcile.State, error) {
	state, err := c.Engine.Run(ctx, c.Tracker.Today())
	if err != nil {
		logger.Error("Reconciliation failed", "error", err)
		return reconcile.State{}, err
	}
	return state, nil
}

// BackupManager returns the backup manager for the SQLite database.
func (c *Context) BackupManager() (*backup.Manager, error) {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return nil, ErrBackupUnsupported
	}
	return backup.NewManager(c.Store.GetConfigPath()), nil
}

// PerformAutomaticBackup takes the day's first backup and silently handles errors
func (c *Context) PerformAutomaticBackup(ctx context.Context) {
	mgr, err := c.BackupManager()
	if err != nil {
		return
	}
	created, err := mgr.EnsureDaily(ctx)
	if err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
		return
	}
	if created {
		logger.Debug("Automatic backup created", "dir", mgr.Dir())
	}
}

// IsPostgres reports whether config selects the PostgreSQL backend.
func IsPostgres(config string) bool {
	return config == constants.KeyringConfig ||
		strings.HasPrefix(config, "postgres://") || strings.HasPrefix(config, "postgresql://")
}

// ExpandPath resolves a leading "~" against the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// OpenStore builds the storage backend selected by config. The store is
// not loaded.
func OpenStore(config string) (storage.Provider, error) {
	if IsPostgres(config) {
		connStr, err := keyring.ResolveConfig(config)
		if err != nil {
			return nil, err
		}
		if valid, err := postgres.ValidateConnString(connStr); !valid {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("%w: store the password in .pgpass or PGPASSWORD instead", err)
			}
			return nil, err
		}
		return postgres.New(connStr), nil
	}

	if dir, ok := diskv.ConfigPath(config); ok {
		dir, err := ExpandPath(dir)
		if err != nil {
			return nil, err
		}
		return diskv.NewStore(dir), nil
	}

	path, err := ExpandPath(config)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStore(path), nil
}

// LogDir returns the directory the log files are written under: next to a
// SQLite database or diskv directory, otherwise the default config directory.
func LogDir(config string) (string, error) {
	if IsPostgres(config) {
		config = constants.DefaultConfigPath
	}
	if dir, ok := diskv.ConfigPath(config); ok {
		config = dir
	}
	path, err := ExpandPath(config)
	if err != nil {
		return "", err
	}
	return filepath.Dir(filepath.Clean(path)), nil
}
