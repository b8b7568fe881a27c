package storage

import (
	"context"
	"errors"

	"github.com/julianstephens/pillbox/internal/models"
)

var (
	// ErrKeyNotFound is returned by a KV when nothing is stored under a key.
	ErrKeyNotFound = errors.New("key not found")
	// ErrNotInitialized is returned when the backing store has not been created yet.
	ErrNotInitialized = errors.New("storage not initialized, run 'pillbox init' first")
	// ErrNotLoaded is returned when a store is used before Init or Load.
	ErrNotLoaded = errors.New("storage not loaded")
)

// KV is the opaque key/value store the collections are persisted in.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Gateway is the whole-collection persistence contract consumed by the core.
// Every Save replaces the full collection.
type Gateway interface {
	LoadMedications(ctx context.Context) ([]models.Medication, error)
	SaveMedications(ctx context.Context, meds []models.Medication) error
	LoadEvents(ctx context.Context) ([]models.EventRecord, error)
	SaveEvents(ctx context.Context, events []models.DoseEvent) error
}

// Provider is a complete storage backend.
type Provider interface {
	Gateway

	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error

	// Reminders
	LoadReminders(ctx context.Context) ([]models.Reminder, error)
	SaveReminders(ctx context.Context, reminders []models.Reminder) error

	// Utils
	GetConfigPath() string
}

// Change reports that the collection stored under Key was rewritten,
// possibly by another process.
type Change struct {
	Key string
}

// Watcher is implemented by backends that can observe external writes.
type Watcher interface {
	Watch(ctx context.Context) (<-chan Change, error)
}

// Migrator is implemented by SQL backends with a versioned schema.
type Migrator interface {
	RunMigrations(logFn func(string)) (int, error)
	SchemaVersion() (current int, latest int, err error)
}
