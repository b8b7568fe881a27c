package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/pillbox/internal/constants"
	"github.com/julianstephens/pillbox/internal/models"
)

// Collections implements the collection half of Provider on top of any KV.
// Each collection is a single JSON document; a missing key reads as empty.
type Collections struct {
	kv KV
}

func NewCollections(kv KV) *Collections {
	return &Collections{kv: kv}
}

func (c *Collections) load(ctx context.Context, key string, v interface{}) (bool, error) {
	data, err := c.kv.Get(ctx, key)
	if errors.Is(err, ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return true, nil
}

func (c *Collections) save(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", key, err)
	}
	if err := c.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (c *Collections) LoadMedications(ctx context.Context) ([]models.Medication, error) {
	meds := []models.Medication{}
	if _, err := c.load(ctx, constants.KeyMedications, &meds); err != nil {
		return nil, err
	}
	if meds == nil {
		meds = []models.Medication{}
	}
	return meds, nil
}

func (c *Collections) SaveMedications(ctx context.Context, meds []models.Medication) error {
	if meds == nil {
		meds = []models.Medication{}
	}
	return c.save(ctx, constants.KeyMedications, meds)
}

func (c *Collections) LoadEvents(ctx context.Context) ([]models.EventRecord, error) {
	records := []models.EventRecord{}
	if _, err := c.load(ctx, constants.KeyEvents, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.EventRecord{}
	}
	return records, nil
}

func (c *Collections) SaveEvents(ctx context.Context, events []models.DoseEvent) error {
	return c.save(ctx, constants.KeyEvents, models.ToRecords(events))
}

func (c *Collections) LoadReminders(ctx context.Context) ([]models.Reminder, error) {
	reminders := []models.Reminder{}
	if _, err := c.load(ctx, constants.KeyReminders, &reminders); err != nil {
		return nil, err
	}
	if reminders == nil {
		reminders = []models.Reminder{}
	}
	return reminders, nil
}

func (c *Collections) SaveReminders(ctx context.Context, reminders []models.Reminder) error {
	if reminders == nil {
		reminders = []models.Reminder{}
	}
	return c.save(ctx, constants.KeyReminders, reminders)
}

func (c *Collections) GetSettings(ctx context.Context) (models.Settings, error) {
	data := map[string]string{}
	found, err := c.load(ctx, constants.KeySettings, &data)
	if err != nil {
		return models.Settings{}, err
	}
	if !found {
		return models.Settings{}, fmt.Errorf("settings not found")
	}
	return models.MapToSettings(data)
}

func (c *Collections) SaveSettings(ctx context.Context, settings models.Settings) error {
	return c.save(ctx, constants.KeySettings, models.SettingsToMap(settings))
}

// EnsureDefaultSettings writes the default settings when none are stored.
func (c *Collections) EnsureDefaultSettings(ctx context.Context) error {
	_, err := c.kv.Get(ctx, constants.KeySettings)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrKeyNotFound) {
		return err
	}
	if err := c.SaveSettings(ctx, models.DefaultSettings()); err != nil {
		return fmt.Errorf("failed to save default settings: %w", err)
	}
	return nil
}
