package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/pillbox/internal/constants"
)

// Settings represents application-wide settings
type Settings struct {
	NotificationsEnabled bool `json:"notifications_enabled"` // whether dose reminders are sent
	RefillBannerLimit    int  `json:"refill_banner_limit"`   // how many low-stock medications the banner names
	ReminderGraceMin     int  `json:"reminder_grace_min"`    // how many minutes late a reminder may still fire
}

// DefaultSettings returns the settings written by init.
func DefaultSettings() Settings {
	return Settings{
		NotificationsEnabled: constants.DefaultNotificationsEnabled,
		RefillBannerLimit:    constants.DefaultRefillBannerLimit,
		ReminderGraceMin:     constants.DefaultReminderGraceMin,
	}
}

// MapToSettings converts a map of key-value pairs to a Settings struct.
// Missing keys keep their default values.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := DefaultSettings()

	for key, value := range data {
		switch key {
		case constants.SettingNotificationsEnabled:
			settings.NotificationsEnabled = value == "true"
		case constants.SettingRefillBannerLimit:
			n, err := strconv.Atoi(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			settings.RefillBannerLimit = n
		case constants.SettingReminderGraceMin:
			n, err := strconv.Atoi(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			settings.ReminderGraceMin = n
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingNotificationsEnabled: strconv.FormatBool(settings.NotificationsEnabled),
		constants.SettingRefillBannerLimit:    strconv.Itoa(settings.RefillBannerLimit),
		constants.SettingReminderGraceMin:     strconv.Itoa(settings.ReminderGraceMin),
	}
}
