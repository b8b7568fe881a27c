package constants

const (
	SettingNotificationsEnabled = "notifications_enabled"
	SettingRefillBannerLimit    = "refill_banner_limit"
	SettingReminderGraceMin     = "reminder_grace_min"

	// Default Settings Values
	DefaultNotificationsEnabled = true
	DefaultRefillBannerLimit    = 3
	DefaultReminderGraceMin     = 1
)
