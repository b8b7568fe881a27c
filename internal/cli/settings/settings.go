package settings

import (
	"context"
	"fmt"

	"github.com/julianstephens/pillbox/internal/cli"
	"github.com/julianstephens/pillbox/internal/tracker"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	NotificationsEnabled *bool `help:"Enable or disable dose reminders."`
	RefillBannerLimit    *int  `help:"How many low-stock medications the refill banner names."`
	ReminderGraceMin     *int  `help:"Minutes after a dose time a missed reminder may still fire."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	bg := context.Background()

	settings, err := ctx.Store.GetSettings(bg)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		fmt.Println("Current Settings:")
		fmt.Printf("  Notifications Enabled: %v\n", settings.NotificationsEnabled)
		fmt.Printf("  Refill Banner Limit:   %d\n", settings.RefillBannerLimit)
		fmt.Printf("  Reminder Grace:        %d min\n", settings.ReminderGraceMin)
		return nil
	}

	updated := false
	if c.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *c.NotificationsEnabled
		updated = true
	}
	if c.RefillBannerLimit != nil {
		if *c.RefillBannerLimit < 1 {
			return fmt.Errorf("%w: refill banner limit must be at least 1", tracker.ErrInvalidInput)
		}
		settings.RefillBannerLimit = *c.RefillBannerLimit
		updated = true
	}
	if c.ReminderGraceMin != nil {
		if *c.ReminderGraceMin < 1 || *c.ReminderGraceMin > 60 {
			return fmt.Errorf("%w: reminder grace must be between 1 and 60 minutes", tracker.ErrInvalidInput)
		}
		settings.ReminderGraceMin = *c.ReminderGraceMin
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}
	if err := ctx.Store.SaveSettings(bg, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")
	return nil
}
