package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/pillbox/internal/cli"
	"github.com/julianstephens/pillbox/internal/logger"
	"github.com/julianstephens/pillbox/internal/models"
	"github.com/julianstephens/pillbox/internal/notifier"
	"github.com/julianstephens/pillbox/internal/reminders"
	"github.com/julianstephens/pillbox/internal/utils"
)

var newSender = func() notifier.Sender { return notifier.New() }

// NotifyCmd delivers the reminders that are due right now. It is meant to be
// run every minute from cron or launchd.
type NotifyCmd struct {
	DryRun bool `help:"Print notifications to stdout instead of sending them."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	bg := context.Background()

	settings, err := ctx.Store.GetSettings(bg)
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !settings.NotificationsEnabled {
		if c.DryRun {
			fmt.Println("Notifications are disabled in settings.")
		}
		return nil
	}

	sched := reminders.New(ctx.Store)
	now := ctx.Now()

	if c.DryRun {
		due, err := sched.Due(bg, now, settings.ReminderGraceMin)
		if err != nil {
			return err
		}
		if len(due) == 0 {
			fmt.Println("No reminders due.")
		}
		for _, r := range due {
			fmt.Printf("[DryRun] %s (%s)\n", r.Message(), utils.FormatDisplayTime(r.Time))
		}
		return nil
	}

	sender := newSender()
	sent, err := sched.Dispatch(bg, now, settings.ReminderGraceMin, func(ctx context.Context, r models.Reminder) error {
		return sender.Notify(ctx, r.Message())
	})
	if err != nil {
		return fmt.Errorf("failed to dispatch reminders: %w", err)
	}
	if sent > 0 {
		logger.Info("Sent reminders", "count", sent)
	}
	return nil
}
