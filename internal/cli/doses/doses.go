package doses

import (
	"context"
	"fmt"

	"github.com/julianstephens/pillbox/internal/cli"
	"github.com/julianstephens/pillbox/internal/models"
	"github.com/julianstephens/pillbox/internal/tracker"
	"github.com/julianstephens/pillbox/internal/utils"
)

var statusIcons = map[models.DoseStatus]string{
	models.StatusPending: "○",
	models.StatusTaken:   "✓",
	models.StatusSkipped: "✗",
}

type TodayCmd struct{}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	bg := context.Background()

	state, err := ctx.Reconcile(bg)
	if err != nil {
		return err
	}
	today := ctx.Tracker.Today()
	doses := tracker.TodaysDoses(state, today)

	fmt.Printf("Doses for %s\n\n", today)
	if len(doses) == 0 {
		fmt.Println("No doses scheduled today.")
	}
	for i, d := range doses {
		fmt.Printf("%3d. %s %8s  %s (%s)  %s\n",
			i+1,
			statusIcons[d.Event.Status],
			utils.FormatDisplayTime(d.Event.LocalTime),
			d.Medication.Name,
			d.Medication.DosageText,
			d.Event.Status,
		)
	}

	limit := models.DefaultSettings().RefillBannerLimit
	if settings, err := ctx.Store.GetSettings(bg); err == nil {
		limit = settings.RefillBannerLimit
	}
	if banner := tracker.RefillBanner(state.Medications, limit); banner != "" {
		fmt.Printf("\n⚠ Refill soon: %s\n", banner)
	}
	return nil
}

type TakeCmd struct {
	Dose string `arg:"" help:"Dose number from 'pillbox today' or event ID."`
}

func (c *TakeCmd) Run(ctx *cli.Context) error {
	return act(ctx, c.Dose, models.StatusTaken)
}

type SkipCmd struct {
	Dose string `arg:"" help:"Dose number from 'pillbox today' or event ID."`
}

func (c *SkipCmd) Run(ctx *cli.Context) error {
	return act(ctx, c.Dose, models.StatusSkipped)
}

func act(ctx *cli.Context, ref string, decision models.DoseStatus) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	bg := context.Background()

	state, err := ctx.Reconcile(bg)
	if err != nil {
		return err
	}
	dose, err := tracker.ResolveDose(tracker.TodaysDoses(state, ctx.Tracker.Today()), ref)
	if err != nil {
		return err
	}

	label := fmt.Sprintf("%s at %s", dose.Medication.Name, utils.FormatDisplayTime(dose.Event.LocalTime))
	if dose.Event.Status != models.StatusPending {
		fmt.Printf("%s was already marked %s.\n", label, dose.Event.Status)
		return nil
	}

	next, err := ctx.Tracker.Act(bg, state, dose.Event.ID, decision)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s marked %s.\n", statusIcons[decision], label, decision)

	if decision == models.StatusTaken {
		med := models.IndexMedications(next.Medications)[dose.Medication.ID]
		fmt.Printf("  %s pills left.\n", tracker.FormatPills(med.PillsRemaining))
		if med.IsLowStock() {
			fmt.Printf("  ⚠ %s is running low, time to refill.\n", med.Name)
		}
	}
	return nil
}
