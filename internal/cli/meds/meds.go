package meds

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/pillbox/internal/cli"
	"github.com/julianstephens/pillbox/internal/models"
	"github.com/julianstephens/pillbox/internal/tracker"
	"github.com/julianstephens/pillbox/internal/utils"
)

var stdin io.Reader = os.Stdin

type MedAddCmd struct {
	Name         string `arg:"" help:"Medication name."`
	Dosage       string `required:"" help:"Dosage text, e.g. '50 mg'."`
	Times        string `required:"" help:"Comma-separated dose times (HH:MM)."`
	Instructions string `help:"Free-form instructions, e.g. 'with food'."`
	Pills        string `default:"0" help:"Pills on hand."`
	PerDose      string `default:"1" help:"Pills taken per dose."`
	Threshold    string `default:"0" help:"Refill warning threshold in pills."`
}

func (c *MedAddCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	in := tracker.MedicationInput{
		Name:         c.Name,
		DosageText:   c.Dosage,
		Instructions: c.Instructions,
		Times:        tracker.ParseTimes(c.Times),
	}
	var err error
	if in.PillsRemaining, err = tracker.ParseAmount("pills", c.Pills); err != nil {
		return err
	}
	if in.PillsPerDose, err = tracker.ParseAmount("per-dose", c.PerDose); err != nil {
		return err
	}
	if in.RefillThreshold, err = tracker.ParseAmount("threshold", c.Threshold); err != nil {
		return err
	}

	med, err := ctx.Tracker.AddMedication(context.Background(), in)
	if err != nil {
		return err
	}
	fmt.Printf("Added medication: %s (%s)\n", med.Name, med.ID)
	return nil
}

type MedListCmd struct {
	Active bool `help:"Only show active medications."`
}

func (c *MedListCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	meds, err := ctx.Tracker.Medications(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load medications: %w", err)
	}

	shown := 0
	for _, m := range meds {
		if c.Active && !m.Active {
			continue
		}
		shown++
		fmt.Println(formatMedication(m))
	}
	if shown == 0 {
		fmt.Println("No medications found. Add one with 'pillbox med add'.")
	}
	return nil
}

func formatMedication(m models.Medication) string {
	var times []string
	for _, t := range m.Times {
		times = append(times, utils.FormatDisplayTime(t))
	}
	status := "active"
	if !m.Active {
		status = "paused"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "- %s (%s) [%s]\n", m.Name, m.DosageText, status)
	fmt.Fprintf(&b, "    ID: %s\n", m.ID)
	fmt.Fprintf(&b, "    Times: %s\n", strings.Join(times, ", "))
	if m.Instructions != "" {
		fmt.Fprintf(&b, "    Instructions: %s\n", m.Instructions)
	}
	fmt.Fprintf(&b, "    %s pills left, %s per dose, refill at %s",
		tracker.FormatPills(m.PillsRemaining), tracker.FormatPills(m.PillsPerDose), tracker.FormatPills(m.RefillThreshold))
	if m.Active && m.IsLowStock() {
		b.WriteString("  ⚠ low")
	}
	return b.String()
}

// resolve loads the medication list and finds ref by id or name.
func resolve(ctx *cli.Context, ref string) (models.Medication, error) {
	if err := ctx.Store.Load(); err != nil {
		return models.Medication{}, err
	}
	meds, err := ctx.Tracker.Medications(context.Background())
	if err != nil {
		return models.Medication{}, fmt.Errorf("failed to load medications: %w", err)
	}
	return tracker.ResolveMedication(meds, ref)
}

type MedEnableCmd struct {
	Medication string `arg:"" help:"Medication ID or name."`
}

func (c *MedEnableCmd) Run(ctx *cli.Context) error {
	return setActive(ctx, c.Medication, true)
}

type MedDisableCmd struct {
	Medication string `arg:"" help:"Medication ID or name."`
}

func (c *MedDisableCmd) Run(ctx *cli.Context) error {
	return setActive(ctx, c.Medication, false)
}

func setActive(ctx *cli.Context, ref string, active bool) error {
	med, err := resolve(ctx, ref)
	if err != nil {
		return err
	}
	med, err = ctx.Tracker.SetActive(context.Background(), med.ID, active)
	if err != nil {
		return err
	}
	if active {
		fmt.Printf("Enabled %s. Doses resume from the next reconciliation.\n", med.Name)
	} else {
		fmt.Printf("Paused %s. Today's pending doses stay listed.\n", med.Name)
	}
	return nil
}

type MedDeleteCmd struct {
	Medication string `arg:"" help:"Medication ID or name."`
	Yes        bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *MedDeleteCmd) Run(ctx *cli.Context) error {
	med, err := resolve(ctx, c.Medication)
	if err != nil {
		return err
	}

	if !c.Yes {
		fmt.Printf("Delete %s and its dose history? [y/N]: ", med.Name)
		response, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Delete cancelled.")
			return nil
		}
	}

	if err := ctx.Tracker.DeleteMedication(context.Background(), med.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted medication: %s\n", med.Name)
	return nil
}

type MedRefillCmd struct {
	Medication string `arg:"" help:"Medication ID or name."`
	Pills      string `arg:"" help:"Number of pills added."`
}

func (c *MedRefillCmd) Run(ctx *cli.Context) error {
	pills, err := tracker.ParseAmount("pills", c.Pills)
	if err != nil {
		return err
	}
	med, err := resolve(ctx, c.Medication)
	if err != nil {
		return err
	}
	med, err = ctx.Tracker.Refill(context.Background(), med.ID, pills)
	if err != nil {
		return err
	}
	fmt.Printf("Refilled %s: %s pills on hand.\n", med.Name, tracker.FormatPills(med.PillsRemaining))
	return nil
}

// RefillCmd lists active medications at or below their refill threshold.
type RefillCmd struct{}

func (c *RefillCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	meds, err := ctx.Tracker.Medications(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load medications: %w", err)
	}

	low := tracker.LowStock(meds)
	if len(low) == 0 {
		fmt.Println("✓ All medications are stocked.")
		return nil
	}
	fmt.Printf("%d medication(s) need a refill:\n", len(low))
	for _, m := range low {
		fmt.Printf("  %s: %s pills left (refill at %s)\n", m.Name, tracker.FormatPills(m.PillsRemaining), tracker.FormatPills(m.RefillThreshold))
	}
	return nil
}
