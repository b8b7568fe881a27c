package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/pillbox/internal/tracker"
	"github.com/julianstephens/pillbox/internal/utils"
)

// MedicationFormModel holds the raw text of the add medication form.
type MedicationFormModel struct {
	Name         string
	Dosage       string
	Times        string
	Pills        string
	PerDose      string
	Threshold    string
	Instructions string
}

func newMedicationFormModel() *MedicationFormModel {
	return &MedicationFormModel{Pills: "0", PerDose: "1", Threshold: "0"}
}

// Input converts the form text into a medication input.
func (fm MedicationFormModel) Input() (tracker.MedicationInput, error) {
	pills, err := tracker.ParseAmount("pills remaining", fm.Pills)
	if err != nil {
		return tracker.MedicationInput{}, err
	}
	perDose, err := tracker.ParseAmount("pills per dose", fm.PerDose)
	if err != nil {
		return tracker.MedicationInput{}, err
	}
	threshold, err := tracker.ParseAmount("refill threshold", fm.Threshold)
	if err != nil {
		return tracker.MedicationInput{}, err
	}
	in := tracker.MedicationInput{
		Name:            fm.Name,
		DosageText:      fm.Dosage,
		Instructions:    fm.Instructions,
		Times:           tracker.ParseTimes(fm.Times),
		PillsRemaining:  pills,
		PillsPerDose:    perDose,
		RefillThreshold: threshold,
	}
	return in, in.Validate()
}

type RefillFormModel struct {
	Pills string
}

func notEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

func validTimes(s string) error {
	times := tracker.ParseTimes(s)
	if len(times) == 0 {
		return fmt.Errorf("add at least one time")
	}
	for _, t := range times {
		if !utils.ValidateTimeFormat(t) {
			return fmt.Errorf("%q is not HH:MM", t)
		}
	}
	return nil
}

func amount(field string, positive bool) func(string) error {
	return func(s string) error {
		f, err := tracker.ParseAmount(field, s)
		if err != nil {
			return fmt.Errorf("%s must be a number", field)
		}
		if positive && f <= 0 {
			return fmt.Errorf("%s must be greater than zero", field)
		}
		if f < 0 {
			return fmt.Errorf("%s cannot be negative", field)
		}
		return nil
	}
}

// NewMedicationForm creates the form for adding a medication
func NewMedicationForm(fm *MedicationFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&fm.Name).
				Validate(notEmpty("name")),
			huh.NewInput().
				Title("Dosage").
				Placeholder("50 mg").
				Value(&fm.Dosage).
				Validate(notEmpty("dosage")),
			huh.NewInput().
				Title("Times").
				Description("HH:MM, separated by commas").
				Placeholder("08:00, 20:00").
				Value(&fm.Times).
				Validate(validTimes),
			huh.NewInput().
				Title("Instructions").
				Value(&fm.Instructions),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Pills remaining").
				Value(&fm.Pills).
				Validate(amount("pills remaining", false)),
			huh.NewInput().
				Title("Pills per dose").
				Value(&fm.PerDose).
				Validate(amount("pills per dose", true)),
			huh.NewInput().
				Title("Refill threshold").
				Description("Warn when this many pills or fewer remain").
				Value(&fm.Threshold).
				Validate(amount("refill threshold", false)),
		),
	).WithTheme(huh.ThemeDracula())
}

// NewRefillForm creates the form asking how many pills to add
func NewRefillForm(fm *RefillFormModel, name string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Pills to add to %s", name)).
				Value(&fm.Pills).
				Validate(amount("refill amount", true)),
		),
	).WithTheme(huh.ThemeDracula())
}
