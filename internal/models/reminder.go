package models

// Reminder is one repeating daily notification for one medication time.
type Reminder struct {
	MedicationID string `json:"medicationId"`
	Name         string `json:"name"`
	DosageText   string `json:"dosageText"`
	Time         string `json:"time"`                   // HH:MM
	LastSentDate string `json:"lastSentDate,omitempty"` // YYYY-MM-DD
}

// Message renders the notification text.
func (r Reminder) Message() string {
	if r.DosageText == "" {
		return "Time to take " + r.Name
	}
	return "Time to take " + r.Name + " (" + r.DosageText + ")"
}
