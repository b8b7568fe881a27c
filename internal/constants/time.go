package constants

const (
	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// DisplayTimeFormat is the 12-hour clock format shown to users (H:MM AM/PM)
	DisplayTimeFormat = "3:04 PM"
)
