package utils

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/julianstephens/pillbox/internal/constants"
)

// hhmmPattern accepts exactly two-digit hours 00-23 and minutes 00-59.
var hhmmPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// Today returns the current local calendar date (YYYY-MM-DD) in loc.
func Today(loc *time.Location) string {
	return ToISODate(time.Now().In(loc))
}

// ToISODate formats the calendar fields of t, in t's own location, as YYYY-MM-DD.
func ToISODate(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// ToHHMM formats the wall-clock hour and minute of t as zero-padded HH:MM.
func ToHHMM(t time.Time) string {
	return t.Format(constants.TimeFormat)
}

// AddDays shifts a YYYY-MM-DD date by delta calendar days, rolling over
// month and year boundaries.
func AddDays(isoDate string, delta int) (string, error) {
	d, err := time.Parse(constants.DateFormat, isoDate)
	if err != nil {
		return "", fmt.Errorf("invalid date format: %w", err)
	}
	return d.AddDate(0, 0, delta).Format(constants.DateFormat), nil
}

// FormatDisplayTime converts HH:MM into a 12-hour "H:MM AM/PM" string.
// Malformed input is returned unchanged; callers validate before display.
func FormatDisplayTime(hhmm string) string {
	if !ValidateTimeFormat(hhmm) {
		return hhmm
	}
	h, _ := strconv.Atoi(hhmm[:2])
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	hour12 := (h+11)%12 + 1
	return fmt.Sprintf("%d:%s %s", hour12, hhmm[3:], suffix)
}

// ValidateTimeFormat reports whether s is a well-formed HH:MM time.
func ValidateTimeFormat(s string) bool {
	return hhmmPattern.MatchString(s)
}

// ValidateDateFormat reports whether s is a well-formed YYYY-MM-DD date.
func ValidateDateFormat(s string) bool {
	_, err := time.Parse(constants.DateFormat, s)
	return err == nil
}

// ParseTimeToMinutes parses a time string (HH:MM) and returns the number of minutes from midnight.
func ParseTimeToMinutes(timeStr string) (int, error) {
	if !ValidateTimeFormat(timeStr) {
		return 0, fmt.Errorf("invalid time format (expected HH:MM): %q", timeStr)
	}
	h, _ := strconv.Atoi(timeStr[:2])
	m, _ := strconv.Atoi(timeStr[3:])
	return h*60 + m, nil
}

// CombineDateAndTime combines a date string (YYYY-MM-DD) and time string (HH:MM)
// into a single time.Time in the specified location.
func CombineDateAndTime(dateStr, timeStr string, loc *time.Location) (time.Time, error) {
	date, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format: %w", err)
	}
	minutes, err := ParseTimeToMinutes(timeStr)
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(
		date.Year(), date.Month(), date.Day(),
		minutes/60, minutes%60, 0, 0,
		loc,
	), nil
}

// NormalizeTimes removes duplicate times and sorts them ascending.
func NormalizeTimes(times []string) []string {
	seen := make(map[string]bool, len(times))
	out := make([]string, 0, len(times))
	for _, t := range times {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
