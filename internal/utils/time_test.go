package utils

import (
	"reflect"
	"testing"
	"time"
)

func TestToISODate(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	// 03:30 UTC on Jan 2 is still Jan 1 in UTC-5
	instant := time.Date(2024, 1, 2, 3, 30, 0, 0, time.UTC).In(loc)
	if got := ToISODate(instant); got != "2024-01-01" {
		t.Errorf("ToISODate() = %q, want %q", got, "2024-01-01")
	}
	if got := ToHHMM(instant); got != "22:30" {
		t.Errorf("ToHHMM() = %q, want %q", got, "22:30")
	}
}

func TestToHHMMZeroPadded(t *testing.T) {
	instant := time.Date(2024, 5, 6, 7, 5, 0, 0, time.Local)
	if got := ToHHMM(instant); got != "07:05" {
		t.Errorf("ToHHMM() = %q, want %q", got, "07:05")
	}
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		delta int
		want  string
	}{
		{name: "same month", date: "2024-03-10", delta: -1, want: "2024-03-09"},
		{name: "month rollover back", date: "2024-03-01", delta: -1, want: "2024-02-29"},
		{name: "year rollover back", date: "2024-01-01", delta: -1, want: "2023-12-31"},
		{name: "year rollover forward", date: "2023-12-31", delta: 1, want: "2024-01-01"},
		{name: "zero delta", date: "2024-07-04", delta: 0, want: "2024-07-04"},
		{name: "across DST change", date: "2024-03-11", delta: -1, want: "2024-03-10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AddDays(tt.date, tt.delta)
			if err != nil {
				t.Fatalf("AddDays() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("AddDays(%q, %d) = %q, want %q", tt.date, tt.delta, got, tt.want)
			}
		})
	}

	if _, err := AddDays("not-a-date", 1); err == nil {
		t.Error("AddDays() expected error for malformed date")
	}
}

func TestFormatDisplayTime(t *testing.T) {
	tests := map[string]string{
		"00:00": "12:00 AM",
		"00:05": "12:05 AM",
		"08:30": "8:30 AM",
		"11:59": "11:59 AM",
		"12:00": "12:00 PM",
		"13:07": "1:07 PM",
		"23:45": "11:45 PM",
		"bogus": "bogus",
	}
	for in, want := range tests {
		if got := FormatDisplayTime(in); got != want {
			t.Errorf("FormatDisplayTime(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateTimeFormat(t *testing.T) {
	valid := []string{"00:00", "08:00", "19:59", "23:59"}
	invalid := []string{"", "8:00", "24:00", "12:60", "12:5", "1200", "12:00:00", "ab:cd"}

	for _, s := range valid {
		if !ValidateTimeFormat(s) {
			t.Errorf("ValidateTimeFormat(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if ValidateTimeFormat(s) {
			t.Errorf("ValidateTimeFormat(%q) = true, want false", s)
		}
	}
}

func TestParseTimeToMinutes(t *testing.T) {
	got, err := ParseTimeToMinutes("20:15")
	if err != nil {
		t.Fatalf("ParseTimeToMinutes() error = %v", err)
	}
	if got != 20*60+15 {
		t.Errorf("ParseTimeToMinutes() = %d, want %d", got, 20*60+15)
	}
	if _, err := ParseTimeToMinutes("25:00"); err == nil {
		t.Error("ParseTimeToMinutes() expected error for 25:00")
	}
}

func TestCombineDateAndTime(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	got, err := CombineDateAndTime("2024-01-01", "08:00", loc)
	if err != nil {
		t.Fatalf("CombineDateAndTime() error = %v", err)
	}
	want := time.Date(2024, 1, 1, 6, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("CombineDateAndTime() = %v, want %v", got.UTC(), want)
	}

	if _, err := CombineDateAndTime("2024-01-01", "8am", loc); err == nil {
		t.Error("CombineDateAndTime() expected error for malformed time")
	}
}

func TestNormalizeTimes(t *testing.T) {
	got := NormalizeTimes([]string{"20:00", "08:00", "08:00", "12:30"})
	want := []string{"08:00", "12:30", "20:00"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeTimes() = %v, want %v", got, want)
	}
	if got := NormalizeTimes(nil); len(got) != 0 {
		t.Errorf("NormalizeTimes(nil) = %v, want empty", got)
	}
}

func TestLoadLocation(t *testing.T) {
	for _, tz := range []string{"", "Local"} {
		loc, err := LoadLocation(tz)
		if err != nil || loc != time.Local {
			t.Errorf("LoadLocation(%q) = %v, %v; want time.Local", tz, loc, err)
		}
	}
	if _, err := LoadLocation("Invalid/Timezone"); err == nil {
		t.Error("LoadLocation() expected error for invalid timezone")
	}
}
