package models

import "time"

// Date layouts used across the system. The bhavcopy URL wants ddmmyyyy,
// the file itself carries dd-Mon-yyyy, and configuration uses dd-mm-yyyy.
const (
	DateLayoutCompact = "02012006"
	DateLayoutBhav    = "02-Jan-2006"
	DateLayoutConfig  = "02-01-2006"
)

// IsTradingDay reports whether t falls on a weekday. Exchange holidays are
// not checked; a holiday simply yields an empty bhavcopy day.
func IsTradingDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// DateOnly truncates t to midnight UTC so (symbol, date) keys compare cleanly.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
