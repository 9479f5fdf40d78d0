package models

import (
	"fmt"
	"time"
)

// DayStatus classifies the outcome of processing one calendar day.
type DayStatus string

const (
	DayProcessed DayStatus = "processed"
	DayEmpty     DayStatus = "empty"   // no bhavcopy published (or nothing after cleaning)
	DaySkipped   DayStatus = "skipped" // non-trading day, nothing attempted
	DayFailed    DayStatus = "failed"
)

// DayResult is the typed outcome of one day's ingestion. Failures are
// reported here instead of propagating out of the pipeline.
type DayResult struct {
	Date         time.Time
	Status       DayStatus
	SymbolRows   int // rows persisted into per-symbol tables
	SymbolErrors int // per-symbol writes that failed
	CommonRows   int // pattern-positive rows offered to the shared table
	Err          error
}

// RunReport aggregates the day results of one date-range run.
type RunReport struct {
	Start time.Time
	End   time.Time
	Days  []DayResult
}

func (r *RunReport) Add(d DayResult) {
	r.Days = append(r.Days, d)
}

// Counts returns the number of days per status.
func (r *RunReport) Counts() (processed, empty, skipped, failed int) {
	for _, d := range r.Days {
		switch d.Status {
		case DayProcessed:
			processed++
		case DayEmpty:
			empty++
		case DaySkipped:
			skipped++
		case DayFailed:
			failed++
		}
	}
	return
}

// Summary renders a one-paragraph human-readable report, used for the final
// log line and the optional notification message.
func (r *RunReport) Summary() string {
	processed, empty, skipped, failed := r.Counts()
	var symbolRows, commonRows, symbolErrors int
	for _, d := range r.Days {
		symbolRows += d.SymbolRows
		commonRows += d.CommonRows
		symbolErrors += d.SymbolErrors
	}
	return fmt.Sprintf(
		"candlescan run %s..%s: %d processed, %d empty, %d skipped, %d failed; %d symbol rows (%d write errors), %d common rows",
		r.Start.Format("02-01-2006"), r.End.Format("02-01-2006"),
		processed, empty, skipped, failed,
		symbolRows, symbolErrors, commonRows,
	)
}
