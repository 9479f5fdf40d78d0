package models

import (
	"strings"
	"time"
)

// PriceBar is one symbol's end-of-day bar as delivered by the bhavcopy,
// already cleaned and filtered to the EQ series.
type PriceBar struct {
	Symbol    string
	Date      time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	PrevClose float64
	AvgPrice  float64
}

// PatternMatch is one catalog pattern that fired on a bar, with the
// detector's 0..1 strength score.
type PatternMatch struct {
	Name       string
	Confidence float64
}

// EncodedBar is a PriceBar augmented with the pattern detection results.
// It is derived state: recomputed on every run, never mutated in place.
type EncodedBar struct {
	PriceBar

	// PatternValue packs the per-pattern booleans into an integer, one bit
	// per catalog entry with the first entry in the most significant position.
	PatternValue int

	// Matches lists the patterns that fired, in catalog order.
	Matches []PatternMatch
}

// HasPattern reports whether at least one catalog pattern fired on the bar.
func (b EncodedBar) HasPattern() bool {
	return len(b.Matches) > 0
}

// MatchedNames returns the fired pattern names in catalog order.
func (b EncodedBar) MatchedNames() []string {
	names := make([]string, len(b.Matches))
	for i, m := range b.Matches {
		names[i] = m.Name
	}
	return names
}

// MatchedPatternsText serializes the fired pattern names for the
// matched_patterns text column.
func (b EncodedBar) MatchedPatternsText() string {
	return strings.Join(b.MatchedNames(), ",")
}
