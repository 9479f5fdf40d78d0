package models

import (
	"context"
	"time"
)

// BarSource supplies the cleaned EQ-series bars for one trading day.
// A day with no published bhavcopy yields (nil, nil).
type BarSource interface {
	DayBars(ctx context.Context, day time.Time) ([]PriceBar, error)
}

// BarStore is the persistence boundary for encoded bars. Both methods are
// idempotent on (symbol, date) and report failure as a boolean so a bad
// write never aborts a date-range run.
type BarStore interface {
	// InsertSymbolBar writes one bar into its per-symbol destination.
	InsertSymbolBar(ctx context.Context, bar EncodedBar) bool
	// BulkInsertCommon writes a batch of pattern-positive bars into the
	// shared destination, skipping rows already present.
	BulkInsertCommon(ctx context.Context, bars []EncodedBar) bool
}
