// Package pipeline orchestrates the daily ingestion: fetch, encode, and the
// two idempotent write paths, with per-day failure isolation.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"candlescan/internal/patterns"
	"candlescan/models"
)

// Pipeline processes exactly one trading day end to end.
type Pipeline struct {
	source models.BarSource
	store  models.BarStore
	logger zerolog.Logger
}

func New(source models.BarSource, store models.BarStore) *Pipeline {
	return &Pipeline{
		source: source,
		store:  store,
		logger: log.With().Str("component", "pipeline").Logger(),
	}
}

// ProcessDay ingests one calendar day. Every failure is captured in the
// returned DayResult; nothing escapes, so a bad day never aborts a range run.
func (p *Pipeline) ProcessDay(ctx context.Context, day time.Time) models.DayResult {
	result := models.DayResult{Date: day, Status: models.DayProcessed}

	defer func() {
		if r := recover(); r != nil {
			result.Status = models.DayFailed
			result.Err = fmt.Errorf("panic: %v", r)
			p.logger.Error().Time("day", day).Interface("panic", r).Msg("day processing panicked")
		}
	}()

	bars, err := p.source.DayBars(ctx, day)
	if err != nil {
		p.logger.Error().Err(err).Time("day", day).Msg("fetch failed, skipping day")
		result.Status = models.DayFailed
		result.Err = err
		return result
	}
	if len(bars) == 0 {
		result.Status = models.DayEmpty
		return result
	}

	encoded := patterns.EncodeRows(bars)

	// Per-symbol tables first: every row persists regardless of patterns.
	// Upstream promises one row per symbol per day; if it ever sends more,
	// the first one wins and the rest are dropped here, mirroring the
	// storage-layer (symbol, date) constraint at the application layer.
	seen := make(map[string]bool, len(encoded))
	for _, bar := range encoded {
		if seen[bar.Symbol] {
			p.logger.Debug().Str("symbol", bar.Symbol).Time("day", day).Msg("duplicate symbol row dropped")
			continue
		}
		seen[bar.Symbol] = true

		if p.store.InsertSymbolBar(ctx, bar) {
			result.SymbolRows++
		} else {
			result.SymbolErrors++
		}
	}

	// Shared table gets only the rows where something fired. An empty batch
	// means no write attempt at all.
	var withPatterns []models.EncodedBar
	for _, bar := range encoded {
		if bar.HasPattern() {
			withPatterns = append(withPatterns, bar)
		}
	}
	if len(withPatterns) > 0 {
		if p.store.BulkInsertCommon(ctx, withPatterns) {
			result.CommonRows = len(withPatterns)
		} else {
			result.Status = models.DayFailed
			result.Err = fmt.Errorf("bulk insert of %d pattern rows failed", len(withPatterns))
		}
	}

	if result.SymbolErrors > 0 && result.Status == models.DayProcessed {
		p.logger.Warn().
			Time("day", day).
			Int("failed", result.SymbolErrors).
			Int("written", result.SymbolRows).
			Msg("some symbol writes failed")
	}

	return result
}
