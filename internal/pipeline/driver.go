package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"candlescan/models"
)

// Driver iterates a calendar date range one day at a time, skipping
// non-trading days by weekday rule and collecting per-day results.
type Driver struct {
	pipeline *Pipeline
	logger   zerolog.Logger
}

func NewDriver(p *Pipeline) *Driver {
	return &Driver{
		pipeline: p,
		logger:   log.With().Str("component", "driver").Logger(),
	}
}

// Run processes every day from start to end inclusive, sequentially: one day
// fully completes before the next begins. Weekend days are skipped without
// any fetch or write attempt. The returned report aggregates every day's
// typed result instead of swallowing failures.
func (d *Driver) Run(ctx context.Context, start, end time.Time) models.RunReport {
	start = models.DateOnly(start)
	end = models.DateOnly(end)
	report := models.RunReport{Start: start, End: end}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if ctx.Err() != nil {
			d.logger.Warn().Time("day", day).Msg("run cancelled")
			return report
		}

		if !models.IsTradingDay(day) {
			report.Add(models.DayResult{Date: day, Status: models.DaySkipped})
			continue
		}

		d.logger.Info().Time("day", day).Msg("processing day")
		result := d.pipeline.ProcessDay(ctx, day)
		report.Add(result)

		switch result.Status {
		case models.DayFailed:
			d.logger.Error().Err(result.Err).Time("day", day).Msg("day failed")
		case models.DayEmpty:
			d.logger.Info().Time("day", day).Msg("no data for day")
		default:
			d.logger.Info().
				Time("day", day).
				Int("symbol_rows", result.SymbolRows).
				Int("common_rows", result.CommonRows).
				Msg("day processed")
		}
	}

	return report
}
