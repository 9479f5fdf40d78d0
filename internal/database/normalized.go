package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"candlescan/internal/patterns"
	"candlescan/models"
)

// NormalizedStore is the alternative persistence backend: instead of the
// compact bitmask in per-symbol tables it writes the fully normalized
// companies -> stock_prices -> stock_price_patterns schema, one row per
// (price row, pattern) pair with the detector's confidence score. It shares
// the same encoder output and the same idempotency discipline as Gateway.
type NormalizedStore struct {
	db     *DB
	logger zerolog.Logger
}

func NewNormalizedStore(db *DB) *NormalizedStore {
	return &NormalizedStore{
		db:     db,
		logger: log.With().Str("component", "normalized_store").Logger(),
	}
}

// EnsureSchema creates the three normalized tables. Called once at startup.
func (s *NormalizedStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS companies (
			id SERIAL PRIMARY KEY,
			symbol VARCHAR(20) NOT NULL UNIQUE,
			full_name TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS stock_prices (
			id SERIAL PRIMARY KEY,
			company_id INTEGER NOT NULL REFERENCES companies(id),
			date DATE NOT NULL,
			prev_close DOUBLE PRECISION,
			open DOUBLE PRECISION,
			high DOUBLE PRECISION,
			low DOUBLE PRECISION,
			close DOUBLE PRECISION,
			avg_price DOUBLE PRECISION,
			volume DOUBLE PRECISION,
			CONSTRAINT uq_stock_prices UNIQUE (company_id, date)
		)`,
		`CREATE TABLE IF NOT EXISTS stock_price_patterns (
			id SERIAL PRIMARY KEY,
			stock_price_id INTEGER NOT NULL REFERENCES stock_prices(id),
			date DATE NOT NULL,
			pattern_id INTEGER NOT NULL,
			confidence DOUBLE PRECISION,
			CONSTRAINT uq_stock_price_patterns UNIQUE (stock_price_id, pattern_id)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating normalized schema: %w", err)
		}
	}
	return nil
}

// InsertSymbolBar upserts the company and its price row for the day. The
// price upsert replaces prior values for the same (company_id, date), which
// keeps restated bhavcopy data current while staying idempotent.
func (s *NormalizedStore) InsertSymbolBar(ctx context.Context, bar models.EncodedBar) bool {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error().Err(err).Str("symbol", bar.Symbol).Msg("begin failed")
		return false
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO companies (symbol) VALUES ($1) ON CONFLICT (symbol) DO NOTHING`,
		bar.Symbol,
	); err != nil {
		s.logger.Error().Err(err).Str("symbol", bar.Symbol).Msg("company upsert failed")
		return false
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO stock_prices
			(company_id, date, prev_close, open, high, low, close, avg_price, volume)
		SELECT c.id, $2, $3, $4, $5, $6, $7, $8, $9
		FROM companies c WHERE c.symbol = $1
		ON CONFLICT (company_id, date) DO UPDATE SET
			prev_close = EXCLUDED.prev_close,
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			avg_price = EXCLUDED.avg_price,
			volume = EXCLUDED.volume`,
		bar.Symbol, bar.Date, bar.PrevClose, bar.Open, bar.High, bar.Low,
		bar.Close, bar.AvgPrice, bar.Volume,
	); err != nil {
		s.logger.Error().Err(err).
			Str("symbol", bar.Symbol).
			Time("date", bar.Date).
			Msg("price upsert failed")
		return false
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error().Err(err).Str("symbol", bar.Symbol).Msg("commit failed")
		return false
	}
	return true
}

// BulkInsertCommon records one pattern row per fired detector, resolving the
// stock_price foreign key by (symbol, date). Rows whose price row is missing
// resolve to nothing and are picked up on the next idempotent re-run.
func (s *NormalizedStore) BulkInsertCommon(ctx context.Context, bars []models.EncodedBar) bool {
	if len(bars) == 0 {
		return true
	}

	ids := patternIDs()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("begin failed")
		return false
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stock_price_patterns (stock_price_id, date, pattern_id, confidence)
		SELECT sp.id, $3, $4, $5
		FROM stock_prices sp
		JOIN companies c ON sp.company_id = c.id
		WHERE c.symbol = $1 AND sp.date = $2
		ON CONFLICT (stock_price_id, pattern_id) DO NOTHING`)
	if err != nil {
		s.logger.Error().Err(err).Msg("prepare failed")
		return false
	}
	defer stmt.Close()

	rows := 0
	for _, bar := range bars {
		for _, m := range bar.Matches {
			if _, err := stmt.ExecContext(ctx, bar.Symbol, bar.Date, bar.Date, ids[m.Name], m.Confidence); err != nil {
				s.logger.Error().Err(err).
					Str("symbol", bar.Symbol).
					Time("date", bar.Date).
					Str("pattern", m.Name).
					Msg("pattern insert failed")
				return false
			}
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error().Err(err).Msg("commit failed")
		return false
	}

	s.logger.Info().Int("rows", rows).Msg("inserted pattern rows")
	return true
}

// patternIDs maps catalog names to stable numeric ids (catalog position,
// 1-based). Stable for the same reason pattern_value bit order is: stored
// rows reference these ids.
func patternIDs() map[string]int {
	ids := make(map[string]int, patterns.Size())
	for i, name := range patterns.Names() {
		ids[name] = i + 1
	}
	return ids
}
