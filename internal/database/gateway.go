package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"candlescan/models"
)

const insertBarSQL = `
	INSERT INTO %s
		(symbol, date, open, high, low, close, volume, prev_close, avg_price, pattern_value, matched_patterns)
	VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (symbol, date) DO NOTHING`

// Gateway performs the idempotent writes against the per-symbol tables and
// the shared common table. Every failure is logged with its destination and
// reported as a boolean so one bad write never aborts a run.
type Gateway struct {
	db     *DB
	schema *SchemaRegistry
	logger zerolog.Logger
}

func NewGateway(db *DB, schema *SchemaRegistry) *Gateway {
	return &Gateway{
		db:     db,
		schema: schema,
		logger: log.With().Str("component", "gateway").Logger(),
	}
}

// InsertSymbolBar writes one encoded bar into its per-symbol table. A row
// already present for the same (symbol, date) wins: the insert is a no-op.
func (g *Gateway) InsertSymbolBar(ctx context.Context, bar models.EncodedBar) bool {
	table := TableForSymbol(bar.Symbol)
	if !g.schema.Ensure(ctx, table) {
		return false
	}

	_, err := g.db.ExecContext(ctx, fmt.Sprintf(insertBarSQL, table),
		bar.Symbol, bar.Date, bar.Open, bar.High, bar.Low, bar.Close,
		bar.Volume, bar.PrevClose, bar.AvgPrice, bar.PatternValue, bar.MatchedPatternsText(),
	)
	if err != nil {
		logPgError(g.logger.Error().Err(err).
			Str("table", table).
			Str("symbol", bar.Symbol).
			Time("date", bar.Date), err).
			Msg("insert failed")
		return false
	}
	return true
}

// logPgError attaches the Postgres error code and constraint when available.
func logPgError(ev *zerolog.Event, err error) *zerolog.Event {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		ev = ev.Str("pg_code", string(pqErr.Code)).Str("constraint", pqErr.Constraint)
	}
	return ev
}

// BulkInsertCommon writes a batch of pattern-positive bars into the shared
// table inside one transaction: either the whole batch applies (modulo
// per-row conflict skips) or none of it does. An empty batch touches nothing.
func (g *Gateway) BulkInsertCommon(ctx context.Context, bars []models.EncodedBar) bool {
	if len(bars) == 0 {
		return true
	}
	if !g.schema.Ensure(ctx, CommonTable) {
		return false
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		g.logger.Error().Err(err).Str("table", CommonTable).Msg("begin failed")
		return false
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(insertBarSQL, CommonTable))
	if err != nil {
		tx.Rollback()
		g.logger.Error().Err(err).Str("table", CommonTable).Msg("prepare failed")
		return false
	}

	for _, bar := range bars {
		_, err := stmt.ExecContext(ctx,
			bar.Symbol, bar.Date, bar.Open, bar.High, bar.Low, bar.Close,
			bar.Volume, bar.PrevClose, bar.AvgPrice, bar.PatternValue, bar.MatchedPatternsText(),
		)
		if err != nil {
			stmt.Close()
			tx.Rollback()
			logPgError(g.logger.Error().Err(err).
				Str("table", CommonTable).
				Str("symbol", bar.Symbol).
				Time("date", bar.Date), err).
				Msg("bulk insert failed")
			return false
		}
	}
	stmt.Close()

	if err := tx.Commit(); err != nil {
		g.logger.Error().Err(err).Str("table", CommonTable).Msg("commit failed")
		return false
	}

	g.logger.Info().Int("rows", len(bars)).Str("table", CommonTable).Msg("bulk inserted pattern rows")
	return true
}
