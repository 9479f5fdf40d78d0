package database

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// CommonTable is the shared cross-symbol destination; it receives only rows
// where at least one pattern fired.
const CommonTable = "common_stock_data"

const symbolTablePrefix = "stock_"

// TableForSymbol derives the per-symbol destination table name: lower-cased
// symbol with a fixed prefix, any character outside [a-z0-9_] folded to '_'
// so the name is always a safe SQL identifier (NSE symbols like "M&M" and
// "BAJAJ-AUTO" would otherwise break the DDL).
func TableForSymbol(symbol string) string {
	var b strings.Builder
	b.WriteString(symbolTablePrefix)
	for _, r := range strings.ToLower(strings.TrimSpace(symbol)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// SchemaRegistry guarantees a destination table exists, with its uniqueness
// constraint and indexes, before any write targets it. Confirmed tables are
// cached for the process lifetime; this system never drops tables, so the
// cache is never invalidated.
type SchemaRegistry struct {
	db     *DB
	logger zerolog.Logger

	mu    sync.Mutex
	known map[string]bool
}

func NewSchemaRegistry(db *DB) *SchemaRegistry {
	return &SchemaRegistry{
		db:     db,
		logger: log.With().Str("component", "schema_registry").Logger(),
		known:  make(map[string]bool),
	}
}

// Ensure creates the table and its indexes if needed and reports whether the
// table is usable. On false the caller must not attempt the write.
func (r *SchemaRegistry) Ensure(ctx context.Context, table string) bool {
	r.mu.Lock()
	if r.known[table] {
		r.mu.Unlock()
		return true
	}
	r.mu.Unlock()

	if _, err := r.db.ExecContext(ctx, createTableSQL(table)); err != nil {
		r.logger.Error().Err(err).Str("table", table).Msg("failed to create table")
		return false
	}

	// Index creation failures leave the table usable, just slower to query.
	for _, stmt := range createIndexSQL(table) {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			r.logger.Warn().Err(err).Str("table", table).Msg("failed to create index")
		}
	}

	r.mu.Lock()
	r.known[table] = true
	r.mu.Unlock()
	return true
}

func createTableSQL(table string) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id SERIAL PRIMARY KEY,
			symbol VARCHAR(20) NOT NULL,
			date DATE NOT NULL,
			open DOUBLE PRECISION,
			high DOUBLE PRECISION,
			low DOUBLE PRECISION,
			close DOUBLE PRECISION,
			volume DOUBLE PRECISION,
			prev_close DOUBLE PRECISION,
			avg_price DOUBLE PRECISION,
			pattern_value INTEGER,
			matched_patterns TEXT,
			CONSTRAINT uq_%[1]s UNIQUE (symbol, date)
		)`, table)
}

func createIndexSQL(table string) []string {
	specs := []struct {
		suffix  string
		columns string
	}{
		{"symbol", "symbol"},
		{"date", "date"},
		{"pattern_value", "pattern_value"},
		{"symbol_date", "symbol, date"},
		{"symbol_pattern", "symbol, pattern_value"},
		{"date_pattern", "date, pattern_value"},
		{"symbol_date_pattern", "symbol, date, pattern_value"},
	}
	stmts := make([]string, len(specs))
	for i, s := range specs {
		stmts[i] = fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s (%s)",
			table, s.suffix, table, s.columns,
		)
	}
	return stmts
}
