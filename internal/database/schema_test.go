package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableForSymbol(t *testing.T) {
	tests := []struct {
		symbol string
		want   string
	}{
		{"RELIANCE", "stock_reliance"},
		{"INFY", "stock_infy"},
		{"M&M", "stock_m_m"},
		{"BAJAJ-AUTO", "stock_bajaj_auto"},
		{" TCS ", "stock_tcs"},
		{"20MICRONS", "stock_20microns"},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			if got := TableForSymbol(tt.symbol); got != tt.want {
				t.Errorf("TableForSymbol(%q) = %q, want %q", tt.symbol, got, tt.want)
			}
		})
	}
}

func TestCreateTableSQL(t *testing.T) {
	sql := createTableSQL("stock_abc")

	assert.Contains(t, sql, "CREATE TABLE IF NOT EXISTS stock_abc")
	assert.Contains(t, sql, "CONSTRAINT uq_stock_abc UNIQUE (symbol, date)")
	for _, col := range []string{
		"symbol", "date", "open", "high", "low", "close",
		"volume", "prev_close", "avg_price", "pattern_value", "matched_patterns",
	} {
		assert.Contains(t, sql, col)
	}
}

func TestCreateIndexSQL(t *testing.T) {
	stmts := createIndexSQL("stock_abc")
	assert.Len(t, stmts, 7)

	for _, stmt := range stmts {
		assert.True(t, strings.HasPrefix(stmt, "CREATE INDEX IF NOT EXISTS idx_stock_abc_"), stmt)
		assert.Contains(t, stmt, "ON stock_abc (")
	}

	// The composite triple used by the heaviest downstream query.
	assert.Contains(t, stmts[6], "(symbol, date, pattern_value)")
}
