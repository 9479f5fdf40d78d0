package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candlescan/models"
)

func testBar(symbol string) models.EncodedBar {
	return models.EncodedBar{
		PriceBar: models.PriceBar{
			Symbol: symbol,
			Date:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			Open:   10, High: 12, Low: 9, Close: 11,
			Volume: 1000, PrevClose: 10, AvgPrice: 10.5,
		},
		PatternValue: 2048,
		Matches:      []models.PatternMatch{{Name: "Hammer", Confidence: 0.8}},
	}
}

// Idempotence against a live store: inserting the same (symbol, date) twice
// must leave exactly one row in every destination.
func TestGatewayIdempotence(t *testing.T) {
	t.Skip("Integration test - requires PostgreSQL")

	ctx := context.Background()
	db, err := New(ConnectionParams{
		Host: "localhost", Port: "5432",
		User: "postgres", Password: "postgres",
		DBName: "candlescan_test", SSLMode: "disable",
	})
	require.NoError(t, err)
	defer db.Close()

	g := NewGateway(db, NewSchemaRegistry(db))
	bar := testBar("ITEST")

	require.True(t, g.InsertSymbolBar(ctx, bar))
	require.True(t, g.InsertSymbolBar(ctx, bar))
	require.True(t, g.BulkInsertCommon(ctx, []models.EncodedBar{bar}))
	require.True(t, g.BulkInsertCommon(ctx, []models.EncodedBar{bar}))

	var count int
	err = db.QueryRowContext(ctx,
		"SELECT count(*) FROM "+TableForSymbol(bar.Symbol)+" WHERE symbol = $1 AND date = $2",
		bar.Symbol, bar.Date,
	).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	err = db.QueryRowContext(ctx,
		"SELECT count(*) FROM "+CommonTable+" WHERE symbol = $1 AND date = $2",
		bar.Symbol, bar.Date,
	).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBulkInsertCommonEmptyBatch(t *testing.T) {
	// An empty batch must succeed without any database access; a nil
	// gateway connection would panic if it tried.
	g := NewGateway(nil, nil)
	assert.True(t, g.BulkInsertCommon(context.Background(), nil))
}

func TestPatternIDsStable(t *testing.T) {
	ids := patternIDs()
	assert.Len(t, ids, 12)
	assert.Equal(t, 1, ids["Hammer"])
	assert.Equal(t, 11, ids["Doji"])
	assert.Equal(t, 12, ids["LongLeggedDoji"])
}
