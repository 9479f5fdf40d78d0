package bhavcopy

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"candlescan/models"
)

// equitySeries is the only instrument class this system ingests.
const equitySeries = "EQ"

// Bhavcopy columns this system consumes. The raw file carries more
// (LAST_PRICE, TURNOVER_LACS, NO_OF_TRADES, DELIV_QTY, DELIV_PER); those are
// simply ignored.
var requiredColumns = []string{
	"SYMBOL", "SERIES", "DATE1", "PREV_CLOSE", "OPEN_PRICE", "HIGH_PRICE",
	"LOW_PRICE", "CLOSE_PRICE", "AVG_PRICE", "TTL_TRD_QNTY",
}

// Clean parses a raw bhavcopy CSV into PriceBars: headers and cells are
// whitespace-trimmed, only EQ-series rows are kept, and rows with malformed
// numerics or dates are dropped rather than failing the whole file.
func Clean(r io.Reader) ([]models.PriceBar, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var bars []models.PriceBar
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		field := func(name string) string {
			return strings.TrimSpace(record[cols[name]])
		}

		if field("SERIES") != equitySeries {
			continue
		}

		date, err := time.Parse(models.DateLayoutBhav, field("DATE1"))
		if err != nil {
			continue
		}

		bar := models.PriceBar{
			Symbol: field("SYMBOL"),
			Date:   models.DateOnly(date),
		}

		ok := true
		for _, f := range []struct {
			col string
			dst *float64
		}{
			{"OPEN_PRICE", &bar.Open},
			{"HIGH_PRICE", &bar.High},
			{"LOW_PRICE", &bar.Low},
			{"CLOSE_PRICE", &bar.Close},
			{"TTL_TRD_QNTY", &bar.Volume},
			{"PREV_CLOSE", &bar.PrevClose},
			{"AVG_PRICE", &bar.AvgPrice},
		} {
			v, err := strconv.ParseFloat(field(f.col), 64)
			if err != nil {
				ok = false
				break
			}
			*f.dst = v
		}
		if !ok || bar.Symbol == "" {
			continue
		}

		bars = append(bars, bar)
	}

	return bars, nil
}
