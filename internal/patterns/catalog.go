// Package patterns detects candlestick price-action patterns on daily bars
// and encodes the results into the compact pattern_value bitmask.
package patterns

import "candlescan/models"

// Detector is one catalog entry: a named, pure boolean predicate over bar i
// of a single-symbol series, returning a 0..1 strength when it fires.
type Detector struct {
	Name  string
	Match func(series []models.PriceBar, i int) (bool, float64)
}

// single lifts a per-bar predicate into the Detector signature.
func single(f func(candleParts) (bool, float64)) func([]models.PriceBar, int) (bool, float64) {
	return func(series []models.PriceBar, i int) (bool, float64) {
		return f(split(series[i]))
	}
}

// catalog is the fixed, ordered pattern set. The order defines bit positions
// in pattern_value: reordering or inserting entries changes every stored
// value, so treat this list as a versioned contract and only append.
var catalog = []Detector{
	{"Hammer", single(matchHammer)},
	{"InvertedHammer", single(matchInvertedHammer)},
	{"DragonflyDoji", single(matchDragonflyDoji)},
	{"PiercingLine", func(series []models.PriceBar, i int) (bool, float64) {
		if i == 0 {
			// Lookback not available; fail closed rather than guess.
			return false, 0
		}
		return matchPiercingLine(series[i-1], series[i], split(series[i-1]), split(series[i]))
	}},
	{"BullishMarubozu", single(matchBullishMarubozu)},
	{"BullishSpinningTop", single(matchBullishSpinningTop)},
	{"HangingMan", single(matchHangingMan)},
	{"ShootingStar", single(matchShootingStar)},
	{"GravestoneDoji", single(matchGravestoneDoji)},
	{"BearishSpinningTop", single(matchBearishSpinningTop)},
	{"Doji", single(matchDoji)},
	{"LongLeggedDoji", single(matchLongLeggedDoji)},
}

// Names returns the catalog pattern names in bit order, most significant first.
func Names() []string {
	names := make([]string, len(catalog))
	for i, d := range catalog {
		names[i] = d.Name
	}
	return names
}

// Size is the number of catalog entries, i.e. the bit width of pattern_value.
func Size() int { return len(catalog) }

// Bit returns the pattern_value contribution of the catalog entry at index i.
// The first entry occupies the most significant bit.
func Bit(i int) int { return 1 << (len(catalog) - 1 - i) }

// EncodeSeries runs every catalog detector over an ordered single-symbol
// series and returns the bars augmented with pattern_value and the matched
// pattern list. Evaluation is deterministic: the same series always encodes
// to the same values.
func EncodeSeries(series []models.PriceBar) []models.EncodedBar {
	out := make([]models.EncodedBar, len(series))
	for i, bar := range series {
		enc := models.EncodedBar{PriceBar: bar}
		for p, d := range catalog {
			fired, strength := d.Match(series, i)
			if fired {
				enc.PatternValue |= Bit(p)
				enc.Matches = append(enc.Matches, models.PatternMatch{Name: d.Name, Confidence: strength})
			}
		}
		out[i] = enc
	}
	return out
}

// EncodeRows encodes a batch spanning symbols, each row as its own
// single-bar series. Detectors that need lookback never fire here; a daily
// cross-symbol batch carries no per-symbol history.
func EncodeRows(bars []models.PriceBar) []models.EncodedBar {
	out := make([]models.EncodedBar, len(bars))
	for i := range bars {
		out[i] = EncodeSeries(bars[i : i+1])[0]
	}
	return out
}
