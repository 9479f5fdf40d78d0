package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"candlescan/models"
)

type fakeSource struct {
	bars    map[string][]models.PriceBar // keyed by dd-mm-yyyy
	errOn   map[string]error             // per-day fetch failures
	err     error
	fetched []time.Time
}

func (f *fakeSource) DayBars(_ context.Context, day time.Time) ([]models.PriceBar, error) {
	f.fetched = append(f.fetched, day)
	key := day.Format(models.DateLayoutConfig)
	if err, ok := f.errOn[key]; ok {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.bars[key], nil
}

type fakeStore struct {
	symbolRows  []models.EncodedBar
	commonCalls int
	commonRows  []models.EncodedBar
	failSymbols map[string]bool
	failCommon  bool
}

func (f *fakeStore) InsertSymbolBar(_ context.Context, bar models.EncodedBar) bool {
	if f.failSymbols[bar.Symbol] {
		return false
	}
	f.symbolRows = append(f.symbolRows, bar)
	return true
}

func (f *fakeStore) BulkInsertCommon(_ context.Context, bars []models.EncodedBar) bool {
	f.commonCalls++
	if f.failCommon {
		return false
	}
	f.commonRows = append(f.commonRows, bars...)
	return true
}

func day(dd string) time.Time {
	t, err := time.Parse(models.DateLayoutConfig, dd)
	if err != nil {
		panic(err)
	}
	return t
}

// hammerBar produces a bar with a long lower shadow so at least one pattern
// fires; flatBar matches nothing.
func hammerBar(symbol string, d time.Time) models.PriceBar {
	return models.PriceBar{Symbol: symbol, Date: d, Open: 100, High: 101.2, Low: 95, Close: 101, Volume: 1000, PrevClose: 100, AvgPrice: 98}
}

func flatBar(symbol string, d time.Time) models.PriceBar {
	return models.PriceBar{Symbol: symbol, Date: d, Open: 100, High: 106, Low: 98, Close: 104, Volume: 1000, PrevClose: 100, AvgPrice: 102}
}

func TestProcessDayEmptyIsNoOp(t *testing.T) {
	store := &fakeStore{}
	p := New(&fakeSource{}, store)

	result := p.ProcessDay(context.Background(), day("01-01-2025"))

	if result.Status != models.DayEmpty {
		t.Fatalf("status = %s, want empty", result.Status)
	}
	if len(store.symbolRows) != 0 || store.commonCalls != 0 {
		t.Fatal("store was touched for an empty day")
	}
}

func TestProcessDayFetchErrorIsIsolated(t *testing.T) {
	store := &fakeStore{}
	p := New(&fakeSource{err: errors.New("connection reset")}, store)

	result := p.ProcessDay(context.Background(), day("01-01-2025"))

	if result.Status != models.DayFailed || result.Err == nil {
		t.Fatalf("want failed result with error, got %+v", result)
	}
	if store.commonCalls != 0 {
		t.Fatal("store was touched after a fetch failure")
	}
}

func TestProcessDaySplitsWritePaths(t *testing.T) {
	d := day("01-01-2025")
	src := &fakeSource{bars: map[string][]models.PriceBar{
		"01-01-2025": {hammerBar("AAA", d), flatBar("BBB", d), hammerBar("CCC", d)},
	}}
	store := &fakeStore{}
	p := New(src, store)

	result := p.ProcessDay(context.Background(), d)

	if result.Status != models.DayProcessed {
		t.Fatalf("status = %s", result.Status)
	}
	// Every symbol lands in its per-symbol destination.
	if result.SymbolRows != 3 || len(store.symbolRows) != 3 {
		t.Fatalf("symbol rows = %d", result.SymbolRows)
	}
	// Only pattern-positive rows reach the shared table.
	if result.CommonRows != 2 || len(store.commonRows) != 2 {
		t.Fatalf("common rows = %d, stored %d", result.CommonRows, len(store.commonRows))
	}
	for _, bar := range store.commonRows {
		if !bar.HasPattern() {
			t.Errorf("pattern-free bar %s reached the common table", bar.Symbol)
		}
	}
}

func TestProcessDayNoPatternsNoCommonWrite(t *testing.T) {
	d := day("01-01-2025")
	src := &fakeSource{bars: map[string][]models.PriceBar{
		"01-01-2025": {flatBar("AAA", d), flatBar("BBB", d)},
	}}
	store := &fakeStore{}
	p := New(src, store)

	result := p.ProcessDay(context.Background(), d)

	if store.commonCalls != 0 {
		t.Fatal("common write attempted for a batch with no matched patterns")
	}
	if result.SymbolRows != 2 {
		t.Fatalf("symbol rows = %d", result.SymbolRows)
	}
}

func TestProcessDayPartialSymbolFailure(t *testing.T) {
	d := day("01-01-2025")
	src := &fakeSource{bars: map[string][]models.PriceBar{
		"01-01-2025": {flatBar("AAA", d), flatBar("BAD", d), flatBar("CCC", d)},
	}}
	store := &fakeStore{failSymbols: map[string]bool{"BAD": true}}
	p := New(src, store)

	result := p.ProcessDay(context.Background(), d)

	if result.SymbolRows != 2 || result.SymbolErrors != 1 {
		t.Fatalf("rows = %d, errors = %d", result.SymbolRows, result.SymbolErrors)
	}
	// One bad symbol must not fail the day.
	if result.Status != models.DayProcessed {
		t.Fatalf("status = %s", result.Status)
	}
}

func TestProcessDayDropsDuplicateSymbolRows(t *testing.T) {
	d := day("01-01-2025")
	first := flatBar("AAA", d)
	second := flatBar("AAA", d)
	second.Close = 99 // restated row, must be ignored
	src := &fakeSource{bars: map[string][]models.PriceBar{
		"01-01-2025": {first, second},
	}}
	store := &fakeStore{}
	p := New(src, store)

	result := p.ProcessDay(context.Background(), d)

	if result.SymbolRows != 1 || len(store.symbolRows) != 1 {
		t.Fatalf("symbol rows = %d", result.SymbolRows)
	}
	if store.symbolRows[0].Close != first.Close {
		t.Fatal("later duplicate overwrote the first row")
	}
}

func TestRunSkipsWeekends(t *testing.T) {
	// Fri 03-01-2025 through Mon 06-01-2025 spans a weekend.
	src := &fakeSource{}
	store := &fakeStore{}
	d := NewDriver(New(src, store))

	report := d.Run(context.Background(), day("03-01-2025"), day("06-01-2025"))

	if len(src.fetched) != 2 {
		t.Fatalf("fetched %d days, want 2 (weekdays only)", len(src.fetched))
	}
	_, _, skipped, _ := report.Counts()
	if skipped != 2 {
		t.Fatalf("skipped = %d, want 2", skipped)
	}
	for _, fetched := range src.fetched {
		if !models.IsTradingDay(fetched) {
			t.Errorf("fetched a weekend day: %s", fetched)
		}
	}
}

func TestRunIsolatesFailedDays(t *testing.T) {
	// Mon fails at fetch; Tue must still be processed.
	src := &fakeSource{
		errOn: map[string]error{"06-01-2025": errors.New("connection reset")},
		bars: map[string][]models.PriceBar{
			"07-01-2025": {flatBar("AAA", day("07-01-2025"))},
		},
	}
	store := &fakeStore{}
	d := NewDriver(New(src, store))

	report := d.Run(context.Background(), day("06-01-2025"), day("07-01-2025"))

	processed, _, _, failed := report.Counts()
	if processed != 1 || failed != 1 {
		t.Fatalf("processed = %d, failed = %d", processed, failed)
	}
	if len(store.symbolRows) != 1 {
		t.Fatalf("symbol rows = %d", len(store.symbolRows))
	}
}

// Re-running the same day against an idempotent store must offer the same
// rows again; duplicate suppression is the store's job, the pipeline's
// output is deterministic.
func TestProcessDayDeterministic(t *testing.T) {
	d := day("01-01-2025")
	src := &fakeSource{bars: map[string][]models.PriceBar{
		"01-01-2025": {hammerBar("AAA", d), flatBar("BBB", d)},
	}}
	store := &fakeStore{}
	p := New(src, store)

	first := p.ProcessDay(context.Background(), d)
	second := p.ProcessDay(context.Background(), d)

	if first.SymbolRows != second.SymbolRows || first.CommonRows != second.CommonRows {
		t.Fatalf("re-run diverged: %+v vs %+v", first, second)
	}
}
