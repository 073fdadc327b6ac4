package engine

import (
	"sync"
	"time"

	"breakout-scanner/src/helpers"
	"breakout-scanner/src/models"
)

// -----------------------------------------------------------------------------
// TickerStateStore
// -----------------------------------------------------------------------------

// TickerStateStore owns the per-symbol rolling statistics. The ingestion
// goroutine is the only writer; the dashboard reads concurrently, so access
// goes through a coarse RWMutex. Records are stored and returned by value,
// and a trade replaces the whole record in one step, so a reader never sees
// derived fields computed from a different last price.
type TickerStateStore struct {
	mu      sync.RWMutex
	records map[string]models.MTickerRecord
}

// -----------------------------------------------------------------------------

func NewTickerStateStore() *TickerStateStore {
	return &TickerStateStore{
		records: make(map[string]models.MTickerRecord),
	}
}

// -----------------------------------------------------------------------------

// Seed installs the watch universe. The universe is fixed at initialization
// time; stream traffic never grows it.
func (s *TickerStateStore) Seed(records []models.MTickerRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		s.records[r.Symbol] = r
	}
}

// -----------------------------------------------------------------------------

// ApplyTrade folds one trade into the symbol's record and returns the updated
// snapshot. fractionElapsed comes from the market clock and normalizes the
// volume ratio. Unknown symbols are rejected with helpers.ErrUnknownSymbol.
func (s *TickerStateStore) ApplyTrade(trade models.MTrade, fractionElapsed float64) (models.MTickerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[trade.Symbol]
	if !ok {
		return models.MTickerRecord{}, helpers.ErrUnknownSymbol
	}

	rec.LastPrice = trade.Price
	if rec.DayHigh == 0 || trade.Price > rec.DayHigh {
		rec.DayHigh = trade.Price
	}
	if rec.DayLow == 0 || trade.Price < rec.DayLow {
		rec.DayLow = trade.Price
	}
	rec.CumulativeVolume += trade.Size

	// Derived fields are recomputed together with the inputs they depend on.
	if rec.PrevClose > 0 {
		rec.PercentChange = (rec.LastPrice - rec.PrevClose) / rec.PrevClose * 100
	} else {
		rec.PercentChange = 0
	}
	if rec.AverageVolume > 0 && fractionElapsed > 0 {
		rec.VolumeRatio = rec.CumulativeVolume / (rec.AverageVolume * fractionElapsed)
	} else {
		rec.VolumeRatio = 0
	}

	rec.LastUpdateTime = time.Now().UTC()

	s.records[trade.Symbol] = rec
	return rec, nil
}

// -----------------------------------------------------------------------------

// Get returns the current snapshot of one symbol.
func (s *TickerStateStore) Get(symbol string) (models.MTickerRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[symbol]
	return rec, ok
}

// -----------------------------------------------------------------------------

// Snapshot returns a copy of every record, for the dashboard.
func (s *TickerStateStore) Snapshot() []models.MTickerRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.MTickerRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	return out
}

// -----------------------------------------------------------------------------

// Symbols returns the watch universe.
func (s *TickerStateStore) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.records))
	for sym := range s.records {
		out = append(out, sym)
	}
	return out
}

// -----------------------------------------------------------------------------

// Size returns the number of watched symbols.
func (s *TickerStateStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
