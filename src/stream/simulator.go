package stream

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"breakout-scanner/src/logger"
	"breakout-scanner/src/models"
)

// -----------------------------------------------------------------------------
// SimulatedSource
// -----------------------------------------------------------------------------

// SimulatedSource fabricates a trade stream for the watch universe so the
// whole pipeline runs without a live feed. Most symbols random-walk around
// their previous close; a few are runners pushed into the breakout band with
// heavy volume so the alert path actually fires.
type SimulatedSource struct {
	interval time.Duration
	logger   *logger.Logger
	symbols  atomic.Value // stores []simSymbol
	rng      *rand.Rand
}

type simSymbol struct {
	symbol    string
	prevClose float64
	avgVolume float64
	runner    bool
	drift     float64
}

// -----------------------------------------------------------------------------

func NewSimulatedSource(cfg *models.MConfig, records []models.MTickerRecord, log *logger.Logger) *SimulatedSource {
	s := &SimulatedSource{
		interval: time.Duration(cfg.Stream.SimulateIntervalMs) * time.Millisecond,
		logger:   log,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	s.storeSymbols(records)
	return s
}

// -----------------------------------------------------------------------------

func (s *SimulatedSource) storeSymbols(records []models.MTickerRecord) {
	syms := make([]simSymbol, 0, len(records))
	for i, rec := range records {
		if rec.PrevClose <= 0 {
			continue
		}
		syms = append(syms, simSymbol{
			symbol:    rec.Symbol,
			prevClose: rec.PrevClose,
			avgVolume: rec.AverageVolume,
			// Every sixth symbol trends into the breakout band
			runner: i%6 == 0,
			drift:  0,
		})
	}
	s.symbols.Store(syms)
}

// -----------------------------------------------------------------------------

func (s *SimulatedSource) Name() string {
	return "simulator"
}

// -----------------------------------------------------------------------------

// UpdateSymbols is a no-op for the simulator; its universe is fixed from the
// seeded records.
func (s *SimulatedSource) UpdateSymbols(symbols []string) error {
	return nil
}

// -----------------------------------------------------------------------------

// Start begins emitting fabricated trades at the configured cadence.
func (s *SimulatedSource) Start(ctx context.Context, outputChan chan<- models.MTrade, wg *sync.WaitGroup) error {
	wg.Add(1)
	go s.run(ctx, outputChan, wg)
	s.logger.Info("Simulated feed started (%v interval)", s.interval)
	return nil
}

// -----------------------------------------------------------------------------

func (s *SimulatedSource) run(ctx context.Context, outputChan chan<- models.MTrade, wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	syms := s.symbols.Load().([]simSymbol)
	if len(syms) == 0 {
		s.logger.Warning("Simulator has no symbols with a previous close; feed is empty")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i := s.rng.Intn(len(syms))
			trade := s.nextTrade(&syms[i])

			select {
			case outputChan <- trade:
			case <-ctx.Done():
				return
			}
		}
	}
}

// -----------------------------------------------------------------------------

// nextTrade advances one symbol's random walk and fabricates a trade.
func (s *SimulatedSource) nextTrade(sym *simSymbol) models.MTrade {
	if sym.runner {
		// Runners climb toward +8..13% then wobble inside the band
		if sym.drift < 0.09 {
			sym.drift += 0.002 + s.rng.Float64()*0.004
		} else {
			sym.drift += (s.rng.Float64() - 0.5) * 0.004
		}
	} else {
		sym.drift += (s.rng.Float64() - 0.5) * 0.006
	}

	price := sym.prevClose * (1 + sym.drift)
	if price < 0.01 {
		price = 0.01
	}

	size := 100 + float64(s.rng.Intn(900))
	if sym.runner && sym.avgVolume > 0 {
		// Heavy tape so the volume ratio clears the scan threshold
		size = sym.avgVolume / 80 * (0.8 + s.rng.Float64())
	}

	return models.MTrade{
		Symbol:    sym.symbol,
		Price:     price,
		Size:      size,
		Timestamp: time.Now().UnixMilli(),
	}
}
