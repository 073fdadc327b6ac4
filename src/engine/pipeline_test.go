package engine

import (
	"testing"
	"time"

	"breakout-scanner/src/logger"
	"breakout-scanner/src/marketclock"
	"breakout-scanner/src/models"
)

// -----------------------------------------------------------------------------

func newTestPipeline(t *testing.T, sink *captureSink, cooldownWindow time.Duration) (*IngestionPipeline, *AlertQueue) {
	t.Helper()

	store := NewTickerStateStore()
	store.Seed([]models.MTickerRecord{
		// Heavy average volume so a 10k-share trade never qualifies alone;
		// breakout trades below send 10x that.
		{Symbol: "AAPL", PrevClose: 100, AverageVolume: 10_000, Sector: "Technology"},
		{Symbol: "MSFT", PrevClose: 200, AverageVolume: 10_000, Sector: "Technology"},
	})

	log := logger.NewLogger("ERROR", "PipelineTest")
	sectors := NewSectorAggregator()
	history := NewAlertHistory(20)
	queue := NewAlertQueue(time.Millisecond, sink, sectors, history, log)

	pipeline := NewIngestionPipeline(
		store,
		NewBreakoutEvaluator(11, 1.5),
		NewParameterStore(models.DefaultScanParameters()),
		marketclock.NewMarketClock(log),
		NewCooldownSet(cooldownWindow),
		queue,
		log,
	)
	return pipeline, queue
}

// breakoutTrade qualifies regardless of the session fraction: +10% price move
// and volume far above the trailing average.
func breakoutTrade(symbol string, prevClose float64) models.MTrade {
	return models.MTrade{
		Symbol:    symbol,
		Price:     prevClose * 1.10,
		Size:      100_000,
		Timestamp: time.Now().UnixMilli(),
	}
}

// -----------------------------------------------------------------------------

func TestPipelineUnknownSymbolDiscarded(t *testing.T) {
	sink := &captureSink{}
	p, q := newTestPipeline(t, sink, time.Hour)
	defer q.Stop()

	p.Process(breakoutTrade("ZZZZ", 100))

	processed, discarded := p.Counters()
	if processed != 0 || discarded != 1 {
		t.Errorf("counters = (%d, %d), want (0, 1)", processed, discarded)
	}
	if q.Len() != 0 {
		t.Error("unknown symbol must not produce a candidate")
	}
}

// -----------------------------------------------------------------------------

func TestPipelineEnqueuesBreakout(t *testing.T) {
	sink := &captureSink{}
	p, q := newTestPipeline(t, sink, time.Hour)
	defer q.Stop()

	p.Process(breakoutTrade("AAPL", 100))

	waitFor(t, func() bool {
		d, _ := sink.snapshot()
		return len(d) == 1
	})

	delivered, _ := sink.snapshot()
	alert := delivered[0]
	if alert.Symbol != "AAPL" {
		t.Errorf("alert symbol = %s, want AAPL", alert.Symbol)
	}
	if alert.ID == "" {
		t.Error("alert must carry an id")
	}
	if alert.Tier != models.TierElevated {
		t.Errorf("tier = %s, want elevated", alert.Tier)
	}
}

// -----------------------------------------------------------------------------

func TestPipelineCooldownSuppressesRepeats(t *testing.T) {
	sink := &captureSink{}
	p, q := newTestPipeline(t, sink, time.Hour)
	defer q.Stop()

	p.Process(breakoutTrade("AAPL", 100))
	p.Process(breakoutTrade("AAPL", 100))
	p.Process(breakoutTrade("AAPL", 100))

	// A different symbol is not suppressed
	p.Process(breakoutTrade("MSFT", 200))

	waitFor(t, func() bool {
		d, _ := sink.snapshot()
		return len(d) == 2
	})

	delivered, _ := sink.snapshot()
	if delivered[0].Symbol != "AAPL" || delivered[1].Symbol != "MSFT" {
		t.Errorf("delivered %s, %s; want AAPL, MSFT", delivered[0].Symbol, delivered[1].Symbol)
	}
}

// -----------------------------------------------------------------------------

func TestPipelineAlertsAgainAfterCooldownExpires(t *testing.T) {
	sink := &captureSink{}
	p, q := newTestPipeline(t, sink, 50*time.Millisecond)
	defer q.Stop()

	p.Process(breakoutTrade("AAPL", 100))
	time.Sleep(60 * time.Millisecond)
	p.Process(breakoutTrade("AAPL", 100))

	waitFor(t, func() bool {
		d, _ := sink.snapshot()
		return len(d) == 2
	})
}
