package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"breakout-scanner/src/helpers"
	"breakout-scanner/src/logger"
	"breakout-scanner/src/marketclock"
	"breakout-scanner/src/models"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// IngestionPipeline
// -----------------------------------------------------------------------------

// IngestionPipeline folds inbound trades into the state store, evaluates the
// breakout window and hands qualifying candidates to the alert queue. One
// pipeline goroutine consumes the trade channel, so no per-record locking is
// needed on the write path. Ingestion never waits on alert delivery; only
// the queue's drain loop is throttled.
type IngestionPipeline struct {
	Store     *TickerStateStore
	Evaluator *BreakoutEvaluator
	Params    *ParameterStore
	Clock     *marketclock.MarketClock
	Cooldown  *CooldownSet
	Queue     *AlertQueue
	Logger    *logger.Logger

	processed uint64
	discarded uint64
	mu        sync.Mutex
}

// -----------------------------------------------------------------------------

func NewIngestionPipeline(
	store *TickerStateStore,
	evaluator *BreakoutEvaluator,
	params *ParameterStore,
	clock *marketclock.MarketClock,
	cooldown *CooldownSet,
	queue *AlertQueue,
	log *logger.Logger,
) *IngestionPipeline {
	return &IngestionPipeline{
		Store:     store,
		Evaluator: evaluator,
		Params:    params,
		Clock:     clock,
		Cooldown:  cooldown,
		Queue:     queue,
		Logger:    log,
	}
}

// -----------------------------------------------------------------------------

// Run consumes trades until the channel closes or the context is cancelled.
func (p *IngestionPipeline) Run(ctx context.Context, trades <-chan models.MTrade, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case trade, ok := <-trades:
			if !ok {
				return
			}
			p.Process(trade)
		}
	}
}

// -----------------------------------------------------------------------------

// Process handles one trade. Trades for symbols outside the watch universe
// are discarded without side effects.
func (p *IngestionPipeline) Process(trade models.MTrade) {
	now := time.Now()

	rec, err := p.Store.ApplyTrade(trade, p.Clock.FractionElapsed(now))
	if err != nil {
		if errors.Is(err, helpers.ErrUnknownSymbol) {
			p.mu.Lock()
			p.discarded++
			p.mu.Unlock()
			return
		}
		p.Logger.Error("Trade update failed for %s: %v", trade.Symbol, err)
		return
	}

	p.mu.Lock()
	p.processed++
	p.mu.Unlock()

	isBreakout, tier := p.Evaluator.Evaluate(rec, p.Params.Get())
	if !isBreakout {
		return
	}

	// The cool-down check happens here, before enqueue. The queue itself
	// never deduplicates.
	if p.Cooldown.Active(rec.Symbol, now) {
		return
	}
	p.Cooldown.Mark(rec.Symbol, now)

	candidate := models.MAlertCandidate{
		ID:            uuid.NewString(),
		Symbol:        rec.Symbol,
		Price:         rec.LastPrice,
		PercentChange: rec.PercentChange,
		VolumeRatio:   rec.VolumeRatio,
		Volume:        rec.CumulativeVolume,
		Sector:        rec.Sector,
		Tier:          tier,
		Timestamp:     now.UTC(),
	}

	p.Logger.Info("Breakout %s: %s +%.2f%% vol ratio %.2f", tier, rec.Symbol, rec.PercentChange, rec.VolumeRatio)
	p.Queue.Enqueue(candidate)
}

// -----------------------------------------------------------------------------

// Counters returns how many trades were processed and how many were
// discarded as out of universe.
func (p *IngestionPipeline) Counters() (processed, discarded uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.processed, p.discarded
}
