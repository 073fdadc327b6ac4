package engine

import (
	"context"
	"sync"
	"time"

	"breakout-scanner/src/interfaces"
	"breakout-scanner/src/logger"
	"breakout-scanner/src/models"
)

// -----------------------------------------------------------------------------
// AlertQueue
// -----------------------------------------------------------------------------

type queueState int

const (
	queueIdle queueState = iota
	queueDraining
)

// AlertQueue serializes alert emission. Enqueue appends to a FIFO; a single
// drain goroutine pops one candidate at a time, performs the delivery side
// effects, then waits the inter-alert delay before the next pop. The pacing
// keeps a burst (a reconnect replaying many symbols at once) from flooding
// the downstream UI and audio channel. The queue does not deduplicate; the
// cool-down check belongs to the caller.
type AlertQueue struct {
	mu      sync.Mutex
	pending []models.MAlertCandidate
	state   queueState

	delay   time.Duration
	sink    interfaces.IAlertSink
	sectors *SectorAggregator
	history *AlertHistory
	logger  *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// -----------------------------------------------------------------------------

func NewAlertQueue(delay time.Duration, sink interfaces.IAlertSink, sectors *SectorAggregator, history *AlertHistory, log *logger.Logger) *AlertQueue {
	ctx, cancel := context.WithCancel(context.Background())
	return &AlertQueue{
		delay:   delay,
		sink:    sink,
		sectors: sectors,
		history: history,
		logger:  log,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// -----------------------------------------------------------------------------

// Enqueue appends a candidate and starts the drain loop if the queue was
// idle. Never blocks on delivery.
func (q *AlertQueue) Enqueue(candidate models.MAlertCandidate) {
	q.mu.Lock()
	q.pending = append(q.pending, candidate)
	startDrain := q.state == queueIdle
	if startDrain {
		q.state = queueDraining
	}
	q.mu.Unlock()

	if startDrain {
		q.wg.Add(1)
		go q.drain()
	}
}

// -----------------------------------------------------------------------------

// drain pops candidates strictly one at a time until the queue empties.
func (q *AlertQueue) drain() {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.state = queueIdle
			q.mu.Unlock()
			return
		}
		candidate := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.deliver(candidate)

		select {
		case <-time.After(q.delay):
		case <-q.ctx.Done():
			q.mu.Lock()
			q.state = queueIdle
			q.mu.Unlock()
			return
		}
	}
}

// -----------------------------------------------------------------------------

// deliver performs the side effects for one candidate. A sink failure is
// logged and the drain loop moves on.
func (q *AlertQueue) deliver(candidate models.MAlertCandidate) {
	q.sectors.Record(candidate.Sector)
	q.history.Add(candidate)

	if err := q.sink.Deliver(candidate); err != nil {
		q.logger.Warning("Alert delivery failed for %s: %v", candidate.Symbol, err)
	}
}

// -----------------------------------------------------------------------------

// Stop cancels any pending inter-alert timer and waits for the drain
// goroutine to exit. Undelivered candidates are dropped.
func (q *AlertQueue) Stop() {
	q.cancel()
	q.wg.Wait()
}

// -----------------------------------------------------------------------------

// Len returns the number of candidates waiting for delivery.
func (q *AlertQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
