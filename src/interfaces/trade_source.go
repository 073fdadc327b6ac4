package interfaces

import (
	"context"
	"sync"

	"breakout-scanner/src/models"
)

// -----------------------------------------------------------------------------
// ITradeSource interface for components that emit trade events.
// -----------------------------------------------------------------------------

type ITradeSource interface {

	// Name returns the unique identifier of the source
	Name() string

	// -----------------------------------------------------------------------------

	// Start begins emitting trades on outputChan.
	// ctx: controls the lifecycle (cancellation stops the source)
	// wg: WaitGroup to signal when the source has fully stopped
	Start(ctx context.Context, outputChan chan<- models.MTrade, wg *sync.WaitGroup) error

	// -----------------------------------------------------------------------------

	// UpdateSymbols replaces the watch universe the source emits for.
	// Takes effect on the next (re)subscription.
	UpdateSymbols(symbols []string) error
}
