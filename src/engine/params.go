package engine

import (
	"sync/atomic"

	"breakout-scanner/src/models"
)

// -----------------------------------------------------------------------------
// ParameterStore
// -----------------------------------------------------------------------------

// ParameterStore holds the process-wide scan parameters. Get returns one
// consistent snapshot; Update swaps the whole value atomically, so an
// evaluation in flight keeps the snapshot it started with and the next
// evaluation sees the new window.
type ParameterStore struct {
	current atomic.Value // stores models.MScanParameters
}

// -----------------------------------------------------------------------------

func NewParameterStore(initial models.MScanParameters) *ParameterStore {
	ps := &ParameterStore{}
	ps.current.Store(initial)
	return ps
}

// -----------------------------------------------------------------------------

// Get returns the current scan-parameter snapshot.
func (ps *ParameterStore) Get() models.MScanParameters {
	return ps.current.Load().(models.MScanParameters)
}

// -----------------------------------------------------------------------------

// Update replaces the scan parameters. Takes effect on the next evaluation,
// not retroactively.
func (ps *ParameterStore) Update(p models.MScanParameters) {
	ps.current.Store(p)
}
