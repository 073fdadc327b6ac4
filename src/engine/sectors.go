package engine

import (
	"sort"
	"sync"

	"breakout-scanner/src/models"
)

// -----------------------------------------------------------------------------
// SectorAggregator
// -----------------------------------------------------------------------------

// UnknownSector is the bucket for alerts whose symbol carries no sector
// classification.
const UnknownSector = "Unknown"

// SectorAggregator counts emitted breakouts per sector. Counters only grow
// for the lifetime of the process.
type SectorAggregator struct {
	mu     sync.Mutex
	counts map[string]int
}

// -----------------------------------------------------------------------------

func NewSectorAggregator() *SectorAggregator {
	return &SectorAggregator{
		counts: make(map[string]int),
	}
}

// -----------------------------------------------------------------------------

// Record increments the sector's breakout counter. Empty sectors count under
// the Unknown bucket rather than being rejected.
func (a *SectorAggregator) Record(sector string) {
	if sector == "" {
		sector = UnknownSector
	}

	a.mu.Lock()
	a.counts[sector]++
	a.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Snapshot returns a copy of the per-sector counters, sorted by count
// descending for stable reporting.
func (a *SectorAggregator) Snapshot() []models.MSectorStats {
	a.mu.Lock()
	out := make([]models.MSectorStats, 0, len(a.counts))
	for sector, n := range a.counts {
		out = append(out, models.MSectorStats{Sector: sector, PotentialBreakouts: n})
	}
	a.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].PotentialBreakouts != out[j].PotentialBreakouts {
			return out[i].PotentialBreakouts > out[j].PotentialBreakouts
		}
		return out[i].Sector < out[j].Sector
	})
	return out
}
