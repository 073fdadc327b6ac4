package engine

import "breakout-scanner/src/models"

// -----------------------------------------------------------------------------
// Market Pulse
// -----------------------------------------------------------------------------

// ComputePulse derives market breadth and a 0-100 breakout favorability index
// from the current ticker snapshots. vix is the latest volatility gauge; pass
// 0 when unavailable and the neutral factor applies.
func ComputePulse(records []models.MTickerRecord, vix float64) models.MMarketPulse {
	advancers := 0
	decliners := 0

	for _, rec := range records {
		if !rec.HasPercentChange() || rec.LastPrice <= 0 {
			continue
		}
		if rec.PercentChange > 0 {
			advancers++
		} else if rec.PercentChange < 0 {
			decliners++
		}
	}

	breadth := 50.0
	if advancers+decliners > 0 {
		breadth = float64(advancers) / float64(advancers+decliners) * 100
	}

	return models.MMarketPulse{
		Advancers:     advancers,
		Decliners:     decliners,
		BreakoutIndex: breakoutIndex(vix, breadth),
	}
}

// -----------------------------------------------------------------------------

// breakoutIndex combines a volatility factor and a breadth factor into a
// 0-100 score. Calm tape and broad participation favor breakouts.
func breakoutIndex(vix, breadthPct float64) float64 {
	vixFactor := 0.6
	switch {
	case vix <= 0:
		vixFactor = 1.0
	case vix <= 15:
		vixFactor = 1.2
	case vix <= 20:
		vixFactor = 1.0
	case vix <= 30:
		vixFactor = 0.8
	}

	breadthFactor := 0.6
	switch {
	case breadthPct >= 65:
		breadthFactor = 1.3
	case breadthPct >= 55:
		breadthFactor = 1.0
	case breadthPct >= 45:
		breadthFactor = 0.8
	}

	index := vixFactor * breadthFactor * 75
	if index > 100 {
		return 100
	}
	if index < 0 {
		return 0
	}
	return index
}
