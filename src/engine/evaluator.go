package engine

import "breakout-scanner/src/models"

// -----------------------------------------------------------------------------
// BreakoutEvaluator
// -----------------------------------------------------------------------------

// BreakoutEvaluator decides breakout/no-breakout and a severity tier from one
// ticker snapshot and one scan-parameter snapshot. Pure: no side effects, no
// mutation of inputs.
type BreakoutEvaluator struct {
	// Severity thresholds. Defaults of 11 and 1.5 match the historical
	// alerting behavior; changing them changes which alerts sound critical.
	CriticalPercentChange    float64
	CriticalVolumeMultiplier float64
}

// -----------------------------------------------------------------------------

func NewBreakoutEvaluator(criticalPct, criticalVolMult float64) *BreakoutEvaluator {
	if criticalPct <= 0 {
		criticalPct = 11.0
	}
	if criticalVolMult <= 0 {
		criticalVolMult = 1.5
	}
	return &BreakoutEvaluator{
		CriticalPercentChange:    criticalPct,
		CriticalVolumeMultiplier: criticalVolMult,
	}
}

// -----------------------------------------------------------------------------

// Evaluate applies the scan window to one record. A record with an undefined
// percent change or volume ratio never breaks out.
func (e *BreakoutEvaluator) Evaluate(rec models.MTickerRecord, params models.MScanParameters) (bool, models.MAlertTier) {
	if !rec.HasPercentChange() || !rec.HasVolumeRatio() {
		return false, models.TierNormal
	}
	if rec.PercentChange < params.MinPercentChange || rec.PercentChange > params.MaxPercentChange {
		return false, models.TierNormal
	}
	if rec.VolumeRatio < params.MinVolumeRatio {
		return false, models.TierNormal
	}
	if rec.LastPrice < params.MinPrice || rec.LastPrice > params.MaxPrice {
		return false, models.TierNormal
	}
	if params.SectorExcluded(rec.Sector) {
		return false, models.TierNormal
	}

	if rec.PercentChange > e.CriticalPercentChange && rec.VolumeRatio > params.MinVolumeRatio*e.CriticalVolumeMultiplier {
		return true, models.TierCritical
	}
	return true, models.TierElevated
}
