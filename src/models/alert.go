package models

import "time"

// -----------------------------------------------------------------------------
// Alert Tiers
// -----------------------------------------------------------------------------

type MAlertTier string

const (
	TierNormal   MAlertTier = "normal"
	TierElevated MAlertTier = "elevated"
	TierCritical MAlertTier = "critical"
)

// -----------------------------------------------------------------------------

// MAlertCandidate is an immutable value created once per detected breakout.
type MAlertCandidate struct {
	ID            string     `json:"id"`
	Symbol        string     `json:"symbol"`
	Price         float64    `json:"price"`
	PercentChange float64    `json:"percent_change"`
	VolumeRatio   float64    `json:"volume_ratio"`
	Volume        float64    `json:"volume"`
	Sector        string     `json:"sector"`
	Tier          MAlertTier `json:"tier"`
	Timestamp     time.Time  `json:"timestamp"`
}

// -----------------------------------------------------------------------------

// MSectorStats is one row of the sector breakdown snapshot.
type MSectorStats struct {
	Sector             string `json:"sector"`
	PotentialBreakouts int    `json:"potential_breakouts"`
}

// -----------------------------------------------------------------------------

// MMarketPulse summarizes market breadth for the dashboard header.
type MMarketPulse struct {
	Advancers     int     `json:"advancers"`
	Decliners     int     `json:"decliners"`
	BreakoutIndex float64 `json:"breakout_index"`
}
