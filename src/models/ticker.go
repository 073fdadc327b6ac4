package models

import "time"

// MTickerRecord represents the rolling intraday state of one watched symbol.
// PercentChange is defined only when PrevClose > 0, VolumeRatio only when
// AverageVolume > 0; consumers must check before trusting the derived values.
type MTickerRecord struct {
	Symbol           string    `json:"symbol"`
	LastPrice        float64   `json:"last_price"`
	PrevClose        float64   `json:"prev_close"`
	DayHigh          float64   `json:"day_high"`
	DayLow           float64   `json:"day_low"`
	CumulativeVolume float64   `json:"cumulative_volume"`
	AverageVolume    float64   `json:"average_volume"`
	PercentChange    float64   `json:"percent_change"`
	VolumeRatio      float64   `json:"volume_ratio"`
	Sector           string    `json:"sector"`
	MarketCap        float64   `json:"market_cap"`
	LastUpdateTime   time.Time `json:"last_update_time"`
}

// -----------------------------------------------------------------------------

// HasPercentChange reports whether PercentChange carries a meaningful value.
func (r *MTickerRecord) HasPercentChange() bool {
	return r.PrevClose > 0
}

// HasVolumeRatio reports whether VolumeRatio carries a meaningful value.
func (r *MTickerRecord) HasVolumeRatio() bool {
	return r.AverageVolume > 0
}

// -----------------------------------------------------------------------------

// MTrade is a single trade event from the stream.
type MTrade struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Size      float64 `json:"size"`
	Timestamp int64   `json:"timestamp"`
}
