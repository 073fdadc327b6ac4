package models

// MScanParameters defines the breakout window. Read by the evaluator as one
// consistent snapshot; updated atomically via the parameter store.
type MScanParameters struct {
	MinPercentChange float64  `yaml:"min_percent_change" json:"min_percent_change"`
	MaxPercentChange float64  `yaml:"max_percent_change" json:"max_percent_change"`
	MinVolumeRatio   float64  `yaml:"min_volume_ratio" json:"min_volume_ratio"`
	MinPrice         float64  `yaml:"min_price" json:"min_price"`
	MaxPrice         float64  `yaml:"max_price" json:"max_price"`
	MinMarketCap     float64  `yaml:"min_market_cap" json:"min_market_cap"`
	MinAvgVolume     float64  `yaml:"min_avg_volume" json:"min_avg_volume"`
	ExcludedSectors  []string `yaml:"excluded_sectors" json:"excluded_sectors"`
}

// -----------------------------------------------------------------------------

// DefaultScanParameters returns the stock scan window used when the config
// file leaves the scan section empty.
func DefaultScanParameters() MScanParameters {
	return MScanParameters{
		MinPercentChange: 8.0,
		MaxPercentChange: 13.0,
		MinVolumeRatio:   2.5,
		MinPrice:         2.0,
		MaxPrice:         2000.0,
		MinMarketCap:     100_000_000,
		MinAvgVolume:     250_000,
		ExcludedSectors:  []string{},
	}
}

// -----------------------------------------------------------------------------

// SectorExcluded reports whether the given sector is filtered out.
func (p *MScanParameters) SectorExcluded(sector string) bool {
	for _, s := range p.ExcludedSectors {
		if s == sector {
			return true
		}
	}
	return false
}
