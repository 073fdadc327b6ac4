package backfill

import "breakout-scanner/src/models"

// -----------------------------------------------------------------------------

// DefaultUniverse returns a small built-in watch list used when simulation is
// enabled and no reference API is configured. Previous closes and average
// volumes are plausible placeholders, not live data.
func DefaultUniverse() []models.MTickerRecord {
	return []models.MTickerRecord{
		{Symbol: "AAPL", Sector: "Technology", PrevClose: 178.50, AverageVolume: 52_000_000, MarketCap: 2_800_000_000_000},
		{Symbol: "MSFT", Sector: "Technology", PrevClose: 415.20, AverageVolume: 24_000_000, MarketCap: 3_100_000_000_000},
		{Symbol: "GOOGL", Sector: "Technology", PrevClose: 152.30, AverageVolume: 28_000_000, MarketCap: 1_900_000_000_000},
		{Symbol: "AMZN", Sector: "Consumer Cyclical", PrevClose: 186.40, AverageVolume: 41_000_000, MarketCap: 1_950_000_000_000},
		{Symbol: "NVDA", Sector: "Technology", PrevClose: 122.80, AverageVolume: 310_000_000, MarketCap: 3_000_000_000_000},
		{Symbol: "TSLA", Sector: "Consumer Cyclical", PrevClose: 248.90, AverageVolume: 95_000_000, MarketCap: 790_000_000_000},
		{Symbol: "META", Sector: "Communication Services", PrevClose: 512.70, AverageVolume: 14_000_000, MarketCap: 1_300_000_000_000},
		{Symbol: "AMD", Sector: "Technology", PrevClose: 158.10, AverageVolume: 55_000_000, MarketCap: 255_000_000_000},
		{Symbol: "NFLX", Sector: "Communication Services", PrevClose: 642.30, AverageVolume: 3_500_000, MarketCap: 276_000_000_000},
		{Symbol: "CRM", Sector: "Technology", PrevClose: 264.50, AverageVolume: 5_200_000, MarketCap: 256_000_000_000},
	}
}

// -----------------------------------------------------------------------------

// LastPriceSeeded copies PrevClose into LastPrice for records that have not
// traded yet, so the dashboard shows a price before the first tick.
func LastPriceSeeded(records []models.MTickerRecord) []models.MTickerRecord {
	for i := range records {
		if records[i].LastPrice <= 0 {
			records[i].LastPrice = records[i].PrevClose
		}
	}
	return records
}
