package backfill

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"breakout-scanner/src/interfaces"
	"breakout-scanner/src/logger"
	"breakout-scanner/src/models"
)

// -----------------------------------------------------------------------------
// Backfiller
// -----------------------------------------------------------------------------

// Backfiller loads the watch universe and each symbol's reference statistics
// (previous close, trailing average volume, sector, market cap) before
// streaming begins. Failures are local: a symbol whose detail requests fail
// stays in the universe without an average volume, which keeps its volume
// ratio undefined so it can never break out.
type Backfiller struct {
	Config  *models.MConfig
	APIKey  string
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewBackfiller(cfg *models.MConfig, apiKey string, netMgr interfaces.INetworkManager, log *logger.Logger) *Backfiller {
	return &Backfiller{
		Config:  cfg,
		APIKey:  apiKey,
		Network: netMgr,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------
// Reference API payloads
// -----------------------------------------------------------------------------

type tickersPageResponse struct {
	Results []struct {
		Ticker         string  `json:"ticker"`
		Name           string  `json:"name"`
		MarketCap      float64 `json:"market_cap"`
		SicDescription string  `json:"sic_description"`
	} `json:"results"`
	NextURL string `json:"next_url"`
	Status  string `json:"status"`
}

type prevCloseResponse struct {
	Results []struct {
		Close  float64 `json:"c"`
		Volume float64 `json:"v"`
	} `json:"results"`
	Status string `json:"status"`
}

type dailyAggsResponse struct {
	Results []struct {
		Volume float64 `json:"v"`
	} `json:"results"`
	Status string `json:"status"`
}

// -----------------------------------------------------------------------------

// Load fetches the universe and per-symbol reference stats. Partial results
// are returned with a nil error as long as the universe itself loaded.
func (b *Backfiller) Load(params models.MScanParameters) ([]models.MTickerRecord, error) {
	records, err := b.loadUniverse(params)
	if err != nil {
		return nil, fmt.Errorf("universe load failed: %w", err)
	}

	b.Logger.Info("Universe loaded: %d symbols. Fetching reference stats...", len(records))
	b.fillDetails(records)

	records = b.filterThin(records, params.MinAvgVolume)

	complete := 0
	for i := range records {
		if records[i].AverageVolume > 0 {
			complete++
		}
	}
	b.Logger.Info("Backfill complete: %d/%d symbols with reference volume", complete, len(records))

	return records, nil
}

// -----------------------------------------------------------------------------

// loadUniverse pages through the reference ticker listing, largest market cap
// first, until the configured limit is reached or pages run out.
func (b *Backfiller) loadUniverse(params models.MScanParameters) ([]models.MTickerRecord, error) {
	var records []models.MTickerRecord

	url := fmt.Sprintf("%s/v3/reference/tickers", b.Config.Reference.BaseURL)
	reqParams := map[string]string{
		"market": "stocks",
		"active": "true",
		"sort":   "market_cap",
		"order":  "desc",
		"limit":  fmt.Sprintf("%d", b.Config.Reference.PageSize),
		"apiKey": b.APIKey,
	}

	for len(records) < b.Config.Reference.UniverseLimit {
		body, err := b.Network.Get(url, reqParams)
		if err != nil {
			if len(records) > 0 {
				// A later page failing is not fatal; scan what we have.
				b.Logger.Warning("Universe page fetch failed after %d symbols: %v", len(records), err)
				break
			}
			return nil, err
		}

		var page tickersPageResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("universe page decode failed: %w", err)
		}

		for _, t := range page.Results {
			if len(records) >= b.Config.Reference.UniverseLimit {
				break
			}
			if params.MinMarketCap > 0 && t.MarketCap > 0 && t.MarketCap < params.MinMarketCap {
				continue
			}

			sector := strings.TrimSpace(t.SicDescription)
			if sector == "" {
				sector = "Unknown"
			}

			records = append(records, models.MTickerRecord{
				Symbol:    t.Ticker,
				Sector:    sector,
				MarketCap: t.MarketCap,
			})
		}

		if page.NextURL == "" {
			break
		}
		url = page.NextURL
		reqParams = map[string]string{"apiKey": b.APIKey}

		// Pace page requests to stay inside the reference API rate limits
		time.Sleep(200 * time.Millisecond)
	}

	return records, nil
}

// -----------------------------------------------------------------------------

// filterThin drops symbols whose trailing average volume is known and below
// the liquidity floor. Symbols whose stats could not be fetched are kept; an
// unset average volume already keeps them out of the breakout window.
func (b *Backfiller) filterThin(records []models.MTickerRecord, minAvgVolume float64) []models.MTickerRecord {
	if minAvgVolume <= 0 {
		return records
	}

	kept := records[:0]
	for _, r := range records {
		if r.AverageVolume > 0 && r.AverageVolume < minAvgVolume {
			b.Logger.Debug("Dropping %s: average volume %.0f below %.0f", r.Symbol, r.AverageVolume, minAvgVolume)
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// -----------------------------------------------------------------------------

// fillDetails fetches previous close and trailing average volume for each
// symbol concurrently, bounded by the configured request limit.
func (b *Backfiller) fillDetails(records []models.MTickerRecord) {
	var wg sync.WaitGroup
	sem := make(chan struct{}, b.Config.Network.ConcurrentRequests)

	for i := range records {
		wg.Add(1)
		go func(rec *models.MTickerRecord) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := b.fillSymbol(rec); err != nil {
				b.Logger.Debug("Skipping reference stats for %s: %v", rec.Symbol, err)
			}
		}(&records[i])
	}

	wg.Wait()
}

// -----------------------------------------------------------------------------

func (b *Backfiller) fillSymbol(rec *models.MTickerRecord) error {
	prevClose, err := b.fetchPrevClose(rec.Symbol)
	if err != nil {
		return err
	}

	avgVolume, err := b.fetchAverageVolume(rec.Symbol)
	if err != nil {
		return err
	}

	rec.PrevClose = prevClose
	rec.AverageVolume = avgVolume
	rec.LastPrice = prevClose
	return nil
}

// -----------------------------------------------------------------------------

func (b *Backfiller) fetchPrevClose(symbol string) (float64, error) {
	url := fmt.Sprintf("%s/v2/aggs/ticker/%s/prev", b.Config.Reference.BaseURL, symbol)
	body, err := b.Network.Get(url, map[string]string{
		"adjusted": "true",
		"apiKey":   b.APIKey,
	})
	if err != nil {
		return 0, err
	}

	var resp prevCloseResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("prev close decode failed: %w", err)
	}
	if len(resp.Results) == 0 {
		return 0, fmt.Errorf("no previous close for %s", symbol)
	}

	return resp.Results[0].Close, nil
}

// -----------------------------------------------------------------------------

// fetchAverageVolume returns the mean daily volume over the configured
// trailing window (14 sessions by default).
func (b *Backfiller) fetchAverageVolume(symbol string) (float64, error) {
	days := b.Config.Reference.AvgVolumeDays
	to := time.Now().UTC()
	// Calendar span is wider than the session count to cover weekends
	from := to.AddDate(0, 0, -(days*2 + 2))

	url := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s",
		b.Config.Reference.BaseURL, symbol,
		from.Format("2006-01-02"), to.Format("2006-01-02"))

	body, err := b.Network.Get(url, map[string]string{
		"adjusted": "true",
		"limit":    fmt.Sprintf("%d", days),
		"sort":     "desc",
		"apiKey":   b.APIKey,
	})
	if err != nil {
		return 0, err
	}

	var resp dailyAggsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("daily aggs decode failed: %w", err)
	}
	if len(resp.Results) == 0 {
		return 0, fmt.Errorf("no daily aggregates for %s", symbol)
	}

	count := len(resp.Results)
	if count > days {
		count = days
	}

	var total float64
	for i := 0; i < count; i++ {
		total += resp.Results[i].Volume
	}
	return total / float64(count), nil
}
