package engine

import (
	"errors"
	"math"
	"testing"

	"breakout-scanner/src/helpers"
	"breakout-scanner/src/models"
)

// -----------------------------------------------------------------------------

func seedStore(records ...models.MTickerRecord) *TickerStateStore {
	s := NewTickerStateStore()
	s.Seed(records)
	return s
}

// -----------------------------------------------------------------------------

func TestApplyTradeUnknownSymbol(t *testing.T) {
	s := seedStore(models.MTickerRecord{Symbol: "AAPL", PrevClose: 100})

	_, err := s.ApplyTrade(models.MTrade{Symbol: "ZZZZ", Price: 10, Size: 50}, 0.5)
	if !errors.Is(err, helpers.ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}

	if s.Size() != 1 {
		t.Fatalf("unknown symbol must not grow the universe, size = %d", s.Size())
	}
}

// -----------------------------------------------------------------------------

func TestApplyTradeHighLowVolumeInvariants(t *testing.T) {
	s := seedStore(models.MTickerRecord{Symbol: "AAPL", PrevClose: 100, AverageVolume: 1000})

	prices := []float64{105, 98, 110, 101, 95.5, 120, 119}
	var lastVolume float64

	for i, price := range prices {
		rec, err := s.ApplyTrade(models.MTrade{Symbol: "AAPL", Price: price, Size: 100}, 1.0)
		if err != nil {
			t.Fatalf("trade %d: unexpected error %v", i, err)
		}

		if rec.DayHigh < rec.LastPrice || rec.LastPrice < rec.DayLow {
			t.Fatalf("trade %d: invariant violated: low=%.2f last=%.2f high=%.2f", i, rec.DayLow, rec.LastPrice, rec.DayHigh)
		}
		if rec.CumulativeVolume < lastVolume {
			t.Fatalf("trade %d: cumulative volume decreased: %.0f -> %.0f", i, lastVolume, rec.CumulativeVolume)
		}
		lastVolume = rec.CumulativeVolume
	}

	rec, _ := s.Get("AAPL")
	if rec.DayHigh != 120 {
		t.Errorf("day high = %.2f, want 120", rec.DayHigh)
	}
	if rec.DayLow != 95.5 {
		t.Errorf("day low = %.2f, want 95.5", rec.DayLow)
	}
}

// -----------------------------------------------------------------------------

func TestApplyTradeSeedsHighLowOnFirstTrade(t *testing.T) {
	s := seedStore(models.MTickerRecord{Symbol: "TSLA", PrevClose: 200})

	rec, err := s.ApplyTrade(models.MTrade{Symbol: "TSLA", Price: 210, Size: 10}, 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if rec.DayHigh != 210 || rec.DayLow != 210 {
		t.Fatalf("first trade must seed high and low to the trade price, got high=%.2f low=%.2f", rec.DayHigh, rec.DayLow)
	}
}

// -----------------------------------------------------------------------------

func TestApplyTradeDerivedFields(t *testing.T) {
	tests := []struct {
		name        string
		prevClose   float64
		avgVolume   float64
		price       float64
		size        float64
		fraction    float64
		wantPctChg  float64
		wantRatio   float64
		pctDefined  bool
		ratDefined  bool
	}{
		{
			name:      "normal derivation",
			prevClose: 100, avgVolume: 1000,
			price: 110, size: 500, fraction: 0.5,
			wantPctChg: 10.0, wantRatio: 1.0,
			pctDefined: true, ratDefined: true,
		},
		{
			name:      "missing prev close leaves percent change undefined",
			prevClose: 0, avgVolume: 1000,
			price: 50, size: 100, fraction: 0.5,
			pctDefined: false, ratDefined: true,
			wantRatio: 0.2,
		},
		{
			name:      "missing average volume leaves ratio undefined",
			prevClose: 100, avgVolume: 0,
			price: 108, size: 100, fraction: 0.5,
			pctDefined: true, ratDefined: false,
			wantPctChg: 8.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seedStore(models.MTickerRecord{Symbol: "X", PrevClose: tt.prevClose, AverageVolume: tt.avgVolume})

			rec, err := s.ApplyTrade(models.MTrade{Symbol: "X", Price: tt.price, Size: tt.size}, tt.fraction)
			if err != nil {
				t.Fatal(err)
			}

			if rec.HasPercentChange() != tt.pctDefined {
				t.Errorf("HasPercentChange = %v, want %v", rec.HasPercentChange(), tt.pctDefined)
			}
			if rec.HasVolumeRatio() != tt.ratDefined {
				t.Errorf("HasVolumeRatio = %v, want %v", rec.HasVolumeRatio(), tt.ratDefined)
			}
			if tt.pctDefined && math.Abs(rec.PercentChange-tt.wantPctChg) > 1e-9 {
				t.Errorf("percent change = %.4f, want %.4f", rec.PercentChange, tt.wantPctChg)
			}
			if tt.ratDefined && math.Abs(rec.VolumeRatio-tt.wantRatio) > 1e-9 {
				t.Errorf("volume ratio = %.4f, want %.4f", rec.VolumeRatio, tt.wantRatio)
			}
		})
	}
}

// -----------------------------------------------------------------------------

func TestGetReturnsCopy(t *testing.T) {
	s := seedStore(models.MTickerRecord{Symbol: "AMD", PrevClose: 150})
	s.ApplyTrade(models.MTrade{Symbol: "AMD", Price: 160, Size: 10}, 1.0)

	rec, ok := s.Get("AMD")
	if !ok {
		t.Fatal("expected record")
	}
	rec.LastPrice = 1 // mutate the copy

	again, _ := s.Get("AMD")
	if again.LastPrice != 160 {
		t.Fatalf("store snapshot mutated through a reader copy: %.2f", again.LastPrice)
	}
}
