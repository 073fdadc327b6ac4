package engine

import (
	"fmt"
	"testing"

	"breakout-scanner/src/models"
)

// -----------------------------------------------------------------------------

func TestAlertHistoryCapAndOrder(t *testing.T) {
	h := NewAlertHistory(3)

	for i := 1; i <= 5; i++ {
		h.Add(models.MAlertCandidate{Symbol: fmt.Sprintf("S%d", i)})
	}

	if h.Size() != 3 {
		t.Fatalf("size = %d, want 3", h.Size())
	}

	latest := h.Latest()
	want := []string{"S5", "S4", "S3"}
	for i, sym := range want {
		if latest[i].Symbol != sym {
			t.Errorf("latest[%d] = %s, want %s", i, latest[i].Symbol, sym)
		}
	}
}

// -----------------------------------------------------------------------------

func TestAlertHistoryEmpty(t *testing.T) {
	h := NewAlertHistory(5)
	if got := h.Latest(); len(got) != 0 {
		t.Errorf("empty history returned %d alerts", len(got))
	}
}
