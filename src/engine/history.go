package engine

import (
	"sync"

	"breakout-scanner/src/models"
)

// -----------------------------------------------------------------------------
// AlertHistory is a fixed-size circular buffer of delivered alerts.
// True ring buffer - no resizing allowed!
// -----------------------------------------------------------------------------

type AlertHistory struct {
	mu       sync.Mutex
	data     []models.MAlertCandidate
	capacity int
	index    int // Next write position
	size     int // Current number of elements
}

// -----------------------------------------------------------------------------

// NewAlertHistory creates a new buffer with fixed capacity
func NewAlertHistory(capacity int) *AlertHistory {
	if capacity <= 0 {
		capacity = 20 // Default reasonable size
	}

	return &AlertHistory{
		data:     make([]models.MAlertCandidate, capacity),
		capacity: capacity,
		index:    0,
		size:     0,
	}
}

// -----------------------------------------------------------------------------

// Add records a delivered alert, overwriting the oldest when full
func (h *AlertHistory) Add(alert models.MAlertCandidate) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.data[h.index] = alert
	h.index = (h.index + 1) % h.capacity

	// Update size (never exceeds capacity)
	if h.size < h.capacity {
		h.size++
	}
}

// -----------------------------------------------------------------------------

// Latest returns the delivered alerts, newest first
func (h *AlertHistory) Latest() []models.MAlertCandidate {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.size == 0 {
		return []models.MAlertCandidate{}
	}

	result := make([]models.MAlertCandidate, h.size)

	// Latest data is at index-1, walk backwards
	for i := 0; i < h.size; i++ {
		idx := (h.index - 1 - i + h.capacity) % h.capacity
		result[i] = h.data[idx]
	}

	return result
}

// -----------------------------------------------------------------------------

// Size returns current number of elements
func (h *AlertHistory) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.size
}

// -----------------------------------------------------------------------------

// Capacity returns buffer capacity (fixed)
func (h *AlertHistory) Capacity() int {
	return h.capacity
}
