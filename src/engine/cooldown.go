package engine

import (
	"sync"
	"time"
)

// -----------------------------------------------------------------------------
// CooldownSet
// -----------------------------------------------------------------------------

// CooldownSet suppresses repeat alerts for a symbol still inside the breakout
// window. The window slides from the moment the alert was raised and is
// checked on read. Expired entries are swept whenever a new symbol is marked,
// keeping the set bounded without a background timer.
type CooldownSet struct {
	mu      sync.Mutex
	window  time.Duration
	entries map[string]time.Time
}

// -----------------------------------------------------------------------------

func NewCooldownSet(window time.Duration) *CooldownSet {
	return &CooldownSet{
		window:  window,
		entries: make(map[string]time.Time),
	}
}

// -----------------------------------------------------------------------------

// Active reports whether the symbol raised an alert within the window.
func (c *CooldownSet) Active(symbol string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	raisedAt, ok := c.entries[symbol]
	if !ok {
		return false
	}
	if now.Sub(raisedAt) >= c.window {
		delete(c.entries, symbol)
		return false
	}
	return true
}

// -----------------------------------------------------------------------------

// Mark records that an alert was raised for the symbol at the given time.
func (c *CooldownSet) Mark(symbol string, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for sym, raisedAt := range c.entries {
		if now.Sub(raisedAt) >= c.window {
			delete(c.entries, sym)
		}
	}
	c.entries[symbol] = now
}

// -----------------------------------------------------------------------------

// Clear removes the symbol's entry so it may alert again immediately. Used
// when a candidate is dismissed from the dashboard.
func (c *CooldownSet) Clear(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, symbol)
}

// -----------------------------------------------------------------------------

// Size returns the number of live entries, expired or not.
func (c *CooldownSet) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
