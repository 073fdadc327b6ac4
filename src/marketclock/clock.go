package marketclock

import (
	"time"

	"breakout-scanner/src/logger"

	"github.com/scmhub/calendar"
)

// -----------------------------------------------------------------------------

const (
	openHour    = 9
	openMinute  = 30
	closeHour   = 16
	minFraction = 0.1
)

// MarketClock answers "is the market open" and "how much of the trading day
// has elapsed". The elapsed fraction normalizes cumulative session volume
// against the full-day average.
type MarketClock struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// NewMarketClock builds a clock for the US equity session (NYSE calendar).
// Falls back to plain Mon-Fri 09:30-16:00 New York time when the calendar
// cannot be loaded.
func NewMarketClock(log *logger.Logger) *MarketClock {
	// scmhub/calendar.GetCalendar returns a calendar by MIC (ISO 10383)
	cal := calendar.GetCalendar("xnys")
	if cal == nil {
		log.Warning("Failed to load calendar for MIC 'xnys'. Using simple fallback (Mon-Fri 09:30-16:00 NY).")
		nyLoc, _ := time.LoadLocation("America/New_York")
		if nyLoc == nil {
			nyLoc = time.UTC // Worst case
		}
		return &MarketClock{Fallback: true, Timezone: nyLoc}
	}

	return &MarketClock{Calendar: cal, Fallback: false, Timezone: cal.Loc}
}

// -----------------------------------------------------------------------------

// IsTradingDay reports whether date falls on a session day.
func (mc *MarketClock) IsTradingDay(date time.Time) bool {
	if mc.Timezone != nil {
		date = date.In(mc.Timezone)
	}

	if mc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	// Library handles IsHoliday / IsBusinessDay
	return mc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpen checks if the market is open at a specific instant.
func (mc *MarketClock) IsOpen(t time.Time) bool {
	if mc.Timezone != nil {
		t = t.In(mc.Timezone)
	}

	if !mc.IsTradingDay(t) {
		return false
	}

	if mc.Fallback {
		hour := t.Hour()
		minute := t.Minute()

		// 9:30 - 16:00 NY Time
		if (hour > openHour || (hour == openHour && minute >= openMinute)) && hour < closeHour {
			return true
		}
		return false
	}

	return mc.Calendar.IsOpen(t)
}

// -----------------------------------------------------------------------------

// FractionElapsed returns how much of the trading session has passed at t,
// clamped to [minFraction, 1.0]. Outside market hours it returns 1.0 so the
// volume ratio compares against a full-day average instead of blowing up.
func (mc *MarketClock) FractionElapsed(t time.Time) float64 {
	if !mc.IsOpen(t) {
		return 1.0
	}

	if mc.Timezone != nil {
		t = t.In(mc.Timezone)
	}

	open := time.Date(t.Year(), t.Month(), t.Day(), openHour, openMinute, 0, 0, t.Location())
	close := time.Date(t.Year(), t.Month(), t.Day(), closeHour, 0, 0, 0, t.Location())

	elapsed := t.Sub(open).Minutes()
	total := close.Sub(open).Minutes()

	fraction := elapsed / total
	if fraction < minFraction {
		return minFraction
	}
	if fraction > 1.0 {
		return 1.0
	}
	return fraction
}
