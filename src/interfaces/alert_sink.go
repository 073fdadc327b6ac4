package interfaces

import "breakout-scanner/src/models"

// -----------------------------------------------------------------------------
// IAlertSink receives fully-formed alerts from the queue consumer, one at a
// time, in enqueue order.
// -----------------------------------------------------------------------------

type IAlertSink interface {

	// Deliver pushes one alert to the downstream consumer (UI, notification).
	// A non-nil error is logged by the caller but never halts the drain loop.
	Deliver(alert models.MAlertCandidate) error
}
