package models

// -----------------------------------------------------------------------------
// Stream Wire Messages
// -----------------------------------------------------------------------------

// MStreamCommand is an outbound control message on the event stream.
type MStreamCommand struct {
	Action string `json:"action"`
	Params string `json:"params"`
}

// -----------------------------------------------------------------------------

// MStreamEvent is the decoded form of one inbound stream message. The server
// batches events as a JSON array; each element is tagged by Ev.
// Ev "T" is a trade, Ev "status" a lifecycle acknowledgment.
type MStreamEvent struct {
	Ev        string  `json:"ev"`
	Status    string  `json:"status"`
	Message   string  `json:"message"`
	Symbol    string  `json:"sym"`
	Price     float64 `json:"p"`
	Size      float64 `json:"s"`
	Timestamp int64   `json:"t"`
}

const (
	StreamEventTrade  = "T"
	StreamEventStatus = "status"

	StreamStatusAuthSuccess = "auth_success"
	StreamStatusAuthFailed  = "auth_failed"
	StreamStatusConnected   = "connected"
)
