package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"breakout-scanner/src/logger"
	"breakout-scanner/src/models"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Connection States
// -----------------------------------------------------------------------------

type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateAuthenticating
	StateSubscribed
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateSubscribed:
		return "subscribed"
	default:
		return "disconnected"
	}
}

// -----------------------------------------------------------------------------
// ConnectionManager
// -----------------------------------------------------------------------------

// ConnectionManager owns the live event-stream connection: dial, authenticate
// with the opaque credential, subscribe the full watch universe, forward
// trades, and reconnect after a fixed delay whenever the connection drops
// while the system is not shutting down. Retries are unbounded; a dashboard
// that gives up is worse than one that keeps knocking.
type ConnectionManager struct {
	URL            string
	ReconnectDelay time.Duration

	apiKey  string
	symbols atomic.Value // stores []string
	state   atomic.Int32
	dialer  *websocket.Dialer
	logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewConnectionManager(cfg *models.MConfig, apiKey string, symbols []string, log *logger.Logger) *ConnectionManager {
	m := &ConnectionManager{
		URL:            cfg.Stream.URL,
		ReconnectDelay: time.Duration(cfg.Stream.ReconnectDelaySeconds) * time.Second,
		apiKey:         apiKey,
		logger:         log,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
	m.symbols.Store(symbols)
	m.state.Store(int32(StateDisconnected))
	return m
}

// -----------------------------------------------------------------------------

func (m *ConnectionManager) Name() string {
	return "stream"
}

// -----------------------------------------------------------------------------

// State returns the current connection state.
func (m *ConnectionManager) State() ConnectionState {
	return ConnectionState(m.state.Load())
}

// -----------------------------------------------------------------------------

// UpdateSymbols replaces the watch universe. The new list is sent on the next
// (re)subscription, not retroactively.
func (m *ConnectionManager) UpdateSymbols(symbols []string) error {
	m.symbols.Store(symbols)
	return nil
}

// -----------------------------------------------------------------------------

// Start launches the connect/reconnect loop. Cancelling ctx is the deliberate
// shutdown path and suppresses reconnection.
func (m *ConnectionManager) Start(ctx context.Context, outputChan chan<- models.MTrade, wg *sync.WaitGroup) error {
	if m.URL == "" {
		return fmt.Errorf("stream url is empty")
	}

	wg.Add(1)
	go m.run(ctx, outputChan, wg)
	return nil
}

// -----------------------------------------------------------------------------

// run is the reconnect loop: one attempt per delay window, forever.
func (m *ConnectionManager) run(ctx context.Context, outputChan chan<- models.MTrade, wg *sync.WaitGroup) {
	defer wg.Done()
	defer m.state.Store(int32(StateDisconnected))

	for {
		err := m.runOnce(ctx, outputChan)
		m.state.Store(int32(StateDisconnected))

		if ctx.Err() != nil {
			m.logger.Info("Stream closed, shutting down")
			return
		}
		if err != nil {
			m.logger.Warning("Stream connection lost: %v. Reconnecting in %v", err, m.ReconnectDelay)
		}

		select {
		case <-time.After(m.ReconnectDelay):
		case <-ctx.Done():
			return
		}
	}
}

// -----------------------------------------------------------------------------

// runOnce performs one full connection lifecycle: dial, authenticate,
// subscribe, then pump trades until the connection dies or ctx is cancelled.
func (m *ConnectionManager) runOnce(ctx context.Context, outputChan chan<- models.MTrade) error {
	m.state.Store(int32(StateConnecting))

	conn, _, err := m.dialer.DialContext(ctx, m.URL, nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}
	defer conn.Close()

	// Transport is open: authenticate before anything else.
	m.state.Store(int32(StateAuthenticating))
	if err := conn.WriteJSON(models.MStreamCommand{Action: "auth", Params: m.apiKey}); err != nil {
		return fmt.Errorf("auth send failed: %w", err)
	}

	// Close the transport when the parent context ends so the read loop
	// unblocks. The watchdog exits with the function.
	watchdogDone := make(chan struct{})
	defer close(watchdogDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-watchdogDone:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read failed: %w", err)
		}

		events, err := decodeEvents(raw)
		if err != nil {
			// Malformed messages are dropped; the stream itself is fine.
			m.logger.Debug("Dropping undecodable stream message: %v", err)
			continue
		}

		for _, ev := range events {
			if err := m.handleEvent(ctx, conn, ev, outputChan); err != nil {
				return err
			}
		}
	}
}

// -----------------------------------------------------------------------------

func (m *ConnectionManager) handleEvent(ctx context.Context, conn *websocket.Conn, ev models.MStreamEvent, outputChan chan<- models.MTrade) error {
	switch ev.Ev {
	case models.StreamEventStatus:
		return m.handleStatus(conn, ev)

	case models.StreamEventTrade:
		// Trades only count once the subscription handshake finished.
		if m.State() != StateSubscribed {
			return nil
		}
		trade := models.MTrade{
			Symbol:    ev.Symbol,
			Price:     ev.Price,
			Size:      ev.Size,
			Timestamp: ev.Timestamp,
		}
		select {
		case outputChan <- trade:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (m *ConnectionManager) handleStatus(conn *websocket.Conn, ev models.MStreamEvent) error {
	switch ev.Status {
	case models.StreamStatusConnected:
		// Wire-level hello, nothing to do until auth is acknowledged.
		return nil

	case models.StreamStatusAuthSuccess:
		symbols := m.symbols.Load().([]string)
		if err := conn.WriteJSON(models.MStreamCommand{Action: "subscribe", Params: subscriptionParams(symbols)}); err != nil {
			return fmt.Errorf("subscribe send failed: %w", err)
		}
		m.state.Store(int32(StateSubscribed))
		m.logger.Info("Stream subscribed to %d symbols", len(symbols))
		return nil

	case models.StreamStatusAuthFailed:
		return fmt.Errorf("stream authentication rejected: %s", ev.Message)

	default:
		m.logger.Debug("Stream status: %s %s", ev.Status, ev.Message)
		return nil
	}
}

// -----------------------------------------------------------------------------

// subscriptionParams builds the single subscription message body covering the
// whole watch universe, one trade channel per symbol.
func subscriptionParams(symbols []string) string {
	channels := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		channels = append(channels, "T."+sym)
	}
	return strings.Join(channels, ",")
}

// -----------------------------------------------------------------------------

// decodeEvents parses one inbound frame. The server batches events as a JSON
// array; a bare object is tolerated too.
func decodeEvents(raw []byte) ([]models.MStreamEvent, error) {
	var events []models.MStreamEvent
	if err := json.Unmarshal(raw, &events); err == nil {
		return events, nil
	}

	var single models.MStreamEvent
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, err
	}
	return []models.MStreamEvent{single}, nil
}
