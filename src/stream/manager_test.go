package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"breakout-scanner/src/logger"
	"breakout-scanner/src/models"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Test server
// -----------------------------------------------------------------------------

type fakeStreamServer struct {
	t       *testing.T
	key     string
	server  *httptest.Server
	mu      sync.Mutex
	conns   int
	subs    []string // subscription params received, one per connection
	control chan serverConn
}

type serverConn struct {
	conn *websocket.Conn
}

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// newFakeStreamServer speaks the stream protocol: hello, auth ack after a
// valid credential, then echoes nothing until told. Each accepted connection
// is handed to the test through the control channel.
func newFakeStreamServer(t *testing.T, key string) *fakeStreamServer {
	fs := &fakeStreamServer{t: t, key: key, control: make(chan serverConn, 4)}

	fs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		fs.mu.Lock()
		fs.conns++
		fs.mu.Unlock()

		fs.sendEvents(conn, models.MStreamEvent{Ev: "status", Status: "connected"})

		// Handshake: auth then subscribe
		for {
			var cmd models.MStreamCommand
			if err := conn.ReadJSON(&cmd); err != nil {
				conn.Close()
				return
			}

			switch cmd.Action {
			case "auth":
				if cmd.Params != fs.key {
					fs.sendEvents(conn, models.MStreamEvent{Ev: "status", Status: "auth_failed", Message: "bad credential"})
					conn.Close()
					return
				}
				fs.sendEvents(conn, models.MStreamEvent{Ev: "status", Status: "auth_success"})

			case "subscribe":
				fs.mu.Lock()
				fs.subs = append(fs.subs, cmd.Params)
				fs.mu.Unlock()
				fs.control <- serverConn{conn: conn}
				// The test drives the connection from here on
				return
			}
		}
	}))

	return fs
}

func (fs *fakeStreamServer) sendEvents(conn *websocket.Conn, events ...models.MStreamEvent) {
	payload, _ := json.Marshal(events)
	conn.WriteMessage(websocket.TextMessage, payload)
}

func (fs *fakeStreamServer) wsURL() string {
	return "ws" + strings.TrimPrefix(fs.server.URL, "http")
}

func (fs *fakeStreamServer) connCount() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.conns
}

func (fs *fakeStreamServer) subscriptions() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]string(nil), fs.subs...)
}

// -----------------------------------------------------------------------------

func newTestManager(fs *fakeStreamServer, key string, symbols []string) *ConnectionManager {
	cfg := &models.MConfig{
		Stream: models.MStreamConfig{URL: fs.wsURL(), ReconnectDelaySeconds: 1},
	}
	m := NewConnectionManager(cfg, key, symbols, logger.NewLogger("ERROR", "StreamTest"))
	m.ReconnectDelay = 50 * time.Millisecond
	return m
}

func waitForState(t *testing.T, m *ConnectionManager, want ConnectionState) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		if m.State() == want {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("state = %s, want %s", m.State(), want)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// -----------------------------------------------------------------------------

func TestConnectAuthenticateSubscribe(t *testing.T) {
	fs := newFakeStreamServer(t, "secret")
	defer fs.server.Close()

	m := newTestManager(fs, "secret", []string{"AAPL", "MSFT"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := &sync.WaitGroup{}
	trades := make(chan models.MTrade, 16)

	if err := m.Start(ctx, trades, wg); err != nil {
		t.Fatal(err)
	}

	sc := <-fs.control
	waitForState(t, m, StateSubscribed)

	subs := fs.subscriptions()
	if len(subs) != 1 || subs[0] != "T.AAPL,T.MSFT" {
		t.Fatalf("subscription = %v, want one message covering the full universe", subs)
	}

	// A trade after subscription is forwarded
	fs.sendEvents(sc.conn, models.MStreamEvent{Ev: "T", Symbol: "AAPL", Price: 101.5, Size: 200, Timestamp: 1700000000000})

	select {
	case trade := <-trades:
		if trade.Symbol != "AAPL" || trade.Price != 101.5 || trade.Size != 200 {
			t.Errorf("unexpected trade: %+v", trade)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("trade was not forwarded")
	}

	cancel()
	wg.Wait()
}

// -----------------------------------------------------------------------------

func TestReconnectAfterForcedClose(t *testing.T) {
	fs := newFakeStreamServer(t, "secret")
	defer fs.server.Close()

	m := newTestManager(fs, "secret", []string{"NVDA"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := &sync.WaitGroup{}
	trades := make(chan models.MTrade, 16)

	if err := m.Start(ctx, trades, wg); err != nil {
		t.Fatal(err)
	}

	first := <-fs.control
	waitForState(t, m, StateSubscribed)

	// Force the drop
	first.conn.Close()

	// The manager must come back through the full handshake
	second := <-fs.control
	waitForState(t, m, StateSubscribed)

	if fs.connCount() != 2 {
		t.Errorf("connections = %d, want 2", fs.connCount())
	}

	subs := fs.subscriptions()
	if len(subs) != 2 {
		t.Fatalf("subscriptions = %d, want one per connection", len(subs))
	}
	if subs[1] != "T.NVDA" {
		t.Errorf("resubscription = %q, want full universe", subs[1])
	}

	// The new connection carries trades again
	fs.sendEvents(second.conn, models.MStreamEvent{Ev: "T", Symbol: "NVDA", Price: 130, Size: 50, Timestamp: 1700000000000})
	select {
	case trade := <-trades:
		if trade.Symbol != "NVDA" {
			t.Errorf("trade symbol = %s, want NVDA", trade.Symbol)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("trade after reconnect was not forwarded")
	}

	cancel()
	wg.Wait()
}

// -----------------------------------------------------------------------------

func TestShutdownSuppressesReconnect(t *testing.T) {
	fs := newFakeStreamServer(t, "secret")
	defer fs.server.Close()

	m := newTestManager(fs, "secret", []string{"AAPL"})

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	trades := make(chan models.MTrade, 16)

	if err := m.Start(ctx, trades, wg); err != nil {
		t.Fatal(err)
	}

	<-fs.control
	waitForState(t, m, StateSubscribed)

	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("manager did not stop after deliberate shutdown")
	}

	if m.State() != StateDisconnected {
		t.Errorf("state after shutdown = %s, want disconnected", m.State())
	}

	// No reconnect attempt after the delay window
	time.Sleep(3 * m.ReconnectDelay)
	if fs.connCount() != 1 {
		t.Errorf("connections = %d after shutdown, want 1", fs.connCount())
	}
}

// -----------------------------------------------------------------------------

func TestDecodeEventsToleratesMalformedFrames(t *testing.T) {
	if _, err := decodeEvents([]byte("not json")); err == nil {
		t.Error("expected an error for garbage input")
	}

	events, err := decodeEvents([]byte(`{"ev":"T","sym":"AAPL","p":10,"s":5,"t":1}`))
	if err != nil || len(events) != 1 {
		t.Fatalf("bare object should decode, got %v, %v", events, err)
	}

	events, err = decodeEvents([]byte(`[{"ev":"status","status":"connected"},{"ev":"T","sym":"X","p":1,"s":1,"t":1}]`))
	if err != nil || len(events) != 2 {
		t.Fatalf("array should decode, got %v, %v", events, err)
	}
}
