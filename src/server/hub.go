package server

import (
	"net/http"

	"breakout-scanner/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// handleWebsockets is the main Hub loop
func (s *DashboardServer) handleWebsockets() {
	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			// Send the recent alert log so a fresh client has context
			client.send <- socketMessage{Type: "snapshot", Payload: gin.H{
				"alerts": s.History.Latest(),
				"params": s.Params.Get(),
			}}

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				close(client.send)
			}

		case message := <-s.broadcast:
			// Fan out to all clients
			for client := range s.clients {
				select {
				case client.send <- message:
					// Message sent successfully
				default:
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					close(client.send)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------
// Alert Sink Implementation
// -----------------------------------------------------------------------------

// Deliver pushes one alert to all connected dashboard clients. Implements
// the alert sink contract used by the queue's drain loop.
func (s *DashboardServer) Deliver(alert models.MAlertCandidate) error {
	s.Broadcast("alert", alert)
	return nil
}

// -----------------------------------------------------------------------------

// Broadcast queues an envelope for the hub loop. Non-blocking: if the hub's
// buffer is full the message is dropped rather than stalling the caller.
func (s *DashboardServer) Broadcast(msgType string, payload interface{}) {
	select {
	case s.broadcast <- socketMessage{Type: msgType, Payload: payload}:
	default:
		s.Logger.Warning("Hub broadcast buffer full, dropping %s message", msgType)
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan socketMessage, 64),
	}

	s.register <- client

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}
