package chathub

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"chatline/backend/internal/config"
	"chatline/backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var errClientClosed = errors.New("chathub: client closed")

// WebSocketClient implements Client over a gorilla websocket connection.
type WebSocketClient struct {
	identity string
	conn     *websocket.Conn
	hub      *Hub
	send     chan models.ServerEvent

	mu          sync.Mutex
	closed      bool
	closeCode   int
	closeReason string
}

// NewWebSocketClient binds an upgraded connection to its resolved
// identity. The caller still has to register it with the hub and Run it.
func NewWebSocketClient(hub *Hub, conn *websocket.Conn, identity string) *WebSocketClient {
	return &WebSocketClient{
		identity: identity,
		conn:     conn,
		hub:      hub,
		send:     make(chan models.ServerEvent, config.SendBufferSize),
	}
}

func (c *WebSocketClient) Identity() string { return c.identity }

// TrySend queues ev without blocking. The hub's delivery path depends on
// this never stalling: a full buffer is reported as ErrBackpressure and
// the router evicts the connection.
func (c *WebSocketClient) TrySend(ev models.ServerEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errClientClosed
	}
	select {
	case c.send <- ev:
		return nil
	default:
		return ErrBackpressure
	}
}

// Close marks the connection closed and wakes the write pump, which
// flushes a close frame carrying code and reason. Idempotent.
func (c *WebSocketClient) Close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.closeCode = code
	c.closeReason = reason
	close(c.send)
}

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// readPump is the connection's Active-state message loop. Malformed
// payloads yield a recoverable error event and the loop continues;
// only transport failures break it. Cleanup is unconditional: the
// deferred unregister runs on every exit path.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.hub.UnregisterCh <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "chathub.ws").Str("identity", c.identity).
					Msg("read failed, closing connection")
			}
			return
		}

		var ev models.ClientEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.TrySend(models.ErrorEvent("malformed event payload"))
			continue
		}
		c.hub.Submit(c, ev)
	}
}

// writePump serializes all writes to the connection: queued events, keep
// alive pings, and the final close frame once the send channel is closed.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(c.closeCode, c.closeReason))
				return
			}

			data, err := json.Marshal(ev)
			if err != nil {
				log.Error().Err(err).Str("module", "chathub.ws").Str("identity", c.identity).
					Msg("failed to encode outbound event")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
