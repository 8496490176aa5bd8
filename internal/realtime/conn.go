package realtime

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const closeWriteTimeout = 5 * time.Second

// WebSocketConn adapts a gorilla WebSocket to the Connection interface. The
// HTTP upgrade is deferred until Accept so the registry controls when the
// handshake happens. A write mutex keeps concurrent sends from interleaving
// frames, and makes delivery order per connection match broadcast order.
type WebSocketConn struct {
	w http.ResponseWriter
	r *http.Request

	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

// NewWebSocketConn wraps a pending HTTP request that asked for an upgrade.
func NewWebSocketConn(w http.ResponseWriter, r *http.Request) *WebSocketConn {
	return &WebSocketConn{w: w, r: r}
}

// Accept upgrades the HTTP connection. Subsequent calls are no-ops.
func (c *WebSocketConn) Accept() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}
	conn, err := upgrader.Upgrade(c.w, c.r, nil)
	if err != nil {
		return err
	}
	c.conn = conn
	return nil
}

// SendJSON writes one JSON message to the peer.
func (c *WebSocketConn) SendJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.closed {
		return errors.New("websocket not open")
	}
	return c.conn.WriteJSON(v)
}

// ReadMessage blocks until the next inbound message or disconnect. It is not
// guarded by the write mutex: a connection supports concurrent inbound reads
// and outbound sends.
func (c *WebSocketConn) ReadMessage() ([]byte, error) {
	conn := c.underlying()
	if conn == nil {
		return nil, errors.New("websocket not open")
	}
	_, data, err := conn.ReadMessage()
	return data, err
}

// Close sends a close frame and tears down the transport.
func (c *WebSocketConn) Close(code CloseCode, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.closed {
		return nil
	}
	c.closed = true
	deadline := time.Now().Add(closeWriteTimeout)
	message := websocket.FormatCloseMessage(int(code), reason)
	_ = c.conn.WriteControl(websocket.CloseMessage, message, deadline)
	return c.conn.Close()
}

func (c *WebSocketConn) underlying() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn
}
