package realtime

import (
	"strings"
	"sync"
)

// CloseCode is a WebSocket close status code.
type CloseCode int

const (
	// CloseUnsupportedData rejects a frame that is not structured data.
	CloseUnsupportedData CloseCode = 1003
	// ClosePolicyViolation rejects a connection that failed authentication.
	ClosePolicyViolation CloseCode = 1008
	// CloseInternalError signals a server-side failure.
	CloseInternalError CloseCode = 1011
)

// Connection is a live bidirectional push transport. The registry borrows it
// for the duration of its registration; the transport layer owns its lifetime.
// Identity is reference equality.
type Connection interface {
	// Accept performs the transport handshake. Calling it again after a
	// successful handshake is a no-op.
	Accept() error
	// SendJSON writes one JSON message. Concurrent calls must not interleave
	// frames.
	SendJSON(v any) error
	// ReadMessage blocks until the next inbound message or disconnect.
	ReadMessage() ([]byte, error)
	// Close sends a close frame with the given code and closes the transport.
	Close(code CloseCode, reason string) error
}

// Registry tracks which connections are interested in which channel key. All
// operations are safe for concurrent use; a single mutex guards the whole map
// and is never held across network I/O.
type Registry struct {
	mu       sync.Mutex
	channels map[string][]Connection
	accepted map[Connection]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[string][]Connection),
		accepted: make(map[Connection]struct{}),
	}
}

// Register performs the transport handshake once per connection identity and
// adds the connection to the channel's list. Registering the same connection
// twice under the same key is a no-op.
func (r *Registry) Register(conn Connection, channelKey string) error {
	r.mu.Lock()
	_, handshakeDone := r.accepted[conn]
	if !handshakeDone {
		r.accepted[conn] = struct{}{}
	}
	r.mu.Unlock()

	// Handshake outside the lock: it is network I/O.
	if !handshakeDone {
		if err := conn.Accept(); err != nil {
			r.mu.Lock()
			delete(r.accepted, conn)
			r.mu.Unlock()
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.channels[channelKey] {
		if existing == conn {
			return nil
		}
	}
	r.channels[channelKey] = append(r.channels[channelKey], conn)
	return nil
}

// Unregister removes the connection from the channel's list. It tolerates
// being called for a connection or key that is not registered, so the explicit
// disconnect path and the error path can both call it. The channel entry is
// deleted, never left empty, when its last connection goes away.
func (r *Registry) Unregister(conn Connection, channelKey string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(conn, channelKey)
}

// UnregisterAll removes the connection from every channel it is registered
// under. This is the terminal cleanup for a dropped connection, so the
// handshake record is released as well.
func (r *Registry) UnregisterAll(conn Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key := range r.channels {
		r.removeLocked(conn, key)
	}
	delete(r.accepted, conn)
}

func (r *Registry) removeLocked(conn Connection, channelKey string) {
	conns, ok := r.channels[channelKey]
	if !ok {
		return
	}
	for i, existing := range conns {
		if existing == conn {
			conns = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(conns) == 0 {
		delete(r.channels, channelKey)
		return
	}
	r.channels[channelKey] = conns
}

// ConnectionsFor returns a snapshot of the connections registered under the
// key. The snapshot is safe to iterate while the registry mutates. An unknown
// key yields an empty slice.
func (r *Registry) ConnectionsFor(channelKey string) []Connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	conns := r.channels[channelKey]
	snapshot := make([]Connection, len(conns))
	copy(snapshot, conns)
	return snapshot
}

// KeysWithPrefix returns a snapshot of the channel keys starting with prefix.
// Used to reach every personal stream at once.
func (r *Registry) KeysWithPrefix(prefix string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var keys []string
	for key := range r.channels {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys
}
