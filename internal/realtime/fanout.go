package realtime

import (
	"log/slog"
)

// Event is a tagged payload delivered to connections as
// {"event": <name>, "data": <plain data>}.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// Event names used across the application.
const (
	EventNewComment      = "new_comment"
	EventNewNotification = "new_notification"
	EventNewPost         = "new_post"
	EventPostUpdated     = "post_updated"
	EventPostDeleted     = "post_deleted"
	EventProfileUpdated  = "profile_updated"
	EventNewImageComment = "new_image_comment"
	EventImageUpdated    = "image_updated"
)

// Broadcaster delivers events to every connection registered under a channel
// key. Delivery is best-effort and fire-and-forget: callers get no signal of
// partial failure, and a connection whose send fails is pruned from the
// channel so it is not retried. There is no separate liveness sweep.
type Broadcaster struct {
	registry *Registry
	logger   *slog.Logger
}

// NewBroadcaster creates a Broadcaster over the given registry.
func NewBroadcaster(registry *Registry, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{registry: registry, logger: logger}
}

// Broadcast sends the event to every connection currently registered under the
// channel key, at most one attempt per connection. A failed send on one
// connection never prevents attempts on the rest. Broadcasting on a key with
// no connections is a no-op.
func (b *Broadcaster) Broadcast(channelKey string, event Event) {
	conns := b.registry.ConnectionsFor(channelKey)
	if len(conns) == 0 {
		return
	}
	payload := Event{Name: event.Name, Data: Plain(event.Data)}
	for _, conn := range conns {
		if err := conn.SendJSON(payload); err != nil {
			b.logger.Warn("websocket send failed, pruning connection",
				"channel", channelKey,
				"event", event.Name,
				"error", err)
			b.registry.Unregister(conn, channelKey)
		}
	}
}

// BroadcastToAllUsers sends the event to every connected personal stream.
func (b *Broadcaster) BroadcastToAllUsers(event Event) {
	for _, key := range b.registry.KeysWithPrefix(userChannelPrefix) {
		b.Broadcast(key, event)
	}
}
