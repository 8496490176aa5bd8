package handlers

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/urbano-social/backend/internal/realtime"
)

// WebSocketHandler upgrades HTTP requests into live event streams. Post and
// image streams are open; the personal notification stream authenticates over
// the socket itself.
type WebSocketHandler struct {
	registry *realtime.Registry
	personal *realtime.PersonalChannel
	logger   *slog.Logger
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(registry *realtime.Registry, personal *realtime.PersonalChannel, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{registry: registry, personal: personal, logger: logger}
}

// RegisterWebSocketRoutes registers the stream endpoints on the group.
func (h *WebSocketHandler) RegisterWebSocketRoutes(g *echo.Group) {
	g.GET("/posts/:post_id", h.PostStream)
	g.GET("/images/:image_id", h.ImageStream)
	g.GET("/notifications/:user_id", h.NotificationStream)
}

// PostStream subscribes the connection to a post's thread events.
func (h *WebSocketHandler) PostStream(c echo.Context) error {
	return h.subscribe(c, realtime.PostChannel(c.Param("post_id")))
}

// ImageStream subscribes the connection to an image's events.
func (h *WebSocketHandler) ImageStream(c echo.Context) error {
	return h.subscribe(c, realtime.ImageChannel(c.Param("image_id")))
}

// subscribe registers the connection under the channel key and holds it open
// until the peer disconnects. Inbound messages on these streams are ignored.
func (h *WebSocketHandler) subscribe(c echo.Context, channelKey string) error {
	conn := realtime.NewWebSocketConn(c.Response(), c.Request())
	if err := h.registry.Register(conn, channelKey); err != nil {
		h.logger.Warn("websocket handshake failed", "channel", channelKey, "error", err)
		return nil
	}
	defer h.registry.UnregisterAll(conn)

	for {
		if _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}

// NotificationStream runs the authenticated personal channel protocol for the
// user in the path.
func (h *WebSocketHandler) NotificationStream(c echo.Context) error {
	conn := realtime.NewWebSocketConn(c.Response(), c.Request())
	h.personal.Run(c.Request().Context(), conn, c.Param("user_id"))
	return nil
}
