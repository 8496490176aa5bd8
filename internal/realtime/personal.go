package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Authenticator verifies a bearer credential and resolves it to the id of the
// user it belongs to.
type Authenticator interface {
	ResolveBearerToken(ctx context.Context, token string) (string, error)
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(ctx context.Context, token string) (string, error)

// ResolveBearerToken implements Authenticator.
func (f AuthenticatorFunc) ResolveBearerToken(ctx context.Context, token string) (string, error) {
	return f(ctx, token)
}

type authMessage struct {
	Type   string `json:"type"`
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

type inboundMessage struct {
	Type string `json:"type"`
}

// PersonalChannel runs the authenticated notification stream for one user: an
// auth handshake over the socket, registration under user:<id>, and a
// ping/pong keep-alive loop so idle connections are not dropped by
// intermediaries.
type PersonalChannel struct {
	registry *Registry
	auth     Authenticator
	logger   *slog.Logger
}

// NewPersonalChannel creates a PersonalChannel.
func NewPersonalChannel(registry *Registry, auth Authenticator, logger *slog.Logger) *PersonalChannel {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersonalChannel{registry: registry, auth: auth, logger: logger}
}

// Run drives one connection through the personal-channel protocol until it
// disconnects. targetUserID comes from the request path. The connection is
// unregistered from every channel on every exit path.
func (p *PersonalChannel) Run(ctx context.Context, conn Connection, targetUserID string) {
	defer func() {
		// One bad message must not take the server down.
		if rec := recover(); rec != nil {
			p.logger.Error("personal channel panic", "user_id", targetUserID, "panic", rec)
			_ = conn.Close(CloseInternalError, "internal server error")
		}
		p.registry.UnregisterAll(conn)
	}()

	if err := conn.Accept(); err != nil {
		p.logger.Warn("websocket handshake failed", "user_id", targetUserID, "error", err)
		return
	}

	if !p.authenticate(ctx, conn, targetUserID) {
		return
	}

	if err := p.registry.Register(conn, UserChannel(targetUserID)); err != nil {
		return
	}
	if err := conn.SendJSON(map[string]string{"status": "authenticated"}); err != nil {
		return
	}
	p.logger.Info("personal channel authenticated", "user_id", targetUserID)

	p.receiveLoop(conn, targetUserID)
}

// authenticate reads and validates the auth message. Any failure closes the
// connection with a policy-violation code; malformed input closes it with an
// unsupported-data code.
func (p *PersonalChannel) authenticate(ctx context.Context, conn Connection, targetUserID string) bool {
	raw, err := conn.ReadMessage()
	if err != nil {
		return false
	}
	var msg authMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		_ = conn.Close(CloseUnsupportedData, "invalid message format")
		return false
	}
	if msg.Type == "" || msg.Token == "" || msg.UserID == "" {
		_ = conn.Close(ClosePolicyViolation, "invalid auth message")
		return false
	}
	if msg.UserID != targetUserID {
		_ = conn.Close(ClosePolicyViolation, "user id mismatch")
		return false
	}
	// A resolution error of any kind counts as an invalid credential.
	resolvedID, err := p.auth.ResolveBearerToken(ctx, msg.Token)
	if err != nil || resolvedID != targetUserID {
		_ = conn.Close(ClosePolicyViolation, "invalid token")
		return false
	}
	return true
}

// receiveLoop answers pings and ignores every other well-formed message, so
// newer clients can send shapes this server does not know yet.
func (p *PersonalChannel) receiveLoop(conn Connection, targetUserID string) {
	for {
		raw, err := conn.ReadMessage()
		if err != nil {
			p.logger.Info("personal channel disconnected", "user_id", targetUserID)
			return
		}
		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			_ = conn.Close(CloseUnsupportedData, "invalid message format")
			return
		}
		if msg.Type == "ping" {
			if err := conn.SendJSON(map[string]string{"type": "pong"}); err != nil {
				return
			}
		}
	}
}
