package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenFor(userID string) Authenticator {
	return AuthenticatorFunc(func(_ context.Context, token string) (string, error) {
		if token == "token-"+userID {
			return userID, nil
		}
		return "", errors.New("invalid credential")
	})
}

func authMessageJSON(token, userID string) []byte {
	return []byte(fmt.Sprintf(`{"type":"auth","token":%q,"userId":%q}`, token, userID))
}

func TestPersonalChannelAuthenticatedFlow(t *testing.T) {
	r := NewRegistry()
	p := NewPersonalChannel(r, tokenFor("u1"), nil)
	conn := &fakeConn{inbound: [][]byte{
		authMessageJSON("token-u1", "u1"),
		[]byte(`{"type":"ping"}`),
	}}

	p.Run(context.Background(), conn, "u1")

	sent := conn.sentMessages()
	require.Len(t, sent, 2)
	assert.Equal(t, map[string]string{"status": "authenticated"}, sent[0])
	assert.Equal(t, map[string]string{"type": "pong"}, sent[1])

	// Disconnect cleanup: nothing remains registered.
	assert.Empty(t, r.ConnectionsFor(UserChannel("u1")))
}

func TestPersonalChannelReceivesBroadcastAfterAuth(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r, nil)
	p := NewPersonalChannel(r, tokenFor("u1"), nil)

	// Block the read loop long enough to observe the registration by driving
	// the protocol by hand instead: authenticate, then broadcast, then let the
	// loop drain.
	conn := &fakeConn{inbound: [][]byte{authMessageJSON("token-u1", "u1")}}
	require.NoError(t, conn.Accept())
	require.True(t, p.authenticate(context.Background(), conn, "u1"))
	require.NoError(t, r.Register(conn, UserChannel("u1")))

	b.Broadcast(UserChannel("u1"), Event{Name: EventNewNotification, Data: "x"})

	sent := conn.sentMessages()
	require.Len(t, sent, 1)
	event, ok := sent[0].(Event)
	require.True(t, ok)
	assert.Equal(t, EventNewNotification, event.Name)
}

func TestPersonalChannelRejectsMalformedAuthJSON(t *testing.T) {
	r := NewRegistry()
	p := NewPersonalChannel(r, tokenFor("u1"), nil)
	conn := &fakeConn{inbound: [][]byte{[]byte("not json")}}

	p.Run(context.Background(), conn, "u1")

	assert.True(t, conn.closed)
	assert.Equal(t, CloseUnsupportedData, conn.closeCode)
	assert.Empty(t, r.ConnectionsFor(UserChannel("u1")))
}

func TestPersonalChannelRejectsIncompleteAuthMessage(t *testing.T) {
	p := NewPersonalChannel(NewRegistry(), tokenFor("u1"), nil)
	conn := &fakeConn{inbound: [][]byte{[]byte(`{"type":"auth","token":"token-u1"}`)}}

	p.Run(context.Background(), conn, "u1")

	assert.True(t, conn.closed)
	assert.Equal(t, ClosePolicyViolation, conn.closeCode)
	assert.Equal(t, "invalid auth message", conn.closeReason)
}

func TestPersonalChannelRejectsUserIDMismatch(t *testing.T) {
	p := NewPersonalChannel(NewRegistry(), tokenFor("u1"), nil)
	conn := &fakeConn{inbound: [][]byte{authMessageJSON("token-u1", "u2")}}

	p.Run(context.Background(), conn, "u1")

	assert.True(t, conn.closed)
	assert.Equal(t, ClosePolicyViolation, conn.closeCode)
	assert.Equal(t, "user id mismatch", conn.closeReason)
}

func TestPersonalChannelRejectsInvalidToken(t *testing.T) {
	p := NewPersonalChannel(NewRegistry(), tokenFor("u1"), nil)
	conn := &fakeConn{inbound: [][]byte{authMessageJSON("wrong-token", "u1")}}

	p.Run(context.Background(), conn, "u1")

	assert.True(t, conn.closed)
	assert.Equal(t, ClosePolicyViolation, conn.closeCode)
	assert.Equal(t, "invalid token", conn.closeReason)
}

func TestPersonalChannelRejectsTokenForAnotherUser(t *testing.T) {
	resolver := AuthenticatorFunc(func(context.Context, string) (string, error) {
		return "u2", nil
	})
	p := NewPersonalChannel(NewRegistry(), resolver, nil)
	conn := &fakeConn{inbound: [][]byte{authMessageJSON("token-u2", "u1")}}

	p.Run(context.Background(), conn, "u1")

	assert.True(t, conn.closed)
	assert.Equal(t, ClosePolicyViolation, conn.closeCode)
	assert.Equal(t, "invalid token", conn.closeReason)
}

func TestPersonalChannelClosesOnMalformedLoopMessage(t *testing.T) {
	r := NewRegistry()
	p := NewPersonalChannel(r, tokenFor("u1"), nil)
	conn := &fakeConn{inbound: [][]byte{
		authMessageJSON("token-u1", "u1"),
		[]byte("garbage"),
	}}

	p.Run(context.Background(), conn, "u1")

	assert.True(t, conn.closed)
	assert.Equal(t, CloseUnsupportedData, conn.closeCode)
	assert.Empty(t, r.ConnectionsFor(UserChannel("u1")))
}

func TestPersonalChannelIgnoresUnknownMessageTypes(t *testing.T) {
	p := NewPersonalChannel(NewRegistry(), tokenFor("u1"), nil)
	unknown, err := json.Marshal(map[string]string{"type": "subscribe", "topic": "x"})
	require.NoError(t, err)
	conn := &fakeConn{inbound: [][]byte{
		authMessageJSON("token-u1", "u1"),
		unknown,
		[]byte(`{"type":"ping"}`),
	}}

	p.Run(context.Background(), conn, "u1")

	// Only the auth ack and the pong, nothing for the unknown shape.
	sent := conn.sentMessages()
	require.Len(t, sent, 2)
	assert.Equal(t, map[string]string{"type": "pong"}, sent[1])
	assert.False(t, conn.closed)
}
