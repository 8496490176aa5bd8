package realtime

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastEmptyChannelIsNoOp(t *testing.T) {
	b := NewBroadcaster(NewRegistry(), nil)
	b.Broadcast(PostChannel("nobody"), Event{Name: EventNewPost, Data: "x"})
}

func TestBroadcastDeliversToEveryConnection(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r, nil)
	first := &fakeConn{}
	second := &fakeConn{}
	require.NoError(t, r.Register(first, PostChannel("p1")))
	require.NoError(t, r.Register(second, PostChannel("p1")))

	b.Broadcast(PostChannel("p1"), Event{Name: EventNewComment, Data: map[string]any{"content": "hi"}})

	require.Len(t, first.sentMessages(), 1)
	require.Len(t, second.sentMessages(), 1)

	sent, ok := first.sentMessages()[0].(Event)
	require.True(t, ok)
	assert.Equal(t, EventNewComment, sent.Name)
}

func TestBroadcastFailedSendPrunesConnection(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r, nil)
	dead := &fakeConn{sendErr: errors.New("broken pipe")}
	live := &fakeConn{}
	require.NoError(t, r.Register(dead, PostChannel("p1")))
	require.NoError(t, r.Register(live, PostChannel("p1")))

	b.Broadcast(PostChannel("p1"), Event{Name: EventPostUpdated, Data: "x"})

	// The dead connection is pruned; the live one still got the event.
	assert.Len(t, live.sentMessages(), 1)
	assert.Len(t, r.ConnectionsFor(PostChannel("p1")), 1)

	// No retry on the pruned connection.
	b.Broadcast(PostChannel("p1"), Event{Name: EventPostUpdated, Data: "y"})
	assert.Len(t, live.sentMessages(), 2)
}

func TestBroadcastPrunesOnlyFromFailedChannel(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r, nil)
	conn := &fakeConn{sendErr: errors.New("broken pipe")}
	require.NoError(t, r.Register(conn, PostChannel("p1")))
	require.NoError(t, r.Register(conn, UserChannel("u1")))

	b.Broadcast(PostChannel("p1"), Event{Name: EventPostUpdated, Data: "x"})

	assert.Empty(t, r.ConnectionsFor(PostChannel("p1")))
	assert.Len(t, r.ConnectionsFor(UserChannel("u1")), 1)
}

func TestBroadcastToAllUsersReachesEveryPersonalStream(t *testing.T) {
	r := NewRegistry()
	b := NewBroadcaster(r, nil)
	alice := &fakeConn{}
	bob := &fakeConn{}
	watcher := &fakeConn{}
	require.NoError(t, r.Register(alice, UserChannel("u1")))
	require.NoError(t, r.Register(bob, UserChannel("u2")))
	require.NoError(t, r.Register(watcher, PostChannel("p1")))

	b.BroadcastToAllUsers(Event{Name: EventNewPost, Data: "x"})

	assert.Len(t, alice.sentMessages(), 1)
	assert.Len(t, bob.sentMessages(), 1)
	assert.Empty(t, watcher.sentMessages())
}
