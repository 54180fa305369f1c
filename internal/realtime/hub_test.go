package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHostWithoutPort(t *testing.T) {
	cases := map[string]string{
		"example.com":              "example.com",
		"example.com:8443":         "example.com",
		"http://example.com:8080":  "example.com",
		"https://example.com":      "example.com",
		"localhost:3000":           "localhost",
		"127.0.0.1:8000":           "127.0.0.1",
		"":                         "",
		"  example.com:9000  ":     "example.com",
		"https://sub.example.com/": "sub.example.com",
	}
	for input, want := range cases {
		require.Equal(t, want, hostWithoutPort(input), "input %q", input)
	}
}

func TestIsLoopback(t *testing.T) {
	require.True(t, isLoopback("127.0.0.1"))
	require.True(t, isLoopback("::1"))
	require.True(t, isLoopback("localhost"))
	require.True(t, isLoopback("LOCALHOST"))
	require.False(t, isLoopback("example.com"))
	require.False(t, isLoopback("10.0.0.1"))
}

func TestRoomMembership(t *testing.T) {
	hub := NewHub()

	first := &Client{hub: hub, connectionID: "conn-1", send: make(chan Message, 4)}
	second := &Client{hub: hub, connectionID: "conn-2", send: make(chan Message, 4)}

	hub.Join(first, "sess-1")
	hub.Join(second, "sess-1")
	require.Equal(t, 2, hub.RoomSize("sess-1"))
	require.Equal(t, "sess-1", first.SessionID())

	// Joining another session moves the client rather than duplicating it.
	hub.Join(second, "sess-2")
	require.Equal(t, 1, hub.RoomSize("sess-1"))
	require.Equal(t, 1, hub.RoomSize("sess-2"))

	hub.Leave(first)
	require.Equal(t, 0, hub.RoomSize("sess-1"))
	require.Empty(t, first.SessionID())

	// Leaving twice is harmless.
	hub.Leave(first)
}

func TestBroadcastDeliversToRoom(t *testing.T) {
	hub := NewHub()

	first := &Client{hub: hub, connectionID: "conn-1", send: make(chan Message, 4)}
	second := &Client{hub: hub, connectionID: "conn-2", send: make(chan Message, 4)}
	outsider := &Client{hub: hub, connectionID: "conn-3", send: make(chan Message, 4)}

	hub.Join(first, "sess-1")
	hub.Join(second, "sess-1")
	hub.Join(outsider, "sess-2")

	hub.Broadcast("sess-1", Message{Event: EventChatMessage, Data: "hi"})

	require.Len(t, first.send, 1)
	require.Len(t, second.send, 1)
	require.Len(t, outsider.send, 0)

	msg := <-first.send
	require.Equal(t, EventChatMessage, msg.Event)
}

func TestBroadcastExceptSkipsSender(t *testing.T) {
	hub := NewHub()

	sender := &Client{hub: hub, connectionID: "conn-1", send: make(chan Message, 4)}
	receiver := &Client{hub: hub, connectionID: "conn-2", send: make(chan Message, 4)}

	hub.Join(sender, "sess-1")
	hub.Join(receiver, "sess-1")

	hub.BroadcastExcept("sess-1", "conn-1", Message{Event: EventHandRaise})

	require.Len(t, sender.send, 0)
	require.Len(t, receiver.send, 1)
}

func TestBroadcastToUnknownRoomIsNoop(t *testing.T) {
	hub := NewHub()
	hub.Broadcast("missing", Message{Event: EventChatMessage})
	hub.Broadcast("", Message{Event: EventChatMessage})
}

func TestEnqueueSkipsClosedClient(t *testing.T) {
	hub := NewHub()

	client := &Client{hub: hub, connectionID: "conn-1", send: make(chan Message, 4), closed: true}
	hub.Join(client, "sess-1")

	hub.Broadcast("sess-1", Message{Event: EventChatMessage})
	require.Len(t, client.send, 0)
}

func TestBroadcastDisconnectsBackpressuredClient(t *testing.T) {
	hub := NewHub()

	// Zero-capacity buffer: the first enqueue hits backpressure immediately.
	slow := &Client{hub: hub, connectionID: "conn-slow", send: make(chan Message)}
	healthy := &Client{hub: hub, connectionID: "conn-ok", send: make(chan Message, 4)}

	hub.Join(slow, "sess-1")
	hub.Join(healthy, "sess-1")

	done := make(chan struct{})
	go func() {
		hub.Broadcast("sess-1", Message{Event: EventChatMessage, Data: "hi"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast did not return with a backpressured client in the room")
	}

	require.Equal(t, 1, hub.RoomSize("sess-1"))
	require.Empty(t, slow.SessionID())
	require.Len(t, healthy.send, 1)

	// The hub stays usable after dropping the slow client.
	hub.Broadcast("sess-1", Message{Event: EventChatMessage, Data: "again"})
	require.Len(t, healthy.send, 2)
}

func TestSessionIDSafeDuringMembershipChanges(t *testing.T) {
	hub := NewHub()
	client := &Client{hub: hub, connectionID: "conn-1", send: make(chan Message, 4)}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			hub.Join(client, "sess-1")
			hub.Leave(client)
		}
	}()

	for i := 0; i < 1000; i++ {
		id := client.SessionID()
		require.Contains(t, []string{"", "sess-1"}, id)
	}

	<-done
	require.Empty(t, client.SessionID())
}
