package ws

import (
	"testing"
	"time"

	"github.com/mingle/mingle-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	logger.Init("test")
	hub := NewHub()
	go hub.Run()
	return hub
}

// connect registers a client without a real socket; the pumps are never
// started so events pile up in the send buffer for inspection
func connect(t *testing.T, hub *Hub, userID uint64, nickname string) *Client {
	t.Helper()
	client := NewClient(hub, nil, userID, nickname)
	client.Register()

	// The hub pushes a connected event once registration lands
	select {
	case event := <-client.send:
		require.Equal(t, EventConnected, event.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no connected event")
	}
	return client
}

func drain(client *Client) []Event {
	var events []Event
	for {
		select {
		case e := <-client.send:
			events = append(events, e)
		default:
			return events
		}
	}
}

func isClosed(client *Client) bool {
	select {
	case <-client.done:
		return true
	default:
		return false
	}
}

func TestHubOnlineTracking(t *testing.T) {
	hub := startHub(t)

	assert.False(t, hub.IsUserOnline(1))
	assert.Equal(t, 0, hub.OnlineCount())

	alice := connect(t, hub, 1, "alice")
	connect(t, hub, 2, "bob")

	assert.True(t, hub.IsUserOnline(1))
	assert.True(t, hub.IsUserOnline(2))
	assert.Equal(t, 2, hub.OnlineCount())

	hub.unregister <- alice
	require.Eventually(t, func() bool {
		return !hub.IsUserOnline(1)
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, hub.OnlineCount())
}

func TestHubLastConnectionWins(t *testing.T) {
	hub := startHub(t)

	first := connect(t, hub, 1, "alice")
	second := connect(t, hub, 1, "alice")

	// The stale connection gets shut down
	require.Eventually(t, func() bool {
		return isClosed(first)
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, hub.OnlineCount())

	// Events still reach the surviving connection
	hub.EmitToUser(1, Event{Type: EventNewMessage})
	require.Eventually(t, func() bool {
		for _, e := range drain(second) {
			if e.Type == EventNewMessage {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEmitToConversationRespectsRooms(t *testing.T) {
	hub := startHub(t)

	alice := connect(t, hub, 1, "alice")
	bob := connect(t, hub, 2, "bob")
	carol := connect(t, hub, 3, "carol")
	drain(alice)
	drain(bob)
	drain(carol)

	hub.JoinRoom(10, alice)
	hub.JoinRoom(10, bob)

	// Excluding the sender, only bob should hear this
	hub.EmitToConversation(10, Event{Type: EventUserTyping}, 1)

	bobEvents := drain(bob)
	require.Len(t, bobEvents, 1)
	assert.Equal(t, EventUserTyping, bobEvents[0].Type)

	assert.Empty(t, drain(alice))
	assert.Empty(t, drain(carol))

	// After leaving the room bob hears nothing either
	hub.LeaveRoom(10, bob)
	hub.EmitToConversation(10, Event{Type: EventUserTyping}, 1)
	assert.Empty(t, drain(bob))
}

func TestEmitAfterConnectionClosed(t *testing.T) {
	hub := startHub(t)

	alice := connect(t, hub, 1, "alice")
	hub.JoinRoom(10, alice)

	// A disconnect can land between an emitter's registry snapshot and
	// its send; emitting to a shut-down client must drop, not panic
	alice.close()

	require.NotPanics(t, func() {
		hub.EmitToUser(1, Event{Type: EventNewMessage})
		hub.EmitToConversation(10, Event{Type: EventMessageRead})
		hub.broadcastStatus(2, true)
	})
}

func TestEmitToUserOffline(t *testing.T) {
	hub := startHub(t)

	// Emitting to nobody must not block or panic
	hub.EmitToUser(99, Event{Type: EventNewMessage})
}

func TestEmitDropsWhenBufferFull(t *testing.T) {
	hub := startHub(t)
	alice := connect(t, hub, 1, "alice")

	for i := 0; i < sendBufferSize*2; i++ {
		hub.EmitToUser(1, Event{Type: EventNewMessage})
	}

	// The buffer holds at most sendBufferSize events; the rest were
	// dropped instead of blocking the emitter
	events := drain(alice)
	assert.LessOrEqual(t, len(events), sendBufferSize)
}

func TestUserStatusBroadcast(t *testing.T) {
	hub := startHub(t)

	alice := connect(t, hub, 1, "alice")
	drain(alice)

	connect(t, hub, 2, "bob")

	require.Eventually(t, func() bool {
		for _, e := range drain(alice) {
			if e.Type == EventUserStatus {
				payload, ok := e.Payload.(map[string]interface{})
				return ok && payload["status"] == "online" && payload["user_id"] == uint64(2)
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}
