package ws

import (
	"sync"

	"github.com/mingle/mingle-backend/pkg/logger"
)

// Event is a server-to-client websocket frame
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Event types pushed to clients
const (
	EventConnected       = "connected"
	EventNewMessage      = "new_message"
	EventNewNotification = "new_notification"
	EventUserTyping      = "user_typing"
	EventMessageRead     = "message_read"
	EventUserStatus      = "user_status"
)

// Hub tracks live websocket connections for this process. One connection
// per user; a newer connection for the same user replaces the older one.
// Room membership is explicit: clients join and leave conversation rooms
// and only room members receive conversation-scoped events.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint64]*Client
	rooms   map[uint64]map[*Client]bool

	register   chan *Client
	unregister chan *Client
}

// NewHub creates a hub; call Run in a goroutine before serving
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint64]*Client),
		rooms:      make(map[uint64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes register/unregister requests until the process exits
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	prev, replaced := h.clients[client.userID]
	h.clients[client.userID] = client
	h.mu.Unlock()

	if replaced {
		// Last write wins; drop the stale connection
		prev.close()
		h.detachFromRooms(prev)
	}

	log := logger.GetLogger()
	log.Info().Uint64("user_id", client.userID).Msg("websocket connected")

	h.trySend(client, Event{Type: EventConnected, Payload: map[string]interface{}{
		"user_id": client.userID,
	}})
	h.broadcastStatus(client.userID, true)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	current, ok := h.clients[client.userID]
	if ok && current == client {
		delete(h.clients, client.userID)
	} else {
		// Already replaced by a newer connection; keep the registry as is
		ok = false
	}
	h.mu.Unlock()

	h.detachFromRooms(client)
	client.close()

	if ok {
		log := logger.GetLogger()
		log.Info().Uint64("user_id", client.userID).Msg("websocket disconnected")
		h.broadcastStatus(client.userID, false)
	}
}

func (h *Hub) detachFromRooms(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conversationID, members := range h.rooms {
		if members[client] {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, conversationID)
			}
		}
	}
}

// JoinRoom subscribes a client to a conversation's live events
func (h *Hub) JoinRoom(conversationID uint64, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[conversationID]
	if !ok {
		members = make(map[*Client]bool)
		h.rooms[conversationID] = members
	}
	members[client] = true
}

// LeaveRoom unsubscribes a client from a conversation's live events
func (h *Hub) LeaveRoom(conversationID uint64, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.rooms[conversationID]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, conversationID)
		}
	}
}

// EmitToUser pushes an event to one user if connected. Never blocks: a
// client with a full send buffer just misses the event.
func (h *Hub) EmitToUser(userID uint64, event Event) {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	h.trySend(client, event)
}

// EmitToConversation pushes an event to every client joined to the
// conversation's room, minus excluded users (typically the originator)
func (h *Hub) EmitToConversation(conversationID uint64, event Event, excludeUserIDs ...uint64) {
	excluded := make(map[uint64]bool, len(excludeUserIDs))
	for _, id := range excludeUserIDs {
		excluded[id] = true
	}

	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[conversationID]))
	for client := range h.rooms[conversationID] {
		if !excluded[client.userID] {
			members = append(members, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range members {
		h.trySend(client, event)
	}
}

func (h *Hub) trySend(client *Client, event Event) {
	select {
	case <-client.done:
		// Connection is shutting down; the event is lost like any other
		// best-effort emit
	case client.send <- event:
	default:
		log := logger.GetLogger()
		log.Warn().
			Uint64("user_id", client.userID).
			Str("event", event.Type).
			Msg("websocket send buffer full, dropping event")
	}
}

// IsUserOnline reports whether the user has a live connection
func (h *Hub) IsUserOnline(userID uint64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// OnlineCount returns the number of connected users
func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) broadcastStatus(userID uint64, online bool) {
	status := "offline"
	if online {
		status = "online"
	}
	event := Event{Type: EventUserStatus, Payload: map[string]interface{}{
		"user_id": userID,
		"status":  status,
	}}

	h.mu.RLock()
	others := make([]*Client, 0, len(h.clients))
	for id, client := range h.clients {
		if id != userID {
			others = append(others, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range others {
		h.trySend(client, event)
	}
}
