package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mingle/mingle-backend/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

// clientEvent is a client-to-server websocket frame
type clientEvent struct {
	Type           string `json:"type"`
	ConversationID uint64 `json:"conversation_id,omitempty"`
	RecipientID    uint64 `json:"recipient_id,omitempty"`
	Content        string `json:"content,omitempty"`
	IsTyping       bool   `json:"is_typing"`
}

// Client event types accepted from the socket
const (
	clientSendMessage      = "send_message"
	clientSendNotification = "send_notification"
	clientTyping           = "typing"
	clientJoinRoom         = "join_room"
	clientLeaveRoom        = "leave_room"
)

// Client is one live websocket connection bound to a user
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	userID   uint64
	nickname string
	send     chan Event
	done     chan struct{}
	once     sync.Once
}

// NewClient wraps an upgraded connection. The caller must start ReadPump
// and WritePump.
func NewClient(hub *Hub, conn *websocket.Conn, userID uint64, nickname string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		userID:   userID,
		nickname: nickname,
		send:     make(chan Event, sendBufferSize),
		done:     make(chan struct{}),
	}
}

// Register announces the client to the hub
func (c *Client) Register() {
	c.hub.register <- c
}

// close signals shutdown. The send channel is never closed: emitters that
// snapshotted this client under the hub lock may still be sending, and a
// send on a closed channel would panic them.
func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
	})
}

// ReadPump reads client frames until the connection drops, dispatching
// the lightweight client-to-server events
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	log := logger.GetLogger()
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Uint64("user_id", c.userID).Msg("websocket read error")
			}
			return
		}

		var event clientEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			log.Debug().Err(err).Uint64("user_id", c.userID).Msg("malformed websocket frame")
			continue
		}
		c.handleEvent(event)
	}
}

func (c *Client) handleEvent(event clientEvent) {
	switch event.Type {
	case clientJoinRoom:
		if event.ConversationID != 0 {
			c.hub.JoinRoom(event.ConversationID, c)
		}
	case clientLeaveRoom:
		if event.ConversationID != 0 {
			c.hub.LeaveRoom(event.ConversationID, c)
		}
	case clientTyping:
		if event.ConversationID != 0 {
			c.hub.EmitToConversation(event.ConversationID, Event{
				Type: EventUserTyping,
				Payload: map[string]interface{}{
					"conversation_id": event.ConversationID,
					"user_id":         c.userID,
					"nickname":        c.nickname,
					"is_typing":       event.IsTyping,
				},
			}, c.userID)
		}
	case clientSendMessage:
		// Transient push only; persistence goes through the REST endpoint
		if event.RecipientID != 0 {
			c.hub.EmitToUser(event.RecipientID, Event{
				Type: EventNewMessage,
				Payload: map[string]interface{}{
					"conversation_id": event.ConversationID,
					"sender_id":       c.userID,
					"nickname":        c.nickname,
					"content":         event.Content,
					"transient":       true,
				},
			})
		}
	case clientSendNotification:
		if event.RecipientID != 0 {
			c.hub.EmitToUser(event.RecipientID, Event{
				Type: EventNewNotification,
				Payload: map[string]interface{}{
					"sender_id": c.userID,
					"nickname":  c.nickname,
					"content":   event.Content,
				},
			})
		}
	}
}

// WritePump serializes queued events onto the connection and keeps the
// connection alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case event := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
