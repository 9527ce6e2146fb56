package service

import "github.com/mingle/mingle-backend/internal/ws"

// Emitter pushes live events to connected clients. Implemented by ws.Hub;
// abstracted here so services can be tested without sockets.
type Emitter interface {
	EmitToUser(userID uint64, event ws.Event)
	EmitToConversation(conversationID uint64, event ws.Event, excludeUserIDs ...uint64)
	IsUserOnline(userID uint64) bool
}
