package service

import (
	"github.com/mingle/mingle-backend/internal/domain"
	"github.com/mingle/mingle-backend/internal/repository"
	"github.com/mingle/mingle-backend/internal/ws"
	"github.com/mingle/mingle-backend/pkg/logger"
)

// Notifier records message notifications and pushes them to recipients.
// Callers treat it as fire-and-forget; failures must not affect the send.
type Notifier interface {
	NotifyNewMessage(recipientIDs []uint64, msg *domain.Message, sender domain.UserSummary)
}

type notifier struct {
	notifications repository.NotificationRepository
	emitter       Emitter
}

// NewNotifier creates a new Notifier
func NewNotifier(notifications repository.NotificationRepository, emitter Emitter) Notifier {
	return &notifier{notifications: notifications, emitter: emitter}
}

func (n *notifier) NotifyNewMessage(recipientIDs []uint64, msg *domain.Message, sender domain.UserSummary) {
	log := logger.GetLogger()
	for _, recipientID := range recipientIDs {
		record := &domain.Notification{
			UserID:         recipientID,
			SenderID:       msg.SenderID,
			ConversationID: msg.ConversationID,
			MessageID:      msg.ID,
		}
		if err := n.notifications.Create(record); err != nil {
			log.Error().Err(err).
				Uint64("recipient_id", recipientID).
				Uint64("message_id", msg.ID).
				Msg("failed to persist notification")
			continue
		}

		n.emitter.EmitToUser(recipientID, ws.Event{
			Type: ws.EventNewNotification,
			Payload: map[string]interface{}{
				"notification_id": record.ID,
				"conversation_id": msg.ConversationID,
				"message_id":      msg.ID,
				"sender":          sender,
				"preview":         msg.PreviewText(),
			},
		})
	}
}
