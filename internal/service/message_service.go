package service

import (
	"errors"

	"github.com/mingle/mingle-backend/internal/common"
	"github.com/mingle/mingle-backend/internal/domain"
	"github.com/mingle/mingle-backend/internal/repository"
	"github.com/mingle/mingle-backend/internal/ws"
	"github.com/mingle/mingle-backend/pkg/logger"
	"gorm.io/gorm"
)

// MessageService message sending, history, forwarding, read tracking and
// the live signals around them
type MessageService interface {
	Send(userID, conversationID uint64, req *domain.SendMessageRequest) (*domain.MessageResponse, error)
	Forward(userID uint64, req *domain.ForwardMessagesRequest) ([]*domain.MessageResponse, error)
	Delete(userID, messageID uint64) error
	List(userID, conversationID uint64, page, limit int, search string) (*common.Paginated, error)
	MediaGallery(userID, conversationID uint64, page, limit int) (*common.Paginated, error)
	Typing(userID, conversationID uint64, isTyping bool) error
	MarkRead(userID, conversationID uint64, messageIDs []uint64) (int64, error)
}

type messageService struct {
	messages      repository.MessageRepository
	conversations repository.ConversationRepository
	users         repository.UserRepository
	gifts         repository.GiftRepository
	emitter       Emitter
	notifier      Notifier
}

// NewMessageService creates a new MessageService
func NewMessageService(
	messages repository.MessageRepository,
	conversations repository.ConversationRepository,
	users repository.UserRepository,
	gifts repository.GiftRepository,
	emitter Emitter,
	notifier Notifier,
) MessageService {
	return &messageService{
		messages:      messages,
		conversations: conversations,
		users:         users,
		gifts:         gifts,
		emitter:       emitter,
		notifier:      notifier,
	}
}

// Send validates and persists a message, then pushes live events and
// notifications in the background. The message is durable once this
// returns; delivery of the side effects is best effort.
func (s *messageService) Send(userID, conversationID uint64, req *domain.SendMessageRequest) (*domain.MessageResponse, error) {
	if _, err := s.conversations.FindActiveParticipant(conversationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}

	conv, err := s.conversations.FindWithParticipants(conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}

	msg, err := s.buildMessage(userID, conv, req)
	if err != nil {
		return nil, err
	}

	if err := s.messages.Create(msg); err != nil {
		return nil, err
	}
	if err := s.conversations.TouchActivity(conversationID); err != nil {
		logger.GetLogger().Error().Err(err).
			Uint64("conversation_id", conversationID).
			Msg("failed to touch conversation activity")
	}

	sender, err := s.users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	resp, err := s.annotateOne(msg, sender.ToSummary())
	if err != nil {
		return nil, err
	}

	s.dispatchAsync(conv, msg, resp, sender.ToSummary())
	return resp, nil
}

// buildMessage turns a send request into a validated Message, creating
// the gift record first for gift messages
func (s *messageService) buildMessage(userID uint64, conv *domain.Conversation, req *domain.SendMessageRequest) (*domain.Message, error) {
	switch {
	case req.Type == domain.TypeText:
		content := ""
		if req.Content != nil {
			content = *req.Content
		}
		return domain.NewTextMessage(conv.ID, userID, content)

	case req.Type.IsMedia():
		if req.MediaURL == nil {
			return domain.NewMediaMessage(conv.ID, userID, req.Type, domain.MediaAttachment{}, req.Content)
		}
		return domain.NewMediaMessage(conv.ID, userID, req.Type, domain.MediaAttachment{
			URL:       *req.MediaURL,
			Thumbnail: req.MediaThumbnail,
			Size:      req.MediaSize,
			Duration:  req.MediaDuration,
			Waveform:  req.Waveform,
		}, req.Content)

	case req.Type == domain.TypeGift:
		giftID, err := s.resolveGift(userID, conv, req)
		if err != nil {
			return nil, err
		}
		return domain.NewGiftMessage(conv.ID, userID, giftID, req.Content), nil

	case req.Type == domain.TypeBusinessCard:
		return domain.NewBusinessCardMessage(conv.ID, userID), nil
	}
	return nil, common.ErrInvalidInput
}

// resolveGift returns the gift record id for a gift message, creating a
// new record from a store item when needed. Gifts target the direct peer,
// so group conversations only accept pre-created gift records.
func (s *messageService) resolveGift(userID uint64, conv *domain.Conversation, req *domain.SendMessageRequest) (uint64, error) {
	if req.GiftID != nil {
		gift, err := s.gifts.FindByID(*req.GiftID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, common.ErrInvalidInput
			}
			return 0, err
		}
		return gift.ID, nil
	}

	if req.GiftItemID == nil {
		return 0, common.ErrInvalidInput
	}
	if conv.Kind != domain.KindDirect {
		return 0, common.ErrInvalidInput
	}

	receiverID := uint64(0)
	for _, p := range conv.Participants {
		if p.UserID != userID {
			receiverID = p.UserID
			break
		}
	}
	if receiverID == 0 {
		return 0, common.ErrInvalidInput
	}

	gift := &domain.Gift{
		ItemID:     *req.GiftItemID,
		SenderID:   userID,
		ReceiverID: receiverID,
		Name:       req.GiftName,
		ImageURL:   req.GiftImageURL,
	}
	if err := s.gifts.Create(gift); err != nil {
		return 0, err
	}
	return gift.ID, nil
}

// dispatchAsync pushes the new message to the conversation room and
// notifies the remaining active participants
func (s *messageService) dispatchAsync(conv *domain.Conversation, msg *domain.Message, resp *domain.MessageResponse, sender domain.UserSummary) {
	recipients := make([]uint64, 0, len(conv.Participants))
	for _, p := range conv.Participants {
		if p.UserID == msg.SenderID || !p.IsActive() || p.IsMuted {
			continue
		}
		recipients = append(recipients, p.UserID)
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.GetLogger().Error().
					Interface("panic", r).
					Uint64("message_id", msg.ID).
					Msg("message dispatch panicked")
			}
		}()

		s.emitter.EmitToConversation(conv.ID, ws.Event{
			Type:    ws.EventNewMessage,
			Payload: resp,
		}, msg.SenderID)

		s.notifier.NotifyNewMessage(recipients, msg, sender)
	}()
}

// Forward copies messages from a source conversation into a direct
// conversation with each recipient. Every copy is persisted and announced
// like a freshly sent message.
func (s *messageService) Forward(userID uint64, req *domain.ForwardMessagesRequest) ([]*domain.MessageResponse, error) {
	if len(req.MessageIDs) == 0 || len(req.RecipientIDs) == 0 {
		return nil, common.ErrInvalidInput
	}

	if _, err := s.conversations.FindActiveParticipant(req.SourceConversationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}

	// Ids that are deleted or belong to another conversation are skipped;
	// the request only fails when nothing resolves at all
	originals, err := s.messages.FindVisibleInConversation(req.SourceConversationID, req.MessageIDs)
	if err != nil {
		return nil, err
	}
	if len(originals) == 0 {
		return nil, common.ErrNotFound
	}

	sender, err := s.users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	senderSummary := sender.ToSummary()

	var results []*domain.MessageResponse
	for _, recipientID := range req.RecipientIDs {
		if recipientID == userID {
			return nil, common.ErrSelfConversation
		}
		conv, created, err := s.conversations.FindOrCreateDirect(userID, recipientID)
		if err != nil {
			return nil, err
		}
		if !created {
			if err := s.conversations.Rejoin(conv.ID, userID); err != nil {
				return nil, err
			}
		}
		full, err := s.conversations.FindWithParticipants(conv.ID)
		if err != nil {
			return nil, err
		}

		for _, original := range originals {
			dup := original.NewForwardedCopy(conv.ID, userID)
			if err := s.messages.Create(dup); err != nil {
				return nil, err
			}
			resp, err := s.annotateOne(dup, senderSummary)
			if err != nil {
				return nil, err
			}
			s.dispatchAsync(full, dup, resp, senderSummary)
			results = append(results, resp)
		}
		if err := s.conversations.TouchActivity(conv.ID); err != nil {
			logger.GetLogger().Error().Err(err).
				Uint64("conversation_id", conv.ID).
				Msg("failed to touch conversation activity")
		}
	}
	return results, nil
}

// Delete soft deletes a message. Only the sender may delete.
func (s *messageService) Delete(userID, messageID uint64) error {
	msg, err := s.messages.FindByID(messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotFound
		}
		return err
	}
	if msg.SenderID != userID {
		return common.ErrForbidden
	}
	return s.messages.SoftDelete(messageID)
}

func (s *messageService) List(userID, conversationID uint64, page, limit int, search string) (*common.Paginated, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	if _, err := s.conversations.FindActiveParticipant(conversationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}

	messages, total, err := s.messages.List(conversationID, (page-1)*limit, limit, search)
	if err != nil {
		return nil, err
	}
	items, err := s.annotateMany(messages)
	if err != nil {
		return nil, err
	}
	return common.NewPaginated(items, len(items), page, limit, total), nil
}

func (s *messageService) MediaGallery(userID, conversationID uint64, page, limit int) (*common.Paginated, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 30
	}
	if limit > 100 {
		limit = 100
	}

	if _, err := s.conversations.FindActiveParticipant(conversationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}

	messages, total, err := s.messages.ListMedia(conversationID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	items, err := s.annotateMany(messages)
	if err != nil {
		return nil, err
	}
	return common.NewPaginated(items, len(items), page, limit, total), nil
}

// Typing relays a typing signal to the conversation room. Nothing is
// persisted.
func (s *messageService) Typing(userID, conversationID uint64, isTyping bool) error {
	if _, err := s.conversations.FindActiveParticipant(conversationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotFound
		}
		return err
	}

	user, err := s.users.FindByID(userID)
	if err != nil {
		return err
	}

	s.emitter.EmitToConversation(conversationID, ws.Event{
		Type: ws.EventUserTyping,
		Payload: map[string]interface{}{
			"conversation_id": conversationID,
			"user_id":         userID,
			"nickname":        user.Nickname,
			"is_typing":       isTyping,
		},
	}, userID)
	return nil
}

// MarkRead flags messages as read and tells the room. Returns how many
// messages actually changed state.
func (s *messageService) MarkRead(userID, conversationID uint64, messageIDs []uint64) (int64, error) {
	if _, err := s.conversations.FindActiveParticipant(conversationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, common.ErrNotFound
		}
		return 0, err
	}

	count, err := s.messages.MarkRead(conversationID, userID, messageIDs)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		s.emitter.EmitToConversation(conversationID, ws.Event{
			Type: ws.EventMessageRead,
			Payload: map[string]interface{}{
				"conversation_id": conversationID,
				"reader_id":       userID,
				"message_ids":     messageIDs,
				"count":           count,
			},
		}, userID)
	}
	return count, nil
}

// annotateOne expands a message whose sender summary is already known
func (s *messageService) annotateOne(msg *domain.Message, sender domain.UserSummary) (*domain.MessageResponse, error) {
	var giftSummary *domain.GiftSummary
	if msg.GiftID != nil {
		gift, err := s.gifts.FindByID(*msg.GiftID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		} else {
			giftSummary = gift.ToSummary()
		}
	}

	var subject *domain.UserSummary
	if msg.BusinessCardSubjectID != nil {
		user, err := s.users.FindByID(*msg.BusinessCardSubjectID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		} else {
			summary := user.ToSummary()
			subject = &summary
		}
	}
	return msg.ToResponse(sender, giftSummary, subject), nil
}

// annotateMany expands messages in bulk with three lookups total
func (s *messageService) annotateMany(messages []*domain.Message) ([]*domain.MessageResponse, error) {
	userIDs := make([]uint64, 0, len(messages))
	giftIDs := make([]uint64, 0)
	seen := make(map[uint64]bool)
	for _, m := range messages {
		if !seen[m.SenderID] {
			seen[m.SenderID] = true
			userIDs = append(userIDs, m.SenderID)
		}
		if m.BusinessCardSubjectID != nil && !seen[*m.BusinessCardSubjectID] {
			seen[*m.BusinessCardSubjectID] = true
			userIDs = append(userIDs, *m.BusinessCardSubjectID)
		}
		if m.GiftID != nil {
			giftIDs = append(giftIDs, *m.GiftID)
		}
	}

	users, err := s.users.FindByIDs(userIDs)
	if err != nil {
		return nil, err
	}
	gifts, err := s.gifts.FindByIDs(giftIDs)
	if err != nil {
		return nil, err
	}

	responses := make([]*domain.MessageResponse, 0, len(messages))
	for _, m := range messages {
		sender := domain.UserSummary{ID: m.SenderID}
		if u, ok := users[m.SenderID]; ok {
			sender = u.ToSummary()
		}

		var giftSummary *domain.GiftSummary
		if m.GiftID != nil {
			if g, ok := gifts[*m.GiftID]; ok {
				giftSummary = g.ToSummary()
			}
		}

		var subject *domain.UserSummary
		if m.BusinessCardSubjectID != nil {
			if u, ok := users[*m.BusinessCardSubjectID]; ok {
				summary := u.ToSummary()
				subject = &summary
			}
		}
		responses = append(responses, m.ToResponse(sender, giftSummary, subject))
	}
	return responses, nil
}
