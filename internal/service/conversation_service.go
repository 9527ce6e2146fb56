package service

import (
	"errors"

	"github.com/mingle/mingle-backend/internal/common"
	"github.com/mingle/mingle-backend/internal/domain"
	"github.com/mingle/mingle-backend/internal/repository"
	"github.com/mingle/mingle-backend/pkg/logger"
	"gorm.io/gorm"
)

// ConversationService conversation lifecycle and per-user settings
type ConversationService interface {
	Create(userID uint64, req *domain.CreateConversationRequest) (*domain.ConversationResponse, bool, error)
	Get(userID, conversationID uint64) (*domain.ConversationResponse, error)
	List(userID uint64, page, limit int, search string, kind domain.ConversationKind) (*common.Paginated, error)
	Counts(userID uint64) (*domain.CategoryCounts, error)
	GetSettings(userID, conversationID uint64) (*domain.ChatSettingsResponse, error)
	UpdateSettings(userID, conversationID uint64, req *domain.UpdateChatSettingsRequest) error
	Delete(userID, conversationID uint64) error
	Report(userID, conversationID uint64, reason string) error
}

type conversationService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	users         repository.UserRepository
	blocks        repository.BlockRepository
}

// NewConversationService creates a new ConversationService
func NewConversationService(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	users repository.UserRepository,
	blocks repository.BlockRepository,
) ConversationService {
	return &conversationService{
		conversations: conversations,
		messages:      messages,
		users:         users,
		blocks:        blocks,
	}
}

// Create opens a direct conversation with another user, reusing the
// existing one when the pair already has a conversation. The bool result
// reports whether a new conversation was created.
func (s *conversationService) Create(userID uint64, req *domain.CreateConversationRequest) (*domain.ConversationResponse, bool, error) {
	switch req.Kind {
	case domain.KindDirect:
	case domain.KindGroup:
		return nil, false, common.ErrGroupCreationUnsupported
	default:
		return nil, false, common.ErrInvalidInput
	}

	if req.OtherUserID == nil || *req.OtherUserID == 0 {
		return nil, false, common.ErrInvalidInput
	}
	otherID := *req.OtherUserID
	if otherID == userID {
		return nil, false, common.ErrSelfConversation
	}

	if _, err := s.users.FindByID(otherID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, common.ErrNotFound
		}
		return nil, false, err
	}

	conv, created, err := s.conversations.FindOrCreateDirect(userID, otherID)
	if err != nil {
		return nil, false, err
	}
	if !created {
		// A returning user may have left this conversation earlier
		if err := s.conversations.Rejoin(conv.ID, userID); err != nil {
			return nil, false, err
		}
	}

	resp, err := s.annotate(conv, userID)
	if err != nil {
		return nil, false, err
	}
	return resp, created, nil
}

// Get returns one conversation annotated for the caller. Non-members get
// ErrNotFound, same as a missing conversation.
func (s *conversationService) Get(userID, conversationID uint64) (*domain.ConversationResponse, error) {
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
	return s.annotate(conv, userID)
}

func (s *conversationService) List(userID uint64, page, limit int, search string, kind domain.ConversationKind) (*common.Paginated, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	conversations, total, err := s.conversations.ListForUser(userID, (page-1)*limit, limit, search, kind)
	if err != nil {
		return nil, err
	}

	items := make([]*domain.ConversationResponse, 0, len(conversations))
	for _, conv := range conversations {
		resp, err := s.annotate(conv, userID)
		if err != nil {
			return nil, err
		}
		items = append(items, resp)
	}
	return common.NewPaginated(items, len(items), page, limit, total), nil
}

func (s *conversationService) Counts(userID uint64) (*domain.CategoryCounts, error) {
	return s.conversations.CountByKind(userID)
}

func (s *conversationService) GetSettings(userID, conversationID uint64) (*domain.ChatSettingsResponse, error) {
	participant, err := s.conversations.FindActiveParticipant(conversationID, userID)
	if err != nil {
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

	resp := &domain.ChatSettingsResponse{
		ConversationID:    conv.ID,
		Kind:              conv.Kind,
		DisplayName:       participant.DisplayName,
		IsMuted:           participant.IsMuted,
		GiftSoundsEnabled: participant.GiftSoundsEnabled,
	}

	switch conv.Kind {
	case domain.KindDirect:
		peerID := s.peerID(conv, userID)
		if peerID != 0 {
			peer, err := s.users.FindByID(peerID)
			if err == nil {
				summary := peer.ToSummary()
				resp.Peer = &summary
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			blockedByMe, err := s.blocks.Exists(userID, peerID)
			if err != nil {
				return nil, err
			}
			blockedMe, err := s.blocks.Exists(peerID, userID)
			if err != nil {
				return nil, err
			}
			resp.BlockedByMe = blockedByMe
			resp.BlockedMe = blockedMe
		}
	case domain.KindGroup:
		if conv.GroupID != nil {
			group, err := s.conversations.FindGroup(*conv.GroupID)
			if err == nil {
				resp.GroupName = group.Name
				resp.GroupAvatarURL = group.AvatarURL
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}
	}
	return resp, nil
}

func (s *conversationService) UpdateSettings(userID, conversationID uint64, req *domain.UpdateChatSettingsRequest) error {
	updates := map[string]interface{}{}
	if req.IsMuted != nil {
		updates["is_muted"] = *req.IsMuted
	}
	if req.GiftSoundsEnabled != nil {
		updates["gift_sounds_enabled"] = *req.GiftSoundsEnabled
	}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if len(updates) == 0 {
		return common.ErrInvalidInput
	}

	err := s.conversations.UpdateParticipant(conversationID, userID, updates)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrNotFound
	}
	return err
}

// Delete removes a direct conversation from the caller's side by marking
// the participant as left; the other side keeps its history, and once the
// last active participant leaves the conversation itself is soft deleted.
// Group conversations are soft deleted outright.
func (s *conversationService) Delete(userID, conversationID uint64) error {
	if _, err := s.conversations.FindActiveParticipant(conversationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotFound
		}
		return err
	}

	conv, err := s.conversations.FindByID(conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotFound
		}
		return err
	}
	if conv.Kind == domain.KindGroup {
		return s.conversations.SoftDelete(conversationID)
	}

	if err := s.conversations.Leave(conversationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotFound
		}
		return err
	}

	remaining, err := s.conversations.ActiveParticipants(conversationID)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return s.conversations.SoftDelete(conversationID)
	}
	return nil
}

// Report records an abuse report. There is no moderation pipeline yet,
// so the report is logged for the operations team.
func (s *conversationService) Report(userID, conversationID uint64, reason string) error {
	if _, err := s.conversations.FindActiveParticipant(conversationID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotFound
		}
		return err
	}

	log := logger.GetLogger()
	log.Warn().
		Uint64("reporter_id", userID).
		Uint64("conversation_id", conversationID).
		Str("reason", reason).
		Msg("conversation reported")
	return nil
}

// peerID returns the other user of a direct conversation, 0 if missing
func (s *conversationService) peerID(conv *domain.Conversation, userID uint64) uint64 {
	for _, p := range conv.Participants {
		if p.UserID != userID {
			return p.UserID
		}
	}
	return 0
}

// annotate builds the caller-facing projection of a conversation: display
// name, avatar, per-user settings and the last message preview
func (s *conversationService) annotate(conv *domain.Conversation, userID uint64) (*domain.ConversationResponse, error) {
	if len(conv.Participants) == 0 {
		full, err := s.conversations.FindWithParticipants(conv.ID)
		if err != nil {
			return nil, err
		}
		conv = full
	}

	resp := &domain.ConversationResponse{
		ID:        conv.ID,
		Kind:      conv.Kind,
		GroupID:   conv.GroupID,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}

	for _, p := range conv.Participants {
		if p.UserID == userID {
			resp.IsMuted = p.IsMuted
			resp.GiftSoundsEnabled = p.GiftSoundsEnabled
			if p.DisplayName != nil && *p.DisplayName != "" {
				resp.Name = *p.DisplayName
			}
			break
		}
	}

	switch conv.Kind {
	case domain.KindDirect:
		peerID := s.peerID(conv, userID)
		if peerID != 0 {
			resp.PeerID = &peerID
			peer, err := s.users.FindByID(peerID)
			if err == nil {
				if resp.Name == "" {
					resp.Name = peer.Nickname
				}
				resp.AvatarURL = peer.AvatarURL
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}
	case domain.KindGroup:
		if conv.GroupID != nil {
			group, err := s.conversations.FindGroup(*conv.GroupID)
			if err == nil {
				if resp.Name == "" {
					resp.Name = group.Name
				}
				resp.AvatarURL = group.AvatarURL
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}
	}

	last, err := s.messages.LastInConversation(conv.ID)
	if err != nil {
		return nil, err
	}
	if last != nil {
		resp.LastMessage = last.ToPreview()
	}
	return resp, nil
}
