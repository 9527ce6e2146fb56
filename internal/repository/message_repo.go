package repository

import (
	"strings"

	"github.com/mingle/mingle-backend/internal/domain"
	"gorm.io/gorm"
)

// MessageRepository message data access
type MessageRepository interface {
	Create(msg *domain.Message) error
	FindByID(id uint64) (*domain.Message, error)
	FindVisibleInConversation(conversationID uint64, ids []uint64) ([]*domain.Message, error)
	List(conversationID uint64, offset, limit int, search string) ([]*domain.Message, int64, error)
	ListMedia(conversationID uint64, offset, limit int) ([]*domain.Message, int64, error)
	LastInConversation(conversationID uint64) (*domain.Message, error)
	SoftDelete(id uint64) error
	MarkRead(conversationID, readerID uint64, ids []uint64) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(msg *domain.Message) error {
	return r.db.Create(msg).Error
}

func (r *messageRepository) FindByID(id uint64) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.Where("id = ?", id).First(&msg).Error
	return &msg, err
}

// FindVisibleInConversation loads the given messages, restricted to the
// source conversation so forwarding cannot reach across conversations
func (r *messageRepository) FindVisibleInConversation(conversationID uint64, ids []uint64) ([]*domain.Message, error) {
	var messages []*domain.Message
	err := r.db.
		Where("conversation_id = ? AND id IN ?", conversationID, ids).
		Find(&messages).Error
	return messages, err
}

// List returns messages newest first, paginated. Ties on created_at are
// broken by id so the order is stable across pages.
func (r *messageRepository) List(conversationID uint64, offset, limit int, search string) ([]*domain.Message, int64, error) {
	query := r.db.Model(&domain.Message{}).Where("conversation_id = ?", conversationID)
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(content) LIKE ?", pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []*domain.Message
	err := query.
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// ListMedia returns only image/video/audio messages that actually carry a
// media URL, newest first
func (r *messageRepository) ListMedia(conversationID uint64, offset, limit int) ([]*domain.Message, int64, error) {
	mediaTypes := []domain.MessageType{domain.TypeImage, domain.TypeVideo, domain.TypeAudio}
	query := r.db.Model(&domain.Message{}).
		Where("conversation_id = ? AND type IN ? AND media_url IS NOT NULL", conversationID, mediaTypes)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []*domain.Message
	err := query.
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// LastInConversation returns the newest message, or nil when the
// conversation has none
func (r *messageRepository) LastInConversation(conversationID uint64) (*domain.Message, error) {
	var msg domain.Message
	err := r.db.
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC, id DESC").
		First(&msg).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepository) SoftDelete(id uint64) error {
	result := r.db.Where("id = ?", id).Delete(&domain.Message{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkRead flags unread messages from other senders as read. With no ids
// it covers the whole conversation. Returns how many rows changed.
func (r *messageRepository) MarkRead(conversationID, readerID uint64, ids []uint64) (int64, error) {
	query := r.db.Model(&domain.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, readerID, false)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	result := query.Update("is_read", true)
	return result.RowsAffected, result.Error
}
