package repository

import (
	"github.com/mingle/mingle-backend/internal/domain"
	"gorm.io/gorm"
)

// NotificationRepository notification data access
type NotificationRepository interface {
	Create(n *domain.Notification) error
	UnreadCount(userID uint64) (int64, error)
	MarkReadForConversation(userID, conversationID uint64) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(n *domain.Notification) error {
	return r.db.Create(n).Error
}

func (r *notificationRepository) UnreadCount(userID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkReadForConversation clears pending notifications once the user has
// read the conversation
func (r *notificationRepository) MarkReadForConversation(userID, conversationID uint64) error {
	return r.db.Model(&domain.Notification{}).
		Where("user_id = ? AND conversation_id = ? AND is_read = ?", userID, conversationID, false).
		Update("is_read", true).Error
}
