package domain

import "time"

// Notification a message notification row written by the notifier
// side-channel; delivery to devices is handled by the push subsystem
type Notification struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         uint64    `gorm:"index" json:"user_id"`
	SenderID       uint64    `json:"sender_id"`
	ConversationID uint64    `json:"conversation_id"`
	MessageID      uint64    `json:"message_id"`
	IsRead         bool      `gorm:"default:false" json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

// NotificationSummaryResponse unread count response
type NotificationSummaryResponse struct {
	TotalUnread int64 `json:"total_unread"`
}
