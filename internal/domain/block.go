package domain

import "time"

// UserBlock one user blocking another, checked when building chat settings
type UserBlock struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint64    `gorm:"uniqueIndex:idx_block_pair" json:"user_id"`
	BlockedUserID uint64    `gorm:"uniqueIndex:idx_block_pair" json:"blocked_user_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName returns the table name
func (UserBlock) TableName() string {
	return "user_blocks"
}
