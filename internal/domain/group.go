package domain

import "time"

// Group metadata referenced by group conversations.
// Group lifecycle (creation, membership, roles) lives in the clan domain;
// the chat core only reads name/avatar for annotation.
type Group struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:100;index" json:"name"`
	AvatarURL string    `gorm:"size:255" json:"avatar_url,omitempty"`
	OwnerID   uint64    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name ("groups" is reserved in MySQL 8)
func (Group) TableName() string {
	return "chat_groups"
}
