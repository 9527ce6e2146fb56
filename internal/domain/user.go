package domain

import "time"

// User represents a member profile
type User struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Nickname  string    `gorm:"size:50;index" json:"nickname"`
	AvatarURL string    `gorm:"size:255" json:"avatar_url,omitempty"`
	Bio       string    `gorm:"size:255" json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name
func (User) TableName() string {
	return "users"
}

// UserSummary compact user projection embedded in responses
type UserSummary struct {
	ID        uint64 `json:"id"`
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ToSummary converts a user to its summary projection
func (u *User) ToSummary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Nickname:  u.Nickname,
		AvatarURL: u.AvatarURL,
	}
}
