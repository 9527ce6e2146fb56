package domain

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ConversationKind distinguishes 1:1 chats from group chats
type ConversationKind string

// Conversation kinds
const (
	KindDirect ConversationKind = "direct"
	KindGroup  ConversationKind = "group"
)

// Conversation is a container for messages between two (direct) or more
// (group) users. A direct conversation has exactly two participants for
// its whole lifetime.
type Conversation struct {
	ID        uint64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Kind      ConversationKind `gorm:"size:10;index" json:"kind"`
	// PairKey is "<minUserID>:<maxUserID>" for direct conversations and
	// NULL for groups. The unique index makes find-or-create atomic: two
	// concurrent creates for the same pair collide here instead of
	// producing duplicates.
	PairKey   *string        `gorm:"size:64;uniqueIndex" json:"-"`
	GroupID   *uint64        `gorm:"index" json:"group_id,omitempty"`
	CreatedBy uint64         `json:"created_by"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Participants []Participant `gorm:"foreignKey:ConversationID" json:"participants,omitempty"`
}

// DirectPairKey builds the canonical unordered pair key for two users
func DirectPairKey(a, b uint64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// Participant is a user's membership record in a conversation, carrying
// per-user settings and join/leave state. A participant row is mutated
// only by its own user's actions.
type Participant struct {
	ID                uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID    uint64     `gorm:"uniqueIndex:idx_participant_conv_user" json:"conversation_id"`
	UserID            uint64     `gorm:"uniqueIndex:idx_participant_conv_user;index" json:"user_id"`
	JoinedAt          time.Time  `json:"joined_at"`
	LeftAt            *time.Time `json:"left_at,omitempty"`
	IsMuted           bool       `gorm:"default:false" json:"is_muted"`
	GiftSoundsEnabled bool       `gorm:"default:true" json:"gift_sounds_enabled"`
	DisplayName       *string    `gorm:"size:100" json:"display_name,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// IsActive reports whether the participant has not left the conversation
func (p *Participant) IsActive() bool {
	return p.LeftAt == nil
}

// CreateConversationRequest request body for POST /conversations
type CreateConversationRequest struct {
	Kind        ConversationKind `json:"kind" binding:"required"`
	OtherUserID *uint64          `json:"other_user_id"`
}

// UpdateChatSettingsRequest request body for PATCH /conversations/:id/settings.
// Nil fields are left untouched.
type UpdateChatSettingsRequest struct {
	IsMuted           *bool   `json:"is_muted"`
	GiftSoundsEnabled *bool   `json:"gift_sounds_enabled"`
	DisplayName       *string `json:"display_name"`
}

// ConversationResponse a conversation annotated for the calling user
type ConversationResponse struct {
	ID                uint64           `json:"id"`
	Kind              ConversationKind `json:"kind"`
	Name              string           `json:"name"`
	AvatarURL         string           `json:"avatar_url,omitempty"`
	PeerID            *uint64          `json:"peer_id,omitempty"`
	GroupID           *uint64          `json:"group_id,omitempty"`
	LastMessage       *MessagePreview  `json:"last_message,omitempty"`
	IsMuted           bool             `json:"is_muted"`
	GiftSoundsEnabled bool             `json:"gift_sounds_enabled"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// ChatSettingsResponse aggregated settings page for one conversation
type ChatSettingsResponse struct {
	ConversationID    uint64           `json:"conversation_id"`
	Kind              ConversationKind `json:"kind"`
	Peer              *UserSummary     `json:"peer,omitempty"`
	GroupName         string           `json:"group_name,omitempty"`
	GroupAvatarURL    string           `json:"group_avatar_url,omitempty"`
	DisplayName       *string          `json:"display_name,omitempty"`
	IsMuted           bool             `json:"is_muted"`
	GiftSoundsEnabled bool             `json:"gift_sounds_enabled"`
	BlockedByMe       bool             `json:"blocked_by_me"`
	BlockedMe         bool             `json:"blocked_me"`
}

// CategoryCounts active conversation tallies by kind
type CategoryCounts struct {
	All    int64 `json:"all"`
	Direct int64 `json:"direct"`
	Group  int64 `json:"group"`
}
