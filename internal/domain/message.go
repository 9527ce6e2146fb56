package domain

import (
	"fmt"
	"time"

	"github.com/mingle/mingle-backend/internal/common"
	"gorm.io/gorm"
)

// MessageType message payload discriminator
type MessageType string

// Message types
const (
	TypeText         MessageType = "text"
	TypeImage        MessageType = "image"
	TypeVideo        MessageType = "video"
	TypeAudio        MessageType = "audio"
	TypeGift         MessageType = "gift"
	TypeBusinessCard MessageType = "business_card"
)

// IsMedia reports whether the type carries a media attachment
func (t MessageType) IsMedia() bool {
	return t == TypeImage || t == TypeVideo || t == TypeAudio
}

// Valid reports whether the type is one of the known message types
func (t MessageType) Valid() bool {
	switch t {
	case TypeText, TypeImage, TypeVideo, TypeAudio, TypeGift, TypeBusinessCard:
		return true
	}
	return false
}

// Message is a single persisted chat message. Rows are never physically
// removed; deletion sets DeletedAt. Per-type field invariants are enforced
// by the New*Message constructors, so a Message obtained through them is
// structurally valid by construction.
type Message struct {
	ID             uint64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint64      `gorm:"index:idx_message_conv_created" json:"conversation_id"`
	SenderID       uint64      `gorm:"index" json:"sender_id"`
	Type           MessageType `gorm:"size:20" json:"type"`

	Content *string `gorm:"type:text" json:"content,omitempty"`

	// Media fields (image/video/audio only)
	MediaURL       *string `gorm:"size:500" json:"media_url,omitempty"`
	MediaThumbnail *string `gorm:"size:500" json:"media_thumbnail,omitempty"`
	MediaSize      *int64  `json:"media_size,omitempty"`
	MediaDuration  *int    `json:"media_duration,omitempty"`
	Waveform       *string `gorm:"type:text" json:"waveform,omitempty"`

	// GiftID set iff Type == gift
	GiftID *uint64 `gorm:"index" json:"gift_id,omitempty"`

	// BusinessCardSubjectID set iff Type == business_card; always the
	// sender's own profile at send time
	BusinessCardSubjectID *uint64 `json:"business_card_subject_id,omitempty"`

	IsRead            bool    `gorm:"default:false" json:"is_read"`
	IsForwarded       bool    `gorm:"default:false" json:"is_forwarded"`
	OriginalMessageID *uint64 `json:"original_message_id,omitempty"`

	CreatedAt time.Time      `gorm:"index:idx_message_conv_created" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// MediaAttachment media payload for image/video/audio messages
type MediaAttachment struct {
	URL       string  `json:"url"`
	Thumbnail *string `json:"thumbnail,omitempty"`
	Size      *int64  `json:"size,omitempty"`
	Duration  *int    `json:"duration,omitempty"`
	Waveform  *string `json:"waveform,omitempty"`
}

// NewTextMessage builds a text message; content is required
func NewTextMessage(conversationID, senderID uint64, content string) (*Message, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: content is required for text messages", common.ErrInvalidInput)
	}
	return &Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Type:           TypeText,
		Content:        &content,
	}, nil
}

// NewMediaMessage builds an image/video/audio message; a media URL is required
func NewMediaMessage(conversationID, senderID uint64, t MessageType, media MediaAttachment, caption *string) (*Message, error) {
	if !t.IsMedia() {
		return nil, fmt.Errorf("%w: %s is not a media message type", common.ErrInvalidInput, t)
	}
	if media.URL == "" {
		return nil, fmt.Errorf("%w: media_url is required for %s messages", common.ErrInvalidInput, t)
	}
	return &Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Type:           t,
		Content:        caption,
		MediaURL:       &media.URL,
		MediaThumbnail: media.Thumbnail,
		MediaSize:      media.Size,
		MediaDuration:  media.Duration,
		Waveform:       media.Waveform,
	}, nil
}

// NewGiftMessage builds a gift message linked to a created gift record
func NewGiftMessage(conversationID, senderID, giftID uint64, note *string) *Message {
	return &Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Type:           TypeGift,
		Content:        note,
		GiftID:         &giftID,
	}
}

// NewBusinessCardMessage builds a business card message carrying the
// sender's own profile as subject
func NewBusinessCardMessage(conversationID, senderID uint64) *Message {
	subject := senderID
	return &Message{
		ConversationID:        conversationID,
		SenderID:              senderID,
		Type:                  TypeBusinessCard,
		BusinessCardSubjectID: &subject,
	}
}

// NewForwardedCopy clones the transferable fields of m into a new message
// targeting another conversation, linked back to the original
func (m *Message) NewForwardedCopy(conversationID, senderID uint64) *Message {
	original := m.ID
	return &Message{
		ConversationID:        conversationID,
		SenderID:              senderID,
		Type:                  m.Type,
		Content:               m.Content,
		MediaURL:              m.MediaURL,
		MediaThumbnail:        m.MediaThumbnail,
		MediaSize:             m.MediaSize,
		MediaDuration:         m.MediaDuration,
		Waveform:              m.Waveform,
		GiftID:                m.GiftID,
		BusinessCardSubjectID: m.BusinessCardSubjectID,
		IsRead:                false,
		IsForwarded:           true,
		OriginalMessageID:     &original,
	}
}

// PreviewText returns the per-type one-line preview used in conversation
// lists and contact suggestions
func (m *Message) PreviewText() string {
	switch m.Type {
	case TypeText:
		if m.Content != nil && *m.Content != "" {
			return *m.Content
		}
		return "New message"
	case TypeImage:
		return "[Photo]"
	case TypeVideo:
		return "[Video]"
	case TypeAudio:
		return "[Voice message]"
	case TypeGift:
		return "[Gift]"
	case TypeBusinessCard:
		return "[Business card]"
	}
	return "New message"
}

// SendMessageRequest request body for POST /conversations/:id/messages
type SendMessageRequest struct {
	Type    MessageType `json:"type" binding:"required"`
	Content *string     `json:"content"`

	MediaURL       *string `json:"media_url"`
	MediaThumbnail *string `json:"media_thumbnail"`
	MediaSize      *int64  `json:"media_size"`
	MediaDuration  *int    `json:"media_duration"`
	Waveform       *string `json:"waveform"`

	// Either an existing gift record, or a store catalog item to be
	// recorded as sent (name/image come from the store client)
	GiftID       *uint64 `json:"gift_id"`
	GiftItemID   *uint64 `json:"gift_item_id"`
	GiftName     string  `json:"gift_name,omitempty"`
	GiftImageURL string  `json:"gift_image_url,omitempty"`
}

// ForwardMessagesRequest request body for POST /messages/forward
type ForwardMessagesRequest struct {
	SourceConversationID uint64   `json:"source_conversation_id" binding:"required"`
	MessageIDs           []uint64 `json:"message_ids" binding:"required"`
	RecipientIDs         []uint64 `json:"recipient_ids" binding:"required"`
}

// MarkReadRequest request body for POST /conversations/:id/read
type MarkReadRequest struct {
	MessageIDs []uint64 `json:"message_ids"`
}

// TypingRequest request body for POST /conversations/:id/typing
type TypingRequest struct {
	IsTyping bool `json:"is_typing"`
}

// MessagePreview compact last-message projection for conversation lists
type MessagePreview struct {
	ID        uint64      `json:"id"`
	Type      MessageType `json:"type"`
	Preview   string      `json:"preview"`
	SenderID  uint64      `json:"sender_id"`
	CreatedAt time.Time   `json:"created_at"`
}

// ToPreview converts a message to its preview projection
func (m *Message) ToPreview() *MessagePreview {
	return &MessagePreview{
		ID:        m.ID,
		Type:      m.Type,
		Preview:   m.PreviewText(),
		SenderID:  m.SenderID,
		CreatedAt: m.CreatedAt,
	}
}

// MessageResponse a message expanded with sender and gift summaries
type MessageResponse struct {
	ID                  uint64       `json:"id"`
	ConversationID      uint64       `json:"conversation_id"`
	Type                MessageType  `json:"type"`
	Content             *string      `json:"content,omitempty"`
	MediaURL            *string      `json:"media_url,omitempty"`
	MediaThumbnail      *string      `json:"media_thumbnail,omitempty"`
	MediaSize           *int64       `json:"media_size,omitempty"`
	MediaDuration       *int         `json:"media_duration,omitempty"`
	Waveform            *string      `json:"waveform,omitempty"`
	Sender              UserSummary  `json:"sender"`
	Gift                *GiftSummary `json:"gift,omitempty"`
	BusinessCardSubject *UserSummary `json:"business_card_subject,omitempty"`
	IsRead              bool         `json:"is_read"`
	IsForwarded         bool         `json:"is_forwarded"`
	OriginalMessageID   *uint64      `json:"original_message_id,omitempty"`
	CreatedAt           time.Time    `json:"created_at"`
}

// ToResponse converts a message to its response projection
func (m *Message) ToResponse(sender UserSummary, gift *GiftSummary, subject *UserSummary) *MessageResponse {
	return &MessageResponse{
		ID:                  m.ID,
		ConversationID:      m.ConversationID,
		Type:                m.Type,
		Content:             m.Content,
		MediaURL:            m.MediaURL,
		MediaThumbnail:      m.MediaThumbnail,
		MediaSize:           m.MediaSize,
		MediaDuration:       m.MediaDuration,
		Waveform:            m.Waveform,
		Sender:              sender,
		Gift:                gift,
		BusinessCardSubject: subject,
		IsRead:              m.IsRead,
		IsForwarded:         m.IsForwarded,
		OriginalMessageID:   m.OriginalMessageID,
		CreatedAt:           m.CreatedAt,
	}
}
