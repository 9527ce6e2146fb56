package domain

import "time"

// Gift a sent gift, created when a gift message is persisted and linked
// back from the message via GiftID
type Gift struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemID     uint64    `gorm:"index" json:"item_id"`
	SenderID   uint64    `gorm:"index" json:"sender_id"`
	ReceiverID uint64    `gorm:"index" json:"receiver_id"`
	Name       string    `gorm:"size:100" json:"name"`
	ImageURL   string    `gorm:"size:255" json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// GiftSummary gift projection embedded in message responses
type GiftSummary struct {
	ID         uint64 `json:"id"`
	ItemID     uint64 `json:"item_id"`
	Name       string `json:"name"`
	ImageURL   string `json:"image_url,omitempty"`
	ReceiverID uint64 `json:"receiver_id"`
}

// ToSummary converts a gift to its summary projection
func (g *Gift) ToSummary() *GiftSummary {
	return &GiftSummary{
		ID:         g.ID,
		ItemID:     g.ItemID,
		Name:       g.Name,
		ImageURL:   g.ImageURL,
		ReceiverID: g.ReceiverID,
	}
}
