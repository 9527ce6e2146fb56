package repository

import (
	"strings"
	"time"

	"github.com/mingle/mingle-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversationRepository conversation and participant data access
type ConversationRepository interface {
	FindOrCreateDirect(userID, otherUserID uint64) (*domain.Conversation, bool, error)
	FindByID(id uint64) (*domain.Conversation, error)
	FindWithParticipants(id uint64) (*domain.Conversation, error)
	FindActiveParticipant(conversationID, userID uint64) (*domain.Participant, error)
	ActiveParticipants(conversationID uint64) ([]*domain.Participant, error)
	ListForUser(userID uint64, offset, limit int, search string, kind domain.ConversationKind) ([]*domain.Conversation, int64, error)
	RecentForUser(userID uint64, limit int) ([]*domain.Conversation, error)
	SoftDelete(id uint64) error
	Leave(conversationID, userID uint64) error
	Rejoin(conversationID, userID uint64) error
	UpdateParticipant(conversationID, userID uint64, updates map[string]interface{}) error
	CountByKind(userID uint64) (*domain.CategoryCounts, error)
	TouchActivity(id uint64) error
	FindGroup(id uint64) (*domain.Group, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// FindOrCreateDirect returns the direct conversation between two users,
// creating it (with both participant rows) when none exists. The unique
// pair_key index plus ON CONFLICT DO NOTHING makes concurrent calls for
// the same pair converge on a single row.
func (r *conversationRepository) FindOrCreateDirect(userID, otherUserID uint64) (*domain.Conversation, bool, error) {
	pairKey := domain.DirectPairKey(userID, otherUserID)
	created := false
	var conv domain.Conversation

	err := r.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		conv = domain.Conversation{
			Kind:      domain.KindDirect,
			PairKey:   &pairKey,
			CreatedBy: userID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pair_key"}},
			DoNothing: true,
		}).Create(&conv)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race, or the pair already has a conversation. The
			// unique index also matches a soft-deleted row (both sides
			// deleted earlier), so read unscoped and revive it; otherwise
			// the pair could never open a conversation again.
			conv = domain.Conversation{}
			if err := tx.Unscoped().Where("pair_key = ?", pairKey).First(&conv).Error; err != nil {
				return err
			}
			if conv.DeletedAt.Valid {
				if err := tx.Unscoped().Model(&domain.Conversation{}).
					Where("id = ?", conv.ID).
					Updates(map[string]interface{}{"deleted_at": nil, "updated_at": now}).Error; err != nil {
					return err
				}
				conv.DeletedAt = gorm.DeletedAt{}
				conv.UpdatedAt = now
			}
			return nil
		}

		created = true
		participants := []domain.Participant{
			{ConversationID: conv.ID, UserID: userID, JoinedAt: now, GiftSoundsEnabled: true},
			{ConversationID: conv.ID, UserID: otherUserID, JoinedAt: now, GiftSoundsEnabled: true},
		}
		return tx.Create(&participants).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &conv, created, nil
}

func (r *conversationRepository) FindByID(id uint64) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.Where("id = ?", id).First(&conv).Error
	return &conv, err
}

func (r *conversationRepository) FindWithParticipants(id uint64) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.Preload("Participants").Preload("Participants.User").
		Where("id = ?", id).First(&conv).Error
	return &conv, err
}

// FindActiveParticipant returns the caller's active membership row, or
// gorm.ErrRecordNotFound when the user left or the conversation is gone
func (r *conversationRepository) FindActiveParticipant(conversationID, userID uint64) (*domain.Participant, error) {
	var p domain.Participant
	err := r.db.
		Joins("JOIN conversations ON conversations.id = participants.conversation_id AND conversations.deleted_at IS NULL").
		Where("participants.conversation_id = ? AND participants.user_id = ? AND participants.left_at IS NULL",
			conversationID, userID).
		First(&p).Error
	return &p, err
}

func (r *conversationRepository) ActiveParticipants(conversationID uint64) ([]*domain.Participant, error) {
	var participants []*domain.Participant
	err := r.db.Preload("User").
		Where("conversation_id = ? AND left_at IS NULL", conversationID).
		Order("joined_at ASC").
		Find(&participants).Error
	return participants, err
}

// listQuery builds the base query for conversations visible to a user.
// The peer/group joins are only added when searching, since they can
// duplicate rows for group conversations (hence DISTINCT).
func (r *conversationRepository) listQuery(userID uint64, search string) *gorm.DB {
	q := r.db.Table("conversations AS c").
		Joins("JOIN participants AS p ON p.conversation_id = c.id AND p.user_id = ? AND p.left_at IS NULL", userID).
		Where("c.deleted_at IS NULL")

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.
			Joins("LEFT JOIN participants AS peer ON peer.conversation_id = c.id AND peer.user_id <> ?", userID).
			Joins("LEFT JOIN users AS pu ON pu.id = peer.user_id").
			Joins("LEFT JOIN chat_groups AS g ON g.id = c.group_id").
			Where("LOWER(pu.nickname) LIKE ? OR LOWER(g.name) LIKE ?", pattern, pattern)
	}
	return q
}

func (r *conversationRepository) ListForUser(userID uint64, offset, limit int, search string, kind domain.ConversationKind) ([]*domain.Conversation, int64, error) {
	withKind := func(q *gorm.DB) *gorm.DB {
		if kind != "" {
			q = q.Where("c.kind = ?", kind)
		}
		return q
	}

	var total int64
	if err := withKind(r.listQuery(userID, search)).Distinct("c.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var conversations []*domain.Conversation
	err := withKind(r.listQuery(userID, search)).
		Select("DISTINCT c.*").
		Order("c.updated_at DESC").
		Offset(offset).Limit(limit).
		Find(&conversations).Error
	if err != nil {
		return nil, 0, err
	}
	return conversations, total, nil
}

func (r *conversationRepository) RecentForUser(userID uint64, limit int) ([]*domain.Conversation, error) {
	var conversations []*domain.Conversation
	err := r.listQuery(userID, "").
		Select("c.*").
		Order("c.updated_at DESC").
		Limit(limit).
		Find(&conversations).Error
	return conversations, err
}

func (r *conversationRepository) SoftDelete(id uint64) error {
	result := r.db.Where("id = ?", id).Delete(&domain.Conversation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Leave marks the user's participant row as left (soft leave)
func (r *conversationRepository) Leave(conversationID, userID uint64) error {
	result := r.db.Model(&domain.Participant{}).
		Where("conversation_id = ? AND user_id = ? AND left_at IS NULL", conversationID, userID).
		Update("left_at", time.Now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Rejoin clears a previously-set left_at so a returning user can use the
// deduplicated direct conversation again
func (r *conversationRepository) Rejoin(conversationID, userID uint64) error {
	return r.db.Model(&domain.Participant{}).
		Where("conversation_id = ? AND user_id = ? AND left_at IS NOT NULL", conversationID, userID).
		Update("left_at", nil).Error
}

func (r *conversationRepository) UpdateParticipant(conversationID, userID uint64, updates map[string]interface{}) error {
	result := r.db.Model(&domain.Participant{}).
		Where("conversation_id = ? AND user_id = ? AND left_at IS NULL", conversationID, userID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *conversationRepository) CountByKind(userID uint64) (*domain.CategoryCounts, error) {
	counts := &domain.CategoryCounts{}

	if err := r.listQuery(userID, "").Where("c.kind = ?", domain.KindDirect).
		Distinct("c.id").Count(&counts.Direct).Error; err != nil {
		return nil, err
	}
	if err := r.listQuery(userID, "").Where("c.kind = ?", domain.KindGroup).
		Distinct("c.id").Count(&counts.Group).Error; err != nil {
		return nil, err
	}
	counts.All = counts.Direct + counts.Group
	return counts, nil
}

// TouchActivity bumps the conversation's activity timestamp so it sorts
// to the top of lists
func (r *conversationRepository) TouchActivity(id uint64) error {
	return r.db.Model(&domain.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", time.Now()).Error
}

func (r *conversationRepository) FindGroup(id uint64) (*domain.Group, error) {
	var group domain.Group
	err := r.db.Where("id = ?", id).First(&group).Error
	return &group, err
}
