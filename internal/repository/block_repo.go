package repository

import (
	"github.com/mingle/mingle-backend/internal/domain"
	"gorm.io/gorm"
)

// BlockRepository user block data access
type BlockRepository interface {
	Exists(userID, blockedUserID uint64) (bool, error)
}

type blockRepository struct {
	db *gorm.DB
}

// NewBlockRepository creates a new BlockRepository
func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepository{db: db}
}

// Exists reports whether userID has blocked blockedUserID
func (r *blockRepository) Exists(userID, blockedUserID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&domain.UserBlock{}).
		Where("user_id = ? AND blocked_user_id = ?", userID, blockedUserID).
		Count(&count).Error
	return count > 0, err
}
