package repository

import (
	"github.com/mingle/mingle-backend/internal/domain"
	"gorm.io/gorm"
)

// GiftRepository gift record data access
type GiftRepository interface {
	Create(gift *domain.Gift) error
	FindByID(id uint64) (*domain.Gift, error)
	FindByIDs(ids []uint64) (map[uint64]*domain.Gift, error)
}

type giftRepository struct {
	db *gorm.DB
}

// NewGiftRepository creates a new GiftRepository
func NewGiftRepository(db *gorm.DB) GiftRepository {
	return &giftRepository{db: db}
}

func (r *giftRepository) Create(gift *domain.Gift) error {
	return r.db.Create(gift).Error
}

func (r *giftRepository) FindByID(id uint64) (*domain.Gift, error) {
	var gift domain.Gift
	err := r.db.Where("id = ?", id).First(&gift).Error
	return &gift, err
}

func (r *giftRepository) FindByIDs(ids []uint64) (map[uint64]*domain.Gift, error) {
	result := make(map[uint64]*domain.Gift, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var gifts []*domain.Gift
	if err := r.db.Where("id IN ?", ids).Find(&gifts).Error; err != nil {
		return nil, err
	}
	for _, g := range gifts {
		result[g.ID] = g
	}
	return result, nil
}
