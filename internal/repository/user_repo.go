package repository

import (
	"strings"

	"github.com/mingle/mingle-backend/internal/domain"
	"gorm.io/gorm"
)

// UserRepository user profile data access
type UserRepository interface {
	FindByID(id uint64) (*domain.User, error)
	FindByIDs(ids []uint64) (map[uint64]*domain.User, error)
	Search(query string, offset, limit int) ([]*domain.User, int64, error)
	Recommend(userID uint64, excludeIDs []uint64, limit int) ([]*domain.User, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(id uint64) (*domain.User, error) {
	var user domain.User
	err := r.db.Where("id = ?", id).First(&user).Error
	return &user, err
}

// FindByIDs loads users in bulk, keyed by id for cheap lookups when
// annotating messages and conversations
func (r *userRepository) FindByIDs(ids []uint64) (map[uint64]*domain.User, error) {
	result := make(map[uint64]*domain.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var users []*domain.User
	if err := r.db.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

// Recommend returns candidate users for contact suggestions, excluding
// the caller, anyone in excludeIDs and anyone the caller has blocked,
// freshest profiles first
func (r *userRepository) Recommend(userID uint64, excludeIDs []uint64, limit int) ([]*domain.User, error) {
	query := r.db.Where("id <> ?", userID).
		Where("id NOT IN (?)", r.db.Model(&domain.UserBlock{}).
			Select("blocked_user_id").Where("user_id = ?", userID))
	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}

	var users []*domain.User
	err := query.Order("updated_at DESC").Limit(limit).Find(&users).Error
	return users, err
}

// Search is the database fallback for nickname search when the search
// cluster is unavailable
func (r *userRepository) Search(query string, offset, limit int) ([]*domain.User, int64, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	base := r.db.Model(&domain.User{}).Where("LOWER(nickname) LIKE ?", pattern)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*domain.User
	err := base.
		Order("nickname ASC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}
