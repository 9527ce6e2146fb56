package service

import (
	"github.com/mingle/mingle-backend/internal/domain"
	"github.com/mingle/mingle-backend/internal/repository"
)

// Recommender supplies new-contact candidates used to pad the suggestion
// list when a user has few recent conversation partners
type Recommender interface {
	Recommend(userID uint64, excludeIDs []uint64, limit int) ([]*domain.User, error)
}

type dbRecommender struct {
	users repository.UserRepository
}

// NewRecommender creates the database-backed Recommender
func NewRecommender(users repository.UserRepository) Recommender {
	return &dbRecommender{users: users}
}

func (r *dbRecommender) Recommend(userID uint64, excludeIDs []uint64, limit int) ([]*domain.User, error) {
	if limit <= 0 {
		return nil, nil
	}
	return r.users.Recommend(userID, excludeIDs, limit)
}
