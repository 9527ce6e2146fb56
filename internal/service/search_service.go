package service

import (
	"context"
	"strconv"

	"github.com/mingle/mingle-backend/internal/domain"
	"github.com/mingle/mingle-backend/internal/repository"
	"github.com/mingle/mingle-backend/pkg/elasticsearch"
	"github.com/mingle/mingle-backend/pkg/logger"
)

// UserSearcher finds users by nickname for the contact search endpoint
type UserSearcher interface {
	SearchUsers(ctx context.Context, query string, offset, limit int) ([]*domain.User, int64, error)
}

// esUserSearcher searches the user index in Elasticsearch, falling back
// to a database LIKE scan when the cluster call fails
type esUserSearcher struct {
	es    *elasticsearch.Client
	index string
	users repository.UserRepository
}

// NewUserSearcher creates the Elasticsearch-backed UserSearcher. Pass a
// nil client to always use the database fallback.
func NewUserSearcher(es *elasticsearch.Client, index string, users repository.UserRepository) UserSearcher {
	return &esUserSearcher{es: es, index: index, users: users}
}

func (s *esUserSearcher) SearchUsers(ctx context.Context, query string, offset, limit int) ([]*domain.User, int64, error) {
	if s.es == nil {
		return s.users.Search(query, offset, limit)
	}

	esQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"nickname": map[string]interface{}{
					"query":     query,
					"fuzziness": "AUTO",
				},
			},
		},
	}

	resp, err := s.es.Search(ctx, s.index, esQuery, offset, limit)
	if err != nil {
		logger.GetLogger().Warn().Err(err).
			Str("query", query).
			Msg("user search fell back to database")
		return s.users.Search(query, offset, limit)
	}

	ids := make([]uint64, 0, len(resp.Results))
	for _, hit := range resp.Results {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	byID, err := s.users.FindByIDs(ids)
	if err != nil {
		return nil, 0, err
	}

	// Preserve relevance order from the search results
	users := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			users = append(users, u)
		}
	}
	return users, resp.Total, nil
}
