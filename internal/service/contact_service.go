package service

import (
	"context"
	"errors"

	"github.com/mingle/mingle-backend/internal/common"
	"github.com/mingle/mingle-backend/internal/domain"
	"github.com/mingle/mingle-backend/internal/repository"
	"gorm.io/gorm"
)

// Preview text attached to recommendation-sourced suggestions
const recommendedPreview = "Recommended for you"

// ContactService contact suggestions and user search
type ContactService interface {
	Suggestions(userID uint64, limit int) ([]*domain.ContactSuggestion, error)
	Search(ctx context.Context, userID uint64, query string, page, limit, suggestionLimit int) (*domain.ContactSearchResult, error)
}

type contactService struct {
	conversations repository.ConversationRepository
	messages      repository.MessageRepository
	users         repository.UserRepository
	recommender   Recommender
	searcher      UserSearcher
}

// NewContactService creates a new ContactService
func NewContactService(
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	users repository.UserRepository,
	recommender Recommender,
	searcher UserSearcher,
) ContactService {
	return &contactService{
		conversations: conversations,
		messages:      messages,
		users:         users,
		recommender:   recommender,
		searcher:      searcher,
	}
}

// Suggestions blends recent direct conversation partners with
// recommendation candidates into a single ranked list. Recent partners
// come first, ordered by conversation activity; recommendations fill the
// remaining slots. Each user appears at most once.
func (s *contactService) Suggestions(userID uint64, limit int) ([]*domain.ContactSuggestion, error) {
	if limit <= 0 {
		return []*domain.ContactSuggestion{}, nil
	}
	if limit > 20 {
		limit = 20
	}

	// Overfetch: group conversations and repeat partners get skipped
	recent, err := s.conversations.RecentForUser(userID, limit*2)
	if err != nil {
		return nil, err
	}

	suggestions := make([]*domain.ContactSuggestion, 0, limit)
	seen := map[uint64]bool{userID: true}

	for _, conv := range recent {
		if len(suggestions) == limit {
			break
		}
		if conv.Kind != domain.KindDirect {
			continue
		}

		full, err := s.conversations.FindWithParticipants(conv.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}

		var peerID uint64
		for _, p := range full.Participants {
			if p.UserID != userID {
				peerID = p.UserID
				break
			}
		}
		if peerID == 0 || seen[peerID] {
			continue
		}

		peer, err := s.users.FindByID(peerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		seen[peerID] = true

		// A conversation with no messages yet falls back to the peer's bio
		preview := peer.Bio
		if last, err := s.messages.LastInConversation(conv.ID); err != nil {
			return nil, err
		} else if last != nil {
			preview = last.PreviewText()
		}

		conversationID := conv.ID
		suggestions = append(suggestions, &domain.ContactSuggestion{
			User:           peer.ToSummary(),
			Preview:        preview,
			ConversationID: &conversationID,
			Source:         domain.SuggestionSourceRecent,
		})
	}

	if remaining := limit - len(suggestions); remaining > 0 {
		exclude := make([]uint64, 0, len(seen))
		for id := range seen {
			exclude = append(exclude, id)
		}

		recommended, err := s.recommender.Recommend(userID, exclude, remaining)
		if err != nil {
			return nil, err
		}
		for _, user := range recommended {
			suggestions = append(suggestions, &domain.ContactSuggestion{
				User:    user.ToSummary(),
				Preview: recommendedPreview,
				Source:  domain.SuggestionSourceRecommended,
			})
		}
	}
	return suggestions, nil
}

// Search finds users by nickname, excluding the caller from results. The
// suggestion list rides along so the client can render it above the
// results; an empty query yields an empty page rather than an error.
func (s *contactService) Search(ctx context.Context, userID uint64, query string, page, limit, suggestionLimit int) (*domain.ContactSearchResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	suggestions, err := s.Suggestions(userID, suggestionLimit)
	if err != nil {
		return nil, err
	}

	if query == "" {
		return &domain.ContactSearchResult{
			Suggestions: suggestions,
			Users:       common.NewPaginated([]domain.UserSummary{}, 0, page, limit, 0),
		}, nil
	}

	users, total, err := s.searcher.SearchUsers(ctx, query, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	items := make([]domain.UserSummary, 0, len(users))
	for _, u := range users {
		if u.ID == userID {
			continue
		}
		items = append(items, u.ToSummary())
	}
	return &domain.ContactSearchResult{
		Suggestions: suggestions,
		Users:       common.NewPaginated(items, len(items), page, limit, total),
	}, nil
}
