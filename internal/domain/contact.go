package domain

import "github.com/mingle/mingle-backend/internal/common"

// Suggestion sources
const (
	SuggestionSourceRecent      = "recent"
	SuggestionSourceRecommended = "recommended"
)

// ContactSuggestion a ranked candidate for starting a new conversation,
// blended from recent contacts and the recommendation engine
type ContactSuggestion struct {
	User           UserSummary `json:"user"`
	Preview        string      `json:"preview"`
	ConversationID *uint64     `json:"conversation_id,omitempty"`
	Source         string      `json:"source"`
}

// ContactSearchResult the contact search page: the suggestion list is
// always included, the user page is empty for an empty query
type ContactSearchResult struct {
	Suggestions []*ContactSuggestion `json:"suggestions"`
	Users       *common.Paginated    `json:"users"`
}
