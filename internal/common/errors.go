package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")

	// Conversation errors
	ErrSelfConversation         = errors.New("cannot start a conversation with yourself")
	ErrGroupCreationUnsupported = errors.New("group conversation creation is not supported yet")
)
