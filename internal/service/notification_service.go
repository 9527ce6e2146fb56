package service

import (
	"github.com/mingle/mingle-backend/internal/domain"
	"github.com/mingle/mingle-backend/internal/repository"
)

// NotificationService unread notification summary
type NotificationService interface {
	UnreadSummary(userID uint64) (*domain.NotificationSummaryResponse, error)
}

type notificationService struct {
	notifications repository.NotificationRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifications repository.NotificationRepository) NotificationService {
	return &notificationService{notifications: notifications}
}

func (s *notificationService) UnreadSummary(userID uint64) (*domain.NotificationSummaryResponse, error) {
	count, err := s.notifications.UnreadCount(userID)
	if err != nil {
		return nil, err
	}
	return &domain.NotificationSummaryResponse{TotalUnread: count}, nil
}
