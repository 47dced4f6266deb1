package service

import (
	"context"
	"log/slog"

	"github.com/mmcdole/instalike/internal/domain"
	"github.com/mmcdole/instalike/internal/session"
)

// NotificationService handles notification actions and keeps the unread
// badge of the session in step with them
type NotificationService struct {
	repo    domain.NotificationRepository
	session *session.Session
	logger  *slog.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo domain.NotificationRepository, sess *session.Session, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{repo: repo, session: sess, logger: logger}
}

// Recount sets the badge from a freshly loaded notification list
func (s *NotificationService) Recount(notifications []domain.Notification) int {
	count := domain.CountUnread(notifications)
	s.session.SetUnreadCount(count)
	return count
}

// UnreadCount returns the badge value
func (s *NotificationService) UnreadCount() int {
	return s.session.UnreadCount()
}

// ToggleRead marks an unread notification read, and a read one unread
func (s *NotificationService) ToggleRead(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	if n.IsRead {
		if err := s.repo.MarkUnread(ctx, n.ID); err != nil {
			return n, err
		}
		n.IsRead = false
		s.adjust(1)
		return n, nil
	}

	if err := s.repo.MarkRead(ctx, n.ID); err != nil {
		return n, err
	}
	n.IsRead = true
	s.adjust(-1)
	return n, nil
}

// Delete removes a notification
func (s *NotificationService) Delete(ctx context.Context, n domain.Notification) error {
	if err := s.repo.DeleteNotification(ctx, n.ID); err != nil {
		return err
	}
	if !n.IsRead {
		s.adjust(-1)
	}
	return nil
}

func (s *NotificationService) adjust(delta int) {
	count := s.session.UnreadCount() + delta
	if count < 0 {
		count = 0
	}
	s.session.SetUnreadCount(count)
}
