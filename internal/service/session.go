package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcdole/instalike/internal/domain"
	"github.com/mmcdole/instalike/internal/session"
	"golang.org/x/sync/errgroup"
)

// SessionService manages login, logout and the logged user's profile
type SessionService struct {
	auth          domain.AuthRepository
	users         domain.UserRepository
	notifications domain.NotificationRepository
	session       *session.Session
	logger        *slog.Logger
}

// NewSessionService creates a new SessionService
func NewSessionService(
	auth domain.AuthRepository,
	users domain.UserRepository,
	notifications domain.NotificationRepository,
	sess *session.Session,
	logger *slog.Logger,
) *SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		auth:          auth,
		users:         users,
		notifications: notifications,
		session:       sess,
		logger:        logger,
	}
}

// Login validates the credentials locally, exchanges them for a token and
// then loads the user and the unread notification count in parallel.
func (s *SessionService) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	if err := validateCredentials(creds); err != nil {
		return nil, err
	}

	jwt, err := s.auth.Login(ctx, creds)
	if err != nil {
		if s.session.IsLoggedIn() {
			s.session.Invalidate()
		}
		return nil, err
	}
	if err := s.session.Begin(jwt.AccessToken); err != nil {
		return nil, fmt.Errorf("failed to persist token: %w", err)
	}

	if err := s.loadAccount(ctx); err != nil {
		return nil, err
	}
	return s.session.User(), nil
}

// Restore refreshes the profile of a session persisted by a previous run
func (s *SessionService) Restore(ctx context.Context) (*domain.User, error) {
	if !s.session.IsLoggedIn() {
		return nil, domain.ErrNotLoggedIn
	}
	if err := s.loadAccount(ctx); err != nil {
		return nil, err
	}
	return s.session.User(), nil
}

func (s *SessionService) loadAccount(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		me, err := s.users.GetMe(ctx)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		s.session.SetUser(me)
		return nil
	})

	g.Go(func() error {
		page, err := s.notifications.GetNotifications(ctx, "")
		if err != nil {
			// Badge failures do not abort the login
			s.logger.Warn("failed to load notification count", "error", err)
			return nil
		}
		s.session.SetUnreadCount(domain.CountUnread(page.Items))
		return nil
	})

	return g.Wait()
}

// Logout revokes the token server-side, then clears the local session.
// The local session is cleared even when the server call fails.
func (s *SessionService) Logout(ctx context.Context) error {
	var err error
	if s.session.IsLoggedIn() {
		err = s.auth.Logout(ctx)
		if err != nil {
			s.logger.Warn("server logout failed", "error", err)
		}
	}
	s.session.End()
	return err
}

// CurrentUser returns the logged user, if loaded
func (s *SessionService) CurrentUser() *domain.User {
	return s.session.User()
}

// IsLoggedIn reports whether a token is persisted
func (s *SessionService) IsLoggedIn() bool {
	return s.session.IsLoggedIn()
}

// UnreadCount returns the notification badge value
func (s *SessionService) UnreadCount() int {
	return s.session.UnreadCount()
}
