// Package session owns the client's login state: the persisted access
// token, the logged user's profile and the unread notification badge.
//
// A Session is created once at startup from the persistent store and passed
// explicitly to the request gateway and the views; nothing reads the token
// from ambient global state.
package session

import (
	"log/slog"
	"sync"

	"github.com/mmcdole/instalike/internal/domain"
)

// Session is the explicit session context of one running client
type Session struct {
	store  domain.Store
	logger *slog.Logger

	mu       sync.RWMutex
	previous string // token this one was refreshed from
	user     *domain.User
	unread   int
}

// New restores a session from the store. A persisted token means the
// client starts logged in.
func New(store domain.Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{store: store, logger: logger}
	if user, ok := store.GetProfile(); ok {
		s.user = user
	}
	if count, ok := store.GetUnreadCount(); ok {
		s.unread = count
	}
	return s
}

// Token returns the active access token
func (s *Session) Token() (string, bool) {
	return s.store.Token()
}

// IsLoggedIn reports whether an access token is persisted
func (s *Session) IsLoggedIn() bool {
	_, ok := s.store.Token()
	return ok
}

// Begin starts a session with the token returned by a successful login
func (s *Session) Begin(token string) error {
	s.mu.Lock()
	s.previous = ""
	s.mu.Unlock()

	if err := s.store.SaveToken(token); err != nil {
		return err
	}
	s.logger.Info("session started")
	return nil
}

// Replace swaps in a refreshed token, remembering the one it replaced
func (s *Session) Replace(token string) error {
	old, _ := s.store.Token()
	if err := s.store.SaveToken(token); err != nil {
		return err
	}

	s.mu.Lock()
	s.previous = old
	s.mu.Unlock()

	s.logger.Info("session token refreshed")
	return nil
}

// Invalidate drops the token after an irrecoverable refresh failure.
// The cached profile stays so the login screen can prefill it.
func (s *Session) Invalidate() error {
	s.mu.Lock()
	s.previous = ""
	s.mu.Unlock()

	s.logger.Warn("session invalidated")
	return s.store.ClearToken()
}

// End tears the session down on logout
func (s *Session) End() {
	s.mu.Lock()
	s.previous = ""
	s.user = nil
	s.unread = 0
	s.mu.Unlock()

	s.store.InvalidateAll()
	s.logger.Info("session ended")
}

// RefreshedFrom returns the token the active one replaced, if any
func (s *Session) RefreshedFrom() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.previous
}

// User returns the logged user's profile, if loaded
func (s *Session) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// SetUser records the logged user's profile
func (s *Session) SetUser(user *domain.User) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	if err := s.store.SaveProfile(user); err != nil {
		s.logger.Error("failed to save profile", "error", err)
	}
}

// UnreadCount returns the notification badge value
func (s *Session) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

// SetUnreadCount updates the notification badge value
func (s *Session) SetUnreadCount(count int) {
	s.mu.Lock()
	s.unread = count
	s.mu.Unlock()

	if err := s.store.SaveUnreadCount(count); err != nil {
		s.logger.Error("failed to save unread count", "error", err)
	}
}
