package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/instalike/internal/domain"
	"github.com/mmcdole/instalike/internal/session"
)

// UserService handles profiles, follows and account settings
type UserService struct {
	repo    domain.UserRepository
	session *session.Session
	logger  *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(repo domain.UserRepository, sess *session.Session, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{repo: repo, session: sess, logger: logger}
}

// GetUser returns a profile; domain.Me returns the logged user
func (s *UserService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if userID == domain.Me {
		s.session.SetUser(user)
	}
	return user, nil
}

// Followers lists the users following userID
func (s *UserService) Followers(ctx context.Context, userID int64) ([]domain.User, error) {
	return s.repo.GetFollowers(ctx, userID)
}

// Following lists the users userID follows
func (s *UserService) Following(ctx context.Context, userID int64) ([]domain.User, error) {
	return s.repo.GetFollowing(ctx, userID)
}

// Suggestions lists accounts the logged user may want to follow
func (s *UserService) Suggestions(ctx context.Context) ([]domain.User, error) {
	return s.repo.GetFollowSuggestions(ctx)
}

// ToggleFollow follows the user if the viewer does not, and unfollows
// otherwise. It returns the user as it should now be displayed.
func (s *UserService) ToggleFollow(ctx context.Context, user domain.User) (domain.User, error) {
	if user.IsFollowedByViewer {
		if err := s.repo.Unfollow(ctx, user.ID); err != nil {
			return user, err
		}
		user.IsFollowedByViewer = false
		if user.FollowersCount > 0 {
			user.FollowersCount--
		}
		return user, nil
	}

	if err := s.repo.Follow(ctx, user.ID); err != nil {
		return user, err
	}
	user.IsFollowedByViewer = true
	user.FollowersCount++
	return user, nil
}

// UpdateProfile saves the logged user's details. A 422 carries the field
// messages, see domain.ValidationSummary.
func (s *UserService) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	user, err := s.repo.UpdateMe(ctx, update)
	if err != nil {
		return nil, err
	}
	s.session.SetUser(user)
	return user, nil
}

// ChangePassword updates the logged user's password
func (s *UserService) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, domain.PasswordChange{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	})
}

// DeleteAvatar removes the logged user's avatar
func (s *UserService) DeleteAvatar(ctx context.Context) (*domain.User, error) {
	if me := s.session.User(); me != nil && !me.HasAvatar() {
		return nil, fmt.Errorf("%w: cannot delete your avatar, you don't have one", domain.ErrValidation)
	}
	user, err := s.repo.DeleteAvatar(ctx)
	if err != nil {
		return nil, err
	}
	s.session.SetUser(user)
	return user, nil
}

// RankUsers returns the indexes of the users matching query, best match first
func RankUsers(users []domain.User, query string) []int {
	query = strings.TrimSpace(query)

	targets := make([]string, len(users))
	for i, u := range users {
		targets[i] = u.FilterText()
	}

	matches := fuzzy.RankFindFold(query, targets)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	idx := make([]int, len(matches))
	for i, m := range matches {
		idx[i] = m.OriginalIndex
	}
	return idx
}
