package service

import (
	"context"
	"log/slog"

	"github.com/mmcdole/instalike/internal/domain"
	"github.com/mmcdole/instalike/internal/feed"
)

// FeedService exposes the paginated lists as cursor fetchers. Views feed
// the pages into a feed.Loader, so every list is accumulated by the same
// Merge routine.
type FeedService struct {
	posts         domain.PostRepository
	notifications domain.NotificationRepository
	logger        *slog.Logger
}

// NewFeedService creates a new feed service
func NewFeedService(posts domain.PostRepository, notifications domain.NotificationRepository, logger *slog.Logger) *FeedService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedService{posts: posts, notifications: notifications, logger: logger}
}

// Home returns the fetcher of the logged user's home feed
func (s *FeedService) Home() feed.FetchFunc[domain.Post] {
	return func(ctx context.Context, cursor string) (domain.Page[domain.Post], error) {
		s.logger.Debug("loading home feed", "cursor", cursor)
		return s.posts.GetFeed(ctx, cursor)
	}
}

// UserPosts returns the fetcher of a user's posts (domain.Me for the logged user)
func (s *FeedService) UserPosts(userID int64) feed.FetchFunc[domain.Post] {
	return func(ctx context.Context, cursor string) (domain.Page[domain.Post], error) {
		s.logger.Debug("loading user posts", "user", userID, "cursor", cursor)
		return s.posts.GetUserPosts(ctx, userID, cursor)
	}
}

// Notifications returns the fetcher of the logged user's notifications
func (s *FeedService) Notifications() feed.FetchFunc[domain.Notification] {
	return func(ctx context.Context, cursor string) (domain.Page[domain.Notification], error) {
		s.logger.Debug("loading notifications", "cursor", cursor)
		return s.notifications.GetNotifications(ctx, cursor)
	}
}

// CollectHome walks the home feed for at most maxPages pages (0 for all)
func (s *FeedService) CollectHome(ctx context.Context, maxPages int) (domain.Feed[domain.Post], error) {
	return feed.Collect(ctx, s.Home(), maxPages)
}

// CollectNotifications walks every notification page
func (s *FeedService) CollectNotifications(ctx context.Context) (domain.Feed[domain.Notification], error) {
	return feed.Collect(ctx, s.Notifications(), 0)
}
