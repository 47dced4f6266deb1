package domain

import (
	"context"
)

// AuthRepository covers the /auth endpoints
type AuthRepository interface {
	// Login exchanges credentials for an access token
	Login(ctx context.Context, creds Credentials) (*AuthJWT, error)

	// Logout revokes the current access token server-side
	Logout(ctx context.Context) error
}

// UserRepository covers account, profile and follow endpoints
type UserRepository interface {
	GetMe(ctx context.Context) (*User, error)
	GetUser(ctx context.Context, userID int64) (*User, error)
	UpdateMe(ctx context.Context, update ProfileUpdate) (*User, error)
	UpdatePassword(ctx context.Context, change PasswordChange) error
	DeleteAvatar(ctx context.Context) (*User, error)

	GetFollowers(ctx context.Context, userID int64) ([]User, error)
	GetFollowing(ctx context.Context, userID int64) ([]User, error)
	GetFollowSuggestions(ctx context.Context) ([]User, error)
	Follow(ctx context.Context, userID int64) error
	Unfollow(ctx context.Context, userID int64) error
}

// PostRepository covers feeds, posts, likes and comments.
// Paged methods take an opaque cursor; "" requests the first page.
type PostRepository interface {
	GetFeed(ctx context.Context, cursor string) (Page[Post], error)
	GetUserPosts(ctx context.Context, userID int64, cursor string) (Page[Post], error)

	GetPost(ctx context.Context, postID int64) (*Post, error)
	UpdatePost(ctx context.Context, postID int64, update PostUpdate) (*Post, error)
	DeletePost(ctx context.Context, postID int64) error
	Like(ctx context.Context, postID int64) error
	Unlike(ctx context.Context, postID int64) error

	GetComments(ctx context.Context, postID int64) ([]Comment, error)
	AddComment(ctx context.Context, postID int64, text string) (*Comment, error)
	EditComment(ctx context.Context, postID, commentID int64, text string) (*Comment, error)
	DeleteComment(ctx context.Context, postID, commentID int64) error
}

// NotificationRepository covers the logged user's notifications
type NotificationRepository interface {
	GetNotifications(ctx context.Context, cursor string) (Page[Notification], error)
	MarkRead(ctx context.Context, notificationID int64) error
	MarkUnread(ctx context.Context, notificationID int64) error
	DeleteNotification(ctx context.Context, notificationID int64) error
}

// Me is the userID value that addresses the logged user in /users/{id} routes
const Me int64 = 0
