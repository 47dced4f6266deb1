package service

import (
	"context"
	"sync"
	"testing"

	"github.com/mmcdole/instalike/internal/domain"
	"github.com/mmcdole/instalike/internal/session"
	"github.com/mmcdole/instalike/internal/store"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-memory implementation of every repository
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	token     string
	loginErr  error
	logoutErr error

	me            domain.User
	meErr         error
	notifications []domain.Notification
	notifErr      error
	suggestions   []domain.User
	feed          map[string]domain.Page[domain.Post]
	actionErr     error
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) Login(_ context.Context, creds domain.Credentials) (*domain.AuthJWT, error) {
	f.record("login")
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &domain.AuthJWT{AccessToken: f.token}, nil
}

func (f *fakeAPI) Logout(context.Context) error {
	f.record("logout")
	return f.logoutErr
}

func (f *fakeAPI) GetMe(ctx context.Context) (*domain.User, error) {
	return f.GetUser(ctx, domain.Me)
}

func (f *fakeAPI) GetUser(_ context.Context, userID int64) (*domain.User, error) {
	f.record("getUser")
	if f.meErr != nil {
		return nil, f.meErr
	}
	me := f.me
	return &me, nil
}

func (f *fakeAPI) UpdateMe(_ context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	f.record("updateMe")
	if f.actionErr != nil {
		return nil, f.actionErr
	}
	me := f.me
	me.UserName = update.UserName
	return &me, nil
}

func (f *fakeAPI) UpdatePassword(context.Context, domain.PasswordChange) error {
	f.record("updatePassword")
	return f.actionErr
}

func (f *fakeAPI) DeleteAvatar(context.Context) (*domain.User, error) {
	f.record("deleteAvatar")
	me := f.me
	me.Avatar = nil
	return &me, f.actionErr
}

func (f *fakeAPI) GetFollowers(context.Context, int64) ([]domain.User, error) {
	f.record("followers")
	return nil, nil
}

func (f *fakeAPI) GetFollowing(context.Context, int64) ([]domain.User, error) {
	f.record("following")
	return nil, nil
}

func (f *fakeAPI) GetFollowSuggestions(context.Context) ([]domain.User, error) {
	f.record("suggestions")
	return f.suggestions, nil
}

func (f *fakeAPI) Follow(context.Context, int64) error {
	f.record("follow")
	return f.actionErr
}

func (f *fakeAPI) Unfollow(context.Context, int64) error {
	f.record("unfollow")
	return f.actionErr
}

func (f *fakeAPI) GetFeed(_ context.Context, cursor string) (domain.Page[domain.Post], error) {
	f.record("feed:" + cursor)
	return f.feed[cursor], nil
}

func (f *fakeAPI) GetUserPosts(_ context.Context, _ int64, cursor string) (domain.Page[domain.Post], error) {
	f.record("userPosts:" + cursor)
	return f.feed[cursor], nil
}

func (f *fakeAPI) GetPost(_ context.Context, postID int64) (*domain.Post, error) {
	f.record("getPost")
	return &domain.Post{ID: postID}, f.actionErr
}

func (f *fakeAPI) UpdatePost(_ context.Context, postID int64, update domain.PostUpdate) (*domain.Post, error) {
	f.record("updatePost")
	return &domain.Post{ID: postID, Caption: update.Caption}, f.actionErr
}

func (f *fakeAPI) DeletePost(context.Context, int64) error {
	f.record("deletePost")
	return f.actionErr
}

func (f *fakeAPI) Like(context.Context, int64) error {
	f.record("like")
	return f.actionErr
}

func (f *fakeAPI) Unlike(context.Context, int64) error {
	f.record("unlike")
	return f.actionErr
}

func (f *fakeAPI) GetComments(context.Context, int64) ([]domain.Comment, error) {
	f.record("comments")
	return nil, f.actionErr
}

func (f *fakeAPI) AddComment(_ context.Context, _ int64, text string) (*domain.Comment, error) {
	f.record("addComment")
	return &domain.Comment{ID: 1, Text: text}, f.actionErr
}

func (f *fakeAPI) EditComment(_ context.Context, _, commentID int64, text string) (*domain.Comment, error) {
	f.record("editComment")
	return &domain.Comment{ID: commentID, Text: text}, f.actionErr
}

func (f *fakeAPI) DeleteComment(context.Context, int64, int64) error {
	f.record("deleteComment")
	return f.actionErr
}

func (f *fakeAPI) GetNotifications(context.Context, string) (domain.Page[domain.Notification], error) {
	f.record("notifications")
	if f.notifErr != nil {
		return domain.Page[domain.Notification]{}, f.notifErr
	}
	return domain.Page[domain.Notification]{Items: f.notifications}, nil
}

func (f *fakeAPI) MarkRead(context.Context, int64) error {
	f.record("markRead")
	return f.actionErr
}

func (f *fakeAPI) MarkUnread(context.Context, int64) error {
	f.record("markUnread")
	return f.actionErr
}

func (f *fakeAPI) DeleteNotification(context.Context, int64) error {
	f.record("deleteNotification")
	return f.actionErr
}

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	st, err := store.NewSessionStore("", "")
	require.NoError(t, err)
	return session.New(st, nil)
}
