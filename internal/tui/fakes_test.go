package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/instalike/internal/domain"
	"github.com/mmcdole/instalike/internal/service"
	"github.com/mmcdole/instalike/internal/session"
	"github.com/mmcdole/instalike/internal/store"
	"github.com/stretchr/testify/require"
)

// fakeAPI serves every repository from memory
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	me            domain.User
	feed          map[string]domain.Page[domain.Post]
	notifications []domain.Notification
	users         []domain.User
	comments      []domain.Comment
	err           error
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

func (f *fakeAPI) Login(context.Context, domain.Credentials) (*domain.AuthJWT, error) {
	f.record("login")
	return &domain.AuthJWT{AccessToken: "token"}, f.err
}

func (f *fakeAPI) Logout(context.Context) error {
	f.record("logout")
	return nil
}

func (f *fakeAPI) GetMe(context.Context) (*domain.User, error) {
	me := f.me
	return &me, nil
}

func (f *fakeAPI) GetUser(_ context.Context, userID int64) (*domain.User, error) {
	f.record("getUser")
	if userID == domain.Me || userID == f.me.ID {
		me := f.me
		return &me, nil
	}
	for _, u := range f.users {
		if u.ID == userID {
			return &u, nil
		}
	}
	return nil, domain.NewAPIError(404, "user not found", nil)
}

func (f *fakeAPI) UpdateMe(context.Context, domain.ProfileUpdate) (*domain.User, error) {
	me := f.me
	return &me, nil
}

func (f *fakeAPI) UpdatePassword(context.Context, domain.PasswordChange) error { return nil }

func (f *fakeAPI) DeleteAvatar(context.Context) (*domain.User, error) {
	me := f.me
	return &me, nil
}

func (f *fakeAPI) GetFollowers(context.Context, int64) ([]domain.User, error) {
	f.record("followers")
	return f.users, f.err
}

func (f *fakeAPI) GetFollowing(context.Context, int64) ([]domain.User, error) {
	f.record("following")
	return f.users, f.err
}

func (f *fakeAPI) GetFollowSuggestions(context.Context) ([]domain.User, error) {
	f.record("suggestions")
	return f.users, f.err
}

func (f *fakeAPI) Follow(context.Context, int64) error {
	f.record("follow")
	return f.err
}

func (f *fakeAPI) Unfollow(context.Context, int64) error {
	f.record("unfollow")
	return f.err
}

func (f *fakeAPI) GetFeed(_ context.Context, cursor string) (domain.Page[domain.Post], error) {
	f.record("feed:" + cursor)
	return f.feed[cursor], f.err
}

func (f *fakeAPI) GetUserPosts(_ context.Context, _ int64, cursor string) (domain.Page[domain.Post], error) {
	f.record("userPosts:" + cursor)
	return f.feed[cursor], f.err
}

func (f *fakeAPI) GetPost(_ context.Context, postID int64) (*domain.Post, error) {
	f.record("getPost")
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Post{ID: postID, Owner: f.me, CommentsCount: len(f.comments)}, nil
}

func (f *fakeAPI) UpdatePost(_ context.Context, postID int64, update domain.PostUpdate) (*domain.Post, error) {
	return &domain.Post{ID: postID, Caption: update.Caption}, f.err
}

func (f *fakeAPI) DeletePost(context.Context, int64) error {
	f.record("deletePost")
	return f.err
}

func (f *fakeAPI) Like(context.Context, int64) error {
	f.record("like")
	return f.err
}

func (f *fakeAPI) Unlike(context.Context, int64) error {
	f.record("unlike")
	return f.err
}

func (f *fakeAPI) GetComments(context.Context, int64) ([]domain.Comment, error) {
	f.record("comments")
	return f.comments, f.err
}

func (f *fakeAPI) AddComment(_ context.Context, _ int64, text string) (*domain.Comment, error) {
	f.record("addComment")
	return &domain.Comment{ID: 99, Owner: f.me, Text: text}, f.err
}

func (f *fakeAPI) EditComment(_ context.Context, _, commentID int64, text string) (*domain.Comment, error) {
	return &domain.Comment{ID: commentID, Owner: f.me, Text: text}, f.err
}

func (f *fakeAPI) DeleteComment(context.Context, int64, int64) error {
	f.record("deleteComment")
	return f.err
}

func (f *fakeAPI) GetNotifications(context.Context, string) (domain.Page[domain.Notification], error) {
	f.record("notifications")
	return domain.Page[domain.Notification]{Items: f.notifications}, f.err
}

func (f *fakeAPI) MarkRead(context.Context, int64) error {
	f.record("markRead")
	return f.err
}

func (f *fakeAPI) MarkUnread(context.Context, int64) error {
	f.record("markUnread")
	return f.err
}

func (f *fakeAPI) DeleteNotification(context.Context, int64) error {
	f.record("deleteNotification")
	return f.err
}

// newTestServices wires the real services over api. The returned session
// starts logged out.
func newTestServices(t *testing.T, api *fakeAPI) (*Services, *session.Session) {
	t.Helper()
	st, err := store.NewSessionStore("", "")
	require.NoError(t, err)
	sess := session.New(st, nil)

	return &Services{
		Session:       service.NewSessionService(api, api, api, sess, nil),
		Feed:          service.NewFeedService(api, api, nil),
		Posts:         service.NewPostService(api, nil),
		Notifications: service.NewNotificationService(api, sess, nil),
		Users:         service.NewUserService(api, sess, nil),
		Timeout:       time.Second,
		DefaultScreen: "feed",
	}, sess
}

// run executes cmd and every command batched inside it, returning the
// produced messages. Ticks are skipped.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(200 * time.Millisecond):
		return nil
	}

	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func postIDs(posts []domain.Post) []int64 {
	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func pageOf(cursor string, more bool, ids ...int64) domain.Page[domain.Post] {
	items := make([]domain.Post, len(ids))
	for i, id := range ids {
		items[i] = domain.Post{ID: id, Owner: domain.User{ID: 7, UserName: "amy"}}
	}
	return domain.Page[domain.Post]{Items: items, NextCursor: domain.StringPtr(cursor), HasMorePages: more}
}
