package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/instalike/internal/domain"
	"github.com/mmcdole/instalike/internal/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deliver(s Screen, msgs []tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	for _, msg := range msgs {
		if cmd := s.Update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

func TestHomeScreen_LoadMoreMergesPages(t *testing.T) {
	api := &fakeAPI{feed: map[string]domain.Page[domain.Post]{
		"":   pageOf("c1", true, 8, 5),
		"c1": pageOf("", false, 5, 3, 1),
	}}
	svc, _ := newTestServices(t, api)

	s := newHomeScreen(svc)
	s.SetSize(80, 40)
	deliver(s, run(s.Init()))

	assert.Equal(t, []int64{8, 5}, postIDs(s.list.Items()))
	assert.Equal(t, feed.StateLoaded, s.loader.State())

	// Jumping to the bottom asks for the next page
	cmd := s.Update(keyPress("G"))
	require.NotNil(t, cmd)
	deliver(s, run(cmd))

	assert.Equal(t, []int64{8, 5, 3, 1}, postIDs(s.list.Items()))
	assert.False(t, s.loader.HasMore())
	assert.Equal(t, []string{"feed:", "feed:c1"}, api.called())

	// Exhausted feed: no further request
	assert.Nil(t, run(s.Update(keyPress("G"))))
}

func TestHomeScreen_ErrorKeepsItemsAndShowsBanner(t *testing.T) {
	api := &fakeAPI{feed: map[string]domain.Page[domain.Post]{"": pageOf("c1", true, 2, 1)}}
	svc, _ := newTestServices(t, api)

	s := newHomeScreen(svc)
	s.SetSize(80, 40)
	deliver(s, run(s.Init()))

	api.err = domain.NewAPIError(429, "slow down", nil)
	deliver(s, run(s.Update(keyPress("G"))))

	assert.Equal(t, feed.StateError, s.loader.State())
	assert.Equal(t, []int64{2, 1}, postIDs(s.list.Items()))
	assert.Equal(t, "Error while fetching feed posts, too many requests", s.banner)
	assert.Contains(t, s.View(), "too many requests")
}

func TestHomeScreen_ClosedScreenIgnoresLateResults(t *testing.T) {
	api := &fakeAPI{feed: map[string]domain.Page[domain.Post]{"": pageOf("", false, 3)}}
	svc, _ := newTestServices(t, api)

	s := newHomeScreen(svc)
	cmd := s.Init()
	s.Close()
	deliver(s, run(cmd))

	assert.Empty(t, s.list.Items())
	assert.True(t, s.loader.Closed())
}

func TestHomeScreen_AppliesLikesAndDeletions(t *testing.T) {
	api := &fakeAPI{feed: map[string]domain.Page[domain.Post]{"": pageOf("", false, 3, 2, 1)}}
	svc, _ := newTestServices(t, api)

	s := newHomeScreen(svc)
	deliver(s, run(s.Init()))

	s.Update(PostUpdatedMsg{Post: domain.Post{ID: 2, LikesCount: 1, ViewerHasLiked: true}})
	liked, ok := feed.Find(s.loader.Feed(), 2)
	require.True(t, ok)
	assert.True(t, liked.ViewerHasLiked)

	// A post that is not in this feed is not added to it
	s.Update(PostUpdatedMsg{Post: domain.Post{ID: 42}})
	assert.Equal(t, []int64{3, 2, 1}, postIDs(s.list.Items()))

	s.Update(PostDeletedMsg{PostID: 3})
	assert.Equal(t, []int64{2, 1}, postIDs(s.list.Items()))
}

func TestHomeScreen_EnterOpensPost(t *testing.T) {
	api := &fakeAPI{feed: map[string]domain.Page[domain.Post]{"": pageOf("", false, 5)}}
	svc, _ := newTestServices(t, api)

	s := newHomeScreen(svc)
	deliver(s, run(s.Init()))

	msgs := run(s.Update(keyPress("enter")))
	require.Len(t, msgs, 1)
	opened, ok := msgs[0].(OpenScreenMsg)
	require.True(t, ok)
	assert.Equal(t, "Post by @amy", opened.Screen.Title())
}

func TestProfileScreen_LoadsHeaderAndPosts(t *testing.T) {
	api := &fakeAPI{
		users: []domain.User{{ID: 7, UserName: "amy", FollowersCount: 3}},
		feed:  map[string]domain.Page[domain.Post]{"": pageOf("", false, 4)},
	}
	svc, _ := newTestServices(t, api)

	s := newProfileScreen(svc, 7)
	s.SetSize(80, 40)
	deliver(s, run(s.Init()))

	require.NotNil(t, s.profile)
	assert.Equal(t, "@amy", s.Title())
	assert.Equal(t, []int64{4}, postIDs(s.list.Items()))
	assert.Contains(t, s.View(), "3 followers")

	s.Update(UserUpdatedMsg{User: domain.User{ID: 7, UserName: "amy", IsFollowedByViewer: true}})
	assert.True(t, s.profile.IsFollowedByViewer)
}

func TestProfileScreen_UnknownUser(t *testing.T) {
	api := &fakeAPI{feed: map[string]domain.Page[domain.Post]{}}
	svc, _ := newTestServices(t, api)

	s := newProfileScreen(svc, 404)
	deliver(s, run(s.Init()))

	assert.Equal(t, "The requested user does not exist", s.banner)
}

func TestNotificationsScreen_RecountsBadge(t *testing.T) {
	api := &fakeAPI{notifications: []domain.Notification{
		{ID: 3, Type: domain.NotificationLike},
		{ID: 2, Type: domain.NotificationFollow, IsRead: true},
		{ID: 1, Type: domain.NotificationComment},
	}}
	svc, sess := newTestServices(t, api)

	s := newNotificationsScreen(svc)
	deliver(s, run(s.Init()))

	assert.Equal(t, 2, sess.UnreadCount())
	assert.Equal(t, "Notifications (2 unread)", s.list.Title())

	// Toggling the selected (newest) notification marks it read
	deliver(s, run(s.Update(keyPress("m"))))
	assert.Equal(t, 1, sess.UnreadCount())
	assert.Equal(t, "Notifications (1 unread)", s.list.Title())

	deliver(s, run(s.Update(keyPress("x"))))
	assert.Len(t, s.list.Items(), 2)
	assert.Contains(t, api.called(), "deleteNotification")
}

func TestUsersScreen_FilterRanksUsers(t *testing.T) {
	api := &fakeAPI{users: []domain.User{
		{ID: 1, UserName: "bob"},
		{ID: 2, UserName: "alice"},
		{ID: 3, UserName: "alicia"},
	}}
	svc, _ := newTestServices(t, api)

	s := newUsersScreen(svc, usersSuggestions, domain.Me, "")
	deliver(s, run(s.Init()))
	require.Len(t, s.list.Items(), 3)

	s.list.SetFilter("alice")
	selected, ok := s.list.Selected()
	require.True(t, ok)
	assert.Equal(t, "alice", selected.UserName)

	deliver(s, run(s.Update(keyPress("f"))))
	assert.Contains(t, api.called(), "follow")
	for _, u := range s.list.Items() {
		if u.ID == 2 {
			assert.True(t, u.IsFollowedByViewer)
		}
	}
}

func TestPostScreen_CommentLifecycle(t *testing.T) {
	api := &fakeAPI{
		me:       domain.User{ID: 1, UserName: "me"},
		comments: []domain.Comment{{ID: 10, Owner: domain.User{ID: 2}, Text: "nice"}},
	}
	svc, sess := newTestServices(t, api)
	sess.SetUser(&api.me)

	s := newPostScreen(svc, domain.Post{ID: 5, Owner: api.me, CommentsCount: 1})
	s.SetSize(80, 40)
	deliver(s, run(s.Init()))
	require.Len(t, s.comments.Items(), 1)

	// Commenting goes through a prompt
	msgs := run(s.Update(keyPress("c")))
	require.Len(t, msgs, 1)
	p, ok := msgs[0].(PromptMsg)
	require.True(t, ok)

	added := run(p.OnSubmit("hello"))
	require.Len(t, added, 1)
	updates := run(s.Update(added[0]))
	require.Len(t, updates, 1)
	assert.Equal(t, 2, updates[0].(PostUpdatedMsg).Post.CommentsCount)
	assert.Len(t, s.comments.Items(), 2)

	// Someone else's comment cannot be edited
	s.comments.SetSelectedIndex(0)
	msgs = run(s.Update(keyPress("e")))
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].(StatusMsg).IsError)
}

func TestPostScreen_DeletionClosesScreen(t *testing.T) {
	api := &fakeAPI{me: domain.User{ID: 1}}
	svc, _ := newTestServices(t, api)

	s := newPostScreenByID(svc, 5)
	msgs := run(s.Update(PostDeletedMsg{PostID: 5}))
	require.Len(t, msgs, 1)
	assert.Equal(t, CloseScreenMsg{ScreenID: s.ID()}, msgs[0])

	assert.Nil(t, s.Update(PostDeletedMsg{PostID: 6}))
}

func TestPostScreen_NotFound(t *testing.T) {
	api := &fakeAPI{err: domain.NewAPIError(404, "", nil)}
	svc, _ := newTestServices(t, api)

	s := newPostScreenByID(svc, 5)
	deliver(s, run(s.Init()))

	assert.Equal(t, "The requested post does not exist", s.banner)
	assert.Nil(t, s.post)
}

type stubScreen struct {
	screenBase
	closedCount int
}

func newStub(t *testing.T) *stubScreen {
	svc, _ := newTestServices(t, &fakeAPI{})
	return &stubScreen{screenBase: newScreenBase(svc)}
}

func (s *stubScreen) Title() string { return "stub" }
func (s *stubScreen) Init() tea.Cmd { return nil }
func (s *stubScreen) Update(tea.Msg) tea.Cmd { return nil }
func (s *stubScreen) View() string { return "" }
func (s *stubScreen) SetSize(int, int) {}
func (s *stubScreen) SetSpinner(string) {}
func (s *stubScreen) IsFiltering() bool { return false }
func (s *stubScreen) IsFilterTyping() bool { return false }
func (s *stubScreen) Close() { s.closedCount++; s.screenBase.Close() }

func TestScreenStack(t *testing.T) {
	stack := NewScreenStack()
	assert.Nil(t, stack.Top())
	assert.False(t, stack.Pop())

	root, child := newStub(t), newStub(t)
	stack.Reset(root)
	stack.Push(child)
	assert.Equal(t, 2, stack.Len())
	assert.Same(t, child, stack.Top())

	assert.True(t, stack.Pop())
	assert.Equal(t, 1, child.closedCount)
	assert.True(t, child.closed())

	// The root stays
	assert.False(t, stack.Pop())
	assert.Same(t, root, stack.Top())

	stack.Clear()
	assert.Equal(t, 0, stack.Len())
	assert.Equal(t, 1, root.closedCount)
}
