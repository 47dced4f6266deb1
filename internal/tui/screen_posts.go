package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/instalike/internal/domain"
	"github.com/mmcdole/instalike/internal/feed"
	"github.com/mmcdole/instalike/internal/tui/components"
)

// postsScreen lists a paginated post feed: the home feed or the posts of
// a profile, with the profile's header.
type postsScreen struct {
	screenBase

	title   string
	userID  int64
	profile *domain.User
	isUser  bool

	fetch  feed.FetchFunc[domain.Post]
	loader *feed.Loader[domain.Post]
	list   *components.ListColumn[domain.Post]
}

func newHomeScreen(svc *Services) *postsScreen {
	s := &postsScreen{
		screenBase: newScreenBase(svc),
		title:      "Feed",
		fetch:      svc.Feed.Home(),
	}
	s.init("No posts in your feed yet, follow someone to fill it")
	return s
}

func newProfileScreen(svc *Services, userID int64) *postsScreen {
	s := &postsScreen{
		screenBase: newScreenBase(svc),
		title:      "Profile",
		userID:     userID,
		isUser:     true,
		fetch:      svc.Feed.UserPosts(userID),
	}
	if s.isMe(userID) {
		s.profile = svc.Session.CurrentUser()
	}
	s.init("No posts yet")
	return s
}

func (s *postsScreen) init(empty string) {
	s.loader = feed.NewLoader[domain.Post](s.ctx)
	s.list = components.NewListColumn[domain.Post](s.title, components.PostRowHeight, components.RenderPostRow)
	s.list.SetEmptyText(empty)
	s.list.SetFocused(true)
}

func (s *postsScreen) Title() string {
	if s.profile != nil {
		return "@" + s.profile.UserName
	}
	return s.title
}

func (s *postsScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{s.load(true)}
	if s.isUser {
		cmds = append(cmds, LoadProfileCmd(s.id, s.ctx, s.svc.Users, s.userID, s.svc.Timeout))
	}
	return tea.Batch(cmds...)
}

// load begins a refresh (reset) or a load-more
func (s *postsScreen) load(reset bool) tea.Cmd {
	t, ok := s.loader.Begin(reset)
	if !ok {
		return nil
	}
	s.list.SetLoading(true)
	return LoadPageCmd(s.id, t, s.fetch, s.svc.Timeout)
}

func (s *postsScreen) Update(msg tea.Msg) tea.Cmd {
	defer s.layout()

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return s.handleKey(msg)

	case PageMsg[domain.Post]:
		if msg.ScreenID != s.id || !s.loader.Finish(msg.Gen, msg.Page, msg.Err) {
			return nil
		}
		s.banner = ""
		if msg.Err != nil {
			s.banner = LoadErrorText(msg.Err, "feed posts")
		}
		s.sync()

	case ProfileLoadedMsg:
		if msg.ScreenID != s.id {
			return nil
		}
		if msg.Err != nil {
			s.banner = LoadErrorText(msg.Err, "user")
			return nil
		}
		s.profile = msg.User
		s.list.SetTitle("@" + msg.User.UserName)

	case PostUpdatedMsg:
		if _, ok := feed.Find(s.loader.Feed(), msg.Post.ID); ok {
			s.loader.Apply(msg.Post)
			s.sync()
		}

	case PostDeletedMsg:
		s.loader.Remove(msg.PostID)
		s.sync()

	case UserUpdatedMsg:
		if s.profile != nil && s.profile.ID == msg.User.ID {
			user := msg.User
			s.profile = &user
		}
	}
	return nil
}

func (s *postsScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	if s.list.IsFilterTyping() {
		return s.list.Update(msg)
	}

	post, selected := s.list.Selected()
	switch {
	case key.Matches(msg, Keys.Refresh):
		return s.load(true)

	case key.Matches(msg, Keys.Enter):
		if selected {
			return openScreen(newPostScreen(s.svc, post))
		}
		return nil

	case key.Matches(msg, Keys.Like):
		if selected {
			return ToggleLikeCmd(s.svc.Posts, post, s.svc.Timeout)
		}
		return nil

	case key.Matches(msg, Keys.Author):
		if selected && (!s.isUser || post.Owner.ID != s.profileID()) {
			return openScreen(newProfileScreen(s.svc, post.Owner.ID))
		}
		return nil
	}

	if s.isUser {
		switch {
		case key.Matches(msg, Keys.Follow):
			if s.profile == nil || s.isMe(s.profile.ID) {
				return nil
			}
			return ToggleFollowCmd(s.svc.Users, *s.profile, s.svc.Timeout)
		case key.Matches(msg, Keys.Followers):
			return openScreen(newUsersScreen(s.svc, usersFollowers, s.profileID(), s.Title()))
		case key.Matches(msg, Keys.Following):
			return openScreen(newUsersScreen(s.svc, usersFollowing, s.profileID(), s.Title()))
		}
	}

	cmd := s.list.Update(msg)
	if s.list.AtEnd() && s.loader.HasMore() {
		return tea.Batch(cmd, s.load(false))
	}
	return cmd
}

// profileID returns the id of the displayed profile
func (s *postsScreen) profileID() int64 {
	if s.profile != nil {
		return s.profile.ID
	}
	return s.userID
}

// sync copies the accumulated feed into the list
func (s *postsScreen) sync() {
	f := s.loader.Feed()
	s.list.SetItems(f.Items)
	s.list.SetLoading(s.loader.State() == feed.StateLoading)

	switch {
	case s.loader.State() == feed.StateError:
		s.list.SetFooter("")
	case f.HasMorePages:
		s.list.SetFooter("scroll down for more")
	case f.Len() > 0:
		s.list.SetFooter("You're all caught up")
	default:
		s.list.SetFooter("")
	}
}

func (s *postsScreen) header() string {
	if s.profile == nil {
		return ""
	}
	return components.RenderProfile(*s.profile, s.isMe(s.profile.ID), s.width)
}

func (s *postsScreen) layout() {
	_, listHeight := s.stack(s.header())
	s.list.SetSize(s.width, listHeight)
}

func (s *postsScreen) View() string {
	head, _ := s.stack(s.header())
	if head == "" {
		return s.list.View()
	}
	return head + "\n" + s.list.View()
}

func (s *postsScreen) SetSize(width, height int) {
	s.width, s.height = width, height
	s.layout()
}

func (s *postsScreen) SetSpinner(frame string) { s.list.SetIndicator(frame) }

func (s *postsScreen) IsFiltering() bool { return s.list.IsFiltering() }

func (s *postsScreen) IsFilterTyping() bool { return s.list.IsFilterTyping() }

func (s *postsScreen) Close() {
	s.loader.Cancel()
	s.screenBase.Close()
}
