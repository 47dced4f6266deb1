package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/instalike/internal/domain"
	"github.com/mmcdole/instalike/internal/service"
	"github.com/mmcdole/instalike/internal/tui/components"
)

type usersKind int

const (
	usersSuggestions usersKind = iota
	usersFollowers
	usersFollowing
)

// usersScreen lists follow suggestions, followers or followings. The
// filter ranks users by handle and name.
type usersScreen struct {
	screenBase

	kind    usersKind
	userID  int64
	title   string
	loading bool
	list    *components.ListColumn[domain.User]
}

func newUsersScreen(svc *Services, kind usersKind, userID int64, owner string) *usersScreen {
	s := &usersScreen{
		screenBase: newScreenBase(svc),
		kind:       kind,
		userID:     userID,
	}
	switch kind {
	case usersFollowers:
		s.title = "Followers of " + owner
	case usersFollowing:
		s.title = "Followed by " + owner
	default:
		s.title = "Suggestions"
	}

	s.list = components.NewListColumn[domain.User](s.title, components.UserRowHeight, components.RenderUserRow)
	s.list.SetMatcher(func(query string, users []domain.User) []int {
		return service.RankUsers(users, query)
	})
	s.list.SetEmptyText("Nobody here yet")
	s.list.SetFocused(true)
	return s
}

func (s *usersScreen) Title() string { return s.title }

func (s *usersScreen) Init() tea.Cmd { return s.load() }

func (s *usersScreen) load() tea.Cmd {
	if s.loading || s.closed() {
		return nil
	}
	s.loading = true
	s.list.SetLoading(true)

	users := s.svc.Users
	userID := s.userID
	var fetch func(context.Context) ([]domain.User, error)
	switch s.kind {
	case usersFollowers:
		fetch = func(ctx context.Context) ([]domain.User, error) { return users.Followers(ctx, userID) }
	case usersFollowing:
		fetch = func(ctx context.Context) ([]domain.User, error) { return users.Following(ctx, userID) }
	default:
		fetch = users.Suggestions
	}
	return LoadUsersCmd(s.id, s.ctx, fetch, s.svc.Timeout)
}

func (s *usersScreen) Update(msg tea.Msg) tea.Cmd {
	defer s.layout()

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return s.handleKey(msg)

	case UsersLoadedMsg:
		if msg.ScreenID != s.id || s.closed() {
			return nil
		}
		s.loading = false
		s.list.SetLoading(false)
		if msg.Err != nil {
			s.banner = LoadErrorText(msg.Err, "users")
			return nil
		}
		s.banner = ""
		s.list.SetItems(msg.Users)

	case UserUpdatedMsg:
		items := s.list.Items()
		for i := range items {
			if items[i].ID == msg.User.ID {
				updated := append([]domain.User(nil), items...)
				updated[i] = msg.User
				s.list.SetItems(updated)
				break
			}
		}
	}
	return nil
}

func (s *usersScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	if s.list.IsFilterTyping() {
		return s.list.Update(msg)
	}

	user, selected := s.list.Selected()
	switch {
	case key.Matches(msg, Keys.Refresh):
		return s.load()
	case key.Matches(msg, Keys.Enter), key.Matches(msg, Keys.Author):
		if selected {
			return openScreen(newProfileScreen(s.svc, user.ID))
		}
		return nil
	case key.Matches(msg, Keys.Follow):
		if selected && !s.isMe(user.ID) {
			return ToggleFollowCmd(s.svc.Users, user, s.svc.Timeout)
		}
		return nil
	}
	return s.list.Update(msg)
}

func (s *usersScreen) layout() {
	_, h := s.stack()
	s.list.SetSize(s.width, h)
}

func (s *usersScreen) View() string {
	head, _ := s.stack()
	if head == "" {
		return s.list.View()
	}
	return head + "\n" + s.list.View()
}

func (s *usersScreen) SetSize(width, height int) {
	s.width, s.height = width, height
	s.layout()
}

func (s *usersScreen) SetSpinner(frame string) { s.list.SetIndicator(frame) }

func (s *usersScreen) IsFiltering() bool { return s.list.IsFiltering() }

func (s *usersScreen) IsFilterTyping() bool { return s.list.IsFilterTyping() }
