package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/instalike/internal/domain"
	"github.com/mmcdole/instalike/internal/feed"
	"github.com/mmcdole/instalike/internal/tui/components"
)

// notificationsScreen lists the logged user's notifications and keeps the
// unread badge in step with them
type notificationsScreen struct {
	screenBase

	loader *feed.Loader[domain.Notification]
	list   *components.ListColumn[domain.Notification]
}

func newNotificationsScreen(svc *Services) *notificationsScreen {
	s := &notificationsScreen{screenBase: newScreenBase(svc)}
	s.loader = feed.NewLoader[domain.Notification](s.ctx)
	s.list = components.NewListColumn[domain.Notification]("Notifications", components.NotificationRowHeight, components.RenderNotificationRow)
	s.list.SetEmptyText("No notifications")
	s.list.SetFocused(true)
	return s
}

func (s *notificationsScreen) Title() string { return "Notifications" }

func (s *notificationsScreen) Init() tea.Cmd { return s.load(true) }

func (s *notificationsScreen) load(reset bool) tea.Cmd {
	t, ok := s.loader.Begin(reset)
	if !ok {
		return nil
	}
	s.list.SetLoading(true)
	return LoadPageCmd(s.id, t, s.svc.Feed.Notifications(), s.svc.Timeout)
}

func (s *notificationsScreen) Update(msg tea.Msg) tea.Cmd {
	defer s.layout()

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return s.handleKey(msg)

	case PageMsg[domain.Notification]:
		if msg.ScreenID != s.id || !s.loader.Finish(msg.Gen, msg.Page, msg.Err) {
			return nil
		}
		s.banner = ""
		if msg.Err != nil {
			s.banner = LoadErrorText(msg.Err, "notifications")
		} else {
			s.svc.Notifications.Recount(s.loader.Feed().Items)
		}
		s.sync()

	case NotificationUpdatedMsg:
		if _, ok := feed.Find(s.loader.Feed(), msg.Notification.ID); ok {
			s.loader.Apply(msg.Notification)
			s.sync()
		}

	case NotificationDeletedMsg:
		s.loader.Remove(msg.NotificationID)
		s.sync()
	}
	return nil
}

func (s *notificationsScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	if s.list.IsFilterTyping() {
		return s.list.Update(msg)
	}

	n, selected := s.list.Selected()
	switch {
	case key.Matches(msg, Keys.Refresh):
		return s.load(true)

	case key.Matches(msg, Keys.Enter):
		if !selected {
			return nil
		}
		if n.Data.Post != nil {
			return openScreen(newPostScreenByID(s.svc, n.Data.Post.ID))
		}
		if n.Data.User != nil {
			return openScreen(newProfileScreen(s.svc, n.Data.User.ID))
		}
		return nil

	case key.Matches(msg, Keys.Author):
		if selected && n.Data.User != nil {
			return openScreen(newProfileScreen(s.svc, n.Data.User.ID))
		}
		return nil

	case key.Matches(msg, Keys.ToggleRead):
		if selected {
			return ToggleReadCmd(s.svc.Notifications, n, s.svc.Timeout)
		}
		return nil

	case key.Matches(msg, Keys.Delete):
		if selected {
			return DeleteNotificationCmd(s.svc.Notifications, n, s.svc.Timeout)
		}
		return nil
	}

	cmd := s.list.Update(msg)
	if s.list.AtEnd() && s.loader.HasMore() {
		return tea.Batch(cmd, s.load(false))
	}
	return cmd
}

func (s *notificationsScreen) sync() {
	f := s.loader.Feed()
	s.list.SetItems(f.Items)
	s.list.SetLoading(s.loader.State() == feed.StateLoading)
	if unread := domain.CountUnread(f.Items); unread > 0 {
		s.list.SetTitle(fmt.Sprintf("Notifications (%d unread)", unread))
	} else {
		s.list.SetTitle("Notifications")
	}
}

func (s *notificationsScreen) layout() {
	_, h := s.stack()
	s.list.SetSize(s.width, h)
}

func (s *notificationsScreen) View() string {
	head, _ := s.stack()
	if head == "" {
		return s.list.View()
	}
	return head + "\n" + s.list.View()
}

func (s *notificationsScreen) SetSize(width, height int) {
	s.width, s.height = width, height
	s.layout()
}

func (s *notificationsScreen) SetSpinner(frame string) { s.list.SetIndicator(frame) }

func (s *notificationsScreen) IsFiltering() bool { return s.list.IsFiltering() }

func (s *notificationsScreen) IsFilterTyping() bool { return s.list.IsFilterTyping() }

func (s *notificationsScreen) Close() {
	s.loader.Cancel()
	s.screenBase.Close()
}
