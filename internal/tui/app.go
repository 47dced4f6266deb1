package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/instalike/internal/domain"
	"github.com/mmcdole/instalike/internal/service"
	"github.com/mmcdole/instalike/internal/tui/components"
	"github.com/mmcdole/instalike/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateLogin ApplicationState = iota
	StateBrowsing
	StateHelp
	StateConfirm
	StatePrompt
)

// Vertical chrome: header line and footer line
const ChromeHeight = 2

// Status message lifetimes
const (
	statusTTL = 3 * time.Second
	errorTTL  = 5 * time.Second
)

// Services bundles what the screens need
type Services struct {
	Session       *service.SessionService
	Feed          *service.FeedService
	Posts         *service.PostService
	Notifications *service.NotificationService
	Users         *service.UserService

	// Timeout bounds each API call started by the UI
	Timeout time.Duration

	// DefaultScreen is the screen shown after login: "feed",
	// "notifications" or "profile"
	DefaultScreen string

	// Server is shown on the login form
	Server string
	Logger *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	svc *Services

	// UI Components
	Screens    *ScreenStack
	LoginForm  components.LoginForm
	InputModal components.InputModal
	Spinner    spinner.Model
	Help       help.Model

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg   string
	StatusIsErr bool
	Restoring   bool

	// Pending prompt or confirmation
	onSubmit  func(string) tea.Cmd
	question  string
	onConfirm tea.Cmd
}

// NewModel creates a new application model
func NewModel(svc *Services) Model {
	if svc.Logger == nil {
		svc.Logger = slog.Default()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	h := help.New()
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpDescStyle
	h.Styles.FullKey = styles.HelpKeyStyle
	h.Styles.FullDesc = styles.HelpDescStyle

	m := Model{
		State:      StateLogin,
		svc:        svc,
		Screens:    NewScreenStack(),
		LoginForm:  components.NewLoginForm(svc.Server),
		InputModal: components.NewInputModal(),
		Spinner:    sp,
		Help:       h,
	}
	if svc.Session.IsLoggedIn() {
		m.State = StateBrowsing
		m.Restoring = true
	}
	return m
}

// Init restores a persisted session or waits for the login form
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.Spinner.Tick}
	if m.Restoring {
		cmds = append(cmds, RestoreCmd(m.svc.Session, m.svc.Timeout))
	}
	return tea.Batch(cmds...)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if f, ok := msg.(failure); ok && m.sessionLost(f.failure()) {
		return m.toLogin(bannerLoggedOut)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.Help.Width = msg.Width
		for _, screen := range m.Screens.All() {
			screen.SetSize(m.contentSize())
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		frame := m.Spinner.View()
		m.LoginForm.SetSpinner(frame)
		if top := m.Screens.Top(); top != nil {
			top.SetSpinner(frame)
		}
		return m, cmd

	case LoggedInMsg:
		m.Restoring = false
		m.State = StateBrowsing
		m.LoginForm.Reset()
		m.svc.Logger.Info("logged in", "user", userName(msg.User))
		return m, m.resetTo(m.svc.DefaultScreen)

	case LoginFailedMsg:
		m.LoginForm.SetBusy(false)
		m.LoginForm.SetError(LoginErrorText(msg.Err))
		return m, nil

	case RestoreFailedMsg:
		m.Restoring = false
		if !m.svc.Session.IsLoggedIn() {
			return m.toLogin(LoginErrorText(msg.Err))
		}
		// Still holding a token: browse from the cached profile
		m.svc.Logger.Warn("session restore failed", "error", msg.Err)
		m.State = StateBrowsing
		cmd := m.resetTo(m.svc.DefaultScreen)
		return m, tea.Batch(cmd, m.setStatus(ActionErrorText(msg.Err, "loading your account"), true))

	case LoggedOutMsg:
		if msg.Err != nil {
			m.svc.Logger.Warn("server-side logout failed", "error", msg.Err)
		}
		return m.toLogin("")

	case OpenScreenMsg:
		if top := m.Screens.Top(); top != nil && top.IsFilterTyping() {
			return m, nil
		}
		msg.Screen.SetSize(m.contentSize())
		m.Screens.Push(msg.Screen)
		return m, msg.Screen.Init()

	case CloseScreenMsg:
		if top := m.Screens.Top(); top != nil && top.ID() == msg.ScreenID {
			m.Screens.Pop()
		}
		return m, nil

	case PromptMsg:
		m.InputModal.Show(msg.Title, msg.Placeholder, msg.Value)
		m.onSubmit = msg.OnSubmit
		m.State = StatePrompt
		return m, nil

	case ConfirmMsg:
		m.question = msg.Question
		m.onConfirm = msg.OnConfirm
		m.State = StateConfirm
		return m, nil

	case ErrMsg:
		m.svc.Logger.Error("action failed", "context", msg.Context, "error", msg.Err)
		return m, m.setStatus(ActionErrorText(msg.Err, msg.Context), true)

	case StatusMsg:
		return m, m.setStatus(msg.Message, msg.IsError)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, m.broadcast(msg)
}

// broadcast hands an async result to every screen; each one picks what
// concerns it
func (m Model) broadcast(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, screen := range m.Screens.All() {
		if cmd := screen.Update(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return tea.Batch(cmds...)
}

// sessionLost reports whether err means the credential is gone for good.
// The gateway clears the token when a refresh fails, so a 401 with the
// session still active is left to the screen.
func (m Model) sessionLost(err error) bool {
	if err == nil || m.State == StateLogin {
		return false
	}
	return domain.KindOf(err) == domain.KindUnauthorized && !m.svc.Session.IsLoggedIn()
}

// toLogin tears every screen down and shows the login form
func (m Model) toLogin(message string) (tea.Model, tea.Cmd) {
	m.Screens.Clear()
	m.InputModal.Hide()
	m.onSubmit, m.onConfirm = nil, nil
	m.Restoring = false
	m.State = StateLogin
	m.LoginForm.Reset()
	m.LoginForm.SetError(message)
	return m, nil
}

// resetTo replaces the whole stack with a root screen
func (m *Model) resetTo(name string) tea.Cmd {
	var root Screen
	switch name {
	case "notifications":
		root = newNotificationsScreen(m.svc)
	case "profile":
		root = newProfileScreen(m.svc, domain.Me)
	case "suggestions":
		root = newUsersScreen(m.svc, usersSuggestions, domain.Me, "")
	default:
		root = newHomeScreen(m.svc)
	}
	root.SetSize(m.contentSize())
	m.Screens.Reset(root)
	return root.Init()
}

func (m *Model) setStatus(message string, isError bool) tea.Cmd {
	m.StatusMsg = message
	m.StatusIsErr = isError
	if isError {
		return ClearStatusCmd(errorTTL)
	}
	return ClearStatusCmd(statusTTL)
}

// contentSize returns the area left to screens
func (m Model) contentSize() (int, int) {
	return m.Width, max(m.Height-ChromeHeight, 1)
}

// handleKeyMsg routes a key press by application state
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.State {
	case StateLogin:
		if key.Matches(msg, components.FormKeys.Cancel) {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		var submitted bool
		m.LoginForm, cmd, submitted = m.LoginForm.Update(msg)
		if submitted {
			m.LoginForm.SetBusy(true)
			return m, LoginCmd(m.svc.Session, m.LoginForm.Credentials(), m.svc.Timeout)
		}
		return m, cmd

	case StateHelp:
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.State = StateBrowsing
		}
		return m, nil

	case StateConfirm:
		switch {
		case key.Matches(msg, Keys.Confirm):
			cmd := m.onConfirm
			m.onConfirm, m.question = nil, ""
			m.State = StateBrowsing
			return m, cmd
		case key.Matches(msg, Keys.Deny):
			m.onConfirm, m.question = nil, ""
			m.State = StateBrowsing
		}
		return m, nil

	case StatePrompt:
		var cmd tea.Cmd
		var submitted bool
		m.InputModal, cmd, submitted = m.InputModal.Update(msg)
		if submitted {
			onSubmit := m.onSubmit
			text := m.InputModal.Value()
			m.InputModal.Hide()
			m.onSubmit = nil
			m.State = StateBrowsing
			if onSubmit != nil {
				return m, onSubmit(text)
			}
			return m, nil
		}
		if !m.InputModal.IsVisible() {
			m.onSubmit = nil
			m.State = StateBrowsing
		}
		return m, cmd
	}

	top := m.Screens.Top()
	if top == nil {
		if key.Matches(msg, Keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	// Filter input owns every key while typing
	if top.IsFilterTyping() {
		return m, top.Update(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Escape) && top.IsFiltering():
		return m, top.Update(msg)

	case key.Matches(msg, Keys.Back):
		m.Screens.Pop()
		return m, nil

	case key.Matches(msg, Keys.Feed):
		return m, m.resetTo("feed")

	case key.Matches(msg, Keys.Notifications):
		return m, m.resetTo("notifications")

	case key.Matches(msg, Keys.Profile):
		return m, m.resetTo("profile")

	case key.Matches(msg, Keys.Discover):
		return m, m.resetTo("suggestions")

	case key.Matches(msg, Keys.Logout):
		m.question = "Log out of Instalike?"
		m.onConfirm = LogoutCmd(m.svc.Session, m.svc.Timeout)
		m.State = StateConfirm
		return m, nil
	}

	return m, top.Update(msg)
}

func userName(u *domain.User) string {
	if u == nil {
		return ""
	}
	return u.UserName
}
