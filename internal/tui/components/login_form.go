package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/instalike/internal/domain"
	"github.com/mmcdole/instalike/internal/tui/styles"
)

const (
	fieldEmail = iota
	fieldPassword
)

// LoginForm collects the email and password
type LoginForm struct {
	inputs  []textinput.Model
	focus   int
	err     string
	busy    bool
	server  string
	spinner string
}

// NewLoginForm creates an empty login form
func NewLoginForm(server string) LoginForm {
	email := textinput.New()
	email.Placeholder = "student@etu.unistra.fr"
	email.Prompt = "Email     "
	email.PromptStyle = styles.SubtitleStyle
	email.CharLimit = 254
	email.Focus()

	password := textinput.New()
	password.Placeholder = "at least 6 characters"
	password.Prompt = "Password  "
	password.PromptStyle = styles.SubtitleStyle
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	return LoginForm{
		inputs: []textinput.Model{email, password},
		server: server,
	}
}

// Credentials returns the typed credentials
func (f LoginForm) Credentials() domain.Credentials {
	return domain.Credentials{
		Email:    strings.TrimSpace(f.inputs[fieldEmail].Value()),
		Password: f.inputs[fieldPassword].Value(),
	}
}

// SetError shows an error under the form and ends the busy state
func (f *LoginForm) SetError(msg string) {
	f.err = msg
	f.busy = false
}

// ErrorText returns the message shown under the form
func (f LoginForm) ErrorText() string {
	return f.err
}

// SetBusy marks a login request as in flight
func (f *LoginForm) SetBusy(busy bool) {
	f.busy = busy
	if busy {
		f.err = ""
	}
}

// IsBusy reports whether a login request is in flight
func (f LoginForm) IsBusy() bool {
	return f.busy
}

// SetSpinner sets the frame drawn while busy
func (f *LoginForm) SetSpinner(frame string) {
	f.spinner = frame
}

// Reset clears the password and keeps the email
func (f *LoginForm) Reset() {
	f.inputs[fieldPassword].SetValue("")
	f.busy = false
	f.focusField(fieldEmail)
}

// Update handles form input, returns (form, cmd, submitted)
func (f LoginForm) Update(msg tea.Msg) (LoginForm, tea.Cmd, bool) {
	if f.busy {
		return f, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, FormKeys.Submit):
			if f.focus == fieldEmail {
				f.focusField(fieldPassword)
				return f, nil, false
			}
			return f, nil, true
		case key.Matches(keyMsg, FormKeys.Next):
			f.focusField((f.focus + 1) % len(f.inputs))
			return f, nil, false
		case key.Matches(keyMsg, FormKeys.Prev):
			f.focusField((f.focus + len(f.inputs) - 1) % len(f.inputs))
			return f, nil, false
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd, false
}

func (f *LoginForm) focusField(i int) {
	f.focus = i
	for j := range f.inputs {
		if j == i {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

// View renders the form
func (f LoginForm) View() string {
	const formWidth = 48

	lines := []string{
		styles.TitleStyle.Render("Instalike"),
		styles.DimStyle.Render(styles.Truncate(f.server, formWidth)),
		"",
		f.inputs[fieldEmail].View(),
		f.inputs[fieldPassword].View(),
		"",
	}

	switch {
	case f.busy:
		lines = append(lines, styles.DimStyle.Render(f.spinner+" Logging in..."))
	case f.err != "":
		lines = append(lines, styles.ErrorStyle.Width(formWidth).Render(f.err))
	default:
		lines = append(lines, styles.DimStyle.Render("enter to log in, esc to quit"))
	}

	return styles.ModalStyle.Width(formWidth + 4).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
