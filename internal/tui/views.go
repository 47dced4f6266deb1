package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/instalike/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	switch m.State {
	case StateLogin:
		return lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.LoginForm.View())
	case StateHelp:
		return m.renderHelp()
	case StateConfirm:
		return m.renderConfirmation()
	case StatePrompt:
		return lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.InputModal.View())
	}

	var content string
	if top := m.Screens.Top(); top != nil {
		content = top.View()
	} else if m.Restoring {
		content = m.Spinner.View() + styles.DimStyle.Render(" Restoring your session...")
	}

	_, contentHeight := m.contentSize()
	content = lipgloss.NewStyle().Height(contentHeight).MaxHeight(contentHeight).Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), content, m.renderFooter())
}

// renderHeader renders the tab bar, the breadcrumb and the logged user
func (m Model) renderHeader() string {
	tabs := []struct {
		key, label string
	}{
		{"1", "Feed"},
		{"2", "Notifications"},
		{"3", "Profile"},
		{"4", "Discover"},
	}

	var parts []string
	parts = append(parts, styles.HandleStyle.Render("Instalike"))
	for _, tab := range tabs {
		label := styles.AccentStyle.Render(tab.key) + styles.DimStyle.Render(" "+tab.label)
		if tab.key == "2" {
			if unread := m.svc.Session.UnreadCount(); unread > 0 {
				label += " " + styles.BadgeStyle.Render(fmt.Sprint(unread))
			}
		}
		parts = append(parts, label)
	}
	left := strings.Join(parts, "  ")

	var crumbs []string
	for _, screen := range m.Screens.All() {
		crumbs = append(crumbs, screen.Title())
	}
	if len(crumbs) > 0 {
		left += "  " + styles.SubtitleStyle.Render(strings.Join(crumbs, " › "))
	}

	var right string
	if user := m.svc.Session.CurrentUser(); user != nil {
		right = styles.DimStyle.Render("@" + user.UserName)
	}

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return lipgloss.NewStyle().MaxWidth(m.Width).Render(left)
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderFooter renders the status message or the key hints
func (m Model) renderFooter() string {
	var left string
	if m.StatusMsg != "" {
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.SuccessStyle.Render(m.StatusMsg)
		}
	} else {
		left = m.Help.ShortHelpView(Keys.ShortHelp())
	}

	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")
	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return lipgloss.NewStyle().MaxWidth(m.Width).Render(left)
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	body := m.Help.FullHelpView(Keys.FullHelp()) +
		"\n\n" + styles.DimStyle.Render("Lists: j/k move, g/G top/bottom, / filter. Press ? or esc to return.")

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(styles.ModalTitleStyle.Render("Keys")+"\n"+body))
}

// renderConfirmation renders the yes/no modal
func (m Model) renderConfirmation() string {
	modal := styles.ModalTitleStyle.Render(m.question) + "\n" +
		styles.AccentStyle.Render("[Y]") + " Yes      " + styles.AccentStyle.Render("[N]") + " No"

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(modal))
}
