package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/instalike/internal/domain"
	"github.com/mmcdole/instalike/internal/tui/styles"
)

// Row heights of the list renderers below
const (
	PostRowHeight         = 3
	NotificationRowHeight = 1
	UserRowHeight         = 1
	CommentRowHeight      = 2
)

var (
	pink = styles.InstaPink
	dim  = styles.DimGray
)

// Ago renders t relative to now
func Ago(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}

// RenderPostRow renders a post over PostRowHeight lines
func RenderPostRow(p domain.Post, selected bool, width int) string {
	inner := max(width-2, 1)

	header := []styles.RowPart{
		{Text: "@" + p.Owner.UserName, Foreground: &pink},
	}
	if p.Location != "" {
		header = append(header, styles.RowPart{Text: " · " + p.Location, Foreground: &dim})
	}
	header = append(header, styles.RowPart{Text: "  " + Ago(p.CreatedAt, time.Now()), Foreground: &dim})

	caption := strings.ReplaceAll(p.Caption, "\n", " ")
	if caption == "" {
		caption = "(no caption)"
	}

	stats := fmt.Sprintf("%s %d   💬 %d", styles.RenderLike(p.ViewerHasLiked), p.LikesCount, p.CommentsCount)
	if len(p.Resources) > 1 {
		stats += fmt.Sprintf("   ▦ %d", len(p.Resources))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.RenderListRow(header, selected, width),
		styles.RenderListRow([]styles.RowPart{{Text: styles.Truncate(caption, inner)}}, selected, width),
		styles.RenderListRow([]styles.RowPart{{Text: stats}}, selected, width),
	)
}

// RenderNotificationRow renders a notification on one line
func RenderNotificationRow(n domain.Notification, selected bool, width int) string {
	when := Ago(n.CreatedAt, time.Now())
	text := styles.Truncate(n.Summary(), max(width-lipgloss.Width(when)-8, 1))
	return styles.RenderListRow([]styles.RowPart{
		{Text: styles.RenderRead(n.IsRead) + " "},
		{Text: text},
		{Text: "  " + when, Foreground: &dim},
	}, selected, width)
}

// RenderUserRow renders a user on one line
func RenderUserRow(u domain.User, selected bool, width int) string {
	state := ""
	if u.IsFollowedByViewer {
		state = "  following"
	}
	return styles.RenderListRow([]styles.RowPart{
		{Text: "@" + u.UserName, Foreground: &pink},
		{Text: "  " + styles.Truncate(u.DisplayName(), max(width/2, 1))},
		{Text: state, Foreground: &dim},
	}, selected, width)
}

// RenderCommentRow renders a comment over CommentRowHeight lines
func RenderCommentRow(c domain.Comment, selected bool, width int) string {
	header := []styles.RowPart{
		{Text: "@" + c.Owner.UserName, Foreground: &pink},
		{Text: "  " + Ago(c.CreatedAt, time.Now()), Foreground: &dim},
	}
	if c.Edited() {
		header = append(header, styles.RowPart{Text: " (edited)", Foreground: &dim})
	}
	text := strings.ReplaceAll(c.Text, "\n", " ")
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.RenderListRow(header, selected, width),
		styles.RenderListRow([]styles.RowPart{{Text: styles.Truncate(text, max(width-2, 1))}}, selected, width),
	)
}

// RenderPostDetail renders the header of a post screen
func RenderPostDetail(p domain.Post, width int) string {
	wrap := lipgloss.NewStyle().Width(max(width-4, 10))

	lines := []string{
		styles.HandleStyle.Render("@"+p.Owner.UserName) + styles.DimStyle.Render("  "+p.Owner.DisplayName()),
	}
	if p.Location != "" {
		lines = append(lines, styles.DimStyle.Render(p.Location))
	}
	lines = append(lines, "", wrap.Render(p.Caption), "")

	stats := fmt.Sprintf("%s %d likes   %d comments", styles.RenderLike(p.ViewerHasLiked), p.LikesCount, p.CommentsCount)
	lines = append(lines, stats)

	if len(p.PreviewLikes) > 0 {
		names := make([]string, len(p.PreviewLikes))
		for i, u := range p.PreviewLikes {
			names[i] = u.UserName
		}
		lines = append(lines, styles.DimStyle.Render("liked by "+strings.Join(names, ", ")))
	}

	posted := "posted " + p.CreatedAt.Format("Jan 2, 2006 15:04")
	if p.Edited() {
		posted += " (edited)"
	}
	if p.HasCommentsDisabled {
		posted += " · comments disabled"
	}
	lines = append(lines, styles.DimStyle.Render(posted))

	return styles.InactiveBorder.Width(max(width-2, 10)).Render(strings.Join(lines, "\n"))
}

// RenderProfile renders the header of a profile screen
func RenderProfile(u domain.User, isMe bool, width int) string {
	name := styles.HandleStyle.Render("@"+u.UserName) + styles.DimStyle.Render("  "+u.DisplayName())
	counts := fmt.Sprintf("%d followers   %d following", u.FollowersCount, u.FollowingCount)

	switch {
	case isMe:
		counts += "   " + styles.DimBadgeStyle.Render("you")
	case u.IsFollowedByViewer:
		counts += "   " + styles.DimBadgeStyle.Render("following")
	default:
		counts += "   " + styles.BadgeStyle.Render("follow")
	}

	lines := []string{name, counts}
	if u.Biography != "" {
		lines = append(lines, lipgloss.NewStyle().Width(max(width-4, 10)).Render(u.Biography))
	}
	return styles.InactiveBorder.Width(max(width-2, 10)).Render(strings.Join(lines, "\n"))
}
