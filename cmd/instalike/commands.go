package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mmcdole/instalike/internal/domain"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ctx bounds one CLI command by the configured request timeout
func (a *app) ctx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	timeout := a.cfg.Server.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(cmd.Context(), timeout)
}

func newLoginCmd(a *app) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			if email == "" {
				fmt.Fprint(out, "Email: ")
				line, err := in.ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return fmt.Errorf("failed to read email: %w", err)
				}
				email = strings.TrimSpace(line)
			}
			password, err := readSecret(out, in, "Password: ")
			if err != nil {
				return err
			}

			ctx, cancel := a.ctx(cmd)
			defer cancel()

			user, err := a.svc.Session.Login(ctx, domain.Credentials{Email: email, Password: password})
			if err != nil {
				if errors.Is(err, domain.ErrInvalidCredentials) {
					return errors.New("the email or password you entered is invalid")
				}
				return fmt.Errorf("error logging in, make sure you entered a valid email address and password: %w", err)
			}
			fmt.Fprintf(out, "Logged in as @%s\n", user.UserName)
			if unread := a.svc.Session.UnreadCount(); unread > 0 {
				fmt.Fprintf(out, "You have %d unread notifications\n", unread)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and clear local data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.svc.Session.IsLoggedIn() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			if err := a.svc.Session.Logout(ctx); err != nil {
				// The local session is gone either way
				a.logger.Warn("server-side logout failed", "error", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			user, err := a.svc.Session.Restore(ctx)
			if err != nil {
				return describe(err, "user")
			}
			printUser(cmd.OutOrStdout(), *user)
			fmt.Fprintf(cmd.OutOrStdout(), "%d unread notifications\n", a.svc.Session.UnreadCount())
			return nil
		},
	}
}

func newFeedCmd(a *app) *cobra.Command {
	var pages int
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Print the home feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			f, err := a.svc.Feed.CollectHome(ctx, pages)
			if err != nil {
				return describe(err, "feed posts")
			}

			fmt.Fprintln(cmd.OutOrStdout(), postTable(f.Items))
			if f.HasMorePages {
				fmt.Fprintf(cmd.OutOrStdout(), "(more posts available, use --pages %d)\n", pages+1)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&pages, "pages", "p", 1, "number of pages to fetch, 0 for all")
	return cmd
}

func newNotificationsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "notifications",
		Short: "Print notifications and refresh the unread count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			f, err := a.svc.Feed.CollectNotifications(ctx)
			if err != nil {
				return describe(err, "notifications")
			}
			unread := a.svc.Notifications.Recount(f.Items)

			fmt.Fprintln(cmd.OutOrStdout(), notificationTable(f.Items))
			fmt.Fprintf(cmd.OutOrStdout(), "%d unread\n", unread)
			return nil
		},
	}
}

func newProfileCmd(a *app) *cobra.Command {
	var (
		update       domain.ProfileUpdate
		removeAvatar bool
	)
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your profile details",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			if removeAvatar {
				user, err := a.svc.Users.DeleteAvatar(ctx)
				if err != nil {
					return describeUpdate(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Avatar removed")
				if update == (domain.ProfileUpdate{}) {
					printUser(cmd.OutOrStdout(), *user)
					return nil
				}
			}

			if update == (domain.ProfileUpdate{}) {
				user, err := a.svc.Users.GetUser(ctx, domain.Me)
				if err != nil {
					return describe(err, "user")
				}
				printUser(cmd.OutOrStdout(), *user)
				return nil
			}

			user, err := a.svc.Users.UpdateProfile(ctx, update)
			if err != nil {
				return describeUpdate(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile updated")
			printUser(cmd.OutOrStdout(), *user)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&update.Email, "email", "", "new email")
	f.StringVar(&update.UserName, "username", "", "new username")
	f.StringVar(&update.FirstName, "first-name", "", "new first name")
	f.StringVar(&update.LastName, "last-name", "", "new last name")
	f.StringVar(&update.Biography, "bio", "", "new biography")
	f.BoolVar(&removeAvatar, "remove-avatar", false, "delete your profile picture")
	return cmd
}

func newPasswordCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			current, err := readSecret(out, in, "Current password: ")
			if err != nil {
				return err
			}
			next, err := readSecret(out, in, "New password: ")
			if err != nil {
				return err
			}
			confirm, err := readSecret(out, in, "Repeat new password: ")
			if err != nil {
				return err
			}
			if next != confirm {
				return errors.New("the new passwords do not match")
			}

			ctx, cancel := a.ctx(cmd)
			defer cancel()

			if err := a.svc.Users.ChangePassword(ctx, current, next); err != nil {
				return describeUpdate(err)
			}
			fmt.Fprintln(out, "Password changed")
			return nil
		},
	}
}

// readSecret reads a line without echo when stdin is a terminal
func readSecret(out io.Writer, in *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// describe turns a load error into the message the TUI banner would show
func describe(err error, subject string) error {
	switch domain.KindOf(err) {
	case domain.KindUnauthorized:
		return errors.New("you must be logged in, run `instalike login`")
	case domain.KindRateLimited:
		return fmt.Errorf("error while fetching %s, too many requests", subject)
	case domain.KindNotFound:
		return fmt.Errorf("the requested %s does not exist", subject)
	}
	return fmt.Errorf("an error occurred while fetching the %s: %w", subject, err)
}

// describeUpdate surfaces 422 field messages
func describeUpdate(err error) error {
	if domain.KindOf(err) == domain.KindValidationFailed {
		return errors.New(domain.ValidationSummary(err))
	}
	if domain.KindOf(err) == domain.KindUnauthorized {
		return errors.New("you must be logged in, run `instalike login`")
	}
	return fmt.Errorf("an error occurred while updating the details: %w", err)
}

var (
	tableHeader = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableCell   = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderColumn(false).
		BorderRow(false).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeader
			}
			return tableCell
		})
}

func postTable(posts []domain.Post) string {
	t := newTable("ID", "AUTHOR", "LIKES", "COMMENTS", "CAPTION")
	for _, p := range posts {
		likes := strconv.Itoa(p.LikesCount)
		if p.ViewerHasLiked {
			likes = "♥ " + likes
		}
		t.Row(
			strconv.FormatInt(p.ID, 10),
			"@"+p.Owner.UserName,
			likes,
			strconv.Itoa(p.CommentsCount),
			oneLine(p.Caption, 60),
		)
	}
	return t.String()
}

func notificationTable(notifications []domain.Notification) string {
	t := newTable("", "NOTIFICATION", "DATE")
	for _, n := range notifications {
		mark := ""
		if !n.IsRead {
			mark = "●"
		}
		t.Row(mark, n.Summary(), n.CreatedAt.Format(time.DateTime))
	}
	return t.String()
}

func printUser(w io.Writer, u domain.User) {
	fmt.Fprintf(w, "@%s (%s)\n", u.UserName, u.DisplayName())
	if u.Email != "" {
		fmt.Fprintln(w, u.Email)
	}
	fmt.Fprintf(w, "%d followers, %d following\n", u.FollowersCount, u.FollowingCount)
	if u.Biography != "" {
		fmt.Fprintln(w, u.Biography)
	}
}

func oneLine(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}
