package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/instalike/internal/domain"
	"github.com/mmcdole/instalike/internal/feed"
	"github.com/mmcdole/instalike/internal/service"
)

// Command factories for async operations

const defaultTimeout = 30 * time.Second

func withTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if d <= 0 {
		d = defaultTimeout
	}
	return context.WithTimeout(parent, d)
}

// LoginCmd logs in and loads the account
func LoginCmd(svc *service.SessionService, creds domain.Credentials, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(context.Background(), timeout)
		defer cancel()

		user, err := svc.Login(ctx, creds)
		if err != nil {
			return LoginFailedMsg{Err: err}
		}
		return LoggedInMsg{User: user}
	}
}

// RestoreCmd reloads the account of a persisted session
func RestoreCmd(svc *service.SessionService, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(context.Background(), timeout)
		defer cancel()

		user, err := svc.Restore(ctx)
		if err != nil {
			return RestoreFailedMsg{Err: err}
		}
		return LoggedInMsg{User: user}
	}
}

// LogoutCmd ends the session
func LogoutCmd(svc *service.SessionService, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(context.Background(), timeout)
		defer cancel()

		return LoggedOutMsg{Err: svc.Logout(ctx)}
	}
}

// LoadPageCmd fetches the page a loader ticket asks for. The request is
// cancelled with the ticket when its screen is closed or reloaded.
func LoadPageCmd[T any](screenID int, t feed.Ticket, fetch feed.FetchFunc[T], timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(t.Ctx, timeout)
		defer cancel()

		page, err := fetch(ctx, t.Cursor)
		return PageMsg[T]{ScreenID: screenID, Gen: t.Gen, Page: page, Err: err}
	}
}

// LoadUsersCmd loads a non-paginated user list
func LoadUsersCmd(screenID int, parent context.Context, load func(context.Context) ([]domain.User, error), timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(parent, timeout)
		defer cancel()

		users, err := load(ctx)
		return UsersLoadedMsg{ScreenID: screenID, Users: users, Err: err}
	}
}

// LoadProfileCmd loads a user for a profile header
func LoadProfileCmd(screenID int, parent context.Context, svc *service.UserService, userID int64, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(parent, timeout)
		defer cancel()

		user, err := svc.GetUser(ctx, userID)
		return ProfileLoadedMsg{ScreenID: screenID, User: user, Err: err}
	}
}

// LoadPostCmd loads a single post
func LoadPostCmd(screenID int, parent context.Context, svc *service.PostService, postID int64, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(parent, timeout)
		defer cancel()

		post, err := svc.GetPost(ctx, postID)
		return PostLoadedMsg{ScreenID: screenID, Post: post, Err: err}
	}
}

// LoadCommentsCmd loads the comments of a post
func LoadCommentsCmd(screenID int, parent context.Context, svc *service.PostService, postID int64, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(parent, timeout)
		defer cancel()

		comments, err := svc.Comments(ctx, postID)
		return CommentsLoadedMsg{ScreenID: screenID, Comments: comments, Err: err}
	}
}

// ToggleLikeCmd likes or unlikes a post
func ToggleLikeCmd(svc *service.PostService, post domain.Post, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(context.Background(), timeout)
		defer cancel()

		updated, err := svc.ToggleLike(ctx, post)
		if err != nil {
			return ErrMsg{Err: err, Context: "liking post"}
		}
		return PostUpdatedMsg{Post: updated}
	}
}

// EditCaptionCmd replaces a post's caption
func EditCaptionCmd(svc *service.PostService, post domain.Post, caption string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(context.Background(), timeout)
		defer cancel()

		updated, err := svc.EditCaption(ctx, post, caption)
		if err != nil {
			return ErrMsg{Err: err, Context: "editing caption"}
		}
		return PostUpdatedMsg{Post: *updated}
	}
}

// DeletePostCmd deletes a post
func DeletePostCmd(svc *service.PostService, postID int64, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(context.Background(), timeout)
		defer cancel()

		if err := svc.DeletePost(ctx, postID); err != nil {
			return ErrMsg{Err: err, Context: "deleting post"}
		}
		return PostDeletedMsg{PostID: postID}
	}
}

// AddCommentCmd comments on a post
func AddCommentCmd(svc *service.PostService, post domain.Post, text string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(context.Background(), timeout)
		defer cancel()

		comment, err := svc.AddComment(ctx, post, text)
		if err != nil {
			return ErrMsg{Err: err, Context: "commenting"}
		}
		return CommentChangedMsg{PostID: post.ID, Comment: comment, Added: true}
	}
}

// EditCommentCmd replaces a comment's text
func EditCommentCmd(svc *service.PostService, postID, commentID int64, text string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(context.Background(), timeout)
		defer cancel()

		comment, err := svc.EditComment(ctx, postID, commentID, text)
		if err != nil {
			return ErrMsg{Err: err, Context: "editing comment"}
		}
		return CommentChangedMsg{PostID: postID, Comment: comment}
	}
}

// DeleteCommentCmd deletes a comment
func DeleteCommentCmd(svc *service.PostService, postID, commentID int64, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(context.Background(), timeout)
		defer cancel()

		if err := svc.DeleteComment(ctx, postID, commentID); err != nil {
			return ErrMsg{Err: err, Context: "deleting comment"}
		}
		return CommentChangedMsg{PostID: postID, Deleted: commentID}
	}
}

// ToggleFollowCmd follows or unfollows a user
func ToggleFollowCmd(svc *service.UserService, user domain.User, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(context.Background(), timeout)
		defer cancel()

		updated, err := svc.ToggleFollow(ctx, user)
		if err != nil {
			return ErrMsg{Err: err, Context: "following " + user.UserName}
		}
		return UserUpdatedMsg{User: updated}
	}
}

// ToggleReadCmd flips a notification's read flag
func ToggleReadCmd(svc *service.NotificationService, n domain.Notification, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(context.Background(), timeout)
		defer cancel()

		updated, err := svc.ToggleRead(ctx, n)
		if err != nil {
			return ErrMsg{Err: err, Context: "updating notification"}
		}
		return NotificationUpdatedMsg{Notification: updated}
	}
}

// DeleteNotificationCmd deletes a notification
func DeleteNotificationCmd(svc *service.NotificationService, n domain.Notification, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(context.Background(), timeout)
		defer cancel()

		if err := svc.Delete(ctx, n); err != nil {
			return ErrMsg{Err: err, Context: "deleting notification"}
		}
		return NotificationDeletedMsg{NotificationID: n.ID}
	}
}

// ClearStatusCmd clears the status message after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

// StatusCmd emits a status message
func StatusCmd(message string, isError bool) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Message: message, IsError: isError}
	}
}
