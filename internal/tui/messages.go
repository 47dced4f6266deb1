package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/instalike/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// LoggedInMsg signals a successful login or a restored session
type LoggedInMsg struct {
	User *domain.User
}

// LoginFailedMsg signals a rejected login
type LoginFailedMsg struct {
	Err error
}

// RestoreFailedMsg signals a persisted session could not be resumed
type RestoreFailedMsg struct {
	Err error
}

// LoggedOutMsg signals the session was torn down
type LoggedOutMsg struct {
	Err error // server-side logout failure, local state is cleared anyway
}

// PageMsg carries one page of a paginated list back to the screen that
// asked for it. Gen identifies the load, see feed.Loader.
type PageMsg[T any] struct {
	ScreenID int
	Gen      uint64
	Page     domain.Page[T]
	Err      error
}

// UsersLoadedMsg carries a non-paginated user list
type UsersLoadedMsg struct {
	ScreenID int
	Users    []domain.User
	Err      error
}

// CommentsLoadedMsg carries the comments of a post
type CommentsLoadedMsg struct {
	ScreenID int
	Comments []domain.Comment
	Err      error
}

// PostLoadedMsg carries a freshly fetched post
type PostLoadedMsg struct {
	ScreenID int
	Post     *domain.Post
	Err      error
}

// ProfileLoadedMsg carries a freshly fetched user
type ProfileLoadedMsg struct {
	ScreenID int
	User     *domain.User
	Err      error
}

// PostUpdatedMsg signals a post changed (like, caption)
type PostUpdatedMsg struct {
	Post domain.Post
}

// PostDeletedMsg signals a post was deleted
type PostDeletedMsg struct {
	PostID int64
}

// UserUpdatedMsg signals a user changed (follow)
type UserUpdatedMsg struct {
	User domain.User
}

// NotificationUpdatedMsg signals a notification changed (read state)
type NotificationUpdatedMsg struct {
	Notification domain.Notification
}

// NotificationDeletedMsg signals a notification was deleted
type NotificationDeletedMsg struct {
	NotificationID int64
}

// CommentChangedMsg signals a comment was added, edited or deleted
type CommentChangedMsg struct {
	PostID  int64
	Comment *domain.Comment // nil when deleted
	Added   bool
	Deleted int64
}

// PromptMsg asks the model to show the input modal
type PromptMsg struct {
	Title       string
	Placeholder string
	Value       string
	OnSubmit    func(text string) tea.Cmd
}

// OpenScreenMsg pushes a new screen
type OpenScreenMsg struct {
	Screen Screen
}

// CloseScreenMsg pops the screen with ScreenID if it is displayed
type CloseScreenMsg struct {
	ScreenID int
}

// ConfirmMsg asks the user a yes/no question before running OnConfirm
type ConfirmMsg struct {
	Question  string
	OnConfirm tea.Cmd
}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}

// failure is implemented by messages that may carry an API error. The
// model checks them for a lost session before routing.
type failure interface {
	failure() error
}

func (e ErrMsg) failure() error { return e.Err }
func (m RestoreFailedMsg) failure() error { return m.Err }
func (m PageMsg[T]) failure() error { return m.Err }
func (m UsersLoadedMsg) failure() error { return m.Err }
func (m CommentsLoadedMsg) failure() error { return m.Err }
func (m PostLoadedMsg) failure() error { return m.Err }
func (m ProfileLoadedMsg) failure() error { return m.Err }
