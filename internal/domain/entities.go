package domain

import (
	"strings"
	"time"
)

// NotificationType identifies what triggered a notification
type NotificationType string

const (
	NotificationLike    NotificationType = "user_has_liked_your_post"
	NotificationFollow  NotificationType = "user_has_followed_you"
	NotificationComment NotificationType = "user_has_commented_your_post"
)

// User is an Instalike account as returned by the API
type User struct {
	ID                 int64     `json:"id"`
	Email              string    `json:"email,omitempty"`
	UserName           string    `json:"userName"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	FullName           string    `json:"fullName"`
	Biography          string    `json:"biography,omitempty"`
	Avatar             *string   `json:"avatar"`
	FollowersCount     int       `json:"followersCount"`
	FollowingCount     int       `json:"followingCount"`
	IsFollowedByViewer bool      `json:"isFollowedByViewer"`
	CreatedAt          time.Time `json:"createdAt"`
}

// GetID returns the user's identity key
func (u User) GetID() int64 { return u.ID }

// DisplayName returns the full name, falling back to the handle
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.UserName
}

// HasAvatar reports whether the user has uploaded an avatar
func (u User) HasAvatar() bool {
	return u.Avatar != nil && *u.Avatar != ""
}

// Resource is a media attachment on a post
type Resource struct {
	ID   int64  `json:"id"`
	Src  string `json:"src"`
	Type string `json:"type"`
}

// Dimensions is the aspect hint the API attaches to posts
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Comment is a text reply on a post
type Comment struct {
	ID        int64     `json:"id"`
	Owner     User      `json:"owner"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GetID returns the comment's identity key
func (c Comment) GetID() int64 { return c.ID }

// Edited reports whether the comment changed after creation
func (c Comment) Edited() bool {
	return c.UpdatedAt.After(c.CreatedAt)
}

// Post is a published photo post
type Post struct {
	ID                  int64       `json:"id"`
	Owner               User        `json:"owner"`
	Caption             string      `json:"caption"`
	Location            string      `json:"location"`
	Resources           []Resource  `json:"resources"`
	Dimensions          *Dimensions `json:"dimensions,omitempty"`
	LikesCount          int         `json:"likesCount"`
	CommentsCount       int         `json:"commentsCount"`
	ViewerHasLiked      bool        `json:"viewerHasLiked"`
	HasCommentsDisabled bool        `json:"hasCommentsDisabled"`
	PreviewLikes        []User      `json:"previewLikes"`
	PreviewComments     []Comment   `json:"previewComments"`
	CreatedAt           time.Time   `json:"createdAt"`
	UpdatedAt           time.Time   `json:"updatedAt"`
}

// GetID returns the post's identity key
func (p Post) GetID() int64 { return p.ID }

// Edited reports whether the post changed after creation
func (p Post) Edited() bool {
	return p.UpdatedAt.After(p.CreatedAt)
}

// NotificationData carries the subjects of a notification
type NotificationData struct {
	User *User `json:"user,omitempty"`
	Post *Post `json:"post,omitempty"`
}

// Notification is an activity entry for the logged user
type Notification struct {
	ID        int64            `json:"id"`
	Type      NotificationType `json:"type"`
	IsRead    bool             `json:"isRead"`
	Data      NotificationData `json:"data"`
	CreatedAt time.Time        `json:"createdAt"`
}

// GetID returns the notification's identity key
func (n Notification) GetID() int64 { return n.ID }

// Summary renders a one-line description of the notification
func (n Notification) Summary() string {
	who := "Someone"
	if n.Data.User != nil {
		who = n.Data.User.UserName
	}
	switch n.Type {
	case NotificationLike:
		return who + " liked your post"
	case NotificationFollow:
		return who + " started following you"
	case NotificationComment:
		return who + " commented on your post"
	default:
		return who + " interacted with you"
	}
}

// CountUnread returns the number of unread notifications
func CountUnread(notifications []Notification) int {
	count := 0
	for _, n := range notifications {
		if !n.IsRead {
			count++
		}
	}
	return count
}

// AuthJWT is the token payload returned by login and refresh
type AuthJWT struct {
	AccessToken string `json:"accessToken"`
}

// Credentials are the login form inputs
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate is the editable subset of the logged user's details
type ProfileUpdate struct {
	Email     string `json:"email,omitempty"`
	UserName  string `json:"userName,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Biography string `json:"biography,omitempty"`
}

// PasswordChange is the body of a password update
type PasswordChange struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// PostUpdate is the body of a post edit
type PostUpdate struct {
	Caption             string `json:"caption"`
	HasCommentsDisabled bool   `json:"hasCommentsDisabled"`
}
