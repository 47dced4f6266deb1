// Package instalike is the REST client for the Instalike API. Every call
// goes through the request gateway, which owns authentication.
package instalike

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mmcdole/instalike/internal/domain"
)

// Sender is the gateway contract the client needs
type Sender interface {
	Send(ctx context.Context, method, path string, query url.Values, body, out any) error
}

// Client implements domain.AuthRepository, domain.UserRepository,
// domain.PostRepository and domain.NotificationRepository
type Client struct {
	api    Sender
	logger *slog.Logger
}

var (
	_ domain.AuthRepository         = (*Client)(nil)
	_ domain.UserRepository         = (*Client)(nil)
	_ domain.PostRepository         = (*Client)(nil)
	_ domain.NotificationRepository = (*Client)(nil)
)

// NewClient creates a new Instalike API client
func NewClient(api Sender, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{api: api, logger: logger}
}

// userPath addresses a user; domain.Me is the logged user
func userPath(userID int64) string {
	if userID == domain.Me {
		return "/users/me"
	}
	return "/users/" + strconv.FormatInt(userID, 10)
}

func postPath(postID int64) string {
	return "/posts/" + strconv.FormatInt(postID, 10)
}

func cursorQuery(cursor string) url.Values {
	if cursor == "" {
		return nil
	}
	return url.Values{"cursor": {cursor}}
}

// === Auth ===

// Login exchanges credentials for an access token
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthJWT, error) {
	var jwt domain.AuthJWT
	if err := c.api.Send(ctx, http.MethodPost, "/auth/login", nil, creds, &jwt); err != nil {
		return nil, err
	}
	if jwt.AccessToken == "" {
		return nil, fmt.Errorf("login response carries no access token")
	}
	return &jwt, nil
}

// Logout revokes the current token
func (c *Client) Logout(ctx context.Context) error {
	return c.api.Send(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// === Users ===

func (c *Client) GetMe(ctx context.Context) (*domain.User, error) {
	return c.GetUser(ctx, domain.Me)
}

func (c *Client) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	var user domain.User
	if err := c.api.Send(ctx, http.MethodGet, userPath(userID), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateMe(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	var user domain.User
	if err := c.api.Send(ctx, http.MethodPut, "/users/me", nil, update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdatePassword(ctx context.Context, change domain.PasswordChange) error {
	return c.api.Send(ctx, http.MethodPut, "/users/me/password", nil, change, nil)
}

func (c *Client) DeleteAvatar(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.api.Send(ctx, http.MethodDelete, "/users/me/avatar", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) GetFollowers(ctx context.Context, userID int64) ([]domain.User, error) {
	return c.getUsers(ctx, userPath(userID)+"/followers")
}

func (c *Client) GetFollowing(ctx context.Context, userID int64) ([]domain.User, error) {
	return c.getUsers(ctx, userPath(userID)+"/following")
}

func (c *Client) GetFollowSuggestions(ctx context.Context) ([]domain.User, error) {
	return c.getUsers(ctx, "/users/me/follow-suggestions")
}

// getUsers accepts both a bare array and a paged envelope
func (c *Client) getUsers(ctx context.Context, path string) ([]domain.User, error) {
	var page domain.Page[domain.User]
	if err := c.api.Send(ctx, http.MethodGet, path, nil, nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (c *Client) Follow(ctx context.Context, userID int64) error {
	path := fmt.Sprintf("/users/me/followers/%d/follow", userID)
	return c.api.Send(ctx, http.MethodPost, path, nil, nil, nil)
}

func (c *Client) Unfollow(ctx context.Context, userID int64) error {
	path := fmt.Sprintf("/users/me/followers/%d/follow", userID)
	return c.api.Send(ctx, http.MethodDelete, path, nil, nil, nil)
}

// === Posts ===

// GetFeed returns one page of the logged user's home feed
func (c *Client) GetFeed(ctx context.Context, cursor string) (domain.Page[domain.Post], error) {
	return c.getPosts(ctx, "/users/me/feed", cursor)
}

// GetUserPosts returns one page of a user's own posts
func (c *Client) GetUserPosts(ctx context.Context, userID int64, cursor string) (domain.Page[domain.Post], error) {
	return c.getPosts(ctx, userPath(userID)+"/posts", cursor)
}

func (c *Client) getPosts(ctx context.Context, path, cursor string) (domain.Page[domain.Post], error) {
	var page domain.Page[domain.Post]
	if err := c.api.Send(ctx, http.MethodGet, path, cursorQuery(cursor), nil, &page); err != nil {
		return domain.Page[domain.Post]{}, err
	}
	c.logger.Debug("fetched posts", "path", path, "count", len(page.Items), "hasMore", page.HasMorePages)
	return page, nil
}

func (c *Client) GetPost(ctx context.Context, postID int64) (*domain.Post, error) {
	var post domain.Post
	if err := c.api.Send(ctx, http.MethodGet, postPath(postID), nil, nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) UpdatePost(ctx context.Context, postID int64, update domain.PostUpdate) (*domain.Post, error) {
	var post domain.Post
	if err := c.api.Send(ctx, http.MethodPut, postPath(postID), nil, update, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) DeletePost(ctx context.Context, postID int64) error {
	return c.api.Send(ctx, http.MethodDelete, postPath(postID), nil, nil, nil)
}

func (c *Client) Like(ctx context.Context, postID int64) error {
	return c.api.Send(ctx, http.MethodPost, postPath(postID)+"/like", nil, nil, nil)
}

func (c *Client) Unlike(ctx context.Context, postID int64) error {
	return c.api.Send(ctx, http.MethodDelete, postPath(postID)+"/like", nil, nil, nil)
}

// === Comments ===

type commentBody struct {
	Text string `json:"text"`
}

func (c *Client) GetComments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	var page domain.Page[domain.Comment]
	if err := c.api.Send(ctx, http.MethodGet, postPath(postID)+"/comments", nil, nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (c *Client) AddComment(ctx context.Context, postID int64, text string) (*domain.Comment, error) {
	var comment domain.Comment
	err := c.api.Send(ctx, http.MethodPost, postPath(postID)+"/comments", nil, commentBody{Text: text}, &comment)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *Client) EditComment(ctx context.Context, postID, commentID int64, text string) (*domain.Comment, error) {
	var comment domain.Comment
	path := fmt.Sprintf("%s/comments/%d", postPath(postID), commentID)
	if err := c.api.Send(ctx, http.MethodPut, path, nil, commentBody{Text: text}, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *Client) DeleteComment(ctx context.Context, postID, commentID int64) error {
	path := fmt.Sprintf("%s/comments/%d", postPath(postID), commentID)
	return c.api.Send(ctx, http.MethodDelete, path, nil, nil, nil)
}

// === Notifications ===

// GetNotifications returns the logged user's notifications. The API may
// answer with a bare array, which decodes as a single final page.
func (c *Client) GetNotifications(ctx context.Context, cursor string) (domain.Page[domain.Notification], error) {
	var page domain.Page[domain.Notification]
	err := c.api.Send(ctx, http.MethodGet, "/users/me/notifications", cursorQuery(cursor), nil, &page)
	if err != nil {
		return domain.Page[domain.Notification]{}, err
	}
	return page, nil
}

func (c *Client) MarkRead(ctx context.Context, notificationID int64) error {
	path := fmt.Sprintf("/users/me/notifications/%d/read", notificationID)
	return c.api.Send(ctx, http.MethodPost, path, nil, nil, nil)
}

func (c *Client) MarkUnread(ctx context.Context, notificationID int64) error {
	path := fmt.Sprintf("/users/me/notifications/%d/read", notificationID)
	return c.api.Send(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) DeleteNotification(ctx context.Context, notificationID int64) error {
	path := fmt.Sprintf("/users/me/notifications/%d", notificationID)
	return c.api.Send(ctx, http.MethodDelete, path, nil, nil, nil)
}
