package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcdole/instalike/internal/domain"
)

// PostService handles single-post actions: likes, edits and comments
type PostService struct {
	repo   domain.PostRepository
	logger *slog.Logger
}

// NewPostService creates a new post service
func NewPostService(repo domain.PostRepository, logger *slog.Logger) *PostService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{repo: repo, logger: logger}
}

// GetPost fetches a post by id
func (s *PostService) GetPost(ctx context.Context, postID int64) (*domain.Post, error) {
	return s.repo.GetPost(ctx, postID)
}

// ToggleLike likes the post if the viewer has not, and unlikes it otherwise.
// It returns the post as it should now be displayed.
func (s *PostService) ToggleLike(ctx context.Context, post domain.Post) (domain.Post, error) {
	if post.ViewerHasLiked {
		if err := s.repo.Unlike(ctx, post.ID); err != nil {
			return post, err
		}
		post.ViewerHasLiked = false
		if post.LikesCount > 0 {
			post.LikesCount--
		}
		return post, nil
	}

	if err := s.repo.Like(ctx, post.ID); err != nil {
		return post, err
	}
	post.ViewerHasLiked = true
	post.LikesCount++
	return post, nil
}

// EditCaption updates the caption of one of the logged user's posts
func (s *PostService) EditCaption(ctx context.Context, post domain.Post, caption string) (*domain.Post, error) {
	return s.repo.UpdatePost(ctx, post.ID, domain.PostUpdate{
		Caption:             caption,
		HasCommentsDisabled: post.HasCommentsDisabled,
	})
}

// DeletePost removes one of the logged user's posts
func (s *PostService) DeletePost(ctx context.Context, postID int64) error {
	if err := s.repo.DeletePost(ctx, postID); err != nil {
		return err
	}
	s.logger.Info("post deleted", "post", postID)
	return nil
}

// Comments lists the comments of a post, newest first
func (s *PostService) Comments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	return s.repo.GetComments(ctx, postID)
}

// AddComment posts a comment. Blank text is rejected without a request.
func (s *PostService) AddComment(ctx context.Context, post domain.Post, text string) (*domain.Comment, error) {
	if post.HasCommentsDisabled {
		return nil, fmt.Errorf("%w: comments are disabled on this post", domain.ErrValidation)
	}
	text, err := requireText("comment", text)
	if err != nil {
		return nil, err
	}
	return s.repo.AddComment(ctx, post.ID, text)
}

// EditComment rewrites a comment's text
func (s *PostService) EditComment(ctx context.Context, postID, commentID int64, text string) (*domain.Comment, error) {
	text, err := requireText("comment", text)
	if err != nil {
		return nil, err
	}
	return s.repo.EditComment(ctx, postID, commentID, text)
}

// DeleteComment removes a comment
func (s *PostService) DeleteComment(ctx context.Context, postID, commentID int64) error {
	return s.repo.DeleteComment(ctx, postID, commentID)
}
