package tui

import (
	"slices"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/instalike/internal/domain"
	"github.com/mmcdole/instalike/internal/tui/components"
)

// postScreen shows one post with its comments
type postScreen struct {
	screenBase

	postID   int64
	post     *domain.Post
	comments *components.ListColumn[domain.Comment]
}

func newPostScreen(svc *Services, post domain.Post) *postScreen {
	s := newPostScreenByID(svc, post.ID)
	s.post = &post
	return s
}

func newPostScreenByID(svc *Services, postID int64) *postScreen {
	s := &postScreen{
		screenBase: newScreenBase(svc),
		postID:     postID,
	}
	s.comments = components.NewListColumn[domain.Comment]("Comments", components.CommentRowHeight, components.RenderCommentRow)
	s.comments.SetEmptyText("No comments yet, press c to write one")
	s.comments.SetFocused(true)
	return s
}

func (s *postScreen) Title() string {
	if s.post != nil {
		return "Post by @" + s.post.Owner.UserName
	}
	return "Post"
}

func (s *postScreen) Init() tea.Cmd {
	s.comments.SetLoading(true)
	return tea.Batch(
		LoadPostCmd(s.id, s.ctx, s.svc.Posts, s.postID, s.svc.Timeout),
		LoadCommentsCmd(s.id, s.ctx, s.svc.Posts, s.postID, s.svc.Timeout),
	)
}

func (s *postScreen) Update(msg tea.Msg) tea.Cmd {
	defer s.layout()

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return s.handleKey(msg)

	case PostLoadedMsg:
		if msg.ScreenID != s.id || s.closed() {
			return nil
		}
		if msg.Err != nil {
			s.banner = LoadErrorText(msg.Err, "post")
			if domain.KindOf(msg.Err) == domain.KindNotFound {
				s.post = nil
			}
			return nil
		}
		s.post = msg.Post

	case CommentsLoadedMsg:
		if msg.ScreenID != s.id || s.closed() {
			return nil
		}
		s.comments.SetLoading(false)
		if msg.Err != nil {
			if s.banner == "" {
				s.banner = LoadErrorText(msg.Err, "comments")
			}
			return nil
		}
		s.comments.SetItems(msg.Comments)
		s.comments.SetTitle(commentsTitle(len(msg.Comments)))

	case PostUpdatedMsg:
		if msg.Post.ID == s.postID {
			post := msg.Post
			s.post = &post
		}

	case PostDeletedMsg:
		if msg.PostID == s.postID {
			return closeScreen(s.id)
		}

	case CommentChangedMsg:
		if msg.PostID != s.postID {
			return nil
		}
		return s.applyComment(msg)
	}
	return nil
}

// applyComment updates the comment list and, for additions and deletions,
// the post's counter everywhere it is shown
func (s *postScreen) applyComment(msg CommentChangedMsg) tea.Cmd {
	items := slices.Clone(s.comments.Items())
	delta := 0

	switch {
	case msg.Deleted != 0:
		items = slices.DeleteFunc(items, func(c domain.Comment) bool { return c.ID == msg.Deleted })
		delta = -1
	case msg.Comment != nil && msg.Added:
		items = append(items, *msg.Comment)
		delta = 1
	case msg.Comment != nil:
		for i := range items {
			if items[i].ID == msg.Comment.ID {
				items[i] = *msg.Comment
			}
		}
	}
	s.comments.SetItems(items)
	s.comments.SetTitle(commentsTitle(len(items)))

	if delta == 0 || s.post == nil {
		return nil
	}
	post := *s.post
	post.CommentsCount = max(post.CommentsCount+delta, 0)
	return broadcast(PostUpdatedMsg{Post: post})
}

func (s *postScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	if s.comments.IsFilterTyping() {
		return s.comments.Update(msg)
	}
	if s.post == nil {
		return s.comments.Update(msg)
	}

	post := *s.post
	comment, selected := s.comments.Selected()
	posts := s.svc.Posts
	timeout := s.svc.Timeout

	switch {
	case key.Matches(msg, Keys.Refresh):
		return s.Init()

	case key.Matches(msg, Keys.Like):
		return ToggleLikeCmd(posts, post, timeout)

	case key.Matches(msg, Keys.Author):
		return openScreen(newProfileScreen(s.svc, post.Owner.ID))

	case key.Matches(msg, Keys.Enter):
		if selected {
			return openScreen(newProfileScreen(s.svc, comment.Owner.ID))
		}
		return nil

	case key.Matches(msg, Keys.Comment):
		if post.HasCommentsDisabled {
			return StatusCmd("Comments are disabled on this post", true)
		}
		return prompt("Add a comment", "Write a comment...", "", func(text string) tea.Cmd {
			return AddCommentCmd(posts, post, text, timeout)
		})

	case key.Matches(msg, Keys.Edit):
		if !selected {
			return nil
		}
		if !s.isMe(comment.Owner.ID) {
			return StatusCmd("You can only edit your own comments", true)
		}
		return prompt("Edit comment", "", comment.Text, func(text string) tea.Cmd {
			return EditCommentCmd(posts, post.ID, comment.ID, text, timeout)
		})

	case key.Matches(msg, Keys.Delete):
		if !selected {
			return nil
		}
		if !s.isMe(comment.Owner.ID) && !s.isMe(post.Owner.ID) {
			return StatusCmd("You can only delete your own comments", true)
		}
		return confirm("Delete this comment?", DeleteCommentCmd(posts, post.ID, comment.ID, timeout))

	case key.Matches(msg, Keys.EditCaption):
		if !s.isMe(post.Owner.ID) {
			return StatusCmd("You can only edit your own posts", true)
		}
		return prompt("Edit caption", "", post.Caption, func(text string) tea.Cmd {
			return EditCaptionCmd(posts, post, text, timeout)
		})

	case key.Matches(msg, Keys.DeletePost):
		if !s.isMe(post.Owner.ID) {
			return StatusCmd("You can only delete your own posts", true)
		}
		return confirm("Delete this post?", DeletePostCmd(posts, post.ID, timeout))
	}

	return s.comments.Update(msg)
}

func commentsTitle(n int) string {
	if n == 1 {
		return "1 comment"
	}
	return strconv.Itoa(n) + " comments"
}

func (s *postScreen) header() string {
	if s.post == nil {
		return ""
	}
	return components.RenderPostDetail(*s.post, s.width)
}

func (s *postScreen) layout() {
	_, h := s.stack(s.header())
	s.comments.SetSize(s.width, h)
}

func (s *postScreen) View() string {
	head, _ := s.stack(s.header())
	if head == "" {
		return s.comments.View()
	}
	return head + "\n" + s.comments.View()
}

func (s *postScreen) SetSize(width, height int) {
	s.width, s.height = width, height
	s.layout()
}

func (s *postScreen) SetSpinner(frame string) { s.comments.SetIndicator(frame) }

func (s *postScreen) IsFiltering() bool { return s.comments.IsFiltering() }

func (s *postScreen) IsFilterTyping() bool { return s.comments.IsFilterTyping() }

func prompt(title, placeholder, value string, onSubmit func(string) tea.Cmd) tea.Cmd {
	return func() tea.Msg {
		return PromptMsg{Title: title, Placeholder: placeholder, Value: value, OnSubmit: onSubmit}
	}
}

func confirm(question string, onConfirm tea.Cmd) tea.Cmd {
	return func() tea.Msg {
		return ConfirmMsg{Question: question, OnConfirm: onConfirm}
	}
}
