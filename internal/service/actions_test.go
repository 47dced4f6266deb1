package service

import (
	"context"
	"testing"

	"github.com/mmcdole/instalike/internal/domain"
	"github.com/mmcdole/instalike/internal/feed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLike(t *testing.T) {
	api := &fakeAPI{}
	svc := NewPostService(api, nil)

	liked, err := svc.ToggleLike(context.Background(), domain.Post{ID: 1, LikesCount: 2})
	require.NoError(t, err)
	assert.True(t, liked.ViewerHasLiked)
	assert.Equal(t, 3, liked.LikesCount)

	unliked, err := svc.ToggleLike(context.Background(), liked)
	require.NoError(t, err)
	assert.False(t, unliked.ViewerHasLiked)
	assert.Equal(t, 2, unliked.LikesCount)

	assert.Equal(t, []string{"like", "unlike"}, api.called())
}

func TestToggleLike_FailureKeepsPost(t *testing.T) {
	api := &fakeAPI{actionErr: domain.NewAPIError(429, "", nil)}
	svc := NewPostService(api, nil)

	post := domain.Post{ID: 1, LikesCount: 2}
	got, err := svc.ToggleLike(context.Background(), post)
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, post, got)
}

func TestAddComment_Validation(t *testing.T) {
	api := &fakeAPI{}
	svc := NewPostService(api, nil)

	_, err := svc.AddComment(context.Background(), domain.Post{ID: 1}, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.AddComment(context.Background(), domain.Post{ID: 1, HasCommentsDisabled: true}, "hi")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, api.called())

	comment, err := svc.AddComment(context.Background(), domain.Post{ID: 1}, "  great  ")
	require.NoError(t, err)
	assert.Equal(t, "great", comment.Text)
}

func TestToggleFollow(t *testing.T) {
	api := &fakeAPI{}
	svc := NewUserService(api, newTestSession(t), nil)

	followed, err := svc.ToggleFollow(context.Background(), domain.User{ID: 4, FollowersCount: 1})
	require.NoError(t, err)
	assert.True(t, followed.IsFollowedByViewer)
	assert.Equal(t, 2, followed.FollowersCount)

	unfollowed, err := svc.ToggleFollow(context.Background(), followed)
	require.NoError(t, err)
	assert.False(t, unfollowed.IsFollowedByViewer)
	assert.Equal(t, 1, unfollowed.FollowersCount)
}

func TestUpdateProfile_StoresUser(t *testing.T) {
	api := &fakeAPI{me: domain.User{ID: 1}}
	sess := newTestSession(t)
	svc := NewUserService(api, sess, nil)

	_, err := svc.UpdateProfile(context.Background(), domain.ProfileUpdate{UserName: "renamed"})
	require.NoError(t, err)
	require.NotNil(t, sess.User())
	assert.Equal(t, "renamed", sess.User().UserName)
}

func TestUpdateProfile_ValidationFields(t *testing.T) {
	api := &fakeAPI{actionErr: domain.NewAPIError(422, "invalid", map[string][]string{
		"userName": {"already taken"},
	})}
	svc := NewUserService(api, newTestSession(t), nil)

	_, err := svc.UpdateProfile(context.Background(), domain.ProfileUpdate{UserName: "taken"})
	assert.Equal(t, domain.KindValidationFailed, domain.KindOf(err))
	assert.Equal(t, "already taken", domain.ValidationSummary(err))
}

func TestChangePassword_TooShort(t *testing.T) {
	api := &fakeAPI{}
	svc := NewUserService(api, newTestSession(t), nil)

	err := svc.ChangePassword(context.Background(), "secret1", "abc")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, api.called())

	require.NoError(t, svc.ChangePassword(context.Background(), "secret1", "secret2"))
}

func TestRankUsers(t *testing.T) {
	users := []domain.User{
		{ID: 1, UserName: "marie.curie", FullName: "Marie Curie"},
		{ID: 2, UserName: "mcu", FullName: "Max Cu"},
		{ID: 3, UserName: "zed", FullName: "Zed"},
	}

	got := RankUsers(users, "mcu")
	require.NotEmpty(t, got)
	assert.Equal(t, 1, got[0], "closest handle ranks first")
	assert.NotContains(t, got, 2)
}

func TestNotificationToggleAndDelete(t *testing.T) {
	api := &fakeAPI{}
	sess := newTestSession(t)
	svc := NewNotificationService(api, sess, nil)

	count := svc.Recount([]domain.Notification{{ID: 1}, {ID: 2}, {ID: 3, IsRead: true}})
	assert.Equal(t, 2, count)

	read, err := svc.ToggleRead(context.Background(), domain.Notification{ID: 1})
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	assert.Equal(t, 1, svc.UnreadCount())

	unread, err := svc.ToggleRead(context.Background(), read)
	require.NoError(t, err)
	assert.False(t, unread.IsRead)
	assert.Equal(t, 2, svc.UnreadCount())

	require.NoError(t, svc.Delete(context.Background(), domain.Notification{ID: 2}))
	assert.Equal(t, 1, svc.UnreadCount())
	require.NoError(t, svc.Delete(context.Background(), domain.Notification{ID: 3, IsRead: true}))
	assert.Equal(t, 1, svc.UnreadCount())

	assert.Equal(t, []string{"markRead", "markUnread", "deleteNotification", "deleteNotification"}, api.called())
}

func TestFeedService_CollectHome(t *testing.T) {
	api := &fakeAPI{feed: map[string]domain.Page[domain.Post]{
		"": {
			Items:        []domain.Post{{ID: 5}, {ID: 3}},
			NextCursor:   domain.StringPtr("c1"),
			HasMorePages: true,
		},
		"c1": {
			Items: []domain.Post{{ID: 8}, {ID: 1}},
		},
	}}
	svc := NewFeedService(api, api, nil)

	got, err := svc.CollectHome(context.Background(), 0)
	require.NoError(t, err)

	var ids []int64
	for _, p := range got.Items {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{8, 5, 3, 1}, ids)
	assert.False(t, got.HasMorePages)
	assert.True(t, feed.Done(got))
	assert.Equal(t, []string{"feed:", "feed:c1"}, api.called())
}

func TestDeleteAvatar_RequiresAvatar(t *testing.T) {
	api := &fakeAPI{}
	sess := newTestSession(t)
	sess.SetUser(&domain.User{ID: 1})
	svc := NewUserService(api, sess, nil)

	_, err := svc.DeleteAvatar(context.Background())
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, api.called())
}
