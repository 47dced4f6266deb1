package store

import (
	"testing"

	"github.com/mmcdole/instalike/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStores(t *testing.T) map[string]*SessionStore {
	t.Helper()

	mem, err := NewSessionStore("", "")
	require.NoError(t, err)

	disk, err := NewSessionStore(t.TempDir(), "https://api.instalike.fr")
	require.NoError(t, err)
	t.Cleanup(func() { disk.Close() })

	return map[string]*SessionStore{"memory": mem, "bolt": disk}
}

func TestSessionStore_Token(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok := s.Token()
			assert.False(t, ok, "fresh store is logged out")

			require.NoError(t, s.SaveToken("t1"))
			token, ok := s.Token()
			assert.True(t, ok)
			assert.Equal(t, "t1", token)

			require.NoError(t, s.SaveToken("t2"))
			token, _ = s.Token()
			assert.Equal(t, "t2", token, "last write wins")

			require.NoError(t, s.ClearToken())
			_, ok = s.Token()
			assert.False(t, ok)
		})
	}
}

func TestSessionStore_SaveEmptyTokenClears(t *testing.T) {
	s, err := NewSessionStore("", "")
	require.NoError(t, err)

	require.NoError(t, s.SaveToken("t1"))
	require.NoError(t, s.SaveToken(""))
	_, ok := s.Token()
	assert.False(t, ok)
}

func TestSessionStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewSessionStore(dir, "http://localhost:8080/")
	require.NoError(t, err)
	require.NoError(t, s.SaveToken("persisted"))
	require.NoError(t, s.SaveProfile(&domain.User{ID: 7, UserName: "student"}))
	require.NoError(t, s.Close())

	// Same server, different spelling
	s, err = NewSessionStore(dir, "HTTP://LOCALHOST:8080")
	require.NoError(t, err)
	defer s.Close()

	token, ok := s.Token()
	require.True(t, ok)
	assert.Equal(t, "persisted", token)

	user, ok := s.GetProfile()
	require.True(t, ok)
	assert.Equal(t, int64(7), user.ID)
}

func TestSessionStore_SeparatesServers(t *testing.T) {
	dir := t.TempDir()

	a, err := NewSessionStore(dir, "http://a")
	require.NoError(t, err)
	require.NoError(t, a.SaveToken("a-token"))
	require.NoError(t, a.Close())

	b, err := NewSessionStore(dir, "http://b")
	require.NoError(t, err)
	defer b.Close()

	_, ok := b.Token()
	assert.False(t, ok)
}

func TestSessionStore_InvalidateAll(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.SaveToken("t"))
			require.NoError(t, s.SaveProfile(&domain.User{ID: 1}))
			require.NoError(t, s.SaveUnreadCount(3))

			count, ok := s.GetUnreadCount()
			require.True(t, ok)
			assert.Equal(t, 3, count)

			s.InvalidateAll()

			_, ok = s.Token()
			assert.False(t, ok)
			_, ok = s.GetProfile()
			assert.False(t, ok)
			_, ok = s.GetUnreadCount()
			assert.False(t, ok)
		})
	}
}

func TestSessionStore_ClearedTokenStaysClearedAfterReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := NewSessionStore(dir, "http://localhost:8080")
	require.NoError(t, err)
	require.NoError(t, s.SaveToken("t1"))
	require.NoError(t, s.SaveProfile(&domain.User{ID: 7}))
	require.NoError(t, s.ClearToken())
	require.NoError(t, s.SaveProfile(nil))
	require.NoError(t, s.Close())

	s, err = NewSessionStore(dir, "http://localhost:8080")
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.Token()
	assert.False(t, ok)
	_, ok = s.GetProfile()
	assert.False(t, ok)
}
