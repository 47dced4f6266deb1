package main

import (
	"path/filepath"
	"testing"

	"github.com/mmcdole/instalike/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points config, data and logs at a temporary home
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("INSTALIKE_STORAGE_PATH", filepath.Join(home, "data"))
	t.Setenv("INSTALIKE_LOGGING_FILE", filepath.Join(home, "instalike.log"))
	return home
}

func TestRun_FailingCommandClosesStore(t *testing.T) {
	home := isolate(t)
	t.Setenv("INSTALIKE_SERVER_URL", "http://127.0.0.1:1")

	err := run([]string{"whoami"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logged in")

	// bbolt holds an exclusive file lock until Close
	st, err := store.NewSessionStore(filepath.Join(home, "data"), "http://127.0.0.1:1")
	require.NoError(t, err)
	require.NoError(t, st.Close())
}

func TestRun_HelpSkipsSetup(t *testing.T) {
	isolate(t)

	// Without a server URL setup would prompt on stdin
	require.NoError(t, run([]string{"help"}))
}

func TestNeedsSetup(t *testing.T) {
	root := newRootCmd(&app{})
	root.InitDefaultHelpCmd()
	root.InitDefaultCompletionCmd()

	for _, tc := range []struct {
		args []string
		want bool
	}{
		{[]string{"help"}, false},
		{[]string{"completion", "bash"}, false},
		{[]string{"feed"}, true},
		{[]string{"profile"}, true},
		{nil, true},
	} {
		cmd, _, err := root.Find(tc.args)
		require.NoError(t, err)
		assert.Equal(t, tc.want, needsSetup(cmd), "%v", tc.args)
	}
}
