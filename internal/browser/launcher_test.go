package browser

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExecLauncher_Defaults(t *testing.T) {
	l := NewExecLauncher("", nil)
	assert.Equal(t, DefaultExecutable(), l.Path)
	assert.Equal(t, DefaultFlags, l.Flags)

	l = NewExecLauncher("/opt/chromium", []string{"--new-window"})
	assert.Equal(t, "/opt/chromium", l.Path)
	assert.Equal(t, []string{"--new-window"}, l.Flags)
}

func TestExecLauncher_MissingExecutable(t *testing.T) {
	l := NewExecLauncher(filepath.Join(t.TempDir(), "no-such-browser"), nil)

	_, err := l.Launch(context.Background(), "https://x/y?t=10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestExecLauncher_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExecLauncher("", nil).Launch(ctx, "https://x/y")
	assert.ErrorIs(t, err, context.Canceled)
}
