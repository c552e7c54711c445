package session

import (
	"context"
	"testing"

	"github.com/connorhough/vidresume/internal/desktop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMuteGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("toggles the captured window twice", func(t *testing.T) {
		b := newFakeBackend(1920)
		g := NewMuteGuard(b)

		require.NoError(t, g.Engage(ctx))
		assert.True(t, g.Engaged())

		// Focus moves to a browser window before the closing toggle.
		b.foreground = 0x1
		require.NoError(t, g.Release(ctx))
		assert.False(t, g.Engaged())

		h, ok := g.Target()
		assert.True(t, ok)
		assert.Equal(t, desktop.Handle(0xf00), h)
		assert.Equal(t, []string{"mute 0xf00", "mute 0xf00"}, b.calls)
	})

	t.Run("release without engage is a no-op", func(t *testing.T) {
		b := newFakeBackend(1920)
		g := NewMuteGuard(b)

		require.NoError(t, g.Release(ctx))
		assert.Empty(t, b.calls)
	})

	t.Run("failed first toggle skips the second", func(t *testing.T) {
		b := newFakeBackend(1920)
		b.failMute = true
		g := NewMuteGuard(b)

		assert.Error(t, g.Engage(ctx))
		b.failMute = false
		require.NoError(t, g.Release(ctx))
		assert.Empty(t, b.calls)
	})

	t.Run("no focused window", func(t *testing.T) {
		b := newFakeBackend(1920)
		b.foreground = 0
		g := NewMuteGuard(b)

		assert.ErrorIs(t, g.Engage(ctx), errNoTarget)
		_, ok := g.Target()
		assert.False(t, ok)
	})
}
