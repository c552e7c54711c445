package session

import (
	"context"
	"errors"

	"github.com/connorhough/vidresume/internal/desktop"
)

// MuteGuard brackets a session with a pair of mute toggles sent to the
// window that had focus when the session started. It assumes audio is
// unmuted at start; the closing toggle is only sent after a delivered
// opening toggle, so a failed start never leaves audio muted.
type MuteGuard struct {
	backend  desktop.Backend
	target   desktop.Handle
	captured bool
	engaged  bool
}

// NewMuteGuard creates a guard that has not captured a target yet.
func NewMuteGuard(backend desktop.Backend) *MuteGuard {
	return &MuteGuard{backend: backend}
}

// Target returns the captured window.
func (g *MuteGuard) Target() (desktop.Handle, bool) {
	return g.target, g.captured
}

// Engage captures the focused window and sends the first toggle.
func (g *MuteGuard) Engage(ctx context.Context) error {
	if !g.captured {
		h, err := g.backend.Foreground(ctx)
		if err != nil {
			return err
		}
		if h == 0 {
			return errNoTarget
		}
		g.target, g.captured = h, true
	}
	if g.engaged {
		return nil
	}
	if err := g.backend.ToggleMute(ctx, g.target); err != nil {
		return err
	}
	g.engaged = true
	return nil
}

// Release sends the closing toggle to the window captured by Engage.
func (g *MuteGuard) Release(ctx context.Context) error {
	if !g.engaged {
		return nil
	}
	if err := g.backend.ToggleMute(ctx, g.target); err != nil {
		return err
	}
	g.engaged = false
	return nil
}

// Engaged reports whether audio is currently toggled by this guard.
func (g *MuteGuard) Engaged() bool {
	return g.engaged
}

var errNoTarget = errors.New("no focused window to target")
