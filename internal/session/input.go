package session

import (
	"context"
	"fmt"

	"github.com/connorhough/vidresume/internal/desktop"
	"github.com/connorhough/vidresume/internal/layout"
)

// Clicker activates a window and clicks at a fixed offset from its origin.
// The offset assumes the player sits at the same place in every window.
type Clicker struct {
	backend desktop.Backend
	offset  layout.Point
}

// NewClicker creates a Clicker with the given window-relative offset.
func NewClicker(backend desktop.Backend, offset layout.Point) *Clicker {
	return &Clicker{backend: backend, offset: offset}
}

// Target returns the global coordinates a click on w lands on.
func (c *Clicker) Target(w *PositionedWindow) layout.Point {
	return layout.Point{X: w.Origin.X + c.offset.X, Y: w.Origin.Y + c.offset.Y}
}

// Click focuses w and presses then releases the primary button over it.
// desktop.ErrWindowGone is passed through when w no longer exists.
func (c *Clicker) Click(ctx context.Context, w *PositionedWindow) error {
	if err := c.backend.Activate(ctx, w.Handle); err != nil {
		return err
	}
	at := c.Target(w)
	if err := c.backend.MoveCursor(ctx, at.X, at.Y); err != nil {
		return fmt.Errorf("failed to move cursor to %d,%d: %w", at.X, at.Y, err)
	}
	if err := c.backend.PointerDown(ctx); err != nil {
		return fmt.Errorf("failed to press pointer: %w", err)
	}
	// Release even when ctx is done; the button must never stay pressed.
	if err := c.backend.PointerUp(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("failed to release pointer: %w", err)
	}
	return nil
}
