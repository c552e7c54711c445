package desktop

import (
	"context"
	"errors"
)

var (
	// ErrWindowGone is returned when a handle no longer names a live window.
	ErrWindowGone = errors.New("window no longer exists")
	// ErrUnsupported is returned when no backend exists for the current OS.
	ErrUnsupported = errors.New("window control is not supported on this platform")
)

// Backend defines the OS window, pointer and audio operations used by a
// restore session.
type Backend interface {
	// Name returns the backend name (e.g., "x11", "win32").
	Name() string

	// ListWindows returns a snapshot of the visible top-level windows whose
	// window class matches class. Windows that vanish mid-enumeration are
	// dropped silently.
	ListWindows(ctx context.Context, class string) ([]WindowRef, error)

	// Bounds returns the current outer bounds of a window.
	Bounds(ctx context.Context, h Handle) (Rect, error)

	// WorkArea returns the usable area of the primary display.
	WorkArea(ctx context.Context) (Rect, error)

	// Place moves and resizes a window without activating it or changing
	// its z-order.
	Place(ctx context.Context, h Handle, r Rect) error

	// Activate brings a window to the foreground with input focus.
	Activate(ctx context.Context, h Handle) error

	// MoveCursor moves the pointer to global screen coordinates.
	MoveCursor(ctx context.Context, x, y int) error

	// PointerDown presses the primary pointer button at the cursor.
	PointerDown(ctx context.Context) error

	// PointerUp releases the primary pointer button at the cursor.
	PointerUp(ctx context.Context) error

	// Close posts a close request to a window.
	Close(ctx context.Context, h Handle) error

	// Foreground returns the window that currently has input focus.
	Foreground(ctx context.Context) (Handle, error)

	// ToggleMute sends a media toggle-mute command targeted at a window.
	ToggleMute(ctx context.Context, h Handle) error
}

// Current holds the backend for the running operating system. It is set by
// the platform-specific files (e.g., platform_linux.go) and stays nil where
// no backend exists.
var Current Backend

// Default returns Current or ErrUnsupported.
func Default() (Backend, error) {
	if Current == nil {
		return nil, ErrUnsupported
	}
	return Current, nil
}
