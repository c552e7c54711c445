// Package desktop exposes the window-system operations a restore session needs:
// enumerating browser windows, moving them, synthesizing clicks and toggling
// audio mute.
package desktop

import (
	"fmt"
	"strconv"
)

// Handle is an opaque OS window identity, only meaningful for equality.
type Handle uintptr

func (h Handle) String() string {
	return "0x" + strconv.FormatUint(uint64(h), 16)
}

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// WindowRef is a top-level window captured at enumeration time. Two refs are
// the same window iff their handles are equal.
type WindowRef struct {
	Handle Handle
	PID    int
	Title  string
}

// Same reports whether both refs point at the same OS window.
func (w WindowRef) Same(other WindowRef) bool {
	return w.Handle == other.Handle
}

// Diff returns the windows of after whose handle is not present in before,
// in after's enumeration order.
func Diff(before, after []WindowRef) []WindowRef {
	seen := make(map[Handle]struct{}, len(before))
	for _, w := range before {
		seen[w.Handle] = struct{}{}
	}
	var added []WindowRef
	for _, w := range after {
		if _, ok := seen[w.Handle]; !ok {
			added = append(added, w)
		}
	}
	return added
}
