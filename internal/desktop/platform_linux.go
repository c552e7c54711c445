//go:build linux

package desktop

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// x11Backend drives an X11 session through xdotool, wmctrl, xprop and pactl.
type x11Backend struct {
	run runner
}

func init() {
	Current = &x11Backend{run: execRunner}
}

func (b *x11Backend) Name() string {
	return "x11"
}

func (b *x11Backend) ListWindows(ctx context.Context, class string) ([]WindowRef, error) {
	out, err := b.run(ctx, "xdotool", "search", "--onlyvisible", "--class", class)
	if err != nil {
		// xdotool exits 1 with no output when nothing matches.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(bytes.TrimSpace(out)) == 0 {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to search windows: %w", err)
	}

	ids, err := parseHandles(out)
	if err != nil {
		return nil, err
	}

	windows := make([]WindowRef, 0, len(ids))
	for _, h := range ids {
		title, err := b.run(ctx, "xdotool", "getwindowname", winID(h))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Closed between search and lookup.
			continue
		}
		ref := WindowRef{Handle: h, Title: strings.TrimSpace(string(title))}
		if pid, err := b.run(ctx, "xdotool", "getwindowpid", winID(h)); err == nil {
			ref.PID, _ = strconv.Atoi(strings.TrimSpace(string(pid)))
		}
		windows = append(windows, ref)
	}
	return windows, nil
}

func (b *x11Backend) Bounds(ctx context.Context, h Handle) (Rect, error) {
	out, err := b.run(ctx, "xdotool", "getwindowgeometry", "--shell", winID(h))
	if err != nil {
		return Rect{}, fmt.Errorf("%w: %s: %v", ErrWindowGone, h, err)
	}
	return parseGeometry(out)
}

func (b *x11Backend) WorkArea(ctx context.Context) (Rect, error) {
	if out, err := b.run(ctx, "xprop", "-root", "_NET_WORKAREA"); err == nil {
		if r, err := parseWorkArea(out); err == nil {
			return r, nil
		}
	}

	out, err := b.run(ctx, "xdotool", "getdisplaygeometry")
	if err != nil {
		return Rect{}, fmt.Errorf("failed to get display geometry: %w", err)
	}
	fields := strings.Fields(string(out))
	if len(fields) != 2 {
		return Rect{}, fmt.Errorf("unexpected display geometry %q", strings.TrimSpace(string(out)))
	}
	w, errW := strconv.Atoi(fields[0])
	h, errH := strconv.Atoi(fields[1])
	if errW != nil || errH != nil {
		return Rect{}, fmt.Errorf("unexpected display geometry %q", strings.TrimSpace(string(out)))
	}
	return Rect{Width: w, Height: h}, nil
}

func (b *x11Backend) Place(ctx context.Context, h Handle, r Rect) error {
	id := winID(h)
	if _, err := b.run(ctx, "xdotool", "windowsize", id, strconv.Itoa(r.Width), strconv.Itoa(r.Height)); err != nil {
		return b.windowErr(ctx, h, "resize", err)
	}
	if _, err := b.run(ctx, "xdotool", "windowmove", id, strconv.Itoa(r.X), strconv.Itoa(r.Y)); err != nil {
		return b.windowErr(ctx, h, "move", err)
	}
	return nil
}

func (b *x11Backend) Activate(ctx context.Context, h Handle) error {
	if _, err := b.run(ctx, "xdotool", "windowactivate", "--sync", winID(h)); err != nil {
		return b.windowErr(ctx, h, "activate", err)
	}
	return nil
}

func (b *x11Backend) MoveCursor(ctx context.Context, x, y int) error {
	_, err := b.run(ctx, "xdotool", "mousemove", strconv.Itoa(x), strconv.Itoa(y))
	return err
}

func (b *x11Backend) PointerDown(ctx context.Context) error {
	_, err := b.run(ctx, "xdotool", "mousedown", "1")
	return err
}

func (b *x11Backend) PointerUp(ctx context.Context) error {
	_, err := b.run(ctx, "xdotool", "mouseup", "1")
	return err
}

func (b *x11Backend) Close(ctx context.Context, h Handle) error {
	// wmctrl sends _NET_CLOSE_WINDOW, which lets the browser close gracefully.
	if _, err := b.run(ctx, "wmctrl", "-i", "-c", h.String()); err != nil {
		return b.windowErr(ctx, h, "close", err)
	}
	return nil
}

func (b *x11Backend) Foreground(ctx context.Context) (Handle, error) {
	out, err := b.run(ctx, "xdotool", "getactivewindow")
	if err != nil {
		return 0, fmt.Errorf("failed to get active window: %w", err)
	}
	ids, err := parseHandles(out)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("no active window")
	}
	return ids[0], nil
}

// ToggleMute flips the default sink's mute state. PulseAudio mute is
// system-wide, so the target window only matters on backends with
// per-window media commands.
func (b *x11Backend) ToggleMute(ctx context.Context, h Handle) error {
	if _, err := b.run(ctx, "pactl", "set-sink-mute", "@DEFAULT_SINK@", "toggle"); err != nil {
		return fmt.Errorf("failed to toggle mute: %w", err)
	}
	return nil
}

// windowErr reports ErrWindowGone when the failure was caused by the window
// disappearing.
func (b *x11Backend) windowErr(ctx context.Context, h Handle, op string, err error) error {
	if ctx.Err() == nil {
		if _, probe := b.run(ctx, "xdotool", "getwindowname", winID(h)); probe != nil {
			return fmt.Errorf("%w: %s %s", ErrWindowGone, op, h)
		}
	}
	return fmt.Errorf("failed to %s window %s: %w", op, h, err)
}

func winID(h Handle) string {
	return strconv.FormatUint(uint64(h), 10)
}

func parseHandles(out []byte) ([]Handle, error) {
	var ids []Handle
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		id, err := strconv.ParseUint(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unexpected window id %q: %w", line, err)
		}
		ids = append(ids, Handle(id))
	}
	return ids, sc.Err()
}

// parseGeometry reads `xdotool getwindowgeometry --shell` output.
func parseGeometry(out []byte) (Rect, error) {
	var r Rect
	found := 0
	for _, line := range strings.Split(string(out), "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		switch key {
		case "X":
			r.X = n
		case "Y":
			r.Y = n
		case "WIDTH":
			r.Width = n
		case "HEIGHT":
			r.Height = n
		default:
			continue
		}
		found++
	}
	if found < 4 {
		return Rect{}, fmt.Errorf("incomplete window geometry %q", strings.TrimSpace(string(out)))
	}
	return r, nil
}

// parseWorkArea reads the first desktop's work area from
// `xprop -root _NET_WORKAREA`, e.g. "_NET_WORKAREA(CARDINAL) = 0, 27, 1920, 1053".
func parseWorkArea(out []byte) (Rect, error) {
	_, values, ok := strings.Cut(string(out), "=")
	if !ok {
		return Rect{}, fmt.Errorf("unexpected work area %q", strings.TrimSpace(string(out)))
	}
	parts := strings.Split(values, ",")
	if len(parts) < 4 {
		return Rect{}, fmt.Errorf("unexpected work area %q", strings.TrimSpace(string(out)))
	}
	var n [4]int
	for i := 0; i < 4; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return Rect{}, fmt.Errorf("unexpected work area %q: %w", strings.TrimSpace(string(out)), err)
		}
		n[i] = v
	}
	return Rect{X: n[0], Y: n[1], Width: n[2], Height: n[3]}, nil
}
