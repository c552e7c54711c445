//go:build darwin

package desktop

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// macBackend drives macOS through osascript. System Events windows carry no
// stable identity, so window handles are the browser's own AppleScript
// window ids (Chrome and Safari both answer to `window id N`) and the
// window class is the application name, e.g. "Google Chrome".
type macBackend struct {
	run runner

	mu sync.Mutex
	// app is the application named by the last ListWindows call. Handles
	// are only meaningful inside it.
	app    string
	cursor [2]int
}

func init() {
	Current = &macBackend{run: execRunner}
}

func (b *macBackend) Name() string {
	return "macos"
}

const listWindowsScript = `if application "%[1]s" is running then
	tell application "%[1]s"
		set out to ""
		repeat with w in windows
			if visible of w then set out to out & (id of w as text) & tab & (name of w) & linefeed
		end repeat
		return out
	end tell
end if`

func (b *macBackend) ListWindows(ctx context.Context, class string) ([]WindowRef, error) {
	b.mu.Lock()
	b.app = class
	b.mu.Unlock()

	out, err := b.osa(ctx, fmt.Sprintf(listWindowsScript, quote(class)))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s windows: %w", class, err)
	}
	if out == "" {
		return nil, nil
	}

	// Chrome runs all its windows in one process.
	pid := 0
	if p, err := b.osa(ctx, fmt.Sprintf(`tell application "System Events" to get unix id of process "%s"`, quote(class))); err == nil {
		pid, _ = strconv.Atoi(p)
	}

	var windows []WindowRef
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		id, title, _ := strings.Cut(sc.Text(), "\t")
		n, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
		if err != nil {
			continue
		}
		windows = append(windows, WindowRef{Handle: Handle(n), PID: pid, Title: strings.TrimSpace(title)})
	}
	return windows, sc.Err()
}

func (b *macBackend) Bounds(ctx context.Context, h Handle) (Rect, error) {
	app, err := b.application()
	if err != nil {
		return Rect{}, err
	}
	out, err := b.osa(ctx, fmt.Sprintf(`tell application "%s" to get bounds of window id %d`, quote(app), h))
	if err != nil {
		return Rect{}, windowErr(h, "get bounds of", err)
	}
	return parseBounds(out)
}

// WorkArea returns the desktop bounds reported by Finder, menu bar included.
func (b *macBackend) WorkArea(ctx context.Context) (Rect, error) {
	out, err := b.osa(ctx, `tell application "Finder" to get bounds of window of desktop`)
	if err != nil {
		return Rect{}, fmt.Errorf("failed to get desktop bounds: %w", err)
	}
	return parseBounds(out)
}

func (b *macBackend) Place(ctx context.Context, h Handle, r Rect) error {
	app, err := b.application()
	if err != nil {
		return err
	}
	script := fmt.Sprintf(`tell application "%s" to set bounds of window id %d to {%d, %d, %d, %d}`,
		quote(app), h, r.X, r.Y, r.X+r.Width, r.Y+r.Height)
	if _, err := b.osa(ctx, script); err != nil {
		return windowErr(h, "place", err)
	}
	return nil
}

func (b *macBackend) Activate(ctx context.Context, h Handle) error {
	app, err := b.application()
	if err != nil {
		return err
	}
	script := fmt.Sprintf(`tell application "%s"
	set index of window id %d to 1
	activate
end tell`, quote(app), h)
	if _, err := b.osa(ctx, script); err != nil {
		return windowErr(h, "activate", err)
	}
	return nil
}

// MoveCursor only records the target. System Events can click at a point
// but cannot move the pointer or hold a button, so the whole click is
// delivered by PointerUp.
func (b *macBackend) MoveCursor(ctx context.Context, x, y int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cursor = [2]int{x, y}
	return nil
}

func (b *macBackend) PointerDown(ctx context.Context) error {
	return nil
}

func (b *macBackend) PointerUp(ctx context.Context) error {
	b.mu.Lock()
	x, y := b.cursor[0], b.cursor[1]
	b.mu.Unlock()

	if _, err := b.osa(ctx, fmt.Sprintf(`tell application "System Events" to click at {%d, %d}`, x, y)); err != nil {
		return fmt.Errorf("failed to click at %d,%d: %w", x, y, err)
	}
	return nil
}

func (b *macBackend) Close(ctx context.Context, h Handle) error {
	app, err := b.application()
	if err != nil {
		return err
	}
	if _, err := b.osa(ctx, fmt.Sprintf(`tell application "%s" to close window id %d`, quote(app), h)); err != nil {
		return windowErr(h, "close", err)
	}
	return nil
}

// Foreground returns the pid of the frontmost application. Output mute is
// system-wide on macOS, so the mute target only needs to be non-zero.
func (b *macBackend) Foreground(ctx context.Context) (Handle, error) {
	out, err := b.osa(ctx, `tell application "System Events" to get unix id of first process whose frontmost is true`)
	if err != nil {
		return 0, fmt.Errorf("failed to get frontmost application: %w", err)
	}
	pid, err := strconv.ParseUint(out, 10, 64)
	if err != nil || pid == 0 {
		return 0, fmt.Errorf("unexpected frontmost pid %q", out)
	}
	return Handle(pid), nil
}

func (b *macBackend) ToggleMute(ctx context.Context, h Handle) error {
	if _, err := b.osa(ctx, `set volume output muted (not (output muted of (get volume settings)))`); err != nil {
		return fmt.Errorf("failed to toggle mute: %w", err)
	}
	return nil
}

func (b *macBackend) osa(ctx context.Context, script string) (string, error) {
	out, err := b.run(ctx, "osascript", "-e", script)
	return strings.TrimSpace(string(out)), err
}

func (b *macBackend) application() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.app == "" {
		return "", fmt.Errorf("no browser application selected; list its windows first")
	}
	return b.app, nil
}

// windowErr maps AppleScript's errAENoSuchObject (-1728) to ErrWindowGone.
func windowErr(h Handle, op string, err error) error {
	if strings.Contains(err.Error(), "(-1728)") {
		return fmt.Errorf("%w: %s %s", ErrWindowGone, op, h)
	}
	return fmt.Errorf("failed to %s window %s: %w", op, h, err)
}

// quote escapes s for use inside an AppleScript string literal.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// parseBounds reads an AppleScript bounds list "left, top, right, bottom".
func parseBounds(out string) (Rect, error) {
	parts := strings.Split(out, ",")
	if len(parts) != 4 {
		return Rect{}, fmt.Errorf("unexpected bounds %q", out)
	}
	var n [4]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Rect{}, fmt.Errorf("unexpected bounds %q: %w", out, err)
		}
		n[i] = v
	}
	return Rect{X: n[0], Y: n[1], Width: n[2] - n[0], Height: n[3] - n[1]}, nil
}
