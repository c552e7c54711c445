package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/connorhough/vidresume/internal/browser"
	"github.com/connorhough/vidresume/internal/desktop"
)

type pendingWindow struct {
	ref   desktop.WindowRef
	polls int
}

// fakeBackend simulates a desktop. Windows launched through fakeLauncher
// appear after a configurable number of ListWindows calls.
type fakeBackend struct {
	mu sync.Mutex

	windows    []desktop.WindowRef
	pending    []pendingWindow
	workArea   desktop.Rect
	foreground desktop.Handle

	gone       map[desktop.Handle]bool
	listErr    error
	listErrAt  int
	listCalls  int
	failFocus  bool
	failMute   bool
	failCursor bool
	// onList runs at the start of every ListWindows call, with its count.
	onList func(call int)

	calls []string
}

func newFakeBackend(width int) *fakeBackend {
	return &fakeBackend{
		workArea:   desktop.Rect{Width: width, Height: 1080},
		foreground: 0xf00,
		gone:       map[desktop.Handle]bool{},
		windows: []desktop.WindowRef{
			{Handle: 0x900, PID: 1, Title: "already open"},
		},
	}
}

func (b *fakeBackend) record(format string, args ...any) {
	b.calls = append(b.calls, fmt.Sprintf(format, args...))
}

// Calls returns the recorded calls, optionally filtered by prefix.
func (b *fakeBackend) Calls(prefix string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, c := range b.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			out = append(out, c)
		}
	}
	return out
}

func (b *fakeBackend) spawn(ref desktop.WindowRef, polls int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, pendingWindow{ref: ref, polls: polls})
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) ListWindows(ctx context.Context, class string) ([]desktop.WindowRef, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listCalls++
	if b.onList != nil {
		b.onList(b.listCalls)
	}
	if b.listErr != nil && b.listCalls >= b.listErrAt {
		return nil, b.listErr
	}

	var still []pendingWindow
	for _, p := range b.pending {
		if p.polls <= 0 {
			b.windows = append(b.windows, p.ref)
			continue
		}
		p.polls--
		still = append(still, p)
	}
	b.pending = still

	var out []desktop.WindowRef
	for _, w := range b.windows {
		if !b.gone[w.Handle] {
			out = append(out, w)
		}
	}
	return out, nil
}

func (b *fakeBackend) Bounds(ctx context.Context, h desktop.Handle) (desktop.Rect, error) {
	return desktop.Rect{}, nil
}

func (b *fakeBackend) WorkArea(ctx context.Context) (desktop.Rect, error) {
	return b.workArea, nil
}

func (b *fakeBackend) Place(ctx context.Context, h desktop.Handle, r desktop.Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gone[h] {
		return fmt.Errorf("%w: place %s", desktop.ErrWindowGone, h)
	}
	b.record("place %s %d,%d %dx%d", h, r.X, r.Y, r.Width, r.Height)
	return nil
}

func (b *fakeBackend) Activate(ctx context.Context, h desktop.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gone[h] {
		return fmt.Errorf("%w: activate %s", desktop.ErrWindowGone, h)
	}
	b.record("activate %s", h)
	return nil
}

func (b *fakeBackend) MoveCursor(ctx context.Context, x, y int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failCursor {
		return fmt.Errorf("mock error moving cursor")
	}
	b.record("cursor %d,%d", x, y)
	return nil
}

func (b *fakeBackend) PointerDown(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("down")
	return nil
}

func (b *fakeBackend) PointerUp(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("up")
	return nil
}

func (b *fakeBackend) Close(ctx context.Context, h desktop.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gone[h] {
		return fmt.Errorf("%w: close %s", desktop.ErrWindowGone, h)
	}
	b.record("close %s", h)
	return nil
}

func (b *fakeBackend) Foreground(ctx context.Context) (desktop.Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failFocus {
		return 0, fmt.Errorf("mock error getting focus")
	}
	return b.foreground, nil
}

func (b *fakeBackend) ToggleMute(ctx context.Context, h desktop.Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failMute {
		return fmt.Errorf("mock error toggling mute")
	}
	b.record("mute %s", h)
	return nil
}

var _ desktop.Backend = &fakeBackend{}

// fakeLauncher creates windows in a fakeBackend. Handles are assigned from 1
// in launch order.
type fakeLauncher struct {
	backend *fakeBackend

	// delay is the number of polls before a launched window appears.
	delay int
	// fail and never are keyed by launch URL.
	fail  map[string]bool
	never map[string]bool

	launched []string
	next     desktop.Handle
}

func newFakeLauncher(b *fakeBackend) *fakeLauncher {
	return &fakeLauncher{backend: b, fail: map[string]bool{}, never: map[string]bool{}}
}

func (l *fakeLauncher) Launch(ctx context.Context, url string) (browser.Process, error) {
	if l.fail[url] {
		return browser.Process{}, fmt.Errorf("mock error: executable missing")
	}
	l.launched = append(l.launched, url)
	l.next++
	pid := 1000 + int(l.next)
	if !l.never[url] {
		l.backend.spawn(desktop.WindowRef{Handle: l.next, PID: pid, Title: url}, l.delay)
	}
	return browser.Process{PID: pid, Path: "fake-browser"}, nil
}

var _ browser.Launcher = &fakeLauncher{}

// fakeClock records sleeps and returns immediately unless onSleep says
// otherwise.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	sleeps  []time.Duration
	onSleep func(ctx context.Context, d time.Duration) error
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	hook := c.onSleep
	c.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, d); err != nil {
			return err
		}
	}
	return ctx.Err()
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}
