package cmd

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/connorhough/vidresume/internal/browser"
	"github.com/connorhough/vidresume/internal/desktop"
)

// Re-implement fakes for cmd package tests since internal test files aren't exported.

type MockBackend struct {
	mu      sync.Mutex
	Windows []desktop.WindowRef
	Area    desktop.Rect
	Calls   []string
}

func (m *MockBackend) record(format string, args ...any) {
	m.Calls = append(m.Calls, fmt.Sprintf(format, args...))
}

func (m *MockBackend) count(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (m *MockBackend) Name() string { return "mock" }

func (m *MockBackend) ListWindows(ctx context.Context, class string) ([]desktop.WindowRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]desktop.WindowRef(nil), m.Windows...), nil
}

func (m *MockBackend) Bounds(ctx context.Context, h desktop.Handle) (desktop.Rect, error) {
	return desktop.Rect{X: 10, Y: 20, Width: 800, Height: 600}, nil
}

func (m *MockBackend) WorkArea(ctx context.Context) (desktop.Rect, error) {
	return m.Area, nil
}

func (m *MockBackend) Place(ctx context.Context, h desktop.Handle, r desktop.Rect) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("place %s %d,%d", h, r.X, r.Y)
	return nil
}

func (m *MockBackend) Activate(ctx context.Context, h desktop.Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("activate %s", h)
	return nil
}

func (m *MockBackend) MoveCursor(ctx context.Context, x, y int) error { return nil }
func (m *MockBackend) PointerDown(ctx context.Context) error         { return nil }
func (m *MockBackend) PointerUp(ctx context.Context) error           { return nil }

func (m *MockBackend) Close(ctx context.Context, h desktop.Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("close %s", h)
	return nil
}

func (m *MockBackend) Foreground(ctx context.Context) (desktop.Handle, error) {
	return 0xabc, nil
}

func (m *MockBackend) ToggleMute(ctx context.Context, h desktop.Handle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("mute %s", h)
	return nil
}

// MockLauncher adds a window to the backend for every launch.
type MockLauncher struct {
	Backend *MockBackend
	URLs    []string
	next    desktop.Handle
}

func (m *MockLauncher) Launch(ctx context.Context, url string) (browser.Process, error) {
	m.URLs = append(m.URLs, url)
	m.next++
	m.Backend.mu.Lock()
	m.Backend.Windows = append(m.Backend.Windows, desktop.WindowRef{Handle: 0x100 + m.next, PID: 4000 + int(m.next), Title: url})
	m.Backend.mu.Unlock()
	return browser.Process{PID: 4000 + int(m.next), Path: "mock"}, nil
}

type MockClock struct {
	CurrentTime time.Time
}

func (m *MockClock) Now() time.Time {
	return m.CurrentTime
}

func (m *MockClock) Sleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}
