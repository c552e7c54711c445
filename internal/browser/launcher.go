// Package browser starts browser processes that open a single URL in a new
// top-level window.
package browser

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// DefaultFlags ask for a new top-level window with muted media that may
// autoplay without a user gesture.
var DefaultFlags = []string{
	"--new-window",
	"--mute-audio",
	"--autoplay-policy=no-user-gesture-required",
}

// Process describes a started browser process. PID is informational only.
type Process struct {
	PID  int
	Path string
}

// Launcher starts a browser pointed at a URL. It does not wait for a window.
type Launcher interface {
	Launch(ctx context.Context, url string) (Process, error)
}

// ExecLauncher starts the browser executable directly.
type ExecLauncher struct {
	Path  string
	Flags []string
}

// NewExecLauncher returns a launcher for path with flags, falling back to
// DefaultExecutable and DefaultFlags when empty.
func NewExecLauncher(path string, flags []string) *ExecLauncher {
	if path == "" {
		path = DefaultExecutable()
	}
	if len(flags) == 0 {
		flags = DefaultFlags
	}
	return &ExecLauncher{Path: path, Flags: flags}
}

// Launch starts the browser and reaps it in the background. The process is
// not tied to ctx: the window has to outlive the launch call.
func (l *ExecLauncher) Launch(ctx context.Context, url string) (Process, error) {
	if err := ctx.Err(); err != nil {
		return Process{}, err
	}

	path, err := exec.LookPath(l.Path)
	if err != nil {
		return Process{}, fmt.Errorf("browser executable %q not found: %w", l.Path, err)
	}

	args := append(append([]string{}, l.Flags...), url)
	cmd := exec.Command(path, args...)
	if err := cmd.Start(); err != nil {
		return Process{}, fmt.Errorf("failed to start %s: %w", path, err)
	}
	pid := cmd.Process.Pid
	go func() { _ = cmd.Wait() }()

	return Process{PID: pid, Path: path}, nil
}

// DefaultExecutable returns the conventional Chrome location for the OS.
func DefaultExecutable() string {
	switch runtime.GOOS {
	case "windows":
		return `C:\Program Files\Google\Chrome\Application\chrome.exe`
	case "darwin":
		return "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"
	default:
		return "google-chrome"
	}
}

// DefaultWindowClass returns Chrome's main-window class for the OS. On
// macOS windows are matched by application name.
func DefaultWindowClass() string {
	switch runtime.GOOS {
	case "windows":
		return "Chrome_WidgetWin_1"
	case "darwin":
		return "Google Chrome"
	default:
		return "google-chrome"
	}
}
