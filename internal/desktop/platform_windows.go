//go:build windows

package desktop

import (
	"context"
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	swpNoZOrder    = 0x0004
	swpNoActivate  = 0x0010
	swRestore      = 9
	wmClose        = 0x0010
	wmAppCommand   = 0x0319
	appCommandMute = 8
	spiGetWorkArea = 0x0030

	mouseEventLeftDown = 0x0002
	mouseEventLeftUp   = 0x0004
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procEnumWindows          = user32.NewProc("EnumWindows")
	procGetClassNameW        = user32.NewProc("GetClassNameW")
	procGetWindowTextW       = user32.NewProc("GetWindowTextW")
	procGetWindowTextLengthW = user32.NewProc("GetWindowTextLengthW")
	procGetWindowRect        = user32.NewProc("GetWindowRect")
	procIsWindow             = user32.NewProc("IsWindow")
	procIsWindowVisible      = user32.NewProc("IsWindowVisible")
	procSetWindowPos         = user32.NewProc("SetWindowPos")
	procShowWindow           = user32.NewProc("ShowWindow")
	procSetForegroundWindow  = user32.NewProc("SetForegroundWindow")
	procGetForegroundWindow  = user32.NewProc("GetForegroundWindow")
	procSetCursorPos         = user32.NewProc("SetCursorPos")
	procMouseEvent           = user32.NewProc("mouse_event")
	procPostMessageW         = user32.NewProc("PostMessageW")
	procSendMessageW         = user32.NewProc("SendMessageW")
	procSystemParametersInfo = user32.NewProc("SystemParametersInfoW")
)

type rect struct {
	Left, Top, Right, Bottom int32
}

// enumHandles collects handles for the single shared EnumWindows callback.
// Callbacks created with windows.NewCallback are never freed, so one is
// reused for every enumeration.
var (
	enumMu      sync.Mutex
	enumHandles []windows.HWND
	enumProc    = windows.NewCallback(func(hwnd windows.HWND, _ uintptr) uintptr {
		enumHandles = append(enumHandles, hwnd)
		return 1
	})
)

// win32Backend drives the Windows desktop through user32.
type win32Backend struct{}

func init() {
	Current = &win32Backend{}
}

func (b *win32Backend) Name() string {
	return "win32"
}

func (b *win32Backend) ListWindows(ctx context.Context, class string) ([]WindowRef, error) {
	handles, err := topLevelWindows()
	if err != nil {
		return nil, err
	}

	var refs []WindowRef
	for _, hwnd := range handles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !isWindow(hwnd) || !isVisible(hwnd) {
			continue
		}
		if className(hwnd) != class {
			continue
		}
		var pid uint32
		if _, err := windows.GetWindowThreadProcessId(hwnd, &pid); err != nil {
			// Destroyed mid-enumeration.
			continue
		}
		refs = append(refs, WindowRef{
			Handle: Handle(hwnd),
			PID:    int(pid),
			Title:  windowText(hwnd),
		})
	}
	return refs, nil
}

func (b *win32Backend) Bounds(ctx context.Context, h Handle) (Rect, error) {
	var r rect
	ret, _, err := procGetWindowRect.Call(uintptr(h), uintptr(unsafe.Pointer(&r)))
	if ret == 0 {
		return Rect{}, b.windowErr(h, "get bounds of", err)
	}
	return Rect{X: int(r.Left), Y: int(r.Top), Width: int(r.Right - r.Left), Height: int(r.Bottom - r.Top)}, nil
}

func (b *win32Backend) WorkArea(ctx context.Context) (Rect, error) {
	var r rect
	ret, _, err := procSystemParametersInfo.Call(spiGetWorkArea, 0, uintptr(unsafe.Pointer(&r)), 0)
	if ret == 0 {
		return Rect{}, fmt.Errorf("failed to get work area: %w", err)
	}
	return Rect{X: int(r.Left), Y: int(r.Top), Width: int(r.Right - r.Left), Height: int(r.Bottom - r.Top)}, nil
}

func (b *win32Backend) Place(ctx context.Context, h Handle, r Rect) error {
	ret, _, err := procSetWindowPos.Call(uintptr(h), 0,
		uintptr(int32(r.X)), uintptr(int32(r.Y)), uintptr(int32(r.Width)), uintptr(int32(r.Height)),
		swpNoZOrder|swpNoActivate)
	if ret == 0 {
		return b.windowErr(h, "place", err)
	}
	return nil
}

func (b *win32Backend) Activate(ctx context.Context, h Handle) error {
	if !isWindow(windows.HWND(h)) {
		return fmt.Errorf("%w: activate %s", ErrWindowGone, h)
	}
	procShowWindow.Call(uintptr(h), swRestore)
	ret, _, err := procSetForegroundWindow.Call(uintptr(h))
	if ret == 0 {
		return b.windowErr(h, "activate", err)
	}
	return nil
}

func (b *win32Backend) MoveCursor(ctx context.Context, x, y int) error {
	ret, _, err := procSetCursorPos.Call(uintptr(int32(x)), uintptr(int32(y)))
	if ret == 0 {
		return fmt.Errorf("failed to move cursor: %w", err)
	}
	return nil
}

func (b *win32Backend) PointerDown(ctx context.Context) error {
	procMouseEvent.Call(mouseEventLeftDown, 0, 0, 0, 0)
	return nil
}

func (b *win32Backend) PointerUp(ctx context.Context) error {
	procMouseEvent.Call(mouseEventLeftUp, 0, 0, 0, 0)
	return nil
}

func (b *win32Backend) Close(ctx context.Context, h Handle) error {
	ret, _, err := procPostMessageW.Call(uintptr(h), wmClose, 0, 0)
	if ret == 0 {
		return b.windowErr(h, "close", err)
	}
	return nil
}

func (b *win32Backend) Foreground(ctx context.Context) (Handle, error) {
	ret, _, _ := procGetForegroundWindow.Call()
	if ret == 0 {
		return 0, fmt.Errorf("no foreground window")
	}
	return Handle(ret), nil
}

func (b *win32Backend) ToggleMute(ctx context.Context, h Handle) error {
	if !isWindow(windows.HWND(h)) {
		return fmt.Errorf("%w: toggle mute via %s", ErrWindowGone, h)
	}
	// WM_APPCOMMAND carries the command in the high word of lParam.
	procSendMessageW.Call(uintptr(h), wmAppCommand, uintptr(h), appCommandMute<<16)
	return nil
}

func (b *win32Backend) windowErr(h Handle, op string, err error) error {
	if !isWindow(windows.HWND(h)) {
		return fmt.Errorf("%w: %s %s", ErrWindowGone, op, h)
	}
	return fmt.Errorf("failed to %s window %s: %w", op, h, err)
}

func topLevelWindows() ([]windows.HWND, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumHandles = enumHandles[:0]
	ret, _, err := procEnumWindows.Call(enumProc, 0)
	if ret == 0 {
		return nil, fmt.Errorf("failed to enumerate windows: %w", err)
	}
	out := make([]windows.HWND, len(enumHandles))
	copy(out, enumHandles)
	return out, nil
}

func isWindow(hwnd windows.HWND) bool {
	ret, _, _ := procIsWindow.Call(uintptr(hwnd))
	return ret != 0
}

func isVisible(hwnd windows.HWND) bool {
	ret, _, _ := procIsWindowVisible.Call(uintptr(hwnd))
	return ret != 0
}

func className(hwnd windows.HWND) string {
	buf := make([]uint16, 256)
	n, _, _ := procGetClassNameW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf[:n])
}

func windowText(hwnd windows.HWND) string {
	length, _, _ := procGetWindowTextLengthW.Call(uintptr(hwnd))
	if length == 0 {
		return ""
	}
	buf := make([]uint16, length+1)
	n, _, _ := procGetWindowTextW.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf[:n])
}
