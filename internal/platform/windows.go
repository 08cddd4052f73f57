//go:build windows

package platform

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"
)

var (
	user32                   = windows.NewLazySystemDLL("user32.dll")
	procSetWindowPos         = user32.NewProc("SetWindowPos")
	procMoveWindow           = user32.NewProc("MoveWindow")
	procGetWindowRect        = user32.NewProc("GetWindowRect")
	procGetWindowLong        = user32.NewProc("GetWindowLongW")
	procSetWindowLong        = user32.NewProc("SetWindowLongW")
	procSetLayeredWindowAttr = user32.NewProc("SetLayeredWindowAttributes")
	procGetCursorPos         = user32.NewProc("GetCursorPos")
	procGetSystemMetrics     = user32.NewProc("GetSystemMetrics")
	procSystemParametersInfo = user32.NewProc("SystemParametersInfoW")
	procRegisterHotKey       = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey     = user32.NewProc("UnregisterHotKey")
	procGetMessage           = user32.NewProc("GetMessageW")
	procPostThreadMessage    = user32.NewProc("PostThreadMessageW")
	procFindWindow           = user32.NewProc("FindWindowW")
)

// Windows constants
const (
	HWND_TOPMOST   = ^uintptr(0) // -1
	HWND_NOTOPMOST = ^uintptr(1) // -2
	SWP_NOMOVE     = 0x0002
	SWP_NOSIZE     = 0x0001
	SWP_NOACTIVATE = 0x0010

	LWA_ALPHA = 0x00000002

	SM_CXSCREEN = 0
	SM_CYSCREEN = 1

	SPI_GETWORKAREA = 0x0030

	WM_HOTKEY = 0x0312
	WM_QUIT   = 0x0012
)

// gwlExStyle is GWL_EXSTYLE (-20) as uintptr, computed at runtime to avoid overflow
var gwlExStyle = negativeToUintptr(-20)

func negativeToUintptr(v int32) uintptr {
	return uintptr(uint32(v))
}

// RECT structure for Windows API
type RECT struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

// POINT structure for GetCursorPos
type POINT struct {
	X int32
	Y int32
}

// MSG structure for Windows message loop
type MSG struct {
	HWnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      POINT
}

// WindowsFeatures implements PlatformFeatures for Windows
type WindowsFeatures struct {
	mu             sync.Mutex
	hotkeyThreadID uint32
	stopHotkey     chan struct{}
	hotkeyRunning  bool
}

// NewWindowsFeatures creates a new Windows platform features instance
func NewWindowsFeatures() *WindowsFeatures {
	return &WindowsFeatures{
		stopHotkey: make(chan struct{}),
	}
}

func logger() *zap.Logger {
	return zap.L().Named("platform")
}

// CursorPosition returns the cursor in virtual-screen pixels
func (w *WindowsFeatures) CursorPosition() (x, y float64, ok bool) {
	var pt POINT
	ret, _, _ := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	if ret == 0 {
		// Fails while the secure desktop (UAC, lock screen) is active
		return 0, 0, false
	}
	return float64(pt.X), float64(pt.Y), true
}

// SetAlwaysOnTop sets the window to always be on top
func (w *WindowsFeatures) SetAlwaysOnTop(handle WindowHandle, onTop bool) error {
	insertAfter := HWND_NOTOPMOST
	if onTop {
		insertAfter = HWND_TOPMOST
	}

	ret, _, err := procSetWindowPos.Call(
		uintptr(handle),
		insertAfter,
		0, 0, 0, 0,
		SWP_NOMOVE|SWP_NOSIZE|SWP_NOACTIVATE,
	)
	if ret == 0 {
		return fmt.Errorf("SetWindowPos failed: %w", err)
	}
	return nil
}

// MoveWindowTo moves a window to the specified position, keeping its current size
func (w *WindowsFeatures) MoveWindowTo(handle WindowHandle, x, y int) error {
	_, _, width, height, err := w.GetWindowRect(handle)
	if err != nil {
		return err
	}

	ret, _, callErr := procMoveWindow.Call(
		uintptr(handle),
		uintptr(x),
		uintptr(y),
		uintptr(width),
		uintptr(height),
		1, // bRepaint = TRUE
	)
	if ret == 0 {
		return fmt.Errorf("MoveWindow failed: %w", callErr)
	}
	return nil
}

// GetWindowRect returns the actual window position and size (including frame/title bar)
func (w *WindowsFeatures) GetWindowRect(handle WindowHandle) (x, y, width, height int, err error) {
	var rect RECT
	ret, _, callErr := procGetWindowRect.Call(
		uintptr(handle),
		uintptr(unsafe.Pointer(&rect)),
	)
	if ret == 0 {
		return 0, 0, 0, 0, fmt.Errorf("GetWindowRect failed: %w", callErr)
	}
	return int(rect.Left), int(rect.Top),
		int(rect.Right - rect.Left), int(rect.Bottom - rect.Top), nil
}

// SetClickThrough toggles WS_EX_TRANSPARENT on a layered window
func (w *WindowsFeatures) SetClickThrough(handle WindowHandle, clickThrough bool) error {
	exStyle, _, _ := procGetWindowLong.Call(uintptr(handle), gwlExStyle)

	newStyle, needsAlpha := clickThroughExStyle(exStyle, clickThrough)
	if newStyle == exStyle {
		return nil
	}

	ret, _, err := procSetWindowLong.Call(uintptr(handle), gwlExStyle, newStyle)
	if ret == 0 && err != windows.ERROR_SUCCESS {
		return fmt.Errorf("SetWindowLong failed: %w", err)
	}

	if needsAlpha {
		ret, _, err = procSetLayeredWindowAttr.Call(uintptr(handle), 0, 255, LWA_ALPHA)
		if ret == 0 {
			return fmt.Errorf("SetLayeredWindowAttributes failed: %w", err)
		}
	}
	return nil
}

// getScreenSize returns the primary screen dimensions
func (w *WindowsFeatures) getScreenSize() (width, height int) {
	cx, _, _ := procGetSystemMetrics.Call(SM_CXSCREEN)
	cy, _, _ := procGetSystemMetrics.Call(SM_CYSCREEN)
	return int(cx), int(cy)
}

// GetWorkArea returns the usable screen area (excluding taskbar)
func (w *WindowsFeatures) GetWorkArea() (x, y, width, height int) {
	var rect RECT
	ret, _, _ := procSystemParametersInfo.Call(
		SPI_GETWORKAREA,
		0,
		uintptr(unsafe.Pointer(&rect)),
		0,
	)
	if ret == 0 {
		width, height = w.getScreenSize()
		return 0, 0, width, height
	}
	return int(rect.Left), int(rect.Top), int(rect.Right - rect.Left), int(rect.Bottom - rect.Top)
}

// RegisterHotkey registers a global hotkey on the calling thread
func (w *WindowsFeatures) RegisterHotkey(id int, modifiers uint, keyCode uint) error {
	ret, _, err := procRegisterHotKey.Call(
		0,
		uintptr(id),
		uintptr(modifiers),
		uintptr(keyCode),
	)
	if ret == 0 {
		return fmt.Errorf("RegisterHotKey failed for id %d: %w", id, err)
	}
	return nil
}

// UnregisterHotkey removes a registered hotkey
func (w *WindowsFeatures) UnregisterHotkey(id int) error {
	ret, _, err := procUnregisterHotKey.Call(0, uintptr(id))
	if ret == 0 {
		return fmt.Errorf("UnregisterHotKey failed for id %d: %w", id, err)
	}
	return nil
}

// SetupHotkeyListener registers Ctrl+Alt+. and runs the hotkey message loop
func (w *WindowsFeatures) SetupHotkeyListener(callback func(id int)) error {
	w.mu.Lock()
	if w.hotkeyRunning {
		w.mu.Unlock()
		return nil
	}
	w.hotkeyRunning = true
	w.stopHotkey = make(chan struct{})
	w.mu.Unlock()

	go func() {
		// RegisterHotKey and GetMessage must run on the same OS thread.
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		w.mu.Lock()
		w.hotkeyThreadID = windows.GetCurrentThreadId()
		w.mu.Unlock()

		log := logger()
		if err := w.RegisterHotkey(HotkeyTogglePet, ModCtrl|ModAlt, VK_OEM_PERIOD); err != nil {
			log.Warn("failed to register hotkey", zap.String("hotkey", "Ctrl+Alt+."), zap.Error(err))
		} else {
			log.Info("registered hotkey", zap.String("hotkey", "Ctrl+Alt+."))
		}

		// GetMessage blocks until a message arrives
		var msg MSG
		for {
			ret, _, _ := procGetMessage.Call(
				uintptr(unsafe.Pointer(&msg)),
				0, 0, 0,
			)

			// ret == 0 means WM_QUIT, ret == -1 means error
			if ret == 0 || int32(ret) == -1 {
				break
			}

			if msg.Message == WM_HOTKEY {
				callback(int(msg.WParam))
			}
		}

		_ = w.UnregisterHotkey(HotkeyTogglePet)
		log.Debug("hotkey message loop exited")
	}()

	return nil
}

// StopHotkeyListener stops the hotkey message loop
func (w *WindowsFeatures) StopHotkeyListener() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.hotkeyRunning {
		return
	}

	close(w.stopHotkey)
	w.hotkeyRunning = false

	// Post WM_QUIT to the hotkey thread to unblock GetMessage
	if w.hotkeyThreadID != 0 {
		procPostThreadMessage.Call(uintptr(w.hotkeyThreadID), WM_QUIT, 0, 0)
	}
}

// FindWindow looks up a top-level window by title
func (w *WindowsFeatures) FindWindow(title string) (WindowHandle, error) {
	titlePtr, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return 0, err
	}

	hwnd, _, callErr := procFindWindow.Call(0, uintptr(unsafe.Pointer(titlePtr)))
	if hwnd == 0 {
		return 0, fmt.Errorf("FindWindow failed: %w", callErr)
	}
	return WindowHandle(hwnd), nil
}

var _ PlatformFeatures = (*WindowsFeatures)(nil)

// Global instance
var Features = NewWindowsFeatures()
