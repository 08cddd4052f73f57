package platform

import "errors"

// WindowHandle represents a platform-specific window handle
// (HWND on Windows, NSWindow* on macOS, X11 window id on Linux)
type WindowHandle uintptr

// ErrUnsupported is returned by features the current platform cannot provide
var ErrUnsupported = errors.New("not supported on this platform")

// PlatformFeatures defines the interface for platform-specific features.
// Each platform (Windows, Linux, macOS) must implement this interface.
type PlatformFeatures interface {
	// Pointer. ok is false when the position cannot be read right now.
	CursorPosition() (x, y float64, ok bool)

	// Window management
	SetAlwaysOnTop(handle WindowHandle, onTop bool) error
	SetClickThrough(handle WindowHandle, clickThrough bool) error
	MoveWindowTo(handle WindowHandle, x, y int) error
	GetWindowRect(handle WindowHandle) (x, y, width, height int, err error)
	FindWindow(title string) (WindowHandle, error)

	// Screen info
	GetWorkArea() (x, y, width, height int)

	// Global hotkeys
	RegisterHotkey(id int, modifiers uint, keyCode uint) error
	UnregisterHotkey(id int) error
	SetupHotkeyListener(callback func(id int)) error
	StopHotkeyListener()
}

// Hotkey modifiers
const (
	ModAlt   uint = 0x0001
	ModCtrl  uint = 0x0002
	ModShift uint = 0x0004
	ModWin   uint = 0x0008
)

// Virtual key codes
const (
	VK_OEM_PERIOD uint = 0xBE // '.' key
)

// Hotkey IDs
const (
	HotkeyTogglePet = 1
)
