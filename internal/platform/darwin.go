//go:build darwin

package platform

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/ebitengine/purego"
	"github.com/ebitengine/purego/objc"
	"go.uber.org/zap"
)

// NSWindow levels
const (
	nsNormalWindowLevel   = 0
	nsFloatingWindowLevel = 3
)

type cgPoint struct {
	X, Y float64
}

type cgSize struct {
	Width, Height float64
}

type nsRect struct {
	Origin cgPoint
	Size   cgSize
}

var (
	cgOnce sync.Once
	cgErr  error

	cgEventCreate      func(source uintptr) uintptr
	cgEventGetLocation func(event uintptr) cgPoint
	cfRelease          func(ref uintptr)

	selSetIgnoresMouseEvents = objc.RegisterName("setIgnoresMouseEvents:")
	selSetLevel              = objc.RegisterName("setLevel:")
	selFrame                 = objc.RegisterName("frame")
	selSetFrameTopLeftPoint  = objc.RegisterName("setFrameTopLeftPoint:")
	selMainScreen            = objc.RegisterName("mainScreen")
	selScreens               = objc.RegisterName("screens")
	selVisibleFrame          = objc.RegisterName("visibleFrame")
	selSharedApplication     = objc.RegisterName("sharedApplication")
	selWindows               = objc.RegisterName("windows")
	selCount                 = objc.RegisterName("count")
	selObjectAtIndex         = objc.RegisterName("objectAtIndex:")
	selTitle                 = objc.RegisterName("title")
	selUTF8String            = objc.RegisterName("UTF8String")
)

// loadCoreGraphics binds the CoreGraphics symbols used for cursor polling
func loadCoreGraphics() error {
	cgOnce.Do(func() {
		cg, err := purego.Dlopen("/System/Library/Frameworks/CoreGraphics.framework/CoreGraphics", purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			cgErr = fmt.Errorf("load CoreGraphics: %w", err)
			return
		}
		cf, err := purego.Dlopen("/System/Library/Frameworks/CoreFoundation.framework/CoreFoundation", purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			cgErr = fmt.Errorf("load CoreFoundation: %w", err)
			return
		}
		purego.RegisterLibFunc(&cgEventCreate, cg, "CGEventCreate")
		purego.RegisterLibFunc(&cgEventGetLocation, cg, "CGEventGetLocation")
		purego.RegisterLibFunc(&cfRelease, cf, "CFRelease")
	})
	return cgErr
}

// DarwinFeatures implements PlatformFeatures for macOS through the
// Objective-C runtime (no cgo)
type DarwinFeatures struct {
	mu            sync.Mutex
	hotkeyRunning bool
	stopHotkey    chan struct{}
	loadWarnOnce  sync.Once
}

// NewDarwinFeatures creates a new macOS platform features instance
func NewDarwinFeatures() *DarwinFeatures {
	return &DarwinFeatures{
		stopHotkey: make(chan struct{}),
	}
}

func logger() *zap.Logger {
	return zap.L().Named("platform")
}

// CursorPosition returns the cursor in global display points, origin at the
// top-left of the main display.
func (d *DarwinFeatures) CursorPosition() (x, y float64, ok bool) {
	if err := loadCoreGraphics(); err != nil {
		d.loadWarnOnce.Do(func() {
			logger().Warn("cursor polling unavailable", zap.Error(err))
		})
		return 0, 0, false
	}
	ev := cgEventCreate(0)
	if ev == 0 {
		return 0, 0, false
	}
	defer cfRelease(ev)
	p := cgEventGetLocation(ev)
	return p.X, p.Y, true
}

// SetAlwaysOnTop switches the NSWindow between floating and normal level.
// Must be called on the main thread.
func (d *DarwinFeatures) SetAlwaysOnTop(handle WindowHandle, onTop bool) error {
	if handle == 0 {
		return fmt.Errorf("SetAlwaysOnTop: nil NSWindow")
	}
	level := nsNormalWindowLevel
	if onTop {
		level = nsFloatingWindowLevel
	}
	objc.ID(handle).Send(selSetLevel, level)
	return nil
}

// SetClickThrough sets -[NSWindow setIgnoresMouseEvents:]. Must be called on
// the main thread.
func (d *DarwinFeatures) SetClickThrough(handle WindowHandle, clickThrough bool) error {
	if handle == 0 {
		return fmt.Errorf("SetClickThrough: nil NSWindow")
	}
	objc.ID(handle).Send(selSetIgnoresMouseEvents, clickThrough)
	return nil
}

// mainScreenHeight is used to flip Cocoa's bottom-left origin
func mainScreenHeight() float64 {
	screen := objc.ID(objc.GetClass("NSScreen")).Send(selMainScreen)
	if screen == 0 {
		return 0
	}
	return objc.Send[nsRect](screen, selFrame).Size.Height
}

// primaryScreenHeight is the height of screens[0], the display that owns the
// global coordinate origin
func primaryScreenHeight() float64 {
	screens := objc.ID(objc.GetClass("NSScreen")).Send(selScreens)
	if screens == 0 || objc.Send[uint](screens, selCount) == 0 {
		return mainScreenHeight()
	}
	first := screens.Send(selObjectAtIndex, 0)
	return objc.Send[nsRect](first, selFrame).Size.Height
}

// MoveWindowTo places the window's top-left corner at (x, y) in top-left
// origin points
func (d *DarwinFeatures) MoveWindowTo(handle WindowHandle, x, y int) error {
	if handle == 0 {
		return fmt.Errorf("MoveWindowTo: nil NSWindow")
	}
	top := primaryScreenHeight() - float64(y)
	objc.ID(handle).Send(selSetFrameTopLeftPoint, cgPoint{X: float64(x), Y: top})
	return nil
}

// GetWindowRect returns the window frame in top-left origin points
func (d *DarwinFeatures) GetWindowRect(handle WindowHandle) (x, y, width, height int, err error) {
	if handle == 0 {
		return 0, 0, 0, 0, fmt.Errorf("GetWindowRect: nil NSWindow")
	}
	f := objc.Send[nsRect](objc.ID(handle), selFrame)
	top := primaryScreenHeight() - (f.Origin.Y + f.Size.Height)
	return int(f.Origin.X), int(top), int(f.Size.Width), int(f.Size.Height), nil
}

// GetWorkArea returns the usable screen area (accounting for menu bar and dock)
func (d *DarwinFeatures) GetWorkArea() (x, y, width, height int) {
	screen := objc.ID(objc.GetClass("NSScreen")).Send(selMainScreen)
	if screen != 0 {
		vf := objc.Send[nsRect](screen, selVisibleFrame)
		top := primaryScreenHeight() - (vf.Origin.Y + vf.Size.Height)
		if vf.Size.Width > 0 && vf.Size.Height > 0 {
			return int(vf.Origin.X), int(top), int(vf.Size.Width), int(vf.Size.Height)
		}
	}
	return d.workAreaFromFinder()
}

// workAreaFromFinder asks Finder for the desktop bounds
func (d *DarwinFeatures) workAreaFromFinder() (x, y, width, height int) {
	script := `
		tell application "Finder"
			set screenBounds to bounds of window of desktop
			return screenBounds
		end tell`
	out, err := exec.Command("osascript", "-e", script).Output()
	if err == nil {
		parts := strings.Split(strings.TrimSpace(string(out)), ", ")
		if len(parts) >= 4 {
			x, _ = strconv.Atoi(parts[0])
			y, _ = strconv.Atoi(parts[1])
			right, _ := strconv.Atoi(parts[2])
			bottom, _ := strconv.Atoi(parts[3])
			return x, y + 25, right - x, bottom - y - 25
		}
	}
	return 0, 25, 1440, 875
}

// RegisterHotkey - global hotkeys on macOS require the Carbon event API
func (d *DarwinFeatures) RegisterHotkey(id int, modifiers uint, keyCode uint) error {
	return ErrUnsupported
}

// UnregisterHotkey removes a registered hotkey
func (d *DarwinFeatures) UnregisterHotkey(id int) error {
	return nil
}

// SetupHotkeyListener sets up hotkey listening (stub on macOS)
func (d *DarwinFeatures) SetupHotkeyListener(callback func(id int)) error {
	d.mu.Lock()
	if d.hotkeyRunning {
		d.mu.Unlock()
		return nil
	}
	d.hotkeyRunning = true
	d.stopHotkey = make(chan struct{})
	d.mu.Unlock()

	logger().Info("global hotkeys are not available on macOS; use the tray menu")
	return nil
}

// StopHotkeyListener stops the hotkey listener
func (d *DarwinFeatures) StopHotkeyListener() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.hotkeyRunning {
		return
	}
	close(d.stopHotkey)
	d.hotkeyRunning = false
}

// FindWindow searches NSApp.windows for a window with the given title.
// Must be called on the main thread.
func (d *DarwinFeatures) FindWindow(title string) (WindowHandle, error) {
	app := objc.ID(objc.GetClass("NSApplication")).Send(selSharedApplication)
	if app == 0 {
		return 0, fmt.Errorf("NSApplication not initialised")
	}
	windows := app.Send(selWindows)
	n := objc.Send[uint](windows, selCount)
	for i := uint(0); i < n; i++ {
		win := windows.Send(selObjectAtIndex, i)
		if goString(win.Send(selTitle)) == title {
			return WindowHandle(win), nil
		}
	}
	return 0, fmt.Errorf("window not found: %s", title)
}

// goString copies an NSString into Go memory
func goString(ns objc.ID) string {
	if ns == 0 {
		return ""
	}
	return objc.Send[string](ns, selUTF8String)
}

var _ PlatformFeatures = (*DarwinFeatures)(nil)

// Global instance
var Features = NewDarwinFeatures()
