//go:build linux

package platform

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/shape"
	"github.com/jezek/xgb/xproto"
	"go.uber.org/zap"
)

const (
	redialAfter = 2 * time.Second

	// _NET_WM_STATE actions
	netWMStateRemove = 0
	netWMStateAdd    = 1

	fallbackWidth  = 1920
	fallbackHeight = 1080
)

// display is what the features need from one X connection
type display struct {
	conn          *xgb.Conn
	root          xproto.Window
	width, height int
	shape         bool
}

// keyGrab is one registered global hotkey
type keyGrab struct {
	code xproto.Keycode
	mods uint16
}

// LinuxFeatures implements PlatformFeatures for X11. Window and pointer
// requests share one long-lived connection; the hotkey listener owns a
// second one so closing it ends the event loop.
type LinuxFeatures struct {
	mu      sync.Mutex
	disp    *display
	dialAt  time.Time
	dialErr error
	atoms   map[string]xproto.Atom

	hotkeyMu   sync.Mutex
	hotkeyConn *xgb.Conn
	hotkeyRoot xproto.Window
	hotkeyDone chan struct{}
	grabs      map[int]keyGrab
}

// NewLinuxFeatures creates a new Linux platform features instance. The X
// connection is opened on first use.
func NewLinuxFeatures() *LinuxFeatures {
	return &LinuxFeatures{
		atoms: make(map[string]xproto.Atom),
		grabs: make(map[int]keyGrab),
	}
}

func logger() *zap.Logger {
	return zap.L().Named("platform")
}

// connect returns the shared connection, dialing it if needed. Failed dials
// are retried at most every redialAfter so a missing display does not cost
// a dial per poll.
func (l *LinuxFeatures) connect() (display, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.disp != nil {
		return *l.disp, nil
	}
	if l.dialErr != nil && time.Since(l.dialAt) < redialAfter {
		return display{}, l.dialErr
	}
	l.dialAt = time.Now()

	X, err := xgb.NewConn()
	if err != nil {
		l.dialErr = fmt.Errorf("connect to X server: %w", err)
		return display{}, l.dialErr
	}
	l.dialErr = nil

	screen := xproto.Setup(X).DefaultScreen(X)
	d := &display{
		conn:   X,
		root:   screen.Root,
		width:  int(screen.WidthInPixels),
		height: int(screen.HeightInPixels),
	}
	if err := shape.Init(X); err != nil {
		logger().Warn("X SHAPE extension unavailable; the pet window stays clickable", zap.Error(err))
	} else {
		d.shape = true
	}
	l.disp = d
	return *d, nil
}

// atom interns name once per process
func (l *LinuxFeatures) atom(X *xgb.Conn, name string) (xproto.Atom, error) {
	l.mu.Lock()
	a, ok := l.atoms[name]
	l.mu.Unlock()
	if ok {
		return a, nil
	}
	reply, err := xproto.InternAtom(X, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("intern %s: %w", name, err)
	}
	l.mu.Lock()
	l.atoms[name] = reply.Atom
	l.mu.Unlock()
	return reply.Atom, nil
}

// property reads a whole window property of the given type
func (l *LinuxFeatures) property(X *xgb.Conn, win xproto.Window, name string, typ xproto.Atom) ([]byte, error) {
	prop, err := l.atom(X, name)
	if err != nil {
		return nil, err
	}
	reply, err := xproto.GetProperty(X, false, win, prop, typ, 0, 1<<16).Reply()
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	if reply.Format == 0 {
		return nil, fmt.Errorf("%s not set", name)
	}
	return reply.Value, nil
}

// CursorPosition queries the pointer on the root window. Fails without an
// X server (Wayland sessions without XWayland) or when the pointer is on
// another screen.
func (l *LinuxFeatures) CursorPosition() (x, y float64, ok bool) {
	d, err := l.connect()
	if err != nil {
		return 0, 0, false
	}
	reply, err := xproto.QueryPointer(d.conn, d.root).Reply()
	if err != nil || !reply.SameScreen {
		return 0, 0, false
	}
	return float64(reply.RootX), float64(reply.RootY), true
}

// SetAlwaysOnTop asks the window manager to add or remove _NET_WM_STATE_ABOVE
func (l *LinuxFeatures) SetAlwaysOnTop(handle WindowHandle, onTop bool) error {
	d, err := l.connect()
	if err != nil {
		return err
	}
	wmState, err := l.atom(d.conn, "_NET_WM_STATE")
	if err != nil {
		return err
	}
	above, err := l.atom(d.conn, "_NET_WM_STATE_ABOVE")
	if err != nil {
		return err
	}

	action := uint32(netWMStateRemove)
	if onTop {
		action = netWMStateAdd
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: xproto.Window(handle),
		Type:   wmState,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{action, uint32(above), 0, 1, 0}),
	}
	mask := uint32(xproto.EventMaskSubstructureNotify | xproto.EventMaskSubstructureRedirect)
	if err := xproto.SendEventChecked(d.conn, false, d.root, mask, string(ev.Bytes())).Check(); err != nil {
		return fmt.Errorf("send _NET_WM_STATE: %w", err)
	}
	return nil
}

// SetClickThrough sets the window's input shape. An empty input region lets
// every pointer event fall through to the window below; removing the input
// shape restores the default region covering the whole window.
func (l *LinuxFeatures) SetClickThrough(handle WindowHandle, clickThrough bool) error {
	d, err := l.connect()
	if err != nil {
		return err
	}
	if !d.shape {
		return ErrUnsupported
	}

	win := xproto.Window(handle)
	if clickThrough {
		err = shape.RectanglesChecked(d.conn, shape.SoSet, shape.SkInput, xproto.ClipOrderingUnsorted,
			win, 0, 0, nil).Check()
	} else {
		err = shape.MaskChecked(d.conn, shape.SoSet, shape.SkInput, win, 0, 0, xproto.PixmapNone).Check()
	}
	if err != nil {
		return fmt.Errorf("set input shape: %w", err)
	}
	return nil
}

// MoveWindowTo moves a window to a position
func (l *LinuxFeatures) MoveWindowTo(handle WindowHandle, x, y int) error {
	d, err := l.connect()
	if err != nil {
		return err
	}
	err = xproto.ConfigureWindowChecked(d.conn, xproto.Window(handle),
		xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(int32(x)), uint32(int32(y))}).Check()
	if err != nil {
		return fmt.Errorf("configure window: %w", err)
	}
	return nil
}

// GetWindowRect returns the window position in root coordinates and its size
func (l *LinuxFeatures) GetWindowRect(handle WindowHandle) (x, y, width, height int, err error) {
	d, err := l.connect()
	if err != nil {
		return 0, 0, 0, 0, err
	}
	win := xproto.Window(handle)
	geom, err := xproto.GetGeometry(d.conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("get geometry: %w", err)
	}
	// Geometry is relative to the window manager frame
	pos, err := xproto.TranslateCoordinates(d.conn, win, d.root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("translate coordinates: %w", err)
	}
	return int(pos.DstX), int(pos.DstY), int(geom.Width), int(geom.Height), nil
}

// GetWorkArea returns usable screen area (excluding panels/taskbars)
func (l *LinuxFeatures) GetWorkArea() (x, y, width, height int) {
	d, err := l.connect()
	if err != nil {
		return 0, 0, fallbackWidth, fallbackHeight
	}
	value, err := l.property(d.conn, d.root, "_NET_WORKAREA", xproto.AtomCardinal)
	if err == nil {
		if x, y, width, height, ok := workAreaFromCardinals(cardinals(value)); ok {
			return x, y, width, height
		}
	}
	return 0, 0, d.width, d.height
}

// FindWindow looks up a managed window by its title
func (l *LinuxFeatures) FindWindow(title string) (WindowHandle, error) {
	d, err := l.connect()
	if err != nil {
		return 0, err
	}
	value, err := l.property(d.conn, d.root, "_NET_CLIENT_LIST", xproto.AtomWindow)
	if err != nil {
		return 0, err
	}
	utf8, err := l.atom(d.conn, "UTF8_STRING")
	if err != nil {
		return 0, err
	}
	for _, id := range cardinals(value) {
		win := xproto.Window(id)
		name, err := l.property(d.conn, win, "_NET_WM_NAME", utf8)
		if err != nil {
			name, err = l.property(d.conn, win, "WM_NAME", xproto.AtomString)
		}
		if err == nil && string(name) == title {
			return WindowHandle(win), nil
		}
	}
	return 0, fmt.Errorf("window not found: %s", title)
}

// RegisterHotkey grabs a key combination on the root window, including its
// Caps Lock and Num Lock variants. The listener must be running.
func (l *LinuxFeatures) RegisterHotkey(id int, modifiers uint, keyCode uint) error {
	l.hotkeyMu.Lock()
	defer l.hotkeyMu.Unlock()
	if l.hotkeyConn == nil {
		return errors.New("hotkey listener not running")
	}

	sym, ok := vkKeysyms[keyCode]
	if !ok {
		return fmt.Errorf("no X keysym for key 0x%x: %w", keyCode, ErrUnsupported)
	}
	setup := xproto.Setup(l.hotkeyConn)
	mapping, err := xproto.GetKeyboardMapping(l.hotkeyConn, setup.MinKeycode,
		byte(setup.MaxKeycode-setup.MinKeycode+1)).Reply()
	if err != nil {
		return fmt.Errorf("get keyboard mapping: %w", err)
	}
	code, ok := keycodeForKeysym(setup.MinKeycode, mapping.KeysymsPerKeycode, mapping.Keysyms, sym)
	if !ok {
		return fmt.Errorf("keysym 0x%x is not on this keyboard", sym)
	}

	grab := keyGrab{code: code, mods: x11Modifiers(modifiers)}
	for _, lock := range lockMasks {
		err := xproto.GrabKeyChecked(l.hotkeyConn, true, l.hotkeyRoot, grab.mods|lock, grab.code,
			xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
		if err != nil {
			l.ungrab(grab)
			return fmt.Errorf("grab key (another client may own it): %w", err)
		}
	}
	l.grabs[id] = grab
	return nil
}

// UnregisterHotkey releases a grabbed key combination
func (l *LinuxFeatures) UnregisterHotkey(id int) error {
	l.hotkeyMu.Lock()
	defer l.hotkeyMu.Unlock()
	grab, ok := l.grabs[id]
	if !ok {
		return nil
	}
	delete(l.grabs, id)
	if l.hotkeyConn != nil {
		l.ungrab(grab)
	}
	return nil
}

// ungrab releases every lock variant of grab. hotkeyMu must be held.
func (l *LinuxFeatures) ungrab(grab keyGrab) {
	for _, lock := range lockMasks {
		xproto.UngrabKey(l.hotkeyConn, grab.code, l.hotkeyRoot, grab.mods|lock)
	}
}

// SetupHotkeyListener opens the hotkey connection, grabs Ctrl+Alt+. and
// dispatches key presses to callback until StopHotkeyListener
func (l *LinuxFeatures) SetupHotkeyListener(callback func(id int)) error {
	l.hotkeyMu.Lock()
	if l.hotkeyConn != nil {
		l.hotkeyMu.Unlock()
		return nil
	}
	X, err := xgb.NewConn()
	if err != nil {
		l.hotkeyMu.Unlock()
		return fmt.Errorf("connect to X server: %w", err)
	}
	l.hotkeyConn = X
	l.hotkeyRoot = xproto.Setup(X).DefaultScreen(X).Root
	l.hotkeyDone = make(chan struct{})
	done := l.hotkeyDone
	l.hotkeyMu.Unlock()

	go l.hotkeyLoop(X, callback, done)

	if err := l.RegisterHotkey(HotkeyTogglePet, ModCtrl|ModAlt, VK_OEM_PERIOD); err != nil {
		l.StopHotkeyListener()
		return err
	}
	return nil
}

func (l *LinuxFeatures) hotkeyLoop(X *xgb.Conn, callback func(id int), done chan struct{}) {
	defer close(done)
	for {
		ev, xerr := X.WaitForEvent()
		if ev == nil && xerr == nil {
			// Connection closed
			return
		}
		if xerr != nil {
			logger().Debug("hotkey connection error", zap.String("error", xerr.Error()))
			continue
		}
		press, ok := ev.(xproto.KeyPressEvent)
		if !ok {
			continue
		}
		if id, ok := l.matchGrab(press.Detail, stripLockMasks(press.State)); ok {
			callback(id)
		}
	}
}

func (l *LinuxFeatures) matchGrab(code xproto.Keycode, mods uint16) (int, bool) {
	l.hotkeyMu.Lock()
	defer l.hotkeyMu.Unlock()
	for id, g := range l.grabs {
		if g.code == code && g.mods == mods {
			return id, true
		}
	}
	return 0, false
}

// StopHotkeyListener releases all grabs and closes the hotkey connection
func (l *LinuxFeatures) StopHotkeyListener() {
	l.hotkeyMu.Lock()
	X, done := l.hotkeyConn, l.hotkeyDone
	if X == nil {
		l.hotkeyMu.Unlock()
		return
	}
	for id, g := range l.grabs {
		l.ungrab(g)
		delete(l.grabs, id)
	}
	l.hotkeyConn, l.hotkeyDone = nil, nil
	l.hotkeyMu.Unlock()

	X.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
	}
}

var _ PlatformFeatures = (*LinuxFeatures)(nil)

// Global instance
var Features = NewLinuxFeatures()
