package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"deskpet/internal/assets"
	"deskpet/internal/clickthrough"
	"deskpet/internal/config"
	"deskpet/internal/platform"
)

const (
	petTitle       = "DeskPet"
	handleAttempts = 10
)

// ErrNoHandle is returned by window operations before the native handle is known
var ErrNoHandle = errors.New("native window handle not resolved")

// PetWindow is the always-on-top stage the pet lives on. Outside the sprite
// the stage is click-through; the watcher flips it when the cursor is over
// the pet.
type PetWindow struct {
	app      fyne.App
	window   fyne.Window
	platform platform.PlatformFeatures
	bounds   *clickthrough.BoundsStore
	log      *zap.Logger

	sprite *PetSprite
	stage  *fyne.Container

	mu           sync.RWMutex
	cfg          config.Config
	visible      bool
	initialized  bool
	windowHandle platform.WindowHandle
	ready        chan struct{}
	readyOnce    sync.Once
}

// NewPetWindow creates the pet window. bounds receives the sprite's
// screen-space region.
func NewPetWindow(app fyne.App, cfg *config.Config, bounds *clickthrough.BoundsStore,
	features platform.PlatformFeatures, log *zap.Logger) *PetWindow {
	if features == nil {
		features = platform.Features
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PetWindow{
		app:      app,
		cfg:      *cfg,
		bounds:   bounds,
		platform: features,
		log:      log,
		ready:    make(chan struct{}),
	}
}

// Setup creates the window and its content. Must run on the UI goroutine.
func (p *PetWindow) Setup() error {
	if drv, ok := p.app.Driver().(desktop.Driver); ok {
		// Borderless, so the content origin is the window origin
		p.window = drv.CreateSplashWindow()
		p.window.SetTitle(petTitle)
	} else {
		p.window = p.app.NewWindow(petTitle)
	}
	p.window.SetPadded(false)
	p.window.SetFixedSize(true)
	p.window.SetIcon(assets.AppIcon())

	p.sprite = NewPetSprite(assets.PetFrames(), p.spriteSize())
	p.sprite.OnDragged = func(proposed fyne.Position) fyne.Position {
		return ClampPosition(proposed, p.sprite.Size(), p.stageSize())
	}
	p.sprite.OnDragEnd = func() {
		p.reportBounds()
	}

	bg := canvas.NewRectangle(colorStageBg)
	bg.Resize(p.stageSize())
	p.stage = container.NewWithoutLayout(bg, p.sprite)
	p.window.SetContent(p.stage)
	p.window.Resize(p.stageSize())

	p.sprite.Resize(p.spriteSize())
	p.centerSprite()

	p.initialized = true
	return nil
}

func (p *PetWindow) spriteSize() fyne.Size {
	p.mu.RLock()
	defer p.mu.RUnlock()
	side := float32(assets.FrameSize) * float32(p.cfg.PetScale)
	return fyne.NewSize(side, side)
}

func (p *PetWindow) stageSize() fyne.Size {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return fyne.NewSize(float32(p.cfg.StageWidth), float32(p.cfg.StageHeight))
}

func (p *PetWindow) centerSprite() {
	stage, size := p.stageSize(), p.sprite.Size()
	pos := fyne.NewPos((stage.Width-size.Width)/2, (stage.Height-size.Height)/2)
	p.sprite.Move(ClampPosition(pos, size, stage))
}

// Show displays the pet window. Must run on the UI goroutine.
func (p *PetWindow) Show() {
	p.mu.Lock()
	if !p.initialized {
		p.mu.Unlock()
		return
	}
	p.visible = true
	p.mu.Unlock()

	p.window.Show()

	if p.Handle() != 0 {
		p.applyWindowFeatures()
		return
	}

	// Native handle is only valid once the window is mapped
	go func() {
		for attempt := 0; attempt < handleAttempts; attempt++ {
			time.Sleep(200 * time.Millisecond)
			var ok bool
			fyne.DoAndWait(func() { ok = p.applyWindowFeatures() })
			if ok {
				return
			}
		}
		p.log.Error("giving up on native window handle; click-through disabled", zap.Int("attempts", handleAttempts))
	}()
}

// Hide hides the pet window
func (p *PetWindow) Hide() {
	p.mu.Lock()
	p.visible = false
	p.mu.Unlock()
	p.window.Hide()
}

// Toggle toggles pet visibility and returns the new state
func (p *PetWindow) Toggle() bool {
	if p.IsVisible() {
		p.Hide()
		return false
	}
	p.Show()
	return p.IsVisible()
}

// IsVisible returns current visibility state
func (p *PetWindow) IsVisible() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.visible
}

// Ready is closed once the native handle is known and the window starts in
// passthrough. The watcher must not run before this.
func (p *PetWindow) Ready() <-chan struct{} {
	return p.ready
}

// Handle returns the native window handle, or 0 before Ready
func (p *PetWindow) Handle() platform.WindowHandle {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.windowHandle
}

// nativeHandle reads the handle from the fyne driver, falling back to a
// lookup by title.
func (p *PetWindow) nativeHandle() (platform.WindowHandle, error) {
	var handle platform.WindowHandle
	if nw, ok := p.window.(driver.NativeWindow); ok {
		nw.RunNative(func(ctx any) {
			switch c := ctx.(type) {
			case driver.WindowsWindowContext:
				handle = platform.WindowHandle(c.HWND)
			case *driver.WindowsWindowContext:
				handle = platform.WindowHandle(c.HWND)
			case driver.MacWindowContext:
				handle = platform.WindowHandle(c.NSWindow)
			case *driver.MacWindowContext:
				handle = platform.WindowHandle(c.NSWindow)
			case driver.X11WindowContext:
				handle = platform.WindowHandle(c.WindowHandle)
			case *driver.X11WindowContext:
				handle = platform.WindowHandle(c.WindowHandle)
			}
		})
	}
	if handle != 0 {
		return handle, nil
	}
	return p.platform.FindWindow(petTitle)
}

// applyWindowFeatures resolves the handle, positions the stage, applies
// always-on-top and, the first time, the initial passthrough state. Runs on
// the UI goroutine. Returns false if the handle is not available yet.
func (p *PetWindow) applyWindowFeatures() bool {
	p.mu.RLock()
	handle := p.windowHandle
	cfg := p.cfg
	p.mu.RUnlock()

	if handle == 0 {
		h, err := p.nativeHandle()
		if err != nil {
			p.log.Debug("window handle not available yet", zap.Error(err))
			return false
		}
		handle = h
		p.mu.Lock()
		p.windowHandle = h
		p.mu.Unlock()

		workX, workY, workW, workH := p.platform.GetWorkArea()
		stage := p.stageSize()
		scale := p.window.Canvas().Scale()
		x, y := InitialWindowPosition(cfg.WindowX, cfg.WindowY, workX, workY, workW, workH,
			int(stage.Width*scale), int(stage.Height*scale))
		if err := p.platform.MoveWindowTo(handle, x, y); err != nil {
			p.log.Debug("failed to move window", zap.Error(err))
		}

		// Matches the watcher's initial state
		if err := p.platform.SetClickThrough(handle, clickthrough.Passthrough.IgnoresCursor()); err != nil {
			p.log.Debug("initial passthrough not applied", zap.Error(err))
		}
	}

	if err := p.platform.SetAlwaysOnTop(handle, cfg.AlwaysOnTop); err != nil {
		p.log.Warn("failed to set always on top", zap.Error(err))
	}

	p.publishRegion(handle)
	p.log.Info("window features applied", zap.Uint64("handle", uint64(handle)), zap.Bool("always_on_top", cfg.AlwaysOnTop))
	p.readyOnce.Do(func() { close(p.ready) })
	return true
}

// SetClickThrough switches the window's input transparency. Safe from any
// goroutine; the native call runs on the UI goroutine.
func (p *PetWindow) SetClickThrough(ignore bool) error {
	handle := p.Handle()
	if handle == 0 {
		return ErrNoHandle
	}
	var err error
	fyne.DoAndWait(func() {
		err = p.platform.SetClickThrough(handle, ignore)
	})
	return err
}

// ApplyConfig updates always-on-top and pet scale. Runs on the UI goroutine.
func (p *PetWindow) ApplyConfig(cfg *config.Config) {
	p.mu.Lock()
	prev := p.cfg
	p.cfg = *cfg
	handle := p.windowHandle
	p.mu.Unlock()

	if !p.initialized {
		return
	}

	if prev.AlwaysOnTop != cfg.AlwaysOnTop && handle != 0 {
		if err := p.platform.SetAlwaysOnTop(handle, cfg.AlwaysOnTop); err != nil {
			p.log.Warn("failed to set always on top", zap.Error(err))
		}
	}

	if prev.PetScale != cfg.PetScale || prev.StageWidth != cfg.StageWidth || prev.StageHeight != cfg.StageHeight {
		stage := p.stageSize()
		p.window.Resize(stage)
		if bg, ok := p.stage.Objects[0].(*canvas.Rectangle); ok {
			bg.Resize(stage)
		}
		p.sprite.SetDisplaySize(p.spriteSize())
		p.sprite.Move(ClampPosition(p.sprite.Position(), p.sprite.Size(), stage))
		p.reportBounds()
	}
}

// WindowPosition returns the current stage position in screen pixels
func (p *PetWindow) WindowPosition() (x, y int, err error) {
	handle := p.Handle()
	if handle == 0 {
		return 0, 0, ErrNoHandle
	}
	x, y, _, _, err = p.platform.GetWindowRect(handle)
	return x, y, err
}

// reportBounds publishes the sprite region. Runs on the UI goroutine.
func (p *PetWindow) reportBounds() {
	handle := p.Handle()
	if handle == 0 {
		return
	}
	p.publishRegion(handle)
}

func (p *PetWindow) publishRegion(handle platform.WindowHandle) {
	if !p.IsVisible() {
		return
	}
	x, y, _, _, err := p.platform.GetWindowRect(handle)
	if err != nil {
		p.log.Debug("window rect unavailable", zap.Error(err))
		return
	}
	region := ScreenRegion(x, y, p.window.Canvas().Scale(), p.sprite.Position(), p.sprite.Size())
	p.bounds.Set(region)
}

// RunReporter republishes the sprite region every interval so moves of the
// stage window are tracked. Returns nil when ctx is done.
func (p *PetWindow) RunReporter(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("report interval must be positive, got %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fyne.DoAndWait(p.reportBounds)
		}
	}
}

// Animate runs the sprite animation until ctx is done
func (p *PetWindow) Animate(ctx context.Context) error {
	return p.sprite.Animate(ctx)
}

// SetContextMenu shows menu when the pet is right-clicked. Call after Setup.
func (p *PetWindow) SetContextMenu(menu *fyne.Menu) {
	if p.sprite == nil || menu == nil {
		return
	}
	p.sprite.OnMenu = func(at fyne.Position) {
		widget.ShowPopUpMenuAtPosition(menu, p.window.Canvas(), at)
	}
}
