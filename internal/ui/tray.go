package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"go.uber.org/zap"

	"deskpet/internal/assets"
)

// TrayCallbacks are the actions behind the tray menu
type TrayCallbacks struct {
	OnShowPet  func()
	OnHidePet  func()
	OnPause    func(paused bool)
	OnSettings func()
	OnQuit     func()
}

// TrayManager handles the system tray icon and menu
type TrayManager struct {
	app        fyne.App
	log        *zap.Logger
	menu       *fyne.Menu
	toggleItem *fyne.MenuItem
	pauseItem  *fyne.MenuItem
	hoversItem *fyne.MenuItem
	callbacks  TrayCallbacks
	petShown   bool
	paused     bool
}

// NewTrayManager creates a new tray manager
func NewTrayManager(app fyne.App, log *zap.Logger) *TrayManager {
	if log == nil {
		log = zap.NewNop()
	}
	return &TrayManager{
		app:      app,
		log:      log,
		petShown: true,
	}
}

// SetCallbacks sets the callback functions for tray actions
func (t *TrayManager) SetCallbacks(cb TrayCallbacks) {
	t.callbacks = cb
}

// Setup builds the menu and installs it in the system tray. The menu is
// built even when the driver has no tray.
func (t *TrayManager) Setup() error {
	t.menu = t.buildMenu()

	desk, ok := t.app.(desktop.App)
	if !ok {
		return fmt.Errorf("system tray not supported on this platform")
	}
	desk.SetSystemTrayMenu(t.menu)
	desk.SetSystemTrayIcon(assets.TrayIcon())
	t.log.Info("system tray initialized")
	return nil
}

// Menu returns the tray menu, or nil before Setup
func (t *TrayManager) Menu() *fyne.Menu {
	return t.menu
}

func (t *TrayManager) buildMenu() *fyne.Menu {
	t.toggleItem = fyne.NewMenuItem(petLabel(t.petShown), t.togglePet)
	t.pauseItem = fyne.NewMenuItem(pauseLabel(t.paused), t.togglePause)

	t.hoversItem = fyne.NewMenuItem(hoversLabel(-1), nil)
	t.hoversItem.Disabled = true

	settingsItem := fyne.NewMenuItem("Settings...", func() {
		if t.callbacks.OnSettings != nil {
			t.callbacks.OnSettings()
		}
	})

	quitItem := fyne.NewMenuItem("Quit", func() {
		if t.callbacks.OnQuit != nil {
			t.callbacks.OnQuit()
		}
	})

	return fyne.NewMenu("DeskPet",
		t.toggleItem,
		t.pauseItem,
		fyne.NewMenuItemSeparator(),
		t.hoversItem,
		fyne.NewMenuItemSeparator(),
		settingsItem,
		fyne.NewMenuItemSeparator(),
		quitItem,
	)
}

func petLabel(shown bool) string {
	if shown {
		return "Hide Pet"
	}
	return "Show Pet"
}

func pauseLabel(paused bool) string {
	if paused {
		return "Resume Click-Through"
	}
	return "Pause Click-Through"
}

func hoversLabel(n int) string {
	if n < 0 {
		return "Hovers today: --"
	}
	return fmt.Sprintf("Hovers today: %d", n)
}

// togglePet handles the show/hide item. The callbacks own the state and
// report back through SetPetState.
func (t *TrayManager) togglePet() {
	cb := t.callbacks.OnShowPet
	if t.petShown {
		cb = t.callbacks.OnHidePet
	}
	if cb == nil {
		t.SetPetState(!t.petShown)
		return
	}
	cb()
}

// togglePause handles the pause/resume item
func (t *TrayManager) togglePause() {
	t.paused = !t.paused
	if t.callbacks.OnPause != nil {
		t.callbacks.OnPause(t.paused)
	}
	t.pauseItem.Label = pauseLabel(t.paused)
	t.refresh()
}

// SetPetState updates the tray to reflect pet visibility
func (t *TrayManager) SetPetState(shown bool) {
	t.petShown = shown
	if t.toggleItem != nil {
		t.toggleItem.Label = petLabel(shown)
		t.refresh()
	}
}

// UpdateHovers shows today's hover count; negative means unknown
func (t *TrayManager) UpdateHovers(n int) {
	if t.hoversItem == nil {
		return
	}
	label := hoversLabel(n)
	if t.hoversItem.Label == label {
		return
	}
	t.hoversItem.Label = label
	t.refresh()
}

func (t *TrayManager) refresh() {
	if t.menu != nil {
		t.menu.Refresh()
	}
}
