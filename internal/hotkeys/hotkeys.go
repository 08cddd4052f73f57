package hotkeys

import (
	"sync"

	"deskpet/internal/platform"

	"go.uber.org/zap"
)

// ToggleCallback is called when the toggle pet hotkey is pressed
type ToggleCallback func()

// Listener is the subset of platform.PlatformFeatures the manager drives
type Listener interface {
	SetupHotkeyListener(callback func(id int)) error
	StopHotkeyListener()
}

// Manager handles global hotkey registration and events
type Manager struct {
	platform       Listener
	log            *zap.Logger
	toggleCallback ToggleCallback
	mu             sync.Mutex
	running        bool
}

// NewManager creates a hotkey manager on top of l. A nil l uses the
// current platform.
func NewManager(l Listener, log *zap.Logger) *Manager {
	if l == nil {
		l = platform.Features
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		platform: l,
		log:      log,
	}
}

// SetToggleCallback sets the callback for the show/hide pet hotkey
func (m *Manager) SetToggleCallback(callback ToggleCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toggleCallback = callback
}

// Start begins listening for hotkeys
func (m *Manager) Start() error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	m.running = true
	m.mu.Unlock()

	if err := m.platform.SetupHotkeyListener(m.handleHotkey); err != nil {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
		m.log.Warn("failed to set up hotkey listener", zap.Error(err))
		return err
	}

	m.log.Info("hotkey listener started", zap.String("toggle_pet", "Ctrl+Alt+."))
	return nil
}

// Stop stops listening for hotkeys
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	m.platform.StopHotkeyListener()
	m.running = false
	m.log.Info("hotkey listener stopped")
}

// handleHotkey processes hotkey events
func (m *Manager) handleHotkey(id int) {
	m.mu.Lock()
	toggleCb := m.toggleCallback
	m.mu.Unlock()

	switch id {
	case platform.HotkeyTogglePet:
		m.log.Debug("hotkey: toggle pet")
		if toggleCb != nil {
			toggleCb()
		}
	default:
		m.log.Debug("unknown hotkey", zap.Int("id", id))
	}
}

// IsRunning returns whether the hotkey listener is active
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
