package config

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all application settings
type Config struct {
	PollIntervalMs       int           `json:"poll_interval_ms" mapstructure:"poll_interval_ms"`
	ReportIntervalMs     int           `json:"report_interval_ms" mapstructure:"report_interval_ms"`
	DefaultRegion        RegionSize    `json:"default_region" mapstructure:"default_region"`
	AlwaysOnTop          bool          `json:"always_on_top" mapstructure:"always_on_top"`
	PetScale             float64       `json:"pet_scale" mapstructure:"pet_scale"`
	StageWidth           int           `json:"stage_width" mapstructure:"stage_width"`
	StageHeight          int           `json:"stage_height" mapstructure:"stage_height"`
	WindowX              int           `json:"window_x" mapstructure:"window_x"` // -1 = centered in work area
	WindowY              int           `json:"window_y" mapstructure:"window_y"`
	FailureWarnThreshold int           `json:"failure_warn_threshold" mapstructure:"failure_warn_threshold"` // 0 = silent
	Log                  LogConfig     `json:"log" mapstructure:"log"`
	Journal              JournalConfig `json:"journal" mapstructure:"journal"`
}

// RegionSize is the placeholder hit region used before the pet reports its bounds
type RegionSize struct {
	Width  float64 `json:"width" mapstructure:"width"`
	Height float64 `json:"height" mapstructure:"height"`
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level      string `json:"level" mapstructure:"level"`
	File       string `json:"file,omitempty" mapstructure:"file"`
	MaxSizeMB  int    `json:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `json:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `json:"compress" mapstructure:"compress"`
}

// JournalConfig controls the click-through transition journal
type JournalConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path,omitempty" mapstructure:"path"` // empty = journal.db next to config
}

const (
	envPrefix       = "DESKPET"
	minPollInterval = 4
	maxPollInterval = 1000
	minPetScale     = 1
	maxPetScale     = 8
)

// Default returns the default configuration
func Default() *Config {
	return &Config{
		PollIntervalMs:   16,
		ReportIntervalMs: 100,
		DefaultRegion:    RegionSize{Width: 128, Height: 128},
		AlwaysOnTop:      true,
		PetScale:         2,
		StageWidth:       400,
		StageHeight:      300,
		WindowX:          -1,
		WindowY:          -1,
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
		Journal: JournalConfig{Enabled: true},
	}
}

// Manager loads, saves and watches a config file
type Manager struct {
	mu        sync.RWMutex
	v         *viper.Viper
	path      string
	config    *Config
	callbacks []func(*Config)
	watching  bool
	// lastSum is the hash of the file content last loaded or written, so
	// our own saves and repeated events for one write are not reloaded
	lastSum [sha256.Size]byte
}

// NewManager creates a manager for the file at path. An empty path selects
// the platform default location.
func NewManager(path string) (*Manager, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	return &Manager{v: v, path: path, config: Default()}, nil
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("poll_interval_ms", d.PollIntervalMs)
	v.SetDefault("report_interval_ms", d.ReportIntervalMs)
	v.SetDefault("default_region.width", d.DefaultRegion.Width)
	v.SetDefault("default_region.height", d.DefaultRegion.Height)
	v.SetDefault("always_on_top", d.AlwaysOnTop)
	v.SetDefault("pet_scale", d.PetScale)
	v.SetDefault("stage_width", d.StageWidth)
	v.SetDefault("stage_height", d.StageHeight)
	v.SetDefault("window_x", d.WindowX)
	v.SetDefault("window_y", d.WindowY)
	v.SetDefault("failure_warn_threshold", d.FailureWarnThreshold)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("log.compress", d.Log.Compress)
	v.SetDefault("journal.enabled", d.Journal.Enabled)
	v.SetDefault("journal.path", d.Journal.Path)
}

// Path returns the config file location
func (m *Manager) Path() string {
	return m.path
}

// Get returns the current config. Callers must not mutate it; use Update.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Load reads the config from disk. A missing file keeps the defaults.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reload()
}

// reload must be called with m.mu held for write
func (m *Manager) reload() error {
	if err := m.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read config %s: %w", m.path, err)
		}
	}

	cfg := &Config{}
	if err := m.v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	Normalize(cfg)
	m.config = cfg
	if data, err := os.ReadFile(m.path); err == nil {
		m.lastSum = sha256.Sum256(data)
	}
	return nil
}

// Update applies fn to a copy of the config, then saves it
func (m *Manager) Update(fn func(*Config)) error {
	m.mu.Lock()
	next := *m.config
	fn(&next)
	Normalize(&next)
	m.config = &next
	m.mu.Unlock()
	return m.Save()
}

// Save writes the config to disk as indented JSON
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return err
	}

	prev := m.lastSum
	m.lastSum = sha256.Sum256(data)
	if err := os.WriteFile(m.path, data, 0600); err != nil {
		m.lastSum = prev
		return err
	}
	return nil
}

// Watch reloads the file on external edits and notifies OnChange callbacks
func (m *Manager) Watch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watching {
		return
	}

	m.v.OnConfigChange(m.handleFileEvent)
	m.v.WatchConfig()
	m.watching = true
}

// handleFileEvent reloads the file when its content differs from what was
// last loaded or saved. Truncated or half-written files fail to parse and
// are picked up by the event for the completed write.
func (m *Manager) handleFileEvent(e fsnotify.Event) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}
	m.mu.Lock()
	data, err := os.ReadFile(m.path)
	if err != nil || sha256.Sum256(data) == m.lastSum {
		m.mu.Unlock()
		return
	}
	if err := m.reload(); err != nil {
		m.mu.Unlock()
		return
	}
	m.notifyLocked()
}

// OnChange registers a callback invoked after an external edit is reloaded
func (m *Manager) OnChange(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// notifyLocked releases m.mu before running callbacks
func (m *Manager) notifyLocked() {
	cfg := m.config
	callbacks := make([]func(*Config), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.mu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

// Normalize clamps out-of-range values
func Normalize(c *Config) {
	d := Default()
	switch {
	case c.PollIntervalMs <= 0:
		c.PollIntervalMs = d.PollIntervalMs
	case c.PollIntervalMs < minPollInterval:
		c.PollIntervalMs = minPollInterval
	case c.PollIntervalMs > maxPollInterval:
		c.PollIntervalMs = maxPollInterval
	}
	if c.ReportIntervalMs <= 0 {
		c.ReportIntervalMs = d.ReportIntervalMs
	}
	if c.PetScale < minPetScale {
		c.PetScale = minPetScale
	} else if c.PetScale > maxPetScale {
		c.PetScale = maxPetScale
	}
	if c.StageWidth <= 0 {
		c.StageWidth = d.StageWidth
	}
	if c.StageHeight <= 0 {
		c.StageHeight = d.StageHeight
	}
	if c.FailureWarnThreshold < 0 {
		c.FailureWarnThreshold = 0
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// Dir returns the per-platform config directory:
//   - Windows: %APPDATA%\DeskPet
//   - macOS:   ~/Library/Application Support/DeskPet
//   - Linux:   ~/.config/deskpet (XDG_CONFIG_HOME)
func Dir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(appData, "DeskPet"), nil

	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", "DeskPet"), nil

	default: // linux and others
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configHome = filepath.Join(home, ".config")
		}
		return filepath.Join(configHome, "deskpet"), nil
	}
}

// DefaultPath returns the path to config.json in Dir
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// JournalPath resolves where the journal database lives
func (c *Config) JournalPath(configPath string) string {
	if c.Journal.Path != "" {
		return c.Journal.Path
	}
	return filepath.Join(filepath.Dir(configPath), "journal.db")
}
