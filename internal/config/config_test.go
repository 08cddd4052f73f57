package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_MissingFileKeepsDefaults(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	require.NoError(t, m.Load())
	assert.Equal(t, Default(), m.Get())
}

func TestManager_LoadsFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"poll_interval_ms": 33,
		"default_region": {"width": 96},
		"always_on_top": false,
		"log": {"level": "debug"}
	}`), 0600))

	m, err := NewManager(path)
	require.NoError(t, err)
	require.NoError(t, m.Load())

	cfg := m.Get()
	assert.Equal(t, 33, cfg.PollIntervalMs)
	assert.Equal(t, float64(96), cfg.DefaultRegion.Width)
	assert.Equal(t, float64(128), cfg.DefaultRegion.Height)
	assert.False(t, cfg.AlwaysOnTop)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 400, cfg.StageWidth)
}

func TestManager_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"poll_interval_ms": 33}`), 0600))
	t.Setenv("DESKPET_POLL_INTERVAL_MS", "50")
	t.Setenv("DESKPET_LOG_LEVEL", "warn")

	m, err := NewManager(path)
	require.NoError(t, err)
	require.NoError(t, m.Load())

	assert.Equal(t, 50, m.Get().PollIntervalMs)
	assert.Equal(t, "warn", m.Get().Log.Level)
}

func TestManager_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0600))

	m, err := NewManager(path)
	require.NoError(t, err)
	assert.Error(t, m.Load())
}

func TestManager_UpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	m, err := NewManager(path)
	require.NoError(t, err)

	require.NoError(t, m.Update(func(c *Config) {
		c.WindowX = 120
		c.WindowY = 80
		c.PollIntervalMs = 1
	}))

	reloaded, err := NewManager(path)
	require.NoError(t, err)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, 120, reloaded.Get().WindowX)
	assert.Equal(t, 80, reloaded.Get().WindowY)
	assert.Equal(t, minPollInterval, reloaded.Get().PollIntervalMs)
}

func TestManager_FileEventsReloadOnlyOnNewContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	m, err := NewManager(path)
	require.NoError(t, err)
	require.NoError(t, m.Load())

	var seen []int
	m.OnChange(func(c *Config) { seen = append(seen, c.PollIntervalMs) })

	write := fsnotify.Event{Name: path, Op: fsnotify.Write}

	// Our own save can raise several events (truncate, then write)
	require.NoError(t, m.Update(func(c *Config) { c.PollIntervalMs = 20 }))
	m.handleFileEvent(write)
	m.handleFileEvent(write)
	assert.Empty(t, seen)

	// A truncated file does not parse and is skipped
	require.NoError(t, os.WriteFile(path, nil, 0600))
	m.handleFileEvent(write)
	assert.Empty(t, seen)
	assert.Equal(t, 20, m.Get().PollIntervalMs)

	// An external edit reloads once, however many events it raises
	require.NoError(t, os.WriteFile(path, []byte(`{"poll_interval_ms": 40}`), 0600))
	m.handleFileEvent(write)
	m.handleFileEvent(write)
	assert.Equal(t, []int{40}, seen)

	m.handleFileEvent(fsnotify.Event{Name: path, Op: fsnotify.Chmod})
	assert.Equal(t, []int{40}, seen)
}

func TestNormalize(t *testing.T) {
	c := &Config{PollIntervalMs: 5000, PetScale: 20, FailureWarnThreshold: -3}
	Normalize(c)

	assert.Equal(t, maxPollInterval, c.PollIntervalMs)
	assert.Equal(t, float64(maxPetScale), c.PetScale)
	assert.Equal(t, 0, c.FailureWarnThreshold)
	assert.Equal(t, 100, c.ReportIntervalMs)
	assert.Equal(t, 400, c.StageWidth)
	assert.Equal(t, 300, c.StageHeight)
	assert.Equal(t, "info", c.Log.Level)

	c = &Config{PollIntervalMs: 0, PetScale: 0.2}
	Normalize(c)
	assert.Equal(t, 16, c.PollIntervalMs)
	assert.Equal(t, float64(minPetScale), c.PetScale)
}

func TestJournalPath(t *testing.T) {
	c := Default()
	assert.Equal(t, filepath.Join("cfg", "journal.db"), c.JournalPath(filepath.Join("cfg", "config.json")))

	c.Journal.Path = "/tmp/elsewhere.db"
	assert.Equal(t, "/tmp/elsewhere.db", c.JournalPath("ignored"))
}

func TestDirUsesXDGOnLinux(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("linux only")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, "deskpet", "config.json"), path)
}
