package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"deskpet/internal/config"
)

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "chatty"})
	assert.Error(t, err)
}

func TestNewWithSink_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithSink(config.LogConfig{Level: "warn"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown")
	require.NoError(t, l.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "deskpet")
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithSink(config.LogConfig{Level: "INFO"}, zapcore.AddSync(&buf))
	require.NoError(t, err)

	l.Debug("before")
	assert.True(t, l.SetLevel("debug"))
	assert.Equal(t, zapcore.DebugLevel, l.Level())
	l.Debug("after")
	assert.False(t, l.SetLevel("nope"))
	assert.Equal(t, zapcore.DebugLevel, l.Level())

	assert.NotContains(t, buf.String(), "before")
	assert.Contains(t, buf.String(), "after")
}

func TestNew_WritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deskpet.log")
	var console bytes.Buffer
	l, err := NewWithSink(config.LogConfig{Level: "info", File: path, MaxSizeMB: 1}, zapcore.AddSync(&console))
	require.NoError(t, err)

	l.Named("watcher").Info("click-through state changed")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "click-through state changed", entry["msg"])
	assert.Equal(t, "deskpet.watcher", entry["logger"])
}
