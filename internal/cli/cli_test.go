package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"deskpet/internal/app"
	"deskpet/internal/clickthrough"
	"deskpet/internal/journal"
)

func executeCommand(t *testing.T, run func(app.Options) error, args ...string) (string, error) {
	t.Helper()
	if run == nil {
		run = func(app.Options) error { return nil }
	}
	cmd := NewRootCmd(run)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRoot_PassesOptions(t *testing.T) {
	var got app.Options
	_, err := executeCommand(t, func(o app.Options) error {
		got = o
		return nil
	}, "--config", "/tmp/x.json", "--poll-interval", "25ms", "--log-level", "debug")

	require.NoError(t, err)
	assert.Equal(t, app.Options{
		ConfigPath:   "/tmp/x.json",
		PollInterval: 25 * time.Millisecond,
		LogLevel:     "debug",
	}, got)
}

func TestRoot_RejectsNegativeInterval(t *testing.T) {
	called := false
	_, err := executeCommand(t, func(app.Options) error {
		called = true
		return nil
	}, "--poll-interval", "-5ms")

	assert.Error(t, err)
	assert.False(t, called)
}

func TestRoot_RejectsArgs(t *testing.T) {
	_, err := executeCommand(t, nil, "extra")
	assert.Error(t, err)
}

func TestConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	out, err := executeCommand(t, nil, "config", "path", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, path, strings.TrimSpace(out))
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "cfg.json")

	out, err := executeCommand(t, nil, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"poll_interval_ms": 16`)

	_, err = executeCommand(t, nil, "config", "init", "--config", path)
	assert.ErrorContains(t, err, "already exists")

	_, err = executeCommand(t, nil, "config", "init", "--force", "--config", path)
	assert.NoError(t, err)
}

func TestParseRegion(t *testing.T) {
	r, err := parseRegion("100, 200,64,32")
	require.NoError(t, err)
	assert.Equal(t, clickthrough.HitRegion{X: 100, Y: 200, Width: 64, Height: 32}, r)

	_, err = parseRegion("1,2,3")
	assert.Error(t, err)
	_, err = parseRegion("a,2,3,4")
	assert.Error(t, err)
}

func TestHistory(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.json")

	_, err := executeCommand(t, nil, "history", "--config", cfgPath)
	assert.ErrorContains(t, err, "no journal")

	j, err := journal.Open(filepath.Join(dir, "journal.db"), nil)
	require.NoError(t, err)
	at := time.Date(2026, 10, 19, 9, 0, 0, 0, time.Local)
	j.StateChanged(clickthrough.Passthrough, clickthrough.Intercept, at)
	j.StateChanged(clickthrough.Intercept, clickthrough.Passthrough, at.Add(time.Second))
	j.StateChanged(clickthrough.Passthrough, clickthrough.Intercept, at.Add(2*time.Second))
	require.NoError(t, j.Close())

	out, err := executeCommand(t, nil, "history", "--config", cfgPath, "-n", "2")
	require.NoError(t, err)
	assert.Equal(t,
		"2026-10-19 09:00:01.000  passthrough\n"+
			"2026-10-19 09:00:02.000  intercept\n", out)

	_, err = executeCommand(t, nil, "history", "--config", cfgPath, "-n", "0")
	assert.Error(t, err)
}

func TestPrintHistory_Empty(t *testing.T) {
	var out bytes.Buffer
	printHistory(&out, nil)
	assert.Equal(t, "no transitions recorded\n", out.String())
}

// scriptedCursor replays positions, then repeats the last one
type scriptedCursor struct {
	mu     sync.Mutex
	points [][2]float64
	i      int
}

func (c *scriptedCursor) CursorPosition() (float64, float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.points[c.i]
	if c.i < len(c.points)-1 {
		c.i++
	}
	return p[0], p[1], true
}

func TestRunTrace_ReportsTransitions(t *testing.T) {
	defer goleak.VerifyNone(t)

	cursor := &scriptedCursor{points: [][2]float64{{500, 500}, {100, 100}, {500, 500}}}
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	err := runTrace(ctx, &out, cursor, traceOptions{
		interval: 5 * time.Millisecond,
		region:   clickthrough.HitRegion{X: 100, Y: 100, Width: 20, Height: 20},
		samples:  true,
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "-> intercept")
	assert.Contains(t, text, "-> passthrough")
	assert.Contains(t, text, "inside=true")
	assert.Contains(t, text, "2 transitions, final state passthrough")
}
