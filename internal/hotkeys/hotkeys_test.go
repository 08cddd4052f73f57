package hotkeys

import (
	"errors"
	"testing"

	"deskpet/internal/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeListener struct {
	callback   func(id int)
	setupErr   error
	setupCalls int
	stopCalls  int
}

func (f *fakeListener) SetupHotkeyListener(callback func(id int)) error {
	f.setupCalls++
	if f.setupErr != nil {
		return f.setupErr
	}
	f.callback = callback
	return nil
}

func (f *fakeListener) StopHotkeyListener() {
	f.stopCalls++
}

func TestManager_TogglePetHotkey(t *testing.T) {
	l := &fakeListener{}
	m := NewManager(l, nil)

	toggles := 0
	m.SetToggleCallback(func() { toggles++ })
	require.NoError(t, m.Start())
	require.NotNil(t, l.callback)

	l.callback(platform.HotkeyTogglePet)
	l.callback(platform.HotkeyTogglePet)
	l.callback(99)

	assert.Equal(t, 2, toggles)
}

func TestManager_StartStopIdempotent(t *testing.T) {
	l := &fakeListener{}
	m := NewManager(l, nil)

	require.NoError(t, m.Start())
	require.NoError(t, m.Start())
	assert.True(t, m.IsRunning())
	assert.Equal(t, 1, l.setupCalls)

	m.Stop()
	m.Stop()
	assert.False(t, m.IsRunning())
	assert.Equal(t, 1, l.stopCalls)
}

func TestManager_SetupFailure(t *testing.T) {
	l := &fakeListener{setupErr: errors.New("boom")}
	m := NewManager(l, nil)

	assert.Error(t, m.Start())
	assert.False(t, m.IsRunning())
}

func TestManager_NoCallback(t *testing.T) {
	l := &fakeListener{}
	m := NewManager(l, nil)
	require.NoError(t, m.Start())

	assert.NotPanics(t, func() { l.callback(platform.HotkeyTogglePet) })
}
