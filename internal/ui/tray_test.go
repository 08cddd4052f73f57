package ui

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrayMenu_Actions(t *testing.T) {
	a := test.NewTempApp(t)
	tm := NewTrayManager(a, nil)

	// Callbacks report state back the way the app does
	visible := true
	var shown, hidden int
	var pauses []bool
	quit := false
	tm.SetCallbacks(TrayCallbacks{
		OnShowPet: func() {
			shown++
			visible = true
			tm.SetPetState(true)
		},
		OnHidePet: func() {
			hidden++
			visible = false
			tm.SetPetState(false)
		},
		OnPause: func(p bool) { pauses = append(pauses, p) },
		OnQuit:  func() { quit = true },
	})
	_ = tm.Setup()
	menu := tm.Menu()
	require.NotNil(t, menu)
	require.Len(t, menu.Items, 8)

	assert.Equal(t, "Hide Pet", tm.toggleItem.Label)
	tm.toggleItem.Action()
	assert.False(t, visible)
	assert.Equal(t, "Show Pet", tm.toggleItem.Label)

	tm.toggleItem.Action()
	assert.True(t, visible)
	assert.Equal(t, "Hide Pet", tm.toggleItem.Label)

	tm.toggleItem.Action()
	assert.False(t, visible)
	assert.Equal(t, 2, hidden)
	assert.Equal(t, 1, shown)

	tm.pauseItem.Action()
	assert.Equal(t, "Resume Click-Through", tm.pauseItem.Label)
	tm.pauseItem.Action()
	assert.Equal(t, []bool{true, false}, pauses)

	menu.Items[len(menu.Items)-1].Action()
	assert.True(t, quit)
}

func TestTrayMenu_ToggleWithoutCallbacks(t *testing.T) {
	a := test.NewTempApp(t)
	tm := NewTrayManager(a, nil)
	tm.menu = tm.buildMenu()

	tm.toggleItem.Action()
	assert.Equal(t, "Show Pet", tm.toggleItem.Label)
	tm.toggleItem.Action()
	assert.Equal(t, "Hide Pet", tm.toggleItem.Label)
}

func TestTrayMenu_Hovers(t *testing.T) {
	a := test.NewTempApp(t)
	tm := NewTrayManager(a, nil)
	tm.menu = tm.buildMenu()

	assert.Equal(t, "Hovers today: --", tm.hoversItem.Label)
	assert.True(t, tm.hoversItem.Disabled)

	tm.UpdateHovers(7)
	assert.Equal(t, "Hovers today: 7", tm.hoversItem.Label)
	tm.UpdateHovers(-1)
	assert.Equal(t, "Hovers today: --", tm.hoversItem.Label)
}
