package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/assert"

	"deskpet/internal/clickthrough"
)

func TestScreenRegion(t *testing.T) {
	tests := []struct {
		name    string
		originX int
		originY int
		scale   float32
		pos     fyne.Position
		size    fyne.Size
		want    clickthrough.HitRegion
	}{
		{
			name:    "unscaled",
			originX: 100, originY: 200, scale: 1,
			pos:  fyne.NewPos(10, 20),
			size: fyne.NewSize(128, 128),
			want: clickthrough.HitRegion{X: 174, Y: 284, Width: 128, Height: 128},
		},
		{
			name:    "hidpi",
			originX: 0, originY: 0, scale: 2,
			pos:  fyne.NewPos(10, 10),
			size: fyne.NewSize(64, 32),
			want: clickthrough.HitRegion{X: 84, Y: 52, Width: 128, Height: 64},
		},
		{
			name:    "zero scale treated as one",
			originX: -50, originY: 0, scale: 0,
			pos:  fyne.NewPos(0, 0),
			size: fyne.NewSize(20, 20),
			want: clickthrough.HitRegion{X: -40, Y: 10, Width: 20, Height: 20},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScreenRegion(tt.originX, tt.originY, tt.scale, tt.pos, tt.size)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScreenRegion_ContainsSpriteCorners(t *testing.T) {
	r := ScreenRegion(100, 100, 1.5, fyne.NewPos(20, 40), fyne.NewSize(64, 64))

	left := 100 + 20*1.5
	top := 100 + 40*1.5
	assert.True(t, r.Contains(left, top))
	assert.True(t, r.Contains(left+96, top+96))
	assert.False(t, r.Contains(left-1, top))
	assert.False(t, r.Contains(left, top+97))
}

func TestClampPosition(t *testing.T) {
	stage := fyne.NewSize(400, 300)
	size := fyne.NewSize(128, 128)

	assert.Equal(t, fyne.NewPos(10, 10), ClampPosition(fyne.NewPos(10, 10), size, stage))
	assert.Equal(t, fyne.NewPos(0, 0), ClampPosition(fyne.NewPos(-30, -5), size, stage))
	assert.Equal(t, fyne.NewPos(272, 172), ClampPosition(fyne.NewPos(500, 500), size, stage))
	assert.Equal(t, fyne.NewPos(0, 0), ClampPosition(fyne.NewPos(50, 50), fyne.NewSize(500, 500), stage))
}

func TestInitialWindowPosition(t *testing.T) {
	x, y := InitialWindowPosition(50, 60, 0, 0, 1920, 1040, 400, 300)
	assert.Equal(t, 50, x)
	assert.Equal(t, 60, y)

	x, y = InitialWindowPosition(-1, -1, 0, 0, 1920, 1040, 400, 300)
	assert.Equal(t, 1920-400-24, x)
	assert.Equal(t, 1040-300-24, y)

	x, y = InitialWindowPosition(-1, 10, 100, 25, 300, 200, 400, 300)
	assert.Equal(t, 100, x)
	assert.Equal(t, 25, y)
}
