package ui

import (
	"fyne.io/fyne/v2"

	"deskpet/internal/clickthrough"
)

// ScreenRegion converts a sprite placed at pos with the given size (canvas
// units) into a screen-space hit region. originX/originY is the top-left of
// the window content in screen pixels and scale is the canvas scale.
func ScreenRegion(originX, originY int, scale float32, pos fyne.Position, size fyne.Size) clickthrough.HitRegion {
	s := float64(scale)
	if s <= 0 {
		s = 1
	}
	w := float64(size.Width) * s
	h := float64(size.Height) * s
	return clickthrough.HitRegion{
		X:      float64(originX) + float64(pos.X)*s + w/2,
		Y:      float64(originY) + float64(pos.Y)*s + h/2,
		Width:  w,
		Height: h,
	}
}

// ClampPosition keeps an object of the given size fully inside stage. An
// object larger than the stage is pinned to the top-left.
func ClampPosition(pos fyne.Position, size, stage fyne.Size) fyne.Position {
	maxX := stage.Width - size.Width
	maxY := stage.Height - size.Height
	if pos.X > maxX {
		pos.X = maxX
	}
	if pos.Y > maxY {
		pos.Y = maxY
	}
	if pos.X < 0 {
		pos.X = 0
	}
	if pos.Y < 0 {
		pos.Y = 0
	}
	return pos
}

// InitialWindowPosition returns where the stage window opens: the saved
// position when set, otherwise the bottom-right corner of the work area.
func InitialWindowPosition(savedX, savedY, workX, workY, workW, workH, winW, winH int) (x, y int) {
	if savedX >= 0 && savedY >= 0 {
		return savedX, savedY
	}
	const margin = 24
	x = workX + workW - winW - margin
	y = workY + workH - winH - margin
	if x < workX {
		x = workX
	}
	if y < workY {
		y = workY
	}
	return x, y
}
