package ui

import (
	"context"
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// FrameRate of the idle animation
const FrameRate = 6

var (
	colorTint    = color.NRGBA{R: 255, G: 255, B: 255, A: 60}
	colorNoTint  = color.Transparent
	colorStageBg = color.NRGBA{R: 32, G: 33, B: 35, A: 255}
)

// PetSprite is the animated pet. It can be dragged around its stage,
// highlights while the pointer is over it and opens a menu on right click.
type PetSprite struct {
	widget.BaseWidget

	frames []fyne.Resource
	size   fyne.Size

	mu      sync.Mutex
	frame   int
	hovered bool

	image *canvas.Image
	tint  *canvas.Rectangle

	// OnDragged receives the proposed top-left; the return value is applied.
	OnDragged func(proposed fyne.Position) fyne.Position
	// OnDragEnd runs once a drag gesture finishes.
	OnDragEnd func()
	// OnMenu receives the canvas position of a right click.
	OnMenu func(at fyne.Position)
}

var (
	_ fyne.Draggable         = (*PetSprite)(nil)
	_ fyne.SecondaryTappable = (*PetSprite)(nil)
	_ desktop.Hoverable      = (*PetSprite)(nil)
)

// NewPetSprite creates a sprite showing frames at the given on-canvas size
func NewPetSprite(frames []fyne.Resource, size fyne.Size) *PetSprite {
	s := &PetSprite{frames: frames, size: size}
	s.ExtendBaseWidget(s)
	return s
}

func (s *PetSprite) CreateRenderer() fyne.WidgetRenderer {
	s.image = canvas.NewImageFromResource(s.currentFrame())
	s.image.FillMode = canvas.ImageFillContain
	s.image.ScaleMode = canvas.ImageScalePixels
	s.tint = canvas.NewRectangle(colorNoTint)
	s.tint.CornerRadius = 12
	return &petSpriteRenderer{sprite: s}
}

func (s *PetSprite) MinSize() fyne.Size {
	return s.size
}

// SetDisplaySize changes the on-canvas size, e.g. after a pet_scale change
func (s *PetSprite) SetDisplaySize(size fyne.Size) {
	s.size = size
	s.Resize(size)
	s.Refresh()
}

func (s *PetSprite) currentFrame() fyne.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[s.frame%len(s.frames)]
}

// NextFrame advances the animation. Must run on the UI goroutine.
func (s *PetSprite) NextFrame() {
	s.mu.Lock()
	s.frame++
	s.mu.Unlock()
	if s.image != nil {
		s.image.Resource = s.currentFrame()
		s.image.Refresh()
	}
}

// Frame returns the index of the frame on screen
func (s *PetSprite) Frame() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.frames) == 0 {
		return 0
	}
	return s.frame % len(s.frames)
}

// Animate advances frames at FrameRate until ctx is done
func (s *PetSprite) Animate(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / FrameRate)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fyne.Do(s.NextFrame)
		}
	}
}

// Hovered reports whether the pointer is over the sprite
func (s *PetSprite) Hovered() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hovered
}

func (s *PetSprite) setHovered(inside bool) {
	s.mu.Lock()
	changed := s.hovered != inside
	s.hovered = inside
	s.mu.Unlock()
	if !changed {
		return
	}
	if s.tint != nil {
		if inside {
			s.tint.FillColor = colorTint
		} else {
			s.tint.FillColor = colorNoTint
		}
		s.tint.Refresh()
	}
}

// MouseIn implements desktop.Hoverable
func (s *PetSprite) MouseIn(*desktop.MouseEvent) {
	s.setHovered(true)
}

// MouseMoved implements desktop.Hoverable
func (s *PetSprite) MouseMoved(*desktop.MouseEvent) {}

// MouseOut implements desktop.Hoverable
func (s *PetSprite) MouseOut() {
	s.setHovered(false)
}

// TappedSecondary implements fyne.SecondaryTappable
func (s *PetSprite) TappedSecondary(ev *fyne.PointEvent) {
	if s.OnMenu != nil {
		s.OnMenu(ev.AbsolutePosition)
	}
}

// Dragged implements fyne.Draggable
func (s *PetSprite) Dragged(ev *fyne.DragEvent) {
	next := s.Position().Add(ev.Dragged)
	if s.OnDragged != nil {
		next = s.OnDragged(next)
	}
	s.Move(next)
}

// DragEnd implements fyne.Draggable
func (s *PetSprite) DragEnd() {
	if s.OnDragEnd != nil {
		s.OnDragEnd()
	}
}

type petSpriteRenderer struct {
	sprite *PetSprite
}

func (r *petSpriteRenderer) Layout(size fyne.Size) {
	r.sprite.image.Resize(size)
	r.sprite.image.Move(fyne.NewPos(0, 0))
	r.sprite.tint.Resize(size)
	r.sprite.tint.Move(fyne.NewPos(0, 0))
}

func (r *petSpriteRenderer) MinSize() fyne.Size {
	return r.sprite.size
}

func (r *petSpriteRenderer) Refresh() {
	r.sprite.image.Resource = r.sprite.currentFrame()
	r.sprite.image.Refresh()
	r.sprite.tint.Refresh()
}

func (r *petSpriteRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.sprite.image, r.sprite.tint}
}

func (r *petSpriteRenderer) Destroy() {}
