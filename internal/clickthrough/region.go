package clickthrough

// Default placeholder extents used until the UI reports real bounds.
const (
	DefaultRegionWidth  = 128
	DefaultRegionHeight = 128
)

// HitRegion is the pet's clickable rectangle in screen coordinates.
// X and Y are the center; Width and Height are full extents.
type HitRegion struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// DefaultRegion returns the region in effect before the first update.
func DefaultRegion() HitRegion {
	return HitRegion{Width: DefaultRegionWidth, Height: DefaultRegionHeight}
}

// Contains reports whether (x, y) lies inside the closed rectangle.
// Edges count as inside. Negative extents give a negative half-extent,
// so nothing is ever inside; no abs() is applied.
func (r HitRegion) Contains(x, y float64) bool {
	halfW := r.Width / 2
	halfH := r.Height / 2

	return x >= r.X-halfW &&
		x <= r.X+halfW &&
		y >= r.Y-halfH &&
		y <= r.Y+halfH
}
