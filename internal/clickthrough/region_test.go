package clickthrough

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHitRegion_Contains(t *testing.T) {
	region := HitRegion{X: 500, Y: 500, Width: 64, Height: 64}

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"center", 500, 500, true},
		{"bottom-right corner", 532, 532, true},
		{"top-left corner", 468, 468, true},
		{"right edge", 532, 500, true},
		{"just past right edge", 532.0001, 500, false},
		{"just above top edge", 500, 467.999, false},
		{"far away", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, region.Contains(tt.x, tt.y))
		})
	}
}

func TestHitRegion_ZeroExtents(t *testing.T) {
	line := HitRegion{X: 10, Y: 20, Width: 0, Height: 40}
	assert.True(t, line.Contains(10, 20))
	assert.True(t, line.Contains(10, 0))
	assert.True(t, line.Contains(10, 40))
	assert.False(t, line.Contains(10.5, 20))

	point := HitRegion{X: 10, Y: 20}
	assert.True(t, point.Contains(10, 20))
	assert.False(t, point.Contains(10, 20.1))
}

func TestHitRegion_NegativeExtentsNeverHit(t *testing.T) {
	region := HitRegion{X: 100, Y: 100, Width: -50, Height: 50}
	assert.False(t, region.Contains(100, 100))
	assert.False(t, region.Contains(75, 100))
	assert.False(t, region.Contains(125, 100))

	region = HitRegion{X: 100, Y: 100, Width: 50, Height: -1}
	assert.False(t, region.Contains(100, 100))
}

func TestDefaultRegion(t *testing.T) {
	r := DefaultRegion()
	assert.Equal(t, HitRegion{X: 0, Y: 0, Width: 128, Height: 128}, r)
	assert.True(t, r.Contains(64, -64))
	assert.False(t, r.Contains(65, 0))
}
