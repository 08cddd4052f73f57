package assets

import (
	"image"
	"image/color"
	"math"
)

func fillRoundedRect(img *image.RGBA, x, y, w, h int, radius float64, c color.Color) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			if inRoundedRect(float64(x+dx), float64(y+dy), float64(x), float64(y), float64(w), float64(h), radius) {
				img.Set(x+dx, y+dy, c)
			}
		}
	}
}

func inRoundedRect(px, py, rx, ry, rw, rh, radius float64) bool {
	if px < rx || px >= rx+rw || py < ry || py >= ry+rh {
		return false
	}

	corners := [][2]float64{
		{rx + radius, ry + radius},           // top-left
		{rx + rw - radius, ry + radius},      // top-right
		{rx + radius, ry + rh - radius},      // bottom-left
		{rx + rw - radius, ry + rh - radius}, // bottom-right
	}

	for _, corner := range corners {
		cx, cy := corner[0], corner[1]
		inCornerX := (px < rx+radius && cx == rx+radius) || (px >= rx+rw-radius && cx == rx+rw-radius)
		inCornerY := (py < ry+radius && cy == ry+radius) || (py >= ry+rh-radius && cy == ry+rh-radius)

		if inCornerX && inCornerY {
			if math.Hypot(px-cx, py-cy) > radius {
				return false
			}
		}
	}

	return true
}

// fillEllipse paints every pixel whose centre lies inside the ellipse
func fillEllipse(img *image.RGBA, cx, cy, rx, ry float64, c color.Color) {
	b := img.Bounds()
	for y := int(cy - ry); y <= int(cy+ry)+1; y++ {
		for x := int(cx - rx); x <= int(cx+rx)+1; x++ {
			if !(image.Point{X: x, Y: y}).In(b) {
				continue
			}
			nx := (float64(x) + 0.5 - cx) / rx
			ny := (float64(y) + 0.5 - cy) / ry
			if nx*nx+ny*ny <= 1 {
				img.Set(x, y, c)
			}
		}
	}
}

// fillTriangle paints the triangle a-b-c using edge functions
func fillTriangle(img *image.RGBA, a, b, c [2]float64, col color.Color) {
	minX := math.Floor(math.Min(a[0], math.Min(b[0], c[0])))
	maxX := math.Ceil(math.Max(a[0], math.Max(b[0], c[0])))
	minY := math.Floor(math.Min(a[1], math.Min(b[1], c[1])))
	maxY := math.Ceil(math.Max(a[1], math.Max(b[1], c[1])))

	edge := func(p, q [2]float64, x, y float64) float64 {
		return (q[0]-p[0])*(y-p[1]) - (q[1]-p[1])*(x-p[0])
	}
	bounds := img.Bounds()
	for y := int(minY); y <= int(maxY); y++ {
		for x := int(minX); x <= int(maxX); x++ {
			if !(image.Point{X: x, Y: y}).In(bounds) {
				continue
			}
			px, py := float64(x)+0.5, float64(y)+0.5
			e0 := edge(a, b, px, py)
			e1 := edge(b, c, px, py)
			e2 := edge(c, a, px, py)
			if (e0 >= 0 && e1 >= 0 && e2 >= 0) || (e0 <= 0 && e1 <= 0 && e2 <= 0) {
				img.Set(x, y, col)
			}
		}
	}
}
