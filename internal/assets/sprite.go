package assets

import (
	"image"
	"image/color"
	"math"
)

// Sprite sheet geometry
const (
	FrameSize  = 64
	FrameCount = 6
)

var (
	furColor   = color.RGBA{236, 150, 72, 255}
	bellyColor = color.RGBA{250, 214, 170, 255}
	earColor   = color.RGBA{214, 120, 60, 255}
	innerEar   = color.RGBA{246, 170, 170, 255}
	eyeColor   = color.RGBA{40, 36, 34, 255}
	noseColor  = color.RGBA{210, 90, 110, 255}
)

// PetFrame draws idle animation frame i (mod FrameCount) of the cat.
// Frames breathe and sway the tail; frame 3 blinks.
func PetFrame(i int) *image.RGBA {
	i = ((i % FrameCount) + FrameCount) % FrameCount
	img := image.NewRGBA(image.Rect(0, 0, FrameSize, FrameSize))

	phase := 2 * math.Pi * float64(i) / FrameCount
	breath := math.Sin(phase) * 1.2
	sway := math.Sin(phase) * 5

	// Tail behind the body
	for t := 0.0; t <= 1.0; t += 0.04 {
		tx := 46 + t*10 + sway*t
		ty := 50 - t*22
		fillEllipse(img, tx, ty, 3.2, 3.2, furColor)
	}

	// Body and belly
	fillEllipse(img, 32, 46, 16, 12+breath, furColor)
	fillEllipse(img, 32, 49, 9, 7+breath/2, bellyColor)

	// Head
	headY := 26 - breath/2
	fillTriangle(img, [2]float64{19, headY - 4}, [2]float64{22, headY - 18}, [2]float64{30, headY - 9}, earColor)
	fillTriangle(img, [2]float64{45, headY - 4}, [2]float64{42, headY - 18}, [2]float64{34, headY - 9}, earColor)
	fillTriangle(img, [2]float64{22, headY - 7}, [2]float64{23, headY - 14}, [2]float64{27, headY - 9}, innerEar)
	fillTriangle(img, [2]float64{42, headY - 7}, [2]float64{41, headY - 14}, [2]float64{37, headY - 9}, innerEar)
	fillEllipse(img, 32, headY, 14, 11, furColor)

	// Eyes
	if i == 3 {
		fillRoundedRect(img, 24, int(headY)-1, 6, 2, 1, eyeColor)
		fillRoundedRect(img, 34, int(headY)-1, 6, 2, 1, eyeColor)
	} else {
		fillEllipse(img, 27, headY-1, 2.2, 3, eyeColor)
		fillEllipse(img, 37, headY-1, 2.2, 3, eyeColor)
	}

	// Nose
	fillTriangle(img, [2]float64{30, headY + 4}, [2]float64{34, headY + 4}, [2]float64{32, headY + 6}, noseColor)

	// Paws
	fillEllipse(img, 25, 57, 4, 2.5, bellyColor)
	fillEllipse(img, 39, 57, 4, 2.5, bellyColor)

	return img
}

// PetSheet lays every frame out horizontally
func PetSheet() *image.RGBA {
	sheet := image.NewRGBA(image.Rect(0, 0, FrameSize*FrameCount, FrameSize))
	for i := 0; i < FrameCount; i++ {
		frame := PetFrame(i)
		for y := 0; y < FrameSize; y++ {
			for x := 0; x < FrameSize; x++ {
				sheet.SetRGBA(i*FrameSize+x, y, frame.RGBAAt(x, y))
			}
		}
	}
	return sheet
}

// IconImage draws the square tray/app icon: the cat's head on a rounded tile.
func IconImage(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	s := float64(size) / 64

	fillRoundedRect(img, int(2*s), int(2*s), size-int(4*s), size-int(4*s), 12*s, color.RGBA{32, 33, 35, 255})

	cy := 36 * s
	fillTriangle(img, [2]float64{16 * s, cy - 6*s}, [2]float64{19 * s, cy - 24*s}, [2]float64{30 * s, cy - 12*s}, earColor)
	fillTriangle(img, [2]float64{48 * s, cy - 6*s}, [2]float64{45 * s, cy - 24*s}, [2]float64{34 * s, cy - 12*s}, earColor)
	fillEllipse(img, 32*s, cy, 18*s, 14*s, furColor)
	fillEllipse(img, 25*s, cy-2*s, 2.6*s, 3.6*s, eyeColor)
	fillEllipse(img, 39*s, cy-2*s, 2.6*s, 3.6*s, eyeColor)
	fillTriangle(img, [2]float64{29 * s, cy + 4*s}, [2]float64{35 * s, cy + 4*s}, [2]float64{32 * s, cy + 7*s}, noseColor)

	return img
}
