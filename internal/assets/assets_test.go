package assets

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPetFrame_Geometry(t *testing.T) {
	for i := 0; i < FrameCount; i++ {
		img := PetFrame(i)
		assert.Equal(t, FrameSize, img.Bounds().Dx())
		assert.Equal(t, FrameSize, img.Bounds().Dy())

		// Corners stay transparent so only the cat is visible
		assert.Zero(t, img.RGBAAt(0, 0).A, "frame %d", i)
		assert.Zero(t, img.RGBAAt(FrameSize-1, 0).A, "frame %d", i)
		// Body centre is opaque
		assert.Equal(t, uint8(255), img.RGBAAt(32, 46).A, "frame %d", i)
	}
}

func TestPetFrame_WrapsIndex(t *testing.T) {
	assert.Equal(t, PetFrame(1).Pix, PetFrame(1+FrameCount).Pix)
	assert.Equal(t, PetFrame(FrameCount-1).Pix, PetFrame(-1).Pix)
}

func TestPetFrame_Animates(t *testing.T) {
	assert.NotEqual(t, PetFrame(0).Pix, PetFrame(1).Pix)
	assert.NotEqual(t, PetFrame(2).Pix, PetFrame(3).Pix)
}

func TestPetSheet(t *testing.T) {
	sheet := PetSheet()
	assert.Equal(t, FrameSize*FrameCount, sheet.Bounds().Dx())
	assert.Equal(t, PetFrame(2).RGBAAt(32, 46), sheet.RGBAAt(2*FrameSize+32, 46))
}

func TestResources(t *testing.T) {
	frames := PetFrames()
	require.Len(t, frames, FrameCount)
	assert.Equal(t, "pet_0.png", frames[0].Name())

	img, err := png.Decode(bytes.NewReader(TrayIcon().Content()))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())

	img, err = png.Decode(bytes.NewReader(AppIcon().Content()))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
}

func TestInRoundedRect(t *testing.T) {
	assert.True(t, inRoundedRect(10, 10, 0, 0, 20, 20, 4))
	assert.False(t, inRoundedRect(0, 0, 0, 0, 20, 20, 4))
	assert.False(t, inRoundedRect(25, 5, 0, 0, 20, 20, 4))
}
