package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"

	"fyne.io/fyne/v2"
)

var (
	iconOnce sync.Once
	trayIcon fyne.Resource
	appIcon  fyne.Resource

	framesOnce sync.Once
	frames     []fyne.Resource
)

// EncodePNG renders img as PNG bytes
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func mustResource(name string, img image.Image) fyne.Resource {
	data, err := EncodePNG(img)
	if err != nil {
		// Encoding an in-memory RGBA cannot fail short of a bug.
		panic(fmt.Sprintf("encode %s: %v", name, err))
	}
	return fyne.NewStaticResource(name, data)
}

func loadIcons() {
	iconOnce.Do(func() {
		trayIcon = mustResource("tray.png", IconImage(64))
		appIcon = mustResource("app.png", IconImage(256))
	})
}

// TrayIcon returns the system tray icon resource
func TrayIcon() fyne.Resource {
	loadIcons()
	return trayIcon
}

// AppIcon returns the application icon resource
func AppIcon() fyne.Resource {
	loadIcons()
	return appIcon
}

// PetFrames returns the idle animation frames as PNG resources
func PetFrames() []fyne.Resource {
	framesOnce.Do(func() {
		frames = make([]fyne.Resource, FrameCount)
		for i := range frames {
			frames[i] = mustResource(fmt.Sprintf("pet_%d.png", i), PetFrame(i))
		}
	})
	return frames
}
