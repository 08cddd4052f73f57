package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"deskpet/internal/assets"
)

func main() {
	dir := flag.String("out", filepath.Join("assets", "icons"), "output directory")
	flag.Parse()

	if err := os.MkdirAll(*dir, 0755); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	files := map[string]image.Image{
		"tray.png":      assets.IconImage(64),
		"app.png":       assets.IconImage(256),
		"pet_sheet.png": assets.PetSheet(),
	}
	for i := 0; i < assets.FrameCount; i++ {
		files[fmt.Sprintf("pet_%d.png", i)] = assets.PetFrame(i)
	}

	for name, img := range files {
		if err := savePNG(img, filepath.Join(*dir, name)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	fmt.Printf("wrote %d images to %s\n", len(files), *dir)
}

func savePNG(img image.Image, path string) error {
	data, err := assets.EncodePNG(img)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0644)
}
