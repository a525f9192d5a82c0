package imageloader

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Loader decodes and prepares pictures with the imaging package.
type Loader struct{}

func New() *Loader {
	return &Loader{}
}

// Decode opens PNG, JPEG, GIF, BMP or TIFF files, honouring EXIF orientation.
func (l *Loader) Decode(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return img, nil
}

// Brighten multiplies every colour channel by factor, clamping at white.
func (l *Loader) Brighten(img image.Image, factor float64) image.Image {
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: scale(c.R, factor), G: scale(c.G, factor), B: scale(c.B, factor), A: c.A}
	})
}

func scale(v uint8, factor float64) uint8 {
	f := float64(v)*factor + 0.5
	if f >= 255 {
		return 255
	}
	if f <= 0 {
		return 0
	}
	return uint8(f)
}

// Resize scales img to exactly width×height.
func (l *Loader) Resize(img image.Image, width, height int) image.Image {
	return imaging.Resize(img, width, height, imaging.Lanczos)
}
