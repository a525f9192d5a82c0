package qrencoder

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	qrcode "github.com/skip2/go-qrcode"
)

// Encoder produces QR symbols with go-qrcode.
type Encoder struct {
	Level qrcode.RecoveryLevel
}

func New() *Encoder {
	return &Encoder{Level: qrcode.Medium}
}

// Encode returns the symbol at one pixel per module surrounded by quietZone
// blank modules.
func (e *Encoder) Encode(text string, quietZone int) (image.Image, error) {
	if text == "" {
		return nil, errors.New("no data to encode")
	}
	if quietZone < 0 {
		return nil, fmt.Errorf("negative quiet zone %d", quietZone)
	}

	q, err := qrcode.New(text, e.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %d bytes: %w", len(text), err)
	}
	// the library border is fixed at 4 modules; draw our own instead
	q.DisableBorder = true
	bitmap := q.Bitmap()

	side := len(bitmap) + 2*quietZone
	img := image.NewGray(image.Rect(0, 0, side, side))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				img.SetGray(x+quietZone, y+quietZone, color.Gray{Y: 0})
			}
		}
	}
	return img, nil
}
