package receipt

import (
	"image"
	"image/color"
	"image/draw"
)

type FontWeight int

const (
	Regular FontWeight = iota
	Bold
)

func (w FontWeight) String() string {
	if w == Bold {
		return "bold"
	}
	return "regular"
}

// TextStyle selects a face. Size is in pixels per em.
type TextStyle struct {
	Weight FontWeight
	Size   float64
}

// TextRenderer measures and rasterises text. pt is the top-left corner of the
// text box, not the baseline.
type TextRenderer interface {
	Measure(text string, style TextStyle) (image.Point, error)
	DrawText(dst draw.Image, pt image.Point, text string, style TextStyle, c color.Color) error
}

// QREncoder returns a square symbol at one pixel per module, including a
// quiet zone of the given number of modules.
type QREncoder interface {
	Encode(text string, quietZone int) (image.Image, error)
}

// ImageLoader decodes picture files and adjusts them for printing.
type ImageLoader interface {
	Decode(path string) (image.Image, error)
	Brighten(img image.Image, factor float64) image.Image
	Resize(img image.Image, width, height int) image.Image
}
