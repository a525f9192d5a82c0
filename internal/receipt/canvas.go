package receipt

import (
	"image"
	"image/color"
	"image/draw"
	"math"
)

// Canvas is a grayscale pixel buffer. It is only changed through the
// paste and draw methods.
type Canvas struct {
	img *image.Gray
}

// NewCanvas allocates a width×height canvas filled with background.
// A zero height is valid.
func NewCanvas(width, height int, background uint8) *Canvas {
	img := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Gray{Y: background}), image.Point{}, draw.Src)
	return &Canvas{img: img}
}

func (c *Canvas) Width() int  { return c.img.Bounds().Dx() }
func (c *Canvas) Height() int { return c.img.Bounds().Dy() }

// Image exposes the underlying buffer.
func (c *Canvas) Image() *image.Gray { return c.img }

// Paste copies src with its top-left corner at (x, y). Anything outside the
// canvas is clipped.
func (c *Canvas) Paste(src image.Image, x, y int) {
	b := src.Bounds()
	r := image.Rect(x, y, x+b.Dx(), y+b.Dy())
	draw.Draw(c.img, r, src, b.Min, draw.Src)
}

// HLine draws a full-width rule of the given thickness centred on row y.
func (c *Canvas) HLine(y, thickness int, fill uint8) {
	if thickness <= 0 {
		return
	}
	top := y - thickness/2
	c.fill(image.Rect(0, top, c.Width(), top+thickness), fill)
}

// VLine draws a full-height rule of the given thickness centred on column x.
func (c *Canvas) VLine(x float64, thickness int, fill uint8) {
	if thickness <= 0 {
		return
	}
	left := int(math.Round(x)) - thickness/2
	c.fill(image.Rect(left, 0, left+thickness, c.Height()), fill)
}

// DrawText renders text with its box's top-left corner at (x, y).
func (c *Canvas) DrawText(tr TextRenderer, x, y int, text string, style TextStyle, fill uint8) error {
	return tr.DrawText(c.img, image.Pt(x, y), text, style, color.Gray{Y: fill})
}

func (c *Canvas) fill(r image.Rectangle, v uint8) {
	draw.Draw(c.img, r.Intersect(c.img.Bounds()), image.NewUniform(color.Gray{Y: v}), image.Point{}, draw.Src)
}
