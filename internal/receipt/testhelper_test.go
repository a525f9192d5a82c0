package receipt

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"unicode/utf8"
)

// fakeText gives every rune a fixed advance of half the font size and draws
// each text as a solid block, so layouts can be checked pixel by pixel.
type fakeText struct {
	calls []textCall
	fail  error
}

type textCall struct {
	text  string
	pt    image.Point
	style TextStyle
}

func (f *fakeText) size(text string, style TextStyle) image.Point {
	return image.Pt(utf8.RuneCountInString(text)*int(style.Size/2), int(style.Size))
}

func (f *fakeText) Measure(text string, style TextStyle) (image.Point, error) {
	if f.fail != nil {
		return image.Point{}, f.fail
	}
	return f.size(text, style), nil
}

func (f *fakeText) DrawText(dst draw.Image, pt image.Point, text string, style TextStyle, c color.Color) error {
	if f.fail != nil {
		return f.fail
	}
	f.calls = append(f.calls, textCall{text: text, pt: pt, style: style})
	r := image.Rectangle{Min: pt, Max: pt.Add(f.size(text, style))}
	draw.Draw(dst, r.Intersect(dst.Bounds()), image.NewUniform(c), image.Point{}, draw.Src)
	return nil
}

func (f *fakeText) find(text string) (textCall, bool) {
	for _, c := range f.calls {
		if c.text == text {
			return c, true
		}
	}
	return textCall{}, false
}

// fakeQR returns a 21-module symbol plus quiet zone with a dark top-left module.
type fakeQR struct {
	lastQuietZone int
}

func (f *fakeQR) Encode(text string, quietZone int) (image.Image, error) {
	if text == "fail" {
		return nil, errors.New("data too long")
	}
	f.lastQuietZone = quietZone
	side := 21 + 2*quietZone
	img := image.NewGray(image.Rect(0, 0, side, side))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	img.SetGray(quietZone, quietZone, color.Gray{Y: 0})
	return img, nil
}

type fakeImages struct {
	img        image.Image
	err        error
	brightness float64
}

func (f *fakeImages) Decode(path string) (image.Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.img, nil
}

func (f *fakeImages) Brighten(img image.Image, factor float64) image.Image {
	f.brightness = factor
	return img
}

func (f *fakeImages) Resize(img image.Image, width, height int) image.Image {
	out := image.NewGray(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.Gray{Y: 100}), image.Point{}, draw.Src)
	return out
}

func newTestBuilder() (*Builder, *fakeText) {
	text := &fakeText{}
	return NewBuilder(DefaultPage(), DefaultTypography(), text, &fakeQR{}, &fakeImages{}), text
}

func grayAt(c *Canvas, x, y int) uint8 {
	return c.Image().GrayAt(x, y).Y
}
