package receipt

import (
	"errors"
	"image"

	xdraw "golang.org/x/image/draw"
)

// NewQRCode builds a square QR symbol scaled to a share of the page width.
func (b *Builder) NewQRCode(s QRCodeSpec) (*Element, error) {
	if s.WidthPercent < 1 || s.WidthPercent > 100 {
		return nil, configError(KindQRCode, ErrInvalidField, "width %d%% outside 1..100", s.WidthPercent)
	}
	if s.Text == "" {
		return nil, resourceError(KindQRCode, ErrQREncoding, errors.New("empty text"))
	}
	if b.qr == nil {
		return nil, resourceError(KindQRCode, ErrQREncoding, errors.New("no encoder configured"))
	}

	symbol, err := b.qr.Encode(s.Text, b.typo.QRQuietZone)
	if err != nil {
		return nil, resourceError(KindQRCode, ErrQREncoding, err)
	}

	side := b.page.Width * s.WidthPercent / 100
	scaled := image.NewGray(image.Rect(0, 0, side, side))
	// nearest neighbour keeps module edges hard for the scanner
	xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), symbol, symbol.Bounds(), xdraw.Src, nil)

	x := 0
	if s.Center {
		x = (b.page.Width - side) / 2
	}
	c := b.blank(side)
	c.Paste(scaled, x, 0)
	return newElement(KindQRCode, c), nil
}
