package output

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/ferrytix/receipt-printer/internal/shared/logger"
	"github.com/makeworld-the-better-one/dither/v2"
	"go.uber.org/zap"
)

// ESC/POS command bytes.
var (
	escInit       = []byte{0x1b, 0x40}
	gsRasterImage = []byte{0x1d, 0x76, 0x30, 0x00}
	// GS V 66 n: feed n lines then partial cut
	gsFeedAndCut = []byte{0x1d, 0x56, 0x42}
)

// feedLines is how far the paper advances past the tear bar before cutting.
const feedLines = 4

// ESCPOSPrinter writes raster jobs to an ESC/POS receipt printer exposed as
// a character device (e.g. /dev/usb/lp0).
type ESCPOSPrinter struct {
	device string
	config PrinterConfig
	w      io.WriteCloser
}

// NewESCPOSPrinter は新しいESC/POSプリンターインスタンスを作成する
func NewESCPOSPrinter(config PrinterConfig) (*ESCPOSPrinter, error) {
	if config.DevicePath == "" {
		return nil, fmt.Errorf("ESC/POS device path is required")
	}
	return &ESCPOSPrinter{device: config.DevicePath, config: config}, nil
}

// Connect opens the device for writing.
func (p *ESCPOSPrinter) Connect() error {
	if p.w != nil {
		return nil
	}
	f, err := os.OpenFile(p.device, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("failed to open printer device %s: %w", p.device, err)
	}
	p.w = f
	logger.Info("ESC/POS printer opened", zap.String("device", p.device))
	return nil
}

// Print sends one raster followed by a feed and a partial cut.
func (p *ESCPOSPrinter) Print(img image.Image) error {
	if p.w == nil {
		return fmt.Errorf("printer not connected")
	}

	finalImg := img
	if p.config.RotatePrint {
		logger.Info("Rotating image 180 degrees")
		finalImg = rotateImage180(img)
	}

	job := EncodeESCPOS(finalImg, p.config.Dither)
	n, err := p.w.Write(job)
	if err != nil {
		return fmt.Errorf("failed to write to printer: %w", err)
	}

	logger.Info("ESC/POS job written",
		zap.String("device", p.device),
		zap.Int("bytes", n),
		zap.Int("height_px", finalImg.Bounds().Dy()))
	return nil
}

// Disconnect closes the device.
func (p *ESCPOSPrinter) Disconnect() error {
	if p.w == nil {
		return nil
	}
	err := p.w.Close()
	p.w = nil
	return err
}

func (p *ESCPOSPrinter) Type() PrinterType {
	return PrinterTypeESCPOS
}

func (p *ESCPOSPrinter) IsConnected() bool {
	return p.w != nil
}

// EncodeESCPOS builds a complete print job: initialise, GS v 0 raster,
// feed and cut.
func EncodeESCPOS(img image.Image, useDither bool) []byte {
	raster, widthBytes, height := packRaster(img, useDither)

	var buf bytes.Buffer
	buf.Write(escInit)
	buf.Write(gsRasterImage)
	buf.Write([]byte{byte(widthBytes), byte(widthBytes >> 8), byte(height), byte(height >> 8)})
	buf.Write(raster)
	buf.Write(gsFeedAndCut)
	buf.WriteByte(feedLines)
	return buf.Bytes()
}

// packRaster converts img to one bit per pixel, MSB first, a set bit
// meaning a burnt (black) dot. Rows are padded to whole bytes.
func packRaster(img image.Image, useDither bool) ([]byte, int, int) {
	b := img.Bounds()
	if useDither && !isBilevel(img) {
		d := dither.NewDitherer([]color.Color{color.Black, color.White})
		d.Matrix = dither.FloydSteinberg
		img = d.DitherCopy(img)
		b = img.Bounds()
	}

	widthBytes := (b.Dx() + 7) / 8
	out := make([]byte, widthBytes*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		row := out[y*widthBytes : (y+1)*widthBytes]
		for x := 0; x < b.Dx(); x++ {
			g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			if g.Y < 128 {
				row[x/8] |= 0x80 >> uint(x%8)
			}
		}
	}
	return out, widthBytes, b.Dy()
}

// isBilevel reports whether a gray image only holds pure black and white,
// in which case dithering cannot change it.
func isBilevel(img image.Image) bool {
	g, ok := img.(*image.Gray)
	if !ok {
		return false
	}
	for _, v := range g.Pix {
		if v != 0 && v != 255 {
			return false
		}
	}
	return true
}
