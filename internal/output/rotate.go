package output

import (
	"image"

	"github.com/disintegration/imaging"
)

// rotateImage180 flips the raster for printers mounted upside down.
func rotateImage180(img image.Image) image.Image {
	return imaging.Rotate180(img)
}
