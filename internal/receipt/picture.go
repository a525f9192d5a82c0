package receipt

import (
	"errors"
	"image/draw"
)

// NewPicture loads an image file, brightens it for thermal paper and scales
// it to the page width, keeping the aspect ratio.
func (b *Builder) NewPicture(s PictureSpec) (*Element, error) {
	if s.Path == "" {
		return nil, configError(KindPicture, ErrMissingField, "file_path")
	}
	if b.images == nil {
		return nil, resourceError(KindPicture, ErrImageLoad, errors.New("no image loader configured"))
	}

	img, err := b.images.Decode(s.Path)
	if err != nil {
		return nil, resourceError(KindPicture, ErrImageLoad, err)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, resourceError(KindPicture, ErrImageLoad, errors.New("image has no pixels"))
	}

	img = b.images.Brighten(img, b.typo.PictureBrightness)
	height := b.page.Width * bounds.Dy() / bounds.Dx()

	c := b.blank(height)
	if height > 0 {
		img = b.images.Resize(img, b.page.Width, height)
		// transparent areas stay paper-white
		draw.Draw(c.Image(), c.Image().Bounds(), img, img.Bounds().Min, draw.Over)
	}
	return newElement(KindPicture, c), nil
}
