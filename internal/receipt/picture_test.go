package receipt

import (
	"errors"
	"image"
	"os"
	"testing"
)

func TestNewPictureScalesToPageWidth(t *testing.T) {
	tests := []struct {
		name   string
		bounds image.Rectangle
		height int
	}{
		{name: "landscape", bounds: image.Rect(0, 0, 640, 480), height: 288},
		{name: "portrait", bounds: image.Rect(0, 0, 100, 300), height: 1152},
		{name: "offset bounds", bounds: image.Rect(10, 10, 202, 106), height: 192},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			images := &fakeImages{img: image.NewGray(tc.bounds)}
			b := NewBuilder(DefaultPage(), DefaultTypography(), &fakeText{}, nil, images)
			el, err := b.NewPicture(PictureSpec{Path: "photo.jpg"})
			if err != nil {
				t.Fatalf("NewPicture failed: %v", err)
			}
			if el.Width() != 384 || el.Height() != tc.height {
				t.Fatalf("size = %dx%d, want 384x%d", el.Width(), el.Height(), tc.height)
			}
			if images.brightness != 2.0 {
				t.Fatalf("brightness = %v, want 2.0", images.brightness)
			}
			if got := grayAt(el.Canvas(), 10, 10); got != 100 {
				t.Fatalf("picture pixel = %d, want 100", got)
			}
		})
	}
}

func TestNewPictureErrors(t *testing.T) {
	b := NewBuilder(DefaultPage(), DefaultTypography(), &fakeText{}, nil, &fakeImages{err: os.ErrNotExist})
	_, err := b.NewPicture(PictureSpec{Path: "missing.jpg"})
	if !errors.Is(err, ErrImageLoad) || !IsClass(err, ClassResource) {
		t.Fatalf("error = %v, want resource ErrImageLoad", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("error = %v, want cause os.ErrNotExist", err)
	}

	_, err = b.NewPicture(PictureSpec{})
	if !errors.Is(err, ErrMissingField) || !IsClass(err, ClassConfig) {
		t.Fatalf("error = %v, want config ErrMissingField", err)
	}

	b = NewBuilder(DefaultPage(), DefaultTypography(), &fakeText{}, nil, &fakeImages{img: image.NewGray(image.Rect(0, 0, 0, 0))})
	_, err = b.NewPicture(PictureSpec{Path: "empty.png"})
	if !errors.Is(err, ErrImageLoad) {
		t.Fatalf("error = %v, want ErrImageLoad", err)
	}
}
