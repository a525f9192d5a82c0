package receipt

import (
	"errors"
	"testing"
)

func TestDocumentStacksInOrder(t *testing.T) {
	b, _ := newTestBuilder()
	doc := NewDocument(DefaultPage())

	fills := []uint8{10, 20, 30}
	heights := []int{5, 0, 7}
	for i, h := range heights {
		el, err := b.NewMargin(MarginSpec{Height: h, Bar: h, Fill: fills[i]})
		if err != nil {
			t.Fatalf("NewMargin failed: %v", err)
		}
		if err := doc.Add(el); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	if doc.Height() != 12 {
		t.Fatalf("Height() = %d, want 12", doc.Height())
	}
	img, err := doc.Render()
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if img.Bounds().Dx() != 384 || img.Bounds().Dy() != 12 {
		t.Fatalf("image size = %v, want 384x12", img.Bounds().Size())
	}
	for y := 0; y < 12; y++ {
		want := uint8(10)
		if y >= 5 {
			want = 30
		}
		if got := img.GrayAt(0, y).Y; got != want {
			t.Fatalf("row %d = %d, want %d", y, got, want)
		}
	}
}

func TestDocumentRendersOnce(t *testing.T) {
	doc := NewDocument(DefaultPage())
	if _, err := doc.Render(); err != nil {
		t.Fatalf("first Render failed: %v", err)
	}
	_, err := doc.Render()
	if !errors.Is(err, ErrDocumentRendered) {
		t.Fatalf("second Render error = %v, want ErrDocumentRendered", err)
	}
}

func TestDocumentRejectsForeignWidth(t *testing.T) {
	narrow := NewBuilder(PageConfig{Width: 200, Background: 255}, DefaultTypography(), &fakeText{}, nil, nil)
	el, err := narrow.NewMargin(MarginSpec{Height: 3})
	if err != nil {
		t.Fatalf("NewMargin failed: %v", err)
	}
	doc := NewDocument(DefaultPage())
	if err := doc.Add(el); !errors.Is(err, ErrWidthMismatch) {
		t.Fatalf("Add error = %v, want ErrWidthMismatch", err)
	}
	if len(doc.Elements()) != 0 {
		t.Fatalf("rejected element was added")
	}
}
