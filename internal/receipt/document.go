package receipt

import (
	"image"

	"github.com/samber/lo"
)

// Document stacks elements top to bottom. It renders exactly once.
type Document struct {
	page     PageConfig
	elements []*Element
	rendered bool
}

func NewDocument(page PageConfig) *Document {
	return &Document{page: page}
}

// Add appends an element. Elements narrower or wider than the page are
// rejected so the stack never has ragged edges.
func (d *Document) Add(e *Element) error {
	if e.Width() != d.page.Width {
		return layoutError(e.Kind(), ErrWidthMismatch, "got %d, want %d", e.Width(), d.page.Width)
	}
	d.elements = append(d.elements, e)
	return nil
}

func (d *Document) Elements() []*Element {
	return d.elements
}

// Height is the exact sum of the element heights.
func (d *Document) Height() int {
	return lo.SumBy(d.elements, func(e *Element) int { return e.Height() })
}

// Render composites every element into one page-wide image and hands it to
// the caller. A second call fails with ErrDocumentRendered.
func (d *Document) Render() (*image.Gray, error) {
	if d.rendered {
		return nil, layoutError(KindUnknown, ErrDocumentRendered, "")
	}
	d.rendered = true

	canvas := NewCanvas(d.page.Width, d.Height(), d.page.Background)
	y := 0
	for _, e := range d.elements {
		y = e.Render(canvas, y)
	}
	return canvas.Image(), nil
}
