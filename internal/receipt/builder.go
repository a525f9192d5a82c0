package receipt

import "fmt"

// Builder constructs elements for one page geometry. It carries the
// collaborators every element needs so nothing is looked up globally.
type Builder struct {
	page   PageConfig
	typo   Typography
	text   TextRenderer
	qr     QREncoder
	images ImageLoader
}

// NewBuilder wires a builder. qr and images may be nil when the document has
// no QR codes or pictures; building one then fails with a resource error.
func NewBuilder(page PageConfig, typo Typography, text TextRenderer, qr QREncoder, images ImageLoader) *Builder {
	return &Builder{page: page, typo: typo, text: text, qr: qr, images: images}
}

func (b *Builder) Page() PageConfig { return b.page }

// Build constructs the element described by spec.
func (b *Builder) Build(spec Spec) (*Element, error) {
	switch s := spec.(type) {
	case MarginSpec:
		return b.NewMargin(s)
	case TitleSpec:
		return b.newHeading(KindTitle, s.Text, b.typo.Title)
	case SubtitleSpec:
		return b.newHeading(KindSubtitle, s.Text, b.typo.Subtitle)
	case QRCodeSpec:
		return b.NewQRCode(s)
	case TableSpec:
		return b.NewTable(s)
	case TicketsSpec:
		return b.NewTickets(s)
	case PictureSpec:
		return b.NewPicture(s)
	default:
		return nil, configError(KindUnknown, ErrUnknownElementKind, "%T", spec)
	}
}

// BuildDocument builds every spec in order. The first failure aborts the
// build and no document is returned.
func (b *Builder) BuildDocument(specs []Spec) (*Document, error) {
	doc := NewDocument(b.page)
	for i, spec := range specs {
		el, err := b.Build(spec)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if err := doc.Add(el); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return doc, nil
}

func (b *Builder) blank(height int) *Canvas {
	return NewCanvas(b.page.Width, height, b.page.Background)
}
