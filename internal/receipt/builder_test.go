package receipt

import (
	"errors"
	"image"
	"testing"
)

type bogusSpec struct{ MarginSpec }

func (bogusSpec) Kind() Kind { return KindUnknown }

func TestBuildDocumentEndToEnd(t *testing.T) {
	b, _ := newTestBuilder()
	doc, err := b.BuildDocument([]Spec{
		TitleSpec{Text: "FerryTix"},
		MarginSpec{Height: 10},
		QRCodeSpec{Text: "ABC123", WidthPercent: 50, Center: true},
	})
	if err != nil {
		t.Fatalf("BuildDocument failed: %v", err)
	}

	img, err := doc.Render()
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if img.Bounds().Dx() != 384 || img.Bounds().Dy() != 252 {
		t.Fatalf("image size = %v, want 384x252", img.Bounds().Size())
	}
}

func TestBuildDispatchesEveryKind(t *testing.T) {
	b, _ := newTestBuilder()
	b.images = &fakeImages{img: image.NewGray(image.Rect(0, 0, 10, 10))}

	specs := []Spec{
		MarginSpec{Height: 1},
		TitleSpec{Text: "a"},
		SubtitleSpec{Text: "b"},
		QRCodeSpec{Text: "c", WidthPercent: 10},
		TableSpec{Columns: []string{"x", "y"}},
		TicketsSpec{Total: "0"},
		PictureSpec{Path: "p.png"},
	}
	for i, spec := range specs {
		el, err := b.Build(spec)
		if err != nil {
			t.Fatalf("Build(%T) failed: %v", spec, err)
		}
		if el.Kind() != spec.Kind() || el.Kind() != Kinds()[i] {
			t.Fatalf("Build(%T) kind = %v, want %v", spec, el.Kind(), spec.Kind())
		}
	}
}

func TestBuildUnknownSpec(t *testing.T) {
	b, _ := newTestBuilder()
	_, err := b.Build(bogusSpec{})
	if !errors.Is(err, ErrUnknownElementKind) || !IsClass(err, ClassConfig) {
		t.Fatalf("error = %v, want config ErrUnknownElementKind", err)
	}
}

func TestBuildDocumentAbortsOnFirstError(t *testing.T) {
	b, _ := newTestBuilder()
	doc, err := b.BuildDocument([]Spec{
		TitleSpec{Text: "ok"},
		TableSpec{Columns: []string{"lonely"}},
		TitleSpec{Text: "never built"},
	})
	if doc != nil {
		t.Fatalf("document returned despite error")
	}
	if !errors.Is(err, ErrDegenerateTable) {
		t.Fatalf("error = %v, want ErrDegenerateTable", err)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Fatalf("ParseKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseKind("barcode"); ok {
		t.Fatalf("ParseKind(barcode) succeeded")
	}
}
