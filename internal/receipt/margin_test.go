package receipt

import (
	"errors"
	"testing"
)

func TestNewMarginHeight(t *testing.T) {
	tests := []struct {
		name   string
		spec   MarginSpec
		height int
		barRow int // -1 when no bar is expected
	}{
		{name: "plain", spec: MarginSpec{Height: 10}, height: 10, barRow: -1},
		{name: "omitted height", spec: MarginSpec{}, height: 0, barRow: -1},
		{name: "hairline", spec: MarginSpec{Height: 10, Hairline: true}, height: 10, barRow: 5},
		{name: "thin bar", spec: MarginSpec{Height: 10, Bar: 2}, height: 10, barRow: 5},
		{name: "bar grows margin", spec: MarginSpec{Height: 2, Bar: 6}, height: 6, barRow: 3},
		{name: "bar without height", spec: MarginSpec{Bar: 3}, height: 3, barRow: 1},
		{name: "hairline does not grow", spec: MarginSpec{Hairline: true}, height: 0, barRow: -1},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			b, _ := newTestBuilder()
			el, err := b.NewMargin(tc.spec)
			if err != nil {
				t.Fatalf("NewMargin failed: %v", err)
			}
			if el.Height() != tc.height {
				t.Fatalf("Height() = %d, want %d", el.Height(), tc.height)
			}
			if el.Width() != 384 {
				t.Fatalf("Width() = %d, want 384", el.Width())
			}
			if tc.barRow >= 0 {
				if got := grayAt(el.Canvas(), 200, tc.barRow); got != 0 {
					t.Fatalf("bar pixel = %d, want 0", got)
				}
			}
		})
	}
}

func TestNewMarginBarFillsWholeElement(t *testing.T) {
	b, _ := newTestBuilder()
	el, err := b.NewMargin(MarginSpec{Height: 1, Bar: 4, Fill: 128})
	if err != nil {
		t.Fatalf("NewMargin failed: %v", err)
	}
	for y := 0; y < 4; y++ {
		if got := grayAt(el.Canvas(), 0, y); got != 128 {
			t.Fatalf("row %d = %d, want 128", y, got)
		}
	}
}

func TestNewMarginRejectsNegativeValues(t *testing.T) {
	b, _ := newTestBuilder()
	for _, spec := range []MarginSpec{{Height: -1}, {Height: 4, Bar: -2}} {
		_, err := b.NewMargin(spec)
		if !errors.Is(err, ErrInvalidField) {
			t.Fatalf("NewMargin(%+v) error = %v, want ErrInvalidField", spec, err)
		}
		if !IsClass(err, ClassConfig) {
			t.Fatalf("NewMargin(%+v) error class mismatch: %v", spec, err)
		}
	}
}
