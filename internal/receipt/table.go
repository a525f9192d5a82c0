package receipt

import (
	"math"

	"github.com/samber/lo"
)

const (
	tableRuleY         = 27
	tableRuleThickness = 2
)

// NewTable builds a header band whose columns are spread across the full
// page width with equal gaps, separated by vertical rules. Rows only reserve
// height.
func (b *Builder) NewTable(s TableSpec) (*Element, error) {
	if len(s.Columns) < 2 {
		return nil, layoutError(KindTable, ErrDegenerateTable, "got %d columns", len(s.Columns))
	}

	style := b.typo.TableHeader
	widths := make([]int, len(s.Columns))
	for i, col := range s.Columns {
		size, err := b.text.Measure(col, style)
		if err != nil {
			return nil, resourceError(KindTable, ErrFontUnavailable, err)
		}
		widths[i] = size.X
	}
	xs, spacing := distributeColumns(b.page.Width, widths)

	height := (len(s.Rows) + 2) * b.typo.TableRowHeight
	c := b.blank(height)
	fg := b.page.Foreground

	for i, col := range s.Columns {
		if err := c.DrawText(b.text, int(math.Round(xs[i])), 0, col, style, fg); err != nil {
			return nil, resourceError(KindTable, ErrFontUnavailable, err)
		}
	}
	for _, x := range xs[1:] {
		c.VLine(x-spacing/2, tableRuleThickness, fg)
	}
	c.HLine(tableRuleY, tableRuleThickness, fg)

	return newElement(KindTable, c), nil
}

// distributeColumns places the first column flush left and the last flush
// right with one shared gap between neighbours. The gap is negative when the
// headers are wider than the page; columns then overlap. len(widths) must be
// at least 2.
func distributeColumns(pageWidth int, widths []int) ([]float64, float64) {
	spacing := float64(pageWidth-lo.Sum(widths)) / float64(len(widths)-1)

	xs := make([]float64, len(widths))
	for i := 1; i < len(widths); i++ {
		xs[i] = xs[i-1] + float64(widths[i-1]) + spacing
	}
	return xs, spacing
}
