package receipt

import "fmt"

// Vertical rhythm of the ticket summary, in pixels.
const (
	ticketsHeaderHeight  = 38
	ticketsHeaderRuleA   = 33
	ticketsHeaderRuleB   = 37
	ticketsRowHeight     = 27
	ticketsPositionGap   = 7
	ticketsFooterHeight  = 40
	ticketsFooterRuleGap = 3
	ticketsDoubleRuleGap = 4
	ticketsTotalGap      = 5
	ticketsRuleThickness = 2
)

// TicketsHeight is the height of a summary with n positions. Without
// positions only the header and footer remain.
func TicketsHeight(n int) int {
	if n <= 0 {
		return ticketsHeaderHeight + ticketsFooterHeight
	}
	return ticketsHeaderHeight + n*2*ticketsRowHeight + ticketsPositionGap*(n-1) + ticketsFooterHeight
}

// NewTickets builds the itemised ticket summary. The height is fixed up
// front; right-aligned amounts are measured one by one while drawing.
func (b *Builder) NewTickets(s TicketsSpec) (*Element, error) {
	t := b.typo.Tickets
	p := &ticketPainter{b: b, c: b.blank(TicketsHeight(len(s.Positions)))}

	p.left(0, t.HeaderLabel, t.Emphasis)
	if s.ReturnTrip {
		p.right(0, t.ReturnTripLabel, t.Emphasis)
	}
	p.rule(ticketsHeaderRuleA)
	p.rule(ticketsHeaderRuleB)

	y := ticketsHeaderHeight
	for i, pos := range s.Positions {
		p.left(y, pos.Title, t.Text)
		p.right(y, fmt.Sprintf("%s × %s", pos.Count, pos.SingleFare), t.Text)
		y += ticketsRowHeight

		p.left(y, pos.Subtitle, t.Text)
		p.right(y, fmt.Sprintf("%s %s", t.SumLabel, pos.Sum), t.Text)
		y += ticketsRowHeight

		if i < len(s.Positions)-1 {
			p.rule(y)
			y += ticketsPositionGap
		}
	}

	y += ticketsFooterRuleGap
	p.rule(y)
	y += ticketsDoubleRuleGap
	p.rule(y)
	y += ticketsTotalGap
	p.right(y, fmt.Sprintf("%s %s", t.SumLabel, s.Total), t.Emphasis)

	if p.err != nil {
		return nil, resourceError(KindTickets, ErrFontUnavailable, p.err)
	}
	return newElement(KindTickets, p.c), nil
}

// ticketPainter keeps the first drawing error so the layout code reads
// top to bottom.
type ticketPainter struct {
	b   *Builder
	c   *Canvas
	err error
}

func (p *ticketPainter) left(y int, text string, style TextStyle) {
	p.draw(0, y, text, style)
}

func (p *ticketPainter) right(y int, text string, style TextStyle) {
	if p.err != nil {
		return
	}
	size, err := p.b.text.Measure(text, style)
	if err != nil {
		p.err = err
		return
	}
	p.draw(p.c.Width()-size.X, y, text, style)
}

func (p *ticketPainter) draw(x, y int, text string, style TextStyle) {
	if p.err != nil {
		return
	}
	p.err = p.c.DrawText(p.b.text, x, y, text, style, p.b.page.Foreground)
}

func (p *ticketPainter) rule(y int) {
	p.c.HLine(y, ticketsRuleThickness, p.b.page.Foreground)
}
