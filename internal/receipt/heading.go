package receipt

// NewTitle builds a centred bold headline.
func (b *Builder) NewTitle(s TitleSpec) (*Element, error) {
	return b.newHeading(KindTitle, s.Text, b.typo.Title)
}

// NewSubtitle builds a smaller centred headline.
func (b *Builder) NewSubtitle(s SubtitleSpec) (*Element, error) {
	return b.newHeading(KindSubtitle, s.Text, b.typo.Subtitle)
}

// newHeading centres text in a fixed band. Text wider than the page gets a
// negative offset and is clipped on both sides, the way the printer would.
func (b *Builder) newHeading(kind Kind, text string, band Band) (*Element, error) {
	size, err := b.text.Measure(text, band.Style)
	if err != nil {
		return nil, resourceError(kind, ErrFontUnavailable, err)
	}

	c := b.blank(band.Height)
	x := (b.page.Width - size.X) / 2
	if err := c.DrawText(b.text, x, 0, text, band.Style, b.page.Foreground); err != nil {
		return nil, resourceError(kind, ErrFontUnavailable, err)
	}
	return newElement(kind, c), nil
}
