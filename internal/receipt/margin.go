package receipt

// NewMargin builds a blank separator, optionally with a centred bar.
func (b *Builder) NewMargin(s MarginSpec) (*Element, error) {
	if s.Height < 0 {
		return nil, configError(KindMargin, ErrInvalidField, "height %d is negative", s.Height)
	}
	if s.Bar < 0 {
		return nil, configError(KindMargin, ErrInvalidField, "hbar %d is negative", s.Bar)
	}

	height := s.Height
	thickness := s.Bar
	if s.Hairline && thickness == 0 {
		thickness = 1
	} else if thickness > height {
		height = thickness
	}

	c := b.blank(height)
	if thickness > 0 {
		c.HLine(height/2, thickness, s.Fill)
	}
	return newElement(KindMargin, c), nil
}
