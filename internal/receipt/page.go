package receipt

// PageConfig is the paper geometry shared by every element.
type PageConfig struct {
	Width      int
	Background uint8
	Foreground uint8
}

// DefaultPage is a 58mm thermal roll: 384 dots, white paper, black ink.
func DefaultPage() PageConfig {
	return PageConfig{Width: 384, Background: 255, Foreground: 0}
}

// Band is a fixed-height text row.
type Band struct {
	Style  TextStyle
	Height int
}

// TicketsTypography holds the fonts and fixed labels of the ticket summary.
type TicketsTypography struct {
	Text            TextStyle
	Emphasis        TextStyle
	HeaderLabel     string
	ReturnTripLabel string
	SumLabel        string
}

// Typography collects the font and band policy of every element kind.
type Typography struct {
	Title    Band
	Subtitle Band

	TableHeader    TextStyle
	TableRowHeight int

	Tickets TicketsTypography

	QRQuietZone       int
	PictureBrightness float64
}

// DefaultTypography matches the FerryTix receipt layout.
func DefaultTypography() Typography {
	return Typography{
		Title:          Band{Style: TextStyle{Weight: Bold, Size: 36}, Height: 50},
		Subtitle:       Band{Style: TextStyle{Weight: Bold, Size: 28}, Height: 35},
		TableHeader:    TextStyle{Weight: Regular, Size: 21},
		TableRowHeight: 25,
		Tickets: TicketsTypography{
			Text:            TextStyle{Weight: Regular, Size: 21},
			Emphasis:        TextStyle{Weight: Bold, Size: 25},
			HeaderLabel:     "Tickets",
			ReturnTripLabel: "inkl. Rückfahrt",
			SumLabel:        "Summe:",
		},
		QRQuietZone:       4,
		PictureBrightness: 2.0,
	}
}
