package receipt

// Spec is the validated configuration of one element. The set of
// implementations is closed; Builder.Build switches over all of them.
type Spec interface {
	Kind() Kind
	sealed()
}

// MarginSpec is blank space with an optional horizontal bar. Hairline draws a
// 1px bar inside Height. Bar is an explicit thickness; a Bar thicker than
// Height grows the element to fit it. Fill is the bar's gray level.
type MarginSpec struct {
	Height   int
	Hairline bool
	Bar      int
	Fill     uint8
}

type TitleSpec struct {
	Text string
}

type SubtitleSpec struct {
	Text string
}

// QRCodeSpec WidthPercent is relative to the page width.
type QRCodeSpec struct {
	Text         string
	WidthPercent int
	Center       bool
}

// TableSpec rows only reserve vertical space; cell text is not drawn.
type TableSpec struct {
	Columns []string
	Rows    [][]string
}

type TicketPosition struct {
	Title      string
	Subtitle   string
	Count      string
	SingleFare string
	Sum        string
}

type TicketsSpec struct {
	ReturnTrip bool
	Positions  []TicketPosition
	Total      string
}

type PictureSpec struct {
	Path string
}

func (MarginSpec) Kind() Kind   { return KindMargin }
func (TitleSpec) Kind() Kind    { return KindTitle }
func (SubtitleSpec) Kind() Kind { return KindSubtitle }
func (QRCodeSpec) Kind() Kind   { return KindQRCode }
func (TableSpec) Kind() Kind    { return KindTable }
func (TicketsSpec) Kind() Kind  { return KindTickets }
func (PictureSpec) Kind() Kind  { return KindPicture }

func (MarginSpec) sealed()   {}
func (TitleSpec) sealed()    {}
func (SubtitleSpec) sealed() {}
func (QRCodeSpec) sealed()   {}
func (TableSpec) sealed()    {}
func (TicketsSpec) sealed()  {}
func (PictureSpec) sealed()  {}
