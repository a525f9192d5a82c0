package receipt

// Kind identifies an element variant.
type Kind int

const (
	KindUnknown Kind = iota
	KindMargin
	KindTitle
	KindSubtitle
	KindQRCode
	KindTable
	KindTickets
	KindPicture
)

var kindNames = map[Kind]string{
	KindMargin:   "margin",
	KindTitle:    "title",
	KindSubtitle: "subtitle",
	KindQRCode:   "qrcode",
	KindTable:    "table",
	KindTickets:  "tickets",
	KindPicture:  "picture",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps a declarative type tag to its Kind.
func ParseKind(tag string) (Kind, bool) {
	for k, name := range kindNames {
		if name == tag {
			return k, true
		}
	}
	return KindUnknown, false
}

// Kinds returns every known kind in declaration order.
func Kinds() []Kind {
	return []Kind{KindMargin, KindTitle, KindSubtitle, KindQRCode, KindTable, KindTickets, KindPicture}
}

// Element is one pre-rendered block. Its sub-canvas is always page-wide and
// is not changed after construction.
type Element struct {
	kind   Kind
	canvas *Canvas
}

func newElement(kind Kind, canvas *Canvas) *Element {
	return &Element{kind: kind, canvas: canvas}
}

func (e *Element) Kind() Kind      { return e.kind }
func (e *Element) Width() int      { return e.canvas.Width() }
func (e *Element) Height() int     { return e.canvas.Height() }
func (e *Element) Canvas() *Canvas { return e.canvas }

// Render pastes the sub-canvas at (0, y) and returns the next free row.
func (e *Element) Render(dst *Canvas, y int) int {
	dst.Paste(e.canvas.Image(), 0, y)
	return y + e.Height()
}
