package definition

import (
	"github.com/ferrytix/receipt-printer/internal/receipt"
	"gopkg.in/yaml.v3"
)

type textRecord struct {
	Text *string `yaml:"text"`
}

type marginRecord struct {
	Height int       `yaml:"height"`
	HBar   yaml.Node `yaml:"hbar"`
	Fill   *int      `yaml:"fill"`
}

type qrRecord struct {
	Text   *string `yaml:"text"`
	Width  *int    `yaml:"width"`
	Center *bool   `yaml:"center"`
}

type tableRecord struct {
	Columns []string   `yaml:"columns"`
	Values  [][]string `yaml:"values"`
	Rows    [][]string `yaml:"rows"`
}

type positionRecord struct {
	Title      string `yaml:"title"`
	Subtitle   string `yaml:"subtitle"`
	Count      string `yaml:"count"`
	SingleFare string `yaml:"single_fare"`
	Sum        string `yaml:"sum"`
}

type ticketsRecord struct {
	Return    bool             `yaml:"return"`
	Positions []positionRecord `yaml:"positions"`
	Sum       *string          `yaml:"sum"`
}

type pictureRecord struct {
	FilePath string `yaml:"file_path"`
}

// parseMargin accepts hbar as a boolean (hairline) or a thickness in pixels.
func parseMargin(fields map[string]*yaml.Node) (receipt.Spec, error) {
	var r marginRecord
	if err := decodeFields(receipt.KindMargin, fields, &r); err != nil {
		return nil, err
	}

	spec := receipt.MarginSpec{Height: r.Height}
	switch r.HBar.Tag {
	case "":
	case "!!bool":
		var on bool
		if err := r.HBar.Decode(&on); err != nil {
			return nil, configError(receipt.KindMargin, receipt.ErrInvalidField, "hbar: %v", err)
		}
		spec.Hairline = on
	case "!!int":
		if err := r.HBar.Decode(&spec.Bar); err != nil {
			return nil, configError(receipt.KindMargin, receipt.ErrInvalidField, "hbar: %v", err)
		}
	default:
		return nil, configError(receipt.KindMargin, receipt.ErrInvalidField, "hbar must be a boolean or a thickness, got %q", r.HBar.Value)
	}

	if r.Fill != nil {
		if *r.Fill < 0 || *r.Fill > 255 {
			return nil, configError(receipt.KindMargin, receipt.ErrInvalidField, "fill %d outside 0..255", *r.Fill)
		}
		spec.Fill = uint8(*r.Fill)
	}
	return spec, nil
}

func parseQRCode(fields map[string]*yaml.Node) (receipt.Spec, error) {
	var r qrRecord
	if err := decodeFields(receipt.KindQRCode, fields, &r); err != nil {
		return nil, err
	}
	if r.Text == nil {
		return nil, configError(receipt.KindQRCode, receipt.ErrMissingField, "text")
	}

	spec := receipt.QRCodeSpec{Text: *r.Text, WidthPercent: 100, Center: true}
	if r.Width != nil {
		spec.WidthPercent = *r.Width
	}
	if r.Center != nil {
		spec.Center = *r.Center
	}
	return spec, nil
}

func parseTable(fields map[string]*yaml.Node) (receipt.Spec, error) {
	var r tableRecord
	if err := decodeFields(receipt.KindTable, fields, &r); err != nil {
		return nil, err
	}
	if r.Columns == nil {
		return nil, configError(receipt.KindTable, receipt.ErrMissingField, "columns")
	}
	if r.Values != nil && r.Rows != nil {
		return nil, configError(receipt.KindTable, receipt.ErrInvalidField, "values and rows are the same field")
	}

	rows := r.Values
	if rows == nil {
		rows = r.Rows
	}
	return receipt.TableSpec{Columns: r.Columns, Rows: rows}, nil
}

func parseTickets(fields map[string]*yaml.Node) (receipt.Spec, error) {
	var r ticketsRecord
	if err := decodeFields(receipt.KindTickets, fields, &r); err != nil {
		return nil, err
	}
	if r.Sum == nil {
		return nil, configError(receipt.KindTickets, receipt.ErrMissingField, "sum")
	}

	spec := receipt.TicketsSpec{ReturnTrip: r.Return, Total: *r.Sum}
	for _, p := range r.Positions {
		spec.Positions = append(spec.Positions, receipt.TicketPosition{
			Title:      p.Title,
			Subtitle:   p.Subtitle,
			Count:      p.Count,
			SingleFare: p.SingleFare,
			Sum:        p.Sum,
		})
	}
	return spec, nil
}
