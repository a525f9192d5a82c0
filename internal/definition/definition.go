package definition

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ferrytix/receipt-printer/internal/receipt"
	"gopkg.in/yaml.v3"
)

// ErrSyntax marks input that is not a YAML sequence of records.
var ErrSyntax = errors.New("malformed receipt definition")

// ParseFile reads a receipt definition from disk.
func ParseFile(path string) ([]receipt.Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open definition: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a YAML (or JSON) sequence of element records. Each record has
// exactly one element tag; its value is the main payload and sibling keys
// configure the same element:
//
//	- title: FerryTix
//	- margin: 10
//	  hbar: 2
//	- qrcode: {text: ABC123, width: 50}
//
// Keys an element does not know are rejected.
func Parse(r io.Reader) ([]receipt.Spec, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, configError(receipt.KindUnknown, ErrSyntax, "%v", err)
	}

	seq := &root
	if seq.Kind == yaml.DocumentNode && len(seq.Content) > 0 {
		seq = seq.Content[0]
	}
	if seq.Kind != yaml.SequenceNode {
		return nil, configError(receipt.KindUnknown, ErrSyntax, "line %d: expected a list of elements", seq.Line)
	}

	specs := make([]receipt.Spec, 0, len(seq.Content))
	for i, rec := range seq.Content {
		spec, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d (line %d): %w", i, rec.Line, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// primaryField names the field a scalar payload fills, per element.
var primaryField = map[receipt.Kind]string{
	receipt.KindTitle:    "text",
	receipt.KindSubtitle: "text",
	receipt.KindMargin:   "height",
	receipt.KindQRCode:   "text",
	receipt.KindPicture:  "file_path",
}

var allowedFields = map[receipt.Kind][]string{
	receipt.KindTitle:    {"text"},
	receipt.KindSubtitle: {"text"},
	receipt.KindMargin:   {"height", "hbar", "fill"},
	receipt.KindQRCode:   {"text", "width", "center"},
	receipt.KindTable:    {"columns", "values", "rows"},
	receipt.KindTickets:  {"return", "positions", "sum"},
	receipt.KindPicture:  {"file_path"},
}

func parseRecord(rec *yaml.Node) (receipt.Spec, error) {
	if rec.Kind != yaml.MappingNode {
		return nil, configError(receipt.KindUnknown, ErrSyntax, "element must be a mapping")
	}

	kind, payload, siblings, err := splitRecord(rec)
	if err != nil {
		return nil, err
	}
	fields, err := mergeFields(kind, payload, siblings)
	if err != nil {
		return nil, err
	}

	switch kind {
	case receipt.KindMargin:
		return parseMargin(fields)
	case receipt.KindTitle:
		var r textRecord
		if err := decodeFields(kind, fields, &r); err != nil {
			return nil, err
		}
		if r.Text == nil {
			return nil, configError(kind, receipt.ErrMissingField, "text")
		}
		return receipt.TitleSpec{Text: *r.Text}, nil
	case receipt.KindSubtitle:
		var r textRecord
		if err := decodeFields(kind, fields, &r); err != nil {
			return nil, err
		}
		if r.Text == nil {
			return nil, configError(kind, receipt.ErrMissingField, "text")
		}
		return receipt.SubtitleSpec{Text: *r.Text}, nil
	case receipt.KindQRCode:
		return parseQRCode(fields)
	case receipt.KindTable:
		return parseTable(fields)
	case receipt.KindTickets:
		return parseTickets(fields)
	case receipt.KindPicture:
		var r pictureRecord
		if err := decodeFields(kind, fields, &r); err != nil {
			return nil, err
		}
		if r.FilePath == "" {
			return nil, configError(kind, receipt.ErrMissingField, "file_path")
		}
		return receipt.PictureSpec{Path: r.FilePath}, nil
	}
	return nil, configError(kind, receipt.ErrUnknownElementKind, "%s", kind)
}

// splitRecord finds the single element tag of a record.
func splitRecord(rec *yaml.Node) (receipt.Kind, *yaml.Node, map[string]*yaml.Node, error) {
	var (
		kind    receipt.Kind
		payload *yaml.Node
		tags    []string
		keys    []string
	)
	siblings := make(map[string]*yaml.Node)

	for i := 0; i+1 < len(rec.Content); i += 2 {
		key, value := rec.Content[i].Value, rec.Content[i+1]
		keys = append(keys, key)
		if k, ok := receipt.ParseKind(key); ok {
			kind, payload = k, value
			tags = append(tags, key)
			continue
		}
		siblings[key] = value
	}

	switch len(tags) {
	case 0:
		return 0, nil, nil, configError(receipt.KindUnknown, receipt.ErrUnknownElementKind, "no element tag in keys [%s]", strings.Join(keys, ", "))
	case 1:
		return kind, payload, siblings, nil
	default:
		return 0, nil, nil, configError(receipt.KindUnknown, receipt.ErrUnknownElementKind, "several element tags [%s]", strings.Join(tags, ", "))
	}
}

// mergeFields flattens the payload and sibling keys into one field set and
// rejects keys the element does not know.
func mergeFields(kind receipt.Kind, payload *yaml.Node, siblings map[string]*yaml.Node) (map[string]*yaml.Node, error) {
	fields := make(map[string]*yaml.Node, len(siblings)+1)

	switch {
	case payload == nil || payload.Tag == "!!null":
	case payload.Kind == yaml.MappingNode:
		for i := 0; i+1 < len(payload.Content); i += 2 {
			fields[payload.Content[i].Value] = payload.Content[i+1]
		}
	default:
		name, ok := primaryField[kind]
		if !ok {
			return nil, configError(kind, receipt.ErrInvalidField, "%s needs a mapping, got %s", kind, payload.Tag)
		}
		fields[name] = payload
	}

	for key, value := range siblings {
		if _, dup := fields[key]; dup {
			return nil, configError(kind, receipt.ErrInvalidField, "%s given twice", key)
		}
		fields[key] = value
	}

	allowed := allowedFields[kind]
	var unknown []string
	for key := range fields {
		if !contains(allowed, key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, configError(kind, receipt.ErrUnknownField, "%s", strings.Join(unknown, ", "))
	}
	return fields, nil
}

// decodeFields decodes the merged fields into out. Nested records are
// decoded strictly so typos inside ticket positions are caught too.
func decodeFields(kind receipt.Kind, fields map[string]*yaml.Node, out any) error {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, fields[key])
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return configError(kind, receipt.ErrInvalidField, "%v", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return configError(kind, receipt.ErrInvalidField, "%v", err)
	}
	return nil
}

func configError(kind receipt.Kind, sentinel error, format string, args ...any) error {
	return &receipt.Error{
		Class:  receipt.ClassConfig,
		Kind:   kind,
		Err:    sentinel,
		Detail: fmt.Sprintf(format, args...),
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
