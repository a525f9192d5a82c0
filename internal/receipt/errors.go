package receipt

import (
	"errors"
	"fmt"
)

// Class groups build failures. Every class aborts the whole document.
type Class string

const (
	ClassConfig   Class = "config"
	ClassLayout   Class = "layout"
	ClassResource Class = "resource"
)

var (
	ErrUnknownElementKind = errors.New("unknown element kind")
	ErrMissingField       = errors.New("missing required field")
	ErrUnknownField       = errors.New("unknown field")
	ErrInvalidField       = errors.New("invalid field")

	ErrDegenerateTable  = errors.New("table needs at least two columns")
	ErrWidthMismatch    = errors.New("element width differs from page width")
	ErrDocumentRendered = errors.New("document already rendered")

	ErrFontUnavailable = errors.New("font unavailable")
	ErrQREncoding      = errors.New("qr encoding failed")
	ErrImageLoad       = errors.New("image load failed")
)

// Error is the typed failure returned by element construction and document
// rendering. Err is one of the sentinels above; Cause is the collaborator
// error, if any.
type Error struct {
	Class  Class
	Kind   Kind
	Err    error
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error", e.Class)
	if e.Kind != KindUnknown {
		msg += ": " + e.Kind.String()
	}
	msg += ": " + e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// IsClass reports whether err carries a *Error of the given class.
func IsClass(err error, class Class) bool {
	var re *Error
	return errors.As(err, &re) && re.Class == class
}

func configError(kind Kind, sentinel error, format string, args ...any) *Error {
	return &Error{Class: ClassConfig, Kind: kind, Err: sentinel, Detail: fmt.Sprintf(format, args...)}
}

func layoutError(kind Kind, sentinel error, format string, args ...any) *Error {
	return &Error{Class: ClassLayout, Kind: kind, Err: sentinel, Detail: fmt.Sprintf(format, args...)}
}

// resourceError keeps an existing *Error untouched so a collaborator that
// already classified its failure is not wrapped twice.
func resourceError(kind Kind, sentinel error, cause error) error {
	var re *Error
	if errors.As(cause, &re) {
		return cause
	}
	return &Error{Class: ClassResource, Kind: kind, Err: sentinel, Cause: cause}
}
