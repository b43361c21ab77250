package normalize

import (
	"errors"
	"fmt"

	"github.com/roach88/transmute/internal/raw"
)

// Sentinels classifying normalization failures. Match with errors.Is.
var (
	ErrNoDefinitions      = errors.New("no transform definitions loaded")
	ErrMissingField       = errors.New("missing required field")
	ErrMissingDefaults    = errors.New("shorthand requires defaults")
	ErrMalformedShorthand = errors.New("malformed shorthand")
	ErrUnrecognizedShape  = errors.New("unrecognized shape")
	ErrDuplicateHandle    = errors.New("duplicate transform handle")
	ErrInvalidValue       = errors.New("invalid value")
)

// Error is a fatal normalization failure naming the offending field and
// the raw fragment being processed.
type Error struct {
	Field    string
	Message  string
	Fragment string // rendered raw value, empty when not applicable
	Handle   string // transform or identity being processed, if known
	Line     int    // source line of the fragment, 0 when unknown
	Column   int    // source column of the fragment, 0 when unknown
	Err      error  // one of the sentinels above
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Fragment != "" {
		msg = fmt.Sprintf("%s (processing %s)", msg, e.Fragment)
	}
	switch {
	case e.Line > 0 && e.Column > 0:
		msg = fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, msg)
	case e.Line > 0:
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Handle != "" {
		msg = fmt.Sprintf("%s: %s", e.Handle, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind error, field string, v raw.Value, format string, args ...any) *Error {
	return &Error{
		Field:    field,
		Message:  fmt.Sprintf(format, args...),
		Fragment: v.String(),
		Line:     v.Line(),
		Column:   v.Column(),
		Err:      kind,
	}
}

// withHandle tags err with the handle being processed.
func withHandle(err error, handle string) error {
	var nerr *Error
	if errors.As(err, &nerr) && nerr.Handle == "" {
		nerr.Handle = handle
	}
	return err
}
