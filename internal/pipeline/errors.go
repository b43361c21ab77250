package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSuchMethod is wrapped by every ResolutionError.
var ErrNoSuchMethod = errors.New("no such method")

// ResolutionError reports a step whose function is not registered.
// It is returned by Compile, before any data flows.
type ResolutionError struct {
	Package    string
	Entrypoint string
	Path       string // package path the name was looked up in
	Name       string // final entrypoint component
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve step %s: package %q has %s %q",
		e.Entrypoint, e.Path, ErrNoSuchMethod, e.Name)
}

func (e *ResolutionError) Unwrap() error {
	return ErrNoSuchMethod
}

// InputValidationError reports keyword arguments outside the declared
// input set.
type InputValidationError struct {
	Invalid []string
	Valid   []string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid input keys %s; valid input keys are %s",
		quoteList(e.Invalid), quoteList(e.Valid))
}

// ResultShapeError reports a function registered as Multiple that
// returned something other than a sequence.
type ResultShapeError struct {
	Got any
}

func (e *ResultShapeError) Error() string {
	return fmt.Sprintf("function declared a multiple result but returned %T", e.Got)
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
