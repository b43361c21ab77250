package harness

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/roach88/transmute/internal/ir"
	"github.com/roach88/transmute/internal/pipeline"
)

// ExpectationError describes a case whose outcome differs from what the
// scenario states.
type ExpectationError struct {
	Kind     string // "expect", "expect_null", "expect_fields" or "error"
	Expected string
	Actual   string
}

func (e *ExpectationError) Error() string {
	return fmt.Sprintf("%s mismatch: expected %s, got %s", e.Kind, e.Expected, e.Actual)
}

// checkCase compares a call outcome (or a compile error) with c.
func checkCase(c Case, out pipeline.Output, callErr error) []string {
	var errs []string
	fail := func(err error) { errs = append(errs, err.Error()) }

	if c.Error != "" {
		switch {
		case callErr == nil:
			fail(&ExpectationError{Kind: "error", Expected: fmt.Sprintf("error containing %q", c.Error), Actual: render(out.Value())})
		case !strings.Contains(callErr.Error(), c.Error):
			fail(&ExpectationError{Kind: "error", Expected: fmt.Sprintf("error containing %q", c.Error), Actual: fmt.Sprintf("%q", callErr.Error())})
		}
		return errs
	}
	if callErr != nil {
		fail(fmt.Errorf("unexpected error: %w", callErr))
		return errs
	}

	switch {
	case c.ExpectNull:
		if out.Multiple() || out.Value() != nil {
			fail(&ExpectationError{Kind: "expect_null", Expected: "null", Actual: render(out.Value())})
		}
	case c.ExpectFields != nil:
		if !out.Multiple() {
			fail(&ExpectationError{Kind: "expect_fields", Expected: "a multiple-valued result", Actual: render(out.Value())})
			return errs
		}
		for _, name := range ir.SortedKeys(c.ExpectFields) {
			want := c.ExpectFields[name]
			got, ok := out.Get(name)
			if !ok {
				fail(&ExpectationError{Kind: "expect_fields", Expected: fmt.Sprintf("field %q", name), Actual: fmt.Sprintf("fields %v", out.Names())})
				continue
			}
			if !valuesEqual(got, want) {
				fail(&ExpectationError{Kind: "expect_fields", Expected: fmt.Sprintf("%s = %s", name, render(want)), Actual: render(got)})
			}
		}
	default:
		got := out.Value()
		if out.Multiple() {
			got = out.Map()
		}
		if !valuesEqual(got, c.Expect) && !valuesEqual(out.Value(), c.Expect) {
			fail(&ExpectationError{Kind: "expect", Expected: render(c.Expect), Actual: render(got)})
		}
	}
	return errs
}

// valuesEqual compares by canonical JSON, so 10 and 10.0 are equal and
// int64 results match YAML ints.
func valuesEqual(actual, expected any) bool {
	a, err := ir.MarshalCanonical(actual)
	if err != nil {
		return false
	}
	e, err := ir.MarshalCanonical(expected)
	if err != nil {
		return false
	}
	return bytes.Equal(a, e)
}

func render(v any) string {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
