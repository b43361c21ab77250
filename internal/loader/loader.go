// Package loader reads transform specification documents from YAML or
// JSON, validates them against an embedded CUE schema and hands the
// normalizer an order-preserving raw.Value.
package loader

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/transmute/internal/ir"
	"github.com/roach88/transmute/internal/normalize"
	"github.com/roach88/transmute/internal/raw"
)

//go:embed schema.cue
var schemaCUE string

// Error codes carried by LoadError.
const (
	CodeNotFound     = "E005" // file missing or unreadable
	CodeParseFailed  = "E010" // not valid YAML/JSON
	CodeEmpty        = "E011" // document has no content
	CodeSchemaFailed = "E012" // document violates the schema
	CodeDefaults     = "E013" // defaults file cannot be read as Defaults
)

// LoadError reports a document that could not be loaded.
type LoadError struct {
	Code    string
	Message string
	Path    string
	Err     error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadFile reads and validates the document at path.
func LoadFile(path string) (raw.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return raw.Value{}, &LoadError{
			Code:    CodeNotFound,
			Message: fmt.Sprintf("cannot read specification: %v", err),
			Path:    path,
			Err:     err,
		}
	}
	return Load(data, path)
}

// Load parses and validates a document. name is used in error messages.
// JSON is accepted as a subset of YAML.
func Load(data []byte, name string) (raw.Value, error) {
	doc, err := parse(data, name)
	if err != nil {
		return raw.Value{}, err
	}
	if err := Validate(doc); err != nil {
		var lerr *LoadError
		if errors.As(err, &lerr) {
			lerr.Path = name
		}
		return raw.Value{}, err
	}
	return doc, nil
}

func parse(data []byte, name string) (raw.Value, error) {
	var n yaml.Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return raw.Value{}, &LoadError{
			Code:    CodeParseFailed,
			Message: fmt.Sprintf("parsing document: %v", err),
			Path:    name,
			Err:     err,
		}
	}
	if n.Kind == 0 {
		return raw.Value{}, &LoadError{Code: CodeEmpty, Message: "document is empty", Path: name}
	}
	doc, err := raw.FromNode(&n)
	if err != nil {
		return raw.Value{}, &LoadError{Code: CodeParseFailed, Message: err.Error(), Path: name, Err: err}
	}
	if doc.IsNull() {
		return raw.Value{}, &LoadError{Code: CodeEmpty, Message: "document is empty", Path: name}
	}
	return doc, nil
}

// Validate checks doc against the #Document schema.
func Validate(doc raw.Value) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling embedded schema: %w", err)
	}

	v := ctx.Encode(doc.Interface())
	if err := v.Err(); err != nil {
		return &LoadError{Code: CodeSchemaFailed, Message: fmt.Sprintf("encoding document: %v", err), Err: err}
	}

	unified := schema.LookupPath(cue.ParsePath("#Document")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &LoadError{
			Code:    CodeSchemaFailed,
			Message: "schema validation failed: " + cueerrors.Details(err, nil),
			Err:     err,
		}
	}
	return nil
}

// LoadDefaults reads an external default bundle: a YAML/JSON mapping with
// optional Inputs, Outputs and Package, the same shape as a document's
// Defaults.
func LoadDefaults(path string) (ir.Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ir.Defaults{}, &LoadError{
			Code:    CodeNotFound,
			Message: fmt.Sprintf("cannot read defaults: %v", err),
			Path:    path,
			Err:     err,
		}
	}
	v, err := parse(data, path)
	if err != nil {
		return ir.Defaults{}, err
	}
	d, err := normalize.ParseDefaults(v)
	if err != nil {
		return ir.Defaults{}, &LoadError{Code: CodeDefaults, Message: err.Error(), Path: path, Err: err}
	}
	return d, nil
}
