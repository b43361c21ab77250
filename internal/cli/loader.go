package cli

import (
	"errors"
	"fmt"

	"github.com/roach88/transmute/internal/ir"
	"github.com/roach88/transmute/internal/loader"
	"github.com/roach88/transmute/internal/normalize"
	"github.com/roach88/transmute/internal/pipeline"
)

// Error code constants, unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeNotFound     = loader.CodeNotFound
	ErrCodeWriteFailed  = "E007" // File write error
	ErrCodeParseFailed  = loader.CodeParseFailed
	ErrCodeEmpty        = loader.CodeEmpty
	ErrCodeSchemaFailed = loader.CodeSchemaFailed
	ErrCodeDefaults     = loader.CodeDefaults

	// Normalization errors
	ErrCodeNormalize          = "E020" // Other normalization failure
	ErrCodeMissingField       = "E021"
	ErrCodeMissingDefaults    = "E022"
	ErrCodeMalformedShorthand = "E023"
	ErrCodeUnrecognizedShape  = "E024"
	ErrCodeDuplicateHandle    = "E025"
	ErrCodeNoDefinitions      = "E026"
	ErrCodeInvalidValue       = "E027"

	// Pipeline errors
	ErrCodeNoSuchMethod  = "E030" // Step function not registered
	ErrCodeInvalidInput  = "E031" // Keyword input names an undeclared key
	ErrCodeCallFailed    = "E032" // Step function returned an error
	ErrCodeUnknownHandle = "E033" // No transform with that handle

	ErrCodeStoreFailed = "E040" // Graph persistence failed
)

// LoadResult is a loaded and normalized specification document.
type LoadResult struct {
	Path string
	Set  *ir.TransformSet

	// Errors lists the entries skipped in collect-all mode.
	Errors []error
}

// LoadTransforms reads, validates and normalizes the document at path,
// honouring --defaults and --collect-all.
//
// Document-level failures (unreadable file, schema violation, broken
// Defaults) are returned as the error. In collect-all mode per-entry
// failures land in LoadResult.Errors instead.
func LoadTransforms(opts *RootOptions, path string) (*LoadResult, error) {
	doc, err := loader.LoadFile(path)
	if err != nil {
		return nil, err
	}

	nopts := []normalize.Option{
		normalize.WithMode(opts.Mode()),
		normalize.WithLogger(opts.logger()),
	}
	if opts.Defaults != "" {
		defaults, err := loader.LoadDefaults(opts.Defaults)
		if err != nil {
			return nil, err
		}
		nopts = append(nopts, normalize.WithDefaults(defaults))
	}

	set, err := normalize.New(nopts...).NormalizeDocument(doc)
	if set == nil {
		return nil, err
	}
	return &LoadResult{Path: path, Set: set, Errors: splitErrors(err)}, nil
}

// splitErrors flattens an errors.Join result.
func splitErrors(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// ErrorCode maps an error from any layer to a CLI error code and message.
func ErrorCode(err error) (string, string) {
	var loadErr *loader.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}

	var normErr *normalize.Error
	if errors.As(err, &normErr) {
		return normalizeCode(normErr), normErr.Error()
	}
	if errors.Is(err, normalize.ErrNoDefinitions) {
		return ErrCodeNoDefinitions, err.Error()
	}

	var resErr *pipeline.ResolutionError
	if errors.As(err, &resErr) {
		return ErrCodeNoSuchMethod, resErr.Error()
	}
	var inputErr *pipeline.InputValidationError
	if errors.As(err, &inputErr) {
		return ErrCodeInvalidInput, inputErr.Error()
	}
	return ErrCodeGeneric, err.Error()
}

func normalizeCode(err *normalize.Error) string {
	switch {
	case errors.Is(err, normalize.ErrMissingField):
		return ErrCodeMissingField
	case errors.Is(err, normalize.ErrMissingDefaults):
		return ErrCodeMissingDefaults
	case errors.Is(err, normalize.ErrMalformedShorthand):
		return ErrCodeMalformedShorthand
	case errors.Is(err, normalize.ErrUnrecognizedShape):
		return ErrCodeUnrecognizedShape
	case errors.Is(err, normalize.ErrDuplicateHandle):
		return ErrCodeDuplicateHandle
	case errors.Is(err, normalize.ErrNoDefinitions):
		return ErrCodeNoDefinitions
	case errors.Is(err, normalize.ErrInvalidValue):
		return ErrCodeInvalidValue
	}
	return ErrCodeNormalize
}

// Issue is one reportable error with its code.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Handle  string `json:"handle,omitempty"`
	Field   string `json:"field,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// NewIssue classifies err.
func NewIssue(err error) Issue {
	code, msg := ErrorCode(err)
	issue := Issue{Code: code, Message: msg}
	var normErr *normalize.Error
	if errors.As(err, &normErr) {
		issue.Handle = normErr.Handle
		issue.Field = normErr.Field
		issue.Line = normErr.Line
		issue.Column = normErr.Column
	}
	return issue
}

// loadOrFail loads path and reports document-level failures through f.
// A FailFast normalization error is reported as a failure of the
// document (exit 1); load errors are command errors (exit 2).
func loadOrFail(f *OutputFormatter, opts *RootOptions, path string) (*LoadResult, error) {
	result, err := LoadTransforms(opts, path)
	if err == nil {
		f.VerboseLog("Loaded %d transform(s) from %s", result.Set.Len(), path)
		return result, nil
	}
	issue := NewIssue(err)
	if isDocumentError(err) {
		return nil, f.fail(ExitCommandError, issue.Code, issue.Message, nil)
	}
	return nil, f.fail(ExitFailure, issue.Code, issue.Message, issue)
}

// isDocumentError reports whether err stopped the document from loading
// at all, as opposed to a normalization failure inside it.
func isDocumentError(err error) bool {
	var loadErr *loader.LoadError
	return errors.As(err, &loadErr)
}

// describe renders an endpoint list for text output.
func describe(specs []ir.IOSpec) string {
	out := ""
	for i, s := range specs {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s@%s:%s%v", s.Model, s.Version, s.Node, s.Props)
	}
	return out
}
