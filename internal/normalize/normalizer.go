// Package normalize turns a schema-validated, shorthand-tolerant
// transform specification into canonical ir.Transform values.
//
// Every default is resolved here; nothing is deferred to compile or call
// time. The input is a raw.Value decoded once at the loader boundary.
package normalize

import (
	"errors"
	"log/slog"

	"github.com/roach88/transmute/internal/ir"
	"github.com/roach88/transmute/internal/raw"
	"github.com/roach88/transmute/internal/telemetry"
)

// Mode controls how failing entries are handled.
type Mode int

const (
	// FailFast aborts the whole load on the first failing entry.
	FailFast Mode = iota
	// CollectAll skips failing identities/transforms and reports every
	// error alongside the entries that did normalize.
	CollectAll
)

// Top-level keys of a transform specification document.
const (
	KeyDefinitions = "TransformDefinitions"
	KeyDefaults    = "Defaults"
	KeyIdentities  = "Identities"
	KeyTransforms  = "Transforms"
)

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithDefaults supplies an external default bundle. Fields set by the
// document's own Defaults take precedence.
func WithDefaults(d ir.Defaults) Option {
	return func(n *Normalizer) { n.external = d }
}

// WithMode selects the error mode.
func WithMode(m Mode) Option {
	return func(n *Normalizer) { n.mode = m }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(n *Normalizer) { n.logger = l }
}

// Normalizer is immutable after New and safe for concurrent use; each
// call builds its own state.
type Normalizer struct {
	external ir.Defaults
	mode     Mode
	logger   *slog.Logger
}

// New creates a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		logger: telemetry.Discard(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NormalizeDocument normalizes a whole document, which must carry a
// top-level TransformDefinitions mapping.
func (n *Normalizer) NormalizeDocument(doc raw.Value) (*ir.TransformSet, error) {
	defs, ok := doc.Get(KeyDefinitions)
	if !ok || defs.IsNull() {
		return nil, &Error{
			Field:   KeyDefinitions,
			Message: "no transform definitions loaded",
			Err:     ErrNoDefinitions,
		}
	}
	return n.Normalize(defs)
}

// Normalize normalizes the body of TransformDefinitions:
// {Defaults?, Identities?, Transforms?}. Identities come first in the
// result, followed by named transforms in document order.
//
// In CollectAll mode a non-nil set is returned together with the joined
// errors of the entries that were skipped.
func (n *Normalizer) Normalize(defs raw.Value) (*ir.TransformSet, error) {
	if defs.Kind() != raw.Mapping {
		return nil, newError(ErrUnrecognizedShape, KeyDefinitions, defs,
			"%s must be a mapping", KeyDefinitions)
	}

	r := &run{
		n:   n,
		set: ir.NewTransformSet(),
	}

	// Defaults errors abort regardless of mode: every entry depends on them.
	defaults, err := n.resolveDefaults(defs)
	if err != nil {
		return nil, err
	}
	r.defaults = defaults

	if v, ok := defs.Get(KeyIdentities); ok && !v.IsNull() {
		if err := r.identities(v); err != nil {
			return nil, err
		}
	}
	if v, ok := defs.Get(KeyTransforms); ok && !v.IsNull() {
		if err := r.transforms(v); err != nil {
			return nil, err
		}
	}

	n.logger.Debug("normalized transform definitions",
		"transforms", r.set.Len(),
		"errors", len(r.errs))

	if len(r.errs) > 0 {
		return r.set, errors.Join(r.errs...)
	}
	return r.set, nil
}

// run holds the state of one normalization call.
type run struct {
	n        *Normalizer
	defaults ir.Defaults
	set      *ir.TransformSet
	errs     []error
}

// fail records err for handle. It returns err when the run must stop.
func (r *run) fail(handle string, err error) error {
	err = withHandle(err, handle)
	if r.n.mode == FailFast {
		return err
	}
	r.n.logger.Debug("skipping entry", "handle", handle, "error", err)
	r.errs = append(r.errs, err)
	return nil
}

func (r *run) add(handle string, tf ir.Transform, v raw.Value) error {
	if _, exists := r.set.Get(handle); exists {
		return r.fail(handle, newError(ErrDuplicateHandle, "handle", v,
			"duplicate transform handle %q", handle))
	}
	if err := r.set.Add(handle, tf); err != nil {
		return r.fail(handle, fromValidation(err, v))
	}
	r.n.logger.Debug("normalized transform",
		"handle", handle,
		"kind", tf.Kind,
		"inputs", len(tf.Inputs),
		"outputs", len(tf.Outputs),
		"steps", len(tf.Steps))
	return nil
}

func (r *run) identities(v raw.Value) error {
	if v.Kind() != raw.List {
		return newError(ErrUnrecognizedShape, KeyIdentities, v,
			"%s must be a list", KeyIdentities)
	}
	for i, item := range v.Items() {
		handle, tf, err := r.identity(item)
		if err != nil {
			if ferr := r.fail(identityLabel(i), err); ferr != nil {
				return ferr
			}
			continue
		}
		if err := r.add(handle, tf, item); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) transforms(v raw.Value) error {
	if v.Kind() != raw.Mapping {
		return newError(ErrUnrecognizedShape, KeyTransforms, v,
			"%s must be a mapping of handle to transform", KeyTransforms)
	}
	for _, handle := range v.Keys() {
		spec, _ := v.Get(handle)
		tf, err := r.transform(spec)
		if err != nil {
			if ferr := r.fail(handle, err); ferr != nil {
				return ferr
			}
			continue
		}
		if err := r.add(handle, tf, spec); err != nil {
			return err
		}
	}
	return nil
}

// fromValidation converts a model constructor error into an *Error.
func fromValidation(err error, v raw.Value) error {
	var verr *ir.ValidationError
	if errors.As(err, &verr) {
		return &Error{
			Field:    verr.Field,
			Message:  verr.Message,
			Fragment: v.String(),
			Line:     v.Line(),
			Column:   v.Column(),
			Err:      ErrInvalidValue,
		}
	}
	return err
}
