package pipeline

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/transmute/internal/ir"
	"github.com/roach88/transmute/internal/telemetry"
)

// unit is a resolved step with its params already bound.
type unit func(args []any) (any, error)

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for debug output during Compile.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) { c.logger = l }
}

// Compiler builds Pipelines against a Registry. Every Compile resolves
// afresh; nothing is cached between calls.
type Compiler struct {
	registry *Registry
	logger   *slog.Logger
}

// NewCompiler creates a Compiler resolving functions from reg.
func NewCompiler(reg *Registry, opts ...Option) *Compiler {
	c := &Compiler{
		registry: reg,
		logger:   telemetry.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Pipeline is a compiled transform. It holds no per-call state and may be
// invoked concurrently.
type Pipeline struct {
	args    []string
	results []string
	fn      unit
	kind    ResultKind
}

// Compile resolves every step of tf and composes them left to right.
// An unregistered function fails here with a *ResolutionError.
func (c *Compiler) Compile(tf ir.Transform) (*Pipeline, error) {
	if len(tf.Steps) == 0 {
		return nil, fmt.Errorf("compile: transform has no steps")
	}

	units := make([]unit, 0, len(tf.Steps))
	kind := Single
	for i, step := range tf.Steps {
		if step.IsIdentity() {
			// Pass-through keeps the kind of whatever precedes it.
			units = append(units, identity)
			c.logger.Debug("resolved step", "index", i, "package", step.Package.Name)
			continue
		}
		fn, err := c.registry.Resolve(step.Package, step.Entrypoint)
		if err != nil {
			return nil, err
		}
		units = append(units, bind(fn.Call, step.Params))
		kind = fn.Result
		c.logger.Debug("resolved step",
			"index", i,
			"package", step.Package.String(),
			"entrypoint", step.Entrypoint,
			"result", kind,
			"params", step.Params != nil)
	}

	return &Pipeline{
		args:    FlattenNames(tf.Inputs),
		results: FlattenNames(tf.Outputs),
		fn:      compose(units),
		kind:    kind,
	}, nil
}

// FlattenNames lists "{Node}_{Prop}" for every prop of every endpoint, in
// order.
func FlattenNames(specs []ir.IOSpec) []string {
	var names []string
	for _, s := range specs {
		for _, p := range s.Props {
			names = append(names, s.Node+"_"+p)
		}
	}
	return names
}

func identity(args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("identity takes exactly one argument, got %d", len(args))
	}
	return args[0], nil
}

// bind fixes params as the step's extra argument.
func bind(f Func, params any) unit {
	return func(args []any) (any, error) {
		return f(args, params)
	}
}

func compose(units []unit) unit {
	if len(units) == 1 {
		return units[0]
	}
	return func(args []any) (any, error) {
		out, err := units[0](args)
		if err != nil {
			return nil, err
		}
		for _, u := range units[1:] {
			if out, err = u([]any{out}); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
}

// ArgNames returns the declared input names: the accepted keyword keys
// and the positional order.
func (p *Pipeline) ArgNames() []string {
	return slices.Clone(p.args)
}

// ResultNames returns the declared output names.
func (p *Pipeline) ResultNames() []string {
	return slices.Clone(p.results)
}

// Kind returns the result kind of the final step.
func (p *Pipeline) Kind() ResultKind {
	return p.kind
}

// Call invokes the pipeline. Errors raised by step functions are returned
// unmodified.
func (p *Pipeline) Call(in Input) (Output, error) {
	args, err := in.positional(p.args)
	if err != nil {
		return Output{}, err
	}
	ret, err := p.fn(args)
	if err != nil {
		return Output{}, err
	}
	if p.kind == Single {
		return Output{value: ret}, nil
	}
	values, ok := asSequence(ret)
	if !ok {
		return Output{}, &ResultShapeError{Got: ret}
	}
	n := min(len(values), len(p.results))
	return Output{
		multiple: true,
		names:    p.results[:n:n],
		values:   values[:n:n],
	}, nil
}

func asSequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, e := range s {
			out[i] = e
		}
		return out, true
	}
	return nil, false
}
