package harness

import (
	"fmt"
	"log/slog"

	"github.com/roach88/transmute/internal/ir"
	"github.com/roach88/transmute/internal/loader"
	"github.com/roach88/transmute/internal/normalize"
	"github.com/roach88/transmute/internal/pipeline"
	"github.com/roach88/transmute/internal/telemetry"
	"github.com/roach88/transmute/internal/tflib"
)

// Harness evaluates the cases of one scenario against its specification.
type Harness struct {
	set       *ir.TransformSet
	compiler  *pipeline.Compiler
	pipelines map[string]*pipeline.Pipeline
	logger    *slog.Logger
}

// Option configures a Harness.
type Option func(*config)

type config struct {
	registry *pipeline.Registry
	logger   *slog.Logger
}

// WithRegistry replaces the default function library.
func WithRegistry(r *pipeline.Registry) Option {
	return func(c *config) { c.registry = r }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// New loads and normalizes the scenario's specification. Nothing is
// compiled until a case asks for it.
func New(scenario *Scenario, opts ...Option) (*Harness, error) {
	cfg := config{logger: telemetry.Discard()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.registry == nil {
		cfg.registry = tflib.NewRegistry()
	}

	set, err := LoadTransforms(scenario.Spec, scenario.Defaults, cfg.logger)
	if err != nil {
		return nil, err
	}
	return &Harness{
		set:       set,
		compiler:  pipeline.NewCompiler(cfg.registry, pipeline.WithLogger(cfg.logger)),
		pipelines: make(map[string]*pipeline.Pipeline),
		logger:    cfg.logger,
	}, nil
}

// LoadTransforms loads, validates and normalizes a specification file,
// applying the default bundle at defaultsPath when it is not empty. A nil
// logger discards.
func LoadTransforms(specPath, defaultsPath string, logger *slog.Logger) (*ir.TransformSet, error) {
	if logger == nil {
		logger = telemetry.Discard()
	}
	doc, err := loader.LoadFile(specPath)
	if err != nil {
		return nil, err
	}
	opts := []normalize.Option{normalize.WithLogger(logger)}
	if defaultsPath != "" {
		defaults, err := loader.LoadDefaults(defaultsPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, normalize.WithDefaults(defaults))
	}
	set, err := normalize.New(opts...).NormalizeDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", specPath, err)
	}
	return set, nil
}

// Transforms returns the normalized transform set.
func (h *Harness) Transforms() *ir.TransformSet {
	return h.set
}

// Run loads the scenario's specification and evaluates every case with
// the built-in function library. The error is non-nil only when the
// specification itself cannot be loaded; case failures are reported in
// the Result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h, err := New(scenario, opts...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	result := NewResult()
	for i, c := range scenario.Cases {
		result.AddCase(h.RunCase(i, c))
	}
	h.logger.Debug("scenario finished",
		"scenario", scenario.Name,
		"cases", len(result.Cases),
		"passed", result.Passed())
	return result, nil
}

// RunCase compiles (once per handle) and calls the case's transform.
func (h *Harness) RunCase(i int, c Case) CaseResult {
	cr := CaseResult{Name: c.label(i), Transform: c.Transform}

	p, err := h.pipeline(c.Transform)
	var out pipeline.Output
	if err == nil {
		out, err = p.Call(pipeline.InputOf(c.Input))
	}
	if err == nil {
		if out.Multiple() {
			cr.Got = out.Map()
		} else {
			cr.Got = out.Value()
		}
	}

	cr.Errors = checkCase(c, out, err)
	cr.Pass = len(cr.Errors) == 0
	return cr
}

func (h *Harness) pipeline(handle string) (*pipeline.Pipeline, error) {
	if p, ok := h.pipelines[handle]; ok {
		return p, nil
	}
	tf, ok := h.set.Get(handle)
	if !ok {
		return nil, fmt.Errorf("unknown transform %q", handle)
	}
	p, err := h.compiler.Compile(tf)
	if err != nil {
		return nil, err
	}
	h.pipelines[handle] = p
	return p, nil
}
