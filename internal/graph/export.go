package graph

import (
	"fmt"
	"log/slog"

	"github.com/roach88/transmute/internal/ir"
	"github.com/roach88/transmute/internal/telemetry"
)

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) { e.logger = l }
}

// Exporter converts transforms to record graphs. It keeps no state between
// calls.
type Exporter struct {
	logger *slog.Logger
}

// NewExporter creates an Exporter.
func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{logger: telemetry.Discard()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export builds the record graph of tf under handle.
func Export(handle string, tf ir.Transform) (*Graph, error) {
	return NewExporter().Export(handle, tf)
}

type entityKey struct {
	model, version, handle string
}

// build holds the dedup maps of one export.
type build struct {
	g     *Graph
	nodes map[entityKey]*Node
	props map[entityKey]*Property
}

// Export builds the record graph of tf under handle. Nodes and properties
// referenced on both sides are created once.
func (e *Exporter) Export(handle string, tf ir.Transform) (*Graph, error) {
	if handle == "" {
		return nil, fmt.Errorf("export: handle is required")
	}
	b := &build{
		g: &Graph{Transform: &Transform{
			Handle:      handle,
			InputProps:  make(map[string]*Property),
			OutputProps: make(map[string]*Property),
		}},
		nodes: make(map[entityKey]*Node),
		props: make(map[entityKey]*Property),
	}
	b.endpoints(tf.Inputs, b.g.Transform.InputProps)
	b.endpoints(tf.Outputs, b.g.Transform.OutputProps)

	var prev *Step
	for i, spec := range tf.Steps {
		step := &Step{
			Package:    spec.Package.Name,
			Version:    spec.Package.Version,
			Entrypoint: spec.Entrypoint,
		}
		if spec.Params != nil {
			params, err := ir.MarshalCanonical(spec.Params)
			if err != nil {
				return nil, fmt.Errorf("export %s: step %d params: %w", handle, i, err)
			}
			step.Params = params
		}
		if prev == nil {
			b.g.Transform.FirstStep = step
		} else {
			prev.Next = step
		}
		prev = step
	}
	b.g.Transform.LastStep = prev

	e.logger.Debug("exported transform",
		"handle", handle,
		"nodes", len(b.g.Nodes),
		"properties", len(b.g.Properties),
		"steps", len(tf.Steps))
	return b.g, nil
}

func (b *build) endpoints(specs []ir.IOSpec, into map[string]*Property) {
	for _, s := range specs {
		node := b.node(s)
		for _, p := range s.Props {
			prop := b.property(s, p)
			node.Props[p] = prop
			// Keyed without model or version: same-named endpoints collapse.
			into[node.Handle+"."+prop.Handle] = prop
		}
	}
}

func (b *build) node(s ir.IOSpec) *Node {
	key := entityKey{s.Model, s.Version, s.Node}
	if n, ok := b.nodes[key]; ok {
		return n
	}
	n := &Node{
		Handle:  s.Node,
		Model:   s.Model,
		Version: s.Version,
		Props:   make(map[string]*Property),
	}
	b.nodes[key] = n
	b.g.Nodes = append(b.g.Nodes, n)
	return n
}

func (b *build) property(s ir.IOSpec, handle string) *Property {
	key := entityKey{s.Model, s.Version, handle}
	if p, ok := b.props[key]; ok {
		return p
	}
	p := &Property{Handle: handle, Model: s.Model, Version: s.Version}
	b.props[key] = p
	b.g.Properties = append(b.g.Properties, p)
	return p
}
