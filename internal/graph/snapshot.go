package graph

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/transmute/internal/ir"
)

// Snapshot renders g as indented canonical JSON (sorted keys, trailing
// newline) for golden comparisons and CLI output.
func (g *Graph) Snapshot() ([]byte, error) {
	obj, err := g.object()
	if err != nil {
		return nil, err
	}
	canonical, err := ir.MarshalCanonical(obj)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", g.Transform.Handle, err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, canonical, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (g *Graph) object() (map[string]any, error) {
	propObj := func(p *Property) map[string]any {
		return map[string]any{"handle": p.Handle, "model": p.Model, "version": p.Version}
	}
	propMap := func(m map[string]*Property) map[string]any {
		out := make(map[string]any, len(m))
		for k, p := range m {
			out[k] = propObj(p)
		}
		return out
	}

	steps := []any{}
	for _, s := range g.Transform.Steps() {
		step := map[string]any{
			"package":    s.Package,
			"version":    s.Version,
			"entrypoint": s.Entrypoint,
		}
		params, err := s.DecodeParams()
		if err != nil {
			return nil, err
		}
		if params != nil {
			step["params"] = params
		}
		steps = append(steps, step)
	}

	nodes := make([]any, len(g.Nodes))
	for i, n := range g.Nodes {
		props := ir.SortedKeys(n.Props)
		names := make([]any, len(props))
		for j, p := range props {
			names[j] = p
		}
		nodes[i] = map[string]any{
			"handle":  n.Handle,
			"model":   n.Model,
			"version": n.Version,
			"props":   names,
		}
	}
	props := make([]any, len(g.Properties))
	for i, p := range g.Properties {
		props[i] = propObj(p)
	}

	return map[string]any{
		"transform": map[string]any{
			"handle":       g.Transform.Handle,
			"input_props":  propMap(g.Transform.InputProps),
			"output_props": propMap(g.Transform.OutputProps),
			"steps":        steps,
		},
		"nodes":      nodes,
		"properties": props,
	}, nil
}
