// Package graph shapes a canonical transform into linked Node, Property,
// Transform and Step records for a persistence layer. It performs no I/O.
package graph

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/transmute/internal/ir"
)

// Node is a data-model node record.
type Node struct {
	Handle  string
	Model   string
	Version string
	Props   map[string]*Property
}

// ID is the content-addressed identity of the node.
func (n *Node) ID() string {
	return ir.MustRecordID(ir.DomainNode, n.Model, n.Version, n.Handle)
}

// Property is a data-model property record. Properties are shared across
// nodes of the same model and version.
type Property struct {
	Handle  string
	Model   string
	Version string
}

// ID is the content-addressed identity of the property.
func (p *Property) ID() string {
	return ir.MustRecordID(ir.DomainProperty, p.Model, p.Version, p.Handle)
}

// Step is one link of a transform's step chain.
type Step struct {
	Package    string
	Version    string
	Entrypoint string
	Params     []byte // canonical JSON, nil when the step has no params
	Next       *Step
}

// DecodeParams returns the structured params, or nil when there are none.
func (s *Step) DecodeParams() (any, error) {
	if s.Params == nil {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(s.Params, &v); err != nil {
		return nil, fmt.Errorf("decode params of %s: %w", s.Entrypoint, err)
	}
	return v, nil
}

// Transform is the transform record. InputProps and OutputProps are keyed
// "{Node}.{Prop}".
type Transform struct {
	Handle      string
	InputProps  map[string]*Property
	OutputProps map[string]*Property
	FirstStep   *Step
	LastStep    *Step
}

// Steps walks the chain from FirstStep.
func (t *Transform) Steps() []*Step {
	var steps []*Step
	for s := t.FirstStep; s != nil; s = s.Next {
		steps = append(steps, s)
	}
	return steps
}

// Graph is the result of one export. Nodes and Properties are listed in
// creation order.
type Graph struct {
	Transform  *Transform
	Nodes      []*Node
	Properties []*Property
}
