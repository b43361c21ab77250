package ir

import (
	"encoding/json"
	"fmt"
	"slices"
)

// TransformSet is an ordered handle -> Transform mapping.
// Handles are unique; iteration follows insertion order.
type TransformSet struct {
	order    []string
	byHandle map[string]Transform
}

// NewTransformSet returns an empty set.
func NewTransformSet() *TransformSet {
	return &TransformSet{byHandle: make(map[string]Transform)}
}

// Add appends a transform under handle. Duplicate handles are rejected.
func (s *TransformSet) Add(handle string, tf Transform) error {
	if handle == "" {
		return &ValidationError{Field: "handle", Message: "transform handle is required"}
	}
	if _, exists := s.byHandle[handle]; exists {
		return &ValidationError{Field: "handle", Message: fmt.Sprintf("duplicate transform handle %q", handle)}
	}
	s.order = append(s.order, handle)
	s.byHandle[handle] = tf
	return nil
}

// Get returns the transform registered under handle.
func (s *TransformSet) Get(handle string) (Transform, bool) {
	tf, ok := s.byHandle[handle]
	return tf, ok
}

// Handles returns handles in insertion order.
func (s *TransformSet) Handles() []string {
	return slices.Clone(s.order)
}

// Len returns the number of transforms.
func (s *TransformSet) Len() int {
	return len(s.order)
}

// NamedTransform pairs a handle with its transform.
type NamedTransform struct {
	Handle    string    `json:"handle"`
	Transform Transform `json:"transform"`
}

// All returns the transforms in insertion order.
func (s *TransformSet) All() []NamedTransform {
	out := make([]NamedTransform, 0, len(s.order))
	for _, h := range s.order {
		out = append(out, NamedTransform{Handle: h, Transform: s.byHandle[h]})
	}
	return out
}

// MarshalJSON emits the set as an ordered list of named transforms.
func (s *TransformSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.All())
}
