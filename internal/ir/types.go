package ir

import (
	"fmt"
	"slices"
	"strings"
)

// Built-in pass-through step. Steps naming this package never reach the
// function registry.
const (
	IdentityPackage    = "Identity"
	IdentityEntrypoint = "identity"
)

// Kind distinguishes general transforms from the identity specialization.
type Kind string

const (
	KindGeneral  Kind = "general"
	KindIdentity Kind = "identity"
)

// ValidationError reports a constructor-time violation of the model.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PackageSpec names a function-providing namespace.
type PackageSpec struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// NewPackageSpec builds a PackageSpec, normalizing Name to a symbol-safe
// identifier.
func NewPackageSpec(name, version string) (PackageSpec, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return PackageSpec{}, &ValidationError{Field: "Package.Name", Message: "package name is required"}
	}
	return PackageSpec{
		Name:    strings.ReplaceAll(name, "-", "_"),
		Version: version,
	}, nil
}

// ParsePackage parses the "name@version" shorthand.
func ParsePackage(s string) (PackageSpec, error) {
	name, version, ok := strings.Cut(s, "@")
	if !ok || name == "" {
		return PackageSpec{}, &ValidationError{
			Field:   "Package",
			Message: fmt.Sprintf("cannot interpret package shorthand %q, expected name@version", s),
		}
	}
	return NewPackageSpec(name, version)
}

// String renders the shorthand form.
func (p PackageSpec) String() string {
	if p.Version == "" {
		return p.Name
	}
	return p.Name + "@" + p.Version
}

// EntityDefaults fills omitted Model/Version/Node fields on an endpoint.
// Empty strings mean "not set".
type EntityDefaults struct {
	Model   string `json:"model,omitempty"`
	Version string `json:"version,omitempty"`
	Node    string `json:"node,omitempty"`
}

// Field returns the default for one of "Model", "Version" or "Node".
func (d *EntityDefaults) Field(name string) string {
	if d == nil {
		return ""
	}
	switch name {
	case "Model":
		return d.Model
	case "Version":
		return d.Version
	case "Node":
		return d.Node
	}
	return ""
}

// Defaults is the default bundle of one normalization run.
type Defaults struct {
	Inputs  *EntityDefaults `json:"inputs,omitempty"`
	Outputs *EntityDefaults `json:"outputs,omitempty"`
	Package *PackageSpec    `json:"package,omitempty"`
}

// IOSpec fully qualifies one side of a data-model mapping.
type IOSpec struct {
	Model   string   `json:"model"`
	Version string   `json:"version"`
	Node    string   `json:"node"`
	Props   []string `json:"props"`
}

// NewIOSpec builds an endpoint. A single prop is the one-element shorthand.
func NewIOSpec(model, version, node string, props ...string) (IOSpec, error) {
	for _, f := range []struct{ name, val string }{
		{"Model", model},
		{"Version", version},
		{"Node", node},
	} {
		if f.val == "" {
			return IOSpec{}, &ValidationError{Field: f.name, Message: f.name + " is required"}
		}
	}
	if len(props) == 0 {
		return IOSpec{}, &ValidationError{Field: "Props", Message: "Props must not be empty"}
	}
	for i, p := range props {
		if p == "" {
			return IOSpec{}, &ValidationError{Field: fmt.Sprintf("Props[%d]", i), Message: "property name must not be empty"}
		}
	}
	return IOSpec{
		Model:   model,
		Version: version,
		Node:    node,
		Props:   slices.Clone(props),
	}, nil
}

// MustIOSpec is like NewIOSpec but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustIOSpec(model, version, node string, props ...string) IOSpec {
	s, err := NewIOSpec(model, version, node, props...)
	if err != nil {
		panic(err)
	}
	return s
}

// TfStepSpec is one unit of work in a transform.
// Params is opaque structured data handed to the step function untouched.
type TfStepSpec struct {
	Package    PackageSpec `json:"package"`
	Entrypoint string      `json:"entrypoint"`
	Params     any         `json:"params,omitempty"`
}

// NewStep builds a step spec.
func NewStep(pkg PackageSpec, entrypoint string, params any) (TfStepSpec, error) {
	if pkg.Name == "" {
		return TfStepSpec{}, &ValidationError{Field: "Package", Message: "package name is required"}
	}
	if entrypoint == "" {
		return TfStepSpec{}, &ValidationError{Field: "Entrypoint", Message: "Entrypoint is required"}
	}
	return TfStepSpec{Package: pkg, Entrypoint: entrypoint, Params: params}, nil
}

// IdentityStep returns the built-in pass-through step.
func IdentityStep() TfStepSpec {
	return TfStepSpec{
		Package:    PackageSpec{Name: IdentityPackage},
		Entrypoint: IdentityEntrypoint,
	}
}

// IsIdentity reports whether the step is the built-in pass-through.
func (s TfStepSpec) IsIdentity() bool {
	return s.Package.Name == IdentityPackage
}

// Transform is the canonical description of one data conversion.
type Transform struct {
	Kind    Kind         `json:"kind"`
	Inputs  []IOSpec     `json:"inputs"`
	Outputs []IOSpec     `json:"outputs"`
	Steps   []TfStepSpec `json:"steps"`
}

// NewTransform builds a general transform. Steps run left to right.
func NewTransform(inputs, outputs []IOSpec, steps []TfStepSpec) (Transform, error) {
	if len(inputs) == 0 {
		return Transform{}, &ValidationError{Field: "Inputs", Message: "at least one input is required"}
	}
	if len(outputs) == 0 {
		return Transform{}, &ValidationError{Field: "Outputs", Message: "at least one output is required"}
	}
	if len(steps) == 0 {
		return Transform{}, &ValidationError{Field: "Steps", Message: "at least one step is required"}
	}
	return Transform{
		Kind:    KindGeneral,
		Inputs:  cloneSpecs(inputs),
		Outputs: cloneSpecs(outputs),
		Steps:   slices.Clone(steps),
	}, nil
}

// NewIdentityTransform maps exactly one property to exactly one property
// through the built-in pass-through step.
func NewIdentityTransform(from, to IOSpec) (Transform, error) {
	if len(from.Props) != 1 {
		return Transform{}, &ValidationError{Field: "From.Props", Message: "identity transforms take exactly one input property"}
	}
	if len(to.Props) != 1 {
		return Transform{}, &ValidationError{Field: "To.Props", Message: "identity transforms take exactly one output property"}
	}
	tf, err := NewTransform([]IOSpec{from}, []IOSpec{to}, []TfStepSpec{IdentityStep()})
	if err != nil {
		return Transform{}, err
	}
	tf.Kind = KindIdentity
	return tf, nil
}

// MustIdentityTransform is like NewIdentityTransform but panics on error.
func MustIdentityTransform(from, to IOSpec) Transform {
	tf, err := NewIdentityTransform(from, to)
	if err != nil {
		panic(err)
	}
	return tf
}

// IsIdentity reports whether t is the identity specialization.
func (t Transform) IsIdentity() bool {
	return t.Kind == KindIdentity
}

// IdentityHandle synthesizes the handle of an identity transform.
func IdentityHandle(from, to IOSpec) string {
	return fmt.Sprintf("%s_%s_to_%s_%s", from.Node, from.Props[0], to.Node, to.Props[0])
}

func cloneSpecs(specs []IOSpec) []IOSpec {
	out := make([]IOSpec, len(specs))
	for i, s := range specs {
		s.Props = slices.Clone(s.Props)
		out[i] = s
	}
	return out
}
