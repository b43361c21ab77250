package normalize

import (
	"strings"

	"github.com/roach88/transmute/internal/ir"
	"github.com/roach88/transmute/internal/raw"
)

// side selects which EntityDefaults apply to an endpoint.
type side int

const (
	inputSide side = iota
	outputSide
)

func (s side) String() string {
	if s == outputSide {
		return "Outputs"
	}
	return "Inputs"
}

func (r *run) entityDefaults(s side) *ir.EntityDefaults {
	if s == outputSide {
		return r.defaults.Outputs
	}
	return r.defaults.Inputs
}

// endpoint resolves one raw endpoint: a mapping or a "Node.Prop" / "Prop"
// shorthand string.
func (r *run) endpoint(v raw.Value, s side) (ir.IOSpec, error) {
	switch v.Kind() {
	case raw.Mapping:
		return r.endpointMapping(v, s)
	case raw.String:
		return r.endpointShorthand(v, s)
	}
	return ir.IOSpec{}, newError(ErrUnrecognizedShape, s.String(), v,
		"cannot interpret transform %s specification", strings.ToLower(s.String()))
}

func (r *run) endpointMapping(v raw.Value, s side) (ir.IOSpec, error) {
	defaults := r.entityDefaults(s)
	var fields [3]string
	for i, name := range []string{"Model", "Version", "Node"} {
		val, err := optionalString(v, name)
		if err != nil {
			return ir.IOSpec{}, err
		}
		if val == "" {
			val = defaults.Field(name)
		}
		if val == "" {
			return ir.IOSpec{}, newError(ErrMissingField, name, v,
				"%s not specified and no default set", name)
		}
		fields[i] = val
	}

	props, err := endpointProps(v)
	if err != nil {
		return ir.IOSpec{}, err
	}
	spec, err := ir.NewIOSpec(fields[0], fields[1], fields[2], props...)
	if err != nil {
		return ir.IOSpec{}, fromValidation(err, v)
	}
	return spec, nil
}

// endpointProps reads Prop (wins when set) or Props, each either a string
// or a list of strings.
func endpointProps(v raw.Value) ([]string, error) {
	if p, ok := v.Get("Prop"); ok && !p.IsNull() {
		s, ok := p.Text()
		if !ok {
			return nil, newError(ErrUnrecognizedShape, "Prop", v, "Prop must be a string, got %s", p.Kind())
		}
		return []string{s}, nil
	}
	p, ok := v.Get("Props")
	if !ok || p.IsNull() {
		return nil, newError(ErrMissingField, "Props", v, "Props value is required")
	}
	switch p.Kind() {
	case raw.String, raw.Scalar:
		s, _ := p.Text()
		return []string{s}, nil
	case raw.List:
		props := make([]string, 0, p.Len())
		for _, item := range p.Items() {
			s, ok := item.Text()
			if !ok {
				return nil, newError(ErrUnrecognizedShape, "Props", v,
					"Props entries must be strings, got %s", item.Kind())
			}
			props = append(props, s)
		}
		return props, nil
	}
	return nil, newError(ErrUnrecognizedShape, "Props", v,
		"Props must be a string or a list of strings, got %s", p.Kind())
}

func (r *run) endpointShorthand(v raw.Value, s side) (ir.IOSpec, error) {
	if r.defaults.Inputs == nil || r.defaults.Outputs == nil {
		return ir.IOSpec{}, newError(ErrMissingDefaults, s.String(), v,
			"Simple endpoint format requires also setting input and output default models in Defaults")
	}
	defaults := r.entityDefaults(s)
	str, _ := v.Str()
	node, prop := SplitShorthand(str)
	if node == "" {
		if defaults.Node == "" {
			return ir.IOSpec{}, newError(ErrMissingDefaults, "Node", v,
				"Node not specified in property string, with no default provided")
		}
		node = defaults.Node
	}
	for _, name := range []string{"Model", "Version"} {
		if defaults.Field(name) == "" {
			return ir.IOSpec{}, newError(ErrMissingField, name, v,
				"%s not specified and no default set", name)
		}
	}
	spec, err := ir.NewIOSpec(defaults.Model, defaults.Version, node, prop)
	if err != nil {
		return ir.IOSpec{}, &Error{
			Field:    "Props",
			Message:  "cannot interpret endpoint shorthand, expected Node.Prop or Prop",
			Fragment: v.String(),
			Line:     v.Line(),
			Column:   v.Column(),
			Err:      ErrMalformedShorthand,
		}
	}
	return spec, nil
}

// SplitShorthand splits "Node.Prop" at the first dot. A string without a
// dot (or starting with one) is a bare property and node is "".
func SplitShorthand(s string) (node, prop string) {
	if i := strings.IndexByte(s, '.'); i > 0 {
		return s[:i], s[i+1:]
	}
	return "", s
}

// endpoints resolves a required, non-empty list of endpoints.
func (r *run) endpoints(spec raw.Value, s side) ([]ir.IOSpec, error) {
	v, ok := spec.Get(s.String())
	if !ok || v.IsNull() {
		return nil, newError(ErrMissingField, s.String(), spec, "%s value is required", s)
	}
	if v.Kind() != raw.List {
		return nil, newError(ErrUnrecognizedShape, s.String(), v, "%s must be a list", s)
	}
	if v.Len() == 0 {
		return nil, newError(ErrMissingField, s.String(), v, "%s must not be empty", s)
	}
	out := make([]ir.IOSpec, 0, v.Len())
	for _, item := range v.Items() {
		ep, err := r.endpoint(item, s)
		if err != nil {
			return nil, err
		}
		out = append(out, ep)
	}
	return out, nil
}
