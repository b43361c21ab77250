package pipeline

import (
	"bytes"
	"encoding/json"
	"slices"
)

// Output is a pipeline result: one value, or named values in declared
// output order.
type Output struct {
	multiple bool
	value    any
	names    []string
	values   []any
}

// Multiple reports whether the result is a named, ordered set of values.
func (o Output) Multiple() bool { return o.multiple }

// Value returns a single result, or the ordered values of a multiple one.
func (o Output) Value() any {
	if o.multiple {
		return slices.Clone(o.values)
	}
	return o.value
}

// Names returns the output names in declared order. Empty for single
// results.
func (o Output) Names() []string {
	return slices.Clone(o.names)
}

// Get returns the value bound to name.
func (o Output) Get(name string) (any, bool) {
	i := slices.Index(o.names, name)
	if i < 0 {
		return nil, false
	}
	return o.values[i], true
}

// Map returns the named values. Nil for single results.
func (o Output) Map() map[string]any {
	if !o.multiple {
		return nil
	}
	m := make(map[string]any, len(o.names))
	for i, name := range o.names {
		m[name] = o.values[i]
	}
	return m
}

// MarshalJSON writes multiple results as an object in declared order.
func (o Output) MarshalJSON() ([]byte, error) {
	if !o.multiple {
		return json.Marshal(o.value)
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range o.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(o.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
