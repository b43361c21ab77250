// Package raw decodes loosely shaped specification data into a small
// tagged union so downstream code switches on Kind instead of inspecting
// Go dynamic types.
//
// Values come from two places: a *yaml.Node (mapping key order is kept)
// or plain Go values such as map[string]any (keys are sorted, since Go
// maps carry no order).
package raw

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	Null Kind = iota
	String
	Scalar
	List
	Mapping
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case String:
		return "string"
	case Scalar:
		return "scalar"
	case List:
		return "list"
	case Mapping:
		return "mapping"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Value is String | Scalar | List | Mapping | Null.
// Scalar covers non-string leaves (numbers, booleans, timestamps).
type Value struct {
	kind   Kind
	str    string
	scalar any
	lit    string
	items  []Value
	keys   []string
	fields map[string]Value
	line   int
	column int
}

// NewString returns a String value.
func NewString(s string) Value {
	return Value{kind: String, str: s}
}

// NewList returns a List value.
func NewList(items ...Value) Value {
	return Value{kind: List, items: items}
}

// Field is one ordered mapping entry.
type Field struct {
	Key   string
	Value Value
}

// NewMapping returns a Mapping value with entries in the given order.
func NewMapping(fields ...Field) Value {
	v := Value{kind: Mapping, fields: make(map[string]Value, len(fields))}
	for _, f := range fields {
		if _, dup := v.fields[f.Key]; !dup {
			v.keys = append(v.keys, f.Key)
		}
		v.fields[f.Key] = f.Value
	}
	return v
}

// From decodes plain Go data (as produced by yaml.Unmarshal or
// json.Unmarshal into any).
func From(data any) (Value, error) {
	switch d := data.(type) {
	case nil:
		return Value{kind: Null}, nil
	case Value:
		return d, nil
	case string:
		return NewString(d), nil
	case []string:
		items := make([]Value, len(d))
		for i, s := range d {
			items[i] = NewString(s)
		}
		return NewList(items...), nil
	case []any:
		items := make([]Value, len(d))
		for i, elem := range d {
			item, err := From(elem)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = item
		}
		return NewList(items...), nil
	case map[string]any:
		keys := make([]string, 0, len(d))
		for k := range d {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		fields := make([]Field, len(keys))
		for i, k := range keys {
			item, err := From(d[k])
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}
			fields[i] = Field{Key: k, Value: item}
		}
		return NewMapping(fields...), nil
	case map[any]any:
		converted := make(map[string]any, len(d))
		for k, elem := range d {
			ks, ok := k.(string)
			if !ok {
				return Value{}, fmt.Errorf("mapping key %v is not a string", k)
			}
			converted[ks] = elem
		}
		return From(converted)
	case bool, int, int64, int32, uint64, float64, float32:
		return Value{kind: Scalar, scalar: d, lit: fmt.Sprint(d)}, nil
	default:
		return Value{}, fmt.Errorf("unsupported value of type %T", data)
	}
}

// MustFrom is like From but panics on error. Intended for tests.
func MustFrom(data any) Value {
	v, err := From(data)
	if err != nil {
		panic(err)
	}
	return v
}

// FromNode decodes a YAML node tree, keeping mapping key order and
// source positions.
func FromNode(n *yaml.Node) (Value, error) {
	if n == nil {
		return Value{kind: Null}, nil
	}
	pos := func(v Value) Value {
		v.line, v.column = n.Line, n.Column
		return v
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return pos(Value{kind: Null}), nil
		}
		return FromNode(n.Content[0])
	case yaml.AliasNode:
		return FromNode(n.Alias)
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return pos(Value{kind: Null}), nil
		case "!!str":
			return pos(NewString(n.Value)), nil
		default:
			var scalar any
			if err := n.Decode(&scalar); err != nil {
				return Value{}, fmt.Errorf("line %d: %w", n.Line, err)
			}
			return pos(Value{kind: Scalar, scalar: scalar, lit: n.Value}), nil
		}
	case yaml.SequenceNode:
		items := make([]Value, len(n.Content))
		for i, c := range n.Content {
			item, err := FromNode(c)
			if err != nil {
				return Value{}, err
			}
			items[i] = item
		}
		return pos(NewList(items...)), nil
	case yaml.MappingNode:
		fields := make([]Field, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, vn := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return Value{}, fmt.Errorf("line %d: mapping keys must be scalars", k.Line)
			}
			item, err := FromNode(vn)
			if err != nil {
				return Value{}, err
			}
			fields = append(fields, Field{Key: k.Value, Value: item})
		}
		return pos(NewMapping(fields...)), nil
	}
	return Value{}, fmt.Errorf("line %d: unsupported YAML node kind %v", n.Line, n.Kind)
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null or was never set.
func (v Value) IsNull() bool { return v.kind == Null }

// Str returns the string held by a String value.
func (v Value) Str() (string, bool) {
	if v.kind != String {
		return "", false
	}
	return v.str, true
}

// Text returns the string of a String value, or the literal source text
// of a Scalar (so a YAML version written as 1.0 reads back as "1.0").
func (v Value) Text() (string, bool) {
	switch v.kind {
	case String:
		return v.str, true
	case Scalar:
		return v.lit, true
	}
	return "", false
}

// Items returns the elements of a List value.
func (v Value) Items() []Value {
	return v.items
}

// Len returns the element count of a List or entry count of a Mapping.
func (v Value) Len() int {
	switch v.kind {
	case List:
		return len(v.items)
	case Mapping:
		return len(v.keys)
	}
	return 0
}

// Keys returns mapping keys in order.
func (v Value) Keys() []string {
	return slices.Clone(v.keys)
}

// Get returns the value stored under key in a Mapping. A key present with
// a null value reports ok=true with a Null value.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != Mapping {
		return Value{}, false
	}
	item, ok := v.fields[key]
	return item, ok
}

// Line returns the 1-based source line, or 0 when unknown.
func (v Value) Line() int { return v.line }

// Column returns the 1-based source column, or 0 when unknown.
func (v Value) Column() int { return v.column }

// Interface converts v back into plain Go data: nil, string, scalars,
// []any and map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case String:
		return v.str
	case Scalar:
		return v.scalar
	case List:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	case Mapping:
		out := make(map[string]any, len(v.keys))
		for _, k := range v.keys {
			out[k] = v.fields[k].Interface()
		}
		return out
	}
	return nil
}

// String renders v compactly for error messages, keeping mapping order.
func (v Value) String() string {
	var b strings.Builder
	v.render(&b)
	return b.String()
}

func (v Value) render(b *strings.Builder) {
	switch v.kind {
	case Null:
		b.WriteString("null")
	case String:
		fmt.Fprintf(b, "%q", v.str)
	case Scalar:
		fmt.Fprintf(b, "%v", v.scalar)
	case List:
		b.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				b.WriteString(", ")
			}
			item.render(b)
		}
		b.WriteByte(']')
	case Mapping:
		b.WriteByte('{')
		for i, k := range v.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "%s: ", k)
			v.fields[k].render(b)
		}
		b.WriteByte('}')
	}
}
