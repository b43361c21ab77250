package pipeline

import "slices"

type inputShape int

const (
	shapeScalar inputShape = iota
	shapePositional
	shapeKeywords
)

// Input is one of the three accepted call shapes.
type Input struct {
	shape    inputShape
	values   []any
	keywords map[string]any
}

// Positional passes values in order.
func Positional(values ...any) Input {
	return Input{shape: shapePositional, values: values}
}

// Keywords passes values by declared input name. Keys must be a subset of
// the pipeline's ArgNames; absent keys are omitted.
func Keywords(kw map[string]any) Input {
	return Input{shape: shapeKeywords, keywords: kw}
}

// Scalar passes v as the single positional argument.
func Scalar(v any) Input {
	return Input{shape: shapeScalar, values: []any{v}}
}

// InputOf routes plain data by shape: sequences are positional, string
// keyed mappings are keywords, anything else is a scalar.
func InputOf(v any) Input {
	switch d := v.(type) {
	case []any:
		return Positional(d...)
	case []string:
		values := make([]any, len(d))
		for i, s := range d {
			values[i] = s
		}
		return Positional(values...)
	case map[string]any:
		return Keywords(d)
	case map[string]string:
		kw := make(map[string]any, len(d))
		for k, s := range d {
			kw[k] = s
		}
		return Keywords(kw)
	}
	return Scalar(v)
}

// positional orders the input against the declared argument names.
func (in Input) positional(names []string) ([]any, error) {
	if in.shape != shapeKeywords {
		return in.values, nil
	}
	var invalid []string
	for k := range in.keywords {
		if !slices.Contains(names, k) {
			invalid = append(invalid, k)
		}
	}
	if len(invalid) > 0 {
		slices.Sort(invalid)
		return nil, &InputValidationError{Invalid: invalid, Valid: slices.Clone(names)}
	}
	args := make([]any, 0, len(in.keywords))
	for _, name := range names {
		if v, ok := in.keywords[name]; ok {
			args = append(args, v)
		}
	}
	return args, nil
}
