package normalize

import (
	"fmt"

	"github.com/roach88/transmute/internal/ir"
	"github.com/roach88/transmute/internal/raw"
)

// identity resolves an Identities entry: {From, To} or a two-element list
// of shorthand strings.
func (r *run) identity(v raw.Value) (string, ir.Transform, error) {
	var from, to ir.IOSpec
	var err error
	switch v.Kind() {
	case raw.Mapping:
		fv, fok := v.Get("From")
		tv, tok := v.Get("To")
		if !fok || fv.IsNull() {
			return "", ir.Transform{}, newError(ErrMissingField, "From", v, "identity From is required")
		}
		if !tok || tv.IsNull() {
			return "", ir.Transform{}, newError(ErrMissingField, "To", v, "identity To is required")
		}
		if from, err = r.endpoint(fv, inputSide); err != nil {
			return "", ir.Transform{}, err
		}
		if to, err = r.endpoint(tv, outputSide); err != nil {
			return "", ir.Transform{}, err
		}
	case raw.List:
		if v.Len() != 2 {
			return "", ir.Transform{}, newError(ErrUnrecognizedShape, KeyIdentities, v,
				"identity pair must have exactly two entries, got %d", v.Len())
		}
		items := v.Items()
		for _, item := range items {
			if item.Kind() != raw.String {
				return "", ir.Transform{}, newError(ErrUnrecognizedShape, KeyIdentities, v,
					"identity pair entries must be strings, got %s", item.Kind())
			}
		}
		if from, err = r.endpointShorthand(items[0], inputSide); err != nil {
			return "", ir.Transform{}, err
		}
		if to, err = r.endpointShorthand(items[1], outputSide); err != nil {
			return "", ir.Transform{}, err
		}
	default:
		return "", ir.Transform{}, newError(ErrUnrecognizedShape, KeyIdentities, v,
			"cannot interpret identity specification")
	}

	tf, err := ir.NewIdentityTransform(from, to)
	if err != nil {
		return "", ir.Transform{}, fromValidation(err, v)
	}
	return ir.IdentityHandle(from, to), tf, nil
}

// identityLabel names an identity whose handle could not be synthesized.
func identityLabel(i int) string {
	return fmt.Sprintf("%s[%d]", KeyIdentities, i)
}

// transform resolves one named transform {Inputs, Outputs, Steps}.
func (r *run) transform(spec raw.Value) (ir.Transform, error) {
	if spec.Kind() != raw.Mapping {
		return ir.Transform{}, newError(ErrUnrecognizedShape, KeyTransforms, spec,
			"cannot interpret transform specification")
	}
	inputs, err := r.endpoints(spec, inputSide)
	if err != nil {
		return ir.Transform{}, err
	}
	outputs, err := r.endpoints(spec, outputSide)
	if err != nil {
		return ir.Transform{}, err
	}
	steps, err := r.steps(spec)
	if err != nil {
		return ir.Transform{}, err
	}
	tf, err := ir.NewTransform(inputs, outputs, steps)
	if err != nil {
		return ir.Transform{}, fromValidation(err, spec)
	}
	return tf, nil
}
