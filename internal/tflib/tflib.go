// Package tflib is the built-in step function library, published under the
// package name bento_transforms.
//
// Functions take their data as positional arguments and their settings as
// Params, which are decoded into typed structs carrying the defaults.
package tflib

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/roach88/transmute/internal/pipeline"
)

// Package is the package name steps use to address this library.
const Package = "bento_transforms"

type entry struct {
	module string
	name   string
	fn     pipeline.Function
}

func entries() []entry {
	return []entry{
		{"string", "split", pipeline.MultipleFunc(split)},
		{"string", "extract_middle_name", pipeline.SingleFunc(extractMiddleName)},
		{"string", "strip_pattern", pipeline.SingleFunc(stripPattern)},
		{"string", "normalize_case", pipeline.SingleFunc(normalizeCase)},
		{"string", "add_prefix", pipeline.SingleFunc(addPrefix)},
		{"string", "concat_fields", pipeline.SingleFunc(concatFields)},
		{"arith", "days_to_years", pipeline.SingleFunc(daysToYears)},
		{"arith", "years_to_days", pipeline.SingleFunc(yearsToDays)},
		{"lookup", "race_ccdi_to_cds", pipeline.SingleFunc(raceCCDIToCDS)},
		{"lookup", "race_cds_to_ccdi", pipeline.SingleFunc(raceCDSToCCDI)},
		{"ids", "generate_uuid", pipeline.SingleFunc(generateUUID)},
	}
}

// Register adds every library function to r. Functions r already holds
// under the same path and name are left in place.
func Register(r *pipeline.Registry) error {
	for _, e := range entries() {
		path := Package + "." + e.module
		if r.Has(path, e.name) {
			continue
		}
		if err := r.Register(path, e.name, e.fn); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the library.
func NewRegistry() *pipeline.Registry {
	r := pipeline.NewRegistry()
	if err := Register(r); err != nil {
		panic(err)
	}
	return r
}

// decodeParams overlays params onto dst, which already holds the
// defaults. Unknown keys are ignored.
func decodeParams(fn string, params any, dst any) error {
	if params == nil {
		return nil
	}
	if _, ok := params.(map[string]any); !ok {
		return fmt.Errorf("%s: params must be a mapping, got %T", fn, params)
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
		Result:           dst,
	})
	if err != nil {
		return fmt.Errorf("%s: failed to create decoder: %w", fn, err)
	}
	if err := decoder.Decode(params); err != nil {
		return fmt.Errorf("%s: invalid params: %w", fn, err)
	}
	return nil
}

// one returns the single argument of a one-input function.
func one(fn string, args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s takes exactly one argument, got %d", fn, len(args))
	}
	return args[0], nil
}

// flatten accepts either several positional values or one sequence.
func flatten(args []any) []any {
	if len(args) == 1 {
		switch s := args[0].(type) {
		case []any:
			return s
		case []string:
			out := make([]any, len(s))
			for i, v := range s {
				out[i] = v
			}
			return out
		}
	}
	return args
}
