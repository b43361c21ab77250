package normalize

import (
	"github.com/roach88/transmute/internal/ir"
	"github.com/roach88/transmute/internal/raw"
)

// step resolves one raw step: a mapping {Package?, Entrypoint, Params?}
// or a bare entrypoint string using the default package.
func (r *run) step(v raw.Value) (ir.TfStepSpec, error) {
	switch v.Kind() {
	case raw.String:
		if r.defaults.Package == nil {
			return ir.TfStepSpec{}, newError(ErrMissingDefaults, "Package", v,
				"Simple step entrypoint format also requires setting the default package in Defaults")
		}
		entry, _ := v.Str()
		return r.newStep(*r.defaults.Package, entry, nil, v)
	case raw.Mapping:
		var pkg ir.PackageSpec
		if pv, ok := v.Get("Package"); ok && !pv.IsNull() {
			p, err := parsePackage(pv)
			if err != nil {
				return ir.TfStepSpec{}, err
			}
			pkg = p
		} else {
			if r.defaults.Package == nil {
				return ir.TfStepSpec{}, newError(ErrMissingDefaults, "Package", v,
					"Package is not defined, with no default")
			}
			pkg = *r.defaults.Package
		}
		entry, err := optionalString(v, "Entrypoint")
		if err != nil {
			return ir.TfStepSpec{}, err
		}
		if entry == "" {
			return ir.TfStepSpec{}, newError(ErrMissingField, "Entrypoint", v,
				"Entrypoint is required")
		}
		var params any
		if pv, ok := v.Get("Params"); ok {
			params = pv.Interface()
		}
		return r.newStep(pkg, entry, params, v)
	}
	return ir.TfStepSpec{}, newError(ErrUnrecognizedShape, "Steps", v,
		"cannot interpret transform step specification")
}

func (r *run) newStep(pkg ir.PackageSpec, entry string, params any, v raw.Value) (ir.TfStepSpec, error) {
	// Hyphens are normalized wherever a PackageSpec is built; defaults
	// arriving from outside may not have gone through NewPackageSpec.
	pkg, err := ir.NewPackageSpec(pkg.Name, pkg.Version)
	if err != nil {
		return ir.TfStepSpec{}, fromValidation(err, v)
	}
	st, err := ir.NewStep(pkg, entry, params)
	if err != nil {
		return ir.TfStepSpec{}, fromValidation(err, v)
	}
	return st, nil
}

func (r *run) steps(spec raw.Value) ([]ir.TfStepSpec, error) {
	v, ok := spec.Get("Steps")
	if !ok || v.IsNull() {
		return nil, newError(ErrMissingField, "Steps", spec, "Steps value is required")
	}
	if v.Kind() != raw.List {
		return nil, newError(ErrUnrecognizedShape, "Steps", v, "Steps must be a list")
	}
	if v.Len() == 0 {
		return nil, newError(ErrMissingField, "Steps", v, "Steps must not be empty")
	}
	out := make([]ir.TfStepSpec, 0, v.Len())
	for _, item := range v.Items() {
		st, err := r.step(item)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}
