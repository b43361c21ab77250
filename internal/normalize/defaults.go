package normalize

import (
	"fmt"

	"dario.cat/mergo"

	"github.com/roach88/transmute/internal/ir"
	"github.com/roach88/transmute/internal/raw"
)

// ParseDefaults reads a Defaults mapping: {Inputs?, Outputs?, Package?}.
// Package is either "name@version" or {Name, Version?}.
func ParseDefaults(v raw.Value) (ir.Defaults, error) {
	var d ir.Defaults
	if v.IsNull() {
		return d, nil
	}
	if v.Kind() != raw.Mapping {
		return d, newError(ErrUnrecognizedShape, KeyDefaults, v, "%s must be a mapping", KeyDefaults)
	}

	for _, side := range []struct {
		key string
		dst **ir.EntityDefaults
	}{
		{"Inputs", &d.Inputs},
		{"Outputs", &d.Outputs},
	} {
		sv, ok := v.Get(side.key)
		if !ok || sv.IsNull() {
			continue
		}
		ed, err := parseEntityDefaults(side.key, sv)
		if err != nil {
			return ir.Defaults{}, err
		}
		*side.dst = ed
	}

	if pv, ok := v.Get("Package"); ok && !pv.IsNull() {
		pkg, err := parsePackage(pv)
		if err != nil {
			return ir.Defaults{}, err
		}
		d.Package = &pkg
	}
	return d, nil
}

func parseEntityDefaults(side string, v raw.Value) (*ir.EntityDefaults, error) {
	if v.Kind() != raw.Mapping {
		return nil, newError(ErrUnrecognizedShape, "Defaults."+side, v,
			"cannot interpret default entity specification")
	}
	var ed ir.EntityDefaults
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"Model", &ed.Model},
		{"Version", &ed.Version},
		{"Node", &ed.Node},
	} {
		s, err := optionalString(v, f.key)
		if err != nil {
			return nil, err
		}
		*f.dst = s
	}
	return &ed, nil
}

// parsePackage accepts "name@version" or {Name, Version?}.
func parsePackage(v raw.Value) (ir.PackageSpec, error) {
	switch v.Kind() {
	case raw.String:
		s, _ := v.Str()
		pkg, err := ir.ParsePackage(s)
		if err != nil {
			return ir.PackageSpec{}, &Error{
				Field:    "Package",
				Message:  fmt.Sprintf("cannot interpret package specification %q, expected name@version", s),
				Fragment: v.String(),
				Line:     v.Line(),
				Column:   v.Column(),
				Err:      ErrMalformedShorthand,
			}
		}
		return pkg, nil
	case raw.Mapping:
		name, err := optionalString(v, "Name")
		if err != nil {
			return ir.PackageSpec{}, err
		}
		if name == "" {
			return ir.PackageSpec{}, newError(ErrMissingField, "Package.Name", v,
				"package Name is required")
		}
		version, err := optionalString(v, "Version")
		if err != nil {
			return ir.PackageSpec{}, err
		}
		pkg, err := ir.NewPackageSpec(name, version)
		if err != nil {
			return ir.PackageSpec{}, fromValidation(err, v)
		}
		return pkg, nil
	}
	return ir.PackageSpec{}, newError(ErrUnrecognizedShape, "Package", v,
		"cannot interpret package specification")
}

// resolveDefaults merges the document's Defaults over the external bundle.
func (n *Normalizer) resolveDefaults(defs raw.Value) (ir.Defaults, error) {
	var doc ir.Defaults
	if v, ok := defs.Get(KeyDefaults); ok {
		parsed, err := ParseDefaults(v)
		if err != nil {
			return ir.Defaults{}, err
		}
		doc = parsed
	}
	return MergeDefaults(doc, n.external)
}

// MergeDefaults returns primary with every unset field filled from
// fallback. Neither argument is modified.
func MergeDefaults(primary, fallback ir.Defaults) (ir.Defaults, error) {
	var out ir.Defaults
	var err error
	if out.Inputs, err = mergeEntity(primary.Inputs, fallback.Inputs); err != nil {
		return ir.Defaults{}, fmt.Errorf("merging input defaults: %w", err)
	}
	if out.Outputs, err = mergeEntity(primary.Outputs, fallback.Outputs); err != nil {
		return ir.Defaults{}, fmt.Errorf("merging output defaults: %w", err)
	}
	switch {
	case primary.Package != nil:
		pkg := *primary.Package
		out.Package = &pkg
	case fallback.Package != nil:
		pkg := *fallback.Package
		out.Package = &pkg
	}
	return out, nil
}

func mergeEntity(primary, fallback *ir.EntityDefaults) (*ir.EntityDefaults, error) {
	switch {
	case primary == nil && fallback == nil:
		return nil, nil
	case primary == nil:
		cp := *fallback
		return &cp, nil
	case fallback == nil:
		cp := *primary
		return &cp, nil
	}
	merged := *primary
	if err := mergo.Merge(&merged, *fallback); err != nil {
		return nil, err
	}
	return &merged, nil
}

// optionalString reads key from a mapping. Absent and null both yield "".
// Numeric scalars are read by their literal text.
func optionalString(v raw.Value, key string) (string, error) {
	item, ok := v.Get(key)
	if !ok || item.IsNull() {
		return "", nil
	}
	s, ok := item.Text()
	if !ok {
		return "", newError(ErrUnrecognizedShape, key, v, "%s must be a string, got %s", key, item.Kind())
	}
	return s, nil
}
