// Package ir provides the canonical transform model for transmute.
//
// This package contains value types only. Every other internal package
// imports ir; ir imports nothing internal. Instances are built once by the
// normalizer (or by a caller through the constructors for ad hoc identity
// transforms) and are read-only afterwards.
//
// Key design constraints:
//   - Every IOSpec field is resolved when the value is constructed
//   - Props and Steps are never empty
//   - Package names are symbol-safe (hyphens become underscores)
//   - All JSON tags use snake_case
package ir
