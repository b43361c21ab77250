package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed record identity.
// Version suffix enables future algorithm migration.
const (
	DomainNode      = "transmute/node/v1"
	DomainProperty  = "transmute/property/v1"
	DomainStep      = "transmute/step/v1"
	DomainTransform = "transmute/transform/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte keeps domain and data from running into each other.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RecordID computes a stable ID for a record from its identifying parts.
// Parts are hashed as a canonical JSON array, so ("a", "bc") and ("ab", "c")
// never collide.
func RecordID(domain string, parts ...any) (string, error) {
	canonical, err := MarshalCanonical(parts)
	if err != nil {
		return "", fmt.Errorf("RecordID: failed to marshal: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}

// MustRecordID is like RecordID but panics on error.
// Use only when parts are known to be plain strings and numbers.
func MustRecordID(domain string, parts ...any) string {
	id, err := RecordID(domain, parts...)
	if err != nil {
		panic(err)
	}
	return id
}

// TransformHash identifies a transform by content, independent of handle.
func TransformHash(tf Transform) (string, error) {
	canonical, err := MarshalCanonical(transformObject(tf))
	if err != nil {
		return "", fmt.Errorf("TransformHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTransform, canonical), nil
}

func transformObject(tf Transform) map[string]any {
	endpoints := func(specs []IOSpec) []any {
		out := make([]any, len(specs))
		for i, s := range specs {
			out[i] = map[string]any{
				"model":   s.Model,
				"version": s.Version,
				"node":    s.Node,
				"props":   s.Props,
			}
		}
		return out
	}
	steps := make([]any, len(tf.Steps))
	for i, s := range tf.Steps {
		step := map[string]any{
			"package":    s.Package.Name,
			"version":    s.Package.Version,
			"entrypoint": s.Entrypoint,
		}
		if s.Params != nil {
			step["params"] = s.Params
		}
		steps[i] = step
	}
	return map[string]any{
		"kind":    string(tf.Kind),
		"inputs":  endpoints(tf.Inputs),
		"outputs": endpoints(tf.Outputs),
		"steps":   steps,
	}
}
