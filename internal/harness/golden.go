package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/transmute/internal/graph"
)

// GoldenDir holds golden graph snapshots, relative to the test's package.
const GoldenDir = "testdata/golden"

// RunWithGolden runs the scenario, then compares the exported graph of
// every transform its cases exercise against
// testdata/golden/{scenario}.{handle}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	h, err := New(scenario)
	if err != nil {
		return nil, err
	}
	result := NewResult()
	for i, c := range scenario.Cases {
		result.AddCase(h.RunCase(i, c))
	}

	seen := make(map[string]bool)
	for _, c := range scenario.Cases {
		if seen[c.Transform] {
			continue
		}
		seen[c.Transform] = true
		tf, ok := h.set.Get(c.Transform)
		if !ok {
			continue
		}
		g, err := graph.Export(c.Transform, tf)
		if err != nil {
			return nil, err
		}
		if err := AssertGolden(t, scenario.Name+"."+c.Transform, g); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// AssertGolden compares the snapshot of g with testdata/golden/{name}.golden.
func AssertGolden(t *testing.T, name string, g *graph.Graph) error {
	t.Helper()

	snapshot, err := g.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", name, err)
	}
	gd := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	gd.Assert(t, name, snapshot)
	return nil
}
