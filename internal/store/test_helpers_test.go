package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/transmute/internal/graph"
	"github.com/roach88/transmute/internal/ir"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestGraph exports a transform with the given step entrypoints.
func createTestGraph(t *testing.T, handle string, entrypoints ...string) *graph.Graph {
	t.Helper()
	pkg := ir.PackageSpec{Name: "bento_transforms", Version: "0.1.1"}
	steps := make([]ir.TfStepSpec, len(entrypoints))
	for i, e := range entrypoints {
		var params any
		if i == 0 {
			params = map[string]any{"delimiter": " "}
		}
		st, err := ir.NewStep(pkg, e, params)
		if err != nil {
			t.Fatalf("NewStep() failed: %v", err)
		}
		steps[i] = st
	}
	tf, err := ir.NewTransform(
		[]ir.IOSpec{ir.MustIOSpec("CDS", "6.0.2", "study_personnel", "personnel_name")},
		[]ir.IOSpec{ir.MustIOSpec("CCDI", "2.1.0", "investigator", "first_name", "middle_name", "last_name")},
		steps,
	)
	if err != nil {
		t.Fatalf("NewTransform() failed: %v", err)
	}
	g, err := graph.Export(handle, tf)
	if err != nil {
		t.Fatalf("Export() failed: %v", err)
	}
	return g
}

func countRows(t *testing.T, s *Store, table string) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
