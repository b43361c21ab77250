package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/transmute/internal/graph"
	"github.com/roach88/transmute/internal/ir"
)

// SaveGraph writes every record of g in one transaction. Shared nodes and
// properties are inserted once (ON CONFLICT DO NOTHING); the transform's
// property links and step chain replace any previously saved under the
// same handle.
func (s *Store) SaveGraph(ctx context.Context, g *graph.Graph) error {
	if g == nil || g.Transform == nil {
		return fmt.Errorf("save graph: no transform")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save graph: begin: %w", err)
	}
	defer tx.Rollback()

	if err := writeEntities(ctx, tx, g); err != nil {
		return fmt.Errorf("save graph %s: %w", g.Transform.Handle, err)
	}
	if err := writeTransform(ctx, tx, g.Transform); err != nil {
		return fmt.Errorf("save graph %s: %w", g.Transform.Handle, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save graph %s: commit: %w", g.Transform.Handle, err)
	}
	return nil
}

func writeEntities(ctx context.Context, tx *sql.Tx, g *graph.Graph) error {
	for _, p := range g.Properties {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO properties (id, handle, model, version)
			VALUES (?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`, p.ID(), p.Handle, p.Model, p.Version)
		if err != nil {
			return fmt.Errorf("write property %s: %w", p.Handle, err)
		}
	}
	for _, n := range g.Nodes {
		nodeID := n.ID()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO nodes (id, handle, model, version)
			VALUES (?, ?, ?, ?)
			ON CONFLICT DO NOTHING
		`, nodeID, n.Handle, n.Model, n.Version)
		if err != nil {
			return fmt.Errorf("write node %s: %w", n.Handle, err)
		}
		for _, name := range ir.SortedKeys(n.Props) {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO node_properties (node_id, property_id)
				VALUES (?, ?)
				ON CONFLICT DO NOTHING
			`, nodeID, n.Props[name].ID())
			if err != nil {
				return fmt.Errorf("link %s.%s: %w", n.Handle, name, err)
			}
		}
	}
	return nil
}

// StepID is the stored identity of the step at position in a transform.
func StepID(handle string, position int) string {
	return ir.MustRecordID(ir.DomainStep, handle, position)
}

func writeTransform(ctx context.Context, tx *sql.Tx, tf *graph.Transform) error {
	steps := tf.Steps()
	var first, last sql.NullString
	if len(steps) > 0 {
		first = sql.NullString{String: StepID(tf.Handle, 0), Valid: true}
		last = sql.NullString{String: StepID(tf.Handle, len(steps)-1), Valid: true}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO transforms (handle, first_step_id, last_step_id)
		VALUES (?, ?, ?)
		ON CONFLICT(handle) DO UPDATE SET
			first_step_id = excluded.first_step_id,
			last_step_id = excluded.last_step_id
	`, tf.Handle, first, last)
	if err != nil {
		return fmt.Errorf("write transform: %w", err)
	}

	for _, stmt := range []string{
		`DELETE FROM transform_properties WHERE transform_handle = ?`,
		`DELETE FROM steps WHERE transform_handle = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, tf.Handle); err != nil {
			return fmt.Errorf("clear previous transform records: %w", err)
		}
	}

	for _, side := range []struct {
		direction string
		props     map[string]*graph.Property
	}{
		{"input", tf.InputProps},
		{"output", tf.OutputProps},
	} {
		for _, key := range ir.SortedKeys(side.props) {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO transform_properties (transform_handle, direction, key, property_id)
				VALUES (?, ?, ?, ?)
			`, tf.Handle, side.direction, key, side.props[key].ID())
			if err != nil {
				return fmt.Errorf("write %s property %s: %w", side.direction, key, err)
			}
		}
	}

	// Last to first, so each next_step_id already exists.
	for i := len(steps) - 1; i >= 0; i-- {
		st := steps[i]
		var next, version, params sql.NullString
		if st.Next != nil {
			next = sql.NullString{String: StepID(tf.Handle, i+1), Valid: true}
		}
		if st.Version != "" {
			version = sql.NullString{String: st.Version, Valid: true}
		}
		if st.Params != nil {
			params = sql.NullString{String: string(st.Params), Valid: true}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO steps (id, transform_handle, position, package, version, entrypoint, params, next_step_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, StepID(tf.Handle, i), tf.Handle, i, st.Package, version, st.Entrypoint, params, next)
		if err != nil {
			return fmt.Errorf("write step %d: %w", i, err)
		}
	}
	return nil
}
