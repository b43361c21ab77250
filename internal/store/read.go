package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a transform handle is not stored.
var ErrNotFound = errors.New("not found")

// StoredStep is one step row as persisted.
type StoredStep struct {
	ID         string
	Package    string
	Version    string
	Entrypoint string
	Params     []byte
	NextID     string
}

// TransformHandles lists stored transform handles, sorted.
func (s *Store) TransformHandles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT handle FROM transforms ORDER BY handle COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list transforms: %w", err)
	}
	defer rows.Close()

	var handles []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scan transform: %w", err)
		}
		handles = append(handles, h)
	}
	return handles, rows.Err()
}

// StepChain walks a stored transform's steps from first_step_id through
// next_step_id.
func (s *Store) StepChain(ctx context.Context, handle string) ([]StoredStep, error) {
	var first sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT first_step_id FROM transforms WHERE handle = ?`, handle,
	).Scan(&first)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transform %q: %w", handle, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read transform %q: %w", handle, err)
	}

	var chain []StoredStep
	for id := first; id.Valid; {
		var st StoredStep
		var version, params, next sql.NullString
		err := s.db.QueryRowContext(ctx, `
			SELECT id, package, version, entrypoint, params, next_step_id
			FROM steps WHERE id = ?
		`, id.String).Scan(&st.ID, &st.Package, &version, &st.Entrypoint, &params, &next)
		if err != nil {
			return nil, fmt.Errorf("read step %s: %w", id.String, err)
		}
		st.Version = version.String
		if params.Valid {
			st.Params = []byte(params.String)
		}
		st.NextID = next.String
		chain = append(chain, st)
		id = next
	}
	return chain, nil
}
