package store

import (
	"context"
	"fmt"
)

// Head returns the latest revision of path.
func (s *Store) Head(ctx context.Context, path string) (Revision, bool, error) {
	rev, ok, err := headTx(ctx, s.db, path)
	if err != nil {
		return Revision{}, false, fmt.Errorf("read head: %w", err)
	}
	return rev, ok, nil
}

// History returns every revision of path, oldest first.
func (s *Store) History(ctx context.Context, path string) ([]Revision, error) {
	return s.query(ctx, "history", `
		SELECT id, path, seq, content_hash, parent_hash, operation, canonical
		FROM revisions
		WHERE path = ?
		ORDER BY seq ASC, id ASC COLLATE BINARY
	`, path)
}

// FindByHash returns every revision whose content hash is hash, across
// all paths.
func (s *Store) FindByHash(ctx context.Context, hash string) ([]Revision, error) {
	return s.query(ctx, "find by hash", `
		SELECT id, path, seq, content_hash, parent_hash, operation, canonical
		FROM revisions
		WHERE content_hash = ?
		ORDER BY path ASC, seq ASC, id ASC COLLATE BINARY
	`, hash)
}

// Paths returns every path with at least one revision.
func (s *Store) Paths(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM documents ORDER BY path ASC`)
	if err != nil {
		return nil, fmt.Errorf("list paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("list paths: %w", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list paths: %w", err)
	}
	return paths, nil
}

func (s *Store) query(ctx context.Context, op, query string, args ...any) ([]Revision, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		revs = append(revs, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return revs, nil
}
