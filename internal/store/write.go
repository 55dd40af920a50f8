package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/octave/internal/ast"
)

// Operations recorded in the ledger.
const (
	OpCreate = "create"
	OpAmend  = "amend"
)

// revisionNamespace scopes name-based revision UUIDs.
var revisionNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte(ast.DomainRevision))

// Revision is one recorded write of a document.
type Revision struct {
	ID          string `json:"id"`
	Path        string `json:"path"`
	Seq         int64  `json:"seq"`
	ContentHash string `json:"content_hash"`
	ParentHash  string `json:"parent_hash,omitempty"`
	Operation   string `json:"operation"`
	Canonical   string `json:"-"`
}

// RevisionID derives the deterministic ID of a revision.
func RevisionID(path string, seq int64, parentHash, contentHash string) (string, error) {
	digest, err := ast.RevisionDigest(path, seq, parentHash, contentHash)
	if err != nil {
		return "", err
	}
	return uuid.NewSHA1(revisionNamespace, []byte(digest)).String(), nil
}

// Record appends a revision for path. The parent is the current head.
// Recording the head's content again returns the head unchanged.
func (s *Store) Record(ctx context.Context, path, operation, canonical string) (Revision, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Revision{}, fmt.Errorf("record revision: %w", err)
	}
	defer tx.Rollback()

	contentHash := ast.ContentHash(canonical)
	head, ok, err := headTx(ctx, tx, path)
	if err != nil {
		return Revision{}, fmt.Errorf("record revision: %w", err)
	}
	if ok && head.ContentHash == contentHash {
		return head, nil
	}

	rev := Revision{
		Path:        path,
		Seq:         1,
		ContentHash: contentHash,
		Operation:   operation,
		Canonical:   canonical,
	}
	if ok {
		rev.Seq = head.Seq + 1
		rev.ParentHash = head.ContentHash
	}
	rev.ID, err = RevisionID(rev.Path, rev.Seq, rev.ParentHash, rev.ContentHash)
	if err != nil {
		return Revision{}, fmt.Errorf("record revision: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (path) VALUES (?)
		ON CONFLICT(path) DO NOTHING
	`, path); err != nil {
		return Revision{}, fmt.Errorf("record revision: %w", err)
	}

	// ON CONFLICT(id) DO NOTHING keeps replays of the same write idempotent.
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO revisions
		(id, path, seq, content_hash, parent_hash, operation, canonical)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rev.ID,
		rev.Path,
		rev.Seq,
		rev.ContentHash,
		rev.ParentHash,
		rev.Operation,
		rev.Canonical,
	); err != nil {
		return Revision{}, fmt.Errorf("record revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Revision{}, fmt.Errorf("record revision: %w", err)
	}
	return rev, nil
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func headTx(ctx context.Context, q rowQuerier, path string) (Revision, bool, error) {
	row := q.QueryRowContext(ctx, `
		SELECT id, path, seq, content_hash, parent_hash, operation, canonical
		FROM revisions
		WHERE path = ?
		ORDER BY seq DESC, id ASC COLLATE BINARY
		LIMIT 1
	`, path)
	rev, err := scanRevision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Revision{}, false, nil
	}
	if err != nil {
		return Revision{}, false, err
	}
	return rev, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRevision(row scanner) (Revision, error) {
	var rev Revision
	err := row.Scan(&rev.ID, &rev.Path, &rev.Seq, &rev.ContentHash, &rev.ParentHash, &rev.Operation, &rev.Canonical)
	return rev, err
}
