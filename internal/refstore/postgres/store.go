package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gitlab.com/gitlab-org/reftx/internal/git"
)

// Store reads and writes the references of a single repository from the
// refs table. A row holds either an object ID or the name of the reference
// it points to.
type Store struct {
	db         *sql.DB
	repository string
}

// NewStore returns a store for the references of repository.
func NewStore(db *sql.DB, repository string) *Store {
	return &Store{db: db, repository: repository}
}

// FindOneExisting returns the immediate target of the reference.
func (s *Store) FindOneExisting(ctx context.Context, name git.ReferenceName) (git.Target, error) {
	var oid, symref sql.NullString
	if err := s.db.QueryRowContext(ctx, `
SELECT oid, symref
FROM refs
WHERE repository = $1 AND name = $2
`, s.repository, name.String()).Scan(&oid, &symref); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", git.ErrReferenceNotFound, name)
		}
		return nil, fmt.Errorf("query: %w", err)
	}

	switch {
	case symref.Valid:
		return git.NewSymbolicTarget(git.ReferenceName(symref.String)), nil
	case oid.Valid:
		objectID, err := git.NewObjectIDFromHex(oid.String)
		if err != nil {
			return nil, fmt.Errorf("reference %q: %w", name, err)
		}
		return git.NewPeeledTarget(objectID), nil
	default:
		return nil, fmt.Errorf("reference %q has no target", name)
	}
}

// SetReference creates or overwrites the reference.
func (s *Store) SetReference(ctx context.Context, ref git.Reference) error {
	var oid, symref sql.NullString
	switch target := ref.Target.(type) {
	case git.PeeledTarget:
		oid = sql.NullString{String: target.OID.String(), Valid: true}
	case git.SymbolicTarget:
		symref = sql.NullString{String: target.Name.String(), Valid: true}
	default:
		panic(fmt.Sprintf("unknown target %T", ref.Target))
	}

	if _, err := s.db.ExecContext(ctx, `
INSERT INTO refs (repository, name, oid, symref)
VALUES ($1, $2, $3, $4)
ON CONFLICT (repository, name) DO UPDATE SET
	oid = EXCLUDED.oid,
	symref = EXCLUDED.symref
`, s.repository, ref.Name.String(), oid, symref); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}

	return nil
}

// DeleteReference removes the reference. It returns an error matching
// git.ErrReferenceNotFound if the reference does not exist.
func (s *Store) DeleteReference(ctx context.Context, name git.ReferenceName) error {
	result, err := s.db.ExecContext(ctx, `
DELETE FROM refs
WHERE repository = $1 AND name = $2
`, s.repository, name.String())
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	if rowsAffected, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("rows affected: %w", err)
	} else if rowsAffected == 0 {
		return fmt.Errorf("%w: %q", git.ErrReferenceNotFound, name)
	}

	return nil
}
