//go:build static && system_libgit2
// +build static,system_libgit2

package refstore

import (
	"context"
	"fmt"
	"sync"

	git2go "github.com/libgit2/git2go/v31"
	"gitlab.com/gitlab-org/reftx/internal/git"
)

// Libgit2Available tells whether the binary was built with libgit2 support.
const Libgit2Available = true

// Libgit2 is a RefStore reading references through libgit2.
type Libgit2 struct {
	mu   sync.Mutex
	repo *git2go.Repository
}

// OpenLibgit2 opens the repository at path. The store must be closed after
// use to release the repository.
func OpenLibgit2(path string) (*Libgit2, error) {
	repo, err := git2go.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("open repository %q: %w", path, err)
	}

	return &Libgit2{repo: repo}, nil
}

// FindOneExisting returns the immediate target of the reference. Symbolic
// references are not resolved.
func (l *Libgit2) FindOneExisting(_ context.Context, name git.ReferenceName) (git.Target, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ref, err := l.repo.References.Lookup(name.String())
	if err != nil {
		if git2go.IsErrorCode(err, git2go.ErrorCodeNotFound) {
			return nil, fmt.Errorf("%w: %q", git.ErrReferenceNotFound, name)
		}
		return nil, fmt.Errorf("lookup reference %q: %w", name, err)
	}
	defer ref.Free()

	switch ref.Type() {
	case git2go.ReferenceOid:
		return git.NewPeeledTarget(git.ObjectID(ref.Target().String())), nil
	case git2go.ReferenceSymbolic:
		return git.NewSymbolicTarget(git.ReferenceName(ref.SymbolicTarget())), nil
	default:
		return nil, fmt.Errorf("reference %q has invalid type %d", name, ref.Type())
	}
}

// Close releases the repository.
func (l *Libgit2) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.repo.Free()
	return nil
}
