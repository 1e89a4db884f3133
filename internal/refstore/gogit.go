package refstore

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"gitlab.com/gitlab-org/reftx/internal/git"
)

// GoGit is a RefStore reading references through go-git.
type GoGit struct {
	storer storer.ReferenceStorer
}

// NewGoGit returns a store reading from the given reference storer.
func NewGoGit(s storer.ReferenceStorer) *GoGit {
	return &GoGit{storer: s}
}

// OpenGoGit opens the repository at path, which may be bare.
func OpenGoGit(path string) (*GoGit, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open repository %q: %w", path, err)
	}

	return NewGoGit(repo.Storer), nil
}

// FindOneExisting returns the immediate target of the reference. Symbolic
// references are not resolved.
func (g *GoGit) FindOneExisting(_ context.Context, name git.ReferenceName) (git.Target, error) {
	ref, err := g.storer.Reference(plumbing.ReferenceName(name))
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, fmt.Errorf("%w: %q", git.ErrReferenceNotFound, name)
		}
		return nil, err
	}

	switch ref.Type() {
	case plumbing.HashReference:
		return git.NewPeeledTarget(git.ObjectID(ref.Hash().String())), nil
	case plumbing.SymbolicReference:
		return git.NewSymbolicTarget(git.ReferenceName(ref.Target())), nil
	default:
		return nil, fmt.Errorf("reference %q has invalid type %s", name, ref.Type())
	}
}
