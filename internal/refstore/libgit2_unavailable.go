//go:build !static || !system_libgit2
// +build !static !system_libgit2

package refstore

import (
	"context"
	"errors"

	"gitlab.com/gitlab-org/reftx/internal/git"
)

// Libgit2Available tells whether the binary was built with libgit2 support.
const Libgit2Available = false

var errLibgit2Unavailable = errors.New("built without libgit2 support, rebuild with tags static,system_libgit2")

// Libgit2 is a RefStore reading references through libgit2. Without libgit2
// support it cannot be opened.
type Libgit2 struct{}

// OpenLibgit2 always fails as the binary was built without libgit2.
func OpenLibgit2(string) (*Libgit2, error) {
	return nil, errLibgit2Unavailable
}

// FindOneExisting always fails as the binary was built without libgit2.
func (*Libgit2) FindOneExisting(context.Context, git.ReferenceName) (git.Target, error) {
	return nil, errLibgit2Unavailable
}

// Close does nothing.
func (*Libgit2) Close() error {
	return nil
}
