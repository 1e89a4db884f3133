package updateref

import (
	"context"
	"fmt"

	"gitlab.com/gitlab-org/reftx/internal/git"
)

type stubStore map[git.ReferenceName]git.Target

func (s stubStore) FindOneExisting(_ context.Context, name git.ReferenceName) (git.Target, error) {
	target, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", git.ErrReferenceNotFound, name)
	}
	return target, nil
}
