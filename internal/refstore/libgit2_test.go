//go:build static && system_libgit2
// +build static,system_libgit2

package refstore

import (
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"
	"gitlab.com/gitlab-org/reftx/internal/git"
	"gitlab.com/gitlab-org/reftx/internal/testhelper"
)

func TestLibgit2_FindOneExisting(t *testing.T) {
	ctx, cancel := testhelper.Context()
	defer cancel()

	repoPath := t.TempDir()
	repo, err := gogit.PlainInit(repoPath, true)
	require.NoError(t, err)
	setGoGitReferences(t, repo.Storer, testRefs())

	store, err := OpenLibgit2(repoPath)
	require.NoError(t, err)
	defer func() { require.NoError(t, store.Close()) }()

	target, err := store.FindOneExisting(ctx, "refs/heads/main")
	require.NoError(t, err)
	require.Equal(t, git.NewPeeledTarget(mainOID), target)

	target, err = store.FindOneExisting(ctx, "refs/heads/alias")
	require.NoError(t, err)
	require.Equal(t, git.NewSymbolicTarget("HEAD"), target)

	_, err = store.FindOneExisting(ctx, "refs/heads/missing")
	require.ErrorIs(t, err, git.ErrReferenceNotFound)
}
