package refstore

import (
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/require"
	"gitlab.com/gitlab-org/reftx/internal/git"
	"gitlab.com/gitlab-org/reftx/internal/git/reftx"
	"gitlab.com/gitlab-org/reftx/internal/testhelper"
)

func setGoGitReferences(t *testing.T, s interface {
	SetReference(*plumbing.Reference) error
}, refs []git.Reference) {
	t.Helper()

	for _, ref := range refs {
		var r *plumbing.Reference
		switch target := ref.Target.(type) {
		case git.PeeledTarget:
			r = plumbing.NewHashReference(plumbing.ReferenceName(ref.Name), plumbing.NewHash(target.OID.String()))
		case git.SymbolicTarget:
			r = plumbing.NewSymbolicReference(plumbing.ReferenceName(ref.Name), plumbing.ReferenceName(target.Name))
		}
		require.NoError(t, s.SetReference(r))
	}
}

func TestGoGit_FindOneExisting(t *testing.T) {
	ctx, cancel := testhelper.Context()
	defer cancel()

	storage := memory.NewStorage()
	setGoGitReferences(t, storage, testRefs())
	store := NewGoGit(storage)

	target, err := store.FindOneExisting(ctx, "refs/heads/main")
	require.NoError(t, err)
	require.Equal(t, git.NewPeeledTarget(mainOID), target)

	target, err = store.FindOneExisting(ctx, "HEAD")
	require.NoError(t, err)
	require.Equal(t, git.NewSymbolicTarget("refs/heads/main"), target)

	_, err = store.FindOneExisting(ctx, "refs/heads/missing")
	require.ErrorIs(t, err, git.ErrReferenceNotFound)
}

func TestOpenGoGit(t *testing.T) {
	ctx, cancel := testhelper.Context()
	defer cancel()

	repoPath := t.TempDir()
	repo, err := gogit.PlainInit(repoPath, true)
	require.NoError(t, err)
	setGoGitReferences(t, repo.Storer, []git.Reference{
		git.NewReference("refs/heads/main", mainOID),
	})

	store, err := OpenGoGit(repoPath)
	require.NoError(t, err)

	// A freshly initialized repository has HEAD pointing to an unborn branch.
	head, err := store.FindOneExisting(ctx, "HEAD")
	require.NoError(t, err)
	require.IsType(t, git.SymbolicTarget{}, head)

	target, err := store.FindOneExisting(ctx, "refs/heads/main")
	require.NoError(t, err)
	require.Equal(t, git.NewPeeledTarget(mainOID), target)
}

func TestOpenGoGit_missingRepository(t *testing.T) {
	_, err := OpenGoGit(t.TempDir())
	require.ErrorIs(t, err, gogit.ErrRepositoryNotExists)
}

func TestGoGit_prepare(t *testing.T) {
	ctx, cancel := testhelper.Context()
	defer cancel()

	storage := memory.NewStorage()
	setGoGitReferences(t, storage, testRefs())

	preparer := reftx.NewPreparer(NewGoGit(storage))
	prepared, err := preparer.Prepare(ctx, reftx.RefEdits{
		{
			Name: "refs/heads/alias",
			Change: reftx.Update{
				New:   git.NewPeeledTarget(featureOID),
				Log:   reftx.LogChange{Message: "push"},
				Deref: true,
			},
		},
	}, func(edit reftx.RefEdit) string {
		return "push via " + edit.Name.String()
	})
	require.NoError(t, err)

	require.Equal(t, reftx.RefEdits{
		{
			Name: "refs/heads/alias",
			Change: reftx.Update{
				New: git.NewPeeledTarget(featureOID),
				Log: reftx.LogChange{Mode: reftx.LogModeOnly, Message: "push"},
			},
		},
		{
			Name: "HEAD",
			Change: reftx.Update{
				New:   git.NewPeeledTarget(featureOID),
				Log:   reftx.LogChange{Mode: reftx.LogModeOnly, Message: "push via refs/heads/alias"},
				Deref: true,
			},
		},
		{
			Name: "refs/heads/main",
			Change: reftx.Update{
				New: git.NewPeeledTarget(featureOID),
				Log: reftx.LogChange{Message: "push via refs/heads/alias"},
			},
		},
	}, prepared)
}
