//go:build !static || !system_libgit2
// +build !static !system_libgit2

package refstore

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/gitlab-org/reftx/internal/testhelper"
)

func TestLibgit2_unavailable(t *testing.T) {
	ctx, cancel := testhelper.Context()
	defer cancel()

	require.False(t, Libgit2Available)

	_, err := OpenLibgit2(t.TempDir())
	require.Equal(t, errLibgit2Unavailable, err)

	_, err = (&Libgit2{}).FindOneExisting(ctx, "HEAD")
	require.Equal(t, errLibgit2Unavailable, err)
}
