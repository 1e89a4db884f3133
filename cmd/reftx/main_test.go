package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/gitlab-org/reftx/internal/config"
	"gitlab.com/gitlab-org/reftx/internal/git/reftx"
	"gitlab.com/gitlab-org/reftx/internal/testhelper"
)

func TestMain(m *testing.M) {
	testhelper.Run(m)
}

func TestInitConfig(t *testing.T) {
	t.Run("without config file", func(t *testing.T) {
		conf, err := initConfig("")
		require.NoError(t, err)
		require.Equal(t, config.BackendMemory, conf.Store.Backend)
		require.Equal(t, reftx.DefaultMaxSymrefDepth, conf.Refs.MaxSymrefDepth)
	})

	t.Run("valid config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[refs]\nmax_symref_depth = 2\n"), 0644))

		conf, err := initConfig(path)
		require.NoError(t, err)
		require.Equal(t, 2, conf.Refs.MaxSymrefDepth)
	})

	t.Run("invalid config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[store]\nbackend = \"git\"\n"), 0644))

		_, err := initConfig(path)
		require.EqualError(t, err, "store.path must be set for the git and libgit2 backends")
	})

	t.Run("missing config file", func(t *testing.T) {
		_, err := initConfig(filepath.Join(t.TempDir(), "missing.toml"))
		require.Error(t, err)
		require.True(t, os.IsNotExist(errors.Unwrap(err)))
	})
}
