package migrations

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAll(t *testing.T) {
	migrations := All()
	require.NotEmpty(t, migrations)

	ids := make([]string, len(migrations))
	seen := make(map[string]struct{}, len(migrations))
	for i, m := range migrations {
		require.NotEmpty(t, m.Up, m.Id)
		require.NotEmpty(t, m.Down, m.Id)

		_, duplicate := seen[m.Id]
		require.False(t, duplicate, m.Id)
		seen[m.Id] = struct{}{}

		ids[i] = m.Id
	}

	require.True(t, sort.StringsAreSorted(ids), "migrations must be registered in order")
}
