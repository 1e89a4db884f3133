package voting

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/gitlab-org/reftx/internal/git"
	"gitlab.com/gitlab-org/reftx/internal/git/reftx"
	"gitlab.com/gitlab-org/reftx/internal/git/updateref"
)

func TestVoteFromHash(t *testing.T) {
	_, err := VoteFromHash([]byte{})
	require.Error(t, err)

	_, err = VoteFromHash(bytes.Repeat([]byte{1}, voteSize-1))
	require.Equal(t, fmt.Errorf("invalid vote length %d", 19), err)

	_, err = VoteFromHash(bytes.Repeat([]byte{1}, voteSize+1))
	require.Equal(t, fmt.Errorf("invalid vote length %d", 21), err)

	vote, err := VoteFromHash(bytes.Repeat([]byte{1}, voteSize))
	require.NoError(t, err)
	require.Equal(t, bytes.Repeat([]byte{1}, voteSize), vote.Bytes())
}

func TestVoteFromString(t *testing.T) {
	_, err := VoteFromString("")
	require.Equal(t, fmt.Errorf("invalid vote length 0"), err)

	_, err = VoteFromString("x")
	require.Error(t, err)
	var invalidByteError hex.InvalidByteError
	require.True(t, errors.As(err, &invalidByteError))
	require.Equal(t, hex.InvalidByteError('x'), invalidByteError)

	_, err = VoteFromString("1234")
	require.Equal(t, fmt.Errorf("invalid vote length 2"), err)

	_, err = VoteFromString(strings.Repeat("1", (voteSize+1)*2))
	require.Equal(t, fmt.Errorf("invalid vote length 21"), err)

	vote, err := VoteFromString(strings.Repeat("1", voteSize*2))
	require.Equal(t, Vote{
		0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11,
		0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11, 0x11,
	}, vote)
	require.NoError(t, err)
}

func TestVoteFromData(t *testing.T) {
	require.Equal(t, Vote{
		0xda, 0x39, 0xa3, 0xee, 0x5e, 0x6b, 0x4b, 0x0d, 0x32, 0x55,
		0xbf, 0xef, 0x95, 0x60, 0x18, 0x90, 0xaf, 0xd8, 0x07, 0x09,
	}, VoteFromData([]byte{}))

	require.Equal(t, Vote{
		0x88, 0x43, 0xd7, 0xf9, 0x24, 0x16, 0x21, 0x1d, 0xe9, 0xeb,
		0xb9, 0x63, 0xff, 0x4c, 0xe2, 0x81, 0x25, 0x93, 0x28, 0x78,
	}, VoteFromData([]byte("foobar")))
}

func TestVoteHash(t *testing.T) {
	hash := NewVoteHash()

	vote, err := hash.Vote()
	require.NoError(t, err)
	require.Equal(t, VoteFromData([]byte{}), vote)

	_, err = hash.Write([]byte("foo"))
	require.NoError(t, err)
	vote, err = hash.Vote()
	require.NoError(t, err)
	require.Equal(t, VoteFromData([]byte("foo")), vote)

	_, err = hash.Write([]byte("bar"))
	require.NoError(t, err)

	vote, err = hash.Vote()
	require.NoError(t, err)
	require.Equal(t, VoteFromData([]byte("foobar")), vote)
}

func TestVoteFromEdits(t *testing.T) {
	oid := git.ObjectID("1e292f8fedd741b75372e19097c76d327140c312")
	edits := reftx.RefEdits{
		{Name: "refs/heads/main", Change: reftx.Update{New: git.NewPeeledTarget(oid)}},
		{Name: "refs/heads/feature", Change: reftx.Delete{}},
	}

	vote, err := VoteFromEdits(edits)
	require.NoError(t, err)

	var stream bytes.Buffer
	updater, err := updateref.New(&stream)
	require.NoError(t, err)
	require.NoError(t, updater.Write(edits))
	require.NoError(t, updater.Commit())
	require.Equal(t, VoteFromData(stream.Bytes()), vote)

	t.Run("log-only edits do not change the vote", func(t *testing.T) {
		withLogOnly := append(reftx.RefEdits{
			{Name: "HEAD", Change: reftx.Update{
				New: git.NewPeeledTarget(oid),
				Log: reftx.LogChange{Mode: reftx.LogModeOnly, Message: "via HEAD"},
			}},
		}, edits...)

		otherVote, err := VoteFromEdits(withLogOnly)
		require.NoError(t, err)
		require.Equal(t, vote, otherVote)
	})

	t.Run("order matters", func(t *testing.T) {
		reordered := reftx.RefEdits{edits[1], edits[0]}

		otherVote, err := VoteFromEdits(reordered)
		require.NoError(t, err)
		require.NotEqual(t, vote, otherVote)
	})

	t.Run("unencodable edits", func(t *testing.T) {
		_, err := VoteFromEdits(reftx.RefEdits{
			{Name: "refs/heads/main", Change: reftx.Update{
				New:      git.NewPeeledTarget(oid),
				Expected: git.NewSymbolicTarget("refs/heads/other"),
			}},
		})
		require.True(t, errors.Is(err, updateref.ErrSymbolicPrecondition))
	})
}

func TestPhase_String(t *testing.T) {
	require.Equal(t, "unknown", UnknownPhase.String())
	require.Equal(t, "prepared", Prepared.String())
	require.Equal(t, "committed", Committed.String())
	require.Panics(t, func() { _ = Phase(42).String() })
}
