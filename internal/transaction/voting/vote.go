// Package voting computes votes over prepared reference transactions. Nodes
// which prepared the same edits from the same reference values produce the
// same update-ref stream and thus cast the same vote.
package voting

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"hash"

	"gitlab.com/gitlab-org/reftx/internal/git/reftx"
	"gitlab.com/gitlab-org/reftx/internal/git/updateref"
)

const voteSize = sha1.Size

// Vote is the SHA-1 of an update-ref command stream.
type Vote [voteSize]byte

// Bytes returns a byte slice containing the hash.
func (v Vote) Bytes() []byte {
	return v[:]
}

// String returns the hex representation of the vote hash.
func (v Vote) String() string {
	return hex.EncodeToString(v[:])
}

// VoteFromHash converts the given byte slice containing a hash into a vote.
func VoteFromHash(bytes []byte) (Vote, error) {
	if len(bytes) != voteSize {
		return Vote{}, fmt.Errorf("invalid vote length %d", len(bytes))
	}

	var vote Vote
	copy(vote[:], bytes)

	return vote, nil
}

// VoteFromString parses the hex representation of a vote.
func VoteFromString(s string) (Vote, error) {
	bytes, err := hex.DecodeString(s)
	if err != nil {
		return Vote{}, fmt.Errorf("invalid vote string: %w", err)
	}

	return VoteFromHash(bytes)
}

// VoteFromData hashes the given data and converts it to a vote.
func VoteFromData(data []byte) Vote {
	return sha1.Sum(data)
}

// VoteFromEdits encodes the prepared edits as a committed update-ref stream
// and returns the vote over it.
func VoteFromEdits(edits reftx.RefEdits) (Vote, error) {
	hash := NewVoteHash()

	updater, err := updateref.New(hash)
	if err != nil {
		return Vote{}, err
	}
	if err := updater.Write(edits); err != nil {
		return Vote{}, fmt.Errorf("encode edits: %w", err)
	}
	if err := updater.Commit(); err != nil {
		return Vote{}, err
	}

	return hash.Vote()
}

// VoteHash computes a Vote from everything written into it. Tee the
// update-ref stream into it to vote on exactly what is being committed.
type VoteHash struct {
	hash.Hash
}

// NewVoteHash returns a new VoteHash.
func NewVoteHash() VoteHash {
	return VoteHash{sha1.New()}
}

// Vote returns the vote over all data written so far.
func (v VoteHash) Vote() (Vote, error) {
	return VoteFromHash(v.Sum(nil))
}
