package git

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ZeroOID is the object ID Git uses to state that a reference does not exist.
// Expecting it as the old value of an update asks for the reference to be
// created.
const ZeroOID = ObjectID("0000000000000000000000000000000000000000")

// symbolicTargetPrefix starts the value of a loose symbolic reference.
const symbolicTargetPrefix = "ref: "

var (
	// ErrInvalidObjectID is returned for strings which are not a full
	// lower-case hex SHA-1.
	ErrInvalidObjectID = errors.New("invalid object ID")

	objectIDRegex = regexp.MustCompile(`\A[0-9a-f]{40}\z`)
)

// ObjectID is the hex representation of an object's SHA-1.
type ObjectID string

// NewObjectIDFromHex validates hex and returns it as an ObjectID.
func NewObjectIDFromHex(hex string) (ObjectID, error) {
	if err := ValidateObjectID(hex); err != nil {
		return "", err
	}
	return ObjectID(hex), nil
}

// String returns the hex representation of the ObjectID.
func (oid ObjectID) String() string {
	return string(oid)
}

// ValidateObjectID returns an error matching ErrInvalidObjectID unless id is
// a full object ID. Abbreviated and upper-case IDs are rejected.
func ValidateObjectID(id string) error {
	if !objectIDRegex.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidObjectID, id)
	}
	return nil
}

// IsZeroOID reports whether oid is ZeroOID.
func (oid ObjectID) IsZeroOID() bool {
	return oid == ZeroOID
}

// ParseTarget parses a target written the way Target.String writes it: a
// full object ID, or "ref: " followed by a reference name.
func ParseTarget(value string) (Target, error) {
	if strings.HasPrefix(value, symbolicTargetPrefix) {
		name := strings.TrimPrefix(value, symbolicTargetPrefix)
		if name == "" {
			return nil, errors.New("symbolic target without reference name")
		}
		return NewSymbolicTarget(ReferenceName(name)), nil
	}

	oid, err := NewObjectIDFromHex(value)
	if err != nil {
		return nil, err
	}

	return NewPeeledTarget(oid), nil
}
