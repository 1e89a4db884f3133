package git

import (
	"errors"
	"fmt"
)

var (
	// ErrReferenceNotFound represents an error when a reference was not
	// found.
	ErrReferenceNotFound = errors.New("reference not found")
)

// ReferenceName represents the name of a git reference, e.g.
// "refs/heads/master" or "HEAD". Names are compared byte by byte; no case
// folding or path normalization is ever applied. Validation of the name's
// syntax is the job of whoever constructs it.
type ReferenceName string

// String returns the string representation of the ReferenceName.
func (r ReferenceName) String() string {
	return string(r)
}

// Target is what a reference points to. It is either a PeeledTarget, which
// holds an object ID, or a SymbolicTarget, which holds the name of another
// reference. The set of variants is closed.
type Target interface {
	fmt.Stringer
	isTarget()
}

// PeeledTarget is a target pointing directly at an object.
type PeeledTarget struct {
	OID ObjectID
}

// NewPeeledTarget returns a Target pointing at the given object.
func NewPeeledTarget(oid ObjectID) Target {
	return PeeledTarget{OID: oid}
}

func (PeeledTarget) isTarget() {}

// String returns the hex object ID.
func (t PeeledTarget) String() string {
	return t.OID.String()
}

// SymbolicTarget is a target naming another reference. The referent need not
// exist.
type SymbolicTarget struct {
	Name ReferenceName
}

// NewSymbolicTarget returns a Target pointing at the given reference.
func NewSymbolicTarget(name ReferenceName) Target {
	return SymbolicTarget{Name: name}
}

func (SymbolicTarget) isTarget() {}

// String returns the target in the format used by loose symbolic references,
// e.g. "ref: refs/heads/master".
func (t SymbolicTarget) String() string {
	return symbolicTargetPrefix + t.Name.String()
}

// Reference represents a Git reference.
type Reference struct {
	// Name is the name of the reference
	Name ReferenceName
	// Target is the immediate value of the reference. Symbolic references
	// are not resolved.
	Target Target
}

// NewReference creates a direct reference to an object.
func NewReference(name ReferenceName, oid ObjectID) Reference {
	return Reference{
		Name:   name,
		Target: NewPeeledTarget(oid),
	}
}

// NewSymbolicReference creates a symbolic reference to another reference.
func NewSymbolicReference(name ReferenceName, target ReferenceName) Reference {
	return Reference{
		Name:   name,
		Target: NewSymbolicTarget(target),
	}
}

// IsSymbolic tells whether the reference is symbolic.
func (r Reference) IsSymbolic() bool {
	_, ok := r.Target.(SymbolicTarget)
	return ok
}
