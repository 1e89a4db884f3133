// Package reftx prepares batches of reference edits before they are handed to
// a backend for committing. Preparation rejects batches touching a reference
// more than once and splits edits through symbolic references into one edit
// per referent.
package reftx

import (
	"fmt"

	"gitlab.com/gitlab-org/reftx/internal/git"
)

// RefEdit is a single requested change to the reference called Name.
type RefEdit struct {
	Name   git.ReferenceName
	Change Change
}

// Deref reports whether the edit should apply to the referent of Name if Name
// is a symbolic reference.
func (e RefEdit) Deref() bool {
	return changeDeref(e.Change)
}

// RefEdits is an ordered batch of edits. It is not safe for concurrent use.
type RefEdits []RefEdit

// DuplicateReferenceNameError is returned when a batch contains more than one
// edit for the same reference.
type DuplicateReferenceNameError struct {
	Name git.ReferenceName
}

func (e *DuplicateReferenceNameError) Error() string {
	return fmt.Sprintf("duplicate reference name %q", e.Name.String())
}

// AssureOneNameHasOneEdit verifies that no two edits share the same reference
// name. The first name found a second time is reported via a
// DuplicateReferenceNameError. Names are compared byte by byte.
func (edits RefEdits) AssureOneNameHasOneEdit() error {
	seen := make(map[git.ReferenceName]struct{}, len(edits))
	for _, edit := range edits {
		if _, ok := seen[edit.Name]; ok {
			return &DuplicateReferenceNameError{Name: edit.Name}
		}
		seen[edit.Name] = struct{}{}
	}

	return nil
}
