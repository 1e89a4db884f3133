package reftx

import (
	"fmt"

	"gitlab.com/gitlab-org/reftx/internal/git"
)

// DeleteMode determines what a backend removes when deleting a reference.
type DeleteMode int

const (
	// DeleteModeRefAndLog removes the reference together with its reflog.
	DeleteModeRefAndLog = DeleteMode(iota)
	// DeleteModeLogOnly removes only the reflog and leaves the reference
	// in place.
	DeleteModeLogOnly
)

// String returns the name of the mode. This function panics if called with
// an unknown mode.
func (m DeleteMode) String() string {
	switch m {
	case DeleteModeRefAndLog:
		return "ref-and-log"
	case DeleteModeLogOnly:
		return "log-only"
	default:
		panic(fmt.Sprintf("unknown delete mode %d", int(m)))
	}
}

// LogMode determines whether an update changes the reference value or only
// appends to its reflog.
type LogMode int

const (
	// LogModeAndReference updates the reference and appends a reflog entry.
	LogModeAndReference = LogMode(iota)
	// LogModeOnly appends a reflog entry without touching the reference.
	LogModeOnly
)

// String returns the name of the mode. This function panics if called with
// an unknown mode.
func (m LogMode) String() string {
	switch m {
	case LogModeAndReference:
		return "and-reference"
	case LogModeOnly:
		return "only"
	default:
		panic(fmt.Sprintf("unknown log mode %d", int(m)))
	}
}

// LogChange describes the reflog entry written for an update.
type LogChange struct {
	Mode LogMode
	// ForceCreateReflog creates the reflog even if the backend would not
	// create one for this reference by default.
	ForceCreateReflog bool
	Message           string
}

// Change is the change requested for a single reference. It is either an
// Update or a Delete.
type Change interface {
	isChange()
}

// Update sets the reference to New.
type Update struct {
	New git.Target
	Log LogChange
	// Expected is the value the reference must have before the update is
	// applied. A nil Expected means no precondition.
	Expected git.Target
	// Deref applies the update to whatever the reference points to if it
	// is symbolic.
	Deref bool
}

func (Update) isChange() {}

// Delete removes the reference.
type Delete struct {
	// Previous is the value the reference must have before it is deleted.
	// A nil Previous means no precondition.
	Previous git.Target
	Mode     DeleteMode
	// Deref deletes whatever the reference points to if it is symbolic.
	Deref bool
}

func (Delete) isChange() {}

func changeDeref(change Change) bool {
	switch c := change.(type) {
	case Update:
		return c.Deref
	case Delete:
		return c.Deref
	default:
		panic(fmt.Sprintf("unknown change %T", change))
	}
}

func changeWithDeref(change Change, deref bool) Change {
	switch c := change.(type) {
	case Update:
		c.Deref = deref
		return c
	case Delete:
		c.Deref = deref
		return c
	default:
		panic(fmt.Sprintf("unknown change %T", change))
	}
}

// logOnly turns the change into a record that only touches the reflog of the
// reference it is applied to.
func logOnly(change Change) Change {
	switch c := change.(type) {
	case Update:
		c.Log.Mode = LogModeOnly
		return c
	case Delete:
		c.Mode = DeleteModeLogOnly
		return c
	default:
		panic(fmt.Sprintf("unknown change %T", change))
	}
}

// IsLogOnly reports whether the change leaves the reference value untouched.
func IsLogOnly(change Change) bool {
	switch c := change.(type) {
	case Update:
		return c.Log.Mode == LogModeOnly
	case Delete:
		return c.Mode == DeleteModeLogOnly
	default:
		panic(fmt.Sprintf("unknown change %T", change))
	}
}
