package voting

import (
	"fmt"
)

// Phase is the point of a reference transaction at which a vote is cast.
type Phase int

const (
	// UnknownPhase is the default value. It should not be used.
	UnknownPhase = Phase(iota)
	// Prepared is cast once the edits have been prepared and encoded, but
	// before they are handed to the backend.
	Prepared
	// Committed is cast after the backend reported the transaction as
	// committed.
	Committed
)

// String returns the name of the phase. This function panics if called with
// an invalid phase.
func (p Phase) String() string {
	switch p {
	case UnknownPhase:
		return "unknown"
	case Prepared:
		return "prepared"
	case Committed:
		return "committed"
	default:
		panic(fmt.Sprintf("unknown phase %d", int(p)))
	}
}
