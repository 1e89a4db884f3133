// Package updateref encodes prepared reference edits as the NUL-terminated
// command stream understood by `git update-ref --stdin -z`.
package updateref

import (
	"errors"
	"fmt"
	"io"

	"gitlab.com/gitlab-org/reftx/internal/git"
	"gitlab.com/gitlab-org/reftx/internal/git/reftx"
)

// ErrSymbolicPrecondition is returned when an update to an object ID
// expects the reference to currently be symbolic. update-ref has no command
// which could verify this.
var ErrSymbolicPrecondition = errors.New("object ID update with symbolic precondition")

// Updater writes a reference transaction to an `update-ref --stdin -z`
// stream, presenting an interface that allows references to be easily
// updated in bulk. It is not suitable for concurrent use.
type Updater struct {
	w   io.Writer
	cfg updaterConfig
}

// UpdaterOpt is a type representing options for the Updater.
type UpdaterOpt func(*updaterConfig)

type updaterConfig struct {
	disablePrepare bool
}

// WithDisabledPrepare makes Commit commit the transaction without locking
// all references in a separate prepare step first.
func WithDisabledPrepare() UpdaterOpt {
	return func(cfg *updaterConfig) {
		cfg.disablePrepare = true
	}
}

// New returns a new bulk updater writing to w. Call the various methods to
// enqueue updates, then call Commit() to commit all the updates at once.
func New(w io.Writer, opts ...UpdaterOpt) (*Updater, error) {
	var cfg updaterConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	// By writing an explicit "start", the transaction is only applied after
	// an explicit "commit".
	if _, err := io.WriteString(w, "start\x00"); err != nil {
		return nil, err
	}

	return &Updater{w: w, cfg: cfg}, nil
}

// Write enqueues one command per edit. Edits which only touch the reflog
// of their reference are skipped: in a prepared batch they record a symbolic
// reference whose referent is edited further down, and update-ref writes the
// reflogs of such symbolic references on its own. Log-only edits can thus
// only be encoded as part of a batch which went through reftx.Preparer.
func (u *Updater) Write(edits reftx.RefEdits) error {
	for _, edit := range edits {
		if reftx.IsLogOnly(edit.Change) {
			continue
		}

		if !edit.Deref() {
			if err := u.NoDeref(); err != nil {
				return err
			}
		}

		if err := u.write(edit); err != nil {
			return fmt.Errorf("reference %q: %w", edit.Name, err)
		}
	}

	return nil
}

func (u *Updater) write(edit reftx.RefEdit) error {
	switch change := edit.Change.(type) {
	case reftx.Update:
		switch newTarget := change.New.(type) {
		case git.PeeledTarget:
			var oldValue string
			switch expected := change.Expected.(type) {
			case nil:
			case git.PeeledTarget:
				if expected.OID.IsZeroOID() {
					return u.Create(edit.Name, newTarget.OID.String())
				}
				oldValue = expected.OID.String()
			case git.SymbolicTarget:
				return ErrSymbolicPrecondition
			default:
				panic(fmt.Sprintf("unknown target %T", change.Expected))
			}
			return u.Update(edit.Name, newTarget.OID.String(), oldValue)
		case git.SymbolicTarget:
			return u.SymrefUpdate(edit.Name, newTarget.Name, change.Expected)
		default:
			panic(fmt.Sprintf("unknown target %T", change.New))
		}
	case reftx.Delete:
		switch previous := change.Previous.(type) {
		case nil:
			return u.Delete(edit.Name, "")
		case git.PeeledTarget:
			return u.Delete(edit.Name, previous.OID.String())
		case git.SymbolicTarget:
			return u.SymrefDelete(edit.Name, previous.Name)
		default:
			panic(fmt.Sprintf("unknown target %T", change.Previous))
		}
	default:
		panic(fmt.Sprintf("unknown change %T", edit.Change))
	}
}

// NoDeref makes the next command apply to the reference itself even if it
// is symbolic.
func (u *Updater) NoDeref() error {
	_, err := io.WriteString(u.w, "option no-deref\x00")
	return err
}

// Create commands the reference to be created pointing at value. It fails if
// the reference exists already.
func (u *Updater) Create(reference git.ReferenceName, value string) error {
	_, err := fmt.Fprintf(u.w, "create %s\x00%s\x00", reference.String(), value)
	return err
}

// Update commands the reference to be updated to point at the sha specified in
// newvalue. An empty oldvalue skips verifying the current value.
func (u *Updater) Update(reference git.ReferenceName, newvalue, oldvalue string) error {
	_, err := fmt.Fprintf(u.w, "update %s\x00%s\x00%s\x00", reference.String(), newvalue, oldvalue)
	return err
}

// SymrefUpdate commands the reference to be turned into a symbolic reference
// pointing at target. If expected is not nil, the reference must currently
// have that value.
func (u *Updater) SymrefUpdate(reference, target git.ReferenceName, expected git.Target) error {
	var precondition string
	switch old := expected.(type) {
	case nil:
	case git.PeeledTarget:
		precondition = "oid\x00" + old.OID.String() + "\x00"
	case git.SymbolicTarget:
		precondition = "ref\x00" + old.Name.String() + "\x00"
	default:
		panic(fmt.Sprintf("unknown target %T", expected))
	}

	_, err := fmt.Fprintf(u.w, "symref-update %s\x00%s\x00%s", reference.String(), target.String(), precondition)
	return err
}

// Delete commands the reference to be removed from the repository. An empty
// oldvalue skips verifying the current value.
func (u *Updater) Delete(reference git.ReferenceName, oldvalue string) error {
	_, err := fmt.Fprintf(u.w, "delete %s\x00%s\x00", reference.String(), oldvalue)
	return err
}

// SymrefDelete commands the symbolic reference to be removed if it currently
// points at target.
func (u *Updater) SymrefDelete(reference, target git.ReferenceName) error {
	_, err := fmt.Fprintf(u.w, "symref-delete %s\x00%s\x00", reference.String(), target.String())
	return err
}

// Prepare prepares the reference transaction by locking all references and determining their
// current values. The updates are not yet committed and will be rolled back in case there is no
// call to `Commit()`. This call is optional.
func (u *Updater) Prepare() error {
	_, err := io.WriteString(u.w, "prepare\x00")
	return err
}

// Commit applies the commands specified in other calls to the Updater.
func (u *Updater) Commit() error {
	if !u.cfg.disablePrepare {
		if err := u.Prepare(); err != nil {
			return err
		}
	}

	_, err := io.WriteString(u.w, "commit\x00")
	return err
}

// Abort discards all commands written so far.
func (u *Updater) Abort() error {
	_, err := io.WriteString(u.w, "abort\x00")
	return err
}
