package reftx

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gitlab.com/gitlab-org/reftx/internal/git"
)

// DefaultMaxSymrefDepth is the number of symbolic references followed for a
// single edit before giving up. It matches the limit Git itself uses.
const DefaultMaxSymrefDepth = 5

// ErrReferenceCycle is matched by errors returned when following symbolic
// references does not terminate.
var ErrReferenceCycle = errors.New("reference cycle")

// RefStore gives read access to the current value of references.
type RefStore interface {
	// FindOneExisting returns the immediate target of the reference without
	// following symbolic references. It returns an error matching
	// git.ErrReferenceNotFound if the reference does not exist. Lookups must
	// not change the store: the same name may be looked up repeatedly.
	FindOneExisting(ctx context.Context, name git.ReferenceName) (git.Target, error)
}

// LogMessageFunc computes the reflog message recorded on a referent when the
// given edit is split. It is called once for every edit appended by a split.
// Deletions carry no reflog message, so the result is discarded for them.
type LogMessageFunc func(RefEdit) string

// ReferenceCycleError is returned when the symbolic references reachable from
// an edit either loop or are nested deeper than the configured limit.
type ReferenceCycleError struct {
	// Name is the reference named by the edit that was being split.
	Name git.ReferenceName
	// Chain lists the references that were visited, in order.
	Chain []git.ReferenceName
}

func (e *ReferenceCycleError) Error() string {
	names := make([]string, len(e.Chain))
	for i, name := range e.Chain {
		names[i] = name.String()
	}
	return fmt.Sprintf("%s: %s", ErrReferenceCycle, strings.Join(names, " -> "))
}

// Is matches ErrReferenceCycle.
func (e *ReferenceCycleError) Is(target error) bool {
	return target == ErrReferenceCycle
}

// SplitOption is an option for ExtendWithSplitsOfSymbolicRefs.
type SplitOption func(*splitConfig)

type splitConfig struct {
	maxSymrefDepth int
}

// WithMaxSymrefDepth limits how many symbolic references are followed for a
// single edit. Values below one are ignored.
func WithMaxSymrefDepth(depth int) SplitOption {
	return func(cfg *splitConfig) {
		if depth > 0 {
			cfg.maxSymrefDepth = depth
		}
	}
}

// ExtendWithSplitsOfSymbolicRefs resolves every edit which has its deref flag
// set. If the edit's reference does not exist, the edit is kept as-is and
// will create the reference. If it points to an object, the deref flag is
// cleared. If it is symbolic, the chain of symbolic references is walked and
// one edit per referent is appended, each with a reflog message computed by
// makeLogMessage. The original edit and intermediate referents are turned
// into log-only edits so that only the final referent changes its value.
//
// Only edits present when the function is called are split. On error, the
// batch may already contain some of the appended edits and must be
// discarded.
func (edits *RefEdits) ExtendWithSplitsOfSymbolicRefs(
	ctx context.Context,
	store RefStore,
	makeLogMessage LogMessageFunc,
	opts ...SplitOption,
) error {
	cfg := splitConfig{maxSymrefDepth: DefaultMaxSymrefDepth}
	for _, opt := range opts {
		opt(&cfg)
	}

	originalLen := len(*edits)
	for i := 0; i < originalLen; i++ {
		edit := (*edits)[i]
		if !edit.Deref() {
			continue
		}

		target, found, err := findOneExisting(ctx, store, edit.Name)
		if err != nil {
			return err
		}
		if !found {
			continue
		}

		switch t := target.(type) {
		case git.PeeledTarget:
			(*edits)[i].Change = changeWithDeref(edit.Change, false)
		case git.SymbolicTarget:
			(*edits)[i].Change = changeWithDeref(logOnly(edit.Change), false)
			if err := edits.appendReferents(ctx, store, edit, t.Name, makeLogMessage, cfg.maxSymrefDepth); err != nil {
				return err
			}
		default:
			panic(fmt.Sprintf("unknown target %T", target))
		}
	}

	return nil
}

func (edits *RefEdits) appendReferents(
	ctx context.Context,
	store RefStore,
	split RefEdit,
	referent git.ReferenceName,
	makeLogMessage LogMessageFunc,
	maxSymrefDepth int,
) error {
	chain := []git.ReferenceName{split.Name}
	visited := map[git.ReferenceName]struct{}{split.Name: {}}

	for name := referent; ; {
		chain = append(chain, name)
		if _, ok := visited[name]; ok || len(chain)-1 > maxSymrefDepth {
			return &ReferenceCycleError{Name: split.Name, Chain: chain}
		}
		visited[name] = struct{}{}

		target, found, err := findOneExisting(ctx, store, name)
		if err != nil {
			return err
		}

		hop := RefEdit{Name: name, Change: withLogMessage(split.Change, makeLogMessage, split)}
		if !found {
			*edits = append(*edits, hop)
			return nil
		}

		switch t := target.(type) {
		case git.PeeledTarget:
			hop.Change = changeWithDeref(hop.Change, false)
			*edits = append(*edits, hop)
			return nil
		case git.SymbolicTarget:
			hop.Change = logOnly(hop.Change)
			*edits = append(*edits, hop)
			name = t.Name
		default:
			panic(fmt.Sprintf("unknown target %T", target))
		}
	}
}

// withLogMessage returns the change with its reflog message replaced by the
// result of makeLogMessage.
func withLogMessage(change Change, makeLogMessage LogMessageFunc, split RefEdit) Change {
	message := makeLogMessage(split)

	switch c := change.(type) {
	case Update:
		c.Log.Message = message
		return c
	case Delete:
		return c
	default:
		panic(fmt.Sprintf("unknown change %T", change))
	}
}

func findOneExisting(ctx context.Context, store RefStore, name git.ReferenceName) (git.Target, bool, error) {
	target, err := store.FindOneExisting(ctx, name)
	if err != nil {
		if errors.Is(err, git.ErrReferenceNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("find reference %q: %w", name, err)
	}
	if target == nil {
		return nil, false, fmt.Errorf("find reference %q: store returned no target", name)
	}

	return target, true, nil
}
