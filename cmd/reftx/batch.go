package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gitlab.com/gitlab-org/reftx/internal/git"
	"gitlab.com/gitlab-org/reftx/internal/git/reftx"
)

// errLogOnlyRequested is returned for changes asking to only write a reflog
// entry. Such changes are produced when splitting edits through symbolic
// references, and update-ref has no command which could apply one on its own.
var errLogOnlyRequested = errors.New("log-only changes cannot be requested")

// batch is a single line of input: the edits of one reference transaction.
type batch struct {
	Edits []jsonEdit `json:"edits,omitempty"`
}

type jsonEdit struct {
	Name   string     `json:"name"`
	Change jsonChange `json:"change"`
}

type jsonChange struct {
	Type string `json:"type"`
	// New, Expected and Previous hold either a hex object ID or "ref: "
	// followed by the name of a reference.
	New      string   `json:"new,omitempty"`
	Expected string   `json:"expected,omitempty"`
	Previous string   `json:"previous,omitempty"`
	Log      *jsonLog `json:"log,omitempty"`
	Mode     string   `json:"mode,omitempty"`
	Deref    bool     `json:"deref"`
}

type jsonLog struct {
	Mode              string `json:"mode,omitempty"`
	ForceCreateReflog bool   `json:"force_create_reflog,omitempty"`
	Message           string `json:"message,omitempty"`
}

// decodeBatches reads one batch per JSON value until the end of r.
func decodeBatches(r io.Reader) ([]reftx.RefEdits, error) {
	var batches []reftx.RefEdits

	decoder := json.NewDecoder(r)
	for {
		var b batch
		if err := decoder.Decode(&b); errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("decode batch %d: %w", len(batches)+1, err)
		}

		edits, err := b.toRefEdits()
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", len(batches)+1, err)
		}

		batches = append(batches, edits)
	}

	return batches, nil
}

func (b batch) toRefEdits() (reftx.RefEdits, error) {
	edits := make(reftx.RefEdits, 0, len(b.Edits))
	for _, edit := range b.Edits {
		if edit.Name == "" {
			return nil, errors.New("edit without reference name")
		}

		change, err := edit.Change.toChange()
		if err != nil {
			return nil, fmt.Errorf("edit %q: %w", edit.Name, err)
		}

		edits = append(edits, reftx.RefEdit{Name: git.ReferenceName(edit.Name), Change: change})
	}

	return edits, nil
}

func (c jsonChange) toChange() (reftx.Change, error) {
	switch c.Type {
	case "update":
		newTarget, err := parseTarget(c.New)
		if err != nil {
			return nil, fmt.Errorf("new: %w", err)
		}
		if newTarget == nil {
			return nil, errors.New("update without new value")
		}

		expected, err := parseTarget(c.Expected)
		if err != nil {
			return nil, fmt.Errorf("expected: %w", err)
		}

		update := reftx.Update{New: newTarget, Expected: expected, Deref: c.Deref}
		if c.Log != nil {
			mode, err := parseLogMode(c.Log.Mode)
			if err != nil {
				return nil, err
			}

			update.Log = reftx.LogChange{
				Mode:              mode,
				ForceCreateReflog: c.Log.ForceCreateReflog,
				Message:           c.Log.Message,
			}
		}
		if reftx.IsLogOnly(update) {
			return nil, errLogOnlyRequested
		}

		return update, nil
	case "delete":
		previous, err := parseTarget(c.Previous)
		if err != nil {
			return nil, fmt.Errorf("previous: %w", err)
		}

		mode, err := parseDeleteMode(c.Mode)
		if err != nil {
			return nil, err
		}

		if mode == reftx.DeleteModeLogOnly {
			return nil, errLogOnlyRequested
		}

		return reftx.Delete{Previous: previous, Mode: mode, Deref: c.Deref}, nil
	default:
		return nil, fmt.Errorf("unknown change type %q", c.Type)
	}
}

// parseTarget returns nil for an empty value.
func parseTarget(value string) (git.Target, error) {
	if value == "" {
		return nil, nil
	}
	return git.ParseTarget(value)
}

func formatTarget(target git.Target) string {
	if target == nil {
		return ""
	}
	return target.String()
}

func parseLogMode(mode string) (reftx.LogMode, error) {
	for _, m := range []reftx.LogMode{reftx.LogModeAndReference, reftx.LogModeOnly} {
		if mode == m.String() {
			return m, nil
		}
	}
	if mode == "" {
		return reftx.LogModeAndReference, nil
	}
	return 0, fmt.Errorf("unknown log mode %q", mode)
}

func parseDeleteMode(mode string) (reftx.DeleteMode, error) {
	for _, m := range []reftx.DeleteMode{reftx.DeleteModeRefAndLog, reftx.DeleteModeLogOnly} {
		if mode == m.String() {
			return m, nil
		}
	}
	if mode == "" {
		return reftx.DeleteModeRefAndLog, nil
	}
	return 0, fmt.Errorf("unknown delete mode %q", mode)
}

func newBatch(edits reftx.RefEdits) batch {
	b := batch{Edits: make([]jsonEdit, 0, len(edits))}

	for _, edit := range edits {
		var change jsonChange
		switch c := edit.Change.(type) {
		case reftx.Update:
			change = jsonChange{
				Type:     "update",
				New:      formatTarget(c.New),
				Expected: formatTarget(c.Expected),
				Log: &jsonLog{
					Mode:              c.Log.Mode.String(),
					ForceCreateReflog: c.Log.ForceCreateReflog,
					Message:           c.Log.Message,
				},
				Deref: c.Deref,
			}
		case reftx.Delete:
			change = jsonChange{
				Type:     "delete",
				Previous: formatTarget(c.Previous),
				Mode:     c.Mode.String(),
				Deref:    c.Deref,
			}
		default:
			panic(fmt.Sprintf("unknown change %T", edit.Change))
		}

		b.Edits = append(b.Edits, jsonEdit{Name: edit.Name.String(), Change: change})
	}

	return b
}
