// Package refstore provides implementations of reftx.RefStore on top of
// different reference backends, as well as decorators adding caching and
// metrics to any store.
package refstore

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/pelletier/go-toml"
	"gitlab.com/gitlab-org/reftx/internal/git"
)

// Memory is a RefStore keeping references in memory. It is safe for
// concurrent use.
type Memory struct {
	mu   sync.RWMutex
	refs map[git.ReferenceName]git.Target
}

// NewMemory returns a new Memory store holding the given references.
func NewMemory(refs ...git.Reference) *Memory {
	m := &Memory{refs: make(map[git.ReferenceName]git.Target, len(refs))}
	for _, ref := range refs {
		m.refs[ref.Name] = ref.Target
	}
	return m
}

// ReadMemory returns a Memory store holding the references read from a TOML
// document mapping reference names to targets:
//
//     HEAD = "ref: refs/heads/main"
//     "refs/heads/main" = "1e292f8fedd741b75372e19097c76d327140c312"
func ReadMemory(r io.Reader) (*Memory, error) {
	tree, err := toml.LoadReader(r)
	if err != nil {
		return nil, fmt.Errorf("load toml: %w", err)
	}

	m := NewMemory()
	for name, value := range tree.ToMap() {
		target, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("reference %q: target must be a string, got %T", name, value)
		}

		parsed, err := git.ParseTarget(target)
		if err != nil {
			return nil, fmt.Errorf("reference %q: %w", name, err)
		}

		m.SetReference(git.Reference{Name: git.ReferenceName(name), Target: parsed})
	}

	return m, nil
}

// FindOneExisting returns the immediate target of the reference.
func (m *Memory) FindOneExisting(_ context.Context, name git.ReferenceName) (git.Target, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	target, ok := m.refs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", git.ErrReferenceNotFound, name)
	}

	return target, nil
}

// SetReference creates or overwrites the reference.
func (m *Memory) SetReference(ref git.Reference) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refs[ref.Name] = ref.Target
}

// References returns all references sorted by name.
func (m *Memory) References() []git.Reference {
	m.mu.RLock()
	defer m.mu.RUnlock()

	refs := make([]git.Reference, 0, len(m.refs))
	for name, target := range m.refs {
		refs = append(refs, git.Reference{Name: name, Target: target})
	}
	sort.Slice(refs, func(i, j int) bool {
		return refs[i].Name < refs[j].Name
	})

	return refs
}
