package reftx

import (
	"context"
	"fmt"
	"testing"

	"gitlab.com/gitlab-org/reftx/internal/git"
	"gitlab.com/gitlab-org/reftx/internal/testhelper"
)

func TestMain(m *testing.M) {
	testhelper.Run(m)
}

// mockStore serves references from a map. If consume is set, every reference
// is removed when it is looked up, which allows asserting that each reference
// was looked up at most once.
type mockStore struct {
	targets map[git.ReferenceName]git.Target
	errs    map[git.ReferenceName]error
	consume bool
	lookups []git.ReferenceName
}

func newMockStore(refs ...git.Reference) *mockStore {
	store := &mockStore{
		targets: make(map[git.ReferenceName]git.Target, len(refs)),
		errs:    map[git.ReferenceName]error{},
	}
	for _, ref := range refs {
		store.targets[ref.Name] = ref.Target
	}
	return store
}

func (s *mockStore) FindOneExisting(_ context.Context, name git.ReferenceName) (git.Target, error) {
	s.lookups = append(s.lookups, name)

	if err, ok := s.errs[name]; ok {
		return nil, err
	}

	target, ok := s.targets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", git.ErrReferenceNotFound, name)
	}
	if s.consume {
		delete(s.targets, name)
	}

	return target, nil
}

func deleteEdit(name git.ReferenceName, deref bool) RefEdit {
	return RefEdit{
		Name: name,
		Change: Delete{
			Mode:  DeleteModeRefAndLog,
			Deref: deref,
		},
	}
}

func updateEdit(name git.ReferenceName, oid git.ObjectID, deref bool) RefEdit {
	return RefEdit{
		Name: name,
		Change: Update{
			New:   git.NewPeeledTarget(oid),
			Log:   LogChange{Message: "update by test"},
			Deref: deref,
		},
	}
}

func find(t *testing.T, edits RefEdits, name git.ReferenceName) RefEdit {
	t.Helper()
	for _, edit := range edits {
		if edit.Name == name {
			return edit
		}
	}
	t.Fatalf("no edit for %q", name)
	return RefEdit{}
}

func panickingLogMessage(RefEdit) string {
	panic("should not be called")
}

func viaLogMessage(edit RefEdit) string {
	return "via " + edit.Name.String()
}
