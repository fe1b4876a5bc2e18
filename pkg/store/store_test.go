package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Text string
}

func newTestStore(t *testing.T) *Store[*payload] {
	t.Helper()
	return NewWithRoot[*payload](NewDirectory("notes"))
}

func TestAddDirAndLookup(t *testing.T) {
	s := newTestStore(t)

	id, err := s.AddDir(s.RootDirID(), NewDirectory("projects"))
	require.NoError(t, err)

	node, err := s.GetDir(id)
	require.NoError(t, err)
	assert.Equal(t, "projects", node.Dir.Name)
	assert.Equal(t, KindDirectory, node.Kind)
	assert.False(t, node.IsDeleted())
}

func TestAddDirBadParent(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddDir(ObjectID(12345), NewDirectory("orphan"))
	require.Error(t, err)
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, ErrNotFound, storeErr.Code)

	// A leaf object is the wrong kind of parent.
	leafID := s.AddObject(&payload{Text: "leaf"})
	_, err = s.AddDir(leafID, NewDirectory("under leaf"))
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, ErrNotDirectory, storeErr.Code)
}

func TestAddObjectUnfiled(t *testing.T) {
	s := newTestStore(t)

	id := s.AddObject(&payload{Text: "scratch"})

	node, ok := s.GetObject(id)
	require.True(t, ok)
	assert.Equal(t, KindObject, node.Kind)
	assert.Equal(t, "scratch", node.Payload.Text)

	// Unfiled: no directory references the object yet.
	_, ok = s.ObjectPath(id)
	assert.False(t, ok)
}

func TestObjectPath(t *testing.T) {
	s := newTestStore(t)

	subID, err := s.AddDir(s.RootDirID(), NewDirectory("work"))
	require.NoError(t, err)
	leafDirID, err := s.AddDir(subID, NewDirectory("drafts"))
	require.NoError(t, err)

	noteID := s.AddObject(&payload{Text: "hello"})
	leafDir, err := s.GetDir(leafDirID)
	require.NoError(t, err)
	leafDir.Dir.AddEntryWithUniqueName(noteID, "a note")

	path, ok := s.ObjectPath(noteID)
	require.True(t, ok)
	assert.Equal(t, []string{"notes", "work", "drafts"}, path)
}

func TestSoftDeleteAndRestore(t *testing.T) {
	s := newTestStore(t)

	dirID, err := s.AddDir(s.RootDirID(), NewDirectory("stuff"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(dirID))

	// Soft delete hides the directory from listings...
	dirs, err := s.GetSubDirectories(s.RootDirID())
	require.NoError(t, err)
	assert.Empty(t, dirs)

	// ...but the node stays reachable by id throughout.
	node, ok := s.GetObject(dirID)
	require.True(t, ok)
	assert.True(t, node.IsDeleted())
	assert.NotNil(t, node.DeletedAt)

	require.NoError(t, s.Restore(dirID))
	node, _ = s.GetObject(dirID)
	assert.False(t, node.IsDeleted())

	dirs, err = s.GetSubDirectories(s.RootDirID())
	require.NoError(t, err)
	require.Len(t, dirs, 1)
	assert.Equal(t, dirID, dirs[0].ID)
}

func TestDeleteUnknown(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.Delete(ObjectID(1)))
	assert.Error(t, s.Restore(ObjectID(1)))
}

func TestGetSubDirectoriesSkipsObjects(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddDir(s.RootDirID(), NewDirectory("only dir"))
	require.NoError(t, err)
	s.AddObject(&payload{Text: "not a dir"})

	dirs, err := s.GetSubDirectories(s.RootDirID())
	require.NoError(t, err)
	require.Len(t, dirs, 1)
	assert.Equal(t, "only dir", dirs[0].Dir.Name)
}

func TestGetSubDirectoriesWrongKind(t *testing.T) {
	s := newTestStore(t)
	leafID := s.AddObject(&payload{})

	_, err := s.GetSubDirectories(leafID)
	var storeErr *StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, ErrNotDirectory, storeErr.Code)
}

func TestAddEntryWithUniqueNameScenario(t *testing.T) {
	// Directory already contains "a note"; two auto-named inserts yield
	// "a note" and "a note #1".
	dir := NewDirectory("root")

	first := dir.AddEntryWithUniqueName(ObjectID(1), "a note")
	second := dir.AddEntryWithUniqueName(ObjectID(2), "a note")

	assert.Equal(t, "a note", first)
	assert.Equal(t, "a note #1", second)
	assert.Equal(t, ObjectID(1), dir.Entries["a note"])
	assert.Equal(t, ObjectID(2), dir.Entries["a note #1"])
}

func TestRemoveEntryKeepsObject(t *testing.T) {
	s := newTestStore(t)
	id := s.AddObject(&payload{Text: "keep me"})

	root, err := s.GetDir(s.RootDirID())
	require.NoError(t, err)
	name := root.Dir.AddEntryWithUniqueName(id, "a note")

	removed, ok := root.Dir.RemoveEntry(name)
	require.True(t, ok)
	assert.Equal(t, id, removed)

	// Removing the name binding never destroys the referenced object.
	_, ok = s.GetObject(id)
	assert.True(t, ok)
}
