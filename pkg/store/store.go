// Package store implements the id-keyed hierarchical object store.
//
// The store specializes the generic tree arena for a two-kind node type:
// directories own named entries (name -> child id) and leaf objects carry an
// arbitrary payload. On top of the tree it adds soft delete (a deletion
// timestamp orthogonal to tree removal), path reconstruction, and
// unique-name generation within a directory.
//
// Ownership model:
//   - The global object map (the tree arena) owns every node.
//   - A directory's entries map binds names to ids only. Deleting an entry
//     removes the binding, never the object.
//   - Leaf objects may exist unfiled: AddObject inserts a node that no
//     directory references yet. Linking is a separate step via
//     Directory.AddEntryWithUniqueName (scratch-pad semantics).
//
// The store is owned by a single goroutine (the polling loop); it performs
// no locking itself.
package store

import (
	"slices"

	"github.com/marmos91/notefs/pkg/idgen"
	"github.com/marmos91/notefs/pkg/tree"
)

// Store is an object store with payload type V.
type Store[V any] struct {
	tree   *tree.Tree[ObjectID, *Node[V]]
	rootID ObjectID
	ids    *idgen.TimestampRandGenerator
}

// NewWithRoot creates a store whose root is the given directory. The root id
// is fixed for the store's lifetime.
func NewWithRoot[V any](root *Directory) *Store[V] {
	ids := idgen.NewTimestampRand()
	rootID := ObjectID(ids.Next())
	return &Store[V]{
		tree:   tree.NewWithRoot(rootID, newDirNode[V](rootID, root)),
		rootID: rootID,
		ids:    ids,
	}
}

// RootDirID returns the id of the root directory.
func (s *Store[V]) RootDirID() ObjectID {
	return s.rootID
}

// Len returns the number of nodes, directories and objects alike.
func (s *Store[V]) Len() int {
	return s.tree.Len()
}

// AddDir inserts dir under the directory at parentID and returns the new
// directory's id.
//
// Fails with ErrNotFound when parentID is unknown and ErrNotDirectory when
// it resolves to a leaf object.
func (s *Store[V]) AddDir(parentID ObjectID, dir *Directory) (ObjectID, error) {
	parent, ok := s.tree.GetValue(parentID)
	if !ok {
		return 0, &StoreError{
			Code:    ErrNotFound,
			Message: "parent directory not found",
		}
	}
	if parent.Kind != KindDirectory {
		return 0, &StoreError{
			Code:    ErrNotDirectory,
			Message: "parent is not a directory",
			Name:    dir.Name,
		}
	}

	id := ObjectID(s.ids.Next())
	if err := s.tree.AddNode(parentID, id, newDirNode[V](id, dir)); err != nil {
		// The parent was checked above; a failure here is arena corruption.
		panic("store: " + err.Error())
	}
	return id, nil
}

// AddObject inserts a detached leaf object and returns its id.
//
// The object is parked under the root in the tree but not linked into any
// directory's entries; it stays unfiled until a directory binds a name to
// it (or forever, for scratch-pad objects).
func (s *Store[V]) AddObject(payload V) ObjectID {
	id := ObjectID(s.ids.Next())
	if err := s.tree.AddNode(s.rootID, id, newObjectNode[V](id, payload)); err != nil {
		panic("store: " + err.Error())
	}
	return id
}

// GetObject returns the node at id. The returned pointer is the live node;
// callers mutate payloads through it.
func (s *Store[V]) GetObject(id ObjectID) (*Node[V], bool) {
	return s.tree.GetValue(id)
}

// GetDir returns the directory node at id.
//
// Fails with ErrNotFound when id is unknown and ErrNotDirectory when it
// resolves to a leaf object.
func (s *Store[V]) GetDir(id ObjectID) (*Node[V], error) {
	node, ok := s.tree.GetValue(id)
	if !ok {
		return nil, &StoreError{Code: ErrNotFound, Message: "directory not found"}
	}
	if node.Kind != KindDirectory {
		return nil, &StoreError{Code: ErrNotDirectory, Message: "node is not a directory"}
	}
	return node, nil
}

// GetSubDirectories returns the live (non-deleted) child directories of the
// directory at dirID, in insertion order.
func (s *Store[V]) GetSubDirectories(dirID ObjectID) ([]*Node[V], error) {
	if _, err := s.GetDir(dirID); err != nil {
		return nil, err
	}

	treeNode, ok := s.tree.GetNode(dirID)
	if !ok {
		return nil, &StoreError{Code: ErrNotFound, Message: "directory not found"}
	}

	var dirs []*Node[V]
	for _, childID := range treeNode.Children {
		child, ok := s.tree.GetValue(childID)
		if !ok {
			// A child edge to a missing value means the arena is corrupted.
			panic("store: dangling child reference")
		}
		if child.Kind == KindDirectory && !child.IsDeleted() {
			dirs = append(dirs, child)
		}
	}
	return dirs, nil
}

// Delete soft-deletes the node at id: it sets the deletion timestamp and
// leaves tree linkage and directory entries untouched.
func (s *Store[V]) Delete(id ObjectID) error {
	node, ok := s.tree.GetValue(id)
	if !ok {
		return &StoreError{Code: ErrNotFound, Message: "object not found"}
	}
	node.markDeleted()
	return nil
}

// Restore clears the soft-delete timestamp of the node at id.
func (s *Store[V]) Restore(id ObjectID) error {
	node, ok := s.tree.GetValue(id)
	if !ok {
		return &StoreError{Code: ErrNotFound, Message: "object not found"}
	}
	node.restore()
	return nil
}

// ObjectPath returns the directory names from the root down to the parent
// of the object at id, or false when no directory references id.
//
// Resolution first scans all directory nodes for the one whose entries
// contain id, then walks parent links up to the root and reverses. The scan
// is linear over all directories; directory counts are small, so this trades
// asymptotic elegance for simplicity on purpose.
func (s *Store[V]) ObjectPath(id ObjectID) ([]string, bool) {
	owner, ok := s.findOwningDir(id)
	if !ok {
		return nil, false
	}

	var names []string
	for current := owner; ; {
		names = append(names, current.Dir.Name)
		treeNode, ok := s.tree.GetNode(current.ID)
		if !ok {
			panic("store: node vanished during path walk")
		}
		if !treeNode.HasParent {
			break
		}
		parent, ok := s.tree.GetValue(treeNode.Parent)
		if !ok {
			panic("store: dangling parent reference")
		}
		current = parent
	}

	slices.Reverse(names)
	return names, true
}

// findOwningDir returns the directory node whose entries reference id.
func (s *Store[V]) findOwningDir(id ObjectID) (*Node[V], bool) {
	for _, node := range s.tree.Values() {
		if node.Kind != KindDirectory {
			continue
		}
		for _, entryID := range node.Dir.Entries {
			if entryID == id {
				// An entry must always resolve in the object map; a dangling
				// entry indicates storage corruption and is fatal.
				if _, ok := s.tree.GetValue(id); !ok {
					panic("store: directory entry references missing object")
				}
				return node, true
			}
		}
	}
	return nil, false
}

// Objects returns all nodes in unspecified order.
func (s *Store[V]) Objects() []*Node[V] {
	return s.tree.Values()
}
