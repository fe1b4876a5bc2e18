package store

import (
	"time"
)

// ObjectID addresses a node in the store. Ids are the only cross-node
// reference type; nodes never hold pointers to each other.
type ObjectID uint64

// NodeKind discriminates the two node kinds.
type NodeKind int

const (
	// KindDirectory is a directory node owning named entries.
	KindDirectory NodeKind = iota

	// KindObject is a leaf node carrying a payload.
	KindObject
)

func (k NodeKind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Node is a single addressable unit in the store: either a directory or a
// leaf object carrying a payload of type V.
//
// Soft delete: DeletedAt marks a node logically deleted without removing it
// from the tree or from the directory entry that names it. The node keeps
// its tree position so it can still be found and path-resolved; consumers
// must filter on IsDeleted.
type Node[V any] struct {
	// ID is the node's key in the store.
	ID ObjectID

	// Kind discriminates Dir vs Payload. Exactly one of them is meaningful.
	Kind NodeKind

	// Dir is set for directory nodes.
	Dir *Directory

	// Payload is set for leaf nodes.
	Payload V

	CreatedAt  time.Time
	ModifiedAt time.Time

	// DeletedAt is the soft-delete timestamp, nil while the node is live.
	DeletedAt *time.Time
}

// IsDeleted reports whether the node is soft-deleted.
func (n *Node[V]) IsDeleted() bool {
	return n.DeletedAt != nil
}

// Touch bumps the modification timestamp.
func (n *Node[V]) Touch() {
	n.ModifiedAt = time.Now()
}

// markDeleted sets the soft-delete timestamp. Tree linkage and directory
// entries are left untouched.
func (n *Node[V]) markDeleted() {
	now := time.Now()
	n.DeletedAt = &now
}

// restore clears the soft-delete timestamp.
func (n *Node[V]) restore() {
	n.DeletedAt = nil
}

// Directory owns a set of named entries. The entries map binds names to
// object ids; it is a back-reference, not ownership — removing an entry
// never destroys the referenced object, it only removes the name binding.
type Directory struct {
	// Name is the directory's own display name.
	Name string

	// Entries maps entry names to object ids. Injective by name.
	Entries map[string]ObjectID
}

// NewDirectory returns an empty directory with the given name.
func NewDirectory(name string) *Directory {
	return &Directory{
		Name:    name,
		Entries: make(map[string]ObjectID),
	}
}

// AddEntry binds name to id, replacing any previous binding for name.
func (d *Directory) AddEntry(name string, id ObjectID) {
	d.Entries[name] = id
}

// AddEntryWithUniqueName binds id under a name derived from candidate that
// does not collide with any existing entry. Returns the chosen name.
func (d *Directory) AddEntryWithUniqueName(id ObjectID, candidate string) string {
	names := make([]string, 0, len(d.Entries))
	for name := range d.Entries {
		names = append(names, name)
	}
	name := UniqueName(names, candidate)
	d.Entries[name] = id
	return name
}

// RemoveEntry removes the binding for name and returns the id it pointed
// to, if any.
func (d *Directory) RemoveEntry(name string) (ObjectID, bool) {
	id, ok := d.Entries[name]
	if ok {
		delete(d.Entries, name)
	}
	return id, ok
}

// newDirNode wraps a directory into a node with fresh timestamps.
func newDirNode[V any](id ObjectID, dir *Directory) *Node[V] {
	now := time.Now()
	return &Node[V]{
		ID:         id,
		Kind:       KindDirectory,
		Dir:        dir,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// newObjectNode wraps a payload into a leaf node with fresh timestamps.
func newObjectNode[V any](id ObjectID, payload V) *Node[V] {
	now := time.Now()
	return &Node[V]{
		ID:         id,
		Kind:       KindObject,
		Payload:    payload,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}
