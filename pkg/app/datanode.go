package app

import (
	"time"

	"github.com/marmos91/notefs/pkg/content"
)

// DataNode wraps a loaded payload with the metadata the bridge tracks per
// key: timestamps captured from the backing store, the dirty flag, and the
// soft-delete overlay.
type DataNode[T any] struct {
	// Path is the node's key in the backing store.
	Path string

	// Data is the payload.
	Data T

	CreatedAt  time.Time
	ModifiedAt time.Time

	// Deleted is the soft-delete overlay, nil while the node is live.
	Deleted *DeletedMetadata

	// Dirty marks unsaved in-memory edits. Set via App.MarkDirty, cleared
	// only by a successful save completion.
	Dirty bool

	// revision counts edits. A save snapshot remembers the revision it was
	// taken at, so a completion can tell whether edits arrived while the
	// write was in flight (those must keep the node dirty).
	revision uint64
}

// NewDataNode wraps data loaded from the content store.
func NewDataNode[T any](path string, data T, info content.ObjectInfo) *DataNode[T] {
	return &DataNode[T]{
		Path:       path,
		Data:       data,
		CreatedAt:  info.CreatedAt,
		ModifiedAt: info.ModifiedAt,
	}
}

// IsDeleted reports whether the node is soft-deleted.
func (n *DataNode[T]) IsDeleted() bool {
	return n.Deleted != nil
}

// markDirty flags unsaved edits and bumps the revision.
func (n *DataNode[T]) markDirty() {
	n.Dirty = true
	n.revision++
}

// clone returns a snapshot for a save job. T must be a value-semantics
// payload (no shared mutable state) for the snapshot to be safe to hand to
// a worker goroutine.
func (n *DataNode[T]) clone() *DataNode[T] {
	copied := *n
	return &copied
}

// DeletedMetadata records when a node was soft-deleted and where it lived.
type DeletedMetadata struct {
	DeletionTime time.Time
	OriginPath   string
}

// DeletedNow returns a deletion marker stamped with the current time.
func DeletedNow(originPath string) *DeletedMetadata {
	return &DeletedMetadata{
		DeletionTime: time.Now(),
		OriginPath:   originPath,
	}
}
