// Package content defines the persistence boundary for object bodies.
//
// An object body is plain text, stored one object per file and one
// directory per folder. The interfaces here are intentionally value-based:
// implementations are called from worker goroutines and must not share
// mutable state with the in-memory store, which is owned by the polling
// goroutine.
package content

import (
	"context"
	"errors"
	"time"
)

// ErrObjectNotFound indicates the requested object does not exist in the
// backing store.
var ErrObjectNotFound = errors.New("content: object not found")

// ObjectInfo is a fully loaded object body plus the timestamps captured
// from the backing store's metadata.
type ObjectInfo struct {
	// Text is the object body, verbatim.
	Text string

	CreatedAt  time.Time
	ModifiedAt time.Time
}

// EntryKind classifies a directory entry.
type EntryKind int

const (
	// EntryFile is a leaf object.
	EntryFile EntryKind = iota

	// EntryDir is a subdirectory.
	EntryDir
)

// DirEntry is a single immediate child of a directory.
type DirEntry struct {
	// Name is the entry's file name (the key within its directory).
	Name string

	// Path is the entry's full path in the backing store.
	Path string

	// Kind classifies the entry as file or subdirectory.
	Kind EntryKind
}

// DirListing is the result of enumerating a directory's immediate children,
// keyed by entry name.
type DirListing struct {
	Entries map[string]DirEntry
}

// Store is the persistence boundary consumed by the I/O bridge.
//
// All methods must be safe for concurrent use: the executor's workers call
// them in parallel for different keys.
type Store interface {
	// ReadObject reads the full text content of the object at path together
	// with creation/modification timestamps from the store's metadata.
	ReadObject(ctx context.Context, path string) (ObjectInfo, error)

	// WriteObject overwrites the object at path with text, verbatim.
	// No partial writes; no atomic-rename guarantee is assumed.
	WriteObject(ctx context.Context, path string, text string) error

	// ReadDir enumerates the immediate children of the directory at path,
	// classifying each as file or subdirectory and keying entries by name.
	ReadDir(ctx context.Context, path string) (DirListing, error)

	// EnsureDir creates the directory at path (and parents) when missing.
	EnsureDir(ctx context.Context, path string) error

	// Exists reports whether an object or directory exists at path.
	Exists(ctx context.Context, path string) (bool, error)
}
