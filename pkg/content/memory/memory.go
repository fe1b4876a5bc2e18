// Package memory implements an in-memory content store.
//
// It mirrors the filesystem store's semantics closely enough to stand in
// for it in tests and ephemeral deployments: objects are text blobs keyed
// by path, directories are explicit and must exist before children can be
// listed under them.
package memory

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/marmos91/notefs/pkg/content"
)

type object struct {
	text       string
	createdAt  time.Time
	modifiedAt time.Time
}

// Store is a map-backed content store. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	objects map[string]*object
	dirs    map[string]bool
}

// New returns an empty in-memory content store with a root directory at "/".
func New() *Store {
	return &Store{
		objects: make(map[string]*object),
		dirs:    map[string]bool{"/": true},
	}
}

// ReadObject returns the object body at path.
func (s *Store) ReadObject(ctx context.Context, objPath string) (content.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return content.ObjectInfo{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[clean(objPath)]
	if !ok {
		return content.ObjectInfo{}, fmt.Errorf("%s: %w", objPath, content.ErrObjectNotFound)
	}
	return content.ObjectInfo{
		Text:       obj.text,
		CreatedAt:  obj.createdAt,
		ModifiedAt: obj.modifiedAt,
	}, nil
}

// WriteObject stores text at path, creating or overwriting the object.
func (s *Store) WriteObject(ctx context.Context, objPath string, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := clean(objPath)
	now := time.Now()
	if existing, ok := s.objects[key]; ok {
		existing.text = text
		existing.modifiedAt = now
		return nil
	}
	s.objects[key] = &object{text: text, createdAt: now, modifiedAt: now}
	return nil
}

// ReadDir lists the immediate children of the directory at path.
func (s *Store) ReadDir(ctx context.Context, dirPath string) (content.DirListing, error) {
	if err := ctx.Err(); err != nil {
		return content.DirListing{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := clean(dirPath)
	if !s.dirs[dir] {
		return content.DirListing{}, fmt.Errorf("%s: %w", dirPath, content.ErrObjectNotFound)
	}

	listing := content.DirListing{Entries: make(map[string]content.DirEntry)}
	for objPath := range s.objects {
		if name, ok := immediateChild(dir, objPath); ok {
			listing.Entries[name] = content.DirEntry{
				Name: name,
				Path: objPath,
				Kind: content.EntryFile,
			}
		}
	}
	for subDir := range s.dirs {
		if name, ok := immediateChild(dir, subDir); ok {
			listing.Entries[name] = content.DirEntry{
				Name: name,
				Path: subDir,
				Kind: content.EntryDir,
			}
		}
	}
	return listing, nil
}

// EnsureDir creates the directory at path and any missing parents.
func (s *Store) EnsureDir(ctx context.Context, dirPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := clean(dirPath)
	for dir != "/" && dir != "." {
		s.dirs[dir] = true
		dir = path.Dir(dir)
	}
	return nil
}

// Exists reports whether an object or directory exists at path.
func (s *Store) Exists(ctx context.Context, objPath string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	key := clean(objPath)
	if _, ok := s.objects[key]; ok {
		return true, nil
	}
	return s.dirs[key], nil
}

func clean(p string) string {
	return path.Clean(p)
}

// immediateChild returns the entry name when candidate is a direct child of
// dir, and false otherwise.
func immediateChild(dir, candidate string) (string, bool) {
	if candidate == dir {
		return "", false
	}
	prefix := dir
	if prefix != "/" {
		prefix += "/"
	}
	rest, ok := strings.CutPrefix(candidate, prefix)
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}
