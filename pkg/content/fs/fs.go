// Package fs implements filesystem-backed content storage.
//
// Objects are plain-text files; directories are folders. Writes overwrite
// the whole file verbatim — no partial writes, and no atomic-rename
// guarantee beyond what the OS provides for a single WriteFile call.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/marmos91/notefs/pkg/content"
)

// Store is a content store rooted at a base directory on the local
// filesystem. All paths passed to its methods are absolute or relative to
// the process working directory; the store does not re-root them.
//
// The zero value is usable; New exists for symmetry with other stores.
type Store struct{}

// New returns a filesystem content store.
func New() *Store {
	return &Store{}
}

// ReadObject reads the full text content of the file at path.
//
// Creation and modification timestamps come from the file metadata. Go does
// not expose a portable birth time, so the creation timestamp falls back to
// the modification time.
func (s *Store) ReadObject(ctx context.Context, path string) (content.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return content.ObjectInfo{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return content.ObjectInfo{}, fmt.Errorf("%s: %w", path, content.ErrObjectNotFound)
		}
		return content.ObjectInfo{}, fmt.Errorf("failed to read object: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return content.ObjectInfo{}, fmt.Errorf("failed to stat object: %w", err)
	}

	return content.ObjectInfo{
		Text:       string(data),
		CreatedAt:  info.ModTime(),
		ModifiedAt: info.ModTime(),
	}, nil
}

// WriteObject overwrites the file at path with text, verbatim.
func (s *Store) WriteObject(ctx context.Context, path string, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write object: %w", err)
	}
	return nil
}

// ReadDir enumerates the immediate children of the directory at path.
//
// Entries that are neither regular files nor directories (sockets, devices)
// are skipped.
func (s *Store) ReadDir(ctx context.Context, path string) (content.DirListing, error) {
	if err := ctx.Err(); err != nil {
		return content.DirListing{}, err
	}

	dirents, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return content.DirListing{}, fmt.Errorf("%s: %w", path, content.ErrObjectNotFound)
		}
		return content.DirListing{}, fmt.Errorf("failed to read directory: %w", err)
	}

	listing := content.DirListing{Entries: make(map[string]content.DirEntry, len(dirents))}
	for _, dirent := range dirents {
		kind := content.EntryFile
		if dirent.IsDir() {
			kind = content.EntryDir
		} else if !dirent.Type().IsRegular() {
			continue
		}

		name := dirent.Name()
		listing.Entries[name] = content.DirEntry{
			Name: name,
			Path: filepath.Join(path, name),
			Kind: kind,
		}
	}
	return listing, nil
}

// EnsureDir creates the directory at path and any missing parents.
func (s *Store) EnsureDir(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// Exists reports whether a file or directory exists at path.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat path: %w", err)
}
