// Package tree implements a generic arena-backed rooted tree.
//
// Nodes are addressed by key only; parent/child links are expressed as
// key-indexed maps rather than owning references, so the structure is
// cycle-free by construction and cheap to detach and re-root.
//
// Storage model:
//
//  1. values: maps each key to its node value (the primary storage).
//  2. parentToChild: maps a parent key to its child keys in insertion
//     order. Insertion order is preserved deliberately: listings that fall
//     back to tree order depend on it.
//  3. childToParent: maps each non-root key to its parent key.
//
// The maps are kept mutually consistent by every operation: if
// childToParent[c] == p then c appears in parentToChild[p], and every key in
// either adjacency map is present in values.
//
// The tree is not safe for concurrent use; the owner is expected to confine
// it to a single goroutine.
package tree

import (
	"fmt"
	"slices"
)

// Node is a read view of a single tree node.
type Node[K comparable, V any] struct {
	// Key addresses this node.
	Key K

	// Value is the node payload.
	Value V

	// Children holds the child keys in insertion order.
	Children []K

	// Parent is the parent key. HasParent is false for the root.
	Parent    K
	HasParent bool
}

// Tree is an arena-backed rooted tree keyed by K.
type Tree[K comparable, V any] struct {
	root          K
	values        map[K]V
	parentToChild map[K][]K
	childToParent map[K]K
}

// NewWithRoot creates a single-node tree. The root key is fixed for the
// tree's lifetime.
func NewWithRoot[K comparable, V any](key K, value V) *Tree[K, V] {
	return &Tree[K, V]{
		root:          key,
		values:        map[K]V{key: value},
		parentToChild: make(map[K][]K),
		childToParent: make(map[K]K),
	}
}

// Root returns the root key.
func (t *Tree[K, V]) Root() K {
	return t.root
}

// RootNode returns the root node view. The root is always present.
func (t *Tree[K, V]) RootNode() Node[K, V] {
	node, ok := t.GetNode(t.root)
	if !ok {
		panic("tree: root must be present")
	}
	return node
}

// Len returns the number of nodes in the tree.
func (t *Tree[K, V]) Len() int {
	return len(t.values)
}

// AddNode inserts value under an existing parent key.
//
// The child is appended to the parent's child list, preserving insertion
// order. Returns an error if the parent key is unknown or the key is already
// present.
func (t *Tree[K, V]) AddNode(parent K, key K, value V) error {
	if _, ok := t.values[parent]; !ok {
		return fmt.Errorf("tree: parent not found: %v", parent)
	}
	if _, ok := t.values[key]; ok {
		return fmt.Errorf("tree: key already present: %v", key)
	}

	t.values[key] = value
	t.childToParent[key] = parent
	t.parentToChild[parent] = append(t.parentToChild[parent], key)
	return nil
}

// AddToRoot inserts value directly under the root.
func (t *Tree[K, V]) AddToRoot(key K, value V) error {
	return t.AddNode(t.root, key, value)
}

// GetNode returns a view of the node at key, or false if the key is unknown.
//
// The returned child slice is a copy; mutating it does not affect the tree.
func (t *Tree[K, V]) GetNode(key K) (Node[K, V], bool) {
	value, ok := t.values[key]
	if !ok {
		return Node[K, V]{}, false
	}

	parent, hasParent := t.childToParent[key]
	return Node[K, V]{
		Key:       key,
		Value:     value,
		Children:  slices.Clone(t.parentToChild[key]),
		Parent:    parent,
		HasParent: hasParent,
	}, true
}

// GetValue returns the value at key, or false if the key is unknown.
func (t *Tree[K, V]) GetValue(key K) (V, bool) {
	value, ok := t.values[key]
	return value, ok
}

// SetValue replaces the value at key. Returns false if the key is unknown.
func (t *Tree[K, V]) SetValue(key K, value V) bool {
	if _, ok := t.values[key]; !ok {
		return false
	}
	t.values[key] = value
	return true
}

// Values returns all node values in unspecified order.
//
// Used for full-scan existence checks, e.g. "does any directory reference
// this id".
func (t *Tree[K, V]) Values() []V {
	values := make([]V, 0, len(t.values))
	for _, value := range t.values {
		values = append(values, value)
	}
	return values
}

// Keys returns all node keys in unspecified order.
func (t *Tree[K, V]) Keys() []K {
	keys := make([]K, 0, len(t.values))
	for key := range t.values {
		keys = append(keys, key)
	}
	return keys
}

// RemoveSubtree detaches the node at key together with its entire descendant
// subtree and returns it as a standalone tree rooted at key.
//
// All three maps are rebuilt for the detached region and the corresponding
// entries are stripped from the source tree, including the child reference
// in the former parent. Removing the root or an unknown key is an error.
func (t *Tree[K, V]) RemoveSubtree(key K) (*Tree[K, V], error) {
	if key == t.root {
		return nil, fmt.Errorf("tree: cannot remove the root")
	}
	if _, ok := t.values[key]; !ok {
		return nil, fmt.Errorf("tree: key not found: %v", key)
	}

	detached := &Tree[K, V]{
		root:          key,
		values:        make(map[K]V),
		parentToChild: make(map[K][]K),
		childToParent: make(map[K]K),
	}

	// Unlink from the former parent before moving the region, so the source
	// tree never holds a child edge to a missing value.
	parent := t.childToParent[key]
	t.parentToChild[parent] = slices.DeleteFunc(
		t.parentToChild[parent],
		func(k K) bool { return k == key },
	)
	if len(t.parentToChild[parent]) == 0 {
		delete(t.parentToChild, parent)
	}
	delete(t.childToParent, key)

	t.moveRegion(key, detached)
	return detached, nil
}

// moveRegion moves key and all its descendants from t into dst, preserving
// child order and intra-region parent links.
func (t *Tree[K, V]) moveRegion(key K, dst *Tree[K, V]) {
	dst.values[key] = t.values[key]
	delete(t.values, key)

	children := t.parentToChild[key]
	delete(t.parentToChild, key)

	for _, child := range children {
		dst.parentToChild[key] = append(dst.parentToChild[key], child)
		dst.childToParent[child] = key
		delete(t.childToParent, child)
		t.moveRegion(child, dst)
	}
}
