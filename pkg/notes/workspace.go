package notes

import (
	"strings"

	"github.com/marmos91/notefs/pkg/store"
)

// DisplayKind tells the presentation layer how the current note should be
// rendered.
type DisplayKind int

const (
	// DisplayDefault is a regular, editable note.
	DisplayDefault DisplayKind = iota

	// DisplayScratchPad is the always-editable scratch pad.
	DisplayScratchPad

	// DisplayDeleted is a soft-deleted note: visible but read-only until
	// restored.
	DisplayDeleted
)

// Lookup is the result of resolving the current selection.
type Lookup struct {
	Node *store.Node[*Note]
	Note *Note
	Kind DisplayKind

	// ReadOnly is true for soft-deleted notes; edits must go through a
	// restore first.
	ReadOnly bool
}

// Workspace owns the in-memory object store and the process-wide selection
// state. It is the single consumer-facing command surface: every user
// command (select, create, delete, restore) maps onto one or more store
// operations here.
//
// The workspace is confined to the polling goroutine, like the store it
// wraps.
type Workspace struct {
	store *store.Store[*Note]

	trashDirID   store.ObjectID
	scratchPadID store.ObjectID

	// currentID is explicit selection state owned by the workspace, not a
	// process-wide singleton.
	currentID store.ObjectID
}

// NewWorkspace creates a workspace with the default layout: a root
// directory, a trash directory under it, and an unfiled scratch pad that
// starts selected.
func NewWorkspace() *Workspace {
	st := store.NewWithRoot[*Note](store.NewDirectory(DefaultRootName))

	trashID, err := st.AddDir(st.RootDirID(), store.NewDirectory(DefaultTrashName))
	if err != nil {
		panic("notes: creating trash dir under a fresh root cannot fail: " + err.Error())
	}

	scratchPad := ScratchPad()
	scratchPadID := st.AddObject(&scratchPad)

	return &Workspace{
		store:        st,
		trashDirID:   trashID,
		scratchPadID: scratchPadID,
		currentID:    scratchPadID,
	}
}

// Store exposes the underlying object store.
func (w *Workspace) Store() *store.Store[*Note] {
	return w.store
}

// RootDirID returns the root directory id.
func (w *Workspace) RootDirID() store.ObjectID {
	return w.store.RootDirID()
}

// TrashDirID returns the trash directory id.
func (w *Workspace) TrashDirID() store.ObjectID {
	return w.trashDirID
}

// ScratchPadID returns the scratch pad's id.
func (w *Workspace) ScratchPadID() store.ObjectID {
	return w.scratchPadID
}

// CurrentID returns the currently selected object id.
func (w *Workspace) CurrentID() store.ObjectID {
	return w.currentID
}

// Select switches the current selection to id.
func (w *Workspace) Select(id store.ObjectID) {
	w.currentID = id
}

// ScratchPad returns the scratch-pad note. The scratch pad is created at
// construction and never removed, so a missing node is corruption.
func (w *Workspace) ScratchPad() *Note {
	node, ok := w.store.GetObject(w.scratchPadID)
	if !ok {
		panic("notes: scratch pad missing from store")
	}
	return node.Payload
}

// LookupCurrent resolves the current selection for display.
func (w *Workspace) LookupCurrent() Lookup {
	node, ok := w.store.GetObject(w.currentID)
	if !ok {
		panic("notes: current selection missing from store")
	}

	lookup := Lookup{Node: node, Note: node.Payload}
	switch {
	case w.currentID == w.scratchPadID:
		lookup.Kind = DisplayScratchPad
	case node.IsDeleted():
		lookup.Kind = DisplayDeleted
		lookup.ReadOnly = true
	default:
		lookup.Kind = DisplayDefault
	}
	return lookup
}

// NewNote creates a default note under the directory at parentID with an
// auto-generated unique name. Returns the new note's id.
func (w *Workspace) NewNote(parentID store.ObjectID) (store.ObjectID, error) {
	return w.newNoteWithAutoName(parentID, DefaultName)
}

// NewNoteThenSelect creates a note like NewNote and switches the selection
// to it.
func (w *Workspace) NewNoteThenSelect(parentID store.ObjectID) (store.ObjectID, error) {
	id, err := w.newNoteWithAutoName(parentID, DefaultName)
	if err != nil {
		return 0, err
	}
	w.currentID = id
	return id, nil
}

func (w *Workspace) newNoteWithAutoName(parentID store.ObjectID, name string) (store.ObjectID, error) {
	parent, err := w.store.GetDir(parentID)
	if err != nil {
		return 0, err
	}

	note := New()
	id := w.store.AddObject(&note)
	parent.Dir.AddEntryWithUniqueName(id, name)
	return id, nil
}

// NewFolder creates a directory under parentID named uniquely among its
// live sibling directories. Returns the new directory's id.
func (w *Workspace) NewFolder(parentID store.ObjectID) (store.ObjectID, error) {
	siblings, err := w.store.GetSubDirectories(parentID)
	if err != nil {
		return 0, err
	}

	names := make([]string, 0, len(siblings))
	for _, sibling := range siblings {
		names = append(names, sibling.Dir.Name)
	}
	name := store.UniqueName(names, DefaultFolderName)

	return w.store.AddDir(parentID, store.NewDirectory(name))
}

// DeleteNote soft-deletes the object at id and files it into the trash
// directory under name. The object keeps its tree position; only the
// deletion flag and the trash entry change.
func (w *Workspace) DeleteNote(id store.ObjectID, name string) error {
	if err := w.store.Delete(id); err != nil {
		return err
	}

	trash, err := w.store.GetDir(w.trashDirID)
	if err != nil {
		panic("notes: trash dir missing from store")
	}
	trash.Dir.AddEntryWithUniqueName(id, name)
	return nil
}

// DeleteFolder soft-deletes the directory at id, filing it into the trash
// under its own name.
func (w *Workspace) DeleteFolder(id store.ObjectID) error {
	node, err := w.store.GetDir(id)
	if err != nil {
		return err
	}
	return w.DeleteNote(id, node.Dir.Name)
}

// Restore clears the soft-delete flag of the object at id. The trash entry
// is removed so restored items leave the trash listing.
func (w *Workspace) Restore(id store.ObjectID) error {
	if err := w.store.Restore(id); err != nil {
		return err
	}

	trash, err := w.store.GetDir(w.trashDirID)
	if err != nil {
		panic("notes: trash dir missing from store")
	}
	for name, entryID := range trash.Dir.Entries {
		if entryID == id {
			delete(trash.Dir.Entries, name)
			break
		}
	}
	return nil
}

// TrashedIDs returns the ids currently filed in the trash directory.
func (w *Workspace) TrashedIDs() []store.ObjectID {
	trash, err := w.store.GetDir(w.trashDirID)
	if err != nil {
		panic("notes: trash dir missing from store")
	}

	ids := make([]store.ObjectID, 0, len(trash.Dir.Entries))
	for _, id := range trash.Dir.Entries {
		ids = append(ids, id)
	}
	return ids
}

// ItemPath returns the "root/sub/leaf-parent" path string for the object at
// id, or false when no directory references it (unfiled objects).
func (w *Workspace) ItemPath(id store.ObjectID) (string, bool) {
	names, ok := w.store.ObjectPath(id)
	if !ok {
		return "", false
	}
	return strings.Join(names, "/"), true
}

// TouchCurrent bumps the modification time of the current selection.
func (w *Workspace) TouchCurrent() {
	node, ok := w.store.GetObject(w.currentID)
	if !ok {
		panic("notes: current selection missing from store")
	}
	node.Touch()
}
