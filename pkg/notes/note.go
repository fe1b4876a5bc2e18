// Package notes implements the note domain layer: the note payload type and
// the workspace that maps user commands onto the object store.
package notes

import "strings"

// Default names for freshly created items. The unique-name machinery in the
// store derives "<name> #n" variants from these when siblings collide.
const (
	DefaultFolderName = "Some folder"
	DefaultRootName   = "notes"
	DefaultTrashName  = "trash"

	DefaultName  = "a note"
	DefaultTitle = "Some new note title"

	ScratchPadName = "Scratch Pad"
)

// Icon identifiers. Rendering is the presentation layer's concern; the
// store only carries the identifier.
const (
	DefaultIcon    = "note"
	ScratchPadIcon = "pencil-line"
)

// Note is the leaf payload stored for every note object.
type Note struct {
	Title    string
	Text     string
	Metadata Metadata
}

// Metadata carries display hints attached to a note.
type Metadata struct {
	Icon string
}

// New returns a note with default title and icon and empty text.
func New() Note {
	return Note{
		Title:    DefaultTitle,
		Metadata: Metadata{Icon: DefaultIcon},
	}
}

// ScratchPad returns the scratch-pad note. The scratch pad is never filed
// into a directory.
func ScratchPad() Note {
	return Note{
		Title:    ScratchPadName,
		Metadata: Metadata{Icon: ScratchPadIcon},
	}
}

// FromText builds a note from raw text, deriving the title from the first
// line. Used when loading note bodies from the content store.
func FromText(text string) Note {
	note := New()
	note.Text = text
	if head, _, found := strings.Cut(text, "\n"); found || head != "" {
		if title := strings.TrimSpace(head); title != "" {
			note.Title = title
		}
	}
	return note
}

// Icon returns the note's icon identifier.
func (n *Note) Icon() string {
	return n.Metadata.Icon
}

// IsScratchPad reports whether the note carries the scratch-pad icon.
func (n *Note) IsScratchPad() bool {
	return n.Metadata.Icon == ScratchPadIcon
}
