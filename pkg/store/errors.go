package store

// StoreError represents a domain error from object store operations.
//
// These are structural errors (missing node, wrong node kind) as opposed to
// infrastructure errors (disk failure). Structural errors indicate an
// invariant violation by the caller and abort the operation loudly; they are
// never swallowed or downgraded to a log line.
type StoreError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Name is the object name or path related to the error (if applicable)
	Name string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Name != "" {
		return e.Message + ": " + e.Name
	}
	return e.Message
}

// ErrorCode represents the category of a store error.
type ErrorCode int

const (
	// ErrNotFound indicates the requested id doesn't exist in the store
	ErrNotFound ErrorCode = iota

	// ErrNotDirectory indicates the operation expected a directory but the
	// node is a leaf object
	ErrNotDirectory

	// ErrIsDirectory indicates the operation expected a leaf object but the
	// node is a directory
	ErrIsDirectory
)
