// Package cell implements the per-key cache cell that bridges background
// I/O completion to synchronous reads.
//
// A cell is a small state machine:
//
//	PendingRead -> Value(T)           successful load
//	PendingRead -> ReadError          failed load
//	Value(T)    -> Value(T)           successful save
//	Value(T)    -> ValueWriteError    failed save; the value is preserved
//
// There is no terminal state: a cell may cycle between Value and the error
// or pending states indefinitely as reads and writes repeat.
//
// The state is a proper tagged union rather than a value plus loading
// flags: the discriminant is private and cells are only built through the
// constructors, so "ready and pending at the same time" is unrepresentable
// from outside this package.
package cell

// State enumerates the cell states.
type State int

const (
	// StatePendingRead marks a cell whose first load is still in flight.
	StatePendingRead State = iota

	// StateValue marks a cell holding a usable value.
	StateValue

	// StateReadError marks a cell whose load failed. No value is available.
	StateReadError

	// StateValueWriteError marks a cell whose last save failed. The last
	// good in-memory value is still available and editable.
	StateValueWriteError
)

func (s State) String() string {
	switch s {
	case StatePendingRead:
		return "pending-read"
	case StateValue:
		return "value"
	case StateReadError:
		return "read-error"
	case StateValueWriteError:
		return "value-write-error"
	default:
		return "unknown"
	}
}

// Cell is a cache cell holding a value of type T.
type Cell[T any] struct {
	state State
	value T
	err   error
}

// Pending returns a cell in the PendingRead state.
func Pending[T any]() *Cell[T] {
	return &Cell[T]{state: StatePendingRead}
}

// Ready returns a cell holding a loaded value.
func Ready[T any](value T) *Cell[T] {
	return &Cell[T]{state: StateValue, value: value}
}

// ReadFailed returns a cell recording a failed load.
func ReadFailed[T any](err error) *Cell[T] {
	return &Cell[T]{state: StateReadError, err: err}
}

// WriteFailed returns a cell recording a failed save while preserving the
// last good value.
func WriteFailed[T any](value T, err error) *Cell[T] {
	return &Cell[T]{state: StateValueWriteError, value: value, err: err}
}

// State returns the cell's current state.
func (c *Cell[T]) State() State {
	return c.state
}

// Value returns the cell's value when one is available (StateValue or
// StateValueWriteError).
func (c *Cell[T]) Value() (T, bool) {
	switch c.state {
	case StateValue, StateValueWriteError:
		return c.value, true
	default:
		var zero T
		return zero, false
	}
}

// Err returns the recorded error for the error states, nil otherwise.
func (c *Cell[T]) Err() error {
	return c.err
}

// HasValue reports whether Value would succeed.
func (c *Cell[T]) HasValue() bool {
	return c.state == StateValue || c.state == StateValueWriteError
}
