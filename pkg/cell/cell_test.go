package cell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPending(t *testing.T) {
	c := Pending[string]()

	assert.Equal(t, StatePendingRead, c.State())
	assert.False(t, c.HasValue())
	_, ok := c.Value()
	assert.False(t, ok)
	assert.NoError(t, c.Err())
}

func TestReady(t *testing.T) {
	c := Ready("hello")

	assert.Equal(t, StateValue, c.State())
	value, ok := c.Value()
	require.True(t, ok)
	assert.Equal(t, "hello", value)
}

func TestReadFailed(t *testing.T) {
	readErr := errors.New("no such file")
	c := ReadFailed[string](readErr)

	assert.Equal(t, StateReadError, c.State())
	assert.False(t, c.HasValue())
	assert.ErrorIs(t, c.Err(), readErr)
}

// TestWriteFailedPreservesValue checks the invariant that a failed save
// never discards the editable in-memory value.
func TestWriteFailedPreservesValue(t *testing.T) {
	writeErr := errors.New("disk full")
	c := WriteFailed("unsaved edits", writeErr)

	assert.Equal(t, StateValueWriteError, c.State())
	value, ok := c.Value()
	require.True(t, ok)
	assert.Equal(t, "unsaved edits", value)
	assert.ErrorIs(t, c.Err(), writeErr)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "pending-read", StatePendingRead.String())
	assert.Equal(t, "value", StateValue.String())
	assert.Equal(t, "read-error", StateReadError.String())
	assert.Equal(t, "value-write-error", StateValueWriteError.String())
}
