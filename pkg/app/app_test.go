package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/marmos91/notefs/pkg/cell"
	"github.com/marmos91/notefs/pkg/content"
	"github.com/marmos91/notefs/pkg/content/memory"
	"github.com/marmos91/notefs/pkg/executor"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	basePath       = "/base"
	scratchPadPath = "/base/.scratchpad"
)

func newFixture(t *testing.T, store content.Store) (*App, *executor.Pool) {
	t.Helper()

	pool := executor.New(2, nil)
	t.Cleanup(pool.Shutdown)

	a, err := New(Config{
		BasePath:       basePath,
		ScratchPadPath: scratchPadPath,
	}, store, pool)
	require.NoError(t, err)
	return a, pool
}

// pollUntil ticks the app until cond holds or the deadline expires.
func pollUntil(t *testing.T, a *App, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		a.Poll()
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}

func TestStartupCreatesScratchPad(t *testing.T) {
	store := memory.New()
	a, _ := newFixture(t, store)

	ok, err := store.Exists(context.Background(), scratchPadPath)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, scratchPadPath, a.CurrentNotePath())
}

// TestReadInsertsPendingSynchronously covers the zero-state scenario: the
// PendingRead cell is visible before the worker has done anything, and the
// cell becomes Value once the load lands and Poll runs.
func TestReadInsertsPendingSynchronously(t *testing.T) {
	store := memory.New()
	require.NoError(t, store.WriteObject(context.Background(), "/base/note.txt", "hello world\nbody"))
	a, _ := newFixture(t, store)

	a.ReadNoteInBackground("/base/note.txt")

	c, ok := a.NoteCell("/base/note.txt")
	require.True(t, ok, "cell must exist synchronously")
	if c.State() == cell.StatePendingRead {
		_, hasValue := a.Note("/base/note.txt")
		assert.False(t, hasValue)
	}

	pollUntil(t, a, func() bool {
		c, _ := a.NoteCell("/base/note.txt")
		return c.State() == cell.StateValue
	})

	node, ok := a.Note("/base/note.txt")
	require.True(t, ok)
	assert.Equal(t, "hello world\nbody", node.Data.Text)
	assert.Equal(t, "hello world", node.Data.Title)
	assert.False(t, node.Dirty)
}

type countingStore struct {
	content.Store
	reads atomic.Int64
}

func (s *countingStore) ReadObject(ctx context.Context, path string) (content.ObjectInfo, error) {
	s.reads.Add(1)
	return s.Store.ReadObject(ctx, path)
}

// TestReadIdempotent checks that two reads before the first completion
// result in exactly one outstanding job.
func TestReadIdempotent(t *testing.T) {
	mem := memory.New()
	require.NoError(t, mem.WriteObject(context.Background(), "/base/a.txt", "x"))
	counting := &countingStore{Store: mem}
	a, _ := newFixture(t, counting)

	a.ReadNoteInBackground("/base/a.txt")
	a.ReadNoteInBackground("/base/a.txt")

	pollUntil(t, a, func() bool { return !a.HasPendingWork() })
	assert.Equal(t, int64(1), counting.reads.Load())
}

func TestReadErrorSurfacesAsData(t *testing.T) {
	a, _ := newFixture(t, memory.New())

	a.ReadNoteInBackground("/base/ghost.txt")
	pollUntil(t, a, func() bool { return !a.HasPendingWork() })

	c, ok := a.NoteCell("/base/ghost.txt")
	require.True(t, ok)
	assert.Equal(t, cell.StateReadError, c.State())
	assert.ErrorIs(t, c.Err(), content.ErrObjectNotFound)

	errs := a.DrainErrors()
	require.Len(t, errs, 1)
	assert.Empty(t, a.DrainErrors(), "drain must clear the buffer")
}

func TestRetryNote(t *testing.T) {
	store := memory.New()
	a, _ := newFixture(t, store)

	a.ReadNoteInBackground("/base/late.txt")
	pollUntil(t, a, func() bool { return !a.HasPendingWork() })
	c, _ := a.NoteCell("/base/late.txt")
	require.Equal(t, cell.StateReadError, c.State())

	// The object appears after the failed load; a retry picks it up.
	require.NoError(t, store.WriteObject(context.Background(), "/base/late.txt", "now here"))
	a.RetryNote("/base/late.txt")

	pollUntil(t, a, func() bool {
		c, _ := a.NoteCell("/base/late.txt")
		return c.State() == cell.StateValue
	})
}

func TestReadDir(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	require.NoError(t, store.EnsureDir(ctx, "/base/sub"))
	require.NoError(t, store.WriteObject(ctx, "/base/note.txt", "x"))
	a, _ := newFixture(t, store)

	a.ReadDirInBackground(basePath)
	pollUntil(t, a, func() bool {
		_, ok := a.BaseDir()
		return ok
	})

	dir, _ := a.BaseDir()
	assert.Equal(t, content.EntryDir, dir.Data.Entries["sub"].Kind)
	assert.Equal(t, content.EntryFile, dir.Data.Entries["note.txt"].Kind)
}

// TestSaveRoundTrip writes a payload, evicts the cache, and reads it back.
func TestSaveRoundTrip(t *testing.T) {
	store := memory.New()
	require.NoError(t, store.WriteObject(context.Background(), "/base/rt.txt", "v1"))
	a, _ := newFixture(t, store)

	a.ReadNoteInBackground("/base/rt.txt")
	pollUntil(t, a, func() bool {
		_, ok := a.Note("/base/rt.txt")
		return ok
	})

	node, _ := a.Note("/base/rt.txt")
	node.Data.Text = "v2 edited"
	a.MarkDirty("/base/rt.txt")
	require.NoError(t, a.SaveNoteInBackground("/base/rt.txt"))

	pollUntil(t, a, func() bool { return !a.HasPendingWork() })
	assert.False(t, a.IsDirty("/base/rt.txt"))

	require.True(t, a.ForgetNote("/base/rt.txt"))
	a.ReadNoteInBackground("/base/rt.txt")
	pollUntil(t, a, func() bool {
		_, ok := a.Note("/base/rt.txt")
		return ok
	})

	reloaded, _ := a.Note("/base/rt.txt")
	assert.Equal(t, "v2 edited", reloaded.Data.Text)
}

func TestSaveRequiresLoadedValue(t *testing.T) {
	a, _ := newFixture(t, memory.New())
	assert.Error(t, a.SaveNoteInBackground("/base/never-loaded.txt"))
}

// gatedStore blocks writes until released, for deterministic interleaving.
type gatedStore struct {
	content.Store
	gate   chan struct{}
	writes atomic.Int64
}

func (s *gatedStore) WriteObject(ctx context.Context, path string, text string) error {
	<-s.gate
	s.writes.Add(1)
	return s.Store.WriteObject(ctx, path, text)
}

// TestEditAfterSubmitStaysDirty covers the snapshot guarantee: an edit
// made after a save was submitted is not lost — the cell stays dirty after
// that save completes.
func TestEditAfterSubmitStaysDirty(t *testing.T) {
	mem := memory.New()
	// Scratch pad pre-created so startup never hits the gated WriteObject.
	require.NoError(t, mem.WriteObject(context.Background(), scratchPadPath, ""))
	require.NoError(t, mem.WriteObject(context.Background(), "/base/n.txt", "original"))
	gated := &gatedStore{Store: mem, gate: make(chan struct{})}
	a, _ := newFixture(t, gated)

	a.ReadNoteInBackground("/base/n.txt")
	pollUntil(t, a, func() bool {
		_, ok := a.Note("/base/n.txt")
		return ok
	})

	node, _ := a.Note("/base/n.txt")
	node.Data.Text = "first edit"
	a.MarkDirty("/base/n.txt")
	require.NoError(t, a.SaveNoteInBackground("/base/n.txt"))

	// Edit while the write is blocked in the worker.
	node.Data.Text = "second edit"
	a.MarkDirty("/base/n.txt")

	close(gated.gate)
	pollUntil(t, a, func() bool { return !a.HasPendingWork() })

	assert.True(t, a.IsDirty("/base/n.txt"),
		"edit made after save submission must keep the cell dirty")

	// A subsequent save persists the newer edit.
	require.NoError(t, a.SaveNoteInBackground("/base/n.txt"))
	pollUntil(t, a, func() bool { return !a.HasPendingWork() })
	assert.False(t, a.IsDirty("/base/n.txt"))

	info, err := mem.ReadObject(context.Background(), "/base/n.txt")
	require.NoError(t, err)
	assert.Equal(t, "second edit", info.Text)
}

// TestCoalescedSave checks the one-outstanding-write-per-key discipline: a
// save requested mid-flight is queued, not dropped, and persists the newest
// value.
func TestCoalescedSave(t *testing.T) {
	mem := memory.New()
	require.NoError(t, mem.WriteObject(context.Background(), scratchPadPath, ""))
	require.NoError(t, mem.WriteObject(context.Background(), "/base/c.txt", "original"))
	gated := &gatedStore{Store: mem, gate: make(chan struct{}, 16)}
	a, _ := newFixture(t, gated)

	a.ReadNoteInBackground("/base/c.txt")
	pollUntil(t, a, func() bool {
		_, ok := a.Note("/base/c.txt")
		return ok
	})

	node, _ := a.Note("/base/c.txt")
	node.Data.Text = "v1"
	a.MarkDirty("/base/c.txt")
	require.NoError(t, a.SaveNoteInBackground("/base/c.txt"))

	// Second and third requests while the first write is still blocked:
	// coalesced into one follow-up write of the newest value.
	node.Data.Text = "v2"
	a.MarkDirty("/base/c.txt")
	require.NoError(t, a.SaveNoteInBackground("/base/c.txt"))
	node.Data.Text = "v3"
	a.MarkDirty("/base/c.txt")
	require.NoError(t, a.SaveNoteInBackground("/base/c.txt"))

	gated.gate <- struct{}{}
	gated.gate <- struct{}{}
	pollUntil(t, a, func() bool { return !a.HasPendingWork() })

	assert.Equal(t, int64(2), gated.writes.Load(), "three requests must coalesce into two writes")

	info, err := mem.ReadObject(context.Background(), "/base/c.txt")
	require.NoError(t, err)
	assert.Equal(t, "v3", info.Text)
	assert.False(t, a.IsDirty("/base/c.txt"))
}

type failingWrites struct {
	content.Store
}

func (s *failingWrites) WriteObject(context.Context, string, string) error {
	return errors.New("disk full")
}

// TestWriteErrorPreservesValue checks that a failed save keeps the last
// good in-memory value and the dirty flag, so the user can retry.
func TestWriteErrorPreservesValue(t *testing.T) {
	mem := memory.New()
	require.NoError(t, mem.WriteObject(context.Background(), scratchPadPath, ""))
	require.NoError(t, mem.WriteObject(context.Background(), "/base/w.txt", "loaded"))
	a, _ := newFixture(t, &failingWrites{Store: mem})

	a.ReadNoteInBackground("/base/w.txt")
	pollUntil(t, a, func() bool {
		_, ok := a.Note("/base/w.txt")
		return ok
	})

	node, _ := a.Note("/base/w.txt")
	node.Data.Text = "precious edits"
	a.MarkDirty("/base/w.txt")
	require.NoError(t, a.SaveNoteInBackground("/base/w.txt"))

	pollUntil(t, a, func() bool { return !a.HasPendingWork() })

	c, _ := a.NoteCell("/base/w.txt")
	assert.Equal(t, cell.StateValueWriteError, c.State())

	preserved, ok := a.Note("/base/w.txt")
	require.True(t, ok, "value must survive a failed save")
	assert.Equal(t, "precious edits", preserved.Data.Text)
	assert.True(t, preserved.Dirty)
	assert.NotEmpty(t, a.DrainErrors())
}

func TestMarkDirtyIsPureInMemory(t *testing.T) {
	mem := memory.New()
	require.NoError(t, mem.WriteObject(context.Background(), "/base/d.txt", "x"))
	counting := &countingStore{Store: mem}
	a, _ := newFixture(t, counting)

	a.ReadNoteInBackground("/base/d.txt")
	pollUntil(t, a, func() bool { return !a.HasPendingWork() })
	before := counting.reads.Load()

	a.MarkDirty("/base/d.txt")
	a.Poll()
	assert.True(t, a.IsDirty("/base/d.txt"))
	assert.Equal(t, before, counting.reads.Load())
}

func TestAutosave(t *testing.T) {
	mem := memory.New()
	require.NoError(t, mem.WriteObject(context.Background(), "/base/auto.txt", "x"))

	pool := executor.New(2, nil)
	t.Cleanup(pool.Shutdown)
	a, err := New(Config{
		BasePath:       basePath,
		ScratchPadPath: scratchPadPath,
		Autosave:       true,
	}, mem, pool)
	require.NoError(t, err)

	a.ReadNoteInBackground("/base/auto.txt")
	pollUntil(t, a, func() bool {
		_, ok := a.Note("/base/auto.txt")
		return ok
	})

	node, _ := a.Note("/base/auto.txt")
	node.Data.Text = "autosaved"
	a.MarkDirty("/base/auto.txt")

	pollUntil(t, a, func() bool { return !a.IsDirty("/base/auto.txt") })

	info, err := mem.ReadObject(context.Background(), "/base/auto.txt")
	require.NoError(t, err)
	assert.Equal(t, "autosaved", info.Text)
}

func TestSelection(t *testing.T) {
	a, _ := newFixture(t, memory.New())

	assert.True(t, a.IsSelected(scratchPadPath))
	a.SelectNote("/base/other.txt")
	assert.Equal(t, "/base/other.txt", a.CurrentNotePath())
	assert.False(t, a.IsSelected(scratchPadPath))
}
