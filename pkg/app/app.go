// Package app implements the non-blocking orchestrator bridging background
// I/O to a single-threaded consumer.
//
// Scheduling model:
//
// One goroutine — the consumer's polling loop — owns every map in here. The
// executor's workers never touch the cache or the store: they receive plain
// values (a path, a cloned snapshot), perform the blocking I/O, and send
// the result back over a completion channel created 1:1 with the job. Poll
// drains all channels non-blockingly once per tick and applies the cache
// cell state transitions. No lock guards the cache because only the polling
// goroutine reads or writes it.
//
// Guarantees:
//   - Every submitted job sends exactly one message on its channel, success
//     or failure; a permanently pending cell would otherwise leak.
//   - Reads are idempotent per key: a second ReadNoteInBackground before the
//     first completes is a no-op.
//   - At most one write job per key is in flight. A save requested while
//     one is outstanding is coalesced: the newest value is snapshotted and
//     submitted when the in-flight write completes, and only the latest
//     result is reported (stale completions are discarded by job id).
//   - A save snapshot is a clone, so edits made after submission are not
//     lost: the cell stays dirty and the next save covers them.
//   - I/O failures are buffered as data (cell error states + DrainErrors),
//     never raised as a crash.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/notefs/internal/logger"
	"github.com/marmos91/notefs/pkg/cell"
	"github.com/marmos91/notefs/pkg/content"
	"github.com/marmos91/notefs/pkg/executor"
	"github.com/marmos91/notefs/pkg/notes"
)

// ErrChannelDisconnected indicates a completion channel was closed while a
// job was outstanding — the executor was torn down mid-flight. Fatal for
// that job only, not for the store.
var ErrChannelDisconnected = errors.New("app: completion channel disconnected")

// Metrics receives I/O bridge instrumentation. A nil Metrics disables it.
type Metrics interface {
	// ReadCompleted is called when a load lands, with its wall time.
	ReadCompleted(success bool, duration time.Duration)

	// WriteCompleted is called when a save lands, with its wall time.
	WriteCompleted(success bool, duration time.Duration)
}

// Config carries the orchestrator's construction-time settings.
type Config struct {
	// BasePath is the root directory of the note tree in the backing store.
	BasePath string

	// ScratchPadPath is the scratch pad's key. Created empty when missing.
	ScratchPadPath string

	// Autosave submits a save for every dirty note without an in-flight
	// write at the end of each Poll.
	Autosave bool
}

// NoteNode and DirNode are the two cached value shapes.
type (
	NoteNode = DataNode[notes.Note]
	DirNode  = DataNode[content.DirListing]
)

type readResult[T any] struct {
	node *T
	err  error
}

type readTask[T any] struct {
	ch      chan readResult[T]
	started time.Time
}

type writeResult struct {
	jobID uuid.UUID
	err   error
}

// writeTask tracks the single in-flight write for a key.
type writeTask struct {
	jobID   uuid.UUID
	ch      chan writeResult
	started time.Time

	// snapshotRevision is the node revision captured with the snapshot; the
	// dirty flag is cleared on success only when no edit bumped it since.
	snapshotRevision uint64

	// queued records that another save was requested while this write was
	// in flight; the newest value is snapshotted when the write lands.
	queued bool
}

// App is the non-blocking orchestrator. All methods must be called from the
// single polling goroutine.
type App struct {
	cfg     Config
	store   content.Store
	pool    *executor.Pool
	metrics Metrics

	notes map[string]*cell.Cell[*NoteNode]
	dirs  map[string]*cell.Cell[*DirNode]

	noteReads map[string]*readTask[NoteNode]
	dirReads  map[string]*readTask[DirNode]
	writes    map[string]*writeTask

	currentNotePath string
	errs            []error
}

// New constructs the orchestrator and prepares the backing store: the base
// directory is created when missing and an empty scratch pad file is
// written on first run. These two calls are the only blocking I/O performed
// outside the executor, and they happen once at startup.
func New(cfg Config, store content.Store, pool *executor.Pool) (*App, error) {
	ctx := context.Background()

	if err := store.EnsureDir(ctx, cfg.BasePath); err != nil {
		return nil, fmt.Errorf("failed to prepare base directory: %w", err)
	}

	exists, err := store.Exists(ctx, cfg.ScratchPadPath)
	if err != nil {
		return nil, fmt.Errorf("failed to probe scratch pad: %w", err)
	}
	if !exists {
		if err := store.WriteObject(ctx, cfg.ScratchPadPath, ""); err != nil {
			return nil, fmt.Errorf("failed to create scratch pad: %w", err)
		}
	}

	return &App{
		cfg:             cfg,
		store:           store,
		pool:            pool,
		notes:           make(map[string]*cell.Cell[*NoteNode]),
		dirs:            make(map[string]*cell.Cell[*DirNode]),
		noteReads:       make(map[string]*readTask[NoteNode]),
		dirReads:        make(map[string]*readTask[DirNode]),
		writes:          make(map[string]*writeTask),
		currentNotePath: cfg.ScratchPadPath,
	}, nil
}

// SetMetrics attaches bridge instrumentation.
func (a *App) SetMetrics(m Metrics) {
	a.metrics = m
}

// ============================================================================
// Selection state
// ============================================================================

// CurrentNotePath returns the currently selected note key.
func (a *App) CurrentNotePath() string {
	return a.currentNotePath
}

// SelectNote switches the current selection.
func (a *App) SelectNote(path string) {
	a.currentNotePath = path
}

// IsSelected reports whether path is the current selection.
func (a *App) IsSelected(path string) bool {
	return a.currentNotePath == path
}

// BasePath returns the configured base directory key.
func (a *App) BasePath() string {
	return a.cfg.BasePath
}

// ScratchPadPath returns the scratch pad key.
func (a *App) ScratchPadPath() string {
	return a.cfg.ScratchPadPath
}

// ============================================================================
// Synchronous cache accessors
// ============================================================================

// Note returns the cached note node at path when its cell holds a value.
func (a *App) Note(path string) (*NoteNode, bool) {
	c, ok := a.notes[path]
	if !ok {
		return nil, false
	}
	return c.Value()
}

// NoteCell returns the raw cache cell for path, if any. Used by consumers
// that render pending/error states.
func (a *App) NoteCell(path string) (*cell.Cell[*NoteNode], bool) {
	c, ok := a.notes[path]
	return c, ok
}

// NoteInMemory reports whether any cell exists for path, pending or not.
func (a *App) NoteInMemory(path string) bool {
	_, ok := a.notes[path]
	return ok
}

// Dir returns the cached directory listing at path when available.
func (a *App) Dir(path string) (*DirNode, bool) {
	c, ok := a.dirs[path]
	if !ok {
		return nil, false
	}
	return c.Value()
}

// DirCell returns the raw directory cell for path, if any.
func (a *App) DirCell(path string) (*cell.Cell[*DirNode], bool) {
	c, ok := a.dirs[path]
	return c, ok
}

// BaseDir returns the cached listing of the base directory.
func (a *App) BaseDir() (*DirNode, bool) {
	return a.Dir(a.cfg.BasePath)
}

// ScratchPad returns the cached scratch pad node.
func (a *App) ScratchPad() (*NoteNode, bool) {
	return a.Note(a.cfg.ScratchPadPath)
}

// IsDirty reports whether the note at path has unsaved edits.
func (a *App) IsDirty(path string) bool {
	node, ok := a.Note(path)
	return ok && node.Dirty
}

// MarkDirty flags the note at path as edited. Pure in-memory mutation; no
// I/O is issued.
func (a *App) MarkDirty(path string) {
	if node, ok := a.Note(path); ok {
		node.markDirty()
	}
}

// DrainErrors returns buffered I/O errors and clears the buffer.
func (a *App) DrainErrors() []error {
	errs := a.errs
	a.errs = nil
	return errs
}

// ============================================================================
// Background reads
// ============================================================================

// ReadNoteInBackground schedules a load of the note at path.
//
// Idempotent: if any cell exists for path (pending, value, or error from a
// previous attempt that was since retried) the call is a no-op, so two
// calls before the first completion produce exactly one outstanding job.
// The PendingRead cell is inserted synchronously, before control returns.
func (a *App) ReadNoteInBackground(path string) {
	if _, ok := a.notes[path]; ok {
		return
	}

	a.notes[path] = cell.Pending[*NoteNode]()
	task := &readTask[NoteNode]{
		ch:      make(chan readResult[NoteNode], 1),
		started: time.Now(),
	}
	a.noteReads[path] = task

	submitRead(a.pool, path, task.ch, a.loadNote)
}

// ReadDirInBackground schedules a load of the directory listing at path.
// Same idempotence contract as ReadNoteInBackground.
func (a *App) ReadDirInBackground(path string) {
	if _, ok := a.dirs[path]; ok {
		return
	}

	a.dirs[path] = cell.Pending[*DirNode]()
	task := &readTask[DirNode]{
		ch:      make(chan readResult[DirNode], 1),
		started: time.Now(),
	}
	a.dirReads[path] = task

	submitRead(a.pool, path, task.ch, a.loadDir)
}

// ForgetNote evicts the cached cell for path so the next read hits the
// backing store again. Refused while a job for path is outstanding, to keep
// the job/cell pairing intact.
func (a *App) ForgetNote(path string) bool {
	if _, busy := a.noteReads[path]; busy {
		return false
	}
	if _, busy := a.writes[path]; busy {
		return false
	}
	delete(a.notes, path)
	return true
}

// RetryNote discards the error cell for path and schedules a fresh load.
// No-op unless the cell is in the read-error state.
func (a *App) RetryNote(path string) {
	c, ok := a.notes[path]
	if !ok || c.State() != cell.StateReadError {
		return
	}
	delete(a.notes, path)
	a.ReadNoteInBackground(path)
}

// submitRead runs loader(path) on the pool and delivers exactly one result
// on ch. The channel is buffered, so the worker never blocks on delivery.
func submitRead[T any](pool *executor.Pool, path string, ch chan readResult[T], loader func(context.Context, string) (*T, error)) {
	err := pool.Execute(func() {
		node, loadErr := loader(context.Background(), path)
		ch <- readResult[T]{node: node, err: loadErr}
	})
	if err != nil {
		// Pool is shut down; report through the same channel so Poll applies
		// the ordinary error transition.
		ch <- readResult[T]{err: err}
	}
}

// loadNote performs the blocking note load. Runs on a worker goroutine; it
// touches only plain values, never the cache.
func (a *App) loadNote(ctx context.Context, path string) (*NoteNode, error) {
	info, err := a.store.ReadObject(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewDataNode(path, notes.FromText(info.Text), info), nil
}

// loadDir performs the blocking directory load on a worker goroutine.
func (a *App) loadDir(ctx context.Context, path string) (*DirNode, error) {
	listing, err := a.store.ReadDir(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewDataNode(path, listing, content.ObjectInfo{
		CreatedAt:  time.Now(),
		ModifiedAt: time.Now(),
	}), nil
}

// ============================================================================
// Background writes
// ============================================================================

// SaveNoteInBackground schedules a write of the note at path.
//
// Requires a cell holding a value (no save of a pending or errored cell).
// The value is cloned at submission time, so concurrent edits after the
// call stay dirty and are covered by the next save. When a write for path
// is already in flight the request is coalesced: the newest value is
// snapshotted and submitted after the current write lands.
func (a *App) SaveNoteInBackground(path string) error {
	node, ok := a.Note(path)
	if !ok {
		return fmt.Errorf("app: no loaded value to save for %s", path)
	}

	if task, inFlight := a.writes[path]; inFlight {
		task.queued = true
		return nil
	}

	a.submitWrite(path, node)
	return nil
}

// submitWrite snapshots node and hands the write to the pool.
func (a *App) submitWrite(path string, node *NoteNode) {
	task := &writeTask{
		jobID:            uuid.New(),
		ch:               make(chan writeResult, 1),
		started:          time.Now(),
		snapshotRevision: node.revision,
	}
	a.writes[path] = task

	snapshot := node.clone()
	jobID := task.jobID
	ch := task.ch

	err := a.pool.Execute(func() {
		writeErr := a.store.WriteObject(context.Background(), path, snapshot.Data.Text)
		ch <- writeResult{jobID: jobID, err: writeErr}
	})
	if err != nil {
		ch <- writeResult{jobID: jobID, err: err}
	}
}

// ============================================================================
// Polling
// ============================================================================

// Poll drains every completion channel without blocking and applies the
// cache cell state transitions. Call once per consumer tick.
func (a *App) Poll() {
	a.pollNoteReads()
	a.pollDirReads()
	a.pollWrites()

	if a.cfg.Autosave {
		a.autosave()
	}
}

// HasPendingWork reports whether any job is still outstanding.
func (a *App) HasPendingWork() bool {
	return len(a.noteReads) > 0 || len(a.dirReads) > 0 || len(a.writes) > 0
}

func (a *App) pollNoteReads() {
	for path, task := range a.noteReads {
		result, landed, disconnected := tryRecv(task.ch)
		if !landed {
			continue
		}
		delete(a.noteReads, path)

		switch {
		case disconnected:
			a.notes[path] = cell.ReadFailed[*NoteNode](ErrChannelDisconnected)
			a.reportError(fmt.Errorf("load %s: %w", path, ErrChannelDisconnected))
		case result.err != nil:
			a.notes[path] = cell.ReadFailed[*NoteNode](result.err)
			a.reportError(fmt.Errorf("load %s: %w", path, result.err))
		default:
			a.notes[path] = cell.Ready(result.node)
		}

		if a.metrics != nil {
			success := !disconnected && result.err == nil
			a.metrics.ReadCompleted(success, time.Since(task.started))
		}
	}
}

func (a *App) pollDirReads() {
	for path, task := range a.dirReads {
		result, landed, disconnected := tryRecv(task.ch)
		if !landed {
			continue
		}
		delete(a.dirReads, path)

		switch {
		case disconnected:
			a.dirs[path] = cell.ReadFailed[*DirNode](ErrChannelDisconnected)
			a.reportError(fmt.Errorf("list %s: %w", path, ErrChannelDisconnected))
		case result.err != nil:
			a.dirs[path] = cell.ReadFailed[*DirNode](result.err)
			a.reportError(fmt.Errorf("list %s: %w", path, result.err))
		default:
			a.dirs[path] = cell.Ready(result.node)
		}

		if a.metrics != nil {
			success := !disconnected && result.err == nil
			a.metrics.ReadCompleted(success, time.Since(task.started))
		}
	}
}

func (a *App) pollWrites() {
	for path, task := range a.writes {
		result, landed, disconnected := tryRecv(task.ch)
		if !landed {
			continue
		}

		if disconnected {
			result = writeResult{jobID: task.jobID, err: ErrChannelDisconnected}
		}
		if result.jobID != task.jobID {
			// Superseded job; only the latest result is reported.
			continue
		}

		a.finishWrite(path, task, result)
	}
}

// finishWrite applies a landed write result and resubmits a coalesced save
// when one was queued behind it.
func (a *App) finishWrite(path string, task *writeTask, result writeResult) {
	delete(a.writes, path)

	node, ok := a.Note(path)
	if !ok {
		// The cell vanished while the write was in flight (evicted). The
		// write itself still happened; nothing to update.
		logger.Warn("app: write completed for evicted key %s", path)
		return
	}

	if result.err != nil {
		// The last good in-memory value is preserved and stays dirty so the
		// user can retry without losing edits.
		a.notes[path] = cell.WriteFailed(node, result.err)
		a.reportError(fmt.Errorf("save %s: %w", path, result.err))
	} else {
		if node.revision == task.snapshotRevision {
			node.Dirty = false
		}
		// Edits landed after the snapshot keep the node dirty; the next
		// save covers them.
		node.ModifiedAt = time.Now()
		a.notes[path] = cell.Ready(node)
	}

	if a.metrics != nil {
		a.metrics.WriteCompleted(result.err == nil, time.Since(task.started))
	}

	if task.queued {
		if current, ok := a.Note(path); ok {
			// Drop-and-replace: snapshot the newest value, not the one from
			// the moment the coalesced request was made.
			a.submitWrite(path, current)
		}
	}
}

// autosave submits a save for every dirty note without an in-flight write.
func (a *App) autosave() {
	for path, c := range a.notes {
		if c.State() != cell.StateValue {
			continue
		}
		node, ok := c.Value()
		if !ok || !node.Dirty {
			continue
		}
		if _, inFlight := a.writes[path]; inFlight {
			continue
		}
		a.submitWrite(path, node)
	}
}

func (a *App) reportError(err error) {
	logger.Warn("%v", err)
	a.errs = append(a.errs, err)
}

// tryRecv polls ch once. landed is true when a message or a close was
// observed; disconnected is true for a close.
func tryRecv[T any](ch chan T) (value T, landed bool, disconnected bool) {
	var zero T
	select {
	case received, ok := <-ch:
		if !ok {
			return zero, true, true
		}
		return received, true, false
	default:
		return zero, false, false
	}
}
