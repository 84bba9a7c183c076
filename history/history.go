package history

import (
	"errors"
	"sync"
	"time"

	"github.com/loomtext/loom/buffer"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// DefaultMaxEntries bounds the undo depth when no explicit limit is set.
const DefaultMaxEntries = 1000

// entry is one undo or redo step: the buffer state to return to.
type entry struct {
	snapshot  *buffer.Snapshot
	timestamp time.Time
}

// History manages undo/redo state for a buffer. Because buffer snapshots
// share rope structure with every other version, each entry costs only
// the nodes its edit touched, not a full copy of the text.
//
// The protocol is snapshot exchange: before applying an edit, the caller
// commits the pre-edit snapshot; Undo hands that snapshot back and files
// the current state under redo. History never touches a Buffer itself.
type History struct {
	mu sync.Mutex

	undoStack []*entry
	redoStack []*entry

	// Grouping state. While a group is open only the state from before
	// the first commit is retained, so the whole group undoes as one.
	grouping   bool
	groupName  string
	groupFirst *entry

	maxEntries int
}

// NewHistory creates a history with the given depth limit.
// Non-positive limits fall back to DefaultMaxEntries.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &History{maxEntries: maxEntries}
}

// Commit records the buffer state from before an edit as an undo step and
// clears the redo stack: editing forks the timeline, and the abandoned
// redo branch becomes unreachable.
func (h *History) Commit(prev *buffer.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		if h.groupFirst == nil {
			h.groupFirst = &entry{snapshot: prev, timestamp: time.Now()}
		}
		h.redoStack = nil
		return
	}

	h.pushLocked(&entry{snapshot: prev, timestamp: time.Now()})
}

func (h *History) pushLocked(e *entry) {
	h.undoStack = append(h.undoStack, e)
	h.redoStack = nil

	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo exchanges the current state for the most recent undo entry: the
// caller passes the buffer's present snapshot, which becomes a redo step,
// and receives the snapshot to restore.
func (h *History) Undo(current *buffer.Snapshot) (*buffer.Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undoStack) == 0 {
		return nil, ErrNothingToUndo
	}

	e := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, &entry{snapshot: current, timestamp: time.Now()})
	return e.snapshot, nil
}

// Redo exchanges the current state for the most recent redo entry.
func (h *History) Redo(current *buffer.Snapshot) (*buffer.Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redoStack) == 0 {
		return nil, ErrNothingToRedo
	}

	e := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, &entry{snapshot: current, timestamp: time.Now()})
	return e.snapshot, nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack) > 0
}

// UndoCount returns the number of undo steps available.
func (h *History) UndoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undoStack)
}

// RedoCount returns the number of redo steps available.
func (h *History) RedoCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redoStack)
}

// PeekUndo returns the snapshot the next Undo would restore, without
// consuming it. Returns nil when the undo stack is empty.
func (h *History) PeekUndo() *buffer.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.undoStack) == 0 {
		return nil
	}
	return h.undoStack[len(h.undoStack)-1].snapshot
}

// PeekRedo returns the snapshot the next Redo would restore, without
// consuming it. Returns nil when the redo stack is empty.
func (h *History) PeekRedo() *buffer.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.redoStack) == 0 {
		return nil
	}
	return h.redoStack[len(h.redoStack)-1].snapshot
}

// BeginGroup opens an edit group. Commits made while the group is open
// collapse into a single undo step. Nested calls are ignored.
func (h *History) BeginGroup(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.grouping {
		return
	}
	h.grouping = true
	h.groupName = name
	h.groupFirst = nil
}

// EndGroup closes the current group. If any commits happened inside it,
// one undo step covering all of them is pushed.
func (h *History) EndGroup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.grouping {
		return
	}
	h.grouping = false
	if h.groupFirst != nil {
		h.pushLocked(h.groupFirst)
	}
	h.groupName = ""
	h.groupFirst = nil
}

// IsGrouping returns true while an edit group is open.
func (h *History) IsGrouping() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.grouping
}

// GroupName returns the name of the open group, or "".
func (h *History) GroupName() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.groupName
}

// Clear drops all undo and redo state.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.undoStack = nil
	h.redoStack = nil
	h.grouping = false
	h.groupFirst = nil
	h.groupName = ""
}

// SetMaxEntries adjusts the depth limit, trimming the oldest undo steps
// if the stack already exceeds it.
func (h *History) SetMaxEntries(n int) {
	if n <= 0 {
		n = DefaultMaxEntries
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.maxEntries = n
	if len(h.undoStack) > n {
		h.undoStack = h.undoStack[len(h.undoStack)-n:]
	}
}

// MaxEntries returns the current depth limit.
func (h *History) MaxEntries() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.maxEntries
}
