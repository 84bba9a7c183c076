// Package history provides snapshot-based undo and redo for text buffers.
//
// Instead of recording inverse operations, the history stores whole buffer
// snapshots. Snapshots share rope structure between versions, so an undo
// entry costs O(log n) nodes rather than a copy of the document, and
// restoring one is a pointer swap with no replay step that could drift
// from the real edit sequence.
//
// The caller drives the exchange protocol:
//
//	h := history.NewHistory(0)
//
//	prev := buf.Snapshot()
//	buf.Insert(5, "x")
//	h.Commit(prev)
//
//	if snap, err := h.Undo(buf.Snapshot()); err == nil {
//	    buf.Restore(snap)
//	}
//
// Committing a new edit clears the redo stack. Groups opened with
// BeginGroup collapse a run of commits into a single undo step. The stack
// depth is bounded; the oldest entries fall off first.
package history
