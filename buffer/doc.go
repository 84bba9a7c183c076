// Package buffer provides a thread-safe text buffer built on top of the
// rope data structure. It is the primary mutable surface of the engine.
//
// The buffer package provides:
//
//   - Thread-safe read/write access via sync.RWMutex
//   - Offset and boundary validation: edits that fall outside the text or
//     inside a multi-byte character are rejected with sentinel errors
//   - Coordinate conversion between byte offsets, line/column points, and
//     UTF-16 points for LSP compatibility
//   - Read-only snapshots that share storage with the live buffer
//   - Line ending detection and normalization
//   - Revision tracking: every successful mutation gets a fresh RevisionID
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("Hello, World!")
//	buf.Insert(7, "Beautiful ")   // "Hello, Beautiful World!"
//	buf.Delete(0, 7)              // "Beautiful World!"
//
//	snap := buf.Snapshot()
//	go func() {
//	    text := snap.Text() // unaffected by later edits
//	}()
//
// Snapshots are the unit of history: the history package stores them, and
// Buffer.Restore reinstates one wholesale for undo and redo.
package buffer
