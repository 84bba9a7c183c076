// Package loom is a text buffer engine for editors and language
// tooling. Text is stored in an immutable rope, so every edit produces
// a new version that shares structure with the old one; snapshots,
// undo, and concurrent reads all fall out of that one property.
//
// The Document type is the front door. It composes the subpackages:
//
//   - rope: the balanced, structurally shared tree that holds the text
//   - buffer: a mutable document with validated edits and coordinate
//     conversion (byte offsets, line/column points, UTF-16 positions)
//   - history: snapshot-based undo and redo with grouping
//   - tracking: named, handle-addressed snapshot retention
//   - config: JSON settings for all of the above
//
// A minimal session:
//
//	doc := loom.NewFromString("hello world", loom.DefaultOptions())
//	doc.Insert(5, ",")
//	doc.Undo()
//
// Reads never block edits for long: take a Snapshot and iterate it at
// leisure while writers continue.
package loom
