// Package rope provides an immutable rope data structure for efficient text
// storage and manipulation.
//
// A rope is a balanced tree whose leaves hold small UTF-8 text chunks and
// whose internal nodes cache aggregated metrics (byte count, UTF-16 length,
// newline count, longest line). This implementation uses a B+ tree variant
// with a bounded fan-out for cache locality and predictable worst-case
// depth.
//
// Key properties:
//   - O(log n) insertion, deletion, split, and concatenation
//   - Edits return new ropes; the originals are never modified, and
//     untouched subtrees are shared between versions
//   - O(log n) line/offset and offset/point conversion via the cached
//     metrics, O(1) totals at the root
//   - Edits that would split a multi-byte character are rejected with
//     ErrInvalidBoundary, so every rope is always valid UTF-8
//   - Any number of goroutines may read a rope while a writer derives the
//     next version
//
// Basic usage:
//
//	r := rope.FromString("hello world")
//	r, _ = r.Insert(5, ",")        // "hello, world"
//	r, _ = r.Delete(0, 7)          // "world"
//	text := r.String()             // "world"
//
// Sequential access goes through Cursor, which caches its descent path so
// that stepping forward is amortized O(1) instead of O(log n) per move.
package rope
