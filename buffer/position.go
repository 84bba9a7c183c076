package buffer

import (
	"fmt"
	"sync/atomic"

	"github.com/loomtext/loom/rope"
)

// ByteOffset is a byte position in the buffer. It is the fundamental
// position type and indexes directly into the text.
type ByteOffset = rope.ByteOffset

// Point is a 0-indexed line/column position with the column measured in
// bytes. It is shared with the rope layer so conversions need no copying.
type Point = rope.Point

// PointUTF16 is a line and column position whose column is measured in
// UTF-16 code units. The LSP protocol and several editor frontends speak
// UTF-16, so conversions to and from this type live at the buffer layer.
type PointUTF16 struct {
	Line   uint32
	Column uint32
}

// String returns a human-readable representation of the point.
func (p PointUTF16) String() string {
	return fmt.Sprintf("(%d:%d utf16)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p PointUTF16) Compare(other PointUTF16) int {
	switch {
	case p.Line < other.Line:
		return -1
	case p.Line > other.Line:
		return 1
	case p.Column < other.Column:
		return -1
	case p.Column > other.Column:
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p PointUTF16) Before(other PointUTF16) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p PointUTF16) After(other PointUTF16) bool {
	return p.Compare(other) > 0
}

// IsZero returns true if this is the zero point (0:0).
func (p PointUTF16) IsZero() bool {
	return p.Line == 0 && p.Column == 0
}

// RevisionID uniquely identifies a buffer revision. Every successful
// mutation produces a fresh one; equal IDs imply identical content.
type RevisionID uint64

var revisionCounter atomic.Uint64

// NewRevisionID generates a new process-unique revision ID.
func NewRevisionID() RevisionID {
	return RevisionID(revisionCounter.Add(1))
}
