package buffer

import (
	"github.com/loomtext/loom/rope"
)

// Snapshot is a read-only view of a buffer at a specific revision. It is
// safe for concurrent use and never changes, even while the originating
// buffer keeps editing: the underlying rope is immutable and shared.
type Snapshot struct {
	rope       rope.Rope
	revisionID RevisionID
	lineEnding LineEnding
	tabWidth   int
}

// Text returns the full snapshot content.
func (s *Snapshot) Text() string {
	return s.rope.String()
}

// TextRange returns the text in [start, end).
func (s *Snapshot) TextRange(start, end ByteOffset) (string, error) {
	return s.rope.Slice(start, end)
}

// Len returns the total byte length of the snapshot.
func (s *Snapshot) Len() ByteOffset {
	return s.rope.Len()
}

// LineCount returns the number of lines.
func (s *Snapshot) LineCount() uint32 {
	return s.rope.LineCount()
}

// LineText returns the text of a line without its newline.
func (s *Snapshot) LineText(line uint32) (string, error) {
	return s.rope.LineText(line)
}

// LineLen returns the byte length of a line, excluding its newline.
func (s *Snapshot) LineLen(line uint32) (int, error) {
	start, err := s.rope.LineStartOffset(line)
	if err != nil {
		return 0, err
	}
	end, err := s.rope.LineEndOffset(line)
	if err != nil {
		return 0, err
	}
	return int(end - start), nil
}

// ByteAt returns the byte at the given offset.
func (s *Snapshot) ByteAt(offset ByteOffset) (byte, bool) {
	return s.rope.ByteAt(offset)
}

// RuneAt decodes the rune starting at the given byte offset.
func (s *Snapshot) RuneAt(offset ByteOffset) (rune, int, error) {
	return s.rope.RuneAt(offset)
}

// OffsetToPoint converts a byte offset to line/column.
func (s *Snapshot) OffsetToPoint(offset ByteOffset) (Point, error) {
	return s.rope.OffsetToPoint(offset)
}

// PointToOffset converts line/column to a byte offset.
func (s *Snapshot) PointToOffset(point Point) (ByteOffset, error) {
	return s.rope.PointToOffset(point)
}

// LineOf returns the 0-indexed line containing the byte at offset.
func (s *Snapshot) LineOf(offset ByteOffset) (uint32, error) {
	return s.rope.LineOf(offset)
}

// OffsetToPointUTF16 converts a byte offset to a UTF-16 line/column.
func (s *Snapshot) OffsetToPointUTF16(offset ByteOffset) (PointUTF16, error) {
	return offsetToPointUTF16(s.rope, offset)
}

// PointUTF16ToOffset converts a UTF-16 line/column to a byte offset.
func (s *Snapshot) PointUTF16ToOffset(point PointUTF16) (ByteOffset, error) {
	return pointUTF16ToOffset(s.rope, point)
}

// LineStartOffset returns the byte offset of the start of a line.
func (s *Snapshot) LineStartOffset(line uint32) (ByteOffset, error) {
	return s.rope.LineStartOffset(line)
}

// LineEndOffset returns the byte offset of the end of a line, before its
// newline.
func (s *Snapshot) LineEndOffset(line uint32) (ByteOffset, error) {
	return s.rope.LineEndOffset(line)
}

// RevisionID returns the revision this snapshot was taken at.
func (s *Snapshot) RevisionID() RevisionID {
	return s.revisionID
}

// IsEmpty returns true if the snapshot holds no text.
func (s *Snapshot) IsEmpty() bool {
	return s.rope.IsEmpty()
}

// LineEnding returns the snapshot's line ending style.
func (s *Snapshot) LineEnding() LineEnding {
	return s.lineEnding
}

// TabWidth returns the snapshot's tab width.
func (s *Snapshot) TabWidth() int {
	return s.tabWidth
}

// Rope returns the underlying immutable rope.
func (s *Snapshot) Rope() rope.Rope {
	return s.rope
}

// Cursor returns a path-caching cursor positioned at the start of the
// snapshot.
func (s *Snapshot) Cursor() *rope.Cursor {
	return rope.NewCursor(s.rope)
}

// Chunks returns an iterator over the snapshot's storage chunks.
func (s *Snapshot) Chunks() *rope.ChunkIterator {
	return s.rope.Chunks()
}

// Lines returns an iterator over the snapshot's lines.
func (s *Snapshot) Lines() *rope.LineIterator {
	return s.rope.Lines()
}

// Runes returns an iterator over the snapshot's runes.
func (s *Snapshot) Runes() *rope.RuneIterator {
	return s.rope.Runes()
}

// Graphemes returns an iterator over the snapshot's extended grapheme
// clusters.
func (s *Snapshot) Graphemes() *rope.GraphemeIterator {
	return s.rope.Graphemes()
}
