package rope

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Rope is an immutable, structurally shared text tree. Every operation
// returns a new Rope value and never modifies the receiver, which makes a
// Rope a snapshot: any number of goroutines may read one concurrently
// while a writer builds the next version.
type Rope struct {
	root *node
}

// New returns the canonical empty rope: a single empty leaf.
func New() Rope {
	return Rope{root: emptyLeaf()}
}

// FromString builds a rope over s. s must be valid UTF-8.
func FromString(s string) Rope {
	if len(s) == 0 {
		return New()
	}
	return fromChunks(carveChunks(s))
}

// FromReader builds a rope by streaming from r.
func FromReader(r io.Reader) (Rope, error) {
	var b Builder
	if _, err := b.ReadFrom(r); err != nil {
		return Rope{}, err
	}
	return b.Build(), nil
}

// fromChunks assembles a balanced tree bottom-up from ordered chunks.
func fromChunks(chunks []Chunk) Rope {
	if len(chunks) == 0 {
		return New()
	}

	var leaves []*node
	for i := 0; i < len(chunks); i += MaxLeafChunks {
		end := min(i+MaxLeafChunks, len(chunks))
		group := make([]Chunk, end-i)
		copy(group, chunks[i:end])
		leaves = append(leaves, newLeaf(group))
	}
	return Rope{root: assemble(leaves)}
}

// Len returns the total byte length.
func (r Rope) Len() ByteOffset {
	if r.root == nil {
		return 0
	}
	return r.root.length()
}

// IsEmpty reports whether the rope holds no text.
func (r Rope) IsEmpty() bool { return r.Len() == 0 }

// LineCount returns the number of lines, which is newlines + 1. The empty
// rope has one (empty) line.
func (r Rope) LineCount() uint32 {
	if r.root == nil {
		return 1
	}
	return r.root.summary.Lines + 1
}

// Summary returns the aggregated metrics for the whole rope in O(1).
func (r Rope) Summary() Summary {
	if r.root == nil {
		return EmptySummary()
	}
	return r.root.summary
}

// String materializes the full text. Use sparingly on large ropes.
func (r Rope) String() string {
	if r.root == nil {
		return ""
	}
	var sb strings.Builder
	sb.Grow(int(r.Len()))
	r.root.appendTo(&sb)
	return sb.String()
}

// Slice returns the text in [start, end). Bounds outside [0, Len] fail
// with ErrOutOfRange.
func (r Rope) Slice(start, end ByteOffset) (string, error) {
	if start < 0 || end < start || end > r.Len() {
		return "", ErrOutOfRange
	}
	if start == end || r.root == nil {
		return "", nil
	}
	var sb strings.Builder
	sb.Grow(int(end - start))
	r.root.appendRange(&sb, start, end)
	return sb.String(), nil
}

// ByteAt returns the byte at offset, or false when offset is out of range.
func (r Rope) ByteAt(offset ByteOffset) (byte, bool) {
	if r.root == nil || offset < 0 || offset >= r.Len() {
		return 0, false
	}
	return r.root.byteAt(offset)
}

// RuneAt decodes the rune beginning at offset. It fails with
// ErrOutOfRange for offsets outside [0, Len) and ErrInvalidBoundary when
// offset lands inside a multi-byte rune.
func (r Rope) RuneAt(offset ByteOffset) (rune, int, error) {
	if offset < 0 || offset >= r.Len() {
		return 0, 0, ErrOutOfRange
	}
	b, _ := r.ByteAt(offset)
	if !isRuneStart(b) {
		return 0, 0, ErrInvalidBoundary
	}

	end := min(offset+utf8.UTFMax, r.Len())
	s, _ := r.Slice(offset, end)
	rn, size := utf8.DecodeRuneInString(s)
	return rn, size, nil
}

// IsBoundary reports whether offset sits on a rune boundary. Both ends of
// the rope count as boundaries.
func (r Rope) IsBoundary(offset ByteOffset) bool {
	if offset == 0 || offset == r.Len() {
		return true
	}
	if offset < 0 || offset > r.Len() {
		return false
	}
	b, ok := r.ByteAt(offset)
	return ok && isRuneStart(b)
}

// checkEditPoint validates an edit offset: inside [0, limit] and on a
// rune boundary.
func (r Rope) checkEditPoint(offset ByteOffset) error {
	if offset < 0 || offset > r.Len() {
		return ErrOutOfRange
	}
	if !r.IsBoundary(offset) {
		return ErrInvalidBoundary
	}
	return nil
}

// Insert returns a new rope with text placed at offset. Inserting at
// offset == Len appends. Inserting the empty string is a no-op that
// returns the receiver unchanged, with no allocation.
func (r Rope) Insert(offset ByteOffset, text string) (Rope, error) {
	if err := r.checkEditPoint(offset); err != nil {
		return Rope{}, err
	}
	if len(text) == 0 {
		return r, nil
	}

	if r.root == nil || r.Len() == 0 {
		return FromString(text), nil
	}
	if offset == 0 {
		return FromString(text).Concat(r), nil
	}
	if offset == r.Len() {
		return r.Concat(FromString(text)), nil
	}

	left, right := r.root.split(offset)
	mid := FromString(text)
	out := Rope{root: join(join(left, mid.root), right)}
	debugValidate(out, "Insert")
	return out, nil
}

// Delete returns a new rope with [start, end) removed. Deleting an empty
// range is a no-op returning the receiver; deleting everything yields the
// canonical empty rope. Ranges that cross a rune boundary mid-character
// fail with ErrInvalidBoundary rather than producing invalid UTF-8.
func (r Rope) Delete(start, end ByteOffset) (Rope, error) {
	if start < 0 || end < start || end > r.Len() {
		return Rope{}, ErrOutOfRange
	}
	if !r.IsBoundary(start) || !r.IsBoundary(end) {
		return Rope{}, ErrInvalidBoundary
	}
	if start == end {
		return r, nil
	}
	if start == 0 && end == r.Len() {
		return New(), nil
	}

	if start == 0 {
		_, right := r.root.split(end)
		return Rope{root: right}, nil
	}
	if end == r.Len() {
		left, _ := r.root.split(start)
		return Rope{root: left}, nil
	}

	left, rest := r.root.split(start)
	_, right := rest.split(end - start)
	out := Rope{root: join(left, right)}
	debugValidate(out, "Delete")
	return out, nil
}

// Replace substitutes [start, end) with text.
func (r Rope) Replace(start, end ByteOffset, text string) (Rope, error) {
	deleted, err := r.Delete(start, end)
	if err != nil {
		return Rope{}, err
	}
	return deleted.Insert(start, text)
}

// SplitAt divides the rope into [0, offset) and [offset, Len).
func (r Rope) SplitAt(offset ByteOffset) (Rope, Rope, error) {
	if err := r.checkEditPoint(offset); err != nil {
		return Rope{}, Rope{}, err
	}
	if r.root == nil || offset == 0 {
		return New(), r, nil
	}
	if offset == r.Len() {
		return r, New(), nil
	}
	left, right := r.root.split(offset)
	return Rope{root: left}, Rope{root: right}, nil
}

// Concat joins two ropes. Originals are unchanged and their subtrees are
// shared with the result.
func (r Rope) Concat(other Rope) Rope {
	if r.root == nil || r.Len() == 0 {
		return other
	}
	if other.root == nil || other.Len() == 0 {
		return r
	}
	return Rope{root: join(r.root, other.root)}
}

// LineStartOffset returns the byte offset where line begins. Lines are
// 0-indexed; lines outside [0, LineCount) fail with ErrOutOfRange.
func (r Rope) LineStartOffset(line uint32) (ByteOffset, error) {
	if line >= r.LineCount() {
		return 0, ErrOutOfRange
	}
	if line == 0 || r.root == nil {
		return 0, nil
	}

	c := NewCursor(r)
	if !c.SeekLine(line) {
		return 0, ErrOutOfRange
	}
	return c.Offset(), nil
}

// LineEndOffset returns the byte offset just past the last character of
// line, excluding its line terminator. Both "\n" and "\r\n" terminators
// are recognized.
func (r Rope) LineEndOffset(line uint32) (ByteOffset, error) {
	count := r.LineCount()
	if line >= count {
		return 0, ErrOutOfRange
	}
	if line == count-1 {
		return r.Len(), nil
	}
	next, err := r.LineStartOffset(line + 1)
	if err != nil {
		return 0, err
	}
	end := next - 1
	if b, ok := r.ByteAt(end - 1); ok && b == '\r' {
		end--
	}
	return end, nil
}

// LineText returns the text of line without its trailing newline.
func (r Rope) LineText(line uint32) (string, error) {
	start, err := r.LineStartOffset(line)
	if err != nil {
		return "", err
	}
	end, err := r.LineEndOffset(line)
	if err != nil {
		return "", err
	}
	return r.Slice(start, end)
}

// LineOf returns the 0-indexed line containing the byte at offset.
// Offsets outside [0, Len) fail with ErrOutOfRange.
func (r Rope) LineOf(offset ByteOffset) (uint32, error) {
	if offset < 0 || offset >= r.Len() {
		return 0, ErrOutOfRange
	}
	p, err := r.OffsetToPoint(offset)
	if err != nil {
		return 0, err
	}
	return p.Line, nil
}

// OffsetToPoint converts a byte offset to a line/column coordinate.
// Offset == Len is accepted and maps to the position past the last line.
func (r Rope) OffsetToPoint(offset ByteOffset) (Point, error) {
	if offset < 0 || offset > r.Len() {
		return Point{}, ErrOutOfRange
	}
	if offset == 0 || r.root == nil {
		return Point{}, nil
	}
	if offset == r.Len() {
		last := r.LineCount() - 1
		start, err := r.LineStartOffset(last)
		if err != nil {
			return Point{}, err
		}
		return Point{Line: last, Column: uint32(r.Len() - start)}, nil
	}

	c := NewCursor(r)
	if !c.SeekOffset(offset) {
		return Point{}, ErrInvalidBoundary
	}
	return c.Point(), nil
}

// PointToOffset converts a line/column coordinate to a byte offset,
// clamping the column to the line's length.
func (r Rope) PointToOffset(p Point) (ByteOffset, error) {
	start, err := r.LineStartOffset(p.Line)
	if err != nil {
		return 0, err
	}
	end, err := r.LineEndOffset(p.Line)
	if err != nil {
		return 0, err
	}
	if ByteOffset(p.Column) >= end-start {
		return end, nil
	}
	return start + ByteOffset(p.Column), nil
}

// Equals reports whether two ropes hold identical text. Content is
// compared chunk by chunk; structure is irrelevant.
func (r Rope) Equals(other Rope) bool {
	if r.Len() != other.Len() {
		return false
	}

	a, b := r.Chunks(), other.Chunks()
	var sa, sb string
	for {
		if len(sa) == 0 {
			if !a.Next() {
				return len(sb) == 0 && !b.Next()
			}
			sa = a.Chunk().String()
		}
		if len(sb) == 0 {
			if !b.Next() {
				return false
			}
			sb = b.Chunk().String()
		}
		n := min(len(sa), len(sb))
		if sa[:n] != sb[:n] {
			return false
		}
		sa, sb = sa[n:], sb[n:]
	}
}

// Height returns the tree height, counting the root level as 1. Exposed
// for balance testing and diagnostics.
func (r Rope) Height() int {
	if r.root == nil {
		return 0
	}
	return int(r.root.height) + 1
}
