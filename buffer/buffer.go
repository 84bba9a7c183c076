package buffer

import (
	"errors"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/loomtext/loom/rope"
)

// Errors returned by buffer operations. Offset and boundary violations
// surface the rope's sentinels so callers can test either layer uniformly.
var (
	ErrOffsetOutOfRange = rope.ErrOutOfRange
	ErrInvalidBoundary  = rope.ErrInvalidBoundary
	ErrEditsOverlap     = errors.New("edits overlap or are not in reverse order")
)

// LineEnding specifies the line ending style.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
	LineEndingCR                     // Old Mac: \r
)

// String returns the escaped representation of the line ending.
func (le LineEnding) String() string {
	switch le {
	case LineEndingCRLF:
		return "\\r\\n"
	case LineEndingCR:
		return "\\r"
	default:
		return "\\n"
	}
}

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// Buffer wraps a rope with editor-level state: line ending style, tab
// width, and a revision ID that changes on every successful mutation.
// All methods are safe for concurrent use.
type Buffer struct {
	mu         sync.RWMutex
	rope       rope.Rope
	revisionID RevisionID
	lineEnding LineEnding
	tabWidth   int
}

// NewBuffer creates an empty buffer.
func NewBuffer(opts ...Option) *Buffer {
	b := &Buffer{
		rope:       rope.New(),
		revisionID: NewRevisionID(),
		lineEnding: LineEndingLF,
		tabWidth:   4,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewBufferFromString creates a buffer with initial content. The content
// is normalized to the buffer's line ending style.
func NewBufferFromString(s string, opts ...Option) *Buffer {
	b := NewBuffer(opts...)
	b.rope = rope.FromString(b.normalizeLineEndings(s))
	return b
}

// NewBufferFromReader creates a buffer from an io.Reader.
func NewBufferFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	b := NewBuffer(opts...)

	// Normalization needs the whole text up front: a CRLF pair may be
	// split across read boundaries.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	b.rope = rope.FromString(b.normalizeLineEndings(string(data)))
	return b, nil
}

// normalizeLineEndings converts all line endings to the buffer's style.
func (b *Buffer) normalizeLineEndings(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	switch b.lineEnding {
	case LineEndingCRLF:
		return strings.ReplaceAll(s, "\n", "\r\n")
	case LineEndingCR:
		return strings.ReplaceAll(s, "\n", "\r")
	}
	return s
}

// Read operations

// Text returns the full buffer content. For large buffers, prefer
// TextRange or the snapshot iterators.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.String()
}

// TextRange returns the text in [start, end).
func (b *Buffer) TextRange(start, end ByteOffset) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.Slice(start, end)
}

// Len returns the total byte length of the buffer.
func (b *Buffer) Len() ByteOffset {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.Len()
}

// LineCount returns the number of lines.
func (b *Buffer) LineCount() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.LineCount()
}

// LineText returns the text of a line without its newline.
func (b *Buffer) LineText(line uint32) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.LineText(line)
}

// LineLen returns the byte length of a line, excluding its newline.
func (b *Buffer) LineLen(line uint32) (int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	start, err := b.rope.LineStartOffset(line)
	if err != nil {
		return 0, err
	}
	end, err := b.rope.LineEndOffset(line)
	if err != nil {
		return 0, err
	}
	return int(end - start), nil
}

// ByteAt returns the byte at the given offset.
func (b *Buffer) ByteAt(offset ByteOffset) (byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.ByteAt(offset)
}

// RuneAt decodes the rune starting at the given byte offset.
func (b *Buffer) RuneAt(offset ByteOffset) (rune, int, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.RuneAt(offset)
}

// Coordinate conversion

// OffsetToPoint converts a byte offset to line/column.
func (b *Buffer) OffsetToPoint(offset ByteOffset) (Point, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.OffsetToPoint(offset)
}

// PointToOffset converts line/column to a byte offset, clamping the
// column to the line length.
func (b *Buffer) PointToOffset(point Point) (ByteOffset, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.PointToOffset(point)
}

// LineOf returns the 0-indexed line containing the byte at offset.
func (b *Buffer) LineOf(offset ByteOffset) (uint32, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.LineOf(offset)
}

// OffsetToPointUTF16 converts a byte offset to a UTF-16 line/column.
func (b *Buffer) OffsetToPointUTF16(offset ByteOffset) (PointUTF16, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return offsetToPointUTF16(b.rope, offset)
}

// PointUTF16ToOffset converts a UTF-16 line/column to a byte offset.
func (b *Buffer) PointUTF16ToOffset(point PointUTF16) (ByteOffset, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return pointUTF16ToOffset(b.rope, point)
}

// LineStartOffset returns the byte offset of the start of a line.
func (b *Buffer) LineStartOffset(line uint32) (ByteOffset, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.LineStartOffset(line)
}

// LineEndOffset returns the byte offset of the end of a line, before its
// newline.
func (b *Buffer) LineEndOffset(line uint32) (ByteOffset, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.LineEndOffset(line)
}

// Write operations

// Insert places text at the given offset and returns the end position of
// the inserted text. The offset must lie on a character boundary.
func (b *Buffer) Insert(offset ByteOffset, text string) (ByteOffset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	text = b.normalizeLineEndings(text)
	next, err := b.rope.Insert(offset, text)
	if err != nil {
		return 0, err
	}
	b.rope = next
	b.revisionID = NewRevisionID()
	return offset + ByteOffset(len(text)), nil
}

// Delete removes the text in [start, end). Both ends must lie on
// character boundaries.
func (b *Buffer) Delete(start, end ByteOffset) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	next, err := b.rope.Delete(start, end)
	if err != nil {
		return err
	}
	b.rope = next
	b.revisionID = NewRevisionID()
	return nil
}

// Replace substitutes [start, end) with text and returns the end position
// of the replacement.
func (b *Buffer) Replace(start, end ByteOffset, text string) (ByteOffset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	text = b.normalizeLineEndings(text)
	next, err := b.rope.Replace(start, end, text)
	if err != nil {
		return 0, err
	}
	b.rope = next
	b.revisionID = NewRevisionID()
	return start + ByteOffset(len(text)), nil
}

// ApplyEdit applies a single edit and reports what changed.
func (b *Buffer) ApplyEdit(edit Edit) (EditResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	oldText, err := b.rope.Slice(edit.Range.Start, edit.Range.End)
	if err != nil {
		return EditResult{}, err
	}
	text := b.normalizeLineEndings(edit.NewText)
	next, err := b.rope.Replace(edit.Range.Start, edit.Range.End, text)
	if err != nil {
		return EditResult{}, err
	}
	b.rope = next
	b.revisionID = NewRevisionID()

	newEnd := edit.Range.Start + ByteOffset(len(text))
	return EditResult{
		OldRange: edit.Range,
		NewRange: Range{Start: edit.Range.Start, End: newEnd},
		OldText:  oldText,
		Delta:    int64(len(text)) - int64(edit.Range.Len()),
	}, nil
}

// ApplyEdits applies multiple edits atomically. Edits must be sorted in
// reverse order (highest offset first) and must not overlap, so earlier
// edits cannot invalidate the offsets of later ones.
func (b *Buffer) ApplyEdits(edits []Edit) error {
	if len(edits) == 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i := 1; i < len(edits); i++ {
		if edits[i].Range.End > edits[i-1].Range.Start {
			return ErrEditsOverlap
		}
	}
	ropeLen := b.rope.Len()
	for _, edit := range edits {
		if edit.Range.Start < 0 || edit.Range.Start > edit.Range.End ||
			edit.Range.End > ropeLen {
			return ErrOffsetOutOfRange
		}
	}

	// Validate boundaries against the unedited text so a bad edit in the
	// middle of the batch cannot leave the buffer half-updated.
	for _, edit := range edits {
		if !b.rope.IsBoundary(edit.Range.Start) || !b.rope.IsBoundary(edit.Range.End) {
			return ErrInvalidBoundary
		}
	}

	next := b.rope
	for _, edit := range edits {
		text := b.normalizeLineEndings(edit.NewText)
		var err error
		next, err = next.Replace(edit.Range.Start, edit.Range.End, text)
		if err != nil {
			return err
		}
	}

	b.rope = next
	b.revisionID = NewRevisionID()
	return nil
}

// Buffer state

// Rope returns the current rope value. The rope is immutable, so the
// caller holds a consistent snapshot of the content.
func (b *Buffer) Rope() rope.Rope {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope
}

// RevisionID returns the current revision ID.
func (b *Buffer) RevisionID() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revisionID
}

// IsEmpty returns true if the buffer is empty.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.IsEmpty()
}

// LineEnding returns the buffer's line ending style.
func (b *Buffer) LineEnding() LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnding
}

// TabWidth returns the buffer's tab width.
func (b *Buffer) TabWidth() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tabWidth
}

// SetLineEnding sets the line ending style for future writes. Existing
// content is not converted.
func (b *Buffer) SetLineEnding(le LineEnding) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lineEnding = le
}

// SetTabWidth sets the buffer's tab width.
func (b *Buffer) SetTabWidth(width int) {
	if width <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tabWidth = width
}

// Snapshot returns a read-only view of the current state, safe for
// concurrent use and unaffected by later edits.
func (b *Buffer) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return &Snapshot{
		rope:       b.rope,
		revisionID: b.revisionID,
		lineEnding: b.lineEnding,
		tabWidth:   b.tabWidth,
	}
}

// Restore replaces the buffer content with a snapshot's content. Used by
// undo and redo; the buffer gets the snapshot's revision ID back, so
// restoring is indistinguishable from never having left that revision.
func (b *Buffer) Restore(s *Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rope = s.rope
	b.revisionID = s.revisionID
	b.lineEnding = s.lineEnding
	b.tabWidth = s.tabWidth
}

// UTF-16 conversion helpers shared by Buffer and Snapshot.

func offsetToPointUTF16(r rope.Rope, offset ByteOffset) (PointUTF16, error) {
	point, err := r.OffsetToPoint(offset)
	if err != nil {
		return PointUTF16{}, err
	}
	lineStart, err := r.LineStartOffset(point.Line)
	if err != nil {
		return PointUTF16{}, err
	}
	lineText, err := r.Slice(lineStart, offset)
	if err != nil {
		return PointUTF16{}, err
	}
	return PointUTF16{Line: point.Line, Column: utf16ColumnFromString(lineText)}, nil
}

func pointUTF16ToOffset(r rope.Rope, point PointUTF16) (ByteOffset, error) {
	lineStart, err := r.LineStartOffset(point.Line)
	if err != nil {
		return 0, err
	}
	lineEnd, err := r.LineEndOffset(point.Line)
	if err != nil {
		return 0, err
	}
	lineText, err := r.Slice(lineStart, lineEnd)
	if err != nil {
		return 0, err
	}
	return lineStart + ByteOffset(byteOffsetFromUTF16Column(lineText, point.Column)), nil
}

// utf16ColumnFromString counts UTF-16 code units in a string.
func utf16ColumnFromString(s string) uint32 {
	var col uint32
	for _, r := range s {
		if r >= 0x10000 {
			col += 2 // surrogate pair
		} else {
			col++
		}
	}
	return col
}

// byteOffsetFromUTF16Column converts a UTF-16 column to a byte offset
// within a line, clamping past-end columns to the line length.
func byteOffsetFromUTF16Column(line string, utf16Col uint32) int {
	var col uint32
	var offset int
	for _, r := range line {
		if col >= utf16Col {
			break
		}
		if r >= 0x10000 {
			col += 2
		} else {
			col++
		}
		offset += utf8.RuneLen(r)
	}
	return offset
}
