package rope

import "unicode/utf8"

// iterFrame tracks one level of an in-order chunk walk.
type iterFrame struct {
	node     *node
	childIdx int
	chunkIdx int
	offset   ByteOffset // absolute offset at the start of node
}

// ChunkIterator walks every chunk of a rope in document order.
type ChunkIterator struct {
	rope    Rope
	stack   []iterFrame
	started bool
	chunk   Chunk
	start   ByteOffset
}

// Chunks returns an iterator over all chunks in the rope.
func (r Rope) Chunks() *ChunkIterator {
	return &ChunkIterator{
		rope:  r,
		stack: make([]iterFrame, 0, 16),
	}
}

// Next advances to the next chunk, reporting false when exhausted.
func (it *ChunkIterator) Next() bool {
	if !it.started {
		it.started = true
		if it.rope.root == nil {
			return false
		}
		it.stack = append(it.stack, iterFrame{node: it.rope.root})
		return it.advance()
	}

	if len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		if top.node.isLeaf() {
			top.chunkIdx++
		}
	}
	return it.advance()
}

func (it *ChunkIterator) advance() bool {
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		n := top.node

		if n.isLeaf() {
			if top.chunkIdx < len(n.chunks) {
				off := top.offset
				for i := 0; i < top.chunkIdx; i++ {
					off += ByteOffset(n.chunks[i].Len())
				}
				it.chunk = n.chunks[top.chunkIdx]
				it.start = off
				return true
			}
			it.pop()
			continue
		}

		if top.childIdx < len(n.children) {
			off := top.offset
			for i := 0; i < top.childIdx; i++ {
				off += n.childSums[i].Bytes
			}
			it.stack = append(it.stack, iterFrame{
				node:   n.children[top.childIdx],
				offset: off,
			})
			continue
		}
		it.pop()
	}
	return false
}

func (it *ChunkIterator) pop() {
	it.stack = it.stack[:len(it.stack)-1]
	if len(it.stack) > 0 {
		it.stack[len(it.stack)-1].childIdx++
	}
}

// Chunk returns the current chunk.
func (it *ChunkIterator) Chunk() Chunk { return it.chunk }

// Offset returns the absolute byte offset where the current chunk begins.
func (it *ChunkIterator) Offset() ByteOffset { return it.start }

// LineIterator yields the lines of a rope in order, without newlines.
type LineIterator struct {
	cursor  *Cursor
	line    uint32
	start   ByteOffset
	end     ByteOffset
	text    string
	started bool
	done    bool
}

// Lines returns an iterator over all lines. An empty rope yields a single
// empty line, matching LineCount.
func (r Rope) Lines() *LineIterator {
	return &LineIterator{cursor: NewCursor(r)}
}

// Next advances to the next line, reporting false when exhausted.
func (it *LineIterator) Next() bool {
	if it.done {
		return false
	}

	if !it.started {
		it.started = true
	} else {
		it.line++
		if it.line >= it.cursor.rope.LineCount() {
			it.done = true
			return false
		}
	}

	r := it.cursor.rope
	start, err := r.LineStartOffset(it.line)
	if err != nil {
		it.done = true
		return false
	}
	end, err := r.LineEndOffset(it.line)
	if err != nil {
		it.done = true
		return false
	}
	it.start, it.end = start, end
	it.text, _ = r.Slice(start, end)
	return true
}

// Text returns the current line without its trailing newline.
func (it *LineIterator) Text() string { return it.text }

// Line returns the current 0-indexed line number.
func (it *LineIterator) Line() uint32 { return it.line }

// StartOffset returns the byte offset where the current line begins.
func (it *LineIterator) StartOffset() ByteOffset { return it.start }

// EndOffset returns the byte offset just past the current line's text.
func (it *LineIterator) EndOffset() ByteOffset { return it.end }

// RuneIterator yields the runes of a rope in order.
type RuneIterator struct {
	cursor  *Cursor
	current rune
	size    int
	offset  ByteOffset
	started bool
}

// Runes returns an iterator over all runes.
func (r Rope) Runes() *RuneIterator {
	return &RuneIterator{cursor: NewCursor(r)}
}

// Next advances to the next rune, reporting false when exhausted.
func (it *RuneIterator) Next() bool {
	if !it.started {
		it.started = true
	} else if !it.cursor.Next() {
		return false
	}
	if it.cursor.AtEnd() {
		return false
	}
	it.offset = it.cursor.Offset()
	it.current, it.size = it.cursor.Rune()
	return it.size > 0
}

// Rune returns the current rune.
func (it *RuneIterator) Rune() rune { return it.current }

// Size returns the byte width of the current rune.
func (it *RuneIterator) Size() int { return it.size }

// Offset returns the byte offset of the current rune.
func (it *RuneIterator) Offset() ByteOffset { return it.offset }

// ReverseRuneIterator yields runes from the end toward the start.
type ReverseRuneIterator struct {
	rope    Rope
	offset  ByteOffset
	current rune
	size    int
}

// ReverseRunes returns an iterator over runes in reverse document order.
func (r Rope) ReverseRunes() *ReverseRuneIterator {
	return &ReverseRuneIterator{rope: r, offset: r.Len()}
}

// Next steps to the previous rune, reporting false at the start.
func (it *ReverseRuneIterator) Next() bool {
	if it.offset == 0 {
		return false
	}

	it.offset--
	for it.offset > 0 {
		b, ok := it.rope.ByteAt(it.offset)
		if !ok {
			return false
		}
		if isRuneStart(b) {
			break
		}
		it.offset--
	}

	end := min(it.offset+utf8.UTFMax, it.rope.Len())
	s, err := it.rope.Slice(it.offset, end)
	if err != nil {
		return false
	}
	it.current, it.size = utf8.DecodeRuneInString(s)
	return it.size > 0
}

// Rune returns the current rune.
func (it *ReverseRuneIterator) Rune() rune { return it.current }

// Offset returns the byte offset of the current rune.
func (it *ReverseRuneIterator) Offset() ByteOffset { return it.offset }
