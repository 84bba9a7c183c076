package rope

import "unicode/utf8"

// Cursor is a lazy traversal over one immutable rope. It caches the path
// from the root to the current leaf, so seeking costs O(log n) while
// stepping to a neighboring position is amortized O(1): the cursor only
// re-descends from the lowest ancestor whose next child is unvisited.
//
// A cursor never observes edits made after its rope value was taken; it
// reads a consistent historical view forever.
type Cursor struct {
	rope Rope
	path []pathFrame

	offset   ByteOffset
	point    Point
	pointSet bool

	leaf     *node // current leaf, nil once past the end
	chunkIdx int
	chunkOff int
}

// pathFrame records one level of the root-to-leaf descent.
type pathFrame struct {
	node     *node
	childIdx int
	offset   ByteOffset // absolute offset at the start of node.children[childIdx]
	line     uint32     // newlines before that child
}

// NewCursor returns a cursor positioned at the start of r.
func NewCursor(r Rope) *Cursor {
	c := &Cursor{
		rope: r,
		path: make([]pathFrame, 0, 16),
	}
	c.seekStart()
	return c
}

// Rope returns the snapshot this cursor traverses.
func (c *Cursor) Rope() Rope { return c.rope }

// Offset returns the current absolute byte offset.
func (c *Cursor) Offset() ByteOffset { return c.offset }

// AtStart reports whether the cursor sits at offset 0.
func (c *Cursor) AtStart() bool { return c.offset == 0 }

// AtEnd reports whether the cursor sits past the last byte.
func (c *Cursor) AtEnd() bool { return c.offset >= c.rope.Len() }

func (c *Cursor) seekStart() {
	c.path = c.path[:0]
	c.offset = 0
	c.point = Point{}
	c.pointSet = true

	if c.rope.root == nil {
		c.leaf = nil
		return
	}

	n := c.rope.root
	for !n.isLeaf() {
		c.path = append(c.path, pathFrame{node: n})
		n = n.children[0]
	}
	c.leaf = n
	c.chunkIdx = 0
	c.chunkOff = 0
}

// SeekOffset repositions the cursor at an absolute byte offset, which must
// lie in [0, Len] and on a rune boundary. Reports whether the seek
// succeeded; on failure the cursor is unchanged.
func (c *Cursor) SeekOffset(offset ByteOffset) bool {
	if offset < 0 || offset > c.rope.Len() || !c.rope.IsBoundary(offset) {
		return false
	}
	if offset == 0 {
		c.seekStart()
		return true
	}
	if offset == c.rope.Len() {
		c.seekEnd()
		return true
	}

	c.path = c.path[:0]
	c.offset = offset
	c.pointSet = false

	n := c.rope.root
	nodeStart := ByteOffset(0)
	nodeLine := uint32(0)

	for !n.isLeaf() {
		childStart := nodeStart
		childLine := nodeLine
		descended := false
		for i, sum := range n.childSums {
			if childStart+sum.Bytes > offset {
				c.path = append(c.path, pathFrame{
					node:     n,
					childIdx: i,
					offset:   childStart,
					line:     childLine,
				})
				n = n.children[i]
				nodeStart = childStart
				nodeLine = childLine
				descended = true
				break
			}
			childStart += sum.Bytes
			childLine += sum.Lines
		}
		if !descended {
			// Summaries and offset bounds disagree; treat as failure.
			c.seekStart()
			return false
		}
	}

	c.leaf = n
	chunkStart := nodeStart
	for i, chunk := range n.chunks {
		clen := ByteOffset(chunk.Len())
		if chunkStart+clen > offset {
			c.chunkIdx = i
			c.chunkOff = int(offset - chunkStart)
			return true
		}
		chunkStart += clen
	}

	c.chunkIdx = len(n.chunks) - 1
	if c.chunkIdx >= 0 {
		c.chunkOff = n.chunks[c.chunkIdx].Len()
	} else {
		c.chunkOff = 0
	}
	return true
}

func (c *Cursor) seekEnd() {
	c.path = c.path[:0]
	c.offset = c.rope.Len()
	c.pointSet = false

	if c.rope.root == nil {
		c.leaf = nil
		return
	}

	n := c.rope.root
	var off ByteOffset
	var line uint32
	for !n.isLeaf() {
		last := len(n.children) - 1
		for i := 0; i < last; i++ {
			off += n.childSums[i].Bytes
			line += n.childSums[i].Lines
		}
		c.path = append(c.path, pathFrame{node: n, childIdx: last, offset: off, line: line})
		n = n.children[last]
	}

	c.leaf = n
	if len(n.chunks) > 0 {
		c.chunkIdx = len(n.chunks) - 1
		c.chunkOff = n.chunks[c.chunkIdx].Len()
	} else {
		c.chunkIdx = 0
		c.chunkOff = 0
	}
}

// SeekLine repositions the cursor at the first byte of the given line.
// Reports whether the line exists.
func (c *Cursor) SeekLine(line uint32) bool {
	if c.rope.root == nil {
		return line == 0
	}
	if line == 0 {
		c.seekStart()
		return true
	}
	if line >= c.rope.LineCount() {
		return false
	}

	c.path = c.path[:0]
	c.pointSet = false

	n := c.rope.root
	var off ByteOffset
	var seen uint32

	for !n.isLeaf() {
		descended := false
		for i, sum := range n.childSums {
			if seen+sum.Lines >= line {
				c.path = append(c.path, pathFrame{
					node:     n,
					childIdx: i,
					offset:   off,
					line:     seen,
				})
				n = n.children[i]
				descended = true
				break
			}
			off += sum.Bytes
			seen += sum.Lines
		}
		if !descended {
			c.seekStart()
			return false
		}
	}

	c.leaf = n
	remaining := line - seen
	for i, chunk := range n.chunks {
		if chunk.NewlineCount() >= remaining {
			pos := chunk.newlines.Nth(remaining)
			if pos < 0 {
				c.seekStart()
				return false
			}
			c.chunkIdx = i
			c.chunkOff = pos + 1
			c.offset = off + ByteOffset(c.chunkOff)
			c.point = Point{Line: line}
			c.pointSet = true

			// Line start may coincide with the end of this chunk.
			if c.chunkOff >= chunk.Len() {
				c.advanceChunk()
			}
			return true
		}
		remaining -= chunk.NewlineCount()
		off += ByteOffset(chunk.Len())
	}

	c.seekStart()
	return false
}

// Point returns the line/column of the current position, computing it
// lazily from the cached path.
func (c *Cursor) Point() Point {
	if !c.pointSet {
		c.computePoint()
	}
	return c.point
}

func (c *Cursor) computePoint() {
	if c.leaf == nil {
		// Past the last leaf: the position is the end of the document.
		start := c.lineStartBefore(c.rope.Len())
		c.point = Point{
			Line:   c.rope.Summary().Lines,
			Column: uint32(c.rope.Len() - start),
		}
		c.pointSet = true
		return
	}

	// The deepest frame's line field counts every newline before the
	// current leaf's subtree.
	var line uint32
	if len(c.path) > 0 {
		line = c.path[len(c.path)-1].line
	}
	for i := 0; i < c.chunkIdx && i < len(c.leaf.chunks); i++ {
		line += c.leaf.chunks[i].NewlineCount()
	}
	if c.chunkIdx < len(c.leaf.chunks) {
		line += c.leaf.chunks[c.chunkIdx].BreaksInRange(0, c.chunkOff)
	}

	c.point = Point{
		Line:   line,
		Column: uint32(c.offset - c.LineStartOffset()),
	}
	c.pointSet = true
}

// LineStartOffset returns the absolute offset of the start of the line
// containing the cursor, using chunk newline indexes to avoid scanning.
func (c *Cursor) LineStartOffset() ByteOffset {
	if c.offset == 0 || c.leaf == nil {
		return c.lineStartSlow()
	}
	if c.chunkIdx >= len(c.leaf.chunks) {
		return c.lineStartSlow()
	}

	chunk := c.leaf.chunks[c.chunkIdx]
	if pos := chunk.newlines.Before(c.chunkOff); pos >= 0 {
		chunkStart := c.offset - ByteOffset(c.chunkOff)
		return chunkStart + ByteOffset(pos) + 1
	}

	chunkStart := c.offset - ByteOffset(c.chunkOff)
	for i := c.chunkIdx - 1; i >= 0; i-- {
		prev := c.leaf.chunks[i]
		chunkStart -= ByteOffset(prev.Len())
		if pos := prev.newlines.Last(); pos >= 0 {
			return chunkStart + ByteOffset(pos) + 1
		}
	}

	return c.lineStartBefore(chunkStart)
}

// lineStartSlow recomputes the line start via a line seek.
func (c *Cursor) lineStartSlow() ByteOffset {
	if c.offset == 0 {
		return 0
	}
	return c.lineStartBefore(c.offset)
}

// lineStartBefore finds the start of the line containing limit by walking
// chunks backwards from the document start side. Only reached when the
// current leaf holds no newline before the cursor.
func (c *Cursor) lineStartBefore(limit ByteOffset) ByteOffset {
	it := c.rope.Chunks()
	var best ByteOffset
	for it.Next() {
		start := it.Offset()
		if start >= limit {
			break
		}
		chunk := it.Chunk()
		end := min(int(limit-start), chunk.Len())
		if pos := chunk.newlines.Before(end); pos >= 0 {
			best = start + ByteOffset(pos) + 1
		}
	}
	return best
}

// Byte returns the byte under the cursor, or false at the end.
func (c *Cursor) Byte() (byte, bool) {
	if c.leaf == nil || c.chunkIdx >= len(c.leaf.chunks) {
		return 0, false
	}
	chunk := c.leaf.chunks[c.chunkIdx]
	if c.chunkOff >= chunk.Len() {
		return 0, false
	}
	return chunk.data[c.chunkOff], true
}

// Rune decodes the rune under the cursor. Returns size 0 at the end.
func (c *Cursor) Rune() (rune, int) {
	if c.leaf == nil || c.chunkIdx >= len(c.leaf.chunks) {
		return 0, 0
	}
	chunk := c.leaf.chunks[c.chunkIdx]
	if c.chunkOff >= chunk.Len() {
		return 0, 0
	}
	return utf8.DecodeRuneInString(chunk.data[c.chunkOff:])
}

// Next advances by one rune. Reports false at the end of the rope.
func (c *Cursor) Next() bool {
	if c.AtEnd() {
		return false
	}
	r, size := c.Rune()
	if size == 0 {
		return false
	}

	c.offset += ByteOffset(size)
	c.chunkOff += size
	if c.pointSet {
		if r == '\n' {
			c.point.Line++
			c.point.Column = 0
		} else {
			c.point.Column += uint32(size)
		}
	}

	if c.leaf != nil && c.chunkIdx < len(c.leaf.chunks) &&
		c.chunkOff >= c.leaf.chunks[c.chunkIdx].Len() {
		c.advanceChunk()
	}
	return true
}

// Prev steps back by one rune. Reports false at the start.
func (c *Cursor) Prev() bool {
	if c.offset == 0 {
		return false
	}

	prev := c.offset - 1
	for prev > 0 {
		b, ok := c.rope.ByteAt(prev)
		if !ok || isRuneStart(b) {
			break
		}
		prev--
	}
	return c.SeekOffset(prev)
}

// NextChunk returns the remaining text of the current chunk and advances
// past it. Repeated calls stream the whole document in chunk-sized pieces
// with amortized O(1) cost per call. Returns false after the last chunk.
func (c *Cursor) NextChunk() (string, bool) {
	if c.leaf == nil || c.chunkIdx >= len(c.leaf.chunks) {
		return "", false
	}
	chunk := c.leaf.chunks[c.chunkIdx]
	if c.chunkOff >= chunk.Len() {
		return "", false
	}

	text := chunk.data[c.chunkOff:]
	c.offset += ByteOffset(len(text))
	c.chunkOff = chunk.Len()
	c.pointSet = false
	c.advanceChunk()
	return text, true
}

// advanceChunk steps to the next chunk, crossing into the next leaf when
// the current one is exhausted.
func (c *Cursor) advanceChunk() {
	c.chunkIdx++
	c.chunkOff = 0
	if c.chunkIdx >= len(c.leaf.chunks) {
		c.advanceLeaf()
	}
}

// advanceLeaf re-ascends to the lowest frame with an unvisited sibling and
// descends to that subtree's leftmost leaf.
func (c *Cursor) advanceLeaf() {
	for len(c.path) > 0 {
		frame := c.path[len(c.path)-1]
		c.path = c.path[:len(c.path)-1]

		next := frame.childIdx + 1
		if next >= len(frame.node.children) {
			continue
		}

		off := frame.offset + frame.node.childSums[frame.childIdx].Bytes
		line := frame.line + frame.node.childSums[frame.childIdx].Lines
		c.path = append(c.path, pathFrame{
			node:     frame.node,
			childIdx: next,
			offset:   off,
			line:     line,
		})

		n := frame.node.children[next]
		for !n.isLeaf() {
			c.path = append(c.path, pathFrame{node: n, offset: off, line: line})
			n = n.children[0]
		}
		c.leaf = n
		c.chunkIdx = 0
		c.chunkOff = 0
		return
	}

	// Past the last leaf.
	c.leaf = nil
	c.chunkIdx = 0
	c.chunkOff = 0
}

// Clone returns an independent cursor at the same position.
func (c *Cursor) Clone() *Cursor {
	dup := &Cursor{
		rope:     c.rope,
		path:     make([]pathFrame, len(c.path)),
		offset:   c.offset,
		point:    c.point,
		pointSet: c.pointSet,
		leaf:     c.leaf,
		chunkIdx: c.chunkIdx,
		chunkOff: c.chunkOff,
	}
	copy(dup.path, c.path)
	return dup
}
