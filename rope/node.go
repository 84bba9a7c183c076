package rope

import "strings"

// Tree arity bounds. The rope is a B+ tree: leaves hold chunks, internal
// nodes hold children plus a per-child summary so descent never rescans
// text. Bounded fan-out keeps depth logarithmic in document size.
const (
	// MinChildren is the minimum fan-out for internal nodes other than
	// the root.
	MinChildren = 4

	// MaxChildren is the fan-out cap; fuller nodes are split.
	MaxChildren = 8

	// MaxLeafChunks is the maximum number of chunks in one leaf.
	MaxLeafChunks = 4
)

// node is one element of the tree. A node is immutable once published by an
// edit: operations build fresh nodes along the edit path and share every
// untouched subtree with the previous version.
type node struct {
	height  int // 0 for leaves
	summary Summary

	// Internal nodes only.
	children  []*node
	childSums []Summary

	// Leaves only.
	chunks []Chunk
}

func newLeaf(chunks []Chunk) *node {
	n := &node{chunks: chunks}
	n.summary = EmptySummary()
	for _, c := range chunks {
		n.summary = n.summary.Add(c.summary)
	}
	return n
}

func emptyLeaf() *node {
	return &node{summary: EmptySummary()}
}

func newInternal(children []*node) *node {
	if len(children) == 0 {
		return emptyLeaf()
	}

	sums := make([]Summary, len(children))
	total := EmptySummary()
	maxHeight := 0
	for i, child := range children {
		sums[i] = child.summary
		total = total.Add(child.summary)
		if child.height > maxHeight {
			maxHeight = child.height
		}
	}

	return &node{
		height:    maxHeight + 1,
		summary:   total,
		children:  children,
		childSums: sums,
	}
}

func (n *node) isLeaf() bool { return n.height == 0 }

func (n *node) length() ByteOffset { return n.summary.Bytes }

// appendTo writes the subtree's text into sb in document order.
func (n *node) appendTo(sb *strings.Builder) {
	if n.isLeaf() {
		for _, c := range n.chunks {
			sb.WriteString(c.data)
		}
		return
	}
	for _, child := range n.children {
		child.appendTo(sb)
	}
}

// appendRange writes the text covered by [start, end) into sb. Offsets are
// relative to the subtree and assumed to be pre-clamped by the caller.
func (n *node) appendRange(sb *strings.Builder, start, end ByteOffset) {
	if start >= end {
		return
	}

	if n.isLeaf() {
		var off ByteOffset
		for _, c := range n.chunks {
			clen := ByteOffset(len(c.data))
			if off+clen <= start {
				off += clen
				continue
			}
			if off >= end {
				return
			}
			lo, hi := ByteOffset(0), clen
			if start > off {
				lo = start - off
			}
			if end < off+clen {
				hi = end - off
			}
			sb.WriteString(c.data[lo:hi])
			off += clen
		}
		return
	}

	var off ByteOffset
	for i, child := range n.children {
		clen := n.childSums[i].Bytes
		if off+clen <= start {
			off += clen
			continue
		}
		if off >= end {
			return
		}
		lo, hi := ByteOffset(0), clen
		if start > off {
			lo = start - off
		}
		if end < off+clen {
			hi = end - off
		}
		child.appendRange(sb, lo, hi)
		off += clen
	}
}

// byteAt returns the byte at a subtree-relative offset.
func (n *node) byteAt(off ByteOffset) (byte, bool) {
	for !n.isLeaf() {
		idx, rel := n.childForOffset(off)
		if idx < 0 {
			return 0, false
		}
		n = n.children[idx]
		off = rel
	}
	for _, c := range n.chunks {
		clen := ByteOffset(len(c.data))
		if off < clen {
			return c.data[off], true
		}
		off -= clen
	}
	return 0, false
}

// childForOffset locates the child containing a subtree-relative offset
// and returns its index with the offset remapped into that child. Offsets
// equal to the total length land in the last child.
func (n *node) childForOffset(off ByteOffset) (int, ByteOffset) {
	var acc ByteOffset
	for i, sum := range n.childSums {
		if off < acc+sum.Bytes {
			return i, off - acc
		}
		acc += sum.Bytes
	}
	last := len(n.children) - 1
	if last < 0 {
		return -1, 0
	}
	return last, off - (acc - n.childSums[last].Bytes)
}

// split divides the subtree at a byte offset, sharing every node that lies
// entirely on one side. The offset must be a validated rune boundary.
func (n *node) split(off ByteOffset) (*node, *node) {
	if off <= 0 {
		return emptyLeaf(), n
	}
	if off >= n.length() {
		return n, emptyLeaf()
	}
	if n.isLeaf() {
		return n.splitLeaf(off)
	}
	return n.splitInternal(off)
}

func (n *node) splitLeaf(off ByteOffset) (*node, *node) {
	var left, right []Chunk
	var acc ByteOffset

	for _, c := range n.chunks {
		clen := ByteOffset(len(c.data))
		switch {
		case acc+clen <= off:
			left = append(left, c)
		case acc >= off:
			right = append(right, c)
		default:
			// Boundary validity was checked at the rope surface, so
			// this split cannot fail.
			l, r, _ := c.Split(int(off - acc))
			if !l.IsEmpty() {
				left = append(left, l)
			}
			if !r.IsEmpty() {
				right = append(right, r)
			}
		}
		acc += clen
	}

	return newLeaf(left), newLeaf(right)
}

func (n *node) splitInternal(off ByteOffset) (*node, *node) {
	var acc ByteOffset
	for i, child := range n.children {
		clen := n.childSums[i].Bytes
		if off >= acc+clen {
			acc += clen
			continue
		}
		cl, cr := child.split(off - acc)
		left := join(subtree(n.children[:i]), cl)
		right := join(cr, subtree(n.children[i+1:]))
		return left, right
	}
	// Unreachable: split handles off == length before descending.
	return n, emptyLeaf()
}

// subtree wraps an ordered run of equal-height siblings in a parent node.
func subtree(children []*node) *node {
	switch len(children) {
	case 0:
		return emptyLeaf()
	case 1:
		return children[0]
	}
	return newInternal(children)
}

// assemble builds a tree bottom-up from an ordered run of equal-height
// nodes, adding a level whenever the fan-out cap is exceeded. Groups are
// sized evenly so every non-root node meets the minimum fan-out.
func assemble(children []*node) *node {
	for len(children) > MaxChildren {
		groups := (len(children) + MaxChildren - 1) / MaxChildren
		parents := make([]*node, 0, groups)
		for g := 0; g < groups; g++ {
			start := g * len(children) / groups
			end := (g + 1) * len(children) / groups
			parents = append(parents, newInternal(children[start:end]))
		}
		children = parents
	}
	switch len(children) {
	case 0:
		return emptyLeaf()
	case 1:
		return children[0]
	}
	return newInternal(children)
}

// join concatenates two subtrees. The shorter side is merged into the
// taller side's edge, splitting overfull nodes on the way back up, so
// every non-root node keeps its fan-out within bounds and the result's
// height is at most one more than the taller input's.
func join(left, right *node) *node {
	if left == nil || left.length() == 0 {
		if right == nil {
			return emptyLeaf()
		}
		return right
	}
	if right == nil || right.length() == 0 {
		return left
	}
	nodes := mergeTrees(left, right)
	if len(nodes) == 1 {
		return nodes[0]
	}
	return newInternal(nodes)
}

// mergeTrees concatenates two subtrees into a short run of nodes whose
// height equals the taller input's. The taller side is descended along
// its edge until the heights match; the merged edge is then repacked
// level by level.
func mergeTrees(a, b *node) []*node {
	switch {
	case a.height == b.height:
		if a.isLeaf() {
			return mergeLeaves(a, b)
		}
		merged := make([]*node, 0, len(a.children)+len(b.children))
		merged = append(merged, a.children...)
		merged = append(merged, b.children...)
		return packChildren(merged)
	case a.height > b.height:
		last := len(a.children) - 1
		sub := mergeTrees(a.children[last], b)
		merged := make([]*node, 0, last+len(sub))
		merged = append(merged, a.children[:last]...)
		merged = append(merged, sub...)
		return packChildren(merged)
	default:
		sub := mergeTrees(a, b.children[0])
		merged := make([]*node, 0, len(sub)+len(b.children)-1)
		merged = append(merged, sub...)
		merged = append(merged, b.children[1:]...)
		return packChildren(merged)
	}
}

// packChildren groups an ordered run of equal-height nodes under one or
// two parents. A run longer than MaxChildren is split evenly, which keeps
// both halves at or above MinChildren.
func packChildren(children []*node) []*node {
	if len(children) <= MaxChildren {
		return []*node{newInternal(children)}
	}
	half := (len(children) + 1) / 2
	return []*node{newInternal(children[:half]), newInternal(children[half:])}
}

// mergeLeaves concatenates two leaves. The chunks adjacent at the seam
// are re-merged when small enough, healing fragmentation left behind by
// deletions.
func mergeLeaves(a, b *node) []*node {
	if len(a.chunks) == 0 {
		return []*node{b}
	}
	if len(b.chunks) == 0 {
		return []*node{a}
	}

	chunks := make([]Chunk, 0, len(a.chunks)+len(b.chunks)+2)
	chunks = append(chunks, a.chunks[:len(a.chunks)-1]...)
	chunks = append(chunks, a.chunks[len(a.chunks)-1].Append(b.chunks[0])...)
	chunks = append(chunks, b.chunks[1:]...)
	return packLeaves(chunks)
}

// packLeaves distributes an ordered run of chunks evenly across as few
// leaves as their count allows.
func packLeaves(chunks []Chunk) []*node {
	if len(chunks) <= MaxLeafChunks {
		return []*node{newLeaf(chunks)}
	}
	groups := (len(chunks) + MaxLeafChunks - 1) / MaxLeafChunks
	leaves := make([]*node, 0, groups)
	for g := 0; g < groups; g++ {
		start := g * len(chunks) / groups
		end := (g + 1) * len(chunks) / groups
		group := make([]Chunk, end-start)
		copy(group, chunks[start:end])
		leaves = append(leaves, newLeaf(group))
	}
	return leaves
}
