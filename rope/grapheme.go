package rope

import "github.com/rivo/uniseg"

// GraphemeIterator yields extended grapheme clusters in document order.
// Clusters are what users perceive as single characters (a base rune plus
// combining marks, emoji ZWJ sequences, regional-indicator pairs), so
// cursor movement in an editor should step by cluster, not by rune.
//
// Segmentation follows UAX #29 via rivo/uniseg. Because a cluster may
// straddle chunk boundaries, the iterator keeps pulling chunks until the
// segmenter confirms the cluster is closed.
type GraphemeIterator struct {
	cursor  *Cursor
	pending string // unsegmented text starting at offset+len(cluster)
	cluster string
	offset  ByteOffset
	state   int
	started bool
}

// Graphemes returns a grapheme-cluster iterator over the whole rope.
func (r Rope) Graphemes() *GraphemeIterator {
	return &GraphemeIterator{cursor: NewCursor(r), state: -1}
}

// GraphemesAt returns a grapheme-cluster iterator starting at offset,
// which must be a rune boundary.
func (r Rope) GraphemesAt(offset ByteOffset) (*GraphemeIterator, error) {
	c := NewCursor(r)
	if !c.SeekOffset(offset) {
		if offset < 0 || offset > r.Len() {
			return nil, ErrOutOfRange
		}
		return nil, ErrInvalidBoundary
	}
	return &GraphemeIterator{cursor: c, state: -1}, nil
}

// Next advances to the next cluster, reporting false when exhausted.
func (it *GraphemeIterator) Next() bool {
	if !it.started {
		it.started = true
		it.offset = it.cursor.Offset()
	} else {
		it.offset += ByteOffset(len(it.cluster))
	}

	if len(it.pending) == 0 && !it.refill() {
		it.cluster = ""
		return false
	}

	for {
		cluster, rest, _, state := uniseg.FirstGraphemeClusterInString(it.pending, it.state)
		if len(rest) > 0 || !it.refill() {
			// Either the cluster closed before the end of the pending
			// text, or there is no more text that could extend it.
			it.cluster = cluster
			it.pending = it.pending[len(cluster):]
			it.state = state
			return len(cluster) > 0
		}
		// The cluster ran to the end of the pending text and more text
		// exists; it might continue into the next chunk, so re-segment
		// with the longer window.
		it.state = -1
	}
}

// refill appends the next chunk of the rope to the pending window.
// Reports false when the rope is exhausted.
func (it *GraphemeIterator) refill() bool {
	text, ok := it.cursor.NextChunk()
	if !ok {
		return false
	}
	it.pending += text
	return true
}

// Cluster returns the current grapheme cluster.
func (it *GraphemeIterator) Cluster() string { return it.cluster }

// Offset returns the byte offset where the current cluster begins.
func (it *GraphemeIterator) Offset() ByteOffset { return it.offset }

// GraphemeCount returns the number of extended grapheme clusters in the
// rope. O(n); intended for diagnostics and small spans.
func (r Rope) GraphemeCount() int {
	it := r.Graphemes()
	count := 0
	for it.Next() {
		count++
	}
	return count
}
