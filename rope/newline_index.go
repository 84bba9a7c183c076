package rope

import "sort"

// maxInlineBreaks is the number of newline positions a lineIndex stores
// without a heap allocation. Most chunks of prose or code have only a
// handful of line breaks.
const maxInlineBreaks = 4

// lineIndex records the byte offsets of every '\n' inside a chunk, in
// ascending order. Positions fit in uint16 because chunks are capped at
// MaxChunkSize bytes.
type lineIndex struct {
	inline [maxInlineBreaks]uint16
	count  uint16
	spill  []uint16 // allocated only when count > maxInlineBreaks
}

// indexNewlines scans s and records every newline position.
func indexNewlines(s string) lineIndex {
	var idx lineIndex
	for i := 0; i < len(s); i++ {
		if s[i] != '\n' {
			continue
		}
		if idx.count < maxInlineBreaks {
			idx.inline[idx.count] = uint16(i)
		} else {
			if idx.spill == nil {
				idx.spill = append(idx.spill, idx.inline[:]...)
			}
			idx.spill = append(idx.spill, uint16(i))
		}
		idx.count++
	}
	return idx
}

// Count returns the number of recorded newlines.
func (idx *lineIndex) Count() uint32 {
	return uint32(idx.count)
}

func (idx *lineIndex) positions() []uint16 {
	if idx.count <= maxInlineBreaks {
		return idx.inline[:idx.count]
	}
	return idx.spill
}

// Position returns the byte offset of the nth newline (0-indexed),
// or -1 when n is out of range.
func (idx *lineIndex) Position(n uint32) int {
	if n >= uint32(idx.count) {
		return -1
	}
	return int(idx.positions()[n])
}

// Nth returns the byte offset of the nth newline (1-indexed), or -1.
func (idx *lineIndex) Nth(n uint32) int {
	if n == 0 || n > uint32(idx.count) {
		return -1
	}
	return idx.Position(n - 1)
}

// Last returns the offset of the final newline, or -1 when none exist.
func (idx *lineIndex) Last() int {
	if idx.count == 0 {
		return -1
	}
	return idx.Position(uint32(idx.count) - 1)
}

// Before returns the offset of the last newline strictly before off,
// or -1. Binary search keeps this O(log breaks).
func (idx *lineIndex) Before(off int) int {
	pos := idx.positions()
	i := sort.Search(len(pos), func(i int) bool { return int(pos[i]) >= off })
	if i == 0 {
		return -1
	}
	return int(pos[i-1])
}

// At returns the offset of the first newline at or after off, or -1.
func (idx *lineIndex) At(off int) int {
	pos := idx.positions()
	i := sort.Search(len(pos), func(i int) bool { return int(pos[i]) >= off })
	if i == len(pos) {
		return -1
	}
	return int(pos[i])
}

// BreaksInRange counts newlines whose offsets fall in [start, end).
func (idx *lineIndex) BreaksInRange(start, end int) uint32 {
	pos := idx.positions()
	lo := sort.Search(len(pos), func(i int) bool { return int(pos[i]) >= start })
	hi := sort.Search(len(pos), func(i int) bool { return int(pos[i]) >= end })
	return uint32(hi - lo)
}
