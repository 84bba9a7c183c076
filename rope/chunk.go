package rope

// Chunk size bounds control the granularity of leaf storage. They are the
// engine's main tuning knobs: smaller chunks cheapen edits, larger chunks
// cheapen scans.
const (
	// MinChunkSize is the preferred lower bound for interior chunks.
	MinChunkSize = 128

	// MaxChunkSize is the hard cap on a single chunk's byte length.
	MaxChunkSize = 256

	// TargetChunkSize is the preferred size when carving fresh text.
	TargetChunkSize = (MinChunkSize + MaxChunkSize) / 2
)

// Chunk is an immutable run of UTF-8 text stored in a leaf, annotated with
// its precomputed summary and newline offsets. Chunks never split a rune
// across their boundary with a neighbor.
type Chunk struct {
	data     string
	summary  Summary
	newlines lineIndex
}

// NewChunk wraps s in a chunk, computing its metrics eagerly.
// s must be valid UTF-8 and no longer than MaxChunkSize; both are the
// caller's responsibility (rope construction enforces them).
func NewChunk(s string) Chunk {
	return Chunk{
		data:     s,
		summary:  Summarize(s),
		newlines: indexNewlines(s),
	}
}

// String returns the chunk's text.
func (c Chunk) String() string { return c.data }

// Len returns the chunk's byte length.
func (c Chunk) Len() int { return len(c.data) }

// IsEmpty reports whether the chunk holds no text.
func (c Chunk) IsEmpty() bool { return len(c.data) == 0 }

// Summary returns the chunk's precomputed metrics.
func (c Chunk) Summary() Summary { return c.summary }

// NewlineCount returns the number of '\n' bytes in the chunk.
func (c Chunk) NewlineCount() uint32 { return c.newlines.Count() }

// BreaksInRange counts line breaks with byte offsets in [start, end),
// answered from the precomputed index in O(log breaks).
func (c Chunk) BreaksInRange(start, end int) uint32 {
	return c.newlines.BreaksInRange(start, end)
}

// Split divides the chunk at a byte offset, returning the two halves.
// Offsets that land inside a multi-byte rune fail with ErrInvalidBoundary;
// offsets outside [0, Len] fail with ErrOutOfRange.
func (c Chunk) Split(at int) (Chunk, Chunk, error) {
	if at < 0 || at > len(c.data) {
		return Chunk{}, Chunk{}, ErrOutOfRange
	}
	if at < len(c.data) && !isRuneStart(c.data[at]) {
		return Chunk{}, Chunk{}, ErrInvalidBoundary
	}
	if at == 0 {
		return Chunk{}, c, nil
	}
	if at == len(c.data) {
		return c, Chunk{}, nil
	}
	return NewChunk(c.data[:at]), NewChunk(c.data[at:]), nil
}

// Append joins another chunk onto this one. When the combined text fits
// under MaxChunkSize a single merged chunk comes back, which is how
// deletions avoid accumulating undersized leaf fragments. Oversized
// results are re-carved into multiple chunks.
func (c Chunk) Append(other Chunk) []Chunk {
	switch {
	case c.IsEmpty() && other.IsEmpty():
		return nil
	case c.IsEmpty():
		return []Chunk{other}
	case other.IsEmpty():
		return []Chunk{c}
	}

	combined := c.data + other.data
	if len(combined) <= MaxChunkSize {
		return []Chunk{NewChunk(combined)}
	}
	return carveChunks(combined)
}

// carveChunks slices s into chunks of roughly TargetChunkSize, never
// exceeding MaxChunkSize and never cutting a rune in half.
func carveChunks(s string) []Chunk {
	if len(s) == 0 {
		return nil
	}
	if len(s) <= MaxChunkSize {
		return []Chunk{NewChunk(s)}
	}

	chunks := make([]Chunk, 0, len(s)/TargetChunkSize+1)
	rest := s
	for len(rest) > MaxChunkSize {
		cut := carvePoint(rest, TargetChunkSize)
		chunks = append(chunks, NewChunk(rest[:cut]))
		rest = rest[cut:]
	}
	if len(rest) > 0 {
		chunks = append(chunks, NewChunk(rest))
	}
	return chunks
}

// carvePoint picks a cut position near target. It prefers cutting just
// after a nearby newline so lines tend not to straddle chunks, and always
// lands on a rune boundary.
func carvePoint(s string, target int) int {
	if target >= len(s) {
		return len(s)
	}

	lo := target - MinChunkSize/4
	if lo < 1 {
		lo = 1
	}
	hi := target + MinChunkSize/4
	if hi > len(s) {
		hi = len(s)
	}

	for i := target; i < hi; i++ {
		if s[i-1] == '\n' {
			return i
		}
	}
	for i := target - 1; i >= lo; i-- {
		if s[i-1] == '\n' {
			return i
		}
	}

	// No newline nearby; walk to a rune boundary.
	cut := target
	for cut < len(s) && !isRuneStart(s[cut]) {
		cut++
	}
	if cut >= len(s) || cut > target+3 {
		cut = target
		for cut > 0 && !isRuneStart(s[cut]) {
			cut--
		}
	}
	return cut
}
