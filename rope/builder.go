package rope

import (
	"io"
	"strings"
	"unicode/utf8"
)

// Builder accumulates text and assembles a balanced rope in one pass.
// It is cheaper than repeated Concat when loading documents.
type Builder struct {
	chunks []Chunk
	buf    strings.Builder
	total  int
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{chunks: make([]Chunk, 0, 64)}
}

// WriteString appends s to the pending text.
func (b *Builder) WriteString(s string) {
	if len(s) == 0 {
		return
	}
	b.total += len(s)
	b.buf.WriteString(s)
	if b.buf.Len() >= MaxChunkSize*2 {
		b.flush()
	}
}

// Write implements io.Writer.
func (b *Builder) Write(p []byte) (int, error) {
	b.WriteString(string(p))
	return len(p), nil
}

// WriteByte appends a single byte.
func (b *Builder) WriteByte(c byte) error {
	b.total++
	return b.buf.WriteByte(c)
}

// WriteRune appends a single rune.
func (b *Builder) WriteRune(r rune) (int, error) {
	n, err := b.buf.WriteRune(r)
	b.total += n
	return n, err
}

// ReadFrom implements io.ReaderFrom.
func (b *Builder) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, 64*1024)
	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			b.WriteString(string(buf[:n]))
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// flush carves buffered text into chunks. Trailing bytes of an
// incomplete rune stay buffered so reads that cut a multi-byte character
// across Write calls never split it across chunks.
func (b *Builder) flush() {
	if b.buf.Len() == 0 {
		return
	}
	s := b.buf.String()
	b.buf.Reset()

	cut := len(s)
	last := len(s) - 1
	for last > 0 && len(s)-last < utf8.UTFMax && !isRuneStart(s[last]) {
		last--
	}
	if !utf8.FullRuneInString(s[last:]) {
		cut = last
	}

	b.chunks = append(b.chunks, carveChunks(s[:cut])...)
	if cut < len(s) {
		b.buf.WriteString(s[cut:])
	}
}

// Len returns the total number of bytes written so far.
func (b *Builder) Len() int { return b.total }

// Reset clears the builder for reuse.
func (b *Builder) Reset() {
	b.chunks = b.chunks[:0]
	b.buf.Reset()
	b.total = 0
}

// Build assembles the accumulated text into a rope and resets the builder.
func (b *Builder) Build() Rope {
	b.flush()
	if b.buf.Len() > 0 {
		// Input ended with a truncated rune; keep its bytes regardless.
		b.chunks = append(b.chunks, carveChunks(b.buf.String())...)
		b.buf.Reset()
	}
	if len(b.chunks) == 0 {
		b.Reset()
		return New()
	}
	chunks := b.chunks
	b.chunks = nil
	b.Reset()
	return fromChunks(chunks)
}

// FromLines builds a rope from lines, joining them with '\n'.
func FromLines(lines []string) Rope {
	if len(lines) == 0 {
		return New()
	}
	var b Builder
	for i, line := range lines {
		b.WriteString(line)
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.Build()
}

// Join concatenates ropes with a separator between each pair.
func Join(ropes []Rope, sep string) Rope {
	switch len(ropes) {
	case 0:
		return New()
	case 1:
		return ropes[0]
	}

	out := ropes[0]
	sepRope := FromString(sep)
	for _, r := range ropes[1:] {
		if sep != "" {
			out = out.Concat(sepRope)
		}
		out = out.Concat(r)
	}
	return out
}

// Repeat builds a rope holding s repeated n times.
func Repeat(s string, n int) Rope {
	if n <= 0 || len(s) == 0 {
		return New()
	}
	if len(s)*n <= MaxChunkSize*4 {
		return FromString(strings.Repeat(s, n))
	}
	var b Builder
	for i := 0; i < n; i++ {
		b.WriteString(s)
	}
	return b.Build()
}
