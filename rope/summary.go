package rope

import "unicode/utf8"

// ByteOffset is an absolute byte position within a rope.
// It is a signed alias so arithmetic with lengths and deltas needs no casts.
type ByteOffset = int64

// Point is a line/column coordinate, both 0-indexed.
// Column is measured in bytes from the start of the line.
type Point struct {
	Line   uint32
	Column uint32
}

// Compare returns -1 if p sorts before other, 0 if equal, 1 if after.
func (p Point) Compare(other Point) int {
	switch {
	case p.Line < other.Line:
		return -1
	case p.Line > other.Line:
		return 1
	case p.Column < other.Column:
		return -1
	case p.Column > other.Column:
		return 1
	}
	return 0
}

// Flags record cheap-to-test text properties used for fast paths.
type Flags uint8

const (
	// FlagASCII is set when every byte is < 128.
	FlagASCII Flags = 1 << iota

	// FlagHasNewlines is set when the text contains at least one '\n'.
	FlagHasNewlines
)

// Summary holds aggregated metrics for a span of text. Summaries form a
// monoid under Add, which is what lets internal tree nodes describe their
// subtrees without rescanning any text.
type Summary struct {
	// Bytes is the UTF-8 byte count.
	Bytes ByteOffset

	// UTF16 is the UTF-16 code unit count, kept for LSP-style consumers.
	UTF16 int64

	// Lines is the number of '\n' characters, not the number of lines.
	Lines uint32

	// FirstLine, LastLine and LongestLine are byte lengths of the
	// respective lines, excluding the newline itself. FirstLine and
	// LastLine exist so that Add can maintain LongestLine across joins.
	FirstLine   uint32
	LastLine    uint32
	LongestLine uint32

	Flags Flags
}

// EmptySummary is the identity element of the summary monoid.
func EmptySummary() Summary {
	return Summary{Flags: FlagASCII}
}

// IsEmpty reports whether the summary describes zero bytes.
func (s Summary) IsEmpty() bool {
	return s.Bytes == 0
}

// Add combines two adjacent summaries into the summary of the joined text.
func (s Summary) Add(other Summary) Summary {
	if s.Bytes == 0 {
		return other
	}
	if other.Bytes == 0 {
		return s
	}

	out := Summary{
		Bytes: s.Bytes + other.Bytes,
		UTF16: s.UTF16 + other.UTF16,
		Lines: s.Lines + other.Lines,
		Flags: (s.Flags & other.Flags & FlagASCII) |
			((s.Flags | other.Flags) & FlagHasNewlines),
	}

	if other.Lines > 0 {
		// The join point is inside other's first line; the right side
		// supplies its own last line.
		joined := s.LastLine + other.FirstLine
		out.LongestLine = max(s.LongestLine, other.LongestLine, joined)
		out.LastLine = other.LastLine
		if s.Lines == 0 {
			out.FirstLine = joined
		} else {
			out.FirstLine = s.FirstLine
		}
	} else {
		// other extends s's last line.
		joined := s.LastLine + other.LastLine
		out.LongestLine = max(s.LongestLine, joined)
		out.LastLine = joined
		if s.Lines == 0 {
			out.FirstLine = joined
		} else {
			out.FirstLine = s.FirstLine
		}
	}

	return out
}

// Summarize scans a string once and computes its metrics.
func Summarize(s string) Summary {
	if len(s) == 0 {
		return EmptySummary()
	}

	sum := Summary{
		Bytes: ByteOffset(len(s)),
		Flags: FlagASCII,
	}

	var lineLen uint32
	for _, r := range s {
		if r > 0xFFFF {
			sum.UTF16 += 2
		} else {
			sum.UTF16++
		}
		if r > 127 {
			sum.Flags &^= FlagASCII
		}

		if r == '\n' {
			sum.Flags |= FlagHasNewlines
			sum.Lines++
			if sum.Lines == 1 {
				sum.FirstLine = lineLen
			}
			if lineLen > sum.LongestLine {
				sum.LongestLine = lineLen
			}
			lineLen = 0
		} else {
			lineLen += uint32(utf8.RuneLen(r))
		}
	}

	sum.LastLine = lineLen
	if sum.Lines == 0 {
		sum.FirstLine = lineLen
	}
	if lineLen > sum.LongestLine {
		sum.LongestLine = lineLen
	}

	return sum
}

// isRuneStart reports whether b can begin a UTF-8 encoded rune.
// Continuation bytes match 10xxxxxx.
func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
