package rope

import "errors"

// Errors returned by rope operations. All of them reject a single
// operation and leave the receiving rope fully usable.
var (
	// ErrOutOfRange reports an offset or line outside the valid bounds
	// of the rope.
	ErrOutOfRange = errors.New("offset out of range")

	// ErrInvalidBoundary reports a byte offset that falls inside a
	// multi-byte UTF-8 sequence. The caller must adjust the offset to a
	// rune boundary and retry.
	ErrInvalidBoundary = errors.New("offset not at a character boundary")
)
