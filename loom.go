package loom

import (
	"github.com/loomtext/loom/buffer"
	"github.com/loomtext/loom/config"
	"github.com/loomtext/loom/history"
	"github.com/loomtext/loom/tracking"
)

// Aliases so most callers never import the subpackages directly.
type (
	ByteOffset = buffer.ByteOffset
	Point      = buffer.Point
	PointUTF16 = buffer.PointUTF16
	Range      = buffer.Range
	Edit       = buffer.Edit
	EditResult = buffer.EditResult
	RevisionID = buffer.RevisionID
	LineEnding = buffer.LineEnding
	SnapshotID = tracking.SnapshotID
	Options    = config.Options
)

// Line ending styles, re-exported for Options literals.
const (
	LineEndingLF   = buffer.LineEndingLF
	LineEndingCRLF = buffer.LineEndingCRLF
	LineEndingCR   = buffer.LineEndingCR
)

// Errors surfaced by the facade, re-exported from the subpackages.
var (
	ErrOffsetOutOfRange = buffer.ErrOffsetOutOfRange
	ErrInvalidBoundary  = buffer.ErrInvalidBoundary
	ErrEditsOverlap     = buffer.ErrEditsOverlap
	ErrNothingToUndo    = history.ErrNothingToUndo
	ErrNothingToRedo    = history.ErrNothingToRedo
	ErrSnapshotNotFound = tracking.ErrSnapshotNotFound
)

// DefaultOptions returns the built-in settings.
func DefaultOptions() Options { return config.Default() }
