package rope

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"unicode/utf8"
)

// debugChecks gates the expensive structural validation that Insert and
// Delete run on their results when enabled. Off by default; tests and
// bug hunts flip it on.
var debugChecks atomic.Bool

// SetDebugChecks toggles post-edit structural validation. When enabled,
// any edit producing an inconsistent tree logs the violation and panics.
func SetDebugChecks(on bool) { debugChecks.Store(on) }

// DebugChecksEnabled reports whether post-edit validation is active.
func DebugChecksEnabled() bool { return debugChecks.Load() }

func debugValidate(r Rope, op string) {
	if !debugChecks.Load() {
		return
	}
	if err := Validate(r); err != nil {
		slog.Error("rope invariant violation", "op", op, "err", err)
		panic(fmt.Sprintf("rope: %s produced invalid tree: %v", op, err))
	}
}

// Validate checks the structural invariants of the tree: summary
// consistency at every node, fan-out and chunk-count bounds, chunk size
// limits, uniform leaf depth, and UTF-8 validity of chunk contents.
// It returns nil for a well-formed rope. O(n).
func Validate(r Rope) error {
	if r.root == nil {
		return fmt.Errorf("nil root")
	}
	_, err := validateNode(r.root, true)
	return err
}

func validateNode(n *node, isRoot bool) (Summary, error) {
	if n.isLeaf() {
		return validateLeaf(n, isRoot)
	}
	if len(n.children) > MaxChildren {
		return Summary{}, fmt.Errorf("internal node has %d children, max %d", len(n.children), MaxChildren)
	}
	if !isRoot && len(n.children) < MinChildren {
		return Summary{}, fmt.Errorf("non-root internal node has %d children, min %d", len(n.children), MinChildren)
	}
	if len(n.children) != len(n.childSums) {
		return Summary{}, fmt.Errorf("child/summary count mismatch: %d vs %d", len(n.children), len(n.childSums))
	}
	sum := EmptySummary()
	for i, child := range n.children {
		if child.height != n.height-1 {
			return Summary{}, fmt.Errorf("child %d has height %d under node of height %d", i, child.height, n.height)
		}
		childSum, err := validateNode(child, false)
		if err != nil {
			return Summary{}, err
		}
		if childSum != n.childSums[i] {
			return Summary{}, fmt.Errorf("cached summary for child %d is stale", i)
		}
		sum = sum.Add(childSum)
	}
	if sum != n.summary {
		return Summary{}, fmt.Errorf("internal node summary is stale")
	}
	return sum, nil
}

func validateLeaf(n *node, isRoot bool) (Summary, error) {
	if n.height != 0 {
		return Summary{}, fmt.Errorf("leaf has height %d", n.height)
	}
	if len(n.chunks) > MaxLeafChunks {
		return Summary{}, fmt.Errorf("leaf has %d chunks, max %d", len(n.chunks), MaxLeafChunks)
	}
	if !isRoot && len(n.chunks) == 0 {
		return Summary{}, fmt.Errorf("non-root leaf is empty")
	}
	sum := EmptySummary()
	for i, c := range n.chunks {
		if c.Len() > MaxChunkSize {
			return Summary{}, fmt.Errorf("chunk %d is %d bytes, max %d", i, c.Len(), MaxChunkSize)
		}
		if !isRoot && c.Len() == 0 {
			return Summary{}, fmt.Errorf("chunk %d is empty", i)
		}
		if !utf8.ValidString(c.String()) {
			return Summary{}, fmt.Errorf("chunk %d is not valid UTF-8", i)
		}
		want := Summarize(c.String())
		if want != c.summary {
			return Summary{}, fmt.Errorf("chunk %d summary is stale", i)
		}
		sum = sum.Add(want)
	}
	if sum != n.summary {
		return Summary{}, fmt.Errorf("leaf summary is stale")
	}
	return sum, nil
}
