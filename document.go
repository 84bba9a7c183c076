package loom

import (
	"io"
	"os"
	"sync"

	"github.com/loomtext/loom/buffer"
	"github.com/loomtext/loom/history"
	"github.com/loomtext/loom/rope"
	"github.com/loomtext/loom/tracking"
)

// Document is a versioned text document. It composes the buffer with
// undo history and snapshot tracking, so most applications only need
// this type.
//
// Reads are served by the buffer's own lock and may run concurrently.
// The document mutex serializes edits with their history commits, so an
// undo step always corresponds to exactly one edit (or one group).
type Document struct {
	mu    sync.Mutex
	buf   *buffer.Buffer
	hist  *history.History
	track *tracking.Manager
	opts  Options
	path  string
}

// New creates an empty document.
func New(opts Options) *Document {
	return wrap(buffer.NewBuffer(opts.BufferOptions()...), opts)
}

// NewFromString creates a document holding text. Line endings are
// normalized to the configured style.
func NewFromString(text string, opts Options) *Document {
	return wrap(buffer.NewBufferFromString(text, opts.BufferOptions()...), opts)
}

// NewFromReader creates a document from a stream.
func NewFromReader(r io.Reader, opts Options) (*Document, error) {
	buf, err := buffer.NewBufferFromReader(r, opts.BufferOptions()...)
	if err != nil {
		return nil, err
	}
	return wrap(buf, opts), nil
}

// Open reads a file into a new document. The path is remembered for
// Save. A missing file yields an empty document, matching how editors
// open files that do not exist yet.
func Open(path string, opts Options) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	d := NewFromString(string(data), opts)
	d.path = path
	return d, nil
}

func wrap(buf *buffer.Buffer, opts Options) *Document {
	if opts.DebugChecks {
		rope.SetDebugChecks(true)
	}
	return &Document{
		buf:   buf,
		hist:  history.NewHistory(opts.UndoDepth),
		track: tracking.NewManager(),
		opts:  opts,
	}
}

// Path returns the file path the document was opened from, or "".
func (d *Document) Path() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.path
}

// Save writes the document to the path it was opened from.
func (d *Document) Save() error {
	d.mu.Lock()
	path := d.path
	d.mu.Unlock()
	if path == "" {
		return os.ErrInvalid
	}
	return d.SaveAs(path)
}

// SaveAs writes the document to path and remembers it for later saves.
// The written content is captured under the document mutex, so a save
// racing an edit persists one consistent revision.
func (d *Document) SaveAs(path string) error {
	d.mu.Lock()
	text := d.buf.Text()
	d.mu.Unlock()
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return err
	}
	d.mu.Lock()
	d.path = path
	d.mu.Unlock()
	return nil
}

// Edits

// Insert places text at offset and records an undo step. It returns
// the offset just past the inserted text.
func (d *Document) Insert(offset ByteOffset, text string) (ByteOffset, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := d.buf.Snapshot()
	end, err := d.buf.Insert(offset, text)
	if err != nil {
		return 0, err
	}
	d.hist.Commit(prev)
	return end, nil
}

// Delete removes [start, end) and records an undo step.
func (d *Document) Delete(start, end ByteOffset) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := d.buf.Snapshot()
	if err := d.buf.Delete(start, end); err != nil {
		return err
	}
	d.hist.Commit(prev)
	return nil
}

// Replace substitutes [start, end) with text and records an undo step.
func (d *Document) Replace(start, end ByteOffset, text string) (ByteOffset, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := d.buf.Snapshot()
	newEnd, err := d.buf.Replace(start, end, text)
	if err != nil {
		return 0, err
	}
	d.hist.Commit(prev)
	return newEnd, nil
}

// ApplyEdit applies a single edit and records an undo step.
func (d *Document) ApplyEdit(edit Edit) (EditResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := d.buf.Snapshot()
	res, err := d.buf.ApplyEdit(edit)
	if err != nil {
		return EditResult{}, err
	}
	d.hist.Commit(prev)
	return res, nil
}

// ApplyEdits applies a batch atomically as a single undo step. Edits
// must be sorted by descending start offset and must not overlap.
func (d *Document) ApplyEdits(edits []Edit) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := d.buf.Snapshot()
	if err := d.buf.ApplyEdits(edits); err != nil {
		return err
	}
	d.hist.Commit(prev)
	return nil
}

// Undo and redo

// Undo reverts the most recent edit (or group).
func (d *Document) Undo() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	snap, err := d.hist.Undo(d.buf.Snapshot())
	if err != nil {
		return err
	}
	d.buf.Restore(snap)
	return nil
}

// Redo reapplies the most recently undone edit.
func (d *Document) Redo() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	snap, err := d.hist.Redo(d.buf.Snapshot())
	if err != nil {
		return err
	}
	d.buf.Restore(snap)
	return nil
}

// CanUndo reports whether an undo step is available.
func (d *Document) CanUndo() bool { return d.hist.CanUndo() }

// CanRedo reports whether a redo step is available.
func (d *Document) CanRedo() bool { return d.hist.CanRedo() }

// BeginGroup starts collapsing subsequent edits into one undo step.
func (d *Document) BeginGroup(name string) { d.hist.BeginGroup(name) }

// EndGroup closes the current group.
func (d *Document) EndGroup() { d.hist.EndGroup() }

// Reads

// Text returns the full document content.
func (d *Document) Text() string { return d.buf.Text() }

// TextRange returns the text in [start, end).
func (d *Document) TextRange(start, end ByteOffset) (string, error) {
	return d.buf.TextRange(start, end)
}

// Len returns the document length in bytes.
func (d *Document) Len() ByteOffset { return d.buf.Len() }

// IsEmpty reports whether the document holds no text.
func (d *Document) IsEmpty() bool { return d.buf.IsEmpty() }

// LineCount returns the number of lines.
func (d *Document) LineCount() uint32 { return d.buf.LineCount() }

// LineText returns the content of line, without its terminator.
func (d *Document) LineText(line uint32) (string, error) {
	return d.buf.LineText(line)
}

// LineOf returns the line containing offset.
func (d *Document) LineOf(offset ByteOffset) (uint32, error) {
	return d.buf.LineOf(offset)
}

// LineStartOffset returns the byte offset where line begins.
func (d *Document) LineStartOffset(line uint32) (ByteOffset, error) {
	return d.buf.LineStartOffset(line)
}

// LineEndOffset returns the byte offset just past line's content.
func (d *Document) LineEndOffset(line uint32) (ByteOffset, error) {
	return d.buf.LineEndOffset(line)
}

// OffsetToPoint converts a byte offset to a line/column position.
func (d *Document) OffsetToPoint(offset ByteOffset) (Point, error) {
	return d.buf.OffsetToPoint(offset)
}

// PointToOffset converts a line/column position to a byte offset.
func (d *Document) PointToOffset(point Point) (ByteOffset, error) {
	return d.buf.PointToOffset(point)
}

// OffsetToPointUTF16 converts a byte offset to a UTF-16 position, for
// protocols like LSP that count in UTF-16 code units.
func (d *Document) OffsetToPointUTF16(offset ByteOffset) (PointUTF16, error) {
	return d.buf.OffsetToPointUTF16(offset)
}

// PointUTF16ToOffset converts a UTF-16 position to a byte offset.
func (d *Document) PointUTF16ToOffset(point PointUTF16) (ByteOffset, error) {
	return d.buf.PointUTF16ToOffset(point)
}

// Revision returns the current revision identifier. Every successful
// edit produces a fresh one; undo and redo bring back the revision of
// the state they restore.
func (d *Document) Revision() RevisionID { return d.buf.RevisionID() }

// Snapshots and iteration

// Snapshot returns a cheap immutable view of the current state. The
// view never changes, even as the document is edited.
func (d *Document) Snapshot() *buffer.Snapshot { return d.buf.Snapshot() }

// Cursor returns a cursor over the current state. The cursor reads a
// snapshot, so later edits do not disturb it.
func (d *Document) Cursor() *rope.Cursor { return rope.NewCursor(d.buf.Rope()) }

// RetainSnapshot records a named checkpoint and returns its handle.
// An empty name is allowed; a non-empty name replaces any previous
// snapshot with the same name.
func (d *Document) RetainSnapshot(name string) SnapshotID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.track.Create(name, d.buf.Rope(), d.buf.RevisionID())
}

// SnapshotByID looks up a retained snapshot.
func (d *Document) SnapshotByID(id SnapshotID) (*tracking.Snapshot, bool) {
	return d.track.Get(id)
}

// SnapshotByName looks up a retained snapshot by its label.
func (d *Document) SnapshotByName(name string) (*tracking.Snapshot, bool) {
	return d.track.GetByName(name)
}

// ReleaseSnapshot drops a retained snapshot so its unique subtrees can
// be reclaimed.
func (d *Document) ReleaseSnapshot(id SnapshotID) error {
	return d.track.Release(id)
}

// Snapshots lists retained snapshots, oldest first.
func (d *Document) Snapshots() []*tracking.Snapshot { return d.track.List() }

// PruneSnapshots applies the configured retention policy: snapshots
// older than snapshot_max_age are dropped, then the survivors are
// trimmed to snapshot_keep. It returns the number released.
func (d *Document) PruneSnapshots() int {
	n := 0
	if d.opts.SnapshotMaxAge > 0 {
		n += d.track.Prune(d.opts.SnapshotMaxAge)
	}
	if d.opts.SnapshotKeep > 0 {
		n += d.track.PruneKeepN(d.opts.SnapshotKeep)
	}
	return n
}

// Buffer returns the underlying buffer for callers that need its full
// surface, such as grapheme iteration or batch coordinate queries.
func (d *Document) Buffer() *buffer.Buffer { return d.buf }

// Config returns the settings the document was created with.
func (d *Document) Config() Options { return d.opts }
