package buffer

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/loomtext/loom/rope"
)

func TestNewBuffer(t *testing.T) {
	b := NewBuffer()
	if !b.IsEmpty() {
		t.Error("new buffer should be empty")
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d, want 0", b.Len())
	}
	if b.LineEnding() != LineEndingLF {
		t.Errorf("default line ending = %v, want LF", b.LineEnding())
	}
	if b.TabWidth() != 4 {
		t.Errorf("default tab width = %d, want 4", b.TabWidth())
	}
}

func TestNewBufferFromString(t *testing.T) {
	b := NewBufferFromString("hello\nworld")
	if b.Text() != "hello\nworld" {
		t.Errorf("Text() = %q", b.Text())
	}
	if b.LineCount() != 2 {
		t.Errorf("LineCount() = %d, want 2", b.LineCount())
	}
}

func TestNewBufferFromReader(t *testing.T) {
	text := strings.Repeat("some file content\n", 1000)
	b, err := NewBufferFromReader(strings.NewReader(text))
	if err != nil {
		t.Fatalf("NewBufferFromReader error = %v", err)
	}
	if b.Text() != text {
		t.Error("reader content mismatch")
	}
}

func TestLineEndingNormalization(t *testing.T) {
	tests := []struct {
		name  string
		opt   Option
		input string
		want  string
	}{
		{"mixed to lf", WithLF(), "a\r\nb\rc\nd", "a\nb\nc\nd"},
		{"lf to crlf", WithCRLF(), "a\nb\nc", "a\r\nb\r\nc"},
		{"crlf stays crlf", WithCRLF(), "a\r\nb", "a\r\nb"},
		{"lf to cr", WithCR(), "a\nb", "a\rb"},
		{"no endings", WithLF(), "plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBufferFromString(tt.input, tt.opt)
			if b.Text() != tt.want {
				t.Errorf("Text() = %q, want %q", b.Text(), tt.want)
			}
		})
	}
}

func TestInsertedTextIsNormalized(t *testing.T) {
	b := NewBufferFromString("ab", WithCRLF())
	if _, err := b.Insert(1, "x\ny"); err != nil {
		t.Fatalf("Insert error = %v", err)
	}
	if b.Text() != "ax\r\nyb" {
		t.Errorf("Text() = %q, want %q", b.Text(), "ax\r\nyb")
	}
}

func TestDetectLineEnding(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  LineEnding
	}{
		{"empty", "", LineEndingLF},
		{"plain lf", "a\nb\nc", LineEndingLF},
		{"plain crlf", "a\r\nb\r\nc", LineEndingCRLF},
		{"plain cr", "a\rb\rc", LineEndingCR},
		{"mostly crlf", "a\r\nb\r\nc\nd", LineEndingCRLF},
		{"mostly lf", "a\nb\nc\r\nd", LineEndingLF},
		{"no endings", "plain text", LineEndingLF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectLineEnding(tt.input); got != tt.want {
				t.Errorf("DetectLineEnding(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBufferInsert(t *testing.T) {
	b := NewBufferFromString("hello world")

	end, err := b.Insert(5, ",")
	if err != nil {
		t.Fatalf("Insert error = %v", err)
	}
	if end != 6 {
		t.Errorf("Insert returned end %d, want 6", end)
	}
	if b.Text() != "hello, world" {
		t.Errorf("Text() = %q", b.Text())
	}

	if _, err := b.Insert(100, "x"); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("Insert out of range error = %v", err)
	}
}

func TestBufferInsertBoundary(t *testing.T) {
	b := NewBufferFromString("a世b")
	if _, err := b.Insert(2, "x"); !errors.Is(err, ErrInvalidBoundary) {
		t.Errorf("Insert mid-rune error = %v, want ErrInvalidBoundary", err)
	}
	// The failed edit must not change anything.
	if b.Text() != "a世b" {
		t.Errorf("Text() = %q after failed insert", b.Text())
	}
}

func TestBufferDelete(t *testing.T) {
	b := NewBufferFromString("hello, world")

	if err := b.Delete(5, 6); err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if b.Text() != "hello world" {
		t.Errorf("Text() = %q", b.Text())
	}

	if err := b.Delete(5, 100); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("Delete out of range error = %v", err)
	}
	if err := NewBufferFromString("a世b").Delete(1, 2); !errors.Is(err, ErrInvalidBoundary) {
		t.Errorf("Delete mid-rune error = %v, want ErrInvalidBoundary", err)
	}
}

func TestBufferReplace(t *testing.T) {
	b := NewBufferFromString("hello world")

	end, err := b.Replace(0, 5, "goodbye")
	if err != nil {
		t.Fatalf("Replace error = %v", err)
	}
	if end != 7 {
		t.Errorf("Replace returned end %d, want 7", end)
	}
	if b.Text() != "goodbye world" {
		t.Errorf("Text() = %q", b.Text())
	}
}

func TestRevisionIDChangesOnEdit(t *testing.T) {
	b := NewBufferFromString("hello")
	r0 := b.RevisionID()

	if _, err := b.Insert(0, "x"); err != nil {
		t.Fatal(err)
	}
	r1 := b.RevisionID()
	if r1 == r0 {
		t.Error("revision ID unchanged after insert")
	}

	// A failed edit must not bump the revision.
	if _, err := b.Insert(-1, "x"); err == nil {
		t.Fatal("expected error")
	}
	if b.RevisionID() != r1 {
		t.Error("revision ID changed by failed edit")
	}
}

func TestApplyEdit(t *testing.T) {
	b := NewBufferFromString("hello world")

	res, err := b.ApplyEdit(NewEdit(NewRange(0, 5), "hi"))
	if err != nil {
		t.Fatalf("ApplyEdit error = %v", err)
	}
	if res.OldText != "hello" {
		t.Errorf("OldText = %q, want %q", res.OldText, "hello")
	}
	if res.NewRange != (Range{Start: 0, End: 2}) {
		t.Errorf("NewRange = %v", res.NewRange)
	}
	if res.Delta != -3 {
		t.Errorf("Delta = %d, want -3", res.Delta)
	}
	if b.Text() != "hi world" {
		t.Errorf("Text() = %q", b.Text())
	}
}

func TestApplyEdits(t *testing.T) {
	b := NewBufferFromString("aaa bbb ccc")

	// Reverse order: highest offset first.
	edits := []Edit{
		NewEdit(NewRange(8, 11), "CCC"),
		NewEdit(NewRange(4, 7), "BBB"),
		NewEdit(NewRange(0, 3), "AAA"),
	}
	if err := b.ApplyEdits(edits); err != nil {
		t.Fatalf("ApplyEdits error = %v", err)
	}
	if b.Text() != "AAA BBB CCC" {
		t.Errorf("Text() = %q", b.Text())
	}
}

func TestApplyEditsRejectsOverlap(t *testing.T) {
	b := NewBufferFromString("hello world")

	overlapping := []Edit{
		NewEdit(NewRange(3, 8), "x"),
		NewEdit(NewRange(0, 5), "y"),
	}
	if err := b.ApplyEdits(overlapping); !errors.Is(err, ErrEditsOverlap) {
		t.Errorf("ApplyEdits overlap error = %v", err)
	}

	wrongOrder := []Edit{
		NewEdit(NewRange(0, 2), "x"),
		NewEdit(NewRange(5, 7), "y"),
	}
	if err := b.ApplyEdits(wrongOrder); !errors.Is(err, ErrEditsOverlap) {
		t.Errorf("ApplyEdits wrong order error = %v", err)
	}
	if b.Text() != "hello world" {
		t.Error("rejected batch modified the buffer")
	}
}

func TestApplyEditsAtomicOnBoundaryError(t *testing.T) {
	b := NewBufferFromString("aa世bb")

	edits := []Edit{
		NewEdit(NewRange(3, 4), "x"), // inside 世
		NewEdit(NewRange(0, 1), "y"),
	}
	if err := b.ApplyEdits(edits); !errors.Is(err, ErrInvalidBoundary) {
		t.Errorf("ApplyEdits error = %v, want ErrInvalidBoundary", err)
	}
	if b.Text() != "aa世bb" {
		t.Error("failed batch left a partial edit behind")
	}
}

func TestCoordinateConversion(t *testing.T) {
	b := NewBufferFromString("hello\nworld")

	p, err := b.OffsetToPoint(8)
	if err != nil {
		t.Fatalf("OffsetToPoint error = %v", err)
	}
	if p != (Point{Line: 1, Column: 2}) {
		t.Errorf("OffsetToPoint(8) = %v", p)
	}

	off, err := b.PointToOffset(Point{Line: 1, Column: 2})
	if err != nil {
		t.Fatalf("PointToOffset error = %v", err)
	}
	if off != 8 {
		t.Errorf("PointToOffset = %d, want 8", off)
	}

	line, err := b.LineOf(8)
	if err != nil || line != 1 {
		t.Errorf("LineOf(8) = %d, %v, want 1", line, err)
	}
}

func TestUTF16Conversion(t *testing.T) {
	// "a𝄞b": 𝄞 is 4 UTF-8 bytes and one surrogate pair (2 UTF-16 units).
	b := NewBufferFromString("x\na𝄞b")

	tests := []struct {
		offset ByteOffset
		want   PointUTF16
	}{
		{2, PointUTF16{Line: 1, Column: 0}},
		{3, PointUTF16{Line: 1, Column: 1}},
		{7, PointUTF16{Line: 1, Column: 3}},
		{8, PointUTF16{Line: 1, Column: 4}},
	}
	for _, tt := range tests {
		got, err := b.OffsetToPointUTF16(tt.offset)
		if err != nil {
			t.Fatalf("OffsetToPointUTF16(%d) error = %v", tt.offset, err)
		}
		if got != tt.want {
			t.Errorf("OffsetToPointUTF16(%d) = %v, want %v", tt.offset, got, tt.want)
		}

		back, err := b.PointUTF16ToOffset(got)
		if err != nil {
			t.Fatalf("PointUTF16ToOffset(%v) error = %v", got, err)
		}
		if back != tt.offset {
			t.Errorf("PointUTF16ToOffset(%v) = %d, want %d", got, back, tt.offset)
		}
	}
}

func TestSnapshotIsolation(t *testing.T) {
	b := NewBufferFromString("hello world")
	snap := b.Snapshot()
	rev := snap.RevisionID()

	if _, err := b.Insert(5, " brave new"); err != nil {
		t.Fatal(err)
	}

	if snap.Text() != "hello world" {
		t.Errorf("snapshot changed: %q", snap.Text())
	}
	if snap.RevisionID() != rev {
		t.Error("snapshot revision changed")
	}
	if b.Text() != "hello brave new world" {
		t.Errorf("buffer Text() = %q", b.Text())
	}
}

func TestSnapshotCursor(t *testing.T) {
	b := NewBufferFromString("hello\nworld")
	snap := b.Snapshot()

	c := snap.Cursor()
	if !c.SeekOffset(6) {
		t.Fatal("SeekOffset failed")
	}
	if p := c.Point(); p != (Point{Line: 1, Column: 0}) {
		t.Errorf("Point() = %v", p)
	}
}

func TestRestore(t *testing.T) {
	b := NewBufferFromString("version one")
	snap := b.Snapshot()

	if _, err := b.Replace(8, 11, "two"); err != nil {
		t.Fatal(err)
	}
	if b.Text() != "version two" {
		t.Fatalf("Text() = %q", b.Text())
	}

	b.Restore(snap)
	if b.Text() != "version one" {
		t.Errorf("Text() after Restore = %q", b.Text())
	}
	if b.RevisionID() != snap.RevisionID() {
		t.Error("Restore did not reinstate the snapshot revision")
	}
}

func TestBufferLineQueries(t *testing.T) {
	b := NewBufferFromString("ab\ncde\n")

	text, err := b.LineText(1)
	if err != nil || text != "cde" {
		t.Errorf("LineText(1) = %q, %v", text, err)
	}
	n, err := b.LineLen(1)
	if err != nil || n != 3 {
		t.Errorf("LineLen(1) = %d, %v", n, err)
	}
	if _, err := b.LineText(3); !errors.Is(err, rope.ErrOutOfRange) {
		t.Errorf("LineText(3) error = %v", err)
	}
}

func TestConcurrentReadersOneWriter(t *testing.T) {
	b := NewBufferFromString(strings.Repeat("concurrent access test\n", 100))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				_ = b.Len()
				_ = b.LineCount()
				snap := b.Snapshot()
				_ = snap.Text()
			}
		}()
	}

	for i := 0; i < 200; i++ {
		if _, err := b.Insert(0, "x"); err != nil {
			t.Errorf("Insert error = %v", err)
		}
	}
	close(stop)
	wg.Wait()

	if b.Len() != ByteOffset(100*23+200) {
		t.Errorf("final Len() = %d", b.Len())
	}
}

func TestLineQueriesCRLF(t *testing.T) {
	b := NewBufferFromString("ab\ncd\nef", WithCRLF())
	if got := b.Text(); got != "ab\r\ncd\r\nef" {
		t.Fatalf("Text = %q", got)
	}
	if got := b.LineCount(); got != 3 {
		t.Fatalf("LineCount = %d, want 3", got)
	}

	wantTexts := []string{"ab", "cd", "ef"}
	for line, want := range wantTexts {
		text, err := b.LineText(uint32(line))
		if err != nil {
			t.Fatalf("LineText(%d) error = %v", line, err)
		}
		if text != want {
			t.Errorf("LineText(%d) = %q, want %q", line, text, want)
		}
		n, err := b.LineLen(uint32(line))
		if err != nil {
			t.Fatalf("LineLen(%d) error = %v", line, err)
		}
		if n != len(want) {
			t.Errorf("LineLen(%d) = %d, want %d", line, n, len(want))
		}
	}

	end, err := b.LineEndOffset(1)
	if err != nil {
		t.Fatalf("LineEndOffset(1) error = %v", err)
	}
	if end != 6 {
		t.Errorf("LineEndOffset(1) = %d, want 6", end)
	}

	// Column clamping must not land inside the \r\n terminator.
	off, err := b.PointToOffset(Point{Line: 0, Column: 99})
	if err != nil {
		t.Fatalf("PointToOffset error = %v", err)
	}
	if off != 2 {
		t.Errorf("PointToOffset clamped = %d, want 2", off)
	}

	// UTF-16 columns never count the carriage return either.
	p, err := b.OffsetToPointUTF16(2)
	if err != nil {
		t.Fatalf("OffsetToPointUTF16 error = %v", err)
	}
	if p.Line != 0 || p.Column != 2 {
		t.Errorf("OffsetToPointUTF16(2) = %+v, want line 0 col 2", p)
	}
}
