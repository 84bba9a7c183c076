package tracking

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/loomtext/loom/buffer"
	"github.com/loomtext/loom/rope"
)

func TestCreateAndGet(t *testing.T) {
	m := NewManager()
	r := rope.FromString("hello world")

	id := m.Create("checkpoint", r, 1)
	if id == uuid.Nil {
		t.Fatal("Create returned the nil handle")
	}

	snap, ok := m.Get(id)
	if !ok {
		t.Fatal("Get failed for a fresh handle")
	}
	if snap.Text() != "hello world" {
		t.Errorf("Text() = %q", snap.Text())
	}
	if snap.Name != "checkpoint" {
		t.Errorf("Name = %q", snap.Name)
	}
	if snap.Revision != 1 {
		t.Errorf("Revision = %d", snap.Revision)
	}

	byName, ok := m.GetByName("checkpoint")
	if !ok || byName.ID != id {
		t.Error("GetByName disagrees with Get")
	}
}

func TestGetUnknownHandle(t *testing.T) {
	m := NewManager()
	if _, ok := m.Get(uuid.New()); ok {
		t.Error("Get succeeded for an unknown handle")
	}
	if _, ok := m.GetByName("nope"); ok {
		t.Error("GetByName succeeded for an unknown name")
	}
}

func TestNameReplacement(t *testing.T) {
	m := NewManager()

	first := m.Create("cp", rope.FromString("v1"), 1)
	second := m.Create("cp", rope.FromString("v2"), 2)

	if _, ok := m.Get(first); ok {
		t.Error("replaced snapshot still reachable by old handle")
	}
	snap, ok := m.GetByName("cp")
	if !ok || snap.ID != second || snap.Text() != "v2" {
		t.Error("name does not resolve to the replacement")
	}
	if m.Count() != 1 {
		t.Errorf("Count() = %d, want 1", m.Count())
	}
}

func TestUnnamedSnapshotsCoexist(t *testing.T) {
	m := NewManager()
	a := m.Create("", rope.FromString("a"), 1)
	b := m.Create("", rope.FromString("b"), 2)

	if a == b {
		t.Fatal("handles collide")
	}
	if m.Count() != 2 {
		t.Errorf("Count() = %d, want 2", m.Count())
	}
}

func TestRelease(t *testing.T) {
	m := NewManager()
	id := m.Create("cp", rope.FromString("x"), 1)

	if err := m.Release(id); err != nil {
		t.Fatalf("Release error = %v", err)
	}
	if _, ok := m.Get(id); ok {
		t.Error("snapshot reachable after release")
	}
	if _, ok := m.GetByName("cp"); ok {
		t.Error("name reachable after release")
	}
	if err := m.Release(id); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("double Release error = %v", err)
	}
}

func TestReleaseByName(t *testing.T) {
	m := NewManager()
	id := m.Create("cp", rope.FromString("x"), 1)

	if err := m.ReleaseByName("cp"); err != nil {
		t.Fatalf("ReleaseByName error = %v", err)
	}
	if _, ok := m.Get(id); ok {
		t.Error("snapshot reachable after ReleaseByName")
	}
	if err := m.ReleaseByName("cp"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Errorf("ReleaseByName on missing name error = %v", err)
	}
}

func TestRetain(t *testing.T) {
	m := NewManager()
	b := buffer.NewBufferFromString("buffered")

	id := m.Retain(b.Snapshot())
	snap, ok := m.Get(id)
	if !ok || snap.Text() != "buffered" {
		t.Fatal("Retain did not store the buffer state")
	}
	if snap.Revision != b.RevisionID() {
		t.Error("Retain lost the revision")
	}
}

func TestSnapshotSurvivesEdits(t *testing.T) {
	m := NewManager()
	b := buffer.NewBufferFromString("original")
	id := m.Retain(b.Snapshot())

	if _, err := b.Replace(0, 8, "rewritten"); err != nil {
		t.Fatal(err)
	}

	snap, _ := m.Get(id)
	if snap.Text() != "original" {
		t.Errorf("retained snapshot = %q", snap.Text())
	}

	c := snap.Cursor()
	if got, _ := c.NextChunk(); got != "original" {
		t.Errorf("cursor over retained snapshot read %q", got)
	}
}

func TestListAndNames(t *testing.T) {
	m := NewManager()
	m.Create("b-second", rope.FromString("2"), 2)
	m.Create("a-first", rope.FromString("1"), 1)
	m.Create("", rope.FromString("3"), 3)

	list := m.List()
	if len(list) != 3 {
		t.Fatalf("List() returned %d snapshots", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].Timestamp.Before(list[i-1].Timestamp) {
			t.Error("List() not ordered oldest first")
		}
	}

	names := m.Names()
	if len(names) != 2 || names[0] != "a-first" || names[1] != "b-second" {
		t.Errorf("Names() = %v", names)
	}
}

func TestPrune(t *testing.T) {
	m := NewManager()
	old := m.Create("old", rope.FromString("old"), 1)
	if snap, ok := m.Get(old); ok {
		snap.Timestamp = time.Now().Add(-time.Hour)
	}
	m.Create("new", rope.FromString("new"), 2)

	removed := m.Prune(30 * time.Minute)
	if removed != 1 {
		t.Errorf("Prune removed %d, want 1", removed)
	}
	if _, ok := m.Get(old); ok {
		t.Error("old snapshot survived prune")
	}
	if _, ok := m.GetByName("new"); !ok {
		t.Error("recent snapshot removed by prune")
	}
}

func TestPruneKeepN(t *testing.T) {
	m := NewManager()
	ids := make([]SnapshotID, 5)
	for i := range ids {
		ids[i] = m.Create("", rope.FromString("x"), RevisionID(i))
		// Distinct timestamps make the retention order deterministic.
		if snap, ok := m.Get(ids[i]); ok {
			snap.Timestamp = time.Now().Add(time.Duration(i) * time.Millisecond)
		}
	}

	removed := m.PruneKeepN(2)
	if removed != 3 {
		t.Errorf("PruneKeepN removed %d, want 3", removed)
	}
	if m.Count() != 2 {
		t.Errorf("Count() = %d, want 2", m.Count())
	}
	for _, id := range ids[3:] {
		if _, ok := m.Get(id); !ok {
			t.Error("a newest snapshot was removed")
		}
	}
	if m.PruneKeepN(10) != 0 {
		t.Error("PruneKeepN removed entries under the limit")
	}
}

func TestClear(t *testing.T) {
	m := NewManager()
	m.Create("a", rope.FromString("a"), 1)
	m.Create("", rope.FromString("b"), 2)

	m.Clear()
	if m.Count() != 0 {
		t.Errorf("Count() = %d after Clear", m.Count())
	}
	if _, ok := m.GetByName("a"); ok {
		t.Error("named snapshot survived Clear")
	}
}
