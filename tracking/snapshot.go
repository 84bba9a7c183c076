package tracking

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/loomtext/loom/buffer"
	"github.com/loomtext/loom/rope"
)

// Errors returned by snapshot operations.
var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// RevisionID is an alias to buffer.RevisionID for convenience.
type RevisionID = buffer.RevisionID

// SnapshotID is an opaque handle for a retained snapshot. Handles are
// UUIDs so they stay valid across process boundaries, such as when a
// client of an editor service holds one.
type SnapshotID = uuid.UUID

// Snapshot is a retained checkpoint of buffer state. It is immutable and
// safe for concurrent use; the rope it holds shares structure with every
// other version, so keeping one alive costs only the subtrees unique to
// it.
type Snapshot struct {
	// ID uniquely identifies this snapshot.
	ID SnapshotID

	// Name is an optional human-readable label, such as
	// "before_format" or "checkpoint_1".
	Name string

	// Timestamp when this snapshot was created.
	Timestamp time.Time

	// Revision is the buffer revision at the time of the snapshot.
	Revision RevisionID

	rope rope.Rope
}

// NewSnapshot creates a snapshot with a fresh handle.
func NewSnapshot(name string, rp rope.Rope, revision RevisionID) *Snapshot {
	return &Snapshot{
		ID:        uuid.New(),
		Name:      name,
		Timestamp: time.Now(),
		Revision:  revision,
		rope:      rp,
	}
}

// Rope returns the retained rope.
func (s *Snapshot) Rope() rope.Rope {
	return s.rope
}

// Text returns the full text at this snapshot. Use sparingly for large
// buffers.
func (s *Snapshot) Text() string {
	return s.rope.String()
}

// Len returns the byte length at this snapshot.
func (s *Snapshot) Len() rope.ByteOffset {
	return s.rope.Len()
}

// LineCount returns the number of lines at this snapshot.
func (s *Snapshot) LineCount() uint32 {
	return s.rope.LineCount()
}

// Cursor returns a cursor reading this snapshot. Any number of cursors
// may traverse the same snapshot concurrently.
func (s *Snapshot) Cursor() *rope.Cursor {
	return rope.NewCursor(s.rope)
}

// Age returns how long ago this snapshot was created.
func (s *Snapshot) Age() time.Duration {
	return time.Since(s.Timestamp)
}

// Manager retains snapshots by handle and by name. All operations are
// thread-safe. Releasing a handle merely forgets the reference; shared
// rope nodes are reclaimed by the garbage collector once the last
// snapshot referring to them is gone.
type Manager struct {
	mu        sync.RWMutex
	snapshots map[SnapshotID]*Snapshot
	byName    map[string]*Snapshot
}

// NewManager creates an empty snapshot manager.
func NewManager() *Manager {
	return &Manager{
		snapshots: make(map[SnapshotID]*Snapshot),
		byName:    make(map[string]*Snapshot),
	}
}

// Create retains a snapshot of the given rope and returns its handle.
// A non-empty name that is already taken replaces the older snapshot.
func (m *Manager) Create(name string, rp rope.Rope, revision RevisionID) SnapshotID {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.byName[name]; ok && name != "" {
		delete(m.snapshots, existing.ID)
	}

	snap := NewSnapshot(name, rp, revision)
	m.snapshots[snap.ID] = snap
	if name != "" {
		m.byName[name] = snap
	}
	return snap.ID
}

// Retain stores a buffer snapshot without a name and returns its handle.
func (m *Manager) Retain(s *buffer.Snapshot) SnapshotID {
	return m.Create("", s.Rope(), s.RevisionID())
}

// Get retrieves a snapshot by handle.
func (m *Manager) Get(id SnapshotID) (*Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[id]
	return snap, ok
}

// GetByName retrieves a snapshot by name.
func (m *Manager) GetByName(name string) (*Snapshot, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.byName[name]
	return snap, ok
}

// Release forgets a snapshot by handle. Releasing an unknown handle
// returns ErrSnapshotNotFound.
func (m *Manager) Release(id SnapshotID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, ok := m.snapshots[id]
	if !ok {
		return ErrSnapshotNotFound
	}
	if snap.Name != "" {
		delete(m.byName, snap.Name)
	}
	delete(m.snapshots, id)
	return nil
}

// ReleaseByName forgets a snapshot by name.
func (m *Manager) ReleaseByName(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, ok := m.byName[name]
	if !ok {
		return ErrSnapshotNotFound
	}
	delete(m.snapshots, snap.ID)
	delete(m.byName, name)
	return nil
}

// List returns all snapshots, oldest first.
func (m *Manager) List() []*Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Snapshot, 0, len(m.snapshots))
	for _, snap := range m.snapshots {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// Names returns the names of all named snapshots.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.byName))
	for name := range m.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of retained snapshots.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snapshots)
}

// Prune forgets snapshots older than maxAge and reports how many were
// removed.
func (m *Manager) Prune(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, snap := range m.snapshots {
		if snap.Timestamp.Before(cutoff) {
			if snap.Name != "" {
				delete(m.byName, snap.Name)
			}
			delete(m.snapshots, id)
			removed++
		}
	}
	return removed
}

// PruneKeepN keeps only the n most recent snapshots and reports how many
// were removed.
func (m *Manager) PruneKeepN(n int) int {
	if n < 0 {
		n = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.snapshots) <= n {
		return 0
	}

	ordered := make([]*Snapshot, 0, len(m.snapshots))
	for _, snap := range m.snapshots {
		ordered = append(ordered, snap)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	excess := ordered[:len(ordered)-n]
	for _, snap := range excess {
		if snap.Name != "" {
			delete(m.byName, snap.Name)
		}
		delete(m.snapshots, snap.ID)
	}
	return len(excess)
}

// Clear forgets all snapshots.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = make(map[SnapshotID]*Snapshot)
	m.byName = make(map[string]*Snapshot)
}
