// Package tracking provides handle-based snapshot retention for buffers.
//
// Components that need to read a buffer version for longer than a single
// call register it with a Manager and hold its SnapshotID. Handles are
// UUIDs, so they remain meaningful across process boundaries. Retained
// ropes share structure with the live buffer, which makes a snapshot
// O(1) to take and cheap to keep.
//
// Reclamation is reachability-based: releasing a handle simply drops the
// reference, and the garbage collector frees whatever tree nodes no other
// version still shares. Prune and PruneKeepN offer age-based and
// count-based retention policies on top of that.
//
//	m := tracking.NewManager()
//	id := m.Create("before_format", buf.Rope(), buf.RevisionID())
//	...
//	if snap, ok := m.Get(id); ok {
//	    c := snap.Cursor() // reads the retained version
//	}
//	m.Release(id)
package tracking
