package nodedb

import (
	"errors"
	"sync/atomic"

	"github.com/lomesh-protocol/lomesh-go/pkg/state"
)

// DefaultCapacity is the registry size used when no explicit capacity
// is configured.
const DefaultCapacity = 32

// NumOnlineSecs is the recency window for considering a node online.
const NumOnlineSecs = 2 * 60 * 60

// ErrNodeDBFull reports that the fixed registry capacity is
// exhausted. This is a sizing contract violation, not a condition to
// recover from: callers must size the registry so it never happens in
// normal operation.
var ErrNodeDBFull = errors.New("nodedb: node table full")

// Registry is the bounded node table.
type Registry struct {
	// nodes is the backing array, allocated once, never resized.
	nodes []state.NodeInfo

	// count is the published number of valid records. Only the
	// mutating goroutine advances it, and only after the new record
	// is fully written.
	count atomic.Int32

	// readPointer is the iteration cursor. Not reentrant across
	// concurrent cursors.
	readPointer int
}

// New creates a registry with the given fixed capacity.
// A capacity <= 0 selects DefaultCapacity.
func New(capacity int) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Registry{nodes: make([]state.NodeInfo, capacity)}
}

// Capacity returns the fixed table size.
func (r *Registry) Capacity() int { return len(r.nodes) }

// NumNodes returns the current record count.
func (r *Registry) NumNodes() int { return int(r.count.Load()) }

// Find returns the record for a node number, or nil if unknown.
//
// Find may be called from an interrupt-style context that preempts
// the mutating goroutine: it allocates nothing, never blocks, and
// observes only fully-written records.
func (r *Registry) Find(num uint32) *state.NodeInfo {
	n := int(r.count.Load())
	for i := 0; i < n; i++ {
		if r.nodes[i].Num == num {
			return &r.nodes[i]
		}
	}
	return nil
}

// GetOrCreate returns the record for a node number, creating a
// zero-valued record if none exists. It returns ErrNodeDBFull when
// the fixed capacity is already exhausted; triggering that is a
// programming-contract failure, not a droppable update.
//
// Must only be called from the mutating goroutine.
func (r *Registry) GetOrCreate(num uint32) (*state.NodeInfo, error) {
	if info := r.Find(num); info != nil {
		return info, nil
	}

	n := int(r.count.Load())
	if n >= len(r.nodes) {
		return nil, ErrNodeDBFull
	}

	// Write the record completely before publishing the new count so
	// a preempting Find never sees a half-written entry.
	r.nodes[n] = state.NodeInfo{Num: num}
	r.count.Store(int32(n + 1))
	return &r.nodes[n], nil
}

// SinceLastSeen returns how many seconds before now the node was last
// heard from. Timestamps in the future relative to the local clock
// (clock not yet synced) clamp to zero rather than going negative.
func SinceLastSeen(n *state.NodeInfo, now uint32) uint32 {
	delta := int64(now) - int64(n.Position.Time)
	if delta < 0 {
		delta = 0
	}
	return uint32(delta)
}

// NumOnline counts the nodes heard from within the online window
// relative to now.
func (r *Registry) NumOnline(now uint32) int {
	n := int(r.count.Load())
	seen := 0
	for i := 0; i < n; i++ {
		if SinceLastSeen(&r.nodes[i], now) < NumOnlineSecs {
			seen++
		}
	}
	return seen
}

// ResetReadPointer restarts the iteration cursor.
func (r *Registry) ResetReadPointer() { r.readPointer = 0 }

// ReadNext returns the next record in insertion order, or nil when
// the cursor is exhausted.
func (r *Registry) ReadNext() *state.NodeInfo {
	if r.readPointer < r.NumNodes() {
		info := &r.nodes[r.readPointer]
		r.readPointer++
		return info
	}
	return nil
}

// Snapshot copies the populated records for persistence.
func (r *Registry) Snapshot() []state.NodeInfo {
	n := r.NumNodes()
	if n == 0 {
		return nil
	}
	out := make([]state.NodeInfo, n)
	copy(out, r.nodes[:n])
	return out
}

// Install replaces the table contents with records loaded from a
// snapshot. It returns ErrNodeDBFull if the snapshot holds more
// records than the configured capacity.
func (r *Registry) Install(nodes []state.NodeInfo) error {
	if len(nodes) > len(r.nodes) {
		return ErrNodeDBFull
	}
	r.count.Store(0)
	copy(r.nodes, nodes)
	r.readPointer = 0
	r.count.Store(int32(len(nodes)))
	return nil
}

// Clear forgets all records. Only a wholesale reset does this; nodes
// are never deleted individually.
func (r *Registry) Clear() {
	r.count.Store(0)
	r.readPointer = 0
}
