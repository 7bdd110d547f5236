// Package nodedb implements the bounded registry of mesh nodes and
// the allocation of this device's own node number.
//
// The registry is statically sized: its backing array is allocated
// once at construction and never resized. Records are appended and
// updated in place, never deleted within a boot session. The table
// publishes its length through an atomic counter and a new record is
// fully written before the counter is advanced, which is what makes
// Find safe to call from a context that may preempt the single
// mutating goroutine at any point: such a reader only ever observes
// fully-written records.
//
// All mutation must come from one designated goroutine. Find is the
// only accessor audited for the preempting reader; it performs no
// allocation and never blocks.
package nodedb
