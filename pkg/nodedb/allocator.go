package nodedb

import (
	"bytes"

	"github.com/lomesh-protocol/lomesh-go/pkg/state"
)

// NumReserved is the size of the reserved low node-number range.
// Numbers below it are never allocated.
const NumReserved = 4

// RandomSource supplies uniform random integers for collision
// retries.
type RandomSource interface {
	// Uint32Range returns a uniform random value in [lo, hi).
	Uint32Range(lo, hi uint32) uint32
}

// PickNodeNum chooses a node number for this device that does not
// collide with any registry entry owned by a different MAC address.
//
// The candidate starts from the stored number, or is seeded from the
// low four MAC bytes when none is stored yet. Reserved values clamp
// to the smallest unreserved number. While the candidate belongs to a
// registry entry with a foreign MAC, a fresh uniform candidate is
// drawn; an entry carrying our own MAC is just a previously-saved
// self-entry, not a collision. Retries are unbounded: the address
// space is huge next to the reserved range and any plausible peer
// count.
func PickNodeNum(current uint32, mac []byte, r *Registry, rng RandomSource) uint32 {
	candidate := current
	if candidate == 0 {
		candidate = uint32(mac[2])<<24 | uint32(mac[3])<<16 |
			uint32(mac[4])<<8 | uint32(mac[5])
	}

	if candidate == state.NodeNumBroadcast || candidate < NumReserved {
		candidate = NumReserved
	}

	for {
		found := r.Find(candidate)
		if found == nil || bytes.Equal(found.User.MacAddr, mac) {
			return candidate
		}
		candidate = rng.Uint32Range(NumReserved, state.NodeNumBroadcast)
	}
}
