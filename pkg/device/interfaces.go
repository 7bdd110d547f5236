package device

import "github.com/lomesh-protocol/lomesh-go/pkg/state"

// EventNodeDBUpdated is the power-state event fired when a node's
// stored identity changes.
const EventNodeDBUpdated = "nodedb.updated"

// Cipher is the symmetric-cipher engine the active channel key is
// installed into. The implementation lives outside this module.
type Cipher interface {
	// SetActiveKey installs the expanded key. An empty key disables
	// encryption.
	SetActiveKey(key []byte) error
}

// MACSource reads the hardware MAC address.
type MACSource interface {
	// MACAddr returns the 6-byte hardware address.
	MACAddr() [state.MACLen]byte
}

// Clock reads the current mesh time.
type Clock interface {
	// Now returns the current time in epoch seconds. May be wrong
	// until the clock has been set from GPS or a peer.
	Now() uint32
}

// RandomSource supplies uniform random integers. Used only for
// node-number collision retries.
type RandomSource interface {
	// Uint32Range returns a uniform random value in [lo, hi).
	Uint32Range(lo, hi uint32) uint32
}

// PowerSink receives named events for the power-state machine.
type PowerSink interface {
	// Trigger fires a named event. Must not block.
	Trigger(event string)
}

// PluginDispatcher delivers decoded application payloads to the
// plugin layer.
type PluginDispatcher interface {
	// Deliver hands a packet with a generic data payload to the
	// registered plugins.
	Deliver(mp *state.MeshPacket)
}
