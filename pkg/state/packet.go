package state

// NodeNumBroadcast is the reserved broadcast node number.
const NodeNumBroadcast uint32 = 0xFFFFFFFF

// PayloadTag identifies which payload a decoded subpacket carries.
type PayloadTag uint8

const (
	// PayloadNone means the subpacket carries no recognized payload.
	PayloadNone PayloadTag = 0
	// PayloadPosition is a legacy standalone position payload.
	PayloadPosition PayloadTag = 1
	// PayloadData is a generic application payload for the plugin
	// dispatcher.
	PayloadData PayloadTag = 2
	// PayloadUser is a legacy standalone user-identity payload.
	PayloadUser PayloadTag = 3
)

// String returns the payload tag name.
func (p PayloadTag) String() string {
	switch p {
	case PayloadNone:
		return "NONE"
	case PayloadPosition:
		return "POSITION"
	case PayloadData:
		return "DATA"
	case PayloadUser:
		return "USER"
	default:
		return "UNKNOWN"
	}
}

// SubPacket is the decoded inner payload of a mesh packet.
type SubPacket struct {
	// Which selects the populated payload field.
	Which PayloadTag

	// Position is valid when Which == PayloadPosition.
	Position Position

	// User is valid when Which == PayloadUser.
	User User

	// Data is valid when Which == PayloadData.
	Data []byte
}

// MeshPacket is an inbound packet as seen by the update pipeline.
// Radio framing and decryption happen upstream; by the time a packet
// reaches the registry it either has a decoded subpacket or it is
// ignored.
type MeshPacket struct {
	// From is the sending node number.
	From uint32

	// To is the destination node number, possibly NodeNumBroadcast.
	To uint32

	// RxTime is the epoch-seconds receive timestamp, 0 if the local
	// clock was not yet valid when the packet arrived.
	RxTime uint32

	// RxSnr is the signal quality the packet was received with.
	RxSnr float32

	// Decoded is the decrypted subpacket, nil if decryption failed.
	Decoded *SubPacket
}
