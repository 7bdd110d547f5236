// Package state defines the persisted device-state data model for a
// LoMesh node.
//
// The aggregate is DeviceState: the node's own identity (MyNodeInfo and
// the owner User), the radio/channel configuration, and the table of
// peer nodes heard on the mesh. All persisted structs carry integer
// CBOR keys for compactness; the persistence package owns the encoder
// configuration and versioning.
//
// # Nullable vs Absent
//
// Optional fields use omitempty so absent keys decode to zero values.
// A zero value is always a safe default: an empty PSK means "not yet
// configured", a zero position time means "never heard".
package state
