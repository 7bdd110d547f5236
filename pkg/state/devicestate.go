package state

import "bytes"

// MACLen is the length of a hardware MAC address in bytes.
const MACLen = 6

// User identifies the human owner of a node.
type User struct {
	// ID is the stable user identifier. Configured users look like
	// Signal-style phone numbers; unconfigured nodes use "!<macaddr>"
	// (lowercase hex, no colons).
	ID string `cbor:"1,keyasint,omitempty"`

	// LongName is the full display name.
	LongName string `cbor:"2,keyasint,omitempty"`

	// ShortName is a very short display name (a few characters).
	ShortName string `cbor:"3,keyasint,omitempty"`

	// MacAddr is the 6-byte hardware address of the user's node.
	MacAddr []byte `cbor:"4,keyasint,omitempty"`
}

// Equal reports whether two users are identical, field by field.
// Byte-level struct comparison is deliberately not used here: the
// update pipeline keys "did anything change" decisions off this.
func (u User) Equal(o User) bool {
	return u.ID == o.ID &&
		u.LongName == o.LongName &&
		u.ShortName == o.ShortName &&
		bytes.Equal(u.MacAddr, o.MacAddr)
}

// Position is the last known location of a node.
// Coordinates are fixed-point 1e-7 degrees.
type Position struct {
	// LatitudeI is latitude in 1e-7 degree units.
	LatitudeI int32 `cbor:"1,keyasint,omitempty"`

	// LongitudeI is longitude in 1e-7 degree units.
	LongitudeI int32 `cbor:"2,keyasint,omitempty"`

	// Altitude is meters above sea level.
	Altitude int32 `cbor:"3,keyasint,omitempty"`

	// Time is the epoch-seconds timestamp of the most recent
	// observation of this node. Online accounting runs off it even
	// when no full position fix was ever received.
	Time uint32 `cbor:"4,keyasint,omitempty"`
}

// NodeInfo is one entry in the node registry, keyed by Num.
type NodeInfo struct {
	// Num is the node number this record describes.
	Num uint32 `cbor:"1,keyasint"`

	// User is the owner identity last advertised by the node.
	User User `cbor:"2,keyasint,omitempty"`

	// Position is the last known position.
	Position Position `cbor:"3,keyasint,omitempty"`

	// SNR is the signal quality of the most recent packet heard
	// from this node.
	SNR float32 `cbor:"4,keyasint,omitempty"`

	// HasUser is set once a user identity has been observed.
	HasUser bool `cbor:"5,keyasint,omitempty"`

	// HasPosition is set once any timestamped observation exists.
	HasPosition bool `cbor:"6,keyasint,omitempty"`
}

// MyNodeInfo is the device's own identity block.
type MyNodeInfo struct {
	// NodeNum is our mesh address. 0 means not yet assigned.
	NodeNum uint32 `cbor:"1,keyasint,omitempty"`

	// Region is the legacy region slot. Old builds stored strings
	// like "1.0-EU433" here; newer builds store the hardware version
	// string and track the region as a Preferences enum instead.
	Region string `cbor:"2,keyasint,omitempty"`

	// HWModel is the hardware vendor/model string, set from the
	// running build at boot, never trusted from flash.
	HWModel string `cbor:"3,keyasint,omitempty"`

	// FirmwareVersion is the firmware version string, set from the
	// running build at boot.
	FirmwareVersion string `cbor:"4,keyasint,omitempty"`

	// MinAppVersion is the minimum companion-app version this
	// firmware requires, format Mmmss.
	MinAppVersion uint32 `cbor:"5,keyasint,omitempty"`

	// ErrorCode is the last critical error recorded this session.
	ErrorCode CriticalErrorCode `cbor:"6,keyasint,omitempty"`

	// ErrorAddress is the address associated with the last critical
	// error, when meaningful.
	ErrorAddress uint32 `cbor:"7,keyasint,omitempty"`

	// ErrorCount counts critical errors recorded this session.
	ErrorCount uint32 `cbor:"8,keyasint,omitempty"`
}

// ChannelSettings is the shared channel configuration. Nodes must
// agree on name and key to talk to each other.
type ChannelSettings struct {
	// TxPower is the transmit power in dBm, 0 = default.
	TxPower int32 `cbor:"1,keyasint,omitempty"`

	// ModemConfig selects a predefined bandwidth/spreading-factor
	// profile. Ignored when Bandwidth is set explicitly.
	ModemConfig ModemConfig `cbor:"2,keyasint,omitempty"`

	// Bandwidth is an explicit bandwidth override in kHz. Nonzero
	// means ModemConfig must be ignored; only one of the two is
	// honored.
	Bandwidth uint32 `cbor:"3,keyasint,omitempty"`

	// SpreadFactor is the explicit spreading factor override.
	SpreadFactor uint32 `cbor:"4,keyasint,omitempty"`

	// CodingRate is the explicit coding rate override.
	CodingRate uint32 `cbor:"5,keyasint,omitempty"`

	// Name is the raw channel name. Empty means "derive the display
	// name from the modem configuration".
	Name string `cbor:"6,keyasint,omitempty"`

	// PSK is the short-form pre-shared key: empty = none configured,
	// 1 byte = index into the well-known key table, 16+ bytes =
	// literal key material.
	PSK []byte `cbor:"7,keyasint,omitempty"`
}

// Preferences holds user preferences that ride along with the radio
// configuration.
type Preferences struct {
	// Region is the regulatory region the radio operates in.
	Region RegionCode `cbor:"1,keyasint,omitempty"`

	// ScreenOnSecs is how long the screen stays on after wake.
	ScreenOnSecs uint32 `cbor:"2,keyasint,omitempty"`

	// WaitBluetoothSecs is how long to wait for a phone connection
	// before sleeping.
	WaitBluetoothSecs uint32 `cbor:"3,keyasint,omitempty"`

	// PositionBroadcastSecs is the interval between position
	// broadcasts.
	PositionBroadcastSecs uint32 `cbor:"4,keyasint,omitempty"`

	// LsSecs is the light-sleep interval.
	LsSecs uint32 `cbor:"5,keyasint,omitempty"`

	// FactoryReset requests that all channel configuration be
	// discarded and defaults installed on the next apply. Cleared
	// once honored.
	FactoryReset bool `cbor:"6,keyasint,omitempty"`
}

// RadioConfig bundles channel settings with preferences.
type RadioConfig struct {
	// Prefs are the user preferences.
	Prefs Preferences `cbor:"1,keyasint,omitempty"`

	// Channel is the channel configuration.
	Channel ChannelSettings `cbor:"2,keyasint,omitempty"`
}

// DeviceState is the complete persisted aggregate: everything that
// must survive a power cycle.
type DeviceState struct {
	// Version is the snapshot schema version. Stamped on save,
	// gated on load by the persistence package.
	Version uint32 `cbor:"1,keyasint"`

	// MyNode is this device's identity.
	MyNode MyNodeInfo `cbor:"2,keyasint"`

	// Owner is this device's owner record.
	Owner User `cbor:"3,keyasint"`

	// Radio is the channel/preferences configuration.
	Radio RadioConfig `cbor:"4,keyasint"`

	// Nodes is the known-node table, populated entries only.
	Nodes []NodeInfo `cbor:"5,keyasint,omitempty"`

	// NoSave disables persistence entirely. Development builds only;
	// it also switches several timing preferences to aggressive
	// stress-test values when the channel configuration is applied.
	NoSave bool `cbor:"6,keyasint,omitempty"`
}
