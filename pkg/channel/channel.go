package channel

import (
	"bytes"
	"fmt"

	"github.com/lomesh-protocol/lomesh-go/pkg/state"
)

// defaultPSK is the well-known key for the public default channel that
// all nodes power up on (AES128). Short-form key indices select
// variants of it.
var defaultPSK = []byte{
	0xd4, 0xf1, 0xbb, 0x3a, 0x20, 0x29, 0x07, 0x59,
	0xf0, 0xbc, 0xff, 0xab, 0xcf, 0x4e, 0x69, 0xbf,
}

// DefaultPSKIndex is the short-form key installed on first boot.
const DefaultPSKIndex = 1

// Derived is the usable channel configuration produced by Apply.
type Derived struct {
	// Name is the resolved display name of the channel.
	Name string

	// Key is the expanded active key. Empty disables encryption.
	Key []byte

	// FactoryReset reports whether this apply honored a pending
	// factory-reset request.
	FactoryReset bool
}

// Dev-mode preference overrides. Sleep very frequently to stress test
// companion comms, broadcast position every 6 minutes.
const (
	devScreenOnSecs          = 10
	devWaitBluetoothSecs     = 10
	devPositionBroadcastSecs = 6 * 60
	devLsSecs                = 60
)

// InstallDefaults resets the channel settings to the hardcoded
// defaults: long-range/slow modem profile, short-form key index 1,
// empty name.
func InstallDefaults(c *state.ChannelSettings) {
	*c = state.ChannelSettings{
		ModemConfig: state.ModemBw125Cr48Sf4096,
		PSK:         []byte{DefaultPSKIndex},
	}
}

// Apply normalizes the channel configuration in ds and derives the
// active name and key. It mutates ds in place (canonicalizing the
// stored form) and is idempotent: applying a second time leaves the
// configuration byte-identical.
//
// Apply does not install the key into the cipher or bump the
// generation counter; the owning service does both.
func Apply(ds *state.DeviceState) Derived {
	var d Derived
	ch := &ds.Radio.Channel

	if ds.Radio.Prefs.FactoryReset {
		InstallDefaults(ch)
		ds.Radio.Prefs.FactoryReset = false
		d.FactoryReset = true
	} else if len(ch.PSK) == 0 {
		// First boot: nothing configured at all.
		InstallDefaults(ch)
	}

	// The old literal "Default" name means the same as empty.
	if ch.Name == "Default" {
		ch.Name = ""
	}

	d.Name = resolveName(ch)

	// Collapse literal default-key material back to the short form so
	// repeated saves stabilize.
	if bytes.Equal(ch.PSK, defaultPSK) {
		ch.PSK = []byte{DefaultPSKIndex}
	}

	d.Key = ExpandPSK(ch.PSK)

	if ds.NoSave {
		// Development mode only, never for production builds.
		ds.Radio.Prefs.ScreenOnSecs = devScreenOnSecs
		ds.Radio.Prefs.WaitBluetoothSecs = devWaitBluetoothSecs
		ds.Radio.Prefs.PositionBroadcastSecs = devPositionBroadcastSecs
		ds.Radio.Prefs.LsSecs = devLsSecs
		ds.Radio.Prefs.Region = state.RegionTW
	}

	return d
}

// resolveName turns the possibly-empty stored name into the display
// name.
func resolveName(ch *state.ChannelSettings) string {
	if ch.Name != "" {
		return ch.Name
	}

	// An explicit bandwidth overrides the modem enum, so a profile
	// lookup would be meaningless; the app forgot to set a name.
	if ch.Bandwidth != 0 {
		return "Unset"
	}

	switch ch.ModemConfig {
	case state.ModemBw125Cr45Sf128:
		return "Medium"
	case state.ModemBw500Cr45Sf128:
		return "ShortFast"
	case state.ModemBw31_25Cr48Sf512:
		return "LongAlt"
	case state.ModemBw125Cr48Sf4096:
		return "LongSlow"
	default:
		return "Invalid"
	}
}

// ExpandPSK expands a short-form key into usable key material.
// A 1-byte key is an index: 0 disables encryption, index N selects the
// default key with its final byte incremented by N-1 (wrapping), which
// gives 255 distinguishable variants of the one base key. Any other
// length is literal key material, returned as a copy.
func ExpandPSK(psk []byte) []byte {
	if len(psk) != 1 {
		return bytes.Clone(psk)
	}
	idx := psk[0]
	if idx == 0 {
		return nil
	}
	key := bytes.Clone(defaultPSK)
	key[len(key)-1] += idx - 1 // index 1 means the unmodified default
	return key
}

// Label builds the "#name-X" channel label shown to users and computed
// identically by companion applications. The suffix disambiguates
// channels that share a name but use different keys: for literal keys
// it is a letter A-Z from XOR-folding the active key bytes, for
// short-form keys it is the raw index digit.
func Label(ch *state.ChannelSettings, d Derived) string {
	var suffix byte
	if len(ch.PSK) != 1 {
		var code byte
		for _, b := range d.Key {
			code ^= b
		}
		suffix = 'A' + code%26
	} else {
		suffix = '0' + ch.PSK[0]
	}
	return fmt.Sprintf("#%s-%c", d.Name, suffix)
}
