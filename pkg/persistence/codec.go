package persistence

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/lomesh-protocol/lomesh-go/pkg/state"
)

// StateVersion is the current snapshot schema version.
const StateVersion = 11

// StateMinVersion is the oldest version Decode accepts. Equal to
// StateVersion: older snapshots are discarded wholesale, never
// migrated field by field.
const StateMinVersion = StateVersion

// ErrCorrupt reports that a snapshot failed to decode structurally.
var ErrCorrupt = errors.New("persistence: snapshot corrupt")

// ErrVersionTooOld reports a snapshot below the minimum supported
// version.
var ErrVersionTooOld = errors.New("persistence: snapshot version too old")

// encMode is the CBOR encoder mode for snapshots.
// Configured for deterministic encoding with integer keys, so equal
// snapshots encode to equal bytes.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode for snapshots.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeUnix,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	// Lenient decoding for forward compatibility: unknown keys from a
	// newer minor revision are ignored rather than rejected.
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// Marshal encodes a value with the snapshot encoder mode.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR bytes with the snapshot decoder mode.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// NewEncoder creates a CBOR encoder that writes to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder creates a CBOR decoder that reads from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}

// Encode serializes a snapshot, stamping the current schema version
// on it first.
func Encode(ds *state.DeviceState) ([]byte, error) {
	ds.Version = StateVersion
	data, err := Marshal(ds)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// Decode deserializes a snapshot and gates it on the minimum schema
// version. Structural failures return ErrCorrupt, stale versions
// return ErrVersionTooOld; in both cases no state is returned so
// callers can never end up with partially-decoded, possibly-corrupt
// state.
func Decode(data []byte) (*state.DeviceState, error) {
	var ds state.DeviceState
	if err := Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if ds.Version < StateMinVersion {
		return nil, fmt.Errorf("%w: version %d < %d", ErrVersionTooOld, ds.Version, StateMinVersion)
	}
	return &ds, nil
}
