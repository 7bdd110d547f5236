package log

import (
	"time"

	"github.com/lomesh-protocol/lomesh-go/pkg/state"
)

// Event represents a diagnostics event. CBOR encoding uses integer
// keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the boot session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// NodeNum is the peer node the event concerns, if any.
	NodeNum uint32 `cbor:"4,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Boot        *BootEvent        `cbor:"5,keyasint,omitempty"`
	Persistence *PersistenceEvent `cbor:"6,keyasint,omitempty"`
	Channel     *ChannelEvent     `cbor:"7,keyasint,omitempty"`
	NodeUpdate  *NodeUpdateEvent  `cbor:"8,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"9,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryBoot indicates a boot/reset lifecycle event.
	CategoryBoot Category = 0
	// CategoryPersistence indicates a snapshot load/save outcome.
	CategoryPersistence Category = 1
	// CategoryChannel indicates a channel configuration apply.
	CategoryChannel Category = 2
	// CategoryNode indicates a registry mutation.
	CategoryNode Category = 3
	// CategoryError indicates a recorded error.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryBoot:
		return "BOOT"
	case CategoryPersistence:
		return "PERSISTENCE"
	case CategoryChannel:
		return "CHANNEL"
	case CategoryNode:
		return "NODE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// BootEvent captures boot and reset lifecycle transitions.
type BootEvent struct {
	// Phase names the transition ("init", "defaults-installed",
	// "factory-reset").
	Phase string `cbor:"1,keyasint"`

	// NodeNum is our node number after the transition.
	NodeNum uint32 `cbor:"2,keyasint,omitempty"`

	// NumNodes is the registry size after the transition.
	NumNodes int `cbor:"3,keyasint,omitempty"`
}

// PersistenceEvent captures a snapshot load or save outcome.
type PersistenceEvent struct {
	// Op is "load" or "save".
	Op string `cbor:"1,keyasint"`

	// Outcome is the load outcome name, or "ok"/"skipped" for saves.
	Outcome string `cbor:"2,keyasint"`

	// Version is the snapshot schema version involved.
	Version uint32 `cbor:"3,keyasint,omitempty"`

	// NumNodes is the node count carried by the snapshot.
	NumNodes int `cbor:"4,keyasint,omitempty"`
}

// ChannelEvent captures a channel configuration apply.
type ChannelEvent struct {
	// Name is the resolved channel display name.
	Name string `cbor:"1,keyasint"`

	// KeyLen is the expanded active key length; 0 means encryption
	// is disabled. Key bytes themselves never enter the event log.
	KeyLen int `cbor:"2,keyasint"`

	// Generation is the configuration generation after the apply.
	Generation uint32 `cbor:"3,keyasint"`

	// FactoryReset reports whether this apply honored a pending
	// factory reset.
	FactoryReset bool `cbor:"4,keyasint,omitempty"`
}

// NodeUpdateEvent captures a registry mutation.
type NodeUpdateEvent struct {
	// Kind is the payload that drove the update.
	Kind state.PayloadTag `cbor:"1,keyasint"`

	// Changed reports whether stored fields actually changed.
	Changed bool `cbor:"2,keyasint,omitempty"`

	// Created reports whether the record was created by this update.
	Created bool `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures recorded errors.
type ErrorEventData struct {
	// Code is the critical error code, when the error came through
	// the critical-error recorder.
	Code state.CriticalErrorCode `cbor:"1,keyasint,omitempty"`

	// Address is the address associated with the error.
	Address uint32 `cbor:"2,keyasint,omitempty"`

	// Message is the error message.
	Message string `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
