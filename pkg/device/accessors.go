package device

import (
	"github.com/lomesh-protocol/lomesh-go/pkg/channel"
	"github.com/lomesh-protocol/lomesh-go/pkg/observer"
	"github.com/lomesh-protocol/lomesh-go/pkg/state"
)

// NodeNum returns our mesh address.
func (s *Service) NodeNum() uint32 { return s.ds.MyNode.NodeNum }

// Owner returns our owner record.
func (s *Service) Owner() state.User { return s.ds.Owner }

// SetOwner replaces the owner record and propagates it to our own
// registry entry through the regular user-update contract.
func (s *Service) SetOwner(u state.User) {
	s.ds.Owner = u
	s.UpdateUser(s.NodeNum(), u)
}

// MyNodeInfo returns a copy of our identity block.
func (s *Service) MyNodeInfo() state.MyNodeInfo { return s.ds.MyNode }

// NumNodes returns the registry record count.
func (s *Service) NumNodes() int { return s.reg.NumNodes() }

// NumOnline counts nodes heard within the online window of the
// current mesh time.
func (s *Service) NumOnline() int { return s.reg.NumOnline(s.cfg.Clock.Now()) }

// Find returns the record for a node number, or nil. Safe to call
// from an interrupt-style context; see package nodedb.
func (s *Service) Find(num uint32) *state.NodeInfo { return s.reg.Find(num) }

// ResetReadPointer restarts the node iteration cursor.
func (s *Service) ResetReadPointer() { s.reg.ResetReadPointer() }

// ReadNext returns the next node in insertion order, nil when the
// cursor is exhausted. Not reentrant across concurrent cursors.
func (s *Service) ReadNext() *state.NodeInfo { return s.reg.ReadNext() }

// Generation returns the channel-configuration generation counter.
// It starts at 0 on boot and increments on every apply, letting other
// components detect staleness without deep comparison.
func (s *Service) Generation() uint32 { return s.generation }

// ChannelName returns the resolved display name of the active
// channel.
func (s *Service) ChannelName() string { return s.activeName }

// ActiveKeyLen returns the expanded key length; 0 means encryption is
// disabled.
func (s *Service) ActiveKeyLen() int { return len(s.activeKey) }

// ChannelLabel returns the "#name-X" label that companion apps
// compute independently; the suffix makes a changed key visible to
// users whose nodes stop hearing each other.
func (s *Service) ChannelLabel() string {
	return channel.Label(&s.ds.Radio.Channel, channel.Derived{
		Name: s.activeName,
		Key:  s.activeKey,
	})
}

// Subscribe registers a change observer. Call during startup, before
// packets flow.
func (s *Service) Subscribe(h observer.Handler) { s.notifier.Subscribe(h) }

// UpdatedNode returns the record most recently marked as needing a
// GUI redraw, or nil.
func (s *Service) UpdatedNode() *state.NodeInfo { return s.updatedNode }

// ClearUpdatedNode acknowledges the pending redraw.
func (s *Service) ClearUpdatedNode() { s.updatedNode = nil }

// Preferences returns a copy of the current preferences.
func (s *Service) Preferences() state.Preferences { return s.ds.Radio.Prefs }
