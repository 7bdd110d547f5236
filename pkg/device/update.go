package device

import (
	"github.com/lomesh-protocol/lomesh-go/pkg/log"
	"github.com/lomesh-protocol/lomesh-go/pkg/state"
)

// UpdateFrom applies a packet sniffed from the mesh to the registry.
// Whatever the payload, the node's signal quality and last-seen time
// are refreshed; the payload then decides whether observers, the
// power-state machine or the plugin layer hear about it.
func (s *Service) UpdateFrom(mp *state.MeshPacket) {
	if mp.Decoded == nil {
		return
	}

	info, created, ok := s.getOrCreate(mp.From)
	if !ok {
		return
	}

	// A valid receive timestamp updates last-seen even without a
	// position payload, so online accounting runs off real
	// observation time.
	if mp.RxTime != 0 {
		info.HasPosition = true
		info.Position.Time = mp.RxTime
	}

	// Keep the most recent SNR we received for this node.
	info.SNR = mp.RxSnr

	switch mp.Decoded.Which {
	case state.PayloadPosition:
		// Legacy standalone position packet.
		s.logger.Debug("processing deprecated position packet", "from", mp.From)
		s.UpdatePosition(mp.From, mp.Decoded.Position)

	case state.PayloadData:
		if mp.To == state.NodeNumBroadcast || mp.To == s.NodeNum() {
			if s.cfg.Plugins != nil {
				s.cfg.Plugins.Deliver(mp)
			}
		}

	case state.PayloadUser:
		// Legacy standalone user packet.
		s.logger.Debug("processing deprecated user packet", "from", mp.From)
		s.UpdateUser(mp.From, mp.Decoded.User)

	default:
		// Counts may still have changed (a node was created above).
		s.emit(log.Event{
			Category:   log.CategoryNode,
			NodeNum:    mp.From,
			NodeUpdate: &log.NodeUpdateEvent{Kind: mp.Decoded.Which, Created: created},
		})
		s.notifier.Notify(false)
	}
}

// UpdatePosition applies received position data to a node. Position
// updates are always worth a redraw, so observers are notified even
// if nothing else changed.
func (s *Service) UpdatePosition(nodeNum uint32, p state.Position) {
	info, created, ok := s.getOrCreate(nodeNum)
	if !ok {
		return
	}

	s.logger.Debug("updating position",
		"node", nodeNum, "time", p.Time, "lat_i", p.LatitudeI, "lon_i", p.LongitudeI)

	info.Position = p
	info.HasPosition = true
	s.updatedNode = info

	s.emit(log.Event{
		Category:   log.CategoryNode,
		NodeNum:    nodeNum,
		NodeUpdate: &log.NodeUpdateEvent{Kind: state.PayloadPosition, Changed: true, Created: created},
	})
	s.notifier.Notify(true)
}

// UpdateUser applies received user identity data to a node. Identical
// re-deliveries are silently absorbed; only a real change marks the
// node for redraw, wakes the power-state machine and forces a
// notification.
func (s *Service) UpdateUser(nodeNum uint32, u state.User) {
	info, created, ok := s.getOrCreate(nodeNum)
	if !ok {
		return
	}

	changed := !info.User.Equal(u)

	info.User = u
	info.HasUser = true

	s.logger.Debug("updating user",
		"node", nodeNum, "changed", changed,
		"id", u.ID, "long_name", u.LongName, "short_name", u.ShortName)

	if !changed {
		return
	}

	s.updatedNode = info
	if s.cfg.Power != nil {
		s.cfg.Power.Trigger(EventNodeDBUpdated)
	}
	s.emit(log.Event{
		Category:   log.CategoryNode,
		NodeNum:    nodeNum,
		NodeUpdate: &log.NodeUpdateEvent{Kind: state.PayloadUser, Changed: true, Created: created},
	})
	s.notifier.Notify(true)
}

// getOrCreate wraps the registry, converting capacity exhaustion into
// a recorded critical error. The update is dropped only because the
// sizing contract is already broken; this is never silent.
func (s *Service) getOrCreate(nodeNum uint32) (info *state.NodeInfo, created, ok bool) {
	before := s.reg.NumNodes()
	info, err := s.reg.GetOrCreate(nodeNum)
	if err != nil {
		s.capacityViolation("update")
		return nil, false, false
	}
	return info, s.reg.NumNodes() > before, true
}
