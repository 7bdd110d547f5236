package main

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"time"

	"github.com/lomesh-protocol/lomesh-go/pkg/device"
	"github.com/lomesh-protocol/lomesh-go/pkg/state"
)

// parseMAC parses a colon-separated MAC string into the fixed form.
func parseMAC(s string) ([state.MACLen]byte, error) {
	var out [state.MACLen]byte
	hw, err := net.ParseMAC(s)
	if err != nil {
		return out, err
	}
	if len(hw) != state.MACLen {
		return out, fmt.Errorf("expected %d bytes, got %d", state.MACLen, len(hw))
	}
	copy(out[:], hw)
	return out, nil
}

// macSource serves a fixed MAC address.
type macSource struct {
	addr [state.MACLen]byte
}

func (m macSource) MACAddr() [state.MACLen]byte { return m.addr }

// systemClock reads mesh time from the wall clock.
type systemClock struct{}

func (systemClock) Now() uint32 { return uint32(time.Now().Unix()) }

// systemRandom draws collision-retry randomness from math/rand.
type systemRandom struct {
	r *rand.Rand
}

func newSystemRandom() *systemRandom {
	return &systemRandom{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

func (s *systemRandom) Uint32Range(lo, hi uint32) uint32 {
	return lo + s.r.Uint32N(hi-lo)
}

// recordingCipher stands in for the radio's crypto engine: it only
// remembers the most recent key so the shell can display it.
type recordingCipher struct {
	keyLen int
	sets   int
}

func (c *recordingCipher) SetActiveKey(key []byte) error {
	c.keyLen = len(key)
	c.sets++
	return nil
}

// loggingPowerSink logs power-state events instead of driving a
// power FSM.
type loggingPowerSink struct {
	logger *slog.Logger
}

func (p *loggingPowerSink) Trigger(event string) {
	p.logger.Info("power event", "event", event)
}

// loggingPluginDispatcher logs delivered application payloads.
type loggingPluginDispatcher struct {
	logger *slog.Logger
}

func (p *loggingPluginDispatcher) Deliver(mp *state.MeshPacket) {
	p.logger.Info("plugin payload",
		"from", mp.From, "to", mp.To, "bytes", len(mp.Decoded.Data))
}

// Compile-time interface satisfaction checks.
var (
	_ device.MACSource        = macSource{}
	_ device.Clock            = systemClock{}
	_ device.RandomSource     = (*systemRandom)(nil)
	_ device.Cipher           = (*recordingCipher)(nil)
	_ device.PowerSink        = (*loggingPowerSink)(nil)
	_ device.PluginDispatcher = (*loggingPluginDispatcher)(nil)
)
