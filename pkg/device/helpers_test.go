package device

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lomesh-protocol/lomesh-go/pkg/log"
	"github.com/lomesh-protocol/lomesh-go/pkg/persistence"
	"github.com/lomesh-protocol/lomesh-go/pkg/state"
)

var testMAC = [state.MACLen]byte{0xde, 0xad, 0xbe, 0xef, 0x12, 0x34}

// testNodeNum is the number seeded from the low four bytes of testMAC.
const testNodeNum uint32 = 0xbeef1234

type fakeCipher struct {
	keys [][]byte
	err  error
}

func (c *fakeCipher) SetActiveKey(key []byte) error {
	c.keys = append(c.keys, append([]byte(nil), key...))
	return c.err
}

func (c *fakeCipher) lastKey() []byte {
	if len(c.keys) == 0 {
		return nil
	}
	return c.keys[len(c.keys)-1]
}

type fakeMAC struct {
	mac [state.MACLen]byte
}

func (m *fakeMAC) MACAddr() [state.MACLen]byte { return m.mac }

type fakeClock struct {
	now uint32
}

func (c *fakeClock) Now() uint32 { return c.now }

// fakeRandom hands out scripted values, then falls back to the lower
// bound so boot paths that never hit a collision stay deterministic.
type fakeRandom struct {
	values []uint32
}

func (r *fakeRandom) Uint32Range(lo, hi uint32) uint32 {
	if len(r.values) == 0 {
		return lo
	}
	v := r.values[0]
	r.values = r.values[1:]
	return v
}

type fakePower struct {
	events []string
}

func (p *fakePower) Trigger(event string) { p.events = append(p.events, event) }

type fakePlugins struct {
	delivered []*state.MeshPacket
}

func (p *fakePlugins) Deliver(mp *state.MeshPacket) { p.delivered = append(p.delivered, mp) }

type recordingDiag struct {
	events []log.Event
}

func (r *recordingDiag) Log(e log.Event) { r.events = append(r.events, e) }

// fixture bundles a service with its fake collaborators.
type fixture struct {
	svc     *Service
	cipher  *fakeCipher
	clock   *fakeClock
	random  *fakeRandom
	power   *fakePower
	plugins *fakePlugins
	diag    *recordingDiag
}

func newFixture(t *testing.T, mutate func(*Config)) *fixture {
	t.Helper()

	f := &fixture{
		cipher:  &fakeCipher{},
		clock:   &fakeClock{now: 1_000_000},
		random:  &fakeRandom{},
		power:   &fakePower{},
		plugins: &fakePlugins{},
		diag:    &recordingDiag{},
	}

	cfg := Config{
		Cipher:          f.cipher,
		MAC:             &fakeMAC{mac: testMAC},
		Clock:           f.clock,
		Random:          f.random,
		Power:           f.power,
		Plugins:         f.plugins,
		Diagnostics:     f.diag,
		HWModel:         "lomesh-sim",
		FirmwareVersion: "1.2.42",
	}
	if mutate != nil {
		mutate(&cfg)
	}

	svc, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	f.svc = svc
	return f
}

// tempStore creates a store backed by a per-test temporary file.
func tempStore(t *testing.T) *persistence.Store {
	t.Helper()
	return persistence.NewStore(filepath.Join(t.TempDir(), "db.snap"))
}

// writeRawSnapshot puts arbitrary bytes at the store's canonical
// path, bypassing the save pipeline.
func writeRawSnapshot(store *persistence.Store, data []byte) error {
	return os.WriteFile(store.Path(), data, 0o644)
}

// userPacket builds a broadcast packet carrying a user identity.
func userPacket(from uint32, u state.User) *state.MeshPacket {
	return &state.MeshPacket{
		From:    from,
		To:      state.NodeNumBroadcast,
		Decoded: &state.SubPacket{Which: state.PayloadUser, User: u},
	}
}

// peerUser builds a plausible identity for a peer node.
func peerUser(name string) state.User {
	return state.User{
		ID:        "!02000000" + name,
		LongName:  "Peer " + name,
		ShortName: "?" + name,
		MacAddr:   []byte{0x02, 0x00, 0x00, 0x00, 0x00, byte(len(name))},
	}
}
