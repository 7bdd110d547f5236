package device

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lomesh-protocol/lomesh-go/pkg/channel"
	"github.com/lomesh-protocol/lomesh-go/pkg/log"
	"github.com/lomesh-protocol/lomesh-go/pkg/nodedb"
	"github.com/lomesh-protocol/lomesh-go/pkg/observer"
	"github.com/lomesh-protocol/lomesh-go/pkg/persistence"
	"github.com/lomesh-protocol/lomesh-go/pkg/state"
)

// MinAppVersion is the minimum companion-app version this firmware
// requires, format Mmmss (M is 1 + the numeric major number, so 20120
// means 1.1.20). Always comes from the running build, never flash.
const MinAppVersion = 20120

// Config configures a Service.
type Config struct {
	// Capacity is the fixed node-registry size. <= 0 selects the
	// nodedb default.
	Capacity int

	// Store persists the snapshot. Nil disables persistence (the
	// device runs on defaults every boot).
	Store *persistence.Store

	// Cipher receives the expanded channel key. Required.
	Cipher Cipher

	// MAC reads the hardware address. Required.
	MAC MACSource

	// Clock reads mesh time. Required.
	Clock Clock

	// Random supplies collision-retry randomness. Required.
	Random RandomSource

	// Power receives power-state events. Optional.
	Power PowerSink

	// Plugins receives generic application payloads. Optional.
	Plugins PluginDispatcher

	// Logger receives operational log output. Optional.
	Logger *slog.Logger

	// Diagnostics receives structured diagnostics events. Optional.
	Diagnostics log.Logger

	// HWModel, HWVersion and FirmwareVersion describe the running
	// build. They override whatever a loaded snapshot claims.
	HWModel         string
	HWVersion       string
	FirmwareVersion string
}

// Service is the device-state aggregate: one per process, alive for
// the process lifetime.
type Service struct {
	cfg Config

	ds  *state.DeviceState
	reg *nodedb.Registry

	notifier *observer.Notifier

	mac [state.MACLen]byte

	// sessionID identifies this boot session in diagnostics events.
	sessionID string

	// generation counts channel-configuration applies this session.
	generation uint32

	// active name/key are a pure cache of the current channel
	// configuration, refreshed on every apply.
	activeName string
	activeKey  []byte

	// updatedNode is the record the GUI should redraw next, nil when
	// nothing is pending.
	updatedNode *state.NodeInfo

	logger *slog.Logger
	diag   log.Logger
}

// New creates the aggregate. It does not touch flash; call Init to
// run the boot sequence.
func New(cfg Config) (*Service, error) {
	if cfg.Cipher == nil {
		return nil, errors.New("device: Cipher is required")
	}
	if cfg.MAC == nil {
		return nil, errors.New("device: MAC is required")
	}
	if cfg.Clock == nil {
		return nil, errors.New("device: Clock is required")
	}
	if cfg.Random == nil {
		return nil, errors.New("device: Random is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	diag := cfg.Diagnostics
	if diag == nil {
		diag = log.NoopLogger{}
	}

	s := &Service{
		cfg:       cfg,
		ds:        &state.DeviceState{},
		reg:       nodedb.New(cfg.Capacity),
		mac:       cfg.MAC.MACAddr(),
		sessionID: uuid.NewString(),
		logger:    logger,
		diag:      diag,
	}
	s.notifier = observer.NewNotifier(s.reg.NumNodes)
	return s, nil
}

// Init runs the boot sequence: install defaults, load the snapshot if
// one exists, re-derive session-scoped fields from the running build,
// allocate our node number, register our own entry, and apply the
// channel configuration. Init never fails the boot: persistence
// problems degrade to defaults and are reported through diagnostics.
func (s *Service) Init() {
	s.InstallDefaultDeviceState()
	s.loadFromDisk()

	// Session-scoped fields always come from the running build, not
	// from whatever happens to be in the save file.
	s.ds.MyNode.ErrorCode = state.ErrNone
	s.ds.MyNode.ErrorAddress = 0
	s.ds.MyNode.ErrorCount = 0
	s.ds.MyNode.MinAppVersion = MinAppVersion

	// Re-pick after loading so an invalid persisted nodenum doesn't
	// stick forever.
	s.ds.MyNode.NodeNum = nodedb.PickNodeNum(s.ds.MyNode.NodeNum, s.mac[:], s.reg, s.cfg.Random)

	// Include ourselves in the registry under our own number.
	if info, err := s.reg.GetOrCreate(s.ds.MyNode.NodeNum); err != nil {
		s.capacityViolation("self-entry")
	} else {
		info.User = s.ds.Owner
		info.HasUser = true
	}

	// Build-trusted identity strings.
	if s.cfg.HWVersion != "" {
		s.ds.MyNode.Region = s.cfg.HWVersion
	}
	s.convertLegacyRegion()
	s.ds.MyNode.FirmwareVersion = s.cfg.FirmwareVersion
	s.ds.MyNode.HWModel = s.cfg.HWModel

	// If bogus settings got saved, fix them.
	s.applyChannelConfig()

	s.logger.Info("node database initialized",
		"node_num", s.ds.MyNode.NodeNum,
		"num_nodes", s.reg.NumNodes(),
		"region", s.ds.Radio.Prefs.Region.String(),
		"channel", s.activeName)
	s.emit(log.Event{
		Category: log.CategoryBoot,
		Boot: &log.BootEvent{
			Phase:    "init",
			NodeNum:  s.ds.MyNode.NodeNum,
			NumNodes: s.reg.NumNodes(),
		},
	})
}

// InstallDefaultDeviceState wipes the aggregate: identity, channel
// configuration and the node registry all revert to defaults. The
// region preference survives because discarding it would really bum
// users out.
func (s *Service) InstallDefaultDeviceState() {
	oldRegion := s.ds.Radio.Prefs.Region
	oldRegionStr := s.ds.MyNode.Region

	s.ds = &state.DeviceState{}
	s.reg.Clear()

	s.applyChannelConfig()

	// Blank owner info gets reasonable defaults derived from the MAC.
	m := s.mac
	s.ds.Owner.ID = fmt.Sprintf("!%02x%02x%02x%02x%02x%02x", m[0], m[1], m[2], m[3], m[4], m[5])
	s.ds.Owner.MacAddr = append([]byte(nil), m[:]...)

	// A valid short name needs a node number now; we re-pick later in
	// case loaded settings turn out corrupt.
	s.ds.MyNode.NodeNum = nodedb.PickNodeNum(0, s.mac[:], s.reg, s.cfg.Random)
	s.ds.Owner.LongName = fmt.Sprintf("Unknown %02x%02x", m[4], m[5])
	s.ds.Owner.ShortName = fmt.Sprintf("?%02X", s.ds.MyNode.NodeNum&0xff)

	if oldRegion != state.RegionUnset {
		s.ds.Radio.Prefs.Region = oldRegion
	}
	if oldRegionStr != "" {
		s.ds.MyNode.Region = oldRegionStr
	}

	s.emit(log.Event{
		Category: log.CategoryBoot,
		Boot:     &log.BootEvent{Phase: "defaults-installed", NodeNum: s.ds.MyNode.NodeNum},
	})
}

// convertLegacyRegion maps old-style region strings like "1.0-EU433"
// to the region enum, if the preference is still unset.
func (s *Service) convertLegacyRegion() {
	if s.ds.Radio.Prefs.Region != state.RegionUnset {
		return
	}
	if !strings.HasPrefix(s.ds.MyNode.Region, "1.0-") {
		return
	}
	if code := state.RegionFromName(s.ds.MyNode.Region[4:]); code != state.RegionUnset {
		s.ds.Radio.Prefs.Region = code
	}
}

// applyChannelConfig normalizes the channel configuration, installs
// the derived key into the cipher and bumps the generation counter so
// other components can detect they might now be on a new channel.
func (s *Service) applyChannelConfig() channel.Derived {
	d := channel.Apply(s.ds)
	s.generation++
	s.activeName = d.Name
	s.activeKey = d.Key

	if err := s.cfg.Cipher.SetActiveKey(d.Key); err != nil {
		s.logger.Error("failed to install channel key", "error", err)
		s.emit(log.Event{
			Category: log.CategoryError,
			Error:    &log.ErrorEventData{Message: err.Error(), Context: "cipher.SetActiveKey"},
		})
	}

	if d.FactoryReset {
		s.logger.Warn("performed factory reset of channel configuration")
	}
	if s.ds.NoSave {
		s.logger.Warn("development mode active, persistence disabled")
	}

	s.emit(log.Event{
		Category: log.CategoryChannel,
		Channel: &log.ChannelEvent{
			Name:         d.Name,
			KeyLen:       len(d.Key),
			Generation:   s.generation,
			FactoryReset: d.FactoryReset,
		},
	})
	return d
}

// ApplyChannelConfig re-applies the current channel configuration,
// honoring a pending factory-reset flag. External components change
// ChannelSettings through MutateRadioConfig, which funnels here.
func (s *Service) ApplyChannelConfig() { s.applyChannelConfig() }

// MutateRadioConfig hands the radio configuration to fn for mutation
// and re-applies the channel configuration afterwards, keeping the
// active key/name cache and the generation counter consistent.
func (s *Service) MutateRadioConfig(fn func(*state.RadioConfig)) {
	fn(&s.ds.Radio)
	s.applyChannelConfig()
}

// loadFromDisk replaces the aggregate with the persisted snapshot
// when a valid one exists. On any decode or version failure the
// defaults installed beforehand stay in place wholesale; the
// in-memory aggregate is never left partially overwritten.
func (s *Service) loadFromDisk() {
	if s.cfg.Store == nil {
		return
	}

	loaded, outcome, err := s.cfg.Store.Load()
	if err != nil {
		s.logger.Error("failed to read snapshot", "error", err)
		s.emit(log.Event{
			Category: log.CategoryError,
			Error:    &log.ErrorEventData{Message: err.Error(), Context: "store.Load"},
		})
		return
	}

	ev := &log.PersistenceEvent{Op: "load", Outcome: outcome.String()}
	if loaded != nil {
		ev.Version = loaded.Version
		ev.NumNodes = len(loaded.Nodes)
	}
	s.emit(log.Event{Category: log.CategoryPersistence, Persistence: ev})

	switch outcome {
	case persistence.LoadOK:
		if err := s.reg.Install(loaded.Nodes); err != nil {
			// A snapshot bigger than our table is as unusable as a
			// corrupt one; keep the defaults.
			s.logger.Warn("snapshot node table exceeds capacity, discarding",
				"nodes", len(loaded.Nodes), "capacity", s.reg.Capacity())
			s.capacityViolation("snapshot-install")
			return
		}
		loaded.Nodes = nil // the registry owns the records now
		s.ds = loaded
		s.logger.Info("loaded saved preferences", "version", ev.Version, "num_nodes", ev.NumNodes)
	case persistence.LoadNoFile:
		s.logger.Info("no saved preferences found")
	case persistence.LoadCorrupt:
		s.logger.Warn("snapshot corrupt, installing defaults")
	case persistence.LoadVersionTooOld:
		s.logger.Warn("snapshot version too old, installing defaults")
	}
}

// SaveToDisk persists the current aggregate. Failures leave the
// previous snapshot intact and are reported to diagnostics; they
// never crash the device.
func (s *Service) SaveToDisk() error {
	if s.cfg.Store == nil {
		return nil
	}

	snap := *s.ds
	snap.Nodes = s.reg.Snapshot()

	err := s.cfg.Store.Save(&snap)

	ev := &log.PersistenceEvent{Op: "save", Outcome: "ok", Version: snap.Version, NumNodes: len(snap.Nodes)}
	switch {
	case err != nil:
		ev.Outcome = "failed"
	case s.ds.NoSave:
		ev.Outcome = "skipped"
	}
	s.emit(log.Event{Category: log.CategoryPersistence, Persistence: ev})

	if err != nil {
		s.logger.Error("failed to save snapshot", "error", err)
		s.emit(log.Event{
			Category: log.CategoryError,
			Error:    &log.ErrorEventData{Message: err.Error(), Context: "store.Save"},
		})
	}
	return err
}

// RecordCriticalError records a fault that should be reported via the
// companion application, incrementing the session error counter.
func (s *Service) RecordCriticalError(code state.CriticalErrorCode, address uint32) {
	s.logger.Warn("recording critical error", "code", code.String(), "address", address)
	s.ds.MyNode.ErrorCode = code
	s.ds.MyNode.ErrorAddress = address
	s.ds.MyNode.ErrorCount++
	s.emit(log.Event{
		Category: log.CategoryError,
		Error:    &log.ErrorEventData{Code: code, Address: address},
	})
}

// capacityViolation records a node-table sizing contract failure.
func (s *Service) capacityViolation(context string) {
	s.logger.Error("node table full", "context", context, "capacity", s.reg.Capacity())
	s.RecordCriticalError(state.ErrNodeTableFull, 0)
}

// emit stamps and delivers a diagnostics event.
func (s *Service) emit(ev log.Event) {
	ev.Timestamp = time.Now()
	ev.SessionID = s.sessionID
	s.diag.Log(ev)
}
