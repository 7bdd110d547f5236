package persistence

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/lomesh-protocol/lomesh-go/pkg/state"
)

func sampleState() *state.DeviceState {
	return &state.DeviceState{
		MyNode: state.MyNodeInfo{
			NodeNum:         0xbeef1234,
			HWModel:         "lomesh-sim",
			FirmwareVersion: "1.2.42",
			MinAppVersion:   20120,
		},
		Owner: state.User{
			ID:        "!deadbeef1234",
			LongName:  "Unknown 1234",
			ShortName: "?34",
			MacAddr:   []byte{0xde, 0xad, 0xbe, 0xef, 0x12, 0x34},
		},
		Radio: state.RadioConfig{
			Prefs: state.Preferences{
				Region:                state.RegionEU865,
				PositionBroadcastSecs: 900,
			},
			Channel: state.ChannelSettings{
				ModemConfig: state.ModemBw125Cr48Sf4096,
				PSK:         []byte{1},
			},
		},
		Nodes: []state.NodeInfo{
			{Num: 0xbeef1234, HasUser: true},
			{Num: 9, SNR: 4.5, HasPosition: true, Position: state.Position{Time: 12345}},
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ds := sampleState()

	data, err := Encode(ds)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}

	if got.Version != StateVersion {
		t.Errorf("Version = %d, want %d", got.Version, StateVersion)
	}
	if !reflect.DeepEqual(got, ds) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, ds)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	first, err := Encode(sampleState())
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	second, err := Encode(sampleState())
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("equal snapshots encoded to different bytes")
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Run("corrupt bytes", func(t *testing.T) {
		ds, err := Decode([]byte{0xff, 0x00, 0xde})
		if !errors.Is(err, ErrCorrupt) {
			t.Errorf("Decode() error = %v, want ErrCorrupt", err)
		}
		if ds != nil {
			t.Errorf("Decode() state = %+v, want nil", ds)
		}
	})

	t.Run("stale version", func(t *testing.T) {
		old := sampleState()
		old.Version = StateMinVersion - 1
		data, err := Marshal(old)
		if err != nil {
			t.Fatalf("Marshal() error: %v", err)
		}

		ds, err := Decode(data)
		if !errors.Is(err, ErrVersionTooOld) {
			t.Errorf("Decode() error = %v, want ErrVersionTooOld", err)
		}
		if ds != nil {
			t.Errorf("Decode() state = %+v, want nil", ds)
		}
	})
}

func TestStoreLoadOutcomes(t *testing.T) {
	t.Run("no file", func(t *testing.T) {
		s := NewStore(filepath.Join(t.TempDir(), "db.snap"))
		ds, outcome, err := s.Load()
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if outcome != LoadNoFile {
			t.Errorf("outcome = %v, want NO_FILE", outcome)
		}
		if ds != nil {
			t.Errorf("state = %+v, want nil", ds)
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "db.snap")
		if err := os.WriteFile(path, []byte("not cbor at all"), 0o644); err != nil {
			t.Fatal(err)
		}

		ds, outcome, err := NewStore(path).Load()
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if outcome != LoadCorrupt {
			t.Errorf("outcome = %v, want CORRUPT", outcome)
		}
		if ds != nil {
			t.Errorf("state = %+v, want nil", ds)
		}
	})

	t.Run("stale version", func(t *testing.T) {
		old := sampleState()
		old.Version = StateMinVersion - 1
		data, err := Marshal(old)
		if err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(t.TempDir(), "db.snap")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}

		ds, outcome, err := NewStore(path).Load()
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if outcome != LoadVersionTooOld {
			t.Errorf("outcome = %v, want VERSION_TOO_OLD", outcome)
		}
		if ds != nil {
			t.Errorf("state = %+v, want nil", ds)
		}
	})
}

func TestStoreSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flash", "db.snap")
	s := NewStore(path)
	ds := sampleState()

	if err := s.Save(ds); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	// The staging file must not survive a completed save.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("staging file still present after save: %v", err)
	}

	got, outcome, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if outcome != LoadOK {
		t.Fatalf("outcome = %v, want OK", outcome)
	}
	if !reflect.DeepEqual(got, ds) {
		t.Errorf("loaded state mismatch:\n got %+v\nwant %+v", got, ds)
	}
}

func TestStoreSaveReplacesPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.snap")
	s := NewStore(path)

	ds := sampleState()
	if err := s.Save(ds); err != nil {
		t.Fatal(err)
	}

	ds.Owner.LongName = "Renamed"
	if err := s.Save(ds); err != nil {
		t.Fatal(err)
	}

	got, outcome, err := s.Load()
	if err != nil || outcome != LoadOK {
		t.Fatalf("Load() = %v outcome %v", err, outcome)
	}
	if got.Owner.LongName != "Renamed" {
		t.Errorf("LongName = %q, want the second save's value", got.Owner.LongName)
	}
}

func TestStoreSaveFailureKeepsPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.snap")
	s := NewStore(path)

	ds := sampleState()
	if err := s.Save(ds); err != nil {
		t.Fatal(err)
	}

	// Squat a directory on the staging path so the next save cannot
	// stage its temporary file.
	if err := os.Mkdir(path+".tmp", 0o755); err != nil {
		t.Fatal(err)
	}

	changed := sampleState()
	changed.Owner.LongName = "Must Not Persist"
	if err := s.Save(changed); err == nil {
		t.Fatal("Save() succeeded with the staging path blocked")
	}

	// The previous canonical file is untouched.
	got, outcome, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if outcome != LoadOK {
		t.Fatalf("outcome = %v, want OK", outcome)
	}
	if got.Owner.LongName != ds.Owner.LongName {
		t.Errorf("LongName = %q, want the prior snapshot's %q", got.Owner.LongName, ds.Owner.LongName)
	}
	if !reflect.DeepEqual(got, ds) {
		t.Errorf("prior snapshot mismatch:\n got %+v\nwant %+v", got, ds)
	}
}

func TestStoreSaveNoSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.snap")
	s := NewStore(path)

	ds := sampleState()
	ds.NoSave = true

	if err := s.Save(ds); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no-save snapshot still written to flash")
	}
}
