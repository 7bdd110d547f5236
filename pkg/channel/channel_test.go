package channel

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/lomesh-protocol/lomesh-go/pkg/state"
)

func TestResolveName(t *testing.T) {
	tests := []struct {
		name string
		ch   state.ChannelSettings
		want string
	}{
		{name: "explicit name wins", ch: state.ChannelSettings{Name: "secret"}, want: "secret"},
		{name: "medium profile", ch: state.ChannelSettings{ModemConfig: state.ModemBw125Cr45Sf128}, want: "Medium"},
		{name: "short fast profile", ch: state.ChannelSettings{ModemConfig: state.ModemBw500Cr45Sf128}, want: "ShortFast"},
		{name: "long alt profile", ch: state.ChannelSettings{ModemConfig: state.ModemBw31_25Cr48Sf512}, want: "LongAlt"},
		{name: "long slow profile", ch: state.ChannelSettings{ModemConfig: state.ModemBw125Cr48Sf4096}, want: "LongSlow"},
		{name: "unknown profile", ch: state.ChannelSettings{ModemConfig: state.ModemConfig(42)}, want: "Invalid"},
		{name: "explicit bandwidth overrides profile", ch: state.ChannelSettings{ModemConfig: state.ModemBw125Cr48Sf4096, Bandwidth: 31}, want: "Unset"},
		{name: "explicit name beats bandwidth", ch: state.ChannelSettings{Name: "custom", Bandwidth: 31}, want: "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveName(&tt.ch); got != tt.want {
				t.Errorf("resolveName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExpandPSK(t *testing.T) {
	t.Run("index zero disables encryption", func(t *testing.T) {
		if got := ExpandPSK([]byte{0}); got != nil {
			t.Errorf("ExpandPSK([0]) = %x, want nil", got)
		}
	})

	t.Run("index one is the unmodified default", func(t *testing.T) {
		if got := ExpandPSK([]byte{1}); !bytes.Equal(got, defaultPSK) {
			t.Errorf("ExpandPSK([1]) = %x, want %x", got, defaultPSK)
		}
	})

	t.Run("higher indices increment the final byte", func(t *testing.T) {
		got := ExpandPSK([]byte{3})
		want := bytes.Clone(defaultPSK)
		want[len(want)-1] += 2
		if !bytes.Equal(got, want) {
			t.Errorf("ExpandPSK([3]) = %x, want %x", got, want)
		}
	})

	t.Run("final byte wraps", func(t *testing.T) {
		got := ExpandPSK([]byte{255})
		want := bytes.Clone(defaultPSK)
		want[len(want)-1] += 254
		if !bytes.Equal(got, want) {
			t.Errorf("ExpandPSK([255]) = %x, want %x", got, want)
		}
	})

	t.Run("all indices are distinct", func(t *testing.T) {
		seen := map[string]byte{}
		for i := 1; i <= 255; i++ {
			key := string(ExpandPSK([]byte{byte(i)}))
			if prev, ok := seen[key]; ok {
				t.Fatalf("index %d expands to the same key as index %d", i, prev)
			}
			seen[key] = byte(i)
		}
	})

	t.Run("literal key returned as copy", func(t *testing.T) {
		literal := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
		got := ExpandPSK(literal)
		if !bytes.Equal(got, literal) {
			t.Fatalf("ExpandPSK(literal) = %x, want %x", got, literal)
		}
		got[0] = 0xff
		if literal[0] != 1 {
			t.Error("caller mutation leaked through to the stored key")
		}
	})
}

func TestApplyFirstBoot(t *testing.T) {
	ds := &state.DeviceState{}

	d := Apply(ds)

	if d.Name != "LongSlow" {
		t.Errorf("Name = %q, want %q", d.Name, "LongSlow")
	}
	if !bytes.Equal(d.Key, defaultPSK) {
		t.Errorf("Key = %x, want default", d.Key)
	}
	if d.FactoryReset {
		t.Error("FactoryReset = true on first boot")
	}
	if !bytes.Equal(ds.Radio.Channel.PSK, []byte{DefaultPSKIndex}) {
		t.Errorf("stored PSK = %x, want short form [1]", ds.Radio.Channel.PSK)
	}
	if ds.Radio.Channel.ModemConfig != state.ModemBw125Cr48Sf4096 {
		t.Errorf("ModemConfig = %v, want long slow", ds.Radio.Channel.ModemConfig)
	}
}

func TestApplyFactoryReset(t *testing.T) {
	ds := &state.DeviceState{}
	ds.Radio.Channel = state.ChannelSettings{
		Name:        "secret",
		ModemConfig: state.ModemBw500Cr45Sf128,
		PSK:         []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
	}
	ds.Radio.Prefs.FactoryReset = true

	d := Apply(ds)

	if !d.FactoryReset {
		t.Error("FactoryReset = false, want true")
	}
	if ds.Radio.Prefs.FactoryReset {
		t.Error("reset request not cleared after being honored")
	}
	if d.Name != "LongSlow" {
		t.Errorf("Name = %q, want defaults restored", d.Name)
	}
	if !bytes.Equal(ds.Radio.Channel.PSK, []byte{DefaultPSKIndex}) {
		t.Errorf("stored PSK = %x, want short form [1]", ds.Radio.Channel.PSK)
	}

	// A second apply must not reset again.
	d = Apply(ds)
	if d.FactoryReset {
		t.Error("second apply reported another factory reset")
	}
}

func TestApplyCanonicalization(t *testing.T) {
	t.Run("literal default key collapses to short form", func(t *testing.T) {
		ds := &state.DeviceState{}
		ds.Radio.Channel.PSK = bytes.Clone(defaultPSK)

		d := Apply(ds)

		if !bytes.Equal(ds.Radio.Channel.PSK, []byte{DefaultPSKIndex}) {
			t.Errorf("stored PSK = %x, want short form [1]", ds.Radio.Channel.PSK)
		}
		if !bytes.Equal(d.Key, defaultPSK) {
			t.Errorf("Key = %x, want default", d.Key)
		}
	})

	t.Run("legacy Default name collapses to empty", func(t *testing.T) {
		ds := &state.DeviceState{}
		ds.Radio.Channel.Name = "Default"
		ds.Radio.Channel.PSK = []byte{1}

		d := Apply(ds)

		if ds.Radio.Channel.Name != "" {
			t.Errorf("stored Name = %q, want empty", ds.Radio.Channel.Name)
		}
		if d.Name != "LongSlow" {
			t.Errorf("Name = %q, want derived from modem profile", d.Name)
		}
	})

	t.Run("apply is idempotent", func(t *testing.T) {
		ds := &state.DeviceState{}
		ds.Radio.Channel.Name = "Default"
		ds.Radio.Channel.PSK = bytes.Clone(defaultPSK)

		first := Apply(ds)
		snap := *ds
		snap.Radio.Channel.PSK = bytes.Clone(ds.Radio.Channel.PSK)

		second := Apply(ds)

		if !reflect.DeepEqual(snap, *ds) {
			t.Errorf("second apply changed the stored configuration:\n got %+v\nwant %+v", *ds, snap)
		}
		if first.Name != second.Name || !bytes.Equal(first.Key, second.Key) {
			t.Error("second apply derived a different channel")
		}
	})
}

func TestApplyDevOverrides(t *testing.T) {
	ds := &state.DeviceState{NoSave: true}

	Apply(ds)

	prefs := ds.Radio.Prefs
	if prefs.ScreenOnSecs != devScreenOnSecs {
		t.Errorf("ScreenOnSecs = %d, want %d", prefs.ScreenOnSecs, devScreenOnSecs)
	}
	if prefs.WaitBluetoothSecs != devWaitBluetoothSecs {
		t.Errorf("WaitBluetoothSecs = %d, want %d", prefs.WaitBluetoothSecs, devWaitBluetoothSecs)
	}
	if prefs.PositionBroadcastSecs != devPositionBroadcastSecs {
		t.Errorf("PositionBroadcastSecs = %d, want %d", prefs.PositionBroadcastSecs, devPositionBroadcastSecs)
	}
	if prefs.LsSecs != devLsSecs {
		t.Errorf("LsSecs = %d, want %d", prefs.LsSecs, devLsSecs)
	}
	if prefs.Region != state.RegionTW {
		t.Errorf("Region = %v, want TW", prefs.Region)
	}
}

func TestLabel(t *testing.T) {
	t.Run("short form key uses the index digit", func(t *testing.T) {
		ds := &state.DeviceState{}
		d := Apply(ds)
		if got := Label(&ds.Radio.Channel, d); got != "#LongSlow-1" {
			t.Errorf("Label() = %q, want %q", got, "#LongSlow-1")
		}
	})

	t.Run("literal key XOR-folds to a letter", func(t *testing.T) {
		ds := &state.DeviceState{}
		ds.Radio.Channel.Name = "test"
		ds.Radio.Channel.PSK = make([]byte, 16) // folds to 0

		d := Apply(ds)

		if got := Label(&ds.Radio.Channel, d); got != "#test-A" {
			t.Errorf("Label() = %q, want %q", got, "#test-A")
		}
	})

	t.Run("fold is over the expanded key", func(t *testing.T) {
		ds := &state.DeviceState{}
		ds.Radio.Channel.Name = "test"
		psk := make([]byte, 16)
		psk[3] = 25 // folds to 25 -> 'Z'
		ds.Radio.Channel.PSK = psk

		d := Apply(ds)

		if got := Label(&ds.Radio.Channel, d); got != "#test-Z" {
			t.Errorf("Label() = %q, want %q", got, "#test-Z")
		}
	})
}
