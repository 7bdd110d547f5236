package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/lomesh-protocol/lomesh-go/pkg/device"
	"github.com/lomesh-protocol/lomesh-go/pkg/log"
	"github.com/lomesh-protocol/lomesh-go/pkg/state"
)

// inspector drives the interactive command loop.
type inspector struct {
	svc    *device.Service
	cipher *recordingCipher
	cfg    Config
	rl     *readline.Instance

	// notifications counts observer signals since startup.
	notifications int
}

func newInspector(svc *device.Service, cipher *recordingCipher, cfg Config) (*inspector, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "lomesh> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	insp := &inspector{svc: svc, cipher: cipher, cfg: cfg, rl: rl}
	svc.Subscribe(func() { insp.notifications++ })
	return insp, nil
}

func (i *inspector) run() {
	defer i.rl.Close()

	i.printHelp()

	for {
		line, err := i.rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			return
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help", "?":
			i.printHelp()
		case "info":
			i.cmdInfo()
		case "nodes":
			i.cmdNodes()
		case "online":
			fmt.Fprintf(i.rl.Stdout(), "online nodes: %d\n", i.svc.NumOnline())
		case "label":
			fmt.Fprintf(i.rl.Stdout(), "%s\n", i.svc.ChannelLabel())
		case "pos":
			i.cmdPos(fields[1:])
		case "user":
			i.cmdUser(fields[1:])
		case "data":
			i.cmdData(fields[1:])
		case "save":
			if err := i.svc.SaveToDisk(); err != nil {
				fmt.Fprintf(i.rl.Stdout(), "save failed: %v\n", err)
			} else {
				fmt.Fprintln(i.rl.Stdout(), "saved")
			}
		case "reset":
			i.cmdReset()
		case "events":
			i.cmdEvents()
		case "exit", "quit":
			return
		default:
			fmt.Fprintf(i.rl.Stdout(), "unknown command %q, try help\n", fields[0])
		}
	}
}

func (i *inspector) printHelp() {
	fmt.Fprint(i.rl.Stdout(), `Commands:
  info                          Show device identity and channel
  nodes                         List the node table
  online                        Show the online-node count
  label                         Show the channel label
  pos <num> <lat> <lon>         Inject a position observation
  user <num> <id> <long> <short> Inject a user observation
  data <from> <to> <text>       Inject an application payload
  save                          Save the snapshot
  reset                         Request a channel factory reset
  events                        Dump the diagnostics event file
  exit                          Quit
`)
}

func (i *inspector) cmdInfo() {
	w := i.rl.Stdout()
	my := i.svc.MyNodeInfo()
	owner := i.svc.Owner()
	fmt.Fprintf(w, "node num:      0x%x\n", my.NodeNum)
	fmt.Fprintf(w, "owner:         %s (%s / %s)\n", owner.ID, owner.LongName, owner.ShortName)
	fmt.Fprintf(w, "channel:       %s (key %d bytes, generation %d)\n",
		i.svc.ChannelName(), i.svc.ActiveKeyLen(), i.svc.Generation())
	fmt.Fprintf(w, "region:        %s\n", i.svc.Preferences().Region)
	fmt.Fprintf(w, "nodes:         %d\n", i.svc.NumNodes())
	fmt.Fprintf(w, "cipher sets:   %d (last key %d bytes)\n", i.cipher.sets, i.cipher.keyLen)
	fmt.Fprintf(w, "notifications: %d\n", i.notifications)
	if my.ErrorCount > 0 {
		fmt.Fprintf(w, "errors:        %s x%d @0x%x\n", my.ErrorCode, my.ErrorCount, my.ErrorAddress)
	}
}

func (i *inspector) cmdNodes() {
	w := i.rl.Stdout()
	i.svc.ResetReadPointer()
	for info := i.svc.ReadNext(); info != nil; info = i.svc.ReadNext() {
		name := "-"
		if info.HasUser {
			name = info.User.LongName
		}
		fmt.Fprintf(w, "0x%-10x %-20s snr=%-6.1f", info.Num, name, info.SNR)
		if info.HasPosition {
			fmt.Fprintf(w, " pos=(%d,%d) t=%d", info.Position.LatitudeI, info.Position.LongitudeI, info.Position.Time)
		}
		fmt.Fprintln(w)
	}
}

func (i *inspector) cmdPos(args []string) {
	if len(args) != 3 {
		fmt.Fprintln(i.rl.Stdout(), "usage: pos <num> <lat> <lon>")
		return
	}
	num, err1 := strconv.ParseUint(args[0], 0, 32)
	lat, err2 := strconv.ParseInt(args[1], 10, 32)
	lon, err3 := strconv.ParseInt(args[2], 10, 32)
	if err1 != nil || err2 != nil || err3 != nil {
		fmt.Fprintln(i.rl.Stdout(), "bad arguments")
		return
	}
	i.svc.UpdateFrom(&state.MeshPacket{
		From:   uint32(num),
		To:     state.NodeNumBroadcast,
		RxTime: systemClock{}.Now(),
		Decoded: &state.SubPacket{
			Which: state.PayloadPosition,
			Position: state.Position{
				LatitudeI:  int32(lat),
				LongitudeI: int32(lon),
				Time:       systemClock{}.Now(),
			},
		},
	})
}

func (i *inspector) cmdUser(args []string) {
	if len(args) != 4 {
		fmt.Fprintln(i.rl.Stdout(), "usage: user <num> <id> <long> <short>")
		return
	}
	num, err := strconv.ParseUint(args[0], 0, 32)
	if err != nil {
		fmt.Fprintln(i.rl.Stdout(), "bad node number")
		return
	}
	i.svc.UpdateFrom(&state.MeshPacket{
		From:   uint32(num),
		To:     state.NodeNumBroadcast,
		RxTime: systemClock{}.Now(),
		Decoded: &state.SubPacket{
			Which: state.PayloadUser,
			User:  state.User{ID: args[1], LongName: args[2], ShortName: args[3]},
		},
	})
}

func (i *inspector) cmdData(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(i.rl.Stdout(), "usage: data <from> <to> <text>")
		return
	}
	from, err1 := strconv.ParseUint(args[0], 0, 32)
	to, err2 := strconv.ParseUint(args[1], 0, 32)
	if err1 != nil || err2 != nil {
		fmt.Fprintln(i.rl.Stdout(), "bad node number")
		return
	}
	i.svc.UpdateFrom(&state.MeshPacket{
		From:   uint32(from),
		To:     uint32(to),
		RxTime: systemClock{}.Now(),
		Decoded: &state.SubPacket{
			Which: state.PayloadData,
			Data:  []byte(strings.Join(args[2:], " ")),
		},
	})
}

func (i *inspector) cmdReset() {
	i.svc.MutateRadioConfig(func(rc *state.RadioConfig) {
		rc.Prefs.FactoryReset = true
	})
	fmt.Fprintf(i.rl.Stdout(), "channel reset to %s, generation %d\n",
		i.svc.ChannelName(), i.svc.Generation())
}

func (i *inspector) cmdEvents() {
	if i.cfg.Events == "" {
		fmt.Fprintln(i.rl.Stdout(), "no event file configured (-events)")
		return
	}
	r, err := log.NewReader(i.cfg.Events)
	if err != nil {
		fmt.Fprintf(i.rl.Stdout(), "failed to open event file: %v\n", err)
		return
	}
	defer r.Close()

	for {
		ev, err := r.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Fprintf(i.rl.Stdout(), "failed to read event: %v\n", err)
			return
		}
		fmt.Fprintf(i.rl.Stdout(), "%s %-12s", ev.Timestamp.Format("15:04:05.000"), ev.Category)
		switch {
		case ev.Boot != nil:
			fmt.Fprintf(i.rl.Stdout(), " phase=%s node=0x%x nodes=%d", ev.Boot.Phase, ev.Boot.NodeNum, ev.Boot.NumNodes)
		case ev.Persistence != nil:
			fmt.Fprintf(i.rl.Stdout(), " op=%s outcome=%s", ev.Persistence.Op, ev.Persistence.Outcome)
		case ev.Channel != nil:
			fmt.Fprintf(i.rl.Stdout(), " channel=%s keylen=%d gen=%d", ev.Channel.Name, ev.Channel.KeyLen, ev.Channel.Generation)
		case ev.NodeUpdate != nil:
			fmt.Fprintf(i.rl.Stdout(), " node=0x%x kind=%s changed=%v", ev.NodeNum, ev.NodeUpdate.Kind, ev.NodeUpdate.Changed)
		case ev.Error != nil:
			fmt.Fprintf(i.rl.Stdout(), " code=%s msg=%s", ev.Error.Code, ev.Error.Message)
		}
		fmt.Fprintln(i.rl.Stdout())
	}
}
