// Command gridloop runs the live loop-grid performance engine: it connects
// to a Launchpad-class controller (or freewheels without one), locks to an
// external 24 PPQ MIDI clock when present, and drives a terminal UI mirror
// of the grid. Adapted from the teacher's root main.go wiring.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"gridloop/config"
	"gridloop/debug"
	"gridloop/grid"
	"gridloop/host"
	"gridloop/midi"
	"gridloop/musictime"
	"gridloop/rig"
	"gridloop/scale"
	"gridloop/schedule"
	"gridloop/theme"
	"gridloop/throttle"
	"gridloop/tui"
)

// nullSender discards writes when no controller is attached yet, so the
// engine and rig runtime can run freely before the first rescan succeeds.
type nullSender struct{}

func (nullSender) Send(msg []byte) error { return nil }

// controllerSender adapts midi.Controller.RawSend to the Send(msg) shape
// grid.Sender, throttle.Sender, and rig.Sender all share.
type controllerSender struct {
	ctrl midi.Controller
}

func (s controllerSender) Send(msg []byte) error { return s.ctrl.RawSend(msg) }

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("config load failed, using defaults: %v\n", err)
		cfg = config.DefaultConfig()
	}

	if cfg.UI.DebugLog {
		if err := debug.Enable(); err != nil {
			fmt.Printf("debug log disabled: %v\n", err)
		}
	}

	palette, err := theme.LoadGPL("palettes/plasma.gpl")
	if err != nil {
		fmt.Printf("palette load failed: %v\n", err)
		os.Exit(1)
	}
	th := theme.New(palette)

	remote := schedule.NewRemoteState()
	scheduler := schedule.NewScheduler(remote)

	devices := midi.NewDeviceManager()
	var out throttle.Sender = nullSender{}
	if cfg.Controller.AutoConnect {
		if err := devices.Connect(cfg, remote); err != nil {
			fmt.Printf("no grid controller yet: %v\n", err)
		} else if ctrl := devices.GetController(); ctrl != nil {
			out = controllerSender{ctrl: ctrl}
		}
		if err := devices.ConnectClockInput(cfg, remote); err != nil {
			fmt.Printf("no clock input yet: %v\n", err)
		}
	}
	throttled := throttle.New(out)

	sc := scale.New(60, 0)
	chunks := []grid.Triggerable{rig.NewMidiKeys(throttled, 1, &sc)}

	mapping := make(grid.Mapping, len(cfg.Bindings))
	if len(cfg.Bindings) == 0 {
		for id := 0; id < 64; id++ {
			mapping[id] = 0
		}
	} else {
		for _, b := range cfg.Bindings {
			mapping[b.Row*8+b.Col] = b.ChunkIndex
		}
	}

	defaultLength := musictime.FromMeasure(4, 1)
	engine := grid.NewEngine(defaultLength, mapping, chunks, throttled)

	params := rig.NewParams()
	runtime := rig.NewRuntime()
	runtime.Add(rig.NewClockPulse(throttled, 16, 24, params))
	runtime.Add(rig.NewDuckOutput([]rig.Modulator{rig.NewCCModulator(throttled, 1, 7)}, params))

	h := host.New(engine, scheduler, remote, runtime, throttled, cfg, devices)
	go h.Run()

	m := tui.NewModel(h, cfg, th)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}

	h.Stop()
	if err := cfg.Save(); err != nil {
		fmt.Printf("config save failed: %v\n", err)
	}
}
