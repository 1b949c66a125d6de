// Package host owns the live dispatch loop: it is the single goroutine
// that drives grid.Engine (not safe for concurrent use, per its own
// doc comment) from merged scheduler ticks and controller input, and
// publishes a read-only ViewState snapshot for the TUI to poll. Grounded
// on the teacher's sequencer.Manager: a mutex-guarded state struct plus a
// buffered UpdateChan the UI selects on, rather than round-tripping engine
// calls through channels.
package host

import (
	"sync"
	"time"

	"gridloop/config"
	"gridloop/grid"
	"gridloop/midi"
	"gridloop/musictime"
	"gridloop/rig"
	"gridloop/schedule"
	"gridloop/throttle"
)

// ledFPS bounds how often the ASCII grid snapshot is recomputed, matching
// the teacher's ledLoop cadence for LED flushes.
const ledFPS = 30

// ViewState is a point-in-time copy of everything the TUI renders. Pad IDs
// index GridColors directly (row*8+col, §3).
type ViewState struct {
	GridColors     [64]grid.Color
	Selection      map[int]bool
	Holding        bool
	Suppressing    bool
	Selecting      bool
	SelectingScale bool
	Repeating      bool
	RateIndex      int
	LoopTicks      int32
	PositionTicks  int32
	ClockLocked    bool
	ClockTicks     int32
	ControllerID   string
	StatusMsg      string
}

// Host wires the grid engine, scheduler, controller, and outbound light
// throttling into one dispatch loop.
type Host struct {
	engine    *grid.Engine
	scheduler *schedule.Scheduler
	remote    *schedule.RemoteState
	runtime   *rig.Runtime
	out       *throttle.Output
	cfg       *config.Config
	devices   *midi.DeviceManager

	mu    sync.Mutex
	view  ViewState
	stop  chan struct{}
	ledAt time.Time

	UpdateChan chan struct{}

	// KeyPad/KeyMode/KeyRate let the TUI drive the engine without a
	// physical controller attached, merged into the same dispatch loop
	// so Engine is still only ever touched from one goroutine.
	KeyPad  chan midi.PadEvent
	KeyMode chan midi.ModeEvent
	KeyRate chan midi.RateEvent
}

// New builds a Host around an already-constructed engine and scheduler.
// devices must not be nil, but it may have no controller connected yet.
func New(engine *grid.Engine, scheduler *schedule.Scheduler, remote *schedule.RemoteState, runtime *rig.Runtime, out *throttle.Output, cfg *config.Config, devices *midi.DeviceManager) *Host {
	return &Host{
		engine:     engine,
		scheduler:  scheduler,
		remote:     remote,
		runtime:    runtime,
		out:        out,
		cfg:        cfg,
		devices:    devices,
		stop:       make(chan struct{}),
		UpdateChan: make(chan struct{}, 1),
		KeyPad:     make(chan midi.PadEvent, 8),
		KeyMode:    make(chan midi.ModeEvent, 8),
		KeyRate:    make(chan midi.RateEvent, 8),
	}
}

// View returns the latest published ViewState.
func (h *Host) View() ViewState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.view
}

// SetStatus publishes a one-line status message (e.g. rescan result),
// visible until the next SetStatus call replaces it.
func (h *Host) SetStatus(msg string) {
	h.mu.Lock()
	h.view.StatusMsg = msg
	h.mu.Unlock()
	h.notify()
}

// Rescan attempts to (re)connect the configured grid controller and clock
// input, for the TUI's manual "r" rescan command.
func (h *Host) Rescan() (controllerID string, err error) {
	if err := h.devices.Connect(h.cfg, h.remote); err != nil {
		return "", err
	}
	if err := h.devices.ConnectClockInput(h.cfg, h.remote); err != nil {
		return "", err
	}
	if ctrl := h.devices.GetController(); ctrl != nil {
		return ctrl.ID(), nil
	}
	return "", nil
}

// handlePad forwards a pad event to the engine from the dispatch goroutine.
func (h *Host) handlePad(ev midi.PadEvent) {
	if ev.On {
		h.engine.HandlePad(ev.ID, musictime.On(ev.Velocity))
	} else {
		h.engine.HandlePad(ev.ID, musictime.Off())
	}
}

// Run drives the dispatch loop until ctx-like stop is requested via Stop.
// It never returns until Stop is called, so callers run it in its own
// goroutine (the teacher's sequencer.Manager.StartRuntime does the same).
func (h *Host) Run() {
	var padCh <-chan midi.PadEvent
	var rateCh <-chan midi.RateEvent
	var modeCh <-chan midi.ModeEvent
	var attached midi.Controller

	for {
		if ctrl := h.devices.GetController(); ctrl != attached {
			attached = ctrl
			if ctrl != nil {
				padCh, rateCh, modeCh = ctrl.PadEvents(), ctrl.RateEvents(), ctrl.ModeEvents()
			} else {
				padCh, rateCh, modeCh = nil, nil, nil
			}
		}

		select {
		case <-h.stop:
			return

		case ev, ok := <-padCh:
			if !ok {
				padCh = nil
				continue
			}
			h.handlePad(ev)
			h.publish()

		case ev, ok := <-rateCh:
			if !ok {
				rateCh = nil
				continue
			}
			h.engine.HandleRate(ev.Index, ev.Pressed)
			h.publish()

		case ev, ok := <-modeCh:
			if !ok {
				modeCh = nil
				continue
			}
			h.engine.HandleMode(grid.ModeButton(ev.Mode), ev.Pressed)
			h.publish()

		case ev := <-h.KeyPad:
			h.handlePad(ev)
			h.publish()

		case ev := <-h.KeyRate:
			h.engine.HandleRate(ev.Index, ev.Pressed)
			h.publish()

		case ev := <-h.KeyMode:
			h.engine.HandleMode(grid.ModeButton(ev.Mode), ev.Pressed)
			h.publish()

		default:
			r := h.scheduler.Next()
			h.engine.HandleSchedule(r.From, r.To)
			h.runtime.Schedule(r)
			if r.Ticked {
				h.out.Flush()
			}
			h.publish()
		}
	}
}

// Stop ends the dispatch loop.
func (h *Host) Stop() {
	close(h.stop)
}

// publish recomputes the ViewState snapshot, rate-limited to ledFPS since
// it walks all 64 pads every call.
func (h *Host) publish() {
	now := time.Now()
	h.mu.Lock()
	due := now.Sub(h.ledAt) >= time.Second/ledFPS
	h.mu.Unlock()
	if !due {
		return
	}

	var v ViewState
	for id := 0; id < 64; id++ {
		v.GridColors[id] = h.engine.GridColor(id)
	}
	v.Selection = h.engine.Selection()
	v.Holding, v.Suppressing, v.Selecting, v.SelectingScale, v.Repeating, v.RateIndex = h.engine.ModeState()
	v.LoopTicks = h.engine.LoopLength().Ticks
	v.PositionTicks = h.scheduler.Position().Ticks
	tickCount, started := h.remote.Status()
	v.ClockTicks = tickCount
	v.ClockLocked = started
	if ctrl := h.devices.GetController(); ctrl != nil {
		v.ControllerID = ctrl.ID()
	}

	h.mu.Lock()
	v.StatusMsg = h.view.StatusMsg
	h.view = v
	h.ledAt = now
	h.mu.Unlock()

	h.notify()
}

func (h *Host) notify() {
	select {
	case h.UpdateChan <- struct{}{}:
	default:
	}
}
