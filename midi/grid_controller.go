package midi

import (
	"fmt"

	"gridloop/schedule"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// sideButtonNotes are the 8 fixed side-button note numbers that select the
// repeat-rate index (§6): the right-hand scene-launch column on a
// Launchpad X, bottom to top.
var sideButtonNotes = [8]uint8{19, 29, 39, 49, 59, 69, 79, 89}

// modeCCs are the 8 fixed mode-button control-change numbers, in the order
// grid.ModeButton enumerates them (§6): loop, flatten, undo, redo, hold,
// suppress, scale, select.
var modeCCs = [8]uint8{104, 105, 106, 107, 108, 109, 110, 111}

// GridController drives a Launchpad-class 8x8 pad surface: the main grid
// decodes to PadEvent, the fixed side column to RateEvent, and CC 104-111
// to ModeEvent. Clock bytes (0xF8 tick, 0xFA start) are fed straight into a
// schedule.RemoteState rather than round-tripped through a channel, since
// the scheduler is the only consumer and the original engine's own clock
// callback writes its RemoteState directly from the driver thread (§5).
// Grounded on the teacher's midi/launchpad.go.
type GridController struct {
	id       string
	send     func(msg gomidi.Message) error
	stopFunc func()

	padChan  chan PadEvent
	rateChan chan RateEvent
	modeChan chan ModeEvent
}

// NewGridController opens inPort/outPort (either may be nil) and wires
// clock bytes from inPort into remote. Switches the device into Programmer
// mode on open, exactly as the teacher's Launchpad setup SysEx does.
func NewGridController(id string, inPort drivers.In, outPort drivers.Out, remote *schedule.RemoteState) (*GridController, error) {
	gc := &GridController{
		id:       id,
		padChan:  make(chan PadEvent, 64),
		rateChan: make(chan RateEvent, 8),
		modeChan: make(chan ModeEvent, 8),
	}

	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		gc.send = send

		send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}))
		send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F}))
		send(gomidi.SysEx([]byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x0A, 0x01, 0x01}))
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, stampMicros int32) {
			gc.handle(msg, uint64(stampMicros), remote)
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		gc.stopFunc = stop
	}

	return gc, nil
}

// realtime status bytes (§6): 0xF8 clock tick, 0xFA start. These carry no
// channel/data bytes, so they're read directly off the raw message rather
// than through the typed Get* accessors used for channel messages below.
const (
	statusClockTick = 0xF8
	statusStart     = 0xFA
)

func (gc *GridController) handle(msg gomidi.Message, stampMicros uint64, remote *schedule.RemoteState) {
	if raw := msg.Bytes(); len(raw) > 0 {
		switch raw[0] {
		case statusClockTick:
			if remote != nil {
				remote.OnTick(stampMicros)
			}
			return
		case statusStart:
			if remote != nil {
				remote.OnStart(stampMicros)
			}
			return
		}
	}

	var channel, note, velocity, cc, value uint8

	if msg.GetNoteOn(&channel, &note, &velocity) {
		gc.handleNote(note, velocity, velocity > 0)
		return
	}
	if msg.GetNoteOff(&channel, &note, &velocity) {
		gc.handleNote(note, 0, false)
		return
	}
	if msg.GetControlChange(&channel, &cc, &value) {
		for i, modeCC := range modeCCs {
			if cc == modeCC {
				select {
				case gc.modeChan <- ModeEvent{Mode: i, Pressed: value > 0}:
				default:
				}
				return
			}
		}
	}
}

func (gc *GridController) handleNote(note, velocity uint8, on bool) {
	if id, ok := noteToPadID(note); ok {
		select {
		case gc.padChan <- PadEvent{ID: id, Velocity: velocity, On: on}:
		default:
		}
		return
	}
	for i, sideNote := range sideButtonNotes {
		if note == sideNote {
			select {
			case gc.rateChan <- RateEvent{Index: i, Pressed: on}:
			default:
			}
			return
		}
	}
}

func (gc *GridController) ID() string                   { return gc.id }
func (gc *GridController) Type() ControllerType         { return ControllerLaunchpad }
func (gc *GridController) PadEvents() <-chan PadEvent   { return gc.padChan }
func (gc *GridController) RateEvents() <-chan RateEvent { return gc.rateChan }
func (gc *GridController) ModeEvents() <-chan ModeEvent { return gc.modeChan }

func (gc *GridController) SetPadLight(id int, color uint8) error {
	if gc.send == nil {
		return nil
	}
	row, col := id/8, id%8
	return gc.send(gomidi.NoteOn(0, padNote(row, col), color))
}

func (gc *GridController) SetRateLight(index int, color uint8) error {
	if gc.send == nil || index < 0 || index >= len(sideButtonNotes) {
		return nil
	}
	return gc.send(gomidi.NoteOn(0, sideButtonNotes[index], color))
}

// RawSend writes a raw 3-byte message straight to the output port, for
// instrument sinks and the rig runtime that don't go through one of the
// named Set*Light helpers above.
func (gc *GridController) RawSend(msg []byte) error {
	if gc.send == nil {
		return nil
	}
	if len(msg) != 3 {
		return fmt.Errorf("raw MIDI send expects 3 bytes, got %d", len(msg))
	}
	return gc.send(gomidi.Message(msg))
}

func (gc *GridController) SetModeLight(mode int, color uint8) error {
	if gc.send == nil || mode < 0 || mode >= len(modeCCs) {
		return nil
	}
	return gc.send(gomidi.ControlChange(0, modeCCs[mode], color))
}

func (gc *GridController) Close() error {
	if gc.send != nil {
		for id := 0; id < 64; id++ {
			gc.SetPadLight(id, 0)
		}
		for i := range sideButtonNotes {
			gc.SetRateLight(i, 0)
		}
		for i := range modeCCs {
			gc.SetModeLight(i, 0)
		}
	}
	if gc.stopFunc != nil {
		gc.stopFunc()
	}
	close(gc.padChan)
	close(gc.rateChan)
	close(gc.modeChan)
	return nil
}

// padNote converts a grid row/col to the Launchpad X note number (§6):
// row 0 (bottom) starts at 11, row 7 at 81.
func padNote(row, col int) uint8 {
	return uint8((row+1)*10 + col + 1)
}

// noteToPadID converts a Launchpad X note back to a grid pad id, or false
// if the note isn't on the 8x8 main grid.
func noteToPadID(note uint8) (int, bool) {
	row := int(note/10) - 1
	col := int(note%10) - 1
	if row < 0 || row > 7 || col < 0 || col > 7 {
		return 0, false
	}
	return row*8 + col, true
}
