package rig

import (
	"gridloop/grid"
	"gridloop/musictime"
	"gridloop/scale"
)

// MidiKeys is the default instrument sink bound to a chunk index: it maps a
// pad id to a scale degree, resolves the degree to a note number through a
// shared scale.Scale, and sends NoteOn/NoteOff on a fixed channel. Grounded
// on the original engine's midi_keys.rs MidiKeys.
type MidiKeys struct {
	out        Sender
	channel    uint8
	baseOffset int
	octave     int

	scale       *scale.Scale
	outputNotes map[int]uint8
}

// NewMidiKeys creates a MidiKeys sink sending on channel (1-16) through a
// shared scale, so multiple chunks follow the same root/mode. The grid
// engine itself never changes the scale.
func NewMidiKeys(out Sender, channel uint8, sc *scale.Scale) *MidiKeys {
	return &MidiKeys{
		out:         out,
		channel:     channel,
		scale:       sc,
		outputNotes: make(map[int]uint8),
	}
}

// WithOctave sets the octave offset (in 12-semitone units) added to every
// resolved note.
func (k *MidiKeys) WithOctave(octave int) *MidiKeys {
	k.octave = octave
	return k
}

// Trigger implements grid.Triggerable.
func (k *MidiKeys) Trigger(id int, value musictime.Value) {
	if !value.IsOn() {
		if note, ok := k.outputNotes[id]; ok {
			k.send(note, 0)
			delete(k.outputNotes, id)
		}
		return
	}

	note := k.noteFor(id)
	k.send(note, value.Velocity())
	k.outputNotes[id] = note
}

func (k *MidiKeys) noteFor(id int) uint8 {
	degree := id + k.baseOffset
	return uint8(k.scale.NoteFor(degree) + 12*k.octave)
}

func (k *MidiKeys) send(note, velocity uint8) {
	if k.out == nil {
		return
	}
	status := byte(0x90 - 1 + k.channel)
	k.out.Send([]byte{status, note, velocity})
}

// LatchMode implements grid.Triggerable: repeated On values retrigger.
func (k *MidiKeys) LatchMode() grid.LatchMode { return grid.LatchModeNone }

// ScheduleMode implements grid.Triggerable: only edges matter, not every tick.
func (k *MidiKeys) ScheduleMode() grid.ScheduleMode { return grid.ScheduleModeEdges }
