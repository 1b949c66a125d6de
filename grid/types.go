package grid

import (
	"gridloop/looptape"
	"gridloop/musictime"
)

// ModeButton names one of the eight fixed mode buttons (§6).
type ModeButton int

const (
	ModeLoop ModeButton = iota
	ModeFlatten
	ModeUndo
	ModeRedo
	ModeHold
	ModeSuppress
	ModeScale
	ModeSelect
)

// RateTable mirrors the original engine's fixed eight repeat rates, widest
// first, selected by the side-button index 0..7.
var RateTable = [8]musictime.Time{
	musictime.FromMeasure(2, 1),
	musictime.FromMeasure(1, 1),
	musictime.FromMeasure(2, 3),
	musictime.FromMeasure(1, 2),
	musictime.FromMeasure(1, 3),
	musictime.FromMeasure(1, 4),
	musictime.FromMeasure(1, 6),
	musictime.FromMeasure(1, 8),
}

// Sender is the outbound light/MIDI capability the engine writes through.
// throttle.Output satisfies it; a midi.Controller exposes RawSend instead
// and is adapted to it in cmd/gridloop.
type Sender interface {
	Send(msg []byte) error
}

// Mapping binds pad ids to Triggerable chunk indices; pads with no entry
// are recorder-only (no instrument dispatch on playback).
type Mapping map[int]int

// LoopEvent is an alias kept for readability at call sites that move
// looptape.Event across the grid/looptape boundary.
type LoopEvent = looptape.Event
