package rig

import (
	"math"

	"gridloop/schedule"
)

// DuckOutput drives a set of modulators with a retrigger-and-decay envelope
// read from shared Params: on every tick where Params.DuckTriggered is set,
// the envelope jumps up, and it decays back down once the flag is cleared, and the decayed value (scaled by
// DuckReduction) is sent to every modulator as a gain cut. Grounded on the
// original engine's controllers/duck_output.rs.
type DuckOutput struct {
	modulators []Modulator
	envelope   *triggerEnvelope
	params     *Params
}

// NewDuckOutput creates a DuckOutput driving modulators, seeded from
// params' current tick multiplier.
func NewDuckOutput(modulators []Modulator, params *Params) *DuckOutput {
	tickMultiplier := params.Snapshot().DuckTickMultiplier
	env := newTriggerEnvelope(tickMultiplier, 2.0)
	env.tickValue = 2.0
	return &DuckOutput{modulators: modulators, envelope: env, params: params}
}

// Schedule implements Controller.
func (d *DuckOutput) Schedule(r schedule.ScheduleRange) {
	if !r.Ticked {
		return
	}

	snap := d.params.Snapshot()
	d.envelope.tickMultiplier = snap.DuckTickMultiplier
	d.envelope.tick(snap.DuckTriggered)

	value := floatToMIDI(math.Sqrt(d.envelope.Value()) * snap.DuckReduction)
	for _, m := range d.modulators {
		m.Send(value)
	}
}
