// Package rig is the controller runtime façade (spec.md §4.I): it fans out
// every scheduler tick to a set of secondary controllers that watch the
// grid engine's shared params but don't participate in pad/transform
// resolution themselves. Grounded on the original engine's
// controllers/mod.rs (the Schedulable trait) and its concrete controllers.
package rig

import (
	"sync"

	"gridloop/schedule"
)

// Controller receives every scheduler tick. Implementations that only care
// about tick boundaries should check range.Ticked themselves; Runtime does
// not filter.
type Controller interface {
	Schedule(r schedule.ScheduleRange)
}

// Runtime fans scheduler ranges out to a fixed set of controllers, in the
// order they were added. It owns no goroutine of its own: the host's
// scheduler loop calls Schedule once per range, exactly like the grid
// engine's own HandleSchedule.
type Runtime struct {
	controllers []Controller
}

// NewRuntime creates an empty Runtime. Add controllers with Add before the
// host starts driving Schedule.
func NewRuntime() *Runtime {
	return &Runtime{}
}

// Add registers a controller to receive future Schedule calls.
func (rt *Runtime) Add(c Controller) {
	rt.controllers = append(rt.controllers, c)
}

// Schedule forwards r to every registered controller.
func (rt *Runtime) Schedule(r schedule.ScheduleRange) {
	for _, c := range rt.controllers {
		c.Schedule(r)
	}
}

// Params is the subset of the grid engine's shared state the rig's
// controllers read on every tick: the duck envelope's trigger/shape, and
// the clock pulse's bar-reset cadence. Grounded on the original engine's
// LoopGridParams, trimmed to the fields ClockPulse and DuckOutput actually
// read. Guarded by its own mutex since the scheduler loop and whatever
// calls the setters may run on different goroutines, unlike the grid
// engine's own single-goroutine state. The grid engine does not write
// these values.
type Params struct {
	mu sync.Mutex

	DuckTriggered      bool
	DuckTickMultiplier float64
	DuckReduction      float64
	ResetBeat          int
}

// NewParams returns Params with the original engine's defaults: a 0.8
// per-tick decay multiplier, unity reduction, and bar reset every 4 beats.
func NewParams() *Params {
	return &Params{
		DuckTickMultiplier: 0.8,
		DuckReduction:      1.0,
		ResetBeat:          4,
	}
}

// Snapshot returns a copy of the current param values under lock.
func (p *Params) Snapshot() Params {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Params{
		DuckTriggered:      p.DuckTriggered,
		DuckTickMultiplier: p.DuckTickMultiplier,
		DuckReduction:      p.DuckReduction,
		ResetBeat:          p.ResetBeat,
	}
}

// SetDuckTriggered records whether the duck envelope should retrigger on
// each following tick until it is set again.
func (p *Params) SetDuckTriggered(triggered bool) {
	p.mu.Lock()
	p.DuckTriggered = triggered
	p.mu.Unlock()
}

// SetDuckReduction sets the duck envelope's output scale (0..1).
func (p *Params) SetDuckReduction(reduction float64) {
	p.mu.Lock()
	p.DuckReduction = reduction
	p.mu.Unlock()
}
