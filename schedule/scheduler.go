// Package schedule turns an external MIDI clock (or its absence) into a
// steady stream of musictime.Time ranges for the grid engine to consume.
// Grounded on the original engine's scheduler.rs: a free-running default
// tempo that locks onto incoming clock pulses and smooths out jitter with a
// bounded drift multiplier, rather than snapping straight to the observed
// tick duration.
package schedule

import (
	"time"

	"gridloop/musictime"
)

// defaultBPM is the tempo used whenever no external clock is present.
const defaultBPM = 120.0

// defaultTickDuration is one 24-PPQ tick at defaultBPM: 60/120/24 s.
func defaultTickDuration() time.Duration {
	bpm := defaultBPM
	return time.Duration(float64(time.Minute) / bpm / 24.0)
}

// subTicksPerTick is the scheduler's quantum expressed in Next() calls per
// tick: one call per true sub-tick (musictime.SubTicks, 1/256 of a tick),
// so every ScheduleRange spans exactly one sub-tick as defined in the
// glossary, not some coarser multiple of it.
const subTicksPerTick = musictime.SubTicks
const subTickFrac = musictime.SubTicks / subTicksPerTick

// minDriftMultiplier floors how much the drift correction can slow the
// scheduler down in a single tick, so a large discrepancy still converges
// over a few ticks rather than stalling.
const minDriftMultiplier = 0.5

// ScheduleRange is one slice of musical time the grid engine should process:
// [From, To). Ticked reports whether this range crossed a tick boundary
// (i.e. whether per-tick work, such as LED flush or tick-quantized events,
// should run). Jumped reports a discontinuity — a fresh external start, or
// the first lock after freewheeling — after which transforms that rely on
// continuous position (Repeat) should resync.
type ScheduleRange struct {
	From, To musictime.Time
	Ticked   bool
	Jumped   bool
}

// Scheduler advances musical time at a steady sub-tick resolution, either
// freewheeling at defaultBPM or locked to an external MIDI clock fed through
// its RemoteState.
type Scheduler struct {
	remote *RemoteState

	position     musictime.Time
	lastTickAt   time.Time
	tickDuration time.Duration
	locked       bool

	// syncDelta is the most recent local-minus-external tick-position drift
	// estimate (§4.E.4a). It never moves position directly; it only scales
	// the wall-clock duration of the next tick, so position always advances
	// by exactly one sub-tick per Next() except on an explicit restart.
	syncDelta float64

	now   func() time.Time
	sleep func(time.Duration)
}

// NewScheduler creates a Scheduler reading clock pulses from remote. Pass
// nil to run entirely on the internal default tempo.
func NewScheduler(remote *RemoteState) *Scheduler {
	if remote == nil {
		remote = NewRemoteState()
	}
	return &Scheduler{
		remote:       remote,
		position:     musictime.Zero(),
		tickDuration: defaultTickDuration(),
		now:          time.Now,
		sleep:        time.Sleep,
	}
}

// Next blocks until the next sub-tick is due, then returns the
// ScheduleRange that advances position by one sub-tick step. Next never
// returns an error: a dropped or absent external clock degrades to the
// internal default tempo rather than failing.
func (s *Scheduler) Next() ScheduleRange {
	jumped := s.calibrate()

	if d := s.nextSleepDuration(); d > 0 {
		s.sleep(d)
	}

	from := s.position
	to := from.Add(musictime.FromFrac(subTickFrac))
	ticked := to.Ticks > from.Ticks
	s.position = to

	return ScheduleRange{From: from, To: to, Ticked: ticked, Jumped: jumped}
}

// calibrate folds in any new external clock data, returning true if this
// call produced a discontinuity in position (fresh start, or first lock
// after freewheeling).
func (s *Scheduler) calibrate() bool {
	if mean, ok := s.remote.meanTickDuration(); ok {
		s.tickDuration = mean
	}

	if s.remote.consumePendingRestart() {
		// Resync to the nearest 8-beat grid boundary rather than snapping to
		// tick zero, so a mid-bar external restart doesn't yank the loop
		// grid's own bar alignment. This is the only place position is ever
		// force-realigned; drift correction otherwise only scales tick
		// duration (see calibrateDrift).
		s.position = musictime.FromTicks(roundToGrid(s.position.Ticks, musictime.FromBeats(8).Ticks))
		s.locked = true
		s.syncDelta = 0
		return true
	}

	ticks, lastTickAt, ok := s.remote.snapshot()
	if !ok {
		return false
	}

	if !s.locked {
		s.locked = true
		s.lastTickAt = lastTickAt
		return true
	}
	s.lastTickAt = lastTickAt

	// Only calibrate on a whole-tick boundary: correcting the sub-tick
	// fraction against a tick-granular external signal would just add noise.
	if s.position.Frac != 0 {
		return false
	}

	s.calibrateDrift(ticks, lastTickAt)
	return false
}

// calibrateDrift updates syncDelta, the estimated tick-position drift
// between the local position and the external clock (§4.E.4a). It mirrors
// the original scheduler's calibrate_to_external: skip the update if the
// last external tick arrived a full tick duration ago or more, otherwise resolve whether "ticks"
// or "ticks+1" is the better external reference point depending on how far
// past the halfway point to the next pulse the local clock already is.
func (s *Scheduler) calibrateDrift(ticks int32, lastTickAt time.Time) {
	if s.tickDuration <= 0 {
		return
	}
	since := s.now().Sub(lastTickAt)
	if since >= s.tickDuration {
		return
	}
	resolved := ticks
	if since >= s.tickDuration/2 {
		resolved++
	}
	s.syncDelta = float64(s.position.Ticks - resolved)
}

// driftMultiplier curves syncDelta into a tick-duration scale factor: the
// scheduler runs proportionally slower when it's ahead of the external
// clock and faster when it's behind, floored so a single large discrepancy
// still takes a few ticks to converge rather than snapping.
func (s *Scheduler) driftMultiplier() float64 {
	curved := (s.syncDelta * s.syncDelta) / 2
	multiplier := 1 - curved
	if s.syncDelta > 0 {
		multiplier = 1 + curved
	}
	if multiplier < minDriftMultiplier {
		return minDriftMultiplier
	}
	return multiplier
}

// roundToGrid rounds ticks to the nearest multiple of grid (ties round up).
func roundToGrid(ticks, grid int32) int32 {
	rem := ((ticks % grid) + grid) % grid
	if rem*2 >= grid {
		return ticks - rem + grid
	}
	return ticks - rem
}

// nextSleepDuration is the wall-clock wait before the next sub-tick is due,
// scaled to the current tick duration (adjusted by the drift multiplier
// once locked) whether locked or freewheeling.
func (s *Scheduler) nextSleepDuration() time.Duration {
	if !s.locked {
		return s.tickDuration / subTicksPerTick
	}
	duration := time.Duration(float64(s.tickDuration) * s.driftMultiplier())
	step := duration / subTicksPerTick
	elapsed := s.now().Sub(s.lastTickAt)
	if elapsed >= step {
		return 0
	}
	return step - elapsed
}

// Position reports the scheduler's current musical-time cursor.
func (s *Scheduler) Position() musictime.Time {
	return s.position
}

// Remote exposes the scheduler's RemoteState so a MIDI input loop can feed
// it clock pulses directly.
func (s *Scheduler) Remote() *RemoteState {
	return s.remote
}
