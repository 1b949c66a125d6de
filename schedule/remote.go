package schedule

import (
	"sync"
	"time"
)

// outlierThreshold is the inter-tick duration above which a clock pulse is
// treated as a dropout rather than real timing data (spec.md §4.E.2).
const outlierThreshold = 500 * time.Millisecond

type tickStamp struct {
	ticks int32
	at    time.Time
}

// RemoteState is the mutex-guarded view of the external MIDI clock, updated
// from the driver's input callback and read by the Scheduler's goroutine.
// It is never held across a sleep or a send — only short critical sections
// guard field access, per spec.md §5.
type RemoteState struct {
	mu sync.Mutex

	ticks          *int32
	tickStamps     *ring[tickStamp]
	tickDurations  *ring[time.Duration]
	lastTickStamp  *uint64
	tickStartAt    time.Time
	stampOffset    uint64
	pendingRestart bool
	started        bool
	lastTickAt     *time.Time
}

// NewRemoteState creates a RemoteState with no clock seen yet.
func NewRemoteState() *RemoteState {
	return &RemoteState{
		tickStamps:    newRing[tickStamp](12),
		tickDurations: newRing[time.Duration](3),
	}
}

// OnStart handles an incoming MIDI start (0xFA) message. stampMicros is the
// driver's microsecond timestamp for the message.
func (r *RemoteState) OnStart(stampMicros uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.restartLocked(stampMicros)
}

// OnTick handles an incoming MIDI clock (0xF8) message.
func (r *RemoteState) OnTick(stampMicros uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		// A tick before any start message is itself treated as a start.
		r.restartLocked(stampMicros)
	}

	if r.ticks == nil {
		zero := int32(0)
		r.ticks = &zero
		r.pendingRestart = true
	} else {
		next := *r.ticks + 1
		r.ticks = &next
	}

	if r.lastTickStamp != nil {
		delta := stampMicros - *r.lastTickStamp
		d := time.Duration(delta) * time.Microsecond
		if d < outlierThreshold {
			r.tickDurations.push(d)
		}
		r.tickStamps.push(tickStamp{ticks: *r.ticks, at: r.tickStartAt.Add(time.Duration(stampMicros-r.stampOffset) * time.Microsecond)})
	}

	stamp := stampMicros
	r.lastTickStamp = &stamp
	now := time.Now()
	r.lastTickAt = &now
}

func (r *RemoteState) restartLocked(stampMicros uint64) {
	r.started = true
	r.ticks = nil
	r.lastTickStamp = nil
	r.stampOffset = stampMicros
	r.tickStartAt = time.Now()
	r.lastTickAt = nil
}

// meanTickDuration returns the average of the recent tick-duration ring, and
// false if fewer than two samples are available (spec.md §4.E.4a).
func (r *RemoteState) meanTickDuration() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := r.tickDurations.items()
	if len(items) < 2 {
		return 0, false
	}
	var sum time.Duration
	for _, d := range items {
		sum += d
	}
	return sum / time.Duration(len(items)), true
}

// consumePendingRestart reports and clears the pending-restart flag, which
// is set on the first tick seen after a start message.
func (r *RemoteState) consumePendingRestart() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pendingRestart && r.ticks != nil {
		r.pendingRestart = false
		return true
	}
	return false
}

// Status reports the latest tick ordinal seen and whether a start message
// has arrived, for UI display (spec.md §8's clock-lock indicator).
func (r *RemoteState) Status() (tickCount int32, started bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ticks == nil {
		return 0, r.started
	}
	return *r.ticks, r.started
}

// snapshot returns the latest tick ordinal and its wall-clock arrival time,
// for the scheduler's calibration step.
func (r *RemoteState) snapshot() (ticks int32, lastTickAt time.Time, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ticks == nil || r.lastTickAt == nil {
		return 0, time.Time{}, false
	}
	return *r.ticks, *r.lastTickAt, true
}
