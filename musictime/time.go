// Package musictime implements the engine's musical position/duration type:
// a tick-and-fraction pair with total ordering and carry-safe arithmetic.
package musictime

// SubTicks is the number of sub-tick divisions per tick (1/256 of a tick).
const SubTicks = 256

// TicksPerBeat is the MIDI clock resolution: 24 pulses per quarter note.
const TicksPerBeat = 24

// Time is a musical position or duration: ticks plus a fractional sub-tick.
// One tick is 1/24 of a beat; Frac subdivides a tick into 256 equal parts.
// Ordering is lexicographic on (Ticks, Frac).
type Time struct {
	Ticks int32
	Frac  uint8
}

// New builds a Time from raw ticks and fraction.
func New(ticks int32, frac uint8) Time {
	return Time{Ticks: ticks, Frac: frac}
}

// FromTicks builds a whole-tick Time.
func FromTicks(ticks int32) Time {
	return Time{Ticks: ticks}
}

// FromFrac builds a sub-tick-only Time (for half-tick style constants).
func FromFrac(frac uint8) Time {
	return Time{Frac: frac}
}

// Zero is the origin.
func Zero() Time {
	return Time{}
}

// OneTick is a single tick.
func OneTick() Time {
	return FromTicks(1)
}

// HalfTick is half of one tick (127/256).
func HalfTick() Time {
	return FromFrac(127)
}

// FromBeats builds a Time of the given whole number of beats.
func FromBeats(beats int32) Time {
	return FromTicks(beats * TicksPerBeat)
}

// FromMeasure builds beats/divider of a beat, e.g. FromMeasure(1, 4) is a
// quarter of a beat (a sixteenth note at 4/4).
func FromMeasure(beats, divider int32) Time {
	return FromTicks(beats * TicksPerBeat / divider)
}

// Add returns a + b, carrying Frac overflow into Ticks.
func (a Time) Add(b Time) Time {
	ticks := a.Ticks + b.Ticks
	if uint32(a.Frac)+uint32(b.Frac) > 0xFF {
		ticks++
	}
	return Time{Ticks: ticks, Frac: a.Frac + b.Frac}
}

// Sub returns a - b, borrowing from Ticks when Frac underflows.
func (a Time) Sub(b Time) Time {
	ticks := a.Ticks - b.Ticks
	if a.Frac < b.Frac {
		ticks--
	}
	return Time{Ticks: ticks, Frac: a.Frac - b.Frac}
}

// MulInt scales Ticks by n (Frac is not scaled, matching the tick-only
// multiplication the engine actually needs: loop lengths and rates).
func (a Time) MulInt(n int32) Time {
	return FromTicks(a.Ticks * n)
}

// DivInt divides Ticks by n.
func (a Time) DivInt(n int32) Time {
	return FromTicks(a.Ticks / n)
}

// Mod returns a modulo m, ignoring m's fraction (matches the original
// engine: only whole-tick moduli are ever used for repeat/hold grids).
func (a Time) Mod(m Time) Time {
	return Time{Ticks: modulo(a.Ticks, m.Ticks), Frac: a.Frac}
}

func modulo(n, m int32) int32 {
	if m == 0 {
		return 0
	}
	return ((n % m) + m) % m
}

// Half halves both Ticks and Frac, propagating the odd-tick remainder into
// Frac as 127/256 (the HalfTick value), so for an odd tick count the result
// lands just under the exact half rather than on it.
func (a Time) Half() Time {
	if a.Ticks%2 == 0 {
		return Time{Ticks: a.Ticks / 2, Frac: a.Frac / 2}
	}
	frac := int32(a.Frac/2) + 127
	ticks := a.Ticks + frac/256
	return Time{Ticks: ticks / 2, Frac: uint8(frac)}
}

// IsZero reports whether this is the origin.
func (a Time) IsZero() bool {
	return a.Ticks == 0 && a.Frac == 0
}

// IsWholeBeat reports whether this position lands exactly on a beat.
func (a Time) IsWholeBeat() bool {
	return a.Frac == 0 && a.Ticks%TicksPerBeat == 0
}

// BeatTick returns the tick offset within the current beat (0..23).
func (a Time) BeatTick() int32 {
	return modulo(a.Ticks, TicksPerBeat)
}

// Round rounds to the nearest whole tick (ties round up).
func (a Time) Round() Time {
	if a.Frac < 128 {
		return Time{Ticks: a.Ticks}
	}
	return Time{Ticks: a.Ticks + 1}
}

// Whole truncates any partial tick upward if the fraction is past the
// midpoint, otherwise down — used where a position must land on a tick
// boundary before further integer arithmetic (e.g. scheduler calibration).
func (a Time) Whole() Time {
	if a.Frac >= 128 {
		return FromTicks(a.Ticks + 1)
	}
	return FromTicks(a.Ticks)
}

// Floor truncates to the tick boundary at or below this position.
func (a Time) Floor() Time {
	return FromTicks(a.Ticks)
}

// Less reports whether a orders before b.
func (a Time) Less(b Time) bool {
	if a.Ticks != b.Ticks {
		return a.Ticks < b.Ticks
	}
	return a.Frac < b.Frac
}

// Equal reports structural equality.
func (a Time) Equal(b Time) bool {
	return a.Ticks == b.Ticks && a.Frac == b.Frac
}

// Compare returns -1, 0, or 1 as a is less than, equal to, or greater than b.
func (a Time) Compare(b Time) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}

// AsFloat returns the position in beats, as a float (used only by the
// scheduler's drift curve, never for scheduling decisions themselves).
func (a Time) AsFloat() float64 {
	return float64(a.Ticks)/float64(TicksPerBeat) + float64(a.Frac)/(float64(TicksPerBeat)*SubTicks)
}

// QuantizeLength snaps a duration's tick count to the nearest musical grid:
// half a beat below 16 ticks, one beat up to 40 ticks, two beats above.
func QuantizeLength(d Time) Time {
	grid := quantizeGrid(d.Ticks)
	snapped := int32(roundFloat(float64(d.Ticks)/grid) * grid)
	return FromTicks(snapped)
}

func quantizeGrid(ticks int32) float64 {
	switch {
	case ticks < TicksPerBeat-8:
		return float64(TicksPerBeat) / 2.0
	case ticks < TicksPerBeat+16:
		return float64(TicksPerBeat)
	default:
		return float64(TicksPerBeat) * 2.0
	}
}

func roundFloat(f float64) float64 {
	if f < 0 {
		return -roundFloat(-f)
	}
	i := float64(int64(f))
	if f-i >= 0.5 {
		return i + 1
	}
	return i
}
