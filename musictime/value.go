package musictime

import "strconv"

// Value is an outbound pad value: either Off or On at a velocity.
// Off orders before any On; two On values compare by velocity.
type Value struct {
	on       bool
	velocity uint8
}

// Off is the silent value.
func Off() Value {
	return Value{}
}

// On is a note-on at the given velocity (0..127).
func On(velocity uint8) Value {
	return Value{on: true, velocity: velocity}
}

// IsOn reports whether this is a note-on value.
func (v Value) IsOn() bool {
	return v.on
}

// Velocity returns the velocity (0 for Off).
func (v Value) Velocity() uint8 {
	if !v.on {
		return 0
	}
	return v.velocity
}

// Equal reports structural equality: Off == Off, On(a) == On(b) iff a == b.
func (v Value) Equal(o Value) bool {
	return v.on == o.on && (!v.on || v.velocity == o.velocity)
}

// Less orders Off before any On, and On(a) before On(b) iff a < b. This
// exists only to give LoopEvent a total order at equal positions — the
// magnitude comparison between two On values carries no musical meaning.
func (v Value) Less(o Value) bool {
	if v.on != o.on {
		return !v.on
	}
	if !v.on {
		return false
	}
	return v.velocity < o.velocity
}

func (v Value) String() string {
	if !v.on {
		return "Off"
	}
	return "On(" + strconv.Itoa(int(v.velocity)) + ")"
}
