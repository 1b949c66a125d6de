package rig

import "gridloop/schedule"

// Sender is the raw outbound MIDI capability rig controllers write
// through — satisfied by throttle.Output or a direct gomidi connection.
type Sender interface {
	Send(msg []byte) error
}

// ClockPulse sends a NoteOn/NoteOff pulse every divider ticks (velocity 127
// on, 0 off). The first pulse of every reset_beat pulses uses note 127 and
// the rest note 0, so a downstream rack can derive a bar-reset edge from the
// pulse pattern alone. Grounded
// on the original engine's controllers/clock_pulse.rs.
type ClockPulse struct {
	out     Sender
	channel uint8
	divider int32

	params *Params

	lastPitch     uint8
	resetTickStep int
}

// NewClockPulse creates a ClockPulse sending on channel (1-based, as MIDI
// channels are conventionally written) every divider ticks.
func NewClockPulse(out Sender, channel uint8, divider int32, params *Params) *ClockPulse {
	return &ClockPulse{out: out, channel: channel, divider: divider, params: params}
}

// Schedule implements Controller.
func (c *ClockPulse) Schedule(r schedule.ScheduleRange) {
	if !r.Ticked {
		return
	}
	tick := ((r.To.Ticks - 1) % c.divider)
	if tick < 0 {
		tick += c.divider
	}

	switch tick {
	case 0:
		if c.resetTickStep == 0 {
			c.lastPitch = 127
		} else {
			c.lastPitch = 0
		}
		c.out.Send([]byte{0x90 - 1 + c.channel, c.lastPitch, 127})

		resetBeat := c.params.Snapshot().ResetBeat
		if resetBeat > 0 {
			c.resetTickStep = (c.resetTickStep + 1) % resetBeat
		}
	case 1:
		c.out.Send([]byte{0x90 - 1 + c.channel, c.lastPitch, 0})
	}
}
