package rig

// ModulatorKind selects which wire encoding Modulator.Send uses. Grounded
// on the original engine's config::Modulator enum.
type ModulatorKind int

const (
	// ModulatorCC sends a plain 0-127 control-change value.
	ModulatorCC ModulatorKind = iota
	// ModulatorMaxCC scales 0-127 into [0, Max] before sending as a CC.
	ModulatorMaxCC
)

// Modulator is an outbound CC target a rig controller drives every tick —
// the duck envelope's gain output, most commonly a mixer channel's volume
// CC on an external device.
type Modulator struct {
	out     Sender
	channel uint8
	kind    ModulatorKind
	cc      uint8
	max     uint8
}

// NewCCModulator sends value directly as a 0-127 CC.
func NewCCModulator(out Sender, channel, cc uint8) Modulator {
	return Modulator{out: out, channel: channel, kind: ModulatorCC, cc: cc, max: 127}
}

// NewMaxCCModulator scales its 0-127 input into [0, max] before sending.
func NewMaxCCModulator(out Sender, channel, cc, max uint8) Modulator {
	return Modulator{out: out, channel: channel, kind: ModulatorMaxCC, cc: cc, max: max}
}

// Send writes value (0-127) out, applying the modulator's scale.
func (m Modulator) Send(value uint8) {
	v := value
	if m.kind == ModulatorMaxCC {
		v = uint8(float64(value) / 127.0 * float64(m.max))
	}
	m.out.Send([]byte{0xB0 - 1 + m.channel, m.cc, v})
}

// floatToMIDI maps a 0..1 float to a 0-127 MIDI value, clamped.
func floatToMIDI(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 127
	}
	return uint8(v * 127.0)
}
