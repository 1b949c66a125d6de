package rig

// triggerEnvelope is a retrigger-and-decay envelope with a slew limit on its
// output, decoupling the raw decay curve from how fast the output can move
// per tick. Ported directly from the original engine's trigger_envelope.rs.
type triggerEnvelope struct {
	tickMultiplier float64
	maxTickChange  float64
	tickValue      float64

	value    float64
	outValue float64
}

func newTriggerEnvelope(tickMultiplier, maxTickChange float64) *triggerEnvelope {
	return &triggerEnvelope{
		tickMultiplier: tickMultiplier,
		maxTickChange:  maxTickChange,
		tickValue:      1.0,
	}
}

// Value is the current output, clamped to [0, 1].
func (e *triggerEnvelope) Value() float64 {
	if e.outValue < 0 {
		return 0
	}
	if e.outValue > 1 {
		return 1
	}
	return e.outValue
}

// tick advances the envelope by one scheduler tick. triggered restarts the
// decay at tickValue; otherwise the value decays geometrically toward zero.
func (e *triggerEnvelope) tick(triggered bool) {
	switch {
	case triggered && e.tickMultiplier > 0:
		e.value = e.tickValue
	case e.value > 0:
		e.value *= e.tickMultiplier
	default:
		e.value = 0
	}

	if e.value > e.outValue {
		e.outValue += min(e.value-e.outValue, e.maxTickChange)
	} else if e.value < e.outValue {
		e.outValue -= min(e.outValue-e.value, e.maxTickChange)
	}
}
