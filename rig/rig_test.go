package rig

import (
	"testing"

	"gridloop/musictime"
	"gridloop/schedule"
)

type fakeSender struct {
	sent [][]byte
}

func (f *fakeSender) Send(msg []byte) error {
	cp := make([]byte, len(msg))
	copy(cp, msg)
	f.sent = append(f.sent, cp)
	return nil
}

func tickRange(ticks int32) schedule.ScheduleRange {
	return schedule.ScheduleRange{
		From:   musictime.FromTicks(ticks - 1),
		To:     musictime.FromTicks(ticks),
		Ticked: true,
	}
}

func TestRuntimeFansOutToEveryController(t *testing.T) {
	rt := NewRuntime()
	a := &fakeSender{}
	b := &fakeSender{}
	rt.Add(NewClockPulse(a, 1, 24, NewParams()))
	rt.Add(NewClockPulse(b, 1, 24, NewParams()))

	rt.Schedule(tickRange(1))

	if len(a.sent) != 1 || len(b.sent) != 1 {
		t.Fatalf("expected both controllers to receive the tick, got %d and %d", len(a.sent), len(b.sent))
	}
}

func TestClockPulsePulsesOnDivider(t *testing.T) {
	sender := &fakeSender{}
	cp := NewClockPulse(sender, 1, 24, NewParams())

	for tick := int32(1); tick <= 26; tick++ {
		cp.Schedule(tickRange(tick))
	}

	if len(sender.sent) != 4 {
		t.Fatalf("expected 4 messages (on/off at tick 1 and tick 25), got %d: %v", len(sender.sent), sender.sent)
	}
	if sender.sent[0][2] != 127 {
		t.Fatalf("expected first pulse at full velocity, got %d", sender.sent[0][2])
	}
	if sender.sent[1][2] != 0 {
		t.Fatalf("expected the pulse-off message to carry zero velocity, got %d", sender.sent[1][2])
	}
}

func TestClockPulseAlternatesPitchOnResetBeat(t *testing.T) {
	sender := &fakeSender{}
	params := NewParams()
	params.ResetBeat = 2
	cp := NewClockPulse(sender, 1, 1, params)

	// divider 1: every tick is an on-pulse, so pitch flips each time per
	// the reset_beat-of-2 cadence (127, 0, 127, 0, ...).
	var onPitches []uint8
	for tick := int32(1); tick <= 4; tick++ {
		cp.Schedule(tickRange(tick))
		onPitches = append(onPitches, sender.sent[len(sender.sent)-1][1])
	}

	if onPitches[0] == onPitches[1] {
		t.Fatalf("expected alternating pitch across reset-beat boundary, got %v", onPitches)
	}
}

func TestDuckOutputDecaysAfterTrigger(t *testing.T) {
	sender := &fakeSender{}
	params := NewParams()
	params.DuckTickMultiplier = 0.5
	duck := NewDuckOutput([]Modulator{NewCCModulator(sender, 1, 20)}, params)

	params.SetDuckTriggered(true)
	duck.Schedule(tickRange(1))
	first := sender.sent[len(sender.sent)-1][2]

	params.SetDuckTriggered(false)
	duck.Schedule(tickRange(2))
	second := sender.sent[len(sender.sent)-1][2]

	if second >= first {
		t.Fatalf("expected decay after trigger released: first=%d second=%d", first, second)
	}
}

func TestDuckOutputScalesByReduction(t *testing.T) {
	sender := &fakeSender{}
	params := NewParams()
	params.DuckReduction = 0
	duck := NewDuckOutput([]Modulator{NewCCModulator(sender, 1, 20)}, params)

	params.SetDuckTriggered(true)
	duck.Schedule(tickRange(1))

	if got := sender.sent[0][2]; got != 0 {
		t.Fatalf("expected zero reduction to zero the output, got %d", got)
	}
}
