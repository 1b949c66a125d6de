package rig

import (
	"testing"

	"gridloop/musictime"
	"gridloop/scale"
)

func TestMidiKeysSendsNoteOnAndOff(t *testing.T) {
	sender := &fakeSender{}
	sc := scale.New(60, 0)
	keys := NewMidiKeys(sender, 1, &sc)

	keys.Trigger(0, musictime.On(100))
	keys.Trigger(0, musictime.Off())

	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(sender.sent))
	}
	if sender.sent[0][0] != 0x90 || sender.sent[0][1] != 60 || sender.sent[0][2] != 100 {
		t.Fatalf("unexpected note-on message: %+v", sender.sent[0])
	}
	if sender.sent[1][2] != 0 {
		t.Fatalf("expected note-off velocity 0, got %+v", sender.sent[1])
	}
}

func TestMidiKeysOctaveOffset(t *testing.T) {
	sender := &fakeSender{}
	sc := scale.New(60, 0)
	keys := NewMidiKeys(sender, 1, &sc).WithOctave(1)

	keys.Trigger(0, musictime.On(100))

	if sender.sent[0][1] != 72 {
		t.Fatalf("expected note 72 with octave offset, got %d", sender.sent[0][1])
	}
}
