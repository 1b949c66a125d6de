package midi

import (
	"testing"

	"gridloop/schedule"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// newBareController builds a GridController with no open ports, for
// exercising handle()/handleNote() decode logic directly against
// constructed gomidi.Message values (no loopback port needed).
func newBareController() *GridController {
	return &GridController{
		id:       "test",
		padChan:  make(chan PadEvent, 64),
		rateChan: make(chan RateEvent, 8),
		modeChan: make(chan ModeEvent, 8),
	}
}

func TestHandleNoteOnDecodesPadID(t *testing.T) {
	gc := newBareController()
	gc.handle(gomidi.NoteOn(0, 11, 100), 0, nil)

	select {
	case ev := <-gc.padChan:
		if ev.ID != 0 || ev.Velocity != 100 || !ev.On {
			t.Fatalf("unexpected pad event: %+v", ev)
		}
	default:
		t.Fatal("expected a pad event")
	}
}

func TestHandleNoteOffDecodesPadID(t *testing.T) {
	gc := newBareController()
	gc.handle(gomidi.NoteOn(0, 81, 0), 0, nil)

	select {
	case ev := <-gc.padChan:
		if ev.ID != 63 || ev.On {
			t.Fatalf("unexpected pad event: %+v", ev)
		}
	default:
		t.Fatal("expected a pad event")
	}
}

func TestHandleNoteOnSideButtonDecodesRateIndex(t *testing.T) {
	gc := newBareController()
	gc.handle(gomidi.NoteOn(0, 59, 127), 0, nil)

	select {
	case ev := <-gc.rateChan:
		if ev.Index != 4 || !ev.Pressed {
			t.Fatalf("unexpected rate event: %+v", ev)
		}
	default:
		t.Fatal("expected a rate event")
	}
}

func TestHandleNoteOffSideButtonDecodesRelease(t *testing.T) {
	gc := newBareController()
	gc.handle(gomidi.NoteOn(0, 59, 0), 0, nil)

	select {
	case ev := <-gc.rateChan:
		if ev.Index != 4 || ev.Pressed {
			t.Fatalf("unexpected rate event: %+v", ev)
		}
	default:
		t.Fatal("expected a rate release event")
	}
}

func TestHandleControlChangeDecodesModeEvent(t *testing.T) {
	gc := newBareController()
	gc.handle(gomidi.ControlChange(0, 106, 127), 0, nil)

	select {
	case ev := <-gc.modeChan:
		if ev.Mode != 2 || !ev.Pressed {
			t.Fatalf("unexpected mode event: %+v", ev)
		}
	default:
		t.Fatal("expected a mode event")
	}
}

func TestHandleClockTickFeedsRemoteState(t *testing.T) {
	gc := newBareController()
	remote := schedule.NewRemoteState()

	gc.handle(rawMessage(statusClockTick), 1000, remote)
	gc.handle(rawMessage(statusClockTick), 1010, remote)

	ticks, _ := remote.Status()
	if ticks != 1 {
		t.Fatalf("expected tick ordinal 1 after 2 ticks (first tick seeds ordinal 0), got %d", ticks)
	}
}

func TestHandleStartFeedsRemoteState(t *testing.T) {
	gc := newBareController()
	remote := schedule.NewRemoteState()

	gc.handle(rawMessage(statusStart), 500, remote)

	if _, started := remote.Status(); !started {
		t.Fatal("expected remote state to record a start")
	}
}

func TestPadNoteRoundTrip(t *testing.T) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			note := padNote(row, col)
			gotRow, gotCol := note/10-1, note%10-1
			if int(gotRow) != row || int(gotCol) != col {
				t.Fatalf("round trip failed for (%d,%d): note=%d", row, col, note)
			}
		}
	}
}

func TestNoteToPadIDRejectsOutOfRange(t *testing.T) {
	if _, ok := noteToPadID(0); ok {
		t.Fatal("expected note 0 to be rejected")
	}
	if _, ok := noteToPadID(19); ok {
		t.Fatal("expected a side-button note to be rejected by the grid decoder")
	}
}

// rawMessage builds a single status-byte realtime message, since
// gomidi.v2 doesn't expose constructors for 0xF8/0xFA directly.
func rawMessage(status byte) gomidi.Message {
	return gomidi.Message([]byte{status})
}
