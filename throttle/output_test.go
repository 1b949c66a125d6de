package throttle

import "testing"

type fakeSender struct {
	sent [][]byte
}

func (f *fakeSender) Send(msg []byte) error {
	cp := make([]byte, len(msg))
	copy(cp, msg)
	f.sent = append(f.sent, cp)
	return nil
}

func TestThrottleDedupesRepeatedKey(t *testing.T) {
	fs := &fakeSender{}
	o := New(fs)

	o.Send([]byte{0xB0, 7, 10})
	o.Send([]byte{0xB0, 7, 20})
	o.Send([]byte{0xB0, 7, 30})

	if len(fs.sent) != 1 || fs.sent[0][2] != 10 {
		t.Fatalf("expected exactly one immediate send of value 10, got %v", fs.sent)
	}

	o.Flush()
	if len(fs.sent) != 2 || fs.sent[1][2] != 30 {
		t.Fatalf("expected flush to send pending value 30, got %v", fs.sent)
	}
}

func TestThrottleResetsAfterFlush(t *testing.T) {
	fs := &fakeSender{}
	o := New(fs)

	o.Send([]byte{0xB0, 7, 1})
	o.Flush()
	o.Send([]byte{0xB0, 7, 2})

	if len(fs.sent) != 2 {
		t.Fatalf("expected 2 sends across two epochs, got %d: %v", len(fs.sent), fs.sent)
	}
}

func TestThrottleBypassesNonTripletMessages(t *testing.T) {
	fs := &fakeSender{}
	o := New(fs)

	sysex := []byte{0xF0, 0x00, 0x20, 0x29, 0xF7}
	o.Send(sysex)
	o.Send(sysex)

	if len(fs.sent) != 2 {
		t.Fatalf("non-triplet messages should never be throttled, got %d sends", len(fs.sent))
	}
}
