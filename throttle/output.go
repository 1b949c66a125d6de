// Package throttle de-duplicates outbound MIDI messages so a burst of LED or
// CC updates to the same (status, data1) pair collapses to one send per
// flush, with only the last value kept. Grounded on the original engine's
// ThrottledOutput.
package throttle

// Sender is the minimal MIDI-out capability throttle.Output needs. A
// midi.Controller exposes RawSend instead and is adapted to it in
// cmd/gridloop.
type Sender interface {
	Send(msg []byte) error
}

type key struct {
	status, data1 byte
}

// Output wraps a Sender, withholding repeat writes to an already-sent
// (status, data1) pair until Flush, at which point only the most recent
// value for each withheld key is sent.
type Output struct {
	sender   Sender
	sentKeys map[key]bool
	pending  map[key]byte
}

// New wraps sender in a throttled Output.
func New(sender Sender) *Output {
	return &Output{
		sender:   sender,
		sentKeys: make(map[key]bool),
		pending:  make(map[key]byte),
	}
}

// Send writes msg immediately if this is the first send this epoch for its
// (status, data1) pair; otherwise it withholds the value, keeping only the
// latest, until Flush. Messages that aren't exactly 3 bytes (status, data1,
// data2) bypass throttling entirely and are always sent immediately.
func (o *Output) Send(msg []byte) error {
	if len(msg) != 3 {
		return o.sender.Send(msg)
	}
	k := key{status: msg[0], data1: msg[1]}
	if o.sentKeys[k] {
		o.pending[k] = msg[2]
		return nil
	}
	if err := o.sender.Send(msg); err != nil {
		return err
	}
	o.sentKeys[k] = true
	return nil
}

// Flush sends the most recent withheld value for every key throttled since
// the last flush, then resets so the next epoch's first write to any key
// goes straight through again.
func (o *Output) Flush() error {
	for k, v := range o.pending {
		if err := o.sender.Send([]byte{k.status, k.data1, v}); err != nil {
			return err
		}
	}
	o.pending = make(map[key]byte)
	o.sentKeys = make(map[key]bool)
	return nil
}
