// Package looptape holds the recorded timeline of a performance: events,
// the per-pad recorder, per-pad transforms, and the undo/redo loop stack.
package looptape

import (
	"sort"

	"gridloop/musictime"
)

// Event is a single recorded pad value at a musical position.
type Event struct {
	ID    int
	Value musictime.Value
	Pos   musictime.Time
}

// WithPos returns a copy of the event re-timestamped to pos.
func (e Event) WithPos(pos musictime.Time) Event {
	return Event{ID: e.ID, Value: e.Value, Pos: pos}
}

// Less orders events by position, then Off before On at equal position,
// then by id — giving the recorder's per-id sequences (which never mix
// ids) a stable total order, and giving the scheduled-event batch a
// deterministic emission order across ids.
func (e Event) Less(o Event) bool {
	if !e.Pos.Equal(o.Pos) {
		return e.Pos.Less(o.Pos)
	}
	if !e.Value.Equal(o.Value) {
		return e.Value.Less(o.Value)
	}
	return e.ID < o.ID
}

// Equal is structural equality on all three fields.
func (e Event) Equal(o Event) bool {
	return e.Pos.Equal(o.Pos) && e.Value.Equal(o.Value) && e.ID == o.ID
}

// SortEvents sorts a batch of events into emission order (used by the grid
// engine before dispatching a tick's triggered events).
func SortEvents(events []Event) {
	sort.Slice(events, func(i, j int) bool { return events[i].Less(events[j]) })
}

// insertSorted inserts or overwrites event into a position-sorted, duplicate-
// free sequence. A structurally equal event (by Less's total order, which
// ignores nothing — two events compare equal in sort order only when they
// are pos+value+id identical) replaces in place rather than duplicating.
func insertSorted(seq []Event, e Event) []Event {
	i := sort.Search(len(seq), func(i int) bool { return !seq[i].Less(e) })
	if i < len(seq) && seq[i].Equal(e) {
		seq[i] = e
		return seq
	}
	seq = append(seq, Event{})
	copy(seq[i+1:], seq[i:])
	seq[i] = e
	return seq
}

// rangeSorted returns the slice of seq with position in [start, end).
func rangeSorted(seq []Event, start, end musictime.Time) []Event {
	lo := sort.Search(len(seq), func(i int) bool { return !seq[i].Pos.Less(start) })
	hi := sort.Search(len(seq), func(i int) bool { return !seq[i].Pos.Less(end) })
	if hi < lo {
		hi = lo
	}
	return seq[lo:hi]
}

// atSorted returns the event at pos, or the one immediately preceding it.
func atSorted(seq []Event, pos musictime.Time) (Event, bool) {
	i := sort.Search(len(seq), func(i int) bool { return !seq[i].Pos.Less(pos) })
	if i < len(seq) && seq[i].Pos.Equal(pos) {
		return seq[i], true
	}
	if i > 0 {
		return seq[i-1], true
	}
	return Event{}, false
}

// nextSorted returns the first event strictly after pos.
func nextSorted(seq []Event, pos musictime.Time) (Event, bool) {
	i := sort.Search(len(seq), func(i int) bool { return pos.Less(seq[i].Pos) })
	if i < len(seq) {
		return seq[i], true
	}
	return Event{}, false
}
