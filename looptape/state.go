package looptape

import "gridloop/musictime"

// Collection is a snapshot of one loop's length and per-pad transforms —
// one entry in the undo/redo stack. Keys are unique; insertion order
// carries no meaning.
type Collection struct {
	Length     musictime.Time
	Transforms map[int]Transform
}

// NewCollection creates an empty collection of the given length.
func NewCollection(length musictime.Time) Collection {
	return Collection{Length: length, Transforms: make(map[int]Transform)}
}

// Clone returns a deep copy (the transforms map is not shared), so callers
// can mutate the copy before pushing it with State.Set.
func (c Collection) Clone() Collection {
	out := Collection{Length: c.Length, Transforms: make(map[int]Transform, len(c.Transforms))}
	for id, t := range c.Transforms {
		out.Transforms[id] = t
	}
	return out
}

// ChangeKind identifies what kind of mutation produced a Change notification.
type ChangeKind int

const (
	ChangeSet ChangeKind = iota
	ChangeUndo
	ChangeRedo
)

// Change is pushed onto State's notification queue on every mutation.
type Change struct {
	Kind ChangeKind
}

// State is the undo/redo history of loop collections. |undo| >= 1 always:
// it is seeded with an empty collection of the requested default length and
// never drops below one entry (Undo is a no-op at the floor).
//
// Set does not clear Redo. This reproduces the original engine's actual
// behavior (never observed clearing redo on set) rather than the more
// common "linear history" convention — branching history is kept on
// purpose; see DESIGN.md for the reasoning.
type State struct {
	undo []Collection
	redo []Collection

	changes []Change // unbounded notification queue, drained by PopChange
}

// NewState seeds the stack with one empty collection of defaultLength.
func NewState(defaultLength musictime.Time) *State {
	return &State{
		undo: []Collection{NewCollection(defaultLength)},
	}
}

// PopChange removes and returns the oldest pending change notification.
// Every mutation (Set/Undo/Redo) pushes exactly one Change; the queue grows
// without bound until drained, since notifications are advisory (the grid
// engine uses them only to know it should re-derive its caches, always
// re-reading Get() rather than trusting the notification's payload) and the
// engine is the sole mutator and sole drainer, so it never falls behind.
func (s *State) PopChange() (Change, bool) {
	if len(s.changes) == 0 {
		return Change{}, false
	}
	c := s.changes[0]
	s.changes = s.changes[1:]
	return c, true
}

// Get returns the top of the undo stack — the live collection.
func (s *State) Get() Collection {
	return s.undo[len(s.undo)-1]
}

// Set pushes a new collection onto the undo stack.
func (s *State) Set(v Collection) {
	s.undo = append(s.undo, v)
	s.notify(ChangeSet)
}

// Undo pops the top of the undo stack onto redo, unless that would leave
// undo empty.
func (s *State) Undo() {
	if len(s.undo) <= 1 {
		return
	}
	top := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, top)
	s.notify(ChangeUndo)
}

// Redo pops the top of the redo stack back onto undo.
func (s *State) Redo() {
	if len(s.redo) == 0 {
		return
	}
	top := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, top)
	s.notify(ChangeRedo)
}

// UndoDepth and RedoDepth expose the stack sizes for UI/light rendering.
func (s *State) UndoDepth() int { return len(s.undo) }
func (s *State) RedoDepth() int { return len(s.redo) }

// Retrieve looks up a collection by offset from the current position:
// negative into undo history, positive into redo history, zero is Get().
func (s *State) Retrieve(offset int) (Collection, bool) {
	switch {
	case offset < 0:
		idx := len(s.undo) - 1 + offset
		if idx >= 0 && idx < len(s.undo) {
			return s.undo[idx], true
		}
		return Collection{}, false
	case offset > 0:
		idx := len(s.redo) - offset
		if idx >= 0 && idx < len(s.redo) {
			return s.redo[idx], true
		}
		return Collection{}, false
	default:
		return s.Get(), true
	}
}

// NextIndexFor scans forward (toward redo) from currentOffset for the next
// entry whose transforms differ from the starting entry on any pad in
// selection.
func (s *State) NextIndexFor(currentOffset int, selection map[int]bool) (int, bool) {
	return s.indexFrom(currentOffset, 1, selection)
}

// PreviousIndexFor scans backward (toward undo) for the same.
func (s *State) PreviousIndexFor(currentOffset int, selection map[int]bool) (int, bool) {
	return s.indexFrom(currentOffset, -1, selection)
}

func (s *State) indexFrom(currentOffset, step int, selection map[int]bool) (int, bool) {
	start, ok := s.Retrieve(currentOffset)
	if !ok {
		return 0, false
	}
	offset := currentOffset
	for {
		offset += step
		item, ok := s.Retrieve(offset)
		if !ok {
			return 0, false
		}
		for id := range selection {
			a, aok := start.Transforms[id]
			b, bok := item.Transforms[id]
			if aok != bok || (aok && !a.Equal(b)) {
				return offset, true
			}
		}
	}
}

func (s *State) notify(kind ChangeKind) {
	s.changes = append(s.changes, Change{Kind: kind})
}
