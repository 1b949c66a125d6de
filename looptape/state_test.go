package looptape

import (
	"testing"

	"gridloop/musictime"
)

func TestStateUndoFloor(t *testing.T) {
	s := NewState(musictime.FromBeats(4))
	s.Undo() // no-op, only one entry
	if s.UndoDepth() != 1 {
		t.Fatalf("undo depth should stay 1, got %d", s.UndoDepth())
	}
}

func TestStateUndoRedoInterleave(t *testing.T) {
	s := NewState(musictime.FromBeats(4))
	a := NewCollection(musictime.FromBeats(8))
	s.Set(a)
	b := NewCollection(musictime.FromBeats(16))
	s.Set(b)
	s.Undo()
	if got := s.Get(); !got.Length.Equal(a.Length) {
		t.Fatalf("after undo, want length %v, got %v", a.Length, got.Length)
	}
	s.Redo()
	if got := s.Get(); !got.Length.Equal(b.Length) {
		t.Fatalf("after redo, want length %v, got %v", b.Length, got.Length)
	}
	if s.UndoDepth() < 1 {
		t.Fatal("undo depth must never drop below 1")
	}
}

func TestStateUndoAfterFlatten(t *testing.T) {
	s := NewState(musictime.FromBeats(4))
	loopA := NewCollection(musictime.FromBeats(8))
	loopA.Transforms[1] = ValueTransform(musictime.On(100))
	s.Set(loopA)

	flattened := s.Get().Clone()
	for id := range flattened.Transforms {
		flattened.Transforms[id] = ValueTransform(musictime.Off())
	}
	s.Set(flattened)

	s.Undo()
	got := s.Get()
	if !got.Transforms[1].Equal(loopA.Transforms[1]) {
		t.Fatalf("undo after flatten should restore loop A, got %v", got.Transforms[1])
	}
}

func TestStateChangeNotifications(t *testing.T) {
	s := NewState(musictime.FromBeats(4))
	s.Set(NewCollection(musictime.FromBeats(8)))
	s.Undo()
	s.Redo()

	kinds := []ChangeKind{}
	for {
		c, ok := s.PopChange()
		if !ok {
			break
		}
		kinds = append(kinds, c.Kind)
	}
	want := []ChangeKind{ChangeSet, ChangeUndo, ChangeRedo}
	if len(kinds) != len(want) {
		t.Fatalf("got %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("got %v, want %v", kinds, want)
		}
	}
}

func TestStateSetDoesNotClearRedo(t *testing.T) {
	s := NewState(musictime.FromBeats(4))
	s.Set(NewCollection(musictime.FromBeats(8)))
	s.Undo()
	if s.RedoDepth() != 1 {
		t.Fatalf("want 1 redo entry after undo, got %d", s.RedoDepth())
	}
	// Per the resolved open question, Set does not clear redo.
	s.Set(NewCollection(musictime.FromBeats(16)))
	if s.RedoDepth() != 1 {
		t.Fatalf("set must not clear redo, got depth %d", s.RedoDepth())
	}
}

func TestNextPreviousIndexFor(t *testing.T) {
	s := NewState(musictime.FromBeats(4))
	a := NewCollection(musictime.FromBeats(4))
	a.Transforms[5] = ValueTransform(musictime.On(10))
	s.Set(a) // offset -1 from current after this push... current is a

	b := a.Clone()
	b.Transforms[5] = ValueTransform(musictime.On(20))
	s.Set(b)

	selection := map[int]bool{5: true}
	idx, ok := s.PreviousIndexFor(0, selection)
	if !ok || idx != -1 {
		t.Fatalf("expected previous differing index -1, got %d, %v", idx, ok)
	}
}
