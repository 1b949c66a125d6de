package scale

import "testing"

func TestNoteForMajorScale(t *testing.T) {
	s := New(60, 0)
	want := []int{60, 62, 64, 65, 67, 69, 71, 72}
	for degree, note := range want {
		if got := s.NoteFor(degree); got != note {
			t.Fatalf("degree %d: got %d, want %d", degree, got, note)
		}
	}
}

func TestNoteForNegativeDegreeWraps(t *testing.T) {
	s := New(60, 0)
	if got := s.NoteFor(-1); got != 59 {
		t.Fatalf("degree -1: got %d, want 59", got)
	}
	if got := s.NoteFor(-7); got != 48 {
		t.Fatalf("degree -7: got %d, want 48", got)
	}
}

func TestWithRootAndMode(t *testing.T) {
	s := New(60, 0)
	rooted := s.WithRoot(62)
	if rooted.Root != 62 || rooted.Mode != 0 {
		t.Fatalf("WithRoot mutated wrong field: %+v", rooted)
	}
	if s.Root != 60 {
		t.Fatal("WithRoot should not mutate receiver")
	}

	moded := s.WithMode(1)
	if moded.Mode != 1 || moded.Root != 60 {
		t.Fatalf("WithMode mutated wrong field: %+v", moded)
	}
}
