package looptape

import (
	"testing"

	"gridloop/musictime"
)

func TestTransformIsActive(t *testing.T) {
	if None().IsActive() {
		t.Error("None should be inactive")
	}
	if ValueTransform(musictime.Off()).IsActive() {
		t.Error("Value(Off) should be inactive")
	}
	if !ValueTransform(musictime.On(1)).IsActive() {
		t.Error("Value(On) should be active")
	}
	if !RepeatTransform(musictime.FromTicks(12), musictime.Zero(), musictime.On(80)).IsActive() {
		t.Error("Repeat should be active")
	}
}

func TestFlattenIdempotentAllOff(t *testing.T) {
	ids := []int{0, 1, 2, 3}
	s := NewState(musictime.FromBeats(4))
	// flattenAllOff pushes an all-Off copy of the live collection, as the
	// grid engine's flatten does with no selection and no overrides.
	flattenAllOff := func() map[int]Transform {
		next := s.Get().Clone()
		for _, id := range ids {
			next.Transforms[id] = ValueTransform(musictime.Off())
		}
		s.Set(next)
		return s.Get().Transforms
	}
	first := flattenAllOff()
	second := flattenAllOff()
	if len(first) != len(second) {
		t.Fatal("flatten should be idempotent")
	}
	for id := range first {
		if !first[id].Equal(second[id]) {
			t.Fatalf("flatten outputs differ at pad %d", id)
		}
	}
}
