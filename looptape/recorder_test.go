package looptape

import (
	"testing"

	"gridloop/musictime"
)

func TestRecorderRangeNonDecreasing(t *testing.T) {
	r := NewRecorder()
	r.Add(Event{ID: 1, Value: musictime.On(100), Pos: musictime.FromTicks(10)})
	r.Add(Event{ID: 1, Value: musictime.Off(), Pos: musictime.FromTicks(5)})
	r.Add(Event{ID: 1, Value: musictime.On(80), Pos: musictime.FromTicks(20)})

	got := r.Range(1, musictime.FromTicks(0), musictime.FromTicks(100))
	for i := 1; i < len(got); i++ {
		if got[i].Pos.Less(got[i-1].Pos) {
			t.Fatalf("events not sorted: %v", got)
		}
	}
	if len(got) != 3 {
		t.Fatalf("want 3 events, got %d", len(got))
	}
}

func TestRecorderRangeExactBounds(t *testing.T) {
	r := NewRecorder()
	for _, tick := range []int32{0, 5, 10, 15, 20} {
		r.Add(Event{ID: 1, Value: musictime.On(1), Pos: musictime.FromTicks(tick)})
	}
	got := r.Range(1, musictime.FromTicks(5), musictime.FromTicks(15))
	if len(got) != 2 {
		t.Fatalf("want 2 events in [5,15), got %d: %v", len(got), got)
	}
	if got[0].Pos.Ticks != 5 || got[1].Pos.Ticks != 10 {
		t.Fatalf("unexpected events: %v", got)
	}
}

func TestRecorderDuplicateReplaces(t *testing.T) {
	r := NewRecorder()
	e := Event{ID: 2, Value: musictime.On(100), Pos: musictime.FromTicks(10)}
	r.Add(e)
	r.Add(e) // same event again: structurally equal, should replace not append
	got := r.Range(2, musictime.FromTicks(0), musictime.FromTicks(100))
	if len(got) != 1 {
		t.Fatalf("duplicate add should not grow sequence, got %d", len(got))
	}
}

func TestRecorderRoundTrip(t *testing.T) {
	r := NewRecorder()
	p := musictime.FromTicks(50)
	e := Event{ID: 3, Value: musictime.On(42), Pos: p}
	r.Add(e)

	at, ok := r.At(3, p)
	if !ok || !at.Equal(e) {
		t.Fatalf("At(p) = %v, %v, want %v, true", at, ok, e)
	}

	next, ok := r.Next(3, musictime.FromTicks(49))
	if !ok || !next.Equal(e) {
		t.Fatalf("Next(p-1) = %v, %v, want %v, true", next, ok, e)
	}

	rng := r.Range(3, p, p.Add(musictime.OneTick()))
	if len(rng) != 1 || !rng[0].Equal(e) {
		t.Fatalf("Range(p, p+1) = %v, want [%v]", rng, e)
	}
}

func TestRecorderAtMissReturnsPreceding(t *testing.T) {
	r := NewRecorder()
	r.Add(Event{ID: 1, Value: musictime.On(1), Pos: musictime.FromTicks(10)})
	got, ok := r.At(1, musictime.FromTicks(15))
	if !ok || got.Pos.Ticks != 10 {
		t.Fatalf("At(15) should return event at 10, got %v, %v", got, ok)
	}
	_, ok = r.At(1, musictime.FromTicks(5))
	if ok {
		t.Fatal("At before any event should miss")
	}
}

func TestRecorderIdempotentRange(t *testing.T) {
	r := NewRecorder()
	r.Add(Event{ID: 1, Value: musictime.On(1), Pos: musictime.FromTicks(1)})
	a := r.Range(1, musictime.FromTicks(0), musictime.FromTicks(10))
	b := r.Range(1, musictime.FromTicks(0), musictime.FromTicks(10))
	if len(a) != len(b) || len(a) != 1 {
		t.Fatalf("range should be idempotent: %v vs %v", a, b)
	}
}
