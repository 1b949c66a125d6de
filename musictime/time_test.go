package musictime

import "testing"

func TestAddSubRoundTrip(t *testing.T) {
	cases := []struct{ a, b Time }{
		{New(100, 100), New(90, 90)},
		{New(100, 100), New(90, 110)},
		{New(0, 0), New(5, 200)},
		{New(-10, 5), New(3, 250)},
	}
	for _, c := range cases {
		if got := c.a.Sub(c.b).Add(c.b); !got.Equal(c.a) {
			t.Errorf("(%v - %v) + %v = %v, want %v", c.a, c.b, c.b, got, c.a)
		}
		if got := c.a.Add(c.b).Sub(c.b); !got.Equal(c.a) {
			t.Errorf("(%v + %v) - %v = %v, want %v", c.a, c.b, c.b, got, c.a)
		}
	}
}

func TestSubtractCarry(t *testing.T) {
	a := New(100, 100)
	b := New(90, 90)
	c := New(90, 110)
	if got := a.Sub(b); !got.Equal(New(10, 10)) {
		t.Errorf("a-b = %v, want {10 10}", got)
	}
	if got := a.Sub(c); !got.Equal(New(9, 246)) {
		t.Errorf("a-c = %v, want {9 246}", got)
	}
}

func TestAddCarry(t *testing.T) {
	a := New(100, 100)
	b := New(50, 90)
	c := New(50, 200)
	if got := a.Add(b); !got.Equal(New(150, 190)) {
		t.Errorf("a+b = %v, want {150 190}", got)
	}
	if got := a.Add(c); !got.Equal(New(151, 44)) {
		t.Errorf("a+c = %v, want {151 44}", got)
	}
}

func TestHalf(t *testing.T) {
	a := FromBeats(4)
	if got := a.Half(); !got.Equal(FromTicks(4 * TicksPerBeat / 2)) {
		t.Errorf("half = %v, want %v", got, FromTicks(4*TicksPerBeat/2))
	}
}

func TestQuantizeLength(t *testing.T) {
	cases := []struct {
		ticks int32
		want  int32
	}{
		{23, 24},
		{7, 12},
		{41, 48},
	}
	for _, c := range cases {
		got := QuantizeLength(FromTicks(c.ticks))
		if got.Ticks != c.want {
			t.Errorf("quantize(%d) = %d, want %d", c.ticks, got.Ticks, c.want)
		}
	}
}

func TestOrderingTotal(t *testing.T) {
	a := New(5, 10)
	b := New(5, 20)
	c := New(6, 0)
	if !a.Less(b) {
		t.Error("a should be less than b")
	}
	if !b.Less(c) {
		t.Error("b should be less than c")
	}
	if a.Compare(a) != 0 {
		t.Error("a should equal itself")
	}
}

func TestModWholeBeat(t *testing.T) {
	a := FromBeats(3).Add(New(0, 5))
	if !FromBeats(3).IsWholeBeat() {
		t.Error("3 beats should be a whole beat")
	}
	if a.IsWholeBeat() {
		t.Error("3 beats + frac should not be a whole beat")
	}
}

func TestModNegative(t *testing.T) {
	a := FromTicks(-2)
	m := FromTicks(24)
	got := a.Mod(m)
	if got.Ticks != 22 {
		t.Errorf("mod = %d, want 22", got.Ticks)
	}
}
