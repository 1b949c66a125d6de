// Package scale is the minimal scale reference the grid engine holds for
// its lifetime (spec.md §3: "created once ... with a scale reference").
// Grounded on the original engine's scale.rs: a diatonic mode table indexed
// by scale-degree offset from a root note.
package scale

// intervals is the whole/half-step pattern for a major scale, rotated by
// Mode to produce the other six diatonic modes.
var intervals = [7]int{2, 2, 1, 2, 2, 2, 1}

// Scale is a root note plus a diatonic mode (0 = major/Ionian, 1 = Dorian,
// and so on through the six rotations of intervals).
type Scale struct {
	Root int
	Mode int
}

// New returns a Scale rooted at root in the given mode.
func New(root, mode int) Scale {
	return Scale{Root: root, Mode: mode}
}

// NoteFor maps a scale degree (may be negative, wraps across octaves) to
// an absolute MIDI note number.
func (s Scale) NoteFor(degree int) int {
	steps := make([]int, 0, 7)
	steps = append(steps, 0)
	last := 0
	for i := 0; i < 6; i++ {
		last += intervals[mod(i+s.Mode, 7)]
		steps = append(steps, last)
	}

	length := len(steps)
	octave := floorDiv(degree, length)
	interval := steps[mod(degree, length)]
	return s.Root + octave*12 + interval
}

// WithRoot returns a copy of s rooted at root.
func (s Scale) WithRoot(root int) Scale {
	s.Root = root
	return s
}

// WithMode returns a copy of s switched to mode.
func (s Scale) WithMode(mode int) Scale {
	s.Mode = mode
	return s
}

func mod(n, m int) int {
	return ((n % m) + m) % m
}

func floorDiv(n, m int) int {
	q := n / m
	if (n%m != 0) && ((n < 0) != (m < 0)) {
		q--
	}
	return q
}
