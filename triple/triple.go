package triple

import (
	"fmt"
	"iter"
)

// Triple is an arithmetic progression start, start+step, … of integers
// strictly before stop.
//
// Triples are immutable. The canonical form is ascending (step > 0) with stop
// one step past the last element; a single value v is (v, v+1, 1).
type Triple struct {
	start, stop, step int
}

// New creates a progression. Descending progressions (step < 0) are
// normalized to the ascending progression over the same elements.
func New(start, stop, step int) (Triple, error) {
	var n, first int
	switch {
	case step == 0:
		return Triple{}, ErrZeroStep
	case step > 0:
		if start >= stop {
			return Triple{}, ErrEmpty
		}
		n = (stop - start + step - 1) / step
		first = start
	default:
		if start <= stop {
			return Triple{}, ErrEmpty
		}
		n = (start - stop - step - 1) / -step
		first = start + (n-1)*step
		step = -step
	}
	if n == 1 {
		return single(first), nil
	}
	return Triple{start: first, stop: first + n*step, step: step}, nil
}

// MustNew is like New but panics on invalid progressions.
func MustNew(start, stop, step int) Triple {
	t, err := New(start, stop, step)
	if err != nil {
		panic(err)
	}
	return t
}

func single(v int) Triple {
	return Triple{start: v, stop: v + 1, step: 1}
}

// hull creates the ascending progression from lo to hi (inclusive) with step g.
// hi-lo must be a multiple of g.
func hull(lo, hi, g int) Triple {
	if lo == hi || g <= 0 {
		return single(lo)
	}
	return Triple{start: lo, stop: hi + g, step: g}
}

// Start returns the smallest element.
func (t Triple) Start() int { return t.start }

// Stop returns the exclusive upper end.
func (t Triple) Stop() int { return t.stop }

// Step returns the distance between neighbouring elements.
func (t Triple) Step() int { return t.step }

// Len returns the number of elements.
func (t Triple) Len() int {
	if t.step == 0 {
		return 0
	}
	return (t.stop - t.start) / t.step
}

// Min returns the smallest element.
func (t Triple) Min() int { return t.start }

// Max returns the largest element.
func (t Triple) Max() int { return t.stop - t.step }

// IsSingle is true if the progression has exactly one element.
func (t Triple) IsSingle() bool { return t.Len() == 1 }

// Contains reports whether n is an element.
func (t Triple) Contains(n int) bool {
	if t.step == 0 || n < t.start || n >= t.stop {
		return false
	}
	return (n-t.start)%t.step == 0
}

// All iterates over the elements in ascending order.
func (t Triple) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		if t.step <= 0 {
			return
		}
		for v := t.start; v < t.stop; v += t.step {
			if !yield(v) {
				return
			}
		}
	}
}

// atLeast returns the elements ≥ lo.
func (t Triple) atLeast(lo int) (Triple, bool) {
	if t.Max() < lo {
		return Triple{}, false
	}
	if t.start >= lo {
		return t, true
	}
	k := (lo - t.start + t.step - 1) / t.step
	r, err := New(t.start+k*t.step, t.stop, t.step)
	return r, err == nil
}

// atMost returns the elements ≤ hi.
func (t Triple) atMost(hi int) (Triple, bool) {
	if t.start > hi {
		return Triple{}, false
	}
	if t.Max() <= hi {
		return t, true
	}
	r, err := New(t.start, hi+1, t.step)
	return r, err == nil
}

func (t Triple) String() string {
	if t.IsSingle() {
		return fmt.Sprintf("%d", t.start)
	}
	return fmt.Sprintf("Triple(%d, %d, %d)", t.start, t.stop, t.step)
}

// --- Helpers ---------------------------------------------------------------

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// floorDiv divides rounding towards negative infinity. b must not be 0.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// mod returns a modulo m in [0, m).
func mod(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

// modInverse returns the inverse of a modulo m. a and m must be coprime.
func modInverse(a, m int) int {
	r0, r1 := m, a
	s0, s1 := 0, 1
	for r1 != 0 {
		q := r0 / r1
		r0, r1 = r1, r0-q*r1
		s0, s1 = s1, s0-q*s1
	}
	return mod(s0, m)
}
