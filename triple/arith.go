package triple

// pairLimit bounds the number of progression pairs combined one by one.
// Operands with more pairs are widened to their hulls first.
const pairLimit = 1024

// widenLimit is the number of progressions above which a result of more
// than EnumerationLimit elements is widened to its hull.
const widenLimit = 16

// Rounding selects how [MulDiv] rounds quotients.
type Rounding uint8

const (
	// TowardZero truncates, as TrueType's DIV does.
	TowardZero Rounding = iota
	// HalfAwayFromZero rounds to the nearest integer, halves away from zero,
	// as TrueType's MUL does.
	HalfAwayFromZero
)

// Max returns {max(a,b) | a ∈ A, b ∈ B}.
//
// The result is exact: every x ∈ A ∪ B with x ≥ max(min A, min B) is reached
// by pairing x with the minimum of the other operand.
func Max(a, b Collection) Collection {
	if a.IsEmpty() || b.IsEmpty() {
		return Collection{}
	}
	lo := max(a.Min(), b.Min())
	var ts []Triple
	for _, t := range a.triples {
		if r, ok := t.atLeast(lo); ok {
			ts = append(ts, r)
		}
	}
	for _, t := range b.triples {
		if r, ok := t.atLeast(lo); ok {
			ts = append(ts, r)
		}
	}
	return normalize(ts)
}

// Min returns {min(a,b) | a ∈ A, b ∈ B}. Like Max, the result is exact.
func Min(a, b Collection) Collection {
	if a.IsEmpty() || b.IsEmpty() {
		return Collection{}
	}
	hi := min(a.Max(), b.Max())
	var ts []Triple
	for _, t := range a.triples {
		if r, ok := t.atMost(hi); ok {
			ts = append(ts, r)
		}
	}
	for _, t := range b.triples {
		if r, ok := t.atMost(hi); ok {
			ts = append(ts, r)
		}
	}
	return normalize(ts)
}

// Add returns {a+b | a ∈ A, b ∈ B}.
func Add(a, b Collection) Collection {
	return combine(a, b, func(x, y int) int { return x + y }, addTriples)
}

// Sub returns {a-b | a ∈ A, b ∈ B}.
func Sub(a, b Collection) Collection {
	return Add(a, Neg(b))
}

// Mul returns {a·b | a ∈ A, b ∈ B}.
func Mul(a, b Collection) Collection {
	return combine(a, b, func(x, y int) int { return x * y }, mulTriples)
}

// DivFloor returns {⌊a/b⌋ | a ∈ A, b ∈ B, b ≠ 0}. Zero divisors are skipped;
// callers interested in division by zero check [Collection.HasZero] first.
// If B holds only zero, the result is empty.
func DivFloor(a, b Collection) Collection {
	var divisors []Triple
	for _, t := range b.triples {
		if neg, ok := t.atMost(-1); ok {
			divisors = append(divisors, neg)
		}
		if pos, ok := t.atLeast(1); ok {
			divisors = append(divisors, pos)
		}
	}
	if len(divisors) == 0 {
		return Collection{}
	}
	return combine(a, Collection{triples: divisors}, floorDiv, divTriples)
}

// MulDiv returns {round(a·b/c) | a ∈ A, b ∈ B, c ∈ C, c ≠ 0}, rounding the
// magnitude of the quotient and applying the sign afterwards. The product is
// formed in 64 bits and only the final result is widened to Top if it leaves
// the 32-bit range. Zero divisors are skipped as in DivFloor.
//
// 26.6 multiplication is MulDiv(A, B, 64, HalfAwayFromZero), 26.6 division is
// MulDiv(A, 64, B, TowardZero).
func MulDiv(a, b, c Collection, r Rounding) Collection {
	if a.IsEmpty() || b.IsEmpty() {
		return Collection{}
	}
	var neg, pos []Triple
	for _, t := range c.triples {
		if n, ok := t.atMost(-1); ok {
			neg = append(neg, n)
		}
		if p, ok := t.atLeast(1); ok {
			pos = append(pos, p)
		}
	}
	if len(neg) == 0 && len(pos) == 0 {
		return Collection{}
	}
	na, nb := a.Len(), b.Len()
	nc := Collection{triples: neg}.Len() + Collection{triples: pos}.Len()
	if na <= EnumerationLimit && nb <= EnumerationLimit && nc <= EnumerationLimit &&
		na*nb <= EnumerationLimit && na*nb*nc <= EnumerationLimit {
		//
		ts := make([]Triple, 0, na*nb*nc)
		for x := range a.All() {
			for y := range b.All() {
				for _, divisors := range [][]Triple{neg, pos} {
					for _, d := range divisors {
						for z := range d.All() {
							ts = append(ts, single(roundQuot(x*y, z, r)))
						}
					}
				}
			}
		}
		return clamp(normalize(ts))
	}
	if len(a.triples)*len(b.triples) > pairLimit {
		a, b = a.Hull(), b.Hull()
	}
	// Within a sign of the divisor, x·y/z is extreme at the corners, and
	// rounding keeps the order.
	var ts []Triple
	for _, divisors := range [][]Triple{neg, pos} {
		if len(divisors) == 0 {
			continue
		}
		d := Collection{triples: divisors}
		for _, x := range a.triples {
			for _, y := range b.triples {
				lo, hi := 0, 0
				first := true
				for _, p := range [4]int{x.Min() * y.Min(), x.Min() * y.Max(), x.Max() * y.Min(), x.Max() * y.Max()} {
					for _, z := range [2]int{d.Min(), d.Max()} {
						q := roundQuot(p, z, r)
						if first {
							lo, hi, first = q, q, false
						}
						lo, hi = min(lo, q), max(hi, q)
					}
				}
				ts = append(ts, hull(lo, hi, 1))
			}
		}
	}
	return clamp(widen(ts))
}

// roundQuot divides n by d ≠ 0, rounding the magnitude.
func roundQuot(n, d int, r Rounding) int {
	negative := (n < 0) != (d < 0)
	n, d = abs(n), abs(d)
	q := n / d
	if r == HalfAwayFromZero {
		q = (n + d/2) / d
	}
	if negative {
		return -q
	}
	return q
}

// Neg returns {-a | a ∈ A}.
func Neg(a Collection) Collection {
	ts := make([]Triple, len(a.triples))
	for i, t := range a.triples {
		ts[i] = hull(-t.Max(), -t.Min(), t.step)
	}
	return clamp(normalize(ts))
}

// Abs returns {|a| | a ∈ A}.
func Abs(a Collection) Collection {
	var ts []Triple
	for _, t := range a.triples {
		if neg, ok := t.atMost(-1); ok {
			ts = append(ts, hull(-neg.Max(), -neg.Min(), neg.step))
		}
		if pos, ok := t.atLeast(0); ok {
			ts = append(ts, pos)
		}
	}
	return clamp(normalize(ts))
}

// combine applies a binary operation. Small operands are combined element
// by element, giving an exact result; otherwise every pair of progressions is
// combined in closed form by pairwise.
func combine(a, b Collection, op func(x, y int) int, pairwise func(x, y Triple) []Triple) Collection {
	if a.IsEmpty() || b.IsEmpty() {
		return Collection{}
	}
	if a.Len() <= EnumerationLimit && b.Len() <= EnumerationLimit && a.Len()*b.Len() <= EnumerationLimit {
		ts := make([]Triple, 0, a.Len()*b.Len())
		for x := range a.All() {
			for y := range b.All() {
				ts = append(ts, single(op(x, y)))
			}
		}
		return clamp(normalize(ts))
	}
	if len(a.triples)*len(b.triples) > pairLimit {
		a, b = a.Hull(), b.Hull()
	}
	var ts []Triple
	for _, x := range a.triples {
		for _, y := range b.triples {
			ts = append(ts, pairwise(x, y)...)
		}
	}
	return clamp(widen(ts))
}

// widen normalizes the results of an arithmetic operation. Large results made
// of many progressions are over-approximated by their hull.
func widen(ts []Triple) Collection {
	if len(ts) > widenLimit {
		total := 0
		for _, t := range ts {
			total += t.Len()
		}
		if total > EnumerationLimit {
			h, _ := hullOf(ts)
			return Collection{triples: []Triple{h}}
		}
	}
	return normalize(ts)
}

// clamp widens Collections leaving the 32-bit value range to Top.
func clamp(c Collection) Collection {
	if c.IsEmpty() {
		return c
	}
	if c.Min() < MinValue || c.Max() > MaxValue {
		return Top()
	}
	return c
}

// addTriples is exact if one operand is a single value or both steps agree,
// and the gcd-step hull otherwise.
func addTriples(x, y Triple) []Triple {
	switch {
	case x.IsSingle():
		return []Triple{hull(y.Min()+x.start, y.Max()+x.start, y.step)}
	case y.IsSingle():
		return []Triple{hull(x.Min()+y.start, x.Max()+y.start, x.step)}
	case x.step == y.step:
		return []Triple{hull(x.Min()+y.Min(), x.Max()+y.Max(), x.step)}
	}
	return []Triple{hull(x.Min()+y.Min(), x.Max()+y.Max(), gcd(x.step, y.step))}
}

// mulTriples scales exactly by single values. For two proper progressions,
// every product is congruent to x₀·y₀ modulo gcd(sx·y₀, sy·x₀, sx·sy), and
// the extremes are taken at the corners.
func mulTriples(x, y Triple) []Triple {
	if y.IsSingle() {
		x, y = y, x
	}
	if x.IsSingle() {
		k := x.start
		if k == 0 {
			return []Triple{single(0)}
		}
		lo, hi := y.Min()*k, y.Max()*k
		if k < 0 {
			lo, hi = hi, lo
		}
		return []Triple{hull(lo, hi, y.step*abs(k))}
	}
	corners := [4]int{x.Min() * y.Min(), x.Min() * y.Max(), x.Max() * y.Min(), x.Max() * y.Max()}
	lo, hi := corners[0], corners[0]
	for _, c := range corners[1:] {
		lo, hi = min(lo, c), max(hi, c)
	}
	g := gcd(gcd(x.step*y.Min(), y.step*x.Min()), x.step*y.step)
	return []Triple{hull(lo, hi, g)}
}

// divTriples expects y not to contain zero and to lie entirely on one side
// of it. Floor division is monotone in both operands on such a region, so
// the extremes are found at the corners.
func divTriples(x, y Triple) []Triple {
	if y.IsSingle() {
		k := y.start
		if x.IsSingle() {
			return []Triple{single(floorDiv(x.start, k))}
		}
		if x.step%k == 0 {
			first := floorDiv(x.Min(), k)
			r, err := New(first, first+x.Len()*(x.step/k), x.step/k)
			if err == nil {
				return []Triple{r}
			}
		}
	}
	corners := [4]int{
		floorDiv(x.Min(), y.Min()), floorDiv(x.Min(), y.Max()),
		floorDiv(x.Max(), y.Min()), floorDiv(x.Max(), y.Max()),
	}
	lo, hi := corners[0], corners[0]
	for _, c := range corners[1:] {
		lo, hi = min(lo, c), max(hi, c)
	}
	return []Triple{hull(lo, hi, 1)}
}

// FloorF26Dot6 rounds every element of A, read as a 26.6 fixed point number,
// down to an integral value.
func FloorF26Dot6(a Collection) Collection {
	return Mul(DivFloor(a, Scalar(64)), Scalar(64))
}

// CeilF26Dot6 rounds every element of A, read as a 26.6 fixed point number,
// up to an integral value.
func CeilF26Dot6(a Collection) Collection {
	return Neg(FloorF26Dot6(Neg(a)))
}
