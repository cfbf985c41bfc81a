package triple

import (
	"cmp"
	"iter"
	"slices"
	"strings"
)

// Collection is a set of integers, stored as disjoint, normalized Triples
// sorted by start. The zero value is the empty set.
//
// A Collection holding a single value is the canonical representation of a
// scalar; see [Collection.ToNumber].
type Collection struct {
	triples []Triple
}

// Scalar returns the Collection holding only n.
func Scalar(n int) Collection {
	return Collection{triples: []Triple{single(n)}}
}

// Top returns the Collection of all 32-bit signed values. It stands for a
// value nothing is known about.
func Top() Collection {
	return Collection{triples: []Triple{{start: MinValue, stop: MaxValue + 1, step: 1}}}
}

// FromTriples builds a normalized Collection from arbitrary, possibly
// overlapping progressions.
func FromTriples(ts ...Triple) Collection {
	return normalize(ts)
}

// FromValues builds a normalized Collection from individual values.
func FromValues(values ...int) Collection {
	ts := make([]Triple, len(values))
	for i, v := range values {
		ts[i] = single(v)
	}
	return normalize(ts)
}

// ToNumber collapses c to its only element. ok is false if c holds zero or
// more than one value.
func (c Collection) ToNumber() (n int, ok bool) {
	if len(c.triples) == 1 && c.triples[0].IsSingle() {
		return c.triples[0].start, true
	}
	return 0, false
}

// IsScalar is true if c holds exactly one value.
func (c Collection) IsScalar() bool {
	_, ok := c.ToNumber()
	return ok
}

// IsEmpty is true for the empty set.
func (c Collection) IsEmpty() bool {
	return len(c.triples) == 0
}

// IsTop is true if c covers the full 32-bit value range.
func (c Collection) IsTop() bool {
	return c.Len() == MaxValue-MinValue+1
}

// Len returns the number of elements.
func (c Collection) Len() int {
	n := 0
	for _, t := range c.triples {
		n += t.Len()
	}
	return n
}

// Min returns the smallest element. It is 0 for the empty set.
func (c Collection) Min() int {
	if len(c.triples) == 0 {
		return 0
	}
	m := c.triples[0].Min()
	for _, t := range c.triples[1:] {
		m = min(m, t.Min())
	}
	return m
}

// Max returns the largest element. It is 0 for the empty set.
func (c Collection) Max() int {
	if len(c.triples) == 0 {
		return 0
	}
	m := c.triples[0].Max()
	for _, t := range c.triples[1:] {
		m = max(m, t.Max())
	}
	return m
}

// Contains reports whether n is an element of c.
func (c Collection) Contains(n int) bool {
	for _, t := range c.triples {
		if t.Contains(n) {
			return true
		}
	}
	return false
}

// HasZero reports whether 0 is an element of c.
func (c Collection) HasZero() bool {
	return c.Contains(0)
}

// Triples returns a copy of the progressions making up c.
func (c Collection) Triples() []Triple {
	return slices.Clone(c.triples)
}

// All iterates over the elements of c, progression by progression. Beware
// that this may be a very long sequence for widened Collections such as Top.
func (c Collection) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for _, t := range c.triples {
			for v := range t.All() {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// Equal reports whether c and d denote the same set.
func (c Collection) Equal(d Collection) bool {
	if slices.Equal(c.triples, d.triples) {
		return true
	}
	if n := c.Len(); n != d.Len() || n <= EnumerationLimit {
		return false // small sets have a unique representation
	}
	for _, t := range c.triples {
		pieces := []Triple{t}
		for _, u := range d.triples {
			var rest []Triple
			for _, p := range pieces {
				rest = append(rest, subtract(p, u)...)
			}
			pieces = rest
		}
		if len(pieces) > 0 {
			return false
		}
	}
	return true
}

// Union returns the set union of c and d.
func (c Collection) Union(d Collection) Collection {
	ts := make([]Triple, 0, len(c.triples)+len(d.triples))
	ts = append(ts, c.triples...)
	ts = append(ts, d.triples...)
	return normalize(ts)
}

// Hull returns the smallest single progression containing c.
func (c Collection) Hull() Collection {
	if len(c.triples) <= 1 {
		return c
	}
	h, _ := hullOf(c.triples)
	return Collection{triples: []Triple{h}}
}

// String formats c, listing progressions and single values separately:
//
//	Singles: [8, 9, 11]
//	Ranges: [Triple(1, 13, 2)], Singles: [20]
func (c Collection) String() string {
	var ranges, singles []string
	for _, t := range c.triples {
		if t.IsSingle() {
			singles = append(singles, t.String())
		} else {
			ranges = append(ranges, t.String())
		}
	}
	var parts []string
	if len(ranges) > 0 {
		parts = append(parts, "Ranges: ["+strings.Join(ranges, ", ")+"]")
	}
	if len(singles) > 0 {
		parts = append(parts, "Singles: ["+strings.Join(singles, ", ")+"]")
	}
	if len(parts) == 0 {
		return "Empty"
	}
	return strings.Join(parts, ", ")
}

// --- Normalization ---------------------------------------------------------

// exhaustiveLimit bounds the number of values for which decompose searches
// for progressions beyond a single ascending scan.
const exhaustiveLimit = 48

// normalize turns arbitrary progressions into the representation of their
// union as disjoint Triples sorted by start. It never changes the denoted set.
//
// Sets of at most EnumerationLimit elements are enumerated and decomposed,
// so their representation only depends on the set, not on the order or
// shape of ts. Larger sets are normalized structurally: overlaps are cut out
// and adjacent progressions of equal step are merged.
func normalize(ts []Triple) Collection {
	valid := make([]Triple, 0, len(ts))
	total := 0
	for _, t := range ts {
		if n := t.Len(); n > 0 {
			valid = append(valid, t)
			total += n
		}
	}
	if len(valid) == 0 {
		return Collection{}
	}
	if total <= EnumerationLimit {
		vals := make([]int, 0, total)
		for _, t := range valid {
			for v := range t.All() {
				vals = append(vals, v)
			}
		}
		slices.Sort(vals)
		vals = slices.Compact(vals)
		return Collection{triples: decompose(vals)}
	}
	out := disjoin(valid)
	for {
		merged := mergeLanes(out)
		if len(merged) == len(out) {
			return Collection{triples: merged}
		}
		out = merged
	}
}

// disjoin removes the overlaps between progressions. Dense progressions are
// kept whole and sparser ones are cut around them, single values last.
func disjoin(ts []Triple) []Triple {
	sorted := slices.Clone(ts)
	slices.SortFunc(sorted, func(x, y Triple) int {
		return cmpTriples(x, y, true)
	})
	out := make([]Triple, 0, len(sorted))
	for _, t := range sorted {
		pieces := []Triple{t}
		for _, u := range out {
			var rest []Triple
			for _, p := range pieces {
				rest = append(rest, subtract(p, u)...)
			}
			if pieces = rest; len(pieces) == 0 {
				break
			}
		}
		out = append(out, pieces...)
	}
	return out
}

// mergeLanes joins disjoint progressions which continue each other. Single
// values extend a progression they continue; the remaining single values are
// decomposed among themselves.
func mergeLanes(ts []Triple) []Triple {
	var ranges []Triple
	var singles []int
	for _, t := range ts {
		if t.IsSingle() {
			singles = append(singles, t.start)
		} else {
			ranges = append(ranges, t)
		}
	}
	slices.Sort(singles)
	var rest []int
	for _, v := range singles {
		if !attach(ranges, v) {
			rest = append(rest, v)
		}
	}
	// a second pass catches values preceding a range they were left behind of
	singles, rest = rest, nil
	for _, v := range slices.Backward(singles) {
		if !attach(ranges, v) {
			rest = append(rest, v)
		}
	}
	slices.Sort(rest)
	ranges = append(ranges, decompose(rest)...)
	slices.SortFunc(ranges, func(x, y Triple) int {
		if c := cmp.Compare(x.step, y.step); c != 0 {
			return c
		}
		if c := cmp.Compare(mod(x.start, x.step), mod(y.start, y.step)); c != 0 {
			return c
		}
		return cmp.Compare(x.start, y.start)
	})
	out := make([]Triple, 0, len(ranges))
	for _, t := range ranges {
		if n := len(out); n > 0 && !t.IsSingle() && !out[n-1].IsSingle() &&
			out[n-1].step == t.step && out[n-1].stop == t.start {
			out[n-1].stop = t.stop
			continue
		}
		out = append(out, t)
	}
	slices.SortFunc(out, func(x, y Triple) int {
		return cmpTriples(x, y, false)
	})
	return out
}

// attach extends a range continued by v, either at its end or at its start.
func attach(ranges []Triple, v int) bool {
	for i, r := range ranges {
		switch v {
		case r.stop:
			ranges[i].stop += r.step
			return true
		case r.start - r.step:
			ranges[i].start = v
			return true
		}
	}
	return false
}

// cmpTriples orders by start, or, with byDensity, by step first and single
// values last.
func cmpTriples(x, y Triple, byDensity bool) int {
	if byDensity {
		if x.IsSingle() != y.IsSingle() {
			if x.IsSingle() {
				return 1
			}
			return -1
		}
		if c := cmp.Compare(x.step, y.step); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(x.start, y.start); c != 0 {
		return c
	}
	return cmp.Compare(x.step, y.step)
}

// subtract returns the elements of p which are not in u.
func subtract(p, u Triple) []Triple {
	common, ok := intersect(p, u)
	if !ok {
		return []Triple{p}
	}
	var out []Triple
	if r, ok := p.atMost(common.Min() - 1); ok {
		out = append(out, r)
	}
	if r, ok := p.atLeast(common.Max() + 1); ok {
		out = append(out, r)
	}
	if common.IsSingle() {
		return out
	}
	// between the common elements, p either splits into the residue classes
	// modulo the common step, or into the gaps between common elements
	l, n := common.step, common.Len()
	if residues := l/p.step - 1; residues <= n-1 {
		for j := 1; j <= residues; j++ {
			if r, err := New(common.Min()+j*p.step, common.Max(), l); err == nil {
				out = append(out, r)
			}
		}
		return out
	}
	for i := 0; i < n-1; i++ {
		at := common.Min() + i*l
		if r, err := New(at+p.step, at+l, p.step); err == nil {
			out = append(out, r)
		}
	}
	return out
}

// intersect returns the common elements of x and y, which always form a
// progression.
func intersect(x, y Triple) (Triple, bool) {
	lo, hi := max(x.Min(), y.Min()), min(x.Max(), y.Max())
	if lo > hi {
		return Triple{}, false
	}
	if x.Len() > y.Len() {
		x, y = y, x
	}
	if x.Len() <= 64 {
		first, last, n := 0, 0, 0
		for v := range x.All() {
			if v >= lo && v <= hi && y.Contains(v) {
				if n == 0 {
					first = v
				}
				last = v
				n++
			}
		}
		switch n {
		case 0:
			return Triple{}, false
		case 1:
			return single(first), true
		}
		step := (last - first) / (n - 1)
		return Triple{start: first, stop: last + step, step: step}, true
	}
	// Both progressions have more than 64 elements within 32 bits, so their
	// steps are small enough for the products below.
	g := gcd(x.step, y.step)
	d := y.start - x.start
	if d%g != 0 {
		return Triple{}, false
	}
	m := y.step / g
	k := 0
	if m > 1 {
		k = mod(d/g, m) * modInverse(mod(x.step/g, m), m) % m
	}
	l := x.step / g * y.step
	x0 := x.start + x.step*k
	first := x0 - floorDiv(x0-lo, l)*l // smallest solution ≥ lo
	if first > hi {
		return Triple{}, false
	}
	last := first + floorDiv(hi-first, l)*l
	return hull(first, last, l), true
}

// decompose splits sorted, distinct values into progressions of at least
// three equally spaced values and single values. Fewer Triples win; on a
// tie, the ascending scan is kept.
func decompose(vals []int) []Triple {
	scan := decomposeScan(vals)
	if len(vals) <= exhaustiveLimit && len(scan) > 2 {
		if alt := decomposeLongest(vals); len(alt) < len(scan) {
			return alt
		}
	}
	return scan
}

// decomposeScan takes maximal runs of at least three equally spaced values,
// scanning from the smallest value upwards. Shorter runs become single
// values.
func decomposeScan(vals []int) []Triple {
	out := make([]Triple, 0, 4)
	for i := 0; i < len(vals); {
		if i+2 < len(vals) {
			d := vals[i+1] - vals[i]
			j := i + 1
			for j+1 < len(vals) && vals[j+1]-vals[j] == d {
				j++
			}
			if j-i+1 >= 3 {
				out = append(out, Triple{start: vals[i], stop: vals[j] + d, step: d})
				i = j + 1
				continue
			}
		}
		out = append(out, single(vals[i]))
		i++
	}
	return out
}

// decomposeLongest repeatedly takes the longest progression among the values
// left, which may interleave with others. Ties go to the lower start, then
// to the smaller step.
func decomposeLongest(vals []int) []Triple {
	left := make(map[int]bool, len(vals))
	for _, v := range vals {
		left[v] = true
	}
	var out []Triple
	for {
		var best Triple
		bestLen := 0
		for i, a := range vals {
			if !left[a] {
				continue
			}
			for _, b := range vals[i+1:] {
				d := b - a
				if !left[b] || left[a-d] {
					continue // not the start of a run
				}
				n := 2
				for left[a+n*d] {
					n++
				}
				if n > bestLen {
					best, bestLen = Triple{start: a, stop: a + n*d, step: d}, n
				}
			}
		}
		if bestLen < 3 {
			break
		}
		out = append(out, best)
		for v := range best.All() {
			delete(left, v)
		}
	}
	for _, v := range vals {
		if left[v] {
			out = append(out, single(v))
		}
	}
	slices.SortFunc(out, func(x, y Triple) int {
		return cmpTriples(x, y, false)
	})
	return out
}

// hullOf returns the hull progression of ts: from the smallest to the largest
// element, with the gcd of all element distances as step.
func hullOf(ts []Triple) (Triple, bool) {
	if len(ts) == 0 {
		return Triple{}, false
	}
	lo, hi := ts[0].Min(), ts[0].Max()
	for _, t := range ts[1:] {
		lo = min(lo, t.Min())
		hi = max(hi, t.Max())
	}
	g := 0
	for _, t := range ts {
		g = gcd(g, t.Min()-lo)
		if !t.IsSingle() {
			g = gcd(g, t.step)
		}
	}
	return hull(lo, hi, g), true
}
