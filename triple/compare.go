package triple

// Tristate is the result of comparing symbolic values, which may be
// undecidable when value ranges overlap.
type Tristate int8

// Possible comparison outcomes.
const (
	False Tristate = iota
	True
	Unknown
)

func (t Tristate) String() string {
	switch t {
	case False:
		return "false"
	case True:
		return "true"
	}
	return "unknown"
}

// Not negates t. Unknown stays Unknown.
func (t Tristate) Not() Tristate {
	switch t {
	case False:
		return True
	case True:
		return False
	}
	return Unknown
}

// And combines t and u with three-valued logic.
func (t Tristate) And(u Tristate) Tristate {
	if t == False || u == False {
		return False
	}
	if t == True && u == True {
		return True
	}
	return Unknown
}

// Or combines t and u with three-valued logic.
func (t Tristate) Or(u Tristate) Tristate {
	if t == True || u == True {
		return True
	}
	if t == False && u == False {
		return False
	}
	return Unknown
}

// Collection converts t to a TrueType boolean value: 1 for true, 0 for
// false and {0, 1} if undecided.
func (t Tristate) Collection() Collection {
	switch t {
	case False:
		return Scalar(0)
	case True:
		return Scalar(1)
	}
	return FromValues(0, 1)
}

// Truth interprets a as a TrueType condition, i.e. non-zero means true.
func Truth(a Collection) Tristate {
	if a.IsEmpty() {
		return Unknown
	}
	if !a.HasZero() {
		return True
	}
	if n, ok := a.ToNumber(); ok && n == 0 {
		return False
	}
	return Unknown
}

// Less compares a < b.
func Less(a, b Collection) Tristate {
	if a.IsEmpty() || b.IsEmpty() {
		return Unknown
	}
	if a.Max() < b.Min() {
		return True
	}
	if a.Min() >= b.Max() {
		return False
	}
	return Unknown
}

// LessEqual compares a ≤ b.
func LessEqual(a, b Collection) Tristate {
	return Less(b, a).Not()
}

// Greater compares a > b.
func Greater(a, b Collection) Tristate {
	return Less(b, a)
}

// GreaterEqual compares a ≥ b.
func GreaterEqual(a, b Collection) Tristate {
	return Less(a, b).Not()
}

// Equal compares a = b. It is True only if both are the same scalar, and
// False if the sets cannot share an element.
func Equal(a, b Collection) Tristate {
	if a.IsEmpty() || b.IsEmpty() {
		return Unknown
	}
	if x, ok := a.ToNumber(); ok {
		if y, ok := b.ToNumber(); ok {
			if x == y {
				return True
			}
			return False
		}
	}
	if !intersects(a, b) {
		return False
	}
	return Unknown
}

// NotEqual compares a ≠ b.
func NotEqual(a, b Collection) Tristate {
	return Equal(a, b).Not()
}

// intersects reports whether a and b share an element.
func intersects(a, b Collection) bool {
	if a.Max() < b.Min() || b.Max() < a.Min() {
		return false
	}
	for _, x := range a.triples {
		for _, y := range b.triples {
			if _, ok := intersect(x, y); ok {
				return true
			}
		}
	}
	return false
}
