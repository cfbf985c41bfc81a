package ttinterp

import (
	"fmt"
	"slices"
)

// Argument categories noted by the interpreter.
const (
	ArgPointIndex    = "pointIndex"
	ArgDeltaArg      = "deltaArg"
	ArgZoneIndex     = "zoneIndex"
	ArgStorageIndex  = "storageIndex"
	ArgCVTIndex      = "cvtIndex"
	ArgFunctionIndex = "functionIndex"
	ArgCount         = "count"
	ArgCondition     = "condition"
	ArgJumpOffset    = "jumpOffset"
)

// ArgRef is the set of function arguments a value derives from, sorted
// ascending. Argument 0 is the top of the stack at function entry. A nil
// ArgRef is a value computed without any argument.
type ArgRef []int

// Single returns the argument index if r refers to exactly one argument.
func (r ArgRef) Single() (int, bool) {
	if len(r) == 1 {
		return r[0], true
	}
	return -1, false
}

func (r ArgRef) String() string {
	if i, ok := r.Single(); ok {
		return fmt.Sprintf("arg %d", i)
	}
	if len(r) == 0 {
		return "-"
	}
	return fmt.Sprintf("args %v", []int(r))
}

// MergeArgs returns the union of refs. If all contributing refs agree, the
// result is that single ref.
func MergeArgs(refs ...ArgRef) ArgRef {
	var merged ArgRef
	for _, r := range refs {
		merged = append(merged, r...)
	}
	if len(merged) == 0 {
		return nil
	}
	slices.Sort(merged)
	return slices.Compact(merged)
}

// Signature is the calling convention of a function, as derived by an
// ArgTracer.
type Signature struct {
	Args       int              // number of arguments consumed
	Categories map[int][]string // per argument, the ways it was used
	Results    int              // number of values left above the arguments
	ResultArgs []ArgRef         // per result, deepest first, the arguments it derives from
}

func (s Signature) String() string {
	return fmt.Sprintf("%d args -> %d results", s.Args, s.Results)
}

// ArgTracer follows the arguments of a function body through a run. It keeps
// a shadow of the interpreter's stack, holding for every value the
// arguments it derives from.
//
// An ArgTracer is created for a stack seeded with depth values (see
// WithStack) and must be passed to Run with that state.
type ArgTracer struct {
	depth      int
	shadow     []ArgRef
	low        int // lowest shadow height reached
	categories map[int][]string
}

// NewArgTracer creates a tracer for a function entered with depth values on
// the stack.
func NewArgTracer(depth int) *ArgTracer {
	t := &ArgTracer{
		depth:      depth,
		shadow:     make([]ArgRef, depth),
		low:        depth,
		categories: make(map[int][]string),
	}
	for i := range depth {
		t.shadow[depth-1-i] = ArgRef{i}
	}
	return t
}

// Depth returns the number of seeded arguments.
func (t *ArgTracer) Depth() int {
	return t.depth
}

// NotePop pops the top of the shadow stack. If category is not empty it is
// attributed to every argument the popped value derives from.
func (t *ArgTracer) NotePop(category string) ArgRef {
	if len(t.shadow) == 0 {
		return nil
	}
	ref := t.shadow[len(t.shadow)-1]
	t.shadow = t.shadow[:len(t.shadow)-1]
	t.low = min(t.low, len(t.shadow))
	if category != "" {
		for _, arg := range ref {
			if !slices.Contains(t.categories[arg], category) {
				t.categories[arg] = append(t.categories[arg], category)
			}
		}
	}
	return ref
}

// NotePush pushes a value deriving from ref.
func (t *ArgTracer) NotePush(ref ArgRef) {
	t.shadow = append(t.shadow, ref)
}

// Signature summarizes the run so far.
func (t *ArgTracer) Signature() Signature {
	sig := Signature{
		Args:       t.depth - t.low,
		Categories: make(map[int][]string, len(t.categories)),
		Results:    len(t.shadow) - t.low,
		ResultArgs: slices.Clone(t.shadow[t.low:]),
	}
	for arg, cats := range t.categories {
		sig.Categories[arg] = slices.Sorted(slices.Values(cats))
	}
	return sig
}
