/*
Package provenance records how values computed by the hint analyzer derive
from program inputs.

Every stack value is justified by a history entry. Leaves stand for values
pushed by a PUSH instruction (or seeded into the stack before execution);
derived entries stand for the result of an opcode and reference the entries
of its operands. Entries live in an append-only [Arena] and refer to each other
by index. As an entry may only reference entries created before it, the
resulting graph is a DAG: values duplicated on the stack share their history.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package provenance

import (
	"fmt"
	"slices"
	"strings"
)

// Ref identifies an entry within an Arena.
type Ref int32

// NoRef is the reference to no entry ("no data").
const NoRef Ref = -1

// Kind discriminates history entries.
type Kind uint8

// Kinds of history entries.
const (
	PushLeaf Kind = iota // value pushed by a PUSH instruction
	SeedLeaf             // value seeded into the stack before execution
	Derived              // result of an opcode
)

// Location is a position in a hint program: the program's identifier and the
// index of an instruction within it.
type Location struct {
	Program string
	PC      int
}

func (loc Location) String() string {
	return fmt.Sprintf("index %d in %s", loc.PC, loc.Program)
}

// Entry is a single node of the provenance graph.
type Entry struct {
	Kind     Kind
	Loc      Location // where the value was pushed or computed
	Extra    int      // position within a PUSH, or stack slot of a seeded value
	Opcode   string   // name of the opcode for derived entries
	children []Ref
}

// Children returns the operand histories of a derived entry, deepest stack
// operand first.
func (e Entry) Children() []Ref {
	return slices.Clone(e.children)
}

// IsLeaf is true for pushed and seeded values.
func (e Entry) IsLeaf() bool {
	return e.Kind != Derived
}

func (e Entry) describe() string {
	switch e.Kind {
	case PushLeaf:
		return fmt.Sprintf("Extra index %d in PUSH opcode %s", e.Extra, e.Loc)
	case SeedLeaf:
		return fmt.Sprintf("Entry stack index %d in %s", e.Extra, e.Loc.Program)
	}
	return fmt.Sprintf("Result of opcode %s at %s", e.Opcode, e.Loc)
}

// Arena owns the entries of one analysis run.
// An Arena is not safe for concurrent mutation; each run owns its own Arena.
type Arena struct {
	entries []Entry
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{entries: make([]Entry, 0, 64)}
}

// Len returns the number of entries.
func (a *Arena) Len() int {
	return len(a.entries)
}

// Push adds a leaf for the value at position extra of the PUSH instruction
// at loc.
func (a *Arena) Push(loc Location, extra int) Ref {
	return a.add(Entry{Kind: PushLeaf, Loc: loc, Extra: extra})
}

// Seed adds a leaf for a value placed on the stack before execution.
func (a *Arena) Seed(loc Location, slot int) Ref {
	return a.add(Entry{Kind: SeedLeaf, Loc: loc, Extra: slot})
}

// Derive adds an entry for the result of opcode at loc, computed from
// operands with the given histories. Children must be entries of a.
// NoRef children are dropped.
func (a *Arena) Derive(opcode string, loc Location, children ...Ref) Ref {
	kids := make([]Ref, 0, len(children))
	for _, c := range children {
		if c == NoRef {
			continue
		}
		if int(c) < 0 || int(c) >= len(a.entries) {
			panic(fmt.Sprintf("provenance: child reference %d out of arena range", c))
		}
		kids = append(kids, c)
	}
	return a.add(Entry{Kind: Derived, Loc: loc, Opcode: opcode, children: kids})
}

func (a *Arena) add(e Entry) Ref {
	a.entries = append(a.entries, e)
	return Ref(len(a.entries) - 1)
}

// Entry returns the entry for r.
func (a *Arena) Entry(r Ref) (Entry, bool) {
	if r < 0 || int(r) >= len(a.entries) {
		return Entry{}, false
	}
	return a.entries[r], true
}

// Depth returns the length of the longest chain of derived entries below r.
// Leaves have depth 0.
func (a *Arena) Depth(r Ref) int {
	memo := make(map[Ref]int)
	var depth func(Ref) int
	depth = func(r Ref) int {
		if d, ok := memo[r]; ok {
			return d
		}
		e, ok := a.Entry(r)
		if !ok || e.IsLeaf() {
			return 0
		}
		d := 0
		for _, c := range e.children {
			d = max(d, depth(c)+1)
		}
		memo[r] = d
		return d
	}
	return depth(r)
}

// Leaves flattens the history of r into the leaves it derives from, in
// left-to-right operand order. A shared leaf is reported once.
func (a *Arena) Leaves(r Ref) []Ref {
	var leaves []Ref
	seen := make(map[Ref]bool)
	var walk func(Ref)
	walk = func(r Ref) {
		if seen[r] {
			return
		}
		seen[r] = true
		e, ok := a.Entry(r)
		if !ok {
			return
		}
		if e.IsLeaf() {
			leaves = append(leaves, r)
			return
		}
		for _, c := range e.children {
			walk(c)
		}
	}
	walk(r)
	return leaves
}

// Equal compares the histories r and s structurally, i.e. independent of
// their position in the arena. Shared entries are compared once.
func (a *Arena) Equal(r, s Ref) bool {
	return a.equal(r, s, make(map[[2]Ref]bool))
}

func (a *Arena) equal(r, s Ref, memo map[[2]Ref]bool) bool {
	if r == s {
		return true
	}
	key := [2]Ref{r, s}
	if eq, ok := memo[key]; ok {
		return eq
	}
	eq := a.equalEntries(r, s, memo)
	memo[key] = eq
	return eq
}

func (a *Arena) equalEntries(r, s Ref, memo map[[2]Ref]bool) bool {
	e, ok1 := a.Entry(r)
	f, ok2 := a.Entry(s)
	if !ok1 || !ok2 {
		return ok1 == ok2
	}
	if e.Kind != f.Kind || e.Loc != f.Loc || e.Extra != f.Extra || e.Opcode != f.Opcode {
		return false
	}
	if len(e.children) != len(f.children) {
		return false
	}
	for i := range e.children {
		if !a.equal(e.children[i], f.children[i], memo) {
			return false
		}
	}
	return true
}

// Format renders the history of r as an indented tree:
//
//	Result of opcode MAX at index 0 in test, with inputs:
//	  Extra index 0 in PUSH opcode index 0 in test
//	  Extra index 1 in PUSH opcode index 0 in test
//
// A derived entry reached more than once is written out at its first
// occurrence only. Later occurrences refer back to it by the line it starts:
//
//	Result of opcode ADD at index 2 in test, with inputs:
//	  Result of opcode ABS at index 1 in test, with inputs:
//	    Extra index 0 in PUSH opcode index 0 in test
//	  Same as line 2: Result of opcode ABS at index 1 in test
func (a *Arena) Format(r Ref) string {
	f := formatter{arena: a, lines: make(map[Ref]int)}
	f.format(r, 0)
	return strings.TrimSuffix(f.sb.String(), "\n")
}

type formatter struct {
	arena *Arena
	sb    strings.Builder
	line  int
	lines map[Ref]int // first line of derived entries written so far
}

func (f *formatter) format(r Ref, indent int) {
	f.line++
	f.sb.WriteString(strings.Repeat("  ", indent))
	e, ok := f.arena.Entry(r)
	if !ok {
		f.sb.WriteString("(no data)\n")
		return
	}
	if len(e.children) == 0 {
		f.sb.WriteString(e.describe())
		f.sb.WriteString("\n")
		return
	}
	if l, ok := f.lines[r]; ok {
		fmt.Fprintf(&f.sb, "Same as line %d: %s\n", l, e.describe())
		return
	}
	f.lines[r] = f.line
	f.sb.WriteString(e.describe())
	f.sb.WriteString(", with inputs:\n")
	for _, c := range e.children {
		f.format(c, indent+1)
	}
}
