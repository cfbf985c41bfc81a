package ttinterp

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/npillmayer/tthints/provenance"
	"github.com/npillmayer/tthints/triple"
)

// Maxima categories.
const (
	MaxPoint    = "point"
	MaxTwilight = "twilight"
	MaxStorage  = "storage"
	MaxFunction = "function"
	MaxCVT      = "cvt"
	MaxStack    = "stack"
)

// History event categories.
const (
	EventPointMoved   = "pointMoved"
	EventRefPoint     = "refPoint"
	EventStorageWrite = "storageWrite"
	EventCVTWrite     = "cvtWrite"
)

// GSEffect records that the instruction at Loc, reached through CallStack,
// modified a graphics state field.
type GSEffect struct {
	CallStack string // function numbers from the outermost call, e.g. "17 > 4"
	Loc       provenance.Location
	Field     GSField
}

// Event is a history event: the index an instruction used, and where that
// index came from.
type Event struct {
	Loc     provenance.Location
	Zone    triple.Collection // zone of a point, empty for other events
	Index   triple.Collection
	History provenance.Ref // justifies Index, relative to the run's arena
}

// Statistics accumulates the side effects of a run.
type Statistics struct {
	Maxima  map[string]int
	Effects map[GSEffect]struct{}
	History map[string][]Event
}

// NewStatistics creates empty statistics.
func NewStatistics() *Statistics {
	return &Statistics{
		Maxima:  make(map[string]int),
		Effects: make(map[GSEffect]struct{}),
		History: make(map[string][]Event),
	}
}

// NoteMax raises the maximum of category to n.
func (s *Statistics) NoteMax(category string, n int) {
	if m, ok := s.Maxima[category]; !ok || n > m {
		s.Maxima[category] = n
	}
}

// NoteEffect adds a graphics state effect.
func (s *Statistics) NoteEffect(e GSEffect) {
	s.Effects[e] = struct{}{}
}

// NoteEvent appends a history event.
func (s *Statistics) NoteEvent(category string, ev Event) {
	s.History[category] = append(s.History[category], ev)
}

// SortedEffects returns the graphics state effects ordered by call stack,
// then location, then field.
func (s *Statistics) SortedEffects() []GSEffect {
	effects := make([]GSEffect, 0, len(s.Effects))
	for e := range s.Effects {
		effects = append(effects, e)
	}
	slices.SortFunc(effects, func(a, b GSEffect) int {
		return cmp.Or(
			cmp.Compare(a.CallStack, b.CallStack),
			cmp.Compare(a.Loc.Program, b.Loc.Program),
			cmp.Compare(a.Loc.PC, b.Loc.PC),
			cmp.Compare(a.Field, b.Field),
		)
	})
	return effects
}

// Merge adds the maxima and effects of other to s. History events are not
// merged, as their histories refer to the arena of their own run.
func (s *Statistics) Merge(other *Statistics) {
	if other == nil {
		return
	}
	for cat, n := range other.Maxima {
		s.NoteMax(cat, n)
	}
	for e := range other.Effects {
		s.NoteEffect(e)
	}
}

func formatCallStack(calls []int) string {
	parts := make([]string, len(calls))
	for i, c := range calls {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, " > ")
}
