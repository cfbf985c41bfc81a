package ttinterp

import (
	"fmt"

	"github.com/npillmayer/tthints/provenance"
	"github.com/npillmayer/tthints/triple"
	"github.com/npillmayer/tthints/ttcode"
)

// DoNotProceed is the program counter of a halted run.
const DoNotProceed = -1

// RoundState is the rounding configuration of the graphics state, in 26.6
// fixed point units.
type RoundState struct {
	Period    int
	Phase     int
	Threshold int
}

// Round states set by the round state instructions.
var (
	RoundToGrid       = RoundState{Period: 64, Phase: 0, Threshold: 32}
	RoundToHalfGrid   = RoundState{Period: 64, Phase: 32, Threshold: 32}
	RoundToDoubleGrid = RoundState{Period: 32, Phase: 0, Threshold: 16}
	RoundDownToGrid   = RoundState{Period: 64, Phase: 0, Threshold: 0}
	RoundUpToGrid     = RoundState{Period: 64, Phase: 0, Threshold: 63}
	RoundOff          = RoundState{}
)

func (r RoundState) String() string {
	switch r {
	case RoundToGrid:
		return "RTG"
	case RoundToHalfGrid:
		return "RTHG"
	case RoundToDoubleGrid:
		return "RTDG"
	case RoundDownToGrid:
		return "RDTG"
	case RoundUpToGrid:
		return "RUTG"
	case RoundOff:
		return "ROFF"
	}
	return fmt.Sprintf("(%d, %d, %d)", r.Period, r.Phase, r.Threshold)
}

// roundTarget maps a round state instruction to the state it sets.
func roundTarget(op ttcode.Opcode) (RoundState, bool) {
	switch op {
	case ttcode.RTG:
		return RoundToGrid, true
	case ttcode.RTHG:
		return RoundToHalfGrid, true
	case ttcode.RTDG:
		return RoundToDoubleGrid, true
	case ttcode.RDTG:
		return RoundDownToGrid, true
	case ttcode.RUTG:
		return RoundUpToGrid, true
	case ttcode.ROFF:
		return RoundOff, true
	}
	return RoundState{}, false
}

// GraphicsState holds the graphics state fields the analyzer tracks.
type GraphicsState struct {
	Round RoundState
	ZP    [3]triple.Collection // zone pointers
	RP    [3]triple.Collection // reference points
}

// DefaultGraphicsState returns the graphics state at the start of a program:
// round to grid, all zone pointers on the glyph zone, all reference points 0.
func DefaultGraphicsState() GraphicsState {
	one, zero := triple.Scalar(1), triple.Scalar(0)
	return GraphicsState{
		Round: RoundToGrid,
		ZP:    [3]triple.Collection{one, one, one},
		RP:    [3]triple.Collection{zero, zero, zero},
	}
}

// GSField identifies a graphics state field for change tracking.
type GSField uint8

// Tracked graphics state fields.
const (
	FieldRoundState GSField = iota
	FieldRP0
	FieldRP1
	FieldRP2
	FieldZP0
	FieldZP1
	FieldZP2
	fieldCount
)

var fieldNames = [fieldCount]string{"roundState", "rp0", "rp1", "rp2", "zp0", "zp1", "zp2"}

func (f GSField) String() string {
	if f < fieldCount {
		return fieldNames[f]
	}
	return fmt.Sprintf("GSField(%d)", f)
}

// Entry is a stack value together with its history.
type Entry struct {
	Value   triple.Collection
	History provenance.Ref
}

// State is the machine state of one run. It is created by NewState, mutated
// by Run and inspected afterwards.
type State struct {
	Program      *ttcode.Program
	Stack        []Entry
	Arena        *provenance.Arena
	GS           GraphicsState
	RefPtHistory [3]provenance.Ref      // histories of GS.RP
	Storage      map[int]Entry          // storage locations written with a known index
	Defined      map[int]*ttcode.Program // function bodies defined by FDEF
	Stats        *Statistics
	PC           int        // index of the current instruction, or DoNotProceed
	Halt         HaltReason // Running until the run ends
	Steps        int        // instructions executed
	changed      uint16
}

// StateOption configures a new State.
type StateOption func(*State)

// WithStack seeds the stack with values, deepest first. Each value gets a
// seed history naming its position counted from the top of the stack.
func WithStack(values ...triple.Collection) StateOption {
	return func(st *State) {
		for i, v := range values {
			slot := len(values) - 1 - i
			ref := st.Arena.Seed(provenance.Location{Program: st.Program.ID, PC: -1}, slot)
			st.Stack = append(st.Stack, Entry{Value: v, History: ref})
		}
	}
}

// WithGraphicsState starts the run with gs instead of the default graphics
// state, e.g. the state left behind by the control value program.
func WithGraphicsState(gs GraphicsState) StateOption {
	return func(st *State) {
		st.GS = gs
	}
}

// NewState creates the state for running prog.
func NewState(prog *ttcode.Program, opts ...StateOption) *State {
	st := &State{
		Program:      prog,
		Arena:        provenance.NewArena(),
		GS:           DefaultGraphicsState(),
		RefPtHistory: [3]provenance.Ref{provenance.NoRef, provenance.NoRef, provenance.NoRef},
		Storage:      make(map[int]Entry),
		Defined:      make(map[int]*ttcode.Program),
		Stats:        NewStatistics(),
	}
	if prog == nil {
		return st
	}
	for _, opt := range opts {
		opt(st)
	}
	return st
}

// Halted is true once the run has stopped.
func (st *State) Halted() bool {
	return st.Halt != Running
}

// Values returns the values on the stack, deepest first.
func (st *State) Values() []triple.Collection {
	vals := make([]triple.Collection, len(st.Stack))
	for i, e := range st.Stack {
		vals[i] = e.Value
	}
	return vals
}

// IsChanged is true if f has been modified since the last ClearChanged.
func (st *State) IsChanged(f GSField) bool {
	return st.changed&(1<<f) != 0
}

// Changed lists the fields modified since the last ClearChanged.
func (st *State) Changed() []GSField {
	var fields []GSField
	for f := range fieldCount {
		if st.IsChanged(f) {
			fields = append(fields, f)
		}
	}
	return fields
}

// ClearChanged resets change tracking.
func (st *State) ClearChanged() {
	st.changed = 0
}
