package ttcode

import (
	"fmt"
	"slices"
	"strings"
)

// Instruction is a decoded TrueType instruction. The set of implementations
// is closed; see the types in this file.
type Instruction interface {
	Opcode() Opcode
	Offset() int // byte offset of the opcode within the decoded code
	isInstruction()
}

type base struct {
	op     Opcode
	offset int
}

func (b base) Opcode() Opcode { return b.op }
func (b base) Offset() int    { return b.offset }
func (base) isInstruction()   {}

// Push is one of NPUSHB, NPUSHW, PUSHB[n] and PUSHW[n]. Words are sign
// extended.
type Push struct {
	base
	Values []int
}

// StackOp is a stack manipulation instruction: DUP, POP, CLEAR, SWAP, DEPTH,
// CINDEX, MINDEX or ROLL.
type StackOp struct{ base }

// Binary pops two operands and pushes one result: arithmetic, comparison,
// AND, OR, MAX and MIN.
type Binary struct{ base }

// Unary pops one operand and pushes one result: NOT, ABS, NEG, FLOOR and
// CEILING.
type Unary struct{ base }

// SetRound sets the round state to a fixed value: RTG, RTHG, RTDG, RDTG,
// RUTG or ROFF.
type SetRound struct{ base }

// SetRefPoint is SRP0, SRP1 or SRP2.
type SetRefPoint struct {
	base
	Slot int
}

// SetZone is SZP0, SZP1, SZP2 or, with Slot AllZones, SZPS.
type SetZone struct {
	base
	Slot int
}

// AllZones is the SetZone slot of SZPS.
const AllZones = 3

// MAZDelta is a member of the MAZDELTA family (0xA2–0xA4). It pops a point
// index, a count, and count delta arguments.
type MAZDelta struct {
	base
	Param int // 0, 1 or 2
}

// DeltaP is DELTAP1, DELTAP2 or DELTAP3.
type DeltaP struct {
	base
	Param int // 1, 2 or 3
}

// MDAP moves a point to itself, optionally rounding.
type MDAP struct {
	base
	Round bool
}

// Storage is RS or WS.
type Storage struct {
	base
	Write bool
}

// CVT is RCVT, WCVTP or WCVTF.
type CVT struct {
	base
	Write bool
}

// FuncDef starts a function definition.
type FuncDef struct{ base }

// EndFunc ends a function definition.
type EndFunc struct{ base }

// Call is CALL or LOOPCALL.
type Call struct {
	base
	Loop bool
}

// If starts a conditional block.
type If struct{ base }

// Else separates the branches of a conditional block.
type Else struct{ base }

// EndIf ends a conditional block.
type EndIf struct{ base }

// Jump is JMPR, JROT or JROF. Jump distances are in bytes, relative to the
// jump instruction.
type Jump struct {
	base
	Conditional bool
	OnTrue      bool // JROT if Conditional
}

// Unsupported is any instruction the analyzer does not model.
type Unsupported struct{ base }

// Format renders ins in assembler syntax.
func Format(ins Instruction) string {
	if p, ok := ins.(Push); ok {
		vals := make([]string, len(p.Values))
		for i, v := range p.Values {
			vals[i] = fmt.Sprint(v)
		}
		return fmt.Sprintf("%s %s", p.op.Name(), strings.Join(vals, " "))
	}
	return ins.Opcode().Name()
}

// --- Programs --------------------------------------------------------------

// Program is a decoded hint program or a slice of one.
type Program struct {
	ID   string        // identifies the program in reports, e.g. "fpgm" or "glyph 12"
	Base int           // index of Code[0] within the program it was sliced from
	Code []Instruction // instructions in byte order
	End  int           // byte offset just past the last instruction
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Code)
}

// At returns the instruction at index i.
func (p *Program) At(i int) Instruction {
	return p.Code[i]
}

// Slice returns the instructions [from, to) as a program sharing p's ID.
// Indices reported for the slice stay relative to p.
func (p *Program) Slice(from, to int) *Program {
	end := p.End
	if to < len(p.Code) {
		end = p.Code[to].Offset()
	}
	return &Program{
		ID:   p.ID,
		Base: p.Base + from,
		Code: p.Code[from:to:to],
		End:  end,
	}
}

// IndexOf returns the index of the instruction starting at byte offset.
// The offset just past the last instruction maps to Len().
func (p *Program) IndexOf(offset int) (int, bool) {
	if offset == p.End {
		return len(p.Code), true
	}
	return slices.BinarySearchFunc(p.Code, offset, func(ins Instruction, off int) int {
		return ins.Offset() - off
	})
}

// String renders p as an assembler listing, one instruction per line,
// prefixed by its index.
func (p *Program) String() string {
	var sb strings.Builder
	for i, ins := range p.Code {
		fmt.Fprintf(&sb, "%4d  %s\n", p.Base+i, Format(ins))
	}
	return sb.String()
}
