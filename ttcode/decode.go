package ttcode

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncated is wrapped by a DecodeError for inline data extending past the
// end of the code.
var ErrTruncated = errors.New("inline data truncated")

// DecodeError describes malformed byte code.
type DecodeError struct {
	Program string // ID of the program being decoded
	Offset  int    // byte offset of the offending instruction
	Opcode  Opcode
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("[%s] %s at offset %d: %v", e.Program, e.Opcode.Name(), e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode decodes code into a program named id.
//
// Decoding is tolerant: if code ends within the inline data of a push
// instruction, Decode returns the instructions preceding it together with a
// *DecodeError. The partial program is still fit for analysis.
func Decode(id string, code []byte) (*Program, error) {
	prog := &Program{ID: id, Code: make([]Instruction, 0, len(code)/2)}
	for pos := 0; pos < len(code); {
		op := Opcode(code[pos])
		b := base{op: op, offset: pos}
		pos++
		var ins Instruction
		switch {
		case op == NPUSHB || op == NPUSHW || (op >= PUSHB && op <= 0xBF):
			var values []int
			var err error
			values, pos, err = decodePush(op, code, pos)
			if err != nil {
				prog.End = b.offset
				return prog, &DecodeError{Program: id, Offset: b.offset, Opcode: op, Err: err}
			}
			ins = Push{base: b, Values: values}
		case op >= 0xA2 && op <= 0xA4:
			ins = MAZDelta{base: b, Param: int(op - MAZDELTA)}
		default:
			ins = classify(b)
		}
		prog.Code = append(prog.Code, ins)
	}
	prog.End = len(code)
	return prog, nil
}

// decodePush reads the inline data of a push instruction starting at pos.
// It returns the pushed values and the position after the data.
func decodePush(op Opcode, code []byte, pos int) ([]int, int, error) {
	var n int
	words := false
	switch {
	case op == NPUSHB || op == NPUSHW:
		if pos >= len(code) {
			return nil, pos, ErrTruncated
		}
		n = int(code[pos])
		pos++
		words = op == NPUSHW
	case op >= PUSHB && op < PUSHW:
		n = int(op-PUSHB) + 1
	default:
		n = int(op-PUSHW) + 1
		words = true
	}
	size := 1
	if words {
		size = 2
	}
	if pos+n*size > len(code) {
		return nil, pos, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, n*size, len(code)-pos)
	}
	values := make([]int, n)
	for i := range values {
		if words {
			values[i] = int(int16(binary.BigEndian.Uint16(code[pos:])))
		} else {
			values[i] = int(code[pos])
		}
		pos += size
	}
	return values, pos, nil
}

func classify(b base) Instruction {
	switch op := b.op; op {
	case DUP, POP, CLEAR, SWAP, DEPTH, CINDEX, MINDEX, ROLL:
		return StackOp{b}
	case LT, LTEQ, GT, GTEQ, EQ, NEQ, AND, OR, ADD, SUB, DIV, MUL, MAX, MIN:
		return Binary{b}
	case NOT, ABS, NEG, FLOOR, CEILING:
		return Unary{b}
	case RTG, RTHG, RTDG, RDTG, RUTG, ROFF:
		return SetRound{b}
	case SRP0, SRP1, SRP2:
		return SetRefPoint{base: b, Slot: int(op - SRP0)}
	case SZP0, SZP1, SZP2, SZPS:
		return SetZone{base: b, Slot: int(op - SZP0)}
	case DELTAP1:
		return DeltaP{base: b, Param: 1}
	case DELTAP2:
		return DeltaP{base: b, Param: 2}
	case DELTAP3:
		return DeltaP{base: b, Param: 3}
	case MDAP0, MDAP1:
		return MDAP{base: b, Round: op == MDAP1}
	case RS, WS:
		return Storage{base: b, Write: op == WS}
	case RCVT, WCVTP, WCVTF:
		return CVT{base: b, Write: op != RCVT}
	case FDEF:
		return FuncDef{b}
	case ENDF:
		return EndFunc{b}
	case CALL, LOOPCALL:
		return Call{base: b, Loop: op == LOOPCALL}
	case IF:
		return If{b}
	case ELSE:
		return Else{b}
	case EIF:
		return EndIf{b}
	case JMPR:
		return Jump{base: b}
	case JROT, JROF:
		return Jump{base: b, Conditional: true, OnTrue: op == JROT}
	}
	return Unsupported{b}
}
