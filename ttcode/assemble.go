package ttcode

import "encoding/binary"

// Assembler builds TrueType byte code.
//
//	var a Assembler
//	a.Push(1, 2).Op(MAX)
//	code := a.Bytes()
type Assembler struct {
	code []byte
}

// Push appends the shortest push instruction(s) for values. Values outside
// the byte range are pushed as words.
func (a *Assembler) Push(values ...int) *Assembler {
	for len(values) > 0 {
		n := min(len(values), 255)
		chunk := values[:n]
		values = values[n:]
		words := false
		for _, v := range chunk {
			if v < 0 || v > 255 {
				words = true
				break
			}
		}
		switch {
		case n <= 8 && words:
			a.code = append(a.code, byte(PUSHW)+byte(n-1))
		case n <= 8:
			a.code = append(a.code, byte(PUSHB)+byte(n-1))
		case words:
			a.code = append(a.code, byte(NPUSHW), byte(n))
		default:
			a.code = append(a.code, byte(NPUSHB), byte(n))
		}
		for _, v := range chunk {
			if words {
				a.code = binary.BigEndian.AppendUint16(a.code, uint16(int16(v)))
			} else {
				a.code = append(a.code, byte(v))
			}
		}
	}
	return a
}

// Op appends instructions without inline data.
func (a *Assembler) Op(ops ...Opcode) *Assembler {
	for _, op := range ops {
		a.code = append(a.code, byte(op))
	}
	return a
}

// Len returns the number of bytes assembled so far, i.e. the byte offset of
// the next instruction.
func (a *Assembler) Len() int {
	return len(a.code)
}

// Bytes returns the assembled code.
func (a *Assembler) Bytes() []byte {
	return a.code
}
