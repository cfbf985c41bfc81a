/*
Package ttcode decodes TrueType hint programs into instructions.

The TrueType instruction set is a byte code: every instruction is a single
opcode byte, and only the PUSH family carries inline data. [Decode] turns the
bytes of a font program ('fpgm'), a control value program ('prep') or glyph
instructions into a [Program] of [Instruction] values. Instructions form a
closed set of types, one per instruction family, carrying their decoded
operands; interpreters dispatch on them with a type switch.

[Assembler] builds byte code for tests and tools.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ttcode

import "fmt"

// Opcode is a TrueType instruction byte.
type Opcode byte

// Reference points and zone pointers
const (
	SRP0 Opcode = 0x10
	SRP1 Opcode = 0x11
	SRP2 Opcode = 0x12
	SZP0 Opcode = 0x13
	SZP1 Opcode = 0x14
	SZP2 Opcode = 0x15
	SZPS Opcode = 0x16
)

// Round state
const (
	RTG  Opcode = 0x18
	RTHG Opcode = 0x19
	RTDG Opcode = 0x3D
	ROFF Opcode = 0x7A
	RUTG Opcode = 0x7C
	RDTG Opcode = 0x7D
)

// Stack manipulation
const (
	DUP    Opcode = 0x20
	POP    Opcode = 0x21
	CLEAR  Opcode = 0x22
	SWAP   Opcode = 0x23
	DEPTH  Opcode = 0x24
	CINDEX Opcode = 0x25
	MINDEX Opcode = 0x26
	ROLL   Opcode = 0x8A
)

// Control flow and functions
const (
	ELSE     Opcode = 0x1B
	JMPR     Opcode = 0x1C
	LOOPCALL Opcode = 0x2A
	CALL     Opcode = 0x2B
	FDEF     Opcode = 0x2C
	ENDF     Opcode = 0x2D
	IF       Opcode = 0x58
	EIF      Opcode = 0x59
	JROT     Opcode = 0x78
	JROF     Opcode = 0x79
)

// Point movement
const (
	MDAP0    Opcode = 0x2E
	MDAP1    Opcode = 0x2F
	DELTAP1  Opcode = 0x5D
	DELTAP2  Opcode = 0x71
	DELTAP3  Opcode = 0x72
	MAZDELTA Opcode = 0xA2 // MAZDELTA family, 0xA2–0xA4
)

// Storage and control value table
const (
	WS    Opcode = 0x42
	RS    Opcode = 0x43
	WCVTP Opcode = 0x44
	RCVT  Opcode = 0x45
	WCVTF Opcode = 0x70
)

// Push
const (
	NPUSHB Opcode = 0x40
	NPUSHW Opcode = 0x41
	PUSHB  Opcode = 0xB0 // PUSHB[0]–PUSHB[7], 0xB0–0xB7
	PUSHW  Opcode = 0xB8 // PUSHW[0]–PUSHW[7], 0xB8–0xBF
)

// Arithmetic and logic
const (
	LT      Opcode = 0x50
	LTEQ    Opcode = 0x51
	GT      Opcode = 0x52
	GTEQ    Opcode = 0x53
	EQ      Opcode = 0x54
	NEQ     Opcode = 0x55
	AND     Opcode = 0x5A
	OR      Opcode = 0x5B
	NOT     Opcode = 0x5C
	ADD     Opcode = 0x60
	SUB     Opcode = 0x61
	DIV     Opcode = 0x62
	MUL     Opcode = 0x63
	ABS     Opcode = 0x64
	NEG     Opcode = 0x65
	FLOOR   Opcode = 0x66
	CEILING Opcode = 0x67
	MAX     Opcode = 0x8B
	MIN     Opcode = 0x8C
)

var opcodeNames = [256]string{
	0x00: "SVTCA[y]", 0x01: "SVTCA[x]", 0x02: "SPVTCA[y]", 0x03: "SPVTCA[x]",
	0x04: "SFVTCA[y]", 0x05: "SFVTCA[x]", 0x06: "SPVTL[||]", 0x07: "SPVTL[+]",
	0x08: "SFVTL[||]", 0x09: "SFVTL[+]", 0x0A: "SPVFS", 0x0B: "SFVFS",
	0x0C: "GPV", 0x0D: "GFV", 0x0E: "SFVTPV", 0x0F: "ISECT",
	0x10: "SRP0", 0x11: "SRP1", 0x12: "SRP2", 0x13: "SZP0",
	0x14: "SZP1", 0x15: "SZP2", 0x16: "SZPS", 0x17: "SLOOP",
	0x18: "RTG", 0x19: "RTHG", 0x1A: "SMD", 0x1B: "ELSE",
	0x1C: "JMPR", 0x1D: "SCVTCI", 0x1E: "SSWCI", 0x1F: "SSW",
	0x20: "DUP", 0x21: "POP", 0x22: "CLEAR", 0x23: "SWAP",
	0x24: "DEPTH", 0x25: "CINDEX", 0x26: "MINDEX", 0x27: "ALIGNPTS",
	0x29: "UTP", 0x2A: "LOOPCALL", 0x2B: "CALL",
	0x2C: "FDEF", 0x2D: "ENDF", 0x2E: "MDAP[0]", 0x2F: "MDAP[1]",
	0x30: "IUP[y]", 0x31: "IUP[x]", 0x32: "SHP[0]", 0x33: "SHP[1]",
	0x34: "SHC[0]", 0x35: "SHC[1]", 0x36: "SHZ[0]", 0x37: "SHZ[1]",
	0x38: "SHPIX", 0x39: "IP", 0x3A: "MSIRP[0]", 0x3B: "MSIRP[1]",
	0x3C: "ALIGNRP", 0x3D: "RTDG", 0x3E: "MIAP[0]", 0x3F: "MIAP[1]",
	0x40: "NPUSHB", 0x41: "NPUSHW", 0x42: "WS", 0x43: "RS",
	0x44: "WCVTP", 0x45: "RCVT", 0x46: "GC[0]", 0x47: "GC[1]",
	0x48: "SCFS", 0x49: "MD[0]", 0x4A: "MD[1]", 0x4B: "MPPEM",
	0x4C: "MPS", 0x4D: "FLIPON", 0x4E: "FLIPOFF", 0x4F: "DEBUG",
	0x50: "LT", 0x51: "LTEQ", 0x52: "GT", 0x53: "GTEQ",
	0x54: "EQ", 0x55: "NEQ", 0x56: "ODD", 0x57: "EVEN",
	0x58: "IF", 0x59: "EIF", 0x5A: "AND", 0x5B: "OR",
	0x5C: "NOT", 0x5D: "DELTAP1", 0x5E: "SDB", 0x5F: "SDS",
	0x60: "ADD", 0x61: "SUB", 0x62: "DIV", 0x63: "MUL",
	0x64: "ABS", 0x65: "NEG", 0x66: "FLOOR", 0x67: "CEILING",
	0x68: "ROUND[0]", 0x69: "ROUND[1]", 0x6A: "ROUND[2]", 0x6B: "ROUND[3]",
	0x6C: "NROUND[0]", 0x6D: "NROUND[1]", 0x6E: "NROUND[2]", 0x6F: "NROUND[3]",
	0x70: "WCVTF", 0x71: "DELTAP2", 0x72: "DELTAP3", 0x73: "DELTAC1",
	0x74: "DELTAC2", 0x75: "DELTAC3", 0x76: "SROUND", 0x77: "S45ROUND",
	0x78: "JROT", 0x79: "JROF", 0x7A: "ROFF", 0x7C: "RUTG",
	0x7D: "RDTG", 0x7E: "SANGW", 0x7F: "AA", 0x80: "FLIPPT",
	0x81: "FLIPRGON", 0x82: "FLIPRGOFF", 0x85: "SCANCTRL", 0x86: "SDPVTL[||]",
	0x87: "SDPVTL[+]", 0x88: "GETINFO", 0x89: "IDEF", 0x8A: "ROLL",
	0x8B: "MAX", 0x8C: "MIN", 0x8D: "SCANTYPE", 0x8E: "INSTCTRL",
	0x91: "GETVARIATION", 0x92: "GETDATA",
	0xA2: "MAZDELTA1", 0xA3: "MAZDELTA2", 0xA4: "MAZDELTA3",
}

// Name returns the mnemonic of op, including its encoded parameter.
func (op Opcode) Name() string {
	switch {
	case op >= 0xB0 && op <= 0xB7:
		return fmt.Sprintf("PUSHB[%d]", op-0xB0)
	case op >= 0xB8 && op <= 0xBF:
		return fmt.Sprintf("PUSHW[%d]", op-0xB8)
	case op >= 0xC0 && op <= 0xDF:
		return fmt.Sprintf("MDRP[%05b]", op-0xC0)
	case op >= 0xE0:
		return fmt.Sprintf("MIRP[%05b]", op-0xE0)
	}
	if name := opcodeNames[op]; name != "" {
		return name
	}
	return fmt.Sprintf("UNDEF(0x%02X)", byte(op))
}

// Family returns the mnemonic of op without its encoded parameter, e.g.
// "MAZDELTA" for all of 0xA2–0xA4.
func (op Opcode) Family() string {
	switch {
	case op >= 0xA2 && op <= 0xA4:
		return "MAZDELTA"
	case op >= 0xB0 && op <= 0xB7:
		return "PUSHB"
	case op >= 0xB8 && op <= 0xBF:
		return "PUSHW"
	case op == MDAP0 || op == MDAP1:
		return "MDAP"
	}
	name := op.Name()
	for i, r := range name {
		if r == '[' {
			return name[:i]
		}
	}
	return name
}

func (op Opcode) String() string {
	return op.Name()
}
