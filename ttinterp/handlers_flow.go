package ttinterp

import (
	"github.com/npillmayer/tthints/triple"
	"github.com/npillmayer/tthints/ttcode"
)

// funcDef records the body of a function definition and continues after its
// ENDF.
func (m *machine) funcDef(ins ttcode.FuncDef) {
	ops, ok := m.pop(1, ArgFunctionIndex)
	if !ok {
		return
	}
	n, ok := m.scalar(ops[0], "function number")
	if !ok {
		return
	}
	end := -1
	for i := m.pc + 1; i < m.prog.Len() && end < 0; i++ {
		switch m.prog.At(i).(type) {
		case ttcode.FuncDef:
			m.halt(ControlFlow, SeverityError, CodeControlFlow, "nested function definition")
			return
		case ttcode.EndFunc:
			end = i
		}
	}
	if end < 0 {
		m.halt(ControlFlow, SeverityError, CodeControlFlow, "function %d lacks ENDF", n)
		return
	}
	if m.inRange(ops[0].Value, m.opts.Extra.FunctionCount, CodeIllegalFunction, CodeIllegalFunction, "function") {
		m.st.Stats.NoteMax(MaxFunction, n)
	}
	m.st.Defined[n] = m.prog.Slice(m.pc+1, end)
	m.next = end + 1
}

// call executes a function body inline. LOOPCALL pops a count and calls the
// function that many times.
func (m *machine) call(ins ttcode.Call) {
	ops, ok := m.pop(1, ArgFunctionIndex)
	if !ok {
		return
	}
	n, ok := m.scalar(ops[0], "function number")
	if !ok {
		return
	}
	times := 1
	if ins.Loop {
		cnt, ok := m.pop(1, ArgCount)
		if !ok {
			return
		}
		if times, ok = m.scalar(cnt[0], "count"); !ok {
			return
		}
	}
	if !m.inRange(ops[0].Value, m.opts.Extra.FunctionCount, CodeIllegalFunction, CodeIllegalFunction, "function") {
		m.halt(BadOperand, SeverityError, CodeBadOperand, "call of illegal function %d", n)
		return
	}
	body, ok := m.st.Defined[n]
	if !ok {
		body, ok = m.opts.Functions[n]
	}
	if !ok {
		m.halt(BadOperand, SeverityError, CodeUnknownFunction, "call of undefined function %d", n)
		return
	}
	if m.depth >= m.opts.MaxCallDepth {
		m.halt(CallDepth, SeverityError, CodeCallDepth,
			"calls nested deeper than %d", m.opts.MaxCallDepth)
		return
	}
	m.st.Stats.NoteMax(MaxFunction, n)
	prog, pc, next, loc, calls := m.prog, m.pc, m.next, m.loc, m.calls
	m.depth++
	m.calls = append(calls[:len(calls):len(calls)], n)
	for range times {
		m.exec(body)
		if m.st.Halted() {
			break
		}
	}
	m.depth--
	m.prog, m.pc, m.next, m.loc, m.calls = prog, pc, next, loc, calls
}

// ifThen pops a condition. If it is false, execution continues after the
// matching ELSE or EIF.
func (m *machine) ifThen(ins ttcode.If) {
	ops, ok := m.pop(1, ArgCondition)
	if !ok {
		return
	}
	switch cond := triple.Truth(ops[0].Value); cond {
	case triple.True:
		return
	case triple.False:
		if target, ok := m.matching(m.pc, true); ok {
			m.next = target + 1
		}
	default:
		m.halt(ControlFlow, SeverityWarning, CodeControlFlow,
			"condition %v of IF is undecidable", ops[0].Value)
	}
}

// skipElse is reached at the end of a taken IF branch; it continues after
// the matching EIF.
func (m *machine) skipElse(ins ttcode.Else) {
	if target, ok := m.matching(m.pc, false); ok {
		m.next = target + 1
	}
}

// matching finds the ELSE (if elseToo) or EIF closing the block opened at
// from. It halts the run if there is none.
func (m *machine) matching(from int, elseToo bool) (int, bool) {
	level := 0
	for i := from + 1; i < m.prog.Len(); i++ {
		switch m.prog.At(i).(type) {
		case ttcode.If:
			level++
		case ttcode.Else:
			if level == 0 && elseToo {
				return i, true
			}
		case ttcode.EndIf:
			if level == 0 {
				return i, true
			}
			level--
		}
	}
	m.halt(ControlFlow, SeverityError, CodeControlFlow, "%s without matching EIF", m.opcode())
	return 0, false
}

// jump handles JMPR, JROT and JROF. The distance is in bytes, relative to the
// jump instruction, and must hit the start of an instruction.
func (m *machine) jump(ins ttcode.Jump) {
	var offset operand
	if ins.Conditional {
		ops, ok := m.pop(1, ArgCondition)
		if !ok {
			return
		}
		cond := triple.Truth(ops[0].Value)
		if cond == triple.Unknown {
			m.halt(ControlFlow, SeverityWarning, CodeControlFlow,
				"condition %v of %s is undecidable", ops[0].Value, ins.Opcode().Name())
			return
		}
		off, ok := m.pop(1, ArgJumpOffset)
		if !ok {
			return
		}
		if (cond == triple.True) != ins.OnTrue {
			return
		}
		offset = off[0]
	} else {
		off, ok := m.pop(1, ArgJumpOffset)
		if !ok {
			return
		}
		offset = off[0]
	}
	dist, ok := m.scalar(offset, "jump distance")
	if !ok {
		return
	}
	target, ok := m.prog.IndexOf(ins.Offset() + dist)
	if !ok {
		m.halt(ControlFlow, SeverityError, CodeControlFlow,
			"jump by %d bytes does not hit an instruction", dist)
		return
	}
	m.next = target
}
