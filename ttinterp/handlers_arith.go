package ttinterp

import (
	"github.com/npillmayer/tthints/triple"
	"github.com/npillmayer/tthints/ttcode"
)

// push pushes the inline values of a push instruction, each with its own leaf
// history.
func (m *machine) push(ins ttcode.Push) {
	for i, v := range ins.Values {
		ref := m.st.Arena.Push(m.loc, i)
		m.pushEntry(Entry{Value: triple.Scalar(v), History: ref}, nil)
	}
}

var one64 = triple.Scalar(64)

// binary handles instructions popping e2 (top) and e1 and pushing op(e1, e2).
func (m *machine) binary(ins ttcode.Binary) {
	ops, ok := m.pop(2, "")
	if !ok {
		return
	}
	e1, e2 := ops[0].Value, ops[1].Value
	var r triple.Collection
	switch ins.Opcode() {
	case ttcode.MAX:
		r = triple.Max(e1, e2)
	case ttcode.MIN:
		r = triple.Min(e1, e2)
	case ttcode.ADD:
		r = triple.Add(e1, e2)
	case ttcode.SUB:
		r = triple.Sub(e1, e2)
	case ttcode.MUL: // 26.6: e1·e2 / 64, rounded
		r = triple.MulDiv(e1, e2, one64, triple.HalfAwayFromZero)
	case ttcode.DIV: // 26.6: e1·64 / e2
		if n, ok := e2.ToNumber(); ok && n == 0 {
			m.halt(DivideByZero, SeverityCritical, CodeDivideByZero, "division by zero")
			return
		}
		if e2.HasZero() {
			m.log(SeverityWarning, CodeMaybeZero, "divisor %v may be zero", e2)
		}
		r = triple.MulDiv(e1, one64, e2, triple.TowardZero)
	case ttcode.LT:
		r = triple.Less(e1, e2).Collection()
	case ttcode.LTEQ:
		r = triple.LessEqual(e1, e2).Collection()
	case ttcode.GT:
		r = triple.Greater(e1, e2).Collection()
	case ttcode.GTEQ:
		r = triple.GreaterEqual(e1, e2).Collection()
	case ttcode.EQ:
		r = triple.Equal(e1, e2).Collection()
	case ttcode.NEQ:
		r = triple.NotEqual(e1, e2).Collection()
	case ttcode.AND:
		r = triple.Truth(e1).And(triple.Truth(e2)).Collection()
	case ttcode.OR:
		r = triple.Truth(e1).Or(triple.Truth(e2)).Collection()
	default:
		m.halt(Unsupported, SeverityWarning, CodeUnsupported,
			"binary instruction %s is not supported", ins.Opcode().Name())
		return
	}
	m.pushResult(r, ops...)
}

// unary handles instructions popping one value and pushing one result.
func (m *machine) unary(ins ttcode.Unary) {
	ops, ok := m.pop(1, "")
	if !ok {
		return
	}
	e := ops[0].Value
	var r triple.Collection
	switch ins.Opcode() {
	case ttcode.NOT:
		r = triple.Truth(e).Not().Collection()
	case ttcode.ABS:
		r = triple.Abs(e)
	case ttcode.NEG:
		r = triple.Neg(e)
	case ttcode.FLOOR:
		r = triple.FloorF26Dot6(e)
	case ttcode.CEILING:
		r = triple.CeilF26Dot6(e)
	default:
		m.halt(Unsupported, SeverityWarning, CodeUnsupported,
			"unary instruction %s is not supported", ins.Opcode().Name())
		return
	}
	m.pushResult(r, ops...)
}

// stackOp handles the stack manipulation instructions. Values moved or
// copied keep their histories.
func (m *machine) stackOp(ins ttcode.StackOp) {
	switch ins.Opcode() {
	case ttcode.DUP:
		if ops, ok := m.pop(1, ""); ok {
			m.pushEntry(ops[0].Entry, ops[0].arg)
			m.pushEntry(ops[0].Entry, ops[0].arg)
		}
	case ttcode.POP:
		m.pop(1, "")
	case ttcode.CLEAR:
		m.pop(len(m.st.Stack), "")
	case ttcode.SWAP:
		if ops, ok := m.pop(2, ""); ok {
			m.pushEntry(ops[1].Entry, ops[1].arg)
			m.pushEntry(ops[0].Entry, ops[0].arg)
		}
	case ttcode.DEPTH:
		depth := len(m.st.Stack)
		ref := m.st.Arena.Derive(ins.Opcode().Name(), m.loc)
		m.pushEntry(Entry{Value: triple.Scalar(depth), History: ref}, nil)
	case ttcode.CINDEX, ttcode.MINDEX:
		m.index(ins.Opcode() == ttcode.MINDEX)
	case ttcode.ROLL:
		if ops, ok := m.pop(3, ""); ok {
			m.pushEntry(ops[1].Entry, ops[1].arg)
			m.pushEntry(ops[2].Entry, ops[2].arg)
			m.pushEntry(ops[0].Entry, ops[0].arg)
		}
	default:
		m.halt(Unsupported, SeverityWarning, CodeUnsupported,
			"stack instruction %s is not supported", ins.Opcode().Name())
	}
}

// index copies (CINDEX) or moves (MINDEX) the k-th stack element to the top,
// k = 1 being the top itself.
func (m *machine) index(move bool) {
	ops, ok := m.pop(1, "")
	if !ok {
		return
	}
	k, ok := m.scalar(ops[0], "element index")
	if !ok {
		return
	}
	if k < 1 {
		m.halt(BadOperand, SeverityError, CodeBadOperand,
			"element index %d of %s must be positive", k, m.opcode())
		return
	}
	elems, ok := m.pop(k, "")
	if !ok {
		return
	}
	if move {
		for _, e := range elems[1:] {
			m.pushEntry(e.Entry, e.arg)
		}
	} else {
		for _, e := range elems {
			m.pushEntry(e.Entry, e.arg)
		}
	}
	m.pushEntry(elems[0].Entry, elems[0].arg)
}
