package ttinterp

import (
	"context"
	"fmt"

	"github.com/npillmayer/tthints/provenance"
	"github.com/npillmayer/tthints/triple"
	"github.com/npillmayer/tthints/ttcode"
)

// Defaults for Options.
const (
	DefaultMaxSteps     = 100000
	DefaultMaxCallDepth = 64
)

// cancelPoll is the number of instructions between checks of the context.
const cancelPoll = 1024

// ExtraInfo carries the sizes of the font's point and storage areas, used to
// check operands for legality. A size of 0 means unknown; no upper bound is
// checked then.
type ExtraInfo struct {
	GlyphPoints    int // points of the glyph zone, including phantom points
	TwilightPoints int
	StorageSize    int
	CVTSize        int
	FunctionCount  int
}

// Options configure a run. The zero value is usable.
type Options struct {
	// EntryStack is the call path leading to the analyzed program, outermost
	// function number first. If set, graphics state effects are recorded,
	// attributed to the call path.
	EntryStack []int
	// ArgTracer follows function arguments. Optional.
	ArgTracer *ArgTracer
	Extra     ExtraInfo
	Logger    Logger // defaults to TraceLogger
	// MaxSteps bounds the number of instructions executed. 0 selects
	// DefaultMaxSteps.
	MaxSteps int
	// Context, if set, is checked periodically; a cancelled context halts
	// the run.
	Context context.Context
	// Functions holds function bodies for CALL which the program does not
	// define itself, usually from the font program.
	Functions map[int]*ttcode.Program
	// MaxCallDepth bounds the nesting of CALL. 0 selects DefaultMaxCallDepth.
	MaxCallDepth int
	// OnChange, if set, is called whenever a graphics state field is
	// modified.
	OnChange func(GSField)
}

// Run executes st.Program on st. It returns st once the run halted; the
// reason is in st.Halt and st.PC is DoNotProceed.
//
// Errors in the program never make Run fail. A non-nil error is always a
// *ConfigurationError.
func Run(st *State, opts Options) (*State, error) {
	if st == nil {
		return nil, errConfig("state", "missing")
	}
	if st.Program == nil {
		return st, errConfig("state.Program", "missing")
	}
	if st.Arena == nil || st.Stats == nil || st.Storage == nil || st.Defined == nil {
		return st, errConfig("state", "not created by NewState")
	}
	if st.Halted() {
		return st, errConfig("state", "run has already halted")
	}
	if opts.MaxSteps < 0 {
		return st, errConfig("MaxSteps", "must not be negative")
	}
	if opts.MaxCallDepth < 0 {
		return st, errConfig("MaxCallDepth", "must not be negative")
	}
	if opts.ArgTracer != nil && opts.ArgTracer.Depth() != len(st.Stack) {
		return st, errConfig("ArgTracer", fmt.Sprintf("traces %d arguments, stack holds %d",
			opts.ArgTracer.Depth(), len(st.Stack)))
	}
	if opts.MaxSteps == 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	if opts.MaxCallDepth == 0 {
		opts.MaxCallDepth = DefaultMaxCallDepth
	}
	if opts.Logger == nil {
		opts.Logger = TraceLogger{}
	}
	m := &machine{st: st, opts: opts, calls: opts.EntryStack}
	tracer().Debugf("run %s, %d instructions", st.Program.ID, st.Program.Len())
	m.exec(st.Program)
	if !st.Halted() {
		st.Halt = Completed
	}
	st.PC = DoNotProceed
	tracer().Debugf("run %s halted: %s after %d steps", st.Program.ID, st.Halt, st.Steps)
	return st, nil
}

// machine holds the per-run context of the handlers.
type machine struct {
	st    *State
	opts  Options
	calls []int               // current call path
	depth int                 // nesting of CALL within this run
	prog  *ttcode.Program     // program being executed
	pc    int                 // index within prog
	next  int                 // index of the instruction to execute next
	loc   provenance.Location // location of the current instruction
}

// operand is a popped stack entry and the arguments it derives from.
type operand struct {
	Entry
	arg ArgRef
}

// exec is the dispatch loop. It returns when the end of prog is reached or
// the run halted.
func (m *machine) exec(prog *ttcode.Program) {
	m.prog = prog
	for m.pc = 0; m.pc < prog.Len(); m.pc = m.next {
		if m.st.Halted() {
			return
		}
		m.loc = provenance.Location{Program: prog.ID, PC: prog.Base + m.pc}
		m.st.PC = m.loc.PC
		m.st.Steps++
		if m.st.Steps > m.opts.MaxSteps {
			m.halt(StepLimit, SeverityWarning, CodeStepLimit,
				"instruction budget of %d exhausted", m.opts.MaxSteps)
			return
		}
		if m.opts.Context != nil && m.st.Steps%cancelPoll == 0 {
			if err := m.opts.Context.Err(); err != nil {
				m.halt(Cancelled, SeverityInfo, CodeCancelled, "run cancelled: %v", err)
				return
			}
		}
		m.next = m.pc + 1
		m.step(prog.At(m.pc))
	}
}

// step dispatches a single instruction to its handler.
func (m *machine) step(ins ttcode.Instruction) {
	switch ins := ins.(type) {
	case ttcode.Push:
		m.push(ins)
	case ttcode.StackOp:
		m.stackOp(ins)
	case ttcode.Binary:
		m.binary(ins)
	case ttcode.Unary:
		m.unary(ins)
	case ttcode.SetRound:
		m.setRound(ins)
	case ttcode.SetRefPoint:
		m.setRefPoint(ins)
	case ttcode.SetZone:
		m.setZone(ins)
	case ttcode.MAZDelta:
		m.mazDelta(ins)
	case ttcode.DeltaP:
		m.deltaP(ins)
	case ttcode.MDAP:
		m.mdap(ins)
	case ttcode.Storage:
		m.storage(ins)
	case ttcode.CVT:
		m.cvt(ins)
	case ttcode.FuncDef:
		m.funcDef(ins)
	case ttcode.EndFunc:
		m.halt(ControlFlow, SeverityError, CodeControlFlow, "ENDF outside of a function definition")
	case ttcode.Call:
		m.call(ins)
	case ttcode.If:
		m.ifThen(ins)
	case ttcode.Else:
		m.skipElse(ins)
	case ttcode.EndIf:
	case ttcode.Jump:
		m.jump(ins)
	default:
		m.halt(Unsupported, SeverityWarning, CodeUnsupported,
			"instruction %s is not supported", ins.Opcode().Name())
	}
}

// --- Helpers ---------------------------------------------------------------

func (m *machine) log(sev Severity, code string, format string, args ...any) {
	m.opts.Logger.Log(Record{
		Severity: sev,
		Code:     code,
		Loc:      m.loc,
		Args:     args,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (m *machine) halt(reason HaltReason, sev Severity, code string, format string, args ...any) {
	m.log(sev, code, format, args...)
	m.st.Halt = reason
	m.st.PC = DoNotProceed
}

// pop removes n entries from the stack, deepest first in the result. If
// fewer than n entries are present, the stack is left untouched and the run
// halts with StackUnderflow. Popped values are reported to the argument
// tracer under category.
func (m *machine) pop(n int, category string) ([]operand, bool) {
	stack := m.st.Stack
	if n < 0 || n > len(stack) {
		m.halt(StackUnderflow, SeverityCritical, CodeStackUnderflow,
			"%s needs %d operands, stack holds %d", m.opcode(), n, len(stack))
		return nil, false
	}
	ops := make([]operand, n)
	for i := n - 1; i >= 0; i-- {
		ops[i].Entry = stack[len(stack)-n+i]
		if m.opts.ArgTracer != nil {
			ops[i].arg = m.opts.ArgTracer.NotePop(category)
		}
	}
	m.st.Stack = stack[:len(stack)-n]
	return ops, true
}

// pushEntry pushes e, deriving from the arguments in arg.
func (m *machine) pushEntry(e Entry, arg ArgRef) {
	m.st.Stack = append(m.st.Stack, e)
	m.st.Stats.NoteMax(MaxStack, len(m.st.Stack))
	if m.opts.ArgTracer != nil {
		m.opts.ArgTracer.NotePush(arg)
	}
}

// pushResult pushes the result of the current instruction computed from ops.
func (m *machine) pushResult(value triple.Collection, ops ...operand) {
	children := make([]provenance.Ref, len(ops))
	args := make([]ArgRef, len(ops))
	for i, op := range ops {
		children[i] = op.History
		args[i] = op.arg
	}
	ref := m.st.Arena.Derive(m.opcode().Name(), m.loc, children...)
	m.pushEntry(Entry{Value: value, History: ref}, MergeArgs(args...))
}

// scalar collapses the value of op. If it is not a single value, the run
// halts with BadOperand.
func (m *machine) scalar(op operand, what string) (int, bool) {
	n, ok := op.Value.ToNumber()
	if !ok {
		m.halt(BadOperand, SeverityError, CodeBadOperand,
			"%s of %s must be a single value, is %v", what, m.opcode(), op.Value)
	}
	return n, ok
}

func (m *machine) opcode() ttcode.Opcode {
	return m.prog.At(m.pc).Opcode()
}

// changed marks f as modified.
func (m *machine) changed(f GSField) {
	m.st.changed |= 1 << f
	if m.opts.OnChange != nil {
		m.opts.OnChange(f)
	}
}

// effect records a graphics state effect if the run has call path context.
func (m *machine) effect(f GSField) {
	if m.opts.EntryStack == nil {
		return
	}
	m.st.Stats.NoteEffect(GSEffect{
		CallStack: formatCallStack(m.calls),
		Loc:       m.loc,
		Field:     f,
	})
}
