package ttinterp

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tthints/provenance"
	"github.com/npillmayer/tthints/triple"
	"github.com/npillmayer/tthints/ttcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxOfProgressionAndScalar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tthints.interp")
	defer teardown()
	//
	var a ttcode.Assembler
	a.Push(8).Op(ttcode.MAX)
	prog := decode(t, "test", &a)
	odd := triple.FromTriples(triple.MustNew(1, 13, 2))
	st, recs := run(t, NewState(prog, WithStack(odd)), Options{})
	require.Equal(t, Completed, st.Halt)
	require.Len(t, st.Stack, 1)
	top := st.Stack[0]
	assert.True(t, top.Value.Equal(triple.FromValues(8, 9, 11)), "got %v", top.Value)
	want := `Result of opcode MAX at index 1 in test, with inputs:
  Entry stack index 0 in test
  Extra index 0 in PUSH opcode index 0 in test`
	if diff := cmp.Diff(want, st.Arena.Format(top.History)); diff != "" {
		t.Errorf("history differs (-want +got):\n%s", diff)
	}
	assert.Empty(t, recs.Records)
}

func TestChainedMaxHistory(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tthints.interp")
	defer teardown()
	//
	var a ttcode.Assembler
	a.Push(1, 2, 3, 4).Op(ttcode.MAX, ttcode.MAX, ttcode.MAX)
	st, _ := run(t, NewState(decode(t, "test", &a)), Options{})
	require.Len(t, st.Stack, 1)
	assert.Equal(t, []int{4}, scalars(t, st))
	h := st.Stack[0].History
	want := `Result of opcode MAX at index 3 in test, with inputs:
  Extra index 0 in PUSH opcode index 0 in test
  Result of opcode MAX at index 2 in test, with inputs:
    Extra index 1 in PUSH opcode index 0 in test
    Result of opcode MAX at index 1 in test, with inputs:
      Extra index 2 in PUSH opcode index 0 in test
      Extra index 3 in PUSH opcode index 0 in test`
	if diff := cmp.Diff(want, st.Arena.Format(h)); diff != "" {
		t.Errorf("history differs (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, st.Arena.Depth(h))
	assert.Len(t, st.Arena.Leaves(h), 4)
}

func TestDuplicatedHistoryStaysLinear(t *testing.T) {
	var a ttcode.Assembler
	a.Push(1)
	for i := 0; i < 40; i++ {
		a.Op(ttcode.DUP, ttcode.MAX)
	}
	st, _ := run(t, NewState(decode(t, "test", &a)), Options{})
	require.Len(t, st.Stack, 1)
	assert.Equal(t, []int{1}, scalars(t, st))
	h := st.Stack[0].History
	assert.Equal(t, 40, st.Arena.Depth(h))
	assert.Len(t, st.Arena.Leaves(h), 1)
	lines := strings.Split(st.Arena.Format(h), "\n")
	require.Len(t, lines, 81)
	assert.Equal(t, "  Same as line 2: Result of opcode MAX at index 78 in test", lines[len(lines)-1])
	assert.True(t, st.Arena.Equal(h, h))
}

func TestBalancedMaxHistory(t *testing.T) {
	var a ttcode.Assembler
	a.Push(1, 2).Op(ttcode.MAX).Push(3, 4).Op(ttcode.MAX, ttcode.MAX)
	st, _ := run(t, NewState(decode(t, "test", &a)), Options{})
	require.Len(t, st.Stack, 1)
	h := st.Stack[0].History
	assert.Equal(t, 2, st.Arena.Depth(h))
	var extras []int
	for _, leaf := range st.Arena.Leaves(h) {
		e, ok := st.Arena.Entry(leaf)
		require.True(t, ok)
		require.Equal(t, provenance.PushLeaf, e.Kind)
		extras = append(extras, 10*e.Loc.PC+e.Extra)
	}
	// leaves in push order: two from the push at 0, two from the push at 2
	assert.Equal(t, []int{0, 1, 20, 21}, extras)
}

func TestHistoriesStayAligned(t *testing.T) {
	ops := []ttcode.Opcode{
		ttcode.ADD, ttcode.SUB, ttcode.MAX, ttcode.MIN, ttcode.MUL, ttcode.LT, ttcode.EQ,
		ttcode.AND, ttcode.NEG, ttcode.ABS, ttcode.FLOOR, ttcode.NOT, ttcode.DUP,
		ttcode.SWAP, ttcode.POP, ttcode.DEPTH, ttcode.ROLL,
	}
	rng := rand.New(rand.NewPCG(7, 8))
	for round := 0; round < 50; round++ {
		var a ttcode.Assembler
		for i := 0; i < 30; i++ {
			if rng.IntN(3) == 0 {
				a.Push(rng.IntN(200)-100, rng.IntN(100))
			} else {
				a.Op(ops[rng.IntN(len(ops))])
			}
		}
		st, _ := run(t, NewState(decode(t, "random", &a), WithStack(triple.Top(), triple.FromValues(1, 2, 3))), Options{})
		require.True(t, st.Halted())
		require.Equal(t, DoNotProceed, st.PC)
		for i, e := range st.Stack {
			if _, ok := st.Arena.Entry(e.History); !ok {
				t.Fatalf("round %d: stack entry %d has no history", round, i)
			}
		}
	}
}

func TestUnderflowHalts(t *testing.T) {
	var a ttcode.Assembler
	a.Push(5).Op(ttcode.MAX, ttcode.DUP)
	st, recs := run(t, NewState(decode(t, "test", &a)), Options{})
	assert.Equal(t, StackUnderflow, st.Halt)
	assert.Equal(t, DoNotProceed, st.PC)
	assert.Equal(t, []int{5}, scalars(t, st), "underflow must not pop partially")
	require.Len(t, recs.WithCode(CodeStackUnderflow), 1)
	assert.Equal(t, SeverityCritical, recs.Records[0].Severity)
	assert.Equal(t, 1, recs.Records[0].Loc.PC)
	assert.Equal(t, 2, st.Steps, "DUP must not be executed")
}

func TestMAZDeltaUnderflowRecordsNothing(t *testing.T) {
	var a ttcode.Assembler
	// one delta, count 2, point 5
	a.Push(7, 2, 5).Op(ttcode.MAZDELTA)
	st, recs := run(t, NewState(decode(t, "test", &a)), Options{})
	assert.Equal(t, StackUnderflow, st.Halt)
	assert.Empty(t, st.Stats.History[EventPointMoved])
	assert.NotContains(t, st.Stats.Maxima, MaxPoint)
	// point and count stay popped
	assert.Equal(t, []int{7}, scalars(t, st))
	assert.Len(t, recs.WithCode(CodeStackUnderflow), 1)
}

func TestMAZDeltaMovesPoint(t *testing.T) {
	var a ttcode.Assembler
	a.Push(7, 9, 2, 8).Op(0xA3)
	st, recs := run(t, NewState(decode(t, "test", &a)), Options{Extra: ExtraInfo{GlyphPoints: 20}})
	require.Equal(t, Completed, st.Halt)
	assert.Empty(t, st.Stack)
	assert.Empty(t, recs.Records)
	assert.Equal(t, 8, st.Stats.Maxima[MaxPoint])
	events := st.Stats.History[EventPointMoved]
	require.Len(t, events, 1)
	assert.True(t, events[0].Index.Equal(triple.Scalar(8)))
	assert.Equal(t, provenance.Location{Program: "test", PC: 1}, events[0].Loc)
	leaf, ok := st.Arena.Entry(events[0].History)
	require.True(t, ok)
	assert.Equal(t, 3, leaf.Extra)
}

func TestIllegalPointIsNotRecorded(t *testing.T) {
	var a ttcode.Assembler
	a.Push(0, 8).Op(ttcode.MAZDELTA)
	st, recs := run(t, NewState(decode(t, "test", &a)), Options{Extra: ExtraInfo{GlyphPoints: 5}})
	assert.Equal(t, Completed, st.Halt, "illegal points do not halt")
	assert.Empty(t, st.Stats.History[EventPointMoved])
	require.Len(t, recs.WithCode(CodeIllegalPoint), 1)
	assert.Equal(t, SeverityError, recs.Records[0].Severity)

	// a point which may be out of range is a warning
	a = ttcode.Assembler{}
	a.Op(ttcode.MAZDELTA)
	st, recs = run(t, NewState(decode(t, "test", &a),
		WithStack(triple.Scalar(0), triple.FromValues(2, 8))), Options{Extra: ExtraInfo{GlyphPoints: 5}})
	assert.Equal(t, Completed, st.Halt)
	require.Len(t, recs.WithCode(CodeMaybePoint), 1)
	assert.Equal(t, SeverityWarning, recs.Records[0].Severity)
}

func TestIllegalZone(t *testing.T) {
	var a ttcode.Assembler
	a.Push(2).Op(ttcode.SZP0)
	st, recs := run(t, NewState(decode(t, "test", &a)), Options{})
	assert.Equal(t, Completed, st.Halt)
	assert.Len(t, recs.WithCode(CodeIllegalZone), 1)
	assert.True(t, st.GS.ZP[0].Equal(triple.Scalar(1)), "illegal zone must not be set")
	assert.False(t, st.IsChanged(FieldZP0))

	gs := DefaultGraphicsState()
	gs.ZP[0] = triple.FromValues(1, 2)
	a = ttcode.Assembler{}
	a.Push(0, 3).Op(ttcode.MAZDELTA)
	st, recs = run(t, NewState(decode(t, "test", &a), WithGraphicsState(gs)), Options{})
	assert.Equal(t, Completed, st.Halt)
	assert.Len(t, recs.WithCode(CodeIllegalZone), 1)
	assert.Empty(t, st.Stats.History[EventPointMoved])
}

func TestSetZonePointers(t *testing.T) {
	var a ttcode.Assembler
	a.Push(0).Op(ttcode.SZPS).Push(5, 1, 0).Op(ttcode.MAZDELTA)
	st, _ := run(t, NewState(decode(t, "test", &a)), Options{})
	require.Equal(t, Completed, st.Halt)
	for slot := range 3 {
		assert.True(t, st.GS.ZP[slot].Equal(triple.Scalar(0)))
	}
	assert.Equal(t, []GSField{FieldZP0, FieldZP1, FieldZP2}, st.Changed())
	// point 0 was moved in the twilight zone
	assert.Equal(t, 0, st.Stats.Maxima[MaxTwilight])
	assert.NotContains(t, st.Stats.Maxima, MaxPoint)
}

func TestRoundStateChangesOnlyOnce(t *testing.T) {
	var a ttcode.Assembler
	a.Op(ttcode.RTDG, ttcode.RTDG)
	var notified []GSField
	st, _ := run(t, NewState(decode(t, "test", &a)), Options{
		OnChange: func(f GSField) { notified = append(notified, f) },
	})
	assert.Equal(t, []GSField{FieldRoundState}, notified)
	assert.Equal(t, RoundToDoubleGrid, st.GS.Round)
	assert.True(t, st.IsChanged(FieldRoundState))
	st.ClearChanged()
	assert.Empty(t, st.Changed())

	a = ttcode.Assembler{}
	a.Op(ttcode.RTG)
	notified = nil
	run(t, NewState(decode(t, "test", &a)), Options{
		OnChange: func(f GSField) { notified = append(notified, f) },
	})
	assert.Empty(t, notified, "RTG is the default round state")
}

func TestSetRefPointKeepsHistory(t *testing.T) {
	var a ttcode.Assembler
	a.Push(3, 4).Op(ttcode.SRP1)
	st, _ := run(t, NewState(decode(t, "test", &a)), Options{})
	require.Equal(t, Completed, st.Halt)
	assert.True(t, st.GS.RP[1].Equal(triple.Scalar(4)))
	e, ok := st.Arena.Entry(st.RefPtHistory[1])
	require.True(t, ok)
	assert.Equal(t, provenance.PushLeaf, e.Kind)
	assert.Equal(t, 1, e.Extra)
	assert.Equal(t, provenance.NoRef, st.RefPtHistory[0])
	assert.True(t, st.IsChanged(FieldRP1))
	assert.Len(t, st.Stats.History[EventRefPoint], 1)
	assert.Equal(t, []int{3}, scalars(t, st))
}

func TestEffectsNeedEntryStack(t *testing.T) {
	var a ttcode.Assembler
	a.Op(ttcode.RTDG).Push(2).Op(ttcode.SRP0)
	prog := decode(t, "fpgm", &a)
	st, _ := run(t, NewState(prog), Options{})
	assert.Empty(t, st.Stats.Effects)

	st, _ = run(t, NewState(prog), Options{EntryStack: []int{17, 4}})
	want := []GSEffect{
		{CallStack: "17 > 4", Loc: provenance.Location{Program: "fpgm", PC: 0}, Field: FieldRoundState},
		{CallStack: "17 > 4", Loc: provenance.Location{Program: "fpgm", PC: 2}, Field: FieldRP0},
	}
	if diff := cmp.Diff(want, st.Stats.SortedEffects()); diff != "" {
		t.Errorf("effects differ (-want +got):\n%s", diff)
	}
	// an empty call path still enables effects
	st, _ = run(t, NewState(prog), Options{EntryStack: []int{}})
	require.Len(t, st.Stats.SortedEffects(), 2)
	assert.Equal(t, "", st.Stats.SortedEffects()[0].CallStack)
}

func TestCallAttributesEffectsToCallPath(t *testing.T) {
	var fpgm ttcode.Assembler
	fpgm.Push(5).Op(ttcode.FDEF, ttcode.RTDG, ttcode.ADD, ttcode.ENDF)
	fst, _ := run(t, NewState(decode(t, "fpgm", &fpgm)), Options{})
	require.Equal(t, Completed, fst.Halt)
	require.Contains(t, fst.Defined, 5)
	assert.Empty(t, fst.Stack)

	var glyph ttcode.Assembler
	glyph.Push(1, 2, 5).Op(ttcode.CALL)
	st, _ := run(t, NewState(decode(t, "glyph 3", &glyph)), Options{
		EntryStack: []int{},
		Functions:  fst.Defined,
	})
	require.Equal(t, Completed, st.Halt)
	assert.Equal(t, []int{3}, scalars(t, st))
	want := []GSEffect{
		{CallStack: "5", Loc: provenance.Location{Program: "fpgm", PC: 2}, Field: FieldRoundState},
	}
	assert.Equal(t, want, st.Stats.SortedEffects())
	assert.Equal(t, 5, st.Stats.Maxima[MaxFunction])
	// the sum is computed inside the function
	e, _ := st.Arena.Entry(st.Stack[0].History)
	assert.Equal(t, provenance.Location{Program: "fpgm", PC: 3}, e.Loc)
}

func TestLoopCallAndUndefinedFunction(t *testing.T) {
	var a ttcode.Assembler
	a.Push(0, 0).Op(ttcode.FDEF, ttcode.DUP, ttcode.ADD, ttcode.ENDF).Push(1, 3, 0).Op(ttcode.LOOPCALL)
	st, _ := run(t, NewState(decode(t, "prep", &a)), Options{})
	require.Equal(t, Completed, st.Halt)
	assert.Equal(t, []int{0, 8}, scalars(t, st))

	a = ttcode.Assembler{}
	a.Push(9).Op(ttcode.CALL)
	st, recs := run(t, NewState(decode(t, "prep", &a)), Options{})
	assert.Equal(t, BadOperand, st.Halt)
	assert.Len(t, recs.WithCode(CodeUnknownFunction), 1)
}

func TestRecursionIsBounded(t *testing.T) {
	var a ttcode.Assembler
	a.Push(1).Op(ttcode.FDEF).Push(1).Op(ttcode.CALL, ttcode.ENDF).Push(1).Op(ttcode.CALL)
	st, recs := run(t, NewState(decode(t, "fpgm", &a)), Options{MaxCallDepth: 8})
	assert.Equal(t, CallDepth, st.Halt)
	assert.Len(t, recs.WithCode(CodeCallDepth), 1)
}

func TestConditionals(t *testing.T) {
	for cond, want := range map[int]int{0: 2, 1: 1, 7: 1} {
		var a ttcode.Assembler
		a.Push(cond).Op(ttcode.IF).Push(1).Op(ttcode.ELSE).Push(2).Op(ttcode.EIF)
		st, _ := run(t, NewState(decode(t, "test", &a)), Options{})
		require.Equal(t, Completed, st.Halt)
		assert.Equal(t, []int{want}, scalars(t, st), "condition %d", cond)
	}
	var a ttcode.Assembler
	a.Op(ttcode.IF).Push(1).Op(ttcode.EIF)
	st, recs := run(t, NewState(decode(t, "test", &a), WithStack(triple.FromValues(0, 1))), Options{})
	assert.Equal(t, ControlFlow, st.Halt)
	assert.Len(t, recs.WithCode(CodeControlFlow), 1)
	assert.Equal(t, SeverityWarning, recs.Records[0].Severity)
}

func TestJumps(t *testing.T) {
	// PUSHB[1] 3 c at 0, JROT at 3 jumps to DUP at 6, skipping PUSHB[0] 9
	for cond, want := range map[int]HaltReason{1: StackUnderflow, 0: Completed} {
		var a ttcode.Assembler
		a.Push(3, cond).Op(ttcode.JROT).Push(9).Op(ttcode.DUP)
		prog := decode(t, "test", &a)
		require.Equal(t, 6, prog.At(3).Offset())
		st, _ := run(t, NewState(prog), Options{})
		assert.Equal(t, want, st.Halt, "condition %d", cond)
	}

	var a ttcode.Assembler
	a.Push(2).Op(ttcode.JMPR, ttcode.DUP) // jumps to the end of the program
	st, _ := run(t, NewState(decode(t, "test", &a)), Options{})
	assert.Equal(t, Completed, st.Halt)
	assert.Empty(t, st.Stack)

	a = ttcode.Assembler{}
	a.Push(5).Op(ttcode.JMPR, ttcode.DUP)
	st, recs := run(t, NewState(decode(t, "test", &a)), Options{})
	assert.Equal(t, ControlFlow, st.Halt)
	assert.Len(t, recs.WithCode(CodeControlFlow), 1)
}

func TestStepLimit(t *testing.T) {
	var a ttcode.Assembler
	a.Push(-3).Op(ttcode.JMPR) // PUSHW[0] at 0, JMPR at 3 jumps back to 0
	prog := decode(t, "loop", &a)
	st, recs := run(t, NewState(prog), Options{MaxSteps: 100})
	assert.Equal(t, StepLimit, st.Halt)
	assert.Equal(t, 101, st.Steps)
	assert.Len(t, recs.WithCode(CodeStepLimit), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st, _ = run(t, NewState(prog), Options{Context: ctx})
	assert.Equal(t, Cancelled, st.Halt)
	assert.Equal(t, cancelPoll, st.Steps)
}

func TestArithmetic(t *testing.T) {
	cases := []struct {
		name string
		a    func(*ttcode.Assembler)
		want []int
	}{
		{"mul", func(a *ttcode.Assembler) { a.Push(128, 96).Op(ttcode.MUL) }, []int{192}},
		{"div", func(a *ttcode.Assembler) { a.Push(192, 128).Op(ttcode.DIV) }, []int{96}},
		{"sub", func(a *ttcode.Assembler) { a.Push(3, 5).Op(ttcode.SUB) }, []int{-2}},
		{"floor", func(a *ttcode.Assembler) { a.Push(100).Op(ttcode.FLOOR) }, []int{64}},
		{"ceiling", func(a *ttcode.Assembler) { a.Push(100).Op(ttcode.CEILING) }, []int{128}},
		{"lt", func(a *ttcode.Assembler) { a.Push(3, 5).Op(ttcode.LT) }, []int{1}},
		{"roll", func(a *ttcode.Assembler) { a.Push(1, 2, 3).Op(ttcode.ROLL) }, []int{2, 3, 1}},
		{"cindex", func(a *ttcode.Assembler) { a.Push(1, 2, 3, 2).Op(ttcode.CINDEX) }, []int{1, 2, 3, 2}},
		{"mindex", func(a *ttcode.Assembler) { a.Push(1, 2, 3, 3).Op(ttcode.MINDEX) }, []int{2, 3, 1}},
		{"depth", func(a *ttcode.Assembler) { a.Push(1, 2).Op(ttcode.DEPTH) }, []int{1, 2, 2}},
		{"swap", func(a *ttcode.Assembler) { a.Push(1, 2).Op(ttcode.SWAP) }, []int{2, 1}},
		{"clear", func(a *ttcode.Assembler) { a.Push(1, 2).Op(ttcode.CLEAR) }, []int{}},
		{"storage", func(a *ttcode.Assembler) { a.Push(3, 42).Op(ttcode.WS).Push(3).Op(ttcode.RS) }, []int{42}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var a ttcode.Assembler
			c.a(&a)
			st, _ := run(t, NewState(decode(t, c.name, &a)), Options{})
			require.Equal(t, Completed, st.Halt)
			assert.Equal(t, c.want, scalars(t, st))
		})
	}
}

func TestDivideByZero(t *testing.T) {
	var a ttcode.Assembler
	a.Push(64, 0).Op(ttcode.DIV)
	st, recs := run(t, NewState(decode(t, "test", &a)), Options{})
	assert.Equal(t, DivideByZero, st.Halt)
	assert.Len(t, recs.WithCode(CodeDivideByZero), 1)

	a = ttcode.Assembler{}
	a.Push(64).Op(ttcode.SWAP, ttcode.DIV)
	st, recs = run(t, NewState(decode(t, "test", &a), WithStack(triple.FromValues(0, 64))), Options{})
	assert.Equal(t, Completed, st.Halt)
	assert.Len(t, recs.WithCode(CodeMaybeZero), 1)
	assert.Equal(t, []int{64}, scalars(t, st))
}

func TestStorageStatistics(t *testing.T) {
	var a ttcode.Assembler
	a.Push(3, 42).Op(ttcode.WS).Push(12, 1).Op(ttcode.WS)
	st, recs := run(t, NewState(decode(t, "prep", &a)), Options{Extra: ExtraInfo{StorageSize: 10}})
	require.Equal(t, Completed, st.Halt)
	assert.Equal(t, 3, st.Stats.Maxima[MaxStorage])
	assert.Len(t, st.Stats.History[EventStorageWrite], 1)
	assert.Len(t, recs.WithCode(CodeIllegalStorage), 1)
}

func TestStorageWriteMayBeOutOfRange(t *testing.T) {
	var a ttcode.Assembler
	a.Push(3, 42).Op(ttcode.WS).Push(7).Op(ttcode.WS).Push(3).Op(ttcode.RS)
	index := triple.FromValues(3, 100)
	st, recs := run(t, NewState(decode(t, "prep", &a), WithStack(index)), Options{Extra: ExtraInfo{StorageSize: 10}})
	require.Equal(t, Completed, st.Halt)
	require.Len(t, st.Stack, 1)
	// slot 3 holds the first value or the second one
	assert.True(t, st.Stack[0].Value.Equal(triple.FromValues(7, 42)), "got %v", st.Stack[0].Value)
	assert.Len(t, recs.WithCode(CodeIllegalStorage), 1)
	assert.Len(t, st.Stats.History[EventStorageWrite], 1)
	assert.Equal(t, 3, st.Stats.Maxima[MaxStorage])
}

func TestUnsupportedInstructionHalts(t *testing.T) {
	prog, err := ttcode.Decode("test", []byte{0x00})
	require.NoError(t, err)
	st, recs := run(t, NewState(prog), Options{})
	assert.Equal(t, Unsupported, st.Halt)
	require.Len(t, recs.Records, 1)
	assert.Equal(t, SeverityWarning, recs.Records[0].Severity)
	assert.Equal(t, CodeUnsupported, recs.Records[0].Code)
}

func TestConfigurationErrors(t *testing.T) {
	var cerr *ConfigurationError
	_, err := Run(nil, Options{})
	assert.True(t, errors.As(err, &cerr))

	_, err = Run(NewState(nil), Options{})
	assert.True(t, errors.As(err, &cerr))
	assert.Equal(t, "state.Program", cerr.Option)

	prog := &ttcode.Program{ID: "empty"}
	_, err = Run(NewState(prog), Options{MaxSteps: -1})
	assert.True(t, errors.As(err, &cerr))

	_, err = Run(NewState(prog), Options{ArgTracer: NewArgTracer(2)})
	assert.True(t, errors.As(err, &cerr))
	assert.Equal(t, "ArgTracer", cerr.Option)

	st, err := Run(NewState(prog), Options{Logger: &Collector{}})
	require.NoError(t, err)
	_, err = Run(st, Options{})
	assert.True(t, errors.As(err, &cerr), "a halted state must not be run again")
}

// --- Helpers ---------------------------------------------------------------

func decode(t *testing.T, id string, a *ttcode.Assembler) *ttcode.Program {
	t.Helper()
	prog, err := ttcode.Decode(id, a.Bytes())
	require.NoError(t, err)
	return prog
}

func run(t *testing.T, st *State, opts Options) (*State, *Collector) {
	t.Helper()
	recs := &Collector{}
	opts.Logger = recs
	st, err := Run(st, opts)
	require.NoError(t, err)
	return st, recs
}

func scalars(t *testing.T, st *State) []int {
	t.Helper()
	vals := make([]int, len(st.Stack))
	for i, e := range st.Stack {
		n, ok := e.Value.ToNumber()
		require.True(t, ok, "stack value %d is %v", i, e.Value)
		vals[i] = n
	}
	return vals
}
