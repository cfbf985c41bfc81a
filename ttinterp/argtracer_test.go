package ttinterp

import (
	"testing"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tthints/triple"
	"github.com/npillmayer/tthints/ttcode"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite Preparation ------------------------------------------------

type ArgTracerTestEnviron struct {
	suite.Suite
}

// listen for 'go test' command --> run test methods
func TestArgTracer(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tthints.interp")
	defer teardown()
	suite.Run(t, new(ArgTracerTestEnviron))
}

// run once, before test suite methods
func (env *ArgTracerTestEnviron) SetupSuite() {
	tracing.Select("tthints.interp").SetTraceLevel(tracing.LevelError)
}

// runBody analyzes code as a function body entered with depth unknown values.
func (env *ArgTracerTestEnviron) runBody(depth int, a *ttcode.Assembler) (*State, Signature) {
	prog, err := ttcode.Decode("fpgm", a.Bytes())
	env.Require().NoError(err)
	seed := make([]triple.Collection, depth)
	for i := range seed {
		seed[i] = triple.Top()
	}
	at := NewArgTracer(depth)
	st, err := Run(NewState(prog, WithStack(seed...)), Options{
		ArgTracer:  at,
		EntryStack: []int{0},
		Logger:     &Collector{},
	})
	env.Require().NoError(err)
	return st, at.Signature()
}

// --- Tests -----------------------------------------------------------------

func (env *ArgTracerTestEnviron) TestMergeArgs() {
	env.Equal(ArgRef{2}, MergeArgs(ArgRef{2}, ArgRef{2}))
	env.Equal(ArgRef{1, 3}, MergeArgs(ArgRef{3}, nil, ArgRef{1}))
	env.Nil(MergeArgs(nil, nil))
	n, ok := MergeArgs(ArgRef{4}, ArgRef{4}).Single()
	env.True(ok)
	env.Equal(4, n)
}

func (env *ArgTracerTestEnviron) TestRefPointAndSum() {
	var a ttcode.Assembler
	a.Op(ttcode.SRP0, ttcode.ADD)
	st, sig := env.runBody(4, &a)
	env.Equal(Completed, st.Halt)
	env.Equal(3, sig.Args)
	env.Equal(1, sig.Results)
	env.Equal([]ArgRef{{1, 2}}, sig.ResultArgs)
	env.Equal(map[int][]string{0: {ArgPointIndex}}, sig.Categories)
}

func (env *ArgTracerTestEnviron) TestDeltaCategories() {
	var a ttcode.Assembler
	a.Push(1).Op(ttcode.DELTAP1)
	st, sig := env.runBody(3, &a)
	env.Equal(Completed, st.Halt)
	env.Equal(2, sig.Args)
	env.Equal(0, sig.Results)
	env.Equal([]string{ArgPointIndex}, sig.Categories[0])
	env.Equal([]string{ArgDeltaArg}, sig.Categories[1])
	env.NotContains(sig.Categories, 2)
}

func (env *ArgTracerTestEnviron) TestMAZDeltaCategories() {
	var a ttcode.Assembler
	// the count is computed, the point and one delta come from the caller
	a.Push(1).Op(ttcode.SWAP, 0xA4)
	st, sig := env.runBody(2, &a)
	env.Equal(Completed, st.Halt)
	env.Equal(2, sig.Args)
	env.Equal([]string{ArgPointIndex}, sig.Categories[0])
	env.Equal([]string{ArgDeltaArg}, sig.Categories[1])
}

func (env *ArgTracerTestEnviron) TestStackShuffleKeepsArguments() {
	var a ttcode.Assembler
	a.Op(ttcode.SWAP, ttcode.DUP)
	_, sig := env.runBody(2, &a)
	env.Equal(2, sig.Args)
	env.Equal(3, sig.Results)
	env.Equal([]ArgRef{{0}, {1}, {1}}, sig.ResultArgs)
	env.Equal("2 args -> 3 results", sig.String())
}

func (env *ArgTracerTestEnviron) TestUntouchedArgumentsAreNotCounted() {
	var a ttcode.Assembler
	a.Push(7).Op(ttcode.ADD)
	_, sig := env.runBody(5, &a)
	env.Equal(1, sig.Args)
	env.Equal(1, sig.Results)
	env.Equal([]ArgRef{{0}}, sig.ResultArgs)
}
