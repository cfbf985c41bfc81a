package fontcheck

import (
	"context"
	"testing"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tthints/internal/fontload"
	"github.com/npillmayer/tthints/internal/fonttest"
	"github.com/npillmayer/tthints/ttcode"
	"github.com/npillmayer/tthints/ttinterp"
	"github.com/stretchr/testify/suite"
	"golang.org/x/image/font/gofont/goregular"
)

// --- Test Suite Preparation ------------------------------------------------

type FontCheckTestEnviron struct {
	suite.Suite
	font *Font
}

// listen for 'go test' command --> run test methods
func TestFontCheck(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tthints.fontcheck")
	defer teardown()
	suite.Run(t, new(FontCheckTestEnviron))
}

// run once, before test suite methods
func (env *FontCheckTestEnviron) SetupSuite() {
	tracing.Select("tthints.interp").SetTraceLevel(tracing.LevelError)
	var err error
	env.font, err = FromTables("test", testFont().Tables())
	env.Require().NoError(err)
}

// testFont defines three functions:
//
//	0: sets rp0 from its first argument and adds the next two
//	1: switches to round to double grid
//	2: touches point 7
//
// The control value program calls function 1.
func testFont() fonttest.Font {
	var fpgm, prep, g1, g2 ttcode.Assembler
	fpgm.Push(0).Op(ttcode.FDEF, ttcode.SRP0, ttcode.ADD, ttcode.ENDF)
	fpgm.Push(1).Op(ttcode.FDEF, ttcode.RTDG, ttcode.ENDF)
	fpgm.Push(2).Op(ttcode.FDEF).Push(7).Op(ttcode.MDAP0, ttcode.ENDF)
	prep.Push(1).Op(ttcode.CALL)
	g1.Push(9).Op(ttcode.MDAP0)
	g2.Push(2).Op(ttcode.CALL)
	return fonttest.Font{
		FontProgram:  fpgm.Bytes(),
		CVTProgram:   prep.Bytes(),
		CVT:          []int16{0, 64, 128},
		FunctionDefs: 3,
		StackDepth:   64,
		Glyphs: []fonttest.Glyph{
			{},
			{EndPoints: []uint16{3}, Instructions: g1.Bytes()},
			{EndPoints: []uint16{1, 3}, Instructions: g2.Bytes()},
			{EndPoints: []uint16{1}, Instructions: []byte{0xB1, 0}}, // truncated PUSHB[1]
		},
	}
}

// --- Tests -----------------------------------------------------------------

func (env *FontCheckTestEnviron) TestLoadTables() {
	env.Equal("test", env.font.Name)
	env.Equal(3, env.font.CVTSize)
	env.Equal(4, env.font.NumGlyphs())
	env.NotNil(env.font.FontProgram)
	env.NotNil(env.font.CVTProgram)
	env.Empty(env.font.Issues)
	_, err := FromTables("broken", fontload.TableMap{})
	env.Error(err)
}

func (env *FontCheckTestEnviron) TestFunctionTable() {
	table, err := FunctionTable(env.font.FontProgram, env.font.extra(0))
	env.Require().NoError(err)
	env.Len(table, 3)
	env.Equal(1, table[1].Len()) // RTDG
	a, err := NewAnalyzer(env.font, Options{})
	env.Require().NoError(err)
	env.Equal([]int{0, 1, 2}, a.FunctionNumbers())
	env.Equal(ttinterp.Completed, a.FontProgram().Halt)
}

func (env *FontCheckTestEnviron) TestFunctionSignatures() {
	reports, err := AnalyzeFunctions(context.Background(), env.font, Options{Workers: 2})
	env.Require().NoError(err)
	env.Require().Len(reports, 3)
	for i, r := range reports {
		env.Equal(i, r.Number)
		env.Equal(ttinterp.Completed, r.Halt, "function %d", i)
	}
	env.Equal(3, reports[0].Signature.Args)
	env.Equal(1, reports[0].Signature.Results)
	env.Equal([]string{ttinterp.ArgPointIndex}, reports[0].Signature.Categories[0])
	env.Equal(0, reports[1].Signature.Args)
	env.Equal(7, reports[2].Stats.Maxima[ttinterp.MaxPoint])
}

func (env *FontCheckTestEnviron) TestEffectsAttributedToFunction() {
	a, err := NewAnalyzer(env.font, Options{})
	env.Require().NoError(err)
	r, err := a.Function(context.Background(), 1)
	env.Require().NoError(err)
	effects := r.Stats.SortedEffects()
	env.Require().Len(effects, 1)
	env.Equal("1", effects[0].CallStack)
	env.Equal(ttinterp.FieldRoundState, effects[0].Field)
	env.Nil(r.State)
	_, err = a.Function(context.Background(), 5)
	env.Error(err)
	a, err = NewAnalyzer(env.font, Options{KeepStates: true})
	env.Require().NoError(err)
	r, err = a.Function(context.Background(), 0)
	env.Require().NoError(err)
	env.Require().NotNil(r.State)
	env.Len(r.State.Stack, DefaultEntryStackDepth-2)
}

func (env *FontCheckTestEnviron) TestPrepLeavesGraphicsState() {
	prep, err := AnalyzePrep(env.font, Options{})
	env.Require().NoError(err)
	env.Require().NotNil(prep)
	env.Equal(ttinterp.Completed, prep.Halt)
	env.Equal(ttinterp.RoundToDoubleGrid, prep.GS.Round)
	g, err := AnalyzeGlyph(context.Background(), env.font, 2, Options{})
	env.Require().NoError(err)
	env.Equal(ttinterp.RoundToDoubleGrid, g.GS.Round)
	env.Equal(7, g.Stats.Maxima[ttinterp.MaxPoint])
	env.Equal(4, g.Points)
}

func (env *FontCheckTestEnviron) TestGlyphPointRange() {
	g, err := AnalyzeGlyph(context.Background(), env.font, 1, Options{})
	env.Require().NoError(err)
	env.Equal("glyph 1", g.Program)
	c := &ttinterp.Collector{Records: g.Records}
	env.Len(c.WithCode(ttinterp.CodeIllegalPoint), 1)
	g, err = AnalyzeGlyph(context.Background(), env.font, 0, Options{})
	env.Require().NoError(err)
	env.Empty(g.Program)
}

func (env *FontCheckTestEnviron) TestFontReport() {
	fr, err := AnalyzeFont(context.Background(), env.font, Options{Workers: 3})
	env.Require().NoError(err)
	env.Equal("test", fr.Name)
	env.Len(fr.Functions, 3)
	env.Require().Len(fr.Glyphs, 3)
	env.Equal([]int{1, 2, 3}, []int{fr.Glyphs[0].GID, fr.Glyphs[1].GID, fr.Glyphs[2].GID})
	env.NotEmpty(fr.Glyphs[2].Issue)
	env.Len(fr.Issues, 1)
	env.Equal(7, fr.Totals.Maxima[ttinterp.MaxPoint])
	fr, err = AnalyzeFont(context.Background(), env.font, Options{SkipGlyphs: true})
	env.Require().NoError(err)
	env.Empty(fr.Glyphs)
}

func (env *FontCheckTestEnviron) TestCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := AnalyzeFunctions(ctx, env.font, Options{})
	env.ErrorIs(err, context.Canceled)
}

func (env *FontCheckTestEnviron) TestGoRegular() {
	f, err := FromBinary(goregular.TTF)
	env.Require().NoError(err)
	a, err := NewAnalyzer(f, Options{MaxSteps: 20000})
	env.Require().NoError(err)
	fr, err := a.Report(context.Background())
	env.Require().NoError(err)
	env.Len(fr.Functions, len(a.FunctionNumbers()))
	for _, g := range fr.Glyphs {
		env.NotEqual(ttinterp.Running, g.Halt, "glyph %d", g.GID)
	}
}
