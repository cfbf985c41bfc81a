package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tthints/fontcheck"
	"github.com/npillmayer/tthints/provenance"
	"github.com/npillmayer/tthints/ttinterp"
	"github.com/stretchr/testify/suite"
	"golang.org/x/text/language"
)

// --- Test Suite Preparation ------------------------------------------------

type ReportTestEnviron struct {
	suite.Suite
	summary *Summary
}

// listen for 'go test' command --> run test methods
func TestReport(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tthints.report")
	defer teardown()
	suite.Run(t, new(ReportTestEnviron))
}

// run once, before test suite methods
func (env *ReportTestEnviron) SetupSuite() {
	env.summary = Summarize(testReport(), ttinterp.SeverityWarning)
}

func testReport() *fontcheck.FontReport {
	fnStats := ttinterp.NewStatistics()
	fnStats.NoteMax(ttinterp.MaxPoint, 7)
	totals := ttinterp.NewStatistics()
	totals.Merge(fnStats)
	totals.NoteEffect(ttinterp.GSEffect{
		CallStack: "1",
		Loc:       provenance.Location{Program: "fpgm", PC: 4},
		Field:     ttinterp.FieldRoundState,
	})
	return &fontcheck.FontReport{
		Name:   "Test Sans",
		Issues: []string{"glyph 3: inline data truncated"},
		FontProgram: &fontcheck.ProgramReport{
			Program: "fpgm",
			Halt:    ttinterp.Completed,
			Steps:   12345,
			Stats:   ttinterp.NewStatistics(),
		},
		Functions: []fontcheck.FunctionReport{{
			Number: 2,
			Signature: ttinterp.Signature{
				Args:       3,
				Results:    1,
				Categories: map[int][]string{0: {ttinterp.ArgPointIndex}},
			},
			ProgramReport: fontcheck.ProgramReport{
				Program: "fpgm",
				Halt:    ttinterp.Completed,
				Steps:   2,
				Stats:   fnStats,
				Records: []ttinterp.Record{
					{
						Severity: ttinterp.SeverityError,
						Code:     ttinterp.CodeIllegalPoint,
						Loc:      provenance.Location{Program: "fpgm", PC: 9},
						Message:  "MDAP[0]: point index 9 out of range, size is 8",
					},
					{
						Severity: ttinterp.SeverityDebug,
						Code:     ttinterp.CodeUnsupported,
						Message:  "not shown",
					},
				},
			},
		}},
		Glyphs: []fontcheck.GlyphReport{
			{GID: 3, Issue: "glyph 3: inline data truncated"},
			{GID: 4, ProgramReport: fontcheck.ProgramReport{
				Program: "glyph 4",
				Halt:    ttinterp.StackUnderflow,
				Steps:   1,
				Stats:   ttinterp.NewStatistics(),
			}},
		},
		Totals: totals,
	}
}

// --- Tests -----------------------------------------------------------------

func (env *ReportTestEnviron) TestSummarize() {
	s := env.summary
	env.Equal("Test Sans", s.Font)
	env.Require().Len(s.Functions, 1)
	f := s.Functions[0]
	env.Equal(2, f.Number)
	env.Equal(3, f.Args)
	env.Equal(map[string]int{ttinterp.MaxPoint: 7}, f.Run.Maxima)
	env.Require().Len(f.Run.Records, 1, "debug record must be filtered")
	env.Equal("index 9 in fpgm", f.Run.Records[0].Location)
	env.Equal([]string{"fpgm", "glyph 4"}, []string{s.Programs[0].Program, s.Programs[1].Program})
	env.Equal("stack underflow", s.Programs[1].Halt)
	env.Equal(map[string]int{"ERROR": 1, "DEBUG": 1}, s.Severity)
	env.Equal([]EffectSummary{{CallStack: "1", Location: "index 4 in fpgm", Field: "roundState"}}, s.Effects)
}

func (env *ReportTestEnviron) TestWriteText() {
	var buf bytes.Buffer
	env.Require().NoError(WriteText(&buf, env.summary, language.German))
	out := buf.String()
	env.T().Log(out)
	for _, want := range []string{
		"Font Test Sans",
		"  - glyph 3: inline data truncated",
		"0:pointIndex",
		"12.345",
		"point=7",
		"Records: 1 debug, 1 error",
		"function 2, index 9 in fpgm",
	} {
		env.Contains(out, want)
	}
	env.NotContains(out, "not shown")
	env.True(strings.HasSuffix(out, "\n"))
}

func (env *ReportTestEnviron) TestExportRoundTrip() {
	opts := cmpopts.EquateEmpty()
	var buf bytes.Buffer
	env.Require().NoError(WriteYAML(&buf, env.summary))
	env.Contains(buf.String(), "font: Test Sans")
	s, err := ReadYAML(&buf)
	env.Require().NoError(err)
	env.Empty(cmp.Diff(env.summary, s, opts))
	buf.Reset()
	env.Require().NoError(WriteCBOR(&buf, env.summary))
	first := bytes.Clone(buf.Bytes())
	s, err = ReadCBOR(&buf)
	env.Require().NoError(err)
	env.Empty(cmp.Diff(env.summary, s, opts))
	buf.Reset()
	env.Require().NoError(WriteCBOR(&buf, s))
	env.Equal(first, buf.Bytes(), "canonical encoding must be deterministic")
}
