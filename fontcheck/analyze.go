package fontcheck

import (
	"context"
	"fmt"
	"maps"
	"runtime"
	"slices"

	"github.com/npillmayer/tthints/triple"
	"github.com/npillmayer/tthints/ttcode"
	"github.com/npillmayer/tthints/ttinterp"
	"golang.org/x/sync/errgroup"
)

// DefaultEntryStackDepth is the number of unknown arguments a function is
// entered with if Options.EntryStackDepth is 0.
const DefaultEntryStackDepth = 32

// Options configure an analysis. The zero value is usable.
type Options struct {
	MaxSteps        int // per run, see ttinterp.Options
	MaxCallDepth    int
	EntryStackDepth int // arguments available to a function under analysis
	Workers         int // concurrent runs, defaults to GOMAXPROCS
	SkipGlyphs      bool
	KeepStates      bool // keep the final state of every run in its report
	// Logger, if set, receives every record in addition to the reports.
	// It must be safe for concurrent use.
	Logger ttinterp.Logger
}

func (o Options) withDefaults() Options {
	if o.EntryStackDepth <= 0 {
		o.EntryStackDepth = DefaultEntryStackDepth
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// ProgramReport is the outcome of one run.
type ProgramReport struct {
	Program string
	Halt    ttinterp.HaltReason
	Steps   int
	Stats   *ttinterp.Statistics
	Records []ttinterp.Record
	GS      ttinterp.GraphicsState // graphics state after the run
	State   *ttinterp.State        // final state, if Options.KeepStates is set
}

// FunctionReport is the outcome of analyzing one function in isolation.
type FunctionReport struct {
	Number    int
	Signature ttinterp.Signature
	ProgramReport
}

// GlyphReport is the outcome of running the instructions of one glyph.
type GlyphReport struct {
	GID       int
	Points    int
	Composite bool
	Issue     string // malformed glyph data or byte code
	ProgramReport
}

// FontReport collects all analyses of a font.
type FontReport struct {
	Name        string
	Issues      []string
	FontProgram *ProgramReport   // nil without 'fpgm'
	Functions   []FunctionReport // ordered by function number
	Prep        *ProgramReport   // nil without 'prep'
	Glyphs      []GlyphReport    // glyphs with instructions, ordered by ID
	Totals      *ttinterp.Statistics
}

// Analyzer analyzes the programs of a single font. Creating it runs the font
// program and the control value program; all other analyses use their
// results. An Analyzer may be used from several goroutines.
type Analyzer struct {
	font      *Font
	opts      Options
	functions map[int]*ttcode.Program
	fpgm      *ProgramReport
	prep      *ProgramReport
	gs        ttinterp.GraphicsState // left behind by prep
}

// NewAnalyzer prepares the analysis of f.
func NewAnalyzer(f *Font, opts Options) (*Analyzer, error) {
	a := &Analyzer{
		font:      f,
		opts:      opts.withDefaults(),
		functions: map[int]*ttcode.Program{},
		gs:        ttinterp.DefaultGraphicsState(),
	}
	if f.FontProgram != nil {
		st, rep, err := a.run(context.Background(), f.FontProgram, nil, a.runOptions(nil))
		if err != nil {
			return nil, err
		}
		a.fpgm, a.functions = rep, st.Defined
		tracer().Infof("font program defines %d functions", len(a.functions))
	}
	if f.CVTProgram != nil {
		st, rep, err := a.run(context.Background(), f.CVTProgram, nil, a.runOptions(nil))
		if err != nil {
			return nil, err
		}
		a.prep, a.gs = rep, st.GS
	}
	return a, nil
}

// FunctionTable runs a font program and returns the functions it defines.
func FunctionTable(fpgm *ttcode.Program, extra ttinterp.ExtraInfo) (map[int]*ttcode.Program, error) {
	st, err := ttinterp.Run(ttinterp.NewState(fpgm), ttinterp.Options{Extra: extra})
	if err != nil {
		return nil, err
	}
	return st.Defined, nil
}

// Font returns the font under analysis.
func (a *Analyzer) Font() *Font {
	return a.font
}

// FunctionNumbers returns the numbers of the functions defined by the font
// program, ascending.
func (a *Analyzer) FunctionNumbers() []int {
	return slices.Sorted(maps.Keys(a.functions))
}

// FunctionBody returns the instructions of function n.
func (a *Analyzer) FunctionBody(n int) (*ttcode.Program, bool) {
	body, ok := a.functions[n]
	return body, ok
}

// FontProgram returns the report of the font program run, nil if there is
// no font program.
func (a *Analyzer) FontProgram() *ProgramReport {
	return a.fpgm
}

// Prep returns the report of the control value program run, nil if there is
// no control value program.
func (a *Analyzer) Prep() *ProgramReport {
	return a.prep
}

// Function analyzes function n in isolation.
func (a *Analyzer) Function(ctx context.Context, n int) (FunctionReport, error) {
	body, ok := a.functions[n]
	if !ok {
		return FunctionReport{}, fmt.Errorf("function %d is not defined", n)
	}
	depth := a.opts.EntryStackDepth
	seed := make([]triple.Collection, depth)
	for i := range seed {
		seed[i] = triple.Top()
	}
	at := ttinterp.NewArgTracer(depth)
	opts := a.runOptions([]int{n})
	opts.ArgTracer = at
	_, rep, err := a.run(ctx, body, []ttinterp.StateOption{ttinterp.WithStack(seed...)}, opts)
	if err != nil {
		return FunctionReport{}, err
	}
	return FunctionReport{Number: n, Signature: at.Signature(), ProgramReport: *rep}, nil
}

// Functions analyzes all functions, concurrently.
func (a *Analyzer) Functions(ctx context.Context) ([]FunctionReport, error) {
	numbers := a.FunctionNumbers()
	reports := make([]FunctionReport, len(numbers))
	err := a.fanOut(ctx, len(numbers), func(ctx context.Context, i int) (err error) {
		reports[i], err = a.Function(ctx, numbers[i])
		return err
	})
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// Glyph runs the instructions of glyph gid, starting with the graphics state
// left by the control value program. A glyph without instructions yields a
// report with an empty program name.
func (a *Analyzer) Glyph(ctx context.Context, gid int) (GlyphReport, error) {
	prog, gl, err := a.font.GlyphProgram(gid)
	rep := GlyphReport{GID: gid, Points: gl.Points, Composite: gl.Composite}
	if prog == nil {
		return rep, err
	}
	if err != nil {
		tracer().Infof("glyph %d: %v", gid, err)
		rep.Issue = err.Error()
	}
	opts := a.runOptions(nil)
	opts.Extra = a.font.extra(gl.Points)
	_, pr, err := a.run(ctx, prog, []ttinterp.StateOption{ttinterp.WithGraphicsState(a.gs)}, opts)
	if err != nil {
		return rep, err
	}
	rep.ProgramReport = *pr
	return rep, nil
}

// Glyphs runs the instructions of all glyphs, concurrently. Glyphs without
// instructions are left out. Glyphs which cannot be decoded are reported
// with an Issue and no program.
func (a *Analyzer) Glyphs(ctx context.Context) ([]GlyphReport, error) {
	n := a.font.NumGlyphs()
	reports := make([]GlyphReport, n)
	err := a.fanOut(ctx, n, func(ctx context.Context, gid int) error {
		rep, err := a.Glyph(ctx, gid)
		if err != nil {
			tracer().Infof("skipping glyph %d: %v", gid, err)
			rep.Issue = err.Error()
		}
		reports[gid] = rep
		return ctx.Err()
	})
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(reports, func(r GlyphReport) bool {
		return r.Program == "" && r.Issue == ""
	}), nil
}

// Report runs all analyses and aggregates them.
func (a *Analyzer) Report(ctx context.Context) (*FontReport, error) {
	fr := &FontReport{
		Name:        a.font.Name,
		FontProgram: a.fpgm,
		Prep:        a.prep,
		Totals:      ttinterp.NewStatistics(),
	}
	var err error
	if fr.Functions, err = a.Functions(ctx); err != nil {
		return nil, err
	}
	if !a.opts.SkipGlyphs {
		if fr.Glyphs, err = a.Glyphs(ctx); err != nil {
			return nil, err
		}
	}
	for _, e := range a.font.Issues {
		fr.Issues = append(fr.Issues, e.Error())
	}
	for _, pr := range []*ProgramReport{fr.FontProgram, fr.Prep} {
		if pr != nil {
			fr.Totals.Merge(pr.Stats)
		}
	}
	for _, f := range fr.Functions {
		fr.Totals.Merge(f.Stats)
	}
	for _, g := range fr.Glyphs {
		if g.Issue != "" {
			fr.Issues = append(fr.Issues, g.Issue)
		}
		if g.Stats != nil {
			fr.Totals.Merge(g.Stats)
		}
	}
	return fr, nil
}

func (a *Analyzer) runOptions(entry []int) ttinterp.Options {
	return ttinterp.Options{
		EntryStack:   entry,
		Extra:        a.font.extra(0),
		MaxSteps:     a.opts.MaxSteps,
		MaxCallDepth: a.opts.MaxCallDepth,
		Functions:    a.functions,
	}
}

func (a *Analyzer) run(ctx context.Context, prog *ttcode.Program, init []ttinterp.StateOption,
	opts ttinterp.Options) (*ttinterp.State, *ProgramReport, error) {
	//
	collector := &ttinterp.Collector{Next: a.opts.Logger}
	if collector.Next == nil {
		collector.Next = ttinterp.TraceLogger{}
	}
	opts.Logger = collector
	opts.Context = ctx
	st, err := ttinterp.Run(ttinterp.NewState(prog, init...), opts)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", prog.ID, err)
	}
	pr := &ProgramReport{
		Program: prog.ID,
		Halt:    st.Halt,
		Steps:   st.Steps,
		Stats:   st.Stats,
		Records: collector.Records,
		GS:      st.GS,
	}
	if a.opts.KeepStates {
		pr.State = st
	}
	return st, pr, nil
}

// fanOut calls fn for 0…n-1 on at most Options.Workers goroutines. The first
// error cancels the remaining calls.
func (a *Analyzer) fanOut(ctx context.Context, n int, fn func(context.Context, int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)
	for i := range n {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			return fn(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// AnalyzeFunctions analyzes every function of f in isolation.
func AnalyzeFunctions(ctx context.Context, f *Font, opts Options) ([]FunctionReport, error) {
	a, err := NewAnalyzer(f, opts)
	if err != nil {
		return nil, err
	}
	return a.Functions(ctx)
}

// AnalyzePrep runs the control value program of f. It returns nil if f has
// none.
func AnalyzePrep(f *Font, opts Options) (*ProgramReport, error) {
	a, err := NewAnalyzer(f, opts)
	if err != nil {
		return nil, err
	}
	return a.Prep(), nil
}

// AnalyzeGlyph runs the instructions of glyph gid of f.
func AnalyzeGlyph(ctx context.Context, f *Font, gid int, opts Options) (GlyphReport, error) {
	a, err := NewAnalyzer(f, opts)
	if err != nil {
		return GlyphReport{}, err
	}
	return a.Glyph(ctx, gid)
}

// AnalyzeFont runs all analyses on f.
func AnalyzeFont(ctx context.Context, f *Font, opts Options) (*FontReport, error) {
	a, err := NewAnalyzer(f, opts)
	if err != nil {
		return nil, err
	}
	return a.Report(ctx)
}
