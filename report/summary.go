/*
Package report renders the results of a font analysis.

Results are first condensed into a Summary, a plain data structure holding
strings and numbers only. A Summary may be written as text for terminals, or
exported as YAML or CBOR for further processing.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package report

import (
	"slices"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/tthints/fontcheck"
	"github.com/npillmayer/tthints/ttinterp"
	"golang.org/x/exp/constraints"
)

// tracer traces with key 'tthints.report'.
func tracer() tracing.Trace {
	return tracing.Select("tthints.report")
}

// Summary is the condensed result of analyzing a font.
type Summary struct {
	Font      string            `yaml:"font" cbor:"1,keyasint"`
	Issues    []string          `yaml:"issues,omitempty" cbor:"2,keyasint,omitempty"`
	Functions []FunctionSummary `yaml:"functions,omitempty" cbor:"3,keyasint,omitempty"`
	Programs  []ProgramSummary  `yaml:"programs,omitempty" cbor:"4,keyasint,omitempty"`
	Maxima    map[string]int    `yaml:"maxima,omitempty" cbor:"5,keyasint,omitempty"`
	Effects   []EffectSummary   `yaml:"effects,omitempty" cbor:"6,keyasint,omitempty"`
	Severity  map[string]int    `yaml:"records,omitempty" cbor:"7,keyasint,omitempty"`
}

// ProgramSummary condenses the run of a program.
type ProgramSummary struct {
	Program string          `yaml:"program" cbor:"1,keyasint"`
	Halt    string          `yaml:"halt" cbor:"2,keyasint"`
	Steps   int             `yaml:"steps" cbor:"3,keyasint"`
	Maxima  map[string]int  `yaml:"maxima,omitempty" cbor:"4,keyasint,omitempty"`
	Records []RecordSummary `yaml:"records,omitempty" cbor:"5,keyasint,omitempty"`
	Issue   string          `yaml:"issue,omitempty" cbor:"6,keyasint,omitempty"`
}

// FunctionSummary condenses the analysis of a function.
type FunctionSummary struct {
	Number     int              `yaml:"number" cbor:"1,keyasint"`
	Args       int              `yaml:"args" cbor:"2,keyasint"`
	Results    int              `yaml:"results" cbor:"3,keyasint"`
	Categories map[int][]string `yaml:"categories,omitempty" cbor:"4,keyasint,omitempty"`
	Run        ProgramSummary   `yaml:"run" cbor:"5,keyasint"`
}

// RecordSummary is a log record of a run.
type RecordSummary struct {
	Severity string `yaml:"severity" cbor:"1,keyasint"`
	Code     string `yaml:"code" cbor:"2,keyasint"`
	Location string `yaml:"location" cbor:"3,keyasint"`
	Message  string `yaml:"message" cbor:"4,keyasint"`
}

// EffectSummary is a graphics state modification by a function.
type EffectSummary struct {
	CallStack string `yaml:"callstack" cbor:"1,keyasint"`
	Location  string `yaml:"location" cbor:"2,keyasint"`
	Field     string `yaml:"field" cbor:"3,keyasint"`
}

// Summarize condenses a font report. Records below severity minimum are left
// out of the program summaries, but are counted.
func Summarize(fr *fontcheck.FontReport, minimum ttinterp.Severity) *Summary {
	s := &Summary{
		Font:     fr.Name,
		Issues:   slices.Clone(fr.Issues),
		Severity: make(map[string]int),
	}
	add := func(pr *fontcheck.ProgramReport, issue string) ProgramSummary {
		ps := summarizeProgram(pr, minimum)
		ps.Issue = issue
		for _, r := range pr.Records {
			s.Severity[r.Severity.String()]++
		}
		return ps
	}
	for _, pr := range []*fontcheck.ProgramReport{fr.FontProgram, fr.Prep} {
		if pr != nil {
			s.Programs = append(s.Programs, add(pr, ""))
		}
	}
	for _, f := range fr.Functions {
		s.Functions = append(s.Functions, FunctionSummary{
			Number:     f.Number,
			Args:       f.Signature.Args,
			Results:    f.Signature.Results,
			Categories: f.Signature.Categories,
			Run:        add(&f.ProgramReport, ""),
		})
	}
	for _, g := range fr.Glyphs {
		if g.Program == "" {
			continue // undecodable glyph, listed in issues
		}
		s.Programs = append(s.Programs, add(&g.ProgramReport, g.Issue))
	}
	if fr.Totals != nil {
		s.Maxima = fr.Totals.Maxima
		s.Effects = summarizeEffects(fr.Totals)
	}
	tracer().Debugf("summary of %q: %d functions, %d programs", s.Font, len(s.Functions), len(s.Programs))
	return s
}

func summarizeProgram(pr *fontcheck.ProgramReport, minimum ttinterp.Severity) ProgramSummary {
	ps := ProgramSummary{
		Program: pr.Program,
		Halt:    pr.Halt.String(),
		Steps:   pr.Steps,
	}
	if pr.Stats != nil && len(pr.Stats.Maxima) > 0 {
		ps.Maxima = pr.Stats.Maxima
	}
	for _, r := range pr.Records {
		if r.Severity < minimum {
			continue
		}
		ps.Records = append(ps.Records, RecordSummary{
			Severity: r.Severity.String(),
			Code:     r.Code,
			Location: r.Loc.String(),
			Message:  r.Message,
		})
	}
	return ps
}

func summarizeEffects(stats *ttinterp.Statistics) []EffectSummary {
	var effects []EffectSummary
	for _, e := range stats.SortedEffects() {
		effects = append(effects, EffectSummary{
			CallStack: e.CallStack,
			Location:  e.Loc.String(),
			Field:     e.Field.String(),
		})
	}
	return effects
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
