/*
Package tthints analyzes the hint programs of TrueType fonts.

Hint programs are bytecode run by a font rasterizer to fit outlines to the
pixel grid. This module interprets them abstractly: every value is a set of
possible integers, so a program can be analyzed without knowing the point
size, the resolution or the arguments a function is called with. The
analysis reports illegal operands, the ranges of indices a program uses,
and the graphics state changes which escape from functions.

Sub-packages:

▪︎ triple: sets of integers as unions of arithmetic progressions.

▪︎ provenance: the history of how each stack value was computed.

▪︎ ttcode: decoding of TrueType instructions.

▪︎ ttinterp: the abstract interpreter.

▪︎ fontcheck: analysis of all programs of a font.

▪︎ report: summaries in text, YAML and CBOR.

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package tthints

import (
	"context"
	"os"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/tthints/fontcheck"
	"github.com/npillmayer/tthints/report"
	"github.com/npillmayer/tthints/ttinterp"
	"golang.org/x/image/font/sfnt"
)

// tracer writes to trace with key 'tthints.fontcheck'
func tracer() tracing.Trace {
	return tracing.Select("tthints.fontcheck")
}

// AnalyzeFile loads the TrueType font at path and analyzes all of its hint
// programs.
func AnalyzeFile(ctx context.Context, path string, opts fontcheck.Options) (*fontcheck.FontReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return AnalyzeBinary(ctx, data, opts)
}

// AnalyzeBinary analyzes all hint programs of a font given as raw SFNT bytes.
// Fonts without a full name are named after their family.
func AnalyzeBinary(ctx context.Context, data []byte, opts fontcheck.Options) (*fontcheck.FontReport, error) {
	f, err := fontcheck.FromBinary(data)
	if err != nil {
		return nil, err
	}
	if family, subfamily := FamilyName(data); f.Name == "" && family != "" {
		f.Name = family
		if subfamily != "" {
			f.Name += " " + subfamily
		}
	}
	tracer().Infof("analyzing font %s", f.Name)
	return fontcheck.AnalyzeFont(ctx, f, opts)
}

// Summarize analyzes a font file and condenses the result, keeping records
// of at least severity minimum.
func Summarize(ctx context.Context, path string, opts fontcheck.Options,
	minimum ttinterp.Severity) (*report.Summary, error) {
	//
	fr, err := AnalyzeFile(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	return report.Summarize(fr, minimum), nil
}

// FamilyName extracts family and subfamily names from a font's `name` table.
//
// Returned values are empty if the font cannot be parsed or if no matching
// records exist.
func FamilyName(data []byte) (family, subfamily string) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return "", ""
	}
	var buf sfnt.Buffer
	family, _ = f.Name(&buf, sfnt.NameIDFamily)
	subfamily, _ = f.Name(&buf, sfnt.NameIDSubfamily)
	return
}
