package main

import (
	"fmt"

	"github.com/npillmayer/tthints/ttcode"
	"github.com/thatisuday/commando"
)

func runDisasmCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	conf := setup(flags)
	f := mustLoadFont(args["font"].Value)
	kind, n, err := parseProgram(args["program"].Value)
	if err != nil {
		fatalf("%v", err)
	}
	var prog *ttcode.Program
	switch kind {
	case "fpgm":
		prog = f.FontProgram
	case "prep":
		prog = f.CVTProgram
	case "fdef":
		opts := conf.Options()
		opts.SkipGlyphs = true
		body, ok := mustAnalyzer(f, opts).FunctionBody(n)
		if !ok {
			fatalf("function %d is not defined by the font program", n)
		}
		prog = body
	case "glyph":
		p, gl, err := f.GlyphProgram(n)
		if err != nil && p == nil {
			fatalf("%v", err)
		} else if err != nil {
			fmt.Printf("; %v\n", err)
		}
		fmt.Printf("; glyph %d: %d points, %d contours, composite=%v\n", n, gl.Points, gl.Contours, gl.Composite)
		prog = p
	}
	if prog.Len() == 0 {
		fmt.Printf("; %s: no instructions\n", kind)
		return
	}
	fmt.Printf("; %s, %d instructions\n", prog.ID, prog.Len())
	fmt.Print(prog.String())
}
