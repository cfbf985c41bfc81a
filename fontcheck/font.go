/*
Package fontcheck analyzes the hint programs of a TrueType font.

The font program is run first to discover the function definitions. Each
function is then analyzed in isolation, entered with a stack of unknown
arguments; the analyses run concurrently. The control value program and the
glyph programs are analyzed with the functions available for CALL.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package fontcheck

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/tthints/internal/fontload"
	"github.com/npillmayer/tthints/ttcode"
	"github.com/npillmayer/tthints/ttinterp"
)

// tracer traces with key 'tthints.fontcheck'.
func tracer() tracing.Trace {
	return tracing.Select("tthints.fontcheck")
}

// Font holds the hinting related parts of a TrueType font. It is read-only
// after creation and may be shared between goroutines.
type Font struct {
	Name        string
	MaxP        fontload.MaxP
	FontProgram *ttcode.Program // nil if the font has no 'fpgm'
	CVTProgram  *ttcode.Program // nil if the font has no 'prep'
	CVTSize     int             // number of entries in 'cvt '
	Issues      []error         // problems found while loading
	glyphs      *fontload.Glyphs
}

// Load loads a font file.
func Load(path string) (*Font, error) {
	sf, err := fontload.LoadOpenTypeFont(path)
	if err != nil {
		return nil, err
	}
	return FromTables(sf.Fontname, sf)
}

// FromBinary reads a font from memory.
func FromBinary(data []byte) (*Font, error) {
	sf, err := fontload.ParseOpenTypeFont(data)
	if err != nil {
		return nil, err
	}
	return FromTables(sf.Fontname, sf)
}

// FromTables extracts the hinting data from a set of raw tables. Missing hint
// tables are not an error. Malformed byte code is decoded as far as possible
// and noted in Font.Issues.
func FromTables(name string, tables fontload.Tables) (*Font, error) {
	f := &Font{Name: name}
	b, ok := tables.Table("maxp")
	if !ok {
		return nil, fmt.Errorf("font %q: table 'maxp' missing", name)
	}
	if f.MaxP, ok = fontload.DecodeMaxP(b); !ok {
		return nil, fmt.Errorf("font %q: table 'maxp' too short", name)
	}
	f.FontProgram = f.decode(tables, "fpgm")
	f.CVTProgram = f.decode(tables, "prep")
	if cvt, ok := tables.Table("cvt "); ok {
		f.CVTSize = len(cvt) / 2
	}
	if _, ok := tables.Table("glyf"); ok {
		g, err := fontload.NewGlyphs(tables)
		if err != nil {
			f.Issues = append(f.Issues, err)
		}
		f.glyphs = g
	}
	tracer().Debugf("font %q: %d glyphs, fpgm=%v, prep=%v, %d cvt entries", name,
		f.MaxP.NumGlyphs, f.FontProgram != nil, f.CVTProgram != nil, f.CVTSize)
	return f, nil
}

func (f *Font) decode(tables fontload.Tables, tag string) *ttcode.Program {
	code, ok := tables.Table(tag)
	if !ok {
		return nil
	}
	prog, err := ttcode.Decode(tag, code)
	if err != nil {
		tracer().Infof("font %q: %v", f.Name, err)
		f.Issues = append(f.Issues, err)
	}
	return prog
}

// NumGlyphs returns the number of glyphs with outline data access, 0 if the
// font has no 'glyf' table.
func (f *Font) NumGlyphs() int {
	if f.glyphs == nil {
		return 0
	}
	return f.glyphs.Len()
}

// Glyph decodes glyph gid.
func (f *Font) Glyph(gid int) (fontload.Glyph, error) {
	if f.glyphs == nil {
		return fontload.Glyph{}, fmt.Errorf("font %q has no TrueType outlines", f.Name)
	}
	return f.glyphs.Glyph(gid)
}

// GlyphProgram decodes the instructions of glyph gid. The program is nil if
// the glyph has no instructions.
func (f *Font) GlyphProgram(gid int) (*ttcode.Program, fontload.Glyph, error) {
	gl, err := f.Glyph(gid)
	if err != nil || len(gl.Instructions) == 0 {
		return nil, gl, err
	}
	prog, err := ttcode.Decode(fmt.Sprintf("glyph %d", gid), gl.Instructions)
	return prog, gl, err
}

// phantomPoints is the number of points the rasterizer adds to each glyph.
const phantomPoints = 4

// extra returns the bounds for operand checks. The glyph zone is sized for the
// largest glyph unless points is positive.
func (f *Font) extra(points int) ttinterp.ExtraInfo {
	m := f.MaxP
	x := ttinterp.ExtraInfo{CVTSize: f.CVTSize}
	if !m.HasExtendedProfile {
		return x
	}
	if points <= 0 {
		points = int(max(m.MaxPoints, m.MaxCompositePoints))
	}
	if points > 0 {
		x.GlyphPoints = points + phantomPoints
	}
	x.TwilightPoints = int(m.MaxTwilightPoints)
	x.StorageSize = int(m.MaxStorage)
	x.FunctionCount = int(m.MaxFunctionDefs)
	return x
}
