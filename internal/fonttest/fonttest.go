/*
Package fonttest builds minimal in-memory TrueType table sets for tests.

Only the tables used for hint analysis are produced: 'head', 'maxp', 'loca',
'glyf', 'fpgm', 'prep' and 'cvt '. Glyph outlines carry no coordinates.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package fonttest

import (
	"encoding/binary"

	"github.com/npillmayer/tthints/internal/fontload"
)

// Glyph describes a test glyph. A glyph with Components is composite,
// otherwise EndPoints lists the last point index of each contour.
type Glyph struct {
	EndPoints    []uint16
	Components   []uint16
	Instructions []byte
}

// Font describes a test font.
type Font struct {
	FontProgram  []byte
	CVTProgram   []byte
	CVT          []int16
	Glyphs       []Glyph
	LongLoca     bool
	Twilight     uint16
	Storage      uint16
	FunctionDefs uint16
	StackDepth   uint16
}

// Tables assembles the raw tables of f. 'fpgm', 'prep' and 'cvt ' are only
// present if f carries data for them.
func (f Font) Tables() fontload.TableMap {
	m := fontload.TableMap{
		"head": f.head(),
		"maxp": f.maxp(),
	}
	m["loca"], m["glyf"] = f.glyphData()
	if f.FontProgram != nil {
		m["fpgm"] = f.FontProgram
	}
	if f.CVTProgram != nil {
		m["prep"] = f.CVTProgram
	}
	if f.CVT != nil {
		cvt := make([]byte, 0, 2*len(f.CVT))
		for _, v := range f.CVT {
			cvt = binary.BigEndian.AppendUint16(cvt, uint16(v))
		}
		m["cvt "] = cvt
	}
	return m
}

func (f Font) head() []byte {
	b := make([]byte, 54)
	binary.BigEndian.PutUint32(b[0:], 0x00010000)
	binary.BigEndian.PutUint32(b[12:], 0x5F0F3CF5)
	binary.BigEndian.PutUint16(b[18:], 1000)
	if f.LongLoca {
		binary.BigEndian.PutUint16(b[50:], 1)
	}
	return b
}

func (f Font) maxp() []byte {
	b := make([]byte, 32)
	binary.BigEndian.PutUint32(b[0:], 0x00010000)
	binary.BigEndian.PutUint16(b[4:], uint16(len(f.Glyphs)))
	var points, contours uint16
	for _, g := range f.Glyphs {
		if n := len(g.EndPoints); n > 0 {
			points = max(points, g.EndPoints[n-1]+1)
			contours = max(contours, uint16(n))
		}
	}
	binary.BigEndian.PutUint16(b[6:], points)
	binary.BigEndian.PutUint16(b[8:], contours)
	binary.BigEndian.PutUint16(b[14:], 2)
	binary.BigEndian.PutUint16(b[16:], f.Twilight)
	binary.BigEndian.PutUint16(b[18:], f.Storage)
	binary.BigEndian.PutUint16(b[20:], f.FunctionDefs)
	binary.BigEndian.PutUint16(b[24:], f.StackDepth)
	return b
}

func (f Font) glyphData() (loca, glyf []byte) {
	offsets := make([]int, 0, len(f.Glyphs)+1)
	for _, g := range f.Glyphs {
		offsets = append(offsets, len(glyf))
		glyf = append(glyf, g.encode()...)
		if len(glyf)%2 == 1 {
			glyf = append(glyf, 0)
		}
	}
	offsets = append(offsets, len(glyf))
	for _, off := range offsets {
		if f.LongLoca {
			loca = binary.BigEndian.AppendUint32(loca, uint32(off))
		} else {
			loca = binary.BigEndian.AppendUint16(loca, uint16(off/2))
		}
	}
	return loca, glyf
}

func (g Glyph) encode() []byte {
	if len(g.Components) == 0 && len(g.EndPoints) == 0 {
		return nil
	}
	var b []byte
	if len(g.Components) > 0 {
		b = binary.BigEndian.AppendUint16(b, 0xFFFF) // numberOfContours = -1
		b = append(b, make([]byte, 8)...)
		for i, c := range g.Components {
			var flags uint16
			if i < len(g.Components)-1 {
				flags |= 0x0020
			} else if g.Instructions != nil {
				flags |= 0x0100
			}
			b = binary.BigEndian.AppendUint16(b, flags)
			b = binary.BigEndian.AppendUint16(b, c)
			b = append(b, 0, 0) // byte offsets
		}
		if g.Instructions != nil {
			b = binary.BigEndian.AppendUint16(b, uint16(len(g.Instructions)))
			b = append(b, g.Instructions...)
		}
		return b
	}
	b = binary.BigEndian.AppendUint16(b, uint16(len(g.EndPoints)))
	b = append(b, make([]byte, 8)...)
	for _, e := range g.EndPoints {
		b = binary.BigEndian.AppendUint16(b, e)
	}
	b = binary.BigEndian.AppendUint16(b, uint16(len(g.Instructions)))
	return append(b, g.Instructions...)
}
