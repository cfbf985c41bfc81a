package fontload

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Tables gives access to raw font tables by tag.
type Tables interface {
	Table(tag string) ([]byte, bool)
}

// TableMap is a set of raw tables held in memory.
type TableMap map[string][]byte

// Table implements Tables.
func (m TableMap) Table(tag string) ([]byte, bool) {
	b, ok := m[tag]
	return b, ok
}

var errGlyphRange = errors.New("glyph data out of range")

// Glyph is the decoded header of a glyph description, with its instructions.
type Glyph struct {
	Contours     int   // number of contours, 0 for composite glyphs
	Points       int   // number of outline points, without phantom points
	Composite    bool
	Components   []int // glyph IDs of the components of a composite glyph
	Instructions []byte
}

// Glyphs decodes glyph descriptions from tables 'loca' and 'glyf'.
type Glyphs struct {
	offsets []uint32 // numGlyphs+1 offsets into glyf
	glyf    []byte
}

// Composite glyph flags
const (
	arg1And2AreWords   = 0x0001
	weHaveAScale       = 0x0008
	moreComponents     = 0x0020
	weHaveAnXAndYScale = 0x0040
	weHaveATwoByTwo    = 0x0080
	weHaveInstructions = 0x0100
)

// maxComponentDepth bounds the nesting of composite glyphs.
const maxComponentDepth = 8

// NewGlyphs prepares glyph access for a font. It needs tables 'head', 'maxp',
// 'loca' and 'glyf'.
func NewGlyphs(t Tables) (*Glyphs, error) {
	head, ok := t.Table("head")
	if !ok || len(head) < 54 {
		return nil, errors.New("table 'head' missing or too short")
	}
	b, ok := t.Table("maxp")
	if !ok {
		return nil, errors.New("table 'maxp' missing")
	}
	maxp, ok := DecodeMaxP(b)
	if !ok {
		return nil, errors.New("table 'maxp' too short")
	}
	loca, ok := t.Table("loca")
	if !ok {
		return nil, errors.New("table 'loca' missing")
	}
	glyf, ok := t.Table("glyf")
	if !ok {
		return nil, errors.New("table 'glyf' missing")
	}
	n := int(maxp.NumGlyphs) + 1
	g := &Glyphs{offsets: make([]uint32, n), glyf: glyf}
	longFormat := int16(binary.BigEndian.Uint16(head[50:52])) != 0
	if longFormat {
		if len(loca) < 4*n {
			return nil, fmt.Errorf("table 'loca' too short for %d glyphs", n-1)
		}
		for i := range g.offsets {
			g.offsets[i] = binary.BigEndian.Uint32(loca[4*i:])
		}
	} else {
		if len(loca) < 2*n {
			return nil, fmt.Errorf("table 'loca' too short for %d glyphs", n-1)
		}
		for i := range g.offsets {
			g.offsets[i] = 2 * uint32(binary.BigEndian.Uint16(loca[2*i:]))
		}
	}
	return g, nil
}

// Len returns the number of glyphs.
func (g *Glyphs) Len() int {
	return len(g.offsets) - 1
}

// Glyph decodes the glyph with ID gid. Empty glyphs yield a zero Glyph.
//
// The points of a composite glyph are summed over its components. Each
// component glyph is decoded once per call, and components referring back
// to a glyph being decoded are an error.
func (g *Glyphs) Glyph(gid int) (Glyph, error) {
	w := componentWalk{glyphs: g, points: make(map[int]int), active: make(map[int]bool)}
	return w.glyph(gid, 0)
}

var errComponentCycle = errors.New("composite glyph references itself")

// componentWalk decodes a glyph together with its components.
type componentWalk struct {
	glyphs *Glyphs
	points map[int]int  // point counts of components decoded so far
	active map[int]bool // glyphs being decoded
}

func (w *componentWalk) glyph(gid int, depth int) (Glyph, error) {
	var gl Glyph
	if w.active[gid] {
		return gl, fmt.Errorf("glyph %d: %w", gid, errComponentCycle)
	}
	data, err := w.glyphs.data(gid)
	if err != nil || len(data) == 0 {
		return gl, err
	}
	if len(data) < 10 {
		return gl, fmt.Errorf("glyph %d: %w", gid, errGlyphRange)
	}
	w.active[gid] = true
	defer delete(w.active, gid)
	contours := int(int16(binary.BigEndian.Uint16(data)))
	if contours >= 0 {
		err = decodeSimple(&gl, contours, data[10:])
	} else {
		err = w.decodeComposite(&gl, data[10:], depth)
	}
	if err != nil {
		return gl, fmt.Errorf("glyph %d: %w", gid, err)
	}
	return gl, nil
}

func (w *componentWalk) pointsOf(gid int, depth int) (int, error) {
	if n, ok := w.points[gid]; ok {
		return n, nil
	}
	gl, err := w.glyph(gid, depth)
	if err != nil {
		return 0, err
	}
	w.points[gid] = gl.Points
	return gl.Points, nil
}

func (g *Glyphs) data(gid int) ([]byte, error) {
	if gid < 0 || gid >= g.Len() {
		return nil, fmt.Errorf("glyph %d: no such glyph", gid)
	}
	start, end := g.offsets[gid], g.offsets[gid+1]
	if start > end || int(end) > len(g.glyf) {
		return nil, fmt.Errorf("glyph %d: %w", gid, errGlyphRange)
	}
	return g.glyf[start:end], nil
}

func decodeSimple(gl *Glyph, contours int, b []byte) error {
	gl.Contours = contours
	if len(b) < 2*contours+2 {
		return errGlyphRange
	}
	if contours > 0 {
		gl.Points = int(binary.BigEndian.Uint16(b[2*(contours-1):])) + 1
	}
	b = b[2*contours:]
	n := int(binary.BigEndian.Uint16(b))
	if len(b) < 2+n {
		return errGlyphRange
	}
	gl.Instructions = b[2 : 2+n]
	return nil
}

func (w *componentWalk) decodeComposite(gl *Glyph, b []byte, depth int) error {
	gl.Composite = true
	instructions := false
	for {
		if len(b) < 4 {
			return errGlyphRange
		}
		flags := binary.BigEndian.Uint16(b)
		gl.Components = append(gl.Components, int(binary.BigEndian.Uint16(b[2:])))
		size := 4 + 2
		if flags&arg1And2AreWords != 0 {
			size += 2
		}
		switch {
		case flags&weHaveAScale != 0:
			size += 2
		case flags&weHaveAnXAndYScale != 0:
			size += 4
		case flags&weHaveATwoByTwo != 0:
			size += 8
		}
		if len(b) < size {
			return errGlyphRange
		}
		b = b[size:]
		instructions = instructions || flags&weHaveInstructions != 0
		if flags&moreComponents == 0 {
			break
		}
	}
	if instructions {
		if len(b) < 2 {
			return errGlyphRange
		}
		n := int(binary.BigEndian.Uint16(b))
		if len(b) < 2+n {
			return errGlyphRange
		}
		gl.Instructions = b[2 : 2+n]
	}
	if depth >= maxComponentDepth {
		return errors.New("composite glyphs nested too deep")
	}
	for _, c := range gl.Components {
		n, err := w.pointsOf(c, depth+1)
		if err != nil {
			return err
		}
		gl.Points += n
	}
	return nil
}
