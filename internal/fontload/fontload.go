/*
Package fontload loads TrueType fonts and extracts the tables needed for hint
analysis: the font program, the control value program and table, 'maxp', and
per-glyph instructions from 'glyf'.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package fontload

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	ot "github.com/go-text/typesetting/font/opentype"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/sfnt"
)

// tracer traces with key 'tthints.fontload'.
func tracer() tracing.Trace {
	return tracing.Select("tthints.fontload")
}

// ScalableFont is a parsed scalable font with original bytes and SFNT view.
type ScalableFont struct {
	Fontname string
	Filepath string
	Binary   []byte
	SFNT     *sfnt.Font
	loader   *ot.Loader
	tables   map[string][]byte
}

// LoadOpenTypeFont loads a TrueType font from a file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	f, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(fontfile), err)
	}
	f.Filepath = fontfile
	if f.Fontname == "" {
		f.Fontname = filepath.Base(fontfile)
	}
	return f, nil
}

// ParseOpenTypeFont loads a TrueType font from memory.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes, tables: make(map[string][]byte)}
	f.SFNT, err = sfnt.Parse(f.Binary)
	if err != nil {
		return nil, err
	}
	f.loader, err = ot.NewLoader(bytes.NewReader(f.Binary))
	if err != nil {
		return nil, err
	}
	if f.Fontname, err = f.SFNT.Name(nil, sfnt.NameIDFull); err != nil {
		tracer().Debugf("font has no full name: %v", err)
		f.Fontname = ""
	}
	return f, nil
}

// Table returns the raw bytes of the table with the given 4-letter tag.
// ok is false if the font has no such table.
func (f *ScalableFont) Table(tag string) (b []byte, ok bool) {
	if b, ok = f.tables[tag]; ok {
		return b, true
	}
	if len(tag) != 4 {
		return nil, false
	}
	b, err := f.loader.RawTable(ot.NewTag(tag[0], tag[1], tag[2], tag[3]))
	if err != nil {
		tracer().Debugf("table '%s': %v", tag, err)
		return nil, false
	}
	f.tables[tag] = b
	return b, true
}
