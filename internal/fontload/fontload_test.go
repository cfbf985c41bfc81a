package fontload_test

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/tthints/internal/fontload"
	"github.com/npillmayer/tthints/internal/fonttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func TestParseGoRegular(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tthints.fontload")
	defer teardown()
	//
	f, err := fontload.ParseOpenTypeFont(goregular.TTF)
	require.NoError(t, err)
	assert.NotEmpty(t, f.Fontname)
	maxp, ok := f.MaxP()
	require.True(t, ok)
	assert.Greater(t, int(maxp.NumGlyphs), 0)
	_, ok = f.Table("xyz")
	assert.False(t, ok, "tags must have 4 letters")
	_, ok = f.Table("ZZZZ")
	assert.False(t, ok)
	g, err := fontload.NewGlyphs(f)
	require.NoError(t, err)
	assert.Equal(t, int(maxp.NumGlyphs), g.Len())
	for gid := range g.Len() {
		gl, err := g.Glyph(gid)
		require.NoError(t, err, "glyph %d", gid)
		if !gl.Composite {
			assert.LessOrEqual(t, gl.Points, int(maxp.MaxPoints), "glyph %d", gid)
		}
	}
}

func TestParseGarbage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "tthints.fontload")
	defer teardown()
	//
	_, err := fontload.ParseOpenTypeFont([]byte("not a font"))
	assert.Error(t, err)
	_, err = fontload.LoadOpenTypeFont("does-not-exist.ttf")
	assert.Error(t, err)
}

func TestDecodeMaxP(t *testing.T) {
	_, ok := fontload.DecodeMaxP([]byte{0, 0, 0x50})
	assert.False(t, ok)
	// version 0.5, CFF flavoured
	info, ok := fontload.DecodeMaxP([]byte{0, 0, 0x50, 0, 0, 7})
	assert.True(t, ok)
	assert.Equal(t, uint16(7), info.NumGlyphs)
	assert.False(t, info.HasExtendedProfile)
	tables := fonttest.Font{
		Glyphs:       make([]fonttest.Glyph, 3),
		Twilight:     4,
		Storage:      10,
		FunctionDefs: 12,
		StackDepth:   100,
	}.Tables()
	info, ok = fontload.DecodeMaxP(tables["maxp"])
	require.True(t, ok)
	assert.True(t, info.HasExtendedProfile)
	assert.Equal(t, uint16(3), info.NumGlyphs)
	assert.Equal(t, uint16(4), info.MaxTwilightPoints)
	assert.Equal(t, uint16(10), info.MaxStorage)
	assert.Equal(t, uint16(12), info.MaxFunctionDefs)
	assert.Equal(t, uint16(100), info.MaxStackElements)
}

func TestGlyphs(t *testing.T) {
	for _, long := range []bool{false, true} {
		tables := fonttest.Font{
			LongLoca: long,
			Glyphs: []fonttest.Glyph{
				{}, // .notdef without outline
				{EndPoints: []uint16{3, 7}, Instructions: []byte{0xB0, 1}},
				{EndPoints: []uint16{2}},
				{Components: []uint16{1, 2}, Instructions: []byte{0x18}},
				{Components: []uint16{3}},
			},
		}.Tables()
		g, err := fontload.NewGlyphs(tables)
		require.NoError(t, err)
		require.Equal(t, 5, g.Len())
		gl, err := g.Glyph(0)
		require.NoError(t, err)
		assert.Equal(t, fontload.Glyph{}, gl)
		gl, err = g.Glyph(1)
		require.NoError(t, err)
		assert.Equal(t, 2, gl.Contours)
		assert.Equal(t, 8, gl.Points)
		assert.Equal(t, []byte{0xB0, 1}, gl.Instructions)
		gl, err = g.Glyph(3)
		require.NoError(t, err)
		assert.True(t, gl.Composite)
		assert.Equal(t, []int{1, 2}, gl.Components)
		assert.Equal(t, 11, gl.Points)
		assert.Equal(t, []byte{0x18}, gl.Instructions)
		gl, err = g.Glyph(4)
		require.NoError(t, err)
		assert.Equal(t, 11, gl.Points)
		assert.Empty(t, gl.Instructions)
		_, err = g.Glyph(5)
		assert.Error(t, err)
	}
}

func TestSelfReferencingComposite(t *testing.T) {
	tables := fonttest.Font{
		Glyphs: []fonttest.Glyph{{Components: []uint16{0}}},
	}.Tables()
	g, err := fontload.NewGlyphs(tables)
	require.NoError(t, err)
	_, err = g.Glyph(0)
	assert.Error(t, err)
}

func TestWideComposites(t *testing.T) {
	wide := func(gid uint16, n int) fonttest.Glyph {
		var gl fonttest.Glyph
		for range n {
			gl.Components = append(gl.Components, gid)
		}
		return gl
	}
	// glyph 1 lists itself 300 times
	tables := fonttest.Font{
		Glyphs: []fonttest.Glyph{{EndPoints: []uint16{2}}, wide(1, 300)},
	}.Tables()
	g, err := fontload.NewGlyphs(tables)
	require.NoError(t, err)
	_, err = g.Glyph(1)
	assert.Error(t, err)
	// six levels of 50 copies of the glyph below
	glyphs := []fonttest.Glyph{{EndPoints: []uint16{2}}}
	for level := range 6 {
		glyphs = append(glyphs, wide(uint16(level), 50))
	}
	g, err = fontload.NewGlyphs(fonttest.Font{Glyphs: glyphs}.Tables())
	require.NoError(t, err)
	gl, err := g.Glyph(6)
	require.NoError(t, err)
	assert.Len(t, gl.Components, 50)
	assert.Equal(t, 3*50*50*50*50*50*50, gl.Points)
}

func TestMissingTables(t *testing.T) {
	tables := fonttest.Font{Glyphs: make([]fonttest.Glyph, 1)}.Tables()
	delete(tables, "glyf")
	_, err := fontload.NewGlyphs(tables)
	assert.Error(t, err)
	_, err = fontload.NewGlyphs(fontload.TableMap{})
	assert.Error(t, err)
}
