package font

import (
	"testing"

	"github.com/npillmayer/inkmetrics/core"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

func TestParseGoFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "inkmetrics.fonts")
	defer teardown()
	//
	f, err := ParseOpenTypeFont(goregular.TTF)
	require.NoError(t, err)
	assert.Contains(t, f.Fontname, "Go")
	assert.Equal(t, 2048.0, f.UnitsPerEm())
	assert.Greater(t, f.Ascender(), 0.0)
	assert.Less(t, f.Descender(), 0.0)
	t.Logf("Go Regular: ascender=%g, descender=%g", f.Ascender(), f.Descender())
}

func TestParseMalformedFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "inkmetrics.fonts")
	defer teardown()
	//
	_, err := ParseOpenTypeFont(nil)
	assert.True(t, core.Is(err, core.EFONTPARSE))
	_, err = ParseOpenTypeFont([]byte("this is not a font at all, really not"))
	assert.True(t, core.Is(err, core.EFONTPARSE))
	_, err = LoadOpenTypeFont("./does/not/exist.ttf")
	assert.True(t, core.Is(err, core.EFONTUNAVAILABLE))
}

func TestAdvanceWidth(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "inkmetrics.fonts")
	defer teardown()
	//
	f := FallbackFont()
	assert.Equal(t, 0.0, f.AdvanceWidth("", 42))
	w := f.AdvanceWidth("AB", 100)
	assert.Greater(t, w, 0.0)
	assert.InDelta(t, 2*w, f.AdvanceWidth("AB", 200), 1e-9)
	assert.InDelta(t, f.AdvanceWidth("A", 100)+f.AdvanceWidth("B", 100), w, 1e-9)
	// uncovered runes are set with .notdef
	assert.GreaterOrEqual(t, f.AdvanceWidth("", 100), 0.0)
}

func TestMissingGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "inkmetrics.fonts")
	defer teardown()
	//
	f := FallbackFont()
	assert.Equal(t, "", f.MissingGlyphs("Hello World\n"))
	assert.Equal(t, "黄河", f.MissingGlyphs("黄河 Ab 黄"))
}

func TestGlyphPath(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "inkmetrics.fonts")
	defer teardown()
	//
	f := FallbackFont()
	assert.Equal(t, BBox{}, f.Path("", 0, 0, 42).BoundingBox())
	assert.Equal(t, BBox{}, f.Path(" ", 0, 0, 42).BoundingBox())
	box := f.Path("A", 0, 0, 100).BoundingBox()
	t.Logf("bbox of 'A' = %s", box)
	assert.Less(t, box.Y1, -50.0, "'A' should rise well above the baseline")
	assert.InDelta(t, 0.0, box.Y2, 0.5, "'A' should sit on the baseline")
	assert.Less(t, box.X2, f.AdvanceWidth("A", 100)+1)
	moved := f.Path("A", 10, 20, 100).BoundingBox()
	assert.InDelta(t, box.X1+10, moved.X1, 1e-9)
	assert.InDelta(t, box.Y1+20, moved.Y1, 1e-9)
	assert.InDelta(t, box.X2+10, moved.X2, 1e-9)
	assert.InDelta(t, box.Y2+20, moved.Y2, 1e-9)
}

func TestBoundingBoxCurves(t *testing.T) {
	quad := &GlyphPath{Segments: []Segment{
		{Op: sfnt.SegmentOpMoveTo, Args: [3]Point{{0, 0}}},
		{Op: sfnt.SegmentOpQuadTo, Args: [3]Point{{5, -10}, {10, 0}}},
	}}
	assert.Equal(t, BBox{0, -5, 10, 0}, quad.BoundingBox())
	cube := &GlyphPath{Segments: []Segment{
		{Op: sfnt.SegmentOpMoveTo, Args: [3]Point{{0, 0}}},
		{Op: sfnt.SegmentOpCubeTo, Args: [3]Point{{0, -10}, {10, -10}, {10, 0}}},
	}}
	b := cube.BoundingBox()
	assert.InDelta(t, -7.5, b.Y1, 1e-9)
	assert.Equal(t, 0.0, b.X1)
	assert.Equal(t, 10.0, b.X2)
	assert.Equal(t, 0.0, b.Y2)
}

func TestGenericFonts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "inkmetrics.fonts")
	defer teardown()
	//
	f, ok := GenericFont("monospace", xfont.StyleNormal, xfont.WeightNormal)
	require.True(t, ok)
	assert.Equal(t, "Go Mono", f.Fontname)
	f, ok = GenericFont("Serif", xfont.StyleItalic, xfont.WeightBold)
	require.True(t, ok)
	assert.Equal(t, "Go Bold Italic", f.Fontname)
	_, ok = GenericFont("weilai-yuan", xfont.StyleNormal, xfont.WeightNormal)
	assert.False(t, ok)
	assert.Same(t, FallbackFont(), FallbackFont())
}

func TestTypeCase(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "inkmetrics.fonts")
	defer teardown()
	//
	tc, err := FallbackFont().PrepareCase(42)
	require.NoError(t, err)
	defer tc.Close()
	m := tc.Face().Metrics()
	assert.Greater(t, m.Ascent.Ceil(), 0)
	assert.Equal(t, 42.0, tc.Size())
	_, err = FallbackFont().PrepareCase(0)
	assert.True(t, core.Is(err, core.EINVALID))
}

func TestTypoMetrics(t *testing.T) {
	asc, desc, ok := typoMetrics(goregular.TTF)
	require.True(t, ok)
	assert.Greater(t, asc, int16(0))
	assert.LessOrEqual(t, desc, int16(0))
	_, _, ok = typoMetrics([]byte{0, 1, 0, 0})
	assert.False(t, ok)
}
