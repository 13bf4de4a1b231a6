package ftbackend

import (
	"strings"
	"testing"

	"github.com/npillmayer/inkmetrics/backend/raster/vectorbackend"
	"github.com/npillmayer/inkmetrics/core"
	"github.com/npillmayer/inkmetrics/core/font"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xfont "golang.org/x/image/font"
)

func spec(t *testing.T, s string) font.Spec {
	fs, err := font.ParseSpec(s)
	require.NoError(t, err)
	return fs
}

func TestMeasure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "inkmetrics.raster")
	defer teardown()
	//
	b := New(nil, nil)
	assert.Equal(t, "freetype", b.Name())
	m, err := b.Measure("Hxg", spec(t, "400 42px sans-serif"))
	require.NoError(t, err)
	t.Logf("measurement = %v", m)
	f, _ := font.GenericFont("sans-serif", xfont.StyleNormal, xfont.WeightNormal)
	assert.InDelta(t, f.AdvanceWidth("Hxg", 42), m.Width, 0.05)
	assert.InDelta(t, f.Ascender()*42/f.UnitsPerEm(), m.FontBoundingBoxAscent, 0.05)
	assert.InDelta(t, -f.Descender()*42/f.UnitsPerEm(), m.FontBoundingBoxDescent, 0.05)
	bbox := f.Path("Hxg", 0, 0, 42).BoundingBox()
	assert.InDelta(t, -bbox.Y1, m.ActualBoundingBoxAscent, 0.5)
	assert.InDelta(t, bbox.Y2, m.ActualBoundingBoxDescent, 0.5)
	assert.InDelta(t, bbox.X2, m.ActualBoundingBoxRight, 0.5)
	assert.Len(t, b.parsed, 1)
	_, err = b.Measure("H", spec(t, "400 12px sans-serif"))
	require.NoError(t, err)
	assert.Len(t, b.parsed, 1, "parsed font should be re-used")
}

func TestBackendsAgree(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "inkmetrics.raster")
	defer teardown()
	//
	s := spec(t, "bold 64px monospace")
	ft, err := New(nil, nil).Measure("Ag", s)
	require.NoError(t, err)
	vec, err := vectorbackend.New(nil, nil).Measure("Ag", s)
	require.NoError(t, err)
	assert.InDelta(t, vec.Width, ft.Width, 0.05)
	assert.InDelta(t, vec.ActualBoundingBoxAscent, ft.ActualBoundingBoxAscent, 0.5)
	assert.InDelta(t, vec.ActualBoundingBoxDescent, ft.ActualBoundingBoxDescent, 0.5)
}

func TestMeasureBlankAndUnknown(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "inkmetrics.raster")
	defer teardown()
	//
	b := New(nil, nil)
	m, err := b.Measure(" ", spec(t, "20px serif"))
	require.NoError(t, err)
	assert.Greater(t, m.Width, 0.0)
	assert.Equal(t, 0.0, m.ActualBoundingBoxAscent)
	_, err = b.Measure("x", spec(t, "20px weilai-yuan"))
	assert.True(t, core.Is(err, core.EBACKEND))
}

func TestMeasureLongLineAndLargeSize(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "inkmetrics.raster")
	defer teardown()
	//
	ft, vec := New(nil, nil), vectorbackend.New(nil, nil)
	line := strings.Repeat("Hello world ", 30)
	s := spec(t, "400 42px sans-serif")
	m, err := ft.Measure(line, s)
	require.NoError(t, err)
	v, err := vec.Measure(line, s)
	require.NoError(t, err)
	assert.InEpsilon(t, v.Width, m.Width, 1e-3)
	assert.InDelta(t, v.ActualBoundingBoxRight, m.ActualBoundingBoxRight, 2.0)
	assert.InDelta(t, v.ActualBoundingBoxAscent, m.ActualBoundingBoxAscent, 1.0)
	//
	s = spec(t, "400 5000px sans-serif")
	m, err = ft.Measure("Ag", s)
	require.NoError(t, err)
	v, err = vec.Measure("Ag", s)
	require.NoError(t, err)
	assert.InDelta(t, v.ActualBoundingBoxAscent, m.ActualBoundingBoxAscent, 4.0)
	assert.InDelta(t, v.ActualBoundingBoxDescent, m.ActualBoundingBoxDescent, 4.0)
	assert.Greater(t, m.ActualBoundingBoxDescent, 500.0, "'g' has a descender")
}
