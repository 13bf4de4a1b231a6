package vectorbackend

import (
	"strings"
	"testing"

	"github.com/npillmayer/inkmetrics/core"
	"github.com/npillmayer/inkmetrics/core/font"
	"github.com/npillmayer/schuko/schukonf/testconfig"
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

func TestMeasureAgreesWithOutline(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "inkmetrics.raster")
	defer teardown()
	//
	b := New(nil, testconfig.Conf{"raster-oversample": 8})
	assert.Equal(t, "vector", b.Name())
	m, err := b.Measure("Hxg", spec(t, "400 42px sans-serif"))
	require.NoError(t, err)
	t.Logf("measurement = %v", m)
	f, _ := font.GenericFont("sans-serif", xfont.StyleNormal, xfont.WeightNormal)
	assert.InDelta(t, f.AdvanceWidth("Hxg", 42), m.Width, 0.05)
	assert.InDelta(t, f.Ascender()*42/f.UnitsPerEm(), m.FontBoundingBoxAscent, 0.05)
	assert.InDelta(t, -f.Descender()*42/f.UnitsPerEm(), m.FontBoundingBoxDescent, 0.05)
	bbox := f.Path("Hxg", 0, 0, 42).BoundingBox()
	// ink is read from pixels, i.e. it may grow by up to a device pixel
	assert.InDelta(t, -bbox.Y1, m.ActualBoundingBoxAscent, 0.26)
	assert.InDelta(t, bbox.Y2, m.ActualBoundingBoxDescent, 0.26)
	assert.InDelta(t, -bbox.X1, m.ActualBoundingBoxLeft, 0.26)
	assert.InDelta(t, bbox.X2, m.ActualBoundingBoxRight, 0.26)
	assert.Greater(t, m.ActualBoundingBoxDescent, 0.0, "'g' has a descender")
}

func TestMeasureEmptyAndBlank(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "inkmetrics.raster")
	defer teardown()
	//
	b := New(nil, nil)
	m, err := b.Measure("", spec(t, "12px monospace"))
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Width)
	assert.Equal(t, 0.0, m.ActualBoundingBoxAscent)
	assert.Greater(t, m.FontBoundingBoxAscent, 0.0)
	m, err = b.Measure("   ", spec(t, "12px monospace"))
	require.NoError(t, err)
	assert.Greater(t, m.Width, 0.0)
	assert.Equal(t, 0.0, m.ActualBoundingBoxRight)
}

func TestMeasureIsDeterministic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "inkmetrics.raster")
	defer teardown()
	//
	b := New(nil, nil)
	s := spec(t, "italic bold 30px serif")
	m1, err := b.Measure("Quartz", s)
	require.NoError(t, err)
	m2, err := b.Measure("Quartz", s)
	require.NoError(t, err)
	assert.Equal(t, m1, m2)
}

func TestMeasureUnknownFamily(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "inkmetrics.raster")
	defer teardown()
	//
	b := New(nil, nil)
	_, err := b.Measure("AB", spec(t, "400 42px weilai-yuan"))
	assert.True(t, core.Is(err, core.EBACKEND))
}

func TestMeasureLongLineAndLargeSize(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "inkmetrics.raster")
	defer teardown()
	//
	b := New(nil, testconfig.Conf{})
	f, _ := font.GenericFont("sans-serif", xfont.StyleNormal, xfont.WeightNormal)
	line := strings.Repeat("Hello world ", 30)
	m, err := b.Measure(line, spec(t, "400 42px sans-serif"))
	require.NoError(t, err)
	// advances are summed in fixed point
	assert.InEpsilon(t, f.AdvanceWidth(line, 42), m.Width, 1e-3)
	bbox := f.Path(line, 0, 0, 42).BoundingBox()
	assert.InDelta(t, bbox.X2, m.ActualBoundingBoxRight, 1.0)
	assert.InDelta(t, -bbox.Y1, m.ActualBoundingBoxAscent, 1.0)
	//
	m, err = b.Measure("Ag", spec(t, "400 5000px sans-serif"))
	require.NoError(t, err)
	bbox = f.Path("Ag", 0, 0, 5000).BoundingBox()
	assert.InDelta(t, -bbox.Y1, m.ActualBoundingBoxAscent, 3.0)
	assert.InDelta(t, bbox.Y2, m.ActualBoundingBoxDescent, 3.0)
	assert.InDelta(t, bbox.X2, m.ActualBoundingBoxRight, 3.0)
}
