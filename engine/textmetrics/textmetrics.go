package textmetrics

import (
	"math"
	"reflect"

	"github.com/npillmayer/inkmetrics/backend/raster"
	"github.com/npillmayer/inkmetrics/core"
	"github.com/npillmayer/inkmetrics/core/font"
	"github.com/npillmayer/inkmetrics/core/metrics"
	"github.com/npillmayer/inkmetrics/core/textcase"
)

// OutlineFont is a parsed font providing glyph outlines and font-wide
// vertical metrics. *font.ScalableFont is an OutlineFont.
type OutlineFont interface {
	Ascender() float64   // design units
	Descender() float64  // design units, usually negative
	UnitsPerEm() float64 // design units per em
	AdvanceWidth(text string, size float64) float64
	Path(text string, x, y, size float64) *font.GlyphPath
}

var _ OutlineFont = (*font.ScalableFont)(nil)

// FromRasterizer measures text by having a backend render it. fontSpec is a
// CSS font shorthand like "400 42px weilai-yuan".
//
// An invalid font specification results in an error with code core.EINVALID.
// Failures of the backend are reported with code core.EBACKEND; there is no
// retry and no default result.
func FromRasterizer(backend raster.Backend, fontSpec string, text string, mode textcase.Case) (
	metrics.TextMetrics, error) {
	//
	if isNil(backend) {
		return metrics.TextMetrics{}, core.Error(core.EBACKEND, "no rasterization backend")
	}
	spec, err := font.ParseSpec(fontSpec)
	if err != nil {
		return metrics.TextMetrics{}, err
	}
	text = textcase.Transform(text, mode)
	m, err := backend.Measure(text, spec)
	if err != nil {
		if core.Code(err) != core.EBACKEND {
			err = core.WrapError(err, core.EBACKEND, "%s backend cannot measure text", backend.Name())
		}
		return metrics.TextMetrics{}, err
	}
	tracer().Debugf("%s backend: %q in %s -> %v", backend.Name(), text, spec, m)
	return metrics.Normalize(m.Raw(), metrics.RasterPrecision), nil
}

// FromOutline reconstructs text metrics from the glyph outlines of f, with
// text set at size (in pixels) from an origin on the baseline.
//
// Empty text is valid and results in zero width and ink. f must have been
// loaded; a nil font results in an error with code core.EFONTUNAVAILABLE.
// A size which is not a positive number is an error with code core.EINVALID.
func FromOutline(f OutlineFont, text string, size float64, mode textcase.Case) (
	metrics.TextMetrics, error) {
	//
	if isNil(f) {
		return metrics.TextMetrics{}, core.Error(core.EFONTUNAVAILABLE, "metrics unavailable: font not loaded")
	}
	if !(size > 0) || math.IsInf(size, 1) {
		return metrics.TextMetrics{}, core.Error(core.EINVALID, "font size must be a positive number, is %g", size)
	}
	if !(f.UnitsPerEm() > 0) {
		return metrics.TextMetrics{}, core.Error(core.EFONTPARSE, "font has invalid units per em: %g", f.UnitsPerEm())
	}
	text = textcase.Transform(text, mode)
	scale := size / f.UnitsPerEm()
	bbox := f.Path(text, 0, 0, size).BoundingBox()
	raw := metrics.Raw{
		FontAscent:  f.Ascender() * scale,
		FontDescent: math.Abs(f.Descender()) * scale,
		Advance:     f.AdvanceWidth(text, size),
		InkAscent:   0 - bbox.Y1, // not -Y1, which yields -0 for empty text
		InkDescent:  bbox.Y2,
		InkLeft:     0 - bbox.X1,
		InkRight:    bbox.X2,
	}
	tracer().Debugf("outline: %q at %gpx, bbox = %v", text, size, bbox)
	return metrics.Normalize(raw, metrics.OutlinePrecision), nil
}

// isNil catches interfaces holding a nil pointer as well.
func isNil(i interface{}) bool {
	if i == nil {
		return true
	}
	v := reflect.ValueOf(i)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
