/*
Package vectorbackend implements a rasterization backend on top of the
scanline rasterizer of golang.org/x/image/vector.

Text is converted to glyph outlines, which are filled onto an oversampled
alpha surface. Ink extents are read back from the pixels; advance width and
font box are taken from an x/image font face.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

*/
package vectorbackend

import (
	"image"

	"github.com/npillmayer/inkmetrics/backend/raster"
	"github.com/npillmayer/inkmetrics/core"
	"github.com/npillmayer/inkmetrics/core/font"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// tracer writes to trace with key 'inkmetrics.raster'
func tracer() tracing.Trace {
	return tracing.Select("inkmetrics.raster")
}

// Backend renders text with a vector rasterizer. It is safe for concurrent
// use, as every measurement uses its own face and surface.
type Backend struct {
	fonts      raster.FontSource
	oversample int
}

var _ raster.Backend = (*Backend)(nil)

// New creates a vector backend. Fonts are looked up in fonts (which may be
// nil), falling back to bundled fonts for generic families. The oversampling
// factor is read from conf (see raster.Oversampling).
func New(fonts raster.FontSource, conf schuko.Configuration) *Backend {
	return &Backend{fonts: fonts, oversample: raster.Oversampling(conf)}
}

// pad is the margin around the ink box on a canvas.
const pad = 2

// Name returns "vector".
func (b *Backend) Name() string {
	return "vector"
}

// Measure renders text off-screen and measures it.
func (b *Backend) Measure(text string, spec font.Spec) (raster.Measurement, error) {
	m := raster.Measurement{}
	f, err := raster.ResolveFont(b.fonts, spec)
	if err != nil {
		return m, err
	}
	tc, err := f.PrepareCase(spec.Size)
	if err != nil {
		return m, core.WrapError(err, core.EBACKEND, "cannot set %s at %gpx", f.Fontname, spec.Size)
	}
	defer tc.Close()
	face := tc.Face()
	fm := face.Metrics()
	m.FontBoundingBoxAscent = toFloat(fm.Ascent)
	m.FontBoundingBoxDescent = toFloat(fm.Descent)
	for _, r := range text {
		adv, _ := face.GlyphAdvance(r) // missing glyphs advance by .notdef
		m.Width += toFloat(adv)
	}
	scale := float64(b.oversample)
	path := f.Path(text, 0, 0, spec.Size*scale)
	if len(path.Segments) == 0 {
		tracer().Debugf("no ink for %q", text)
		return m, nil
	}
	bbox := path.BoundingBox()
	if fit := raster.FitScale(bbox.Width()/scale, bbox.Height()/scale, pad, scale); fit < scale {
		scale = fit
		path = f.Path(text, 0, 0, spec.Size*scale)
		bbox = path.BoundingBox()
	}
	canvas, err := raster.NewCanvas(bbox.X1, bbox.Y1, bbox.X2, bbox.Y2, pad, scale)
	if err != nil {
		return m, err
	}
	fill(canvas, path)
	m.ActualBoundingBoxLeft, m.ActualBoundingBoxRight,
		m.ActualBoundingBoxAscent, m.ActualBoundingBoxDescent, _ = canvas.Ink()
	tracer().Debugf("%s measures %q as %v", b.Name(), text, m)
	return m, nil
}

// fill rasterizes a glyph path onto a canvas, using the non-zero winding rule.
func fill(c *raster.Canvas, path *font.GlyphPath) {
	bounds := c.Img.Bounds()
	z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	ox, oy := float32(c.Origin.X), float32(c.Origin.Y)
	pt := func(p font.Point) (float32, float32) {
		return ox + float32(p.X), oy + float32(p.Y)
	}
	open := false
	for _, s := range path.Segments {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				z.ClosePath() // MoveTo does not close the previous contour
			}
			z.MoveTo(pt(s.Args[0]))
			open = true
		case sfnt.SegmentOpLineTo:
			z.LineTo(pt(s.Args[0]))
		case sfnt.SegmentOpQuadTo:
			x1, y1 := pt(s.Args[0])
			x2, y2 := pt(s.Args[1])
			z.QuadTo(x1, y1, x2, y2)
		case sfnt.SegmentOpCubeTo:
			x1, y1 := pt(s.Args[0])
			x2, y2 := pt(s.Args[1])
			x3, y3 := pt(s.Args[2])
			z.CubeTo(x1, y1, x2, y2, x3, y3)
		}
	}
	if open {
		z.ClosePath()
	}
	z.Draw(c.Img, bounds, image.Opaque, image.Point{})
}

func toFloat(x fixed.Int26_6) float64 {
	return float64(x) / 64
}
