/*
Package ftbackend implements a rasterization backend with the FreeType port
github.com/golang/freetype.

Glyphs are rendered one by one onto an oversampled alpha surface, each placed
at the sum of the advances of its predecessors. FreeType handles TrueType
outlines only; fonts with CFF outlines cannot be measured by this backend.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

*/
package ftbackend

import (
	"image"
	"image/draw"
	"sync"

	"github.com/golang/freetype/truetype"
	"github.com/npillmayer/inkmetrics/backend/raster"
	"github.com/npillmayer/inkmetrics/core"
	"github.com/npillmayer/inkmetrics/core/font"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/tracing"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// tracer writes to trace with key 'inkmetrics.raster'
func tracer() tracing.Trace {
	return tracing.Select("inkmetrics.raster")
}

// Backend renders text with FreeType. It is safe for concurrent use.
type Backend struct {
	fonts      raster.FontSource
	oversample int
	mx         sync.Mutex
	parsed     map[*font.ScalableFont]*truetype.Font
}

var _ raster.Backend = (*Backend)(nil)

// New creates a FreeType backend. Fonts are looked up in fonts (which may be
// nil), falling back to bundled fonts for generic families. The oversampling
// factor is read from conf (see raster.Oversampling).
func New(fonts raster.FontSource, conf schuko.Configuration) *Backend {
	return &Backend{
		fonts:      fonts,
		oversample: raster.Oversampling(conf),
		parsed:     make(map[*font.ScalableFont]*truetype.Font),
	}
}

// Name returns "freetype".
func (b *Backend) Name() string {
	return "freetype"
}

// parse returns the FreeType representation of f, parsing it on first use.
func (b *Backend) parse(f *font.ScalableFont) (*truetype.Font, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	if ttf, ok := b.parsed[f]; ok {
		return ttf, nil
	}
	ttf, err := truetype.Parse(f.Binary)
	if err != nil {
		return nil, core.WrapError(err, core.EBACKEND, "FreeType cannot handle font %s", f.Fontname)
	}
	b.parsed[f] = ttf
	return ttf, nil
}

// Measure renders text off-screen and measures it.
func (b *Backend) Measure(text string, spec font.Spec) (raster.Measurement, error) {
	m := raster.Measurement{}
	f, err := raster.ResolveFont(b.fonts, spec)
	if err != nil {
		return m, err
	}
	ttf, err := b.parse(f)
	if err != nil {
		return m, err
	}
	scale := float64(b.oversample)
	face := newFace(ttf, spec.Size*scale)
	fm := face.Metrics()
	m.FontBoundingBoxAscent = toFloat(fm.Ascent) / scale
	m.FontBoundingBoxDescent = toFloat(fm.Descent) / scale
	runes := []rune(text)
	pens, pen, ink := setText(face, runes)
	m.Width = toFloat(pen) / scale
	if ink.Empty() {
		face.Close()
		tracer().Debugf("no ink for %q", text)
		return m, nil
	}
	w, h := toFloat(ink.Max.X-ink.Min.X)/scale, toFloat(ink.Max.Y-ink.Min.Y)/scale
	if fit := raster.FitScale(w, h, pad, scale); fit < scale {
		face.Close()
		scale = fit
		face = newFace(ttf, spec.Size*scale)
		pens, _, ink = setText(face, runes)
	}
	defer face.Close()
	canvas, err := raster.NewCanvas(toFloat(ink.Min.X), toFloat(ink.Min.Y),
		toFloat(ink.Max.X), toFloat(ink.Max.Y), pad, scale)
	if err != nil {
		return m, err
	}
	origin := fixed.P(canvas.Origin.X, canvas.Origin.Y)
	for i, r := range runes {
		dot := fixed.Point26_6{X: origin.X + pens[i], Y: origin.Y}
		dr, mask, maskp, _, ok := face.Glyph(dot, r)
		if !ok {
			continue // blank glyph
		}
		draw.DrawMask(canvas.Img, dr, image.Opaque, image.Point{}, mask, maskp, draw.Over)
	}
	m.ActualBoundingBoxLeft, m.ActualBoundingBoxRight,
		m.ActualBoundingBoxAscent, m.ActualBoundingBoxDescent, _ = canvas.Ink()
	tracer().Debugf("%s measures %q as %v", b.Name(), text, m)
	return m, nil
}

// pad is the margin around the ink box on a canvas.
const pad = 2

func newFace(ttf *truetype.Font, size float64) xfont.Face {
	return truetype.NewFace(ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: xfont.HintingNone,
	})
}

// setText places runes side by side. It returns the pen position for each
// rune, the final pen position and the union of the glyphs' ink boxes.
func setText(face xfont.Face, runes []rune) ([]fixed.Int26_6, fixed.Int26_6, fixed.Rectangle26_6) {
	pens := make([]fixed.Int26_6, len(runes))
	var pen fixed.Int26_6
	var ink fixed.Rectangle26_6
	for i, r := range runes {
		pens[i] = pen
		if bounds, _, ok := face.GlyphBounds(r); ok && !bounds.Empty() {
			ink = ink.Union(bounds.Add(fixed.Point26_6{X: pen}))
		}
		adv, _ := face.GlyphAdvance(r)
		pen += adv
	}
	return pens, pen, ink
}

func toFloat(x fixed.Int26_6) float64 {
	return float64(x) / 64
}
