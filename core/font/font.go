package font

import (
	"os"
	"strings"
	"sync"
	"unicode"

	"github.com/npillmayer/inkmetrics/core"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomediumitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ScalableFont is a parsed outline font. It is immutable after parsing and
// safe for concurrent use.
type ScalableFont struct {
	Fontname string
	Filepath string     // file path or source URL, if any
	Binary   []byte     // raw data
	SFNT     *sfnt.Font // the font's container
	upem     float64
	ascent   float64 // design units
	descent  float64 // design units, usually negative
}

// LoadOpenTypeFont reads and parses a font file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, core.WrapError(err, core.EFONTUNAVAILABLE, "cannot read font file %s", fontfile)
	}
	f, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	return f, nil
}

// ParseOpenTypeFont parses TrueType or OpenType (CFF) font data.
// Malformed data results in an error with code core.EFONTPARSE.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	if len(fbytes) == 0 {
		return nil, core.Error(core.EFONTPARSE, "font data is empty")
	}
	f = &ScalableFont{Binary: fbytes}
	if f.SFNT, err = sfnt.Parse(f.Binary); err != nil {
		return nil, core.WrapError(err, core.EFONTPARSE, "cannot parse font")
	}
	f.Fontname, _ = f.SFNT.Name(nil, sfnt.NameIDFull)
	if err = f.readVerticalMetrics(); err != nil {
		return nil, err
	}
	tracer().Debugf("parsed font %q, upem=%g, ascender=%g, descender=%g",
		f.Fontname, f.upem, f.ascent, f.descent)
	return f, nil
}

// Ascender is the font-wide ascender in design units.
func (sf *ScalableFont) Ascender() float64 {
	return sf.ascent
}

// Descender is the font-wide descender in design units. It is negative for
// all practical fonts.
func (sf *ScalableFont) Descender() float64 {
	return sf.descent
}

// UnitsPerEm is the font's design unit scale.
func (sf *ScalableFont) UnitsPerEm() float64 {
	return sf.upem
}

// designPPEM lets sfnt report values in unscaled design units: with a
// pixels-per-em value equal to units-per-em, scaling is the identity.
func (sf *ScalableFont) designPPEM() fixed.Int26_6 {
	return fixed.Int26_6(sf.SFNT.UnitsPerEm())
}

// glyphIndex maps a rune to a glyph. Runes not covered by the font map to
// glyph 0 (.notdef).
func (sf *ScalableFont) glyphIndex(buf *sfnt.Buffer, r rune) sfnt.GlyphIndex {
	gid, err := sf.SFNT.GlyphIndex(buf, r)
	if err != nil {
		tracer().Debugf("no glyph for %#U in %s: %v", r, sf.Fontname, err)
		return 0
	}
	return gid
}

func (sf *ScalableFont) glyphAdvance(buf *sfnt.Buffer, gid sfnt.GlyphIndex) float64 {
	adv, err := sf.SFNT.GlyphAdvance(buf, gid, sf.designPPEM(), xfont.HintingNone)
	if err != nil {
		tracer().Errorf("cannot read advance of glyph %d in %s: %v", gid, sf.Fontname, err)
		return 0
	}
	return float64(adv)
}

// MissingGlyphs returns the runes of text which sf has no glyph for, each
// rune once. Control characters are ignored.
func (sf *ScalableFont) MissingGlyphs(text string) string {
	var buf sfnt.Buffer
	var missing []rune
	for _, r := range text {
		if unicode.IsControl(r) || strings.ContainsRune(string(missing), r) {
			continue
		}
		if sf.glyphIndex(&buf, r) == 0 {
			missing = append(missing, r)
		}
	}
	return string(missing)
}

// AdvanceWidth returns the advance width of text at a given size, i.e. the sum
// of the glyph advances. No kerning is applied.
func (sf *ScalableFont) AdvanceWidth(text string, size float64) float64 {
	var buf sfnt.Buffer
	var units float64
	for _, r := range text {
		units += sf.glyphAdvance(&buf, sf.glyphIndex(&buf, r))
	}
	return units * size / sf.upem
}

// Path returns the outline path of text set at a given size, with the
// baseline origin at (x, y). Glyphs are placed by their advances.
func (sf *ScalableFont) Path(text string, x, y, size float64) *GlyphPath {
	var buf sfnt.Buffer
	scale := size / sf.upem
	path := &GlyphPath{}
	pen := 0.0
	for _, r := range text {
		gid := sf.glyphIndex(&buf, r)
		segs, err := sf.SFNT.LoadGlyph(&buf, gid, sf.designPPEM(), nil)
		if err != nil {
			// colored glyphs have no outline, but still advance
			tracer().Infof("cannot load glyph %d of %s: %v", gid, sf.Fontname, err)
		}
		for _, seg := range segs {
			s := Segment{Op: seg.Op}
			for i := 0; i < s.points(); i++ {
				s.Args[i] = Point{
					X: x + (pen+float64(seg.Args[i].X))*scale,
					Y: y + float64(seg.Args[i].Y)*scale,
				}
			}
			path.Segments = append(path.Segments, s)
		}
		pen += sf.glyphAdvance(&buf, gid)
	}
	return path
}

// --- Typecases -------------------------------------------------------------

// TypeCase is a scaled font, backed by a font.Face from x/image.
type TypeCase struct {
	scalableFontParent *ScalableFont
	font               xfont.Face // Go uses 'face' and 'font' in an inverse manner
	size               float64
}

// PrepareCase creates a typecase for a size in pixels (72 DPI).
func (sf *ScalableFont) PrepareCase(fontsize float64) (*TypeCase, error) {
	if fontsize <= 0 {
		return nil, core.Error(core.EINVALID, "font size must be positive, is %g", fontsize)
	}
	options := &opentype.FaceOptions{
		Size:    fontsize,
		DPI:     72,
		Hinting: xfont.HintingNone,
	}
	f, err := opentype.NewFace(sf.SFNT, options)
	if err != nil {
		return nil, core.WrapError(err, core.EFONTPARSE, "cannot create face for %s", sf.Fontname)
	}
	return &TypeCase{scalableFontParent: sf, font: f, size: fontsize}, nil
}

// ScalableFontParent returns the font tc has been derived from.
func (tc *TypeCase) ScalableFontParent() *ScalableFont {
	return tc.scalableFontParent
}

// Size is the size in pixels.
func (tc *TypeCase) Size() float64 {
	return tc.size
}

// Face returns the x/image face of tc. It is not safe for concurrent use.
func (tc *TypeCase) Face() xfont.Face {
	return tc.font
}

// Close releases the face.
func (tc *TypeCase) Close() error {
	if tc.font == nil {
		return nil
	}
	return tc.font.Close()
}

// --- Go fonts --------------------------------------------------------------

// FallbackFont returns a font to be used if everything else fails. It is
// always present. Currently we use Go Sans.
func FallbackFont() *ScalableFont {
	f, _ := GenericFont("sans-serif", xfont.StyleNormal, xfont.WeightNormal)
	return f
}

// GenericFont resolves a CSS generic family name to one of the bundled Go
// fonts. It returns false if family is not a generic family.
//
// Go fonts do not include a serif typeface; "serif" resolves to Go Sans.
func GenericFont(family string, style xfont.Style, weight xfont.Weight) (*ScalableFont, bool) {
	mono := false
	switch strings.ToLower(strings.TrimSpace(family)) {
	case "sans-serif", "serif", "system-ui", "ui-sans-serif", "ui-serif", "go", "go sans":
	case "monospace", "ui-monospace", "go mono":
		mono = true
	default:
		return nil, false
	}
	italic := style == xfont.StyleItalic || style == xfont.StyleOblique
	var name string
	var ttf []byte
	switch {
	case mono && weight >= xfont.WeightSemiBold && italic:
		name, ttf = "Go Mono Bold Italic", gomonobolditalic.TTF
	case mono && weight >= xfont.WeightSemiBold:
		name, ttf = "Go Mono Bold", gomonobold.TTF
	case mono && italic:
		name, ttf = "Go Mono Italic", gomonoitalic.TTF
	case mono:
		name, ttf = "Go Mono", gomono.TTF
	case weight >= xfont.WeightSemiBold && italic:
		name, ttf = "Go Bold Italic", gobolditalic.TTF
	case weight >= xfont.WeightSemiBold:
		name, ttf = "Go Bold", gobold.TTF
	case weight == xfont.WeightMedium && italic:
		name, ttf = "Go Medium Italic", gomediumitalic.TTF
	case weight == xfont.WeightMedium:
		name, ttf = "Go Medium", gomedium.TTF
	case italic:
		name, ttf = "Go Italic", goitalic.TTF
	default:
		name, ttf = "Go Regular", goregular.TTF
	}
	return loadGoFont(name, ttf), true
}

var goFonts = struct {
	sync.Mutex
	loaded map[string]*ScalableFont
}{loaded: make(map[string]*ScalableFont)}

func loadGoFont(name string, ttf []byte) *ScalableFont {
	goFonts.Lock()
	defer goFonts.Unlock()
	if f, ok := goFonts.loaded[name]; ok {
		return f
	}
	f, err := ParseOpenTypeFont(ttf)
	if err != nil {
		panic("cannot load bundled font " + name) // this cannot happen
	}
	f.Fontname = name
	f.Filepath = "internal"
	goFonts.loaded[name] = f
	return f
}
