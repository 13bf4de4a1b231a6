package raster

import (
	"fmt"
	"strings"

	"github.com/npillmayer/inkmetrics/core"
	"github.com/npillmayer/inkmetrics/core/font"
	"github.com/npillmayer/inkmetrics/core/metrics"
	"github.com/npillmayer/schuko"
	xfont "golang.org/x/image/font"
)

// Measurement is the result of measuring a run of text. All values are in
// pixels. Ascents and descents are positive distances from the baseline,
// ActualBoundingBoxLeft is positive if ink extends to the left of the text
// origin.
type Measurement struct {
	Width                    float64
	ActualBoundingBoxLeft    float64
	ActualBoundingBoxRight   float64
	ActualBoundingBoxAscent  float64
	ActualBoundingBoxDescent float64
	FontBoundingBoxAscent    float64
	FontBoundingBoxDescent   float64
}

// Raw converts a measurement into raw input for metrics normalization.
func (m Measurement) Raw() metrics.Raw {
	return metrics.Raw{
		InkAscent:   m.ActualBoundingBoxAscent,
		InkDescent:  m.ActualBoundingBoxDescent,
		FontAscent:  m.FontBoundingBoxAscent,
		FontDescent: m.FontBoundingBoxDescent,
		Advance:     m.Width,
		InkLeft:     m.ActualBoundingBoxLeft,
		InkRight:    m.ActualBoundingBoxRight,
	}
}

func (m Measurement) String() string {
	return fmt.Sprintf("{w=%.3f ink=[%.3f,%.3f,%.3f,%.3f] font=[%.3f,%.3f]}", m.Width,
		m.ActualBoundingBoxLeft, m.ActualBoundingBoxRight,
		m.ActualBoundingBoxAscent, m.ActualBoundingBoxDescent,
		m.FontBoundingBoxAscent, m.FontBoundingBoxDescent)
}

// Backend measures text by rendering it.
type Backend interface {
	Name() string
	Measure(text string, spec font.Spec) (Measurement, error)
}

// FontSource provides fonts for a family name in a given style and weight.
// *fontregistry.Registry is a FontSource.
type FontSource interface {
	Match(family string, style xfont.Style, weight xfont.Weight) (*font.ScalableFont, bool)
}

// ResolveFont selects a font for a font specification. Families are tried in
// order, first from src (which may be nil), then as generic families
// resolving to bundled fonts. If no family can be resolved, an error with
// code core.EBACKEND is returned.
func ResolveFont(src FontSource, spec font.Spec) (*font.ScalableFont, error) {
	for _, family := range spec.Families {
		if src != nil {
			if f, ok := src.Match(family, spec.Style, spec.Weight); ok {
				return f, nil
			}
		}
		if f, ok := font.GenericFont(family, spec.Style, spec.Weight); ok {
			tracer().Debugf("family %s resolves to %s", family, f.Fontname)
			return f, nil
		}
	}
	return nil, core.Error(core.EBACKEND, "no font available for %s", strings.Join(spec.Families, ", "))
}

// Oversampling returns the oversampling factor configured by key
// `raster-oversample`, defaulting to 4. Values are clamped to [1…16].
func Oversampling(conf schuko.Configuration) int {
	n := 4
	if conf != nil && conf.IsSet("raster-oversample") {
		n = conf.GetInt("raster-oversample")
	}
	if n < 1 {
		n = 1
	} else if n > 16 {
		n = 16
	}
	return n
}
