/*
Package metrics holds the normalized text metrics record and the arithmetic
shared by all derivations of it.

A derivation (rasterizer-backed or outline-backed) gathers seven raw numbers
for a run of text: ink ascent/descent, font ascent/descent, advance width and
ink overshoot to the left/right. Normalize turns these into a TextMetrics
record. The only parameter is the rounding precision, which is fixed per
derivation path.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

*/
package metrics

import (
	"fmt"
	"math"
)

// Precision is the number of decimal digits the horizontal spacing fields
// are rounded to.
type Precision int

// Rounding precisions of the two derivation paths. They differ on purpose:
// results of the two paths are compared as they are.
const (
	RasterPrecision  Precision = 2
	OutlinePrecision Precision = 3
)

func (p Precision) unit() float64 {
	return math.Pow10(int(p))
}

// Round rounds v to p decimal digits, ties rounding up (towards +∞).
// Re-rounding an already rounded value is a no-op.
func Round(v float64, p Precision) float64 {
	u := p.unit()
	return math.Floor(v*u+0.5) / u
}

// Raw are the raw measurements a derivation feeds into Normalize.
// All values are in rendered units (pixels at the given size).
// Ascents and descents are positive distances from the baseline; InkLeft is
// positive when ink extends left of the text origin; InkRight is the distance
// from the origin to the rightmost ink.
type Raw struct {
	InkAscent   float64
	InkDescent  float64
	FontAscent  float64
	FontDescent float64
	Advance     float64
	InkLeft     float64
	InkRight    float64
}

// TextMetrics is the normalized metrics record for a single run of text.
// It is a pure value and fully determined by its inputs.
type TextMetrics struct {
	TextWidth                float64 `json:"textWidth"`
	FontHeight               float64 `json:"fontHeight"`
	ActualHeight             float64 `json:"actualHeight"`
	ActualBoundingBoxAscent  float64 `json:"actualBoundingBoxAscent"`
	ActualBoundingBoxDescent float64 `json:"actualBoundingBoxDescent"`
	TopWhiteSpaceHeight      float64 `json:"topWhiteSpaceHeight"`
	BottomWhiteSpaceHeight   float64 `json:"bottomWhiteSpaceHeight"`
	IsMinus                  bool    `json:"isMinus"`
	VerticalWhiteSpace       float64 `json:"verticalWhiteSpace"`
	HorizontalLeftSpacing    float64 `json:"horizontalLeftSpacing"`
	HorizontalRightSpacing   float64 `json:"horizontalRightSpacing"`
	HorizontalOffsetSpacing  float64 `json:"horizontalOffsetSpacing"`
}

// Normalize derives a TextMetrics record from raw measurements, rounding the
// horizontal spacings to precision p.
func Normalize(raw Raw, p Precision) TextMetrics {
	m := TextMetrics{
		TextWidth:                raw.Advance,
		FontHeight:               raw.FontAscent + raw.FontDescent,
		ActualHeight:             raw.InkAscent + raw.InkDescent,
		ActualBoundingBoxAscent:  raw.InkAscent,
		ActualBoundingBoxDescent: raw.InkDescent,
		TopWhiteSpaceHeight:      raw.FontAscent - raw.InkAscent,
		BottomWhiteSpaceHeight:   raw.FontDescent - raw.InkDescent,
		IsMinus:                  raw.FontAscent > raw.FontDescent,
	}
	m.VerticalWhiteSpace = VerticalWhiteSpace(m.TopWhiteSpaceHeight, m.BottomWhiteSpaceHeight, m.IsMinus)
	left := Round(raw.InkLeft, p)
	right := Round(raw.InkRight-raw.Advance, p)
	m.HorizontalLeftSpacing = left
	m.HorizontalRightSpacing = right
	m.HorizontalOffsetSpacing = right - left
	return m
}

// VerticalWhiteSpace combines top and bottom white space. The sign convention
// flips with isMinus: with isMinus set the difference is negated.
func VerticalWhiteSpace(top, bottom float64, isMinus bool) float64 {
	if isMinus {
		return -(top - bottom)
	}
	return top - bottom
}

// Field is a named value of a TextMetrics record, used for listings.
type Field struct {
	Name  string
	Value interface{}
}

// Fields returns the fields of m in a fixed order.
func (m TextMetrics) Fields() []Field {
	return []Field{
		{"isMinus", m.IsMinus},
		{"textWidth", m.TextWidth},
		{"fontHeight", m.FontHeight},
		{"actualHeight", m.ActualHeight},
		{"verticalWhiteSpace", m.VerticalWhiteSpace},
		{"topWhiteSpaceHeight", m.TopWhiteSpaceHeight},
		{"bottomWhiteSpaceHeight", m.BottomWhiteSpaceHeight},
		{"horizontalOffsetSpacing", m.HorizontalOffsetSpacing},
		{"actualBoundingBoxAscent", m.ActualBoundingBoxAscent},
		{"actualBoundingBoxDescent", m.ActualBoundingBoxDescent},
		{"horizontalLeftSpacing", m.HorizontalLeftSpacing},
		{"horizontalRightSpacing", m.HorizontalRightSpacing},
	}
}

// IsFinite is a predicate: are all numeric fields of m finite?
func (m TextMetrics) IsFinite() bool {
	for _, f := range m.Fields() {
		if v, ok := f.Value.(float64); ok {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

func (m TextMetrics) String() string {
	return fmt.Sprintf("{w=%.3f fh=%.3f ah=%.3f vws=%.3f left=%g right=%g}",
		m.TextWidth, m.FontHeight, m.ActualHeight, m.VerticalWhiteSpace,
		m.HorizontalLeftSpacing, m.HorizontalRightSpacing)
}
