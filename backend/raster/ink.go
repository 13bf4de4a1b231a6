package raster

import (
	"image"
	"math"

	"github.com/npillmayer/inkmetrics/core"
)

// Limits for a drawing surface, in device pixels. Backends use FitScale to
// stay within them.
const (
	MaxCanvasSize = 1 << 14 // width or height
	MaxCanvasArea = 1 << 24
)

// FitScale returns the largest magnification not above scale, such that ink
// within a box of w x h pixels fits onto a canvas with a margin of pad.
// For large text the result may drop below 1.
func FitScale(w, h float64, pad int, scale float64) float64 {
	// floor and ceil of the box edges may add a device pixel on either side
	p := float64(2*pad + 3)
	fit := scale
	if m := math.Max(w, h); m > 0 && m*fit+p > MaxCanvasSize {
		fit = (MaxCanvasSize - p) / m
	}
	if a := w * h; a > 0 && (w*fit+p)*(h*fit+p) > MaxCanvasArea {
		// positive root of (w·f+p)(h·f+p) = MaxCanvasArea
		b := p * (w + h)
		fit = (-b + math.Sqrt(b*b-4*a*(p*p-MaxCanvasArea))) / (2 * a)
	}
	if fit < scale {
		tracer().Infof("ink box %.0f x %.0f too large for oversampling by %g, using %.3f", w, h, scale, fit)
	}
	return fit
}

// Canvas is an off-screen alpha surface with a text origin. Backends draw
// ink onto Canvas.Img, with the baseline origin of the text at Origin.
type Canvas struct {
	Img    *image.Alpha
	Origin image.Point
	Scale  float64 // device pixels per pixel
}

// NewCanvas allocates a surface large enough to hold ink within box, which is
// given in device pixels relative to the text origin (y growing downwards).
// A margin of pad device pixels is added on every side.
func NewCanvas(x1, y1, x2, y2 float64, pad int, scale float64) (*Canvas, error) {
	minX, minY := int(math.Floor(x1))-pad, int(math.Floor(y1))-pad
	maxX, maxY := int(math.Ceil(x2))+pad, int(math.Ceil(y2))+pad
	w, h := maxX-minX, maxY-minY
	if w <= 0 || h <= 0 || w > MaxCanvasSize || h > MaxCanvasSize || w*h > MaxCanvasArea {
		return nil, core.Error(core.EBACKEND, "cannot allocate drawing surface of %d x %d", w, h)
	}
	tracer().Debugf("allocating canvas %d x %d", w, h)
	return &Canvas{
		Img:    image.NewAlpha(image.Rect(0, 0, w, h)),
		Origin: image.Pt(-minX, -minY),
		Scale:  scale,
	}, nil
}

// Ink scans the canvas for pixels which received ink and returns their
// extent relative to the origin, in pixels, following canvas `measureText`
// conventions: left and ascent are positive for ink to the left of and
// above the origin. If no pixel has been inked, all values are 0.
func (c *Canvas) Ink() (left, right, ascent, descent float64, inked bool) {
	b := c.Img.Bounds()
	minX, minY, maxX, maxY := b.Max.X, b.Max.Y, b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := c.Img.Pix[(y-b.Min.Y)*c.Img.Stride:]
		for x := b.Min.X; x < b.Max.X; x++ {
			if row[x-b.Min.X] == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	if maxX < minX {
		return 0, 0, 0, 0, false
	}
	s := c.Scale
	left = float64(c.Origin.X-minX) / s
	right = float64(maxX+1-c.Origin.X) / s
	ascent = float64(c.Origin.Y-minY) / s
	descent = float64(maxY+1-c.Origin.Y) / s
	return left, right, ascent, descent, true
}
