package font

import (
	"fmt"
	"math"

	"golang.org/x/image/font/sfnt"
)

// Point is a point in rendered units, y growing downwards.
type Point struct {
	X, Y float64
}

// Segment is a segment of a glyph path. Args hold 1 (move, line),
// 2 (quadratic) or 3 (cubic) points; the last one is the end point.
type Segment struct {
	Op   sfnt.SegmentOp
	Args [3]Point
}

func (s Segment) points() int {
	switch s.Op {
	case sfnt.SegmentOpQuadTo:
		return 2
	case sfnt.SegmentOpCubeTo:
		return 3
	}
	return 1
}

// GlyphPath is the outline of a run of glyphs.
type GlyphPath struct {
	Segments []Segment
}

// BBox is an axis-aligned bounding box. Y1 is the topmost coordinate, which
// is negative for ink above the baseline; Y2 is the bottommost one.
type BBox struct {
	X1, Y1, X2, Y2 float64
}

func (b BBox) String() string {
	return fmt.Sprintf("(%.3f,%.3f)-(%.3f,%.3f)", b.X1, b.Y1, b.X2, b.Y2)
}

// Width of the box.
func (b BBox) Width() float64 { return b.X2 - b.X1 }

// Height of the box.
func (b BBox) Height() float64 { return b.Y2 - b.Y1 }

type bboxBuilder struct {
	box   BBox
	empty bool
}

func (bb *bboxBuilder) addPoint(p Point) {
	if bb.empty {
		bb.box = BBox{p.X, p.Y, p.X, p.Y}
		bb.empty = false
		return
	}
	bb.addX(p.X)
	bb.addY(p.Y)
}

func (bb *bboxBuilder) addX(x float64) {
	bb.box.X1 = math.Min(bb.box.X1, x)
	bb.box.X2 = math.Max(bb.box.X2, x)
}

func (bb *bboxBuilder) addY(y float64) {
	bb.box.Y1 = math.Min(bb.box.Y1, y)
	bb.box.Y2 = math.Max(bb.box.Y2, y)
}

// BoundingBox returns the exact bounding box of the path, including the
// extrema of curve segments (not just their control points).
// An empty path has a bounding box of all zeros.
func (p *GlyphPath) BoundingBox() BBox {
	bb := bboxBuilder{empty: true}
	var pen Point
	for _, s := range p.Segments {
		switch s.Op {
		case sfnt.SegmentOpMoveTo, sfnt.SegmentOpLineTo:
			bb.addPoint(s.Args[0])
			pen = s.Args[0]
		case sfnt.SegmentOpQuadTo:
			bb.addPoint(pen)
			bb.addPoint(s.Args[1])
			for _, t := range quadExtrema(pen.X, s.Args[0].X, s.Args[1].X) {
				bb.addX(quadAt(pen.X, s.Args[0].X, s.Args[1].X, t))
			}
			for _, t := range quadExtrema(pen.Y, s.Args[0].Y, s.Args[1].Y) {
				bb.addY(quadAt(pen.Y, s.Args[0].Y, s.Args[1].Y, t))
			}
			pen = s.Args[1]
		case sfnt.SegmentOpCubeTo:
			bb.addPoint(pen)
			bb.addPoint(s.Args[2])
			for _, t := range cubeExtrema(pen.X, s.Args[0].X, s.Args[1].X, s.Args[2].X) {
				bb.addX(cubeAt(pen.X, s.Args[0].X, s.Args[1].X, s.Args[2].X, t))
			}
			for _, t := range cubeExtrema(pen.Y, s.Args[0].Y, s.Args[1].Y, s.Args[2].Y) {
				bb.addY(cubeAt(pen.Y, s.Args[0].Y, s.Args[1].Y, s.Args[2].Y, t))
			}
			pen = s.Args[2]
		}
	}
	if bb.empty {
		return BBox{}
	}
	return bb.box
}

func quadAt(p0, p1, p2, t float64) float64 {
	mt := 1 - t
	return mt*mt*p0 + 2*mt*t*p1 + t*t*p2
}

// quadExtrema returns the parameters t in (0,1) where the derivative of a
// quadratic Bézier component vanishes.
func quadExtrema(p0, p1, p2 float64) []float64 {
	d := p0 - 2*p1 + p2
	if d == 0 {
		return nil
	}
	t := (p0 - p1) / d
	if t > 0 && t < 1 {
		return []float64{t}
	}
	return nil
}

func cubeAt(p0, p1, p2, p3, t float64) float64 {
	mt := 1 - t
	return mt*mt*mt*p0 + 3*mt*mt*t*p1 + 3*mt*t*t*p2 + t*t*t*p3
}

// cubeExtrema returns the parameters t in (0,1) where the derivative of a
// cubic Bézier component vanishes. The derivative is proportional to
// a·t² + b·t + c.
func cubeExtrema(p0, p1, p2, p3 float64) []float64 {
	d0, d1, d2 := p1-p0, p2-p1, p3-p2
	a := d0 - 2*d1 + d2
	b := 2 * (d1 - d0)
	c := d0
	var ts []float64
	if math.Abs(a) < 1e-12 {
		if b != 0 {
			ts = append(ts, -c/b)
		}
	} else {
		disc := b*b - 4*a*c
		if disc < 0 {
			return nil
		}
		sq := math.Sqrt(disc)
		ts = append(ts, (-b+sq)/(2*a), (-b-sq)/(2*a))
	}
	inside := ts[:0]
	for _, t := range ts {
		if t > 0 && t < 1 {
			inside = append(inside, t)
		}
	}
	return inside
}
