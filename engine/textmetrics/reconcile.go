package textmetrics

import (
	"math"

	"github.com/npillmayer/inkmetrics/core/metrics"
)

// Delta is the difference of a single field between two metrics records.
// Boolean fields are represented as 0 or 1.
type Delta struct {
	Field   string
	A, B    float64
	Diff    float64 // B − A
	Exceeds bool    // |Diff| exceeds the tolerance
}

// Reconciliation is the field by field comparison of two metrics records.
type Reconciliation struct {
	Tolerance float64
	Deltas    []Delta
}

// Agree is true if no field differs by more than the tolerance.
func (r Reconciliation) Agree() bool {
	return len(r.Mismatches()) == 0
}

// Mismatches returns the deltas exceeding the tolerance.
func (r Reconciliation) Mismatches() []Delta {
	var mm []Delta
	for _, d := range r.Deltas {
		if d.Exceeds {
			mm = append(mm, d)
		}
	}
	return mm
}

// tiny absorbs floating point noise when comparing a difference to a tolerance.
const tiny = 1e-9

// Reconcile compares two metrics records, usually one derived by a rasterizer
// and one derived from outlines. Fields differing by more than tolerance
// (in pixels) are flagged. A difference in IsMinus is always flagged.
func Reconcile(a, b metrics.TextMetrics, tolerance float64) Reconciliation {
	if tolerance < 0 || math.IsNaN(tolerance) {
		tolerance = 0
	}
	r := Reconciliation{Tolerance: tolerance}
	fa, fb := a.Fields(), b.Fields()
	for i := range fa {
		d := Delta{Field: fa[i].Name}
		switch va := fa[i].Value.(type) {
		case bool:
			d.A, d.B = boolValue(va), boolValue(fb[i].Value.(bool))
			d.Diff = d.B - d.A
			d.Exceeds = d.Diff != 0
		case float64:
			d.A, d.B = va, fb[i].Value.(float64)
			d.Diff = d.B - d.A
			d.Exceeds = math.Abs(d.Diff) > tolerance+tiny || math.IsNaN(d.Diff)
		}
		r.Deltas = append(r.Deltas, d)
	}
	if mm := r.Mismatches(); len(mm) > 0 {
		tracer().Infof("metrics differ in %d fields (tolerance %g)", len(mm), tolerance)
	}
	return r
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
