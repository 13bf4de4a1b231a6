/*
Package textmetrics derives normalized text metrics for a string set in a
font, in two independent ways.

FromRasterizer asks a rasterization backend to render the text and reports
what it measured. FromOutline reconstructs the same quantities from glyph
outlines and the font-wide ascender and descender. Both apply the requested
text-case transform first and feed their raw numbers into metrics.Normalize,
rounding horizontal spacings to 2 and 3 decimal digits, respectively.

In principle both derivations agree. Reconcile compares two records field by
field.

Derivations are pure functions of their inputs and safe for concurrent use.
Fonts for outline derivation have to be acquired beforehand, usually through
a fontregistry.Registry.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

*/
package textmetrics

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'inkmetrics.metrics'
func tracer() tracing.Trace {
	return tracing.Select("inkmetrics.metrics")
}
