/*
Package raster defines the interface to rasterization backends which measure
text by rendering it.

A Backend renders a run of text off-screen and reports the advance width,
the extent of the ink actually drawn and the font-wide ascent and descent,
in the manner of the HTML canvas `measureText` API. Backends are headless
software renderers; the drawing surface is allocated and released for every
call to Measure.

Sub-packages provide implementations:

   vectorbackend   renders glyph outlines with golang.org/x/image/vector
   ftbackend       renders glyphs with the FreeType port github.com/golang/freetype

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

*/
package raster

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'inkmetrics.raster'
func tracer() tracing.Trace {
	return tracing.Select("inkmetrics.raster")
}
