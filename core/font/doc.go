/*
Package font is for typeface and font handling.

There is a certain confusion in the nomenclature of typesetting. We will
stick to the following definitions:

* A "typeface" is a family of fonts. An example is "Helvetica".

* A "scalable font" is a font, i.e. a variant of a typeface with a
certain weight, slant, etc.  An example is "Helvetica regular".

* A "typecase" is a scaled font, i.e. a font in a certain size.
The name is reminiscent on the wooden boxes of typesetters in the era
of metal type.

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner.

A ScalableFont is the read-only outline font consumed by metrics
derivations. It exposes the font-wide vertical metrics in design units
(ascender, descender, units-per-em), advance widths and glyph paths of a
string at a given size. Glyph paths use a coordinate system with the text
origin on the baseline and y growing downwards.

Parsing of font binaries is left to golang.org/x/image/font/sfnt.

Font specification strings (the CSS `font` shorthand, e.g. "400 42px
weilai-yuan") are parsed by ParseSpec.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>

*/
package font

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'inkmetrics.fonts'
func tracer() tracing.Trace {
	return tracing.Select("inkmetrics.fonts")
}
