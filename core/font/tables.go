package font

import (
	"encoding/binary"

	"github.com/npillmayer/inkmetrics/core"
	xfont "golang.org/x/image/font"
)

// readVerticalMetrics sets units-per-em, ascender and descender from the
// font's hhea table. Fonts with an all-zero hhea record fall back to the
// typographic ascender/descender of table OS/2.
func (sf *ScalableFont) readVerticalMetrics() error {
	sf.upem = float64(sf.SFNT.UnitsPerEm())
	if sf.upem <= 0 {
		return core.Error(core.EFONTPARSE, "font %q has invalid units-per-em", sf.Fontname)
	}
	m, err := sf.SFNT.Metrics(nil, sf.designPPEM(), xfont.HintingNone)
	if err != nil {
		return core.WrapError(err, core.EFONTPARSE, "cannot read metrics of font %q", sf.Fontname)
	}
	sf.ascent = float64(m.Ascent)
	sf.descent = -float64(m.Descent)
	if sf.ascent == 0 && sf.descent == 0 {
		if asc, desc, ok := typoMetrics(sf.Binary); ok {
			tracer().Infof("font %q has empty hhea metrics, using OS/2", sf.Fontname)
			sf.ascent, sf.descent = float64(asc), float64(desc)
		}
	}
	return nil
}

// typoMetrics extracts sTypoAscender and sTypoDescender from table OS/2.
// Font collections are not searched.
func typoMetrics(b []byte) (ascender, descender int16, ok bool) {
	// Offset Table is 12 bytes, followed by table records of 16 bytes each.
	if len(b) < 12 {
		return
	}
	switch binary.BigEndian.Uint32(b) {
	case 0x00010000, 0x4f54544f, 0x74727565: // TrueType, OTTO, true
	default:
		return
	}
	n := int(binary.BigEndian.Uint16(b[4:]))
	for i := 0; i < n; i++ {
		rec := 12 + 16*i
		if rec+16 > len(b) {
			return
		}
		if string(b[rec:rec+4]) != "OS/2" {
			continue
		}
		off := int(binary.BigEndian.Uint32(b[rec+8:]))
		size := int(binary.BigEndian.Uint32(b[rec+12:]))
		// sTypoAscender at 68, sTypoDescender at 70
		if size < 72 || off+72 > len(b) {
			return
		}
		ascender = int16(binary.BigEndian.Uint16(b[off+68:]))
		descender = int16(binary.BigEndian.Uint16(b[off+70:]))
		return ascender, descender, true
	}
	return
}
