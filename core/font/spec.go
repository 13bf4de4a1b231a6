package font

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aymerick/douceur/parser"
	"github.com/npillmayer/inkmetrics/core"
	xfont "golang.org/x/image/font"
)

// Spec is a font specification as used by rasterization backends: a list of
// font families together with style, weight and a size in pixels.
type Spec struct {
	Style    xfont.Style
	Weight   xfont.Weight
	Size     float64 // pixels
	Families []string
}

// ParseSpec parses a font specification. It accepts either the CSS `font`
// shorthand
//
//     [style] [weight] <size>(px|pt)[/line-height] <family>[, <family>…]
//
// e.g. "400 42px weilai-yuan", or a CSS declaration list with any of the
// properties font, font-family, font-size, font-weight and font-style.
// Invalid specifications result in an error with code core.EINVALID.
func ParseSpec(spec string) (Spec, error) {
	s := Spec{Style: xfont.StyleNormal, Weight: xfont.WeightNormal}
	text := strings.TrimRight(strings.TrimSpace(spec), ";")
	if text == "" {
		return s, core.Error(core.EINVALID, "empty font specification")
	}
	if !strings.Contains(text, ":") {
		text = "font: " + text
	}
	decls, err := parser.ParseDeclarations(text + ";")
	if err != nil {
		return s, core.WrapError(err, core.EINVALID, "cannot parse font specification %q", spec)
	}
	for _, d := range decls {
		switch strings.ToLower(d.Property) {
		case "font":
			err = s.parseShorthand(d.Value)
		case "font-family":
			s.Families = splitFamilies(d.Value)
		case "font-size":
			s.Size, err = parseSize(d.Value)
		case "font-weight":
			s.Weight, err = parseWeight(d.Value)
		case "font-style":
			s.Style, err = parseStyle(d.Value)
		default:
			tracer().Debugf("font specification: ignoring property %q", d.Property)
		}
		if err != nil {
			return s, core.WrapError(err, core.EINVALID, "invalid font specification %q", spec)
		}
	}
	if s.Size <= 0 {
		return s, core.Error(core.EINVALID, "font specification %q lacks a size", spec)
	}
	if len(s.Families) == 0 {
		return s, core.Error(core.EINVALID, "font specification %q lacks a font family", spec)
	}
	return s, nil
}

func (s *Spec) parseShorthand(v string) (err error) {
	fields := strings.Fields(v)
	for i, f := range fields {
		if f == "" || !(f[0] >= '0' && f[0] <= '9' || f[0] == '.') || isNumber(f) {
			// style, variant, weight or stretch
			if st, e := parseStyle(f); e == nil && f != "normal" {
				s.Style = st
			} else if w, e := parseWeight(f); e == nil {
				s.Weight = w
			} else {
				tracer().Debugf("font shorthand: ignoring %q", f)
			}
			continue
		}
		if slash := strings.IndexByte(f, '/'); slash > 0 {
			f = f[:slash] // line-height is irrelevant
		}
		if s.Size, err = parseSize(f); err != nil {
			return err
		}
		s.Families = splitFamilies(strings.Join(fields[i+1:], " "))
		return nil
	}
	return fmt.Errorf("font shorthand %q lacks a size", v)
}

// Family returns the first font family of s.
func (s Spec) Family() string {
	if len(s.Families) == 0 {
		return ""
	}
	return s.Families[0]
}

// String returns s in CSS `font` shorthand notation.
func (s Spec) String() string {
	var b strings.Builder
	switch s.Style {
	case xfont.StyleItalic:
		b.WriteString("italic ")
	case xfont.StyleOblique:
		b.WriteString("oblique ")
	}
	fmt.Fprintf(&b, "%d %spx ", (int(s.Weight)+4)*100, strconv.FormatFloat(s.Size, 'f', -1, 64))
	for i, fam := range s.Families {
		if i > 0 {
			b.WriteString(", ")
		}
		if strings.ContainsAny(fam, " ,") {
			fam = strconv.Quote(fam)
		}
		b.WriteString(fam)
	}
	return b.String()
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// splitFamilies splits a list of families at commas outside of quotes.
func splitFamilies(v string) []string {
	var fams []string
	var quote rune
	start := 0
	add := func(f string) {
		f = strings.TrimSpace(f)
		if len(f) >= 2 && (f[0] == '"' || f[0] == '\'') && f[len(f)-1] == f[0] {
			f = f[1 : len(f)-1]
		} else {
			f = strings.Trim(f, `"'`)
		}
		if f = strings.TrimSpace(f); f != "" {
			fams = append(fams, f)
		}
	}
	for i, r := range v {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == ',':
			add(v[start:i])
			start = i + 1
		}
	}
	add(v[start:])
	return fams
}

func parseSize(v string) (float64, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	factor := 1.0
	switch {
	case strings.HasSuffix(v, "px"):
		v = v[:len(v)-2]
	case strings.HasSuffix(v, "pt"):
		v, factor = v[:len(v)-2], 4.0/3.0
	default:
		return 0, fmt.Errorf("font size %q must be given in px or pt", v)
	}
	size, err := strconv.ParseFloat(v, 64)
	if err != nil || size <= 0 || math.IsInf(size, 0) {
		return 0, fmt.Errorf("invalid font size %q", v)
	}
	return size * factor, nil
}

// parseWeight maps CSS font weights to x/image weights. Numeric weights are
// rounded to the nearest hundred.
func parseWeight(v string) (xfont.Weight, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "normal":
		return xfont.WeightNormal, nil
	case "bold", "bolder":
		return xfont.WeightBold, nil
	case "lighter":
		return xfont.WeightLight, nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || n < 1 || n > 1000 {
		return xfont.WeightNormal, fmt.Errorf("invalid font weight %q", v)
	}
	h := int(math.Floor(n/100 + 0.5))
	if h < 1 {
		h = 1
	} else if h > 9 {
		h = 9
	}
	return xfont.Weight(h - 4), nil
}

func parseStyle(v string) (xfont.Style, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "normal":
		return xfont.StyleNormal, nil
	case "italic":
		return xfont.StyleItalic, nil
	case "oblique":
		return xfont.StyleOblique, nil
	}
	return xfont.StyleNormal, fmt.Errorf("invalid font style %q", v)
}
