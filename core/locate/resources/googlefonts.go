package resources

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/npillmayer/inkmetrics/core"
	"github.com/npillmayer/inkmetrics/core/font"
	xfont "golang.org/x/image/font"
)

// GoogleFontsCSS is the default endpoint of the Google Fonts CSS API. It may
// be overridden by configuration key `google-fonts-css`.
const GoogleFontsCSS = "https://fonts.googleapis.com/css2"

// google acquires a font from Google Fonts. spec is a family name, optionally
// followed by a query. A query parameter `text` requests a subset of the
// font, containing the glyphs for the given text only.
//
//    google:Noto Sans SC?text=黄河
//
// Style and weight are guessed from name.
func (l *Loader) google(ctx context.Context, name, spec string) (*font.ScalableFont, error) {
	family, query := spec, ""
	if q := strings.IndexByte(spec, '?'); q >= 0 {
		family, query = spec[:q], spec[q+1:]
	}
	family = strings.TrimSpace(family)
	if family == "" {
		return nil, core.Error(core.EINVALID, "Google font source lacks a family name: %q", spec)
	}
	style, weight := font.GuessStyleAndWeight(name)
	cssURL, err := l.googleCSSURL(family, query, style, weight)
	if err != nil {
		return nil, err
	}
	tracer().Debugf("requesting Google font CSS %s", cssURL)
	data, err := l.get(ctx, cssURL)
	if err != nil {
		return nil, err
	}
	descs, err := parseFontFaces(string(data))
	if err != nil {
		return nil, err
	}
	desc, variant, confidence := font.ClosestMatch(descs, family, style, weight)
	if confidence == font.NoConfidence {
		return nil, NotFound(family, GooglePrefix)
	}
	tracer().Debugf("Google font %s|%s with confidence %d at %s", desc.Family, variant, confidence, desc.Path)
	f, err := l.download(ctx, name, desc.Path)
	if err != nil {
		return nil, err
	}
	if f.Fontname == "" {
		f.Fontname = desc.Family
	}
	return f, nil
}

func (l *Loader) googleCSSURL(family, query string, style xfont.Style, weight xfont.Weight) (string, error) {
	endpoint := GoogleFontsCSS
	if l.conf.IsSet("google-fonts-css") {
		endpoint = l.conf.GetString("google-fonts-css")
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return "", core.WrapError(err, core.EINVALID, "malformed Google font query %q", query)
	}
	fam := family
	if style != xfont.StyleNormal || weight != xfont.WeightNormal {
		ital := "0"
		if style != xfont.StyleNormal {
			ital = "1"
		}
		fam += ":ital,wght@" + ital + "," + strconv.Itoa(cssWeight(weight))
	}
	values.Set("family", fam)
	return endpoint + "?" + values.Encode(), nil
}

var srcURL = regexp.MustCompile(`url\(\s*['"]?([^'")\s]+)['"]?\s*\)`)

// parseFontFaces extracts the @font-face rules of a stylesheet. Every rule
// results in a descriptor with a single variant, named the way Google names
// variants ("regular", "italic", "700", "700italic", …).
func parseFontFaces(stylesheet string) ([]font.Descriptor, error) {
	sheet, err := parser.Parse(stylesheet)
	if err != nil {
		return nil, core.WrapError(err, core.EFONTUNAVAILABLE, "cannot parse font stylesheet")
	}
	var descs []font.Descriptor
	for _, rule := range sheet.Rules {
		if rule.Kind != css.AtRule || rule.Name != "@font-face" {
			continue
		}
		var desc font.Descriptor
		italic, weight := false, "400"
		for _, decl := range rule.Declarations {
			v := strings.TrimSpace(decl.Value)
			switch strings.ToLower(decl.Property) {
			case "font-family":
				desc.Family = strings.Trim(v, `'"`)
			case "font-style":
				italic = v == "italic" || v == "oblique"
			case "font-weight":
				weight = v
			case "src":
				if m := srcURL.FindStringSubmatch(v); m != nil {
					desc.Path = m[1]
				}
			}
		}
		if desc.Family == "" || desc.Path == "" {
			continue
		}
		variant := weight
		switch {
		case italic && weight == "400":
			variant = "italic"
		case italic:
			variant = weight + "italic"
		case weight == "400":
			variant = "regular"
		}
		desc.Variants = []string{variant}
		descs = append(descs, desc)
	}
	if len(descs) == 0 {
		return nil, core.Error(core.EFONTUNAVAILABLE, "stylesheet does not contain usable font faces")
	}
	return descs, nil
}

// cssWeight maps a font weight to its numeric CSS value.
func cssWeight(w xfont.Weight) int {
	return (int(w) + 4) * 100
}
