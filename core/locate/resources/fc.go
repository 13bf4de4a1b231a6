package resources

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/npillmayer/inkmetrics/core"
	"github.com/npillmayer/inkmetrics/core/font"
	xfont "golang.org/x/image/font"
)

// findFontConfigFont searches for a locally installed font variant using the
// fontconfig system (https://www.freedesktop.org/wiki/Software/fontconfig/).
// fontconfig has to be configured by setting configuration key `fontconfig`
// to the absolute path of the 'fc-list' binary.
//
// The output of fc-list is copied to the user's config directory once.
// Subsequent calls will use the cached entries to search for a font, given a
// name pattern, a style and a weight.
//
// We call the binary instead of using the C library because of possible
// version issues. If fontconfig is not configured, findFontConfigFont will
// silently return an empty font descriptor and an empty variant name.
func (l *Loader) findFontConfigFont(pattern string, style xfont.Style, weight xfont.Weight) (
	desc font.Descriptor, variant string) {
	//
	l.fc.once.Do(func() {
		l.fc.descs, l.fc.ok = l.loadFontConfigList()
		tracer().Infof("loaded fontconfig list with %d entries", len(l.fc.descs))
	})
	if !l.fc.ok {
		return
	}
	var confidence font.MatchConfidence
	desc, variant, confidence = font.ClosestMatch(l.fc.descs, pattern, style, weight)
	tracer().Debugf("closest fontconfig match confidence for %s|%s = %d", desc.Family, variant, confidence)
	if confidence > font.LowConfidence {
		return
	}
	return font.Descriptor{}, ""
}

func (l *Loader) fontConfigBinary() (string, error) {
	fcpath := l.conf.GetString("fontconfig")
	if fcpath == "" {
		tracer().Infof("fontconfig not configured: key 'fontconfig' should point to location of 'fc-list' binary")
		return "", core.Error(core.EINVALID, "fontconfig not configured")
	}
	if !filepath.IsAbs(fcpath) {
		return "", core.Error(core.EINVALID, "fontconfig binary fc-list must point to absolute path: %s", fcpath)
	}
	fi, err := os.Stat(fcpath)
	if err != nil || (fi.Mode().Perm()&0100) == 0 {
		return "", core.WrapError(err, core.EINVALID, "fontconfig configuration points to an invalid binary: %s", fcpath)
	}
	return fcpath, nil
}

// cacheFontConfigList returns the path of a file holding the output of fc-list,
// creating it if necessary.
func (l *Loader) cacheFontConfigList() (string, error) {
	appkey := l.conf.GetString("app-key")
	uconfdir, err := os.UserConfigDir()
	if appkey == "" || err != nil {
		return "", core.Error(core.EINVALID, "user config directory not available")
	}
	dir := filepath.Join(uconfdir, appkey)
	fcListFilename := filepath.Join(dir, "fontlist.txt")
	if _, err := os.Stat(fcListFilename); err == nil {
		return fcListFilename, nil
	}
	fcpath, err := l.fontConfigBinary()
	if err != nil {
		return "", err
	}
	if err = os.MkdirAll(dir, 0755); err != nil {
		return "", core.WrapError(err, core.EINVALID, "user configuration path cannot be created: %s", dir)
	}
	fontlistFile, err := os.Create(fcListFilename)
	if err == nil {
		fccmd := exec.Command(fcpath)
		fccmd.Stdout = fontlistFile
		err = fccmd.Run()
		fontlistFile.Close()
	}
	if err != nil {
		os.Remove(fcListFilename)
		return "", core.WrapError(err, core.EINVALID, "fontconfig output file cannot be created: %s", fcListFilename)
	}
	return fcListFilename, nil
}

func (l *Loader) loadFontConfigList() ([]font.Descriptor, bool) {
	fclist, err := l.cacheFontConfigList()
	if err != nil {
		if core.Code(err) != core.EINVALID || l.conf.GetString("fontconfig") != "" {
			core.UserError(err)
		}
		return nil, false
	}
	fc, err := os.Open(fclist)
	if err != nil {
		core.UserError(core.WrapError(err, core.EINVALID, "fontconfig font list cannot be opened: %s", fclist))
		return nil, false
	}
	defer fc.Close()
	descs, err := parseFontConfigList(fc)
	if err != nil {
		core.UserError(core.WrapError(err, core.EINVALID,
			"encountered a problem during reading of fontconfig font list: %s", fclist))
		return descs, false
	}
	return descs, true
}

// parseFontConfigList reads lines of fc-list output, i.e.
//
//    /usr/share/fonts/Gentium-Italic.ttf: Gentium:style=Italic
//
func parseFontConfigList(r io.Reader) ([]font.Descriptor, error) {
	var descs []font.Descriptor
	scanner := bufio.NewScanner(r)
	ttc := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 3 {
			continue
		}
		fontpath := strings.TrimSpace(fields[0])
		if strings.HasSuffix(strings.ToLower(fontpath), ".ttc") {
			ttc++
			continue
		}
		fontname := strings.TrimPrefix(strings.TrimSpace(fields[1]), ".")
		if comma := strings.IndexByte(fontname, ','); comma > 0 {
			fontname = fontname[:comma] // localized alternatives follow
		}
		desc := font.Descriptor{Family: fontname, Path: fontpath}
		if v := fontConfigVariant(strings.ToLower(fields[2])); v != "" {
			desc.Variants = []string{v}
		}
		descs = append(descs, desc)
	}
	if ttc > 0 {
		tracer().Infof("skipping %d platform fonts: TTC not supported", ttc)
	}
	return descs, scanner.Err()
}

func fontConfigVariant(style string) string {
	switch {
	case strings.Contains(style, "bold") && strings.Contains(style, "italic"):
		return "700italic"
	case strings.Contains(style, "italic"), strings.Contains(style, "oblique"):
		return "italic"
	case strings.Contains(style, "light"), strings.Contains(style, "thin"):
		return "light"
	case strings.Contains(style, "bold"), strings.Contains(style, "black"):
		return "bold"
	case strings.Contains(style, "regular"), strings.Contains(style, "book"),
		strings.Contains(style, "text"), strings.Contains(style, "medium"):
		return "regular"
	}
	return ""
}
