package resources

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/inkmetrics/core"
	"github.com/npillmayer/inkmetrics/core/font"
	"github.com/npillmayer/inkmetrics/core/font/fontregistry"
	"github.com/npillmayer/schuko"
	xfont "golang.org/x/image/font"
	"golang.org/x/net/context/ctxhttp"
)

// Source prefixes understood by a Loader.
const (
	PackagedPrefix = "packaged:"
	SystemPrefix   = "system:"
	GooglePrefix   = "google:"
	FilePrefix     = "file://"
)

// NotFound returns an application error for a missing font.
func NotFound(name string, source string) error {
	if source == "" {
		return core.Error(core.EFONTUNAVAILABLE, "font not found: %s", name)
	}
	return core.Error(core.EFONTUNAVAILABLE, "font not found: %s (from %s)", name, source)
}

// Loader fetches fonts from sources. It implements fontregistry.Fetcher.
type Loader struct {
	conf   schuko.Configuration
	client *http.Client
	fc     struct {
		once  sync.Once
		descs []font.Descriptor
		ok    bool
	}
}

var _ fontregistry.Fetcher = (*Loader)(nil)

// NewLoader creates a font loader. If client is nil, http.DefaultClient
// will be used.
func NewLoader(conf schuko.Configuration, client *http.Client) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{conf: conf, client: client}
}

// Fetch loads a font from a source. See the package documentation for the
// kinds of sources supported. name is used to select style and weight where
// a source offers more than one variant, and to name cache files.
func (l *Loader) Fetch(ctx context.Context, name, source string) (f *font.ScalableFont, err error) {
	source = strings.TrimSpace(source)
	tracer().Debugf("fetching font %s from [%s]", name, source)
	switch {
	case source == "":
		family := font.BaseFontname(name)
		if f, err = l.packaged(name, family); err != nil {
			f, err = l.system(name, family)
		}
	case strings.HasPrefix(source, "https://"), strings.HasPrefix(source, "http://"):
		f, err = l.download(ctx, name, source)
	case strings.HasPrefix(source, PackagedPrefix):
		f, err = l.packaged(name, strings.TrimPrefix(source, PackagedPrefix))
	case strings.HasPrefix(source, SystemPrefix):
		f, err = l.system(name, strings.TrimPrefix(source, SystemPrefix))
	case strings.HasPrefix(source, GooglePrefix):
		f, err = l.google(ctx, name, strings.TrimPrefix(source, GooglePrefix))
	default:
		f, err = font.LoadOpenTypeFont(strings.TrimPrefix(source, FilePrefix))
	}
	if err != nil {
		return nil, err
	}
	if f.Fontname == "" {
		f.Fontname = name
	}
	if f.Filepath == "" {
		f.Filepath = source
	}
	tracer().Infof("loaded font %s (%s)", f.Fontname, f.Filepath)
	return f, nil
}

// packaged resolves a generic family to a bundled font. Style and weight
// are guessed from name.
func (l *Loader) packaged(name, family string) (*font.ScalableFont, error) {
	style, weight := font.GuessStyleAndWeight(name)
	if f, ok := font.GenericFont(family, style, weight); ok {
		return f, nil
	}
	return nil, NotFound(family, PackagedPrefix)
}

// system searches for a locally installed font matching pattern, preferably
// using fontconfig. Style and weight are guessed from name, or else from
// pattern.
func (l *Loader) system(name, pattern string) (*font.ScalableFont, error) {
	style, weight := font.GuessStyleAndWeight(name)
	if style == xfont.StyleNormal && weight == xfont.WeightNormal {
		style, weight = font.GuessStyleAndWeight(pattern)
	}
	if desc, variant := l.findFontConfigFont(pattern, style, weight); desc.Path != "" {
		tracer().Debugf("fontconfig found %s|%s at %s", desc.Family, variant, desc.Path)
		return font.LoadOpenTypeFont(desc.Path)
	}
	fpath, err := findfont.Find(pattern)
	if err != nil || fpath == "" {
		return nil, NotFound(pattern, SystemPrefix)
	}
	tracer().Debugf("%s is a system font at %s", pattern, fpath)
	return font.LoadOpenTypeFont(fpath)
}

// download gets a font from an URL, using the cache directory if enabled.
func (l *Loader) download(ctx context.Context, name, url string) (*font.ScalableFont, error) {
	if cachingEnabled(l.conf) {
		dir, err := CacheDirPath(l.conf, "fonts")
		if err == nil {
			return l.downloadCached(ctx, dir, name, url)
		}
		tracer().Errorf("font cache unavailable, downloading without cache: %v", err)
	}
	data, err := l.get(ctx, url)
	if err != nil {
		return nil, err
	}
	f, err := font.ParseOpenTypeFont(data)
	if err != nil {
		return nil, err
	}
	f.Filepath = url
	return f, nil
}

func (l *Loader) downloadCached(ctx context.Context, dir, name, url string) (*font.ScalableFont, error) {
	fpath := filepath.Join(dir, cacheFileName(name, url))
	if _, err := os.Stat(fpath); err == nil {
		tracer().Debugf("font %s found in cache: %s", name, fpath)
		return font.LoadOpenTypeFont(fpath)
	}
	if err := DownloadCachedFile(ctx, l.client, fpath, url); err != nil {
		return nil, err
	}
	f, err := font.LoadOpenTypeFont(fpath)
	if err != nil {
		os.Remove(fpath) // do not keep malformed data around
		return nil, err
	}
	return f, nil
}

// get reads the body of an HTTP GET request.
func (l *Loader) get(ctx context.Context, url string) ([]byte, error) {
	resp, err := ctxhttp.Get(ctx, l.client, url)
	if err != nil {
		return nil, core.WrapError(err, core.EFONTUNAVAILABLE, "cannot get %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, core.Error(core.EFONTUNAVAILABLE, "request for %s failed: %s", url, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.WrapError(err, core.EFONTUNAVAILABLE, "cannot read %s", url)
	}
	return data, nil
}

// --- Promises --------------------------------------------------------------

// FontPromise is the result of an asynchronous font acquisition.
type FontPromise interface {
	Font() (*font.ScalableFont, error)                                // wait for the font
	FontWithContext(ctx context.Context) (*font.ScalableFont, error) // wait for the font, at most until ctx is done
	Ready() bool                                                     // has acquisition completed?
}

type fontLoader struct {
	done chan struct{}
	font *font.ScalableFont
	err  error
}

func (loader *fontLoader) Font() (*font.ScalableFont, error) {
	return loader.FontWithContext(context.Background())
}

func (loader *fontLoader) FontWithContext(ctx context.Context) (*font.ScalableFont, error) {
	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, core.WrapError(ctx.Err(), core.ETIMEOUT, "gave up waiting for font")
		}
		return nil, core.WrapError(ctx.Err(), core.EFONTUNAVAILABLE, "request for font cancelled")
	case <-loader.done:
		return loader.font, loader.err
	}
}

func (loader *fontLoader) Ready() bool {
	select {
	case <-loader.done:
		return true
	default:
		return false
	}
}

// ResolveFont starts acquiring a font by name from source, registering it
// with a font registry. It returns a promise for the font immediately.
// Concurrent promises for the same font share a single fetch.
func ResolveFont(reg *fontregistry.Registry, name, source string) FontPromise {
	loader := &fontLoader{done: make(chan struct{})}
	go func() {
		defer close(loader.done)
		loader.font, loader.err = reg.Ensure(context.Background(), name, source)
	}()
	return loader
}
