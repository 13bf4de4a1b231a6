package fontregistry

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/derekparker/trie"
	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/npillmayer/inkmetrics/core"
	"github.com/npillmayer/inkmetrics/core/font"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/tracing"
	xfont "golang.org/x/image/font"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout is the time a font fetch may take if not configured otherwise.
const DefaultTimeout = 30 * time.Second

// Fetcher acquires a font from a source, e.g. an URL.
type Fetcher interface {
	Fetch(ctx context.Context, name, source string) (*font.ScalableFont, error)
}

// FetcherFunc lets an ordinary function act as a Fetcher.
type FetcherFunc func(ctx context.Context, name, source string) (*font.ScalableFont, error)

// Fetch calls f(ctx, name, source).
func (f FetcherFunc) Fetch(ctx context.Context, name, source string) (*font.ScalableFont, error) {
	return f(ctx, name, source)
}

// Registry is a type for holding information about loaded fonts.
// A Registry is safe for concurrent use.
type Registry struct {
	sync.RWMutex
	fonts    *linkedhashmap.Map // normalized name -> *font.ScalableFont, in order of insertion
	index    *trie.Trie         // normalized names, for prefix search
	inflight singleflight.Group
	fetcher  Fetcher
	timeout  time.Duration
	capacity int
}

// Option configures a registry.
type Option func(*Registry)

// WithFetcher sets the font source used by Ensure.
func WithFetcher(f Fetcher) Option {
	return func(fr *Registry) {
		fr.fetcher = f
	}
}

// WithTimeout sets the time limit for a single font fetch.
func WithTimeout(d time.Duration) Option {
	return func(fr *Registry) {
		if d > 0 {
			fr.timeout = d
		}
	}
}

// WithCapacity limits the number of fonts held. If the limit is exceeded, the
// font registered first will be evicted. A capacity of 0 means unbounded.
func WithCapacity(n int) Option {
	return func(fr *Registry) {
		if n >= 0 {
			fr.capacity = n
		}
	}
}

// NewRegistry creates an empty font registry.
func NewRegistry(opts ...Option) *Registry {
	fr := &Registry{
		fonts:   linkedhashmap.New(),
		index:   trie.New(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(fr)
	}
	return fr
}

// NewRegistryFromConfig creates a font registry with settings taken from
// configuration keys `fetch-timeout` and `registry-capacity`.
func NewRegistryFromConfig(conf schuko.Configuration, fetcher Fetcher) *Registry {
	timeout := DefaultTimeout
	if conf.IsSet("fetch-timeout") {
		if d, err := time.ParseDuration(conf.GetString("fetch-timeout")); err == nil {
			timeout = d
		} else {
			tracer().Errorf("invalid fetch-timeout %q, using %v", conf.GetString("fetch-timeout"), timeout)
		}
	}
	return NewRegistry(
		WithFetcher(fetcher),
		WithTimeout(timeout),
		WithCapacity(conf.GetInt("registry-capacity")),
	)
}

// Key returns the normalized registry key for a font name.
func Key(name string) string {
	return font.NormalizeFontname(name, xfont.StyleNormal, xfont.WeightNormal)
}

// StoreFont pushes a font into the registry if it isn't contained yet.
//
// The font will be stored using the normalized font name as a key. If this
// key is already associated with a font, that font will not be overridden.
func (fr *Registry) StoreFont(name string, f *font.ScalableFont) {
	if f == nil {
		tracer().Errorf("registry cannot store null font")
		return
	}
	fr.store(Key(name), f)
}

func (fr *Registry) store(key string, f *font.ScalableFont) {
	fr.Lock()
	defer fr.Unlock()
	if _, ok := fr.fonts.Get(key); ok {
		return
	}
	tracer().Debugf("registry stores font %s as %s", f.Fontname, key)
	fr.fonts.Put(key, f)
	fr.index.Add(key, f.Fontname)
	for fr.capacity > 0 && fr.fonts.Size() > fr.capacity {
		oldest := fr.fonts.Keys()[0].(string)
		tracer().Infof("registry is full, evicts font %s", oldest)
		fr.remove(oldest)
	}
}

// remove expects the registry to be locked and key to be present.
func (fr *Registry) remove(key string) {
	fr.fonts.Remove(key)
	fr.index.Remove(key)
}

// Lookup returns a font registered under name, if present.
func (fr *Registry) Lookup(name string) (*font.ScalableFont, bool) {
	return fr.lookup(Key(name))
}

func (fr *Registry) lookup(key string) (*font.ScalableFont, bool) {
	fr.RLock()
	defer fr.RUnlock()
	if f, ok := fr.fonts.Get(key); ok {
		return f.(*font.ScalableFont), true
	}
	return nil, false
}

// Match returns a font for a family name. A font registered for the family
// in the exact style and weight is preferred over the family's plain entry.
func (fr *Registry) Match(family string, style xfont.Style, weight xfont.Weight) (*font.ScalableFont, bool) {
	if f, ok := fr.lookup(font.NormalizeFontname(family, style, weight)); ok {
		return f, true
	}
	return fr.Lookup(family)
}

// Evict removes a font from the registry. It returns false if no font has
// been registered under name.
func (fr *Registry) Evict(name string) bool {
	key := Key(name)
	fr.Lock()
	defer fr.Unlock()
	if _, ok := fr.fonts.Get(key); !ok {
		return false
	}
	fr.remove(key)
	return true
}

// Clear removes all fonts. Fetches in flight are not affected.
func (fr *Registry) Clear() {
	fr.Lock()
	defer fr.Unlock()
	fr.fonts.Clear()
	fr.index = trie.New()
}

// Size returns the number of registered fonts.
func (fr *Registry) Size() int {
	fr.RLock()
	defer fr.RUnlock()
	return fr.fonts.Size()
}

// Names returns the sorted keys of all fonts with a normalized name starting
// with prefix.
func (fr *Registry) Names(prefix string) []string {
	prefix = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(prefix), " ", "_"))
	fr.RLock()
	defer fr.RUnlock()
	var names []string
	if prefix == "" {
		names = fr.index.Keys()
	} else {
		names = fr.index.PrefixSearch(prefix)
	}
	sort.Strings(names)
	return names
}

// Ensure returns the font registered under name. If no such font is present,
// it is fetched from source and registered. There is at most one fetch in
// flight per name; callers arriving during a fetch wait for its outcome.
//
// ctx limits the time the caller is willing to wait, but does not cancel the
// fetch itself, which may serve other callers as well. Fetching is limited by
// the registry's timeout; exceeding it results in an error with code
// core.ETIMEOUT.
func (fr *Registry) Ensure(ctx context.Context, name, source string) (*font.ScalableFont, error) {
	key := Key(name)
	if key == "" {
		return nil, core.Error(core.EINVALID, "font name must not be empty")
	}
	if f, ok := fr.lookup(key); ok {
		return f, nil
	}
	ch := fr.inflight.DoChan(key, func() (interface{}, error) {
		return fr.fetch(key, name, source)
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Shared {
			tracer().Debugf("font %s has been fetched for concurrent requests", key)
		}
		return r.Val.(*font.ScalableFont), nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, core.WrapError(ctx.Err(), core.ETIMEOUT, "gave up waiting for font %q", name)
		}
		return nil, core.WrapError(ctx.Err(), core.EFONTUNAVAILABLE, "request for font %q cancelled", name)
	}
}

type fetchResult struct {
	font *font.ScalableFont
	err  error
}

func (fr *Registry) fetch(key, name, source string) (*font.ScalableFont, error) {
	// a fetch for key may have completed between lookup and DoChan
	if f, ok := fr.lookup(key); ok {
		return f, nil
	}
	if fr.fetcher == nil {
		return nil, core.Error(core.EFONTUNAVAILABLE, "no font source configured to fetch %q", name)
	}
	tracer().Infof("registry fetches font %s from %s", name, source)
	ctx, cancel := context.WithTimeout(context.Background(), fr.timeout)
	defer cancel()
	done := make(chan fetchResult, 1)
	go func() {
		f, err := fr.fetcher.Fetch(ctx, name, source)
		done <- fetchResult{f, err}
	}()
	var r fetchResult
	select {
	case r = <-done:
	case <-ctx.Done():
		r.err = ctx.Err()
	}
	if r.err == nil && r.font == nil {
		r.err = core.Error(core.EFONTUNAVAILABLE, "font source returned no font for %q", name)
	}
	if r.err != nil {
		tracer().Errorf("fetching font %s failed: %v", name, r.err)
		if errors.Is(r.err, context.DeadlineExceeded) {
			return nil, core.WrapError(r.err, core.ETIMEOUT, "font %q not loaded within %v", name, fr.timeout)
		}
		var appErr core.AppError
		if !errors.As(r.err, &appErr) {
			return nil, core.WrapError(r.err, core.EFONTUNAVAILABLE, "cannot fetch font %q", name)
		}
		return nil, r.err
	}
	fr.store(key, r.font)
	if f, ok := fr.lookup(key); ok {
		return f, nil
	}
	return r.font, nil // already evicted by concurrent stores
}

// LogFontList is a helper function to dump the list of known fonts in a
// registry to the trace-file (log-level Info).
func (fr *Registry) LogFontList() {
	level := tracer().GetTraceLevel()
	tracer().SetTraceLevel(tracing.LevelInfo)
	defer tracer().SetTraceLevel(level)
	fr.RLock()
	defer fr.RUnlock()
	tracer().Infof("--- registered fonts ---")
	fr.fonts.Each(func(k, v interface{}) {
		f := v.(*font.ScalableFont)
		tracer().Infof("font [%s] = %v (%s)", k, f.Fontname, f.Filepath)
	})
	tracer().Infof("------------------------")
}
