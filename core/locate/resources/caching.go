package resources

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/inkmetrics/core"
	"github.com/npillmayer/schuko"
	"golang.org/x/net/context/ctxhttp"
)

// DownloadCachedFile will download an URL to a local file (usually located in
// the user's cache directory). The file is written only if the download has
// completed successfully.
func DownloadCachedFile(ctx context.Context, client *http.Client, path string, url string) error {
	resp, err := ctxhttp.Get(ctx, client, url)
	if err != nil {
		return core.WrapError(err, core.EFONTUNAVAILABLE, "cannot download %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return core.Error(core.EFONTUNAVAILABLE, "download of %s failed: %s", url, resp.Status)
	}
	out, err := os.CreateTemp(filepath.Dir(path), ".download-*")
	if err != nil {
		return core.WrapError(err, core.EFONTUNAVAILABLE, "cannot create cache file for %s", url)
	}
	tmp := out.Name()
	defer os.Remove(tmp) // no-op after successful rename
	if _, err = io.Copy(out, resp.Body); err != nil {
		out.Close()
		return core.WrapError(err, core.EFONTUNAVAILABLE, "download of %s interrupted", url)
	}
	if err = out.Close(); err != nil {
		return core.WrapError(err, core.EFONTUNAVAILABLE, "cannot write cache file for %s", url)
	}
	return os.Rename(tmp, path)
}

// CacheDirPath checks and possibly creates a folder in the user's cache
// directory. The base cache directory is taken from `os.UserCacheDir()`, plus
// an application specific key, taken as `app-key` from the configuration.
// Clients may specify a sequence of folder names, which will be appended to
// the base cache path. Non-existing sub-folders will be created as necessary
// (with permissions 755).
func CacheDirPath(conf schuko.Configuration, subfolders ...string) (string, error) {
	appkey := conf.GetString("app-key")
	tracer().Debugf("config[%s] = %s", "app-key", appkey)
	if appkey == "" {
		tracer().Errorf("application key is not set")
		return "", core.Error(core.EINVALID, "configuration lacks an app-key")
	}
	cachedir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	subs := filepath.Join(subfolders...)
	cachedir = filepath.Join(cachedir, appkey, subs)
	tracer().Debugf("caching in %s", cachedir)
	if _, err = os.Stat(cachedir); os.IsNotExist(err) {
		if err = os.MkdirAll(cachedir, 0755); err != nil {
			return "", err
		}
	}
	return cachedir, nil
}

// cacheFileName derives a file name for a font downloaded from an URL.
// Different URLs for the same font name (e.g. subsets) get different files.
func cacheFileName(name, url string) string {
	h := sha1.Sum([]byte(url))
	base := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '?', '*', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
	return fmt.Sprintf("%s-%s.font", base, hex.EncodeToString(h[:6]))
}

// cachingEnabled is true unless configuration key `font-cache` is explicitly
// set to false.
func cachingEnabled(conf schuko.Configuration) bool {
	return !conf.IsSet("font-cache") || conf.GetBool("font-cache")
}
