package flexi

import (
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/flexireact/flexi/pkg/routepath"
)

// staticRelPath maps a request path to a file path inside the static
// directory. Candidates go through the same canonicalization as route
// matching, so anything rejected there (backslash, NUL, bad escape, root
// escape) never reaches the filesystem. Non-canonical paths are not
// candidates either: they fall through to the route flow, which redirects
// to the canonical form, and that form comes back here.
func (a *App) staticRelPath(urlPath string) (string, bool) {
	if a.staticFS == nil || a.staticDir == "" {
		return "", false
	}

	canon, err := routepath.Canonicalize(urlPath)
	if err != nil || canon.Changed {
		return "", false
	}

	rel, ok := a.underStaticPrefix(canon.Path)
	if !ok || rel == "" {
		return "", false
	}
	return rel, true
}

// underStaticPrefix strips the configured URL prefix from a canonical path.
func (a *App) underStaticPrefix(canonPath string) (string, bool) {
	prefix := a.staticPrefix
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	if prefix == "/" {
		return strings.TrimPrefix(canonPath, "/"), true
	}
	return strings.CutPrefix(canonPath, prefix)
}

// shouldServeStatic reports whether a request path names an existing file in
// the static directory. Files win over routes, so this runs first.
func (a *App) shouldServeStatic(urlPath string) bool {
	rel, ok := a.staticRelPath(urlPath)
	if !ok {
		return false
	}
	f, _ := a.openStatic(rel)
	if f == nil {
		return false
	}
	f.Close()
	return true
}

// openStatic opens a regular file under the static directory. Directories
// and unreadable entries return nil.
func (a *App) openStatic(rel string) (http.File, os.FileInfo) {
	f, err := a.staticFS.Open(rel)
	if err != nil {
		return nil, nil
	}
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return nil, nil
	}
	return f, info
}

// serveStatic handles static file requests.
func (a *App) serveStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	rel, ok := a.staticRelPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	f, info := a.openStatic(rel)
	if f == nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	a.setStaticHeaders(w, rel)
	http.ServeContent(w, r, rel, info.ModTime(), f)
}

// setStaticHeaders writes cache and custom headers for a static response.
// DevMode overrides the configured strategy so edits show up on the next
// request.
func (a *App) setStaticHeaders(w http.ResponseWriter, rel string) {
	switch {
	case a.config.DevMode || a.config.Static.CacheControl == CacheControlNone:
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	case isFingerprinted(rel):
		// A hashed name changes with its content, so the response never
		// goes stale.
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	default:
		w.Header().Set("Cache-Control", "public, max-age=3600, must-revalidate")
	}

	for key, value := range a.config.Static.Headers {
		w.Header().Set(key, value)
	}
}

// isFingerprinted reports whether a file name carries a content hash the way
// bundlers emit them ("app.3f29bc71.js"): the segment before the extension
// is hex and at least eight characters.
func isFingerprinted(rel string) bool {
	name := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
	hash := strings.TrimPrefix(path.Ext(name), ".")
	if len(hash) < 8 {
		return false
	}
	for _, c := range hash {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
