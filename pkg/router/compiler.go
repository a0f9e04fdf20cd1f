package router

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// Compiler turns a routes directory into a Table. A compile pass is a
// synchronous, single-threaded walk; callers rebuild and swap the resulting
// table instead of mutating it.
type Compiler struct {
	root string
	exts map[string]bool
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithExtensions sets the file extensions recognized as route files. The
// default is ".go". Mixed front-end trees can opt into ".tsx", ".jsx", ".ts"
// and ".js".
func WithExtensions(exts ...string) Option {
	return func(c *Compiler) {
		c.exts = make(map[string]bool, len(exts))
		for _, ext := range exts {
			c.exts[ext] = true
		}
	}
}

// NewCompiler creates a compiler rooted at the given directory.
func NewCompiler(root string, opts ...Option) *Compiler {
	c := &Compiler{
		root: root,
		exts: map[string]bool{".go": true},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile walks the routes directory and produces an immutable Table.
// A missing root directory yields an empty table, not an error: route
// compilation must never abort a build.
func (c *Compiler) Compile() (*Table, error) {
	if _, err := os.Stat(c.root); os.IsNotExist(err) {
		return NewTable(nil, NewLayoutIndex()), nil
	}

	var routes []Route
	layouts := NewLayoutIndex()
	if err := c.walk("", "", "", inherited{}, &routes, layouts); err != nil {
		return nil, err
	}
	return NewTable(routes, layouts), nil
}

// inherited carries the nearest special file of each kind down the tree.
// Overriding a field in a directory makes it the nearest for all descendants.
type inherited struct {
	layout    string
	loading   string
	errorPage string
	notFound  string
}

// walk processes one directory, identified by its slash-separated path
// relative to the routes root (empty at the root). Within a directory,
// special files are recorded first, then ordinary files become routes, then
// subdirectories are visited. os.ReadDir returns entries sorted by name, so
// scan order (and with it match precedence) is deterministic.
//
// Source paths in the resulting routes are relative to the root and
// slash-separated, so tables compare equal across machines and handlers
// register under stable keys.
//
// groupLayout is non-empty when dir is a route group: the group owns no URL
// segment, so its layout is indexed under that hidden name instead of a
// segment name.
func (c *Compiler) walk(rel, prefix, groupLayout string, inh inherited, routes *[]Route, layouts *LayoutIndex) error {
	dir := filepath.Join(c.root, filepath.FromSlash(rel))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.IsDir() || !c.recognized(e.Name()) {
			continue
		}
		base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		source := path.Join(rel, e.Name())
		switch base {
		case "layout":
			inh.layout = source
			if groupLayout != "" {
				layouts.AddHidden(groupLayout, source)
			} else {
				layouts.Add(segmentName(prefix), source)
			}
		case "loading":
			inh.loading = source
		case "error":
			inh.errorPage = source
		case "not-found", "404":
			inh.notFound = source
		}
	}

	for _, e := range entries {
		if e.IsDir() || !c.recognized(e.Name()) {
			continue
		}
		base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if isSpecialName(base) {
			continue
		}

		pattern := joinPattern(prefix, base)
		route := Route{
			Kind:       classifyKind(pattern),
			Pattern:    pattern,
			SourcePath: path.Join(rel, e.Name()),
			Segments:   patternSegments(pattern),
			Render:     sniffRenderKind(filepath.Join(dir, e.Name())),
			Matcher:    CompilePattern(pattern),
			Layout:     inh.layout,
			Loading:    inh.loading,
			ErrorPage:  inh.errorPage,
			NotFound:   inh.notFound,
		}
		*routes = append(*routes, route)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "node_modules" {
			continue
		}

		childPrefix := prefix
		childGroup := ""
		if group, ok := groupName(name); ok {
			childGroup = group
		} else {
			childPrefix = prefix + "/" + convertBrackets(name)
		}

		if err := c.walk(path.Join(rel, name), childPrefix, childGroup, inh, routes, layouts); err != nil {
			return err
		}
	}

	return nil
}

// recognized reports whether a filename is a route file.
func (c *Compiler) recognized(name string) bool {
	ext := filepath.Ext(name)
	if !c.exts[ext] {
		return false
	}
	if ext == ".go" && strings.HasSuffix(name, "_test.go") {
		return false
	}
	return true
}

func isSpecialName(base string) bool {
	switch base {
	case "layout", "loading", "error", "not-found", "404":
		return true
	}
	return false
}

// groupName returns the inner name of a route-group directory ("(public)" ->
// "public") and whether the directory is a group.
func groupName(dir string) (string, bool) {
	if len(dir) >= 2 && dir[0] == '(' && dir[len(dir)-1] == ')' {
		return dir[1 : len(dir)-1], true
	}
	return "", false
}

var (
	catchAllBracket = regexp.MustCompile(`\[\.\.\.(\w*)\]`)
	paramBracket    = regexp.MustCompile(`\[(\w+)\]`)
)

// convertBrackets rewrites bracket notation to pattern markers:
// [id] -> :id, [...slug] -> *slug. Malformed brackets (e.g. an unterminated
// "[") are left as literal text; the resulting pattern matches whatever the
// literal happens to be.
func convertBrackets(s string) string {
	s = catchAllBracket.ReplaceAllString(s, "*$1")
	s = paramBracket.ReplaceAllString(s, ":$1")
	return s
}

// joinPattern builds a URL pattern from a directory prefix and a file
// basename. An "index" basename collapses to the parent path, "/" at root.
// The result always has a leading slash and no duplicate slashes.
func joinPattern(prefix, base string) string {
	var pattern string
	if base == "index" {
		pattern = prefix
	} else {
		pattern = prefix + "/" + convertBrackets(base)
	}

	for strings.Contains(pattern, "//") {
		pattern = strings.ReplaceAll(pattern, "//", "/")
	}
	if !strings.HasPrefix(pattern, "/") {
		pattern = "/" + pattern
	}
	if pattern == "" {
		pattern = "/"
	}
	return pattern
}

// classifyKind returns KindAPI for patterns under an "api" segment.
func classifyKind(pattern string) Kind {
	for _, seg := range patternSegments(pattern) {
		if seg == "api" {
			return KindAPI
		}
	}
	return KindPage
}

// patternSegments splits a pattern into its path segments, markers included.
func patternSegments(pattern string) []string {
	trimmed := strings.Trim(pattern, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// segmentName names the layout scope for a directory prefix: "root" for the
// routes root, otherwise the last URL segment.
func segmentName(prefix string) string {
	if prefix == "" {
		return "root"
	}
	segs := patternSegments(prefix)
	if len(segs) == 0 {
		return "root"
	}
	return segs[len(segs)-1]
}

// sniffRenderKind inspects the head of a route file for a hydration
// directive. "use client" / "flexi:client" marks a client component and
// "use island" / "flexi:island" an island; everything else is a server
// component. Unreadable files default to server.
func sniffRenderKind(path string) RenderKind {
	f, err := os.Open(path)
	if err != nil {
		return RenderServer
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := f.Read(head)
	if n == 0 && err != nil && err != io.EOF {
		return RenderServer
	}
	s := string(head[:n])

	switch {
	case strings.Contains(s, "use island"), strings.Contains(s, "flexi:island"):
		return RenderIsland
	case strings.Contains(s, "use client"), strings.Contains(s, "flexi:client"):
		return RenderClient
	default:
		return RenderServer
	}
}
