package router

import (
	"strings"

	"github.com/flexireact/flexi/pkg/routepath"
)

// Table is the immutable result of a compile pass: the ordered route list,
// the layout index and the route tree. A table is never mutated after
// construction; hot reload rebuilds a fresh table and swaps it in. Matching
// is a pure read and safe to call concurrently from any number of in-flight
// request handlers.
type Table struct {
	routes  []Route
	layouts *LayoutIndex
	tree    *Node
	bySrc   map[string]int
}

// NewTable builds a table from a compiled route list and layout index.
// Route order is preserved: it determines match precedence.
func NewTable(routes []Route, layouts *LayoutIndex) *Table {
	if layouts == nil {
		layouts = NewLayoutIndex()
	}

	bySrc := make(map[string]int, len(routes))
	for i, r := range routes {
		if _, dup := bySrc[r.SourcePath]; !dup {
			bySrc[r.SourcePath] = i
		}
	}

	return &Table{
		routes:  routes,
		layouts: layouts,
		tree:    buildTree(routes),
		bySrc:   bySrc,
	}
}

// Match returns the first route whose pattern matches the given path, with
// extracted parameters, or false when no route matches. Any query string is
// stripped before matching. Routes are tested in scan order; the first regex
// match wins with no specificity tie-breaking.
func (t *Table) Match(path string) (*MatchResult, bool) {
	path, _ = routepath.SplitQuery(path)

	for i := range t.routes {
		r := &t.routes[i]
		params, ok := r.Matcher.Match(path)
		if !ok {
			continue
		}
		return &MatchResult{Route: r, Params: params}, true
	}
	return nil, false
}

// NotFoundFor returns the source path of the scanned not-found file nearest
// to an unmatched request path. Nearest is the not-found inherited by the
// route sharing the longest literal segment prefix with the path. Empty when
// no route carries one.
func (t *Table) NotFoundFor(path string) string {
	path, _ = routepath.SplitQuery(path)
	want := strings.Split(strings.Trim(path, "/"), "/")
	if path == "/" || path == "" {
		want = nil
	}

	best := ""
	bestLen := -1
	for i := range t.routes {
		r := &t.routes[i]
		if r.NotFound == "" {
			continue
		}
		n := 0
		for n < len(want) && n < len(r.Segments) {
			seg := r.Segments[n]
			if seg != want[n] || strings.HasPrefix(seg, ":") || strings.HasPrefix(seg, "*") {
				break
			}
			n++
		}
		if n > bestLen {
			best = r.NotFound
			bestLen = n
		}
	}
	return best
}

// Lookup finds a route by its source path.
func (t *Table) Lookup(sourcePath string) (*Route, bool) {
	i, ok := t.bySrc[sourcePath]
	if !ok {
		return nil, false
	}
	return &t.routes[i], true
}

// Routes returns a copy of the route list in match order.
func (t *Table) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// Len returns the number of routes.
func (t *Table) Len() int { return len(t.routes) }

// Layouts returns the layout chain for a route, root layout first.
func (t *Table) Layouts(r *Route) []LayoutRef {
	return ResolveLayouts(t.layouts, r)
}

// LayoutIndex returns the table's layout index.
func (t *Table) LayoutIndex() *LayoutIndex { return t.layouts }

// Tree returns the route tree built from this table's routes.
func (t *Table) Tree() *Node { return t.tree }
