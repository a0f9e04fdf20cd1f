package router

// LayoutRef names a layout file discovered during compilation.
type LayoutRef struct {
	// Name is the layout's scope: "root" for the routes root, otherwise the
	// URL segment (or group name) of the directory the layout lives in.
	Name string

	// SourcePath is the layout file.
	SourcePath string
}

// LayoutIndex is the flat registry of layouts produced by a compile pass.
// Segment-name lookup is deliberately flat, not a structural tree walk:
// a layout registered under "blog" applies to any matched route with a
// "blog" segment. First registration of a name wins.
type LayoutIndex struct {
	bySegment map[string]LayoutRef
	bySource  map[string]LayoutRef
}

// NewLayoutIndex creates an empty layout index.
func NewLayoutIndex() *LayoutIndex {
	return &LayoutIndex{
		bySegment: make(map[string]LayoutRef),
		bySource:  make(map[string]LayoutRef),
	}
}

// Add registers a layout under a segment name. The first layout registered
// for a name keeps it.
func (ix *LayoutIndex) Add(name, sourcePath string) {
	ref := LayoutRef{Name: name, SourcePath: sourcePath}
	if _, exists := ix.bySegment[name]; !exists {
		ix.bySegment[name] = ref
	}
	if _, exists := ix.bySource[sourcePath]; !exists {
		ix.bySource[sourcePath] = ref
	}
}

// AddHidden registers a layout that owns no URL segment (a route group's
// layout). It is reachable through route inheritance but never through
// segment lookup.
func (ix *LayoutIndex) AddHidden(name, sourcePath string) {
	if _, exists := ix.bySource[sourcePath]; !exists {
		ix.bySource[sourcePath] = LayoutRef{Name: name, SourcePath: sourcePath}
	}
}

// Lookup finds a layout by segment name.
func (ix *LayoutIndex) Lookup(name string) (LayoutRef, bool) {
	ref, ok := ix.bySegment[name]
	return ref, ok
}

// Root returns the global root layout, if one is registered.
func (ix *LayoutIndex) Root() (LayoutRef, bool) {
	return ix.Lookup("root")
}

// Len returns the number of distinct layout files in the index.
func (ix *LayoutIndex) Len() int { return len(ix.bySource) }

// ResolveLayouts returns the layout chain for a route, root layout first:
//
//  1. the global "root" layout, if present, regardless of path
//  2. for each of the route's path segments in order, the layout registered
//     under that exact segment name, if any
//  3. the route's own directory-scoped layout, if any
//
// A layout file appears at most once in the chain even when more than one
// rule selects it.
func ResolveLayouts(ix *LayoutIndex, r *Route) []LayoutRef {
	var chain []LayoutRef
	seen := make(map[string]bool)
	add := func(ref LayoutRef) {
		if ref.SourcePath == "" || seen[ref.SourcePath] {
			return
		}
		seen[ref.SourcePath] = true
		chain = append(chain, ref)
	}

	if root, ok := ix.Root(); ok {
		add(root)
	}
	for _, seg := range r.Segments {
		if ref, ok := ix.Lookup(seg); ok {
			add(ref)
		}
	}
	if r.Layout != "" {
		if ref, ok := ix.bySource[r.Layout]; ok {
			add(ref)
		} else {
			add(LayoutRef{Name: segmentName(dirPattern(r)), SourcePath: r.Layout})
		}
	}

	return chain
}

// dirPattern returns the pattern of the route's parent directory.
func dirPattern(r *Route) string {
	if len(r.Segments) <= 1 {
		return ""
	}
	p := "/"
	for _, seg := range r.Segments[:len(r.Segments)-1] {
		if p == "/" {
			p += seg
		} else {
			p += "/" + seg
		}
	}
	return p
}
