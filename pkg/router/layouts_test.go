package router

import (
	"testing"
)

func TestResolveLayoutsChainOrder(t *testing.T) {
	ix := NewLayoutIndex()
	ix.Add("root", "routes/layout.go")
	ix.Add("blog", "routes/blog/layout.go")
	ix.Add("admin", "routes/admin/layout.go")

	r := newRoute("/blog/:id", "routes/blog/[id].go")
	r.Layout = "routes/blog/layout.go"

	chain := ResolveLayouts(ix, &r)
	want := []string{"routes/layout.go", "routes/blog/layout.go"}
	if len(chain) != len(want) {
		t.Fatalf("chain length = %d, want %d", len(chain), len(want))
	}
	for i, ref := range chain {
		if ref.SourcePath != want[i] {
			t.Errorf("chain[%d] = %s, want %s", i, ref.SourcePath, want[i])
		}
	}
}

func TestResolveLayoutsRootAlwaysFirst(t *testing.T) {
	ix := NewLayoutIndex()
	ix.Add("blog", "routes/blog/layout.go")
	ix.Add("root", "routes/layout.go")

	r := newRoute("/blog/archive", "routes/blog/archive.go")

	chain := ResolveLayouts(ix, &r)
	if len(chain) == 0 || chain[0].Name != "root" {
		t.Fatalf("chain = %v, want root layout first", chain)
	}
}

func TestResolveLayoutsFlatSegmentLookup(t *testing.T) {
	// Lookup is by segment name, not directory structure: a route whose
	// path merely contains the segment "blog" picks up the blog layout.
	ix := NewLayoutIndex()
	ix.Add("blog", "routes/blog/layout.go")

	r := newRoute("/archive/blog/old", "routes/archive/blog/old.go")

	chain := ResolveLayouts(ix, &r)
	if len(chain) != 1 || chain[0].Name != "blog" {
		t.Errorf("chain = %v, want the blog layout via flat lookup", chain)
	}
}

func TestResolveLayoutsOwnLayoutAppended(t *testing.T) {
	ix := NewLayoutIndex()
	ix.Add("root", "routes/layout.go")
	ix.AddHidden("marketing", "routes/(marketing)/layout.go")

	r := newRoute("/pricing", "routes/(marketing)/pricing.go")
	r.Layout = "routes/(marketing)/layout.go"

	chain := ResolveLayouts(ix, &r)
	if len(chain) != 2 {
		t.Fatalf("chain = %v, want root + group layout", chain)
	}
	if chain[1].Name != "marketing" || chain[1].SourcePath != "routes/(marketing)/layout.go" {
		t.Errorf("chain[1] = %v", chain[1])
	}
}

func TestResolveLayoutsNoDuplicates(t *testing.T) {
	ix := NewLayoutIndex()
	ix.Add("root", "routes/layout.go")

	// Route at the root whose own nearest layout is the root layout.
	r := newRoute("/about", "routes/about.go")
	r.Layout = "routes/layout.go"

	chain := ResolveLayouts(ix, &r)
	if len(chain) != 1 {
		t.Errorf("chain = %v, want the root layout exactly once", chain)
	}
}

func TestLayoutIndexFirstRegistrationWins(t *testing.T) {
	ix := NewLayoutIndex()
	ix.Add("blog", "a/blog/layout.go")
	ix.Add("blog", "b/blog/layout.go")

	ref, ok := ix.Lookup("blog")
	if !ok || ref.SourcePath != "a/blog/layout.go" {
		t.Errorf("Lookup(blog) = (%v, %v), want the first registration", ref, ok)
	}
	if ix.Len() != 2 {
		t.Errorf("Len() = %d, want 2 distinct files", ix.Len())
	}
}

func TestResolveLayoutsEmpty(t *testing.T) {
	r := newRoute("/about", "routes/about.go")
	if chain := ResolveLayouts(NewLayoutIndex(), &r); len(chain) != 0 {
		t.Errorf("chain = %v, want empty", chain)
	}
}
