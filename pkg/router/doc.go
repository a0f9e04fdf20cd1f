// Package router implements file-based routing for Flexi.
//
// The package has three cooperating pieces:
//
//   - Compiler walks a routes directory and turns the files it finds into an
//     ordered list of Route entries plus a layout index.
//   - Table is the immutable result of a compile pass. Matching a request
//     path against it is a pure read, safe from any number of goroutines.
//     On change the whole table is rebuilt and swapped, never mutated.
//   - ResolveLayouts walks a matched route's segments and returns the layout
//     chain to wrap the page in, root layout first.
//
// # File Structure Convention
//
// Routes are defined by files in the routes directory:
//
//	app/routes/
//	├── index.go           → /
//	├── about.go           → /about
//	├── layout.go          → root layout
//	├── (marketing)/
//	│   └── pricing.go     → /pricing (group segment elided)
//	├── blog/
//	│   ├── index.go       → /blog
//	│   ├── [id].go        → /blog/:id
//	│   ├── loading.go     → loading boundary for /blog/*
//	│   └── layout.go      → layout for /blog/*
//	├── docs/
//	│   └── [...slug].go   → /docs/*slug
//	└── api/
//	    └── users.go       → /api/users (JSON route)
//
// Dynamic segments use brackets: [id] is a named parameter, [...slug] is a
// catch-all capturing the remaining path. Directories wrapped in parentheses
// are route groups: they organize files without contributing a URL segment,
// but their special files (layout, loading, error, not-found) still apply to
// everything beneath them.
//
// # Matching
//
// Routes are tested in directory scan order and the first pattern whose
// regex matches wins. There is no specificity tie-breaking: overlapping
// patterns resolve by declaration order, which callers control through
// directory structure. Parameter values are extracted positionally from the
// capture groups; the regex and the name list are compiled from the same
// token sequence, so they cannot drift apart.
//
// # Usage
//
//	table, err := router.NewCompiler("app/routes").Compile()
//	if err != nil {
//		return err
//	}
//
//	match, ok := table.Match("/blog/123?ref=home")
//	if ok {
//		// match.Params["id"] == "123"
//		chain := table.Layouts(match.Route) // root first
//	}
package router
