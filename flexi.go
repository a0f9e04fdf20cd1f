// Package flexi is a file-based routing web framework.
//
// Routes are declared by files on disk. A directory tree like
//
//	app/routes/
//	├── index.go            → /
//	├── about.go            → /about
//	├── blog/
//	│   ├── layout.go       (wraps everything under /blog)
//	│   ├── index.go        → /blog
//	│   └── [id].go         → /blog/:id
//	└── api/
//	    └── users.go        → /api/users (JSON)
//
// compiles into an immutable route table. The App pairs that table with
// handlers registered per route file and serves it as an http.Handler:
//
//	app := flexi.New(flexi.Config{
//	    RoutesDir: "app/routes",
//	    Static:    flexi.StaticConfig{Dir: "public", Prefix: "/"},
//	})
//	app.RegisterPage("index.go", pages.Home)
//	app.RegisterPage("blog/[id].go", pages.BlogPost)
//	app.RegisterLayout("blog/layout.go", pages.BlogLayout)
//	if err := app.Reload(); err != nil {
//	    log.Fatal(err)
//	}
//	http.ListenAndServe(":3000", app.Handler())
//
// Matching is first-match-wins in scan order, and the table swaps atomically
// on Reload, so serving never blocks on a rebuild.
package flexi

// Version is the framework version, set at build time for releases.
var Version = "dev"
