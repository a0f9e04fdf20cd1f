// Package build provides static export functionality for flexi applications.
//
// This package handles:
//   - Rendering parameterless page routes to HTML files
//   - Static asset copying
//   - Export manifest generation
//
// Pages render through the application's own HTTP handler, so the exported
// output is byte-identical to what the server would send.
//
// # Usage
//
//	builder := build.New(cfg, app, build.Options{})
//	result, err := builder.Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Exported %d pages in %s\n", result.Pages, result.Duration)
//
// # Output Structure
//
//	dist/
//	├── index.html           # /
//	├── about/
//	│   └── index.html       # /about
//	├── logo.svg             # copied from public/
//	└── manifest.json        # route manifest
//
// # Manifest
//
// The manifest maps route patterns to their output files:
//
//	{
//	  "/": "index.html",
//	  "/about": "about/index.html"
//	}
//
// Parameterized routes and API routes are skipped: their output depends
// on the request. Skipped patterns are reported in the Result.
package build
