// Package dev provides the development server and hot reload functionality.
//
// This package implements:
//   - File watching for route, CSS, and asset changes
//   - In-process route table rebuilds on change
//   - WebSocket-based browser refresh
//   - Error overlay in browser
//   - Route listing and diagnostics endpoint
//
// # Architecture
//
// The development server consists of several components:
//
//   - Watcher: Monitors the file system for changes via fsnotify
//   - Server: Serves the application, static files, and dev endpoints
//   - ReloadServer: Notifies browsers of changes via WebSocket
//
// A change under the routes directory triggers an in-process rebuild of
// the route table. The rebuild is atomic: if it fails, the previous table
// keeps serving and the error is pushed to connected browsers as an
// overlay.
//
// # Usage
//
//	srv, err := dev.NewServer(dev.Options{
//	    Config: cfg,
//	    App:    app,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Configuration
//
// Hot reload can be disabled via flexi.json (dev.hotReload=false).
// Watch paths are derived from project config (routes, static) plus any
// entries in dev.watch.
//
// # Hot Reload Protocol
//
// The browser connects to /_flexi/reload via WebSocket.
// Messages are JSON-encoded:
//
//	{"type": "reload"}                // Triggers full page reload
//	{"type": "css"}                   // Triggers CSS-only reload
//	{"type": "error", "error": "..."} // Shows error overlay
//	{"type": "clear"}                 // Clears error overlay
package dev
