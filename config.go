package flexi

import (
	"log/slog"
)

// Config is the main application configuration.
// This is the user-friendly entry point for configuring a flexi app.
type Config struct {
	// RoutesDir is the directory scanned for route files.
	RoutesDir string

	// RouteExtensions lists the file extensions treated as route modules.
	// Default: [".go"].
	RouteExtensions []string

	// Static configures static file serving.
	Static StaticConfig

	// API configures JSON API routes.
	API APIConfig

	// DevMode enables development conveniences: placeholder pages for
	// unregistered routes, the X-Flexi-Route response header, and
	// uncacheable static responses regardless of CacheControl.
	DevMode bool

	// Logger is the structured logger for the application.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

// StaticConfig configures static file serving.
type StaticConfig struct {
	// Dir is the directory containing static files (e.g., "public").
	// Files in this directory are served at the URL prefix.
	Dir string

	// Prefix is the URL path prefix for static files (e.g., "/").
	// A file at public/styles.css with Prefix="/" is served at /styles.css.
	// Default: "/".
	Prefix string

	// CacheControl determines caching behavior for static files.
	// Default: CacheControlNone (no caching headers).
	CacheControl CacheControlStrategy

	// Headers are custom headers to add to all static file responses.
	Headers map[string]string
}

// APIConfig configures JSON API routes.
type APIConfig struct {
	// MaxBodyBytes is the maximum number of bytes read from the HTTP request
	// body when an API handler decodes it.
	//
	// Default: 1 MiB.
	MaxBodyBytes int64
}

// CacheControlStrategy determines caching behavior for static files.
type CacheControlStrategy int

const (
	// CacheControlNone adds no caching headers.
	// Use in development for instant updates.
	CacheControlNone CacheControlStrategy = iota

	// CacheControlProduction uses appropriate caching:
	// - Fingerprinted files (*.abc123.css): immutable, 1 year max-age
	// - Other files: short cache with revalidation
	CacheControlProduction
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		RoutesDir:       "app/routes",
		RouteExtensions: []string{".go"},
		Static:          DefaultStaticConfig(),
		API:             DefaultAPIConfig(),
		DevMode:         false,
	}
}

// DefaultStaticConfig returns a StaticConfig with sensible defaults.
func DefaultStaticConfig() StaticConfig {
	return StaticConfig{
		Prefix:       "/",
		CacheControl: CacheControlNone,
	}
}

// DefaultAPIConfig returns an APIConfig with sensible defaults.
func DefaultAPIConfig() APIConfig {
	return APIConfig{
		MaxBodyBytes: 1 << 20, // 1 MiB
	}
}
