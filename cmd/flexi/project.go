package main

import (
	"github.com/flexireact/flexi"
	"github.com/flexireact/flexi/internal/config"
)

// newProjectApp builds an application over the project's route tree. The
// CLI has no user handlers to register, so dev mode stays on: routes
// without handlers render scaffold pages instead of failing.
func newProjectApp(cfg *config.Config) *flexi.App {
	return flexi.New(flexi.Config{
		RoutesDir:       cfg.RoutesPath(),
		RouteExtensions: cfg.Routes.Extensions,
		Static: flexi.StaticConfig{
			Dir:    cfg.PublicPath(),
			Prefix: cfg.StaticPrefix(),
		},
		DevMode: true,
	})
}
