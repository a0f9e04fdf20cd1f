package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flexireact/flexi/internal/config"
	"github.com/flexireact/flexi/pkg/router"
)

func routesCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the compiled route table",
		Long: `Compile the routes directory and print the resulting table.

Routes are listed in scan order, which is also match precedence:
on overlap, the earlier route wins.

With --check, the table is also inspected for likely mistakes:
duplicate patterns, unnamed parameters, and routes shadowed by an
earlier catch-all. Findings make the command exit non-zero.

Examples:
  flexi routes
  flexi routes --check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoutes(check)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Report route diagnostics and fail if any are found")

	return cmd
}

func runRoutes(check bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	compiler := router.NewCompiler(cfg.RoutesPath(),
		router.WithExtensions(cfg.Routes.Extensions...))
	table, err := compiler.Compile()
	if err != nil {
		return err
	}

	routes := table.Routes()
	if len(routes) == 0 {
		warn("No routes found in %s", cfg.Routes.Dir)
		return nil
	}

	width := 0
	for _, r := range routes {
		if len(r.Pattern) > width {
			width = len(r.Pattern)
		}
	}

	fmt.Println()
	for _, r := range routes {
		kind := r.Kind.String()
		if r.Kind == router.KindPage {
			kind = r.Render.String()
		}
		fmt.Printf("  %-*s  %-7s %s\n", width, r.Pattern, kind, r.SourcePath)
	}
	fmt.Println()
	info("%d routes", len(routes))

	if !check {
		return nil
	}

	diags := router.Diagnose(routes)
	if len(diags) == 0 {
		success("No route issues found")
		return nil
	}

	fmt.Println()
	for _, d := range diags {
		warn("%s", d)
	}
	return fmt.Errorf("%d route issue(s) found", len(diags))
}
