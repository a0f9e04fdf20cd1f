package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flexireact/flexi/internal/build"
	"github.com/flexireact/flexi/internal/config"
)

func buildCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Export the site as static files",
		Long: `Export every parameterless page route as a static HTML file.

Pages render through the application handler, so layouts and error
boundaries apply exactly as they do when serving. Parameterized routes
and API routes are skipped. The public directory is copied alongside
the rendered pages, and a manifest.json maps routes to files.

Examples:
  flexi build
  flexi build --output=dist`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default from flexi.json)")

	return cmd
}

func runBuild(output string) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	if output != "" {
		cfg.Build.Output = output
	}

	fmt.Println("  Exporting static site...")
	fmt.Println()

	builder := build.New(cfg, newProjectApp(cfg), build.Options{
		OnProgress: func(step string) {
			info(step)
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	result, err := builder.Build(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	success("Exported %d pages in %s", result.Pages, result.Duration.Round(1000000))
	if result.Assets > 0 {
		info("Copied %d static files", result.Assets)
	}
	for _, pattern := range result.Skipped {
		warn("Skipped %s (depends on the request)", pattern)
	}
	fmt.Println()
	fmt.Println("  Output:")
	fmt.Printf("    %s/\n", cfg.Build.Output)
	fmt.Println()

	return nil
}
