package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┬  ┌─┐─┐┬┬
  ├┤ │  ├┤ ┌┴┐│
  └  ┴─┘└─┘┴ └┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "flexi",
		Short: "File-based routing for Go web applications",
		Long: `Flexi compiles a directory of route files into a URL route table.

A file tree like app/routes/blog/[id].go becomes /blog/:id, with
layouts, loading states and error boundaries resolved from special
files along the path. Features include:

  • File-based routing with params and catch-alls
  • Route groups and nested layouts
  • Hot reload development server
  • Static export and S3 deployment
  • Route diagnostics for duplicates and shadowed routes`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		devCmd(),
		buildCmd(),
		routesCmd(),
		deployCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
