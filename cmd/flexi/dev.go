package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flexireact/flexi/internal/config"
	"github.com/flexireact/flexi/internal/dev"
)

func devCmd() *cobra.Command {
	var (
		port        int
		host        string
		openBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server",
		Long: `Start the development server with hot reload.

The dev server watches the routes and public directories, rebuilds the
route table on change, and automatically refreshes connected browsers.

Features:
  • Hot reload on file change
  • Error overlay in browser
  • Route listing at /_flexi/routes
  • Prometheus metrics at /metrics

Examples:
  flexi dev
  flexi dev --port=8080
  flexi dev --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(port, host, openBrowser)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from flexi.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from flexi.json)")
	cmd.Flags().BoolVarP(&openBrowser, "open", "o", false, "Open browser on start")

	return cmd
}

func runDev(port int, host string, openBrowser bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	if port > 0 {
		cfg.Dev.Port = port
	}
	if host != "" {
		cfg.Dev.Host = host
	}
	if openBrowser {
		cfg.Dev.OpenBrowser = true
	}

	printBanner()
	fmt.Println("  dev")
	fmt.Println()

	server, err := dev.NewServer(dev.Options{
		Config: cfg,
		App:    newProjectApp(cfg),
		OnReload: func(clients int) {
			success("Reloaded %d browsers", clients)
		},
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\n\n  Shutting down...")
		cancel()
		server.Stop()
	}()

	if cfg.Dev.OpenBrowser {
		go openURL(cfg.DevURL())
	}

	return server.Start(ctx)
}

// openURL opens a URL in the default browser.
func openURL(url string) {
	var cmd *exec.Cmd

	switch {
	case commandExists("xdg-open"):
		cmd = exec.Command("xdg-open", url)
	case commandExists("open"):
		cmd = exec.Command("open", url)
	case commandExists("start"):
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}

	cmd.Start()
}

// commandExists checks if a command exists in PATH.
func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
