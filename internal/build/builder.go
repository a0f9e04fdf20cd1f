package build

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flexireact/flexi"
	"github.com/flexireact/flexi/internal/config"
	"github.com/flexireact/flexi/internal/errors"
	"github.com/flexireact/flexi/pkg/router"
)

// Result contains the export output.
type Result struct {
	// Duration is how long the export took.
	Duration time.Duration

	// Output is the path to the output directory.
	Output string

	// Pages is the number of pages written.
	Pages int

	// Assets is the number of static files copied.
	Assets int

	// Skipped lists route patterns that could not be exported, such as
	// parameterized pages and API routes.
	Skipped []string

	// Manifest maps route patterns to their output files.
	Manifest map[string]string
}

// Options configures the exporter.
type Options struct {
	// Verbose enables verbose output.
	Verbose bool

	// OnProgress is called with progress updates.
	OnProgress func(step string)
}

// Builder exports an application's parameterless page routes as a static
// site. Pages render through the live handler, so layouts, middleware and
// error pages apply exactly as they do when serving.
type Builder struct {
	config  *config.Config
	app     *flexi.App
	options Options
}

// New creates a new builder.
func New(cfg *config.Config, app *flexi.App, options Options) *Builder {
	return &Builder{
		config:  cfg,
		app:     app,
		options: options,
	}
}

// Build performs a static export.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{
		Manifest: make(map[string]string),
	}

	outputDir := b.config.OutputPath()
	result.Output = outputDir

	b.progress("Cleaning output directory...")
	if err := os.RemoveAll(outputDir); err != nil {
		return nil, errors.New("F401").Wrap(err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errors.New("F401").Wrap(err)
	}

	b.progress("Compiling routes...")
	if err := b.app.Reload(); err != nil {
		return nil, errors.FromError(err, "F400")
	}

	b.progress("Rendering pages...")
	handler := b.app.Handler()
	for _, rt := range b.app.Table().Routes() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !exportable(rt) {
			result.Skipped = append(result.Skipped, rt.Pattern)
			continue
		}

		relPath, err := b.renderPage(handler, rt.Pattern, outputDir)
		if err != nil {
			return nil, err
		}
		result.Manifest[rt.Pattern] = relPath
		result.Pages++
	}

	b.progress("Copying static assets...")
	copied, err := b.copyAssets(outputDir)
	if err != nil {
		return nil, err
	}
	result.Assets = copied

	b.progress("Writing manifest...")
	if err := b.writeManifest(outputDir, result.Manifest); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	return result, nil
}

// exportable reports whether a route can be rendered ahead of time.
// API routes and routes with parameter segments cannot: their output
// depends on the request.
func exportable(rt router.Route) bool {
	if rt.Kind != router.KindPage {
		return false
	}
	for _, seg := range rt.Segments {
		if strings.HasPrefix(seg, ":") || strings.HasPrefix(seg, "*") {
			return false
		}
	}
	return true
}

// renderPage renders one route through the handler and writes the result.
func (b *Builder) renderPage(handler http.Handler, pattern, outputDir string) (string, error) {
	req := httptest.NewRequest(http.MethodGet, pattern, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		return "", errors.New("F400").
			WithDetailf("Rendering %s returned status %d", pattern, rec.Code).
			WithSuggestion("Check that the page handler is registered and returns without error")
	}

	relPath := OutputPathFor(pattern)
	destPath := filepath.Join(outputDir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", errors.New("F401").Wrap(err)
	}
	if err := os.WriteFile(destPath, rec.Body.Bytes(), 0644); err != nil {
		return "", errors.New("F401").Wrap(err)
	}

	b.progress("  " + pattern + " -> " + relPath)
	return relPath, nil
}

// OutputPathFor maps a route pattern to its output file, slash-separated.
// Directory-style paths keep URLs extension-free on any static host.
func OutputPathFor(pattern string) string {
	if pattern == "/" {
		return "index.html"
	}
	return strings.TrimPrefix(pattern, "/") + "/index.html"
}

// copyAssets copies the public directory into the output, preserving
// relative paths so references in exported HTML keep working.
func (b *Builder) copyAssets(outputDir string) (int, error) {
	srcDir := b.config.PublicPath()
	if _, err := os.Stat(srcDir); os.IsNotExist(err) {
		return 0, nil
	}

	copied := 0
	err := filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		destPath := filepath.Join(outputDir, relPath)
		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return err
		}
		if err := copyFile(path, destPath); err != nil {
			return err
		}
		copied++
		return nil
	})
	if err != nil {
		return copied, errors.New("F401").Wrap(err)
	}
	return copied, nil
}

// writeManifest writes the route-to-file manifest.
func (b *Builder) writeManifest(outputDir string, manifest map[string]string) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	manifestPath := filepath.Join(outputDir, "manifest.json")
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return errors.New("F401").Wrap(err)
	}
	return nil
}

// progress reports build progress.
func (b *Builder) progress(step string) {
	if b.options.OnProgress != nil {
		b.options.OnProgress(step)
	}
}

// copyFile copies a file.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// Clean removes the build output directory.
func (b *Builder) Clean() error {
	return os.RemoveAll(b.config.OutputPath())
}
