package dev

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flexireact/flexi"
	"github.com/flexireact/flexi/internal/config"
	"github.com/flexireact/flexi/internal/errors"
	"github.com/flexireact/flexi/pkg/middleware"
	"github.com/flexireact/flexi/pkg/router"
)

// Options configures the development server.
type Options struct {
	// Config is the project configuration.
	Config *config.Config

	// App is the application the server wraps. Its route table is
	// rebuilt in place when route files change.
	App *flexi.App

	// Logger receives server events. Defaults to slog.Default.
	Logger *slog.Logger

	// OnReload is called after browsers are reloaded.
	OnReload func(clients int)
}

// Server is the development server.
type Server struct {
	config       *config.Config
	app          *flexi.App
	logger       *slog.Logger
	options      Options
	watcher      *Watcher
	reloadServer *ReloadServer
	changeCh     chan []Change
	httpServer   *http.Server
	mu           sync.Mutex
	running      bool
	hotReload    bool
}

// NewServer creates a new development server.
func NewServer(options Options) (*Server, error) {
	cfg := options.Config
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	hotReload := cfg.Dev.HotReload

	watcher, err := NewWatcher(WatcherConfig{
		Paths:           CollectWatchPaths(cfg),
		RouteExtensions: cfg.Routes.Extensions,
		Ignore:          append(append([]string{}, DefaultIgnore...), cfg.Dev.Ignore...),
		Debounce:        100 * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}

	var reloadServer *ReloadServer
	if hotReload {
		reloadServer = NewReloadServer()
	}

	return &Server{
		config:       cfg,
		app:          options.App,
		logger:       logger,
		options:      options,
		watcher:      watcher,
		reloadServer: reloadServer,
		hotReload:    hotReload,
	}, nil
}

// Start starts the development server and blocks until the context is
// cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	// Initial route compile. A failure is surfaced but does not prevent
	// the server from starting; saving a fix triggers a retry.
	if err := s.app.Reload(); err != nil {
		s.logger.Error("route compile failed", "error", err)
		s.notifyError(errors.FromError(err, "F302").Error())
	} else {
		s.logger.Info("routes compiled", "routes", s.app.Table().Len())
	}

	s.changeCh = make(chan []Change, 16)
	s.watcher.OnChange(func(changes []Change) {
		select {
		case s.changeCh <- changes:
		default:
		}
	})

	go s.watcher.Start(ctx)
	go s.processChanges(ctx)

	s.httpServer = &http.Server{
		Addr:    s.config.DevAddress(),
		Handler: s.routes(),
	}

	s.logger.Info("dev server running", "url", s.config.DevURL())

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- errors.New("F300").Wrap(err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// routes builds the dev server handler. The WebSocket endpoint stays
// outside the middleware group: the upgrade needs the raw ResponseWriter.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	if s.reloadEnabled() {
		r.Get("/_flexi/reload", s.reloadServer.HandleWebSocket)
	}
	r.Get("/_flexi/routes", s.handleRoutes)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(gr chi.Router) {
		gr.Use(middleware.Recover(s.logger))
		gr.Use(middleware.Logger(s.logger))
		gr.Use(middleware.Prometheus())

		appHandler := s.app.Handler()
		if s.reloadEnabled() {
			appHandler = injectScript(appHandler, DevClientScript)
		}
		gr.Handle("/*", appHandler)
	})

	return r
}

// Stop stops the development server.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	s.watcher.Stop()
	if s.reloadServer != nil {
		s.reloadServer.Close()
	}

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

// processChanges serializes change handling and coalesces bursts.
func (s *Server) processChanges(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case changes := <-s.changeCh:
			draining := true
			for draining {
				select {
				case next := <-s.changeCh:
					changes = append(changes, next...)
				default:
					draining = false
				}
			}
			s.handleChanges(changes)
		}
	}
}

// handleChanges handles a batch of file changes.
func (s *Server) handleChanges(changes []Change) {
	if len(changes) == 0 {
		return
	}

	hasRoute := false
	cssPath := ""
	hasAsset := false

	for _, change := range changes {
		s.logger.Debug("file changed", "path", change.Path)
		switch change.Type {
		case ChangeRoute:
			hasRoute = true
		case ChangeCSS:
			if cssPath == "" {
				cssPath = change.Path
			}
		case ChangeAsset:
			hasAsset = true
		}
	}

	if hasRoute {
		s.reloadRoutes()
		return
	}

	if cssPath != "" {
		if !s.reloadEnabled() {
			s.logger.Info("css changed (hot reload disabled)")
			return
		}
		s.reloadServer.NotifyCSS(cssPath)
		s.logger.Info("css reloaded")
		return
	}

	if hasAsset {
		s.notifyReload()
	}
}

// reloadRoutes rebuilds the route table in place. On failure the previous
// table keeps serving and the error is pushed to connected browsers.
func (s *Server) reloadRoutes() {
	start := time.Now()
	if err := s.app.Reload(); err != nil {
		ferr := errors.FromError(err, "F302")
		s.logger.Error("route reload failed", "error", err)
		s.notifyError(ferr.Error())
		return
	}

	s.logger.Info("routes reloaded",
		"routes", s.app.Table().Len(),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	s.clearReloadError()
	s.notifyReload()
}

// handleRoutes serves the compiled route table and its diagnostics as JSON.
func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	type routeInfo struct {
		Pattern   string `json:"pattern"`
		Kind      string `json:"kind"`
		Render    string `json:"render,omitempty"`
		Source    string `json:"source"`
		Layout    string `json:"layout,omitempty"`
		ErrorPage string `json:"errorPage,omitempty"`
	}
	type response struct {
		Routes      []routeInfo `json:"routes"`
		Diagnostics []string    `json:"diagnostics,omitempty"`
	}

	table := s.app.Table()
	resp := response{Routes: make([]routeInfo, 0, table.Len())}

	for _, rt := range table.Routes() {
		info := routeInfo{
			Pattern:   rt.Pattern,
			Kind:      rt.Kind.String(),
			Source:    rt.SourcePath,
			Layout:    rt.Layout,
			ErrorPage: rt.ErrorPage,
		}
		if rt.Kind == router.KindPage {
			info.Render = rt.Render.String()
		}
		resp.Routes = append(resp.Routes, info)
	}

	for _, diag := range router.Diagnose(table.Routes()) {
		resp.Diagnostics = append(resp.Diagnostics, diag.String())
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	writeJSON(w, resp)
}

func (s *Server) reloadEnabled() bool {
	return s.hotReload && s.reloadServer != nil
}

func (s *Server) notifyReload() {
	if !s.reloadEnabled() {
		return
	}

	s.reloadServer.NotifyReload()
	clients := s.reloadServer.ClientCount()
	if s.options.OnReload != nil {
		s.options.OnReload(clients)
	}
	s.logger.Info("browsers reloaded", "clients", clients)
}

func (s *Server) notifyError(errMsg string) {
	if !s.reloadEnabled() {
		return
	}
	s.reloadServer.NotifyError(errMsg)
}

func (s *Server) clearReloadError() {
	if !s.reloadEnabled() {
		return
	}
	s.reloadServer.ClearError()
}

// injectScript rewrites HTML responses to include script before </body>.
// Non-HTML responses pass through unbuffered.
func injectScript(next http.Handler, script string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &injectRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		rec.finish(script)
	})
}

type injectRecorder struct {
	http.ResponseWriter
	buf         bytes.Buffer
	status      int
	wroteHeader bool
	passthrough bool
}

func (rec *injectRecorder) WriteHeader(code int) {
	if rec.wroteHeader {
		return
	}
	rec.wroteHeader = true
	rec.status = code

	if !strings.Contains(rec.Header().Get("Content-Type"), "text/html") {
		rec.passthrough = true
		rec.ResponseWriter.WriteHeader(code)
	}
}

func (rec *injectRecorder) Write(b []byte) (int, error) {
	if !rec.wroteHeader {
		if rec.Header().Get("Content-Type") == "" {
			rec.Header().Set("Content-Type", http.DetectContentType(b))
		}
		rec.WriteHeader(http.StatusOK)
	}
	if rec.passthrough {
		return rec.ResponseWriter.Write(b)
	}
	return rec.buf.Write(b)
}

// finish flushes a buffered HTML response with the script injected.
func (rec *injectRecorder) finish(script string) {
	if rec.passthrough || !rec.wroteHeader {
		return
	}

	body := rec.buf.String()
	if idx := strings.LastIndex(body, "</body>"); idx != -1 {
		body = body[:idx] + script + body[idx:]
	} else if idx := strings.LastIndex(body, "</html>"); idx != -1 {
		body = body[:idx] + script + body[idx:]
	} else {
		body += script
	}

	rec.Header().Del("Content-Length")
	rec.ResponseWriter.WriteHeader(rec.status)
	io.WriteString(rec.ResponseWriter, body)
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Write(data)
}
