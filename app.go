package flexi

import (
	"html"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/flexireact/flexi/pkg/routepath"
	"github.com/flexireact/flexi/pkg/router"
)

// App is the main flexi application entry point. It pairs a compiled route
// table with per-file handlers and serves them as an http.Handler.
//
// The route table is immutable; Reload compiles a fresh table and swaps it
// in atomically, so requests in flight keep matching against the table they
// started with.
type App struct {
	table atomic.Pointer[router.Table]

	mu        sync.RWMutex
	pages     map[string]PageHandler
	layouts   map[string]LayoutHandler
	apis      map[string]APIHandler
	errPages  map[string]ErrorHandler
	notFounds map[string]PageHandler
	notFound  PageHandler
	errPage   ErrorHandler

	middleware []Middleware

	// Static file serving
	staticDir    string
	staticPrefix string
	staticFS     http.FileSystem

	config Config
	logger *slog.Logger
}

// New creates a new flexi application with the given configuration.
// Call Reload to compile the initial route table before serving.
func New(cfg Config) *App {
	if cfg.RoutesDir == "" {
		cfg.RoutesDir = DefaultConfig().RoutesDir
	}
	if len(cfg.RouteExtensions) == 0 {
		cfg.RouteExtensions = []string{".go"}
	}
	if cfg.Static.Prefix == "" {
		cfg.Static.Prefix = "/"
	}
	if cfg.API.MaxBodyBytes == 0 {
		cfg.API.MaxBodyBytes = DefaultAPIConfig().MaxBodyBytes
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{
		pages:        make(map[string]PageHandler),
		layouts:      make(map[string]LayoutHandler),
		apis:         make(map[string]APIHandler),
		errPages:     make(map[string]ErrorHandler),
		notFounds:    make(map[string]PageHandler),
		staticDir:    cfg.Static.Dir,
		staticPrefix: cfg.Static.Prefix,
		config:       cfg,
		logger:       logger,
	}

	if cfg.Static.Dir != "" {
		app.staticFS = http.Dir(cfg.Static.Dir)
	}

	app.table.Store(router.NewTable(nil, nil))
	return app
}

// Reload compiles the route directory into a fresh table and swaps it in.
// On error the previous table stays active.
func (a *App) Reload() error {
	c := router.NewCompiler(a.config.RoutesDir, router.WithExtensions(a.config.RouteExtensions...))
	table, err := c.Compile()
	if err != nil {
		return err
	}
	a.table.Store(table)
	return nil
}

// SetTable replaces the active route table. Reload is the usual path; this
// exists for static builds and tests that assemble tables directly.
func (a *App) SetTable(t *router.Table) {
	if t == nil {
		t = router.NewTable(nil, nil)
	}
	a.table.Store(t)
}

// Table returns the active route table.
func (a *App) Table() *router.Table {
	return a.table.Load()
}

// Config returns the app configuration.
func (a *App) Config() Config {
	return a.config
}

// RegisterPage registers the handler for a page route file. The source path
// is relative to the routes directory, e.g. "blog/[id].go".
func (a *App) RegisterPage(source string, h PageHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pages[source] = h
}

// RegisterLayout registers the handler for a layout file, e.g.
// "blog/layout.go".
func (a *App) RegisterLayout(source string, h LayoutHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.layouts[source] = h
}

// RegisterAPI registers the handler for an API route file, e.g.
// "api/users.go".
func (a *App) RegisterAPI(source string, h APIHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.apis[source] = h
}

// RegisterErrorPage registers the handler for a scanned error file, e.g.
// "blog/error.go". Routes inheriting that file render it when their page
// handler fails, before falling back to the global error handler.
func (a *App) RegisterErrorPage(source string, h ErrorHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errPages[source] = h
}

// RegisterNotFoundPage registers the handler for a scanned not-found file,
// e.g. "blog/not-found.go". Unmatched requests render the nearest one.
func (a *App) RegisterNotFoundPage(source string, h PageHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notFounds[source] = h
}

// RegisterNotFound sets the handler rendered when no route matches.
func (a *App) RegisterNotFound(h PageHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.notFound = h
}

// RegisterError sets the handler rendered when a page handler fails.
func (a *App) RegisterError(h ErrorHandler) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errPage = h
}

// Use adds global middleware applied around the whole app, including static
// files and 404s. The first middleware added is the outermost.
func (a *App) Use(mw ...Middleware) {
	a.middleware = append(a.middleware, mw...)
}

// Handler returns the app wrapped in its registered middleware.
func (a *App) Handler() http.Handler {
	return chainMiddleware(http.HandlerFunc(a.ServeHTTP), a.middleware)
}

// ServeHTTP implements http.Handler. It routes requests to static files,
// API handlers, or page handlers.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Static files win over routes so a stray route pattern can never
	// shadow an asset.
	if a.staticFS != nil && a.shouldServeStatic(r.URL.Path) {
		a.serveStatic(w, r)
		return
	}

	canon, err := routepath.Canonicalize(r.URL.EscapedPath())
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if canon.Changed {
		target := canon.Path
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
		return
	}

	match, ok := a.table.Load().Match(canon.Path)
	if !ok {
		a.renderNotFound(w, r)
		return
	}

	params, err := a.decodeParams(match)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	match.Params = params

	if a.config.DevMode {
		w.Header().Set("X-Flexi-Route", match.Route.Pattern)
	}

	if match.Route.Kind == router.KindAPI {
		a.handleAPI(w, r, match)
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	a.renderPage(w, r, match)
}

// decodeParams percent-decodes matched parameter values. Single-segment
// parameters reject encoded slashes; catch-alls keep them as separators.
func (a *App) decodeParams(match *router.MatchResult) (map[string]string, error) {
	if len(match.Params) == 0 {
		return match.Params, nil
	}

	catchAll := ""
	for _, tok := range match.Route.Matcher.Tokens() {
		if tok.Kind == router.TokenCatchAll {
			catchAll = tok.Value
			if catchAll == "" {
				catchAll = router.CatchAllName
			}
		}
	}

	decoded := make(map[string]string, len(match.Params))
	for name, value := range match.Params {
		v, err := routepath.DecodeParam(value, name == catchAll)
		if err != nil {
			return nil, err
		}
		decoded[name] = v
	}
	return decoded, nil
}

// renderPage renders a page route through its layout chain.
func (a *App) renderPage(w http.ResponseWriter, r *http.Request, match *router.MatchResult) {
	a.mu.RLock()
	handler := a.pages[match.Route.SourcePath]
	errPage := a.errPage
	if match.Route.ErrorPage != "" {
		if h := a.errPages[match.Route.ErrorPage]; h != nil {
			errPage = h
		}
	}
	a.mu.RUnlock()

	if handler == nil {
		if a.config.DevMode {
			writeHTML(w, http.StatusOK, placeholderPage(match))
			return
		}
		a.logger.Error("no handler registered for route",
			"pattern", match.Route.Pattern, "source", match.Route.SourcePath)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ctx := newCtx(w, r, match, a.config, a.logger.With("route", match.Route.Pattern))

	html, err := handler(ctx)
	if err == nil && ctx.redirectURL == "" {
		html, err = a.applyLayouts(ctx, match, html)
	}

	if url, code, ok := ctx.redirectInfo(); ok {
		http.Redirect(w, r, url, code)
		return
	}

	if err != nil {
		a.logger.Error("page handler failed", "pattern", match.Route.Pattern, "error", err)
		if errPage == nil {
			errPage = defaultErrorPage
		}
		ctx.status = statusFor(err)
		body := errPage(ctx, err)
		writeHTML(w, ctx.status, body)
		return
	}

	writeHTML(w, ctx.status, html)
}

// applyLayouts wraps rendered page content in the route's layout chain,
// innermost first so the root layout ends up outermost.
func (a *App) applyLayouts(ctx *Ctx, match *router.MatchResult, content string) (string, error) {
	chain := a.table.Load().Layouts(match.Route)

	a.mu.RLock()
	defer a.mu.RUnlock()

	for i := len(chain) - 1; i >= 0; i-- {
		layout := a.layouts[chain[i].SourcePath]
		if layout == nil {
			a.logger.Debug("layout has no registered handler", "source", chain[i].SourcePath)
			continue
		}
		wrapped, err := layout(ctx, content)
		if err != nil {
			return "", err
		}
		content = wrapped
	}
	return content, nil
}

// handleAPI dispatches an API route and encodes its result as JSON.
func (a *App) handleAPI(w http.ResponseWriter, r *http.Request, match *router.MatchResult) {
	a.mu.RLock()
	handler := a.apis[match.Route.SourcePath]
	a.mu.RUnlock()

	if handler == nil {
		a.logger.Error("no handler registered for API route",
			"pattern", match.Route.Pattern, "source", match.Route.SourcePath)
		writeJSONError(w, http.StatusInternalServerError, "handler not registered")
		return
	}

	ctx := newCtx(w, r, match, a.config, a.logger.With("route", match.Route.Pattern))

	out, err := handler(ctx)

	if url, code, ok := ctx.redirectInfo(); ok {
		http.Redirect(w, r, url, code)
		return
	}

	if err != nil {
		code := statusFor(err)
		if code >= http.StatusInternalServerError {
			a.logger.Error("API handler failed", "pattern", match.Route.Pattern, "error", err)
		}
		writeJSONError(w, code, err.Error())
		return
	}

	if out == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ctx.status)
	if err := encodeJSON(w, out); err != nil {
		a.logger.Error("API response encode failed", "pattern", match.Route.Pattern, "error", err)
	}
}

// renderNotFound renders the nearest scanned not-found page for the request
// path, then the globally registered one, then a plain 404.
func (a *App) renderNotFound(w http.ResponseWriter, r *http.Request) {
	a.mu.RLock()
	handler := a.notFound
	if src := a.table.Load().NotFoundFor(r.URL.Path); src != "" {
		if h := a.notFounds[src]; h != nil {
			handler = h
		}
	}
	a.mu.RUnlock()

	if handler == nil {
		http.NotFound(w, r)
		return
	}

	ctx := newCtx(w, r, &router.MatchResult{}, a.config, a.logger)
	ctx.status = http.StatusNotFound
	html, err := handler(ctx)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	writeHTML(w, ctx.status, html)
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	w.WriteHeader(status)
	w.Write([]byte("<!DOCTYPE html>\n"))
	w.Write([]byte(body))
}

// placeholderPage renders a scaffold page for a route with no registered
// handler. Served in dev mode only, so a freshly scanned route tree can be
// explored before any handlers exist.
func placeholderPage(match *router.MatchResult) string {
	var sb strings.Builder
	sb.WriteString("<html><head><title>")
	sb.WriteString(html.EscapeString(match.Route.Pattern))
	sb.WriteString("</title></head><body style=\"font-family:system-ui;padding:40px\">")
	sb.WriteString("<h1><code>")
	sb.WriteString(html.EscapeString(match.Route.Pattern))
	sb.WriteString("</code></h1>")
	sb.WriteString("<p>No handler registered yet. Source file:</p><pre>")
	sb.WriteString(html.EscapeString(match.Route.SourcePath))
	sb.WriteString("</pre>")
	if len(match.Params) > 0 {
		sb.WriteString("<h2>Params</h2><ul>")
		for name, value := range match.Params {
			sb.WriteString("<li><code>")
			sb.WriteString(html.EscapeString(name))
			sb.WriteString("</code> = ")
			sb.WriteString(html.EscapeString(value))
			sb.WriteString("</li>")
		}
		sb.WriteString("</ul>")
	}
	sb.WriteString("</body></html>")
	return sb.String()
}
