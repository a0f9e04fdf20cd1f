package flexi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/flexireact/flexi/pkg/router"
)

// PageHandler renders a page route. It returns the page's HTML fragment,
// which the app wraps in the route's layout chain before writing the
// response.
type PageHandler func(*Ctx) (string, error)

// LayoutHandler wraps child content in a layout. The children argument is
// the rendered HTML of the wrapped page or nested layout.
type LayoutHandler func(ctx *Ctx, children string) (string, error)

// APIHandler handles an API route and returns a value encoded as JSON.
// Returning nil with a nil error produces 204 No Content.
type APIHandler func(*Ctx) (any, error)

// ErrorHandler renders the error page shown when a page handler fails.
type ErrorHandler func(ctx *Ctx, err error) string

// Middleware wraps an http.Handler. Middleware registered with App.Use
// runs outside routing, so it also sees static file and 404 responses.
type Middleware func(http.Handler) http.Handler

// HTTPError is an error with an associated HTTP status code. Handlers
// return it to control the response status; any other error maps to 500.
type HTTPError struct {
	Code    int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *HTTPError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code for this error.
func (e *HTTPError) StatusCode() int {
	return e.Code
}

// BadRequest creates a 400 Bad Request error.
func BadRequest(message string) *HTTPError {
	return &HTTPError{Code: http.StatusBadRequest, Message: message}
}

// NotFoundError creates a 404 Not Found error.
func NotFoundError(message string) *HTTPError {
	return &HTTPError{Code: http.StatusNotFound, Message: message}
}

// Forbidden creates a 403 Forbidden error.
func Forbidden(message string) *HTTPError {
	return &HTTPError{Code: http.StatusForbidden, Message: message}
}

// Unauthorized creates a 401 Unauthorized error.
func Unauthorized(message string) *HTTPError {
	return &HTTPError{Code: http.StatusUnauthorized, Message: message}
}

// statusFor extracts the HTTP status from an error, defaulting to 500.
func statusFor(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

// Ctx carries per-request state into page, layout, and API handlers.
type Ctx struct {
	w      http.ResponseWriter
	r      *http.Request
	match  *router.MatchResult
	logger *slog.Logger

	maxBodyBytes int64
	status       int
	redirectURL  string
	redirectCode int
}

func newCtx(w http.ResponseWriter, r *http.Request, match *router.MatchResult, cfg Config, logger *slog.Logger) *Ctx {
	return &Ctx{
		w:            w,
		r:            r,
		match:        match,
		logger:       logger,
		maxBodyBytes: cfg.API.MaxBodyBytes,
		status:       http.StatusOK,
	}
}

// Request returns the underlying *http.Request.
func (c *Ctx) Request() *http.Request {
	return c.r
}

// Path returns the request URL path.
func (c *Ctx) Path() string {
	return c.r.URL.Path
}

// Method returns the request method.
func (c *Ctx) Method() string {
	return c.r.Method
}

// Route returns the matched route, or nil for requests that matched no
// route (the 404 handler).
func (c *Ctx) Route() *router.Route {
	return c.match.Route
}

// RoutePattern returns the matched route's URL pattern (e.g. "/blog/:id").
func (c *Ctx) RoutePattern() string {
	if c.match.Route == nil {
		return ""
	}
	return c.match.Route.Pattern
}

// Param returns a route parameter by name, or "" if absent.
func (c *Ctx) Param(name string) string {
	return c.match.Params[name]
}

// Params returns all route parameters.
func (c *Ctx) Params() map[string]string {
	return c.match.Params
}

// BindParams populates a struct from route parameters using `param` tags.
func (c *Ctx) BindParams(target any) error {
	if err := router.Bind(c.match.Params, target); err != nil {
		return &HTTPError{Code: http.StatusBadRequest, Message: "invalid route parameter", Err: err}
	}
	return nil
}

// Query returns a query string parameter by name.
func (c *Ctx) Query(name string) string {
	return c.r.URL.Query().Get(name)
}

// DecodeJSON decodes the request body as JSON into target. The body is
// capped at the configured API body limit.
func (c *Ctx) DecodeJSON(target any) error {
	if c.r.Body == nil {
		return BadRequest("missing request body")
	}
	limit := c.maxBodyBytes
	if limit <= 0 {
		limit = DefaultAPIConfig().MaxBodyBytes
	}

	body := http.MaxBytesReader(c.w, c.r.Body, limit)
	if err := json.NewDecoder(body).Decode(target); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &HTTPError{Code: http.StatusRequestEntityTooLarge, Message: "request body too large", Err: err}
		}
		if err == io.EOF {
			return BadRequest("missing request body")
		}
		return &HTTPError{Code: http.StatusBadRequest, Message: "invalid JSON body", Err: err}
	}
	return nil
}

// SetHeader sets a response header.
func (c *Ctx) SetHeader(key, value string) {
	c.w.Header().Set(key, value)
}

// Status sets the response status code written with the rendered page or
// encoded API value.
func (c *Ctx) Status(code int) {
	c.status = code
}

// Redirect issues an HTTP redirect after the handler returns. The handler's
// rendered output is discarded.
func (c *Ctx) Redirect(url string, code int) {
	if code == 0 {
		code = http.StatusSeeOther
	}
	c.redirectURL = url
	c.redirectCode = code
}

// Logger returns the request logger, annotated with the matched route.
func (c *Ctx) Logger() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// redirectInfo reports a pending redirect set by the handler.
func (c *Ctx) redirectInfo() (string, int, bool) {
	if c.redirectURL == "" {
		return "", 0, false
	}
	return c.redirectURL, c.redirectCode, true
}

// chainMiddleware composes middleware around a handler. The first
// middleware registered is the outermost.
func chainMiddleware(h http.Handler, mw []Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// errorBody is the JSON shape for API error responses.
type errorBody struct {
	Error string `json:"error"`
}

func encodeJSON(w http.ResponseWriter, v any) error {
	return json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(errorBody{Error: message})
}

func defaultErrorPage(ctx *Ctx, err error) string {
	return fmt.Sprintf("<h1>Something went wrong</h1>\n<p>%s</p>", http.StatusText(statusFor(err)))
}
