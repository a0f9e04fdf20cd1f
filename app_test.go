package flexi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newTestApp builds an app over a routes directory assembled from the given
// relative file paths.
func newTestApp(t *testing.T, files map[string]string, cfg Config) *App {
	t.Helper()

	dir := t.TempDir()
	routes := filepath.Join(dir, "routes")
	for name, content := range files {
		full := filepath.Join(routes, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg.RoutesDir = routes
	app := New(cfg)
	if err := app.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	return app
}

func get(t *testing.T, app *App, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "http://example.com"+path, nil)
	app.ServeHTTP(rr, req)
	return rr
}

func TestAppRendersPageThroughLayouts(t *testing.T) {
	app := newTestApp(t, map[string]string{
		"layout.go":      "",
		"blog/layout.go": "",
		"blog/[id].go":   "",
	}, Config{})

	app.RegisterLayout("layout.go", func(ctx *Ctx, children string) (string, error) {
		return "<html><body>" + children + "</body></html>", nil
	})
	app.RegisterLayout("blog/layout.go", func(ctx *Ctx, children string) (string, error) {
		return "<section>" + children + "</section>", nil
	})
	app.RegisterPage("blog/[id].go", func(ctx *Ctx) (string, error) {
		return "<p>post " + ctx.Param("id") + "</p>", nil
	})

	rr := get(t, app, "/blog/42")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	want := "<!DOCTYPE html>\n<html><body><section><p>post 42</p></section></body></html>"
	if rr.Body.String() != want {
		t.Errorf("body = %q, want %q", rr.Body.String(), want)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestAppCatchAllParams(t *testing.T) {
	app := newTestApp(t, map[string]string{
		"docs/[...slug].go": "",
	}, Config{})

	app.RegisterPage("docs/[...slug].go", func(ctx *Ctx) (string, error) {
		var p struct {
			Slug []string `param:"slug"`
		}
		if err := ctx.BindParams(&p); err != nil {
			return "", err
		}
		return fmt.Sprintf("parts=%d last=%s", len(p.Slug), p.Slug[len(p.Slug)-1]), nil
	})

	rr := get(t, app, "/docs/guides/install")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "parts=2 last=install") {
		t.Errorf("body = %q", rr.Body.String())
	}
}

func TestAppAPIRoute(t *testing.T) {
	app := newTestApp(t, map[string]string{
		"api/users.go": "",
	}, Config{})

	type user struct {
		Name string `json:"name"`
	}
	app.RegisterAPI("api/users.go", func(ctx *Ctx) (any, error) {
		switch ctx.Method() {
		case http.MethodGet:
			return []user{{Name: "ada"}}, nil
		case http.MethodPost:
			var u user
			if err := ctx.DecodeJSON(&u); err != nil {
				return nil, err
			}
			ctx.Status(http.StatusCreated)
			return u, nil
		default:
			return nil, nil
		}
	})

	rr := get(t, app, "/api/users")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rr.Code)
	}
	var users []user
	if err := json.Unmarshal(rr.Body.Bytes(), &users); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(users) != 1 || users[0].Name != "ada" {
		t.Errorf("users = %v", users)
	}

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/users", strings.NewReader(`{"name":"lin"}`))
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("POST status = %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "http://example.com/api/users", nil)
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Errorf("DELETE status = %d, want 204", rr.Code)
	}
}

func TestAppAPIErrorStatus(t *testing.T) {
	app := newTestApp(t, map[string]string{
		"api/users/[id].go": "",
	}, Config{})

	app.RegisterAPI("api/users/[id].go", func(ctx *Ctx) (any, error) {
		return nil, NotFoundError("no such user")
	})

	rr := get(t, app, "/api/users/9")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	var body errorBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "no such user" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestAppNotFound(t *testing.T) {
	app := newTestApp(t, map[string]string{
		"index.go": "",
	}, Config{})
	app.RegisterPage("index.go", func(ctx *Ctx) (string, error) { return "home", nil })

	rr := get(t, app, "/missing")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}

	app.RegisterNotFound(func(ctx *Ctx) (string, error) {
		return "<h1>lost: " + ctx.Path() + "</h1>", nil
	})
	rr = get(t, app, "/missing")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "lost: /missing") {
		t.Errorf("body = %q", rr.Body.String())
	}
}

func TestAppErrorPage(t *testing.T) {
	app := newTestApp(t, map[string]string{
		"boom.go": "",
	}, Config{})
	app.RegisterPage("boom.go", func(ctx *Ctx) (string, error) {
		return "", fmt.Errorf("database offline")
	})

	rr := get(t, app, "/boom")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}

	app.RegisterError(func(ctx *Ctx, err error) string {
		return "<h1>custom error</h1>"
	})
	rr = get(t, app, "/boom")
	if !strings.Contains(rr.Body.String(), "custom error") {
		t.Errorf("body = %q", rr.Body.String())
	}
}

func TestAppScannedErrorPage(t *testing.T) {
	app := newTestApp(t, map[string]string{
		"error.go":      "",
		"blog/error.go": "",
		"blog/[id].go":  "",
		"boom.go":       "",
	}, Config{})
	app.RegisterPage("blog/[id].go", func(ctx *Ctx) (string, error) {
		return "", fmt.Errorf("post unavailable")
	})
	app.RegisterPage("boom.go", func(ctx *Ctx) (string, error) {
		return "", fmt.Errorf("boom")
	})
	app.RegisterErrorPage("blog/error.go", func(ctx *Ctx, err error) string {
		return "<h1>blog error</h1>"
	})
	app.RegisterErrorPage("error.go", func(ctx *Ctx, err error) string {
		return "<h1>root error</h1>"
	})

	rr := get(t, app, "/blog/3")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "blog error") {
		t.Errorf("body = %q, want nearest error page", rr.Body.String())
	}

	rr = get(t, app, "/boom")
	if !strings.Contains(rr.Body.String(), "root error") {
		t.Errorf("body = %q, want root error page", rr.Body.String())
	}
}

func TestAppScannedNotFoundPage(t *testing.T) {
	app := newTestApp(t, map[string]string{
		"not-found.go":      "",
		"blog/not-found.go": "",
		"blog/index.go":     "",
		"index.go":          "",
	}, Config{})
	app.RegisterPage("index.go", func(ctx *Ctx) (string, error) { return "home", nil })
	app.RegisterPage("blog/index.go", func(ctx *Ctx) (string, error) { return "blog", nil })
	app.RegisterNotFoundPage("not-found.go", func(ctx *Ctx) (string, error) {
		return "<h1>not here</h1>", nil
	})
	app.RegisterNotFoundPage("blog/not-found.go", func(ctx *Ctx) (string, error) {
		return "<h1>no such post</h1>", nil
	})

	rr := get(t, app, "/blog/ghost")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "no such post") {
		t.Errorf("body = %q, want blog not-found page", rr.Body.String())
	}

	rr = get(t, app, "/missing")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "not here") {
		t.Errorf("body = %q, want root not-found page", rr.Body.String())
	}
}

func TestAppDevModePlaceholder(t *testing.T) {
	app := newTestApp(t, map[string]string{
		"blog/[id].go": "",
	}, Config{DevMode: true})

	rr := get(t, app, "/blog/7")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "/blog/:id") || !strings.Contains(body, "blog/[id].go") {
		t.Errorf("placeholder body = %q", body)
	}
}

func TestAppCanonicalRedirect(t *testing.T) {
	app := newTestApp(t, map[string]string{
		"about.go": "",
	}, Config{})
	app.RegisterPage("about.go", func(ctx *Ctx) (string, error) { return "about", nil })

	tests := []struct {
		path string
		want string
	}{
		{"/about/", "/about"},
		{"//about", "/about"},
		{"/blog/../about", "/about"},
	}
	for _, tt := range tests {
		rr := get(t, app, tt.path)
		if rr.Code != http.StatusPermanentRedirect {
			t.Errorf("GET %s status = %d, want 308", tt.path, rr.Code)
			continue
		}
		if got := rr.Header().Get("Location"); got != tt.want {
			t.Errorf("GET %s Location = %q, want %q", tt.path, got, tt.want)
		}
	}

	// Query strings survive the redirect.
	rr := get(t, app, "/about/?ref=nav")
	if got := rr.Header().Get("Location"); got != "/about?ref=nav" {
		t.Errorf("Location = %q, want /about?ref=nav", got)
	}
}

func TestAppRejectsMalformedPaths(t *testing.T) {
	app := newTestApp(t, map[string]string{
		"index.go": "",
	}, Config{})
	app.RegisterPage("index.go", func(ctx *Ctx) (string, error) { return "home", nil })

	for _, p := range []string{"/..%2f..%2fetc/passwd", "/%00", "/a\\b"} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
		req.URL.Path = p
		req.URL.RawPath = p
		app.ServeHTTP(rr, req)
		if rr.Code == http.StatusOK {
			t.Errorf("GET %s unexpectedly succeeded", p)
		}
	}
}

func TestAppMethodNotAllowedForPages(t *testing.T) {
	app := newTestApp(t, map[string]string{
		"index.go": "",
	}, Config{})
	app.RegisterPage("index.go", func(ctx *Ctx) (string, error) { return "home", nil })

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "http://example.com/", nil)
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST / status = %d, want 405", rr.Code)
	}
}

func TestAppRedirectFromHandler(t *testing.T) {
	app := newTestApp(t, map[string]string{
		"old.go": "",
	}, Config{})
	app.RegisterPage("old.go", func(ctx *Ctx) (string, error) {
		ctx.Redirect("/new", http.StatusMovedPermanently)
		return "", nil
	})

	rr := get(t, app, "/old")
	if rr.Code != http.StatusMovedPermanently {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Header().Get("Location"); got != "/new" {
		t.Errorf("Location = %q", got)
	}
}

func TestAppUnregisteredHandlerIs500(t *testing.T) {
	app := newTestApp(t, map[string]string{
		"index.go": "",
	}, Config{})

	rr := get(t, app, "/")
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
}

func TestAppReloadSwapsTable(t *testing.T) {
	dir := t.TempDir()
	routes := filepath.Join(dir, "routes")
	if err := os.MkdirAll(routes, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(routes, "index.go"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	app := New(Config{RoutesDir: routes})
	if err := app.Reload(); err != nil {
		t.Fatal(err)
	}
	if app.Table().Len() != 1 {
		t.Fatalf("Len = %d", app.Table().Len())
	}

	if err := os.WriteFile(filepath.Join(routes, "about.go"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := app.Reload(); err != nil {
		t.Fatal(err)
	}
	if app.Table().Len() != 2 {
		t.Fatalf("Len after reload = %d", app.Table().Len())
	}
}

func TestAppDevModeRouteHeader(t *testing.T) {
	app := newTestApp(t, map[string]string{
		"blog/[id].go": "",
	}, Config{DevMode: true})
	app.RegisterPage("blog/[id].go", func(ctx *Ctx) (string, error) { return "ok", nil })

	rr := get(t, app, "/blog/7")
	if got := rr.Header().Get("X-Flexi-Route"); got != "/blog/:id" {
		t.Errorf("X-Flexi-Route = %q, want /blog/:id", got)
	}
}

func TestAppMiddlewareOrder(t *testing.T) {
	app := newTestApp(t, map[string]string{
		"index.go": "",
	}, Config{})
	app.RegisterPage("index.go", func(ctx *Ctx) (string, error) { return "home", nil })

	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	app.Use(mw("outer"), mw("inner"))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	app.Handler().ServeHTTP(rr, req)

	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("middleware order = %v", order)
	}
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d", rr.Code)
	}
}
