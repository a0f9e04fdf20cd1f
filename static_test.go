package flexi

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func newStaticApp(t *testing.T, prefix string, files map[string]string) (*App, string) {
	t.Helper()
	tmpDir := t.TempDir()
	publicDir := filepath.Join(tmpDir, "public")
	if err := os.MkdirAll(publicDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		full := filepath.Join(publicDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	app := New(Config{
		RoutesDir: filepath.Join(tmpDir, "routes"),
		Static:    StaticConfig{Dir: publicDir, Prefix: prefix},
	})
	return app, tmpDir
}

func TestStaticServing_Basic(t *testing.T) {
	app, _ := newStaticApp(t, "/", map[string]string{
		"ok.txt":         "ok",
		"css/styles.css": "body{}",
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "http://example.com/ok.txt", nil)
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /ok.txt status = %d", rr.Code)
	}
	if got := rr.Body.String(); got != "ok" {
		t.Fatalf("GET /ok.txt body = %q", got)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "http://example.com/css/styles.css", nil)
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /css/styles.css status = %d", rr.Code)
	}
}

func TestStaticServing_BlocksDirectoryTraversal(t *testing.T) {
	app, tmpDir := newStaticApp(t, "/", map[string]string{
		"ok.txt": "ok",
	})
	if err := os.WriteFile(filepath.Join(tmpDir, "secret.txt"), []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}

	cases := []string{
		"/../secret.txt",
		"/%2e%2e/secret.txt",
		"/..//secret.txt",
	}
	for _, p := range cases {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "http://example.com"+p, nil)
		app.ServeHTTP(rr, req)

		if rr.Code == http.StatusOK && strings.Contains(rr.Body.String(), "secret") {
			t.Fatalf("GET %s unexpectedly served secret content", p)
		}
	}
}

func TestStaticServing_BlocksAbsolutePathEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("absolute-path escape is OS-specific on Windows")
	}

	app, tmpDir := newStaticApp(t, "/static", nil)
	absSecretPath := filepath.Join(tmpDir, "abs-secret.txt")
	if err := os.WriteFile(absSecretPath, []byte("abs-secret"), 0o644); err != nil {
		t.Fatal(err)
	}

	absURLPath := filepath.ToSlash(absSecretPath) // starts with "/"
	req := httptest.NewRequest(http.MethodGet, "http://example.com/static/"+absURLPath, nil)
	rr := httptest.NewRecorder()
	app.ServeHTTP(rr, req)

	if rr.Code == http.StatusOK && strings.Contains(rr.Body.String(), "abs-secret") {
		t.Fatalf("unexpectedly served absolute-path content from %q", absSecretPath)
	}
}

func TestStaticServing_MethodRestriction(t *testing.T) {
	app, _ := newStaticApp(t, "/", map[string]string{"ok.txt": "ok"})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "http://example.com/ok.txt", nil)
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /ok.txt status = %d, want 405", rr.Code)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodHead, "http://example.com/ok.txt", nil)
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("HEAD /ok.txt status = %d, want 200", rr.Code)
	}
}

func TestStaticServing_CacheHeaders(t *testing.T) {
	app, _ := newStaticApp(t, "/", map[string]string{
		"app.a1b2c3d4.css": "body{}",
		"plain.css":        "body{}",
	})
	app.config.Static.CacheControl = CacheControlProduction

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "http://example.com/app.a1b2c3d4.css", nil)
	app.ServeHTTP(rr, req)
	if cc := rr.Header().Get("Cache-Control"); !strings.Contains(cc, "immutable") {
		t.Errorf("fingerprinted Cache-Control = %q", cc)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "http://example.com/plain.css", nil)
	app.ServeHTTP(rr, req)
	if cc := rr.Header().Get("Cache-Control"); strings.Contains(cc, "immutable") {
		t.Errorf("plain file Cache-Control = %q", cc)
	}
}

func TestStaticServing_DevModeNeverCaches(t *testing.T) {
	app, _ := newStaticApp(t, "/", map[string]string{
		"app.a1b2c3d4.css": "body{}",
	})
	app.config.Static.CacheControl = CacheControlProduction
	app.config.DevMode = true

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "http://example.com/app.a1b2c3d4.css", nil)
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if cc := rr.Header().Get("Cache-Control"); !strings.Contains(cc, "no-store") {
		t.Errorf("Cache-Control = %q, want no-store in dev mode", cc)
	}
}

func TestStaticServing_NonCanonicalPathRedirects(t *testing.T) {
	app, _ := newStaticApp(t, "/", map[string]string{
		"css/styles.css": "body{}",
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "http://example.com/css//styles.css", nil)
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusPermanentRedirect {
		t.Fatalf("status = %d, want 308", rr.Code)
	}
	if got := rr.Header().Get("Location"); got != "/css/styles.css" {
		t.Errorf("Location = %q", got)
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "http://example.com/css/styles.css", nil)
	app.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("canonical path status = %d", rr.Code)
	}
}

func TestStaticServing_CustomHeaders(t *testing.T) {
	app, _ := newStaticApp(t, "/", map[string]string{"ok.txt": "ok"})
	app.config.Static.Headers = map[string]string{"X-Frame-Options": "DENY"}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "http://example.com/ok.txt", nil)
	app.ServeHTTP(rr, req)
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

func TestIsFingerprinted(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"app.a1b2c3d4.css", true},
		{"app.deadbeef01.js", true},
		{"app.css", false},
		{"app.notahash.css", false},
		{"app.abc.css", false},
		{"assets/js/main.deadbeef.js", true},
	}
	for _, tt := range tests {
		if got := isFingerprinted(tt.path); got != tt.want {
			t.Errorf("isFingerprinted(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
