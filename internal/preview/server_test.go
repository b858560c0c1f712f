package preview

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mewert/greenbar/internal/site"
)

type stubSite struct {
	builds  int
	result  *site.BuildResult
	buildFn func(context.Context, site.BuildOptions) (*site.BuildResult, error)
}

func (s *stubSite) Build(ctx context.Context, opts site.BuildOptions) (*site.BuildResult, error) {
	s.builds++
	if s.buildFn != nil {
		return s.buildFn(ctx, opts)
	}
	if s.result != nil {
		return s.result, nil
	}
	return &site.BuildResult{}, nil
}

func (s *stubSite) Clean(context.Context) error { return nil }

func writeOutputFile(t *testing.T, dir, rel, body string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(full, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func newTestServer(t *testing.T, cfg Config) (*Server, *http.ServeMux) {
	t.Helper()
	server, err := NewServer(cfg, Dependencies{Site: &stubSite{}})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	mux := http.NewServeMux()
	if err := server.Register(mux); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return server, mux
}

func TestServeRenderedSite(t *testing.T) {
	outDir := t.TempDir()
	writeOutputFile(t, outDir, "index.html", "<h1>Greenbar</h1>")
	writeOutputFile(t, outDir, "posts/hello-world/index.html", "<h1>Hello World</h1>")

	_, mux := newTestServer(t, Config{OutputDir: outDir})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Greenbar") {
		t.Fatalf("home page: status %d body %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/hello-world/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Hello World") {
		t.Fatalf("post page: status %d body %q", rec.Code, rec.Body.String())
	}
}

func TestServeUnknownPathReturns404(t *testing.T) {
	outDir := t.TempDir()
	writeOutputFile(t, outDir, "index.html", "<h1>Greenbar</h1>")

	_, mux := newTestServer(t, Config{OutputDir: outDir})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts/missing/", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown path, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	_, mux := newTestServer(t, Config{OutputDir: t.TempDir(), Drafts: true})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status %d", rec.Code)
	}

	var payload map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode healthz body: %v", err)
	}
	if payload["status"] != "ok" {
		t.Fatalf("unexpected health payload: %v", payload)
	}
	if payload["drafts"] != true {
		t.Fatalf("expected drafts flag in payload: %v", payload)
	}
}

func TestRebuildOnChange(t *testing.T) {
	outDir := t.TempDir()
	contentDir := t.TempDir()
	writeOutputFile(t, outDir, "index.html", "<h1>Greenbar</h1>")
	writeOutputFile(t, contentDir, "posts/hello.md", "first")

	stub := &stubSite{}
	server, err := NewServer(Config{
		OutputDir:       outDir,
		RebuildOnChange: true,
		WatchDirs:       []string{contentDir},
		PollInterval:    time.Nanosecond,
	}, Dependencies{Site: stub})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	mux := http.NewServeMux()
	if err := server.Register(mux); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// First request scans and builds once.
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if stub.builds != 1 {
		t.Fatalf("expected first request to trigger a build, got %d", stub.builds)
	}

	// Unchanged tree: no extra build.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if stub.builds != 1 {
		t.Fatalf("expected no rebuild for unchanged tree, got %d builds", stub.builds)
	}

	// Touch the content tree and the next request rebuilds.
	writeOutputFile(t, contentDir, "posts/hello.md", "second version")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if stub.builds != 2 {
		t.Fatalf("expected rebuild after change, got %d builds", stub.builds)
	}
}

func TestNewServerValidation(t *testing.T) {
	if _, err := NewServer(Config{}, Dependencies{}); err == nil {
		t.Fatal("expected error for missing output dir")
	}
	if _, err := NewServer(Config{OutputDir: t.TempDir(), RebuildOnChange: true}, Dependencies{}); err == nil {
		t.Fatal("expected error for rebuild without site service")
	}
}
