package di

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mewert/greenbar/internal/runtimeconfig"
	"github.com/mewert/greenbar/internal/site"
	"github.com/mewert/greenbar/internal/themes"
)

const containerThemeManifest = `{
  "name": "greenbar",
  "version": "1.0.0",
  "templates": {
    "post": "post.tmpl",
    "page": "page.tmpl",
    "index": "index.tmpl",
    "tag": "tag.tmpl"
  }
}`

var containerThemeTemplates = map[string]string{
	"post.tmpl":  `<article>{{.Doc.Title}}</article>`,
	"page.tmpl":  `<main>{{.Doc.Title}}</main>`,
	"index.tmpl": `<ul>{{range .Posts}}<li>{{.Title}}</li>{{end}}</ul>`,
	"tag.tmpl":   `<h1>{{.Doc.Tag}}</h1>`,
}

func testConfig(t *testing.T) runtimeconfig.Config {
	t.Helper()

	contentDir := t.TempDir()
	post := filepath.Join(contentDir, "posts", "first-post.md")
	if err := os.MkdirAll(filepath.Dir(post), 0o755); err != nil {
		t.Fatalf("mkdir posts: %v", err)
	}
	body := "---\ntitle: First Post\ndate: 2024-01-02T09:00:00Z\n---\n\nHello.\n"
	if err := os.WriteFile(post, []byte(body), 0o644); err != nil {
		t.Fatalf("write post: %v", err)
	}

	themeDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(themeDir, themes.ManifestFileName), []byte(containerThemeManifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	for name, tpl := range containerThemeTemplates {
		if err := os.WriteFile(filepath.Join(themeDir, name), []byte(tpl), 0o644); err != nil {
			t.Fatalf("write template %s: %v", name, err)
		}
	}

	cfg := runtimeconfig.DefaultConfig()
	cfg.Content.Dir = contentDir
	cfg.Theme.Dir = themeDir
	cfg.Generator.OutputDir = t.TempDir()
	return cfg
}

func TestNewContainerWiresServices(t *testing.T) {
	c, err := NewContainer(testConfig(t))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	if c.LoggerProvider() == nil || c.MarkdownService() == nil || c.ContentService() == nil {
		t.Fatal("expected core services to be wired")
	}
	if c.ThemeService() == nil || c.TemplateRenderer() == nil || c.ArtifactStore() == nil || c.SiteService() == nil {
		t.Fatal("expected generator services to be wired")
	}
}

func TestContainerBuildProducesSite(t *testing.T) {
	cfg := testConfig(t)
	c, err := NewContainer(cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	result, err := c.SiteService().Build(context.Background(), site.BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.DocumentsBuilt == 0 {
		t.Fatal("expected documents to be built")
	}

	rendered, err := os.ReadFile(filepath.Join(cfg.Generator.OutputDir, "posts", "first-post", "index.html"))
	if err != nil {
		t.Fatalf("read rendered post: %v", err)
	}
	if !strings.Contains(string(rendered), "First Post") {
		t.Fatalf("rendered post missing title: %s", rendered)
	}
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Generator.OutputDir = ""

	if _, err := NewContainer(cfg); !errors.Is(err, runtimeconfig.ErrOutputDirRequired) {
		t.Fatalf("err = %v, want ErrOutputDirRequired", err)
	}
}

func TestNewContainerFailsOnMissingTheme(t *testing.T) {
	cfg := testConfig(t)
	cfg.Theme.Dir = filepath.Join(t.TempDir(), "absent")

	if _, err := NewContainer(cfg); err == nil {
		t.Fatal("expected theme load failure")
	}
}

func TestPreviewServerFromContainer(t *testing.T) {
	c, err := NewContainer(testConfig(t))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	server, err := c.PreviewServer()
	if err != nil {
		t.Fatalf("PreviewServer: %v", err)
	}
	if server == nil {
		t.Fatal("expected preview server")
	}

	again, err := c.PreviewServer()
	if err != nil {
		t.Fatalf("PreviewServer (cached): %v", err)
	}
	if again != server {
		t.Fatal("expected cached preview server instance")
	}
}

func TestWithSiteServiceOverride(t *testing.T) {
	stub := site.NewDisabledService()
	c, err := NewContainer(testConfig(t), WithSiteService(stub))
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	if c.SiteService() != stub {
		t.Fatal("expected override to win")
	}
}
