package runtimeconfig_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mewert/greenbar/internal/runtimeconfig"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestValidateRequiresContentDir(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Content.Dir = " "

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrContentDirRequired) {
		t.Fatalf("expected ErrContentDirRequired, got %v", err)
	}
}

func TestValidateRequiresOutputDir(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Generator.OutputDir = ""

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrOutputDirRequired) {
		t.Fatalf("expected ErrOutputDirRequired, got %v", err)
	}
}

func TestValidateRejectsMalformedBaseURL(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Site.BaseURL = "not a url"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrBaseURLInvalid) {
		t.Fatalf("expected ErrBaseURLInvalid, got %v", err)
	}
}

func TestValidateRejectsUnknownLoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "syslog"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestValidateRejectsNegativeWorkers(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Generator.Workers = -1

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrWorkersInvalid) {
		t.Fatalf("expected ErrWorkersInvalid, got %v", err)
	}
}

func TestValidateRejectsBrokenFrontMatterSchema(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.FrontMatter.Schema = map[string]any{
		"fields": map[string]any{
			"series": map[string]any{"type": "definitely-not-a-type"},
		},
	}

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrFrontMatterSchemaBroken) {
		t.Fatalf("expected ErrFrontMatterSchemaBroken, got %v", err)
	}
}

func TestLoadFileMergesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	body := `
site:
  title: My Notes
  base_url: https://notes.example.test
content:
  drafts: true
generator:
  workers: 4
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := runtimeconfig.DefaultConfig()
	if err := runtimeconfig.LoadFile(&cfg, path); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Site.Title != "My Notes" {
		t.Fatalf("title not merged: %q", cfg.Site.Title)
	}
	if cfg.Site.BaseURL != "https://notes.example.test" {
		t.Fatalf("base url not merged: %q", cfg.Site.BaseURL)
	}
	if !cfg.Content.Drafts {
		t.Fatal("drafts flag not merged")
	}
	if cfg.Generator.Workers != 4 {
		t.Fatalf("workers not merged: %d", cfg.Generator.Workers)
	}
	// Untouched values keep their defaults.
	if cfg.Content.Dir != "content" {
		t.Fatalf("default lost during merge: %q", cfg.Content.Dir)
	}
}

func TestLoadFileMissingIsNotAnError(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	if err := runtimeconfig.LoadFile(&cfg, filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("GREENBAR_SITE_TITLE", "Env Title")
	t.Setenv("GREENBAR_OUTPUT_DIR", "dist")
	t.Setenv("GREENBAR_CONTENT_DRAFTS", "true")

	cfg := runtimeconfig.DefaultConfig()
	if err := runtimeconfig.ApplyEnv(&cfg); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}

	if cfg.Site.Title != "Env Title" {
		t.Fatalf("env title not applied: %q", cfg.Site.Title)
	}
	if cfg.Generator.OutputDir != "dist" {
		t.Fatalf("env output dir not applied: %q", cfg.Generator.OutputDir)
	}
	if !cfg.Content.Drafts {
		t.Fatal("env drafts flag not applied")
	}
}

func TestLoadLayersFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.yaml")
	if err := os.WriteFile(path, []byte("site:\n  title: File Title\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("GREENBAR_SITE_TITLE", "Env Wins")

	cfg, err := runtimeconfig.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Site.Title != "Env Wins" {
		t.Fatalf("environment should override file: %q", cfg.Site.Title)
	}
}
