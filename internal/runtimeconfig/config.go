// Package runtimeconfig holds the file- and environment-driven configuration
// for the blog engine. Values load in three layers: defaults, then an
// optional YAML file, then GREENBAR_* environment overrides.
package runtimeconfig

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mewert/greenbar/internal/validation"
)

var (
	ErrContentDirRequired      = errors.New("config: content directory is required")
	ErrThemeDirRequired        = errors.New("config: theme directory is required")
	ErrOutputDirRequired       = errors.New("config: generator output directory is required")
	ErrBaseURLInvalid          = errors.New("config: site base URL is invalid")
	ErrWorkersInvalid          = errors.New("config: generator workers must be zero or positive")
	ErrPreviewAddrRequired     = errors.New("config: preview address is required")
	ErrLoggingProviderUnknown  = errors.New("config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("config: logging format is invalid")
	ErrFrontMatterSchemaBroken = errors.New("config: front matter schema is invalid")
)

// Config aggregates every runtime concern of the engine.
type Config struct {
	Site        SiteConfig        `yaml:"site"`
	Content     ContentConfig     `yaml:"content"`
	Theme       ThemeConfig       `yaml:"theme"`
	Generator   GeneratorConfig   `yaml:"generator"`
	Preview     PreviewConfig     `yaml:"preview"`
	Logging     LoggingConfig     `yaml:"logging"`
	FrontMatter FrontMatterConfig `yaml:"front_matter"`
}

// SiteConfig describes the site to templates, feeds, and the sitemap.
type SiteConfig struct {
	Title       string `yaml:"title" env:"GREENBAR_SITE_TITLE"`
	Description string `yaml:"description" env:"GREENBAR_SITE_DESCRIPTION"`
	Author      string `yaml:"author" env:"GREENBAR_SITE_AUTHOR"`
	BaseURL     string `yaml:"base_url" env:"GREENBAR_SITE_BASE_URL"`
}

// ContentConfig locates and filters the Markdown tree.
type ContentConfig struct {
	Dir      string `yaml:"dir" env:"GREENBAR_CONTENT_DIR"`
	PostsDir string `yaml:"posts_dir" env:"GREENBAR_CONTENT_POSTS_DIR"`
	PagesDir string `yaml:"pages_dir" env:"GREENBAR_CONTENT_PAGES_DIR"`
	Pattern  string `yaml:"pattern" env:"GREENBAR_CONTENT_PATTERN"`
	Drafts   bool   `yaml:"drafts" env:"GREENBAR_CONTENT_DRAFTS"`
}

// ThemeConfig selects the theme directory and variant.
type ThemeConfig struct {
	Dir     string `yaml:"dir" env:"GREENBAR_THEME_DIR"`
	Variant string `yaml:"variant" env:"GREENBAR_THEME_VARIANT"`
}

// GeneratorConfig captures behaviour for the static site generator.
type GeneratorConfig struct {
	OutputDir       string `yaml:"output_dir" env:"GREENBAR_OUTPUT_DIR"`
	CleanBuild      bool   `yaml:"clean_build" env:"GREENBAR_CLEAN_BUILD"`
	Incremental     bool   `yaml:"incremental" env:"GREENBAR_INCREMENTAL"`
	CopyAssets      bool   `yaml:"copy_assets" env:"GREENBAR_COPY_ASSETS"`
	GenerateFeeds   bool   `yaml:"feeds" env:"GREENBAR_FEEDS"`
	GenerateSitemap bool   `yaml:"sitemap" env:"GREENBAR_SITEMAP"`
	GenerateRobots  bool   `yaml:"robots" env:"GREENBAR_ROBOTS"`
	Workers         int    `yaml:"workers" env:"GREENBAR_WORKERS"`
}

// PreviewConfig controls the local preview server.
type PreviewConfig struct {
	Addr    string `yaml:"addr" env:"GREENBAR_PREVIEW_ADDR"`
	Rebuild bool   `yaml:"rebuild" env:"GREENBAR_PREVIEW_REBUILD"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string `yaml:"provider" env:"GREENBAR_LOG_PROVIDER"`
	Level     string `yaml:"level" env:"GREENBAR_LOG_LEVEL"`
	Format    string `yaml:"format" env:"GREENBAR_LOG_FORMAT"`
	AddSource bool   `yaml:"add_source" env:"GREENBAR_LOG_ADD_SOURCE"`
}

// FrontMatterConfig optionally validates custom front-matter fields.
type FrontMatterConfig struct {
	Schema map[string]any `yaml:"schema"`
}

// DefaultConfig returns the defaults a fresh blog checkout works with.
func DefaultConfig() Config {
	return Config{
		Site: SiteConfig{
			Title:   "Greenbar",
			BaseURL: "http://localhost:8080",
		},
		Content: ContentConfig{
			Dir:      "content",
			PostsDir: "posts",
			PagesDir: "pages",
			Pattern:  "*.md",
		},
		Theme: ThemeConfig{
			Dir: "theme",
		},
		Generator: GeneratorConfig{
			OutputDir:       "public",
			CleanBuild:      false,
			Incremental:     true,
			CopyAssets:      true,
			GenerateFeeds:   true,
			GenerateSitemap: true,
			GenerateRobots:  true,
			Workers:         0,
		},
		Preview: PreviewConfig{
			Addr:    "localhost:8080",
			Rebuild: true,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs consistency checks across the whole configuration.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Content.Dir) == "" {
		return ErrContentDirRequired
	}
	if strings.TrimSpace(cfg.Theme.Dir) == "" {
		return ErrThemeDirRequired
	}
	if strings.TrimSpace(cfg.Generator.OutputDir) == "" {
		return ErrOutputDirRequired
	}
	if cfg.Generator.Workers < 0 {
		return fmt.Errorf("%w: %d", ErrWorkersInvalid, cfg.Generator.Workers)
	}
	if base := strings.TrimSpace(cfg.Site.BaseURL); base != "" {
		parsed, err := url.Parse(base)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%w: %q", ErrBaseURLInvalid, base)
		}
	}
	if strings.TrimSpace(cfg.Preview.Addr) == "" {
		return ErrPreviewAddrRequired
	}

	provider := strings.ToLower(strings.TrimSpace(cfg.Logging.Provider))
	if provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
		return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
	}
	if len(cfg.FrontMatter.Schema) > 0 {
		if err := validation.ValidateSchema(cfg.FrontMatter.Schema); err != nil {
			return fmt.Errorf("%w: %v", ErrFrontMatterSchemaBroken, err)
		}
	}
	return nil
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
