// Package di wires the engine's services from a validated runtime
// configuration. The container builds everything eagerly so callers fail at
// startup, not on first request.
package di

import (
	"fmt"
	"strings"

	"github.com/mewert/greenbar/internal/content"
	"github.com/mewert/greenbar/internal/logging/console"
	"github.com/mewert/greenbar/internal/logging/gologger"
	"github.com/mewert/greenbar/internal/markdown"
	"github.com/mewert/greenbar/internal/preview"
	"github.com/mewert/greenbar/internal/render"
	"github.com/mewert/greenbar/internal/runtimeconfig"
	"github.com/mewert/greenbar/internal/site"
	"github.com/mewert/greenbar/internal/themes"
	"github.com/mewert/greenbar/pkg/interfaces"
)

// Container holds the wired service graph.
type Container struct {
	Config runtimeconfig.Config

	logger   interfaces.LoggerProvider
	parser   interfaces.MarkdownParser
	markdown interfaces.MarkdownService
	content  content.Service
	themes   themes.Service
	renderer interfaces.TemplateRenderer
	store    interfaces.ArtifactStore
	site     site.Service
	preview  *preview.Server
}

// Option mutates the container before the service graph is built.
type Option func(*Container)

// WithLoggerProvider overrides the provider derived from LoggingConfig.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.logger = provider
	}
}

// WithMarkdownParser overrides the default Goldmark parser.
func WithMarkdownParser(parser interfaces.MarkdownParser) Option {
	return func(c *Container) {
		c.parser = parser
	}
}

// WithMarkdownService overrides the default filesystem markdown service.
func WithMarkdownService(svc interfaces.MarkdownService) Option {
	return func(c *Container) {
		c.markdown = svc
	}
}

// WithContentService overrides the default content library binding.
func WithContentService(svc content.Service) Option {
	return func(c *Container) {
		c.content = svc
	}
}

// WithThemeService overrides the default theme service binding.
func WithThemeService(svc themes.Service) Option {
	return func(c *Container) {
		c.themes = svc
	}
}

// WithTemplateRenderer overrides the default template renderer.
func WithTemplateRenderer(renderer interfaces.TemplateRenderer) Option {
	return func(c *Container) {
		c.renderer = renderer
	}
}

// WithArtifactStore overrides the default filesystem store.
func WithArtifactStore(store interfaces.ArtifactStore) Option {
	return func(c *Container) {
		c.store = store
	}
}

// WithSiteService overrides the default generator binding.
func WithSiteService(svc site.Service) Option {
	return func(c *Container) {
		c.site = svc
	}
}

// NewContainer validates cfg and builds the service graph.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.logger == nil {
		provider, err := newLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		c.logger = provider
	}

	if c.markdown == nil {
		md, err := markdown.NewService(markdown.Config{
			BasePath:  cfg.Content.Dir,
			Pattern:   cfg.Content.Pattern,
			Recursive: true,
		}, c.parser)
		if err != nil {
			return nil, fmt.Errorf("di: markdown service: %w", err)
		}
		c.markdown = md
	}

	if c.content == nil {
		library, err := content.NewLibrary(content.Config{
			PostsDir:          cfg.Content.PostsDir,
			PagesDir:          cfg.Content.PagesDir,
			IncludeDrafts:     cfg.Content.Drafts,
			DefaultAuthor:     cfg.Site.Author,
			FrontMatterSchema: cfg.FrontMatter.Schema,
		}, content.Dependencies{
			Markdown: c.markdown,
			Logger:   c.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("di: content library: %w", err)
		}
		c.content = library
	}

	if c.themes == nil {
		svc := themes.NewService(themes.Config{Variant: cfg.Theme.Variant}, c.logger)
		if _, err := svc.Load(cfg.Theme.Dir); err != nil {
			return nil, fmt.Errorf("di: load theme: %w", err)
		}
		c.themes = svc
	}

	if c.renderer == nil {
		renderer, err := render.NewTemplateRenderer(cfg.Theme.Dir)
		if err != nil {
			return nil, fmt.Errorf("di: template renderer: %w", err)
		}
		c.renderer = renderer
	}

	if c.store == nil {
		store, err := site.NewFilesystemStore(cfg.Generator.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("di: artifact store: %w", err)
		}
		c.store = store
	}

	if c.site == nil {
		svc, err := site.NewService(site.Config{
			BaseURL:         cfg.Site.BaseURL,
			ContentDir:      cfg.Content.Dir,
			CleanBuild:      cfg.Generator.CleanBuild,
			Incremental:     cfg.Generator.Incremental,
			CopyAssets:      cfg.Generator.CopyAssets,
			GenerateSitemap: cfg.Generator.GenerateSitemap,
			GenerateRobots:  cfg.Generator.GenerateRobots,
			GenerateFeeds:   cfg.Generator.GenerateFeeds,
			Workers:         cfg.Generator.Workers,
			Site: site.SiteMetadata{
				Title:       cfg.Site.Title,
				Description: cfg.Site.Description,
				Author:      cfg.Site.Author,
				BaseURL:     cfg.Site.BaseURL,
			},
		}, site.Dependencies{
			Content:  c.content,
			Themes:   c.themes,
			Renderer: c.renderer,
			Store:    c.store,
			Logger:   c.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("di: site service: %w", err)
		}
		c.site = svc
	}

	return c, nil
}

// PreviewServer builds the preview server lazily since only the serve command
// needs it.
func (c *Container) PreviewServer() (*preview.Server, error) {
	if c.preview != nil {
		return c.preview, nil
	}

	server, err := preview.NewServer(preview.Config{
		Addr:            c.Config.Preview.Addr,
		OutputDir:       c.Config.Generator.OutputDir,
		RebuildOnChange: c.Config.Preview.Rebuild,
		WatchDirs:       []string{c.Config.Content.Dir, c.Config.Theme.Dir},
		Drafts:          c.Config.Content.Drafts,
	}, preview.Dependencies{
		Site:   c.site,
		Logger: c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("di: preview server: %w", err)
	}

	c.preview = server
	return server, nil
}

// LoggerProvider exposes the configured logger provider.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.logger
}

// MarkdownService exposes the configured markdown service.
func (c *Container) MarkdownService() interfaces.MarkdownService {
	return c.markdown
}

// ContentService returns the content library.
func (c *Container) ContentService() content.Service {
	return c.content
}

// ThemeService returns the theme service.
func (c *Container) ThemeService() themes.Service {
	return c.themes
}

// TemplateRenderer exposes the configured renderer.
func (c *Container) TemplateRenderer() interfaces.TemplateRenderer {
	return c.renderer
}

// ArtifactStore exposes the configured output store.
func (c *Container) ArtifactStore() interfaces.ArtifactStore {
	return c.store
}

// SiteService returns the static site generator.
func (c *Container) SiteService() site.Service {
	return c.site
}

func newLoggerProvider(cfg runtimeconfig.LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		level := consoleLevel(cfg.Level)
		return console.NewProvider(console.Options{MinLevel: &level}), nil
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
		})
		if err != nil {
			return nil, fmt.Errorf("di: logger provider: %w", err)
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("di: unknown logging provider %q", cfg.Provider)
	}
}

func consoleLevel(raw string) console.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "trace":
		return console.LevelTrace
	case "debug":
		return console.LevelDebug
	case "warn":
		return console.LevelWarn
	case "error":
		return console.LevelError
	default:
		return console.LevelInfo
	}
}
