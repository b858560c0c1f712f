package greenbar

import (
	"github.com/mewert/greenbar/internal/content"
	"github.com/mewert/greenbar/internal/di"
	"github.com/mewert/greenbar/internal/preview"
	"github.com/mewert/greenbar/internal/site"
	"github.com/mewert/greenbar/internal/themes"
	"github.com/mewert/greenbar/pkg/interfaces"
)

// ContentService exports the content library contract for consumers of the
// greenbar package.
type ContentService = content.Service

// SiteService exports the static site generator contract.
type SiteService = site.Service

// ThemeService exports the theme service contract.
type ThemeService = themes.Service

// PreviewServer exports the preview server type.
type PreviewServer = preview.Server

// Post exports the content post model.
type Post = content.Post

// Page exports the content page model.
type Page = content.Page

// TagCount exports the tag aggregation row.
type TagCount = content.TagCount

// BuildOptions exports generator run options.
type BuildOptions = site.BuildOptions

// BuildResult exports the generator run summary.
type BuildResult = site.BuildResult

// Module is the top level blog engine façade.
type Module struct {
	container *di.Container
}

// New constructs the engine from the provided configuration and optional DI
// overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Content returns the configured content library.
func (m *Module) Content() ContentService {
	return m.container.ContentService()
}

// Site returns the configured static site generator.
func (m *Module) Site() SiteService {
	return m.container.SiteService()
}

// Themes returns the configured theme service.
func (m *Module) Themes() ThemeService {
	return m.container.ThemeService()
}

// Markdown returns the configured markdown service.
func (m *Module) Markdown() interfaces.MarkdownService {
	return m.container.MarkdownService()
}

// Logger returns the configured logger provider.
func (m *Module) Logger() interfaces.LoggerProvider {
	return m.container.LoggerProvider()
}

// Preview returns the preview server, constructing it on first use.
func (m *Module) Preview() (*PreviewServer, error) {
	return m.container.PreviewServer()
}
