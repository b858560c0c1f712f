package site

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"html/template"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/mewert/greenbar/internal/content"
	"github.com/mewert/greenbar/internal/logging"
	"github.com/mewert/greenbar/internal/themes"
	"github.com/mewert/greenbar/pkg/interfaces"
	gotheme "github.com/goliatone/go-theme"
	"github.com/google/uuid"
)

var (
	// ErrServiceDisabled indicates the generator feature is disabled.
	ErrServiceDisabled  = errors.New("site: service disabled")
	errContentRequired  = errors.New("site: content service is required")
	errRendererRequired = errors.New("site: template renderer is required")
	errStoreRequired    = errors.New("site: artifact store is required")
)

// Service describes the static site generator contract.
type Service interface {
	Build(ctx context.Context, opts BuildOptions) (*BuildResult, error)
	Clean(ctx context.Context) error
}

// Config captures runtime behaviour toggles for the generator.
type Config struct {
	BaseURL string
	// ContentDir is the content root on disk, used to resolve bundle assets.
	ContentDir      string
	CleanBuild      bool
	Incremental     bool
	CopyAssets      bool
	GenerateSitemap bool
	GenerateRobots  bool
	GenerateFeeds   bool
	Workers         int
	Site            SiteMetadata
}

// BuildOptions narrows the scope of a generator run.
type BuildOptions struct {
	// DryRun renders every document but writes nothing.
	DryRun bool
	// SkipReload renders from the library's current snapshot.
	SkipReload bool
}

// BuildResult reports aggregated build metadata.
type BuildResult struct {
	DocumentsBuilt   int
	DocumentsSkipped int
	AssetsBuilt      int
	AssetsSkipped    int
	FeedsWritten     int
	Duration         time.Duration
	Rendered         []RenderedDocument
	Diagnostics      []RenderDiagnostic
	Errors           []error
	DryRun           bool
}

// RenderedDocument captures the rendered HTML output for one document.
type RenderedDocument struct {
	ID       uuid.UUID
	Kind     string
	Route    string
	Output   string
	Template string
	HTML     string
	Hash     string
	Checksum string
	Duration time.Duration
}

// RenderDiagnostic records rendering timing and errors per document.
type RenderDiagnostic struct {
	Route    string
	Kind     string
	Template string
	Duration time.Duration
	Skipped  bool
	Err      error
}

type renderOutcome struct {
	doc        RenderedDocument
	diagnostic RenderDiagnostic
	err        error
	skipped    bool
}

// Dependencies lists the services required by the generator.
type Dependencies struct {
	Content  content.Service
	Themes   ThemeSource
	Renderer interfaces.TemplateRenderer
	Store    interfaces.ArtifactStore
	Logger   interfaces.LoggerProvider
}

// ThemeSource is the slice of the theme service the generator consumes.
type ThemeSource interface {
	Current() (*themes.Theme, error)
	Selection() (*gotheme.Selection, error)
}

// NewService wires a generator implementation with the provided configuration
// and dependencies.
func NewService(cfg Config, deps Dependencies) (Service, error) {
	if deps.Content == nil {
		return nil, errContentRequired
	}
	if deps.Renderer == nil {
		return nil, errRendererRequired
	}
	if deps.Store == nil {
		return nil, errStoreRequired
	}
	urls, err := newSiteURLs(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	return &service{
		cfg:    cfg,
		deps:   deps,
		urls:   urls,
		logger: logging.SiteLogger(deps.Logger),
		now:    time.Now,
	}, nil
}

// NewDisabledService returns a Service that fails all operations with
// ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg    Config
	deps   Dependencies
	urls   *siteURLs
	logger interfaces.Logger
	now    func() time.Time
}

type disabledService struct{}

func (disabledService) Build(context.Context, BuildOptions) (*BuildResult, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Clean(context.Context) error {
	return ErrServiceDisabled
}

func (s *service) Build(ctx context.Context, opts BuildOptions) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := s.now()

	if s.cfg.CleanBuild && !opts.DryRun {
		if err := s.Clean(ctx); err != nil {
			return nil, err
		}
	}

	buildCtx, err := s.loadContext(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &BuildResult{
		DryRun:      opts.DryRun,
		Diagnostics: make([]RenderDiagnostic, 0, len(buildCtx.Documents)),
	}

	manifest, manifestErr := s.loadManifest(ctx)
	var errorsSlice []error
	if manifestErr != nil {
		errorsSlice = append(errorsSlice, manifestErr)
	}
	if manifest == nil {
		manifest = newBuildManifest()
	}

	var (
		mu       sync.Mutex
		rendered = make([]RenderedDocument, 0, len(buildCtx.Documents))
		docKeys  = map[string]struct{}{}
	)
	collect := func(outcome renderOutcome) {
		mu.Lock()
		defer mu.Unlock()
		result.Diagnostics = append(result.Diagnostics, outcome.diagnostic)
		docKeys[manifestKey(outcome.diagnostic.Route)] = struct{}{}
		if outcome.err != nil {
			errorsSlice = append(errorsSlice, outcome.err)
			return
		}
		if outcome.skipped {
			result.DocumentsSkipped++
			return
		}
		result.DocumentsBuilt++
		rendered = append(rendered, outcome.doc)
	}

	s.renderAll(ctx, buildCtx, manifest, collect)

	if opts.DryRun {
		result.Rendered = rendered
		result.Duration = s.now().Sub(start)
		if len(errorsSlice) > 0 {
			result.Errors = append(result.Errors, errorsSlice...)
			return result, errors.Join(errorsSlice...)
		}
		return result, nil
	}

	if err := s.persistDocuments(ctx, rendered); err != nil {
		errorsSlice = append(errorsSlice, err)
	}

	assetKeys := map[string]struct{}{}
	if s.cfg.CopyAssets {
		themeSummary, err := s.copyThemeAssets(ctx, buildCtx, manifest, assetKeys)
		if err != nil {
			errorsSlice = append(errorsSlice, err)
		}
		bundleSummary, err := s.copyBundleAssets(ctx, buildCtx, manifest, assetKeys)
		if err != nil {
			errorsSlice = append(errorsSlice, err)
		}
		result.AssetsBuilt = themeSummary.Built + bundleSummary.Built
		result.AssetsSkipped = themeSummary.Skipped + bundleSummary.Skipped
	}

	if s.cfg.GenerateFeeds {
		written, err := s.writeFeeds(ctx, buildCtx)
		if err != nil {
			errorsSlice = append(errorsSlice, err)
		}
		result.FeedsWritten = written
	}

	if s.cfg.GenerateSitemap {
		if err := s.writeSitemap(ctx, buildCtx); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if s.cfg.GenerateRobots {
		if err := s.writeRobots(ctx); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	if len(errorsSlice) == 0 {
		manifest.GeneratedAt = buildCtx.GeneratedAt
		for _, doc := range rendered {
			manifest.setDocument(manifestEntry{
				Route:      doc.Route,
				Kind:       doc.Kind,
				Output:     doc.Output,
				Template:   doc.Template,
				Hash:       doc.Hash,
				Checksum:   doc.Checksum,
				RenderedAt: buildCtx.GeneratedAt,
			})
		}
		manifest.prune(docKeys, assetKeys)
		if err := s.persistManifest(ctx, manifest); err != nil {
			errorsSlice = append(errorsSlice, err)
		}
	}

	result.Rendered = rendered
	result.Duration = s.now().Sub(start)

	s.logger.Info("site.build.completed",
		"documents_built", result.DocumentsBuilt,
		"documents_skipped", result.DocumentsSkipped,
		"assets_built", result.AssetsBuilt,
		"feeds", result.FeedsWritten,
		"errors", len(errorsSlice),
		"duration_ms", result.Duration.Milliseconds(),
	)

	if len(errorsSlice) > 0 {
		result.Errors = append(result.Errors, errorsSlice...)
		return result, errors.Join(errorsSlice...)
	}
	return result, nil
}

func (s *service) Clean(ctx context.Context) error {
	if err := s.deps.Store.Remove(ctx, "."); err != nil {
		return fmt.Errorf("site: clean output: %w", err)
	}
	return s.deps.Store.EnsureDir(ctx, ".")
}

// loadContext assembles every document the run will render from the content
// library and the active theme.
func (s *service) loadContext(ctx context.Context, opts BuildOptions) (*buildContext, error) {
	if !opts.SkipReload {
		if err := s.deps.Content.Reload(ctx); err != nil {
			return nil, err
		}
	}

	posts, err := s.deps.Content.Posts(ctx)
	if err != nil {
		return nil, err
	}
	pages, err := s.deps.Content.Pages(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.deps.Content.Tags(ctx)
	if err != nil {
		return nil, err
	}

	buildCtx := &buildContext{
		GeneratedAt: s.now().UTC(),
		Posts:       posts,
		Tags:        tags,
		Options:     opts,
	}

	themeVersion := ""
	themeVariant := ""
	if s.deps.Themes != nil {
		theme, err := s.deps.Themes.Current()
		if err != nil {
			return nil, err
		}
		selection, err := s.deps.Themes.Selection()
		if err != nil {
			return nil, err
		}
		buildCtx.Theme = theme
		buildCtx.Selection = selection
		themeVersion = theme.Version
		themeVariant = theme.Variant
	}

	templateFor := func(kind string) string {
		if buildCtx.Theme != nil {
			return buildCtx.Theme.TemplatePath(kind)
		}
		return kind + ".tmpl"
	}

	base := normalizeBaseURL(s.cfg.BaseURL)

	for _, post := range posts {
		route := routeFromURL(base, s.urls.Post(post.Slug))
		tpl := templateFor(kindPost)
		if post.Template != "" {
			tpl = post.Template
		}
		doc := &document{
			ID:       post.ID,
			Kind:     kindPost,
			Route:    route,
			Template: tpl,
			Hash:     dependencyHash(kindPost, route, post.Checksum, tpl, themeVersion, themeVariant),
			LastMod:  post.Updated,
			Post:     post,
		}
		for _, asset := range post.Assets {
			doc.Assets = append(doc.Assets, bundleAsset{
				SourceDir: filepath.Join(s.cfg.ContentDir, filepath.Dir(filepath.FromSlash(post.SourcePath))),
				Rel:       asset,
			})
		}
		buildCtx.Documents = append(buildCtx.Documents, doc)
	}

	for _, page := range pages {
		route := routeFromURL(base, s.urls.Page(page.Slug))
		tpl := templateFor(kindPage)
		if page.Template != "" {
			tpl = page.Template
		}
		buildCtx.Documents = append(buildCtx.Documents, &document{
			ID:       page.ID,
			Kind:     kindPage,
			Route:    route,
			Template: tpl,
			Hash:     dependencyHash(kindPage, route, page.Checksum, tpl, themeVersion, themeVariant),
			LastMod:  page.LastModified,
			Page:     page,
		})
	}

	// Index and tag pages depend on every post they list.
	listHash := make([]string, 0, len(posts)+4)
	for _, post := range posts {
		listHash = append(listHash, post.Checksum)
	}
	indexTpl := templateFor(kindIndex)
	buildCtx.Documents = append(buildCtx.Documents, &document{
		ID:       uuid.Nil,
		Kind:     kindIndex,
		Route:    "/",
		Template: indexTpl,
		Hash: dependencyHash(append([]string{kindIndex, "/", indexTpl, themeVersion, themeVariant},
			listHash...)...),
		LastMod: latestPostTime(posts, buildCtx.GeneratedAt),
		Posts:   posts,
	})

	tagTpl := templateFor(kindTag)
	for _, tag := range tags {
		tagged, err := s.deps.Content.PostsByTag(ctx, tag.Tag)
		if err != nil {
			return nil, err
		}
		route := routeFromURL(base, s.urls.Tag(tag.Tag))
		tagHash := make([]string, 0, len(tagged)+5)
		tagHash = append(tagHash, kindTag, route, tagTpl, themeVersion, themeVariant)
		for _, post := range tagged {
			tagHash = append(tagHash, post.Checksum)
		}
		buildCtx.Documents = append(buildCtx.Documents, &document{
			ID:       uuid.Nil,
			Kind:     kindTag,
			Route:    route,
			Template: tagTpl,
			Hash:     dependencyHash(tagHash...),
			LastMod:  latestPostTime(tagged, buildCtx.GeneratedAt),
			Posts:    tagged,
			Tag:      tag.Tag,
		})
	}

	return buildCtx, nil
}

func (s *service) renderAll(
	ctx context.Context,
	buildCtx *buildContext,
	manifest *buildManifest,
	collect func(renderOutcome),
) {
	workers := s.effectiveWorkerCount(len(buildCtx.Documents))
	if workers <= 1 || len(buildCtx.Documents) <= 1 {
		for _, doc := range buildCtx.Documents {
			select {
			case <-ctx.Done():
				collect(cancelledOutcome(doc, ctx.Err()))
				return
			default:
				collect(s.renderDocument(ctx, buildCtx, doc, manifest))
			}
		}
		return
	}

	jobs := make(chan *document)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range jobs {
				select {
				case <-ctx.Done():
					collect(cancelledOutcome(doc, ctx.Err()))
				default:
					collect(s.renderDocument(ctx, buildCtx, doc, manifest))
				}
			}
		}()
	}

	for _, doc := range buildCtx.Documents {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		case jobs <- doc:
		}
	}
	close(jobs)
	wg.Wait()
}

func cancelledOutcome(doc *document, err error) renderOutcome {
	return renderOutcome{
		diagnostic: RenderDiagnostic{Route: doc.Route, Kind: doc.Kind, Err: err},
		err:        err,
	}
}

func (s *service) renderDocument(
	ctx context.Context,
	buildCtx *buildContext,
	doc *document,
	manifest *buildManifest,
) renderOutcome {
	outcome := renderOutcome{
		diagnostic: RenderDiagnostic{
			Route:    doc.Route,
			Kind:     doc.Kind,
			Template: doc.Template,
		},
	}

	output := outputPathFor(doc.Route)
	if s.cfg.Incremental && manifest.shouldSkipDocument(doc.Route, doc.Hash, output) {
		outcome.skipped = true
		outcome.diagnostic.Skipped = true
		return outcome
	}

	templateCtx := s.templateContext(buildCtx, doc)

	start := s.now()
	rendered, err := s.deps.Renderer.RenderTemplate(doc.Template, templateCtx)
	duration := s.now().Sub(start)
	outcome.diagnostic.Duration = duration
	if err != nil {
		wrapped := fmt.Errorf("site: render %s %s with template %q: %w", doc.Kind, doc.Route, doc.Template, err)
		outcome.err = wrapped
		outcome.diagnostic.Err = wrapped
		return outcome
	}

	outcome.doc = RenderedDocument{
		ID:       doc.ID,
		Kind:     doc.Kind,
		Route:    doc.Route,
		Output:   output,
		Template: doc.Template,
		HTML:     rendered,
		Hash:     doc.Hash,
		Checksum: computeHashFromString(rendered),
		Duration: duration,
	}
	return outcome
}

func (s *service) templateContext(buildCtx *buildContext, doc *document) TemplateContext {
	templateCtx := TemplateContext{
		Site:    s.cfg.Site,
		Tags:    buildCtx.Tags,
		Theme:   buildThemeContext(buildCtx.Theme, buildCtx.Selection),
		Build:   BuildMetadata{GeneratedAt: buildCtx.GeneratedAt, Options: buildCtx.Options},
		Helpers: newTemplateHelpers(s.cfg.BaseURL),
	}

	switch doc.Kind {
	case kindPost:
		post := doc.Post
		templateCtx.Doc = DocumentContext{
			Kind:        doc.Kind,
			Title:       post.Title,
			Summary:     post.Summary,
			Author:      post.Author,
			Slug:        post.Slug,
			Tags:        append([]string(nil), post.Tags...),
			Published:   post.Published,
			Updated:     post.Updated,
			Draft:       post.Draft,
			ReadingTime: post.ReadingTime,
			Permalink:   s.urls.Post(post.Slug),
			Content:     template.HTML(post.HTML),
			Custom:      post.Custom,
		}
	case kindPage:
		page := doc.Page
		templateCtx.Doc = DocumentContext{
			Kind:      doc.Kind,
			Title:     page.Title,
			Summary:   page.Summary,
			Slug:      page.Slug,
			Permalink: s.urls.Page(page.Slug),
			Content:   template.HTML(page.HTML),
			Custom:    page.Custom,
		}
	case kindIndex:
		templateCtx.Doc = DocumentContext{
			Kind:      doc.Kind,
			Title:     s.cfg.Site.Title,
			Summary:   s.cfg.Site.Description,
			Permalink: s.urls.Home(),
		}
		templateCtx.Posts = postSummaries(s.urls, doc.Posts)
	case kindTag:
		templateCtx.Doc = DocumentContext{
			Kind:      doc.Kind,
			Title:     doc.Tag,
			Tag:       doc.Tag,
			Permalink: s.urls.Tag(doc.Tag),
		}
		templateCtx.Posts = postSummaries(s.urls, doc.Posts)
	}
	return templateCtx
}

func (s *service) persistDocuments(ctx context.Context, docs []RenderedDocument) error {
	for i := range docs {
		req := interfaces.ArtifactWrite{
			Path:        docs[i].Output,
			Content:     strings.NewReader(docs[i].HTML),
			Size:        int64(len(docs[i].HTML)),
			Category:    categoryDocument,
			ContentType: "text/html; charset=utf-8",
			Checksum:    docs[i].Checksum,
			Metadata: map[string]string{
				"route":    docs[i].Route,
				"kind":     docs[i].Kind,
				"template": docs[i].Template,
			},
		}
		if err := s.deps.Store.WriteFile(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) writeFeeds(ctx context.Context, buildCtx *buildContext) (int, error) {
	items := buildFeedItems(s.urls, buildCtx.Posts)
	if len(items) == 0 {
		return 0, nil
	}

	written := 0
	rss := buildRSSFeed(s.cfg.Site, s.urls, items, buildCtx.GeneratedAt)
	if err := s.writeGenerated(ctx, "feed.xml", rss, categoryFeed, "application/rss+xml"); err != nil {
		return written, err
	}
	written++

	atom := buildAtomFeed(s.cfg.Site, s.urls, items, buildCtx.GeneratedAt)
	if err := s.writeGenerated(ctx, "feed.atom.xml", atom, categoryFeed, "application/atom+xml"); err != nil {
		return written, err
	}
	written++
	return written, nil
}

func (s *service) writeSitemap(ctx context.Context, buildCtx *buildContext) error {
	sitemap := buildSitemap(s.cfg.BaseURL, buildCtx.Documents, buildCtx.GeneratedAt)
	return s.writeGenerated(ctx, "sitemap.xml", sitemap, categorySitemap, "application/xml")
}

func (s *service) writeRobots(ctx context.Context) error {
	robots := buildRobots(s.cfg.BaseURL, s.cfg.GenerateSitemap)
	return s.writeGenerated(ctx, "robots.txt", robots, categoryRobots, "text/plain; charset=utf-8")
}

func (s *service) writeGenerated(ctx context.Context, path, body, category, contentType string) error {
	return s.deps.Store.WriteFile(ctx, interfaces.ArtifactWrite{
		Path:        path,
		Content:     strings.NewReader(body),
		Size:        int64(len(body)),
		Category:    category,
		ContentType: contentType,
		Checksum:    computeHashFromString(body),
	})
}

func (s *service) loadManifest(ctx context.Context) (*buildManifest, error) {
	data, err := s.deps.Store.ReadFile(ctx, manifestFileName)
	if err != nil {
		return nil, fmt.Errorf("site: read manifest: %w", err)
	}
	return parseManifest(data)
}

func (s *service) persistManifest(ctx context.Context, manifest *buildManifest) error {
	data, err := manifest.marshal()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return s.deps.Store.WriteFile(ctx, interfaces.ArtifactWrite{
		Path:        manifestFileName,
		Content:     bytes.NewReader(data),
		Size:        int64(len(data)),
		Category:    categoryManifest,
		ContentType: "application/json",
		Checksum:    computeHash(data),
	})
}

func (s *service) effectiveWorkerCount(documentCount int) int {
	workers := s.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers < 1 {
		workers = 1
	}
	if documentCount > 0 && workers > documentCount {
		return documentCount
	}
	return workers
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func computeHashFromString(content string) string {
	return computeHash([]byte(content))
}
